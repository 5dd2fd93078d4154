package domain

import (
	"fmt"
	"sort"
	"strconv"
)

// CaptureMode identifies the camera feature combination used to produce a
// photo or video. Values are vendor camera codes and are not contiguous.
type CaptureMode int32

// Known capture modes.
const (
	CaptureModeNormal            CaptureMode = 0
	CaptureMode3DCapture         CaptureMode = 7
	CaptureModeOpticalZoom       CaptureMode = 11
	CaptureModeBlurHasBokeh      CaptureMode = 12  // 0x000C
	CaptureModeRealBokehHasBokeh CaptureMode = 16  // 0x0010
	CaptureModeHDRBokehHasBokeh  CaptureMode = 17  // 0x0011
	CaptureModeAIScene           CaptureMode = 36
	CaptureModeAISceneHDR        CaptureMode = 37
	CaptureModeAISceneFDR        CaptureMode = 38
	CaptureModeBurst             CaptureMode = 51
	CaptureModeHDR               CaptureMode = 52
	CaptureModeAudioCapture      CaptureMode = 53
	CaptureModeHDRAudioCapture   CaptureMode = 54
	CaptureModeBurstCover        CaptureMode = 55
	CaptureModeThumbnail         CaptureMode = 56
	CaptureModeFDR               CaptureMode = 57
	CaptureModeBlurNoBokeh       CaptureMode = 268 // 0x010C
	CaptureModeRealBokehNoBokeh  CaptureMode = 272 // 0x0110
	CaptureModeHDRBokehNoBokeh   CaptureMode = 273 // 0x0111
	CaptureModeMotionHDR         CaptureMode = 1025
	CaptureModeMotionAI          CaptureMode = 1026
	CaptureModeMotionHDRAI       CaptureMode = 1027
	CaptureModeMotionFDR         CaptureMode = 1028
	CaptureModeMotionFDRAI       CaptureMode = 1029
)

// Disposition describes what the index stores for a capture mode.
type Disposition int

const (
	// DispositionIgnore writes no classification attribute.
	DispositionIgnore Disposition = iota
	// DispositionStore writes the capture mode verbatim.
	DispositionStore
	// DispositionNormalize writes CaptureModeNormal.
	DispositionNormalize
)

// String returns the string representation.
func (d Disposition) String() string {
	switch d {
	case DispositionStore:
		return "store"
	case DispositionNormalize:
		return "normalize"
	default:
		return "ignore"
	}
}

type modeInfo struct {
	name        string
	disposition Disposition
	bokeh       bool
}

// captureModes is the closed taxonomy. Codes absent from it are ignored.
var captureModes = map[CaptureMode]modeInfo{
	CaptureModeNormal:            {name: "normal", disposition: DispositionStore},
	CaptureMode3DCapture:         {name: "3d-capture", disposition: DispositionIgnore},
	CaptureModeOpticalZoom:       {name: "optical-zoom", disposition: DispositionIgnore},
	CaptureModeBlurHasBokeh:      {name: "blur-has-bokeh", disposition: DispositionStore, bokeh: true},
	CaptureModeRealBokehHasBokeh: {name: "real-bokeh-has-bokeh", disposition: DispositionStore, bokeh: true},
	CaptureModeHDRBokehHasBokeh:  {name: "hdr-bokeh-has-bokeh", disposition: DispositionStore, bokeh: true},
	CaptureModeAIScene:           {name: "ai-scene", disposition: DispositionStore},
	CaptureModeAISceneHDR:        {name: "ai-scene-hdr", disposition: DispositionStore},
	CaptureModeAISceneFDR:        {name: "ai-scene-fdr", disposition: DispositionStore},
	CaptureModeBurst:             {name: "burst", disposition: DispositionNormalize},
	CaptureModeHDR:               {name: "hdr", disposition: DispositionStore},
	CaptureModeAudioCapture:      {name: "audio-capture", disposition: DispositionStore},
	CaptureModeHDRAudioCapture:   {name: "hdr-audio-capture", disposition: DispositionStore},
	CaptureModeBurstCover:        {name: "burst-cover", disposition: DispositionNormalize},
	CaptureModeThumbnail:         {name: "thumbnail", disposition: DispositionStore},
	CaptureModeFDR:               {name: "fdr", disposition: DispositionStore},
	CaptureModeBlurNoBokeh:       {name: "blur-no-bokeh", disposition: DispositionStore, bokeh: true},
	CaptureModeRealBokehNoBokeh:  {name: "real-bokeh-no-bokeh", disposition: DispositionStore, bokeh: true},
	CaptureModeHDRBokehNoBokeh:   {name: "hdr-bokeh-no-bokeh", disposition: DispositionStore, bokeh: true},
	CaptureModeMotionHDR:         {name: "motion-hdr", disposition: DispositionStore},
	CaptureModeMotionAI:          {name: "motion-ai", disposition: DispositionStore},
	CaptureModeMotionHDRAI:       {name: "motion-hdr-ai", disposition: DispositionStore},
	CaptureModeMotionFDR:         {name: "motion-fdr", disposition: DispositionStore},
	CaptureModeMotionFDRAI:       {name: "motion-fdr-ai", disposition: DispositionStore},
}

// Classification is the outcome of classifying a raw capture-mode code.
type Classification struct {
	Code        CaptureMode
	Disposition Disposition
}

// Classify maps a raw capture-mode code to the value the index stores.
// It is total: unknown codes classify as DispositionIgnore.
func Classify(code int32) Classification {
	mode := CaptureMode(code)
	info, ok := captureModes[mode]
	if !ok {
		return Classification{Code: mode, Disposition: DispositionIgnore}
	}
	return Classification{Code: mode, Disposition: info.disposition}
}

// Value returns the classification attribute to persist.
// The boolean is false when nothing should be written.
func (c Classification) Value() (CaptureMode, bool) {
	switch c.Disposition {
	case DispositionStore:
		return c.Code, true
	case DispositionNormalize:
		return CaptureModeNormal, true
	default:
		return 0, false
	}
}

// IsKnown returns true if the mode is part of the taxonomy.
func (m CaptureMode) IsKnown() bool {
	_, ok := captureModes[m]
	return ok
}

// IsBurst returns true for burst members and burst covers.
func (m CaptureMode) IsBurst() bool {
	return m == CaptureModeBurst || m == CaptureModeBurstCover
}

// IsBokeh returns true for the blur and real-bokeh variants.
// The camera rewrites these files after capture, so their capture times
// must survive later updates.
func (m CaptureMode) IsBokeh() bool {
	return captureModes[m].bokeh
}

// String returns the taxonomy name, or the decimal code for unknown modes.
func (m CaptureMode) String() string {
	if info, ok := captureModes[m]; ok {
		return info.name
	}
	return strconv.Itoa(int(m))
}

// ParseCaptureMode accepts either a taxonomy name or a decimal code.
func ParseCaptureMode(s string) (CaptureMode, error) {
	for mode, info := range captureModes {
		if info.name == s {
			return mode, nil
		}
	}
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: unknown capture mode %q", ErrInvalidInput, s)
	}
	return CaptureMode(n), nil
}

// AllCaptureModes returns every mode in the taxonomy sorted by code.
func AllCaptureModes() []CaptureMode {
	modes := make([]CaptureMode, 0, len(captureModes))
	for mode := range captureModes {
		modes = append(modes, mode)
	}
	sort.Slice(modes, func(i, j int) bool { return modes[i] < modes[j] })
	return modes
}

// BurstModes lists the capture modes that place a record in a burst set.
var BurstModes = []CaptureMode{CaptureModeBurst, CaptureModeBurstCover}
