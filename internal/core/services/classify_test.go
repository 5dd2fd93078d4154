package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mediaindex/internal/core/domain"
)

func TestApplyCaptureMode(t *testing.T) {
	tests := []struct {
		name string
		code int32
		want *domain.CaptureMode
	}{
		{"normal is stored", 0, domain.ModePtr(domain.CaptureModeNormal)},
		{"hdr is stored", 52, domain.ModePtr(domain.CaptureModeHDR)},
		{"bokeh is stored", 0x0110, domain.ModePtr(domain.CaptureModeRealBokehNoBokeh)},
		{"burst becomes normal", 51, domain.ModePtr(domain.CaptureModeNormal)},
		{"burst cover becomes normal", 55, domain.ModePtr(domain.CaptureModeNormal)},
		{"3d capture leaves attribute unset", 7, nil},
		{"optical zoom leaves attribute unset", 11, nil},
		{"unknown leaves attribute unset", 999, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := &domain.IndexRecord{FilePath: "/sd/DCIM/a.jpg"}

			ApplyCaptureMode(record, tt.code)

			if tt.want == nil {
				assert.Nil(t, record.CaptureMode)
				return
			}
			require.NotNil(t, record.CaptureMode)
			assert.Equal(t, *tt.want, *record.CaptureMode)
		})
	}
}

func TestApplyCaptureMode_IgnoredKeepsExisting(t *testing.T) {
	record := &domain.IndexRecord{CaptureMode: domain.ModePtr(domain.CaptureModeHDR)}

	ApplyCaptureMode(record, 999)

	assert.Equal(t, domain.CaptureModeHDR, record.Mode())
}
