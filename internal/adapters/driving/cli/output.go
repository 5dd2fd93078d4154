package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/mediaindex/internal/core/domain"
)

// recordView is the JSON shape of an index record.
type recordView struct {
	ID               int64  `json:"id"`
	Path             string `json:"path"`
	DisplayName      string `json:"display_name"`
	Title            string `json:"title,omitempty"`
	MimeType         string `json:"mime_type"`
	MediaType        string `json:"media_type"`
	CaptureMode      *int32 `json:"capture_mode"`
	CaptureModeName  string `json:"capture_mode_name,omitempty"`
	CaptureTimestamp int64  `json:"capture_timestamp"`
	DateModified     int64  `json:"date_modified"`
	Size             int64  `json:"size"`
	Width            int    `json:"width,omitempty"`
	Height           int    `json:"height,omitempty"`
	IsDownload       bool   `json:"is_download,omitempty"`
	IsPending        bool   `json:"is_pending,omitempty"`
	IsDrm            bool   `json:"is_drm,omitempty"`
}

func newRecordView(r *domain.IndexRecord) recordView {
	v := recordView{
		ID:               r.ID,
		Path:             r.FilePath,
		DisplayName:      r.DisplayName,
		Title:            r.Title,
		MimeType:         r.MimeType,
		MediaType:        string(r.MediaType),
		CaptureTimestamp: r.CaptureTimestamp,
		DateModified:     r.DateModified,
		Size:             r.Size,
		Width:            r.Width,
		Height:           r.Height,
		IsDownload:       r.IsDownload,
		IsPending:        r.IsPending,
		IsDrm:            r.IsDrm,
	}
	if r.CaptureMode != nil {
		code := int32(*r.CaptureMode)
		v.CaptureMode = &code
		v.CaptureModeName = r.CaptureMode.String()
	}
	return v
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func modeLabel(r *domain.IndexRecord) string {
	if r.CaptureMode == nil {
		return "-"
	}
	return r.CaptureMode.String()
}

func printRecord(cmd *cobra.Command, r *domain.IndexRecord) {
	cmd.Printf("Record: %d\n\n", r.ID)
	cmd.Printf("  Path:       %s\n", r.FilePath)
	cmd.Printf("  Name:       %s\n", r.DisplayName)
	if r.Title != "" {
		cmd.Printf("  Title:      %s\n", r.Title)
	}
	cmd.Printf("  Mime:       %s (%s)\n", r.MimeType, r.MediaType)
	cmd.Printf("  Mode:       %s\n", modeLabel(r))
	cmd.Printf("  Captured:   %d\n", r.CaptureTimestamp)
	cmd.Printf("  Modified:   %d\n", r.DateModified)
	cmd.Printf("  Size:       %d\n", r.Size)
	if r.Width > 0 && r.Height > 0 {
		cmd.Printf("  Dimensions: %dx%d\n", r.Width, r.Height)
	}
	if r.IsDrm {
		cmd.Println("  DRM:        yes")
	}
	if r.IsDownload {
		cmd.Println("  Download:   yes")
	}
	if r.IsPending {
		cmd.Println("  Pending:    yes")
	}
}
