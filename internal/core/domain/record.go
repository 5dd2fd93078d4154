package domain

import "strings"

// MediaType is the coarse category of an indexed file.
type MediaType string

// Media types.
const (
	MediaTypeOther MediaType = "other"
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
	MediaTypeAudio MediaType = "audio"
)

// MediaTypeForMime derives the media type from a mime type.
func MediaTypeForMime(mimeType string) MediaType {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return MediaTypeImage
	case strings.HasPrefix(mimeType, "video/"):
		return MediaTypeVideo
	case strings.HasPrefix(mimeType, "audio/"):
		return MediaTypeAudio
	default:
		return MediaTypeOther
	}
}

// IndexRecord is one row of the media index.
type IndexRecord struct {
	// ID is the stable integer identity assigned by the index.
	ID int64

	// FilePath is the absolute path of the backing file.
	FilePath string

	// DisplayName is the file name shown to users.
	DisplayName string

	// Title is the media title (tag title for audio, file stem otherwise).
	Title string

	// MimeType is the effective mime type after overrides and DRM unwrap.
	MimeType string

	// MediaType is derived from MimeType.
	MediaType MediaType

	// CaptureMode is the stored classification attribute.
	// Nil means no classification was written, read as normal.
	CaptureMode *CaptureMode

	// CaptureTimestamp is the capture time in milliseconds; it groups bursts.
	CaptureTimestamp int64

	// DateModified is the file modification time in seconds.
	DateModified int64

	// Size is the file size in bytes.
	Size int64

	// Width and Height are pixel dimensions; zero when unknown.
	Width  int
	Height int

	IsDownload bool
	IsPending  bool
	IsDrm      bool
}

// Mode returns the stored capture mode, treating an unset value as normal.
func (r *IndexRecord) Mode() CaptureMode {
	if r.CaptureMode == nil {
		return CaptureModeNormal
	}
	return *r.CaptureMode
}

// ModePtr returns a pointer to m, for filling optional fields.
func ModePtr(m CaptureMode) *CaptureMode {
	return &m
}

// RecordFilter selects index records. Set fields are combined with AND.
// The zero value matches every record.
type RecordFilter struct {
	// IDs restricts to the given identities.
	IDs []int64

	// ExcludeIDs drops the given identities.
	ExcludeIDs []int64

	// CaptureTimestamp restricts to one capture time.
	CaptureTimestamp *int64

	// CaptureModes restricts to records whose stored mode is in the list.
	CaptureModes []CaptureMode

	// PathPrefix restricts to files at or under a directory or path.
	PathPrefix string

	// MimeType restricts to one exact mime type.
	MimeType string

	// Exclude drops every record matched by the nested filter.
	// Used to scope burst repair away from rows deleted in the same batch.
	Exclude *RecordFilter
}

// IsEmpty returns true if the filter sets no constraint.
func (f *RecordFilter) IsEmpty() bool {
	if f == nil {
		return true
	}
	return len(f.IDs) == 0 && len(f.ExcludeIDs) == 0 && f.CaptureTimestamp == nil &&
		len(f.CaptureModes) == 0 && f.PathPrefix == "" && f.MimeType == "" &&
		f.Exclude == nil
}

// Matches reports whether a record satisfies the filter.
// Stores that cannot push the filter down evaluate it with this method.
func (f *RecordFilter) Matches(r *IndexRecord) bool {
	if f == nil {
		return true
	}
	if len(f.IDs) > 0 && !containsID(f.IDs, r.ID) {
		return false
	}
	if containsID(f.ExcludeIDs, r.ID) {
		return false
	}
	if f.CaptureTimestamp != nil && r.CaptureTimestamp != *f.CaptureTimestamp {
		return false
	}
	if len(f.CaptureModes) > 0 {
		if r.CaptureMode == nil || !containsMode(f.CaptureModes, *r.CaptureMode) {
			return false
		}
	}
	if f.PathPrefix != "" && !HasPathPrefix(r.FilePath, f.PathPrefix) {
		return false
	}
	if f.MimeType != "" && r.MimeType != f.MimeType {
		return false
	}
	if f.Exclude != nil && !f.Exclude.IsEmpty() && f.Exclude.Matches(r) {
		return false
	}
	return true
}

// HasPathPrefix returns true if path equals prefix or lies below it.
func HasPathPrefix(path, prefix string) bool {
	prefix = strings.TrimSuffix(prefix, "/")
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func containsMode(modes []CaptureMode, m CaptureMode) bool {
	for _, v := range modes {
		if v == m {
			return true
		}
	}
	return false
}

// RecordChanges is a partial update. Nil fields are left untouched.
type RecordChanges struct {
	CaptureMode      *CaptureMode
	CaptureTimestamp *int64
	DateModified     *int64
	MimeType         *string
	Title            *string
	IsPending        *bool
	Width            *int
	Height           *int
}

// IsEmpty returns true if no field is set.
func (c *RecordChanges) IsEmpty() bool {
	return c.CaptureMode == nil && c.CaptureTimestamp == nil && c.DateModified == nil &&
		c.MimeType == nil && c.Title == nil && c.IsPending == nil &&
		c.Width == nil && c.Height == nil
}

// Apply writes the set fields onto r.
func (c *RecordChanges) Apply(r *IndexRecord) {
	if c.CaptureMode != nil {
		r.CaptureMode = ModePtr(*c.CaptureMode)
	}
	if c.CaptureTimestamp != nil {
		r.CaptureTimestamp = *c.CaptureTimestamp
	}
	if c.DateModified != nil {
		r.DateModified = *c.DateModified
	}
	if c.MimeType != nil {
		r.MimeType = *c.MimeType
		r.MediaType = MediaTypeForMime(r.MimeType)
	}
	if c.Title != nil {
		r.Title = *c.Title
	}
	if c.IsPending != nil {
		r.IsPending = *c.IsPending
	}
	if c.Width != nil {
		r.Width = *c.Width
	}
	if c.Height != nil {
		r.Height = *c.Height
	}
}
