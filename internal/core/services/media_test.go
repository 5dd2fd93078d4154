package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mediaindex/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/mediaindex/internal/core/domain"
)

func newTestMediaService() (*MediaService, *memory.IndexStore) {
	store := memory.NewIndexStore()
	return NewMediaService(store), store
}

func TestMediaService_Insert(t *testing.T) {
	service, store := newTestMediaService()

	record := &domain.IndexRecord{FilePath: "/sd/Music/song.mp3", MimeType: "audio/mpeg"}
	id, err := service.Insert(context.Background(), record)

	require.NoError(t, err)
	assert.Equal(t, id, record.ID)
	stored, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "song.mp3", stored.DisplayName)
	assert.Equal(t, domain.MediaTypeAudio, stored.MediaType)
	assert.Nil(t, stored.CaptureMode)
}

func TestMediaService_Insert_StoresModeVerbatim(t *testing.T) {
	service, store := newTestMediaService()

	id, err := service.Insert(context.Background(), &domain.IndexRecord{
		FilePath:    "/sd/DCIM/a.jpg",
		CaptureMode: domain.ModePtr(domain.CaptureModeBurstCover),
	})

	require.NoError(t, err)
	assert.Equal(t, domain.CaptureModeBurstCover, modeOf(t, store, id))
}

func TestMediaService_Insert_Invalid(t *testing.T) {
	service, _ := newTestMediaService()

	_, err := service.Insert(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = service.Insert(context.Background(), &domain.IndexRecord{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestMediaService_Insert_Duplicate(t *testing.T) {
	service, _ := newTestMediaService()
	_, err := service.Insert(context.Background(), &domain.IndexRecord{FilePath: "/a.jpg"})
	require.NoError(t, err)

	_, err = service.Insert(context.Background(), &domain.IndexRecord{FilePath: "/a.jpg"})

	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestMediaService_Insert_DrmDownloadRescan(t *testing.T) {
	tests := []struct {
		name       string
		record     domain.IndexRecord
		wantRescan bool
	}{
		{
			name:       "completed drm download",
			record:     domain.IndexRecord{IsDrm: true, IsDownload: true},
			wantRescan: true,
		},
		{
			name:   "pending drm download",
			record: domain.IndexRecord{IsDrm: true, IsDownload: true, IsPending: true},
		},
		{
			name:   "drm file not downloaded",
			record: domain.IndexRecord{IsDrm: true},
		},
		{
			name:   "plain download",
			record: domain.IndexRecord{IsDownload: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, _ := newTestMediaService()
			rescanner := &mockRescanner{}
			service.SetRescanner(rescanner)

			record := tt.record
			record.FilePath = "/sd/Download/song.dcf"
			_, err := service.Insert(context.Background(), &record)

			require.NoError(t, err)
			if tt.wantRescan {
				assert.Equal(t, []string{"/sd/Download/song.dcf"}, rescanner.paths)
			} else {
				assert.Empty(t, rescanner.paths)
			}
		})
	}
}

func TestMediaService_Insert_RescanFailureIgnored(t *testing.T) {
	service, store := newTestMediaService()
	service.SetRescanner(&mockRescanner{err: errors.New("decoder gone")})

	_, err := service.Insert(context.Background(), &domain.IndexRecord{
		FilePath: "/sd/Download/a.dcf", IsDrm: true, IsDownload: true,
	})

	require.NoError(t, err)
	assert.Equal(t, 1, store.Len())
}

func TestMediaService_Insert_NoRescanner(t *testing.T) {
	service, _ := newTestMediaService()

	_, err := service.Insert(context.Background(), &domain.IndexRecord{
		FilePath: "/sd/Download/a.dcf", IsDrm: true, IsDownload: true,
	})

	assert.NoError(t, err)
}

func TestMediaService_Update(t *testing.T) {
	service, store := newTestMediaService()
	id, err := service.Insert(context.Background(), &domain.IndexRecord{
		FilePath:         "/sd/a.jpg",
		CaptureMode:      domain.ModePtr(domain.CaptureModeHDR),
		CaptureTimestamp: 100,
	})
	require.NoError(t, err)

	ts := int64(200)
	title := "sunset"
	n, err := service.Update(context.Background(), id, domain.RecordChanges{CaptureTimestamp: &ts, Title: &title})

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	stored, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, int64(200), stored.CaptureTimestamp)
	assert.Equal(t, "sunset", stored.Title)
}

func TestMediaService_Update_BokehKeepsTimes(t *testing.T) {
	for _, mode := range []domain.CaptureMode{
		domain.CaptureModeBlurHasBokeh,
		domain.CaptureModeRealBokehNoBokeh,
		domain.CaptureModeHDRBokehHasBokeh,
	} {
		t.Run(mode.String(), func(t *testing.T) {
			service, store := newTestMediaService()
			id, err := service.Insert(context.Background(), &domain.IndexRecord{
				FilePath:         "/sd/a.jpg",
				CaptureMode:      domain.ModePtr(mode),
				CaptureTimestamp: 100,
				DateModified:     10,
			})
			require.NoError(t, err)

			ts, modified := int64(200), int64(20)
			width := 4000
			n, err := service.Update(context.Background(), id, domain.RecordChanges{
				CaptureTimestamp: &ts,
				DateModified:     &modified,
				Width:            &width,
			})

			require.NoError(t, err)
			assert.Equal(t, 1, n)
			stored, err := store.Get(context.Background(), id)
			require.NoError(t, err)
			assert.Equal(t, int64(100), stored.CaptureTimestamp)
			assert.Equal(t, int64(10), stored.DateModified)
			assert.Equal(t, 4000, stored.Width)
		})
	}
}

func TestMediaService_Update_BokehOnlyTimesIsNoop(t *testing.T) {
	service, store := newTestMediaService()
	id, err := service.Insert(context.Background(), &domain.IndexRecord{
		FilePath:         "/sd/a.jpg",
		CaptureMode:      domain.ModePtr(domain.CaptureModeBlurNoBokeh),
		CaptureTimestamp: 100,
	})
	require.NoError(t, err)
	store.FailUpdates(errors.New("must not reach the store"))

	ts := int64(200)
	n, err := service.Update(context.Background(), id, domain.RecordChanges{CaptureTimestamp: &ts})

	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMediaService_Update_NotFound(t *testing.T) {
	service, _ := newTestMediaService()
	title := "x"

	_, err := service.Update(context.Background(), 42, domain.RecordChanges{Title: &title})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMediaService_Delete_Unscoped(t *testing.T) {
	service, store := newTestMediaService()
	_, err := service.Insert(context.Background(), &domain.IndexRecord{FilePath: "/a.jpg"})
	require.NoError(t, err)

	_, err = service.Delete(context.Background(), domain.RecordFilter{})

	assert.ErrorIs(t, err, domain.ErrUnscopedDelete)
	assert.Equal(t, 1, store.Len())
}

func TestMediaService_Delete_NoMatch(t *testing.T) {
	service, _ := newTestMediaService()

	n, err := service.Delete(context.Background(), domain.RecordFilter{PathPrefix: "/nothing"})

	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMediaService_ListAndLookup(t *testing.T) {
	service, _ := newTestMediaService()
	for _, p := range []string{"/sd/DCIM/a.jpg", "/sd/DCIM/b.jpg", "/sd/Music/c.mp3"} {
		_, err := service.Insert(context.Background(), &domain.IndexRecord{FilePath: p})
		require.NoError(t, err)
	}

	records, err := service.List(context.Background(), domain.RecordFilter{PathPrefix: "/sd/DCIM"})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Less(t, records[0].ID, records[1].ID)

	got, err := service.GetByPath(context.Background(), "/sd/Music/c.mp3")
	require.NoError(t, err)
	byID, err := service.Get(context.Background(), got.ID)
	require.NoError(t, err)
	assert.Equal(t, got.FilePath, byID.FilePath)
}
