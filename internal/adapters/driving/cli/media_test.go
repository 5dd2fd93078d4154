package cli

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mediaindex/internal/core/domain"
)

func TestRootCmd_HasSubcommands(t *testing.T) {
	commandNames := make([]string, 0)
	for _, cmd := range rootCmd.Commands() {
		commandNames = append(commandNames, cmd.Name())
	}

	for _, name := range []string{"scan", "list", "show", "insert", "update", "delete", "classify", "watch", "settings", "version"} {
		assert.Contains(t, commandNames, name)
	}
}

func TestCommands_NotConfigured(t *testing.T) {
	origScan, origMedia, origSettings := scanService, mediaService, settingsService
	SetServices(nil, nil, nil)
	defer func() {
		scanService, mediaService, settingsService = origScan, origMedia, origSettings
	}()

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"list"}, "media service not configured"},
		{[]string{"show", "1"}, "media service not configured"},
		{[]string{"delete", "--id", "1"}, "media service not configured"},
		{[]string{"scan", "/tmp"}, "scan service not configured"},
		{[]string{"watch", "/tmp"}, "scan service not configured"},
		{[]string{"settings"}, "settings service not configured"},
	}
	for _, tt := range tests {
		_, err := execute(t, tt.args...)
		assert.ErrorContains(t, err, tt.want, "args %v", tt.args)
	}
}

func TestListCmd_PrintsRecords(t *testing.T) {
	ts := setupTestServices(t)
	ts.seed(t, "/media/DCIM/a.jpg", domain.ModePtr(domain.CaptureModeBurst), 100)
	ts.seed(t, "/media/DCIM/b.jpg", nil, 200)

	out, err := execute(t, "list")

	require.NoError(t, err)
	assert.Contains(t, out, "/media/DCIM/a.jpg")
	assert.Contains(t, out, "burst")
	assert.Contains(t, out, "Total: 2 records")
}

func TestListCmd_FiltersByModeAndTimestamp(t *testing.T) {
	ts := setupTestServices(t)
	ts.seed(t, "/m/a.jpg", domain.ModePtr(domain.CaptureModeBurst), 100)
	ts.seed(t, "/m/b.jpg", domain.ModePtr(domain.CaptureModeBurstCover), 100)
	ts.seed(t, "/m/c.jpg", domain.ModePtr(domain.CaptureModeBurst), 200)

	out, err := execute(t, "list", "--mode", "burst,burst-cover", "--timestamp", "100", "--json")

	require.NoError(t, err)
	var views []recordView
	require.NoError(t, json.Unmarshal([]byte(out), &views))
	require.Len(t, views, 2)
	assert.Equal(t, "/m/a.jpg", views[0].Path)
	assert.Equal(t, "burst-cover", views[1].CaptureModeName)
}

func TestListCmd_Empty(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "list")

	require.NoError(t, err)
	assert.Contains(t, out, "No records found.")
}

func TestListCmd_BadMode(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "list", "--mode", "sideways")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestShowCmd(t *testing.T) {
	ts := setupTestServices(t)
	id := ts.seed(t, "/m/a.jpg", domain.ModePtr(domain.CaptureModeHDR), 5)

	out, err := execute(t, "show", strconv.FormatInt(id, 10))
	require.NoError(t, err)
	assert.Contains(t, out, "Path:       /m/a.jpg")
	assert.Contains(t, out, "Mode:       hdr")

	out, err = execute(t, "show", "/m/a.jpg", "--json")
	require.NoError(t, err)
	var view recordView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, id, view.ID)
	require.NotNil(t, view.CaptureMode)
	assert.Equal(t, int32(52), *view.CaptureMode)

	_, err = execute(t, "show", "999")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestInsertCmd(t *testing.T) {
	ts := setupTestServices(t)
	path := filepath.Join(t.TempDir(), "song.mp3")

	out, err := execute(t, "insert", path, "--mime", "audio/mpeg", "--mode", "51", "--timestamp", "42")

	require.NoError(t, err)
	assert.Contains(t, out, "Inserted record:")
	got, err := ts.media.GetByPath(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, domain.MediaTypeAudio, got.MediaType)
	assert.Equal(t, domain.CaptureModeBurst, got.Mode(), "insert stores modes as given")
	assert.Equal(t, int64(42), got.CaptureTimestamp)
}

func TestInsertCmd_DrmDownloadTriggersRescan(t *testing.T) {
	ts := setupTestServices(t)
	ts.media.SetRescanner(ts.scan)
	path := filepath.Join(t.TempDir(), "ring.dcf")

	_, err := execute(t, "insert", path, "--drm", "--download")
	require.NoError(t, err)
	assert.Equal(t, []string{path}, ts.scan.files)

	_, err = execute(t, "insert", path+"2", "--drm", "--download", "--pending")
	require.NoError(t, err)
	assert.Len(t, ts.scan.files, 1, "pending downloads are not rescanned")
}

func TestUpdateCmd(t *testing.T) {
	ts := setupTestServices(t)
	id := ts.seed(t, "/m/a.jpg", nil, 5)

	out, err := execute(t, "update", strconv.FormatInt(id, 10), "--mode", "hdr", "--title", "Sunset")

	require.NoError(t, err)
	assert.Contains(t, out, "Updated record:")
	got, err := ts.media.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, domain.CaptureModeHDR, got.Mode())
	assert.Equal(t, "Sunset", got.Title)
	assert.Equal(t, int64(5), got.CaptureTimestamp)
}

func TestUpdateCmd_Errors(t *testing.T) {
	ts := setupTestServices(t)
	id := ts.seed(t, "/m/a.jpg", nil, 5)

	_, err := execute(t, "update", "abc", "--title", "x")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = execute(t, "update", strconv.FormatInt(id, 10))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	out, err := execute(t, "update", "999", "--title", "x")
	require.NoError(t, err)
	assert.Contains(t, out, "No record updated")
}

func TestDeleteCmd_RepairsBurst(t *testing.T) {
	ts := setupTestServices(t)
	cover := ts.seed(t, "/m/cover.jpg", domain.ModePtr(domain.CaptureModeBurstCover), 100)
	a := ts.seed(t, "/m/a.jpg", domain.ModePtr(domain.CaptureModeBurst), 100)
	b := ts.seed(t, "/m/b.jpg", domain.ModePtr(domain.CaptureModeBurst), 100)

	out, err := execute(t, "delete", "--id", strconv.FormatInt(cover, 10))

	require.NoError(t, err)
	assert.Contains(t, out, "Deleted 1 records")
	first, err := ts.media.Get(context.Background(), a)
	require.NoError(t, err)
	assert.Equal(t, domain.CaptureModeBurstCover, first.Mode())
	second, err := ts.media.Get(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, domain.CaptureModeBurst, second.Mode())
}

func TestDeleteCmd_RequiresFilter(t *testing.T) {
	ts := setupTestServices(t)
	ts.seed(t, "/m/a.jpg", nil, 1)

	_, err := execute(t, "delete")

	assert.ErrorIs(t, err, domain.ErrUnscopedDelete)
	assert.Equal(t, 1, ts.store.Len())
}
