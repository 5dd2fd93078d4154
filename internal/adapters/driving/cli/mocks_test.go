package cli

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mediaindex/internal/adapters/driven/config/file"
	"github.com/custodia-labs/mediaindex/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/mediaindex/internal/core/domain"
	"github.com/custodia-labs/mediaindex/internal/core/ports/driving"
	"github.com/custodia-labs/mediaindex/internal/core/services"
)

// mockScanService records the paths it was asked to scan.
type mockScanService struct {
	dirs     []string
	files    []string
	initRoot []string
	result   driving.ScanResult
	err      error
}

func (m *mockScanService) ScanDirectory(_ context.Context, root string) (*driving.ScanResult, error) {
	m.dirs = append(m.dirs, root)
	r := m.result
	return &r, m.err
}

func (m *mockScanService) ScanFile(_ context.Context, path string) (*driving.ScanResult, error) {
	m.files = append(m.files, path)
	r := m.result
	return &r, m.err
}

func (m *mockScanService) EnsureDefaultDirectories(root string) error {
	m.initRoot = append(m.initRoot, root)
	return m.err
}

type testServices struct {
	scan     *mockScanService
	store    *memory.IndexStore
	media    *services.MediaService
	settings *services.SettingsService
}

// setupTestServices wires real media and settings services over in-memory
// and temp-dir stores, plus a recording scan service.
func setupTestServices(t *testing.T) *testServices {
	t.Helper()

	configStore, err := file.NewConfigStore(t.TempDir())
	require.NoError(t, err)

	ts := &testServices{
		scan:     &mockScanService{},
		store:    memory.NewIndexStore(),
		settings: services.NewSettingsService(configStore),
	}
	ts.media = services.NewMediaService(ts.store)

	origScan, origMedia, origSettings := scanService, mediaService, settingsService
	SetServices(ts.scan, ts.media, ts.settings)
	t.Cleanup(func() {
		scanService, mediaService, settingsService = origScan, origMedia, origSettings
	})
	return ts
}

// seed inserts a record directly into the store.
func (ts *testServices) seed(t *testing.T, path string, mode *domain.CaptureMode, timestamp int64) int64 {
	t.Helper()
	id, err := ts.store.Insert(context.Background(), &domain.IndexRecord{
		FilePath:         path,
		DisplayName:      path,
		MimeType:         "image/jpeg",
		MediaType:        domain.MediaTypeImage,
		CaptureMode:      mode,
		CaptureTimestamp: timestamp,
	})
	require.NoError(t, err)
	return id
}

// resetFlags restores every flag to its default so runs do not leak state.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	defer resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(os.Stdout)
		rootCmd.SetErr(os.Stderr)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}
