package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/mediaindex/internal/core/domain"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexed records",
	RunE:  runList,
}

var showCmd = &cobra.Command{
	Use:   "show [id|path]",
	Short: "Show one indexed record",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var insertCmd = &cobra.Command{
	Use:   "insert [path]",
	Short: "Insert a record without probing the file",
	Long: `Insert writes a record for path using only the given flags, the way a
download manager registers a file it is writing. A completed DRM download
(--drm --download without --pending) is rescanned immediately.`,
	Args: cobra.ExactArgs(1),
	RunE: runInsert,
}

var updateCmd = &cobra.Command{
	Use:   "update [id]",
	Short: "Update fields of a record",
	Long: `Update changes the given fields of one record. Records with a bokeh
capture mode keep their capture and modification times.`,
	Args: cobra.ExactArgs(1),
	RunE: runUpdate,
}

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete matching records and repair burst sets",
	Long: `Delete removes every record matching the filter flags. At least one
filter is required. Burst sets that lose members are repaired in the same
transaction: a lone survivor becomes a normal photo and a set that lost
its cover gets a new one.`,
	RunE: runDelete,
}

// Filter flags shared by list and delete.
var (
	filterIDs       []int64
	filterModes     []string
	filterTimestamp int64
	filterPrefix    string
	filterMime      string
	listJSON        bool
)

// Record flags shared by insert and update.
var (
	recordMode      string
	recordTimestamp int64
	recordModified  int64
	recordTitle     string
	recordMime      string
	recordPending   bool
	recordDownload  bool
	recordDrm       bool
)

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().Int64SliceVar(&filterIDs, "id", nil, "Match record IDs")
	cmd.Flags().StringSliceVar(&filterModes, "mode", nil, "Match capture modes (name or code)")
	cmd.Flags().Int64Var(&filterTimestamp, "timestamp", 0, "Match capture timestamp in milliseconds")
	cmd.Flags().StringVar(&filterPrefix, "prefix", "", "Match paths at or below a directory")
	cmd.Flags().StringVar(&filterMime, "mime", "", "Match an exact mime type")
}

func init() {
	addFilterFlags(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Print records as JSON")
	showCmd.Flags().BoolVar(&listJSON, "json", false, "Print the record as JSON")
	addFilterFlags(deleteCmd)

	insertCmd.Flags().StringVar(&recordMode, "mode", "", "Capture mode (name or code)")
	insertCmd.Flags().Int64Var(&recordTimestamp, "timestamp", 0, "Capture timestamp in milliseconds")
	insertCmd.Flags().StringVar(&recordMime, "mime", "", "Mime type")
	insertCmd.Flags().StringVar(&recordTitle, "title", "", "Title")
	insertCmd.Flags().BoolVar(&recordPending, "pending", false, "Mark the file as still being written")
	insertCmd.Flags().BoolVar(&recordDownload, "download", false, "Mark the file as a download")
	insertCmd.Flags().BoolVar(&recordDrm, "drm", false, "Mark the file as DRM protected")

	updateCmd.Flags().StringVar(&recordMode, "mode", "", "Capture mode (name or code)")
	updateCmd.Flags().Int64Var(&recordTimestamp, "timestamp", 0, "Capture timestamp in milliseconds")
	updateCmd.Flags().Int64Var(&recordModified, "modified", 0, "Modification time in seconds")
	updateCmd.Flags().StringVar(&recordMime, "mime", "", "Mime type")
	updateCmd.Flags().StringVar(&recordTitle, "title", "", "Title")
	updateCmd.Flags().BoolVar(&recordPending, "pending", false, "Pending state")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(insertCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(deleteCmd)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func buildFilter(cmd *cobra.Command) (domain.RecordFilter, error) {
	filter := domain.RecordFilter{
		IDs:        filterIDs,
		PathPrefix: filterPrefix,
		MimeType:   filterMime,
	}
	if filterPrefix != "" {
		abs, err := filepath.Abs(filterPrefix)
		if err != nil {
			return filter, err
		}
		filter.PathPrefix = abs
	}
	if cmd.Flags().Changed("timestamp") {
		ts := filterTimestamp
		filter.CaptureTimestamp = &ts
	}
	for _, name := range filterModes {
		mode, err := domain.ParseCaptureMode(name)
		if err != nil {
			return filter, err
		}
		filter.CaptureModes = append(filter.CaptureModes, mode)
	}
	return filter, nil
}

func runList(cmd *cobra.Command, _ []string) error {
	if mediaService == nil {
		return errors.New("media service not configured")
	}

	filter, err := buildFilter(cmd)
	if err != nil {
		return err
	}
	records, err := mediaService.List(commandContext(cmd), filter)
	if err != nil {
		return fmt.Errorf("failed to list records: %w", err)
	}

	if listJSON {
		views := make([]recordView, 0, len(records))
		for i := range records {
			views = append(views, newRecordView(&records[i]))
		}
		return writeJSON(cmd, views)
	}

	if len(records) == 0 {
		cmd.Println("No records found.")
		return nil
	}
	for i := range records {
		r := &records[i]
		cmd.Printf("  %-6d %-14s %-20s %s\n", r.ID, modeLabel(r), r.MimeType, r.FilePath)
	}
	cmd.Printf("\nTotal: %d records\n", len(records))
	return nil
}

// lookupRecord resolves an ID or a path argument.
func lookupRecord(ctx context.Context, arg string) (*domain.IndexRecord, error) {
	if id, err := strconv.ParseInt(arg, 10, 64); err == nil {
		return mediaService.Get(ctx, id)
	}
	abs, err := filepath.Abs(arg)
	if err != nil {
		return nil, err
	}
	return mediaService.GetByPath(ctx, abs)
}

func runShow(cmd *cobra.Command, args []string) error {
	if mediaService == nil {
		return errors.New("media service not configured")
	}

	record, err := lookupRecord(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("failed to get record: %w", err)
	}
	if listJSON {
		return writeJSON(cmd, newRecordView(record))
	}
	printRecord(cmd, record)
	return nil
}

func runInsert(cmd *cobra.Command, args []string) error {
	if mediaService == nil {
		return errors.New("media service not configured")
	}

	path, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	record := &domain.IndexRecord{
		FilePath:         path,
		Title:            recordTitle,
		MimeType:         recordMime,
		CaptureTimestamp: recordTimestamp,
		IsPending:        recordPending,
		IsDownload:       recordDownload,
		IsDrm:            recordDrm,
	}
	if info, err := os.Stat(path); err == nil {
		record.Size = info.Size()
	}
	if recordMode != "" {
		mode, err := domain.ParseCaptureMode(recordMode)
		if err != nil {
			return err
		}
		record.CaptureMode = domain.ModePtr(mode)
	}

	id, err := mediaService.Insert(commandContext(cmd), record)
	if err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}
	cmd.Printf("Inserted record: %d\n", id)
	return nil
}

func runUpdate(cmd *cobra.Command, args []string) error {
	if mediaService == nil {
		return errors.New("media service not configured")
	}

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("%w: invalid record id %q", domain.ErrInvalidInput, args[0])
	}

	var changes domain.RecordChanges
	flags := cmd.Flags()
	if flags.Changed("mode") {
		mode, err := domain.ParseCaptureMode(recordMode)
		if err != nil {
			return err
		}
		changes.CaptureMode = domain.ModePtr(mode)
	}
	if flags.Changed("timestamp") {
		ts := recordTimestamp
		changes.CaptureTimestamp = &ts
	}
	if flags.Changed("modified") {
		mod := recordModified
		changes.DateModified = &mod
	}
	if flags.Changed("mime") {
		mime := recordMime
		changes.MimeType = &mime
	}
	if flags.Changed("title") {
		title := recordTitle
		changes.Title = &title
	}
	if flags.Changed("pending") {
		pending := recordPending
		changes.IsPending = &pending
	}
	if changes.IsEmpty() {
		return fmt.Errorf("%w: no fields to update", domain.ErrInvalidInput)
	}

	n, err := mediaService.Update(commandContext(cmd), id, changes)
	if err != nil {
		return fmt.Errorf("failed to update record: %w", err)
	}
	if n == 0 {
		cmd.Printf("No record updated: %d\n", id)
		return nil
	}
	cmd.Printf("Updated record: %d\n", id)
	return nil
}

func runDelete(cmd *cobra.Command, _ []string) error {
	if mediaService == nil {
		return errors.New("media service not configured")
	}

	filter, err := buildFilter(cmd)
	if err != nil {
		return err
	}
	if filter.IsEmpty() {
		return fmt.Errorf("%w: pass at least one filter flag", domain.ErrUnscopedDelete)
	}

	n, err := mediaService.Delete(commandContext(cmd), filter)
	if err != nil {
		return fmt.Errorf("failed to delete records: %w", err)
	}
	cmd.Printf("Deleted %d records\n", n)
	return nil
}
