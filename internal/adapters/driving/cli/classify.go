package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/mediaindex/internal/core/domain"
)

var classifyCmd = &cobra.Command{
	Use:   "classify [code...]",
	Short: "Show how capture-mode codes are indexed",
	Long: `Classify prints the stored value for each raw capture-mode code.
Without arguments the whole taxonomy is listed.

Dispositions:
  store      - the code is stored as is
  normalize  - the photo is stored as a normal capture
  ignore     - no capture mode is stored`,
	RunE: runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	codes := make([]int32, 0, len(args))
	if len(args) == 0 {
		for _, mode := range domain.AllCaptureModes() {
			codes = append(codes, int32(mode))
		}
	}
	for _, arg := range args {
		n, err := strconv.ParseInt(arg, 0, 32)
		if err != nil {
			return fmt.Errorf("%w: invalid capture mode code %q", domain.ErrInvalidInput, arg)
		}
		codes = append(codes, int32(n))
	}

	cmd.Printf("  %-6s %-22s %-10s %s\n", "CODE", "NAME", "ACTION", "STORED")
	for _, code := range codes {
		c := domain.Classify(code)
		stored := "-"
		if v, ok := c.Value(); ok {
			stored = strconv.Itoa(int(v))
		}
		name := c.Code.String()
		if !c.Code.IsKnown() {
			name = "unknown"
		}
		cmd.Printf("  %-6d %-22s %-10s %s\n", code, name, c.Disposition, stored)
	}
	return nil
}
