package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/eren/chronotrace/pkg/trace"
)

var validateCmd = &cobra.Command{
	Use:   "validate <trace.json>",
	Short: "Validate a trace file",
	Long: `Validate a trace file against the trace event schema. Exits non-zero
when the document is invalid. An unterminated file (a recording that never
ended) is reported separately so it can be repaired instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	path := args[0]

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read trace file: %w", err)
	}

	if !trace.IsTerminated(data) {
		return fmt.Errorf("%s is not terminated (missing ]} footer), run repair first", path)
	}

	if err := trace.NewValidator().Validate(data); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	fmt.Printf("%s is a valid trace document\n", path)
	return nil
}
