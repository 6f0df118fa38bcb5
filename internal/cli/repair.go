package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eren/chronotrace/pkg/trace"
)

var repairCmd = &cobra.Command{
	Use:   "repair <trace.json>",
	Short: "Repair an unterminated trace file",
	Long: `Repair a trace file left unterminated by a crash or kill. Any
incomplete trailing record is dropped and the closing footer is appended.
The file is replaced atomically.`,
	Args: cobra.ExactArgs(1),
	RunE: runRepair,
}

func init() {
	rootCmd.AddCommand(repairCmd)
}

func runRepair(cmd *cobra.Command, args []string) error {
	path := args[0]

	changed, err := trace.Repair(path)
	if err != nil {
		return err
	}

	if changed {
		fmt.Printf("Repaired %s\n", path)
	} else {
		fmt.Printf("%s is already terminated, nothing to do\n", path)
	}

	return nil
}
