package cli

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/eren/chronotrace/internal/browser"
	"github.com/eren/chronotrace/internal/config"
	"github.com/eren/chronotrace/pkg/viewer"
)

var (
	snapshotOut     string
	snapshotPort    int
	snapshotTimeout time.Duration
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot <trace.json>",
	Short: "Render a trace file to a PNG image",
	Long: `Render a trace file to a PNG image using a headless browser. The
viewer is served on a local port just long enough for the page to render
and be captured.`,
	Args: cobra.ExactArgs(1),
	RunE: runSnapshot,
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
	snapshotCmd.Flags().StringVarP(&snapshotOut, "output", "o", "", "output PNG path (default is the trace path with a .png extension)")
	snapshotCmd.Flags().IntVar(&snapshotPort, "port", 0, "port to serve the viewer on (default from config)")
	snapshotCmd.Flags().DurationVar(&snapshotTimeout, "timeout", browser.DefaultSnapshotTimeout, "time budget for the render")
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	tracePath := args[0]

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	log, err := newCommandLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Close()

	out := snapshotOut
	if out == "" {
		out = strings.TrimSuffix(tracePath, filepath.Ext(tracePath)) + ".png"
	}

	port := cfg.Viewer.Port
	if snapshotPort != 0 {
		port = snapshotPort
	}

	server, err := viewer.NewServer(viewer.Config{
		Host:      "127.0.0.1",
		Port:      port,
		TracePath: tracePath,
		Debounce:  time.Duration(cfg.Viewer.DebounceMs) * time.Millisecond,
		Logger:    log.GetZerolog(),
	})
	if err != nil {
		return err
	}

	if err := server.Start(); err != nil {
		return err
	}
	defer server.Stop()

	if err := browser.NewLauncher("").Snapshot(server.URL(), out, snapshotTimeout); err != nil {
		return fmt.Errorf("failed to render snapshot: %w", err)
	}

	fmt.Printf("Snapshot written to %s\n", out)
	return nil
}
