package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/eren/chronotrace/internal/browser"
	"github.com/eren/chronotrace/internal/config"
	"github.com/eren/chronotrace/pkg/viewer"
)

var (
	viewHost string
	viewPort int
	viewOpen bool
)

var viewCmd = &cobra.Command{
	Use:   "view <trace.json>",
	Short: "Serve a web viewer for a trace file",
	Long: `Serve the trace viewer page for a file and push updates to connected
browsers over WebSocket whenever the file changes on disk. Blocks until
interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runView,
}

func init() {
	rootCmd.AddCommand(viewCmd)
	viewCmd.Flags().StringVar(&viewHost, "host", "", "interface to serve on (default from config)")
	viewCmd.Flags().IntVar(&viewPort, "port", 0, "port to serve on (default from config)")
	viewCmd.Flags().BoolVar(&viewOpen, "open", false, "open the viewer in a browser")
}

func runView(cmd *cobra.Command, args []string) error {
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

	host := cfg.Viewer.Host
	if viewHost != "" {
		host = viewHost
	}
	port := cfg.Viewer.Port
	if viewPort != 0 {
		port = viewPort
	}

	server, err := viewer.NewServer(viewer.Config{
		Host:      host,
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

	fmt.Printf("Viewer listening on %s\n", server.URL())
	fmt.Println("Press Ctrl+C to stop")

	var closeBrowser func()
	if viewOpen || cfg.Viewer.OpenBrowser {
		closeBrowser, err = browser.NewLauncher("").Open(server.URL())
		if err != nil {
			log.Warn().Err(err).Msg("Failed to open browser")
			closeBrowser = nil
		}
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Received signal")

	if closeBrowser != nil {
		closeBrowser()
	}

	return server.Stop()
}
