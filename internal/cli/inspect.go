package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/eren/chronotrace/pkg/trace"
	"github.com/eren/chronotrace/pkg/viewer"
)

var (
	inspectTop   int
	inspectWatch bool
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <trace.json>",
	Short: "Summarize a trace file",
	Long: `Summarize a trace file: validity, event count, time span, and
per-thread and longest-event tables. With --watch the summary re-renders
whenever the file changes on disk.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().IntVar(&inspectTop, "top", 10, "number of longest events to show")
	inspectCmd.Flags().BoolVar(&inspectWatch, "watch", false, "re-render when the file changes")
}

func runInspect(cmd *cobra.Command, args []string) error {
	path := args[0]

	if err := renderInspect(path, inspectTop); err != nil {
		return err
	}

	if !inspectWatch {
		return nil
	}

	watcher, err := viewer.NewTraceWatcher(viewer.TraceWatcherConfig{
		TracePath: path,
		OnChange: func(p string) error {
			fmt.Println()
			return renderInspect(p, inspectTop)
		},
	})
	if err != nil {
		return err
	}
	if err := watcher.Start(); err != nil {
		return err
	}
	defer watcher.Stop()

	fmt.Println("\nWatching for changes, press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	return nil
}

func renderInspect(path string, top int) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read trace file: %w", err)
	}

	display := data
	terminated := trace.IsTerminated(data)
	if !terminated {
		repaired, _, err := trace.RepairBytes(data)
		if err != nil {
			return fmt.Errorf("unterminated document cannot be summarized: %w", err)
		}
		display = repaired
	}

	doc, err := trace.Parse(display)
	if err != nil {
		return err
	}
	summary := doc.Summarize()

	fmt.Printf("File: %s\n", path)
	if verr := trace.NewValidator().Validate(display); verr != nil {
		fmt.Printf("Valid: no (%v)\n", verr)
	} else if terminated {
		fmt.Println("Valid: yes")
	} else {
		fmt.Println("Valid: unterminated (summary from repaired view, run repair to fix the file)")
	}
	fmt.Printf("Events: %d\n", summary.Events)
	fmt.Printf("Threads: %d\n", summary.Threads)
	fmt.Printf("Span: %s\n", formatMicros(summary.Span()))

	if summary.Events == 0 {
		return nil
	}

	fmt.Println("\nThreads:")
	threads := tablewriter.NewWriter(os.Stdout)
	threads.Header("TID", "Events", "Busy", "First ts", "Last ts")
	for _, thread := range summary.ByThread {
		threads.Append(
			fmt.Sprintf("%d", thread.Tid),
			fmt.Sprintf("%d", thread.Count),
			formatMicros(thread.Busy),
			fmt.Sprintf("%d", thread.First),
			fmt.Sprintf("%d", thread.Last),
		)
	}
	threads.Render()

	longest := doc.Longest(top)
	if len(longest) == 0 {
		return nil
	}

	fmt.Printf("\nLongest events (top %d):\n", len(longest))
	events := tablewriter.NewWriter(os.Stdout)
	events.Header("Name", "Duration", "TID", "Start ts")
	for _, event := range longest {
		events.Append(
			event.Name,
			formatMicros(event.Dur),
			fmt.Sprintf("%d", event.Tid),
			fmt.Sprintf("%d", event.Ts),
		)
	}
	events.Render()

	return nil
}

// formatMicros renders a microsecond quantity the way trace viewers do.
func formatMicros(us int64) string {
	return (time.Duration(us) * time.Microsecond).String()
}
