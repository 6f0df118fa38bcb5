package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/eren/chronotrace/internal/config"
	"github.com/eren/chronotrace/pkg/archive"
)

var (
	archiveDB           string
	archiveImportName   string
	archiveEventsName   string
	archiveEventsMinDur int64
	archiveEventsLimit  int
)

// archiveCmd represents the archive command
var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Manage the trace archive",
	Long:  `Commands for importing trace files into the SQLite archive and querying archived sessions.`,
}

var archiveImportCmd = &cobra.Command{
	Use:   "import <trace.json>",
	Short: "Import a trace file into the archive",
	Long: `Validate a trace file and store its session and events in the archive
database. Unterminated files are rejected, run repair first.`,
	Args: cobra.ExactArgs(1),
	RunE: runArchiveImport,
}

var archiveLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List archived sessions",
	RunE:  runArchiveLs,
}

var archiveEventsCmd = &cobra.Command{
	Use:   "events <session-id>",
	Short: "List events of an archived session",
	Args:  cobra.ExactArgs(1),
	RunE:  runArchiveEvents,
}

func init() {
	rootCmd.AddCommand(archiveCmd)
	archiveCmd.AddCommand(archiveImportCmd)
	archiveCmd.AddCommand(archiveLsCmd)
	archiveCmd.AddCommand(archiveEventsCmd)

	archiveCmd.PersistentFlags().StringVar(&archiveDB, "db", "", "archive database path (default from config)")
	archiveImportCmd.Flags().StringVar(&archiveImportName, "name", "", "session name (default is the trace file name)")
	archiveEventsCmd.Flags().StringVar(&archiveEventsName, "name", "", "only events with this exact name")
	archiveEventsCmd.Flags().Int64Var(&archiveEventsMinDur, "min-dur", 0, "only events at least this long, in microseconds")
	archiveEventsCmd.Flags().IntVar(&archiveEventsLimit, "limit", 0, "maximum number of events to list")
}

// openArchive resolves the database path and opens the archive.
func openArchive() (*archive.Archive, error) {
	dbPath := archiveDB
	if dbPath == "" {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return nil, err
		}
		dbPath = cfg.Archive.Path
	}
	return archive.Open(dbPath)
}

func runArchiveImport(cmd *cobra.Command, args []string) error {
	a, err := openArchive()
	if err != nil {
		return err
	}
	defer a.Close()

	stats, err := a.Import(archiveImportName, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Imported session %d: %d events over %s\n",
		stats.SessionID, stats.Events, formatMicros(stats.Span))
	return nil
}

func runArchiveLs(cmd *cobra.Command, args []string) error {
	a, err := openArchive()
	if err != nil {
		return err
	}
	defer a.Close()

	sessions, err := a.Sessions()
	if err != nil {
		return err
	}

	if len(sessions) == 0 {
		fmt.Println("No sessions archived")
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("ID", "Name", "Events", "Span", "Imported", "Source")
	for _, session := range sessions {
		table.Append(
			fmt.Sprintf("%d", session.ID),
			session.Name,
			fmt.Sprintf("%d", session.EventCount),
			formatMicros(session.EndTs-session.StartTs),
			session.ImportedAt.Format("2006-01-02 15:04:05"),
			session.SourcePath,
		)
	}
	table.Render()
	fmt.Printf("\nTotal sessions: %d\n", len(sessions))

	return nil
}

func runArchiveEvents(cmd *cobra.Command, args []string) error {
	sessionID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid session id %q: %w", args[0], err)
	}

	a, err := openArchive()
	if err != nil {
		return err
	}
	defer a.Close()

	events, err := a.Events(sessionID, archive.EventFilter{
		Name:   archiveEventsName,
		MinDur: archiveEventsMinDur,
		Limit:  archiveEventsLimit,
	})
	if err != nil {
		return err
	}

	if len(events) == 0 {
		fmt.Println("No events matched")
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Name", "Duration", "TID", "Start ts")
	for _, event := range events {
		table.Append(
			event.Name,
			formatMicros(event.Dur),
			fmt.Sprintf("%d", event.Tid),
			fmt.Sprintf("%d", event.Ts),
		)
	}
	table.Render()
	fmt.Printf("\nTotal events: %d\n", len(events))

	return nil
}
