package reports

import (
	"fmt"
	"github.com/myrjola/crimewatch/internal/backend"
	"github.com/myrjola/crimewatch/internal/dashboard"
	"github.com/myrjola/crimewatch/internal/errors"
	"github.com/myrjola/crimewatch/internal/logging"
	"github.com/myrjola/crimewatch/internal/tracker"
	"github.com/spf13/cobra"
	"log/slog"
	"os"
	"text/tabwriter"
)

var Group = &cobra.Group{
	ID:    "reports",
	Title: "Report operations",
}

func init() {
	for _, cmd := range []*cobra.Command{List, SetStatus, Status} {
		cmd.Flags().String("backend-url", "", "base URL of the report backend, defaults to $CRIMEWATCH_BACKEND_URL")
	}
	Reports.AddCommand(List, SetStatus)
}

func newBackend(cmd *cobra.Command) (*backend.Client, error) {
	url, err := cmd.Flags().GetString("backend-url")
	if err != nil {
		return nil, errors.Wrap(err, "get backend-url flag")
	}
	if url == "" {
		url = os.Getenv("CRIMEWATCH_BACKEND_URL")
	}
	if url == "" {
		return nil, errors.New("backend URL missing, set --backend-url or CRIMEWATCH_BACKEND_URL")
	}
	logger := logging.NewLogger(cmd.ErrOrStderr(), slog.LevelWarn, nil)
	return backend.NewClient(url, logger), nil
}

var Reports = &cobra.Command{
	Use:     "reports",
	GroupID: "reports",
	Short:   "Manage submitted reports",
}

var List = &cobra.Command{
	Use:   "list",
	Short: "List reports",
	Long:  "Lists every report known to the backend together with the counts per status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, err := newBackend(cmd)
		if err != nil {
			return err
		}
		board := dashboard.NewBoard(client, logging.NewLogger(cmd.ErrOrStderr(), slog.LevelWarn, nil))
		if err = board.Load(cmd.Context()); err != nil {
			return errors.Wrap(err, "load reports")
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0) //nolint:mnd // padding
		_, _ = fmt.Fprintln(w, "ID\tTRACKING ID\tSTATUS\tNAME\tLOCATION")
		for _, r := range board.Reports() {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.ID, r.UniqueID, r.Status.Label(), r.Name, r.Location)
		}
		if err = w.Flush(); err != nil {
			return errors.Wrap(err, "flush table")
		}
		c := board.Counts()
		_, _ = fmt.Fprintf(cmd.OutOrStdout(),
			"\ntotal %d, pending %d (%d%%), in review %d, under investigation %d, completed %d\n",
			c.Total, c.Pending, c.PendingPercent(), c.InReview, c.UnderInvestigation, c.Completed)
		return nil
	},
}

var SetStatus = &cobra.Command{
	Use:   "set-status <id> <status>",
	Short: "Update the status of a report",
	Long:  "Updates the status of the report with the backend id. Status is one of pending, in-review, under-investigation or completed",
	Args:  cobra.ExactArgs(2), //nolint:mnd // id and status
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newBackend(cmd)
		if err != nil {
			return err
		}
		board := dashboard.NewBoard(client, logging.NewLogger(cmd.ErrOrStderr(), slog.LevelWarn, nil))
		if err = board.UpdateStatus(cmd.Context(), args[0], args[1]); err != nil {
			return errors.Wrap(err, "set status")
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "report %s is now %s\n", args[0], args[1])
		return nil
	},
}

var Status = &cobra.Command{
	Use:     "status <tracking-id>",
	GroupID: "reports",
	Short:   "Show the progress of a report",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newBackend(cmd)
		if err != nil {
			return err
		}
		t := tracker.New(client, logging.NewLogger(cmd.ErrOrStderr(), slog.LevelWarn, nil))
		st, err := t.FetchStatus(cmd.Context(), args[0])
		if err != nil {
			return errors.Wrap(err, "fetch status")
		}
		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(out, "%s: %s\n", st.Report.UniqueID, st.Report.Status.Label())
		for _, stage := range st.Timeline {
			_, _ = fmt.Fprintf(out, "%d. [%s] %s: %s\n", stage.Number, stage.State, stage.Title, stage.Description)
		}
		return nil
	},
}
