package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/autocal/internal/calendar"
	"github.com/roach88/autocal/internal/config"
	"github.com/roach88/autocal/internal/conflict"
	"github.com/roach88/autocal/internal/event"
	"github.com/roach88/autocal/internal/store"
)

// draftFlags are the event fields shared by add, update, and conflicts.
type draftFlags struct {
	Title        string
	Datetime     string
	Duration     int
	Priority     string
	Participants []string
	Location     string
	Description  string
}

func (d *draftFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&d.Title, "title", "", "event title")
	cmd.Flags().StringVar(&d.Datetime, "datetime", "", "event start (RFC 3339, e.g. 2025-03-10T13:00:00Z)")
	cmd.Flags().IntVar(&d.Duration, "duration", 0, "duration in minutes (default 60)")
	cmd.Flags().StringVar(&d.Priority, "priority", "", "priority (low|medium|high)")
	cmd.Flags().StringSliceVar(&d.Participants, "participant", nil, "participant name (repeatable)")
	cmd.Flags().StringVar(&d.Location, "location", "", "event location")
	cmd.Flags().StringVar(&d.Description, "description", "", "event description")
}

// draft builds an event.Draft from the flags that were actually set.
func (d *draftFlags) draft(cmd *cobra.Command) event.Draft {
	draft := event.Draft{Title: d.Title, Datetime: d.Datetime}
	if cmd.Flags().Changed("duration") {
		draft.Duration = &d.Duration
	}
	if cmd.Flags().Changed("priority") {
		draft.Priority = &d.Priority
	}
	if cmd.Flags().Changed("participant") {
		draft.Participants = d.Participants
	}
	if cmd.Flags().Changed("location") {
		draft.Location = &d.Location
	}
	if cmd.Flags().Changed("description") {
		draft.Description = &d.Description
	}
	return draft
}

// patch builds an event.Patch from the flags that were actually set.
func (d *draftFlags) patch(cmd *cobra.Command) event.Patch {
	var p event.Patch
	if cmd.Flags().Changed("title") {
		p.Title = &d.Title
	}
	if cmd.Flags().Changed("datetime") {
		p.Datetime = &d.Datetime
	}
	if cmd.Flags().Changed("duration") {
		p.Duration = &d.Duration
	}
	if cmd.Flags().Changed("priority") {
		p.Priority = &d.Priority
	}
	if cmd.Flags().Changed("participant") {
		p.Participants = d.Participants
	}
	if cmd.Flags().Changed("location") {
		p.Location = &d.Location
	}
	if cmd.Flags().Changed("description") {
		p.Description = &d.Description
	}
	return p
}

// openRegistry opens the configured database and wraps it in a registry.
// The caller must Close the returned store.
func openRegistry(opts *RootOptions) (*store.Store, *calendar.Registry, error) {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "load config", err)
	}
	if opts.DB != "" {
		cfg.DatabasePath = opts.DB
	}

	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "open database", err)
	}
	return st, calendar.NewRegistry(st, calendar.WithLogger(newLogger("warn", opts.Verbose))), nil
}

func formatter(opts *RootOptions) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    os.Stdout,
		ErrWriter: os.Stderr,
		Verbose:   opts.Verbose,
	}
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &draftFlags{}
	var force bool

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an event, rejecting schedule conflicts unless --force",
		Long: `Add an event to the session's calendar.

If the event overlaps an existing one, nothing is stored and the
conflicts are printed; pass --force to store it anyway.

Example:
  autocal add --title Lunch --datetime 2025-03-10T13:00:00Z --duration 60`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, reg, err := openRegistry(rootOpts)
			if err != nil {
				return err
			}
			defer st.Close()

			out := formatter(rootOpts)
			result, err := reg.Calendar(rootOpts.Session).AddEvent(cmd.Context(), flags.draft(cmd), force)
			if err != nil {
				return reportError(out, err)
			}

			if !result.Created() {
				out.Error(CodeConflicts,
					fmt.Sprintf("%d conflict(s) detected; re-run with --force to add anyway", len(result.Conflicts)),
					result.Conflicts)
				return WrapExitError(ExitFailure, "conflicts detected", nil)
			}

			if rootOpts.Format == "json" {
				return out.Success(result)
			}
			return out.Success(fmt.Sprintf("Added event %s (%s)", result.Event.ID, result.Event.Title))
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&force, "force", false, "add the event even if it conflicts")

	return cmd
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List the session's events, ascending by start time",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, reg, err := openRegistry(rootOpts)
			if err != nil {
				return err
			}
			defer st.Close()

			out := formatter(rootOpts)
			events, err := reg.Calendar(rootOpts.Session).ListEvents(cmd.Context())
			if err != nil {
				return reportError(out, err)
			}

			if rootOpts.Format == "json" {
				return out.Success(events)
			}
			if len(events) == 0 {
				return out.Success("No events")
			}
			var b strings.Builder
			for _, ev := range events {
				fmt.Fprintf(&b, "%s  %s  %4dm  %s\n",
					ev.ID, ev.Datetime.UTC().Format("2006-01-02 15:04"), ev.Duration, ev.Title)
			}
			return out.Success(strings.TrimRight(b.String(), "\n"))
		},
	}
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "delete <event-id>",
		Short:         "Delete an event by id",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, reg, err := openRegistry(rootOpts)
			if err != nil {
				return err
			}
			defer st.Close()

			out := formatter(rootOpts)
			removed, err := reg.Calendar(rootOpts.Session).DeleteEvent(cmd.Context(), args[0])
			if err != nil {
				return reportError(out, err)
			}

			if rootOpts.Format == "json" {
				return out.Success(removed)
			}
			return out.Success(fmt.Sprintf("Deleted event %s (%s)", removed.ID, removed.Title))
		},
	}
}

// NewUpdateCommand creates the update command.
func NewUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &draftFlags{}

	cmd := &cobra.Command{
		Use:   "update <event-id>",
		Short: "Update fields of an existing event",
		Long: `Update fields of an existing event.

Only the flags you set are changed; everything else keeps its stored
value. The merged event is re-validated before anything is written.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, reg, err := openRegistry(rootOpts)
			if err != nil {
				return err
			}
			defer st.Close()

			out := formatter(rootOpts)
			updated, err := reg.Calendar(rootOpts.Session).UpdateEvent(cmd.Context(), args[0], flags.patch(cmd))
			if err != nil {
				return reportError(out, err)
			}

			if rootOpts.Format == "json" {
				return out.Success(updated)
			}
			return out.Success(fmt.Sprintf("Updated event %s (%s)", updated.ID, updated.Title))
		},
	}

	flags.register(cmd)

	return cmd
}

// NewConflictsCommand creates the conflicts command.
func NewConflictsCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &draftFlags{}
	var audit bool

	cmd := &cobra.Command{
		Use:   "conflicts",
		Short: "Check a candidate event against the schedule, or audit the whole schedule",
		Long: `Check a candidate event against the stored schedule without adding it.

With --audit, ignore the candidate flags and scan the whole schedule
pairwise for overlapping events instead.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, reg, err := openRegistry(rootOpts)
			if err != nil {
				return err
			}
			defer st.Close()

			out := formatter(rootOpts)
			cal := reg.Calendar(rootOpts.Session)

			var conflicts []conflict.Conflict
			if audit {
				conflicts, err = cal.AuditConflicts(cmd.Context())
			} else {
				conflicts, err = cal.CheckConflicts(cmd.Context(), flags.draft(cmd))
			}
			if err != nil {
				return reportError(out, err)
			}

			if rootOpts.Format == "json" {
				return out.Success(conflicts)
			}
			if len(conflicts) == 0 {
				return out.Success("No conflicts")
			}
			var b strings.Builder
			for _, c := range conflicts {
				fmt.Fprintf(&b, "overlaps %q from %s to %s\n",
					c.ConflictingEvent.Title,
					c.OverlapStart.UTC().Format("15:04"),
					c.OverlapEnd.UTC().Format("15:04"))
				for _, s := range c.Suggestions {
					fmt.Fprintf(&b, "  - %s\n", s)
				}
			}
			return out.Success(strings.TrimRight(b.String(), "\n"))
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&audit, "audit", false, "scan the whole schedule for conflicting pairs")

	return cmd
}

// reportError prints the error through the formatter with its taxonomy code
// and converts it into an ExitError so the process exits non-zero.
func reportError(out *OutputFormatter, err error) error {
	switch {
	case event.IsValidation(err):
		out.Error(CodeValidation, err.Error(), nil)
		return WrapExitError(ExitFailure, "validation failed", err)
	case errors.Is(err, store.ErrNotFound):
		out.Error(CodeNotFound, "event not found", nil)
		return WrapExitError(ExitFailure, "not found", err)
	default:
		out.Error(CodeStorage, err.Error(), nil)
		return WrapExitError(ExitCommandError, "storage failure", err)
	}
}
