package main

import (
	"context"

	"github.com/fjacquet/backup_client/internal/backupapi"
	"github.com/fjacquet/backup_client/internal/models"
	"github.com/spf13/cobra"
)

var (
	sessionListColumns = []string{"Session ID", "Description", "Status", "# Jobs"}
	sessionShowColumns = []string{"Session ID", "Description", "Status", "Jobs"}
)

func sessions(c *backupapi.Client) *backupapi.Manager { return c.Sessions.Manager }

func sessionListRow(doc models.Document) []interface{} {
	return []interface{}{
		field(doc, "session_id"),
		field(doc, "description"),
		field(doc, "status"),
		count(field(doc, "jobs")),
	}
}

func sessionShowRow(doc models.Document) []interface{} {
	return []interface{}{
		field(doc, "session_id"),
		field(doc, "description"),
		field(doc, "status"),
		field(doc, "jobs"),
	}
}

func newSessionCommands(a *app) []*cobra.Command {
	return []*cobra.Command{
		newListCommand(a, "session-list", "List sessions", sessions, sessionListColumns, sessionListRow),
		newShowCommand(a, "session-show", "Show a single session", "Session", sessions, sessionShowColumns, sessionShowRow),
		newCreateCommand(a, "session-create", "Create a session from a file", "Session", sessions, "created"),
		newUpdateCommand(a, "session-update", "Update a session from a file", "Session", sessions),
		newSessionDeleteCommand(a),
		newSessionJobCommand(a, "session-add-job", "Add a job to a session", "added to", (*backupapi.SessionManager).AddJob),
		newSessionJobCommand(a, "session-remove-job", "Remove a job from a session", "removed from", (*backupapi.SessionManager).RemoveJob),
		newSessionStartCommand(a),
		newSessionEndCommand(a),
	}
}

// existingSession fails with a not-found error when the session is gone.
func existingSession(ctx context.Context, c *backupapi.Client, id string) error {
	doc, err := c.Sessions.Get(ctx, id)
	if err != nil {
		return err
	}
	if doc == nil {
		return notFound("Session", id)
	}
	return nil
}

func newSessionDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "session-delete ID",
		Short: "Delete a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.backupClient()
			if err != nil {
				return err
			}
			if err := existingSession(cmd.Context(), c, args[0]); err != nil {
				return err
			}
			if err := c.Sessions.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			a.printer().message("Session %s deleted", args[0])
			return nil
		},
	}
}

type sessionJobFunc func(m *backupapi.SessionManager, ctx context.Context, sessionID, jobID string) error

func newSessionJobCommand(a *app, use, short, verb string, apply sessionJobFunc) *cobra.Command {
	var sessionID, jobID string
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.backupClient()
			if err != nil {
				return err
			}
			if err := apply(c.Sessions, cmd.Context(), sessionID, jobID); err != nil {
				return err
			}
			a.printer().message("Job %s %s session %s", jobID, verb, sessionID)
			return nil
		},
	}
	cmd.Flags().StringVar(&sessionID, "session-id", "", "ID of the session")
	cmd.Flags().StringVar(&jobID, "job-id", "", "ID of the job")
	_ = cmd.MarkFlagRequired("session-id")
	_ = cmd.MarkFlagRequired("job-id")
	return cmd
}

// sessionActionFlags are shared by session-start and session-end.
type sessionActionFlags struct {
	sessionID string
	jobID     string
	jobTag    string
}

func (f *sessionActionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.sessionID, "session-id", "", "ID of the session")
	cmd.Flags().StringVar(&f.jobID, "job-id", "", "ID of the job")
	cmd.Flags().StringVar(&f.jobTag, "job-tag", "", "Job tag value")
	_ = cmd.MarkFlagRequired("session-id")
	_ = cmd.MarkFlagRequired("job-id")
	_ = cmd.MarkFlagRequired("job-tag")
}

func newSessionStartCommand(a *app) *cobra.Command {
	var flags sessionActionFlags
	cmd := &cobra.Command{
		Use:   "session-start",
		Short: "Start a session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.backupClient()
			if err != nil {
				return err
			}
			if err := existingSession(cmd.Context(), c, flags.sessionID); err != nil {
				return err
			}
			resp, err := c.Sessions.StartSession(cmd.Context(), flags.sessionID, flags.jobID, flags.jobTag)
			if err != nil {
				return err
			}
			a.printer().message("Session %s start requested: %s", flags.sessionID, cell(resp))
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newSessionEndCommand(a *app) *cobra.Command {
	var (
		flags  sessionActionFlags
		result string
	)
	cmd := &cobra.Command{
		Use:   "session-end",
		Short: "End a session, reporting the job result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.backupClient()
			if err != nil {
				return err
			}
			if err := existingSession(cmd.Context(), c, flags.sessionID); err != nil {
				return err
			}
			resp, err := c.Sessions.EndSession(cmd.Context(), flags.sessionID, flags.jobID, flags.jobTag, result)
			if err != nil {
				return err
			}
			a.printer().message("Session %s end requested: %s", flags.sessionID, cell(resp))
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&result, "result", "success", "Job result reported to the session")
	return cmd
}
