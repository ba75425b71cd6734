package main

import (
	"context"

	"github.com/fjacquet/backup_client/internal/backupapi"
	"github.com/fjacquet/backup_client/internal/models"
	"github.com/fjacquet/backup_client/internal/utils"
	"github.com/spf13/cobra"
)

var (
	jobListColumns = []string{"Job ID", "Description", "# Actions", "Result", "Status", "Event", "Session ID"}
	jobShowColumns = []string{"Job ID", "Client ID", "User ID", "Session ID", "Description", "Actions", "Start Date", "End Date", "Interval"}
)

func jobs(c *backupapi.Client) *backupapi.Manager { return c.Jobs.Manager }

func jobListRow(job models.Document) []interface{} {
	return []interface{}{
		field(job, "job_id"),
		field(job, "description"),
		count(field(job, "job_actions")),
		field(job, "job_schedule", "result"),
		field(job, "job_schedule", "status"),
		field(job, "job_schedule", "event"),
		field(job, "session_id"),
	}
}

func jobShowRow(job models.Document) []interface{} {
	return []interface{}{
		field(job, "job_id"),
		field(job, "client_id"),
		field(job, "user_id"),
		field(job, "session_id"),
		field(job, "description"),
		field(job, "job_actions"),
		field(job, "job_schedule", "schedule_start_date"),
		field(job, "job_schedule", "schedule_end_date"),
		field(job, "job_schedule", "schedule_interval"),
	}
}

func newJobCommands(a *app) []*cobra.Command {
	return []*cobra.Command{
		newJobListCommand(a),
		newShowCommand(a, "job-show", "Show a single job", "Job", jobs, jobShowColumns, jobShowRow),
		newJobGetCommand(a),
		newJobCreateCommand(a),
		newUpdateCommand(a, "job-update", "Update a job from a file", "Job", jobs),
		newDeleteCommand(a, "job-delete", "Delete a job", "Job", jobs),
		newJobEventCommand(a, "job-start", "Send a start event to a job", "Start", (*backupapi.JobManager).StartJob),
		newJobEventCommand(a, "job-stop", "Send a stop event to a job", "Stop", (*backupapi.JobManager).StopJob),
		newJobEventCommand(a, "job-abort", "Send an abort event to a job", "Abort", (*backupapi.JobManager).AbortJob),
	}
}

func newJobListCommand(a *app) *cobra.Command {
	var (
		flags    listFlags
		clientID string
	)
	cmd := &cobra.Command{
		Use:   "job-list",
		Short: "List jobs, optionally for one client",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.backupClient()
			if err != nil {
				return err
			}

			var docs []models.Document
			if clientID != "" {
				docs, err = c.Jobs.List(cmd.Context(), flags.options(), clientID)
			} else {
				docs, err = c.Jobs.ListAll(cmd.Context(), flags.options())
			}
			if err != nil {
				return err
			}
			return a.printer().list(jobListColumns, docs, jobListRow)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&clientID, "client", "C", "", "Only list the jobs of this client")
	return cmd
}

func newJobGetCommand(a *app) *cobra.Command {
	var noFormat bool
	cmd := &cobra.Command{
		Use:   "job-get ID",
		Short: "Print a job document as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.backupClient()
			if err != nil {
				return err
			}
			job, err := c.Jobs.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if job == nil {
				return notFound("Job", args[0])
			}
			return a.printer().rawJSON(job, noFormat)
		},
	}
	cmd.Flags().BoolVar(&noFormat, "no-format", false, "Print the job on one line")
	return cmd
}

func newJobCreateCommand(a *app) *cobra.Command {
	var file, clientID string
	cmd := &cobra.Command{
		Use:   "job-create",
		Short: "Create a job from a file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			job, err := utils.DocFromJSONFile(file)
			if err != nil {
				return err
			}
			if clientID != "" {
				job[models.FieldClientID] = clientID
			}
			c, err := a.backupClient()
			if err != nil {
				return err
			}
			id, err := c.Jobs.Create(cmd.Context(), job)
			if err != nil {
				return err
			}
			a.printer().message("Job %s created", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Path to a JSON file with the job")
	cmd.Flags().StringVarP(&clientID, "client", "C", "", "Client owning the job (default: this host)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

type jobEventFunc func(m *backupapi.JobManager, ctx context.Context, id string) (models.Document, error)

func newJobEventCommand(a *app, use, short, verb string, send jobEventFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use + " ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.backupClient()
			if err != nil {
				return err
			}
			if _, err := send(c.Jobs, cmd.Context(), args[0]); err != nil {
				return err
			}
			a.printer().message("%s request sent for job %s", verb, args[0])
			return nil
		},
	}
}
