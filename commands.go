package main

import (
	"fmt"

	"github.com/fjacquet/backup_client/internal/backupapi"
	"github.com/fjacquet/backup_client/internal/models"
	"github.com/fjacquet/backup_client/internal/telemetry"
	"github.com/fjacquet/backup_client/internal/utils"
	"github.com/spf13/cobra"
)

// managerFunc picks one resource manager off the facade.
type managerFunc func(c *backupapi.Client) *backupapi.Manager

// rowFunc extracts the table cells of one document.
type rowFunc func(doc models.Document) []interface{}

func notFound(resource, id string) error {
	return fmt.Errorf(telemetry.ErrNotFoundTemplate, resource, id)
}

// listFlags are shared by every *-list command.
type listFlags struct {
	limit  int
	offset int
	search string
}

func (f *listFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.limit, "limit", backupapi.DefaultListLimit, "Maximum number of results")
	cmd.Flags().IntVar(&f.offset, "offset", 0, "Number of results to skip")
	cmd.Flags().StringVar(&f.search, "search", "", "Free-text filter for the query")
}

func (f *listFlags) options() backupapi.ListOptions {
	return backupapi.ListOptions{
		Limit:  f.limit,
		Offset: f.offset,
		Search: backupapi.PrepareSearch(f.search),
	}
}

func newListCommand(a *app, use, short string, mgr managerFunc, columns []string, row rowFunc) *cobra.Command {
	var flags listFlags
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.backupClient()
			if err != nil {
				return err
			}
			docs, err := mgr(c).List(cmd.Context(), flags.options())
			if err != nil {
				return err
			}
			return a.printer().list(columns, docs, row)
		},
	}
	flags.register(cmd)
	return cmd
}

func newShowCommand(a *app, use, short, resource string, mgr managerFunc, columns []string, row rowFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use + " ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.backupClient()
			if err != nil {
				return err
			}
			doc, err := mgr(c).Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if doc == nil {
				return notFound(resource, args[0])
			}
			return a.printer().show(columns, row(doc), doc)
		},
	}
}

func newDeleteCommand(a *app, use, short, resource string, mgr managerFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use + " ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.backupClient()
			if err != nil {
				return err
			}
			if err := mgr(c).Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			a.printer().message("%s %s deleted", resource, args[0])
			return nil
		},
	}
}

func newCreateCommand(a *app, use, short, resource string, mgr managerFunc, verb string) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := utils.DocFromJSONFile(file)
			if err != nil {
				return err
			}
			c, err := a.backupClient()
			if err != nil {
				return err
			}
			id, err := mgr(c).Create(cmd.Context(), doc)
			if err != nil {
				return err
			}
			a.printer().message("%s %s %s", resource, id, verb)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Path to a JSON file with the document")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newUpdateCommand(a *app, use, short, resource string, mgr managerFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use + " ID FILE",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := utils.DocFromJSONFile(args[1])
			if err != nil {
				return err
			}
			c, err := a.backupClient()
			if err != nil {
				return err
			}
			version, err := mgr(c).Update(cmd.Context(), args[0], patch)
			if err != nil {
				return err
			}
			a.printer().message("%s %s updated (version %d)", resource, args[0], version)
			return nil
		},
	}
}
