package main

import (
	"github.com/fjacquet/backup_client/internal/backupapi"
	"github.com/fjacquet/backup_client/internal/models"
	"github.com/spf13/cobra"
)

var (
	actionListColumns = []string{"Action ID", "Name", "Action", "Path to Backup or Restore", "Mode", "Storage", "Snapshot"}
	actionShowColumns = []string{"Action ID", "Name", "Action", "Mode", "Path to Backup or Restore", "Storage", "Snapshot"}
)

func actions(c *backupapi.Client) *backupapi.Manager { return c.Actions }

// Unset freezer_action fields show the agent defaults.
func actionListRow(doc models.Document) []interface{} {
	return []interface{}{
		field(doc, "action_id"),
		field(doc, "freezer_action", "backup_name"),
		fieldOr(doc, "backup", "freezer_action", "action"),
		field(doc, "freezer_action", "path_to_backup"),
		fieldOr(doc, "fs", "freezer_action", "mode"),
		fieldOr(doc, "swift", "freezer_action", "storage"),
		fieldOr(doc, "False", "freezer_action", "snapshot"),
	}
}

func actionShowRow(doc models.Document) []interface{} {
	row := actionListRow(doc)
	// show lists the mode before the path
	row[3], row[4] = row[4], row[3]
	return row
}

func newActionCommands(a *app) []*cobra.Command {
	return []*cobra.Command{
		newListCommand(a, "action-list", "List actions", actions, actionListColumns, actionListRow),
		newShowCommand(a, "action-show", "Show a single action", "Action", actions, actionShowColumns, actionShowRow),
		newCreateCommand(a, "action-create", "Create an action from a file", "Action", actions, "created"),
		newUpdateCommand(a, "action-update", "Update an action from a file", "Action", actions),
		newDeleteCommand(a, "action-delete", "Delete an action", "Action", actions),
	}
}
