package main

import (
	"github.com/fjacquet/backup_client/internal/backupapi"
	"github.com/fjacquet/backup_client/internal/models"
	"github.com/fjacquet/backup_client/internal/utils"
	"github.com/spf13/cobra"
)

var (
	backupListColumns = []string{"Backup ID", "Backup UUID", "Hostname", "Path", "Created at", "Level"}
	backupShowColumns = []string{"Backup ID", "Metadata"}
)

func backups(c *backupapi.Client) *backupapi.Manager { return c.Backups }

func backupListRow(b models.Document) []interface{} {
	return []interface{}{
		field(b, "backup_id"),
		field(b, "backup_uuid"),
		field(b, "backup_metadata", "hostname"),
		field(b, "backup_metadata", "path_to_backup"),
		utils.FormatTimestamp(field(b, "backup_metadata", "time_stamp"), nil),
		field(b, "backup_metadata", "curr_backup_level"),
	}
}

func backupShowRow(b models.Document) []interface{} {
	return []interface{}{
		fieldOr(b, field(b, "backup_id"), "backup_uuid"),
		field(b, "backup_metadata"),
	}
}

func newBackupCommands(a *app) []*cobra.Command {
	return []*cobra.Command{
		newListCommand(a, "backup-list", "List backups", backups, backupListColumns, backupListRow),
		newShowCommand(a, "backup-show", "Show the metadata of a single backup", "Backup", backups, backupShowColumns, backupShowRow),
		newDeleteCommand(a, "backup-delete", "Delete a backup", "Backup", backups),
	}
}
