package main

import (
	"github.com/fjacquet/backup_client/internal/backupapi"
	"github.com/fjacquet/backup_client/internal/models"
	"github.com/spf13/cobra"
)

var (
	clientListColumns = []string{"Client ID", "uuid", "hostname", "description"}
	clientShowColumns = []string{"Client ID", "Client UUID", "hostname", "description"}
)

func clients(c *backupapi.Client) *backupapi.Manager { return c.Clients }

// Client documents wrap the registration under a "client" key.
func clientRow(doc models.Document) []interface{} {
	return []interface{}{
		field(doc, "client", "client_id"),
		field(doc, "client", "uuid"),
		field(doc, "client", "hostname"),
		field(doc, "client", "description"),
	}
}

func newClientCommands(a *app) []*cobra.Command {
	return []*cobra.Command{
		newListCommand(a, "client-list", "List the clients registered in the API", clients, clientListColumns, clientRow),
		newShowCommand(a, "client-show", "Show a single client", "Client", clients, clientShowColumns, clientRow),
		newCreateCommand(a, "client-register", "Register a new client from a file", "Client", clients, "registered"),
		newDeleteCommand(a, "client-delete", "Delete a client", "Client", clients),
	}
}
