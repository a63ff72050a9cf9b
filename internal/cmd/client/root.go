package client

import (
	"github.com/spf13/cobra"
)

// NewRoot constructs a root Cobra command for the Vesta client.
// It registers the stream, ledger, and events command groups.
func NewRoot(baseURL BaseURLFunc) *cobra.Command {
	root := &cobra.Command{
		Use:   "vesta",
		Short: "Vesta client commands",
	}
	root.AddCommand(NewStreamCommand(baseURL))
	root.AddCommand(NewLedgerCommand(baseURL))
	root.AddCommand(NewEventsCommand(baseURL))
	return root
}
