package client

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	streamsvc "github.com/rzbill/vesta/internal/services/streams"
	"github.com/spf13/cobra"
)

// NewLedgerCommand constructs the `ledger` command group and subcommands.
func NewLedgerCommand(baseURL BaseURLFunc) *cobra.Command {
	ledgerCmd := &cobra.Command{Use: "ledger", Short: "Ledger administration"}

	ledgerCmd.AddCommand(
		newLedgerShowCommand(baseURL),
		newLedgerSetFeeCommand(baseURL),
		newLedgerWithdrawCommand(baseURL),
		newLedgerMigrateCommand(baseURL),
	)

	return ledgerCmd
}

// newLedgerShowCommand constructs the `ledger show` subcommand.
func newLedgerShowCommand(baseURL BaseURLFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show protocol version, claim fee, and treasury",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var view streamsvc.LedgerView
			if err := getJSON(cmd.Context(), baseURL()+"/v1/ledger", &view); err != nil {
				return err
			}
			return json.NewEncoder(cmd.OutOrStdout()).Encode(view)
		},
	}
}

// newLedgerSetFeeCommand constructs the `ledger set-fee` subcommand.
func newLedgerSetFeeCommand(baseURL BaseURLFunc) *cobra.Command {
	setFeeCmd := &cobra.Command{
		Use:   "set-fee",
		Short: "Update the claim fee",
		RunE: func(cmd *cobra.Command, _ []string) error {
			fee, _ := cmd.Flags().GetUint64("fee")
			var view streamsvc.LedgerView
			if err := postJSON(cmd.Context(), baseURL()+"/v1/ledger/fee", map[string]uint64{"fee": fee}, &view); err != nil {
				return err
			}
			return json.NewEncoder(cmd.OutOrStdout()).Encode(view)
		},
	}
	setFeeCmd.Flags().Uint64("fee", 0, "New claim fee")
	return setFeeCmd
}

// newLedgerWithdrawCommand constructs the `ledger withdraw` subcommand.
func newLedgerWithdrawCommand(baseURL BaseURLFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "withdraw",
		Short: "Drain the treasury",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var out struct {
				Amount uint64 `json:"amount"`
			}
			if err := postJSON(cmd.Context(), baseURL()+"/v1/ledger/withdraw", nil, &out); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "withdrawn:", out.Amount)
			return nil
		},
	}
}

// newLedgerMigrateCommand constructs the `ledger migrate` subcommand.
func newLedgerMigrateCommand(baseURL BaseURLFunc) *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Set the ledger's protocol version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			version, _ := cmd.Flags().GetUint64("version")
			var view streamsvc.LedgerView
			if err := postJSON(cmd.Context(), baseURL()+"/v1/ledger/migrate", map[string]uint64{"version": version}, &view); err != nil {
				return err
			}
			return json.NewEncoder(cmd.OutOrStdout()).Encode(view)
		},
	}
	migrateCmd.Flags().Uint64("version", 0, "Target protocol version")
	return migrateCmd
}

// NewEventsCommand constructs the `events` command.
func NewEventsCommand(baseURL BaseURLFunc) *cobra.Command {
	eventsCmd := &cobra.Command{
		Use:   "events",
		Short: "Read emitted records",
		RunE: func(cmd *cobra.Command, _ []string) error {
			start, _ := cmd.Flags().GetUint64("start")
			limit, _ := cmd.Flags().GetInt("limit")
			filter, _ := cmd.Flags().GetString("filter")

			q := url.Values{}
			if start > 0 {
				q.Set("start", strconv.FormatUint(start, 10))
			}
			if limit > 0 {
				q.Set("limit", strconv.Itoa(limit))
			}
			if filter != "" {
				q.Set("filter", filter)
			}
			target := baseURL() + "/v1/events"
			if len(q) > 0 {
				target += "?" + q.Encode()
			}
			var out struct {
				Events []streamsvc.EventView `json:"events"`
			}
			if err := getJSON(cmd.Context(), target, &out); err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, ev := range out.Events {
				_ = enc.Encode(ev)
			}
			return nil
		},
	}
	eventsCmd.Flags().Uint64("start", 0, "First sequence to return (inclusive)")
	eventsCmd.Flags().Int("limit", 0, "Max records to return (0 = server default)")
	eventsCmd.Flags().String("filter", "", "CEL filter (server-side)")
	return eventsCmd
}
