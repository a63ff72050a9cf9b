// Package client contains Cobra CLI commands for Vesta.
package client

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	streamsvc "github.com/rzbill/vesta/internal/services/streams"
	"github.com/spf13/cobra"
)

// BaseURLFunc provides the base HTTP API URL (e.g., from env or flag).
type BaseURLFunc func() string

// NewStreamCommand constructs the `stream` command group and subcommands.
func NewStreamCommand(baseURL BaseURLFunc) *cobra.Command {
	streamCmd := &cobra.Command{Use: "stream", Short: "Stream operations"}

	streamCmd.AddCommand(
		newStreamCreateCommand(baseURL),
		newStreamClaimCommand(baseURL),
		newStreamTransferCommand(baseURL),
		newStreamDestroyCommand(baseURL),
		newStreamGetCommand(baseURL),
		newStreamListCommand(baseURL),
	)

	return streamCmd
}

// parseSegment decodes one --segment flag in amount:exponent:durationMs form.
func parseSegment(s string) (streamsvc.SegmentSpec, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return streamsvc.SegmentSpec{}, fmt.Errorf("invalid --segment %q; expected amount:exponent:durationMs", s)
	}
	amount, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return streamsvc.SegmentSpec{}, fmt.Errorf("invalid segment amount %q", parts[0])
	}
	exponent, err := strconv.ParseUint(parts[1], 10, 8)
	if err != nil {
		return streamsvc.SegmentSpec{}, fmt.Errorf("invalid segment exponent %q", parts[1])
	}
	duration, err := strconv.ParseUint(parts[2], 10, 64)
	if err != nil {
		return streamsvc.SegmentSpec{}, fmt.Errorf("invalid segment duration %q", parts[2])
	}
	return streamsvc.SegmentSpec{Amount: amount, Exponent: uint8(exponent), DurationMs: duration}, nil
}

// newStreamCreateCommand constructs the `stream create` subcommand.
func newStreamCreateCommand(baseURL BaseURLFunc) *cobra.Command {
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a vesting stream",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sender, _ := cmd.Flags().GetString("sender")
			owner, _ := cmd.Flags().GetString("owner")
			token, _ := cmd.Flags().GetString("token")
			deposit, _ := cmd.Flags().GetUint64("deposit")
			startMs, _ := cmd.Flags().GetUint64("start-ms")
			cliffMs, _ := cmd.Flags().GetUint64("cliff-ms")
			rawSegs, _ := cmd.Flags().GetStringArray("segment")

			segments := make([]streamsvc.SegmentSpec, 0, len(rawSegs))
			for _, raw := range rawSegs {
				seg, err := parseSegment(raw)
				if err != nil {
					return err
				}
				segments = append(segments, seg)
			}
			req := streamsvc.CreateStreamRequest{
				Sender:      sender,
				Owner:       owner,
				Token:       token,
				Deposit:     deposit,
				StartTimeMs: startMs,
				CliffMs:     cliffMs,
				Segments:    segments,
			}
			var view streamsvc.StreamView
			if err := postJSON(cmd.Context(), baseURL()+"/v1/streams/create", req, &view); err != nil {
				return err
			}
			return json.NewEncoder(cmd.OutOrStdout()).Encode(view)
		},
	}
	createCmd.Flags().String("sender", "", "Stream funder")
	createCmd.Flags().String("owner", "", "Stream beneficiary")
	createCmd.Flags().String("token", "", "Vested token identifier")
	createCmd.Flags().Uint64("deposit", 0, "Escrowed deposit amount")
	createCmd.Flags().Uint64("start-ms", 0, "Start time (Unix ms)")
	createCmd.Flags().Uint64("cliff-ms", 0, "Cliff duration from start (ms)")
	createCmd.Flags().StringArray("segment", nil, "Curve segment amount:exponent:durationMs (repeatable)")
	return createCmd
}

// newStreamClaimCommand constructs the `stream claim` subcommand.
func newStreamClaimCommand(baseURL BaseURLFunc) *cobra.Command {
	claimCmd := &cobra.Command{
		Use:   "claim",
		Short: "Claim the vested balance of a stream",
		RunE: func(cmd *cobra.Command, _ []string) error {
			streamID, _ := cmd.Flags().GetString("id")
			fee, _ := cmd.Flags().GetUint64("fee")
			by, _ := cmd.Flags().GetString("by")

			body := map[string]any{"streamId": streamID, "feePayment": fee, "claimedBy": by}
			var res streamsvc.ClaimResult
			if err := postJSON(cmd.Context(), baseURL()+"/v1/streams/claim", body, &res); err != nil {
				return err
			}
			return json.NewEncoder(cmd.OutOrStdout()).Encode(res)
		},
	}
	claimCmd.Flags().String("id", "", "Stream ID")
	claimCmd.Flags().Uint64("fee", 0, "Fee payment (must equal the ledger's claim fee)")
	claimCmd.Flags().String("by", "", "Claimer identity")
	return claimCmd
}

// newStreamTransferCommand constructs the `stream transfer` subcommand.
func newStreamTransferCommand(baseURL BaseURLFunc) *cobra.Command {
	transferCmd := &cobra.Command{
		Use:   "transfer",
		Short: "Transfer a stream to a new owner",
		RunE: func(cmd *cobra.Command, _ []string) error {
			streamID, _ := cmd.Flags().GetString("id")
			to, _ := cmd.Flags().GetString("to")

			body := map[string]any{"streamId": streamID, "newOwner": to}
			var view streamsvc.StreamView
			if err := postJSON(cmd.Context(), baseURL()+"/v1/streams/transfer", body, &view); err != nil {
				return err
			}
			return json.NewEncoder(cmd.OutOrStdout()).Encode(view)
		},
	}
	transferCmd.Flags().String("id", "", "Stream ID")
	transferCmd.Flags().String("to", "", "New owner identity")
	return transferCmd
}

// newStreamDestroyCommand constructs the `stream destroy` subcommand.
func newStreamDestroyCommand(baseURL BaseURLFunc) *cobra.Command {
	destroyCmd := &cobra.Command{
		Use:   "destroy",
		Short: "Destroy a fully claimed stream",
		RunE: func(cmd *cobra.Command, _ []string) error {
			streamID, _ := cmd.Flags().GetString("id")
			by, _ := cmd.Flags().GetString("by")

			body := map[string]any{"streamId": streamID, "destroyedBy": by}
			if err := postJSON(cmd.Context(), baseURL()+"/v1/streams/destroy", body, nil); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "destroyed:", streamID)
			return nil
		},
	}
	destroyCmd.Flags().String("id", "", "Stream ID")
	destroyCmd.Flags().String("by", "", "Destroyer identity")
	return destroyCmd
}

// newStreamGetCommand constructs the `stream get` subcommand.
func newStreamGetCommand(baseURL BaseURLFunc) *cobra.Command {
	getCmd := &cobra.Command{
		Use:   "get",
		Short: "Show one stream with its vested amounts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			streamID, _ := cmd.Flags().GetString("id")
			var view streamsvc.StreamView
			if err := getJSON(cmd.Context(), baseURL()+"/v1/streams/get?id="+url.QueryEscape(streamID), &view); err != nil {
				return err
			}
			return json.NewEncoder(cmd.OutOrStdout()).Encode(view)
		},
	}
	getCmd.Flags().String("id", "", "Stream ID")
	return getCmd
}

// newStreamListCommand constructs the `stream list` subcommand.
func newStreamListCommand(baseURL BaseURLFunc) *cobra.Command {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List streams in creation order",
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter, _ := cmd.Flags().GetString("filter")
			limit, _ := cmd.Flags().GetInt("limit")

			q := url.Values{}
			if filter != "" {
				q.Set("filter", filter)
			}
			if limit > 0 {
				q.Set("limit", strconv.Itoa(limit))
			}
			target := baseURL() + "/v1/streams"
			if len(q) > 0 {
				target += "?" + q.Encode()
			}
			var out struct {
				Streams []streamsvc.StreamView `json:"streams"`
			}
			if err := getJSON(cmd.Context(), target, &out); err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, view := range out.Streams {
				_ = enc.Encode(view)
			}
			return nil
		},
	}
	listCmd.Flags().String("filter", "", "CEL filter (server-side)")
	listCmd.Flags().Int("limit", 0, "Max streams to return (0 = server default)")
	return listCmd
}
