// Package client provides the `vesta` command-line client.
//
// The CLI talks to the Vesta HTTP endpoints to perform stream and ledger
// operations from a terminal. It is primarily intended for developers and
// operators.
//
// Installation
//
//	go install github.com/rzbill/vesta/cmd/vesta@latest
//
// Or build from this repo and use the embedded `vesta` binary.
//
// # Address configuration
//
// The HTTP base URL is discovered by the application that embeds the
// commands via a BaseURLFunc. When using the standalone binary, it is read
// from the VESTA_HTTP environment variable and defaults to
// http://127.0.0.1:8080.
//
// Usage
//
//	vesta stream create \
//	    --sender alice --owner bob --token USDC \
//	    --deposit 1000000 --start-ms 1760000000000 \
//	    --segment 1000000:1:31536000000
//
//	vesta stream get --id STREAM_ID
//	vesta stream list --filter 'token == "USDC" && balance > 0u'
//
//	vesta stream claim --id STREAM_ID --fee 250000000 --by bob
//	vesta stream transfer --id STREAM_ID --to carol
//	vesta stream destroy --id STREAM_ID --by alice
//
//	vesta ledger show
//	vesta ledger set-fee --fee 250000000
//	vesta ledger withdraw
//	vesta ledger migrate --version 2
//
//	vesta events --start 1 --limit 50 --filter 'event_type == "stream_claimed"'
//
// Notes
//
//   - stream create accepts repeated --segment flags in
//     amount:exponent:durationMs form; segments vest in order and their
//     amounts must sum to --deposit.
//   - claim requires the fee to match the ledger's current claim fee
//     exactly; query it with `vesta ledger show`.
package client
