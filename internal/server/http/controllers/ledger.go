package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/rzbill/vesta/internal/runtime"
	streamsvc "github.com/rzbill/vesta/internal/services/streams"
)

// LedgerController handles ledger administration and the emitted-record feed.
type LedgerController struct {
	rt *runtime.Runtime
	st *streamsvc.Service
}

// NewLedgerController creates a new ledger controller.
func NewLedgerController(rt *runtime.Runtime, svc *streamsvc.Service) *LedgerController {
	return &LedgerController{rt: rt, st: svc}
}

// RegisterRoutes registers ledger routes with the given mux.
func (c *LedgerController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/ledger", c.handleShow)
	mux.HandleFunc("/v1/ledger/fee", c.handleSetFee)
	mux.HandleFunc("/v1/ledger/withdraw", c.handleWithdraw)
	mux.HandleFunc("/v1/ledger/migrate", c.handleMigrate)
	mux.HandleFunc("/v1/events", c.handleEvents)
}

// handleShow returns the controller state: version, claim fee, treasury.
func (c *LedgerController) handleShow(w http.ResponseWriter, r *http.Request) {
	view, err := c.st.Ledger(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load ledger")
		return
	}
	writeJSON(w, view)
}

type setFeeReq struct {
	Fee uint64 `json:"fee"`
}

// handleSetFee updates the fee charged on subsequent claims.
func (c *LedgerController) handleSetFee(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	var req setFeeReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	view, err := c.st.SetClaimFee(r.Context(), req.Fee)
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, view)
}

// handleWithdraw drains the treasury and reports the drained amount.
func (c *LedgerController) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	amount, err := c.st.WithdrawTreasury(r.Context())
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, map[string]uint64{"amount": amount})
}

type migrateReq struct {
	Version uint64 `json:"version"`
}

// handleMigrate sets the controller's protocol version.
func (c *LedgerController) handleMigrate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	var req migrateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	view, err := c.st.MigrateVersion(r.Context(), req.Version)
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, view)
}

// handleEvents returns emitted records. Accepts `start` (first sequence,
// inclusive), `limit`, and `filter` (CEL expression) query parameters.
func (c *LedgerController) handleEvents(w http.ResponseWriter, r *http.Request) {
	events, err := c.st.Events(r.Context(),
		queryUint64(r, "start", 0),
		queryInt(r, "limit", 0),
		r.URL.Query().Get("filter"),
	)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, map[string]any{"events": events})
}
