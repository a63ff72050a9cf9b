package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/rzbill/vesta/internal/runtime"
	streamsvc "github.com/rzbill/vesta/internal/services/streams"
)

// StreamsController handles all stream lifecycle HTTP endpoints.
//
// It provides a RESTful interface over the vesting stream operations:
// creation, claiming, destruction, and read models with optional CEL
// filtering on listings.
type StreamsController struct {
	rt *runtime.Runtime
	st *streamsvc.Service
}

// NewStreamsController creates a new streams controller.
func NewStreamsController(rt *runtime.Runtime, svc *streamsvc.Service) *StreamsController {
	return &StreamsController{rt: rt, st: svc}
}

// RegisterRoutes registers all stream-related routes with the given mux.
func (c *StreamsController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/streams", c.handleList)
	mux.HandleFunc("/v1/streams/create", c.handleCreate)
	mux.HandleFunc("/v1/streams/claim", c.handleClaim)
	mux.HandleFunc("/v1/streams/transfer", c.handleTransfer)
	mux.HandleFunc("/v1/streams/destroy", c.handleDestroy)
	mux.HandleFunc("/v1/streams/get", c.handleGet)
}

// handleList lists streams in creation order. Accepts `filter` (CEL
// expression) and `limit` query parameters.
func (c *StreamsController) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := c.st.ListStreams(r.Context(), r.URL.Query().Get("filter"), queryInt(r, "limit", 0))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, map[string]any{"streams": list})
}

// handleCreate creates a new vesting stream from an escrowed deposit.
func (c *StreamsController) handleCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	var req streamsvc.CreateStreamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	view, err := c.st.CreateStream(r.Context(), req)
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeCreated(w, view)
}

type claimReq struct {
	StreamID   string `json:"streamId"`
	FeePayment uint64 `json:"feePayment"`
	ClaimedBy  string `json:"claimedBy"`
}

// handleClaim transfers everything currently claimable to the stream owner.
func (c *StreamsController) handleClaim(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	var req claimReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	res, err := c.st.Claim(r.Context(), req.StreamID, req.FeePayment, req.ClaimedBy)
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, res)
}

type transferReq struct {
	StreamID string `json:"streamId"`
	NewOwner string `json:"newOwner"`
}

// handleTransfer reassigns the stream's owner.
func (c *StreamsController) handleTransfer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	var req transferReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	view, err := c.st.TransferStream(r.Context(), req.StreamID, req.NewOwner)
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, view)
}

type destroyReq struct {
	StreamID    string `json:"streamId"`
	DestroyedBy string `json:"destroyedBy"`
}

// handleDestroy deallocates a fully claimed stream.
func (c *StreamsController) handleDestroy(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	var req destroyReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := c.st.Destroy(r.Context(), req.StreamID, req.DestroyedBy); err != nil {
		writeOpError(w, err)
		return
	}
	writeNoContent(w)
}

// handleGet returns one stream's read model at the current instant.
func (c *StreamsController) handleGet(w http.ResponseWriter, r *http.Request) {
	view, err := c.st.GetStream(r.Context(), r.URL.Query().Get("id"))
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, view)
}
