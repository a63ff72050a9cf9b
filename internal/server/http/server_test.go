package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	cfgpkg "github.com/rzbill/vesta/internal/config"
	"github.com/rzbill/vesta/internal/ledger"
	"github.com/rzbill/vesta/internal/runtime"
	pebblestore "github.com/rzbill/vesta/internal/storage/pebble"
	logpkg "github.com/rzbill/vesta/pkg/log"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := cfgpkg.Default()
	cfg.InitialClaimFee = 25
	rt, err := runtime.Open(runtime.Options{DataDir: t.TempDir(), Fsync: pebblestore.FsyncModeNever, Config: cfg})
	if err != nil {
		t.Fatalf("rt open: %v", err)
	}
	t.Cleanup(func() { _ = rt.Close() })
	logger, _ := logpkg.ApplyConfig(&logpkg.Config{Level: "error", Format: "text"})
	return New(rt, logger)
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(w, req)
	return w
}

func createBody(deposit, startMs uint64) string {
	b, _ := json.Marshal(map[string]any{
		"sender":      "alice",
		"owner":       "bob",
		"token":       "USDC",
		"deposit":     deposit,
		"startTimeMs": startMs,
		"segments": []map[string]any{
			{"amount": deposit, "exponent": 1, "durationMs": 3_600_000},
		},
	})
	return string(b)
}

func TestHealthHandler(t *testing.T) {
	s := newTestServer(t)
	w := do(t, s, http.MethodGet, "/v1/healthz", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status: %d", w.Code)
	}
}

func TestStreamEndpoints(t *testing.T) {
	s := newTestServer(t)
	start := uint64(time.Now().UnixMilli()) + 60_000

	w := do(t, s, http.MethodPost, "/v1/streams/create", createBody(1000, start))
	if w.Code != http.StatusCreated {
		t.Fatalf("create status: %d body %s", w.Code, w.Body.String())
	}
	var view struct {
		ID      string `json:"id"`
		Balance uint64 `json:"balance"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode create: %v", err)
	}
	if view.ID == "" || view.Balance != 1000 {
		t.Fatalf("created view = %+v", view)
	}

	w = do(t, s, http.MethodGet, "/v1/streams/get?id="+view.ID, "")
	if w.Code != http.StatusOK {
		t.Fatalf("get status: %d", w.Code)
	}

	w = do(t, s, http.MethodGet, "/v1/streams/get?id="+strings.Repeat("0", 32), "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("get unknown status: %d", w.Code)
	}
	w = do(t, s, http.MethodGet, "/v1/streams/get?id=nope", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("get malformed id status: %d", w.Code)
	}

	w = do(t, s, http.MethodGet, "/v1/streams?filter="+`token%20==%20%22USDC%22`, "")
	if w.Code != http.StatusOK {
		t.Fatalf("list status: %d body %s", w.Code, w.Body.String())
	}
	var list struct {
		Streams []json.RawMessage `json:"streams"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list.Streams) != 1 {
		t.Fatalf("len(streams) = %d", len(list.Streams))
	}

	w = do(t, s, http.MethodPost, "/v1/streams/claim", `{"streamId":"`+view.ID+`","feePayment":1,"claimedBy":"bob"}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("claim wrong fee status: %d", w.Code)
	}
	w = do(t, s, http.MethodPost, "/v1/streams/claim", `{"streamId":"`+view.ID+`","feePayment":25,"claimedBy":"bob"}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("claim before start status: %d", w.Code)
	}

	w = do(t, s, http.MethodPost, "/v1/streams/transfer", `{"streamId":"`+view.ID+`","newOwner":"carol"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("transfer status: %d body %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"owner":"carol"`) {
		t.Fatalf("transfer body = %s", w.Body.String())
	}

	w = do(t, s, http.MethodPost, "/v1/streams/destroy", `{"streamId":"`+view.ID+`","destroyedBy":"alice"}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("destroy funded status: %d", w.Code)
	}

	w = do(t, s, http.MethodPost, "/v1/streams/create", "{not json")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad body status: %d", w.Code)
	}
	w = do(t, s, http.MethodGet, "/v1/streams/create", "")
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("wrong method status: %d", w.Code)
	}

	w = do(t, s, http.MethodPost, "/v1/streams/create", createBody(0, start))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("zero deposit status: %d body %s", w.Code, w.Body.String())
	}
}

func TestLedgerEndpoints(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodGet, "/v1/ledger", "")
	if w.Code != http.StatusOK {
		t.Fatalf("show status: %d", w.Code)
	}
	var led struct {
		Version  uint64 `json:"version"`
		ClaimFee uint64 `json:"claimFee"`
		Treasury uint64 `json:"treasury"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &led); err != nil {
		t.Fatalf("decode ledger: %v", err)
	}
	if led.Version != ledger.ProtocolVersion || led.ClaimFee != 25 {
		t.Fatalf("ledger = %+v", led)
	}

	w = do(t, s, http.MethodPost, "/v1/ledger/fee", `{"fee":40}`)
	if w.Code != http.StatusOK {
		t.Fatalf("set fee status: %d", w.Code)
	}
	w = do(t, s, http.MethodPost, "/v1/ledger/fee", `{"fee":50000000001}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("fee above cap status: %d", w.Code)
	}

	w = do(t, s, http.MethodPost, "/v1/ledger/withdraw", "")
	if w.Code != http.StatusOK {
		t.Fatalf("withdraw status: %d", w.Code)
	}

	w = do(t, s, http.MethodPost, "/v1/ledger/migrate", `{"version":2}`)
	if w.Code != http.StatusOK {
		t.Fatalf("migrate status: %d", w.Code)
	}
	start := uint64(time.Now().UnixMilli()) + 60_000
	w = do(t, s, http.MethodPost, "/v1/streams/create", createBody(1000, start))
	if w.Code != http.StatusConflict {
		t.Fatalf("create on stale version status: %d", w.Code)
	}
	w = do(t, s, http.MethodPost, "/v1/ledger/migrate", `{"version":1}`)
	if w.Code != http.StatusOK {
		t.Fatalf("migrate back status: %d", w.Code)
	}
	w = do(t, s, http.MethodPost, "/v1/streams/create", createBody(1000, start))
	if w.Code != http.StatusCreated {
		t.Fatalf("create after migrate back status: %d", w.Code)
	}
}

func TestEventsEndpoint(t *testing.T) {
	s := newTestServer(t)
	start := uint64(time.Now().UnixMilli()) + 60_000

	w := do(t, s, http.MethodPost, "/v1/streams/create", createBody(1000, start))
	if w.Code != http.StatusCreated {
		t.Fatalf("create status: %d", w.Code)
	}

	w = do(t, s, http.MethodGet, "/v1/events", "")
	if w.Code != http.StatusOK {
		t.Fatalf("events status: %d", w.Code)
	}
	var feed struct {
		Events []struct {
			Seq  uint64 `json:"seq"`
			Type string `json:"type"`
		} `json:"events"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &feed); err != nil {
		t.Fatalf("decode events: %v", err)
	}
	if len(feed.Events) != 1 || feed.Events[0].Type != "stream_created" {
		t.Fatalf("events = %+v", feed.Events)
	}

	w = do(t, s, http.MethodGet, "/v1/events?filter="+`event_type%20==%20%22stream_claimed%22`, "")
	if w.Code != http.StatusOK {
		t.Fatalf("filtered events status: %d", w.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	w := do(t, s, http.MethodGet, "/metrics", "")
	if w.Code != http.StatusOK {
		t.Fatalf("metrics status: %d", w.Code)
	}
}
