package client

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func stubServer(t *testing.T, routes map[string]func(w http.ResponseWriter, r *http.Request)) BaseURLFunc {
	t.Helper()
	mux := http.NewServeMux()
	for pattern, h := range routes {
		mux.HandleFunc(pattern, h)
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return func() string { return srv.URL }
}

func TestParseSegment(t *testing.T) {
	seg, err := parseSegment("1000:2:86400000")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if seg.Amount != 1000 || seg.Exponent != 2 || seg.DurationMs != 86_400_000 {
		t.Fatalf("segment = %+v", seg)
	}

	for _, bad := range []string{"", "1000", "1000:2", "x:2:3", "1:999:3", "1:2:z"} {
		if _, err := parseSegment(bad); err == nil {
			t.Fatalf("parseSegment(%q) accepted", bad)
		}
	}
}

func TestStreamCreateCommand(t *testing.T) {
	baseURL := stubServer(t, map[string]func(w http.ResponseWriter, r *http.Request){
		"/v1/streams/create": func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id":"abc123","balance":1000}`))
		},
	})

	cmd := newStreamCreateCommand(baseURL)
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{
		"--sender", "alice", "--owner", "bob", "--token", "USDC",
		"--deposit", "1000", "--start-ms", "1760000000000",
		"--segment", "1000:1:86400000",
	})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(buf.String(), "abc123") {
		t.Fatalf("expected stream id in output, got: %s", buf.String())
	}
}

func TestStreamListCommand(t *testing.T) {
	baseURL := stubServer(t, map[string]func(w http.ResponseWriter, r *http.Request){
		"/v1/streams": func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("filter"); got != `token == "USDC"` {
				t.Errorf("filter = %q", got)
			}
			_, _ = w.Write([]byte(`{"streams":[{"id":"s1"},{"id":"s2"}]}`))
		},
	})

	cmd := newStreamListCommand(baseURL)
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--filter", `token == "USDC"`})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "s1") || !strings.Contains(out, "s2") {
		t.Fatalf("expected both streams in output, got: %s", out)
	}
}

func TestStreamClaimCommandSurfacesConflict(t *testing.T) {
	baseURL := stubServer(t, map[string]func(w http.ResponseWriter, r *http.Request){
		"/v1/streams/claim": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"error":"ledger: fee payment mismatch"}`))
		},
	})

	cmd := newStreamClaimCommand(baseURL)
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--id", "abc", "--fee", "1", "--by", "bob"})

	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "fee payment mismatch") {
		t.Fatalf("expected fee mismatch error, got: %v", err)
	}
}

func TestLedgerShowCommand(t *testing.T) {
	baseURL := stubServer(t, map[string]func(w http.ResponseWriter, r *http.Request){
		"/v1/ledger": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"version":1,"claimFee":250000000,"treasury":0}`))
		},
	})

	cmd := newLedgerShowCommand(baseURL)
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(buf.String(), "250000000") {
		t.Fatalf("expected fee in output, got: %s", buf.String())
	}
}

func TestEventsCommand(t *testing.T) {
	baseURL := stubServer(t, map[string]func(w http.ResponseWriter, r *http.Request){
		"/v1/events": func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("start"); got != "5" {
				t.Errorf("start = %q", got)
			}
			_, _ = w.Write([]byte(`{"events":[{"seq":5,"type":"stream_created","payload":{}}]}`))
		},
	})

	cmd := NewEventsCommand(baseURL)
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--start", "5"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(buf.String(), "stream_created") {
		t.Fatalf("expected event in output, got: %s", buf.String())
	}
}
