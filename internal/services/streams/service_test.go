package streamsvc

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	cfgpkg "github.com/rzbill/vesta/internal/config"
	"github.com/rzbill/vesta/internal/ledger"
	"github.com/rzbill/vesta/internal/runtime"
	pebblestore "github.com/rzbill/vesta/internal/storage/pebble"
	"github.com/rzbill/vesta/internal/vesting"
)

type testClock struct {
	now uint64
}

func (c *testClock) set(ms uint64) { c.now = ms }

func newTestService(t *testing.T, fee uint64) (*Service, *testClock) {
	t.Helper()
	cfg := cfgpkg.Default()
	cfg.InitialClaimFee = fee
	rt, err := runtime.Open(runtime.Options{
		DataDir: t.TempDir(),
		Fsync:   pebblestore.FsyncModeNever,
		Config:  cfg,
	})
	if err != nil {
		t.Fatalf("open runtime: %v", err)
	}
	t.Cleanup(func() { _ = rt.Close() })
	svc := New(rt)
	clock := &testClock{now: 1_000_000}
	svc.nowMs = func() uint64 { return clock.now }
	return svc, clock
}

func linearRequest(deposit, startMs, durationMs uint64) CreateStreamRequest {
	return CreateStreamRequest{
		Sender:      "alice",
		Owner:       "bob",
		Token:       "USDC",
		Deposit:     deposit,
		StartTimeMs: startMs,
		Segments: []SegmentSpec{
			{Amount: deposit, Exponent: 1, DurationMs: durationMs},
		},
	}
}

func TestCreateClaimDestroyLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, clock := newTestService(t, 25)

	view, err := svc.CreateStream(ctx, linearRequest(1000, 1_000_000, 1000))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if view.Balance != 1000 || view.EndTimeMs != 1_001_000 {
		t.Fatalf("view = balance %d end %d", view.Balance, view.EndTimeMs)
	}

	clock.set(1_000_500)
	got, err := svc.GetStream(ctx, view.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Streamed != 500 || got.Claimable != 500 {
		t.Fatalf("midpoint streamed=%d claimable=%d, want 500/500", got.Streamed, got.Claimable)
	}

	res, err := svc.Claim(ctx, view.ID, 25, "bob")
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if res.Amount != 500 || res.RemainingBalance != 500 || res.FeePaid != 25 {
		t.Fatalf("claim result = %+v", res)
	}

	led, err := svc.Ledger(ctx)
	if err != nil {
		t.Fatalf("ledger: %v", err)
	}
	if led.Treasury != 25 {
		t.Fatalf("treasury = %d, want 25", led.Treasury)
	}

	if err := svc.Destroy(ctx, view.ID, "alice"); !errors.Is(err, vesting.ErrNonZeroBalance) {
		t.Fatalf("destroy with funds: %v, want ErrNonZeroBalance", err)
	}

	clock.set(1_001_000)
	res, err = svc.Claim(ctx, view.ID, 25, "bob")
	if err != nil {
		t.Fatalf("final claim: %v", err)
	}
	if res.Amount != 500 || res.RemainingBalance != 0 {
		t.Fatalf("final claim result = %+v", res)
	}

	if err := svc.Destroy(ctx, view.ID, "alice"); err != nil {
		t.Fatalf("destroy: %v", err)
	}
	if _, err := svc.GetStream(ctx, view.ID); !errors.Is(err, ledger.ErrStreamNotFound) {
		t.Fatalf("get after destroy: %v, want ErrStreamNotFound", err)
	}
}

func TestClaimRejections(t *testing.T) {
	ctx := context.Background()
	svc, clock := newTestService(t, 25)

	view, err := svc.CreateStream(ctx, linearRequest(1000, 1_000_000, 1000))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	clock.set(1_000_500)
	if _, err := svc.Claim(ctx, view.ID, 24, "bob"); !errors.Is(err, ledger.ErrInvalidFeePayment) {
		t.Fatalf("underpaid fee: %v", err)
	}
	if _, err := svc.Claim(ctx, view.ID, 26, "bob"); !errors.Is(err, ledger.ErrInvalidFeePayment) {
		t.Fatalf("overpaid fee: %v", err)
	}

	clock.set(999_000)
	if _, err := svc.Claim(ctx, view.ID, 25, "bob"); !errors.Is(err, vesting.ErrZeroClaimable) {
		t.Fatalf("claim before start: %v", err)
	}

	if _, err := svc.Claim(ctx, "not-hex", 25, "bob"); err == nil {
		t.Fatal("claim with bad id accepted")
	}
}

func TestVersionGate(t *testing.T) {
	ctx := context.Background()
	svc, clock := newTestService(t, 25)

	view, err := svc.CreateStream(ctx, linearRequest(1000, 1_000_000, 1000))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.MigrateVersion(ctx, ledger.ProtocolVersion+1); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	clock.set(1_000_500)
	if _, err := svc.Claim(ctx, view.ID, 25, "bob"); !errors.Is(err, ledger.ErrStaleVersion) {
		t.Fatalf("claim on stale version: %v", err)
	}
	if _, err := svc.CreateStream(ctx, linearRequest(1000, 1_000_500, 1000)); !errors.Is(err, ledger.ErrStaleVersion) {
		t.Fatalf("create on stale version: %v", err)
	}

	if _, err := svc.MigrateVersion(ctx, ledger.ProtocolVersion); err != nil {
		t.Fatalf("migrate back: %v", err)
	}
	if _, err := svc.Claim(ctx, view.ID, 25, "bob"); err != nil {
		t.Fatalf("claim after migrate back: %v", err)
	}
}

func TestTransferStream(t *testing.T) {
	ctx := context.Background()
	svc, clock := newTestService(t, 25)

	view, err := svc.CreateStream(ctx, linearRequest(1000, 1_000_000, 1000))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := svc.TransferStream(ctx, view.ID, "carol")
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if got.Owner != "carol" || got.Balance != 1000 {
		t.Fatalf("transferred view = owner %q balance %d", got.Owner, got.Balance)
	}

	// New owner claims, old owner is irrelevant to the curve.
	clock.set(1_001_000)
	res, err := svc.Claim(ctx, view.ID, 25, "carol")
	if err != nil {
		t.Fatalf("claim after transfer: %v", err)
	}
	if res.Amount != 1000 {
		t.Fatalf("claim amount = %d", res.Amount)
	}

	events, err := svc.Events(ctx, 0, 0, `event_type == "stream_transferred"`)
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("len(events) = %d", len(events))
	}
	var ev EventStreamTransferred
	if err := json.Unmarshal(events[0].Payload, &ev); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if ev.From != "bob" || ev.To != "carol" {
		t.Fatalf("event = %+v", ev)
	}
}

func TestLedgerAdministration(t *testing.T) {
	ctx := context.Background()
	svc, clock := newTestService(t, 25)

	view, err := svc.CreateStream(ctx, linearRequest(1000, 1_000_000, 1000))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	led, err := svc.SetClaimFee(ctx, 40)
	if err != nil {
		t.Fatalf("set fee: %v", err)
	}
	if led.ClaimFee != 40 {
		t.Fatalf("fee = %d, want 40", led.ClaimFee)
	}
	if _, err := svc.SetClaimFee(ctx, ledger.MaxClaimFee+1); !errors.Is(err, ledger.ErrFeeExceedsCap) {
		t.Fatalf("fee above cap: %v", err)
	}

	clock.set(1_001_000)
	if _, err := svc.Claim(ctx, view.ID, 40, "bob"); err != nil {
		t.Fatalf("claim: %v", err)
	}

	amount, err := svc.WithdrawTreasury(ctx)
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if amount != 40 {
		t.Fatalf("withdrawn = %d, want 40", amount)
	}
	led, err = svc.Ledger(ctx)
	if err != nil {
		t.Fatalf("ledger: %v", err)
	}
	if led.Treasury != 0 {
		t.Fatalf("treasury after withdraw = %d", led.Treasury)
	}
}

func TestListStreamsFilter(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, 25)

	reqA := linearRequest(1000, 1_000_000, 1000)
	reqB := linearRequest(2000, 1_000_000, 1000)
	reqB.Token = "DAI"
	if _, err := svc.CreateStream(ctx, reqA); err != nil {
		t.Fatalf("create a: %v", err)
	}
	if _, err := svc.CreateStream(ctx, reqB); err != nil {
		t.Fatalf("create b: %v", err)
	}

	all, err := svc.ListStreams(ctx, "", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("len(all) = %d", len(all))
	}
	if all[0].Token != "USDC" || all[1].Token != "DAI" {
		t.Fatalf("creation order broken: %s, %s", all[0].Token, all[1].Token)
	}

	dai, err := svc.ListStreams(ctx, `token == "DAI"`, 0)
	if err != nil {
		t.Fatalf("filtered list: %v", err)
	}
	if len(dai) != 1 || dai[0].InitialDeposit != 2000 {
		t.Fatalf("filtered = %+v", dai)
	}

	big, err := svc.ListStreams(ctx, `deposit > 1500u`, 0)
	if err != nil {
		t.Fatalf("uint filter: %v", err)
	}
	if len(big) != 1 || big[0].Token != "DAI" {
		t.Fatalf("uint filtered = %+v", big)
	}

	limited, err := svc.ListStreams(ctx, "", 1)
	if err != nil {
		t.Fatalf("limited list: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("len(limited) = %d", len(limited))
	}

	if _, err := svc.ListStreams(ctx, "token ==", 0); err == nil {
		t.Fatal("malformed filter accepted")
	}
}

func TestEventsEmitted(t *testing.T) {
	ctx := context.Background()
	svc, clock := newTestService(t, 25)

	view, err := svc.CreateStream(ctx, linearRequest(1000, 1_000_000, 1000))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	clock.set(1_001_000)
	if _, err := svc.Claim(ctx, view.ID, 25, "bob"); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if err := svc.Destroy(ctx, view.ID, "alice"); err != nil {
		t.Fatalf("destroy: %v", err)
	}

	events, err := svc.Events(ctx, 0, 0, "")
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("len(events) = %d, want 3", len(events))
	}
	wantTypes := []string{EventTypeStreamCreated, EventTypeStreamClaimed, EventTypeStreamDestroyed}
	for i, ev := range events {
		if ev.Type != wantTypes[i] {
			t.Fatalf("event %d type = %q, want %q", i, ev.Type, wantTypes[i])
		}
		if ev.TsMs == 0 {
			t.Fatalf("event %d has zero timestamp", i)
		}
	}
	if events[1].TsMs != 1_001_000 {
		t.Fatalf("claim event ts = %d", events[1].TsMs)
	}

	claims, err := svc.Events(ctx, 0, 0, `event_type == "stream_claimed"`)
	if err != nil {
		t.Fatalf("filtered events: %v", err)
	}
	if len(claims) != 1 || claims[0].Seq != events[1].Seq {
		t.Fatalf("filtered = %+v", claims)
	}

	tail, err := svc.Events(ctx, events[2].Seq, 0, "")
	if err != nil {
		t.Fatalf("tail events: %v", err)
	}
	if len(tail) != 1 || tail[0].Type != EventTypeStreamDestroyed {
		t.Fatalf("tail = %+v", tail)
	}
}

func TestStatePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	cfg := cfgpkg.Default()
	cfg.InitialClaimFee = 25

	open := func() *runtime.Runtime {
		rt, err := runtime.Open(runtime.Options{
			DataDir: dir,
			Fsync:   pebblestore.FsyncModeAlways,
			Config:  cfg,
		})
		if err != nil {
			t.Fatalf("open runtime: %v", err)
		}
		return rt
	}

	rt := open()
	svc := New(rt)
	svc.nowMs = func() uint64 { return 1_000_000 }
	view, err := svc.CreateStream(ctx, linearRequest(1000, 1_000_000, 1000))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.SetClaimFee(ctx, 33); err != nil {
		t.Fatalf("set fee: %v", err)
	}
	if err := rt.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	rt = open()
	defer rt.Close()
	svc = New(rt)
	svc.nowMs = func() uint64 { return 1_000_500 }

	got, err := svc.GetStream(ctx, view.ID)
	if err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
	if got.Balance != 1000 || got.Claimable != 500 {
		t.Fatalf("reopened stream = balance %d claimable %d", got.Balance, got.Claimable)
	}
	led, err := svc.Ledger(ctx)
	if err != nil {
		t.Fatalf("ledger after reopen: %v", err)
	}
	if led.ClaimFee != 33 {
		t.Fatalf("fee after reopen = %d, want 33", led.ClaimFee)
	}
}
