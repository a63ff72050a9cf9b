package eventlog

import (
	"bytes"
	"testing"
)

func TestRecordRoundTrip(t *testing.T) {
	header := []byte{0, 0, 0, 0, 0, 0, 4, 210}
	payload := []byte(`{"type":"stream_created"}`)
	enc := EncodeRecord(header, payload)

	h, p, ok := DecodeRecord(enc)
	if !ok {
		t.Fatalf("decode failed")
	}
	if !bytes.Equal(h, header) || !bytes.Equal(p, payload) {
		t.Fatalf("round trip mismatch")
	}
}

func TestRecordEmptyHeader(t *testing.T) {
	enc := EncodeRecord(nil, []byte("x"))
	h, p, ok := DecodeRecord(enc)
	if !ok {
		t.Fatalf("decode failed")
	}
	if len(h) != 0 || string(p) != "x" {
		t.Fatalf("got header=%q payload=%q", h, p)
	}
}

func TestRecordDetectsCorruption(t *testing.T) {
	enc := EncodeRecord([]byte("h"), []byte("payload"))
	enc[len(enc)/2] ^= 0xFF
	if _, _, ok := DecodeRecord(enc); ok {
		t.Fatalf("expected checksum failure")
	}
}

func TestRecordRejectsTruncated(t *testing.T) {
	enc := EncodeRecord([]byte("h"), []byte("payload"))
	for cut := 1; cut < 5; cut++ {
		if _, _, ok := DecodeRecord(enc[:len(enc)-cut]); ok {
			t.Fatalf("expected failure for %d-byte truncation", cut)
		}
	}
	if _, _, ok := DecodeRecord(nil); ok {
		t.Fatalf("expected failure for empty input")
	}
}
