package netutil

import (
	"bytes"
	"testing"
)

func TestEncodeNPN(t *testing.T) {
	wire, err := EncodeNPN([]string{"http/1.1", "http/1.0"})
	if err != nil {
		t.Fatalf("EncodeNPN: %v", err)
	}
	want := []byte("\x08http/1.1\x08http/1.0")
	if !bytes.Equal(wire, want) {
		t.Fatalf("EncodeNPN = %q, want %q", wire, want)
	}
	if len(wire) != 18 {
		t.Fatalf("len(wire) = %d, want 18", len(wire))
	}
}

func TestEncodeNPNEmptyIsAbsent(t *testing.T) {
	wire, err := EncodeNPN(nil)
	if err != nil {
		t.Fatalf("EncodeNPN(nil): %v", err)
	}
	if wire != nil {
		t.Fatalf("EncodeNPN(nil) = %#v, want nil (absent), not empty buffer", wire)
	}
}

func TestEncodeNPNLengthValidation(t *testing.T) {
	if _, err := EncodeNPN([]string{""}); err == nil {
		t.Fatal("expected error for zero-length protocol name")
	}
	long := make([]byte, 256)
	for i := range long {
		long[i] = 'a'
	}
	if _, err := EncodeNPN([]string{string(long)}); err == nil {
		t.Fatal("expected error for 256-byte protocol name")
	}
}

func TestNPNRoundTrip(t *testing.T) {
	names := []string{"h2", "http/1.1", "spdy/3.1"}
	wire, err := EncodeNPN(names)
	if err != nil {
		t.Fatalf("EncodeNPN: %v", err)
	}
	got, err := DecodeNPN(wire)
	if err != nil {
		t.Fatalf("DecodeNPN: %v", err)
	}
	if len(got) != len(names) {
		t.Fatalf("DecodeNPN = %v, want %v", got, names)
	}
	for i := range names {
		if got[i] != names[i] {
			t.Fatalf("DecodeNPN[%d] = %q, want %q", i, got[i], names[i])
		}
	}
}
