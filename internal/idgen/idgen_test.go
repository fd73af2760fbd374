package idgen

import (
	"encoding/base64"
	"testing"

	"github.com/google/uuid"
)

func TestGenerator_IDsAreUUIDs(t *testing.T) {
	g := New()

	txID, err := g.TransactionID()
	if err != nil {
		t.Fatalf("TransactionID: %v", err)
	}
	if _, err := uuid.Parse(txID.String()); err != nil {
		t.Errorf("transaction id %q is not a uuid: %v", txID, err)
	}

	reqID, err := g.RequestID()
	if err != nil {
		t.Fatalf("RequestID: %v", err)
	}
	if _, err := uuid.Parse(reqID.String()); err != nil {
		t.Errorf("request id %q is not a uuid: %v", reqID, err)
	}
	if reqID.String() == txID.String() {
		t.Error("request id equals transaction id")
	}
}

func TestGenerator_ResponseCode(t *testing.T) {
	g := New()
	seen := make(map[string]bool)

	for range 50 {
		code, err := g.ResponseCode()
		if err != nil {
			t.Fatalf("ResponseCode: %v", err)
		}
		decoded, err := base64.RawURLEncoding.DecodeString(code.String())
		if err != nil {
			t.Fatalf("response code %q is not base64url: %v", code, err)
		}
		if len(decoded) != responseCodeBytes {
			t.Errorf("decoded length = %d, want %d", len(decoded), responseCodeBytes)
		}
		if seen[code.String()] {
			t.Fatalf("duplicate response code %q", code)
		}
		seen[code.String()] = true
	}
}
