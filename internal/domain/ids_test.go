package domain

import "testing"

func TestParseIDs_RejectEmpty(t *testing.T) {
	tests := []struct {
		name  string
		parse func(string) error
	}{
		{"transaction id", func(s string) error { _, err := ParseTransactionID(s); return err }},
		{"request id", func(s string) error { _, err := ParseRequestID(s); return err }},
		{"nonce", func(s string) error { _, err := ParseNonce(s); return err }},
		{"response code", func(s string) error { _, err := ParseResponseCode(s); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.parse(""); !HasCode(err, CodeValidation) {
				t.Errorf("empty value: expected validation error, got %v", err)
			}
			if err := tt.parse("x"); err != nil {
				t.Errorf("non-empty value: unexpected error %v", err)
			}
		})
	}
}

func TestParseIDTokenType(t *testing.T) {
	for _, s := range []string{"subject_signed_id_token", "attester_signed_id_token"} {
		if _, err := ParseIDTokenType(s); err != nil {
			t.Errorf("ParseIDTokenType(%q): %v", s, err)
		}
	}
	if _, err := ParseIDTokenType("self_signed"); !HasCode(err, CodeValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestRequiresEphemeralKey(t *testing.T) {
	tests := []struct {
		name string
		opt  JarmOption
		want bool
	}{
		{"signed", JarmSigned{Algorithm: "ES256"}, false},
		{"encrypted", JarmEncrypted{Algorithm: "ECDH-ES", Encode: "A128CBC-HS256"}, true},
		{"signed and encrypted", JarmSignedAndEncrypted{
			Signed:    JarmSigned{Algorithm: "ES256"},
			Encrypted: JarmEncrypted{Algorithm: "ECDH-ES", Encode: "A256GCM"},
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RequiresEphemeralKey(tt.opt); got != tt.want {
				t.Errorf("RequiresEphemeralKey() = %v, want %v", got, tt.want)
			}
		})
	}
}
