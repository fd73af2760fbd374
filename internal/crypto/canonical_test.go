package crypto

import "testing"

func TestCanonicalizeJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"sorts keys", `{"b":1,"a":"x"}`, `{"a":"x","b":1}`, false},
		{"removes whitespace", "{ \"nonce\" : \"n\",\n \"aud\": [ \"x\" ] }", `{"aud":["x"],"nonce":"n"}`, false},
		{"nested objects", `{"client_metadata":{"z":true,"jwks":{"keys":[]}}}`, `{"client_metadata":{"jwks":{"keys":[]},"z":true}}`, false},
		{"invalid json", `{"test": "value"`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CanonicalizeJSON([]byte(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Fatal("CanonicalizeJSON() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("CanonicalizeJSON() = %s, want %s", got, tt.want)
			}
		})
	}
}
