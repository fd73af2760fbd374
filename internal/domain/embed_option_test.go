package domain

import (
	"bytes"
	"encoding/json"
	"reflect"
	"testing"
)

func strPtr(s string) *string { return &s }

func TestResolveEmbedOption(t *testing.T) {
	byRef := ByReference{Builder: URLWithRequestID("https://verifier.example.com/wallet/pd")}

	tests := []struct {
		name     string
		selector *string
		def      EmbedOption
		want     EmbedOption
		wantErr  bool
	}{
		{"absent selector yields default by value", nil, ByValue{}, ByValue{}, false},
		{"absent selector yields default by reference", nil, byRef, byRef, false},
		{"by_value", strPtr("by_value"), byRef, ByValue{}, false},
		{"by_reference", strPtr("by_reference"), ByValue{}, byRef, false},
		{"unknown selector", strPtr("inline"), ByValue{}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveEmbedOption(tt.selector, byRef, tt.def)
			if tt.wantErr {
				if !HasCode(err, CodeValidation) {
					t.Fatalf("expected validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestURLBuilder_Build(t *testing.T) {
	tests := []struct {
		name    string
		builder URLBuilder
		id      RequestID
		want    string
		wantErr bool
	}{
		{"appends request id", URLWithRequestID("https://v.example.com/wallet/request.jwt"), "abc", "https://v.example.com/wallet/request.jwt/abc", false},
		{"appends to trailing slash", URLWithRequestID("https://v.example.com/wallet/pd/"), "abc", "https://v.example.com/wallet/pd/abc", false},
		{"substitutes placeholder", URLWithRequestID("https://v.example.com/wallet/jarm/{requestId}/jwks.json"), "abc", "https://v.example.com/wallet/jarm/abc/jwks.json", false},
		{"fixed ignores id", FixedURL("https://v.example.com/wallet/direct_post"), "abc", "https://v.example.com/wallet/direct_post", false},
		{"relative url", URLWithRequestID("/wallet/pd"), "abc", "", true},
		{"unconfigured", URLBuilder{}, "abc", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.builder.Build(tt.id)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Build() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEmbedOptionJSONRoundTrip(t *testing.T) {
	options := []EmbedOption{
		nil,
		ByValue{},
		ByReference{Builder: URLWithRequestID("https://v.example.com/wallet/pd")},
		ByReference{Builder: FixedURL("https://v.example.com/pd.json")},
	}

	for _, o := range options {
		first, err := MarshalEmbedOption(o)
		if err != nil {
			t.Fatalf("MarshalEmbedOption(%#v): %v", o, err)
		}
		decoded, err := UnmarshalEmbedOption(first)
		if err != nil {
			t.Fatalf("UnmarshalEmbedOption(%s): %v", first, err)
		}
		if !reflect.DeepEqual(decoded, o) {
			t.Errorf("decoded %#v, want %#v", decoded, o)
		}
		second, err := MarshalEmbedOption(decoded)
		if err != nil {
			t.Fatalf("MarshalEmbedOption(decoded): %v", err)
		}
		if !bytes.Equal(first, second) {
			t.Errorf("round trip not idempotent: %s != %s", first, second)
		}
	}
}

func TestURLBuilderJSON_RejectsUnknownType(t *testing.T) {
	var b URLBuilder
	if err := json.Unmarshal([]byte(`{"type":"lambda","template":"x"}`), &b); err == nil {
		t.Fatal("expected error for unknown url builder type")
	}
}
