package oid4vp

import (
	"testing"

	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedirectURI(t *testing.T) {
	tests := []struct {
		name     string
		template string
		code     domain.ResponseCode
		want     string
		wantErr  bool
	}{
		{name: "path placeholder", template: "https://x/{RESPONSE_CODE}", code: "abc", want: "https://x/abc"},
		{name: "fragment placeholder", template: "https://verifier.example.com/cb#response_code={RESPONSE_CODE}", code: "c-1", want: "https://verifier.example.com/cb#response_code=c-1"},
		{name: "missing placeholder", template: "https://x/callback", code: "abc", wantErr: true},
		{name: "relative url", template: "/callback/{RESPONSE_CODE}", code: "abc", wantErr: true},
		{name: "bad syntax", template: "https://x:bad/{RESPONSE_CODE}", code: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RedirectURI(tt.template, tt.code)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, domain.HasCode(err, domain.CodeValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateRedirectTemplate(t *testing.T) {
	assert.NoError(t, ValidateRedirectTemplate("https://x/{RESPONSE_CODE}"))
	assert.Error(t, ValidateRedirectTemplate("https://x/"))
}

func TestResponseCodeMatches(t *testing.T) {
	code := func(s string) *domain.ResponseCode {
		c := domain.ResponseCode(s)
		return &c
	}

	tests := []struct {
		name     string
		stored   *domain.ResponseCode
		supplied *domain.ResponseCode
		want     bool
	}{
		{"both absent", nil, nil, true},
		{"both present and equal", code("c1"), code("c1"), true},
		{"both present and different", code("c1"), code("c2"), false},
		{"only stored", code("c1"), nil, false},
		{"only supplied", nil, code("c1"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResponseCodeMatches(tt.stored, tt.supplied))
		})
	}
}
