package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/config"
	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/crypto"
	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/domain"
	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/metrics"
	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/oid4vp"
	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/server/handlers"
	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/store/memory"
	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/transaction"
)

var testJarm = domain.JarmEncrypted{Algorithm: "ECDH-ES", Encode: "A128CBC-HS256"}

type sequentialIDs struct {
	n int
}

func (g *sequentialIDs) TransactionID() (domain.TransactionID, error) {
	g.n++
	return domain.TransactionID(fmt.Sprintf("tx-%d", g.n)), nil
}

func (g *sequentialIDs) RequestID() (domain.RequestID, error) {
	return domain.RequestID(fmt.Sprintf("req-%d", g.n)), nil
}

func (g *sequentialIDs) ResponseCode() (domain.ResponseCode, error) {
	return domain.ResponseCode(fmt.Sprintf("code-%d", g.n)), nil
}

type readiness struct {
	err error
}

func (r readiness) IsDatabaseRunning(context.Context) (bool, error) {
	return r.err == nil, r.err
}

type testServer struct {
	server    *Server
	store     *memory.Store
	signing   jwk.Key
	registry  *prometheus.Registry
	readiness *readiness
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	key, err := crypto.GenerateSigningKey("ES256", 0)
	require.NoError(t, err)

	cfg := domain.VerifierConfig{
		ClientIDScheme: domain.PreRegistered{ClientIdentity: domain.ClientIdentity{
			ClientID:   "verifier",
			JarSigning: domain.SigningConfig{Key: key, Algorithm: "ES256"},
		}},
		JarOption:                    domain.ByValue{},
		PresentationDefinitionOption: domain.ByValue{},
		ResponseModeOption:           domain.ResponseModeDirectPost,
		ResponseURLBuilder:           domain.FixedURL("https://verifier.example.com/wallet/direct_post"),
		MaxAge:                       6 * time.Minute,
		ClientMetaData: domain.ClientMetaData{
			JWKOption:                   domain.ByValue{},
			SubjectSyntaxTypesSupported: []string{"urn:ietf:params:oauth:jwk-thumbprint"},
			JarmOption:                  testJarm,
		},
	}

	registry := prometheus.NewRegistry()
	m := metrics.NewWithRegisterer(registry)
	store := memory.New()

	svc, err := transaction.New(cfg,
		transaction.Endpoints{
			RequestURI:                domain.URLWithRequestID("https://verifier.example.com/wallet/request.jwt/{requestId}"),
			PresentationDefinitionURI: domain.URLWithRequestID("https://verifier.example.com/wallet/pd/{requestId}"),
		},
		transaction.Dependencies{
			Store:        store,
			IDs:          &sequentialIDs{},
			EphemeralKey: oid4vp.NewEphemeralKeyGenerator(cfg.ClientMetaData.JarmOption),
			Signer:       oid4vp.NewRequestObjectSigner(),
			Jarm:         oid4vp.NewJarmVerifier(nil),
		},
		transaction.WithLogger(slog.Default()),
		transaction.WithMetrics(m),
	)
	require.NoError(t, err)

	public, err := crypto.PublicJWKSet(key)
	require.NoError(t, err)

	env := &config.ServerEnvironment{
		Environment:    "test",
		Host:           "127.0.0.1",
		Port:           0,
		MaxRequestSize: 64 * 1024,
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
	}

	ready := &readiness{}
	srv, err := NewServer(env, slog.Default(), Dependencies{
		Service:     svc,
		SigningKeys: public,
		Readiness:   ready,
		Metrics:     m,
		Gatherer:    registry,
	})
	require.NoError(t, err)

	return &testServer{server: srv, store: store, signing: key, registry: registry, readiness: ready}
}

func (ts *testServer) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	ts.server.Handler().ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) initTransaction(t *testing.T, body map[string]any) oid4vp.JwtSecuredAuthorizationRequestTO {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/ui/presentations", strings.NewReader(string(raw)))
	req.Header.Set("Content-Type", "application/json")
	rec := ts.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got oid4vp.JwtSecuredAuthorizationRequestTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	return got
}

func postForm(form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/wallet/direct_post", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) handlers.ErrorResponse {
	t.Helper()
	var got handlers.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got), rec.Body.String())
	return got
}

func vpTokenRequest(extra map[string]any) map[string]any {
	body := map[string]any{
		"type":  "vp_token",
		"nonce": "nonce-1",
		"presentation_definition": map[string]any{
			"id":                "pd-1",
			"input_descriptors": []map[string]any{{"id": "pid"}},
		},
	}
	for k, v := range extra {
		body[k] = v
	}
	return body
}

func TestNewServerRequiresService(t *testing.T) {
	_, err := NewServer(&config.ServerEnvironment{}, slog.Default(), Dependencies{})
	require.Error(t, err)
}

func TestSameDeviceFlowByReference(t *testing.T) {
	ts := newTestServer(t)

	initiated := ts.initTransaction(t, vpTokenRequest(map[string]any{
		"response_mode": "direct_post",
		"jar_mode":      "by_reference",
	}))
	assert.Equal(t, "tx-1", initiated.TransactionID)
	assert.Equal(t, "verifier", initiated.ClientID)
	assert.Equal(t, "https://verifier.example.com/wallet/request.jwt/req-1", initiated.RequestURI)
	assert.Empty(t, initiated.Request)

	// the wallet response is not available before submission
	rec := ts.do(t, httptest.NewRequest(http.MethodGet, "/ui/presentations/tx-1", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, httptest.NewRequest(http.MethodGet, "/wallet/request.jwt/req-1", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, handlers.RequestObjectContentType, rec.Header().Get("Content-Type"))

	pub, err := crypto.PublicKey(ts.signing)
	require.NoError(t, err)
	payload, err := crypto.VerifyCompactWithKey(rec.Body.String(), pub, "ES256")
	require.NoError(t, err)
	var claims map[string]any
	require.NoError(t, json.Unmarshal(payload, &claims))
	assert.Equal(t, "req-1", claims["state"])
	assert.Equal(t, "nonce-1", claims["nonce"])
	assert.Equal(t, "direct_post", claims["response_mode"])

	// a request object is handed out once
	rec = ts.do(t, httptest.NewRequest(http.MethodGet, "/wallet/request.jwt/req-1", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, postForm(url.Values{
		"state":                   {"req-1"},
		"vp_token":                {"eyJ.vp.token"},
		"presentation_submission": {`{"id":"ps-1","definition_id":"pd-1","descriptor_map":[{"id":"pid","format":"vc+sd-jwt","path":"$"}]}`},
	}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{}`, rec.Body.String())

	rec = ts.do(t, httptest.NewRequest(http.MethodGet, "/ui/presentations/tx-1", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var got oid4vp.WalletResponseTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.JSONEq(t, `"eyJ.vp.token"`, string(got.VPToken))
	require.NotNil(t, got.PresentationSubmission)
	assert.Equal(t, "ps-1", got.PresentationSubmission.ID)

	// a second submission is rejected
	rec = ts.do(t, postForm(url.Values{"state": {"req-1"}, "vp_token": {"again"},
		"presentation_submission": {`{"id":"ps-1","definition_id":"pd-1","descriptor_map":[]}`}}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEncryptedResponseWithRedirect(t *testing.T) {
	ts := newTestServer(t)

	initiated := ts.initTransaction(t, vpTokenRequest(map[string]any{
		"response_mode":                         "direct_post.jwt",
		"jar_mode":                              "by_value",
		"wallet_response_redirect_uri_template": "https://verifier.example.com/cb#response_code={RESPONSE_CODE}",
	}))
	assert.NotEmpty(t, initiated.Request)
	assert.Empty(t, initiated.RequestURI)

	rec := ts.do(t, httptest.NewRequest(http.MethodGet, "/wallet/jarm/req-1/jwks.json", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	set, err := jwk.Parse(rec.Body.Bytes())
	require.NoError(t, err)
	require.Equal(t, 1, set.Len())
	encKey, ok := set.Key(0)
	require.True(t, ok)

	claims, err := json.Marshal(map[string]any{
		"state":    "req-1",
		"vp_token": "eyJ.vp.token",
		"presentation_submission": map[string]any{
			"id":             "ps-1",
			"definition_id":  "pd-1",
			"descriptor_map": []map[string]any{{"id": "pid", "format": "vc+sd-jwt", "path": "$"}},
		},
	})
	require.NoError(t, err)
	token, err := crypto.Encrypt(claims, encKey, testJarm.Algorithm, testJarm.Encode)
	require.NoError(t, err)

	rec = ts.do(t, postForm(url.Values{"state": {"req-1"}, "response": {token}}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var accepted oid4vp.WalletResponseAcceptedTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &accepted))
	assert.Equal(t, "https://verifier.example.com/cb#response_code=code-1", accepted.RedirectURI)

	tests := []struct {
		name   string
		query  string
		status int
	}{
		{name: "without response code", query: "", status: http.StatusBadRequest},
		{name: "with a wrong response code", query: "?response_code=code-2", status: http.StatusBadRequest},
		{name: "with the response code", query: "?response_code=code-1", status: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, httptest.NewRequest(http.MethodGet, "/ui/presentations/tx-1"+tt.query, nil))
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestErrorMapping(t *testing.T) {
	ts := newTestServer(t)
	ts.initTransaction(t, vpTokenRequest(map[string]any{"jar_mode": "by_reference"}))

	tests := []struct {
		name   string
		req    func() *http.Request
		status int
		code   string
	}{
		{
			name:   "unknown transaction",
			req:    func() *http.Request { return httptest.NewRequest(http.MethodGet, "/ui/presentations/nope", nil) },
			status: http.StatusNotFound,
			code:   handlers.ErrorNotFound,
		},
		{
			name:   "unknown request object",
			req:    func() *http.Request { return httptest.NewRequest(http.MethodGet, "/wallet/request.jwt/nope", nil) },
			status: http.StatusNotFound,
			code:   handlers.ErrorNotFound,
		},
		{
			name: "malformed init body",
			req: func() *http.Request {
				return httptest.NewRequest(http.MethodPost, "/ui/presentations", strings.NewReader("{"))
			},
			status: http.StatusBadRequest,
			code:   handlers.ErrorInvalidRequest,
		},
		{
			name: "init without presentation definition",
			req: func() *http.Request {
				return httptest.NewRequest(http.MethodPost, "/ui/presentations", strings.NewReader(`{"type":"vp_token","nonce":"n"}`))
			},
			status: http.StatusBadRequest,
			code:   handlers.ErrorInvalidRequest,
		},
		{
			name:   "direct post for an unknown state",
			req:    func() *http.Request { return postForm(url.Values{"state": {"nope"}, "id_token": {"x"}}) },
			status: http.StatusNotFound,
			code:   handlers.ErrorNotFound,
		},
		{
			name: "direct post with malformed submission",
			req: func() *http.Request {
				return postForm(url.Values{"state": {"req-1"}, "vp_token": {"x"}, "presentation_submission": {"{"}})
			},
			status: http.StatusBadRequest,
			code:   handlers.ErrorInvalidRequest,
		},
		{
			name: "oversized body",
			req: func() *http.Request {
				return httptest.NewRequest(http.MethodPost, "/ui/presentations", strings.NewReader(strings.Repeat("x", 65*1024)))
			},
			status: http.StatusRequestEntityTooLarge,
			code:   handlers.ErrorRequestTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, tt.req())
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			got := decodeError(t, rec)
			assert.Equal(t, tt.code, got.Error)
			assert.Equal(t, tt.status, got.StatusCode)
		})
	}
}

func TestInfrastructureEndpoints(t *testing.T) {
	ts := newTestServer(t)

	t.Run("liveness", func(t *testing.T) {
		rec := ts.do(t, httptest.NewRequest(http.MethodGet, "/health/live", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("readiness follows the database", func(t *testing.T) {
		rec := ts.do(t, httptest.NewRequest(http.MethodGet, "/ready", nil))
		assert.Equal(t, http.StatusOK, rec.Code)

		ts.readiness.err = errors.New("connection refused")
		rec = ts.do(t, httptest.NewRequest(http.MethodGet, "/ready", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		ts.readiness.err = nil
	})

	t.Run("version", func(t *testing.T) {
		rec := ts.do(t, httptest.NewRequest(http.MethodGet, "/version", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		var got handlers.VersionResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "verifier-server", got.Service)
	})

	t.Run("signing keys are published without private parts", func(t *testing.T) {
		rec := ts.do(t, httptest.NewRequest(http.MethodGet, "/.well-known/jwks.json", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		set, err := jwk.Parse(rec.Body.Bytes())
		require.NoError(t, err)
		require.Equal(t, 1, set.Len())
		assert.NotContains(t, rec.Body.String(), `"d"`)
	})

	t.Run("swagger document", func(t *testing.T) {
		rec := ts.do(t, httptest.NewRequest(http.MethodGet, "/docs/swagger.json", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "/ui/presentations")
	})

	t.Run("metrics", func(t *testing.T) {
		ts.initTransaction(t, vpTokenRequest(nil))
		rec := ts.do(t, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		body, err := io.ReadAll(rec.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), "verifier_http_request_duration_seconds")
		assert.Contains(t, string(body), `route="/ui/presentations"`)
	})
}

func TestSecurityHeadersOnWalletEndpoints(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, httptest.NewRequest(http.MethodGet, "/wallet/pd/nope", nil))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}
