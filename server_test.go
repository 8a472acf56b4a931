package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snehendu098/ghost/galasigner/pkg/galachain"
	"github.com/snehendu098/ghost/galasigner/pkg/log"
)

const (
	testKeyHex       = "0x1234567890abcdef1234567890abcdef1234567890abcdef1234567890abcdef"
	testAddress      = "0x1Be31A94361a391bBaFB2a4CCd704F57dc04d4bb"
	testStringToSign = `{"a":1,"b":"x"}`
	testSignature    = "MEUCIQCUt2xL33unGNfdhj2IOz5ZxkQj7QcsYzdXY1eR2+YbBwIgOUEq2ta8OuhgcnDLGXOHp+KVVlr5g1BEpx8s+bRBEC8="
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type fakeResolver struct {
	publicKey string
	err       error
	addresses []string
}

func (f *fakeResolver) GetPublicKey(_ context.Context, address string) (string, error) {
	f.addresses = append(f.addresses, address)
	return f.publicKey, f.err
}

type testServer struct {
	handler  http.Handler
	metrics  *Metrics
	resolver *fakeResolver
}

func newTestServer(t *testing.T, privateKeyHex string, bodyLimit int64) *testServer {
	t.Helper()
	metrics := NewMetricsWithRegistry(prometheus.NewRegistry())
	service, _ := newSigningService(privateKeyHex, log.NewNoopLogger())
	resolver := &fakeResolver{publicKey: "AvJVPGlUHsNt1YSkdUyrzKHwxb8P8mGvQmaVNKxYjnCf"}
	server := NewServer(service, resolver, metrics, log.NewNoopLogger(), bodyLimit)
	return &testServer{handler: server.Handler(), metrics: metrics, resolver: resolver}
}

func (ts *testServer) do(method, target, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func TestSignEndpoint(t *testing.T) {
	ts := newTestServer(t, testKeyHex, 0)

	t.Run("Signs the payload", func(t *testing.T) {
		rec := ts.do(http.MethodPost, "/sign", `{"payload":{"b":"x","a":1}}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, map[string]any{
			"signature":    testSignature,
			"stringToSign": testStringToSign,
		}, decodeBody(t, rec))
		assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
	})

	t.Run("Existing signature is ignored", func(t *testing.T) {
		rec := ts.do(http.MethodPost, "/sign", `{"payload":{"a":1,"b":"x","signature":"MEUC"}}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, testSignature, decodeBody(t, rec)["signature"])
	})

	t.Run("Empty object is signable", func(t *testing.T) {
		rec := ts.do(http.MethodPost, "/sign", `{"payload":{}}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "{}", decodeBody(t, rec)["stringToSign"])
	})

	t.Run("Number literals keep their value", func(t *testing.T) {
		rec := ts.do(http.MethodPost, "/sign", `{"payload":{"n":1.50,"m":1E3,"k":-0}}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, `{"k":0,"m":1000,"n":1.5}`, decodeBody(t, rec)["stringToSign"])
	})

	invalidBodies := []string{
		``,
		`not json`,
		`{}`,
		`{"payload":null}`,
		`{"payload":"x"}`,
		`{"payload":[1,2]}`,
		`{"payload":{"a":1}`,
	}
	for _, body := range invalidBodies {
		t.Run("Invalid body "+body, func(t *testing.T) {
			rec := ts.do(http.MethodPost, "/sign", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, map[string]any{"error": errMsgInvalidBody}, decodeBody(t, rec))
		})
	}

	t.Run("Unsafe integer", func(t *testing.T) {
		rec := ts.do(http.MethodPost, "/sign", `{"payload":{"n":9007199254740993}}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		msg := decodeBody(t, rec)["error"].(string)
		assert.Contains(t, msg, "/n")
		assert.Contains(t, msg, "number out of range")
	})

	t.Run("Metrics", func(t *testing.T) {
		assert.Equal(t, float64(4), testutil.ToFloat64(ts.metrics.SignRequests.WithLabelValues(outcomeSuccess)))
		assert.Equal(t, float64(len(invalidBodies)), testutil.ToFloat64(ts.metrics.SignRequests.WithLabelValues(outcomeInvalidRequest)))
		assert.Equal(t, float64(1), testutil.ToFloat64(ts.metrics.SignRequests.WithLabelValues(outcomeEncodingError)))
		assert.Equal(t, float64(4), testutil.ToFloat64(ts.metrics.HTTPRequests.WithLabelValues(http.MethodPost, "/sign", "200")))
	})
}

func TestSignEndpointBodyLimit(t *testing.T) {
	ts := newTestServer(t, testKeyHex, 64)

	rec := ts.do(http.MethodPost, "/sign", `{"payload":{"a":"`+strings.Repeat("x", 128)+`"}}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["error"], "too large")

	rec = ts.do(http.MethodPost, "/sign", `{"payload":{"a":1,"b":"x"}}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSignEndpointWithoutKey(t *testing.T) {
	tests := []struct {
		name          string
		privateKeyHex string
		expected      string
	}{
		{"Missing", "", "private key missing. " + keyErrorHint},
		{"Malformed", "0x1234", "private key malformed: expected 64 hex characters, got 4. " + keyErrorHint},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ts := newTestServer(t, test.privateKeyHex, 0)

			for i := 0; i < 2; i++ {
				rec := ts.do(http.MethodPost, "/sign", `{"payload":{"a":1}}`)
				assert.Equal(t, http.StatusBadRequest, rec.Code)
				assert.Equal(t, map[string]any{"error": test.expected}, decodeBody(t, rec))
			}
			assert.Equal(t, float64(2), testutil.ToFloat64(ts.metrics.SignRequests.WithLabelValues(outcomeKeyError)))

			rec := ts.do(http.MethodGet, "/health", "")
			assert.Equal(t, http.StatusOK, rec.Code)
			rec = ts.do(http.MethodGet, "/pubkey?address=eth|abc", "")
			assert.Equal(t, http.StatusOK, rec.Code)
		})
	}
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t, testKeyHex, 0)

	rec := ts.do(http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
}

func TestPublicKeyEndpoint(t *testing.T) {
	t.Run("Returns the resolved key", func(t *testing.T) {
		ts := newTestServer(t, testKeyHex, 0)

		rec := ts.do(http.MethodGet, "/pubkey?address=client%7Cabc123", "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, map[string]any{"publicKey": ts.resolver.publicKey}, decodeBody(t, rec))
		assert.Equal(t, []string{"client|abc123"}, ts.resolver.addresses)
		assert.Equal(t, float64(1), testutil.ToFloat64(ts.metrics.PublicKeyLookups.WithLabelValues(outcomeSuccess)))
	})

	for _, target := range []string{"/pubkey", "/pubkey?address=", "/pubkey?address=0xabc", "/pubkey?address=eth%7C"} {
		t.Run("Rejects "+target, func(t *testing.T) {
			ts := newTestServer(t, testKeyHex, 0)

			rec := ts.do(http.MethodGet, target, "")
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, map[string]any{"error": galachain.ErrInvalidAddress.Error()}, decodeBody(t, rec))
			assert.Empty(t, ts.resolver.addresses)
		})
	}

	t.Run("Lookup failure", func(t *testing.T) {
		ts := newTestServer(t, testKeyHex, 0)
		ts.resolver.err = errors.New("GetPublicKey returned status 404: not found")

		rec := ts.do(http.MethodGet, "/pubkey?address=eth%7Cabc", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, map[string]any{"error": "GetPublicKey returned status 404: not found"}, decodeBody(t, rec))
		assert.Equal(t, float64(1), testutil.ToFloat64(ts.metrics.PublicKeyLookups.WithLabelValues(outcomeError)))
	})
}

func TestCORS(t *testing.T) {
	ts := newTestServer(t, testKeyHex, 0)

	t.Run("Any origin, including file pages", func(t *testing.T) {
		for _, origin := range []string{"null", "https://example.com", "http://localhost:3000"} {
			rec := ts.do(http.MethodPost, "/sign", `{"payload":{"a":1}}`, "Origin", origin)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, requestIDHeader, rec.Header().Get("Access-Control-Expose-Headers"))
		}
	})

	t.Run("Preflight", func(t *testing.T) {
		rec := ts.do(http.MethodOptions, "/sign", "",
			"Origin", "null",
			"Access-Control-Request-Method", http.MethodPost,
			"Access-Control-Request-Headers", "Content-Type",
		)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, http.MethodPost, rec.Header().Get("Access-Control-Allow-Methods"))
	})
}

func TestRequestID(t *testing.T) {
	ts := newTestServer(t, testKeyHex, 0)

	rec := ts.do(http.MethodGet, "/health", "", requestIDHeader, "req-42")
	assert.Equal(t, "req-42", rec.Header().Get(requestIDHeader))

	first := ts.do(http.MethodGet, "/health", "").Header().Get(requestIDHeader)
	second := ts.do(http.MethodGet, "/health", "").Header().Get(requestIDHeader)
	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}

func TestUnknownRoute(t *testing.T) {
	ts := newTestServer(t, testKeyHex, 0)

	rec := ts.do(http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, float64(1), testutil.ToFloat64(ts.metrics.HTTPRequests.WithLabelValues(http.MethodGet, "unmatched", "404")))
}
