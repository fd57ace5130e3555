package middleware

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolgle/internal/domain"
	"schoolgle/internal/domain/models"
	"schoolgle/internal/httputil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeVerifier struct {
	tokens map[string]string // token -> subject
}

func (f *fakeVerifier) VerifyToken(token string) (*models.SupabaseClaims, error) {
	subject, ok := f.tokens[token]
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	claims := &models.SupabaseClaims{Role: "authenticated"}
	claims.Subject = subject
	return claims, nil
}

func (f *fakeVerifier) Close() error { return nil }

// echoUser writes the authenticated user ID back
var echoUser = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte(httputil.GetUserID(r)))
})

func TestAuthMiddleware(t *testing.T) {
	verifier := &fakeVerifier{tokens: map[string]string{"good": "user-1"}}
	handler := AuthMiddleware(verifier, discardLogger())(echoUser)

	tests := []struct {
		name       string
		path       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{name: "valid token", path: "/api/packs", header: "Bearer good", wantStatus: http.StatusOK, wantBody: "user-1"},
		{name: "missing header", path: "/api/packs", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", path: "/api/packs", header: "Basic good", wantStatus: http.StatusUnauthorized},
		{name: "bad token", path: "/api/packs", header: "Bearer bad", wantStatus: http.StatusUnauthorized},
		{name: "health is public", path: "/health", wantStatus: http.StatusOK, wantBody: ""},
		{name: "metrics is public", path: "/metrics", wantStatus: http.StatusOK, wantBody: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.wantBody, rec.Body.String())
				return
			}
			var body httputil.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, httputil.CodeUnauthorized, body.Code)
		})
	}
}

func TestAuthMiddleware_NilVerifierDisablesAuth(t *testing.T) {
	handler := AuthMiddleware(nil, discardLogger())(echoUser)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/packs", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRecovery(t *testing.T) {
	handler := Recovery(discardLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/packs", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body httputil.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, httputil.CodeInternal, body.Code)
}

func TestRecovery_AbortsStartedResponse(t *testing.T) {
	handler := Recovery(discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"id":`))
		panic("encoder failed")
	}))

	rec := httptest.NewRecorder()
	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/packs/p-1", nil))
	})

	// No error envelope glued onto the partial body
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `{"id":`, rec.Body.String())
}

func TestRecovery_PassesAbortThrough(t *testing.T) {
	handler := Recovery(discardLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	rec := httptest.NewRecorder()
	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/packs", nil))
	})
	assert.Zero(t, rec.Body.Len())
}

type recordedRequest struct {
	route  string
	method string
	status int
}

type fakeRecorder struct {
	calls    []recordedRequest
	inFlight int
	peak     int
}

func (f *fakeRecorder) RequestStarted() {
	f.inFlight++
	if f.inFlight > f.peak {
		f.peak = f.inFlight
	}
}

func (f *fakeRecorder) RequestFinished() { f.inFlight-- }

func (f *fakeRecorder) RecordHTTPRequest(route, method string, status int, _ time.Duration) {
	f.calls = append(f.calls, recordedRequest{route: route, method: method, status: status})
}

func TestRequestLogging_UsesMuxPattern(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/packs/{id}/submit", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	})

	recorder := &fakeRecorder{}
	handler := RequestLogging(discardLogger(), recorder)(mux)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/packs/abc/submit", nil))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	require.Len(t, recorder.calls, 2)
	assert.Equal(t, recordedRequest{route: "POST /api/packs/{id}/submit", method: http.MethodPost, status: http.StatusConflict}, recorder.calls[0])
	assert.Equal(t, "unmatched", recorder.calls[1].route)
	assert.Equal(t, http.StatusNotFound, recorder.calls[1].status)
	assert.Equal(t, 0, recorder.inFlight)
	assert.Equal(t, 1, recorder.peak)
}
