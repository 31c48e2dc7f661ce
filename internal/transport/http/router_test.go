package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/notes-api-nosql/internal/config"
	"github.com/notes-api-nosql/internal/domain"
	"github.com/notes-api-nosql/internal/infrastructure/memory"
	jwtinfra "github.com/notes-api-nosql/internal/infrastructure/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type inbox struct{ codes map[string]string }

func (i *inbox) SendOTP(_ context.Context, email, code string, _ time.Duration) error {
	i.codes[email] = code
	return nil
}

type fakeGoogle struct{ identities map[string]*domain.GoogleIdentity }

func (f *fakeGoogle) Verify(_ context.Context, token string) (*domain.GoogleIdentity, error) {
	if gi, ok := f.identities[token]; ok {
		return gi, nil
	}
	return nil, domain.ErrInvalidToken
}

type testServer struct {
	h     http.Handler
	inbox *inbox
	users *memory.UserRepo
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	jwtp, err := jwtinfra.NewProvider("router-test-secret", 7*24*time.Hour)
	require.NoError(t, err)
	cfg := &config.Config{AllowedOrigins: []string{"*"}, RateLimitRPS: 100, RateLimitBurst: 100}
	s := &testServer{inbox: &inbox{codes: map[string]string{}}, users: memory.NewUserRepo()}
	h, stop := NewRouter(cfg, &Deps{
		UserRepo:  s.users,
		NoteRepo:  memory.NewNoteRepo(),
		OTPSender: s.inbox,
		Google: &fakeGoogle{identities: map[string]*domain.GoogleIdentity{
			"ann-token": {Subject: "g1", Email: "a@x.com", Name: "Ann", EmailVerified: true},
		}},
		JWTProvider: jwtp,
		OTPTTL:      10 * time.Minute,
	})
	t.Cleanup(stop)
	s.h = h
	return s
}

func (s *testServer) call(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	s.h.ServeHTTP(rr, req)
	var out map[string]interface{}
	if strings.HasPrefix(strings.TrimSpace(rr.Body.String()), "{") {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	}
	return rr, out
}

func TestRouter_Health(t *testing.T) {
	s := newTestServer(t)
	rr, body := s.call(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", body["message"])
}

func TestRouter_Metrics(t *testing.T) {
	s := newTestServer(t)
	rr := httptest.NewRecorder()
	s.h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "go_goroutines")
}

func TestRouter_OTPLoginThenNotes(t *testing.T) {
	s := newTestServer(t)

	rr, body := s.call(t, http.MethodPost, "/api/auth/send-otp", "", map[string]string{"email": "u@example.com"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "10 minutes", body["expiresIn"])
	code := s.inbox.codes["u@example.com"]
	require.Len(t, code, 6)

	rr, body = s.call(t, http.MethodPost, "/api/auth/verify-otp", "", map[string]string{"email": "u@example.com", "otp": code})
	require.Equal(t, http.StatusOK, rr.Code)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)

	rr, _ = s.call(t, http.MethodPost, "/api/auth/verify-otp", "", map[string]string{"email": "u@example.com", "otp": code})
	assert.Equal(t, http.StatusBadRequest, rr.Code, "codes are single use")

	rr, note := s.call(t, http.MethodPost, "/api/notes", token, map[string]string{"content": "buy milk"})
	require.Equal(t, http.StatusCreated, rr.Code)
	noteID, _ := note["_id"].(string)
	require.NotEmpty(t, noteID)

	rr, note = s.call(t, http.MethodPut, "/api/notes/"+noteID, token, map[string]string{"content": "buy oat milk"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "buy oat milk", note["content"])

	rr, _ = s.call(t, http.MethodGet, "/api/notes", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var notes []domain.Note
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &notes))
	require.Len(t, notes, 1)

	rr, _ = s.call(t, http.MethodDelete, "/api/notes/"+noteID, token, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	rr, _ = s.call(t, http.MethodDelete, "/api/notes/"+noteID, token, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRouter_GoogleLinksOTPAccount(t *testing.T) {
	s := newTestServer(t)

	_, _ = s.call(t, http.MethodPost, "/api/auth/send-otp", "", map[string]string{"email": "a@x.com"})
	rr, _ := s.call(t, http.MethodPost, "/api/auth/verify-otp", "", map[string]string{"email": "a@x.com", "otp": s.inbox.codes["a@x.com"]})
	require.Equal(t, http.StatusOK, rr.Code)

	rr, body := s.call(t, http.MethodPost, "/api/auth/google", "", map[string]string{"token": "ann-token"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, map[string]interface{}{"email": "a@x.com", "name": "Ann"}, body["user"])
	assert.Equal(t, 1, s.users.Len())

	rr, _ = s.call(t, http.MethodPost, "/api/auth/google", "", map[string]string{"token": "forged"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRouter_NotesRequireToken(t *testing.T) {
	s := newTestServer(t)
	rr, body := s.call(t, http.MethodGet, "/api/notes", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "Access denied", body["error"])

	rr, body = s.call(t, http.MethodGet, "/api/notes", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "Invalid token", body["error"])
}

func TestRouter_NotesAreOwnerScoped(t *testing.T) {
	s := newTestServer(t)
	login := func(email string) string {
		_, _ = s.call(t, http.MethodPost, "/api/auth/send-otp", "", map[string]string{"email": email})
		_, body := s.call(t, http.MethodPost, "/api/auth/verify-otp", "", map[string]string{"email": email, "otp": s.inbox.codes[email]})
		tok, _ := body["token"].(string)
		require.NotEmpty(t, tok)
		return tok
	}
	alice, bob := login("alice@example.com"), login("bob@example.com")

	_, note := s.call(t, http.MethodPost, "/api/notes", alice, map[string]string{"content": "secret"})
	noteID, _ := note["_id"].(string)

	rr, _ := s.call(t, http.MethodPut, "/api/notes/"+noteID, bob, map[string]string{"content": "mine now"})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr, _ = s.call(t, http.MethodGet, "/api/notes", bob, nil)
	assert.Equal(t, "[]\n", rr.Body.String())
}
