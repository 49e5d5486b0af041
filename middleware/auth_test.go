package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cppla/storeapi/models"
	"github.com/cppla/storeapi/utils"
)

type fakeUsers struct {
	users map[string]*models.User
	err   error
	calls int
}

func (f *fakeUsers) FindUserByUsername(_ context.Context, username string) (*models.User, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if u, ok := f.users[username]; ok {
		return u, nil
	}
	return nil, utils.ErrNotFound
}

type revokedSet map[string]bool

func (r revokedSet) IsRevoked(_ context.Context, token string) bool { return r[token] }

func setup(t *testing.T) (*Authenticator, *utils.TokenService, *fakeUsers) {
	t.Helper()
	tokens, err := utils.NewTokenService("test-secret")
	if err != nil {
		t.Fatal(err)
	}
	users := &fakeUsers{users: map[string]*models.User{
		"alice": {ID: 1, Username: "alice", Email: "a@x.com", PasswordHash: "hash"},
	}}
	return NewAuthenticator(tokens, users, nil), tokens, users
}

func issue(t *testing.T, tokens *utils.TokenService, subject string, ttl time.Duration) string {
	t.Helper()
	token, err := tokens.Issue(utils.Identity{Subject: subject, UserID: 1, Email: "a@x.com"}, ttl)
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func TestResolveValidToken(t *testing.T) {
	auth, tokens, _ := setup(t)

	user, err := auth.Resolve(context.Background(), issue(t, tokens, "alice", time.Minute))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if user.ID != 1 || user.Username != "alice" {
		t.Errorf("unexpected principal %+v", user)
	}
}

func TestResolveBadTokenSkipsStore(t *testing.T) {
	auth, tokens, users := setup(t)

	for name, token := range map[string]string{
		"garbage": "not-a-token",
		"expired": issue(t, tokens, "alice", -time.Minute),
	} {
		_, err := auth.Resolve(context.Background(), token)
		if !errors.Is(err, utils.ErrInvalidCredentials) {
			t.Errorf("%s: got %v, want ErrInvalidCredentials", name, err)
		}
	}
	if users.calls != 0 {
		t.Errorf("store consulted %d times for invalid tokens", users.calls)
	}
}

func TestResolveUnknownUserLooksLikeBadToken(t *testing.T) {
	auth, tokens, _ := setup(t)

	_, badSig := auth.Resolve(context.Background(), "a.b.c")
	_, unknown := auth.Resolve(context.Background(), issue(t, tokens, "mallory", time.Minute))
	if badSig != unknown {
		t.Errorf("errors differ: bad signature %v, unknown user %v", badSig, unknown)
	}
	if !errors.Is(unknown, utils.ErrInvalidCredentials) {
		t.Errorf("got %v, want ErrInvalidCredentials", unknown)
	}
}

func TestResolveEmptySubject(t *testing.T) {
	auth, tokens, users := setup(t)

	_, err := auth.Resolve(context.Background(), issue(t, tokens, "", time.Minute))
	if !errors.Is(err, utils.ErrInvalidCredentials) {
		t.Errorf("got %v, want ErrInvalidCredentials", err)
	}
	if users.calls != 0 {
		t.Error("store consulted for a token without subject")
	}
}

func TestResolveRevokedToken(t *testing.T) {
	_, tokens, users := setup(t)
	token := issue(t, tokens, "alice", time.Minute)
	auth := NewAuthenticator(tokens, users, revokedSet{token: true})

	if _, err := auth.Resolve(context.Background(), token); !errors.Is(err, utils.ErrInvalidCredentials) {
		t.Errorf("got %v, want ErrInvalidCredentials", err)
	}
}

func TestResolvePropagatesStoreFailure(t *testing.T) {
	auth, tokens, users := setup(t)
	users.err = errors.New("connection refused")

	_, err := auth.Resolve(context.Background(), issue(t, tokens, "alice", time.Minute))
	if err == nil || errors.Is(err, utils.ErrInvalidCredentials) {
		t.Errorf("store failure must not be reported as bad credentials, got %v", err)
	}
}

func TestAuthRequired(t *testing.T) {
	gin.SetMode(gin.TestMode)
	auth, tokens, _ := setup(t)

	r := gin.New()
	r.GET("/private", auth.AuthRequired(), func(ctx *gin.Context) {
		user, _ := ctx.Get(ContextPrincipalKey)
		ctx.String(http.StatusOK, user.(*models.User).Username)
	})

	valid := issue(t, tokens, "alice", time.Minute)
	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + valid, http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"invalid token", "Bearer nope", http.StatusUnauthorized},
		{"valid token", "Bearer " + valid, http.StatusOK},
		{"lowercase scheme", "bearer " + valid, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.want, w.Body.String())
			}
			if tt.want == http.StatusUnauthorized && w.Header().Get("WWW-Authenticate") != "Bearer" {
				t.Error("missing WWW-Authenticate challenge")
			}
			if tt.want == http.StatusOK && w.Body.String() != "alice" {
				t.Errorf("body = %q, want alice", w.Body.String())
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(ctx *gin.Context) { ctx.String(http.StatusOK, ctx.GetString(utils.RequestIDKey)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get(RequestIDHeader)
	if generated == "" || generated != w.Body.String() {
		t.Errorf("generated id %q, body %q", generated, w.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Errorf("inbound id not propagated, got %q", got)
	}
}
