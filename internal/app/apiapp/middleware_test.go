package apiapp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	authsvc "github.com/MoonGyu1/Meetinghakgaeron/internal/services/auth"
)

type sessionStoreStub struct {
	sessions map[string]authsvc.SessionRecord
}

func (s *sessionStoreStub) Create(_ context.Context, session authsvc.SessionRecord, _ string) error {
	s.sessions[session.SID] = session
	return nil
}

func (s *sessionStoreStub) GetSession(_ context.Context, sid string) (authsvc.SessionRecord, error) {
	session, ok := s.sessions[sid]
	if !ok {
		return authsvc.SessionRecord{}, authsvc.ErrSessionNotFound
	}
	return session, nil
}

func (s *sessionStoreStub) GetByRefreshToken(_ context.Context, _ string) (authsvc.SessionRecord, error) {
	return authsvc.SessionRecord{}, authsvc.ErrRefreshNotFound
}

func (s *sessionStoreStub) RotateRefresh(_ context.Context, _, _, _ string, _ time.Time) error {
	return nil
}

func (s *sessionStoreStub) DeleteSession(_ context.Context, sid string) error {
	delete(s.sessions, sid)
	return nil
}

func (s *sessionStoreStub) DeleteAllForUser(_ context.Context, _ int64) error {
	return nil
}

func newAuthFixture(t *testing.T) (*authsvc.Service, string) {
	t.Helper()

	jwtManager := authsvc.NewJWTManager("test-secret", 15*time.Minute)
	sessions := &sessionStoreStub{sessions: map[string]authsvc.SessionRecord{
		"sid-1": {
			SID:       "sid-1",
			UserID:    7,
			Role:      "USER",
			ExpiresAt: time.Now().Add(time.Hour),
		},
	}}
	service := authsvc.NewService(jwtManager, sessions, nil, authsvc.MinRefreshTTL)

	token, _, err := jwtManager.GenerateAccessToken(7, "sid-1", "USER")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return service, token
}

func identityEcho(t *testing.T, captured *authsvc.Identity) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := authsvc.IdentityFromContext(r.Context())
		if !ok {
			t.Fatal("identity missing from context")
		}
		*captured = identity
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAuthMiddleware(t *testing.T) {
	service, token := newAuthFixture(t)
	mw := AuthMiddleware(service, zap.NewNop())

	t.Run("valid token attaches identity", func(t *testing.T) {
		var identity authsvc.Identity
		handler := mw(identityEcho(t, &identity))

		req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusNoContent)
		}
		if identity.UserID != 7 || identity.SID != "sid-1" || identity.Role != "USER" {
			t.Fatalf("identity = %+v", identity)
		}
	})

	t.Run("missing header", func(t *testing.T) {
		handler := mw(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			t.Fatal("handler must not run")
		}))

		req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		handler := mw(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			t.Fatal("handler must not run")
		}))

		req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
		}
	})
}

func TestRequireRole(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	requestWithRole := func(role string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
		ctx := authsvc.WithIdentity(req.Context(), authsvc.Identity{UserID: 7, SID: "sid-1", Role: role})
		return req.WithContext(ctx)
	}

	t.Run("matching role passes", func(t *testing.T) {
		rec := httptest.NewRecorder()
		RequireRole("ADMIN")(next).ServeHTTP(rec, requestWithRole("admin"))
		if rec.Code != http.StatusNoContent {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusNoContent)
		}
	})

	t.Run("wrong role is forbidden", func(t *testing.T) {
		rec := httptest.NewRecorder()
		RequireRole("ADMIN")(next).ServeHTTP(rec, requestWithRole("USER"))
		if rec.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusForbidden)
		}
	})

	t.Run("missing identity is unauthorized", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
		RequireRole("ADMIN")(next).ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
		}
	})
}

func TestExtractBearerToken(t *testing.T) {
	cases := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"Basic abc", "", false},
		{"Bearer ", "", false},
		{"", "", false},
	}

	for _, tc := range cases {
		token, ok := extractBearerToken(tc.header)
		if ok != tc.ok || token != tc.token {
			t.Errorf("extractBearerToken(%q) = (%q, %v), want (%q, %v)", tc.header, token, ok, tc.token, tc.ok)
		}
	}
}
