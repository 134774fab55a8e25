package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MoonGyu1/Meetinghakgaeron/internal/domain/model"
	pgrepo "github.com/MoonGyu1/Meetinghakgaeron/internal/repo/postgres"
)

type sessionStoreStub struct {
	sessions map[string]SessionRecord
	byToken  map[string]string
}

func newSessionStoreStub() *sessionStoreStub {
	return &sessionStoreStub{
		sessions: make(map[string]SessionRecord),
		byToken:  make(map[string]string),
	}
}

func (s *sessionStoreStub) Create(_ context.Context, session SessionRecord, refreshToken string) error {
	s.sessions[session.SID] = session
	s.byToken[refreshToken] = session.SID
	return nil
}

func (s *sessionStoreStub) GetSession(_ context.Context, sid string) (SessionRecord, error) {
	session, ok := s.sessions[sid]
	if !ok {
		return SessionRecord{}, ErrSessionNotFound
	}
	return session, nil
}

func (s *sessionStoreStub) GetByRefreshToken(_ context.Context, refreshToken string) (SessionRecord, error) {
	sid, ok := s.byToken[refreshToken]
	if !ok {
		return SessionRecord{}, ErrRefreshNotFound
	}
	return s.sessions[sid], nil
}

func (s *sessionStoreStub) RotateRefresh(_ context.Context, sid, oldToken, newToken string, expiresAt time.Time) error {
	storedSID, ok := s.byToken[oldToken]
	if !ok || (sid != "" && sid != storedSID) {
		return ErrRefreshNotFound
	}
	delete(s.byToken, oldToken)
	s.byToken[newToken] = storedSID
	session := s.sessions[storedSID]
	session.ExpiresAt = expiresAt
	s.sessions[storedSID] = session
	return nil
}

func (s *sessionStoreStub) DeleteSession(_ context.Context, sid string) error {
	delete(s.sessions, sid)
	for token, storedSID := range s.byToken {
		if storedSID == sid {
			delete(s.byToken, token)
		}
	}
	return nil
}

func (s *sessionStoreStub) DeleteAllForUser(_ context.Context, userID int64) error {
	for sid, session := range s.sessions {
		if session.UserID == userID {
			_ = s.DeleteSession(context.Background(), sid)
		}
	}
	return nil
}

type userStoreStub struct {
	users  map[int64]model.User
	nextID int64
}

func newUserStoreStub() *userStoreStub {
	return &userStoreStub{users: make(map[int64]model.User), nextID: 1}
}

func (s *userStoreStub) GetByKakaoUID(_ context.Context, kakaoUID int64) (model.User, error) {
	for _, user := range s.users {
		if user.KakaoUID == kakaoUID {
			return user, nil
		}
	}
	return model.User{}, pgrepo.ErrUserNotFound
}

func (s *userStoreStub) Create(_ context.Context, kakaoUID int64, nickname, referralID string) (model.User, error) {
	user := model.User{
		ID:         s.nextID,
		KakaoUID:   kakaoUID,
		Nickname:   nickname,
		ReferralID: referralID,
		Role:       "user",
		CreatedAt:  time.Now().UTC(),
	}
	s.users[user.ID] = user
	s.nextID++
	return user, nil
}

func newTestService() (*Service, *sessionStoreStub, *userStoreStub) {
	sessions := newSessionStoreStub()
	users := newUserStoreStub()
	jwtManager := NewJWTManager("test-secret", 15*time.Minute)
	svc := NewService(jwtManager, sessions, users, 720*time.Hour)
	return svc, sessions, users
}

func TestSignInKakaoCreatesUserOnFirstVisit(t *testing.T) {
	svc, _, users := newTestService()

	result, err := svc.SignInKakao(context.Background(), 9001, "미팅이")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Fatalf("expected issued tokens, got %+v", result)
	}
	if len(users.users) != 1 {
		t.Fatalf("expected 1 created user, got %d", len(users.users))
	}
	if users.users[1].ReferralID == "" {
		t.Fatalf("new user must get a referral code")
	}

	// Second sign-in reuses the account.
	again, err := svc.SignInKakao(context.Background(), 9001, "미팅이")
	if err != nil {
		t.Fatalf("second sign in: %v", err)
	}
	if len(users.users) != 1 {
		t.Fatalf("second sign in must not create another user")
	}
	if again.Me.ID != result.Me.ID {
		t.Fatalf("unexpected user id: got %d want %d", again.Me.ID, result.Me.ID)
	}
}

func TestSignInKakaoRejectsInvalidUID(t *testing.T) {
	svc, _, _ := newTestService()

	if _, err := svc.SignInKakao(context.Background(), 0, "x"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	svc, _, _ := newTestService()

	initial, err := svc.SignInKakao(context.Background(), 9001, "u")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}

	rotated, err := svc.Refresh(context.Background(), initial.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if rotated.RefreshToken == initial.RefreshToken {
		t.Fatalf("refresh token must rotate")
	}

	// Old refresh token is dead after rotation.
	if _, err := svc.Refresh(context.Background(), initial.RefreshToken); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for re-used token, got %v", err)
	}
}

func TestValidateAccessTokenChecksSession(t *testing.T) {
	svc, _, _ := newTestService()

	result, err := svc.SignInKakao(context.Background(), 9001, "u")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}

	claims, err := svc.ValidateAccessToken(context.Background(), result.AccessToken)
	if err != nil {
		t.Fatalf("validate access token: %v", err)
	}
	if claims.UserID != result.Me.ID {
		t.Fatalf("unexpected user id in claims: got %d want %d", claims.UserID, result.Me.ID)
	}

	// Logout kills the session, so the still-unexpired JWT stops working.
	if err := svc.Logout(context.Background(), claims.SID); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := svc.ValidateAccessToken(context.Background(), result.AccessToken); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized after logout, got %v", err)
	}
}

func TestNewReferralIDIsStableForInstant(t *testing.T) {
	at := time.Date(2023, 1, 20, 21, 37, 26, 0, time.UTC)
	first := NewReferralID(at)
	second := NewReferralID(at)
	if first != second || first == "" {
		t.Fatalf("referral id must be deterministic per instant, got %q and %q", first, second)
	}
}
