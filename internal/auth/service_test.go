package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/shopfront-backend/internal/users"
	pkgAuth "github.com/angelmondragon/shopfront-backend/pkg/auth"
	"github.com/angelmondragon/shopfront-backend/pkg/auth/session"
	"github.com/angelmondragon/shopfront-backend/pkg/config"
	"github.com/angelmondragon/shopfront-backend/pkg/db/models"
	"github.com/angelmondragon/shopfront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/shopfront-backend/pkg/errors"
	"github.com/angelmondragon/shopfront-backend/pkg/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var testJWT = config.JWTConfig{
	Secret:                 "secret",
	Issuer:                 "shopfront",
	ExpirationMinutes:      30,
	RefreshTokenTTLMinutes: 120,
}

// light argon2 params keep the tests fast
var testPassword = config.PasswordConfig{
	ArgonMemoryKB:    8 * 1024,
	ArgonTime:        1,
	ArgonParallelism: 1,
	ArgonSaltLen:     16,
	ArgonKeyLen:      32,
}

func TestRegisterIssuesTokens(t *testing.T) {
	svc, repo, sessions := buildTestService(t)

	resp, err := svc.Register(context.Background(), RegisterRequest{
		Username: " ada ",
		Email:    "Ada@Example.com",
		Password: "hunter22",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if resp.User.Email != "ada@example.com" || resp.User.Username != "ada" {
		t.Fatalf("expected normalized identifiers, got %+v", resp.User)
	}
	if resp.User.Role != enums.UserRoleRegular {
		t.Fatalf("expected regular role, got %s", resp.User.Role)
	}
	if len(repo.byEmail) != 1 {
		t.Fatalf("expected user to be stored")
	}

	claims, err := pkgAuth.ParseAccessToken(testJWT, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if _, ok := sessions.sessions[claims.ID]; !ok {
		t.Fatalf("expected session for jti %s", claims.ID)
	}

	_, err = svc.Register(context.Background(), RegisterRequest{Username: "other", Email: "ada@example.com", Password: "hunter22"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict for duplicate email, got %v", err)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, repo, _ := buildTestService(t)
	repo.add(t, "bob", "bob@example.com", "correct-horse", enums.UserRoleRegular)

	cases := map[string]LoginRequest{
		"unknownEmail":  {Email: "nobody@example.com", Password: "correct-horse"},
		"wrongPassword": {Email: "bob@example.com", Password: "nope"},
		"blank":         {},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), req)
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
				t.Fatalf("expected unauthorized error, got %v", err)
			}
			if typed.Message() != invalidCredentialsMessage {
				t.Fatalf("expected uniform message, got %q", typed.Message())
			}
		})
	}
}

func TestLoginCarriesRoleAndRecordsLogin(t *testing.T) {
	svc, repo, _ := buildTestService(t)
	user := repo.add(t, "root", "root@example.com", "admin-pass", enums.UserRoleAdmin)

	resp, err := svc.Login(context.Background(), LoginRequest{Email: "ROOT@example.com", Password: "admin-pass"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims, err := pkgAuth.ParseAccessToken(testJWT, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Role != enums.UserRoleAdmin || claims.UserID != user.ID {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if user.LastLoginAt == nil {
		t.Fatal("expected last login to be recorded")
	}
	if resp.RefreshToken == "" {
		t.Fatal("expected refresh token")
	}
}

func TestLoginRehashesWeakHash(t *testing.T) {
	svc, repo, _ := buildTestService(t)
	weak := testPassword
	weak.ArgonTime = 0
	weak.ArgonMemoryKB = 1024
	hash, err := security.HashPassword("old-pass", weak)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	user := repo.insert(&models.User{ID: uuid.New(), Username: "old", Email: "old@example.com", PasswordHash: hash, Role: enums.UserRoleRegular})

	if _, err := svc.Login(context.Background(), LoginRequest{Email: "old@example.com", Password: "old-pass"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.PasswordHash == hash {
		t.Fatal("expected hash to be upgraded")
	}
	if security.NeedsRehash(user.PasswordHash, testPassword) {
		t.Fatal("upgraded hash still reports weak params")
	}
}

func TestRefreshRotatesSession(t *testing.T) {
	svc, repo, sessions := buildTestService(t)
	repo.add(t, "eve", "eve@example.com", "pass-word", enums.UserRoleRegular)
	ctx := context.Background()

	first, err := svc.Login(ctx, LoginRequest{Email: "eve@example.com", Password: "pass-word"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	second, err := svc.Refresh(ctx, first.AccessToken, first.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if second.RefreshToken == first.RefreshToken {
		t.Fatal("expected a new refresh token")
	}
	if len(sessions.sessions) != 1 {
		t.Fatalf("expected old session to be dropped, have %d", len(sessions.sessions))
	}

	if _, err := svc.Refresh(ctx, first.AccessToken, first.RefreshToken); !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected reused refresh token to fail, got %v", err)
	}
	if _, err := svc.Refresh(ctx, "not-a-jwt", second.RefreshToken); !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected malformed access token to fail, got %v", err)
	}
}

func TestLogoutRevokes(t *testing.T) {
	svc, repo, sessions := buildTestService(t)
	repo.add(t, "kim", "kim@example.com", "pass-word", enums.UserRoleRegular)
	ctx := context.Background()

	resp, err := svc.Login(ctx, LoginRequest{Email: "kim@example.com", Password: "pass-word"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims, _ := pkgAuth.ParseAccessToken(testJWT, resp.AccessToken)
	if err := svc.Logout(ctx, claims.ID); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(sessions.sessions) != 0 {
		t.Fatal("expected session to be revoked")
	}
	if err := svc.Logout(ctx, ""); err != nil {
		t.Fatalf("anonymous logout should be a no-op, got %v", err)
	}
}

func TestMe(t *testing.T) {
	svc, repo, _ := buildTestService(t)
	user := repo.add(t, "zed", "zed@example.com", "pass-word", enums.UserRoleRegular)

	dto, err := svc.Me(context.Background(), user.ID)
	if err != nil || dto.ID != user.ID {
		t.Fatalf("me: %v", err)
	}
	if _, err := svc.Me(context.Background(), uuid.New()); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func buildTestService(t *testing.T) (Service, *stubUserRepo, *stubSessionManager) {
	t.Helper()
	repo := &stubUserRepo{byEmail: map[string]*models.User{}}
	sessions := &stubSessionManager{sessions: map[string]session.Session{}}
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		SessionManager: sessions,
		JWTConfig:      testJWT,
		PasswordConfig: testPassword,
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, repo, sessions
}

type stubUserRepo struct {
	byEmail map[string]*models.User
}

func (s *stubUserRepo) add(t *testing.T, username, email, password string, role enums.UserRole) *models.User {
	t.Helper()
	hash, err := security.HashPassword(password, testPassword)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return s.insert(&models.User{ID: uuid.New(), Username: username, Email: email, PasswordHash: hash, Role: role})
}

func (s *stubUserRepo) insert(u *models.User) *models.User {
	s.byEmail[u.Email] = u
	return u
}

func (s *stubUserRepo) Create(_ context.Context, dto users.CreateUserDTO) (*models.User, error) {
	u := dto.ToModel()
	u.ID = uuid.New()
	u.CreatedAt = time.Now()
	return s.insert(u), nil
}

func (s *stubUserRepo) ExistsByEmailOrUsername(_ context.Context, email, username string) (bool, error) {
	for _, u := range s.byEmail {
		if u.Email == email || strings.EqualFold(u.Username, username) {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if u, ok := s.byEmail[email]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	for _, u := range s.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	u, err := s.FindByID(context.Background(), id)
	if err != nil {
		return err
	}
	u.LastLoginAt = &at
	return nil
}

func (s *stubUserRepo) UpdatePasswordHash(_ context.Context, id uuid.UUID, hash string) error {
	u, err := s.FindByID(context.Background(), id)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

type stubSessionManager struct {
	sessions map[string]session.Session
}

func (s *stubSessionManager) Issue(_ context.Context, userID uuid.UUID) (session.Session, error) {
	sess := session.Session{AccessID: session.NewAccessID(), RefreshToken: uuid.NewString(), UserID: userID}
	s.sessions[sess.AccessID] = sess
	return sess, nil
}

func (s *stubSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (session.Session, error) {
	current, ok := s.sessions[oldAccessID]
	if !ok || current.RefreshToken != provided {
		return session.Session{}, session.ErrInvalidRefreshToken
	}
	delete(s.sessions, oldAccessID)
	return s.Issue(ctx, current.UserID)
}

func (s *stubSessionManager) Revoke(_ context.Context, accessID string) error {
	if accessID == "" {
		return errors.New("access id is required")
	}
	delete(s.sessions, accessID)
	return nil
}
