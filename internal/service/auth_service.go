package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/classtrack/rollcall-backend/internal/config"
	"github.com/classtrack/rollcall-backend/internal/metrics"
	"github.com/classtrack/rollcall-backend/internal/model"
)

// CredentialStore is the persisted per-role credential table.
type CredentialStore interface {
	Get(ctx context.Context, role model.Role) (*model.Credential, error)
	Put(ctx context.Context, role model.Role, cred model.Credential) error
}

// SessionStore persists the single active session snapshot.
type SessionStore interface {
	Get(ctx context.Context) (*model.Session, error)
	Put(ctx context.Context, s *model.Session) error
	Delete(ctx context.Context) error
}

// Claims extends JWT standard claims with the session identity. The JTI ties
// a token to the single active session; a replaced session invalidates all
// previously issued tokens.
type Claims struct {
	jwt.RegisteredClaims
	Role        model.Role `json:"role"`
	DisplayName string     `json:"display_name"`
}

// defaultCredentials mirrors the stock credential table the tracker ships
// with. Used only for roles never seeded through cmd/seed-credentials.
var defaultCredentials = map[model.Role]struct {
	username, password, displayName string
}{
	model.RoleAdmin:   {"admin", "admin123", "Administrator"},
	model.RoleTeacher: {"teacher", "teacher123", "Teacher"},
	model.RoleStudent: {"student", "student123", "Student"},
}

// AuthService owns the session state machine: LoggedOut → LoggedIn(role) →
// LoggedOut. Exactly one session is active process-wide; authentication
// replaces it, logout clears it, and the persisted snapshot lets a restarted
// process resume the login.
type AuthService struct {
	cfg      *config.Config
	creds    CredentialStore
	sessions SessionStore
	log      zerolog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config, creds CredentialStore, sessions SessionStore, log zerolog.Logger) *AuthService {
	return &AuthService{
		cfg:      cfg,
		creds:    creds,
		sessions: sessions,
		log:      log.With().Str("component", "auth_service").Logger(),
	}
}

// Login authenticates the (username, password, role) triple against the
// credential record keyed by the requested role. The role is part of the
// lookup key, never inferred from the username. On success the active
// session is replaced and a fresh token issued; on failure the session state
// is untouched.
func (s *AuthService) Login(ctx context.Context, username, password string, role model.Role) (string, *model.Session, error) {
	if !role.Valid() {
		metrics.LoginsTotal.WithLabelValues(string(role), "failure").Inc()
		return "", nil, ErrInvalidCredentials
	}

	cred, err := s.lookupCredential(ctx, role)
	if err != nil {
		return "", nil, err
	}
	if cred.Username != username ||
		bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)) != nil {
		metrics.LoginsTotal.WithLabelValues(string(role), "failure").Inc()
		return "", nil, ErrInvalidCredentials
	}

	session := &model.Session{
		JTI:         uuid.New().String(),
		Role:        role,
		Username:    username,
		DisplayName: cred.DisplayName,
		LoginAt:     time.Now().UTC(),
	}

	token, err := s.signToken(session)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}

	// Replace any previous session. A login while another session exists
	// mirrors the original's overwrite of the stored current user.
	if err := s.sessions.Put(ctx, session); err != nil {
		return "", nil, fmt.Errorf("store session: %w", err)
	}

	metrics.LoginsTotal.WithLabelValues(string(role), "success").Inc()
	s.log.Info().Str("role", string(role)).Str("username", username).Msg("Login")
	return token, session, nil
}

// Logout unconditionally returns to LoggedOut. Roster, ledger, and lock data
// are untouched.
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.sessions.Delete(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.log.Info().Msg("Logout")
	return nil
}

// ActiveSession returns the current session, or nil when logged out.
func (s *AuthService) ActiveSession(ctx context.Context) (*model.Session, error) {
	return s.sessions.Get(ctx)
}

// HasActiveSession reports whether a session is active. Store errors count
// as "no session" so background callers stay quiet while the store is down.
func (s *AuthService) HasActiveSession(ctx context.Context) bool {
	session, err := s.sessions.Get(ctx)
	return err == nil && session != nil
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrSessionInvalidated
	}
	return claims, nil
}

// CheckActiveSession verifies that a token's JTI still identifies the active
// session. Tokens from a replaced or logged-out session fail here.
func (s *AuthService) CheckActiveSession(ctx context.Context, jti string) error {
	session, err := s.sessions.Get(ctx)
	if err != nil {
		return fmt.Errorf("check session: %w", err)
	}
	if session == nil {
		return ErrNoSession
	}
	if session.JTI != jti {
		return ErrSessionInvalidated
	}
	return nil
}

// HashPassword hashes a password with the configured bcrypt cost. Used by
// the credential seeding command.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	return string(hash), err
}

func (s *AuthService) signToken(session *model.Session) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.JTI,
			Subject:   session.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
		},
		Role:        session.Role,
		DisplayName: session.DisplayName,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

// lookupCredential fetches the role's seeded record, lazily seeding the
// stock default when the store has none.
func (s *AuthService) lookupCredential(ctx context.Context, role model.Role) (*model.Credential, error) {
	cred, err := s.creds.Get(ctx, role)
	if err != nil {
		return nil, fmt.Errorf("read credential: %w", err)
	}
	if cred != nil {
		return cred, nil
	}

	def := defaultCredentials[role]
	hash, err := bcrypt.GenerateFromPassword([]byte(def.password), s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash default credential: %w", err)
	}
	cred = &model.Credential{
		Username:     def.username,
		PasswordHash: string(hash),
		DisplayName:  def.displayName,
	}
	if err := s.creds.Put(ctx, role, *cred); err != nil {
		s.log.Warn().Err(err).Str("role", string(role)).Msg("Failed to seed default credential")
	}
	return cred, nil
}
