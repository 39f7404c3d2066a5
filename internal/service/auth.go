package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/coursedesk/coursedesk/internal/model"
	"github.com/coursedesk/coursedesk/internal/store"
)

// TokenTypeAdmin is the type discriminator embedded in admin session
// tokens. Tokens minted for any other purpose must be rejected by the
// admin gate.
const TokenTypeAdmin = "admin"

var (
	// ErrInvalidCredentials covers unknown email, disabled account, and
	// wrong password alike. The message is deliberately identical for all
	// three so responses cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken covers missing signatures, bad signatures, malformed
	// tokens, and expiry.
	ErrInvalidToken = errors.New("invalid or expired token")

	// ErrWrongTokenType is returned for a valid token whose type tag is
	// not "admin".
	ErrWrongTokenType = errors.New("wrong token type")

	// ErrAdminDisabled is returned when a token's backing admin is missing
	// or inactive.
	ErrAdminDisabled = errors.New("admin account missing or disabled")

	// ErrAdminExists guards the bootstrap-once setup endpoint.
	ErrAdminExists = errors.New("an admin account already exists")
)

// AuthService owns the admin credential lifecycle: password hashing,
// token issuance and verification, and the full request-gate check.
type AuthService struct {
	store  *store.Store
	secret []byte
	ttl    time.Duration
}

// NewAuthService creates an AuthService signing tokens with the given
// secret for the given lifetime.
func NewAuthService(st *store.Store, jwtSecret string, ttl time.Duration) *AuthService {
	return &AuthService{
		store:  st,
		secret: []byte(jwtSecret),
		ttl:    ttl,
	}
}

// TokenTTL returns the configured token lifetime.
func (s *AuthService) TokenTTL() time.Duration {
	return s.ttl
}

// HashPassword derives a bcrypt hash for storage. Plaintext passwords
// are never persisted.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Login authenticates an admin by email and password. On success the
// last-login timestamp is updated and a fresh token is issued.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.Admin, string, error) {
	email = normalizeEmail(email)

	admin, err := s.store.GetAdminByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	// Inactive admins are treated as nonexistent for auth purposes.
	if !admin.IsActive {
		return nil, "", ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}

	if err := s.store.UpdateAdminLastLogin(ctx, admin.ID); err != nil {
		return nil, "", err
	}
	now := time.Now().UTC()
	admin.LastLoginAt = &now

	token, err := s.IssueToken(admin.ID)
	if err != nil {
		return nil, "", err
	}
	return admin, token, nil
}

// Setup creates the first admin account. It fails with ErrAdminExists if
// any admin is already present, making the bootstrap a one-time operation.
// The created admin is a superadmin holding the full permission set.
func (s *AuthService) Setup(ctx context.Context, username, email, password string) (*model.Admin, string, error) {
	exists, err := s.store.HasAnyAdmin(ctx)
	if err != nil {
		return nil, "", err
	}
	if exists {
		return nil, "", ErrAdminExists
	}

	hash, err := s.HashPassword(password)
	if err != nil {
		return nil, "", err
	}

	admin := &model.Admin{
		Username:     strings.TrimSpace(username),
		Email:        normalizeEmail(email),
		PasswordHash: hash,
		Role:         model.RoleSuperAdmin,
		Permissions:  model.AllPermissions(),
		IsActive:     true,
	}
	if err := s.store.CreateAdmin(ctx, admin); err != nil {
		return nil, "", err
	}

	token, err := s.IssueToken(admin.ID)
	if err != nil {
		return nil, "", err
	}
	return admin, token, nil
}

// TokenClaims is the decoded payload of a session token.
type TokenClaims struct {
	AdminID int64
	Type    string
}

type tokenClaims struct {
	AdminID int64  `json:"id"`
	Type    string `json:"type"`
	jwt.RegisteredClaims
}

// IssueToken creates a signed session token for the given admin, tagged
// with the admin type discriminator and the configured expiry.
func (s *AuthService) IssueToken(adminID int64) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		AdminID: adminID,
		Type:    TokenTypeAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			Issuer:    "coursedesk",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// VerifyToken checks the token's signature and expiry and returns its
// claims. It does not check the type tag or the backing admin — callers
// own those checks (see Authenticate).
func (s *AuthService) VerifyToken(tokenStr string) (*TokenClaims, error) {
	claims := &tokenClaims{}

	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	return &TokenClaims{AdminID: claims.AdminID, Type: claims.Type}, nil
}

// Authenticate performs the full gate check: verify the token, enforce
// the type tag, and load the live admin with the password hash redacted.
// Error identity tells callers whether to answer 401 (ErrInvalidToken)
// or 403 (ErrWrongTokenType, ErrAdminDisabled).
func (s *AuthService) Authenticate(ctx context.Context, tokenStr string) (*model.Admin, error) {
	claims, err := s.VerifyToken(tokenStr)
	if err != nil {
		return nil, err
	}

	if claims.Type != TokenTypeAdmin {
		return nil, ErrWrongTokenType
	}

	admin, err := s.store.GetAdmin(ctx, claims.AdminID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrAdminDisabled
		}
		return nil, err
	}
	if !admin.IsActive {
		return nil, ErrAdminDisabled
	}

	admin.PasswordHash = ""
	return admin, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
