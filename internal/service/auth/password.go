package auth

import (
	"context"
	"crypto/subtle"
	"fmt"

	"github.com/phrazzld/artquiz-api/internal/config"
	"golang.org/x/crypto/bcrypt"
)

// PasswordVerifier defines the interface for comparing passwords.
type PasswordVerifier interface {
	// Compare compares a hashed password with its possible plaintext equivalent.
	// Returns nil on success, or an error on failure (e.g., mismatch).
	Compare(hashedPassword, password string) error
}

// BcryptVerifier implements PasswordVerifier using bcrypt.
type BcryptVerifier struct{}

// NewBcryptVerifier creates a new BcryptVerifier.
func NewBcryptVerifier() *BcryptVerifier {
	return &BcryptVerifier{}
}

// Compare implements the PasswordVerifier interface using bcrypt.
func (v *BcryptVerifier) Compare(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// AdminAuthenticator exchanges the administrator's credentials for a token.
type AdminAuthenticator struct {
	username     string
	passwordHash string
	verifier     PasswordVerifier
	jwt          JWTService
}

// NewAdminAuthenticator creates an AdminAuthenticator from the auth settings.
func NewAdminAuthenticator(cfg config.AuthConfig, verifier PasswordVerifier, jwtService JWTService) (*AdminAuthenticator, error) {
	if verifier == nil || jwtService == nil {
		return nil, fmt.Errorf("verifier and jwt service are required")
	}
	if cfg.AdminUsername == "" || cfg.AdminPasswordHash == "" {
		return nil, fmt.Errorf("admin username and password hash are required")
	}
	return &AdminAuthenticator{
		username:     cfg.AdminUsername,
		passwordHash: cfg.AdminPasswordHash,
		verifier:     verifier,
		jwt:          jwtService,
	}, nil
}

// Login checks the credentials and returns an admin token.
// Returns ErrInvalidCredentials on any mismatch.
func (a *AdminAuthenticator) Login(ctx context.Context, username, password string) (string, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	passErr := a.verifier.Compare(a.passwordHash, password)
	if !userOK || passErr != nil {
		return "", ErrInvalidCredentials
	}
	return a.jwt.GenerateToken(ctx, username, RoleAdmin)
}
