package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_auth_service.go -package=mocks devnotes/internal/service AuthService

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"devnotes/internal/contextutil"
	"devnotes/internal/notes"
	"devnotes/internal/storage"
)

// MinPasswordLength is the shortest password Register and ChangePassword accept.
const MinPasswordLength = 6

// RegisterRequest carries the fields of a new account.
type RegisterRequest struct {
	Username string
	Email    string
	Password string
}

// LoginRequest carries credentials.
type LoginRequest struct {
	Email    string
	Password string
}

// LoginResponse is a signed session token and the user it belongs to.
type LoginResponse struct {
	Token     string
	ExpiresAt time.Time
	User      notes.User
}

// AuthService provides account and session functionality.
type AuthService interface {
	// Register creates an account. Returns ErrConflict if the email is taken.
	Register(ctx context.Context, req RegisterRequest) (notes.User, error)
	// Login checks credentials and issues a token. Returns ErrUnauthorized on
	// unknown email or wrong password alike.
	Login(ctx context.Context, req LoginRequest) (LoginResponse, error)
	// VerifyToken returns the user id the token was issued to.
	VerifyToken(ctx context.Context, token string) (string, error)
	// CurrentUser returns the account of userID.
	CurrentUser(ctx context.Context, userID string) (notes.User, error)
	// UpdateProfile changes the username of userID.
	UpdateProfile(ctx context.Context, userID, username string) (notes.User, error)
	// ChangePassword replaces the password after checking the current one.
	ChangePassword(ctx context.Context, userID, current, next string) error
}

// authService implements AuthService with bcrypt password hashes and HS256
// signed tokens.
type authService struct {
	users  storage.UserStore
	secret []byte
	ttl    time.Duration
	cost   int
	now    func() time.Time
}

// AuthOption configures an AuthService.
type AuthOption func(*authService)

// WithClock overrides the time source used for token issue and expiry.
func WithClock(now func() time.Time) AuthOption {
	return func(s *authService) { s.now = now }
}

// WithBcryptCost overrides the bcrypt cost. Tests use bcrypt.MinCost.
func WithBcryptCost(cost int) AuthOption {
	return func(s *authService) { s.cost = cost }
}

// NewAuthService creates a new AuthService signing tokens with secret.
func NewAuthService(users storage.UserStore, secret string, ttl time.Duration, opts ...AuthOption) AuthService {
	s := &authService{
		users:  users,
		secret: []byte(secret),
		ttl:    ttl,
		cost:   bcrypt.DefaultCost,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *authService) Register(ctx context.Context, req RegisterRequest) (notes.User, error) {
	logger := contextutil.LoggerFromContext(ctx)

	username := strings.TrimSpace(req.Username)
	email := normalizeEmail(req.Email)
	if username == "" {
		return notes.User{}, invalid("username", "cannot be empty")
	}
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return notes.User{}, invalid("email", "must be a valid address")
	}
	if err := checkPassword(req.Password); err != nil {
		return notes.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return notes.User{}, WrapError(err, "failed to hash password")
	}

	record := &storage.UserRecord{Username: username, Email: email, PasswordHash: string(hash)}
	if err := s.users.Create(ctx, record); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			logger.InfoContext(ctx, "registration with existing email")
			return notes.User{}, fmt.Errorf("email already registered: %w", ErrConflict)
		}
		logger.ErrorContext(ctx, "failed to create user", "error", err)
		return notes.User{}, WrapError(err, "failed to create user")
	}

	logger.InfoContext(ctx, "user registered", "user_id", record.ID)
	return toUser(record), nil
}

func (s *authService) Login(ctx context.Context, req LoginRequest) (LoginResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	record, err := s.users.GetByEmail(ctx, normalizeEmail(req.Email))
	if errors.Is(err, storage.ErrNotFound) {
		logger.InfoContext(ctx, "login for unknown email")
		return LoginResponse{}, unauthorized("invalid credentials")
	}
	if err != nil {
		return LoginResponse{}, WrapError(err, "failed to look up user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(record.PasswordHash), []byte(req.Password)); err != nil {
		logger.InfoContext(ctx, "login with wrong password", "user_id", record.ID)
		return LoginResponse{}, unauthorized("invalid credentials")
	}

	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   record.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return LoginResponse{}, WrapError(err, "failed to sign token")
	}

	logger.InfoContext(ctx, "user logged in", "user_id", record.ID)
	return LoginResponse{Token: token, ExpiresAt: expiresAt, User: toUser(record)}, nil
}

func (s *authService) VerifyToken(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", unauthorized("no token provided")
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		contextutil.LoggerFromContext(ctx).DebugContext(ctx, "token rejected", "error", err)
		return "", unauthorized("invalid token")
	}
	if claims.Subject == "" {
		return "", unauthorized("token has no subject")
	}
	return claims.Subject, nil
}

func (s *authService) CurrentUser(ctx context.Context, userID string) (notes.User, error) {
	record, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		// The token outlived its account.
		return notes.User{}, unauthorized("user " + userID + " no longer exists")
	}
	if err != nil {
		return notes.User{}, WrapError(err, "failed to look up user")
	}
	return toUser(record), nil
}

func (s *authService) UpdateProfile(ctx context.Context, userID, username string) (notes.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return notes.User{}, invalid("username", "cannot be empty")
	}

	if err := s.users.UpdateUsername(ctx, userID, username); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return notes.User{}, unauthorized("user " + userID)
		}
		return notes.User{}, WrapError(err, "failed to update username")
	}

	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "profile updated", "user_id", userID)
	return s.CurrentUser(ctx, userID)
}

func (s *authService) ChangePassword(ctx context.Context, userID, current, next string) error {
	logger := contextutil.LoggerFromContext(ctx)

	if err := checkPassword(next); err != nil {
		return err
	}

	record, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return unauthorized("user " + userID)
	}
	if err != nil {
		return WrapError(err, "failed to look up user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(record.PasswordHash), []byte(current)); err != nil {
		logger.InfoContext(ctx, "password change with wrong current password", "user_id", userID)
		return invalid("currentPassword", "is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), s.cost)
	if err != nil {
		return WrapError(err, "failed to hash password")
	}
	if err := s.users.UpdatePasswordHash(ctx, userID, string(hash)); err != nil {
		return WrapError(err, "failed to store password")
	}

	logger.InfoContext(ctx, "password changed", "user_id", userID)
	return nil
}

func checkPassword(password string) error {
	if len(password) < MinPasswordLength {
		return invalid("password", fmt.Sprintf("must be at least %d characters", MinPasswordLength))
	}
	// bcrypt only looks at the first 72 bytes.
	if len(password) > 72 {
		return invalid("password", "must be at most 72 bytes")
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func toUser(r *storage.UserRecord) notes.User {
	return notes.User{ID: r.ID, Username: r.Username, Email: r.Email}
}
