package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"taskmind/internal/auth"
	"taskmind/internal/domain"
	"taskmind/internal/mail"
	"taskmind/internal/repository"
)

var (
	// ErrInvalidCredentials indicates that provided login credentials are incorrect.
	// It covers both unknown email and wrong password so neither case is revealed.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrDuplicateEmail is returned when registering or updating to an email already in use.
	ErrDuplicateEmail = errors.New("user already exists")
	// ErrUnauthorized indicates a missing, invalid, or expired session token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidResetToken indicates a reset token that failed verification for any reason.
	ErrInvalidResetToken = errors.New("invalid or expired token")
	// ErrTokenUserMismatch indicates a reset link whose path user id does not match the token subject.
	ErrTokenUserMismatch = errors.New("token user mismatch")
	// ErrValidation wraps malformed or missing input.
	ErrValidation = errors.New("validation failed")
)

// mailTimeout bounds the notifier call so a stuck relay cannot hold a request open.
const mailTimeout = 10 * time.Second

// AuthResult is the outcome of an operation that issues a session token.
type AuthResult struct {
	User  *domain.User
	Token string
}

// AuthService orchestrates registration, login, profile access, and the
// password-reset flow.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	VerifySession(ctx context.Context, token string) (int64, error)
	GetProfile(ctx context.Context, userID int64) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID int64, name, email *string) (*AuthResult, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, pathUserID int64, token, newPassword string) error
}

type authService struct {
	users     repository.UserRepository
	tokens    *auth.TokenIssuer
	notifier  mail.Notifier
	clientURL string
	logger    *logrus.Logger

	// dummyHash is compared against when a login email is unknown, so both
	// failure paths pay the bcrypt cost.
	dummyHash string
}

func NewAuthService(users repository.UserRepository, tokens *auth.TokenIssuer, notifier mail.Notifier, clientURL string, logger *logrus.Logger) (AuthService, error) {
	dummyHash, err := auth.HashPassword("taskmind-dummy-credential")
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}
	return &authService{
		users:     users,
		tokens:    tokens,
		notifier:  notifier,
		clientURL: strings.TrimRight(clientURL, "/"),
		logger:    logger,
		dummyHash: dummyHash,
	}, nil
}

func (s *authService) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrValidation)
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}
	if _, err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}

	return s.withSessionToken(user)
}

func (s *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Burn a compare anyway so unknown emails cost the same.
			auth.CheckPassword(password, s.dummyHash)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return s.withSessionToken(user)
}

// VerifySession validates a session-purpose token and returns the subject.
// Reset tokens are rejected here so a reset link can never act as a login.
func (s *authService) VerifySession(ctx context.Context, token string) (int64, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return 0, ErrUnauthorized
	}
	if claims.Purpose != auth.PurposeSession {
		return 0, ErrUnauthorized
	}
	return claims.UserID, nil
}

func (s *authService) GetProfile(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return sanitizeUser(user), nil
}

// UpdateProfile applies the provided fields only; nil fields keep their prior
// value. A fresh session token is issued on every profile write so the
// client's token rolls forward.
func (s *authService) UpdateProfile(ctx context.Context, userID int64, name, email *string) (*AuthResult, error) {
	update := repository.UserUpdate{}
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrValidation)
		}
		update.Name = &trimmed
	}
	if email != nil {
		trimmed := strings.TrimSpace(*email)
		if trimmed == "" {
			return nil, fmt.Errorf("%w: email cannot be empty", ErrValidation)
		}
		update.Email = &trimmed
	}

	user, err := s.users.UpdateByID(ctx, userID, update)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}

	return s.withSessionToken(user)
}

// RequestPasswordReset issues a reset token and mails the reset link. Unknown
// emails are acknowledged exactly like known ones to avoid enumeration; the
// miss is only visible in the server log.
func (s *authService) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.WithField("email", email).Info("password reset requested for unknown email")
			return nil
		}
		return err
	}

	token, err := s.tokens.Issue(user.ID, auth.PurposeReset)
	if err != nil {
		return err
	}

	link := fmt.Sprintf("%s/reset-password/%d/%s", s.clientURL, user.ID, token)
	text := fmt.Sprintf("You requested a password reset. Click the link to reset your password:\n\n%s\n\nIf you didn't request this, ignore this email.", link)
	html := fmt.Sprintf(`<p>You requested a password reset. Click the link to reset your password:</p>
<p><a href=%q>%s</a></p>
<p>If you didn't request this, ignore this email.</p>`, link, link)

	msg := mail.Message{
		To:      user.Email,
		Subject: "TaskMind - Password reset",
		Text:    text,
		HTML:    html,
	}

	mailCtx, cancel := context.WithTimeout(ctx, mailTimeout)
	defer cancel()
	if err := s.notifier.Send(mailCtx, msg); err != nil {
		return fmt.Errorf("deliver reset mail: %w", err)
	}
	return nil
}

// ResetPassword verifies the reset token and replaces the password hash.
// The user id applied is the verified token subject; the path id is accepted
// for URL readability only and is cross-checked, never trusted.
func (s *authService) ResetPassword(ctx context.Context, pathUserID int64, token, newPassword string) error {
	if len(newPassword) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
	}

	claims, err := s.tokens.Verify(token)
	if err != nil {
		return ErrInvalidResetToken
	}
	if claims.Purpose != auth.PurposeReset {
		return ErrInvalidResetToken
	}
	if pathUserID != claims.UserID {
		return ErrTokenUserMismatch
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}

	if _, err := s.users.UpdateByID(ctx, claims.UserID, repository.UserUpdate{PasswordHash: &hash}); err != nil {
		return err
	}
	return nil
}

func (s *authService) withSessionToken(user *domain.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user.ID, auth.PurposeSession)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: sanitizeUser(user), Token: token}, nil
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	return &domain.User{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
