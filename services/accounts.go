package services

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/blog-backend/auth"
	"github.com/rpupo63/blog-backend/errs"
	"github.com/rpupo63/blog-backend/models"
)

const resetSubject = "Password Reset Request"

type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AccountService runs registration, login and the password reset flow.
type AccountService struct {
	users  UserStore
	hasher auth.PasswordHasher
	tokens *auth.TokenService
	mailer Mailer
	ledger auth.ResetLedger
	now    func() time.Time
	logger zerolog.Logger
}

// NewAccountService wires the credential flow. A nil ledger leaves reset
// tokens reusable until they expire.
func NewAccountService(users UserStore, hasher auth.PasswordHasher, tokens *auth.TokenService, mailer Mailer, ledger auth.ResetLedger) *AccountService {
	if ledger == nil {
		ledger = auth.NoopLedger{}
	}
	return &AccountService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		mailer: mailer,
		ledger: ledger,
		now:    time.Now,
		logger: log.With().Str("service", "accounts").Logger(),
	}
}

func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)
	if username == "" || email == "" || in.Password == "" {
		return nil, errs.NewBadRequestError("Missing required fields")
	}
	if err := checkLength("username", username, models.MaxUsernameLength); err != nil {
		return nil, err
	}
	if err := checkLength("email", email, models.MaxEmailLength); err != nil {
		return nil, err
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "user", err)
	}
	if existing != nil {
		return nil, errs.NewConflictError("Email already exists")
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.Add(ctx, user); err != nil {
		if errs.IsUniqueConstraintViolationError(err) {
			return nil, errs.NewConflictError("Email already exists")
		}
		return nil, errs.NewDatabaseError("create", "user", err)
	}

	s.logger.Info().Uint("userID", user.ID).Msg("User registered")
	return user, nil
}

// Login returns a session token. Unknown emails and wrong passwords fail alike.
func (s *AccountService) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", errs.NewUnauthorizedError("Invalid credentials")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", errs.NewDatabaseError("find", "user", err)
	}
	if user == nil {
		return "", errs.NewUnauthorizedError("Invalid credentials")
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		s.logger.Error().Err(err).Uint("userID", user.ID).Msg("Stored password hash is unreadable")
		return "", errs.NewUnauthorizedError("Invalid credentials")
	}
	if !ok {
		return "", errs.NewUnauthorizedError("Invalid credentials")
	}

	token, err := s.tokens.IssueSessionToken(user.ID)
	if err != nil {
		return "", errs.NewInternalErrorWithCause("Failed to issue token", err)
	}
	return token, nil
}

// ForgotPassword mails a reset link built on linkBase to the account's owner.
// Unknown emails yield NotFound.
func (s *AccountService) ForgotPassword(ctx context.Context, email, linkBase string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return errs.NewMissingRequiredFieldError("email")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return errs.NewDatabaseError("find", "user", err)
	}
	if user == nil {
		return errs.NewNotFoundError("User not found")
	}

	token, err := s.tokens.IssueResetToken(user.ID, s.now())
	if err != nil {
		return errs.NewInternalErrorWithCause("Failed to issue reset token", err)
	}

	body := "Click the link to reset your password: " + BuildResetLink(linkBase, token)
	if err := s.mailer.Send(ctx, user.Email, resetSubject, body); err != nil {
		s.logger.Error().Err(err).Uint("userID", user.ID).Msg("Failed to send password reset email")
		return errs.NewServiceUnreachableError("mail", err)
	}

	s.logger.Info().Uint("userID", user.ID).Msg("Password reset link sent")
	return nil
}

func (s *AccountService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" || newPassword == "" {
		return errs.NewBadRequestError("Token and new password are required")
	}

	claims, err := s.tokens.VerifyResetToken(token, s.now())
	if err != nil {
		if errs.IsExpiredTokenError(err) {
			return errs.NewExpiredResetTokenError()
		}
		return errs.NewInvalidResetTokenError()
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return errs.NewDatabaseError("find", "user", err)
	}
	if user == nil {
		return errs.NewNotFoundError("User not found")
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	fresh, err := s.ledger.Consume(ctx, claims.ID, claims.Expiry())
	if err != nil {
		return errs.NewServiceUnreachableError("reset ledger", err)
	}
	if !fresh {
		return errs.NewConsumedResetTokenError()
	}

	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return errs.NewDatabaseError("update", "user", err)
	}

	s.logger.Info().Uint("userID", user.ID).Msg("Password reset")
	return nil
}

// SeedAdmin creates an admin account unless the email is already registered.
// It reports whether a user was created.
func (s *AccountService) SeedAdmin(ctx context.Context, in RegisterInput) (*models.User, bool, error) {
	existing, err := s.users.FindByEmail(ctx, strings.TrimSpace(in.Email))
	if err != nil {
		return nil, false, errs.NewDatabaseError("find", "user", err)
	}
	if existing != nil {
		s.logger.Warn().Str("email", existing.Email).Msg("Admin user already exists")
		return existing, false, nil
	}

	user, err := s.Register(ctx, in)
	if err != nil {
		return nil, false, err
	}
	if err := s.users.SetRole(ctx, user.ID, models.RoleAdmin); err != nil {
		return nil, false, errs.NewDatabaseError("update", "user", err)
	}
	role := models.RoleAdmin
	user.Role = &role

	s.logger.Info().Uint("userID", user.ID).Msg("Admin user created")
	return user, true, nil
}
