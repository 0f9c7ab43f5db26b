package services

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net/url"

	"github.com/pmsworkflow/pms-api/internal/auth"
	"github.com/pmsworkflow/pms-api/internal/constants"
	"github.com/pmsworkflow/pms-api/internal/mail"
	"github.com/pmsworkflow/pms-api/internal/models"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrIncorrectPassword    = errors.New("incorrect password")
	ErrInvalidOldPassword   = errors.New("invalid old password")
	ErrPasswordTooShort     = errors.New("password too short")
	ErrNotOwnAccount        = errors.New("user can only change their own password")
	ErrInvalidRefreshToken  = errors.New("invalid refresh token")
	ErrInvalidResetToken    = errors.New("invalid or expired reset token")
	ErrInvalidAccessToken   = errors.New("invalid or expired access token")
	ErrFailedToHashPassword = errors.New("failed to hash password")
	ErrFailedToSetPassword  = errors.New("failed to update password")
	ErrMailDelivery         = errors.New("failed to send reset email")
)

// AuthService handles credential flows and request authentication.
type AuthService struct {
	users       *UserService
	roles       *RoleService
	tokens      *auth.TokenService
	mailer      mail.Mailer
	frontAppURL string
	logger      *slog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(users *UserService, roles *RoleService, tokens *auth.TokenService, mailer mail.Mailer, frontAppURL string, logger *slog.Logger) *AuthService {
	return &AuthService{
		users:       users,
		roles:       roles,
		tokens:      tokens,
		mailer:      mailer,
		frontAppURL: frontAppURL,
		logger:      logger,
	}
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult carries the issued tokens and the authenticated user.
type LoginResult struct {
	Tokens auth.TokenPair
	User   models.User
}

// Login verifies credentials and issues an access/refresh token pair.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	user := s.users.FindByEmail(ctx, input.Email)
	if user == nil {
		return nil, ErrUserNotFound
	}

	if !auth.CheckPassword(user.Password, input.Password) {
		return nil, ErrIncorrectPassword
	}

	tokens, err := s.tokens.GenerateTokenPair(*user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue tokens: %w", err)
	}

	return &LoginResult{Tokens: tokens, User: *user}, nil
}

// Refresh redeems a refresh token for a new access token. The account is
// re-read so deleted users cannot keep minting tokens.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.tokens.Verify(refreshToken, constants.TokenTypeRefresh)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidRefreshToken, err)
	}

	user := s.users.FindByUsername(ctx, claims.Username)
	if user == nil {
		return "", fmt.Errorf("%w: account no longer exists", ErrInvalidRefreshToken)
	}

	access, err := s.tokens.GenerateAccessToken(*user)
	if err != nil {
		return "", fmt.Errorf("failed to issue access token: %w", err)
	}
	return access, nil
}

// Authenticate resolves the caller behind an access token, including the
// union of permissions granted by their role.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*auth.Principal, error) {
	claims, err := s.tokens.Verify(accessToken, constants.TokenTypeAccess)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAccessToken, err)
	}

	user := s.users.FindByUsername(ctx, claims.Username)
	if user == nil {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, claims.Username)
	}

	return &auth.Principal{
		UserID:      user.UserID,
		Username:    user.Username,
		Email:       user.Email,
		RoleID:      user.RoleID,
		Permissions: s.roles.PermissionsForRoles(ctx, []string{user.RoleID}),
	}, nil
}

// ChangePasswordInput represents a self-service password change.
type ChangePasswordInput struct {
	UserID      string
	OldPassword string
	NewPassword string
}

// ChangePassword lets a caller replace their own password.
func (s *AuthService) ChangePassword(ctx context.Context, caller auth.Principal, input ChangePasswordInput) error {
	res := s.users.FindOne(ctx, input.UserID)
	if !res.OK() {
		return ErrUserNotFound
	}
	user := res.Data

	if user.UserID != caller.UserID {
		return ErrNotOwnAccount
	}
	if len(input.NewPassword) < constants.MinPasswordLength {
		return ErrPasswordTooShort
	}
	if !auth.CheckPassword(user.Password, input.OldPassword) {
		return ErrInvalidOldPassword
	}

	if updated := s.users.SetPassword(ctx, user.UserID, input.NewPassword); !updated.OK() {
		return fmt.Errorf("%w: %s", ErrFailedToSetPassword, updated.Message)
	}
	return nil
}

// ForgotPassword mails a one hour reset link to the account owner.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user := s.users.FindByEmail(ctx, email)
	if user == nil {
		return ErrUserNotFound
	}

	token, err := s.tokens.GenerateResetToken(*user)
	if err != nil {
		return fmt.Errorf("failed to issue reset token: %w", err)
	}

	link := s.frontAppURL + "/api/reset-password?token=" + url.QueryEscape(token)
	msg := mail.Message{
		To:      []string{user.Email},
		Subject: "Password Reset",
		HTML:    resetEmailBody(user.Username, link),
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.logger.ErrorContext(ctx, "reset email failed", "user_id", user.UserID, "error", err)
		return fmt.Errorf("%w: %v", ErrMailDelivery, err)
	}
	return nil
}

// ResetPassword sets a new password for the account named in a reset token.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	claims, err := s.tokens.Verify(token, constants.TokenTypeReset)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResetToken, err)
	}
	if len(newPassword) < constants.MinPasswordLength {
		return ErrPasswordTooShort
	}

	user := s.users.FindByEmail(ctx, claims.Email)
	if user == nil {
		return ErrUserNotFound
	}

	if updated := s.users.SetPassword(ctx, user.UserID, newPassword); !updated.OK() {
		return fmt.Errorf("%w: %s", ErrFailedToSetPassword, updated.Message)
	}
	return nil
}

func resetEmailBody(username, link string) string {
	link = html.EscapeString(link)
	return fmt.Sprintf(`Hello %s,<p>We received a request to reset your password. If you didn't initiate this request, please ignore this email.</p>
<p>To reset your password, please click the link below:</p>
<p><a href="%s">Reset Password</a></p>
<p>If the link doesn't work, you can copy and paste the following URL into your browser:</p>
<p>%s</p>
<p>This link will expire in 1 hour for security reasons.</p>`, html.EscapeString(username), link, link)
}
