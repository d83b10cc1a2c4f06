package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/eventdesk/eventdesk/api/internal/config"
	"github.com/eventdesk/eventdesk/api/internal/domain"
	apperrors "github.com/eventdesk/eventdesk/api/internal/pkg/errors"
	"github.com/eventdesk/eventdesk/api/internal/pkg/id"
)

// UserRepository defines user repository operations
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	CreateSession(ctx context.Context, session *domain.UserSession) error
	GetSessionByToken(ctx context.Context, token string) (*domain.UserSession, error)
	DeleteSession(ctx context.Context, token string) error
}

// AuthService handles authentication
type AuthService struct {
	cfg         *config.Config
	userRepo    UserRepository
	orgRepo     OrgRepository
	tx          TxRunner
	auditLogger AuditLogger
}

// NewAuthService creates a new auth service
func NewAuthService(cfg *config.Config, userRepo UserRepository, orgRepo OrgRepository, tx TxRunner) *AuthService {
	return &AuthService{
		cfg:      cfg,
		userRepo: userRepo,
		orgRepo:  orgRepo,
		tx:       tx,
	}
}

// SetAuditLogger sets the audit logger for the auth service
func (s *AuthService) SetAuditLogger(logger AuditLogger) {
	s.auditLogger = logger
}

// Register creates a user together with a personal organization the user administers
func (s *AuthService) Register(ctx context.Context, input *domain.RegisterInput) (*domain.AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, apperrors.Conflict("email already registered")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         input.Name,
		PasswordHash: string(hashedPassword),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	var org *domain.Organization
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.userRepo.Create(ctx, user); err != nil {
			return err
		}
		org, err = createOrganization(ctx, s.orgRepo, input.Name+"'s Organization", user.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	result, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	recordAudit(s.auditLogger, domain.Actor{UserID: &user.ID, Email: user.Email, Type: domain.ActorTypeUser}, auditEntry{
		orgID:        org.ID,
		action:       domain.AuditActionOrgCreated,
		resourceType: domain.AuditResourceOrganization,
		resourceID:   &org.ID,
		resourceName: org.Name,
		description:  "personal organization created at sign-up",
	})

	return result, nil
}

// Login authenticates a user with email and password
func (s *AuthService) Login(ctx context.Context, input *domain.LoginInput) (*domain.AuthResult, error) {
	return s.LoginWithContext(ctx, input, "", "")
}

// LoginWithContext authenticates a user and records the attempt with the caller's address
func (s *AuthService) LoginWithContext(ctx context.Context, input *domain.LoginInput, ipAddress, userAgent string) (*domain.AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.Unauthorized("invalid credentials")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	actor := domain.Actor{UserID: &user.ID, Email: user.Email, Type: domain.ActorTypeUser, IPAddress: ipAddress, UserAgent: userAgent}
	primaryOrgID := s.primaryOrgID(ctx, user.ID)

	if user.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)) != nil {
		recordAudit(s.auditLogger, actor, auditEntry{
			orgID:        primaryOrgID,
			action:       domain.AuditActionLoginFailed,
			resourceType: domain.AuditResourceUser,
			resourceID:   &user.ID,
			resourceName: user.Email,
			description:  "invalid password",
		})
		return nil, apperrors.Unauthorized("invalid credentials")
	}

	result, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	recordAudit(s.auditLogger, actor, auditEntry{
		orgID:        primaryOrgID,
		action:       domain.AuditActionLogin,
		resourceType: domain.AuditResourceUser,
		resourceID:   &user.ID,
		resourceName: user.Email,
		description:  "user logged in",
	})

	return result, nil
}

// RefreshToken issues a new access token for a valid refresh token
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*domain.AuthResult, error) {
	session, err := s.userRepo.GetSessionByToken(ctx, refreshToken)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.Unauthorized("invalid refresh token")
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if !time.Now().Before(session.ExpiresAt) {
		_ = s.userRepo.DeleteSession(ctx, refreshToken)
		return nil, apperrors.Unauthorized("refresh token expired")
	}

	user, err := s.userRepo.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	accessToken, expiresAt, err := s.generateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &domain.AuthResult{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
	}, nil
}

// Logout invalidates a refresh token
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	return s.LogoutWithContext(ctx, refreshToken, domain.Actor{})
}

// LogoutWithContext invalidates a refresh token and records who logged out
func (s *AuthService) LogoutWithContext(ctx context.Context, refreshToken string, actor domain.Actor) error {
	if refreshToken != "" {
		if err := s.userRepo.DeleteSession(ctx, refreshToken); err != nil && !apperrors.IsNotFound(err) {
			return err
		}
	}

	if actor.UserID != nil {
		recordAudit(s.auditLogger, actor, auditEntry{
			orgID:        s.primaryOrgID(ctx, *actor.UserID),
			action:       domain.AuditActionLogout,
			resourceType: domain.AuditResourceUser,
			resourceID:   actor.UserID,
			resourceName: actor.Email,
			description:  "user logged out",
		})
	}

	return nil
}

// ValidateJWT validates a JWT access token
func (s *AuthService) ValidateJWT(ctx context.Context, tokenString string) (*domain.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &domain.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.JWT.Secret), nil
	}, jwt.WithIssuer(s.cfg.JWT.Issuer))
	if err != nil {
		return nil, apperrors.Unauthorized("invalid token")
	}

	claims, ok := token.Claims.(*domain.JWTClaims)
	if !ok || !token.Valid {
		return nil, apperrors.Unauthorized("invalid token")
	}

	return claims, nil
}

// GetUserByID retrieves a user by ID
func (s *AuthService) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *AuthService) primaryOrgID(ctx context.Context, userID uuid.UUID) uuid.UUID {
	if s.auditLogger == nil {
		return uuid.Nil
	}
	orgs, err := s.orgRepo.ListByUserID(ctx, userID)
	if err != nil || len(orgs) == 0 {
		return uuid.Nil
	}
	return orgs[0].ID
}

// issueTokens signs an access token and stores a new refresh session
func (s *AuthService) issueTokens(ctx context.Context, user *domain.User) (*domain.AuthResult, error) {
	accessToken, expiresAt, err := s.generateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := id.NewToken(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	now := time.Now()
	session := &domain.UserSession{
		ID:           uuid.New(),
		SessionToken: refreshToken,
		UserID:       user.ID,
		ExpiresAt:    now.Add(s.cfg.JWT.RefreshExpiry),
		CreatedAt:    now,
	}
	if err := s.userRepo.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &domain.AuthResult{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
	}, nil
}

// generateAccessToken generates a JWT access token
func (s *AuthService) generateAccessToken(user *domain.User) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.cfg.JWT.Expiry)

	claims := &domain.JWTClaims{
		UserID:     user.ID.String(),
		Email:      user.Email,
		SuperAdmin: user.SuperAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.cfg.JWT.Issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWT.Secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}
