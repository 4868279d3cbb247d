package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/idtoken"

	"github.com/njprem/TravelAgency_BackEnd/internal/domain"
	"github.com/njprem/TravelAgency_BackEnd/internal/repository/ports"
	"github.com/njprem/TravelAgency_BackEnd/internal/util"
)

type GoogleIdentity struct {
	Email         string
	EmailVerified bool
	Name          string
}

type GoogleTokenVerifier interface {
	Verify(ctx context.Context, token, audience string) (*GoogleIdentity, error)
}

type idtokenVerifier struct{}

func (idtokenVerifier) Verify(ctx context.Context, token, audience string) (*GoogleIdentity, error) {
	payload, err := idtoken.Validate(ctx, token, audience)
	if err != nil {
		return nil, err
	}
	email, _ := payload.Claims["email"].(string)
	verified, _ := payload.Claims["email_verified"].(bool)
	name, _ := payload.Claims["name"].(string)
	return &GoogleIdentity{Email: email, EmailVerified: verified, Name: name}, nil
}

type AuthServiceConfig struct {
	GoogleAudience string
	StoreTimeout   time.Duration
	Logger         logrus.FieldLogger
}

type AuthResult struct {
	User      *domain.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
}

type RegisterInput struct {
	Email    string
	Password string
	FullName *string
	Phone    *string
}

type AuthService struct {
	users    ports.UserRepository
	jwt      *util.JWTManager
	verifier GoogleTokenVerifier

	audience     string
	storeTimeout time.Duration
	log          logrus.FieldLogger
}

func NewAuthService(users ports.UserRepository, jwtManager *util.JWTManager, cfg AuthServiceConfig) *AuthService {
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &AuthService{
		users:        users,
		jwt:          jwtManager,
		verifier:     idtokenVerifier{},
		audience:     strings.TrimSpace(cfg.GoogleAudience),
		storeTimeout: cfg.StoreTimeout,
		log:          logger.WithField("component", "auth"),
	}
}

// Register creates an active customer account and signs it in.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	if err := util.ValidatePassword(input.Password); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	hash, err := util.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	ctx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()

	user, err := s.users.Create(ctx, &domain.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleCustomer,
		Status:       domain.UserStatusActive,
	}, domain.ProfileFields{FullName: normalizeString(input.FullName), Phone: normalizeString(input.Phone)})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, s.storeError("create user", err)
	}
	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, validationError("email and password are required")
	}

	ctx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, s.storeError("find user", err)
	}
	if !util.VerifyPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive() {
		return nil, ErrAccountInactive
	}
	return s.issue(user)
}

// LoginWithGoogle signs in with a Google ID token, creating a customer
// account on first use.
func (s *AuthService) LoginWithGoogle(ctx context.Context, idToken string) (*AuthResult, error) {
	if s.audience == "" {
		return nil, validationError("google sign-in is not configured")
	}
	identity, err := s.verifier.Verify(ctx, strings.TrimSpace(idToken), s.audience)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !identity.EmailVerified {
		return nil, ErrInvalidCredentials
	}
	email, err := normalizeEmail(identity.Email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	ctx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()

	user, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
	case isNotFound(err):
		user, err = s.users.Create(ctx, &domain.User{
			ID:     uuid.New(),
			Email:  email,
			Role:   domain.RoleCustomer,
			Status: domain.UserStatusActive,
		}, domain.ProfileFields{FullName: normalizeString(&identity.Name)})
		if isUniqueViolation(err) {
			user, err = s.users.FindByEmail(ctx, email)
		}
		if err != nil {
			return nil, s.storeError("create google user", err)
		}
	default:
		return nil, s.storeError("find user", err)
	}
	if !user.IsActive() {
		return nil, ErrAccountInactive
	}
	return s.issue(user)
}

// Authenticate resolves a bearer token to a current, active user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.jwt.Parse(token)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	ctx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, s.storeError("find user", err)
	}
	if !user.IsActive() {
		return nil, ErrAccountInactive
	}
	return user, nil
}

func (s *AuthService) issue(user *domain.User) (*AuthResult, error) {
	token, expiresAt, err := s.jwt.Generate(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

func (s *AuthService) storeError(op string, err error) error {
	s.log.WithError(err).WithField("op", op).Error("store call failed")
	return storeFailure(err)
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", validationError("invalid email address")
	}
	return email, nil
}
