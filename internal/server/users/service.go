package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/chatrelay/internal/common"
	"github.com/dmitrijs2005/chatrelay/internal/server/auth"
	"github.com/dmitrijs2005/chatrelay/internal/server/models"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// HashCost is the bcrypt work factor for stored passwords.
const HashCost = 10

// Registration conflicts, both matching common.ErrorConflict.
var (
	ErrUsernameTaken = fmt.Errorf("%w: username", common.ErrorConflict)
	ErrEmailTaken    = fmt.Errorf("%w: email", common.ErrorConflict)
)

// AuthResult is what register and login hand back to the client.
type AuthResult struct {
	User  models.PublicUser `json:"user"`
	Token string            `json:"token"`
}

type Service struct {
	repo     Repository
	issuer   *auth.Issuer
	hashCost int
	now      func() time.Time
}

func NewService(repo Repository, issuer *auth.Issuer) *Service {
	return &Service{
		repo:     repo,
		issuer:   issuer,
		hashCost: HashCost,
		now:      time.Now,
	}
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Register creates an account and signs the user in. The username is
// checked before the email, so a request clashing on both reports the
// username.
func (s *Service) Register(ctx context.Context, username, email, password string) (*AuthResult, error) {
	if blank(username) || blank(email) || blank(password) {
		return nil, fmt.Errorf("%w: username, email and password are required", common.ErrorValidation)
	}

	if err := s.ensureFree(ctx, s.repo.GetByUsername, username, ErrUsernameTaken); err != nil {
		return nil, err
	}
	if err := s.ensureFree(ctx, s.repo.GetByEmail, email, ErrEmailTaken); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, fmt.Errorf("%w: password is too long", common.ErrorValidation)
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}

	user, err = s.repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return s.signIn(user)
}

func (s *Service) ensureFree(ctx context.Context, get func(context.Context, string) (*models.User, error), key string, taken error) error {
	_, err := get(ctx, key)
	switch {
	case err == nil:
		return taken
	case errors.Is(err, common.ErrorNotFound):
		return nil
	default:
		return fmt.Errorf("lookup: %w", err)
	}
}

// FindByEmail returns common.ErrorNotFound when no user has that email.
func (s *Service) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.repo.GetByEmail(ctx, email)
}

func (s *Service) VerifyPassword(user *models.User, plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(plaintext)) == nil
}

// TouchLogin stamps the user's last login with the current time.
func (s *Service) TouchLogin(ctx context.Context, user *models.User) (*models.User, error) {
	now := s.now().UTC()
	if err := s.repo.TouchLogin(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("touch login: %w", err)
	}
	touched := user.Clone()
	touched.LastLoginAt = &now
	return touched, nil
}

// Login checks the credentials. Unknown email and wrong password are
// indistinguishable to the caller, and neither updates the last login.
func (s *Service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	if blank(email) || blank(password) {
		return nil, fmt.Errorf("%w: email and password are required", common.ErrorValidation)
	}

	user, err := s.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("lookup by email: %w", err)
	}

	if !s.VerifyPassword(user, password) {
		return nil, common.ErrorUnauthorized
	}

	user, err = s.TouchLogin(ctx, user)
	if err != nil {
		return nil, err
	}

	return s.signIn(user)
}

func (s *Service) signIn(user *models.User) (*AuthResult, error) {
	token, err := s.issuer.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &AuthResult{User: user.Public(), Token: token}, nil
}
