package authservice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Leopold1975/recipebox/internal/pkg/config"
	"github.com/Leopold1975/recipebox/internal/pkg/jwtauth"
	"github.com/Leopold1975/recipebox/internal/recipebox/domain/models"
	"github.com/Leopold1975/recipebox/internal/recipebox/repository/userrepo"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 5

var (
	ErrEmailRequired    = errors.New("email is required")
	ErrPasswordTooShort = errors.New("password must be at least 5 characters")
	ErrEmailTaken       = errors.New("user with this email already exists")
	ErrBadCredentials   = errors.New("invalid credentials")
	ErrNotFound         = errors.New("user not found")
)

type Repository interface {
	CreateUser(context.Context, models.User) (models.User, error)
	GetUserByEmail(context.Context, string) (models.User, error)
	GetUserByID(context.Context, int64) (models.User, error)
	UpdateUser(context.Context, models.User) error
}

type AuthService struct {
	userRepo Repository
	cfg      config.Auth
}

func New(userRepo Repository, cfg config.Auth) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		cfg:      cfg,
	}
}

// Register creates a regular active user. The email is normalized to
// lowercase before it is persisted; only a bcrypt hash of the password
// is stored.
func (as *AuthService) Register(ctx context.Context, req CreateUserRequest) (models.User, error) {
	u, err := newUser(req.Email, req.Password, req.Name)
	if err != nil {
		return models.User{}, err
	}

	created, err := as.userRepo.CreateUser(ctx, u)
	if err != nil {
		if errors.Is(err, userrepo.ErrAlreadyExists) {
			return models.User{}, ErrEmailTaken
		}

		return models.User{}, fmt.Errorf("create user error: %w", err)
	}

	return created, nil
}

// EnsureSuperuser makes sure a staff superuser with the configured
// admin credentials exists. Safe to call on every start.
func (as *AuthService) EnsureSuperuser(ctx context.Context) (models.User, error) {
	u, err := newUser(as.cfg.AdminEmail, as.cfg.AdminPassword, "")
	if err != nil {
		return models.User{}, err
	}

	u.IsStaff = true
	u.IsSuperuser = true

	existing, err := as.userRepo.GetUserByEmail(ctx, u.Email)
	if err == nil {
		if existing.IsStaff && existing.IsSuperuser {
			return existing, nil
		}

		existing.IsStaff = true
		existing.IsSuperuser = true

		if err := as.userRepo.UpdateUser(ctx, existing); err != nil {
			return models.User{}, fmt.Errorf("update user error: %w", err)
		}

		return existing, nil
	} else if !errors.Is(err, userrepo.ErrNotFound) {
		return models.User{}, fmt.Errorf("get user error: %w", err)
	}

	created, err := as.userRepo.CreateUser(ctx, u)
	if err != nil {
		return models.User{}, fmt.Errorf("create user error: %w", err)
	}

	return created, nil
}

// Login exchanges valid credentials for a signed token. Missing or
// mismatched credentials are indistinguishable to the caller.
func (as *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", ErrBadCredentials
	}

	u, err := as.userRepo.GetUserByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return "", ErrBadCredentials
		}

		return "", fmt.Errorf("get user error: %w", err)
	}

	if !u.IsActive {
		return "", ErrBadCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", ErrBadCredentials
	}

	token, err := jwtauth.GetToken(u, as.cfg.TTL, as.cfg.Secret)
	if err != nil {
		return "", fmt.Errorf("can't get token error: %w", err)
	}

	return token, nil
}

// Identify resolves a bearer token to the user it was issued for.
func (as *AuthService) Identify(ctx context.Context, token string) (models.User, error) {
	userID, err := jwtauth.ValidateToken(token, as.cfg.Secret)
	if err != nil {
		return models.User{}, ErrBadCredentials
	}

	u, err := as.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return models.User{}, ErrBadCredentials
		}

		return models.User{}, fmt.Errorf("get user error: %w", err)
	}

	if !u.IsActive {
		return models.User{}, ErrBadCredentials
	}

	return u, nil
}

func (as *AuthService) Profile(ctx context.Context, userID int64) (models.User, error) {
	u, err := as.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return models.User{}, ErrNotFound
		}

		return models.User{}, fmt.Errorf("get user error: %w", err)
	}

	return u, nil
}

// UpdateProfile mutates only the fields present in the request.
func (as *AuthService) UpdateProfile(ctx context.Context, userID int64, req UpdateProfileRequest) (models.User, error) {
	u, err := as.Profile(ctx, userID)
	if err != nil {
		return models.User{}, err
	}

	if req.Name != nil {
		u.Name = *req.Name
	}

	if req.Password != nil {
		if len(*req.Password) < minPasswordLen {
			return models.User{}, ErrPasswordTooShort
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return models.User{}, fmt.Errorf("generate from password error: %w", err)
		}

		u.PasswordHash = string(hash)
	}

	if err := as.userRepo.UpdateUser(ctx, u); err != nil {
		return models.User{}, fmt.Errorf("update user error: %w", err)
	}

	return u, nil
}

func newUser(email, password, name string) (models.User, error) {
	if email == "" {
		return models.User{}, ErrEmailRequired
	}

	if len(password) < minPasswordLen {
		return models.User{}, ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("generate from password error: %w", err)
	}

	return models.User{ //nolint:exhaustruct
		Email:        strings.ToLower(email),
		Name:         name,
		PasswordHash: string(hash),
		IsActive:     true,
	}, nil
}
