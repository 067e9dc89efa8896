package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/oops"
	"github.com/sirupsen/logrus"

	"course-market/internal/apperr"
	"course-market/internal/auth"
	"course-market/internal/domain"
	"course-market/internal/geocoding"
	"course-market/internal/repository"
	"course-market/internal/storage"
)

// RegisterInput carries the sign-up form. Fields are validated in
// declaration order and the first missing one is reported.
type RegisterInput struct {
	Email          string `validate:"required" message:"Email is required"`
	Password       string `validate:"required" message:"Password is required"`
	FullName       string `validate:"required" message:"Full Name is required"`
	BirthDate      string `validate:"required" message:"Birth Date is required"`
	Location       string `validate:"required" message:"Location is required"`
	Bio            string
	PhoneNumber    string
	ProfilePicture string
}

// LoginInput carries the sign-in form.
type LoginInput struct {
	Email    string `validate:"required" message:"Email is required"`
	Password string `validate:"required" message:"Password is required"`
}

// Session is the result of a successful login.
type Session struct {
	AccessToken string
	Principal   *domain.Principal
}

// TokenIssuer signs access tokens.
type TokenIssuer interface {
	Issue(principalID int64, role domain.Role) (string, error)
}

// PrincipalService describes the account lifecycle of one role.
type PrincipalService interface {
	Role() domain.Role
	Register(ctx context.Context, input RegisterInput, image *storage.Image) (*domain.Principal, error)
	Authenticate(ctx context.Context, input LoginInput) (*Session, error)
	GetByID(ctx context.Context, id int64) (*domain.Principal, error)
}

// PrincipalDeps are the adapters a PrincipalService talks to. Images is
// optional; without it uploaded files are ignored.
type PrincipalDeps struct {
	Hasher   auth.PasswordHasher
	Tokens   TokenIssuer
	Geocoder geocoding.Geocoder
	Images   storage.Service
	Logger   *logrus.Logger
}

const msgPasswordTooLong = "password must be at most 72 bytes"

type principalService struct {
	role     domain.Role
	accounts repository.PrincipalRepository
	deps     PrincipalDeps
}

func NewPrincipalService(role domain.Role, accounts repository.PrincipalRepository, deps PrincipalDeps) PrincipalService {
	if deps.Logger == nil {
		deps.Logger = logrus.StandardLogger()
	}
	return &principalService{
		role:     role,
		accounts: accounts,
		deps:     deps,
	}
}

func (s *principalService) Role() domain.Role {
	return s.role
}

func (s *principalService) Register(ctx context.Context, input RegisterInput, image *storage.Image) (*domain.Principal, error) {
	input.Email = strings.TrimSpace(input.Email)
	input.FullName = strings.TrimSpace(input.FullName)
	input.BirthDate = strings.TrimSpace(input.BirthDate)
	input.Location = strings.TrimSpace(input.Location)

	msg, err := firstViolation(input)
	if err != nil {
		return nil, err
	}
	if msg != "" {
		return nil, apperr.MissingField(msg)
	}
	if len(input.Password) > auth.MaxPasswordBytes {
		return nil, apperr.FieldConstraint(msgPasswordTooLong, auth.ErrPasswordTooLong)
	}

	birthDate, err := parseDate(input.BirthDate)
	if err != nil {
		return nil, err
	}

	principal := &domain.Principal{
		Email:          input.Email,
		FullName:       input.FullName,
		Bio:            strings.TrimSpace(input.Bio),
		Role:           s.role,
		BirthDate:      birthDate,
		PhoneNumber:    strings.TrimSpace(input.PhoneNumber),
		ProfilePicture: strings.TrimSpace(input.ProfilePicture),
		Location:       input.Location,
	}

	var uploaded *storage.Object
	if image != nil && s.deps.Images != nil {
		obj, err := s.deps.Images.UploadImage(ctx, *image)
		if err != nil {
			return nil, err
		}
		uploaded = &obj
		principal.ProfilePicture = obj.URL
	}

	if err := s.completeRegistration(ctx, principal, input.Password); err != nil {
		if uploaded != nil {
			// the account was never stored, so nothing references the image
			if delErr := s.deps.Images.Delete(context.WithoutCancel(ctx), uploaded.Key); delErr != nil {
				cleanupErr := oops.Code("IMAGE_CLEANUP_FAILED").With("key", uploaded.Key).Wrapf(delErr, "remove orphaned image")
				s.deps.Logger.WithError(cleanupErr).WithField("key", uploaded.Key).Warn("orphaned profile image left in storage")
			}
		}
		return nil, err
	}
	return sanitizePrincipal(principal), nil
}

func (s *principalService) completeRegistration(ctx context.Context, principal *domain.Principal, password string) error {
	geometry, err := s.deps.Geocoder.Forward(ctx, principal.Location)
	if err != nil {
		if errors.Is(err, geocoding.ErrNoMatch) {
			return apperr.LocationNotFound(err)
		}
		return err
	}
	principal.Geometry = geometry

	hash, err := s.deps.Hasher.Hash(password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return apperr.FieldConstraint(msgPasswordTooLong, err)
		}
		return err
	}
	principal.PasswordHash = hash

	if _, err := s.accounts.Create(ctx, principal); err != nil {
		return err
	}
	return nil
}

func (s *principalService) Authenticate(ctx context.Context, input LoginInput) (*Session, error) {
	input.Email = strings.TrimSpace(input.Email)

	msg, err := firstViolation(input)
	if err != nil {
		return nil, err
	}
	if msg != "" {
		return nil, apperr.MissingField(msg)
	}

	principal, err := s.accounts.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.deps.Hasher.Compare("", input.Password)
			return nil, apperr.InvalidCredentials()
		}
		return nil, err
	}

	if !s.deps.Hasher.Compare(principal.PasswordHash, input.Password) {
		return nil, apperr.InvalidCredentials()
	}

	token, err := s.deps.Tokens.Issue(principal.ID, s.role)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &Session{
		AccessToken: token,
		Principal:   sanitizePrincipal(principal),
	}, nil
}

func (s *principalService) GetByID(ctx context.Context, id int64) (*domain.Principal, error) {
	principal, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return sanitizePrincipal(principal), nil
}

func sanitizePrincipal(p *domain.Principal) *domain.Principal {
	if p == nil {
		return nil
	}
	clean := *p
	clean.PasswordHash = ""
	return &clean
}
