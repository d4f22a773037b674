// Package service contains the business logic behind the HTTP handlers.
package service

import (
	"context"
	"strings"

	"pixelfeed/internal/models"
	"pixelfeed/internal/repository"
	"pixelfeed/internal/validation"

	"github.com/google/uuid"
)

const defaultUserName = "user"

// UserService resolves identity-provider subjects to local users.
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService returns a new UserService.
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// ResolveSubject returns the user for subject. An empty or unknown subject is
// reported as an authentication error.
func (s *UserService) ResolveSubject(ctx context.Context, subject string) (*models.User, error) {
	if strings.TrimSpace(subject) == "" {
		return nil, models.NewUnauthenticatedError("Authentication required")
	}
	user, err := s.userRepo.GetByExternalID(ctx, subject)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return nil, models.NewUnauthenticatedError("User not found")
		}
		return nil, err
	}
	return user, nil
}

// ResolveViewer is ResolveSubject for optional identity: anonymous and unknown
// subjects yield a nil user without error.
func (s *UserService) ResolveViewer(ctx context.Context, subject string) (*models.User, error) {
	user, err := s.ResolveSubject(ctx, subject)
	if err != nil {
		if models.IsCode(err, models.CodeUnauthenticated) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// SyncUserInput provisions the caller's local user record.
type SyncUserInput struct {
	Subject   string `json:"-" form:"-"`
	Name      string `json:"name" form:"name" validate:"max=100"`
	ClaimName string `json:"-" form:"-"`
}

// SyncUser creates the caller's user or refreshes its name. The name falls back to
// the token's name claim and then to a placeholder.
func (s *UserService) SyncUser(ctx context.Context, in SyncUserInput) (*models.User, error) {
	if strings.TrimSpace(in.Subject) == "" {
		return nil, models.NewUnauthenticatedError("Authentication required")
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	name := in.Name
	if name == "" {
		name = strings.TrimSpace(in.ClaimName)
	}
	if name == "" {
		name = defaultUserName
	}
	return s.userRepo.Upsert(ctx, &models.User{ExternalID: in.Subject, Name: name})
}

// GetUser returns a user by id.
func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}
