package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Skotchmaster/auth_service/internal/apperr"
	"github.com/Skotchmaster/auth_service/internal/hash"
	"github.com/Skotchmaster/auth_service/internal/logging"
	"github.com/Skotchmaster/auth_service/internal/models"
	"github.com/Skotchmaster/auth_service/internal/repo"
)

type UserService struct {
	Repo *repo.UserRepo
}

type UpdateInfoInput struct {
	Email     string
	FirstName string
	LastName  string
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.Repo.ListAll(ctx)
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.Repo.FindActiveByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, fmt.Errorf("user lookup: %w", err)
	}
	return user, nil
}

func (s *UserService) UpdateInfo(ctx context.Context, id uuid.UUID, in UpdateInfoInput) error {
	l := logging.FromContext(ctx).With("svc", "user.update_info", "user_id", id)

	if in.Email == "" && in.FirstName == "" && in.LastName == "" {
		return apperr.BadRequest("nothing has been changed")
	}

	user, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if in.Email != "" {
		email := foldEmail(in.Email)
		if email != user.Email {
			taken, err := s.Repo.ActiveEmailTaken(ctx, email)
			if err != nil {
				return fmt.Errorf("email lookup: %w", err)
			}
			if taken {
				return apperr.Conflict("email has already been used")
			}
			user.Email = email
		}
	}
	if in.FirstName != "" {
		user.FirstName = in.FirstName
	}
	if in.LastName != "" {
		user.LastName = in.LastName
	}

	if err := s.Repo.Save(ctx, user); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	l.Info("user updated")
	return nil
}

func (s *UserService) UpdatePassword(ctx context.Context, id uuid.UUID, current, next string) error {
	l := logging.FromContext(ctx).With("svc", "user.update_password", "user_id", id)

	user, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if !hash.CheckPassword(user.PasswordHash, current) {
		l.Warn("password update rejected", "reason", "current password mismatch")
		return apperr.Forbidden("password was not matched")
	}

	pwHash, err := hash.HashPassword(next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = pwHash

	if err := s.Repo.Save(ctx, user); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	l.Info("password updated")
	return nil
}

func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	l := logging.FromContext(ctx).With("svc", "user.delete", "user_id", id)

	user, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.Repo.Deactivate(ctx, user); err != nil {
		return fmt.Errorf("deactivate user: %w", err)
	}
	l.Info("user deactivated")
	return nil
}
