package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/libris/internal/identity/entity"
	"github.com/shandysiswandi/libris/internal/pkg/goerror"
)

type RegisterInput struct {
	Username string `validate:"required,username"`
	Email    string `validate:"required,email,max=255"`
	FullName string `validate:"required,max=255"`
	Password string `validate:"required,password"`
}

type RegisterOutput struct {
	ID       int64
	Username string
	Email    string
}

func (s *Usecase) Register(ctx context.Context, in RegisterInput) (*RegisterOutput, error) {
	ctx, span := s.startSpan(ctx, "Register")
	defer span.End()

	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	in.FullName = strings.TrimSpace(in.FullName)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	hashedPassword, err := s.password.Hash(in.Password)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash password", "error", err)
		return nil, goerror.NewServer(err)
	}

	newUser := entity.NewUser{
		ID:       s.uid.Generate(),
		Username: in.Username,
		Email:    in.Email,
		FullName: in.FullName,
		Password: string(hashedPassword),
		Status:   entity.UserStatusActive,
		Role:     RoleMember,
	}

	err = s.repoDB.NewUser(ctx, newUser)
	if errors.Is(err, goerror.ErrConflict) {
		slog.WarnContext(ctx, "username or email already registered", "username", in.Username)
		return nil, goerror.NewBusiness("username or email already registered", goerror.CodeConflict)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo create user", "username", in.Username, "error", err)
		return nil, goerror.NewServer(err)
	}

	// The binding row is already stored; this refreshes the in-memory policy
	// and notifies the other instances through the watcher.
	if _, err := s.enforcer.AddRoleForUser(subject(newUser.ID), RoleMember); err != nil {
		slog.ErrorContext(ctx, "failed to sync member role", "user_id", newUser.ID, "error", err)
	}

	if err := s.repoMessaging.PublishUserRegistration(ctx, UserRegistrationEvent{
		UserID:   newUser.ID,
		Username: newUser.Username,
		Email:    newUser.Email,
		FullName: newUser.FullName,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to publish user registration", "user_id", newUser.ID, "error", err)
	}

	return &RegisterOutput{ID: newUser.ID, Username: newUser.Username, Email: newUser.Email}, nil
}
