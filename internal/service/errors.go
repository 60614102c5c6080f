package service

import (
	"errors"

	"github.com/seshat-edu/seshat-backend/internal/repository"
)

// Domain errors surfaced to handlers.
var (
	ErrNotFound           = repository.ErrNotFound
	ErrForbidden          = repository.ErrNotOwner
	ErrLimitReached       = repository.ErrLimitReached
	ErrEmailTaken         = repository.ErrDuplicateEmail
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNoQuestions        = errors.New("no questions match the filter")
)
