// Package idempotency makes a keyed operation run at most once within a TTL,
// using Redis SETNX as the lock and the stored value as the outcome.
package idempotency

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrAlreadyInProgress = errors.New("operation already in progress")
	ErrAlreadyCompleted  = errors.New("operation already completed")
	ErrInvalidState      = errors.New("invalid state")
)

type State string

const (
	StateNone       State = "none"        // operation can proceed
	StateInProgress State = "in_progress" // another caller holds the key
	StateCompleted  State = "completed"   // finished, result stored
)

func (s State) String() string {
	return string(s)
}

// Idempotency guards an operation by key.
type Idempotency interface {
	// Exec runs fn once per key. A replay after success returns the stored
	// result together with ErrAlreadyCompleted. A failed fn releases the key.
	Exec(ctx context.Context, key string, fn func(context.Context) (string, error), opts ...Option) (string, error)
}

type StateTracker struct {
	client *redis.Client
	prefix string
}

func New(client *redis.Client) *StateTracker {
	return &StateTracker{
		client: client,
		prefix: "idempotency:",
	}
}

const (
	defaultLockDuration = time.Minute
	defaultStateTTL     = 24 * time.Hour

	completedPrefix = "completed:"
)

type Option func(*execOptions)

type execOptions struct {
	lockDuration time.Duration
	stateTTL     time.Duration
}

// WithLockDuration bounds how long an in-progress key blocks other callers.
func WithLockDuration(lockDuration time.Duration) Option {
	return func(o *execOptions) {
		o.lockDuration = lockDuration
	}
}

// WithStateTTL sets how long a completed result is remembered.
func WithStateTTL(stateTTL time.Duration) Option {
	return func(o *execOptions) {
		o.stateTTL = stateTTL
	}
}

// Acquire tries to take the key. On StateCompleted the stored result is returned.
func (s *StateTracker) Acquire(ctx context.Context, key string, lockDuration time.Duration) (State, string, error) {
	fk := s.prefix + key

	acquired, err := s.client.SetNX(ctx, fk, StateInProgress.String(), lockDuration).Result()
	if err != nil {
		return StateNone, "", err
	}
	if acquired {
		return StateNone, "", nil
	}

	value, err := s.client.Get(ctx, fk).Result()
	if errors.Is(err, redis.Nil) {
		// expired between SETNX and GET, one more try
		acquired, err = s.client.SetNX(ctx, fk, StateInProgress.String(), lockDuration).Result()
		if err != nil {
			return StateNone, "", err
		}
		if acquired {
			return StateNone, "", nil
		}
		return StateInProgress, "", nil
	}
	if err != nil {
		return StateNone, "", err
	}

	switch {
	case value == StateInProgress.String():
		return StateInProgress, "", nil
	case strings.HasPrefix(value, completedPrefix):
		return StateCompleted, strings.TrimPrefix(value, completedPrefix), nil
	default:
		return StateNone, "", ErrInvalidState
	}
}

func (s *StateTracker) MarkCompleted(ctx context.Context, key, result string, ttl time.Duration) error {
	return s.client.Set(ctx, s.prefix+key, completedPrefix+result, ttl).Err()
}

func (s *StateTracker) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}

func (s *StateTracker) Exec(ctx context.Context, key string, fn func(context.Context) (string, error), opts ...Option) (string, error) {
	execOpt := &execOptions{
		lockDuration: defaultLockDuration,
		stateTTL:     defaultStateTTL,
	}
	for _, opt := range opts {
		opt(execOpt)
	}
	if execOpt.lockDuration <= 0 {
		execOpt.lockDuration = defaultLockDuration
	}
	if execOpt.stateTTL <= 0 {
		execOpt.stateTTL = defaultStateTTL
	}

	state, stored, err := s.Acquire(ctx, key, execOpt.lockDuration)
	if err != nil {
		return "", err
	}

	switch state {
	case StateInProgress:
		return "", ErrAlreadyInProgress
	case StateCompleted:
		return stored, ErrAlreadyCompleted
	}

	result, err := fn(ctx)
	if err != nil {
		if relErr := s.Release(ctx, key); relErr != nil {
			return "", errors.Join(err, relErr)
		}
		return "", err
	}

	if err := s.MarkCompleted(ctx, key, result, execOpt.stateTTL); err != nil {
		return result, err
	}

	return result, nil
}
