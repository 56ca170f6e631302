// Package chirp implements posting, listing, editing and deleting chirps.
package chirp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/sungwon/chirper/internal/event"
	"github.com/sungwon/chirper/internal/metrics"
	"github.com/sungwon/chirper/internal/storage"
)

var (
	// ErrNotFound is returned when the chirp does not exist.
	ErrNotFound = errors.New("chirp not found")
	// ErrForbidden is returned when the actor is not the chirp's author.
	ErrForbidden = errors.New("not the author of this chirp")
)

const (
	// MaxMessageLength is the longest accepted message, in characters.
	MaxMessageLength = 255

	DefaultListLimit = 50
	MaxListLimit     = 200
)

var validate = validator.New()

// Input is the user-supplied part of a chirp.
type Input struct {
	Message string `validate:"required,max=255"`
}

// Validate trims the message and checks it. Failures are
// validator.ValidationErrors.
func (in *Input) Validate() error {
	in.Message = strings.TrimSpace(in.Message)
	return validate.Struct(in)
}

// Store is the persistence the service needs.
type Store interface {
	CreateChirp(ctx context.Context, arg storage.CreateChirpParams) (storage.Chirp, error)
	GetChirpByID(ctx context.Context, id uuid.UUID) (storage.Chirp, error)
	ListChirps(ctx context.Context, arg storage.ListChirpsParams) ([]storage.ListChirpsRow, error)
	UpdateChirpMessage(ctx context.Context, arg storage.UpdateChirpMessageParams) (storage.Chirp, error)
	DeleteChirp(ctx context.Context, id uuid.UUID) error
}

// Service owns chirp writes and announces new chirps on its dispatcher.
type Service struct {
	store  Store
	events event.Dispatcher
	log    zerolog.Logger
	now    func() time.Time
}

// NewService returns a Service.
func NewService(store Store, events event.Dispatcher, log zerolog.Logger) *Service {
	return &Service{
		store:  store,
		events: events,
		log:    log.With().Str("component", "chirp_service").Logger(),
		now:    time.Now,
	}
}

// Create stores a chirp for authorID and then dispatches ChirpCreated.
// Subscriber failures never undo or fail the create.
func (s *Service) Create(ctx context.Context, authorID uuid.UUID, in Input) (storage.Chirp, error) {
	if err := in.Validate(); err != nil {
		return storage.Chirp{}, err
	}

	c, err := s.store.CreateChirp(ctx, storage.CreateChirpParams{UserID: authorID, Message: in.Message})
	if err != nil {
		return storage.Chirp{}, fmt.Errorf("create chirp: %w", err)
	}
	metrics.ChirpsCreatedTotal.Inc()

	// The row is committed; a client disconnect must not stop the dispatch.
	s.events.Dispatch(context.WithoutCancel(ctx), event.ChirpCreated{
		ChirpID:    c.ID,
		AuthorID:   c.UserID,
		OccurredAt: s.now().UTC(),
	})

	s.log.Info().
		Str("chirp_id", c.ID.String()).
		Str("author_id", authorID.String()).
		Msg("chirp created")
	return c, nil
}

// List returns the latest chirps first. limit is clamped to
// [1, MaxListLimit]; zero means DefaultListLimit.
func (s *Service) List(ctx context.Context, limit, offset int32) ([]storage.ListChirpsRow, error) {
	switch {
	case limit <= 0:
		limit = DefaultListLimit
	case limit > MaxListLimit:
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.store.ListChirps(ctx, storage.ListChirpsParams{Limit: limit, Offset: offset})
	if err != nil {
		return nil, fmt.Errorf("list chirps: %w", err)
	}
	return rows, nil
}

// Update replaces the message of a chirp owned by actorID. It does not
// dispatch any event.
func (s *Service) Update(ctx context.Context, actorID, chirpID uuid.UUID, in Input) (storage.Chirp, error) {
	if _, err := s.owned(ctx, actorID, chirpID); err != nil {
		return storage.Chirp{}, err
	}
	if err := in.Validate(); err != nil {
		return storage.Chirp{}, err
	}

	c, err := s.store.UpdateChirpMessage(ctx, storage.UpdateChirpMessageParams{ID: chirpID, Message: in.Message})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return storage.Chirp{}, ErrNotFound
		}
		return storage.Chirp{}, fmt.Errorf("update chirp: %w", err)
	}
	return c, nil
}

// Delete removes a chirp owned by actorID.
func (s *Service) Delete(ctx context.Context, actorID, chirpID uuid.UUID) error {
	if _, err := s.owned(ctx, actorID, chirpID); err != nil {
		return err
	}
	if err := s.store.DeleteChirp(ctx, chirpID); err != nil {
		return fmt.Errorf("delete chirp: %w", err)
	}
	s.log.Info().Str("chirp_id", chirpID.String()).Msg("chirp deleted")
	return nil
}

func (s *Service) owned(ctx context.Context, actorID, chirpID uuid.UUID) (storage.Chirp, error) {
	c, err := s.store.GetChirpByID(ctx, chirpID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return storage.Chirp{}, ErrNotFound
		}
		return storage.Chirp{}, fmt.Errorf("get chirp: %w", err)
	}
	if c.UserID != actorID {
		return storage.Chirp{}, ErrForbidden
	}
	return c, nil
}
