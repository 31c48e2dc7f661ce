package note

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/notes-api-nosql/internal/domain"
	"github.com/notes-api-nosql/internal/metrics"
	"github.com/notes-api-nosql/internal/pkg/id"
)

type NoteStore interface {
	Put(ctx context.Context, n *domain.Note) error
	ListByUser(ctx context.Context, userID string) ([]domain.Note, error)
	UpdateContent(ctx context.Context, userID, noteID, content string, at time.Time) (*domain.Note, error)
	Delete(ctx context.Context, userID, noteID string) error
}

type Service interface {
	List(ctx context.Context, userID string) ([]domain.Note, error)
	Create(ctx context.Context, userID, content string) (*domain.Note, error)
	Update(ctx context.Context, userID, noteID, content string) (*domain.Note, error)
	Delete(ctx context.Context, userID, noteID string) error
}

type service struct {
	notes NoteStore
	now   func() time.Time
}

func NewService(notes NoteStore) Service {
	return &service{notes: notes, now: time.Now}
}

func (s *service) List(ctx context.Context, userID string) ([]domain.Note, error) {
	notes, err := s.notes.ListByUser(ctx, userID)
	if err != nil {
		err = fmt.Errorf("list notes: %w: %w", domain.ErrPersistence, err)
	}
	count("list", err)
	return notes, err
}

func (s *service) Create(ctx context.Context, userID, content string) (*domain.Note, error) {
	if strings.TrimSpace(content) == "" {
		err := fmt.Errorf("content is required: %w", domain.ErrValidation)
		count("create", err)
		return nil, err
	}
	now := s.now().UTC()
	n := &domain.Note{
		NoteID:    id.New(),
		UserID:    userID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := s.notes.Put(ctx, n)
	if err != nil {
		err = fmt.Errorf("create note: %w: %w", domain.ErrPersistence, err)
		n = nil
	}
	count("create", err)
	return n, err
}

func (s *service) Update(ctx context.Context, userID, noteID, content string) (*domain.Note, error) {
	if strings.TrimSpace(content) == "" {
		err := fmt.Errorf("content is required: %w", domain.ErrValidation)
		count("update", err)
		return nil, err
	}
	n, err := s.notes.UpdateContent(ctx, userID, noteID, content, s.now())
	err = storeErr("update note", err)
	count("update", err)
	return n, err
}

func (s *service) Delete(ctx context.Context, userID, noteID string) error {
	err := storeErr("delete note", s.notes.Delete(ctx, userID, noteID))
	count("delete", err)
	return err
}

// storeErr keeps not-found as is and marks everything else as a persistence
// failure.
func storeErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrNotFound):
		return fmt.Errorf("%s: %w", op, err)
	default:
		return fmt.Errorf("%s: %w: %w", op, domain.ErrPersistence, err)
	}
}

func count(op string, err error) {
	metrics.NoteOperations.WithLabelValues(op, metrics.Outcome(err)).Inc()
}
