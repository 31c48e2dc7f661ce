package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/notes-api-nosql/internal/domain"
)

// NoteRepo keeps notes per owner.
type NoteRepo struct {
	mu     sync.Mutex
	byUser map[string]map[string]domain.Note
}

func NewNoteRepo() *NoteRepo {
	return &NoteRepo{byUser: make(map[string]map[string]domain.Note)}
}

func (r *NoteRepo) Put(_ context.Context, n *domain.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	notes, ok := r.byUser[n.UserID]
	if !ok {
		notes = make(map[string]domain.Note)
		r.byUser[n.UserID] = notes
	}
	notes[n.NoteID] = *n
	return nil
}

// ListByUser returns notes newest first (descending note id).
func (r *NoteRepo) ListByUser(_ context.Context, userID string) ([]domain.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Note, 0, len(r.byUser[userID]))
	for _, n := range r.byUser[userID] {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NoteID > out[j].NoteID })
	return out, nil
}

func (r *NoteRepo) UpdateContent(_ context.Context, userID, noteID, content string, at time.Time) (*domain.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.byUser[userID][noteID]
	if !ok {
		return nil, fmt.Errorf("note not found: %w", domain.ErrNotFound)
	}
	n.Content = content
	n.UpdatedAt = at.UTC()
	r.byUser[userID][noteID] = n
	return &n, nil
}

func (r *NoteRepo) Delete(_ context.Context, userID, noteID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byUser[userID][noteID]; !ok {
		return fmt.Errorf("note not found: %w", domain.ErrNotFound)
	}
	delete(r.byUser[userID], noteID)
	return nil
}
