package memory

import (
	"context"
	"sync"

	"github.com/splitbot-dev/splitbot/internal/model"
	"github.com/splitbot-dev/splitbot/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	scores   map[model.GameKey]map[model.UserID]*model.ScoreRecord
	bindings map[model.GuildID]*model.ComponentBinding
	links    map[model.UserID]*model.AccountLink
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		scores:   make(map[model.GameKey]map[model.UserID]*model.ScoreRecord),
		bindings: make(map[model.GuildID]*model.ComponentBinding),
		links:    make(map[model.UserID]*model.AccountLink),
	}
}

// Ensure Storage implements the interface
var _ storage.Store = (*Storage)(nil)

// Score operations

func (s *Storage) IncrementScore(ctx context.Context, game model.GameKey, userID model.UserID, displayName string, delta int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byUser, ok := s.scores[game]
	if !ok {
		byUser = make(map[model.UserID]*model.ScoreRecord)
		s.scores[game] = byUser
	}

	rec, ok := byUser[userID]
	if !ok {
		rec = &model.ScoreRecord{UserID: userID}
		byUser[userID] = rec
	}
	rec.Score += delta
	rec.DisplayName = displayName
	return rec.Score, nil
}

func (s *Storage) Scores(ctx context.Context, game model.GameKey) ([]model.ScoreRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]model.ScoreRecord, 0, len(s.scores[game]))
	for _, rec := range s.scores[game] {
		records = append(records, *rec)
	}
	return records, nil
}

// Role panel operations

func (s *Storage) ReplaceBinding(ctx context.Context, binding *model.ComponentBinding) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bindings[binding.GuildID] = binding
	return nil
}

func (s *Storage) GetBinding(ctx context.Context, guildID model.GuildID) (*model.ComponentBinding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	binding, ok := s.bindings[guildID]
	if !ok {
		return nil, model.ErrBindingNotFound
	}
	return binding, nil
}

func (s *Storage) ListBindings(ctx context.Context) ([]*model.ComponentBinding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bindings := make([]*model.ComponentBinding, 0, len(s.bindings))
	for _, b := range s.bindings {
		bindings = append(bindings, b)
	}
	return bindings, nil
}

func (s *Storage) DeleteBinding(ctx context.Context, guildID model.GuildID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.bindings, guildID)
	return nil
}

// Account link operations

func (s *Storage) SaveLink(ctx context.Context, link *model.AccountLink) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.links[link.UserID] = link
	return nil
}

func (s *Storage) GetLink(ctx context.Context, userID model.UserID) (*model.AccountLink, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	link, ok := s.links[userID]
	if !ok {
		return nil, model.ErrLinkNotFound
	}
	return link, nil
}

func (s *Storage) DeleteLink(ctx context.Context, userID model.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.links, userID)
	return nil
}
