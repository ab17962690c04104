package store

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/MapleStore/CatalogBot/internal/models"
)

// InMemoryStore keeps the catalog in process memory. It backs tests and dev
// runs where no database is configured; contents vanish on restart.
type InMemoryStore struct {
	mu         sync.RWMutex
	groups     map[string]models.SpotlightGroup
	categories map[string]memCategory
	products   map[string]models.ProductFields
}

type memCategory struct {
	models.CategoryRef
	GroupID string
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		groups:     make(map[string]models.SpotlightGroup),
		categories: make(map[string]memCategory),
		products:   make(map[string]models.ProductFields),
	}
}

// AddSpotlightGroup registers a spotlight group, mirroring the seeded groups
// a SQL backend gets from its migrations.
func (s *InMemoryStore) AddSpotlightGroup(g models.SpotlightGroup) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups[g.ID] = g
}

func (s *InMemoryStore) CreateProduct(ctx context.Context, fields models.ProductFields) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[fields.CategoryID]; !ok {
		return "", fmt.Errorf("category %s not found", fields.CategoryID)
	}
	id := uuid.NewString()
	s.products[id] = fields
	slog.Debug("InMemoryStore CreateProduct succeeded", "id", id, "name", fields.Name)
	return id, nil
}

func (s *InMemoryStore) CreateCategory(ctx context.Context, fields models.CategoryFields) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.groups[fields.SpotlightGroupID]; !ok {
		return "", fmt.Errorf("spotlight group %s not found", fields.SpotlightGroupID)
	}
	id := uuid.NewString()
	s.categories[id] = memCategory{
		CategoryRef: models.CategoryRef{ID: id, Name: fields.Name},
		GroupID:     fields.SpotlightGroupID,
	}
	slog.Debug("InMemoryStore CreateCategory succeeded", "id", id, "name", fields.Name)
	return id, nil
}

func (s *InMemoryStore) SpotlightGroups(ctx context.Context) ([]models.SpotlightGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	groups := make([]models.SpotlightGroup, 0, len(s.groups))
	for _, g := range s.groups {
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })
	return groups, nil
}

func (s *InMemoryStore) CategoriesForGroup(ctx context.Context, groupID string) ([]models.CategoryRef, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var refs []models.CategoryRef
	for _, c := range s.categories {
		if c.GroupID == groupID {
			refs = append(refs, c.CategoryRef)
		}
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Name < refs[j].Name })
	return refs, nil
}

// Products returns all persisted products (for tests).
func (s *InMemoryStore) Products() []models.ProductFields {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ProductFields, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	return out
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error { return nil }
