package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/estatehub/property-moderation/internal/domain"
)

// MemoryStore keeps users and properties in process memory. It backs the
// service when no POSTGRES_DSN is configured and doubles as the repository
// fake in tests. Records are copied on the way in and out.
type MemoryStore struct {
	mu         sync.RWMutex
	users      map[string]*domain.User
	properties map[string]*domain.Property
	now        func() time.Time
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:      make(map[string]*domain.User),
		properties: make(map[string]*domain.Property),
		now:        time.Now,
	}
}

// WithClock replaces the timestamp source used for created/updated times.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
	return s
}

// Users returns the UserRepository view of the store.
func (s *MemoryStore) Users() UserRepository { return memoryUsers{s} }

// Properties returns the PropertyRepository view of the store.
func (s *MemoryStore) Properties() PropertyRepository { return memoryProperties{s} }

type memoryUsers struct{ s *MemoryStore }

func (m memoryUsers) Create(ctx context.Context, user *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	for _, existing := range m.s.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return ErrDuplicateEmail
		}
	}
	now := m.s.now()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.Version = 1
	user.CreatedAt = now
	user.UpdatedAt = now
	m.s.users[user.ID] = user.Clone()
	return nil
}

func (m memoryUsers) Update(ctx context.Context, user *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	stored, ok := m.s.users[user.ID]
	if !ok {
		return ErrNotFound
	}
	if stored.Version != user.Version {
		return ErrVersionConflict
	}
	for id, existing := range m.s.users {
		if id != user.ID && strings.EqualFold(existing.Email, user.Email) {
			return ErrDuplicateEmail
		}
	}
	user.Version++
	user.UpdatedAt = m.s.now()
	m.s.users[user.ID] = user.Clone()
	return nil
}

func (m memoryUsers) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	user, ok := m.s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return user.Clone(), nil
}

func (m memoryUsers) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	for _, user := range m.s.users {
		if strings.EqualFold(user.Email, email) {
			return user.Clone(), nil
		}
	}
	return nil, ErrNotFound
}

func (m memoryUsers) List(ctx context.Context, filter UserFilter) ([]domain.User, error) {
	matched, err := m.match(ctx, filter)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if filter.TermsAccepted && !a.Terms.AcceptedAt.Equal(b.Terms.AcceptedAt) {
			return a.Terms.AcceptedAt.After(b.Terms.AcceptedAt)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})

	limit, offset := clampWindow(filter.Limit, filter.Offset)
	return window(matched, int(limit), int(offset)), nil
}

func (m memoryUsers) Count(ctx context.Context, filter UserFilter) (int64, error) {
	matched, err := m.match(ctx, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(matched)), nil
}

func (m memoryUsers) match(ctx context.Context, filter UserFilter) ([]domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	roles := make(map[domain.Role]struct{}, len(filter.Roles))
	for _, role := range filter.Roles {
		roles[role] = struct{}{}
	}
	search := strings.ToLower(filter.Search)

	var out []domain.User
	for _, user := range m.s.users {
		if len(roles) > 0 {
			if _, ok := roles[user.Role]; !ok {
				continue
			}
		}
		if search != "" && !strings.Contains(strings.ToLower(user.Name), search) && !strings.Contains(strings.ToLower(user.Email), search) {
			continue
		}
		if filter.Suspended != nil && user.IsSuspended() != *filter.Suspended {
			continue
		}
		if !filter.IncludeDeleted && user.IsDeleted() {
			continue
		}
		if filter.TermsAccepted && user.Terms == nil {
			continue
		}
		out = append(out, *user.Clone())
	}
	return out, nil
}

type memoryProperties struct{ s *MemoryStore }

func (m memoryProperties) Create(ctx context.Context, property *domain.Property) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	now := m.s.now()
	if property.ID == "" {
		property.ID = uuid.NewString()
	}
	property.Version = 1
	property.CreatedAt = now
	property.UpdatedAt = now
	m.s.properties[property.ID] = property.Clone()
	return nil
}

func (m memoryProperties) Update(ctx context.Context, property *domain.Property) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	stored, ok := m.s.properties[property.ID]
	if !ok {
		return ErrNotFound
	}
	if stored.Version != property.Version {
		return ErrVersionConflict
	}
	property.Version++
	property.UpdatedAt = m.s.now()
	m.s.properties[property.ID] = property.Clone()
	return nil
}

func (m memoryProperties) GetByID(ctx context.Context, id string) (*domain.Property, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	property, ok := m.s.properties[id]
	if !ok {
		return nil, ErrNotFound
	}
	return property.Clone(), nil
}

func (m memoryProperties) List(ctx context.Context, filter PropertyFilter) ([]domain.Property, error) {
	matched, err := m.match(ctx, filter)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})

	limit, offset := clampWindow(filter.Limit, filter.Offset)
	return window(matched, int(limit), int(offset)), nil
}

func (m memoryProperties) Count(ctx context.Context, filter PropertyFilter) (int64, error) {
	matched, err := m.match(ctx, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(matched)), nil
}

func (m memoryProperties) ClearAssignments(ctx context.Context) (int64, error) {
	return m.release(ctx, func(*domain.Assignment) bool { return true })
}

func (m memoryProperties) ReleaseAgent(ctx context.Context, agentID string) (int64, error) {
	return m.release(ctx, func(a *domain.Assignment) bool { return a.AgentID == agentID })
}

func (m memoryProperties) release(ctx context.Context, held func(*domain.Assignment) bool) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	var modified int64
	now := m.s.now()
	for _, property := range m.s.properties {
		if property.Assignment == nil || !held(property.Assignment) {
			continue
		}
		property.Assignment = nil
		property.Version++
		property.UpdatedAt = now
		modified++
	}
	return modified, nil
}

func (m memoryProperties) match(ctx context.Context, filter PropertyFilter) ([]domain.Property, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	search := strings.ToLower(filter.Search)
	var out []domain.Property
	for _, property := range m.s.properties {
		if filter.Approval != nil && property.Approval != *filter.Approval {
			continue
		}
		if filter.SellerID != nil && property.SellerID != *filter.SellerID {
			continue
		}
		if filter.AgentID != nil && property.AssignedAgentID() != *filter.AgentID {
			continue
		}
		if filter.Assigned != nil && (property.Assignment != nil) != *filter.Assigned {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(property.Title), search) &&
			!strings.Contains(strings.ToLower(property.City), search) &&
			!strings.Contains(strings.ToLower(property.Address), search) {
			continue
		}
		if !filter.IncludeDeleted && property.IsDeleted() {
			continue
		}
		out = append(out, *property.Clone())
	}
	return out, nil
}

func window[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
