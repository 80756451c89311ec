package mocks

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Difraya/only-for-tests-short-links/internal/models"
	"github.com/Difraya/only-for-tests-short-links/internal/repository"
)

// MockLinkRepository implements repository.LinkRepository for testing
type MockLinkRepository struct {
	mu     sync.RWMutex
	links  map[int64]*models.Link
	nextID int64
}

func NewMockLinkRepository() *MockLinkRepository {
	return &MockLinkRepository{
		links:  make(map[int64]*models.Link),
		nextID: 1,
	}
}

func (m *MockLinkRepository) findByCode(code string) *models.Link {
	for _, link := range m.links {
		if link.ShortCode == code {
			return link
		}
		if link.CustomAlias != nil && *link.CustomAlias == code {
			return link
		}
	}
	return nil
}

func (m *MockLinkRepository) Create(ctx context.Context, link *models.Link) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.findByCode(link.ShortCode) != nil {
		return repository.ErrCodeExists
	}
	if link.CustomAlias != nil && m.findByCode(*link.CustomAlias) != nil {
		return repository.ErrCodeExists
	}

	link.ID = m.nextID
	link.CreatedAt = time.Now()
	m.nextID++

	stored := *link
	m.links[link.ID] = &stored
	return nil
}

func (m *MockLinkRepository) GetByCode(ctx context.Context, code string) (*models.Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	link := m.findByCode(code)
	if link == nil {
		return nil, repository.ErrLinkNotFound
	}

	copy := *link
	return &copy, nil
}

func (m *MockLinkRepository) CodeInUse(ctx context.Context, code string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.findByCode(code) != nil, nil
}

func (m *MockLinkRepository) Update(ctx context.Context, link *models.Link) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, exists := m.links[link.ID]
	if !exists {
		return repository.ErrLinkNotFound
	}

	now := time.Now()
	stored.OriginalURL = link.OriginalURL
	stored.ExpiresAt = link.ExpiresAt
	stored.UpdatedAt = &now
	link.UpdatedAt = &now
	return nil
}

func (m *MockLinkRepository) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.links[id]; !exists {
		return repository.ErrLinkNotFound
	}
	delete(m.links, id)
	return nil
}

func (m *MockLinkRepository) IncrementClicks(ctx context.Context, id int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	link, exists := m.links[id]
	if !exists {
		return 0, repository.ErrLinkNotFound
	}

	now := time.Now()
	link.Clicks++
	link.UpdatedAt = &now
	return link.Clicks, nil
}

// MockCacheRepository implements repository.CacheRepository for testing
type MockCacheRepository struct {
	mu    sync.RWMutex
	cache map[string]*models.Link
}

var errCacheMiss = errors.New("cache miss")

func NewMockCacheRepository() *MockCacheRepository {
	return &MockCacheRepository{
		cache: make(map[string]*models.Link),
	}
}

func (m *MockCacheRepository) Get(ctx context.Context, code string) (*models.Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	link, exists := m.cache[code]
	if !exists {
		return nil, errCacheMiss
	}

	copy := *link
	return &copy, nil
}

func (m *MockCacheRepository) Set(ctx context.Context, code string, link *models.Link, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *link
	m.cache[code] = &stored
	return nil
}

func (m *MockCacheRepository) Delete(ctx context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.cache, code)
	return nil
}

// MockUserRepository implements repository.UserRepository for testing
type MockUserRepository struct {
	mu     sync.RWMutex
	users  map[int64]*models.User
	nextID int64
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users:  make(map[int64]*models.User),
		nextID: 1,
	}
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == user.Email || u.Username == user.Username {
			return repository.ErrUserExists
		}
	}

	user.ID = m.nextID
	user.CreatedAt = time.Now()
	m.nextID++

	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Email == email {
			copy := *u
			return &copy, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, exists := m.users[id]
	if !exists {
		return nil, repository.ErrUserNotFound
	}

	copy := *u
	return &copy, nil
}

// MockClickRepository implements repository.ClickRepository for testing
type MockClickRepository struct {
	mu     sync.RWMutex
	clicks map[int64][]*models.Click
}

func NewMockClickRepository() *MockClickRepository {
	return &MockClickRepository{
		clicks: make(map[int64][]*models.Click),
	}
}

func (m *MockClickRepository) RecordClick(ctx context.Context, click *models.Click) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clicks[click.LinkID] = append(m.clicks[click.LinkID], click)
	return nil
}

func (m *MockClickRepository) GetDailyStats(ctx context.Context, linkID int64, days int) ([]models.DailyClickStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	byDate := make(map[string]int64)
	cutoff := time.Now().AddDate(0, 0, -days)
	for _, click := range m.clicks[linkID] {
		if click.ClickedAt.After(cutoff) {
			byDate[click.ClickedAt.Format("2006-01-02")]++
		}
	}

	stats := []models.DailyClickStats{}
	for date, count := range byDate {
		stats = append(stats, models.DailyClickStats{Date: date, Clicks: count})
	}
	return stats, nil
}

func (m *MockClickRepository) Count(linkID int64) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clicks[linkID])
}
