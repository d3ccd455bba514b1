package impl

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"
	"storefront/internal/domain/service"

	"github.com/pkg/errors"
)

// fakeProfileStore is an in-memory ProfileRepository. Failure modes are
// switchable per test.
type fakeProfileStore struct {
	mu       sync.Mutex
	docs     map[string]*entity.Profile
	pingErr  error
	setErr   error
	getErr   error
	setCalls int
}

func newFakeProfileStore() *fakeProfileStore {
	return &fakeProfileStore{docs: make(map[string]*entity.Profile)}
}

func (s *fakeProfileStore) Get(_ context.Context, id string) (*entity.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.getErr != nil {
		return nil, s.getErr
	}
	doc, ok := s.docs[id]
	if !ok {
		return nil, repository.ErrProfileNotFound
	}

	return doc.Clone(), nil
}

func (s *fakeProfileStore) Set(_ context.Context, profile *entity.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.setCalls++
	if s.setErr != nil {
		return s.setErr
	}
	s.docs[profile.ID] = profile.Clone()

	return nil
}

func (s *fakeProfileStore) Merge(ctx context.Context, profile *entity.Profile) error {
	return s.Set(ctx, profile)
}

func (s *fakeProfileStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.docs, id)

	return nil
}

func (s *fakeProfileStore) Ping(_ context.Context) error {
	return s.pingErr
}

func (s *fakeProfileStore) has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.docs[id]

	return ok
}

// fakeSessionCache is an in-memory SessionCache.
type fakeSessionCache struct {
	mu      sync.Mutex
	entries map[string]*entity.Profile
}

func newFakeSessionCache() *fakeSessionCache {
	return &fakeSessionCache{entries: make(map[string]*entity.Profile)}
}

func (c *fakeSessionCache) GetProfile(_ context.Context, sessionID string) (*entity.Profile, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	profile, ok := c.entries[sessionID]
	if !ok {
		return nil, repository.ErrCacheMiss
	}

	return profile.Clone(), nil
}

func (c *fakeSessionCache) SaveProfile(_ context.Context, sessionID string, profile *entity.Profile) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[sessionID] = profile.Clone()

	return nil
}

func (c *fakeSessionCache) DeleteProfile(_ context.Context, sessionID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, sessionID)

	return nil
}

func (c *fakeSessionCache) has(sessionID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.entries[sessionID]

	return ok
}

// fakeCatalog serves a fixed product set.
type fakeCatalog struct {
	products map[string]*entity.Product
}

func newFakeCatalog(products ...*entity.Product) *fakeCatalog {
	catalog := &fakeCatalog{products: make(map[string]*entity.Product)}
	for _, product := range products {
		catalog.products[product.ID] = product
	}

	return catalog
}

func (c *fakeCatalog) FindByID(_ context.Context, id string) (*entity.Product, error) {
	product, ok := c.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}

	return product, nil
}

func (c *fakeCatalog) FindByIDs(_ context.Context, ids []string) (map[string]*entity.Product, error) {
	found := make(map[string]*entity.Product)
	for _, id := range ids {
		if product, ok := c.products[id]; ok {
			found[id] = product
		}
	}

	return found, nil
}

func (c *fakeCatalog) List(_ context.Context, category string, limit int) ([]*entity.Product, error) {
	products := make([]*entity.Product, 0, len(c.products))
	for _, product := range c.products {
		if category != "" && product.Category != category {
			continue
		}
		products = append(products, product)
		if limit > 0 && len(products) == limit {
			break
		}
	}

	return products, nil
}

// fakeIdentityProvider registers accounts in memory.
type fakeIdentityProvider struct {
	mu        sync.Mutex
	accounts  map[string]*service.Identity
	nextID    int
	createErr error
	nameErr   error
}

func newFakeIdentityProvider() *fakeIdentityProvider {
	return &fakeIdentityProvider{accounts: make(map[string]*service.Identity)}
}

func (p *fakeIdentityProvider) CreateAccount(_ context.Context, email, _ string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.createErr != nil {
		return "", p.createErr
	}
	for _, account := range p.accounts {
		if account.Email == email {
			return "", service.ErrAccountExists
		}
	}

	p.nextID++
	id := fmt.Sprintf("acct-%d", p.nextID)
	p.accounts[id] = &service.Identity{ID: id, Email: email}

	return id, nil
}

func (p *fakeIdentityProvider) SetDisplayName(_ context.Context, id, displayName string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.nameErr != nil {
		return p.nameErr
	}
	account, ok := p.accounts[id]
	if !ok {
		return service.ErrIdentityNotFound
	}
	account.DisplayName = displayName

	return nil
}

func (p *fakeIdentityProvider) VerifyToken(_ context.Context, token string) (*service.Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	account, ok := p.accounts[token]
	if !ok {
		return nil, errors.New("invalid token")
	}

	return account, nil
}

func (p *fakeIdentityProvider) Lookup(_ context.Context, id string) (*service.Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	account, ok := p.accounts[id]
	if !ok {
		return nil, service.ErrIdentityNotFound
	}

	return account, nil
}

func (p *fakeIdentityProvider) DeleteAccount(_ context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.accounts, id)

	return nil
}

// fakePublisher records published events.
type fakePublisher struct {
	mu     sync.Mutex
	events []*service.ProfileEvent
	err    error
}

func (p *fakePublisher) PublishProfileEvent(_ context.Context, event *service.ProfileEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)

	return nil
}

func (p *fakePublisher) Close() error {
	return nil
}

func (p *fakePublisher) actions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	actions := make([]string, 0, len(p.events))
	for _, event := range p.events {
		actions = append(actions, event.Action)
	}

	return actions
}

// testFixture bundles the fakes behind a manager under test.
type testFixture struct {
	store     *fakeProfileStore
	cache     *fakeSessionCache
	catalog   *fakeCatalog
	identity  *fakeIdentityProvider
	publisher *fakePublisher
	clock     time.Time
}

func newTestFixture(products ...*entity.Product) *testFixture {
	if len(products) == 0 {
		products = []*entity.Product{
			{ID: "sku-1", Name: "Espresso Cup", Price: 9.99, Category: "kitchen", InStock: true},
			{ID: "sku-2", Name: "Pour-Over Kettle", Price: 39.50, Category: "kitchen", InStock: true},
			{ID: "sku-3", Name: "Desk Lamp", Price: 24.00, Category: "office", InStock: true},
		}
	}

	return &testFixture{
		store:     newFakeProfileStore(),
		cache:     newFakeSessionCache(),
		catalog:   newFakeCatalog(products...),
		identity:  newFakeIdentityProvider(),
		publisher: &fakePublisher{},
		clock:     time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC),
	}
}

func (f *testFixture) deps() ManagerDeps {
	return ManagerDeps{
		Store:               f.store,
		Cache:               f.cache,
		Catalog:             f.catalog,
		Identity:            f.identity,
		Analytics:           f.publisher,
		Logger:              slog.Default(),
		DebounceInterval:    10 * time.Millisecond,
		IdentityWaitTimeout: time.Second,
		Now: func() time.Time {
			f.clock = f.clock.Add(time.Millisecond)

			return f.clock
		},
	}
}
