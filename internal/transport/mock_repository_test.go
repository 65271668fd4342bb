package transport

import (
	"context"
	"sort"
	"sync"
	"time"

	"catalog-api/internal/dto"
	"catalog-api/internal/repository"
)

// mockProductRepository is a map-backed ProductRepository. calls counts
// every method invocation so tests can assert the store was never reached.
type mockProductRepository struct {
	mu         sync.Mutex
	products   map[int]dto.ProductDTO
	categories map[int]dto.CategoryDTO
	nextID     int
	calls      int
	err        error
}

func newMockProductRepository(categoryIDs ...int) *mockProductRepository {
	m := &mockProductRepository{
		products:   make(map[int]dto.ProductDTO),
		categories: make(map[int]dto.CategoryDTO),
		nextID:     1,
	}
	for _, id := range categoryIDs {
		m.categories[id] = dto.CategoryDTO{ID: id, Name: "Category"}
	}
	return m
}

func (m *mockProductRepository) enter() error {
	m.mu.Lock()
	m.calls++
	return m.err
}

func (m *mockProductRepository) List(ctx context.Context) ([]dto.ProductDTO, error) {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return nil, err
	}
	return m.sorted(func(dto.ProductDTO) bool { return true }), nil
}

func (m *mockProductRepository) ListByCategory(ctx context.Context, categoryID int) ([]dto.ProductDTO, error) {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return nil, err
	}
	return m.sorted(func(p dto.ProductDTO) bool { return p.CategoryID == categoryID }), nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id int) (*dto.ProductDTO, error) {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return nil, err
	}
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	category := m.categories[p.CategoryID]
	p.Category = &category
	return &p, nil
}

func (m *mockProductRepository) Create(ctx context.Context, p dto.ProductDTO) (int, error) {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return 0, err
	}
	if _, ok := m.categories[p.CategoryID]; !ok {
		return 0, repository.ErrCategoryReference
	}
	now := time.Now().UTC()
	p.ID = m.nextID
	p.Category = nil
	p.CreatedAt, p.UpdatedAt = &now, &now
	m.products[p.ID] = p
	m.nextID++
	return p.ID, nil
}

func (m *mockProductRepository) Update(ctx context.Context, p dto.ProductDTO) (int, error) {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return 0, err
	}
	existing, ok := m.products[p.ID]
	if !ok {
		return 0, repository.ErrProductNotFound
	}
	if _, ok := m.categories[p.CategoryID]; !ok {
		return 0, repository.ErrCategoryReference
	}
	now := time.Now().UTC()
	p.Category = nil
	p.CreatedAt, p.UpdatedAt = existing.CreatedAt, &now
	m.products[p.ID] = p
	return p.ID, nil
}

func (m *mockProductRepository) Delete(ctx context.Context, id int) (bool, error) {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return false, err
	}
	if _, ok := m.products[id]; !ok {
		return false, nil
	}
	delete(m.products, id)
	return true, nil
}

func (m *mockProductRepository) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *mockProductRepository) sorted(keep func(dto.ProductDTO) bool) []dto.ProductDTO {
	out := make([]dto.ProductDTO, 0, len(m.products))
	for _, p := range m.products {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type mockCategoryRepository struct {
	mu         sync.Mutex
	categories map[int]dto.CategoryDTO
	inUse      map[int]bool
	nextID     int
	calls      int
	err        error
}

func newMockCategoryRepository() *mockCategoryRepository {
	return &mockCategoryRepository{
		categories: make(map[int]dto.CategoryDTO),
		inUse:      make(map[int]bool),
		nextID:     1,
	}
}

func (m *mockCategoryRepository) enter() error {
	m.mu.Lock()
	m.calls++
	return m.err
}

func (m *mockCategoryRepository) List(ctx context.Context) ([]dto.CategoryDTO, error) {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return nil, err
	}
	return m.sorted(false), nil
}

func (m *mockCategoryRepository) ListWithProducts(ctx context.Context) ([]dto.CategoryDTO, error) {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return nil, err
	}
	return m.sorted(true), nil
}

func (m *mockCategoryRepository) FindByID(ctx context.Context, id int, withProducts bool) (*dto.CategoryDTO, error) {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return nil, err
	}
	c, ok := m.categories[id]
	if !ok {
		return nil, repository.ErrCategoryNotFound
	}
	if withProducts {
		c.Products = &[]dto.ProductDTO{}
	}
	return &c, nil
}

func (m *mockCategoryRepository) Create(ctx context.Context, c dto.CategoryDTO) (int, error) {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return 0, err
	}
	c.ID = m.nextID
	m.categories[c.ID] = c
	m.nextID++
	return c.ID, nil
}

func (m *mockCategoryRepository) Update(ctx context.Context, c dto.CategoryDTO) (int, error) {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return 0, err
	}
	if _, ok := m.categories[c.ID]; !ok {
		return 0, repository.ErrCategoryNotFound
	}
	m.categories[c.ID] = c
	return c.ID, nil
}

func (m *mockCategoryRepository) Delete(ctx context.Context, id int) (bool, error) {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return false, err
	}
	if _, ok := m.categories[id]; !ok {
		return false, nil
	}
	if m.inUse[id] {
		return false, repository.ErrCategoryInUse
	}
	delete(m.categories, id)
	return true, nil
}

func (m *mockCategoryRepository) sorted(withProducts bool) []dto.CategoryDTO {
	out := make([]dto.CategoryDTO, 0, len(m.categories))
	for _, c := range m.categories {
		if withProducts {
			c.Products = &[]dto.ProductDTO{}
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
