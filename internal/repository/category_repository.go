package repository

import (
	"context"
	"errors"
	"fmt"

	"catalog-api/internal/domain"
	"catalog-api/internal/dto"
	"catalog-api/internal/mapper"
	"catalog-api/internal/store"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	// ErrCategoryInUse is returned when deleting a category that products still reference.
	ErrCategoryInUse = errors.New("category is referenced by products")
)

// CategoryRepository defines the interface for category data access
type CategoryRepository interface {
	List(ctx context.Context) ([]dto.CategoryDTO, error)
	ListWithProducts(ctx context.Context) ([]dto.CategoryDTO, error)
	FindByID(ctx context.Context, id int, withProducts bool) (*dto.CategoryDTO, error)
	Create(ctx context.Context, category dto.CategoryDTO) (int, error)
	Update(ctx context.Context, category dto.CategoryDTO) (int, error)
	Delete(ctx context.Context, id int) (bool, error)
}

var categoryWritableColumns = []string{"name", "description"}

type categoryRepository struct {
	store  *store.Store
	logger *zap.Logger
}

// NewCategoryRepository creates a new instance of CategoryRepository
func NewCategoryRepository(s *store.Store, logger *zap.Logger) CategoryRepository {
	return &categoryRepository{store: s, logger: logger}
}

func (r *categoryRepository) List(ctx context.Context) ([]dto.CategoryDTO, error) {
	return r.list(ctx, false)
}

func (r *categoryRepository) ListWithProducts(ctx context.Context) ([]dto.CategoryDTO, error) {
	return r.list(ctx, true)
}

func (r *categoryRepository) list(ctx context.Context, withProducts bool) ([]dto.CategoryDTO, error) {
	q := r.store.Session(ctx).Order("id")
	if withProducts {
		q = preloadProducts(q)
	}

	var categories []domain.Category
	if err := q.Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", store.Classify(err))
	}
	if withProducts {
		for i := range categories {
			markLoaded(&categories[i])
		}
	}
	return mapper.ToCategoryDTOs(categories), nil
}

func (r *categoryRepository) FindByID(ctx context.Context, id int, withProducts bool) (*dto.CategoryDTO, error) {
	if id <= 0 {
		return nil, ErrInvalidID
	}

	q := r.store.Session(ctx)
	if withProducts {
		q = preloadProducts(q)
	}

	var category domain.Category
	if err := q.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to find category %d: %w", id, store.Classify(err))
	}
	if withProducts {
		markLoaded(&category)
	}
	return mapper.ToCategoryDTO(&category), nil
}

func (r *categoryRepository) Create(ctx context.Context, in dto.CategoryDTO) (int, error) {
	category := mapper.ToCategoryEntity(&in)

	err := r.store.InTx(ctx, func(tx *gorm.DB) error {
		return store.Affected(tx.Omit(clause.Associations).Create(category))
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create category: %w", err)
	}
	if category.ID <= 0 {
		return 0, fmt.Errorf("failed to create category: %w", store.ErrNoRowsAffected)
	}

	r.logger.Debug("Category inserted", zap.Int("category_id", category.ID))
	return category.ID, nil
}

func (r *categoryRepository) Update(ctx context.Context, in dto.CategoryDTO) (int, error) {
	if in.ID <= 0 {
		return 0, ErrInvalidID
	}

	err := r.store.InTx(ctx, func(tx *gorm.DB) error {
		var existing domain.Category
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&existing, in.ID).Error; err != nil {
			return err
		}

		mapper.ApplyCategory(&in, &existing)

		return store.Affected(tx.Model(&existing).
			Select(categoryWritableColumns).
			Updates(&existing))
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return 0, ErrCategoryNotFound
		}
		return 0, fmt.Errorf("failed to update category: %w", err)
	}

	r.logger.Debug("Category updated", zap.Int("category_id", in.ID))
	return in.ID, nil
}

// Delete removes the category. Products are never cascaded: while any
// product references it, ErrCategoryInUse is returned.
func (r *categoryRepository) Delete(ctx context.Context, id int) (bool, error) {
	if id <= 0 {
		return false, ErrInvalidID
	}

	err := r.store.InTx(ctx, func(tx *gorm.DB) error {
		return store.Affected(tx.Delete(&domain.Category{}, id))
	})
	switch {
	case err == nil:
	case errors.Is(err, store.ErrNoRowsAffected):
		return false, nil
	case errors.Is(err, store.ErrForeignKeyViolation):
		return false, ErrCategoryInUse
	default:
		return false, fmt.Errorf("failed to delete category %d: %w", id, err)
	}

	r.logger.Debug("Category deleted", zap.Int("category_id", id))
	return true, nil
}

// markLoaded keeps a preloaded but empty collection distinct from one that
// was never loaded.
func markLoaded(c *domain.Category) {
	if c.Products == nil {
		c.Products = []domain.Product{}
	}
}

func preloadProducts(q *gorm.DB) *gorm.DB {
	return q.Preload("Products", func(db *gorm.DB) *gorm.DB {
		return db.Order("products.id")
	})
}
