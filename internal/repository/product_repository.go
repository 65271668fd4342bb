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
	ErrProductNotFound = errors.New("product not found")
)

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	List(ctx context.Context) ([]dto.ProductDTO, error)
	ListByCategory(ctx context.Context, categoryID int) ([]dto.ProductDTO, error)
	FindByID(ctx context.Context, id int) (*dto.ProductDTO, error)
	Create(ctx context.Context, product dto.ProductDTO) (int, error)
	Update(ctx context.Context, product dto.ProductDTO) (int, error)
	Delete(ctx context.Context, id int) (bool, error)
}

// Columns written by Update. Zero values must be persisted too, so the
// set is explicit rather than inferred from the struct.
var productWritableColumns = []string{"name", "description", "price", "stock_quantity", "category_id"}

type productRepository struct {
	store  *store.Store
	logger *zap.Logger
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(s *store.Store, logger *zap.Logger) ProductRepository {
	return &productRepository{store: s, logger: logger}
}

func (r *productRepository) List(ctx context.Context) ([]dto.ProductDTO, error) {
	var products []domain.Product
	err := r.store.Session(ctx).
		Preload("Category").
		Order("id").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", store.Classify(err))
	}
	return mapper.ToProductDTOs(products), nil
}

func (r *productRepository) ListByCategory(ctx context.Context, categoryID int) ([]dto.ProductDTO, error) {
	if categoryID <= 0 {
		return nil, ErrInvalidID
	}

	var products []domain.Product
	err := r.store.Session(ctx).
		Preload("Category").
		Where("category_id = ?", categoryID).
		Order("id").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list products for category %d: %w", categoryID, store.Classify(err))
	}
	return mapper.ToProductDTOs(products), nil
}

func (r *productRepository) FindByID(ctx context.Context, id int) (*dto.ProductDTO, error) {
	if id <= 0 {
		return nil, ErrInvalidID
	}

	var product domain.Product
	err := r.store.Session(ctx).
		Preload("Category").
		First(&product, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product %d: %w", id, store.Classify(err))
	}
	return mapper.ToProductDTO(&product), nil
}

// Create inserts the product and returns the id assigned by the database.
// Any id carried by the DTO is ignored.
func (r *productRepository) Create(ctx context.Context, in dto.ProductDTO) (int, error) {
	product := mapper.ToProductEntity(&in)

	err := r.store.InTx(ctx, func(tx *gorm.DB) error {
		return store.Affected(tx.Omit(clause.Associations).Create(product))
	})
	if err != nil {
		return 0, r.writeError("create", err)
	}
	if product.ID <= 0 {
		return 0, fmt.Errorf("failed to create product: %w", store.ErrNoRowsAffected)
	}

	r.logger.Debug("Product inserted", zap.Int("product_id", product.ID))
	return product.ID, nil
}

// Update replaces every writable field of an existing product. The row is
// locked while it is read and written; concurrent updates are applied in
// commit order and the last one wins. A missing row is never inserted.
func (r *productRepository) Update(ctx context.Context, in dto.ProductDTO) (int, error) {
	if in.ID <= 0 {
		return 0, ErrInvalidID
	}

	err := r.store.InTx(ctx, func(tx *gorm.DB) error {
		var existing domain.Product
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&existing, in.ID).Error; err != nil {
			return err
		}

		mapper.ApplyProduct(&in, &existing)

		return store.Affected(tx.Model(&existing).
			Select(productWritableColumns).
			Updates(&existing))
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return 0, ErrProductNotFound
		}
		return 0, r.writeError("update", err)
	}

	r.logger.Debug("Product updated", zap.Int("product_id", in.ID))
	return in.ID, nil
}

// Delete removes the product. A missing row yields false and no error.
func (r *productRepository) Delete(ctx context.Context, id int) (bool, error) {
	if id <= 0 {
		return false, ErrInvalidID
	}

	err := r.store.InTx(ctx, func(tx *gorm.DB) error {
		return store.Affected(tx.Delete(&domain.Product{}, id))
	})
	if err != nil {
		if errors.Is(err, store.ErrNoRowsAffected) {
			return false, nil
		}
		return false, fmt.Errorf("failed to delete product %d: %w", id, err)
	}

	r.logger.Debug("Product deleted", zap.Int("product_id", id))
	return true, nil
}

func (r *productRepository) writeError(op string, err error) error {
	if errors.Is(err, store.ErrForeignKeyViolation) {
		return ErrCategoryReference
	}
	return fmt.Errorf("failed to %s product: %w", op, err)
}
