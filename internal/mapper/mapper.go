// Package mapper converts between persisted entities and their DTOs.
//
// Entity to DTO copies every field, following Product.Category and
// Category.Products one level each. DTO to entity never copies the
// identifier, timestamps or nested relationships: the store assigns ids,
// and relationships are persisted only through CategoryID.
package mapper

import (
	"time"

	"catalog-api/internal/domain"
	"catalog-api/internal/dto"
)

func ToProductDTO(p *domain.Product) *dto.ProductDTO {
	if p == nil {
		return nil
	}
	out := productFields(p)
	if p.Category != nil {
		out.Category = categoryFields(p.Category)
	}
	return &out
}

func ToProductDTOs(products []domain.Product) []dto.ProductDTO {
	out := make([]dto.ProductDTO, 0, len(products))
	for i := range products {
		out = append(out, *ToProductDTO(&products[i]))
	}
	return out
}

func ToCategoryDTO(c *domain.Category) *dto.CategoryDTO {
	if c == nil {
		return nil
	}
	out := categoryFields(c)
	if c.Products != nil {
		products := make([]dto.ProductDTO, 0, len(c.Products))
		for i := range c.Products {
			// no back-reference into the parent category
			products = append(products, productFields(&c.Products[i]))
		}
		out.Products = &products
	}
	return out
}

func ToCategoryDTOs(categories []domain.Category) []dto.CategoryDTO {
	out := make([]dto.CategoryDTO, 0, len(categories))
	for i := range categories {
		out = append(out, *ToCategoryDTO(&categories[i]))
	}
	return out
}

// ToProductEntity builds a new, unsaved product. The DTO id is ignored.
func ToProductEntity(d *dto.ProductDTO) *domain.Product {
	if d == nil {
		return nil
	}
	p := &domain.Product{}
	ApplyProduct(d, p)
	return p
}

// ToCategoryEntity builds a new, unsaved category. The DTO id is ignored.
func ToCategoryEntity(d *dto.CategoryDTO) *domain.Category {
	if d == nil {
		return nil
	}
	c := &domain.Category{}
	ApplyCategory(d, c)
	return c
}

// ApplyProduct copies the client-writable fields of d onto p.
func ApplyProduct(d *dto.ProductDTO, p *domain.Product) {
	p.Name = d.Name
	p.Description = d.Description
	p.Price = d.Price
	p.StockQuantity = d.StockQuantity
	p.CategoryID = d.CategoryID
}

// ApplyCategory copies the client-writable fields of d onto c.
func ApplyCategory(d *dto.CategoryDTO, c *domain.Category) {
	c.Name = d.Name
	c.Description = d.Description
}

func productFields(p *domain.Product) dto.ProductDTO {
	return dto.ProductDTO{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		StockQuantity: p.StockQuantity,
		CategoryID:    p.CategoryID,
		CreatedAt:     timePtr(p.CreatedAt),
		UpdatedAt:     timePtr(p.UpdatedAt),
	}
}

func categoryFields(c *domain.Category) *dto.CategoryDTO {
	return &dto.CategoryDTO{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   timePtr(c.CreatedAt),
		UpdatedAt:   timePtr(c.UpdatedAt),
	}
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
