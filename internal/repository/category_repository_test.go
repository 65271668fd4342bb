package repository

import (
	"context"
	"testing"

	"catalog-api/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCategoryRepository_CRUD(t *testing.T) {
	s := requireDB(t)
	ctx := context.Background()
	repo := NewCategoryRepository(s, zap.NewNop())

	id, err := repo.Create(ctx, dto.CategoryDTO{ID: 5000, Name: "Garden", Description: "outdoor"})
	require.NoError(t, err)
	assert.NotEqual(t, 5000, id)

	got, err := repo.FindByID(ctx, id, false)
	require.NoError(t, err)
	assert.Equal(t, "Garden", got.Name)
	assert.Nil(t, got.Products)

	_, err = repo.Update(ctx, dto.CategoryDTO{ID: id, Name: "Garden & Patio"})
	require.NoError(t, err)

	got, err = repo.FindByID(ctx, id, false)
	require.NoError(t, err)
	assert.Equal(t, "Garden & Patio", got.Name)
	assert.Empty(t, got.Description)

	ok, err := repo.Delete(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = repo.FindByID(ctx, id, false)
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestCategoryRepository_WithProducts(t *testing.T) {
	s := requireDB(t)
	ctx := context.Background()
	categories := NewCategoryRepository(s, zap.NewNop())
	products := NewProductRepository(s, zap.NewNop())

	categoryID := createTestCategory(t, categories)

	got, err := categories.FindByID(ctx, categoryID, true)
	require.NoError(t, err)
	require.NotNil(t, got.Products)
	assert.Empty(t, *got.Products)

	_, err = products.Create(ctx, dto.ProductDTO{Name: "Rake", CategoryID: categoryID})
	require.NoError(t, err)

	got, err = categories.FindByID(ctx, categoryID, true)
	require.NoError(t, err)
	require.NotNil(t, got.Products)
	require.Len(t, *got.Products, 1)
	assert.Equal(t, "Rake", (*got.Products)[0].Name)

	all, err := categories.ListWithProducts(ctx)
	require.NoError(t, err)
	var found bool
	for _, c := range all {
		if c.ID == categoryID {
			found = c.Products != nil && len(*c.Products) == 1
		}
	}
	assert.True(t, found)
}

func TestCategoryRepository_DeleteInUse(t *testing.T) {
	s := requireDB(t)
	ctx := context.Background()
	categories := NewCategoryRepository(s, zap.NewNop())
	products := NewProductRepository(s, zap.NewNop())

	categoryID := createTestCategory(t, categories)
	productID, err := products.Create(ctx, dto.ProductDTO{Name: "Shovel", CategoryID: categoryID})
	require.NoError(t, err)

	ok, err := categories.Delete(ctx, categoryID)
	assert.ErrorIs(t, err, ErrCategoryInUse)
	assert.False(t, ok)

	// the product is untouched
	_, err = products.FindByID(ctx, productID)
	require.NoError(t, err)
}

func TestCategoryRepository_UpdateMissing(t *testing.T) {
	s := requireDB(t)
	repo := NewCategoryRepository(s, zap.NewNop())

	_, err := repo.Update(context.Background(), dto.CategoryDTO{ID: 765432109, Name: "Nope"})
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}
