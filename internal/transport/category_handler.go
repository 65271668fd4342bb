package transport

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"catalog-api/internal/dto"
	"catalog-api/internal/middleware"
	"catalog-api/internal/repository"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type CategoryListResponse struct {
	Message    string            `json:"message"`
	Count      int               `json:"count"`
	Categories []dto.CategoryDTO `json:"categories"`
}

type CategoryResponse struct {
	Message  string           `json:"message"`
	Category *dto.CategoryDTO `json:"category"`
}

// CategoryHandler handles HTTP requests for categories
type CategoryHandler struct {
	categories repository.CategoryRepository
	logger     *zap.Logger
	opts       HandlerOptions
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categories repository.CategoryRepository, logger *zap.Logger, opts HandlerOptions) *CategoryHandler {
	return &CategoryHandler{
		categories: categories,
		logger:     logger.Named("category"),
		opts:       opts,
	}
}

// RegisterRoutes mounts the category routes. writeGuard, when non-nil,
// wraps the mutating routes.
func (h *CategoryHandler) RegisterRoutes(r chi.Router, writeGuard func(http.Handler) http.Handler) {
	r.Route("/category", func(r chi.Router) {
		r.Get("/", h.ListCategories)
		r.Get("/{id}", h.GetCategory)

		r.Group(func(r chi.Router) {
			if writeGuard != nil {
				r.Use(writeGuard)
			}
			r.Post("/", h.CreateCategory)
			r.Put("/", h.UpdateCategory)
			r.Delete("/{id}", h.DeleteCategory)
		})
	})
}

// ListCategories returns every category; ?includeProducts=true embeds products
func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	withProducts := queryBool(r, "includeProducts")
	h.logger.Debug("Fetching categories", zap.Bool("include_products", withProducts))

	var (
		categories []dto.CategoryDTO
		err        error
	)
	if withProducts {
		categories, err = h.categories.ListWithProducts(r.Context())
	} else {
		categories, err = h.categories.List(r.Context())
	}
	if err != nil {
		middleware.RespondWithInternalError(w, h.logger, "Failed to list categories", err)
		return
	}

	if len(categories) == 0 && h.opts.EmptyListNotFound {
		h.logger.Warn("No categories found")
		middleware.RespondWithError(w, http.StatusNotFound, "no categories found")
		return
	}

	h.logger.Info("Categories listed", zap.Int("count", len(categories)))
	middleware.RespondWithJSON(w, http.StatusOK, CategoryListResponse{
		Message:    fmt.Sprintf("Found %d categories.", len(categories)),
		Count:      len(categories),
		Categories: categories,
	})
}

func (h *CategoryHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.logger.Warn("Invalid category ID", zap.String("id", chi.URLParam(r, "id")))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid category ID")
		return
	}

	category, err := h.categories.FindByID(r.Context(), id, queryBool(r, "includeProducts"))
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			h.logger.Warn("Category not found", zap.Int("category_id", id))
			middleware.RespondWithError(w, http.StatusNotFound, "category not found")
			return
		}
		middleware.RespondWithInternalError(w, h.logger, "Failed to fetch category", err, zap.Int("category_id", id))
		return
	}

	h.logger.Info("Category found", zap.Int("category_id", id))
	middleware.RespondWithJSON(w, http.StatusOK, CategoryResponse{
		Message:  fmt.Sprintf("Category with ID: %d found.", id),
		Category: category,
	})
}

func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var in dto.CategoryDTO
	if !decodeBody(w, r, h.logger, &in) {
		return
	}

	id, err := h.categories.Create(r.Context(), in)
	if err != nil {
		middleware.RespondWithInternalError(w, h.logger, "Failed to create category", err)
		return
	}

	h.logger.Info("Category created", zap.Int("category_id", id))
	w.Header().Set("Location", "/category/"+strconv.Itoa(id))
	middleware.RespondWithJSON(w, http.StatusCreated, CreatedResponse{
		Message: fmt.Sprintf("Created new category with ID: %d", id),
		ID:      id,
	})
}

func (h *CategoryHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var in dto.CategoryDTO
	if !decodeBody(w, r, h.logger, &in) {
		return
	}
	if in.ID <= 0 {
		h.logger.Warn("Invalid category ID", zap.Int("category_id", in.ID))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid category ID")
		return
	}

	if _, err := h.categories.Update(r.Context(), in); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			h.logger.Warn("Category not found", zap.Int("category_id", in.ID))
			middleware.RespondWithError(w, http.StatusNotFound, "category not found")
			return
		}
		middleware.RespondWithInternalError(w, h.logger, "Failed to update category", err, zap.Int("category_id", in.ID))
		return
	}

	h.logger.Info("Category updated", zap.Int("category_id", in.ID))
	w.WriteHeader(http.StatusNoContent)
}

// DeleteCategory removes a category. Categories still referenced by
// products are refused with 409.
func (h *CategoryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.logger.Warn("Invalid category ID", zap.String("id", chi.URLParam(r, "id")))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid category ID")
		return
	}

	deleted, err := h.categories.Delete(r.Context(), id)
	switch {
	case errors.Is(err, repository.ErrCategoryInUse):
		h.logger.Warn("Category still has products", zap.Int("category_id", id))
		middleware.RespondWithError(w, http.StatusConflict, "category still has products")
		return
	case err != nil:
		middleware.RespondWithInternalError(w, h.logger, "Failed to delete category", err, zap.Int("category_id", id))
		return
	case !deleted:
		h.logger.Warn("Category not found", zap.Int("category_id", id))
		middleware.RespondWithError(w, http.StatusNotFound, "category not found")
		return
	}

	h.logger.Info("Category deleted", zap.Int("category_id", id))
	w.WriteHeader(http.StatusNoContent)
}
