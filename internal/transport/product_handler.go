package transport

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"catalog-api/internal/dto"
	"catalog-api/internal/middleware"
	"catalog-api/internal/repository"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProductListResponse wraps GET /product.
type ProductListResponse struct {
	Message  string           `json:"message"`
	Count    int              `json:"count"`
	Products []dto.ProductDTO `json:"products"`
}

// ProductResponse wraps GET /product/{id}.
type ProductResponse struct {
	Message string          `json:"message"`
	Product *dto.ProductDTO `json:"product"`
}

// ProductHandler handles HTTP requests for products
type ProductHandler struct {
	products repository.ProductRepository
	logger   *zap.Logger
	opts     HandlerOptions
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(products repository.ProductRepository, logger *zap.Logger, opts HandlerOptions) *ProductHandler {
	return &ProductHandler{
		products: products,
		logger:   logger.Named("product"),
		opts:     opts,
	}
}

// RegisterRoutes mounts the product routes. writeGuard, when non-nil,
// wraps the mutating routes.
func (h *ProductHandler) RegisterRoutes(r chi.Router, writeGuard func(http.Handler) http.Handler) {
	r.Route("/product", func(r chi.Router) {
		r.Get("/", h.ListProducts)
		r.Get("/export", h.ExportProducts)
		r.Get("/{id}", h.GetProduct)

		r.Group(func(r chi.Router) {
			if writeGuard != nil {
				r.Use(writeGuard)
			}
			r.Post("/", h.CreateProduct)
			r.Put("/", h.UpdateProduct)
			r.Delete("/{id}", h.DeleteProduct)
		})
	})
}

// ListProducts returns every product, or those of one category when
// ?categoryId is given.
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	h.logger.Debug("Fetching products")

	var (
		products []dto.ProductDTO
		err      error
	)
	if raw := r.URL.Query().Get("categoryId"); raw != "" {
		categoryID, perr := parsePositive(raw)
		if perr != nil {
			h.logger.Warn("Invalid category filter", zap.String("category_id", raw))
			middleware.RespondWithError(w, http.StatusBadRequest, "categoryId must be a positive integer")
			return
		}
		products, err = h.products.ListByCategory(r.Context(), categoryID)
	} else {
		products, err = h.products.List(r.Context())
	}
	if err != nil {
		middleware.RespondWithInternalError(w, h.logger, "Failed to list products", err)
		return
	}

	if len(products) == 0 && h.opts.EmptyListNotFound {
		h.logger.Warn("No products found")
		middleware.RespondWithError(w, http.StatusNotFound, "no products found")
		return
	}

	h.logger.Info("Products listed", zap.Int("count", len(products)))
	middleware.RespondWithJSON(w, http.StatusOK, ProductListResponse{
		Message:  fmt.Sprintf("Found %d products.", len(products)),
		Count:    len(products),
		Products: products,
	})
}

// GetProduct returns one product with its category
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.logger.Warn("Invalid product ID", zap.String("id", chi.URLParam(r, "id")))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	h.logger.Debug("Fetching product", zap.Int("product_id", id))

	product, err := h.products.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			h.logger.Warn("Product not found", zap.Int("product_id", id))
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		middleware.RespondWithInternalError(w, h.logger, "Failed to fetch product", err, zap.Int("product_id", id))
		return
	}

	h.logger.Info("Product found", zap.Int("product_id", id))
	middleware.RespondWithJSON(w, http.StatusOK, ProductResponse{
		Message: fmt.Sprintf("Product with ID: %d found.", id),
		Product: product,
	})
}

// CreateProduct inserts a product. Any id in the body is ignored.
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var in dto.ProductDTO
	if !decodeBody(w, r, h.logger, &in) || !h.checkCategory(w, in) {
		return
	}

	h.logger.Debug("Creating product", zap.String("name", in.Name))

	id, err := h.products.Create(r.Context(), in)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryReference) {
			h.logger.Warn("Product references unknown category", zap.Int("category_id", in.CategoryID))
			middleware.RespondWithError(w, http.StatusBadRequest, "category does not exist")
			return
		}
		middleware.RespondWithInternalError(w, h.logger, "Failed to create product", err)
		return
	}

	h.logger.Info("Product created", zap.Int("product_id", id))
	w.Header().Set("Location", "/product/"+strconv.Itoa(id))
	middleware.RespondWithJSON(w, http.StatusCreated, CreatedResponse{
		Message: fmt.Sprintf("Created new product with ID: %d", id),
		ID:      id,
	})
}

// UpdateProduct replaces the product named by the body's id
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var in dto.ProductDTO
	if !decodeBody(w, r, h.logger, &in) {
		return
	}
	if in.ID <= 0 {
		h.logger.Warn("Invalid product ID", zap.Int("product_id", in.ID))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}
	if !h.checkCategory(w, in) {
		return
	}

	h.logger.Debug("Updating product", zap.Int("product_id", in.ID))

	if _, err := h.products.Update(r.Context(), in); err != nil {
		switch {
		case errors.Is(err, repository.ErrProductNotFound):
			h.logger.Warn("Product not found", zap.Int("product_id", in.ID))
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
		case errors.Is(err, repository.ErrCategoryReference):
			h.logger.Warn("Product references unknown category", zap.Int("category_id", in.CategoryID))
			middleware.RespondWithError(w, http.StatusBadRequest, "category does not exist")
		default:
			middleware.RespondWithInternalError(w, h.logger, "Failed to update product", err, zap.Int("product_id", in.ID))
		}
		return
	}

	h.logger.Info("Product updated", zap.Int("product_id", in.ID))
	w.WriteHeader(http.StatusNoContent)
}

// DeleteProduct removes a product
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.logger.Warn("Invalid product ID", zap.String("id", chi.URLParam(r, "id")))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	h.logger.Debug("Deleting product", zap.Int("product_id", id))

	deleted, err := h.products.Delete(r.Context(), id)
	if err != nil {
		middleware.RespondWithInternalError(w, h.logger, "Failed to delete product", err, zap.Int("product_id", id))
		return
	}
	if !deleted {
		h.logger.Warn("Product not found", zap.Int("product_id", id))
		middleware.RespondWithError(w, http.StatusNotFound, "product not found")
		return
	}

	h.logger.Info("Product deleted", zap.Int("product_id", id))
	w.WriteHeader(http.StatusNoContent)
}

// ExportProducts streams every product as an xlsx workbook
func (h *ProductHandler) ExportProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		middleware.RespondWithInternalError(w, h.logger, "Failed to list products for export", err)
		return
	}

	buf, err := productWorkbook(products)
	if err != nil {
		middleware.RespondWithInternalError(w, h.logger, "Failed to build product workbook", err)
		return
	}

	h.logger.Info("Products exported", zap.Int("count", len(products)))
	w.Header().Set("Content-Type", xlsxMIME)
	w.Header().Set("Content-Disposition", `attachment; filename="`+exportFileName(time.Now())+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn("Failed to write workbook", zap.Error(err))
	}
}

// checkCategory rejects a body whose embedded category contradicts categoryId.
func (h *ProductHandler) checkCategory(w http.ResponseWriter, in dto.ProductDTO) bool {
	if in.CategoryConsistent() {
		return true
	}
	h.logger.Warn("Embedded category does not match categoryId",
		zap.Int("category_id", in.CategoryID),
		zap.Int("embedded_category_id", in.Category.ID),
	)
	middleware.RespondWithValidationErrors(w, []middleware.ValidationError{{
		Field:   "category.id",
		Message: "Must match categoryId",
	}})
	return false
}
