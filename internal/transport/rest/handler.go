// Package rest provides HTTP handlers for product and sale operations.
package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	inverrors "github.com/abgdnv/grocerytracker/internal/errors"
	"github.com/abgdnv/grocerytracker/internal/service"
	"github.com/abgdnv/grocerytracker/internal/store"
	"github.com/abgdnv/grocerytracker/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	service  service.InventoryService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new Handler backed by the provided service.
func NewHandler(service service.InventoryService, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: newValidator(),
		logger:   logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes of the inventory service.
func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.ListProducts)
		r.Post("/", h.CreateProduct)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.FindProductByID)
			r.Put("/", h.UpdateProduct)
			r.Delete("/", h.DeleteProduct)
		})
	})

	r.Route("/sales", func(r chi.Router) {
		r.Get("/", h.ListSales)
		r.Post("/", h.CreateSale)
		r.Get("/{id}", h.FindSaleByID)
	})

	r.Get("/top-products", h.TopProducts)
	r.Get("/healthz", h.HealthCheck)
}

// CreateProduct handles the creation of a new product.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	mLogger := h.logger
	var dto service.ProductCreateDto
	if !h.decodeAndValidate(w, r, mLogger, &dto) {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to create product", "name", dto.Name)

	created, err := h.service.CreateProduct(r.Context(), dto)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error creating product", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to create product")
		return
	}
	mLogger.InfoContext(r.Context(), "Product created successfully", "ID", created.ID, "Name", created.Name)
	web.RespondJSON(w, mLogger, http.StatusCreated, created)
}

// ListProducts returns every product.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	mLogger := h.logger
	list, err := h.service.ListProducts(r.Context())
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving product list", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	mLogger.DebugContext(r.Context(), "Successfully retrieved product list", "count", len(list))
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

// FindProductByID retrieves a product by its ID.
func (h *Handler) FindProductByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.logger
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	found, err := h.service.FindProductByID(r.Context(), id)
	if err != nil {
		h.respondProductError(w, r, mLogger, id, err, "retrieve")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, found)
}

// UpdateProduct replaces name, price and stock of a product.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	mLogger := h.logger
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	var dto service.ProductCreateDto
	if !h.decodeAndValidate(w, r, mLogger, &dto) {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to update product", "ID", id)

	updated, err := h.service.UpdateProduct(r.Context(), id, dto)
	if err != nil {
		h.respondProductError(w, r, mLogger, id, err, "update")
		return
	}
	mLogger.InfoContext(r.Context(), "Product updated successfully", "ID", updated.ID, "Name", updated.Name)
	web.RespondJSON(w, mLogger, http.StatusOK, updated)
}

// DeleteProduct deletes a product and responds with its prior state.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	mLogger := h.logger
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	deleted, err := h.service.DeleteProduct(r.Context(), id)
	if err != nil {
		h.respondProductError(w, r, mLogger, id, err, "delete")
		return
	}
	mLogger.InfoContext(r.Context(), "Product deleted successfully", "ID", id)
	web.RespondJSON(w, mLogger, http.StatusOK, deleted)
}

// CreateSale records a sale. A missing product answers 404, short stock answers 409.
func (h *Handler) CreateSale(w http.ResponseWriter, r *http.Request) {
	mLogger := h.logger
	var dto service.SaleCreateDto
	if !h.decodeAndValidate(w, r, mLogger, &dto) {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to create sale", "product_id", dto.ProductID, "quantity", dto.Quantity)

	sale, err := h.service.CreateSale(r.Context(), dto)
	if err != nil {
		switch {
		case errors.Is(err, inverrors.ErrProductNotFound):
			mLogger.WarnContext(r.Context(), "Product not found for sale", "product_id", dto.ProductID)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with ID %d not found", dto.ProductID))
		case errors.Is(err, inverrors.ErrInsufficientStock):
			mLogger.WarnContext(r.Context(), "Insufficient stock for sale", "product_id", dto.ProductID, "quantity", dto.Quantity)
			web.RespondError(w, mLogger, http.StatusConflict, fmt.Sprintf("Insufficient stock for product with ID %d", dto.ProductID))
		default:
			mLogger.ErrorContext(r.Context(), "Error creating sale", "error", err)
			web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to create sale")
		}
		return
	}
	mLogger.InfoContext(r.Context(), "Sale created successfully", "ID", sale.ID, "total_price", sale.TotalPrice)
	web.RespondJSON(w, mLogger, http.StatusCreated, sale)
}

// ListSales returns every sale.
func (h *Handler) ListSales(w http.ResponseWriter, r *http.Request) {
	mLogger := h.logger
	list, err := h.service.ListSales(r.Context())
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving sale list", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch sales")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

// FindSaleByID retrieves a sale by its ID.
func (h *Handler) FindSaleByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.logger
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	sale, err := h.service.FindSaleByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, inverrors.ErrSaleNotFound) {
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Sale with ID %d not found", id))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error retrieving sale", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve sale with ID %d", id))
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, sale)
}

// TopProducts ranks products by units sold. The optional limit defaults to 5.
func (h *Handler) TopProducts(w http.ResponseWriter, r *http.Request) {
	mLogger := h.logger
	limit, ok := web.ParseOptionalGt(r, w, mLogger, "limit", 0, store.DefaultTopProductsLimit)
	if !ok {
		return
	}
	top, err := h.service.TopProducts(r.Context(), limit)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error ranking products", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch top products")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, top)
}

// HealthCheck is a simple liveness endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// decodeAndValidate decodes the JSON body into dst and validates it.
// On failure it writes the 400 response and returns false.
func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		mLogger.WarnContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			errorResponse := make(map[string]string)
			for _, fieldErr := range validationErrors {
				errorResponse[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
			}
			mLogger.WarnContext(r.Context(), "Validation errors occurred", "errors", errorResponse)
			web.RespondJSON(w, mLogger, http.StatusBadRequest, map[string]any{"validation_errors": errorResponse})
			return false
		}
		mLogger.ErrorContext(r.Context(), "Error validating request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func (h *Handler) respondProductError(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger, id int64, err error, action string) {
	if errors.Is(err, inverrors.ErrProductNotFound) {
		mLogger.WarnContext(r.Context(), "Product not found", "ID", id, "action", action)
		web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with ID %d not found", id))
		return
	}
	mLogger.ErrorContext(r.Context(), "Error handling product", "ID", id, "action", action, "error", err)
	web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to %s product with ID %d", action, id))
}

// newValidator reports field errors under their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	if err := v.RegisterValidation("cents", cents); err != nil {
		panic(fmt.Sprintf("failed to register cents validation: %v", err))
	}
	return v
}

// cents accepts floats with at most two decimal places, matching NUMERIC(_, 2) columns.
func cents(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.Float64 {
		return false
	}
	_, frac, _ := strings.Cut(strconv.FormatFloat(field.Float(), 'f', -1, 64), ".")
	return len(frac) <= 2
}
