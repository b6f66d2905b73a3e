// Package service provides the implementation of inventory and sales business logic.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	inverrors "github.com/abgdnv/grocerytracker/internal/errors"
	"github.com/abgdnv/grocerytracker/internal/store"
	"github.com/abgdnv/grocerytracker/internal/store/db"
	"github.com/abgdnv/grocerytracker/pkg/messaging"
	"github.com/abgdnv/grocerytracker/pkg/messaging/events"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
)

// InventoryService defines the methods for managing products and recording sales.
// It abstracts the underlying business logic and data access.
type InventoryService interface {
	// CreateProduct adds a new product to the inventory.
	CreateProduct(ctx context.Context, product ProductCreateDto) (*ProductDto, error)

	// ListProducts returns all products.
	// Returns an empty slice if no products exist.
	ListProducts(ctx context.Context) ([]ProductDto, error)

	// FindProductByID retrieves a single product.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindProductByID(ctx context.Context, id int64) (*ProductDto, error)

	// UpdateProduct replaces all attributes of an existing product.
	// Returns ErrProductNotFound if no product exists with the given ID.
	UpdateProduct(ctx context.Context, id int64, product ProductCreateDto) (*ProductDto, error)

	// DeleteProduct removes a product and returns its prior state.
	// Returns ErrProductNotFound if no product exists with the given ID.
	DeleteProduct(ctx context.Context, id int64) (*ProductDto, error)

	// CreateSale records a sale and decrements stock atomically.
	// Returns ErrProductNotFound or ErrInsufficientStock when the sale is rejected.
	CreateSale(ctx context.Context, sale SaleCreateDto) (*SaleDto, error)

	// ListSales returns all sales.
	ListSales(ctx context.Context) ([]SaleDto, error)

	// FindSaleByID retrieves a single sale.
	// Returns ErrSaleNotFound if no sale exists with the given ID.
	FindSaleByID(ctx context.Context, id int64) (*SaleDto, error)

	// TopProducts returns the best-selling products by units sold.
	TopProducts(ctx context.Context, limit int32) ([]TopProductDto, error)
}

// Service implements InventoryService.
type Service struct {
	store         store.InventoryStore
	publisher     messaging.Publisher
	logger        *slog.Logger
	salesCreated  metric.Int64Counter
	salesRejected metric.Int64Counter
}

// NewService creates a new instance of InventoryService.
func NewService(inventoryStore store.InventoryStore, publisher messaging.Publisher, logger *slog.Logger) *Service {
	meter := otel.Meter("inventory-service")
	salesCreated, err := meter.Int64Counter("sales_created", metric.WithDescription("Total number of recorded sales"))
	if err != nil {
		panic(fmt.Sprintf("failed to create sales_created counter: %v", err))
	}
	salesRejected, err := meter.Int64Counter("sales_rejected", metric.WithDescription("Total number of rejected sales by reason"))
	if err != nil {
		panic(fmt.Sprintf("failed to create sales_rejected counter: %v", err))
	}
	return &Service{
		store:         inventoryStore,
		publisher:     publisher,
		logger:        logger.With("component", "service"),
		salesCreated:  salesCreated,
		salesRejected: salesRejected,
	}
}

// ProductCreateDto carries the attributes of a product to create or replace.
// Price and Stock are pointers so that an omitted field fails validation while zero stays valid.
// Price has at most two decimal places and fits NUMERIC(12,2); "cents" is registered by the REST validator.
type ProductCreateDto struct {
	Name  string   `json:"name"  validate:"required,max=100"`
	Price *float64 `json:"price" validate:"required,min=0,max=9999999999.99,cents"`
	Stock *int32   `json:"stock" validate:"required,min=0"`
}

// ProductDto represents the data transfer object for a product.
type ProductDto struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Stock int32   `json:"stock"`
}

// SaleCreateDto represents a request to sell quantity units of a product.
type SaleCreateDto struct {
	ProductID int64 `json:"product_id" validate:"required,min=1"`
	Quantity  int32 `json:"quantity"   validate:"required,min=1"`
}

// SaleDto represents the data transfer object for a sale.
type SaleDto struct {
	ID         int64     `json:"id"`
	ProductID  int64     `json:"product_id"`
	Quantity   int32     `json:"quantity"`
	TotalPrice float64   `json:"total_price"`
	Date       time.Time `json:"date"`
}

// TopProductDto is one row of the best-sellers ranking.
type TopProductDto struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	TotalSold int64  `json:"total_sold"`
}

func (s *Service) CreateProduct(ctx context.Context, product ProductCreateDto) (*ProductDto, error) {
	p, err := s.store.CreateProduct(ctx, product.Name, *product.Price, *product.Stock)
	if err != nil {
		return nil, err
	}
	return toProductDto(p), nil
}

func (s *Service) ListProducts(ctx context.Context) ([]ProductDto, error) {
	products, err := s.store.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	dtos := make([]ProductDto, len(products))
	for i, item := range products {
		dtos[i] = *toProductDto(&item)
	}
	return dtos, nil
}

func (s *Service) FindProductByID(ctx context.Context, id int64) (*ProductDto, error) {
	p, err := s.store.FindProductByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product by ID %d: %w", id, err)
	}
	return toProductDto(p), nil
}

func (s *Service) UpdateProduct(ctx context.Context, id int64, product ProductCreateDto) (*ProductDto, error) {
	updated, err := s.store.UpdateProduct(ctx, id, product.Name, *product.Price, *product.Stock)
	if err != nil {
		return nil, fmt.Errorf("failed to update product with ID %d: %w", id, err)
	}
	return toProductDto(updated), nil
}

func (s *Service) DeleteProduct(ctx context.Context, id int64) (*ProductDto, error) {
	deleted, err := s.store.DeleteProduct(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to delete product with ID %d: %w", id, err)
	}
	return toProductDto(deleted), nil
}

// CreateSale records the sale, then publishes a SaleCreatedEvent.
// The event is best effort: a publishing failure is logged and does not fail the sale.
func (s *Service) CreateSale(ctx context.Context, sale SaleCreateDto) (*SaleDto, error) {
	created, product, err := s.store.CreateSale(ctx, sale.ProductID, sale.Quantity)
	if err != nil {
		s.countRejection(ctx, err)
		return nil, err
	}
	s.salesCreated.Add(ctx, 1)

	carrier := make(propagation.MapCarrier)
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	event := events.SaleCreatedEvent{
		Carrier:        carrier,
		SaleID:         created.ID,
		ProductID:      created.ProductID,
		Quantity:       created.Quantity,
		TotalPrice:     created.TotalPrice,
		RemainingStock: product.Stock,
		CreatedAt:      created.Date,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish SaleCreatedEvent", "sale_id", created.ID, "error", err)
	}

	return toSaleDto(created), nil
}

func (s *Service) countRejection(ctx context.Context, err error) {
	var reason string
	switch {
	case errors.Is(err, inverrors.ErrProductNotFound):
		reason = "product_not_found"
	case errors.Is(err, inverrors.ErrInsufficientStock):
		reason = "insufficient_stock"
	default:
		return
	}
	s.salesRejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
	s.logger.InfoContext(ctx, "Sale rejected", "reason", reason)
}

func (s *Service) ListSales(ctx context.Context) ([]SaleDto, error) {
	sales, err := s.store.ListSales(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sales: %w", err)
	}
	dtos := make([]SaleDto, len(sales))
	for i, item := range sales {
		dtos[i] = *toSaleDto(&item)
	}
	return dtos, nil
}

func (s *Service) FindSaleByID(ctx context.Context, id int64) (*SaleDto, error) {
	sale, err := s.store.FindSaleByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sale by ID %d: %w", id, err)
	}
	return toSaleDto(sale), nil
}

func (s *Service) TopProducts(ctx context.Context, limit int32) ([]TopProductDto, error) {
	rows, err := s.store.TopProducts(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch top products: %w", err)
	}
	dtos := make([]TopProductDto, len(rows))
	for i, row := range rows {
		dtos[i] = TopProductDto{ID: row.ID, Name: row.Name, TotalSold: row.TotalSold}
	}
	return dtos, nil
}

func toProductDto(product *db.Product) *ProductDto {
	return &ProductDto{
		ID:    product.ID,
		Name:  product.Name,
		Price: product.Price,
		Stock: product.Stock,
	}
}

func toSaleDto(sale *db.Sale) *SaleDto {
	return &SaleDto{
		ID:         sale.ID,
		ProductID:  sale.ProductID,
		Quantity:   sale.Quantity,
		TotalPrice: sale.TotalPrice,
		Date:       sale.Date,
	}
}
