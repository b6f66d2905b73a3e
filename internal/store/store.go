// Package store provides an interface for inventory and sales storage operations.
package store

import (
	"context"

	"github.com/abgdnv/grocerytracker/internal/store/db"
)

// DefaultTopProductsLimit is the number of rows TopProducts returns when no limit is given.
const DefaultTopProductsLimit = 5

// InventoryStore is an interface for product and sale storage operations.
// It abstracts the underlying data store, allowing for different implementations.
type InventoryStore interface {
	// CreateProduct adds a new product. The ID is assigned by the store.
	CreateProduct(ctx context.Context, name string, price float64, stock int32) (*db.Product, error)

	// ListProducts returns all products in insertion order.
	// Returns an empty slice if no products exist.
	ListProducts(ctx context.Context) ([]db.Product, error)

	// FindProductByID retrieves a single product by its identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindProductByID(ctx context.Context, id int64) (*db.Product, error)

	// UpdateProduct replaces name, price and stock of an existing product.
	// Returns ErrProductNotFound if no product exists with the given ID; it never creates one.
	UpdateProduct(ctx context.Context, id int64, name string, price float64, stock int32) (*db.Product, error)

	// DeleteProduct removes a product and returns its state prior to removal.
	// Sales referencing the product are left untouched.
	// Returns ErrProductNotFound if no product exists with the given ID.
	DeleteProduct(ctx context.Context, id int64) (*db.Product, error)

	// CreateSale records a sale and decrements the product stock in one transaction.
	// Returns ErrProductNotFound or ErrInsufficientStock, in which case nothing is written.
	// The product row is returned with its stock after the sale.
	CreateSale(ctx context.Context, productID int64, quantity int32) (*db.Sale, *db.Product, error)

	// ListSales returns all sales in insertion order.
	ListSales(ctx context.Context) ([]db.Sale, error)

	// FindSaleByID retrieves a single sale by its identifier.
	// Returns ErrSaleNotFound if no sale exists with the given ID.
	FindSaleByID(ctx context.Context, id int64) (*db.Sale, error)

	// TopProducts returns up to limit products ranked by total units sold, highest first.
	// Products without sales and sales of deleted products are excluded.
	TopProducts(ctx context.Context, limit int32) ([]db.TopProductsRow, error)
}
