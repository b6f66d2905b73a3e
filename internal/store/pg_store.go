package store

import (
	"context"
	"errors"
	"fmt"
	"math"

	inverrors "github.com/abgdnv/grocerytracker/internal/errors"
	"github.com/abgdnv/grocerytracker/internal/store/db"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// checkViolation is the SQLSTATE raised when a CHECK constraint fails.
const checkViolation = "23514"

// txBeginner is the part of *pgxpool.Pool that starts transactions.
type txBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PgStore implements InventoryStore using PostgreSQL as the data store.
type PgStore struct {
	db txBeginner
	q  *db.Queries
}

// NewPgStore creates a new instance of InventoryStore using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{
		db: dbp,
		q:  db.New(dbp),
	}
}

func (p *PgStore) CreateProduct(ctx context.Context, name string, price float64, stock int32) (*db.Product, error) {
	product, err := p.q.CreateProduct(ctx, db.CreateProductParams{
		Name:  name,
		Price: price,
		Stock: stock,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", inverrors.ErrCreateProduct, err)
	}
	return &product, nil
}

func (p *PgStore) ListProducts(ctx context.Context) ([]db.Product, error) {
	products, err := p.q.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	if products == nil {
		products = []db.Product{}
	}
	return products, nil
}

func (p *PgStore) FindProductByID(ctx context.Context, id int64) (*db.Product, error) {
	product, err := p.q.FindProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, inverrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}
	return &product, nil
}

func (p *PgStore) UpdateProduct(ctx context.Context, id int64, name string, price float64, stock int32) (*db.Product, error) {
	product, err := p.q.UpdateProduct(ctx, db.UpdateProductParams{
		ID:    id,
		Name:  name,
		Price: price,
		Stock: stock,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, inverrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("%w: %w", inverrors.ErrUpdateProduct, err)
	}
	return &product, nil
}

func (p *PgStore) DeleteProduct(ctx context.Context, id int64) (*db.Product, error) {
	product, err := p.q.DeleteProduct(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, inverrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("%w: %w", inverrors.ErrDeleteProduct, err)
	}
	return &product, nil
}

// CreateSale locks the product row, so concurrent sales of the same product are serialized
// and the stock check below cannot be invalidated before the decrement.
func (p *PgStore) CreateSale(ctx context.Context, productID int64, quantity int32) (*db.Sale, *db.Product, error) {
	var sale db.Sale
	var product db.Product

	txErr := p.withTransaction(ctx, func(qtx *db.Queries) error {
		locked, err := qtx.FindProductByIDForUpdate(ctx, productID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return inverrors.ErrProductNotFound
			}
			return fmt.Errorf("failed to lock product: %w", err)
		}
		if locked.Stock < quantity {
			return inverrors.ErrInsufficientStock
		}

		product, err = qtx.DecrementStock(ctx, db.DecrementStockParams{ID: productID, Stock: quantity})
		if err != nil {
			if isCheckViolation(err) {
				return inverrors.ErrInsufficientStock
			}
			return fmt.Errorf("%w: %w", inverrors.ErrUpdateStock, err)
		}

		sale, err = qtx.CreateSale(ctx, db.CreateSaleParams{
			ProductID:  productID,
			Quantity:   quantity,
			TotalPrice: totalPrice(quantity, locked.Price),
		})
		if err != nil {
			return fmt.Errorf("%w: %w", inverrors.ErrCreateSale, err)
		}
		return nil
	})

	if txErr != nil {
		return nil, nil, txErr
	}
	return &sale, &product, nil
}

func (p *PgStore) ListSales(ctx context.Context) ([]db.Sale, error) {
	sales, err := p.q.ListSales(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	if sales == nil {
		sales = []db.Sale{}
	}
	return sales, nil
}

func (p *PgStore) FindSaleByID(ctx context.Context, id int64) (*db.Sale, error) {
	sale, err := p.q.FindSaleByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, inverrors.ErrSaleNotFound
		}
		return nil, fmt.Errorf("failed to find sale by ID: %w", err)
	}
	return &sale, nil
}

func (p *PgStore) TopProducts(ctx context.Context, limit int32) ([]db.TopProductsRow, error) {
	if limit <= 0 {
		limit = DefaultTopProductsLimit
	}
	rows, err := p.q.TopProducts(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to rank products: %w", err)
	}
	if rows == nil {
		rows = []db.TopProductsRow{}
	}
	return rows, nil
}

func (p *PgStore) withTransaction(ctx context.Context, fn func(qtx *db.Queries) error) error {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", inverrors.ErrTransactionBegin, err)
	}
	qtx := p.q.WithTx(tx)

	err = fn(qtx)
	if err != nil {
		// the cause stays first so callers still match domain sentinels
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return fmt.Errorf("%w (%w: %w)", err, inverrors.ErrTransactionRollback, rbErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: %w", inverrors.ErrTransactionCommit, err)
	}

	return nil
}

// totalPrice returns quantity × unit price rounded to cents.
func totalPrice(quantity int32, price float64) float64 {
	return math.Round(float64(quantity)*price*100) / 100
}

func isCheckViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == checkViolation
}
