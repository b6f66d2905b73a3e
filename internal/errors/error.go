// Package errors provides sentinel errors for inventory and sales operations.
package errors

import "errors"

var ErrProductNotFound = errors.New("product not found")
var ErrSaleNotFound = errors.New("sale not found")

// ErrInsufficientStock is returned when a sale asks for more units than the product has in stock.
var ErrInsufficientStock = errors.New("insufficient stock")

var ErrCreateProduct = errors.New("failed to create product")
var ErrUpdateProduct = errors.New("failed to update product")
var ErrDeleteProduct = errors.New("failed to delete product")
var ErrCreateSale = errors.New("failed to create sale")
var ErrUpdateStock = errors.New("failed to update product stock")

var ErrTransactionBegin = errors.New("failed to begin transaction")
var ErrTransactionCommit = errors.New("failed to commit transaction")
var ErrTransactionRollback = errors.New("failed to rollback transaction")
