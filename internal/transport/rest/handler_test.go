package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	inverrors "github.com/abgdnv/grocerytracker/internal/errors"
	"github.com/abgdnv/grocerytracker/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

// mockInventoryService is a mock implementation of the InventoryService interface.
type mockInventoryService struct {
	product  *service.ProductDto
	products []service.ProductDto
	sale     *service.SaleDto
	sales    []service.SaleDto
	top      []service.TopProductDto
	error    error

	gotLimit int32
}

func (m *mockInventoryService) CreateProduct(context.Context, service.ProductCreateDto) (*service.ProductDto, error) {
	return m.product, m.error
}

func (m *mockInventoryService) ListProducts(context.Context) ([]service.ProductDto, error) {
	return m.products, m.error
}

func (m *mockInventoryService) FindProductByID(context.Context, int64) (*service.ProductDto, error) {
	return m.product, m.error
}

func (m *mockInventoryService) UpdateProduct(context.Context, int64, service.ProductCreateDto) (*service.ProductDto, error) {
	return m.product, m.error
}

func (m *mockInventoryService) DeleteProduct(context.Context, int64) (*service.ProductDto, error) {
	return m.product, m.error
}

func (m *mockInventoryService) CreateSale(context.Context, service.SaleCreateDto) (*service.SaleDto, error) {
	return m.sale, m.error
}

func (m *mockInventoryService) ListSales(context.Context) ([]service.SaleDto, error) {
	return m.sales, m.error
}

func (m *mockInventoryService) FindSaleByID(context.Context, int64) (*service.SaleDto, error) {
	return m.sale, m.error
}

func (m *mockInventoryService) TopProducts(_ context.Context, limit int32) ([]service.TopProductDto, error) {
	m.gotLimit = limit
	return m.top, m.error
}

var rice = &service.ProductDto{ID: 1, Name: "Rice", Price: 50, Stock: 10}

const riceJSON = `{"id":1,"name":"Rice","price":50,"stock":10}`

func serve(svc service.InventoryService, method, target, body string) *httptest.ResponseRecorder {
	mux := chi.NewRouter()
	NewHandler(svc, slog.New(slog.DiscardHandler)).RegisterRoutes(mux)
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

type handlerCase struct {
	name         string
	mockService  *mockInventoryService
	method       string
	target       string
	body         string
	expectedCode int
	expectedBody string
}

func runCases(t *testing.T, testCases []handlerCase) {
	t.Helper()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// when
			rr := serve(tc.mockService, tc.method, tc.target, tc.body)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
			if tc.expectedBody != "" {
				assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
				assert.JSONEq(t, tc.expectedBody, rr.Body.String(), "response body should match")
			}
		})
	}
}

func TestHandler_CreateProduct(t *testing.T) {
	runCases(t, []handlerCase{
		{
			name:         "Success - product created",
			mockService:  &mockInventoryService{product: rice},
			method:       http.MethodPost,
			target:       "/products/",
			body:         `{"name":"Rice","price":50,"stock":10}`,
			expectedCode: http.StatusCreated,
			expectedBody: riceJSON,
		},
		{
			name:         "Success - zero price and stock are valid",
			mockService:  &mockInventoryService{product: &service.ProductDto{ID: 2, Name: "Free sample"}},
			method:       http.MethodPost,
			target:       "/products/",
			body:         `{"name":"Free sample","price":0,"stock":0}`,
			expectedCode: http.StatusCreated,
			expectedBody: `{"id":2,"name":"Free sample","price":0,"stock":0}`,
		},
		{
			name:         "Error - negative price",
			mockService:  &mockInventoryService{},
			method:       http.MethodPost,
			target:       "/products/",
			body:         `{"name":"Rice","price":-1,"stock":10}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"validation_errors":{"price":"failed on rule: min"}}`,
		},
		{
			name:         "Success - largest storable price",
			mockService:  &mockInventoryService{product: &service.ProductDto{ID: 3, Name: "Gold", Price: 9999999999.99, Stock: 1}},
			method:       http.MethodPost,
			target:       "/products/",
			body:         `{"name":"Gold","price":9999999999.99,"stock":1}`,
			expectedCode: http.StatusCreated,
			expectedBody: `{"id":3,"name":"Gold","price":9999999999.99,"stock":1}`,
		},
		{
			name:         "Error - price beyond column range",
			mockService:  &mockInventoryService{},
			method:       http.MethodPost,
			target:       "/products/",
			body:         `{"name":"Gold","price":1e13,"stock":1}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"validation_errors":{"price":"failed on rule: max"}}`,
		},
		{
			name:         "Error - price just above the limit",
			mockService:  &mockInventoryService{},
			method:       http.MethodPost,
			target:       "/products/",
			body:         `{"name":"Gold","price":10000000000,"stock":1}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"validation_errors":{"price":"failed on rule: max"}}`,
		},
		{
			name:         "Error - fractions of a cent",
			mockService:  &mockInventoryService{},
			method:       http.MethodPost,
			target:       "/products/",
			body:         `{"name":"Rice","price":10.005,"stock":1}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"validation_errors":{"price":"failed on rule: cents"}}`,
		},
		{
			name:         "Success - one decimal place",
			mockService:  &mockInventoryService{product: &service.ProductDto{ID: 4, Name: "Tea", Price: 0.1, Stock: 1}},
			method:       http.MethodPost,
			target:       "/products/",
			body:         `{"name":"Tea","price":0.1,"stock":1}`,
			expectedCode: http.StatusCreated,
			expectedBody: `{"id":4,"name":"Tea","price":0.1,"stock":1}`,
		},
		{
			name:         "Error - missing fields",
			mockService:  &mockInventoryService{},
			method:       http.MethodPost,
			target:       "/products/",
			body:         `{}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"validation_errors":{"name":"failed on rule: required","price":"failed on rule: required","stock":"failed on rule: required"}}`,
		},
		{
			name:         "Error - malformed body",
			mockService:  &mockInventoryService{},
			method:       http.MethodPost,
			target:       "/products/",
			body:         `{"name":`,
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"Invalid request body"}`,
		},
		{
			name:         "Error - service error",
			mockService:  &mockInventoryService{error: errors.New("db down")},
			method:       http.MethodPost,
			target:       "/products/",
			body:         `{"name":"Rice","price":50,"stock":10}`,
			expectedCode: http.StatusInternalServerError,
			expectedBody: `{"error":"Failed to create product"}`,
		},
	})
}

func TestHandler_ListProducts(t *testing.T) {
	runCases(t, []handlerCase{
		{
			name:         "Success - products found",
			mockService:  &mockInventoryService{products: []service.ProductDto{*rice, {ID: 2, Name: "Dal", Price: 90.5, Stock: 3}}},
			method:       http.MethodGet,
			target:       "/products/",
			expectedCode: http.StatusOK,
			expectedBody: `[` + riceJSON + `,{"id":2,"name":"Dal","price":90.5,"stock":3}]`,
		},
		{
			name:         "Success - no products",
			mockService:  &mockInventoryService{products: []service.ProductDto{}},
			method:       http.MethodGet,
			target:       "/products",
			expectedCode: http.StatusOK,
			expectedBody: `[]`,
		},
		{
			name:         "Error - service error",
			mockService:  &mockInventoryService{error: errors.New("db down")},
			method:       http.MethodGet,
			target:       "/products/",
			expectedCode: http.StatusInternalServerError,
			expectedBody: `{"error":"Failed to fetch products"}`,
		},
	})
}

func TestHandler_ProductByID(t *testing.T) {
	runCases(t, []handlerCase{
		{
			name:         "Get - found",
			mockService:  &mockInventoryService{product: rice},
			method:       http.MethodGet,
			target:       "/products/1",
			expectedCode: http.StatusOK,
			expectedBody: riceJSON,
		},
		{
			name:         "Get - invalid id",
			mockService:  &mockInventoryService{},
			method:       http.MethodGet,
			target:       "/products/abc",
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"Invalid ID: abc"}`,
		},
		{
			name:         "Update - success",
			mockService:  &mockInventoryService{product: rice},
			method:       http.MethodPut,
			target:       "/products/1",
			body:         `{"name":"Rice","price":50,"stock":10}`,
			expectedCode: http.StatusOK,
			expectedBody: riceJSON,
		},
		{
			name:         "Update - not found",
			mockService:  &mockInventoryService{error: inverrors.ErrProductNotFound},
			method:       http.MethodPut,
			target:       "/products/999",
			body:         `{"name":"Rice","price":50,"stock":10}`,
			expectedCode: http.StatusNotFound,
			expectedBody: `{"error":"Product with ID 999 not found"}`,
		},
		{
			name:         "Update - price beyond column range",
			mockService:  &mockInventoryService{},
			method:       http.MethodPut,
			target:       "/products/1",
			body:         `{"name":"Gold","price":1e13,"stock":1}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"validation_errors":{"price":"failed on rule: max"}}`,
		},
		{
			name:         "Update - validation error",
			mockService:  &mockInventoryService{},
			method:       http.MethodPut,
			target:       "/products/1",
			body:         `{"name":"Rice","price":50,"stock":-2}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"validation_errors":{"stock":"failed on rule: min"}}`,
		},
		{
			name:         "Delete - returns prior state",
			mockService:  &mockInventoryService{product: rice},
			method:       http.MethodDelete,
			target:       "/products/1",
			expectedCode: http.StatusOK,
			expectedBody: riceJSON,
		},
		{
			name:         "Delete - not found",
			mockService:  &mockInventoryService{error: inverrors.ErrProductNotFound},
			method:       http.MethodDelete,
			target:       "/products/7",
			expectedCode: http.StatusNotFound,
			expectedBody: `{"error":"Product with ID 7 not found"}`,
		},
		{
			name:         "Delete - service error",
			mockService:  &mockInventoryService{error: errors.New("db down")},
			method:       http.MethodDelete,
			target:       "/products/7",
			expectedCode: http.StatusInternalServerError,
			expectedBody: `{"error":"Failed to delete product with ID 7"}`,
		},
	})
}

func TestHandler_Sales(t *testing.T) {
	date := time.Date(2025, 7, 1, 9, 30, 0, 0, time.UTC)
	sale := &service.SaleDto{ID: 5, ProductID: 1, Quantity: 4, TotalPrice: 200, Date: date}
	saleJSON := `{"id":5,"product_id":1,"quantity":4,"total_price":200,"date":"2025-07-01T09:30:00Z"}`

	runCases(t, []handlerCase{
		{
			name:         "Create - success",
			mockService:  &mockInventoryService{sale: sale},
			method:       http.MethodPost,
			target:       "/sales/",
			body:         `{"product_id":1,"quantity":4}`,
			expectedCode: http.StatusCreated,
			expectedBody: saleJSON,
		},
		{
			name:         "Create - product not found",
			mockService:  &mockInventoryService{error: inverrors.ErrProductNotFound},
			method:       http.MethodPost,
			target:       "/sales/",
			body:         `{"product_id":9,"quantity":1}`,
			expectedCode: http.StatusNotFound,
			expectedBody: `{"error":"Product with ID 9 not found"}`,
		},
		{
			name:         "Create - insufficient stock",
			mockService:  &mockInventoryService{error: inverrors.ErrInsufficientStock},
			method:       http.MethodPost,
			target:       "/sales/",
			body:         `{"product_id":1,"quantity":10}`,
			expectedCode: http.StatusConflict,
			expectedBody: `{"error":"Insufficient stock for product with ID 1"}`,
		},
		{
			name:         "Create - zero quantity",
			mockService:  &mockInventoryService{},
			method:       http.MethodPost,
			target:       "/sales/",
			body:         `{"product_id":1,"quantity":0}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"validation_errors":{"quantity":"failed on rule: required"}}`,
		},
		{
			name:         "Create - negative quantity",
			mockService:  &mockInventoryService{},
			method:       http.MethodPost,
			target:       "/sales/",
			body:         `{"product_id":1,"quantity":-3}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"validation_errors":{"quantity":"failed on rule: min"}}`,
		},
		{
			name:         "Create - service error",
			mockService:  &mockInventoryService{error: errors.New("tx failed")},
			method:       http.MethodPost,
			target:       "/sales/",
			body:         `{"product_id":1,"quantity":1}`,
			expectedCode: http.StatusInternalServerError,
			expectedBody: `{"error":"Failed to create sale"}`,
		},
		{
			name:         "List - success",
			mockService:  &mockInventoryService{sales: []service.SaleDto{*sale}},
			method:       http.MethodGet,
			target:       "/sales/",
			expectedCode: http.StatusOK,
			expectedBody: `[` + saleJSON + `]`,
		},
		{
			name:         "Get - found",
			mockService:  &mockInventoryService{sale: sale},
			method:       http.MethodGet,
			target:       "/sales/5",
			expectedCode: http.StatusOK,
			expectedBody: saleJSON,
		},
		{
			name:         "Get - not found",
			mockService:  &mockInventoryService{error: inverrors.ErrSaleNotFound},
			method:       http.MethodGet,
			target:       "/sales/5",
			expectedCode: http.StatusNotFound,
			expectedBody: `{"error":"Sale with ID 5 not found"}`,
		},
	})
}

func TestHandler_TopProducts(t *testing.T) {
	top := []service.TopProductDto{{ID: 2, Name: "B", TotalSold: 30}, {ID: 1, Name: "A", TotalSold: 10}}
	topJSON := `[{"id":2,"name":"B","total_sold":30},{"id":1,"name":"A","total_sold":10}]`

	testCases := []struct {
		name          string
		query         string
		expectedCode  int
		expectedLimit int32
	}{
		{name: "default limit", query: "", expectedCode: http.StatusOK, expectedLimit: 5},
		{name: "explicit limit", query: "?limit=2", expectedCode: http.StatusOK, expectedLimit: 2},
		{name: "zero limit", query: "?limit=0", expectedCode: http.StatusBadRequest},
		{name: "non-numeric limit", query: "?limit=many", expectedCode: http.StatusBadRequest},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			svc := &mockInventoryService{top: top}

			// when
			rr := serve(svc, http.MethodGet, "/top-products"+tc.query, "")

			// then
			assert.Equal(t, tc.expectedCode, rr.Code)
			if tc.expectedCode == http.StatusOK {
				assert.Equal(t, tc.expectedLimit, svc.gotLimit)
				assert.JSONEq(t, topJSON, rr.Body.String())
			}
		})
	}
}

func TestHandler_HealthCheck(t *testing.T) {
	rr := serve(&mockInventoryService{}, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rr.Code)
}
