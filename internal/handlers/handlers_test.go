package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/shopbook/shopbook-backend/internal/ledger"
	"github.com/shopbook/shopbook-backend/internal/models"
	"github.com/shopbook/shopbook-backend/internal/services"
)

type fakeSaleBook struct {
	recorded *services.RecordSalesRequest
	voided   uuid.UUID
	err      error
}

func (f *fakeSaleBook) RecordSales(_ context.Context, ownerID uuid.UUID, req *services.RecordSalesRequest) ([]models.Sale, error) {
	f.recorded = req
	if f.err != nil {
		return nil, f.err
	}
	sales := make([]models.Sale, 0, len(req.Items))
	for _, item := range req.Items {
		sale := models.Sale{ProductID: item.ProductID, Quantity: item.Quantity}
		sale.OwnerID = ownerID
		sales = append(sales, sale)
	}
	return sales, nil
}

func (f *fakeSaleBook) GetSale(context.Context, uuid.UUID, uuid.UUID) (*models.Sale, error) {
	return nil, services.ErrSaleNotFound
}

func (f *fakeSaleBook) UpdateSale(context.Context, uuid.UUID, uuid.UUID, *services.UpdateSaleRequest) (*models.Sale, error) {
	return nil, f.err
}

func (f *fakeSaleBook) DeleteSale(context.Context, uuid.UUID, uuid.UUID) error {
	return f.err
}

func (f *fakeSaleBook) VoidSaleBatch(_ context.Context, _ uuid.UUID, batchID uuid.UUID) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.voided = batchID
	return 3, nil
}

func (f *fakeSaleBook) ListSales(_ context.Context, _ uuid.UUID, filter services.SaleFilter) ([]models.Sale, int64, error) {
	return []models.Sale{}, 0, nil
}

type SaleHandlerTestSuite struct {
	suite.Suite
	router  *gin.Engine
	book    *fakeSaleBook
	account uuid.UUID
}

func (suite *SaleHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.book = &fakeSaleBook{}
	suite.account = uuid.New()

	handler := NewSaleHandler(suite.book)
	suite.router = gin.New()
	suite.router.Use(func(c *gin.Context) {
		if c.GetHeader("X-Test-Anonymous") == "" {
			c.Set("account_id", suite.account)
		}
		c.Next()
	})
	sales := suite.router.Group("/sales")
	{
		sales.GET("", handler.GetSales)
		sales.POST("", handler.RecordSales)
		sales.GET("/:id", handler.GetSale)
		sales.DELETE("/:id", handler.DeleteSale)
	}
	suite.router.DELETE("/sale-batches/:id", handler.VoidSaleBatch)
}

func (suite *SaleHandlerTestSuite) do(method, path string, body interface{}, headers ...string) (*httptest.ResponseRecorder, map[string]interface{}) {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	return w, response
}

func (suite *SaleHandlerTestSuite) TestRecordSales() {
	productID := uuid.New()
	w, response := suite.do("POST", "/sales", map[string]interface{}{
		"customer_name": "Sara",
		"items": []map[string]interface{}{
			{"product_id": productID, "quantity": 2},
		},
	})

	assert.Equal(suite.T(), http.StatusCreated, w.Code)
	assert.True(suite.T(), response["success"].(bool))
	require.NotNil(suite.T(), suite.book.recorded)
	assert.Equal(suite.T(), productID, suite.book.recorded.Items[0].ProductID)
	assert.Nil(suite.T(), suite.book.recorded.Items[0].UnitPrice)
}

func (suite *SaleHandlerTestSuite) TestRecordSalesInsufficientStock() {
	suite.book.err = fmt.Errorf("line 2: %w", &ledger.InsufficientStockError{Product: "Widget", Requested: 12, Available: 10})

	w, response := suite.do("POST", "/sales", map[string]interface{}{
		"items": []map[string]interface{}{{"product_id": uuid.New(), "quantity": 12}},
	})

	assert.Equal(suite.T(), http.StatusUnprocessableEntity, w.Code)
	assert.False(suite.T(), response["success"].(bool))
	apiErr := response["error"].(map[string]interface{})
	assert.Equal(suite.T(), "INSUFFICIENT_STOCK", apiErr["code"])
	details := apiErr["details"].(map[string]interface{})
	assert.Equal(suite.T(), float64(12), details["requested"])
	assert.Equal(suite.T(), float64(10), details["available"])
}

func (suite *SaleHandlerTestSuite) TestRecordSalesValidation() {
	w, response := suite.do("POST", "/sales", map[string]interface{}{
		"items": []map[string]interface{}{{"product_id": uuid.New(), "quantity": 0}},
	})

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Equal(suite.T(), "VALIDATION_ERROR", response["error"].(map[string]interface{})["code"])
	assert.Nil(suite.T(), suite.book.recorded)
}

func (suite *SaleHandlerTestSuite) TestRecordSalesQuantityCap() {
	w, response := suite.do("POST", "/sales", map[string]interface{}{
		"items": []map[string]interface{}{{"product_id": uuid.New(), "quantity": 2000000}},
	})

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Equal(suite.T(), "VALIDATION_ERROR", response["error"].(map[string]interface{})["code"])
	assert.Nil(suite.T(), suite.book.recorded)
}

func (suite *SaleHandlerTestSuite) TestVoidSaleBatch() {
	batchID := uuid.New()
	w, response := suite.do("DELETE", "/sale-batches/"+batchID.String(), nil)

	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Equal(suite.T(), batchID, suite.book.voided)
	assert.Equal(suite.T(), float64(3), response["data"].(map[string]interface{})["voided"])
}

func (suite *SaleHandlerTestSuite) TestVoidSaleBatchNotFound() {
	suite.book.err = services.ErrSaleNotFound
	w, _ := suite.do("DELETE", "/sale-batches/"+uuid.NewString(), nil)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *SaleHandlerTestSuite) TestRecordSalesEmpty() {
	w, _ := suite.do("POST", "/sales", map[string]interface{}{"items": []interface{}{}})
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Nil(suite.T(), suite.book.recorded)
}

func (suite *SaleHandlerTestSuite) TestRequiresAccount() {
	w, _ := suite.do("GET", "/sales", nil, "X-Test-Anonymous", "1")
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

func (suite *SaleHandlerTestSuite) TestGetSaleNotFound() {
	w, response := suite.do("GET", "/sales/"+uuid.NewString(), nil)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
	assert.Equal(suite.T(), "NOT_FOUND", response["error"].(map[string]interface{})["code"])
}

func (suite *SaleHandlerTestSuite) TestBadID() {
	w, _ := suite.do("DELETE", "/sales/not-a-uuid", nil)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *SaleHandlerTestSuite) TestListSalesBadRange() {
	w, _ := suite.do("GET", "/sales?from=2024-03-05&to=2024-03-01", nil)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	w, response := suite.do("GET", "/sales?from=2024-03-01&to=2024-03-05", nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.NotNil(suite.T(), response["meta"])
}

func TestSaleHandlerSuite(t *testing.T) {
	suite.Run(t, new(SaleHandlerTestSuite))
}

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"insufficient stock", &ledger.InsufficientStockError{Product: "Tea", Requested: 3, Available: 1}, http.StatusUnprocessableEntity, "INSUFFICIENT_STOCK"},
		{"stock consumed", fmt.Errorf("edit: %w", &ledger.StockConsumedError{Product: "Tea", Needed: 5, Available: 2}), http.StatusConflict, "STOCK_CONSUMED"},
		{"invalid quantity", ledger.ErrInvalidQuantity, http.StatusBadRequest, "BAD_REQUEST"},
		{"amount overflow", fmt.Errorf("invoice line 1: %w", ledger.ErrAmountOverflow), http.StatusBadRequest, "BAD_REQUEST"},
		{"product not found", fmt.Errorf("%w: x", services.ErrProductNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"receipt not found", services.ErrReceiptNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"product in use", services.ErrProductInUse, http.StatusConflict, "CONFLICT"},
		{"empty invoice", services.ErrEmptyInvoice, http.StatusBadRequest, "BAD_REQUEST"},
		{"payment pending", services.ErrPaymentPending, http.StatusConflict, "PAYMENT_PENDING"},
		{"payments disabled", services.ErrPaymentsDisabled, http.StatusServiceUnavailable, "PAYMENTS_DISABLED"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest("GET", "/", nil)

			respondError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			var response map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, tt.code, response["error"].(map[string]interface{})["code"])
		})
	}
}
