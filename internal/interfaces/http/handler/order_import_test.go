package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	importapp "github.com/storekit/backend/internal/application/import"
	"github.com/storekit/backend/internal/domain/bulk"
	"github.com/storekit/backend/internal/domain/catalog"
	"github.com/storekit/backend/internal/domain/partner"
	"github.com/storekit/backend/internal/domain/shared"
	"github.com/storekit/backend/internal/domain/trade"
	csvimport "github.com/storekit/backend/internal/infrastructure/import"
	"github.com/storekit/backend/internal/interfaces/http/router"
)

// In-memory repository stubs. Only the methods the import flow touches
// carry real behavior.

type stubOrderRepo struct {
	mu     sync.Mutex
	orders []*trade.Order
	items  []trade.LineItem
}

func (r *stubOrderRepo) FindByID(ctx context.Context, storeID, id uuid.UUID) (*trade.Order, error) {
	return nil, shared.ErrNotFound
}

func (r *stubOrderRepo) FindByOrderNumber(ctx context.Context, storeID uuid.UUID, orderNumber string) (*trade.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.OrderNumber == orderNumber {
			return o, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *stubOrderRepo) FindAllForStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) ([]trade.Order, error) {
	return nil, nil
}

func (r *stubOrderRepo) Upsert(ctx context.Context, order *trade.Order) error {
	return r.Insert(ctx, order)
}

func (r *stubOrderRepo) Insert(ctx context.Context, order *trade.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders = append(r.orders, order)
	return nil
}

func (r *stubOrderRepo) ReplaceLineItems(ctx context.Context, orderID uuid.UUID, items []trade.LineItem) error {
	return nil
}

func (r *stubOrderRepo) InsertLineItems(ctx context.Context, items []trade.LineItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, items...)
	return nil
}

func (r *stubOrderRepo) FindLineItems(ctx context.Context, orderID uuid.UUID) ([]trade.LineItem, error) {
	return nil, nil
}

func (r *stubOrderRepo) ReplaceRefunds(ctx context.Context, orderID uuid.UUID, refunds []trade.Refund) error {
	return nil
}

func (r *stubOrderRepo) FindRefunds(ctx context.Context, orderID uuid.UUID) ([]trade.Refund, error) {
	return nil, nil
}

type stubCustomerRepo struct{}

func (r *stubCustomerRepo) FindByID(ctx context.Context, storeID, id uuid.UUID) (*partner.Customer, error) {
	return nil, shared.ErrNotFound
}

func (r *stubCustomerRepo) FindByEmail(ctx context.Context, storeID uuid.UUID, email string) (*partner.Customer, error) {
	return nil, shared.ErrNotFound
}

func (r *stubCustomerRepo) FindAllForStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) ([]partner.Customer, error) {
	return nil, nil
}

func (r *stubCustomerRepo) Upsert(ctx context.Context, customer *partner.Customer) error { return nil }

func (r *stubCustomerRepo) Save(ctx context.Context, customer *partner.Customer) error { return nil }

func (r *stubCustomerRepo) ReplaceAddresses(ctx context.Context, customerID uuid.UUID, addresses []partner.Address) error {
	return nil
}

func (r *stubCustomerRepo) FindAddresses(ctx context.Context, customerID uuid.UUID) ([]partner.Address, error) {
	return nil, nil
}

type stubProductRepo struct{}

func (r *stubProductRepo) FindByID(ctx context.Context, storeID, id uuid.UUID) (*catalog.Product, error) {
	return nil, shared.ErrNotFound
}

func (r *stubProductRepo) FindBySKU(ctx context.Context, storeID uuid.UUID, sku string) (*catalog.Product, error) {
	return nil, shared.ErrNotFound
}

func (r *stubProductRepo) FindAllForStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) ([]catalog.Product, error) {
	return nil, nil
}

func (r *stubProductRepo) Upsert(ctx context.Context, product *catalog.Product) error { return nil }

func (r *stubProductRepo) Save(ctx context.Context, product *catalog.Product) error { return nil }

func (r *stubProductRepo) Delete(ctx context.Context, storeID, id uuid.UUID) error { return nil }

func (r *stubProductRepo) CountForStore(ctx context.Context, storeID uuid.UUID) (int64, error) {
	return 0, nil
}

type stubJobRepo struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]*bulk.ImportJob
}

func newStubJobRepo() *stubJobRepo {
	return &stubJobRepo{jobs: make(map[uuid.UUID]*bulk.ImportJob)}
}

func (r *stubJobRepo) FindByID(ctx context.Context, storeID, id uuid.UUID) (*bulk.ImportJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return job, nil
}

func (r *stubJobRepo) FindAllForStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) ([]bulk.ImportJob, error) {
	return nil, nil
}

func (r *stubJobRepo) FindByEntityType(ctx context.Context, storeID uuid.UUID, entityType bulk.EntityType, filter shared.Filter) ([]bulk.ImportJob, error) {
	return nil, nil
}

func (r *stubJobRepo) Save(ctx context.Context, job *bulk.ImportJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[job.ID] = job
	return nil
}

type importFixture struct {
	engine  *gin.Engine
	orders  *stubOrderRepo
	storeID uuid.UUID
}

func newImportFixture(t *testing.T) *importFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	sessions := csvimport.NewInMemorySessionStore(time.Minute)
	t.Cleanup(sessions.Stop)

	orders := &stubOrderRepo{}
	service := importapp.NewOrderImportService(
		sessions, orders, &stubCustomerRepo{}, &stubProductRepo{}, newStubJobRepo(), zap.NewNop(),
	)

	engine := gin.New()
	router.NewRouter(engine).Register(NewOrderImportHandler(service)).Setup()

	return &importFixture{engine: engine, orders: orders, storeID: uuid.New()}
}

func (f *importFixture) do(t *testing.T, method, path, contentType string, body *bytes.Buffer) *httptest.ResponseRecorder {
	t.Helper()
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(StoreIDHeader, f.storeID.String())
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func (f *importFixture) upload(t *testing.T, fileContent string) map[string]any {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "orders.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(fileContent))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	w := f.do(t, http.MethodPost, "/api/v1/import/orders/upload", writer.FormDataContentType(), body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decodeData(t, w)
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope struct {
		Success bool           `json:"success"`
		Data    map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.True(t, envelope.Success)
	return envelope.Data
}

const orderFile = "Order Number,Email,Total Amount,Currency,Financial Status,Lineitem Name\n" +
	"1001,a@example.com,10.00,USD,paid,Tee\n" +
	"1002,b@example.com,25.50,USD,pending,Mug\n"

func TestOrderImportFlow(t *testing.T) {
	t.Run("Full flow from upload to processing", func(t *testing.T) {
		f := newImportFixture(t)

		data := f.upload(t, orderFile)
		assert.Equal(t, "mapping", data["step"])
		assert.Equal(t, "shopline", data["platform"])
		sessionID := data["id"].(string)

		w := f.do(t, http.MethodPost, "/api/v1/import/orders/sessions/"+sessionID+"/validate", "", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		summary := decodeData(t, w)
		assert.EqualValues(t, 2, summary["total_rows"])
		assert.EqualValues(t, 2, summary["valid_rows"])

		body := bytes.NewBufferString(`{"duplicate_policy":"skip"}`)
		w = f.do(t, http.MethodPost, "/api/v1/import/orders/sessions/"+sessionID+"/process", "application/json", body)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		result := decodeData(t, w)
		assert.EqualValues(t, 2, result["created_rows"])

		assert.Len(t, f.orders.orders, 2)
	})

	t.Run("Mapping can be replaced before validation", func(t *testing.T) {
		f := newImportFixture(t)
		data := f.upload(t, orderFile)
		sessionID := data["id"].(string)

		body := bytes.NewBufferString(`{"mapping":{"Order Number":"order_number","Total Amount":"total_amount"}}`)
		w := f.do(t, http.MethodPut, "/api/v1/import/orders/sessions/"+sessionID+"/mapping", "application/json", body)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		updated := decodeData(t, w)
		mapping := updated["mapping"].(map[string]any)
		assert.Len(t, mapping, 2)
	})

	t.Run("Mapping is frozen once validation has run", func(t *testing.T) {
		f := newImportFixture(t)
		data := f.upload(t, orderFile)
		sessionID := data["id"].(string)

		w := f.do(t, http.MethodPost, "/api/v1/import/orders/sessions/"+sessionID+"/validate", "", nil)
		require.Equal(t, http.StatusOK, w.Code)

		body := bytes.NewBufferString(`{"mapping":{"Order Number":"order_number"}}`)
		w = f.do(t, http.MethodPut, "/api/v1/import/orders/sessions/"+sessionID+"/mapping", "application/json", body)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Mapping is frozen after processing", func(t *testing.T) {
		f := newImportFixture(t)
		data := f.upload(t, orderFile)
		sessionID := data["id"].(string)

		w := f.do(t, http.MethodPost, "/api/v1/import/orders/sessions/"+sessionID+"/validate", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		w = f.do(t, http.MethodPost, "/api/v1/import/orders/sessions/"+sessionID+"/process", "application/json", bytes.NewBufferString(`{}`))
		require.Equal(t, http.StatusOK, w.Code)

		body := bytes.NewBufferString(`{"mapping":{"Order Number":"order_number"}}`)
		w = f.do(t, http.MethodPut, "/api/v1/import/orders/sessions/"+sessionID+"/mapping", "application/json", body)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Processing requires completed validation", func(t *testing.T) {
		f := newImportFixture(t)
		data := f.upload(t, orderFile)
		sessionID := data["id"].(string)

		w := f.do(t, http.MethodPost, "/api/v1/import/orders/sessions/"+sessionID+"/process", "application/json", bytes.NewBufferString(`{}`))
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Missing store header is rejected", func(t *testing.T) {
		f := newImportFixture(t)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/import/orders/upload", &bytes.Buffer{})
		w := httptest.NewRecorder()
		f.engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Unknown session returns 404", func(t *testing.T) {
		f := newImportFixture(t)

		w := f.do(t, http.MethodGet, "/api/v1/import/orders/sessions/"+uuid.NewString(), "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Empty file is rejected", func(t *testing.T) {
		f := newImportFixture(t)

		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		part, err := writer.CreateFormFile("file", "orders.csv")
		require.NoError(t, err)
		_, err = part.Write([]byte("Order Number,Total\n"))
		require.NoError(t, err)
		require.NoError(t, writer.Close())

		w := f.do(t, http.MethodPost, "/api/v1/import/orders/upload", writer.FormDataContentType(), body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
