package http_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vasiliy-maslov/technova/internal/catalog"
	"github.com/vasiliy-maslov/technova/internal/filestore"
	handler "github.com/vasiliy-maslov/technova/internal/handler/http"
)

func TestProductHandler_List(t *testing.T) {
	mockLoader := new(MockLoader)
	h := handler.NewProductHandler(mockLoader, new(MockManager), filestore.NewMemoryStore())
	filter := catalog.Filter{Category: "Cases", Brand: "Apple", Model: "iPhone 15", Search: "clear"}
	mockLoader.On("List", mock.Anything, filter).Return([]catalog.Product{caseProduct}).Once()

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/products?category=Cases&brand=Apple&model=iPhone+15&q=clear", nil)
	newTestRouter(anonymous, h.RegisterRoutes).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var got []catalog.Product
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
	require.Len(t, got, 1)
	assert.Equal(t, catalog.ProductID("7"), got[0].ID)
	mockLoader.AssertExpectations(t)
}

func TestProductHandler_Get(t *testing.T) {
	mockLoader := new(MockLoader)
	h := handler.NewProductHandler(mockLoader, new(MockManager), filestore.NewMemoryStore())
	mockLoader.On("Get", mock.Anything, catalog.ProductID("99")).Return(nil, catalog.ErrNotFound).Once()

	rr := httptest.NewRecorder()
	newTestRouter(anonymous, h.RegisterRoutes).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/products/99", nil))

	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, catalog.ErrNotFound.Error(), decodeError(t, rr))
	mockLoader.AssertExpectations(t)
}

func TestProductHandler_Create(t *testing.T) {
	tests := []struct {
		name     string
		request  handler.ProductRequest
		setup    func(m *MockManager)
		wantCode int
	}{
		{
			name:    "created",
			request: handler.ProductRequest{Name: "Clear Case", Price: 19.99, Category: "Cases", Image: "/img/clear.png"},
			setup: func(m *MockManager) {
				m.On("Create", mock.Anything, mock.MatchedBy(func(p *catalog.Product) bool {
					return p.ID == "" && p.Name == "Clear Case" && p.Price == 19.99
				})).Return(&caseProduct, nil).Once()
			},
			wantCode: http.StatusCreated,
		},
		{
			name:     "missing_image",
			request:  handler.ProductRequest{Name: "Clear Case", Price: 19.99, Category: "Cases"},
			setup:    func(m *MockManager) {},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "free_product",
			request:  handler.ProductRequest{Name: "Clear Case", Category: "Cases", Image: "/img/clear.png"},
			setup:    func(m *MockManager) {},
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockManager := new(MockManager)
			tt.setup(mockManager)
			h := handler.NewProductHandler(new(MockLoader), mockManager, filestore.NewMemoryStore())

			rr := httptest.NewRecorder()
			newTestRouter(anonymous, h.RegisterAdminRoutes).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/admin/products", jsonBody(t, tt.request)))

			assert.Equal(t, tt.wantCode, rr.Code)
			mockManager.AssertExpectations(t)
		})
	}
}

func TestProductHandler_Delete(t *testing.T) {
	mockManager := new(MockManager)
	h := handler.NewProductHandler(new(MockLoader), mockManager, filestore.NewMemoryStore())
	mockManager.On("Delete", mock.Anything, catalog.ProductID("7")).Return(nil).Once()
	mockManager.On("Delete", mock.Anything, catalog.ProductID("8")).Return(catalog.ErrNotFound).Once()
	router := newTestRouter(anonymous, h.RegisterAdminRoutes)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/admin/products/7", nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/admin/products/8", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	mockManager.AssertExpectations(t)
}

func TestProductHandler_Upload(t *testing.T) {
	mockManager := new(MockManager)
	h := handler.NewProductHandler(new(MockLoader), mockManager, filestore.NewMemoryStore())
	mockManager.On("UploadImage", mock.Anything, "case.png", "image/png", mock.Anything).
		Return(&filestore.File{ID: "f-1", Name: "case.png", ContentType: "image/png", Size: 4}, nil).Once()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="case.png"`)
	header.Set("Content-Type", "image/png")
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte("\x89PNG"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/admin/uploads", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rr := httptest.NewRecorder()
	newTestRouter(anonymous, h.RegisterAdminRoutes).ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	var got handler.UploadResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
	assert.Equal(t, "f-1", got.ID)
	assert.Equal(t, "/api/v1/files/f-1", got.URL)
	mockManager.AssertExpectations(t)
}

func TestProductHandler_UploadWithoutFile(t *testing.T) {
	mockManager := new(MockManager)
	h := handler.NewProductHandler(new(MockLoader), mockManager, filestore.NewMemoryStore())

	req := httptest.NewRequest(http.MethodPost, "/admin/uploads", strings.NewReader("not multipart"))
	req.Header.Set("Content-Type", "text/plain")
	rr := httptest.NewRecorder()
	newTestRouter(anonymous, h.RegisterAdminRoutes).ServeHTTP(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Missing file", decodeError(t, rr))
	mockManager.AssertNotCalled(t, "UploadImage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProductHandler_GetFile(t *testing.T) {
	files := filestore.NewMemoryStore()
	stored, err := files.Upload(t.Context(), "case.png", "image/png", strings.NewReader("\x89PNG"))
	require.NoError(t, err)
	h := handler.NewProductHandler(new(MockLoader), new(MockManager), files)
	router := newTestRouter(anonymous, h.RegisterRoutes)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/files/"+stored.ID, nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))
	assert.Equal(t, "4", rr.Header().Get("Content-Length"))
	assert.Contains(t, rr.Header().Get("Cache-Control"), "immutable")
	assert.Equal(t, "\x89PNG", rr.Body.String())

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/files/missing", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
