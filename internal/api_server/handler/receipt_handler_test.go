package handler

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/spendwise-platform/internal/domain/receipt"
	"github.com/spendwise-platform/internal/platform/identity"
)

type MockReceiptService struct {
	mock.Mock
}

func (m *MockReceiptService) Scan(ctx context.Context, subject string, image []byte, mimeType string) (*receipt.Draft, error) {
	args := m.Called(ctx, subject, image, mimeType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*receipt.Draft), args.Error(1)
}

func (m *MockReceiptService) ListScans(ctx context.Context, subject string, limit int) ([]*receipt.ScanAudit, error) {
	args := m.Called(ctx, subject, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*receipt.ScanAudit), args.Error(1)
}

// multipartReceipt builds a multipart body with a single "receipt" part
// carrying the given content type.
func multipartReceipt(t *testing.T, content []byte, contentType string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="receipt"; filename="receipt.jpg"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func performUpload(r *gin.Engine, body *bytes.Buffer, contentType, subject string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodPost, "/receipts/scan", body)
	req.Header.Set("Content-Type", contentType)
	if subject != "" {
		req.Header.Set(identity.SubjectHeader, subject)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestReceiptHandler_Scan(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	image := []byte("fake-jpeg-bytes")

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockReceiptService)
		handler := NewReceiptHandler(logger, mockService)

		draft := &receipt.Draft{
			Amount:       154.06,
			Date:         time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC),
			Description:  "Weekly groceries",
			Category:     "groceries",
			MerchantName: "FreshMart",
		}
		mockService.On("Scan", mock.Anything, testSubject, image, "image/jpeg").Return(draft, nil)

		router := setupTestRouter()
		router.POST("/receipts/scan", handler.Scan)

		body, contentType := multipartReceipt(t, image, "image/jpeg")
		rr := performUpload(router, body, contentType, testSubject)

		assert.Equal(t, http.StatusOK, rr.Code)
		resp := decodeData[ReceiptDraftResponse](t, rr)
		assert.InDelta(t, 154.06, resp.Amount, 0.001)
		assert.Equal(t, "2024-03-15", resp.Date)
		assert.Equal(t, "groceries", resp.Category)
		assert.Equal(t, "FreshMart", resp.MerchantName)
		mockService.AssertExpectations(t)
	})

	t.Run("MissingFile", func(t *testing.T) {
		mockService := new(MockReceiptService)
		handler := NewReceiptHandler(logger, mockService)

		router := setupTestRouter()
		router.POST("/receipts/scan", handler.Scan)

		rr := performRequest(router, http.MethodPost, "/receipts/scan", nil, testSubject)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "Scan")
	})

	t.Run("NotAnImage", func(t *testing.T) {
		mockService := new(MockReceiptService)
		handler := NewReceiptHandler(logger, mockService)

		mockService.On("Scan", mock.Anything, testSubject, image, "application/pdf").
			Return(nil, receipt.ErrInvalidImage)

		router := setupTestRouter()
		router.POST("/receipts/scan", handler.Scan)

		body, contentType := multipartReceipt(t, image, "application/pdf")
		rr := performUpload(router, body, contentType, testSubject)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("NoReceiptDetected", func(t *testing.T) {
		mockService := new(MockReceiptService)
		handler := NewReceiptHandler(logger, mockService)

		mockService.On("Scan", mock.Anything, testSubject, image, "image/jpeg").
			Return(nil, receipt.ErrNoReceiptData)

		router := setupTestRouter()
		router.POST("/receipts/scan", handler.Scan)

		body, contentType := multipartReceipt(t, image, "image/jpeg")
		rr := performUpload(router, body, contentType, testSubject)

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		errInfo := decodeError(t, rr)
		assert.Equal(t, "UNPROCESSABLE", errInfo.Code)
	})

	t.Run("AllModelsDown", func(t *testing.T) {
		mockService := new(MockReceiptService)
		handler := NewReceiptHandler(logger, mockService)

		mockService.On("Scan", mock.Anything, testSubject, image, "image/jpeg").
			Return(nil, receipt.ErrAllModelsFailed{Models: []string{"model-a"}, LastErr: errors.New("overloaded")})

		router := setupTestRouter()
		router.POST("/receipts/scan", handler.Scan)

		body, contentType := multipartReceipt(t, image, "image/jpeg")
		rr := performUpload(router, body, contentType, testSubject)

		assert.Equal(t, http.StatusBadGateway, rr.Code)
		errInfo := decodeError(t, rr)
		assert.Equal(t, "UPSTREAM_UNAVAILABLE", errInfo.Code)
	})
}

func TestReceiptHandler_ListScans(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockReceiptService)
		handler := NewReceiptHandler(logger, mockService)

		audits := []*receipt.ScanAudit{
			{
				ID:        uuid.New(),
				UserID:    uuid.New(),
				Model:     "model-a",
				Outcome:   receipt.ScanOutcomeExtracted,
				Draft:     &receipt.Draft{Amount: 12.30, Date: time.Date(2024, time.April, 2, 0, 0, 0, 0, time.UTC), Category: "food"},
				CreatedAt: time.Now(),
			},
			{
				ID:        uuid.New(),
				UserID:    uuid.New(),
				Outcome:   receipt.ScanOutcomeNoData,
				Error:     "no receipt detected in image",
				CreatedAt: time.Now(),
			},
		}
		mockService.On("ListScans", mock.Anything, testSubject, 20).Return(audits, nil)

		router := setupTestRouter()
		router.GET("/receipts/scans", handler.ListScans)

		rr := performRequest(router, http.MethodGet, "/receipts/scans", nil, testSubject)

		assert.Equal(t, http.StatusOK, rr.Code)
		resp := decodeData[[]ScanAuditResponse](t, rr)
		require.Len(t, resp, 2)
		assert.Equal(t, "EXTRACTED", resp[0].Outcome)
		require.NotNil(t, resp[0].Draft)
		assert.InDelta(t, 12.30, resp[0].Draft.Amount, 0.001)
		assert.Equal(t, "NO_DATA", resp[1].Outcome)
		assert.Nil(t, resp[1].Draft)
		mockService.AssertExpectations(t)
	})

	t.Run("CustomLimit", func(t *testing.T) {
		mockService := new(MockReceiptService)
		handler := NewReceiptHandler(logger, mockService)

		mockService.On("ListScans", mock.Anything, testSubject, 5).Return([]*receipt.ScanAudit{}, nil)

		router := setupTestRouter()
		router.GET("/receipts/scans", handler.ListScans)

		rr := performRequest(router, http.MethodGet, "/receipts/scans?limit=5", nil, testSubject)

		assert.Equal(t, http.StatusOK, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("LimitOutOfRange", func(t *testing.T) {
		mockService := new(MockReceiptService)
		handler := NewReceiptHandler(logger, mockService)

		router := setupTestRouter()
		router.GET("/receipts/scans", handler.ListScans)

		rr := performRequest(router, http.MethodGet, "/receipts/scans?limit=500", nil, testSubject)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "ListScans")
	})
}
