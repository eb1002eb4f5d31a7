package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/wealthflow-valuation/internal/adapter/presenter"
	"github.com/simaogato/wealthflow-valuation/internal/domain"
)

// MockValuator is a mock implementation of Valuator for testing
type MockValuator struct {
	mock.Mock
}

func (m *MockValuator) Valuate(ctx context.Context, accounts []domain.Account) (*domain.Valuation, error) {
	args := m.Called(ctx, accounts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Valuation), args.Error(1)
}

func (m *MockValuator) ValuateOwner(ctx context.Context, ownerID uuid.UUID) (*domain.Valuation, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Valuation), args.Error(1)
}

// MockReportGenerator is a mock implementation of ReportGenerator for testing
type MockReportGenerator struct {
	mock.Mock
}

func (m *MockReportGenerator) Generate(ctx context.Context, v *domain.Valuation) ([]byte, error) {
	args := m.Called(ctx, v)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// MockSnapshotter is a mock implementation of Snapshotter for testing
type MockSnapshotter struct {
	mock.Mock
}

func (m *MockSnapshotter) Capture(ctx context.Context, ownerID uuid.UUID) ([]domain.AccountSnapshot, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AccountSnapshot), args.Error(1)
}

func (m *MockSnapshotter) History(ctx context.Context, ownerID uuid.UUID, limit int) ([]domain.AccountSnapshot, error) {
	args := m.Called(ctx, ownerID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AccountSnapshot), args.Error(1)
}

const testToken = "secret"

var testConfig = Config{Addr: ":0", RequestTimeout: time.Second, APIToken: testToken}

func newTestServer(valuator Valuator, reports ReportGenerator) *Server {
	return New(testConfig, valuator, reports, nil, zerolog.Nop())
}

func simpleValuation() *domain.Valuation {
	return &domain.Valuation{
		Portfolio: domain.PortfolioSummary{
			TotalValue: decimal.RequireFromString("1234.5"),
			Currency:   domain.CurrencyUSD,
		},
		Accounts:       []domain.AccountSummary{},
		Allocation:     []domain.AllocationItem{},
		RatesAvailable: true,
		ValuedAt:       time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC),
	}
}

func do(t *testing.T, s *Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func authed(req *http.Request) *http.Request {
	req.Header.Set("Authorization", "Bearer "+testToken)
	return req
}

func TestHealth(t *testing.T) {
	s := newTestServer(new(MockValuator), new(MockReportGenerator))

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHandleValuate(t *testing.T) {
	valuator := new(MockValuator)
	s := newTestServer(valuator, new(MockReportGenerator))

	valuator.On("Valuate", mock.Anything, mock.MatchedBy(func(accounts []domain.Account) bool {
		return len(accounts) == 1 && accounts[0].Name == "IBKR" && accounts[0].Holdings[0].Symbol == "AAPL"
	})).Return(simpleValuation(), nil)

	body := `{"accounts":[{"name":"IBKR","currency":"USD","holdings":[{"symbol":"AAPL","quantity":"10","avg_cost_basis":"150"}]}]}`
	rec := do(t, s, authed(httptest.NewRequest(http.MethodPost, "/api/valuations", strings.NewReader(body))))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp presenter.ValuationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "1234.50", resp.Portfolio.TotalValue)
	require.NotNil(t, resp.Portfolio.Display)
	assert.Equal(t, "$1,234.50", resp.Portfolio.Display.TotalValue)
	valuator.AssertExpectations(t)
}

func TestHandleValuate_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"accounts":`},
		{"unsupported currency", `{"accounts":[{"name":"A","currency":"JPY"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			valuator := new(MockValuator)
			s := newTestServer(valuator, new(MockReportGenerator))

			rec := do(t, s, authed(httptest.NewRequest(http.MethodPost, "/api/valuations", strings.NewReader(tt.body))))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			valuator.AssertNotCalled(t, "Valuate", mock.Anything, mock.Anything)
		})
	}
}

func TestHandleValuate_InvalidInputFromService(t *testing.T) {
	valuator := new(MockValuator)
	s := newTestServer(valuator, new(MockReportGenerator))

	valuator.On("Valuate", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("%w: holding AAPL quantity must be positive", domain.ErrInvalidInput))

	body := `{"accounts":[{"name":"A","currency":"USD","holdings":[{"symbol":"AAPL","quantity":-1}]}]}`
	rec := do(t, s, authed(httptest.NewRequest(http.MethodPost, "/api/valuations", strings.NewReader(body))))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "quantity must be positive")
}

func TestAuthMiddleware(t *testing.T) {
	s := newTestServer(new(MockValuator), new(MockReportGenerator))

	missing := do(t, s, httptest.NewRequest(http.MethodPost, "/api/valuations", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusUnauthorized, missing.Code)

	wrong := httptest.NewRequest(http.MethodPost, "/api/valuations", strings.NewReader(`{}`))
	wrong.Header.Set("Authorization", "Bearer nope")
	assert.Equal(t, http.StatusUnauthorized, do(t, s, wrong).Code)
}

func TestHandleOwnerValuation(t *testing.T) {
	ownerID := uuid.New()

	tests := []struct {
		name       string
		header     string
		serviceErr error
		wantStatus int
	}{
		{"success", ownerID.String(), nil, http.StatusOK},
		{"missing owner", "", nil, http.StatusUnauthorized},
		{"malformed owner", "not-a-uuid", nil, http.StatusBadRequest},
		{"unknown owner", ownerID.String(), fmt.Errorf("no accounts: %w", domain.ErrNotFound), http.StatusNotFound},
		{"storage failure", ownerID.String(), errors.New("connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			valuator := new(MockValuator)
			s := newTestServer(valuator, new(MockReportGenerator))
			if tt.serviceErr != nil {
				valuator.On("ValuateOwner", mock.Anything, ownerID).Return(nil, tt.serviceErr)
			} else {
				valuator.On("ValuateOwner", mock.Anything, ownerID).Return(simpleValuation(), nil)
			}

			req := authed(httptest.NewRequest(http.MethodGet, "/api/portfolio/valuation", nil))
			if tt.header != "" {
				req.Header.Set(ownerHeader, tt.header)
			}
			rec := do(t, s, req)

			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantStatus == http.StatusInternalServerError {
				assert.NotContains(t, rec.Body.String(), "connection refused", "internal errors are not leaked")
			}
		})
	}
}

func TestHandleOwnerValuationExport(t *testing.T) {
	ownerID := uuid.New()
	valuator := new(MockValuator)
	reports := new(MockReportGenerator)
	s := newTestServer(valuator, reports)

	v := simpleValuation()
	valuator.On("ValuateOwner", mock.Anything, ownerID).Return(v, nil)
	reports.On("Generate", mock.Anything, v).Return([]byte("PK-xlsx"), nil)

	req := authed(httptest.NewRequest(http.MethodGet, "/api/portfolio/valuation.xlsx", nil))
	req.Header.Set(ownerHeader, ownerID.String())
	rec := do(t, s, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxMIME, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "valuation-2026-10-17.xlsx")
	assert.Equal(t, "PK-xlsx", rec.Body.String())
}

func TestHandleCaptureSnapshots(t *testing.T) {
	ownerID := uuid.New()
	snapshots := new(MockSnapshotter)
	s := New(testConfig, new(MockValuator), new(MockReportGenerator), snapshots, zerolog.Nop())

	snapshots.On("Capture", mock.Anything, ownerID).Return([]domain.AccountSnapshot{{
		ID:          uuid.New(),
		AccountID:   uuid.New(),
		AccountName: "IBKR",
		Currency:    domain.CurrencyUSD,
		MarketValue: decimal.NewFromInt(1200),
		CostBasis:   decimal.NewFromInt(1000),
		TakenAt:     time.Date(2026, 10, 17, 21, 0, 0, 0, time.UTC),
	}}, nil)

	req := authed(httptest.NewRequest(http.MethodPost, "/api/portfolio/snapshots", nil))
	req.Header.Set(ownerHeader, ownerID.String())
	rec := do(t, s, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp []presenter.SnapshotResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "200.00", resp[0].GainLoss)
}

func TestHandleSnapshotHistory(t *testing.T) {
	ownerID := uuid.New()

	tests := []struct {
		name       string
		query      string
		wantLimit  int
		wantStatus int
	}{
		{"default limit", "", 0, http.StatusOK},
		{"explicit limit", "?limit=7", 7, http.StatusOK},
		{"malformed limit", "?limit=abc", 0, http.StatusBadRequest},
		{"negative limit", "?limit=-1", 0, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snapshots := new(MockSnapshotter)
			s := New(testConfig, new(MockValuator), new(MockReportGenerator), snapshots, zerolog.Nop())
			snapshots.On("History", mock.Anything, ownerID, tt.wantLimit).Return([]domain.AccountSnapshot{}, nil)

			req := authed(httptest.NewRequest(http.MethodGet, "/api/portfolio/snapshots"+tt.query, nil))
			req.Header.Set(ownerHeader, ownerID.String())
			rec := do(t, s, req)

			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantStatus == http.StatusOK {
				assert.JSONEq(t, `[]`, rec.Body.String())
				snapshots.AssertExpectations(t)
			} else {
				snapshots.AssertNotCalled(t, "History", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestSnapshotRoutesDisabled(t *testing.T) {
	s := newTestServer(new(MockValuator), new(MockReportGenerator))

	req := authed(httptest.NewRequest(http.MethodGet, "/api/portfolio/snapshots", nil))
	req.Header.Set(ownerHeader, uuid.NewString())

	assert.Equal(t, http.StatusNotFound, do(t, s, req).Code)
}
