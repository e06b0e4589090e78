package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbaxter/folioview/internal/common"
	"github.com/mbaxter/folioview/internal/models"
)

// stubReports serves a canned report or a canned error.
type stubReports struct {
	report *models.PortfolioReport
	png    []byte
	err    error
}

func (s *stubReports) BuildReport(ctx context.Context) (*models.PortfolioReport, error) {
	return s.report, s.err
}

func (s *stubReports) RenderHistoryChart(ctx context.Context) ([]byte, error) {
	return s.png, s.err
}

func newTestServer(reports *stubReports) *Server {
	cfg := common.ServerConfig{Host: "127.0.0.1", Port: 0}
	return NewServer(cfg, reports, common.NewSilentLogger())
}

func doRequest(t *testing.T, srv *Server, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var envelope map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(&stubReports{})

	rec := doRequest(t, srv, http.MethodGet, "/api/health")
	assert.Equal(t, http.StatusOK, rec.Code)

	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, true, envelope["success"])
}

func TestPortfolioEndpoint(t *testing.T) {
	srv := newTestServer(&stubReports{
		report: &models.PortfolioReport{
			ID:                "report-1",
			Holdings:          []models.HoldingRow{{Symbol: "AAPL", CurrentValue: 1200}},
			TotalInvestment:   1000,
			TotalCurrentValue: 1200,
		},
	})

	rec := doRequest(t, srv, http.MethodGet, "/api/portfolio")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, true, envelope["success"])

	data := envelope["data"].(map[string]interface{})
	assert.Equal(t, "report-1", data["id"])
	stocks := data["stocks"].([]interface{})
	require.Len(t, stocks, 1)
}

func TestPortfolioEndpoint_BuildFailure(t *testing.T) {
	srv := newTestServer(&stubReports{err: errors.New("brokerage down")})

	rec := doRequest(t, srv, http.MethodGet, "/api/portfolio")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, false, envelope["success"])
	assert.Contains(t, envelope["message"], "brokerage down")
}

func TestPortfolioEndpoint_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(&stubReports{})

	rec := doRequest(t, srv, http.MethodPost, "/api/portfolio")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestChartEndpoint(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a}
	srv := newTestServer(&stubReports{png: png})

	rec := doRequest(t, srv, http.MethodGet, "/api/portfolio/chart")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, png, rec.Body.Bytes())
}

func TestCashFlowsEndpoint(t *testing.T) {
	srv := newTestServer(&stubReports{
		report: &models.PortfolioReport{
			MonthlyCashFlows: []models.MonthlyCashFlow{
				{Month: "2024-03", Label: "Mar 2024", Buy: 300, Sell: 100, Net: -200},
			},
			Transactions: []models.TransactionRecord{
				{Date: "2024-03-05", Symbol: "AAPL", Amount: -200},
			},
		},
	})

	rec := doRequest(t, srv, http.MethodGet, "/api/cashflows")
	require.Equal(t, http.StatusOK, rec.Code)

	envelope := decodeEnvelope(t, rec)
	data := envelope["data"].(map[string]interface{})

	monthly := data["monthly"].([]interface{})
	require.Len(t, monthly, 1)
	first := monthly[0].(map[string]interface{})
	assert.Equal(t, "Mar 2024", first["label"])
	assert.Equal(t, -200.0, first["net"])

	transactions := data["transactions"].([]interface{})
	require.Len(t, transactions, 1)
}

func TestUnknownRouteIs404(t *testing.T) {
	srv := newTestServer(&stubReports{})
	rec := doRequest(t, srv, http.MethodGet, "/api/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
