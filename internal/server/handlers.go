package server

import (
	"fmt"
	"net/http"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	report, err := s.reports.BuildReport(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("Report build failed")
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error building report: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, report)
}

func (s *Server) handlePortfolioChart(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	png, err := s.reports.RenderHistoryChart(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error rendering chart: %v", err))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

func (s *Server) handleCashFlows(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	report, err := s.reports.BuildReport(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error building report: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"monthly":      report.MonthlyCashFlows,
		"transactions": report.Transactions,
	})
}
