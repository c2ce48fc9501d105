package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kestrelworks/riskflow/internal/common"
	"github.com/kestrelworks/riskflow/internal/model"
)

type errorResponse struct {
	Error string `json:"error"`
}

type batchRequest struct {
	Entities []model.EntityRecord `json:"entities"`
}

type scoreRequest struct {
	CreditData    *model.CreditData    `json:"credit_data"`
	FinancialData *model.FinancialData `json:"financial_data"`
}

type scoreResponse struct {
	CreditScore     int                   `json:"credit_score"`
	RiskLevel       model.RiskLevel       `json:"risk_level"`
	RiskColor       string                `json:"risk_color"`
	FinancialRatios model.FinancialRatios `json:"financial_ratios"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScore is the scoring service boundary: deterministic scoring
// only, no reasoning calls. Split deployments point the orchestrator's
// remote scorer at this endpoint.
func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body: " + err.Error()})
		return
	}
	if req.CreditData == nil || req.FinancialData == nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "credit_data and financial_data are required"})
		return
	}

	risk := s.scoring.Score(*req.CreditData, *req.FinancialData)
	ratios := s.scoring.CalculateRatios(*req.FinancialData)

	s.writeJSON(w, http.StatusOK, scoreResponse{
		CreditScore:     risk.CreditScore,
		RiskLevel:       risk.RiskLevel,
		RiskColor:       risk.RiskColor,
		FinancialRatios: ratios,
	})
}

func (s *Server) handleAssess(w http.ResponseWriter, r *http.Request) {
	var entity model.EntityRecord
	if err := json.NewDecoder(r.Body).Decode(&entity); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body: " + err.Error()})
		return
	}

	record, err := s.runner.Assess(r.Context(), entity)
	if err != nil {
		if errors.Is(err, common.ErrValidation) {
			s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		s.writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
		return
	}

	s.saveRecord(r, &record)
	s.writeJSON(w, http.StatusOK, record)
}

// handleAssessBatch always answers 200 with one record per submitted
// entity; per-entity failures are error-tagged records, never dropped
// entries or an aborted batch.
func (s *Server) handleAssessBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body: " + err.Error()})
		return
	}

	records := s.runner.AssessBatch(r.Context(), req.Entities, nil)
	for i := range records {
		s.saveRecord(r, &records[i])
	}

	s.writeJSON(w, http.StatusOK, records)
}

func (s *Server) saveRecord(r *http.Request, record *model.AssessmentRecord) {
	if s.storage == nil {
		return
	}
	if err := s.storage.SaveAssessment(r.Context(), record); err != nil {
		s.logger.Error("failed to save assessment",
			"entity", record.EntityName,
			"error", err)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}
