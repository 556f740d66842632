package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ingestRequest struct {
	URLs []string `json:"urls"`
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if max := s.config.Ingest.MaxBatch; max > 0 && len(req.URLs) > max {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("batch size %d exceeds maximum %d", len(req.URLs), max))
		return
	}
	ingestID := uuid.New().String()
	s.logger.Debug("ingest request", zap.String("ingest_id", ingestID), zap.Int("urls", len(req.URLs)))
	vec, err := s.store.Ingest(r.Context(), req.URLs)
	if err != nil {
		s.logger.Error("ingest failed", zap.String("ingest_id", ingestID), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"ingest_id": ingestID,
		"urls":      len(req.URLs),
		"vector":    vec,
	})
}

func (s *Server) handleVector(w http.ResponseWriter, r *http.Request) {
	vec, err := s.store.UserInterestVector(r.Context())
	if err != nil {
		s.logger.Error("read vector failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, vec)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	metrics, err := s.store.CalculateMetrics(r.Context())
	if err != nil {
		s.logger.Error("calculate metrics failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, metrics)
}

func (s *Server) handleReferences(w http.ResponseWriter, r *http.Request) {
	scores, err := s.store.CompareReferences(r.Context())
	if err != nil {
		s.logger.Error("compare references failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"references": scores})
}

func (s *Server) handleInterrupt(w http.ResponseWriter, r *http.Request) {
	s.logger.Debug("interrupt request")
	s.store.Interrupt()
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "interrupted"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats(r.Context())
	if err != nil {
		s.logger.Error("status failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, stats)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
