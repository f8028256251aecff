package serve

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nvandessel/conjoint/internal/models"
	"github.com/nvandessel/conjoint/internal/session"
	"github.com/nvandessel/conjoint/internal/study"
)

// CreateDesignRequest is the body of POST /designs. Study uses the JSON
// study file format, so attribute order follows the request.
type CreateDesignRequest struct {
	Study  json.RawMessage `json:"study"`
	Method string          `json:"method,omitempty"`
	Seed   *int64          `json:"seed,omitempty"`
}

// CreateSimulationRequest is the body of POST /designs/{designId}/simulations.
type CreateSimulationRequest struct {
	Driver      string `json:"driver,omitempty"`
	Respondents *int   `json:"respondents,omitempty"`
	Seed        *int64 `json:"seed,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeSuccessResponse(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.runner.Store.ListRuns(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeSuccessResponse(w, r, http.StatusOK, map[string]any{
		"count": len(runs),
		"runs":  runs,
	})
}

func (s *Server) handleCreateDesign(w http.ResponseWriter, r *http.Request) {
	var req CreateDesignRequest
	if !decodeBody(w, r, &req, false) {
		return
	}
	if len(req.Study) == 0 {
		writeErrorResponse(w, r, http.StatusBadRequest, ErrCodeBadRequest, "study is required", "study")
		return
	}

	cfg, err := study.Parse(req.Study, study.FormatJSON)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if limit := s.cfg.MaxDesignRows; limit > 0 && !cfg.RowsAtMost(limit) {
		s.writeError(w, r, models.NewConfigurationError("n_versions",
			"design would exceed %d rows per request", limit))
		return
	}

	run, err := s.runner.Design(r.Context(), session.DesignRequest{
		Study:  cfg,
		Method: req.Method,
		Seed:   req.Seed,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeSuccessResponse(w, r, http.StatusCreated, session.NewDesignView(run))
}

func (s *Server) handleGetDesign(w http.ResponseWriter, r *http.Request) {
	run, err := s.runner.Store.GetDesign(r.Context(), chi.URLParam(r, "designId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeSuccessResponse(w, r, http.StatusOK, session.NewDesignView(run))
}

func (s *Server) handleCreateSimulation(w http.ResponseWriter, r *http.Request) {
	var req CreateSimulationRequest
	if !decodeBody(w, r, &req, true) {
		return
	}
	if req.Respondents != nil && s.cfg.MaxRespondents > 0 && *req.Respondents > s.cfg.MaxRespondents {
		s.writeError(w, r, models.NewConfigurationError("respondents",
			"at most %d respondents per request, got %d", s.cfg.MaxRespondents, *req.Respondents))
		return
	}

	run, err := s.runner.Simulate(r.Context(), session.SimulateRequest{
		DesignID:    chi.URLParam(r, "designId"),
		Driver:      req.Driver,
		Respondents: req.Respondents,
		Seed:        req.Seed,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeSuccessResponse(w, r, http.StatusCreated, session.NewResponseView(run))
}

func (s *Server) handleGetSimulation(w http.ResponseWriter, r *http.Request) {
	run, err := s.runner.Store.GetResponses(r.Context(), chi.URLParam(r, "simulationId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeSuccessResponse(w, r, http.StatusOK, session.NewResponseView(run))
}

// decodeBody decodes a JSON body into v. An empty body is accepted only when
// allowEmpty is set. On failure it writes a 400 and returns false.
func decodeBody(w http.ResponseWriter, r *http.Request, v any, allowEmpty bool) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	err := dec.Decode(v)
	if err == nil || (allowEmpty && errors.Is(err, io.EOF)) {
		return true
	}
	writeErrorResponse(w, r, http.StatusBadRequest, ErrCodeBadRequest, "invalid request body: "+err.Error(), "")
	return false
}
