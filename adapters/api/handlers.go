package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Go-routine-4595/faultzero-sim/adapters/report"
	"github.com/Go-routine-4595/faultzero-sim/model"
	"github.com/Go-routine-4595/faultzero-sim/service"
)

type focusRequest struct {
	MachineID int    `json:"machine_id"`
	Metric    string `json:"metric"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error().Err(err).Msg("failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) getState(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.ctrl.State())
}

func (s *Server) refresh(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.ctrl.ManualRefresh())
}

func (s *Server) refreshing(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]bool{"refreshing": s.ctrl.Refreshing()})
}

func (s *Server) updateFocus(w http.ResponseWriter, r *http.Request) {
	var req focusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, errors.Join(errors.New("invalid focus request"), err))
		return
	}
	metric, err := model.ParseMetric(req.Metric)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if err = s.ctrl.UpdateFocus(req.MachineID, metric); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.ctrl.State())
}

func (s *Server) machines(w http.ResponseWriter, r *http.Request) {
	status := model.Status(r.URL.Query().Get("status"))
	switch status {
	case "", model.StatusHealthy, model.StatusWarning, model.StatusCritical:
	default:
		s.writeError(w, http.StatusBadRequest, errors.New("unknown status "+string(status)))
		return
	}
	machines := service.FilterMachines(s.ctrl.State().Machines, status)
	s.writeJSON(w, http.StatusOK, service.SortMachines(machines, r.URL.Query().Get("sort")))
}

func (s *Server) createReport(w http.ResponseWriter, r *http.Request) {
	conf := report.DefaultConfig()
	if err := json.NewDecoder(r.Body).Decode(&conf); err != nil {
		s.writeError(w, http.StatusBadRequest, errors.Join(errors.New("invalid report request"), err))
		return
	}

	res, err := s.reports.Generate(report.DataFrom(s.ctrl.State(), conf), func(p float64) {
		s.logger.Debug().Float64("progress", p).Msg("report progress")
	})
	switch {
	case errors.Is(err, report.ErrNoMachinesSelected), errors.Is(err, report.ErrInvalidConfig):
		s.metrics.ReportGenerated(false)
		s.writeError(w, http.StatusBadRequest, err)
	case err != nil:
		s.metrics.ReportGenerated(false)
		s.logger.Error().Err(err).Msg("report generation failed")
		s.writeError(w, http.StatusInternalServerError, report.ErrGenerationFailed)
	default:
		s.metrics.ReportGenerated(true)
		s.writeJSON(w, http.StatusCreated, res)
	}
}
