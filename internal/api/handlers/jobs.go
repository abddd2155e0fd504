package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/equityscreen/internal/scheduler"
	"github.com/wonny/equityscreen/pkg/logger"
)

// JobsHandler exposes scheduler state
type JobsHandler struct {
	scheduler *scheduler.Scheduler
	logger    *logger.Logger
}

// NewJobsHandler creates a new jobs handler; a nil scheduler reports no jobs
func NewJobsHandler(s *scheduler.Scheduler, log *logger.Logger) *JobsHandler {
	return &JobsHandler{
		scheduler: s,
		logger:    log,
	}
}

// List returns statistics for every job
// GET /api/jobs
func (h *JobsHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.scheduler == nil {
		respondJSON(w, http.StatusOK, map[string]interface{}{"jobs": map[string]scheduler.JobStats{}})
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"jobs": h.scheduler.GetJobStats()})
}

// History returns the run history of one job
// GET /api/jobs/{name}
func (h *JobsHandler) History(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if h.scheduler == nil {
		respondError(w, http.StatusNotFound, "job "+name+" not found")
		return
	}

	history, err := h.scheduler.GetJobHistory(name)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, history)
}

// Run triggers a job outside its schedule
// POST /api/jobs/{name}/run
func (h *JobsHandler) Run(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if h.scheduler == nil {
		respondError(w, http.StatusNotFound, "job "+name+" not found")
		return
	}

	if err := h.scheduler.RunJob(name); err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	h.logger.WithField("job", name).Info("Job triggered via API")
	respondJSON(w, http.StatusAccepted, map[string]string{"status": "started", "job": name})
}
