package http

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"atelierhub/internal/api/dto"
	billingservice "atelierhub/internal/billing/service"
	"atelierhub/internal/project"
	projectservice "atelierhub/internal/project/service"
	"atelierhub/pkg/apierror"
	"atelierhub/pkg/middleware"
)

type Handler struct {
	ProjectService *projectservice.Service
}

func NewProjectHandler(ps *projectservice.Service) *Handler {
	return &Handler{ProjectService: ps}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(middleware.UserIDKey).(int64)

	var req dto.CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierror.BadRequest(w, "invalid request body")
		return
	}
	if err := dto.Validate.Struct(req); err != nil {
		apierror.BadRequest(w, err.Error())
		return
	}

	p := &project.Project{
		UserID:      userID,
		ClientID:    req.ClientID,
		Title:       req.Title,
		Description: req.Description,
	}
	if req.DueDate != "" {
		due, err := time.Parse("2006-01-02", req.DueDate)
		if err != nil {
			apierror.BadRequest(w, "invalid due_date")
			return
		}
		p.DueDate = &due
	}

	if err := h.ProjectService.Create(r.Context(), p); err != nil {
		writeProjectError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(p)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(middleware.UserIDKey).(int64)

	projects, err := h.ProjectService.List(r.Context(), userID)
	if err != nil {
		apierror.Internal(w, "failed to list projects")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"projects": projects})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(middleware.UserIDKey).(int64)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		apierror.BadRequest(w, "invalid project id")
		return
	}

	p, err := h.ProjectService.Get(r.Context(), userID, id)
	if err != nil {
		if errors.Is(err, projectservice.ErrProjectNotFound) {
			apierror.NotFound(w, "project not found")
			return
		}
		apierror.Internal(w, "failed to load project")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(p)
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(middleware.UserIDKey).(int64)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		apierror.BadRequest(w, "invalid project id")
		return
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		apierror.BadRequest(w, "invalid request body")
		return
	}

	if err := h.ProjectService.UpdateStatus(r.Context(), userID, id, body.Status); err != nil {
		switch {
		case errors.Is(err, projectservice.ErrUnknownStatus):
			apierror.BadRequest(w, "unknown project status")
		case errors.Is(err, sql.ErrNoRows):
			apierror.NotFound(w, "project not found")
		default:
			apierror.Internal(w, "failed to update project")
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"id": id, "status": body.Status})
}

func writeProjectError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, billingservice.ErrSubscriptionInactive):
		apierror.Forbidden(w, apierror.CodeSubscriptionInactive, "subscription is not active")
	case errors.Is(err, billingservice.ErrPlanLimitReached):
		apierror.Forbidden(w, apierror.CodePlanLimitReached, "plan limit reached, upgrade to add more")
	default:
		apierror.Internal(w, "internal error")
	}
}
