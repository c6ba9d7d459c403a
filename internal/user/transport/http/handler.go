package http

import (
	"encoding/json"
	"net/http"

	"atelierhub/internal/api/dto"
	"atelierhub/internal/user/service"
	"atelierhub/pkg/apierror"
	"atelierhub/pkg/middleware"
)

type Handler struct {
	UserService *service.UserService
	JWT         *service.JWTManager
}

func NewHandler(us *service.UserService, jwtSecret string) *Handler {
	return &Handler{
		UserService: us,
		JWT:         service.NewJWTManager(jwtSecret),
	}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierror.BadRequest(w, "invalid request body")
		return
	}
	if err := dto.Validate.Struct(req); err != nil {
		apierror.BadRequest(w, err.Error())
		return
	}

	u, err := h.UserService.Register(r.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		apierror.BadRequest(w, err.Error())
		return
	}

	resp := map[string]interface{}{
		"id":    u.ID,
		"email": u.Email,
		"plan":  u.Plan,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierror.BadRequest(w, "invalid request body")
		return
	}
	if err := dto.Validate.Struct(req); err != nil {
		apierror.BadRequest(w, err.Error())
		return
	}

	u, err := h.UserService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		apierror.Unauthorized(w, "invalid credentials")
		return
	}

	token, err := h.JWT.Generate(u.ID, u.Email)
	if err != nil {
		apierror.Internal(w, "token error")
		return
	}

	resp := map[string]interface{}{
		"id":    u.ID,
		"email": u.Email,
		"token": token,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(middleware.UserIDKey).(int64)

	u, err := h.UserService.Get(r.Context(), userID)
	if err != nil {
		apierror.NotFound(w, "user not found")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(u)
}
