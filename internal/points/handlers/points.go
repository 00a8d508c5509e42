package handlers

import (
	"net/http"

	"replate/internal/auth"
	"replate/internal/common/httpx"
	"replate/internal/domain"
	"replate/internal/points/service"
)

type PointsHandler struct {
	service service.PointsServiceInterface
}

func NewPointsHandler(svc service.PointsServiceInterface) *PointsHandler {
	return &PointsHandler{service: svc}
}

// GetPoints returns the caller's balance, creating a zero row for first-time
// customers.
func (h *PointsHandler) GetPoints(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.FromRequest(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	b, err := h.service.GetBalance(r.Context(), actor)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, domain.PointsResponse{Points: b.Points})
}
