package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"sea-route-server/models"
	"sea-route-server/services"
	"sea-route-server/utils"
)

// AdminHandler serves operator endpoints on the admin listener.
type AdminHandler struct {
	routingService *services.RoutingService
}

func NewAdminHandler(routingService *services.RoutingService) *AdminHandler {
	return &AdminHandler{
		routingService: routingService,
	}
}

func (h *AdminHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/admin/network", h.Network).Methods("GET")
	router.HandleFunc("/admin/reload", h.Reload).Methods("POST")
	router.HandleFunc("/admin/ports/{id}", h.PortDetail).Methods("GET")
}

func (h *AdminHandler) Network(w http.ResponseWriter, r *http.Request) {
	stats, err := h.routingService.Stats()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *AdminHandler) Reload(w http.ResponseWriter, r *http.Request) {
	snap, err := h.routingService.Reload(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, snap.Stats())
}

func (h *AdminHandler) PortDetail(w http.ResponseWriter, r *http.Request) {
	id, err := utils.ParsePortID(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	detail, err := h.routingService.PortDetail(id)
	switch {
	case errors.Is(err, services.ErrNoSuchPort):
		writeError(w, http.StatusNotFound, err)
		return
	case err != nil:
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, models.ErrorResponse{Error: err.Error()})
}
