package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"sea-route-server/export"
	"sea-route-server/logger"
	"sea-route-server/models"
	"sea-route-server/routing"
	"sea-route-server/services"
	"sea-route-server/utils"
)

// StatusClientClosedRequest is returned when the caller cancels before the
// search finishes.
const StatusClientClosedRequest = 499

// RouteHandler serves the public API.
type RouteHandler struct {
	routingService *services.RoutingService
}

func NewRouteHandler(routingService *services.RoutingService) *RouteHandler {
	return &RouteHandler{
		routingService: routingService,
	}
}

func (h *RouteHandler) RegisterRoutes(r gin.IRouter) {
	api := r.Group("/api")
	api.POST("/route", h.Route)
	api.POST("/route/geojson", h.RouteGeoJSON)
	api.GET("/ports", h.ListPorts)
	api.GET("/ports/nearest", h.NearestPort)
	api.GET("/ports/:id", h.GetPort)

	r.GET("/health", h.Health)
}

// Route answers POST /api/route.
func (h *RouteHandler) Route(c *gin.Context) {
	it, ok := h.plan(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, models.NewRouteResponse(it))
}

// RouteGeoJSON answers the same request with a FeatureCollection.
func (h *RouteHandler) RouteGeoJSON(c *gin.Context) {
	it, ok := h.plan(c)
	if !ok {
		return
	}
	raw, err := json.Marshal(export.ItineraryFeatureCollection(it))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "application/geo+json", raw)
}

// plan validates the request and runs the search. When ok is false the
// response has already been written.
func (h *RouteHandler) plan(c *gin.Context) (it routing.Itinerary, ok bool) {
	var req models.RouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return routing.Itinerary{}, false
	}
	q, err := req.Validate()
	if err != nil {
		badRequest(c, err.Error())
		return routing.Itinerary{}, false
	}

	logger.Debugf("API", "Route request %s: %d -> %d, maxFuel %g", requestID(c), q.Start, q.End, q.MaxFuel)

	it, found, err := h.routingService.Plan(c.Request.Context(), q.Start, q.End, q.MaxFuel)
	if err != nil {
		h.fail(c, err)
		return routing.Itinerary{}, false
	}
	if !found {
		c.JSON(http.StatusOK, models.NewNoRouteResponse())
		return routing.Itinerary{}, false
	}
	return it, true
}

func (h *RouteHandler) ListPorts(c *gin.Context) {
	ports, err := h.routingService.Ports()
	if err != nil {
		h.fail(c, err)
		return
	}
	views := make([]models.PortView, 0, len(ports))
	for _, p := range ports {
		views = append(views, models.NewPortView(p))
	}
	c.JSON(http.StatusOK, gin.H{"ports": views, "count": len(views)})
}

func (h *RouteHandler) GetPort(c *gin.Context) {
	id, err := utils.ParsePortID(c.Param("id"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	p, err := h.routingService.Port(id)
	if errors.Is(err, services.ErrNoSuchPort) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: err.Error(), RequestID: requestID(c)})
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewPortView(p))
}

func (h *RouteHandler) NearestPort(c *gin.Context) {
	coord, err := utils.ParseCoordinate(c.Query("lat"), c.Query("lon"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	p, dist, err := h.routingService.Nearest(coord)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NearestPortResponse{Port: models.NewPortView(p), DistanceKm: dist})
}

func (h *RouteHandler) Health(c *gin.Context) {
	stats, err := h.routingService.Stats()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "loading"})
		return
	}
	c.JSON(http.StatusOK, models.HealthResponse{
		Status:   "healthy",
		Ports:    stats.CatalogPorts,
		Segments: stats.Segments,
		LoadedAt: stats.LoadedAt,
	})
}

func (h *RouteHandler) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Errorf("API", "Request %s: %v", requestID(c), err)
	}
	c.JSON(status, models.ErrorResponse{Error: err.Error(), RequestID: requestID(c)})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: msg, RequestID: requestID(c)})
}

// statusFor maps service and routing errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, routing.ErrUnknownPort):
		return http.StatusNotFound
	case errors.Is(err, routing.ErrInvalidFuel):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return StatusClientClosedRequest
	case errors.Is(err, services.ErrNotLoaded):
		return http.StatusServiceUnavailable
	default:
		// includes routing.ErrPortNotFound: the network names a port the catalog lacks
		return http.StatusInternalServerError
	}
}
