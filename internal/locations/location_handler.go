package locations

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"splitters/internal/search"
	"splitters/internal/store"
	"splitters/pkg/auditlog"
	custom_error "splitters/pkg/errors"
	"splitters/pkg/models"

	"github.com/gin-gonic/gin"
)

// LocationStore is the part of store.Store the HTTP layer depends on.
type LocationStore interface {
	Locations() []models.Location
	Location(id string) (models.Location, bool)
	Snapshot() models.Snapshot
	AddLocation(ctx context.Context, location models.Location, opts ...store.MutationOption) (models.Location, error)
	UpdateLocation(ctx context.Context, id string, patch models.LocationPatch, opts ...store.MutationOption) (models.Location, error)
	DeleteLocation(ctx context.Context, id string, opts ...store.MutationOption) error
	AddSplitter(ctx context.Context, locationID string, splitter models.Splitter, opts ...store.MutationOption) (models.Splitter, error)
	UpdateSplitter(ctx context.Context, locationID, splitterID string, splitter models.Splitter, opts ...store.MutationOption) (models.Splitter, error)
	DeleteSplitter(ctx context.Context, locationID, splitterID string, opts ...store.MutationOption) error
}

type LocationHandler struct {
	Store    LocationStore
	AuditLog *auditlog.Auditlog
}

func NewLocationHandler(s LocationStore, auditLog *auditlog.Auditlog) *LocationHandler {
	RegisterValidators()

	return &LocationHandler{Store: s, AuditLog: auditLog}
}

// RegisterRoutes mounts the inventory routes. Deletes run behind the confirm middleware.
func (h *LocationHandler) RegisterRoutes(router gin.IRouter, confirm gin.HandlerFunc) {
	router.GET("/locations", h.GetLocations)
	router.GET("/locations/:id", h.GetLocation)
	router.POST("/locations", h.CreateLocation)
	router.PATCH("/locations/:id", h.UpdateLocation)
	router.DELETE("/locations/:id", confirm, h.RemoveLocation)

	router.POST("/locations/:id/splitters", h.CreateSplitter)
	router.PUT("/locations/:id/splitters/:splitterId", h.UpdateSplitter)
	router.DELETE("/locations/:id/splitters/:splitterId", confirm, h.RemoveSplitter)

	router.GET("/splitters/models", h.GetSplitterModels)
	router.GET("/stats", h.GetStats)
	router.GET("/snapshot", h.GetSnapshot)
}

func (h *LocationHandler) GetLocations(c *gin.Context) {
	mode, err := search.ParseMode(c.Query("mode"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid search mode", "details": err.Error()})
		return
	}

	locations := h.Store.Locations()
	if teamID := c.Query("team_id"); teamID != "" {
		locations = search.ByTeam(locations, teamID)
	}
	locations = search.Filter(locations, search.FormatQuery(c.Query("q"), mode), mode)

	c.JSON(http.StatusOK, locations)
}

func (h *LocationHandler) GetLocation(c *gin.Context) {
	location, ok := h.Store.Location(c.Param("id"))
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Location not found"})
		return
	}

	c.JSON(http.StatusOK, location)
}

func (h *LocationHandler) CreateLocation(c *gin.Context) {
	var req CreateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}
	opts, ok := mutationOptions(c)
	if !ok {
		return
	}

	location, err := h.Store.AddLocation(c.Request.Context(), req.toModel(), opts...)
	if err != nil {
		respondError(c, err, "Could not insert location")
		return
	}

	c.JSON(http.StatusCreated, location)
}

func (h *LocationHandler) UpdateLocation(c *gin.Context) {
	var req UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}
	patch := req.toPatch()
	if patch.IsEmpty() {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "No fields to update"})
		return
	}
	opts, ok := mutationOptions(c)
	if !ok {
		return
	}

	location, err := h.Store.UpdateLocation(c.Request.Context(), c.Param("id"), patch, opts...)
	if err != nil {
		respondError(c, err, "Could not update location")
		return
	}

	c.JSON(http.StatusOK, location)
}

func (h *LocationHandler) RemoveLocation(c *gin.Context) {
	opts, ok := mutationOptions(c)
	if !ok {
		return
	}
	location, found := h.Store.Location(c.Param("id"))
	if !found {
		location = models.Location{ID: c.Param("id")}
	}

	if err := h.Store.DeleteLocation(c.Request.Context(), c.Param("id"), opts...); err != nil {
		respondError(c, err, "Could not delete location")
		return
	}
	h.AuditLog.Log("delete", map[string]interface{}{"client": c.ClientIP()}, &location)

	c.JSON(http.StatusOK, gin.H{"message": "Location deleted successfully"})
}

func (h *LocationHandler) GetSplitterModels(c *gin.Context) {
	c.JSON(http.StatusOK, models.PredefinedModels)
}

func (h *LocationHandler) GetStats(c *gin.Context) {
	snapshot := h.Store.Snapshot()
	summary := search.Summarize(snapshot.Locations)

	c.JSON(http.StatusOK, gin.H{
		"total_locations": summary.TotalLocations,
		"total_splitters": summary.TotalSplitters,
		"version":         snapshot.Version,
	})
}

func (h *LocationHandler) GetSnapshot(c *gin.Context) {
	snapshot := h.Store.Snapshot()
	c.Header("ETag", strconv.FormatUint(snapshot.Version, 10))

	c.JSON(http.StatusOK, snapshot)
}

// mutationOptions maps an If-Match header onto a version precondition. It writes the
// error response itself and reports false when the header is malformed.
func mutationOptions(c *gin.Context) ([]store.MutationOption, bool) {
	raw := strings.Trim(strings.TrimSpace(c.GetHeader("If-Match")), `"`)
	if raw == "" || raw == "*" {
		return nil, true
	}

	version, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "If-Match must be a data version", "details": err.Error()})
		return nil, false
	}

	return []store.MutationOption{store.IfVersion(version)}, true
}

func respondError(c *gin.Context, err error, message string) {
	var uniqueErr *custom_error.UniqueViolationError
	var fkErr *custom_error.ForeignKeyViolationError

	switch {
	case errors.Is(err, custom_error.ErrInvalidInput):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": message, "details": err.Error()})
	case store.IsNotFound(err):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": message, "details": err.Error()})
	case errors.Is(err, custom_error.ErrVersionConflict):
		c.AbortWithStatusJSON(http.StatusPreconditionFailed, gin.H{"error": "Data changed in the meantime, reload and try again", "details": err.Error()})
	case errors.Is(err, custom_error.ErrDuplicateLocation), errors.Is(err, custom_error.ErrDuplicateSplitter), errors.As(err, &uniqueErr):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": message, "details": err.Error()})
	case errors.As(err, &fkErr):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": message, "details": err.Error()})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": message, "details": fmt.Sprint(err)})
	}
}
