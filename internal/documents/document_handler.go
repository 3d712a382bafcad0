package documents

import (
	"errors"
	"net/http"

	custom_error "splitters/pkg/errors"
	"splitters/pkg/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxUploadSize = 10 << 20

type LocationLookup interface {
	Location(id string) (models.Location, bool)
}

type DocumentHandler struct {
	service   *DocumentService
	locations LocationLookup
	log       *zap.Logger
}

func NewDocumentHandler(service *DocumentService, locations LocationLookup, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{service: service, locations: locations, log: logger}
}

func (h *DocumentHandler) RegisterRoutes(router gin.IRouter, confirm gin.HandlerFunc) {
	router.POST("/locations/:id/documents", h.UploadDocument)
	router.DELETE("/locations/:id/documents/*key", confirm, h.RemoveDocument)
}

func (h *DocumentHandler) UploadDocument(c *gin.Context) {
	if !h.service.Enabled() {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Document storage is not configured"})
		return
	}
	locationID := c.Param("id")
	if _, ok := h.locations.Location(locationID); !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Location not found"})
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "File is required", "details": err.Error()})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Could not read file", "details": err.Error()})
		return
	}
	defer file.Close()

	doc, err := h.service.Upload(locationID, fileHeader.Filename, file)
	if err != nil {
		h.log.Error("Document upload failed", zap.String("location_id", locationID), zap.Error(err))
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "Could not upload document", "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, doc)
}

func (h *DocumentHandler) RemoveDocument(c *gin.Context) {
	err := h.service.Remove(c.Param("id"), c.Param("key"))
	switch {
	case errors.Is(err, custom_error.ErrStorageDisabled):
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Document storage is not configured"})
		return
	case errors.Is(err, custom_error.ErrInvalidInput):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid document key", "details": err.Error()})
		return
	case err != nil:
		h.log.Error("Document removal failed", zap.String("location_id", c.Param("id")), zap.Error(err))
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "Could not delete document", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Document deleted successfully"})
}
