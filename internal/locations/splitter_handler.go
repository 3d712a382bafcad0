package locations

import (
	"net/http"

	"splitters/pkg/models"

	"github.com/gin-gonic/gin"
)

func (h *LocationHandler) CreateSplitter(c *gin.Context) {
	var req SplitterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}
	opts, ok := mutationOptions(c)
	if !ok {
		return
	}

	splitter, err := h.Store.AddSplitter(c.Request.Context(), c.Param("id"), req.toModel(), opts...)
	if err != nil {
		respondError(c, err, "Could not add splitter")
		return
	}

	c.JSON(http.StatusCreated, splitter)
}

func (h *LocationHandler) UpdateSplitter(c *gin.Context) {
	var req SplitterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}
	opts, ok := mutationOptions(c)
	if !ok {
		return
	}

	splitter, err := h.Store.UpdateSplitter(c.Request.Context(), c.Param("id"), c.Param("splitterId"), req.toModel(), opts...)
	if err != nil {
		respondError(c, err, "Could not update splitter")
		return
	}

	c.JSON(http.StatusOK, splitter)
}

func (h *LocationHandler) RemoveSplitter(c *gin.Context) {
	opts, ok := mutationOptions(c)
	if !ok {
		return
	}
	locationID, splitterID := c.Param("id"), c.Param("splitterId")

	splitter := models.Splitter{ID: splitterID, LocationID: locationID}
	if location, found := h.Store.Location(locationID); found {
		if existing, ok := location.Splitter(splitterID); ok {
			splitter = existing
		}
	}

	if err := h.Store.DeleteSplitter(c.Request.Context(), locationID, splitterID, opts...); err != nil {
		respondError(c, err, "Could not delete splitter")
		return
	}
	h.AuditLog.Log("delete", map[string]interface{}{"client": c.ClientIP()}, &splitter)

	c.JSON(http.StatusOK, gin.H{"message": "Splitter deleted successfully"})
}
