package teams

import (
	"context"
	"net/http"

	"splitters/pkg/models"

	"github.com/gin-gonic/gin"
)

type TeamLister interface {
	GetTeams(ctx context.Context) ([]models.Team, error)
}

type TeamHandler struct {
	Repository TeamLister
}

func NewTeamHandler(r TeamLister) *TeamHandler {
	return &TeamHandler{Repository: r}
}

func (h *TeamHandler) RegisterRoutes(router gin.IRouter) {
	router.GET("/teams", h.GetTeams)
}

func (h *TeamHandler) GetTeams(c *gin.Context) {
	teams, err := h.Repository.GetTeams(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Could not list teams", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, teams)
}
