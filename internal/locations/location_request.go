package locations

import (
	"fmt"
	"sync"

	"splitters/pkg/models"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

type SplitterRequest struct {
	ID    string `json:"id"`
	Model string `json:"model" binding:"required,max=100"`
	Port  string `json:"port" binding:"required,port"`
	Notes string `json:"notes" binding:"max=500"`
}

func (r SplitterRequest) toModel() models.Splitter {
	return models.Splitter{ID: r.ID, Model: r.Model, Port: r.Port, Notes: r.Notes}
}

type CreateLocationRequest struct {
	ID        string            `json:"id"`
	Name      string            `json:"name" binding:"required,max=200"`
	Notes     string            `json:"notes" binding:"max=500"`
	TeamID    string            `json:"team_id"`
	Splitters []SplitterRequest `json:"splitters" binding:"required,min=1,dive"`
}

func (r CreateLocationRequest) toModel() models.Location {
	splitters := make([]models.Splitter, 0, len(r.Splitters))
	for _, s := range r.Splitters {
		splitters = append(splitters, s.toModel())
	}

	return models.Location{ID: r.ID, Name: r.Name, Notes: r.Notes, TeamID: r.TeamID, Splitters: splitters}
}

type UpdateLocationRequest struct {
	Name   *string `json:"name" binding:"omitempty,max=200"`
	Notes  *string `json:"notes" binding:"omitempty,max=500"`
	TeamID *string `json:"team_id"`
}

func (r UpdateLocationRequest) toPatch() models.LocationPatch {
	return models.LocationPatch{Name: r.Name, Notes: r.Notes, TeamID: r.TeamID}
}

var registerOnce sync.Once

// RegisterValidators adds the "port" binding rule. Input is normalized with the same
// auto-slash rule the search bar uses before it is checked.
func RegisterValidators() {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			err := v.RegisterValidation("port", func(fl validator.FieldLevel) bool {
				return models.ValidPort(models.FormatPort(fl.Field().String()))
			})
			if err != nil {
				panic(fmt.Sprintf("register port validator: %v", err))
			}
		}
	})
}
