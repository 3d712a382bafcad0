package locations

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
)

func TestPortBindingRule(t *testing.T) {
	assert.NotPanics(t, RegisterValidators)

	tests := []struct {
		port  string
		valid bool
	}{
		{port: "7/9", valid: true},
		{port: " 3/16 ", valid: true},
		{port: "12", valid: false},
		{port: "7", valid: false},
		{port: "a/1", valid: false},
	}

	for _, tt := range tests {
		err := binding.Validator.ValidateStruct(SplitterRequest{Model: "ADHS C650", Port: tt.port})
		if tt.valid {
			assert.NoError(t, err, tt.port)
		} else {
			assert.Error(t, err, tt.port)
		}
	}
}
