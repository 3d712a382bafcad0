package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidPort(t *testing.T) {
	for _, port := range []string{"7/9", "3/16", "1/1"} {
		assert.True(t, ValidPort(port), port)
	}
	for _, port := range []string{"", "7", "7/", "/9", "12/3", "a/b", "7-9"} {
		assert.False(t, ValidPort(port), port)
	}
}

func TestFormatPort(t *testing.T) {
	assert.Equal(t, "7/", FormatPort("7"))
	assert.Equal(t, "7/9", FormatPort(" 7/9 "))
	assert.Equal(t, "x", FormatPort("x"))
	assert.Equal(t, "", FormatPort(""))
}
