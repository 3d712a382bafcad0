package migration

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSourceURL(t *testing.T) {
	url, err := SourceURL("migrations")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(url, "file://"))
	assert.True(t, strings.HasSuffix(url, "/migrations"))
}

func TestLoggerPrefixesMessages(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := NewLogger(zap.New(core), true)

	l.Printf("applied %d", 2)

	assert.True(t, l.Verbose())
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "DB Migration: applied 2", logs.All()[0].Message)
}
