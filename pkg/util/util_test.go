package util

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateObjectName(t *testing.T) {
	name := GenerateObjectName(".docx")
	assert.True(t, strings.HasPrefix(name, time.Now().Format("2006/01/02")+"/"))
	assert.True(t, strings.HasSuffix(name, ".docx"))
	assert.NotEqual(t, name, GenerateObjectName(".docx"))
}

func TestNewID(t *testing.T) {
	require.NoError(t, InitNode(0))
	a, b := NewID(), NewID()
	assert.NotZero(t, a)
	assert.NotEqual(t, a, b)
}

func TestNewShortID(t *testing.T) {
	a := NewShortID()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, NewShortID())
}
