package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectColumns(t *testing.T) {
	data := map[string]any{"id": 1, "text": "x", "author": "y"}

	assert.Equal(t, data, SelectColumns(data, nil))
	assert.Equal(t, map[string]any{"id": 1, "author": "y"},
		SelectColumns(data, map[string]struct{}{"id": {}, "author": {}, "missing": {}}))
}
