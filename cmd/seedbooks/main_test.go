package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupe(t *testing.T) {
	assert.Equal(t,
		[]string{"a", "b", "c"},
		dedupe([]string{"a", "b", "a", "c", "b"}),
		"repeats collapse onto the first occurrence")

	assert.Empty(t, dedupe([]string{}))
	assert.Equal(t, []string{"a"}, dedupe([]string{"a", "a", "a"}))
}
