package ecs

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreateEntityExhausted(t *testing.T) {
	r := &Registry{nextEntity: math.MaxUint32 - 1}

	assert.Equal(t, Entity(math.MaxUint32-1), r.CreateEntity())
	assert.Equal(t, math.MaxUint32, r.EntityCount())
	assert.Panics(t, func() { r.CreateEntity() })
	assert.Equal(t, math.MaxUint32, r.EntityCount())
}
