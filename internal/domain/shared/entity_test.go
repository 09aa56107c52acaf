package shared

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBaseEntity(t *testing.T) {
	entity := NewBaseEntity()

	assert.NotEqual(t, uuid.Nil, entity.GetID())
	assert.False(t, entity.GetCreatedAt().IsZero())
	assert.Equal(t, entity.GetCreatedAt(), entity.GetUpdatedAt())

	other := NewBaseEntity()
	require.NotEqual(t, entity.GetID(), other.GetID())
}
