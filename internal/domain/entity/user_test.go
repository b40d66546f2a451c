package entity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/stock-manager-api/internal/domain/entity"
)

func TestRole_Ranking(t *testing.T) {
	assert.True(t, entity.RoleAdmin.AtLeast(entity.RoleManager))
	assert.True(t, entity.RoleManager.AtLeast(entity.RoleManager))
	assert.True(t, entity.RoleManager.AtLeast(entity.RoleViewer))
	assert.False(t, entity.RoleViewer.AtLeast(entity.RoleManager))
	assert.False(t, entity.Role("admin").AtLeast(entity.RoleViewer), "los roles no se comparan como texto libre")
}

func TestParseRole(t *testing.T) {
	r, ok := entity.ParseRole(" manager ")
	assert.True(t, ok)
	assert.Equal(t, entity.RoleManager, r)

	_, ok = entity.ParseRole("bodeguero")
	assert.False(t, ok)
}

func TestParseMovementType(t *testing.T) {
	mt, ok := entity.ParseMovementType("in")
	assert.True(t, ok)
	assert.Equal(t, entity.MovementTypeIN, mt)
	assert.Equal(t, -1, entity.MovementTypeOUT.Sign())

	_, ok = entity.ParseMovementType("TRANSFER")
	assert.False(t, ok)
}
