package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntityType_Hierarchy(t *testing.T) {
	p, ok := EntityUnit.ParentType()
	require.True(t, ok)
	assert.Equal(t, EntityFloor, p)

	p, ok = EntityFloor.ParentType()
	require.True(t, ok)
	assert.Equal(t, EntityBuilding, p)

	for _, root := range []EntityType{EntityBuilding, EntityOwner, EntityTenant} {
		_, ok := root.ParentType()
		assert.False(t, ok, "%s has no structural parent", root)
		assert.Empty(t, root.ParentField())
	}

	c, ok := EntityBuilding.ChildType()
	require.True(t, ok)
	assert.Equal(t, EntityFloor, c)
	_, ok = EntityUnit.ChildType()
	assert.False(t, ok)

	assert.Equal(t, "building_id", EntityFloor.ParentField())
	assert.Equal(t, "floor_id", EntityUnit.ParentField())
	assert.Equal(t, "tenants", EntityTenant.Plural())
	assert.False(t, EntityType("garage").Valid())
}

func TestUnit_AssociationsAreInformational(t *testing.T) {
	owner := uuid.New()
	u := &Unit{FloorID: uuid.New(), OwnerID: &owner}

	parent, ok := u.StructuralParent()
	require.True(t, ok)
	assert.Equal(t, EntityFloor, parent.Type)

	refs := u.Associations()
	require.Len(t, refs, 1)
	assert.Equal(t, EntityRef{Type: EntityOwner, ID: owner}, refs[0])
}

func TestClone_SharesNoPointers(t *testing.T) {
	now := time.Now()
	by := "alice"
	desc := "lobby"
	b := &Building{
		Base:        Base{ID: uuid.New(), DeletedAt: &now, DeletedBy: &by, Versioned: Versioned{RowVersion: 4}},
		Name:        "Tower A",
		TotalFloors: 10,
		Description: &desc,
	}

	c := b.Clone().(*Building)
	require.Equal(t, b, c)

	*c.Description = "changed"
	*c.DeletedBy = "bob"
	c.SetRowVersion(5)

	assert.Equal(t, "lobby", *b.Description)
	assert.Equal(t, "alice", *b.DeletedBy)
	assert.EqualValues(t, 4, b.GetRowVersion())
}

func TestTenant_LeaseInverted(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, -1, 0)

	tn := &Tenant{LeaseStartDate: &start, LeaseEndDate: &end}
	assert.True(t, tn.LeaseInverted())

	later := start.AddDate(1, 0, 0)
	tn.LeaseEndDate = &later
	assert.False(t, tn.LeaseInverted())

	tn.LeaseStartDate = nil
	assert.False(t, tn.LeaseInverted())
}
