package ptcl

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phil-mansfield/ptcl/base"
	"github.com/phil-mansfield/ptcl/geom"
)

func TestGuessRole(t *testing.T) {
	table := []struct {
		id, status int64
		role       Role
	}{
		{-10, -10, RoleInvalid},
		{42, 0, RoleSingle},
		{-7, 3, RoleCenterOfMass},
		{8, -12, RoleMember},
		{-1, -1, RoleUnused},
		{-7, -20, RoleSuppressed},
		// A member of the c.m. at address 1 is indistinguishable from an
		// unused slot only when its id is also -1.
		{5, -1, RoleMember},
	}

	for i, test := range table {
		p := Ptcl{ID: test.id, Status: test.status}
		if role := p.GuessRole(); role != test.role {
			t.Errorf("%d) Expected id=%d status=%d to be %s, got %s.",
				i+1, test.id, test.status, test.role, role)
		}
	}
}

func TestView(t *testing.T) {
	kin := base.Particle{Mass: 2, Vel: geom.Vec{1, 0, 0}}

	cm, err := NewCenterOfMass(kin, 7, 3)
	require.NoError(t, err)
	v, err := cm.View(RoleCenterOfMass)
	require.NoError(t, err)
	assert.Equal(t, RoleView{Role: RoleCenterOfMass, ID: 7, Members: 3, Mass: 2}, v)

	_, err = cm.View(RoleSingle)
	assert.True(t, errors.Is(err, ErrRoleMismatch))
	_, err = cm.View(RoleMember)
	assert.True(t, errors.Is(err, ErrRoleMismatch))

	p := New()
	_, err = p.View(RoleInvalid)
	assert.NoError(t, err)
	_, err = p.View(RoleSingle)
	assert.True(t, errors.Is(err, ErrRoleMismatch))
}

func TestMemberLifecycle(t *testing.T) {
	kin := base.Particle{Mass: 2.5}
	p, err := NewSingle(kin, 8)
	require.NoError(t, err)

	require.NoError(t, p.MakeMember(4))
	assert.Equal(t, 0.0, p.Mass)
	assert.Equal(t, RoleMember, p.GuessRole())

	v, err := p.View(RoleMember)
	require.NoError(t, err)
	assert.Equal(t, int64(4), v.CMAddress)
	assert.Equal(t, 2.5, v.Mass)

	assert.Error(t, p.MakeMember(5), "members cannot be regrouped")

	require.NoError(t, p.ReleaseMember())
	assert.Equal(t, 2.5, p.Mass)
	assert.Equal(t, 0.0, p.MassBk)
	assert.Equal(t, RoleSingle, p.GuessRole())

	assert.Error(t, p.MakeMember(0))
	_, err = NewSingle(kin, 0)
	assert.Error(t, err)
}

func TestSuppress(t *testing.T) {
	cm, err := NewCenterOfMass(base.Particle{Mass: 1}, 3, 2)
	require.NoError(t, err)

	assert.Error(t, cm.Suppress(5), "successor must be a c.m. id")
	assert.Error(t, cm.Suppress(cm.ID))

	require.NoError(t, cm.Suppress(-11))
	assert.Equal(t, RoleSuppressed, cm.GuessRole())
	assert.Equal(t, int64(-11), cm.ID)

	v, err := cm.View(RoleSuppressed)
	require.NoError(t, err)
	assert.Equal(t, int64(-11), v.ID)

	assert.Error(t, cm.Suppress(-12), "already suppressed")

	single, err := NewSingle(base.Particle{}, 4)
	require.NoError(t, err)
	assert.True(t, errors.Is(single.Suppress(-11), ErrRoleMismatch))
}

func TestFakeMemberID(t *testing.T) {
	table := []struct {
		offset, parent, nSplit, phase int64
	}{
		{0, 1, 1, 0},
		{1000, 42, 8, 0},
		{1000, 42, 8, 7},
		{1 << 40, 123456789, 64, 33},
	}

	for i, test := range table {
		id, err := FakeMemberID(test.offset, test.parent, test.nSplit, test.phase)
		require.NoError(t, err)
		assert.Equal(t, test.offset+test.parent*test.nSplit+test.phase, id)

		parent, phase, err := SplitFakeMemberID(id, test.offset, test.nSplit)
		require.NoError(t, err)
		if parent != test.parent || phase != test.phase {
			t.Errorf("%d) Expected (%d, %d) from id %d, got (%d, %d).",
				i+1, test.parent, test.phase, id, parent, phase)
		}
	}

	_, err := FakeMemberID(0, 1, 8, 8)
	assert.True(t, errors.Is(err, ErrFakeMemberID))
	_, err = FakeMemberID(0, 0, 8, 1)
	assert.True(t, errors.Is(err, ErrFakeMemberID))
	_, err = FakeMemberID(0, 1, 0, 0)
	assert.True(t, errors.Is(err, ErrFakeMemberID))
	_, err = FakeMemberID(0, math.MaxInt64/4, 8, 3)
	assert.True(t, errors.Is(err, ErrFakeMemberID))
	_, err = FakeMemberID(math.MaxInt64-2, 3, 1, 0)
	assert.True(t, errors.Is(err, ErrFakeMemberID))
	_, err = NewFakeMember(base.Particle{}, 0, math.MaxInt64/4, 8, 3, 0)
	assert.True(t, errors.Is(err, ErrFakeMemberID))

	// The largest encodable id still round trips.
	maxParent := int64((math.MaxInt64 - 7) / 8)
	id, err := FakeMemberID(0, maxParent, 8, 7)
	require.NoError(t, err)
	parent, phase, err := SplitFakeMemberID(id, 0, 8)
	require.NoError(t, err)
	assert.Equal(t, maxParent, parent)
	assert.Equal(t, int64(7), phase)

	_, _, err = SplitFakeMemberID(5, 10, 8)
	assert.True(t, errors.Is(err, ErrFakeMemberID))

	fake, err := NewFakeMember(base.Particle{}, 1000, 42, 8, 3, 17)
	require.NoError(t, err)
	v, err := fake.View(RoleFakeMember)
	require.NoError(t, err)
	assert.Equal(t, int64(17), v.Payload)
}

func TestRoleString(t *testing.T) {
	assert.Equal(t, "Suppressed", RoleSuppressed.String())
	assert.Equal(t, "Unknown", EndRole.String())
}
