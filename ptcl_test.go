package ptcl

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/phil-mansfield/ptcl/base"
	"github.com/phil-mansfield/ptcl/geom"
)

// record is an unrelated type with the shape of a Ptcl.
type record struct {
	kin        base.Particle
	r, m       float64
	id, status int64
}

func (r record) Kinematic() base.Particle { return r.kin }
func (r record) RoleFields() (float64, float64, int64, int64) {
	return r.r, r.m, r.id, r.status
}

func TestNew(t *testing.T) {
	p := New()
	assert.Equal(t, StatusInvalid, p.ID)
	assert.Equal(t, StatusInvalid, p.Status)
	assert.Equal(t, RoleInvalid, p.GuessRole())
}

func TestDataCopy(t *testing.T) {
	src := record{
		base.Particle{Mass: 1, Pos: geom.Vec{1, 2, 3}, Vel: geom.Vec{4, 5, 6}},
		0.5, 0.25, -9, 4,
	}

	p := From(src)
	assert.Equal(t, src.kin, p.Particle)
	assert.Equal(t, 0.5, p.RSearch)
	assert.Equal(t, 0.25, p.MassBk)
	assert.Equal(t, int64(-9), p.ID)
	assert.Equal(t, int64(4), p.Status)

	q := New()
	q.DataCopy(p)
	assert.Equal(t, p, q)

	r := NewWith(src.kin, 0.5, 0.25, -9, 4)
	assert.Equal(t, p, r)
}

func TestPerturberForce(t *testing.T) {
	p := Ptcl{MassBk: 3}
	saved := p.MassBk
	p.SetPerturberForce(0.125)
	assert.Equal(t, 0.125, p.PerturberForce())
	p.MassBk = saved
	assert.Equal(t, 3.0, p.MassBk)
}

func TestPrint(t *testing.T) {
	p := Ptcl{ID: 42, RSearch: 0.5}
	buf := &bytes.Buffer{}
	assert.NoError(t, p.Print(buf))
	assert.Contains(t, buf.String(), "r_search=0.5")
	assert.Contains(t, buf.String(), "id=42 status=0")
}
