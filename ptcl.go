/*Package ptcl implements the particle record used by a hierarchical N-body
integrator.

A single fixed-layout record plays several roles. Which role it is playing is
decided by the integrator and is mostly not recoverable from the record
itself; the same four fields are reused with different meanings:

                 single    c.m.               member       unused  suppressed c.m.
    ID           id        -(first member id) id           -1      id of superseding c.m.
    Status       0         member count       -(c.m. adr)  -1      -20
    MassBk       0         mass               mass         -       -

    fake members: ID = idOffset + parentID*nSplit + phase, Status carries
    binary bookkeeping.

MassBk additionally stores the accumulated perturber force while neighbor
searching is in progress. The uninitialized record has ID = Status = -10.

Records are written in three forms: a text form, a fixed-width binary form
and a raw memory dump that is only readable by the same build.
*/
package ptcl

import (
	"fmt"
	"io"

	"github.com/phil-mansfield/ptcl/base"
)

// Ptcl is a particle record. Field order is part of the binary formats and
// must not change: the kinematic base, then RSearch, MassBk, ID, Status, all
// eight bytes wide.
type Ptcl struct {
	base.Particle

	RSearch float64
	MassBk  float64
	ID      int64
	Status  int64
}

// Source is any type with the shape of a Ptcl: a kinematic base plus the
// four role fields.
type Source interface {
	base.Source
	RoleFields() (rSearch, massBk float64, id, status int64)
}

// New returns an uninitialized record. Its ID and Status hold the sentinel
// StatusInvalid, which is distinct from every valid role.
func New() Ptcl {
	return Ptcl{ID: StatusInvalid, Status: StatusInvalid}
}

// NewWith returns a record with the given kinematic state and role fields.
func NewWith(
	kin base.Source, rSearch, massBk float64, id, status int64,
) Ptcl {
	return Ptcl{kin.Kinematic(), rSearch, massBk, id, status}
}

// From returns a copy of src. No validation is done: the caller is
// responsible for src holding fields consistent with a single role.
func From(src Source) Ptcl {
	p := Ptcl{}
	p.DataCopy(src)
	return p
}

// RoleFields returns the four role fields verbatim.
func (p Ptcl) RoleFields() (rSearch, massBk float64, id, status int64) {
	return p.RSearch, p.MassBk, p.ID, p.Status
}

// DataCopy overwrites p with src, copying the kinematic state through the
// base's copy contract and then the role fields verbatim. It is used for
// both initialization and assignment.
func (p *Ptcl) DataCopy(src Source) {
	p.Particle.DataCopy(src)
	p.RSearch, p.MassBk, p.ID, p.Status = src.RoleFields()
}

// Print writes a human-readable description of p to w.
func (p *Ptcl) Print(w io.Writer) error {
	if err := p.Particle.Print(w); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, " r_search=%g mass_bk=%g id=%d status=%d",
		p.RSearch, p.MassBk, p.ID, p.Status)
	return err
}

// PerturberForce returns MassBk read as the accumulated perturber force.
// Only meaningful between SetPerturberForce and the end of the force phase.
func (p *Ptcl) PerturberForce() float64 { return p.MassBk }

// SetPerturberForce stores f in MassBk for the duration of the force phase.
// Whatever mass MassBk held must be saved by the caller beforehand.
func (p *Ptcl) SetPerturberForce(f float64) { p.MassBk = f }
