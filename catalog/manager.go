package catalog

import (
	"github.com/pkg/errors"

	"github.com/phil-mansfield/ptcl"
)

var (
	// ErrNotFound is returned when an id has no record.
	ErrNotFound = errors.New("no record with id")
	// ErrChainCycle is returned when following suppressed records does not
	// terminate.
	ErrChainCycle = errors.New("suppressed c.m. chain does not terminate")
)

type cmpIdx struct {
	slice, p int32
}

// Manager indexes blocks of records by id without copying them. Records are
// located by the id they had when added (or when their role last changed
// through the Manager), so a suppressed center of mass, whose ID field now
// points at its successor, can still be found and followed.
type Manager struct {
	ps    [][]ptcl.Ptcl
	Locs  map[int64]cmpIdx
	slots []cmpIdx
	Size  int64
}

func NewManager() *Manager {
	man := &Manager{
		[][]ptcl.Ptcl{},
		make(map[int64]cmpIdx),
		[]cmpIdx{},
		0,
	}

	return man
}

// Add appends a block of records. The Manager shares the block's memory, so
// changes made through Get are visible to the caller and vice versa.
// Unused, uninitialized and already-suppressed records are only reachable
// through At.
func (man *Manager) Add(ps []ptcl.Ptcl) {
	man.ps = append(man.ps, ps)
	slice := int32(len(man.ps) - 1)

	for i := range ps {
		idx := cmpIdx{slice, int32(i)}
		man.slots = append(man.slots, idx)

		switch ps[i].GuessRole() {
		case ptcl.RoleUnused, ptcl.RoleInvalid, ptcl.RoleSuppressed:
		default:
			man.Locs[ps[i].ID] = idx
		}
	}

	man.Size += int64(len(ps))
}

// Get returns the record with the given id, or nil. Unused slots are never
// indexed, so Get(ptcl.IDUnused) finds the center of mass whose first member
// has id 1, if there is one.
func (man *Manager) Get(id int64) *ptcl.Ptcl {
	idx, ok := man.Locs[id]

	if !ok {
		return nil
	}

	return &man.ps[idx.slice][idx.p]
}

// At returns the record in the given slot, counting across all added
// blocks in order.
func (man *Manager) At(slot int) *ptcl.Ptcl {
	idx := man.slots[slot]
	return &man.ps[idx.slice][idx.p]
}

// Suppress retires the center of mass with the given id in favor of the
// center of mass successor. Links that would close a cycle are rejected.
func (man *Manager) Suppress(id, successor int64) error {
	p := man.Get(id)
	if p == nil {
		return errors.Wrapf(ErrNotFound, "%d", id)
	} else if man.Get(successor) == nil {
		return errors.Wrapf(ErrNotFound, "successor %d", successor)
	}

	if _, _, err := man.follow(successor, id); err != nil {
		return err
	}

	return p.Suppress(successor)
}

// Resolve follows the chain of suppressed records starting at id and
// returns the first record that is not suppressed, along with the number
// of links followed.
func (man *Manager) Resolve(id int64) (*ptcl.Ptcl, int, error) {
	return man.follow(id, 0)
}

// ResolveAt is Resolve starting from a slot rather than an id.
func (man *Manager) ResolveAt(slot int) (*ptcl.Ptcl, int, error) {
	p := man.At(slot)
	if p.Status != ptcl.StatusSuppressed {
		return p, 0, nil
	}
	q, steps, err := man.follow(p.ID, 0)
	return q, steps + 1, err
}

// follow walks the chain from id. If forbidden is non-zero, reaching it is
// reported as a cycle.
func (man *Manager) follow(id, forbidden int64) (*ptcl.Ptcl, int, error) {
	for steps := 0; int64(steps) <= man.Size; steps++ {
		if forbidden != 0 && id == forbidden {
			return nil, steps, errors.Wrapf(ErrChainCycle, "through %d", id)
		}

		p := man.Get(id)
		if p == nil {
			return nil, steps, errors.Wrapf(ErrNotFound, "%d", id)
		} else if p.Status != ptcl.StatusSuppressed {
			return p, steps, nil
		}
		id = p.ID
	}

	return nil, int(man.Size), errors.Wrapf(ErrChainCycle, "from %d", id)
}
