package ptcl

import (
	"math"

	"github.com/pkg/errors"

	"github.com/phil-mansfield/ptcl/base"
)

// Reserved Status values.
const (
	StatusSingle     int64 = 0
	StatusUnused     int64 = -1
	StatusInvalid    int64 = -10
	StatusSuppressed int64 = -20

	// IDUnused is the ID of an unused slot.
	IDUnused int64 = -1
)

// Role is one of the interpretations a record's fields can take.
type Role int

const (
	RoleInvalid Role = iota
	RoleSingle
	RoleCenterOfMass
	RoleMember
	RoleFakeMember
	RoleUnused
	RoleSuppressed
	EndRole
)

var roleNames = [EndRole]string{
	"Invalid", "Single", "CenterOfMass", "Member",
	"FakeMember", "Unused", "Suppressed",
}

func (r Role) String() string {
	if r < 0 || r >= EndRole {
		return "Unknown"
	}
	return roleNames[r]
}

var (
	// ErrRoleMismatch is returned when a record's fields cannot be read as
	// the role the caller claims it has.
	ErrRoleMismatch = errors.New("record fields inconsistent with role")
	// ErrFakeMemberID is returned for invalid fake member encodings.
	ErrFakeMemberID = errors.New("invalid fake member id")
)

// RoleView is the decoded, role-specific payload of a record.
type RoleView struct {
	Role Role

	// ID is the particle's own id for singles, members and fake members, the
	// (positive) id of the first member for a center of mass, and the stored
	// id of the superseding center of mass for a suppressed record.
	ID int64
	// Members is the member count of a center of mass.
	Members int64
	// CMAddress is the address of the owning center of mass of a member.
	CMAddress int64
	// Mass is the aggregate mass of a center of mass or the true mass of a
	// member.
	Mass float64
	// Payload is the Status field of a fake member.
	Payload int64
}

// GuessRole classifies p using only the ranges of Status. This cannot find
// fake members, and a member whose c.m. address is 1 or 20 is reported as
// unused or suppressed. Callers that know the role from context should use
// View instead.
func (p *Ptcl) GuessRole() Role {
	switch {
	case p.ID == StatusInvalid && p.Status == StatusInvalid:
		return RoleInvalid
	case p.Status == StatusSingle:
		return RoleSingle
	case p.Status > 0:
		return RoleCenterOfMass
	case p.Status == StatusSuppressed:
		return RoleSuppressed
	case p.Status == StatusUnused && p.ID == IDUnused:
		return RoleUnused
	default:
		return RoleMember
	}
}

// View decodes p under the given role, returning ErrRoleMismatch if the
// fields are not consistent with it.
func (p *Ptcl) View(role Role) (RoleView, error) {
	v := RoleView{Role: role}
	ok := false

	switch role {
	case RoleInvalid:
		ok = p.ID == StatusInvalid && p.Status == StatusInvalid
	case RoleSingle:
		ok = p.Status == StatusSingle && p.ID > 0
		v.ID = p.ID
	case RoleCenterOfMass:
		ok = p.Status > 0 && p.ID < 0
		v.ID, v.Members, v.Mass = -p.ID, p.Status, p.MassBk
	case RoleMember:
		ok = p.Status < 0 && p.ID > 0
		v.ID, v.CMAddress, v.Mass = p.ID, -p.Status, p.MassBk
	case RoleFakeMember:
		ok = p.ID > 0
		v.ID, v.Payload = p.ID, p.Status
	case RoleUnused:
		ok = p.Status == StatusUnused
	case RoleSuppressed:
		ok = p.Status == StatusSuppressed
		v.ID = p.ID
	}

	if !ok {
		return RoleView{}, errors.Wrapf(ErrRoleMismatch,
			"%s: id=%d status=%d", role, p.ID, p.Status)
	}
	return v, nil
}

// NewSingle returns a single particle record with the given id.
func NewSingle(kin base.Source, id int64) (Ptcl, error) {
	if id <= 0 {
		return Ptcl{}, errors.Errorf("single particle id must be positive, got %d", id)
	}
	return NewWith(kin, 0, 0, id, StatusSingle), nil
}

// NewCenterOfMass returns a center-of-mass pseudo-particle for a group of
// nMember particles whose first member has id firstMember. kin carries the
// aggregate kinematic state and its mass is kept in MassBk.
func NewCenterOfMass(kin base.Source, firstMember, nMember int64) (Ptcl, error) {
	if firstMember <= 0 {
		return Ptcl{}, errors.Errorf("first member id must be positive, got %d", firstMember)
	} else if nMember <= 0 {
		return Ptcl{}, errors.Errorf("member count must be positive, got %d", nMember)
	}
	k := kin.Kinematic()
	return NewWith(k, 0, k.Mass, -firstMember, nMember), nil
}

// MakeMember turns a single particle into a member of the center of mass at
// address cmAddr. Its mass moves to MassBk and Mass is zeroed.
func (p *Ptcl) MakeMember(cmAddr int64) error {
	if cmAddr <= 0 {
		return errors.Errorf("c.m. address must be positive, got %d", cmAddr)
	} else if p.Status != StatusSingle {
		return errors.Wrapf(ErrRoleMismatch,
			"only singles can become members: id=%d status=%d", p.ID, p.Status)
	}
	p.MassBk = p.Mass
	p.Mass = 0
	p.Status = -cmAddr
	return nil
}

// ReleaseMember turns a member back into a single particle, restoring its
// mass from MassBk.
func (p *Ptcl) ReleaseMember() error {
	if _, err := p.View(RoleMember); err != nil {
		return err
	}
	p.Mass = p.MassBk
	p.MassBk = 0
	p.Status = StatusSingle
	return nil
}

// Suppress retires a center of mass. Its ID becomes successor, the stored id
// of the center of mass that replaces it, forming a backward chain.
func (p *Ptcl) Suppress(successor int64) error {
	if _, err := p.View(RoleCenterOfMass); err != nil {
		return err
	} else if successor >= 0 {
		return errors.Errorf("successor must be a c.m. id (negative), got %d", successor)
	} else if successor == p.ID {
		return errors.Errorf("c.m. %d cannot supersede itself", successor)
	}
	p.ID = successor
	p.Status = StatusSuppressed
	return nil
}

// MakeUnused marks p as an unused slot.
func (p *Ptcl) MakeUnused() {
	p.ID = IDUnused
	p.Status = StatusUnused
}

// NewFakeMember returns a fake member record whose ID packs the parent id and
// phase. payload is stored in Status.
func NewFakeMember(
	kin base.Source, idOffset, parentID, nSplit, phase, payload int64,
) (Ptcl, error) {
	id, err := FakeMemberID(idOffset, parentID, nSplit, phase)
	if err != nil {
		return Ptcl{}, err
	}
	return NewWith(kin, 0, 0, id, payload), nil
}

// FakeMemberID encodes idOffset + parentID*nSplit + phase. Encodings that
// do not fit in an int64 are rejected.
func FakeMemberID(idOffset, parentID, nSplit, phase int64) (int64, error) {
	switch {
	case idOffset < 0:
		return 0, errors.Wrapf(ErrFakeMemberID, "negative offset %d", idOffset)
	case parentID <= 0:
		return 0, errors.Wrapf(ErrFakeMemberID, "parent id %d not positive", parentID)
	case nSplit <= 0:
		return 0, errors.Wrapf(ErrFakeMemberID, "nSplit %d not positive", nSplit)
	case phase < 0 || phase >= nSplit:
		return 0, errors.Wrapf(ErrFakeMemberID,
			"phase %d outside [0, %d)", phase, nSplit)
	case parentID > (math.MaxInt64-idOffset-phase)/nSplit:
		return 0, errors.Wrapf(ErrFakeMemberID,
			"%d + %d*%d + %d overflows int64", idOffset, parentID, nSplit, phase)
	}
	return idOffset + parentID*nSplit + phase, nil
}

// SplitFakeMemberID inverts FakeMemberID.
func SplitFakeMemberID(id, idOffset, nSplit int64) (parentID, phase int64, err error) {
	if nSplit <= 0 {
		return 0, 0, errors.Wrapf(ErrFakeMemberID, "nSplit %d not positive", nSplit)
	}
	rel := id - idOffset
	if rel < nSplit {
		return 0, 0, errors.Wrapf(ErrFakeMemberID,
			"id %d is not above offset %d", id, idOffset)
	}
	return rel / nSplit, rel % nSplit, nil
}
