package ptcl

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"unsafe"

	"github.com/pkg/errors"

	"github.com/phil-mansfield/ptcl/base"
)

const (
	// RoleFields is the number of role fields following the kinematic base
	// in the text and binary forms.
	RoleFields = 4
	// BinarySize is the size in bytes of the fixed-width binary form.
	BinarySize = base.BinarySize + 8*RoleFields
	// DumpSize is the size in bytes of the raw memory dump. It depends on the
	// build and must not be used to read files written elsewhere.
	DumpSize = int(unsafe.Sizeof(Ptcl{}))
)

// ErrShortRead is matched by every error reporting a truncated record.
var ErrShortRead = base.ErrShortRead

// RuneReader is the input of the text decoder.
type RuneReader = base.RuneReader

// ShortReadError reports how many fields were found when a record was cut
// short. The kinematic base and the role fields share this type.
type ShortReadError = base.ShortReadError

// WriteAscii writes the text form of p: the base's tokens followed by
// r_search, mass_bk, id and status, then a trailing space. Floats are
// printed with 17 significant digits so that they read back exactly.
func (p *Ptcl) WriteAscii(w io.Writer) error {
	if err := p.Particle.WriteAscii(w); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%26.17e %26.17e %d %d ",
		p.RSearch, p.MassBk, p.ID, p.Status)
	return errors.Wrap(err, "writing role fields")
}

// ReadAscii reads the text form of a record. If fewer than four role fields
// can be parsed a *ShortReadError is returned and p is not modified.
func (p *Ptcl) ReadAscii(r RuneReader) error {
	kin := base.Particle{}
	if err := kin.ReadAscii(r); err != nil {
		return err
	}

	var (
		rSearch, massBk float64
		id, status      int64
	)
	n, err := fmt.Fscan(r, &rSearch, &massBk, &id, &status)
	if n < RoleFields {
		return &ShortReadError{Format: "ascii", Want: RoleFields, Got: n, Err: err}
	}

	*p = Ptcl{kin, rSearch, massBk, id, status}
	return nil
}

// WriteBinary writes the fixed-width binary form of p: the base's binary
// form followed by four 8-byte slots holding r_search and mass_bk as
// IEEE-754 doubles and id and status as two's-complement integers.
func (p *Ptcl) WriteBinary(w io.Writer, order binary.ByteOrder) error {
	if err := p.Particle.WriteBinary(w, order); err != nil {
		return err
	}

	var buf [8 * RoleFields]byte
	order.PutUint64(buf[0:], math.Float64bits(p.RSearch))
	order.PutUint64(buf[8:], math.Float64bits(p.MassBk))
	order.PutUint64(buf[16:], uint64(p.ID))
	order.PutUint64(buf[24:], uint64(p.Status))

	_, err := w.Write(buf[:])
	return errors.Wrap(err, "writing role fields")
}

// ReadBinary reads the fixed-width binary form of a record. If fewer than
// four full slots follow the base a *ShortReadError is returned and p is not
// modified.
func (p *Ptcl) ReadBinary(r io.Reader, order binary.ByteOrder) error {
	kin := base.Particle{}
	if err := kin.ReadBinary(r, order); err != nil {
		return err
	}

	var buf [8 * RoleFields]byte
	n, err := io.ReadFull(r, buf[:])
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return &ShortReadError{Format: "binary", Want: RoleFields, Got: n / 8, Err: err}
		}
		return errors.Wrap(err, "reading role fields")
	}

	*p = Ptcl{
		Particle: kin,
		RSearch:  math.Float64frombits(order.Uint64(buf[0:])),
		MassBk:   math.Float64frombits(order.Uint64(buf[8:])),
		ID:       int64(order.Uint64(buf[16:])),
		Status:   int64(order.Uint64(buf[24:])),
	}
	return nil
}

// bytes returns the memory backing p. Ptcl holds no pointers, so this is a
// faithful image of the record.
func (p *Ptcl) bytes() []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(p)), DumpSize)
}

// Dump writes the in-memory image of p to w. The result is only readable by
// a binary built from the same source for the same architecture.
func (p *Ptcl) Dump(w io.Writer) error {
	_, err := w.Write(p.bytes())
	return errors.Wrap(err, "dumping record")
}

// Read reads an in-memory image written by Dump. If a full record is not
// available a *ShortReadError is returned and p is not modified.
func (p *Ptcl) Read(r io.Reader) error {
	tmp := Ptcl{}
	if _, err := io.ReadFull(r, tmp.bytes()); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return &ShortReadError{Format: "dump", Want: 1, Got: 0, Err: err}
		}
		return errors.Wrap(err, "reading record dump")
	}
	*p = tmp
	return nil
}
