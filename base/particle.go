/*Package base holds the kinematic part of a particle: its mass, position and
velocity, along with the copy contract and the text/binary codecs that every
richer particle record builds on top of.

The text form of a Particle is seven space-separated tokens,

    mass x y z vx vy vz

each printed with %26.17e so that every float64 survives a round trip
exactly. The binary form is the same seven values as consecutive 8-byte
IEEE-754 numbers in the caller's byte order.
*/
package base

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/pkg/errors"

	"github.com/phil-mansfield/ptcl/geom"
)

const (
	// AsciiFields is the number of tokens in the text form of a Particle.
	AsciiFields = 7
	// BinarySize is the number of bytes in the binary form of a Particle.
	BinarySize = 8 * AsciiFields
)

// Particle is the kinematic state of a body.
type Particle struct {
	Mass     float64
	Pos, Vel geom.Vec
}

// RuneReader is a reader that can push back the last rune it read, which lets
// text decoders stop exactly at the end of a record. *bufio.Reader and
// *strings.Reader both qualify.
type RuneReader interface {
	io.Reader
	io.RuneScanner
}

// Source is anything that can supply kinematic state.
type Source interface {
	Kinematic() Particle
}

// Kinematic returns a copy of p. It lets Particle, and every type that embeds
// it, act as a Source.
func (p Particle) Kinematic() Particle { return p }

// DataCopy overwrites the kinematic state of p with that of src.
func (p *Particle) DataCopy(src Source) {
	*p = src.Kinematic()
}

// Print writes a human-readable description of p to w. It is intended for
// debugging only and cannot be read back.
func (p *Particle) Print(w io.Writer) error {
	_, err := fmt.Fprintf(w, "mass=%g pos=(%g, %g, %g) vel=(%g, %g, %g)",
		p.Mass, p.Pos[0], p.Pos[1], p.Pos[2], p.Vel[0], p.Vel[1], p.Vel[2])
	return err
}

func (p *Particle) values() [AsciiFields]float64 {
	return [AsciiFields]float64{
		p.Mass,
		p.Pos[0], p.Pos[1], p.Pos[2],
		p.Vel[0], p.Vel[1], p.Vel[2],
	}
}

func (p *Particle) setValues(vals *[AsciiFields]float64) {
	p.Mass = vals[0]
	p.Pos = geom.Vec{vals[1], vals[2], vals[3]}
	p.Vel = geom.Vec{vals[4], vals[5], vals[6]}
}

// WriteAscii writes the text form of p to w, followed by a trailing space.
func (p *Particle) WriteAscii(w io.Writer) error {
	vals := p.values()
	for i := range vals {
		if _, err := fmt.Fprintf(w, "%26.17e ", vals[i]); err != nil {
			return errors.Wrap(err, "writing kinematic fields")
		}
	}
	return nil
}

// ReadAscii reads the text form of a Particle from r into p. No characters
// past the last token are consumed. p is left untouched if the read fails.
func (p *Particle) ReadAscii(r RuneReader) error {
	var vals [AsciiFields]float64
	n, err := fmt.Fscan(r,
		&vals[0], &vals[1], &vals[2], &vals[3], &vals[4], &vals[5], &vals[6])
	if n < AsciiFields {
		return &ShortReadError{"ascii", AsciiFields, n, err}
	}
	p.setValues(&vals)
	return nil
}

// WriteBinary writes the binary form of p to w using the given byte order.
func (p *Particle) WriteBinary(w io.Writer, order binary.ByteOrder) error {
	var buf [BinarySize]byte
	vals := p.values()
	for i := range vals {
		order.PutUint64(buf[8*i:], math.Float64bits(vals[i]))
	}
	if _, err := w.Write(buf[:]); err != nil {
		return errors.Wrap(err, "writing kinematic fields")
	}
	return nil
}

// ReadBinary reads the binary form of a Particle from r into p. p is left
// untouched if the read fails.
func (p *Particle) ReadBinary(r io.Reader, order binary.ByteOrder) error {
	var buf [BinarySize]byte
	n, err := io.ReadFull(r, buf[:])
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return &ShortReadError{"binary", AsciiFields, n / 8, err}
		}
		return errors.Wrap(err, "reading kinematic fields")
	}

	var vals [AsciiFields]float64
	for i := range vals {
		vals[i] = math.Float64frombits(order.Uint64(buf[8*i:]))
	}
	p.setValues(&vals)
	return nil
}
