package catalog

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/phil-mansfield/ptcl"
)

// ParticleBuffer is a wrapper around a writer which allows records to be
// appended on the fly in the fixed-width binary format without much overhead
// from small writes or excessive memory usage.
//
// Records that were flushed before an error stay written and the rest of the
// buffer is discarded; there is no rollback.
type ParticleBuffer struct {
	buf     []ptcl.Ptcl
	idx     int
	w       io.Writer
	order   binary.ByteOrder
	written int64
}

// NewParticleBuffer creates a ParticleBuffer which writes to w.
func NewParticleBuffer(
	w io.Writer, order binary.ByteOrder, bufSize int,
) *ParticleBuffer {
	if bufSize <= 0 {
		bufSize = 1
	}
	pb := &ParticleBuffer{make([]ptcl.Ptcl, bufSize), 0, w, order, 0}
	return pb
}

// Append adds a record to the buffer, which will eventually be written to
// the target writer.
func (pb *ParticleBuffer) Append(p *ptcl.Ptcl) error {
	pb.buf[pb.idx] = *p
	pb.idx++
	if pb.idx == len(pb.buf) {
		return pb.Flush()
	}
	return nil
}

// Flush writes the contents of the buffer to its target. This will be called
// automatically whenever the buffer fills.
func (pb *ParticleBuffer) Flush() error {
	for i := 0; i < pb.idx; i++ {
		if err := pb.buf[i].WriteBinary(pb.w, pb.order); err != nil {
			pb.idx = 0
			return errors.Wrapf(err, "flushing record %d", pb.written)
		}
		pb.written++
	}
	pb.idx = 0
	return nil
}

// Written returns the number of records that have reached the writer.
func (pb *ParticleBuffer) Written() int64 { return pb.written }
