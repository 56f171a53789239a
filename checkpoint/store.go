/*Package checkpoint stores snapshots in an embedded key-value store so that a
run can be restarted from any saved step.

Each snapshot is written as two keys sharing a ksuid, so that iterating over
either prefix visits snapshots in the order they were saved:

    meta/<id> - header, record count and xxhash of the payload
    snap/<id> - the snapshot in binary form, little endian
*/
package checkpoint

import (
	"bytes"
	"encoding/binary"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/pkg/errors"
	"github.com/segmentio/ksuid"

	"github.com/phil-mansfield/ptcl"
	"github.com/phil-mansfield/ptcl/io"
)

var (
	// ErrNotFound is returned when no snapshot has the requested id.
	ErrNotFound = errors.New("no checkpoint with id")
	// ErrChecksum is returned when a stored payload does not match the
	// checksum recorded when it was saved.
	ErrChecksum = errors.New("checkpoint checksum mismatch")
)

var (
	metaPrefix = []byte("meta/")
	snapPrefix = []byte("snap/")
)

// Options controls how a Store is opened. A nil *Options is valid.
type Options struct {
	// InMemory keeps the store in memory. The directory is ignored.
	InMemory bool
	// NoSync skips syncing writes to disk before Save returns.
	NoSync bool
}

// Entry describes one saved snapshot.
type Entry struct {
	ID       ksuid.KSUID
	Header   io.Header
	Count    int64
	Checksum uint64
}

// Saved returns the time at which the snapshot was saved, to the second.
func (e *Entry) Saved() time.Time { return e.ID.Time() }

// meta is the fixed-width value stored under a meta key.
type meta struct {
	Header   io.Header
	Count    int64
	Checksum uint64
}

// Store is a checkpoint store. It is safe for concurrent use.
type Store struct {
	db   *pebble.DB
	sync *pebble.WriteOptions
}

// Open opens the store in dir, creating it if needed.
func Open(dir string, opts *Options) (*Store, error) {
	if opts == nil {
		opts = &Options{}
	}

	popts := &pebble.Options{}
	if opts.InMemory {
		popts.FS = vfs.NewMem()
	}

	db, err := pebble.Open(dir, popts)
	if err != nil {
		return nil, errors.Wrapf(err, "opening checkpoint store %s", dir)
	}

	s := &Store{db: db, sync: pebble.Sync}
	if opts.NoSync {
		s.sync = pebble.NoSync
	}
	return s, nil
}

func key(prefix []byte, id ksuid.KSUID) []byte {
	return append(append([]byte{}, prefix...), id.Bytes()...)
}

// Save writes a snapshot and returns its id. Both keys are committed in a
// single batch, so a snapshot is either fully saved or absent.
func (s *Store) Save(hd *io.Header, ps []ptcl.Ptcl) (ksuid.KSUID, error) {
	buf := &bytes.Buffer{}
	buf.Grow(len(ps) * ptcl.BinarySize)
	err := io.WriteSnapshotTo(buf, hd, ps, io.Binary, binary.LittleEndian)
	if err != nil {
		return ksuid.Nil, err
	}
	payload := buf.Bytes()

	m := meta{*hd, int64(len(ps)), xxhash.Sum64(payload)}
	mbuf := &bytes.Buffer{}
	if err := binary.Write(mbuf, binary.LittleEndian, &m); err != nil {
		return ksuid.Nil, err
	}

	id := ksuid.New()
	b := s.db.NewBatch()
	defer b.Close()
	if err := b.Set(key(metaPrefix, id), mbuf.Bytes(), nil); err != nil {
		return ksuid.Nil, err
	}
	if err := b.Set(key(snapPrefix, id), payload, nil); err != nil {
		return ksuid.Nil, err
	}
	if err := b.Commit(s.sync); err != nil {
		return ksuid.Nil, errors.Wrap(err, "committing checkpoint")
	}
	return id, nil
}

// get returns a copy of the value at k.
func (s *Store) get(k []byte) ([]byte, error) {
	val, closer, err := s.db.Get(k)
	if err == pebble.ErrNotFound {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}
	defer closer.Close()

	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func decodeMeta(id ksuid.KSUID, val []byte) (*Entry, error) {
	m := meta{}
	if err := binary.Read(bytes.NewReader(val), binary.LittleEndian, &m); err != nil {
		return nil, errors.Wrapf(err, "decoding checkpoint %s", id)
	}
	return &Entry{id, m.Header, m.Count, m.Checksum}, nil
}

// Stat returns the entry for a snapshot without reading its records.
func (s *Store) Stat(id ksuid.KSUID) (*Entry, error) {
	val, err := s.get(key(metaPrefix, id))
	if err != nil {
		return nil, errors.Wrapf(err, "%s", id)
	}
	return decodeMeta(id, val)
}

// Load reads a snapshot back. The payload is verified against its stored
// checksum before it is decoded.
func (s *Store) Load(id ksuid.KSUID) (*io.Header, []ptcl.Ptcl, error) {
	e, err := s.Stat(id)
	if err != nil {
		return nil, nil, err
	}

	payload, err := s.get(key(snapPrefix, id))
	if err != nil {
		return nil, nil, errors.Wrapf(err, "%s", id)
	}
	if sum := xxhash.Sum64(payload); sum != e.Checksum {
		return nil, nil, errors.Wrapf(ErrChecksum, "%s: stored %016x, found %016x",
			id, e.Checksum, sum)
	}

	hd, ps, err := io.ReadSnapshotFrom(bytes.NewReader(payload), io.Binary)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "checkpoint %s", id)
	} else if int64(len(ps)) != e.Count {
		return nil, nil, errors.Errorf("checkpoint %s: expected %d records, found %d",
			id, e.Count, len(ps))
	}
	return hd, ps, nil
}

// List returns every saved snapshot, oldest first. Snapshots saved within
// the same second are in no particular order.
func (s *Store) List() ([]Entry, error) {
	upper := append([]byte{}, metaPrefix...)
	upper[len(upper)-1]++

	it, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: metaPrefix, UpperBound: upper,
	})
	if err != nil {
		return nil, err
	}
	defer it.Close()

	entries := []Entry{}
	for it.First(); it.Valid(); it.Next() {
		id, err := ksuid.FromBytes(it.Key()[len(metaPrefix):])
		if err != nil {
			return nil, errors.Wrapf(err, "bad checkpoint key %q", it.Key())
		}
		e, err := decodeMeta(id, it.Value())
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, it.Error()
}

// Latest returns the entry of the last snapshot in List.
func (s *Store) Latest() (*Entry, error) {
	entries, err := s.List()
	if err != nil {
		return nil, err
	} else if len(entries) == 0 {
		return nil, errors.Wrap(ErrNotFound, "store is empty")
	}
	return &entries[len(entries)-1], nil
}

// Delete removes a snapshot. Deleting a missing snapshot is not an error.
func (s *Store) Delete(id ksuid.KSUID) error {
	b := s.db.NewBatch()
	defer b.Close()
	if err := b.Delete(key(metaPrefix, id), nil); err != nil {
		return err
	}
	if err := b.Delete(key(snapPrefix, id), nil); err != nil {
		return err
	}
	return b.Commit(s.sync)
}

func (s *Store) Close() error {
	return s.db.Close()
}
