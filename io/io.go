package io

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"
	"unsafe"

	"github.com/pkg/errors"

	"github.com/phil-mansfield/ptcl"
	"github.com/phil-mansfield/ptcl/catalog"
)

const (
	// Endianness flags stored at the start of binary and dump snapshots.
	LittleEndianFlag int32 = 0
	BigEndianFlag    int32 = -1

	bufferedRecords = 1 << 10
)

// Format is the on-disk representation of a snapshot.
type Format int

const (
	// Ascii is a header line followed by one text record per line.
	Ascii Format = iota
	// Binary is a flagged header followed by fixed-width binary records.
	Binary
	// Dump is a flagged header followed by raw memory images of records.
	// Only readable by the build that wrote it.
	Dump
	// Table is Ascii without the header line, suitable for column readers.
	Table
	EndFormat
)

var formatNames = [EndFormat]string{"ascii", "binary", "dump", "table"}

func (f Format) String() string {
	if f < 0 || f >= EndFormat {
		return "unknown"
	}
	return formatNames[f]
}

// ParseFormat converts a case-insensitive format name to a Format.
func ParseFormat(name string) (Format, error) {
	for f := Format(0); f < EndFormat; f++ {
		if strings.EqualFold(name, formatNames[f]) {
			return f, nil
		}
	}
	return EndFormat, fmt.Errorf(
		"Unrecognized snapshot format '%s'. Accepted formats are: %s.",
		name, strings.Join(formatNames[:], ", "),
	)
}

/*
Header describes a snapshot. Binary and dump snapshots are laid out as

    |-- 1 --||-- 2 --||-- 3 --||-- ... 4 ... --|

    1 - (int32) Flag indicating the endianness of the file. 0 indicates a
        little endian byte ordering and -1 indicates a big endian order.
    2 - (int32) Size of a Header struct. Checked for consistency.
    3 - (Header) FileID, NGlobal, Time.
    4 - NGlobal records, either fixed-width binary or raw dumps.

Ascii snapshots start with the line "FileID NGlobal Time".
*/
type Header struct {
	FileID  int64
	NGlobal int64
	Time    float64
}

// endianness converts an endianness flag to a byte order.
func endianness(flag int32) (binary.ByteOrder, error) {
	switch flag {
	case LittleEndianFlag:
		return binary.LittleEndian, nil
	case BigEndianFlag:
		return binary.BigEndian, nil
	}
	return nil, fmt.Errorf("Unrecognized endianness flag %d.", flag)
}

// endiannessFlag is the inverse of endianness.
func endiannessFlag(order binary.ByteOrder) int32 {
	if order == binary.BigEndian {
		return BigEndianFlag
	}
	return LittleEndianFlag
}

// NativeOrder returns the byte order of the running machine, which is the
// order of every dump snapshot it writes.
func NativeOrder() binary.ByteOrder {
	x := uint16(1)
	if *(*byte)(unsafe.Pointer(&x)) == 1 {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// ParseEndianness converts "little", "big" or "native" to a byte order.
func ParseEndianness(name string) (binary.ByteOrder, error) {
	switch strings.ToLower(name) {
	case "little":
		return binary.LittleEndian, nil
	case "big":
		return binary.BigEndian, nil
	case "native", "":
		return NativeOrder(), nil
	}
	return nil, fmt.Errorf(
		"Unrecognized endianness '%s'. Accepted values are little, big "+
			"and native.", name,
	)
}

// WriteSnapshot writes a snapshot to the given file. order is ignored for
// text and dump formats. A failure partway through leaves the records
// already written in the file.
func WriteSnapshot(
	path string, hd *Header, ps []ptcl.Ptcl, format Format,
	order binary.ByteOrder,
) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err = WriteSnapshotTo(f, hd, ps, format, order); err != nil {
		f.Close()
		return errors.Wrapf(err, "writing %s", path)
	}
	return f.Close()
}

// WriteSnapshotTo writes a snapshot to w.
func WriteSnapshotTo(
	w io.Writer, hd *Header, ps []ptcl.Ptcl, format Format,
	order binary.ByteOrder,
) error {
	if hd.NGlobal != int64(len(ps)) {
		return fmt.Errorf("Header count %d does not match %d records.",
			hd.NGlobal, len(ps))
	}

	bw := bufio.NewWriter(w)
	var err error
	switch format {
	case Ascii, Table:
		err = writeText(bw, hd, ps, format == Ascii)
	case Binary:
		err = writeBinary(bw, hd, ps, order)
	case Dump:
		err = writeDump(bw, hd, ps)
	default:
		err = fmt.Errorf("Cannot write format %s.", format)
	}

	if err != nil {
		return err
	}
	return bw.Flush()
}

func writeText(w io.Writer, hd *Header, ps []ptcl.Ptcl, header bool) error {
	if header {
		_, err := fmt.Fprintf(w, "%d %d %26.17e\n", hd.FileID, hd.NGlobal, hd.Time)
		if err != nil {
			return err
		}
	}

	for i := range ps {
		if err := ps[i].WriteAscii(w); err != nil {
			return errors.Wrapf(err, "record %d", i)
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	return nil
}

func writePreamble(w io.Writer, hd *Header, order binary.ByteOrder) error {
	if err := binary.Write(w, order, endiannessFlag(order)); err != nil {
		return err
	}
	if err := binary.Write(w, order, int32(unsafe.Sizeof(Header{}))); err != nil {
		return err
	}
	return binary.Write(w, order, hd)
}

func writeBinary(
	w io.Writer, hd *Header, ps []ptcl.Ptcl, order binary.ByteOrder,
) error {
	if err := writePreamble(w, hd, order); err != nil {
		return err
	}

	pb := catalog.NewParticleBuffer(w, order, bufferedRecords)
	for i := range ps {
		if err := pb.Append(&ps[i]); err != nil {
			return err
		}
	}
	return pb.Flush()
}

func writeDump(w io.Writer, hd *Header, ps []ptcl.Ptcl) error {
	if err := writePreamble(w, hd, NativeOrder()); err != nil {
		return err
	}
	for i := range ps {
		if err := ps[i].Dump(w); err != nil {
			return errors.Wrapf(err, "record %d", i)
		}
	}
	return nil
}

// ReadSnapshot reads the snapshot in the given file. Table files have no
// header; one is synthesized with FileID 0 and Time 0.
func ReadSnapshot(path string, format Format) (*Header, []ptcl.Ptcl, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	hd, ps, err := ReadSnapshotFrom(f, format)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "reading %s", path)
	}
	return hd, ps, nil
}

// ReadSnapshotFrom reads a snapshot from r.
func ReadSnapshotFrom(r io.Reader, format Format) (*Header, []ptcl.Ptcl, error) {
	br := bufio.NewReader(r)
	switch format {
	case Ascii:
		return readAscii(br)
	case Table:
		return readTable(br)
	case Binary, Dump:
		return readFlagged(br, format)
	}
	return nil, nil, fmt.Errorf("Cannot read format %s.", format)
}

func readAscii(r *bufio.Reader) (*Header, []ptcl.Ptcl, error) {
	hd := &Header{}
	n, err := fmt.Fscan(r, &hd.FileID, &hd.NGlobal, &hd.Time)
	if n < 3 {
		return nil, nil, &ptcl.ShortReadError{
			Format: "ascii header", Want: 3, Got: n, Err: err,
		}
	} else if hd.NGlobal < 0 {
		return nil, nil, fmt.Errorf("Negative record count %d.", hd.NGlobal)
	}

	ps := make([]ptcl.Ptcl, 0, initialCap(hd.NGlobal))
	for i := int64(0); i < hd.NGlobal; i++ {
		p := ptcl.Ptcl{}
		if err := p.ReadAscii(r); err != nil {
			return nil, nil, errors.Wrapf(err, "record %d", i)
		}
		ps = append(ps, p)
	}
	return hd, ps, nil
}

func readTable(r *bufio.Reader) (*Header, []ptcl.Ptcl, error) {
	ps := []ptcl.Ptcl{}
	for {
		done, err := atEOF(r)
		if err != nil {
			return nil, nil, err
		} else if done {
			break
		}

		p := ptcl.Ptcl{}
		if err := p.ReadAscii(r); err != nil {
			return nil, nil, errors.Wrapf(err, "record %d", len(ps))
		}
		ps = append(ps, p)
	}
	return &Header{NGlobal: int64(len(ps))}, ps, nil
}

// atEOF skips whitespace and reports whether the reader is exhausted.
func atEOF(r *bufio.Reader) (bool, error) {
	for {
		c, _, err := r.ReadRune()
		if err == io.EOF {
			return true, nil
		} else if err != nil {
			return false, err
		}

		if !unicode.IsSpace(c) {
			return false, r.UnreadRune()
		}
	}
}

func readFlagged(r io.Reader, format Format) (*Header, []ptcl.Ptcl, error) {
	// Order doesn't matter for this read, since flags are symmetric.
	var flag int32
	if err := binary.Read(r, binary.LittleEndian, &flag); err != nil {
		return nil, nil, errors.Wrap(err, "reading endianness flag")
	}
	order, err := endianness(flag)
	if err != nil {
		return nil, nil, err
	}

	if format == Dump && order != NativeOrder() {
		return nil, nil, fmt.Errorf(
			"Dump snapshot was written with %s byte order, but this "+
				"machine is %s.", order, NativeOrder(),
		)
	}

	var headerSize int32
	if err := binary.Read(r, order, &headerSize); err != nil {
		return nil, nil, errors.Wrap(err, "reading header size")
	}
	if headerSize != int32(unsafe.Sizeof(Header{})) {
		return nil, nil, fmt.Errorf("Expected io.Header size of %d, found %d.",
			unsafe.Sizeof(Header{}), headerSize)
	}

	hd := &Header{}
	if err := binary.Read(r, order, hd); err != nil {
		return nil, nil, errors.Wrap(err, "reading header")
	} else if hd.NGlobal < 0 {
		return nil, nil, fmt.Errorf("Negative record count %d.", hd.NGlobal)
	}

	ps := make([]ptcl.Ptcl, 0, initialCap(hd.NGlobal))
	for i := int64(0); i < hd.NGlobal; i++ {
		p := ptcl.Ptcl{}
		if format == Dump {
			err = p.Read(r)
		} else {
			err = p.ReadBinary(r, order)
		}
		if err != nil {
			return nil, nil, errors.Wrapf(err, "record %d", i)
		}
		ps = append(ps, p)
	}
	return hd, ps, nil
}

// initialCap bounds the up-front allocation so that a corrupt header can't
// request more memory than the file could ever fill.
func initialCap(n int64) int64 {
	if n > bufferedRecords {
		return bufferedRecords
	}
	return n
}
