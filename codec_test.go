package ptcl

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"math"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phil-mansfield/ptcl/base"
	"github.com/phil-mansfield/ptcl/geom"
)

// roleRecords has one record for every role, including awkward values.
func roleRecords(t *testing.T) []Ptcl {
	kin := base.Particle{
		Mass: 0.1 + 0.2,
		Pos:  geom.Vec{1e-300, -math.MaxFloat64, math.Pi},
		Vel:  geom.Vec{3, 4, 0},
	}

	single, err := NewSingle(kin, 42)
	require.NoError(t, err)
	single.RSearch = 1.23456789012345

	cm, err := NewCenterOfMass(kin, 7, 3)
	require.NoError(t, err)

	member, err := NewSingle(kin, 8)
	require.NoError(t, err)
	require.NoError(t, member.MakeMember(12))

	suppressed, err := NewCenterOfMass(kin, 9, 2)
	require.NoError(t, err)
	require.NoError(t, suppressed.Suppress(-7))

	fake, err := NewFakeMember(kin, 1<<40, 42, 8, 5, -3)
	require.NoError(t, err)

	unused := From(single)
	unused.MakeUnused()

	extreme := NewWith(kin, math.SmallestNonzeroFloat64, math.Copysign(0, -1),
		math.MinInt64, math.MaxInt64)

	return []Ptcl{single, cm, member, suppressed, fake, unused, New(), extreme}
}

func TestAsciiRoundTrip(t *testing.T) {
	for i, p := range roleRecords(t) {
		buf := &bytes.Buffer{}
		require.NoError(t, p.WriteAscii(buf))
		assert.Len(t, strings.Fields(buf.String()), base.AsciiFields+RoleFields)

		q := Ptcl{}
		require.NoError(t, q.ReadAscii(bufio.NewReader(buf)))
		assert.Equal(t, p, q, "record %d", i)
		assert.Equal(t, math.Float64bits(p.MassBk), math.Float64bits(q.MassBk))
	}
}

func TestAsciiExample(t *testing.T) {
	p := Ptcl{RSearch: 1.23456789012345e+00, MassBk: 0, ID: 42, Status: 0}
	buf := &bytes.Buffer{}
	require.NoError(t, p.WriteAscii(buf))
	assert.Len(t, strings.Fields(buf.String()), base.AsciiFields+RoleFields)

	q := New()
	require.NoError(t, q.ReadAscii(bufio.NewReader(buf)))
	assert.Equal(t, p, q)
	assert.Equal(t, RoleSingle, q.GuessRole())
}

func TestAsciiStream(t *testing.T) {
	ps := roleRecords(t)
	buf := &bytes.Buffer{}
	for i := range ps {
		require.NoError(t, ps[i].WriteAscii(buf))
		buf.WriteString("\n")
	}

	r := bufio.NewReader(buf)
	for i := range ps {
		q := Ptcl{}
		require.NoError(t, q.ReadAscii(r))
		assert.Equal(t, ps[i], q)
	}
}

func TestNegativeZero(t *testing.T) {
	ps := roleRecords(t)
	extreme := ps[len(ps)-1]
	require.True(t, math.Signbit(extreme.MassBk))

	buf := &bytes.Buffer{}
	require.NoError(t, extreme.Dump(buf))
	q := Ptcl{}
	require.NoError(t, q.Read(buf))
	assert.True(t, math.Signbit(q.MassBk))
}

func TestBinaryRoundTrip(t *testing.T) {
	for _, order := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
		for i, p := range roleRecords(t) {
			buf := &bytes.Buffer{}
			require.NoError(t, p.WriteBinary(buf, order))
			assert.Equal(t, BinarySize, buf.Len())

			q := Ptcl{}
			require.NoError(t, q.ReadBinary(buf, order))
			assert.Equal(t, p, q, "%s record %d", order, i)
			assert.Equal(t, math.Float64bits(p.MassBk), math.Float64bits(q.MassBk))
		}
	}
}

func TestBinaryLayout(t *testing.T) {
	p := Ptcl{RSearch: 2, MassBk: 3, ID: -5, Status: 7}
	buf := &bytes.Buffer{}
	require.NoError(t, p.WriteBinary(buf, binary.LittleEndian))

	b := buf.Bytes()[base.BinarySize:]
	assert.Equal(t, 2.0, math.Float64frombits(binary.LittleEndian.Uint64(b[0:])))
	assert.Equal(t, 3.0, math.Float64frombits(binary.LittleEndian.Uint64(b[8:])))
	assert.Equal(t, int64(-5), int64(binary.LittleEndian.Uint64(b[16:])))
	assert.Equal(t, int64(7), int64(binary.LittleEndian.Uint64(b[24:])))
}

func TestDumpRoundTrip(t *testing.T) {
	ps := roleRecords(t)
	buf := &bytes.Buffer{}
	for i := range ps {
		require.NoError(t, ps[i].Dump(buf))
	}
	assert.Equal(t, DumpSize*len(ps), buf.Len())

	for i := range ps {
		q := Ptcl{}
		require.NoError(t, q.Read(buf))
		assert.Equal(t, ps[i], q)
	}
}

func TestShortReads(t *testing.T) {
	p := roleRecords(t)[0]
	orig := New()

	ascii := &bytes.Buffer{}
	require.NoError(t, p.WriteAscii(ascii))
	tokens := strings.Fields(ascii.String())

	bin := &bytes.Buffer{}
	require.NoError(t, p.WriteBinary(bin, binary.LittleEndian))

	dump := &bytes.Buffer{}
	require.NoError(t, p.Dump(dump))

	table := []struct {
		name   string
		read   func(q *Ptcl) error
		format string
		want   int
		got    int
	}{
		{"ascii, two role tokens", func(q *Ptcl) error {
			in := strings.Join(tokens[:base.AsciiFields+2], " ")
			return q.ReadAscii(strings.NewReader(in))
		}, "ascii", RoleFields, 2},
		{"ascii, no role tokens", func(q *Ptcl) error {
			in := strings.Join(tokens[:base.AsciiFields], " ")
			return q.ReadAscii(strings.NewReader(in))
		}, "ascii", RoleFields, 0},
		{"ascii, malformed status", func(q *Ptcl) error {
			in := strings.Join(tokens[:base.AsciiFields+3], " ") + " abc"
			return q.ReadAscii(strings.NewReader(in))
		}, "ascii", RoleFields, 3},
		{"binary, three slots", func(q *Ptcl) error {
			in := bin.Bytes()[:BinarySize-8]
			return q.ReadBinary(bytes.NewReader(in), binary.LittleEndian)
		}, "binary", RoleFields, 3},
		{"binary, partial slot", func(q *Ptcl) error {
			in := bin.Bytes()[:BinarySize-1]
			return q.ReadBinary(bytes.NewReader(in), binary.LittleEndian)
		}, "binary", RoleFields, 3},
		{"dump, one byte short", func(q *Ptcl) error {
			return q.Read(bytes.NewReader(dump.Bytes()[:DumpSize-1]))
		}, "dump", 1, 0},
		{"dump, empty", func(q *Ptcl) error {
			return q.Read(bytes.NewReader(nil))
		}, "dump", 1, 0},
	}

	for _, test := range table {
		q := orig
		err := test.read(&q)
		require.Error(t, err, test.name)
		assert.True(t, errors.Is(err, ErrShortRead), test.name)

		sr := &ShortReadError{}
		require.True(t, errors.As(err, &sr), test.name)
		assert.Equal(t, test.format, sr.Format, test.name)
		assert.Equal(t, test.want, sr.Want, test.name)
		assert.Equal(t, test.got, sr.Got, test.name)
		assert.Equal(t, orig, q, "%s: partial record written", test.name)
	}
}
