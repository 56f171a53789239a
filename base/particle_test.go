package base

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phil-mansfield/ptcl/geom"
)

func testParticle() Particle {
	return Particle{
		Mass: 1.0 / 3,
		Pos:  geom.Vec{0.1, -2.5e-9, 7.123456789012345e7},
		Vel:  geom.Vec{3, 4, 0},
	}
}

func TestAsciiRoundTrip(t *testing.T) {
	p := testParticle()
	buf := &bytes.Buffer{}
	require.NoError(t, p.WriteAscii(buf))
	assert.Equal(t, AsciiFields, len(strings.Fields(buf.String())))

	q := Particle{}
	require.NoError(t, q.ReadAscii(bytes.NewReader(buf.Bytes())))
	assert.Equal(t, p, q)
}

func TestAsciiReaders(t *testing.T) {
	p := testParticle()
	buf := &bytes.Buffer{}
	require.NoError(t, p.WriteAscii(buf))
	require.NoError(t, p.WriteAscii(buf))
	text := buf.String()

	readers := []RuneReader{
		strings.NewReader(text),
		bytes.NewReader([]byte(text)),
		bufio.NewReader(strings.NewReader(text)),
	}
	for i, r := range readers {
		for j := 0; j < 2; j++ {
			q := Particle{}
			require.NoError(t, q.ReadAscii(r), "reader %d, record %d", i, j)
			assert.Equal(t, p, q, "reader %d, record %d", i, j)
		}
	}
}

func TestBinaryRoundTrip(t *testing.T) {
	orders := []binary.ByteOrder{binary.LittleEndian, binary.BigEndian}
	for _, order := range orders {
		p := testParticle()
		buf := &bytes.Buffer{}
		require.NoError(t, p.WriteBinary(buf, order))
		assert.Equal(t, BinarySize, buf.Len())

		q := Particle{}
		require.NoError(t, q.ReadBinary(buf, order))
		assert.Equal(t, p, q, order.String())
	}
}

func TestShortReads(t *testing.T) {
	q := Particle{Mass: 5}

	err := q.ReadAscii(strings.NewReader("1 2 3"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrShortRead))
	sr := &ShortReadError{}
	require.True(t, errors.As(err, &sr))
	assert.Equal(t, 3, sr.Got)
	assert.Equal(t, 5.0, q.Mass)

	err = q.ReadBinary(bytes.NewReader(make([]byte, BinarySize-1)),
		binary.LittleEndian)
	require.True(t, errors.As(err, &sr))
	assert.Equal(t, "binary", sr.Format)
	assert.Equal(t, AsciiFields-1, sr.Got)
	assert.Equal(t, 5.0, q.Mass)
}

func TestDataCopy(t *testing.T) {
	p := testParticle()
	q := Particle{}
	q.DataCopy(p)
	assert.Equal(t, p, q)
}
