package io

import (
	"encoding/binary"
	"fmt"

	"github.com/pkg/errors"
	"gopkg.in/gcfg.v1"
	"gopkg.in/warnings.v0"

	"github.com/phil-mansfield/ptcl"
)

const ExampleConfigFile = `[Search]

#######################
# Required Parameters #
#######################

# The search radius of every particle is
#     max(|v| * DtTree * SearchFactor, RSearchMin)
# so SearchFactor is the safety multiplier on how far a particle can move in
# one tree step and RSearchMin is a hard floor for slow particles.
SearchFactor = 3.0
RSearchMin = 1e-3

# Length of one tree step.
DtTree = 0.0078125

#######################
# Optional Parameters #
#######################

# Inverse of the mean particle mass. Only used when MassScaled is set, in
# which case the floor becomes sqrt(m * MeanMassInv) * RSearchMin.
# MeanMassInv = 1.0
# MassScaled = true

[Snapshot]

#######################
# Required Parameters #
#######################

# Format of the input snapshot: ascii, binary, dump or table.
Format = ascii

#######################
# Optional Parameters #
#######################

# Format written by the convert and rsearch commands. Defaults to Format.
# OutputFormat = binary

# Byte order of binary output: little, big or native. Dump files are always
# written in native order.
# Endianness = little`

type SearchConfig struct {
	// Required
	SearchFactor, RSearchMin, DtTree float64

	// Optional
	MeanMassInv float64
	MassScaled  bool
}

func (con *SearchConfig) ValidSearchFactor() bool {
	return con.SearchFactor >= 0
}
func (con *SearchConfig) ValidRSearchMin() bool {
	return con.RSearchMin > 0
}
func (con *SearchConfig) ValidDtTree() bool {
	return con.DtTree > 0
}
func (con *SearchConfig) ValidMeanMassInv() bool {
	if con.MassScaled {
		return con.MeanMassInv > 0
	}
	return con.MeanMassInv >= 0
}

type SnapshotConfig struct {
	// Required
	Format string

	// Optional
	OutputFormat, Endianness string
}

func (con *SnapshotConfig) ValidFormat() bool {
	_, err := ParseFormat(con.Format)
	return err == nil
}
func (con *SnapshotConfig) ValidOutputFormat() bool {
	if con.OutputFormat == "" {
		return true
	}
	_, err := ParseFormat(con.OutputFormat)
	return err == nil
}
func (con *SnapshotConfig) ValidEndianness() bool {
	_, err := ParseEndianness(con.Endianness)
	return err == nil
}

type RunWrapper struct {
	Search   SearchConfig
	Snapshot SnapshotConfig
}

func DefaultRunWrapper() *RunWrapper {
	w := &RunWrapper{}
	w.Snapshot.Format = "ascii"
	w.Snapshot.Endianness = "little"
	return w
}

// ReadRunConfig reads and validates a run configuration file. Unknown
// variables and sections are returned as warnings rather than errors.
func ReadRunConfig(fname string) (*RunWrapper, []error, error) {
	wrap := DefaultRunWrapper()
	var warns []error

	if err := gcfg.ReadFileInto(wrap, fname); err != nil {
		var list warnings.List
		if !errors.As(err, &list) {
			return nil, nil, err
		}
		warns = list.Warnings
		if list.Fatal != nil {
			return nil, warns, list.Fatal
		}
	}

	if err := wrap.CheckInit(); err != nil {
		return nil, warns, errors.Wrapf(err, "config file %s", fname)
	}
	return wrap, warns, nil
}

// CheckInit validates every section.
func (wrap *RunWrapper) CheckInit() error {
	s, snap := &wrap.Search, &wrap.Snapshot
	switch {
	case !s.ValidSearchFactor():
		return fmt.Errorf("Invalid 'SearchFactor' value, %g.", s.SearchFactor)
	case !s.ValidRSearchMin():
		return fmt.Errorf("Invalid/non-existent 'RSearchMin' value.")
	case !s.ValidDtTree():
		return fmt.Errorf("Invalid/non-existent 'DtTree' value.")
	case !s.ValidMeanMassInv():
		return fmt.Errorf("Invalid 'MeanMassInv' value, %g. MassScaled "+
			"requires a positive value.", s.MeanMassInv)
	case !snap.ValidFormat():
		return fmt.Errorf("Invalid/non-existent 'Format' value, '%s'.",
			snap.Format)
	case !snap.ValidOutputFormat():
		return fmt.Errorf("Invalid 'OutputFormat' value, '%s'.",
			snap.OutputFormat)
	case !snap.ValidEndianness():
		return fmt.Errorf("Invalid 'Endianness' value, '%s'.",
			snap.Endianness)
	}
	return nil
}

// SearchConfig builds the radius calculator's configuration.
func (wrap *RunWrapper) SearchConfig() (ptcl.SearchConfig, error) {
	s := &wrap.Search
	return ptcl.NewSearchConfig(s.SearchFactor, s.RSearchMin, s.MeanMassInv)
}

// Formats returns the input and output formats and the output byte order.
// The config must have passed CheckInit.
func (wrap *RunWrapper) Formats() (in, out Format, order binary.ByteOrder) {
	snap := &wrap.Snapshot
	in, _ = ParseFormat(snap.Format)
	out = in
	if snap.OutputFormat != "" {
		out, _ = ParseFormat(snap.OutputFormat)
	}
	order, _ = ParseEndianness(snap.Endianness)
	return in, out, order
}
