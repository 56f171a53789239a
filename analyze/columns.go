/*Package analyze summarizes the role fields of text snapshots.

Files are read column-wise, so only table-format snapshots (text records with
no header line) are accepted. Ids and statuses pass through float64 on the
way in and are exact only up to 2^53.
*/
package analyze

import (
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/phil-mansfield/table"

	"github.com/phil-mansfield/ptcl"
	"github.com/phil-mansfield/ptcl/base"
)

// Zero-indexed columns of the role fields in a text record.
const (
	RSearchColumn = base.AsciiFields + iota
	MassBkColumn
	IDColumn
	StatusColumn
)

// Columns holds the role fields of every record in a snapshot.
type Columns struct {
	RSearch, MassBk []float64
	ID, Status      []int64
}

// ReadColumns reads the role fields of a table-format snapshot.
func ReadColumns(path string) (*Columns, error) {
	idxs := []int{RSearchColumn, MassBkColumn, IDColumn, StatusColumn}
	cols, err := table.ReadTable(path, idxs, nil)
	if err != nil {
		return nil, err
	}

	c := &Columns{
		RSearch: cols[0], MassBk: cols[1],
		ID: toInt(cols[2]), Status: toInt(cols[3]),
	}
	return c, nil
}

func toInt(xs []float64) []int64 {
	out := make([]int64, len(xs))
	for i := range xs {
		out[i] = int64(xs[i])
	}
	return out
}

// FromRecords builds Columns from records already in memory.
func FromRecords(ps []ptcl.Ptcl) *Columns {
	c := &Columns{
		make([]float64, len(ps)), make([]float64, len(ps)),
		make([]int64, len(ps)), make([]int64, len(ps)),
	}
	for i := range ps {
		c.RSearch[i], c.MassBk[i], c.ID[i], c.Status[i] = ps[i].RoleFields()
	}
	return c
}

func (c *Columns) Len() int { return len(c.Status) }

// Roles guesses the role of every record. See ptcl.Ptcl.GuessRole for the
// roles which cannot be told apart this way.
func (c *Columns) Roles() []ptcl.Role {
	roles := make([]ptcl.Role, c.Len())
	for i := range roles {
		p := ptcl.Ptcl{ID: c.ID[i], Status: c.Status[i]}
		roles[i] = p.GuessRole()
	}
	return roles
}

// Census is the number of records of each role.
type Census [ptcl.EndRole]int

// Census counts the guessed roles of every record.
func (c *Columns) Census() Census {
	census := Census{}
	for _, r := range c.Roles() {
		census[r]++
	}
	return census
}

func (census *Census) Total() int {
	n := 0
	for _, x := range census {
		n += x
	}
	return n
}

// Print writes one "role count" line per role with a non-zero count.
func (census *Census) Print(w io.Writer) error {
	for r, n := range census {
		if n == 0 {
			continue
		}
		if _, err := fmt.Fprintf(w, "%-14s %d\n", ptcl.Role(r), n); err != nil {
			return err
		}
	}
	return nil
}

// Stats summarizes a set of search radii.
type Stats struct {
	N                      int
	Min, Max, Mean, Median float64
}

// RSearchStats returns summary statistics of the search radii of records
// with the given role. RoleInvalid selects every record.
func (c *Columns) RSearchStats(role ptcl.Role) Stats {
	return RSearchStats(c.SelectRSearch(role))
}

// SelectRSearch returns the search radii of records with the given role.
// RoleInvalid selects every record.
func (c *Columns) SelectRSearch(role ptcl.Role) []float64 {
	roles := c.Roles()
	rs := []float64{}
	for i := range roles {
		if role == ptcl.RoleInvalid || roles[i] == role {
			rs = append(rs, c.RSearch[i])
		}
	}
	return rs
}

// RSearchStats returns summary statistics of rs. The zero Stats is returned
// for an empty slice.
func RSearchStats(rs []float64) Stats {
	if len(rs) == 0 {
		return Stats{}
	}

	sorted := append([]float64{}, rs...)
	sort.Float64s(sorted)

	sum := 0.0
	for _, r := range sorted {
		sum += r
	}

	n := len(sorted)
	median := sorted[n/2]
	if n%2 == 0 {
		median = (sorted[n/2-1] + sorted[n/2]) / 2
	}

	return Stats{
		N: n, Min: sorted[0], Max: sorted[n-1],
		Mean: sum / float64(n), Median: median,
	}
}

func (s Stats) String() string {
	if s.N == 0 {
		return "N=0"
	}
	return fmt.Sprintf("N=%d min=%.6g max=%.6g mean=%.6g median=%.6g",
		s.N, s.Min, s.Max, s.Mean, s.Median)
}

// finite reports whether x can be binned.
func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
