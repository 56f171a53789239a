package ptcl

import (
	"math"

	"github.com/pkg/errors"
)

// SearchSafetyFactor shrinks the search radius slightly when deciding whether
// two particles are neighbors.
const SearchSafetyFactor = 0.99

// SearchConfig holds the process-wide parameters of the search radius. It is
// built once at startup and never modified afterwards, so it can be shared
// freely between goroutines.
type SearchConfig struct {
	searchFactor, rSearchMin, meanMassInv float64
}

// NewSearchConfig validates and returns a SearchConfig. rSearchMin must be
// positive; searchFactor and meanMassInv must be non-negative.
func NewSearchConfig(searchFactor, rSearchMin, meanMassInv float64) (SearchConfig, error) {
	switch {
	case !(searchFactor >= 0) || math.IsInf(searchFactor, 0):
		return SearchConfig{}, errors.Errorf(
			"search factor must be finite and non-negative, got %g", searchFactor)
	case !(rSearchMin > 0) || math.IsInf(rSearchMin, 0):
		return SearchConfig{}, errors.Errorf(
			"minimum search radius must be finite and positive, got %g", rSearchMin)
	case !(meanMassInv >= 0) || math.IsInf(meanMassInv, 0):
		return SearchConfig{}, errors.Errorf(
			"inverse mean mass must be finite and non-negative, got %g", meanMassInv)
	}
	return SearchConfig{searchFactor, rSearchMin, meanMassInv}, nil
}

// SearchFactor is the multiplier on the distance travelled in one step.
func (c SearchConfig) SearchFactor() float64 { return c.searchFactor }

// RSearchMin is the smallest search radius any particle can have.
func (c SearchConfig) RSearchMin() float64 { return c.rSearchMin }

// MeanMassInv is the inverse mean particle mass used by the mass-scaled floor.
func (c SearchConfig) MeanMassInv() float64 { return c.meanMassInv }

// CalcRSearch sets p.RSearch to max(|v| dt searchFactor, rSearchMin): the
// distance p can travel over one tree step, padded by the search factor and
// floored by the minimum radius. A NaN travel distance (a NaN velocity or
// 0*Inf) gets the floor.
func (c SearchConfig) CalcRSearch(p *Ptcl, dt float64) {
	p.RSearch = floorRSearch(p.Vel.Norm()*dt*c.searchFactor, c.rSearchMin)
	checkRSearch(p)
}

// floorRSearch is max(r, floor) with NaN treated as below the floor.
func floorRSearch(r, floor float64) float64 {
	if r > floor {
		return r
	}
	return floor
}

// CalcRSearchMassScaled is CalcRSearch with the floor scaled by
// sqrt(m / <m>). Members have their mass in MassBk, so that is used when
// Mass is zero. A massless particle falls back to the unscaled floor.
func (c SearchConfig) CalcRSearchMassScaled(p *Ptcl, dt float64) {
	m := p.Mass
	if m == 0 {
		m = p.MassBk
	}
	floor := math.Sqrt(m*c.meanMassInv) * c.rSearchMin
	if !(floor > 0) {
		floor = c.rSearchMin
	}
	p.RSearch = floorRSearch(p.Vel.Norm()*dt*c.searchFactor, floor)
	checkRSearch(p)
}

// InSearchRadius reports whether a neighbor at squared distance dist2 falls
// inside p's search radius.
func (p *Ptcl) InSearchRadius(dist2 float64) bool {
	r := SearchSafetyFactor * p.RSearch
	return dist2 < r*r
}

func checkRSearch(p *Ptcl) {
	if hardDebug && !(p.RSearch > 0) {
		panic(errors.Errorf("non-positive search radius %g for id %d",
			p.RSearch, p.ID))
	}
}
