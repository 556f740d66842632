package interest

import (
	"encoding/json"
	"math"
)

// Vector holds one non-negative count per category. All categories are always
// present; zero is a meaningful count, never an absent key. The array is
// indexed by Interest, so arithmetic iterates in taxonomy order and is
// reproducible across runs.
type Vector [Count]uint32

// IsZero reports whether every category count is zero.
func (v Vector) IsZero() bool {
	for _, c := range v {
		if c != 0 {
			return false
		}
	}
	return true
}

// Total returns the sum of all category counts.
func (v Vector) Total() uint64 {
	var sum uint64
	for _, c := range v {
		sum += uint64(c)
	}
	return sum
}

// Merge returns the per-category sum of v and delta, saturating at the
// uint32 bound. A count at the bound stays there rather than wrapping; a
// counter overflow indicates degenerate input, not a real user history.
func (v Vector) Merge(delta Vector) Vector {
	var out Vector
	for i := range v {
		out[i] = saturatingAdd(v[i], delta[i])
	}
	return out
}

func saturatingAdd(a, b uint32) uint32 {
	sum := uint64(a) + uint64(b)
	if sum > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(sum)
}

// Aggregate folds a sequence of classifications into a Vector. The result
// depends only on the multiset of categories, not their order; an empty
// sequence yields the all-zero vector.
func Aggregate(classifications []Interest) Vector {
	var t Tally
	for _, c := range classifications {
		t.Add(c)
	}
	return t.Vector()
}

// Tally accumulates category counts without saturation. Batch classification
// shards a URL list across goroutines, tallies each shard independently, and
// merges the tallies; uint64 accumulation keeps the final clamped Vector
// identical regardless of how the batch was split.
type Tally [Count]uint64

// Add counts one classification. Categories outside the taxonomy are ignored.
func (t *Tally) Add(c Interest) {
	if c.Valid() {
		t[c]++
	}
}

// Merge adds every count of other into t.
func (t *Tally) Merge(other Tally) {
	for i, n := range other {
		t[i] += n
	}
}

// Vector clamps the tally to a Vector, saturating each count at the
// uint32 bound.
func (t Tally) Vector() Vector {
	var v Vector
	for i, n := range t {
		if n > math.MaxUint32 {
			n = math.MaxUint32
		}
		v[i] = uint32(n)
	}
	return v
}

// vectorJSON is the named-field wire form of a Vector. The interface contract
// exposes one named non-negative integer field per category; field order
// follows the taxonomy.
type vectorJSON struct {
	Animals      uint32 `json:"animals"`
	Arts         uint32 `json:"arts"`
	Autos        uint32 `json:"autos"`
	Business     uint32 `json:"business"`
	Career       uint32 `json:"career"`
	Education    uint32 `json:"education"`
	Fashion      uint32 `json:"fashion"`
	Finance      uint32 `json:"finance"`
	Food         uint32 `json:"food"`
	Government   uint32 `json:"government"`
	Hobbies      uint32 `json:"hobbies"`
	Home         uint32 `json:"home"`
	News         uint32 `json:"news"`
	RealEstate   uint32 `json:"real_estate"`
	Society      uint32 `json:"society"`
	Sports       uint32 `json:"sports"`
	Tech         uint32 `json:"tech"`
	Travel       uint32 `json:"travel"`
	Inconclusive uint32 `json:"inconclusive"`
}

// MarshalJSON encodes the vector as an object with one named field per
// category, all fields always present.
func (v Vector) MarshalJSON() ([]byte, error) {
	return json.Marshal(vectorJSON{
		Animals:      v[Animals],
		Arts:         v[Arts],
		Autos:        v[Autos],
		Business:     v[Business],
		Career:       v[Career],
		Education:    v[Education],
		Fashion:      v[Fashion],
		Finance:      v[Finance],
		Food:         v[Food],
		Government:   v[Government],
		Hobbies:      v[Hobbies],
		Home:         v[Home],
		News:         v[News],
		RealEstate:   v[RealEstate],
		Society:      v[Society],
		Sports:       v[Sports],
		Tech:         v[Tech],
		Travel:       v[Travel],
		Inconclusive: v[Inconclusive],
	})
}

// UnmarshalJSON decodes the named-field object form. Absent fields decode
// as zero counts.
func (v *Vector) UnmarshalJSON(data []byte) error {
	var w vectorJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*v = Vector{
		Animals:      w.Animals,
		Arts:         w.Arts,
		Autos:        w.Autos,
		Business:     w.Business,
		Career:       w.Career,
		Education:    w.Education,
		Fashion:      w.Fashion,
		Finance:      w.Finance,
		Food:         w.Food,
		Government:   w.Government,
		Hobbies:      w.Hobbies,
		Home:         w.Home,
		News:         w.News,
		RealEstate:   w.RealEstate,
		Society:      w.Society,
		Sports:       w.Sports,
		Tech:         w.Tech,
		Travel:       w.Travel,
		Inconclusive: w.Inconclusive,
	}
	return nil
}
