package interest

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
)

func TestVectorIsZero(t *testing.T) {
	var zero Vector
	if !zero.IsZero() {
		t.Error("IsZero() = false for the zero vector, want true")
	}

	v := Vector{Sports: 1}
	if v.IsZero() {
		t.Error("IsZero() = true for a non-zero vector, want false")
	}
}

func TestVectorTotal(t *testing.T) {
	v := Vector{Sports: 2, Food: 1, Tech: 7}
	if got := v.Total(); got != 10 {
		t.Errorf("Total() = %d, want 10", got)
	}

	// Totals accumulate in uint64 so they never wrap even when every
	// category sits at the uint32 bound.
	var full Vector
	for i := range full {
		full[i] = math.MaxUint32
	}
	want := uint64(Count) * math.MaxUint32
	if got := full.Total(); got != want {
		t.Errorf("Total() = %d, want %d", got, want)
	}
}

func TestVectorMerge(t *testing.T) {
	tests := []struct {
		name  string
		base  Vector
		delta Vector
		want  Vector
	}{
		{
			name:  "disjoint categories",
			base:  Vector{Sports: 2},
			delta: Vector{Food: 1},
			want:  Vector{Sports: 2, Food: 1},
		},
		{
			name:  "overlapping categories",
			base:  Vector{Sports: 2, Food: 1},
			delta: Vector{Sports: 3},
			want:  Vector{Sports: 5, Food: 1},
		},
		{
			name:  "zero delta",
			base:  Vector{News: 4},
			delta: Vector{},
			want:  Vector{News: 4},
		},
		{
			name:  "saturates at the bound",
			base:  Vector{Tech: math.MaxUint32},
			delta: Vector{Tech: 1},
			want:  Vector{Tech: math.MaxUint32},
		},
		{
			name:  "saturates from below the bound",
			base:  Vector{Tech: math.MaxUint32 - 1},
			delta: Vector{Tech: 5},
			want:  Vector{Tech: math.MaxUint32},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.base.Merge(tt.delta); got != tt.want {
				t.Errorf("Merge() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVectorMergeCommutes(t *testing.T) {
	a := Vector{Sports: 7, Food: 2, Inconclusive: 1}
	b := Vector{Sports: 1, Travel: 9}

	if a.Merge(b) != b.Merge(a) {
		t.Errorf("Merge() is not commutative: %v vs %v", a.Merge(b), b.Merge(a))
	}
}

func TestAggregate(t *testing.T) {
	got := Aggregate([]Interest{Sports, Food, Sports})

	want := Vector{Sports: 2, Food: 1}
	if got != want {
		t.Errorf("Aggregate() = %v, want %v", got, want)
	}
}

func TestAggregateEmpty(t *testing.T) {
	if got := Aggregate(nil); !got.IsZero() {
		t.Errorf("Aggregate(nil) = %v, want the zero vector", got)
	}
}

func TestAggregatePermutationInvariant(t *testing.T) {
	perms := [][]Interest{
		{Sports, Food, Sports, Tech, Inconclusive},
		{Inconclusive, Tech, Sports, Sports, Food},
		{Food, Sports, Inconclusive, Sports, Tech},
	}

	want := Aggregate(perms[0])
	for i, p := range perms[1:] {
		if got := Aggregate(p); got != want {
			t.Errorf("Aggregate(perm %d) = %v, want %v", i+1, got, want)
		}
	}
}

func TestTallyShardInvariant(t *testing.T) {
	// Splitting a batch into shards and merging the tallies must produce
	// the same vector as tallying the whole batch at once, for any split.
	batch := []Interest{Sports, Food, Sports, Tech, News, Food, Sports}

	var whole Tally
	for _, c := range batch {
		whole.Add(c)
	}

	for split := 1; split < len(batch); split++ {
		var left, right Tally
		for _, c := range batch[:split] {
			left.Add(c)
		}
		for _, c := range batch[split:] {
			right.Add(c)
		}
		left.Merge(right)

		if left.Vector() != whole.Vector() {
			t.Errorf("split at %d: merged tally = %v, want %v", split, left.Vector(), whole.Vector())
		}
	}
}

func TestTallyIgnoresInvalid(t *testing.T) {
	var tally Tally
	tally.Add(Sports)
	tally.Add(Interest(200))

	want := Vector{Sports: 1}
	if got := tally.Vector(); got != want {
		t.Errorf("Vector() = %v, want %v", got, want)
	}
}

func TestTallyVectorClamps(t *testing.T) {
	var tally Tally
	tally[Sports] = math.MaxUint32 + 10

	if got := tally.Vector()[Sports]; got != math.MaxUint32 {
		t.Errorf("Vector()[Sports] = %d, want %d", got, uint32(math.MaxUint32))
	}
}

func TestVectorJSONRoundTrip(t *testing.T) {
	v := Vector{Sports: 2, Food: 1, RealEstate: 3}

	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal() unexpected error: %v", err)
	}

	// Every category appears as a named field, zero counts included.
	for _, i := range All() {
		if !strings.Contains(string(data), `"`+i.String()+`"`) {
			t.Errorf("Marshal() output missing field %q: %s", i.String(), data)
		}
	}

	var back Vector
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal() unexpected error: %v", err)
	}
	if back != v {
		t.Errorf("round trip = %v, want %v", back, v)
	}
}

func TestVectorUnmarshalPartial(t *testing.T) {
	var v Vector
	if err := json.Unmarshal([]byte(`{"sports": 4, "food": 1}`), &v); err != nil {
		t.Fatalf("Unmarshal() unexpected error: %v", err)
	}

	want := Vector{Sports: 4, Food: 1}
	if v != want {
		t.Errorf("Unmarshal() = %v, want %v", v, want)
	}
}
