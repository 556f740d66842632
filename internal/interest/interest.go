// Package interest defines the fixed interest taxonomy and the vector and
// metrics value types built on top of it.
package interest

import (
	"fmt"
	"strings"
)

// Interest is one category in the fixed classification taxonomy.
// Declaration order is the canonical total order used wherever a
// deterministic tie-break over categories is needed.
type Interest uint8

const (
	Animals Interest = iota
	Arts
	Autos
	Business
	Career
	Education
	Fashion
	Finance
	Food
	Government
	Hobbies
	Home
	News
	RealEstate
	Society
	Sports
	Tech
	Travel
	// Inconclusive marks domains that are present in the classification
	// table but explicitly tagged ambiguous. Domains absent from the table
	// are not classified at all and never map here.
	Inconclusive
)

// Count is the number of categories in the taxonomy.
const Count = int(Inconclusive) + 1

var names = [Count]string{
	Animals:      "animals",
	Arts:         "arts",
	Autos:        "autos",
	Business:     "business",
	Career:       "career",
	Education:    "education",
	Fashion:      "fashion",
	Finance:      "finance",
	Food:         "food",
	Government:   "government",
	Hobbies:      "hobbies",
	Home:         "home",
	News:         "news",
	RealEstate:   "real_estate",
	Society:      "society",
	Sports:       "sports",
	Tech:         "tech",
	Travel:       "travel",
	Inconclusive: "inconclusive",
}

// All returns every category in declaration order.
func All() []Interest {
	out := make([]Interest, Count)
	for i := range out {
		out[i] = Interest(i)
	}
	return out
}

// Valid reports whether i is a category defined by the taxonomy.
func (i Interest) Valid() bool {
	return int(i) < Count
}

// String returns the wire name of the category (e.g. "real_estate").
func (i Interest) String() string {
	if !i.Valid() {
		return fmt.Sprintf("interest(%d)", uint8(i))
	}
	return names[i]
}

// Parse returns the category with the given wire name, case-insensitively.
// Returns an error for names outside the taxonomy; the taxonomy is closed,
// so an unknown name is a configuration mistake, not a new category.
func Parse(name string) (Interest, error) {
	norm := strings.ToLower(strings.TrimSpace(name))
	for i, n := range names {
		if n == norm {
			return Interest(i), nil
		}
	}
	return 0, fmt.Errorf("unknown interest category %q", name)
}
