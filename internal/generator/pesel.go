package generator

import (
	"fmt"
	"math/rand"
	"strconv"
)

type Gender int

const (
	GenderFemale Gender = iota
	GenderMale
)

func (g Gender) String() string {
	if g == GenderFemale {
		return "female"
	}
	return "male"
}

// PeselGenerator synthesizes 11-digit pseudo-PESEL identifiers for test
// customers. The randomness source is injected so identifier math stays
// deterministic under test.
type PeselGenerator struct {
	rnd *rand.Rand
}

func NewPeselGenerator(rnd *rand.Rand) *PeselGenerator {
	if rnd == nil {
		panic("random source cannot be nil")
	}
	return &PeselGenerator{rnd: rnd}
}

// Generate builds the identifier for sequence index i: two pseudo-year
// digits, two pseudo-month digits, two pseudo-day digits and a 5-digit
// discriminator derived from i.
func (g *PeselGenerator) Generate(i int) string {
	year := fmt.Sprintf("%02d", g.rnd.Intn(100))
	month := g.monthSegment()
	day := fmt.Sprintf("%02d", 1+g.rnd.Intn(31))
	return year + month + day + discriminator(i)
}

// monthSegment draws 1-32 and folds 13-20 down by ten. The fold is a
// legacy rule carried over from the source data set; values above 20
// pass through untouched, so the result lands in 1-12 or 21-32 and is
// never a value between 13 and 20.
func (g *PeselGenerator) monthSegment() string {
	month := 1 + g.rnd.Intn(32)
	if month >= 13 && month <= 20 {
		month -= 10
	}
	return fmt.Sprintf("%02d", month)
}

// discriminator zero-pads i to five digits. Past 99999 it truncates the
// decimal rendering instead, which can collide; the generator is only
// meant to drive up to 100000 synthetic records.
func discriminator(i int) string {
	if i < 99999 {
		return fmt.Sprintf("%05d", i)
	}
	return strconv.Itoa(i)[:5]
}

// GenderOf derives gender from the digit at position 9: even is female,
// odd is male. Name pools key off the same rule so names stay consistent
// with the identifier's parity.
func GenderOf(pesel string) Gender {
	if int(pesel[9]-'0')%2 == 0 {
		return GenderFemale
	}
	return GenderMale
}
