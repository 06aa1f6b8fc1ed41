package checkin

import (
	"context"
	"fmt"
	"math/rand/v2"
)

const (
	// MaxCodeAttempts bounds the 4+4 draws before falling back to a longer code.
	MaxCodeAttempts = 100

	codeLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	codeDigits  = "0123456789"
)

// ExistsFunc reports whether a candidate code is already assigned.
type ExistsFunc func(ctx context.Context, code string) (bool, error)

type CodeGenerator struct {
	intN func(n int) int
}

func NewCodeGenerator() *CodeGenerator {
	return &CodeGenerator{intN: rand.IntN}
}

// NewSeededCodeGenerator draws from a deterministic source.
func NewSeededCodeGenerator(seed1, seed2 uint64) *CodeGenerator {
	r := rand.New(rand.NewPCG(seed1, seed2))
	return &CodeGenerator{intN: r.IntN}
}

// Generate returns a code of 4 letters and 4 digits that exists reports as
// free. After MaxCodeAttempts collisions it returns a 6 letter + 6 digit code
// without checking it; the residual collision risk is left to the unique
// constraint on the attendees table.
func (g *CodeGenerator) Generate(ctx context.Context, exists ExistsFunc) (string, error) {
	for attempt := 0; attempt < MaxCodeAttempts; attempt++ {
		candidate := g.draw(4, 4)
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("(*CodeGenerator).Generate: %w", err)
		}
		if !taken {
			return candidate, nil
		}
	}
	return g.draw(6, 6), nil
}

func (g *CodeGenerator) draw(letters, digits int) string {
	b := make([]byte, 0, letters+digits)
	for i := 0; i < letters; i++ {
		b = append(b, codeLetters[g.intN(len(codeLetters))])
	}
	for i := 0; i < digits; i++ {
		b = append(b, codeDigits[g.intN(len(codeDigits))])
	}
	return string(b)
}
