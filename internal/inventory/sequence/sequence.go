// Package sequence issues human-readable, year-scoped codes such as
// ADJ-2025-007. Codes are gap tolerant; uniqueness is enforced by the
// storage layer, not here.
package sequence

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/vegatran/GaraManager-sub003/internal/inventory/domain"
)

var prefixes = map[domain.CodeKind]string{
	domain.CodeCheck:       "IK",
	domain.CodeAdjustment:  "ADJ",
	domain.CodeTransaction: "STK",
}

// generatedShape matches any year of a kind's code namespace, in any case.
var generatedShape = map[domain.CodeKind]*regexp.Regexp{}

func init() {
	for kind, p := range prefixes {
		generatedShape[kind] = regexp.MustCompile(`(?i)^` + regexp.QuoteMeta(p) + `-(\d{4})-`)
	}
}

// Generator derives the next codes from the greatest issued code.
type Generator struct {
	now func() time.Time
}

// NewGenerator creates a generator on the UTC wall clock
func NewGenerator() *Generator {
	return NewGeneratorWithClock(func() time.Time { return time.Now().UTC() })
}

// NewGeneratorWithClock creates a generator with a custom clock
func NewGeneratorWithClock(now func() time.Time) *Generator {
	return &Generator{now: now}
}

// Prefix returns e.g. "ADJ-2025-" for the current year.
func (g *Generator) Prefix(kind domain.CodeKind) (string, error) {
	p, ok := prefixes[kind]
	if !ok {
		return "", fmt.Errorf("unknown code kind %q", kind)
	}
	return fmt.Sprintf("%s-%d-", p, g.now().Year()), nil
}

// Next returns one new code.
func (g *Generator) Next(ctx context.Context, src domain.CodeRepository, kind domain.CodeKind) (string, error) {
	codes, err := g.Reserve(ctx, src, kind, 1)
	if err != nil {
		return "", err
	}
	return codes[0], nil
}

// Reserve returns n contiguous, strictly increasing codes with one lookup.
func (g *Generator) Reserve(ctx context.Context, src domain.CodeRepository, kind domain.CodeKind, n int) ([]string, error) {
	return g.reserveAfter(ctx, src, kind, "", n)
}

func (g *Generator) reserveAfter(ctx context.Context, src domain.CodeRepository, kind domain.CodeKind, floor string, n int) ([]string, error) {
	if n < 1 {
		return nil, fmt.Errorf("cannot reserve %d codes", n)
	}
	prefix, err := g.Prefix(kind)
	if err != nil {
		return nil, err
	}
	last, err := src.LastCode(ctx, kind, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to reserve %s codes: %w", kind, err)
	}

	start := Counter(last, prefix)
	if f := Counter(floor, prefix); f > start {
		start = f
	}
	codes := make([]string, n)
	for i := range codes {
		codes[i] = Format(prefix, start+i+1)
	}
	return codes, nil
}

// Format renders prefix plus a counter zero-padded to at least three digits.
func Format(prefix string, n int) string {
	return fmt.Sprintf("%s%03d", prefix, n)
}

// Counter parses the numeric tail of a generated code. It returns 0 for
// anything Format would not have produced under prefix.
func Counter(code, prefix string) int {
	n, _ := domain.ParseCodeCounter(code, prefix)
	return n
}

// ValidateManual accepts caller-chosen codes unless they enter the generated
// namespace of kind, for any year, in a shape Format would not produce.
func ValidateManual(kind domain.CodeKind, code string) error {
	shape, ok := generatedShape[kind]
	if !ok {
		return fmt.Errorf("unknown code kind %q", kind)
	}
	m := shape.FindStringSubmatch(code)
	if m == nil {
		return nil
	}
	prefix := fmt.Sprintf("%s-%s-", prefixes[kind], m[1])
	if _, ok := domain.ParseCodeCounter(code, prefix); ok {
		return nil
	}
	return domain.Validationf("code %s collides with generated codes, use %s followed by a number such as %s or leave it empty",
		code, prefix, Format(prefix, 1))
}
