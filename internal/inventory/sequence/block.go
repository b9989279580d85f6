package sequence

import (
	"context"

	"github.com/vegatran/GaraManager-sub003/internal/inventory/domain"
)

// Block hands out codes reserved up front. Codes taken by work that is later
// rolled back are simply skipped.
type Block struct {
	gen   *Generator
	kind  domain.CodeKind
	codes []string
	next  int
}

// ReserveBlock reserves n codes for later Take calls. n may be zero.
func (g *Generator) ReserveBlock(ctx context.Context, src domain.CodeRepository, kind domain.CodeKind, n int) (*Block, error) {
	b := &Block{gen: g, kind: kind}
	if n > 0 {
		codes, err := g.Reserve(ctx, src, kind, n)
		if err != nil {
			return nil, err
		}
		b.codes = codes
	}
	return b, nil
}

// Take returns the next n codes, extending the block past its last code if
// it runs dry.
func (b *Block) Take(ctx context.Context, src domain.CodeRepository, n int) ([]string, error) {
	if missing := b.next + n - len(b.codes); missing > 0 {
		var floor string
		if len(b.codes) > 0 {
			floor = b.codes[len(b.codes)-1]
		}
		more, err := b.gen.reserveAfter(ctx, src, b.kind, floor, missing)
		if err != nil {
			return nil, err
		}
		b.codes = append(b.codes, more...)
	}
	out := b.codes[b.next : b.next+n]
	b.next += n
	return out, nil
}

// Remaining reports how many reserved codes are still unused.
func (b *Block) Remaining() int {
	return len(b.codes) - b.next
}
