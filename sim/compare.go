package sim

import (
	"context"
	"fmt"

	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/reference"
	"github.com/sarchlab/cachesim/trace"
)

// Comparison holds the outcome of running the counter model and the true
// LRU reference model on the same trace.
type Comparison struct {
	Model     Result               `json:"model"`
	Reference reference.Statistics `json:"reference"`

	// Disagreements counts accesses where one model hit and the other
	// missed.
	Disagreements uint64 `json:"disagreements"`

	// FirstDisagreement is the first record the models disagreed on.
	FirstDisagreement *trace.Record `json:"first_disagreement,omitempty"`
}

// Compare runs both models in lock step over the reader.
func Compare(
	ctx context.Context,
	config cache.Config,
	r *trace.Reader,
	opts ...Option,
) (Comparison, error) {
	s := New(config, opts...)
	ref := reference.New(config)

	var cmp Comparison

	for r.Next() {
		if err := ctx.Err(); err != nil {
			return cmp.finish(s, ref), err
		}

		rec := r.Record()

		res, ok := s.Process(rec)
		s.tick()

		if !ok {
			continue
		}

		refHit := ref.Access(rec.Kind, rec.Address)
		if refHit != (res == cache.Hit) {
			cmp.Disagreements++

			if cmp.FirstDisagreement == nil {
				first := rec
				cmp.FirstDisagreement = &first
			}
		}
	}

	s.flushProgress()

	if err := r.Err(); err != nil {
		return cmp.finish(s, ref), fmt.Errorf("trace stopped early: %w", err)
	}

	return cmp.finish(s, ref), nil
}

func (c Comparison) finish(s *Simulator, ref *reference.Cache) Comparison {
	c.Model = s.Result()
	c.Reference = ref.Stats()

	return c
}
