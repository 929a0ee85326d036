// Package livecheck evaluates an in-progress lead form against the existing
// lead set, field by field, so the UI layer can warn the operator before a
// duplicate is saved. It provides the data only; rendering belongs to the
// caller.
package livecheck

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/lead-dedup/internal/dedup"
	"github.com/sells-group/lead-dedup/internal/model"
	"github.com/sells-group/lead-dedup/internal/normalize"
	"github.com/sells-group/lead-dedup/internal/similarity"
)

// Input is one snapshot of the form being edited. ExcludeID is the id of the
// lead under edit; that lead never matches itself.
type Input struct {
	Fields    map[model.FieldKind]string
	ExcludeID string
}

// FieldResult is the outcome for a single form field.
type FieldResult struct {
	IsDuplicate bool        `json:"is_duplicate"`
	Similarity  int         `json:"similarity"`
	Matched     *model.Lead `json:"matched,omitempty"`
}

// Result aggregates per-field outcomes. Fields are independent so the caller
// can show field-specific warnings.
type Result struct {
	IsDuplicate bool                            `json:"is_duplicate"`
	Fields      map[model.FieldKind]FieldResult `json:"fields"`
}

// Check synchronously compares candidate field values against the lead set.
// A field flags as duplicate when its best match reaches cfg.MinSimilarity;
// identifier fields only ever score 0 or 100, so they flag on exact canonical
// equality. Absent candidate fields are skipped.
func Check(input Input, leads []model.Lead, cfg dedup.Config) Result {
	result := Result{Fields: make(map[model.FieldKind]FieldResult)}

	for _, kind := range model.MatchFields {
		raw, present := input.Fields[kind]
		if !present {
			continue
		}
		candidate := normalize.Field(kind, raw)
		if candidate == "" {
			continue
		}

		fr := FieldResult{}
		for i := range leads {
			if leads[i].ID == input.ExcludeID {
				continue
			}
			score, ok := similarity.Score(kind, candidate, normalize.Lead(leads[i], kind))
			if !ok || score < fr.Similarity {
				continue
			}
			if score > fr.Similarity || fr.Matched == nil {
				fr.Similarity = score
				fr.Matched = &leads[i]
			}
		}
		fr.IsDuplicate = fr.Matched != nil && fr.Similarity >= cfg.MinSimilarity
		if !fr.IsDuplicate {
			fr.Matched = nil
		}
		result.Fields[kind] = fr
		if fr.IsDuplicate {
			result.IsDuplicate = true
		}
	}

	return result
}

// Checker debounces live checks. Every Schedule call restarts the quiet
// period; only the last scheduled input actually runs, and a check that is
// already in flight when newer input arrives has its result discarded.
// The consumer therefore only ever observes the result of the most recent
// input (last-input-wins).
type Checker struct {
	cfg      dedup.Config
	debounce time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64
	closed  bool
	results chan Result
}

// NewChecker creates a debounced checker. Results are delivered on Results();
// the channel holds only the freshest result.
func NewChecker(cfg dedup.Config, debounce time.Duration) *Checker {
	return &Checker{
		cfg:      cfg,
		debounce: debounce,
		results:  make(chan Result, 1),
	}
}

// Results returns the channel carrying the latest check outcome.
func (c *Checker) Results() <-chan Result {
	return c.results
}

// Schedule registers new form input and restarts the debounce timer. leads is
// the snapshot to compare against when the timer fires.
func (c *Checker) Schedule(input Input, leads []model.Lead) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	c.gen++
	gen := c.gen
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.debounce, func() {
		c.run(gen, input, leads)
	})
}

// run executes a scheduled check and publishes the result unless the input
// was superseded while the check was pending or running.
func (c *Checker) run(gen uint64, input Input, leads []model.Lead) {
	result := Check(input, leads, c.cfg)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || gen != c.gen {
		zap.L().Debug("livecheck: discarding superseded result")
		return
	}

	// Replace any unconsumed result so the channel always holds the freshest.
	select {
	case <-c.results:
	default:
	}
	c.results <- result
}

// Close stops the checker. Pending timers are cancelled and the results
// channel is closed.
func (c *Checker) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
	}
	close(c.results)
}
