package merge

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/lead-dedup/internal/model"
)

// Repository is the external persistence collaborator. The orchestrator does
// not assume its operations are transactional across calls.
type Repository interface {
	UpdateLead(ctx context.Context, id string, fields model.MergedFieldSet) error
	DeleteLead(ctx context.Context, id string) error
}

// Mode selects the bulk action. Merge resolves fields and updates the kept
// lead before removing the rest; Delete skips field resolution and only
// removes the non-kept leads.
type Mode string

const (
	ModeMerge  Mode = "merge"
	ModeDelete Mode = "delete"
)

// State tracks the bulk run lifecycle.
type State string

const (
	StateIdle       State = "idle"
	StateSelected   State = "selected"
	StateConfirming State = "confirming"
	StateProcessing State = "processing"
	StateDone       State = "done"
)

// Result is the aggregate outcome of a bulk run. Every attempted group
// appears exactly once in Items and ProcessedGroupIDs whether it succeeded
// or failed, so the caller can drop all of them from the review queue and
// report an accurate tally.
type Result struct {
	Items             []model.BulkItemResult
	ProcessedGroupIDs []string
	Completed         int
	Errors            int
	Cancelled         bool
}

// ProgressFunc receives progress after every processed item.
type ProgressFunc func(model.BulkProgress)

// Orchestrator applies merge or delete selections across many groups,
// sequentially, with per-item error isolation. A single orchestrator serves a
// single review session; it is not safe for concurrent use.
type Orchestrator struct {
	repo    Repository
	limiter *rate.Limiter

	state      State
	mode       Mode
	groups     map[string]model.DuplicateGroup
	selections []model.MergeSelection
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithRateLimit paces repository calls at rps per second.
func WithRateLimit(rps float64) Option {
	return func(o *Orchestrator) {
		if rps > 0 {
			o.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		}
	}
}

// NewOrchestrator creates a bulk orchestrator in the idle state.
func NewOrchestrator(repo Repository, opts ...Option) *Orchestrator {
	o := &Orchestrator{repo: repo, state: StateIdle}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// State returns the current lifecycle state.
func (o *Orchestrator) State() State {
	return o.state
}

// Select registers the operator's group selections and transitions
// idle -> selected. Each selection is validated against its group; a missing
// kept id defaults to the group's first member.
func (o *Orchestrator) Select(groups []model.DuplicateGroup, selections []model.MergeSelection, mode Mode) error {
	if o.state != StateIdle {
		return eris.New(fmt.Sprintf("merge: select in state %s", o.state))
	}
	if mode != ModeMerge && mode != ModeDelete {
		return eris.New(fmt.Sprintf("merge: unknown mode %q", mode))
	}
	if len(selections) == 0 {
		return eris.New("merge: no groups selected")
	}

	byID := make(map[string]model.DuplicateGroup, len(groups))
	for _, g := range groups {
		byID[g.ID] = g
	}

	validated := make([]model.MergeSelection, 0, len(selections))
	for _, sel := range selections {
		group, found := byID[sel.GroupID]
		if !found {
			return eris.New(fmt.Sprintf("merge: unknown group %s", sel.GroupID))
		}
		v, err := Selection(group, sel)
		if err != nil {
			return err
		}
		validated = append(validated, v)
	}

	o.groups = byID
	o.selections = validated
	o.mode = mode
	o.state = StateSelected
	return nil
}

// Confirm transitions selected -> confirming. The UI shows its confirmation
// dialog between Select and Run.
func (o *Orchestrator) Confirm() error {
	if o.state != StateSelected {
		return eris.New(fmt.Sprintf("merge: confirm in state %s", o.state))
	}
	o.state = StateConfirming
	return nil
}

// Run processes the confirmed selections sequentially. One failing group
// never aborts the batch: its error is recorded and the run moves on.
// Progress is reported after every item. Cancellation via ctx is honored
// between items only; completed items keep their external effects and items
// not yet started are never applied.
func (o *Orchestrator) Run(ctx context.Context, onProgress ProgressFunc) (*Result, error) {
	if o.state != StateConfirming {
		return nil, eris.New(fmt.Sprintf("merge: run in state %s", o.state))
	}
	o.state = StateProcessing

	log := zap.L().With(zap.String("component", "bulk_merge"), zap.String("mode", string(o.mode)))
	log.Info("bulk run started", zap.Int("groups", len(o.selections)))

	result := &Result{}
	total := len(o.selections)

	for _, sel := range o.selections {
		if ctx.Err() != nil {
			result.Cancelled = true
			log.Warn("bulk run cancelled",
				zap.Int("completed", result.Completed),
				zap.Int("total", total),
			)
			break
		}

		item := o.processOne(ctx, sel)
		result.Items = append(result.Items, item)
		result.ProcessedGroupIDs = append(result.ProcessedGroupIDs, sel.GroupID)
		result.Completed++
		if item.Err != nil {
			result.Errors++
			log.Error("bulk item failed",
				zap.String("group_id", sel.GroupID),
				zap.Error(item.Err),
			)
		}

		if onProgress != nil {
			onProgress(model.BulkProgress{
				Completed: result.Completed,
				Total:     total,
				Errors:    result.Errors,
			})
		}
	}

	o.state = StateDone
	log.Info("bulk run finished",
		zap.Int("completed", result.Completed),
		zap.Int("errors", result.Errors),
		zap.Bool("cancelled", result.Cancelled),
	)
	return result, nil
}

// processOne applies a single selection. In merge mode the kept lead's update
// must succeed before any delete is issued: a failed update is never masked
// by successful deletes.
func (o *Orchestrator) processOne(ctx context.Context, sel model.MergeSelection) model.BulkItemResult {
	item := model.BulkItemResult{GroupID: sel.GroupID, KeptID: sel.KeepID}

	if o.mode == ModeMerge {
		group := o.groups[sel.GroupID]
		fields, err := Resolve(group, sel.KeepID, sel.Fields)
		if err != nil {
			item.Err = err
			return item
		}
		if err := o.call(ctx, func() error { return o.repo.UpdateLead(ctx, sel.KeepID, fields) }); err != nil {
			item.Err = eris.Wrapf(err, "merge: update kept lead %s", sel.KeepID)
			return item
		}
	}

	for _, id := range sel.RemoveIDs {
		if err := o.call(ctx, func() error { return o.repo.DeleteLead(ctx, id) }); err != nil {
			item.Err = eris.Wrapf(err, "merge: delete lead %s", id)
			return item
		}
		item.Removed++
	}

	return item
}

// call paces a repository operation through the rate limiter when one is set.
func (o *Orchestrator) call(ctx context.Context, fn func() error) error {
	if o.limiter != nil {
		if err := o.limiter.Wait(ctx); err != nil {
			return eris.Wrap(err, "merge: rate limit")
		}
	}
	return fn()
}
