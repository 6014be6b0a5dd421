package combat

import (
	"github.com/tidewater-games/actioncard-bot/internal/dice"
	"github.com/tidewater-games/actioncard-bot/internal/domain/actors"
	"github.com/tidewater-games/actioncard-bot/internal/domain/cards"
)

// TargetHitResult is the per-target outcome of comparing one roll total
// against the target's two AC thresholds. Derived once per repetition.
type TargetHitResult struct {
	Target    *actors.Actor
	FirstHit  bool
	SecondHit bool
	BothHit   bool
	OneHit    bool
}

// DamageResult records damage applied to one target. Appended, never mutated.
type DamageResult struct {
	Target *actors.Actor
	Roll   *dice.RollResult
}

// StatusResult records a status effect applied to or removed from one target
type StatusResult struct {
	Target  *actors.Actor
	Effect  *cards.ItemData
	Removed bool
}

// TransformationResult records a transformation applied to one target
type TransformationResult struct {
	Target         *actors.Actor
	Transformation *cards.ItemData
}

// Terminal failure reasons for an execution
const (
	ReasonNoTargets = "noTargets"
)

// ExecutionResult is the aggregate outcome of one attack-chain pass
type ExecutionResult struct {
	Success bool
	Reason  string
	Mode    cards.Mode

	BaseRoll              *dice.RollResult
	TargetResults         []*TargetHitResult
	DamageResults         []*DamageResult
	StatusResults         []*StatusResult
	TransformationResults []*TransformationResult

	// StatusApplied carries the cumulative status-application count so a
	// configured limit can span a whole repetition run
	StatusApplied int

	// Dropped counts locked targets that no longer resolved
	Dropped int
}

// AllMissed reports whether no target was hit by either check
func (r *ExecutionResult) AllMissed() bool {
	for _, t := range r.TargetResults {
		if t.OneHit {
			return false
		}
	}
	return len(r.TargetResults) > 0
}
