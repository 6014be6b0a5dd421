package actors

import (
	"strings"

	"github.com/tidewater-games/actioncard-bot/internal/dice"
	"github.com/tidewater-games/actioncard-bot/internal/domain/cards"
	errs "github.com/tidewater-games/actioncard-bot/internal/errors"
)

// DefaultAC is the armor-class threshold assumed when a stat or its AC total
// is missing from an actor's roll data
const DefaultAC = 11

// ACBlock is the derived armor-class value for one stat
type ACBlock struct {
	Total int `json:"total"`
}

// StatBlock is one derived ability entry in an actor's roll data
type StatBlock struct {
	Total int     `json:"total"`
	AC    ACBlock `json:"ac"`
}

// HitPoints tracks current and max HP
type HitPoints struct {
	Value int `json:"value"`
	Max   int `json:"max"`
}

// Resources are the actor's spendable pools
type Resources struct {
	Power   int       `json:"power"`
	Resolve int       `json:"resolve"`
	HP      HitPoints `json:"hp"`
}

// RollData is the derived data snapshot used when resolving rolls against an
// actor: ability totals keyed by stat id plus the vulnerability total
type RollData struct {
	Stats         map[string]*StatBlock
	Vulnerability int
}

// Actor is a targetable game actor with derived stats, resource pools, and
// active status effects
type Actor struct {
	ID   string `json:"id"`
	UUID string `json:"uuid"`
	Name string `json:"name"`
	Img  string `json:"img"`

	Stats         map[string]*StatBlock `json:"stats"`
	Vulnerability int                   `json:"vulnerability"`
	Resources     Resources             `json:"resources"`

	// Effects holds applied status-effect copies, owned by this actor
	Effects []*cards.ItemData `json:"effects,omitempty"`
}

// RollData returns the derived snapshot used for hit and damage resolution
func (a *Actor) RollData() *RollData {
	return &RollData{
		Stats:         a.Stats,
		Vulnerability: a.Vulnerability,
	}
}

// StatAC returns the AC total for the named stat, or DefaultAC when the stat
// or its AC total is absent
func (a *Actor) StatAC(stat string) int {
	if stat == "" {
		return DefaultAC
	}
	block, ok := a.Stats[stat]
	if !ok || block == nil || block.AC.Total == 0 {
		return DefaultAC
	}
	return block.AC.Total
}

// DamageOptions configures a damage resolution against this actor
type DamageOptions struct {
	Formula    string
	DamageType string
	SourceName string
}

// DamageResolve evaluates the formula and applies the result to this actor's
// hit points. Healing formulas restore HP; everything else removes it.
func (a *Actor) DamageResolve(roller dice.Roller, opts *DamageOptions) (*dice.RollResult, error) {
	if opts == nil {
		return nil, errs.InvalidArgument("damage options cannot be nil")
	}
	if opts.Formula == "" {
		return nil, errs.InvalidArgument("damage formula is required")
	}

	roll, err := roller.RollFormula(opts.Formula)
	if err != nil {
		return nil, errs.Wrapf(err, "failed to resolve damage for '%s'", a.Name)
	}

	if opts.DamageType == cards.DamageTypeHeal {
		a.Resources.HP.Value += roll.Total
		if a.Resources.HP.Value > a.Resources.HP.Max {
			a.Resources.HP.Value = a.Resources.HP.Max
		}
	} else {
		a.Resources.HP.Value -= roll.Total
		if a.Resources.HP.Value < 0 {
			a.Resources.HP.Value = 0
		}
	}

	return roll, nil
}

// Update applies a dotted-path partial update, the host-document convention
// for mutating persisted actor state. Unknown paths are rejected.
func (a *Actor) Update(patch map[string]any) error {
	for path, raw := range patch {
		value, ok := asInt(raw)

		switch path {
		case "name":
			s, isStr := raw.(string)
			if !isStr {
				return errs.InvalidArgumentf("invalid value for '%s'", path)
			}
			a.Name = s
			continue
		case "resources.power":
			if !ok {
				return errs.InvalidArgumentf("invalid value for '%s'", path)
			}
			a.Resources.Power = value
		case "resources.resolve":
			if !ok {
				return errs.InvalidArgumentf("invalid value for '%s'", path)
			}
			a.Resources.Resolve = value
		case "resources.hp.value":
			if !ok {
				return errs.InvalidArgumentf("invalid value for '%s'", path)
			}
			a.Resources.HP.Value = value
		case "resources.hp.max":
			if !ok {
				return errs.InvalidArgumentf("invalid value for '%s'", path)
			}
			a.Resources.HP.Max = value
		default:
			return errs.InvalidArgumentf("unsupported update path '%s'", path)
		}
	}
	return nil
}

// AddEffect attaches an owned status-effect copy to this actor
func (a *Actor) AddEffect(effect *cards.ItemData) error {
	if effect == nil || effect.ID == "" {
		return errs.InvalidArgument("effect must have an ID")
	}
	a.Effects = append(a.Effects, effect)
	return nil
}

// RemoveEffectsByName strips all applied effects with the given name and
// returns how many were removed
func (a *Actor) RemoveEffectsByName(name string) int {
	removed := 0
	kept := a.Effects[:0]
	for _, e := range a.Effects {
		if strings.EqualFold(e.Name, name) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	a.Effects = kept
	return removed
}

// HasEffect reports whether an effect with the given name is applied
func (a *Actor) HasEffect(name string) bool {
	for _, e := range a.Effects {
		if strings.EqualFold(e.Name, name) {
			return true
		}
	}
	return false
}

// Clone returns a deep copy with no shared storage
func (a *Actor) Clone() *Actor {
	if a == nil {
		return nil
	}

	out := *a

	if a.Stats != nil {
		out.Stats = make(map[string]*StatBlock, len(a.Stats))
		for id, block := range a.Stats {
			copied := *block
			out.Stats[id] = &copied
		}
	}

	if a.Effects != nil {
		out.Effects = make([]*cards.ItemData, len(a.Effects))
		for i, e := range a.Effects {
			out.Effects[i] = e.Clone()
		}
	}

	return &out
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
