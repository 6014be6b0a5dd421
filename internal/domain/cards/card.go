package cards

import (
	"time"
)

// Mode selects how an action card executes
type Mode string

const (
	ModeAttackChain Mode = "attackChain"
	ModeSavedDamage Mode = "savedDamage"
)

// Condition is the shared condition language for damage and status
// application. Unknown strings fail closed everywhere they are evaluated.
type Condition string

const (
	ConditionNever        Condition = "never"
	ConditionOneSuccess   Condition = "oneSuccess"
	ConditionTwoSuccesses Condition = "twoSuccesses"
	ConditionRollValue    Condition = "rollValue"
)

// DamageTypeHeal marks a formula as healing; healing is never modified by
// vulnerability
const DamageTypeHeal = "heal"

// AttackChainConfig drives hit computation and the damage/status phases
type AttackChainConfig struct {
	FirstStat  string `json:"first_stat"`
	SecondStat string `json:"second_stat"`

	DamageCondition Condition `json:"damage_condition"`
	DamageFormula   string    `json:"damage_formula"`
	DamageType      string    `json:"damage_type"`
	DamageThreshold int       `json:"damage_threshold"`

	StatusCondition Condition `json:"status_condition"`
	StatusThreshold int       `json:"status_threshold"`
}

// SavedDamageConfig is used when Mode is savedDamage; there is no attack roll
// and no hit concept, every target receives the formula
type SavedDamageConfig struct {
	Formula     string `json:"formula"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// RepetitionConfig drives the repeat-N-times loop around the attack chain
type RepetitionConfig struct {
	// Count may be a plain number or a dice formula ("1d4")
	Count                  string `json:"count"`
	RepeatToHit            bool   `json:"repeat_to_hit"`
	CostOnRepetition       bool   `json:"cost_on_repetition"`
	FailOnFirstMiss        bool   `json:"fail_on_first_miss"`
	StatusApplicationLimit int    `json:"status_application_limit"`
}

// ActionCard is a composite, reusable action definition. Its embedded items
// are owned copies; editing the source item never propagates here.
type ActionCard struct {
	ID          string `json:"id"`
	OwnerID     string `json:"owner_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Img         string `json:"img"`

	Mode Mode `json:"mode"`

	EmbeddedItem    *ItemData   `json:"embedded_item,omitempty"`
	StatusEffects   []*ItemData `json:"status_effects,omitempty"`
	Transformations []*ItemData `json:"transformations,omitempty"`

	AttackChain AttackChainConfig `json:"attack_chain"`
	SavedDamage SavedDamageConfig `json:"saved_damage"`
	Repetition  RepetitionConfig  `json:"repetition"`

	SelfTarget          bool `json:"self_target"`
	EnforceStatusChoice bool `json:"enforce_status_choice"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsExecutable reports whether the card can run at all: it needs an embedded
// item, or the savedDamage mode which rolls nothing
func (c *ActionCard) IsExecutable() bool {
	if c.Mode == ModeSavedDamage {
		return c.SavedDamage.Formula != ""
	}
	return c.EmbeddedItem != nil
}

// StatusEffect returns the embedded status effect with the given ID, or nil
func (c *ActionCard) StatusEffect(id string) *ItemData {
	for _, e := range c.StatusEffects {
		if e.ID == id {
			return e
		}
	}
	return nil
}

// Transformation returns the embedded transformation with the given ID, or nil
func (c *ActionCard) Transformation(id string) *ItemData {
	for _, t := range c.Transformations {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// Clone returns a deep copy of the card and all embedded item data
func (c *ActionCard) Clone() *ActionCard {
	if c == nil {
		return nil
	}

	out := *c
	out.EmbeddedItem = c.EmbeddedItem.Clone()

	if c.StatusEffects != nil {
		out.StatusEffects = make([]*ItemData, len(c.StatusEffects))
		for i, e := range c.StatusEffects {
			out.StatusEffects[i] = e.Clone()
		}
	}

	if c.Transformations != nil {
		out.Transformations = make([]*ItemData, len(c.Transformations))
		for i, t := range c.Transformations {
			out.Transformations[i] = t.Clone()
		}
	}

	return &out
}
