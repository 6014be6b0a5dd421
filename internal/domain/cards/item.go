package cards

import (
	errs "github.com/tidewater-games/actioncard-bot/internal/errors"
)

// ItemKind identifies the kind of item an ItemData blob describes.
// The set is closed; code that branches on kind switches exhaustively
// and treats anything else as invalid.
type ItemKind string

const (
	KindCombatPower    ItemKind = "combatPower"
	KindGear           ItemKind = "gear"
	KindFeature        ItemKind = "feature"
	KindStatus         ItemKind = "status"
	KindTransformation ItemKind = "transformation"
	KindActionCard     ItemKind = "actionCard"
)

// RollType describes how an item resolves when triggered. RollTypeNone is a
// deliberate sentinel meaning "automatic two successes", not absence of data.
type RollType string

const (
	RollTypeRoll RollType = "roll"
	RollTypeFlat RollType = "flat"
	RollTypeNone RollType = "none"
)

// StatusOperation says whether a status-kind item adds or strips its effect
// from a hit target
type StatusOperation string

const (
	StatusApply  StatusOperation = "apply"
	StatusRemove StatusOperation = "remove"
)

// EffectChange is a single attribute modification carried by a gear or
// status item
type EffectChange struct {
	Key   string `json:"key"`
	Mode  int    `json:"mode"`
	Value string `json:"value"`
}

// ResourceCost is what triggering an item costs the acting actor
type ResourceCost struct {
	Power int `json:"power"`
}

// ItemData is a full, owned copy of an item's data. Embedding stores one of
// these by value copy, never by reference to the source item.
type ItemData struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Kind        ItemKind `json:"kind"`
	Img         string   `json:"img"`
	Description string   `json:"description"`

	RollType RollType `json:"roll_type"`
	Formula  string   `json:"formula"`
	RollStat string   `json:"roll_stat"`

	Changes []EffectChange `json:"changes"`
	Cost    ResourceCost   `json:"cost"`

	// Gear stock tracking. Quantity is only meaningful when TracksQuantity
	// is set.
	TracksQuantity bool `json:"tracks_quantity"`
	Quantity       int  `json:"quantity"`

	// Status items only
	StatusOperation StatusOperation `json:"status_operation,omitempty"`
}

// Clone returns a deep copy with no shared storage
func (i *ItemData) Clone() *ItemData {
	if i == nil {
		return nil
	}

	out := *i
	if i.Changes != nil {
		out.Changes = make([]EffectChange, len(i.Changes))
		copy(out.Changes, i.Changes)
	}
	return &out
}

// ValidateForEmbedding reports whether an item of this kind may become an
// action card's embedded rollable item
func (k ItemKind) ValidateForEmbedding() error {
	switch k {
	case KindCombatPower, KindGear, KindFeature:
		return nil
	case KindStatus, KindTransformation, KindActionCard:
		return errs.InvalidArgumentf("item kind '%s' cannot be embedded as a rollable item", k)
	default:
		return errs.InvalidArgumentf("unknown item kind '%s'", k)
	}
}

// ValidateAsStatusEffect reports whether an item of this kind may be attached
// as an embedded status effect
func (k ItemKind) ValidateAsStatusEffect() error {
	switch k {
	case KindStatus, KindGear:
		return nil
	case KindCombatPower, KindFeature, KindTransformation, KindActionCard:
		return errs.InvalidArgumentf("item kind '%s' cannot be attached as a status effect", k)
	default:
		return errs.InvalidArgumentf("unknown item kind '%s'", k)
	}
}

// ValidateAsTransformation reports whether an item of this kind may be
// attached as an embedded transformation
func (k ItemKind) ValidateAsTransformation() error {
	switch k {
	case KindTransformation:
		return nil
	case KindCombatPower, KindGear, KindFeature, KindStatus, KindActionCard:
		return errs.InvalidArgumentf("item kind '%s' cannot be attached as a transformation", k)
	default:
		return errs.InvalidArgumentf("unknown item kind '%s'", k)
	}
}
