// Package combat resolves deterministic attacks on creatures. The player has
// no separate health pool: counterattacks wear down sanity instead.
package combat

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/grue/internal/game/action"
	"github.com/cory-johannsen/grue/internal/game/state"
	"github.com/cory-johannsen/grue/internal/game/world"
)

// Config holds the combat constants.
type Config struct {
	// BareHandDamage is dealt when attacking without a weapon.
	BareHandDamage int `mapstructure:"bare_hand_damage"`
	// CounterStrength is used by creatures with no authored strength.
	CounterStrength int `mapstructure:"counter_strength"`
}

// DefaultConfig returns the combat constants used when none are configured.
func DefaultConfig() Config {
	return Config{BareHandDamage: 1, CounterStrength: 5}
}

// AttackResult holds the outcome of a single attack.
type AttackResult struct {
	TargetID string
	// Damage is the damage dealt to the target.
	Damage int
	// TargetHealth is the target's health after the attack, floored at zero.
	TargetHealth int
	Killed       bool
	// Counter is the counterattack damage before armor.
	Counter int
	// Absorbed is the part of Counter stopped by armor.
	Absorbed int
	// SanityLoss is the sanity actually lost to the counterattack.
	SanityLoss int
}

// Engine resolves attacks.
type Engine struct {
	world  world.Reader
	cfg    Config
	logger *zap.Logger
}

// NewEngine creates an Engine.
//
// Precondition: w and logger must be non-nil.
func NewEngine(w world.Reader, cfg Config, logger *zap.Logger) *Engine {
	return &Engine{world: w, cfg: cfg, logger: logger}
}

// Armor returns the summed armor of every carried object. Worn objects are
// always carried.
//
// Postcondition: Returns >= 0.
func (e *Engine) Armor(gs *state.GameState) int {
	total := 0
	for _, id := range gs.Inventory {
		if obj, err := e.world.Object(id); err == nil && obj.Armor > 0 {
			total += obj.Armor
		}
	}
	return total
}

// Resolve computes and applies one attack of weaponID (or bare hands when
// empty) against targetID.
//
// Precondition: targetID is a creature in the current room; weaponID, if set, is carried.
// Postcondition: The target's health state is reduced. At or below zero the
// target leaves the room, its drops are placed in the room and its victory
// flag is set. Otherwise the counterattack is applied to sanity.
func (e *Engine) Resolve(target, weapon *world.GameObject, gs *state.GameState) AttackResult {
	r := AttackResult{TargetID: target.ID, Damage: e.cfg.BareHandDamage}
	if weapon != nil && weapon.Damage > 0 {
		r.Damage = weapon.Damage
	}

	health := int(gs.ObjectValue(target, world.StateHealth)) - r.Damage
	r.TargetHealth = max(health, 0)
	gs.SetObjectValue(target.ID, world.StateHealth, world.Value(r.TargetHealth))

	if health <= 0 {
		r.Killed = true
		gs.RemoveFromRoom(gs.CurrentRoom, target.ID)
		for _, id := range target.Drops {
			gs.Detach(id)
			gs.PlaceInRoom(gs.CurrentRoom, id)
		}
		if target.VictoryFlag != "" {
			gs.SetFlag(target.VictoryFlag, 1)
		}
		return r
	}

	r.Counter = target.Strength
	if r.Counter <= 0 {
		r.Counter = e.cfg.CounterStrength
	}
	r.Absorbed = min(e.Armor(gs), r.Counter)
	r.SanityLoss = -gs.AdjustSanity(-(r.Counter - r.Absorbed))
	return r
}

// Attack validates the participants, resolves the attack and narrates it.
func (e *Engine) Attack(targetID, weaponID string, gs *state.GameState) (action.Result, error) {
	target, err := e.world.Object(targetID)
	if err != nil {
		return action.Result{}, err
	}
	if target.Kind != world.KindCreature {
		return action.Fail(fmt.Sprintf("Attacking the %s would accomplish nothing.", target.Name)), nil
	}
	if loc := gs.LocationOf(target.ID); loc.Kind != state.InRoom || loc.ID != gs.CurrentRoom {
		return action.Fail(fmt.Sprintf("You don't see the %s here.", target.Name)), nil
	}
	var weapon *world.GameObject
	if weaponID != "" {
		if weapon, err = e.world.Object(weaponID); err != nil {
			return action.Result{}, err
		}
		if !gs.HasItem(weapon.ID) {
			return action.Fail(fmt.Sprintf("You don't have the %s.", weapon.Name)), nil
		}
	}

	r := e.Resolve(target, weapon, gs)
	e.logger.Debug("attack resolved",
		zap.String("target", r.TargetID),
		zap.Int("damage", r.Damage),
		zap.Int("target_health", r.TargetHealth),
		zap.Bool("killed", r.Killed),
		zap.Int("sanity_loss", r.SanityLoss),
	)

	res := action.OK(fmt.Sprintf("You strike the %s.", target.Name))
	res.AddDelta(action.DeltaObjectState, target.ID, string(world.StateHealth), r.TargetHealth)
	if r.Killed {
		res.Append(fmt.Sprintf("The %s collapses and is gone.", target.Name))
		for _, id := range target.Drops {
			if obj, err := e.world.Object(id); err == nil {
				res.Append(fmt.Sprintf("The %s clatters to the ground.", obj.Name))
			}
		}
		res.AddDelta(action.DeltaRoom, gs.CurrentRoom, "remove", 0)
		if target.VictoryFlag != "" {
			res.AddDelta(action.DeltaFlag, target.VictoryFlag, "", 1)
		}
		return res, nil
	}

	switch {
	case r.SanityLoss > 0:
		res.Append(fmt.Sprintf("The %s strikes back. Your nerve falters.", target.Name))
		res.SanityDelta = -r.SanityLoss
		res.AddDelta(action.DeltaSanity, "", "", -r.SanityLoss)
	case r.Absorbed > 0:
		res.Append(fmt.Sprintf("The %s strikes back, but your armor absorbs the blow.", target.Name))
	default:
		res.Append(fmt.Sprintf("The %s strikes back and misses.", target.Name))
	}
	return res, nil
}
