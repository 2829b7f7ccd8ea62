package conditions

import (
	"fmt"
	"strings"

	"github.com/tianyouyingfan/local-simple-dnd-tool/internal/dice"
	"github.com/tianyouyingfan/local-simple-dnd-tool/internal/prompts"
)

// The query functions below are pure reads over normalized status
// lists; they never mutate and hold no state of their own.

// Has reports whether any instance with the given key exists,
// optionally filtered by a predicate
func Has(statuses []*Instance, key Key, predicate func(*Instance) bool) bool {
	normalized := NormalizeKey(key)
	if normalized == "" {
		return false
	}
	for _, s := range statuses {
		if s == nil || s.Key != normalized {
			continue
		}
		if predicate == nil || predicate(s) {
			return true
		}
	}
	return false
}

// ExhaustionLevel returns the highest active exhaustion level, or 0
func ExhaustionLevel(statuses []*Instance) int {
	level := 0
	for _, s := range statuses {
		if s == nil || s.Key != Exhaustion {
			continue
		}
		if n := NormalizeExhaustionLevel(s.Meta.Level); n > level {
			level = n
		}
	}
	return level
}

// IsIncapacitated reports whether the participant cannot take actions
// or reactions at all
func IsIncapacitated(statuses []*Instance) bool {
	return Has(statuses, Incapacitated, nil) ||
		Has(statuses, Paralyzed, nil) ||
		Has(statuses, Petrified, nil) ||
		Has(statuses, Stunned, nil) ||
		Has(statuses, Unconscious, nil)
}

// AttackRollFlags derives the advantage and disadvantage sources an
// attack roll has from both combatants' conditions and the actor's
// exhaustion. Both flags can be true at once; the caller cancels them.
func AttackRollFlags(actor, target []*Instance) (hasAdv, hasDis bool) {
	if Has(actor, Invisible, nil) {
		hasAdv = true
	}

	if Has(actor, Blinded, nil) {
		hasDis = true
	}
	if Has(actor, Poisoned, nil) {
		hasDis = true
	}
	if Has(actor, Restrained, nil) {
		hasDis = true
	}
	if Has(actor, Prone, nil) {
		hasDis = true
	}
	if ExhaustionLevel(actor) >= 3 {
		hasDis = true
	}

	if Has(target, Invisible, nil) {
		hasDis = true
	}

	if Has(target, Blinded, nil) {
		hasAdv = true
	}
	if Has(target, Restrained, nil) {
		hasAdv = true
	}
	if Has(target, Paralyzed, nil) {
		hasAdv = true
	}
	if Has(target, Petrified, nil) {
		hasAdv = true
	}
	if Has(target, Stunned, nil) {
		hasAdv = true
	}
	if Has(target, Unconscious, nil) {
		hasAdv = true
	}

	return hasAdv, hasDis
}

// CombineRollFlags collapses advantage/disadvantage flags into a roll
// mode; both present cancel out to a normal roll
func CombineRollFlags(hasAdv, hasDis bool) dice.RollMode {
	switch {
	case hasAdv && hasDis:
		return dice.ModeNormal
	case hasAdv:
		return dice.ModeAdvantage
	case hasDis:
		return dice.ModeDisadvantage
	default:
		return dice.ModeNormal
	}
}

// AutoAttackRollMode derives the roll mode from static condition flags
// alone. Prompt-derived flags are merged by the resolver afterward.
func AutoAttackRollMode(actor, target []*Instance) dice.RollMode {
	return CombineRollFlags(AttackRollFlags(actor, target))
}

// AttackBlockedByCharm reports whether the actor may not target the
// given participant because that participant is the source of a charm
// effect on the actor.
func AttackBlockedByCharm(actorStatuses []*Instance, targetUID string) bool {
	if targetUID == "" {
		return false
	}
	return Has(actorStatuses, Charmed, func(s *Instance) bool {
		return s.SourceUID != "" && s.SourceUID == targetUID
	})
}

// FrightenedSources lists the distinct participants the actor is
// frightened of, skipping sourceless instances
func FrightenedSources(statuses []*Instance) []string {
	var out []string
	seen := make(map[string]bool)
	for _, s := range statuses {
		if s == nil || s.Key != Frightened || s.SourceUID == "" {
			continue
		}
		if !seen[s.SourceUID] {
			seen[s.SourceUID] = true
			out = append(out, s.SourceUID)
		}
	}
	return out
}

// CollectBeforeAttackPrompts produces the questions that must be
// answered before the attack roll: prone distance for the target, fear
// source line of sight for the actor. The answers feed the roll mode.
func CollectBeforeAttackPrompts(actor, target []*Instance, targetUID, targetName string) []*prompts.Prompt {
	var out []*prompts.Prompt

	if Has(target, Prone, nil) {
		out = append(out, &prompts.Prompt{
			Kind:      prompts.KindProneDistance,
			TargetUID: targetUID,
			Title:     "Prone target",
			Message:   fmt.Sprintf("Is %s within 5 feet of the attacker?", targetName),
			YesText:   "Yes (advantage)",
			NoText:    "No (disadvantage)",
		})
	}

	if sources := FrightenedSources(actor); len(sources) > 0 {
		out = append(out, &prompts.Prompt{
			Kind:       prompts.KindFrightenedLOS,
			SourceUIDs: sources,
			Title:      "Frightened attacker",
			Message:    "Is any fear source within line of sight?",
			YesText:    "Yes (disadvantage)",
			NoText:     "No (normal)",
		})
	}

	return out
}

// CollectAfterHitPrompts produces the questions asked between a
// confirmed hit and the damage roll: melee reach against a paralyzed or
// unconscious target upgrades the hit to a critical.
func CollectAfterHitPrompts(target []*Instance, targetUID, targetName string) []*prompts.Prompt {
	if Has(target, Paralyzed, nil) || Has(target, Unconscious, nil) {
		return []*prompts.Prompt{{
			Kind:      prompts.KindMeleeCritDistance,
			TargetUID: targetUID,
			Title:     "Critical range",
			Message:   fmt.Sprintf("Was %s hit from within 5 feet?", targetName),
			YesText:   "Yes (critical)",
			NoText:    "No (normal damage)",
		}}
	}
	return nil
}

// IsSaveAutoFail reports whether a saving throw of the given ability
// automatically fails: STR and DEX saves while paralyzed, petrified,
// stunned, or unconscious.
func IsSaveAutoFail(statuses []*Instance, ability string) bool {
	a := strings.ToLower(strings.TrimSpace(ability))
	if a != "str" && a != "dex" {
		return false
	}
	return Has(statuses, Paralyzed, nil) ||
		Has(statuses, Petrified, nil) ||
		Has(statuses, Stunned, nil) ||
		Has(statuses, Unconscious, nil)
}

// IsSaveDisadvantage reports whether the participant rolls saving
// throws at disadvantage (exhaustion level 3 or higher)
func IsSaveDisadvantage(statuses []*Instance) bool {
	return ExhaustionLevel(statuses) >= 3
}
