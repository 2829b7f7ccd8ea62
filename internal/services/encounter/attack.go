package encounter

import (
	"context"
	"fmt"
	"strings"

	dnderr "github.com/tianyouyingfan/local-simple-dnd-tool/internal/errors"

	"github.com/tianyouyingfan/local-simple-dnd-tool/internal/dice"
	"github.com/tianyouyingfan/local-simple-dnd-tool/internal/domain/combat"
	"github.com/tianyouyingfan/local-simple-dnd-tool/internal/domain/conditions"
	"github.com/tianyouyingfan/local-simple-dnd-tool/internal/notify"
	"github.com/tianyouyingfan/local-simple-dnd-tool/internal/prompts"
)

// RollModeAuto lets the resolver derive the roll mode from conditions
// and battlefield prompts instead of a forced operator choice.
const RollModeAuto = "auto"

// AttackInput describes one attack action execution
type AttackInput struct {
	ActorUID   string
	ActionName string
	TargetUIDs []string

	// RollMode is "auto" or a forced dice.RollMode value
	RollMode string
}

// AttackOutcome is the per-target result of an attack resolution
type AttackOutcome struct {
	TargetUID        string
	TargetName       string
	Skipped          bool
	SkipReason       string
	Roll             int
	ToHit            int
	Hit              bool
	Crit             bool
	Fumble           bool
	Damages          []notify.DamageDetail
	TotalFinalDamage int
}

// ExecuteAttack resolves an attack action against the selected
// targets: selectability, roll mode, the to-hit roll, damage with the
// target's profile applied, notifications, and any on-hit status.
func (s *service) ExecuteAttack(ctx context.Context, encounterID string, input *AttackInput) ([]*AttackOutcome, error) {
	if input == nil {
		return nil, dnderr.InvalidArgument("input cannot be nil")
	}
	if len(input.TargetUIDs) == 0 {
		s.toast("select at least one target first")
		return nil, dnderr.InvalidArgument("no targets selected")
	}

	var outcomes []*AttackOutcome
	err := s.withEncounter(ctx, encounterID, func(enc *combat.Encounter) error {
		actor := enc.FindParticipant(input.ActorUID)
		if actor == nil {
			return dnderr.NotFoundf("actor not found: %s", input.ActorUID)
		}
		if actor.IsIncapacitated() {
			s.toast(fmt.Sprintf("%s is incapacitated and cannot act", actor.Name))
			return dnderr.InvalidArgumentf("%s is incapacitated", actor.Name)
		}

		action := actor.FindAction(input.ActionName)
		if action == nil {
			return dnderr.NotFoundf("action not found: %s", input.ActionName)
		}
		if action.Type != combat.ActionTypeAttack {
			return dnderr.InvalidArgumentf("action %s is not an attack", action.Name)
		}
		if action.Cooldown > 0 {
			s.toast(fmt.Sprintf("%s is recharging, %d rounds left", action.Name, action.Cooldown))
			return dnderr.InvalidArgumentf("action %s is on cooldown", action.Name)
		}

		enc.AppendLog(fmt.Sprintf("%s uses %s against %d target(s)", actor.Name, action.Name, len(input.TargetUIDs)))

		for _, targetUID := range input.TargetUIDs {
			target := enc.FindParticipant(targetUID)
			if target == nil {
				return dnderr.NotFoundf("target not found: %s", targetUID)
			}
			outcome, err := s.attackTarget(ctx, enc, actor, action, target, input.RollMode)
			if err != nil {
				return err
			}
			outcomes = append(outcomes, outcome)
		}

		if action.Recharge > 0 {
			action.Cooldown = action.Recharge
			enc.AppendLog(fmt.Sprintf("%s goes on cooldown for %d rounds", action.Name, action.Recharge))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return outcomes, nil
}

func (s *service) attackTarget(ctx context.Context, enc *combat.Encounter, actor *combat.Participant, action *combat.Action, target *combat.Participant, requestedMode string) (*AttackOutcome, error) {
	outcome := &AttackOutcome{TargetUID: target.UID, TargetName: target.Name}

	if conditions.AttackBlockedByCharm(actor.Statuses, target.UID) {
		outcome.Skipped = true
		outcome.SkipReason = "charmed by target"
		enc.AppendLog(fmt.Sprintf("%s cannot attack %s: charmed by them", actor.Name, target.Name))
		return outcome, nil
	}

	mode, err := s.resolveRollMode(ctx, requestedMode, actor, target)
	if err != nil {
		return nil, err
	}

	d20, err := dice.RollD20(s.roller, mode)
	if err != nil {
		return nil, dnderr.Wrap(err, "attack roll failed")
	}

	toHit := d20.RawTotal + action.AttackBonus
	hit := d20.IsCrit || toHit >= target.AC
	crit := d20.IsCrit

	outcome.Roll = d20.RawTotal
	outcome.ToHit = toHit
	outcome.Fumble = d20.IsFumble
	toHitRoll := formatToHit(d20.Rolls, action.AttackBonus)

	if d20.IsFumble {
		enc.AppendLog(fmt.Sprintf("%s attacks %s: %s = %d vs AC %d, fumble", actor.Name, target.Name, toHitRoll, toHit, target.AC))
		s.notify(&notify.Notification{
			Type: notify.TypeCrit, Variant: notify.VariantFailure,
			Attacker: actor.Name, Target: target.Name,
			ToHitRoll: toHitRoll, ToHitResult: toHit, TargetAC: target.AC,
		})
		return outcome, nil
	}

	if !hit {
		enc.AppendLog(fmt.Sprintf("%s attacks %s: %s = %d vs AC %d, miss", actor.Name, target.Name, toHitRoll, toHit, target.AC))
		s.notify(&notify.Notification{
			Type:     notify.TypeMiss,
			Attacker: actor.Name, Target: target.Name,
			ToHitRoll: toHitRoll, ToHitResult: toHit, TargetAC: target.AC,
		})
		return outcome, nil
	}

	// a non-natural-20 hit can still become a critical at melee range
	// against a paralyzed or unconscious target
	if !crit {
		for _, p := range conditions.CollectAfterHitPrompts(target.Statuses, target.UID, target.Name) {
			yes, err := s.broker.Ask(ctx, p)
			if err != nil {
				return nil, dnderr.Wrap(err, "prompt interrupted")
			}
			if yes {
				crit = true
			}
		}
	}

	outcome.Hit = true
	outcome.Crit = crit

	for _, component := range action.Damages {
		if component.Dice == "" {
			continue
		}
		roll, err := dice.RollDamage(s.roller, component.Dice, crit)
		if err != nil {
			return nil, dnderr.Wrap(err, "damage roll failed")
		}
		raw := roll.Total
		final, modifier := target.ModifiedDamage(raw, component.Type)
		outcome.Damages = append(outcome.Damages, notify.DamageDetail{
			RawAmount:   raw,
			FinalAmount: final,
			Type:        component.Type,
			Modifier:    notify.Modifier(modifier),
		})
		outcome.TotalFinalDamage += final
	}

	verdict := "hit"
	if crit {
		verdict = "critical hit"
	}
	enc.AppendLog(fmt.Sprintf("%s attacks %s: %s = %d vs AC %d, %s for %d damage",
		actor.Name, target.Name, toHitRoll, toHit, target.AC, verdict, outcome.TotalFinalDamage))

	if len(outcome.Damages) > 0 {
		notificationType := notify.TypeHit
		var variant notify.Variant
		if crit {
			notificationType = notify.TypeCrit
			variant = notify.VariantSuccess
		}
		s.notify(&notify.Notification{
			Type: notificationType, Variant: variant,
			Attacker: actor.Name, Target: target.Name,
			ToHitRoll: toHitRoll, ToHitResult: toHit, TargetAC: target.AC,
			Damages: outcome.Damages, TotalFinalDamage: outcome.TotalFinalDamage,
		})
	}

	if s.autoApplyDamage && outcome.TotalFinalDamage > 0 {
		target.ApplyHPDelta(-outcome.TotalFinalDamage)
		enc.AppendLog(fmt.Sprintf("%s takes %d damage, %d/%d HP", target.Name, outcome.TotalFinalDamage, target.HPCurrent, target.HPMax))
	} else if outcome.TotalFinalDamage > 0 {
		enc.AppendLog(fmt.Sprintf("%d damage pending manual application", outcome.TotalFinalDamage))
	}

	if action.OnHitStatus != nil {
		if err := s.applyOnHitStatus(ctx, enc, actor, action, target); err != nil {
			return nil, err
		}
	}

	return outcome, nil
}

// applyOnHitStatus applies the action's rider condition to the target.
// When the rider declares a saving throw the application is gated
// behind a save-check prompt and only lands on a failed save. The
// attacker is attached as source so charm and fear stack per source.
func (s *service) applyOnHitStatus(ctx context.Context, enc *combat.Encounter, actor *combat.Participant, action *combat.Action, target *combat.Participant) error {
	rider := action.OnHitStatus
	rounds := rider.Rounds
	if rounds < 1 {
		rounds = 1
	}

	if rider.SaveAbility != "" && rider.SaveDC > 0 {
		message := fmt.Sprintf("%s: %s save DC %d against %s. Did the save succeed?",
			target.Name, strings.ToUpper(rider.SaveAbility), rider.SaveDC, rider.Name)
		saved, err := s.broker.Ask(ctx, &prompts.Prompt{
			Kind:      prompts.KindSaveCheck,
			TargetUID: target.UID,
			Title:     "Saving throw",
			Message:   message,
			YesText:   "Save succeeded",
			NoText:    "Save failed",
		})
		if err != nil {
			return dnderr.Wrap(err, "prompt interrupted")
		}
		enc.AppendLog(fmt.Sprintf("%s's %s save (DC %d): %s", target.Name, strings.ToUpper(rider.SaveAbility), rider.SaveDC, saveVerdict(saved)))
		if saved {
			return nil
		}
	}

	return s.applyStatusToTarget(ctx, enc, target, &conditions.Instance{
		Name:   rider.Name,
		Rounds: rounds,
	}, actor.UID, true)
}

func saveVerdict(saved bool) string {
	if saved {
		return "success"
	}
	return "failure"
}

// resolveRollMode turns the operator's choice into a concrete roll
// mode. A forced mode is used verbatim. Auto mode merges the static
// condition flags with prompt answers for facts the engine cannot
// see — melee distance to a prone target and line of sight to a fear
// source — then cancels advantage against disadvantage.
func (s *service) resolveRollMode(ctx context.Context, requested string, actor, target *combat.Participant) (dice.RollMode, error) {
	switch dice.RollMode(requested) {
	case dice.ModeAdvantage:
		return dice.ModeAdvantage, nil
	case dice.ModeDisadvantage:
		return dice.ModeDisadvantage, nil
	case dice.ModeNormal:
		return dice.ModeNormal, nil
	}

	hasAdv, hasDis := conditions.AttackRollFlags(actor.Statuses, target.Statuses)

	for _, p := range conditions.CollectBeforeAttackPrompts(actor.Statuses, target.Statuses, target.UID, target.Name) {
		yes, err := s.broker.Ask(ctx, p)
		if err != nil {
			return dice.ModeNormal, dnderr.Wrap(err, "prompt interrupted")
		}
		switch p.Kind {
		case prompts.KindProneDistance:
			// within 5 feet of a prone target: advantage; beyond: disadvantage
			if yes {
				hasAdv = true
			} else {
				hasDis = true
			}
		case prompts.KindFrightenedLOS:
			if yes {
				hasDis = true
			}
		}
	}

	return conditions.CombineRollFlags(hasAdv, hasDis), nil
}
