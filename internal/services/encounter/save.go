package encounter

import (
	"context"
	"fmt"
	"sort"
	"strings"

	dnderr "github.com/tianyouyingfan/local-simple-dnd-tool/internal/errors"

	"github.com/tianyouyingfan/local-simple-dnd-tool/internal/dice"
	"github.com/tianyouyingfan/local-simple-dnd-tool/internal/domain/combat"
	"github.com/tianyouyingfan/local-simple-dnd-tool/internal/domain/conditions"
)

// SaveOutcome is the operator's verdict for one target of a save action
type SaveOutcome string

const (
	SaveOutcomeFail SaveOutcome = "fail" // full damage
	SaveOutcomeHalf SaveOutcome = "half" // ceiling of half
	SaveOutcomeNone SaveOutcome = "none" // no damage
)

// SaveInput describes one save-based action execution
type SaveInput struct {
	ActorUID   string
	ActionName string
	TargetUIDs []string
}

// SaveTarget is one target's entry in a save plan. Targets whose
// conditions force the save to fail are flagged not editable;
// Disadvantage is display-only, a hint for the operator rolling the
// save at the table.
type SaveTarget struct {
	UID          string
	Name         string
	Outcome      SaveOutcome
	Editable     bool
	Disadvantage bool
}

// SavePlan holds the rolled damage of a save action and the per-target
// outcomes awaiting operator confirmation.
type SavePlan struct {
	ActionName  string
	SaveAbility string
	SaveDC      int
	OnSuccess   string

	// rolled once for the whole effect, aggregated per damage type
	DamageByType map[string]int
	Targets      []*SaveTarget
}

// DamageTypes returns the plan's damage types in sorted order so logs
// and displays render the same way every run.
func (p *SavePlan) DamageTypes() []string {
	types := make([]string, 0, len(p.DamageByType))
	for damageType := range p.DamageByType {
		types = append(types, damageType)
	}
	sort.Strings(types)
	return types
}

// PrepareSave rolls a save action's damage components once and builds
// the outcome plan the operator confirms through ApplySaveOutcomes.
func (s *service) PrepareSave(ctx context.Context, encounterID string, input *SaveInput) (*SavePlan, error) {
	if input == nil {
		return nil, dnderr.InvalidArgument("input cannot be nil")
	}
	if len(input.TargetUIDs) == 0 {
		s.toast("select at least one target first")
		return nil, dnderr.InvalidArgument("no targets selected")
	}

	var plan *SavePlan
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
		if action.Type != combat.ActionTypeSave {
			return dnderr.InvalidArgumentf("action %s is not a save effect", action.Name)
		}
		if action.Cooldown > 0 {
			s.toast(fmt.Sprintf("%s is recharging, %d rounds left", action.Name, action.Cooldown))
			return dnderr.InvalidArgumentf("action %s is on cooldown", action.Name)
		}

		plan = &SavePlan{
			ActionName:   action.Name,
			SaveAbility:  action.SaveAbility,
			SaveDC:       action.SaveDC,
			OnSuccess:    action.OnSuccess,
			DamageByType: make(map[string]int),
		}

		for _, component := range action.Damages {
			if component.Dice == "" {
				continue
			}
			roll, err := dice.RollDamage(s.roller, component.Dice, false)
			if err != nil {
				return dnderr.Wrap(err, "damage roll failed")
			}
			plan.DamageByType[component.Type] += roll.Total
		}

		defaultOutcome := SaveOutcomeFail
		if action.OnSuccess == "half" {
			defaultOutcome = SaveOutcomeHalf
		}

		for _, targetUID := range input.TargetUIDs {
			target := enc.FindParticipant(targetUID)
			if target == nil {
				return dnderr.NotFoundf("target not found: %s", targetUID)
			}
			entry := &SaveTarget{
				UID:          target.UID,
				Name:         target.Name,
				Outcome:      defaultOutcome,
				Editable:     true,
				Disadvantage: conditions.IsSaveDisadvantage(target.Statuses),
			}
			if conditions.IsSaveAutoFail(target.Statuses, action.SaveAbility) {
				entry.Outcome = SaveOutcomeFail
				entry.Editable = false
			}
			plan.Targets = append(plan.Targets, entry)
		}

		enc.AppendLog(fmt.Sprintf("%s unleashes %s (DC %d %s)", actor.Name, action.Name, action.SaveDC, strings.ToUpper(action.SaveAbility)))

		if action.Recharge > 0 {
			action.Cooldown = action.Recharge
			enc.AppendLog(fmt.Sprintf("%s goes on cooldown for %d rounds", action.Name, action.Recharge))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return plan, nil
}

// ApplySaveOutcomes applies a confirmed plan: each target's damage
// profile transforms the per-type subtotals, the sum is scaled by the
// chosen outcome, and the result lands through the HP workflow.
func (s *service) ApplySaveOutcomes(ctx context.Context, encounterID string, plan *SavePlan) error {
	if plan == nil {
		return dnderr.InvalidArgument("plan cannot be nil")
	}
	return s.withEncounter(ctx, encounterID, func(enc *combat.Encounter) error {
		for _, entry := range plan.Targets {
			target := enc.FindParticipant(entry.UID)
			if target == nil {
				continue
			}

			totalModified := 0
			var parts []string
			for _, damageType := range plan.DamageTypes() {
				modified, _ := target.ModifiedDamage(plan.DamageByType[damageType], damageType)
				if modified > 0 {
					parts = append(parts, fmt.Sprintf("%d %s", modified, damageType))
				}
				totalModified += modified
			}

			var final int
			var verdict string
			switch entry.Outcome {
			case SaveOutcomeHalf:
				final = (totalModified + 1) / 2
				verdict = "half damage"
			case SaveOutcomeNone:
				final = 0
				verdict = "no damage"
			default:
				final = totalModified
				verdict = "save failed"
			}

			detail := strings.Join(parts, " + ")
			if detail == "" {
				detail = "none"
			}
			enc.AppendLog(fmt.Sprintf("%s: %s, takes %d damage (%s)", entry.Name, verdict, final, detail))

			if s.autoApplyDamage && final > 0 {
				target.ApplyHPDelta(-final)
				enc.AppendLog(fmt.Sprintf("%s is at %d/%d HP", target.Name, target.HPCurrent, target.HPMax))
			}
		}
		return nil
	})
}
