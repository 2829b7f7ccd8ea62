package encounter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dnderr "github.com/tianyouyingfan/local-simple-dnd-tool/internal/errors"

	"github.com/tianyouyingfan/local-simple-dnd-tool/internal/domain/combat"
	"github.com/tianyouyingfan/local-simple-dnd-tool/internal/domain/conditions"
	"github.com/tianyouyingfan/local-simple-dnd-tool/internal/notify"
	"github.com/tianyouyingfan/local-simple-dnd-tool/internal/prompts"
)

func attackInput(target string) *AttackInput {
	return &AttackInput{
		ActorUID:   "hero",
		ActionName: "Longsword",
		TargetUIDs: []string{target},
		RollMode:   RollModeAuto,
	}
}

func TestExecuteAttackHit(t *testing.T) {
	f := newFixture(t, true, fighter("hero"), goblinFoe("gob"))
	// d20 roll 12 + 5 = 17 vs AC 15: hit; damage 1d8+3 rolls 6 -> 9
	f.roller.SetRolls([]int{12, 6})

	outcomes, err := f.svc.ExecuteAttack(context.Background(), f.encID, attackInput("gob"))
	require.NoError(t, err)
	require.Len(t, outcomes, 1)

	out := outcomes[0]
	assert.True(t, out.Hit)
	assert.False(t, out.Crit)
	assert.Equal(t, 17, out.ToHit)
	assert.Equal(t, 9, out.TotalFinalDamage)

	gob := f.encounter(t).FindParticipant("gob")
	assert.Equal(t, 0, gob.HPCurrent, "9 damage drops the 7 HP goblin")
	assert.True(t, gob.IsDefeated)

	notifications := f.recorder.Notifications()
	require.Len(t, notifications, 1)
	assert.Equal(t, notify.TypeHit, notifications[0].Type)
	assert.Equal(t, 9, notifications[0].TotalFinalDamage)
}

func TestExecuteAttackMiss(t *testing.T) {
	f := newFixture(t, true, fighter("hero"), goblinFoe("gob"))
	// 8 + 5 = 13 vs AC 15: miss
	f.roller.SetRolls([]int{8})

	outcomes, err := f.svc.ExecuteAttack(context.Background(), f.encID, attackInput("gob"))
	require.NoError(t, err)
	assert.False(t, outcomes[0].Hit)

	notifications := f.recorder.Notifications()
	require.Len(t, notifications, 1)
	assert.Equal(t, notify.TypeMiss, notifications[0].Type)
	assert.Equal(t, 7, f.encounter(t).FindParticipant("gob").HPCurrent)
}

func TestExecuteAttackNat20(t *testing.T) {
	f := newFixture(t, true, fighter("hero"), goblinFoe("gob"))
	// natural 20 always hits and doubles the dice: 2d8 rolls 6,4 + 3 = 13
	f.roller.SetRolls([]int{20, 6, 4})

	outcomes, err := f.svc.ExecuteAttack(context.Background(), f.encID, attackInput("gob"))
	require.NoError(t, err)

	out := outcomes[0]
	assert.True(t, out.Crit)
	assert.Equal(t, 13, out.TotalFinalDamage)

	notifications := f.recorder.Notifications()
	require.Len(t, notifications, 1)
	assert.Equal(t, notify.TypeCrit, notifications[0].Type)
	assert.Equal(t, notify.VariantSuccess, notifications[0].Variant)
}

func TestExecuteAttackNat1(t *testing.T) {
	f := newFixture(t, true, fighter("hero"), goblinFoe("gob"))
	// a natural 1 always misses, regardless of modifiers
	f.roller.SetRolls([]int{1})

	outcomes, err := f.svc.ExecuteAttack(context.Background(), f.encID, attackInput("gob"))
	require.NoError(t, err)
	assert.True(t, outcomes[0].Fumble)
	assert.False(t, outcomes[0].Hit)

	notifications := f.recorder.Notifications()
	require.Len(t, notifications, 1)
	assert.Equal(t, notify.TypeCrit, notifications[0].Type)
	assert.Equal(t, notify.VariantFailure, notifications[0].Variant)
}

func TestExecuteAttackResistance(t *testing.T) {
	f := newFixture(t, true, fighter("hero"), goblinFoe("gob"))
	require.NoError(t, f.svc.ApplyStatus(context.Background(), f.encID, "gob",
		&conditions.Instance{Key: conditions.Petrified, Rounds: 3}, ""))
	// 12 + 5 = 17: hit (petrified also grants advantage, forced normal here);
	// damage 7 + 3 = 10 halved to 5 by petrified all-resistance
	f.roller.SetRolls([]int{12, 7})

	input := attackInput("gob")
	input.RollMode = "normal"
	outcomes, err := f.svc.ExecuteAttack(context.Background(), f.encID, input)
	require.NoError(t, err)

	out := outcomes[0]
	assert.Equal(t, 5, out.TotalFinalDamage)
	require.Len(t, out.Damages, 1)
	assert.Equal(t, 10, out.Damages[0].RawAmount)
	assert.Equal(t, 5, out.Damages[0].FinalAmount)
	assert.Equal(t, notify.ModifierResistance, out.Damages[0].Modifier)
}

func TestExecuteAttackAdvantageFromConditions(t *testing.T) {
	f := newFixture(t, true, fighter("hero"), goblinFoe("gob"))
	require.NoError(t, f.svc.ApplyStatus(context.Background(), f.encID, "gob",
		&conditions.Instance{Key: conditions.Restrained, Rounds: 3}, ""))
	// advantage: rolls 4 and 16, keeps 16; 16 + 5 = 21 hits; damage 5 + 3 = 8
	f.roller.SetRolls([]int{4, 16, 5})

	outcomes, err := f.svc.ExecuteAttack(context.Background(), f.encID, attackInput("gob"))
	require.NoError(t, err)
	assert.Equal(t, 21, outcomes[0].ToHit)
	assert.True(t, outcomes[0].Hit)
}

func TestExecuteAttackPronePrompt(t *testing.T) {
	t.Run("within 5 feet attacks with advantage", func(t *testing.T) {
		f := newFixture(t, true, fighter("hero"), goblinFoe("gob"))
		require.NoError(t, f.svc.ApplyStatus(context.Background(), f.encID, "gob",
			&conditions.Instance{Key: conditions.Prone, Rounds: 3}, ""))
		f.broker.Answer(prompts.KindProneDistance, true)
		// advantage keeps the 18: 18 + 5 = 23 hit; damage 2 + 3 = 5
		f.roller.SetRolls([]int{3, 18, 2})

		outcomes, err := f.svc.ExecuteAttack(context.Background(), f.encID, attackInput("gob"))
		require.NoError(t, err)
		assert.Equal(t, 23, outcomes[0].ToHit)
		assert.Equal(t, []prompts.Kind{prompts.KindProneDistance}, f.broker.AskedKinds())
	})

	t.Run("beyond 5 feet attacks with disadvantage", func(t *testing.T) {
		f := newFixture(t, true, fighter("hero"), goblinFoe("gob"))
		require.NoError(t, f.svc.ApplyStatus(context.Background(), f.encID, "gob",
			&conditions.Instance{Key: conditions.Prone, Rounds: 3}, ""))
		f.broker.Answer(prompts.KindProneDistance, false)
		// disadvantage keeps the 3: miss
		f.roller.SetRolls([]int{3, 18})

		outcomes, err := f.svc.ExecuteAttack(context.Background(), f.encID, attackInput("gob"))
		require.NoError(t, err)
		assert.False(t, outcomes[0].Hit)
		assert.Equal(t, 8, outcomes[0].ToHit)
	})
}

func TestExecuteAttackMeleeCritPrompt(t *testing.T) {
	f := newFixture(t, true, fighter("hero"), goblinFoe("gob"))
	require.NoError(t, f.svc.ApplyStatus(context.Background(), f.encID, "gob",
		&conditions.Instance{Key: conditions.Paralyzed, Rounds: 3}, ""))
	f.broker.Answer(prompts.KindMeleeCritDistance, true)
	// paralyzed grants advantage: keeps 17, hit; confirmed within 5 feet
	// upgrades to crit, doubling the dice: 4 + 6 + 3 = 13
	f.roller.SetRolls([]int{17, 2, 4, 6})

	outcomes, err := f.svc.ExecuteAttack(context.Background(), f.encID, attackInput("gob"))
	require.NoError(t, err)

	out := outcomes[0]
	assert.True(t, out.Crit, "melee range hit on a paralyzed target crits")
	assert.Equal(t, 13, out.TotalFinalDamage)
}

func TestExecuteAttackCharmBlocksTarget(t *testing.T) {
	f := newFixture(t, true, fighter("hero"), goblinFoe("gob"))
	f.encounterMutate(t, func(enc *combat.Encounter) {
		hero := enc.FindParticipant("hero")
		hero.Statuses = append(hero.Statuses, &conditions.Instance{
			ID: "st-charm", Key: conditions.Charmed, Name: "魅惑 Charmed", Rounds: 3, SourceUID: "gob",
		})
	})

	outcomes, err := f.svc.ExecuteAttack(context.Background(), f.encID, attackInput("gob"))
	require.NoError(t, err)
	assert.True(t, outcomes[0].Skipped)
	assert.Equal(t, 7, f.encounter(t).FindParticipant("gob").HPCurrent)
	assert.Empty(t, f.recorder.Notifications(), "no roll happens for a skipped target")
}

func TestExecuteAttackCharmStacksPerSource(t *testing.T) {
	charmer := func(uid string) *combat.Participant {
		p := goblinFoe(uid)
		p.Actions = []*combat.Action{{
			Name: "Hypnotic Gaze", Type: combat.ActionTypeAttack, AttackBonus: 5,
			Damages:     []combat.DamageComponent{{Dice: "1d4", Type: "psychic"}},
			OnHitStatus: &combat.OnHitStatus{Name: "魅惑 Charmed", Rounds: 3, SaveAbility: "wis", SaveDC: 13},
		}}
		return p
	}
	f := newFixture(t, true, fighter("hero"), charmer("g1"), charmer("g2"))
	f.broker.Answer(prompts.KindSaveCheck, false)

	for _, attacker := range []string{"g1", "g2"} {
		f.roller.SetRolls([]int{15, 2})
		_, err := f.svc.ExecuteAttack(context.Background(), f.encID, &AttackInput{
			ActorUID: attacker, ActionName: "Hypnotic Gaze", TargetUIDs: []string{"hero"}, RollMode: RollModeAuto,
		})
		require.NoError(t, err)
	}

	hero := f.encounter(t).FindParticipant("hero")
	require.Len(t, hero.Statuses, 2, "each charmer imposes its own instance")
	assert.Equal(t, "g1", hero.Statuses[0].SourceUID)
	assert.Equal(t, "g2", hero.Statuses[1].SourceUID)
}

func TestExecuteAttackIncapacitatedActor(t *testing.T) {
	f := newFixture(t, true, fighter("hero"), goblinFoe("gob"))
	require.NoError(t, f.svc.ApplyStatus(context.Background(), f.encID, "hero",
		&conditions.Instance{Key: conditions.Stunned, Rounds: 2}, ""))

	_, err := f.svc.ExecuteAttack(context.Background(), f.encID, attackInput("gob"))
	assert.True(t, dnderr.IsInvalidArgument(err))
}

func TestExecuteAttackOnHitStatus(t *testing.T) {
	poisonBlade := func() *combat.Participant {
		p := fighter("hero")
		p.Actions = []*combat.Action{{
			Name: "Poison Blade", Type: combat.ActionTypeAttack, AttackBonus: 5,
			Damages:     []combat.DamageComponent{{Dice: "1d8+3", Type: "piercing"}},
			OnHitStatus: &combat.OnHitStatus{Name: "中毒 Poisoned", Rounds: 3, SaveAbility: "con", SaveDC: 13},
		}}
		return p
	}
	input := &AttackInput{ActorUID: "hero", ActionName: "Poison Blade", TargetUIDs: []string{"gob"}, RollMode: RollModeAuto}

	t.Run("failed save applies the status", func(t *testing.T) {
		f := newFixture(t, true, poisonBlade(), goblinFoe("gob"))
		f.broker.Answer(prompts.KindSaveCheck, false)
		f.roller.SetRolls([]int{15, 4})

		_, err := f.svc.ExecuteAttack(context.Background(), f.encID, input)
		require.NoError(t, err)

		gob := f.encounter(t).FindParticipant("gob")
		require.Len(t, gob.Statuses, 1)
		assert.Equal(t, conditions.Poisoned, gob.Statuses[0].Key)
		assert.Equal(t, 3, gob.Statuses[0].Rounds)
		assert.Equal(t, "hero", gob.Statuses[0].SourceUID)
	})

	t.Run("successful save resists it", func(t *testing.T) {
		f := newFixture(t, true, poisonBlade(), goblinFoe("gob"))
		f.broker.Answer(prompts.KindSaveCheck, true)
		f.roller.SetRolls([]int{15, 4})

		_, err := f.svc.ExecuteAttack(context.Background(), f.encID, input)
		require.NoError(t, err)
		assert.Empty(t, f.encounter(t).FindParticipant("gob").Statuses)
	})
}

func TestExecuteAttackRecharge(t *testing.T) {
	dragon := &combat.Participant{
		UID: "hero", Name: "hero", Type: combat.ParticipantTypePC,
		AC: 19, BaseMaxHP: 50, HPMax: 50, HPCurrent: 50,
		Actions: []*combat.Action{{
			Name: "Tail Swipe", Type: combat.ActionTypeAttack, AttackBonus: 10,
			Damages:  []combat.DamageComponent{{Dice: "2d8+8", Type: "bludgeoning"}},
			Recharge: 3,
		}},
	}
	f := newFixture(t, true, dragon, goblinFoe("gob"))
	f.roller.SetRolls([]int{10, 4, 5})

	input := &AttackInput{ActorUID: "hero", ActionName: "Tail Swipe", TargetUIDs: []string{"gob"}, RollMode: RollModeAuto}
	_, err := f.svc.ExecuteAttack(context.Background(), f.encID, input)
	require.NoError(t, err)

	hero := f.encounter(t).FindParticipant("hero")
	assert.Equal(t, 3, hero.Actions[0].Cooldown)

	// second use is rejected until the cooldown ticks down
	_, err = f.svc.ExecuteAttack(context.Background(), f.encID, input)
	assert.True(t, dnderr.IsInvalidArgument(err))
}

func TestExecuteAttackNoAutoApply(t *testing.T) {
	f := newFixture(t, false, fighter("hero"), goblinFoe("gob"))
	f.roller.SetRolls([]int{12, 6})

	outcomes, err := f.svc.ExecuteAttack(context.Background(), f.encID, attackInput("gob"))
	require.NoError(t, err)
	assert.Equal(t, 9, outcomes[0].TotalFinalDamage)
	assert.Equal(t, 7, f.encounter(t).FindParticipant("gob").HPCurrent, "HP untouched without auto-apply")
}

func TestExecuteAttackMalformedDice(t *testing.T) {
	p := fighter("hero")
	p.Actions[0].Damages = []combat.DamageComponent{{Dice: "garbage", Type: "slashing"}}
	f := newFixture(t, true, p, goblinFoe("gob"))
	f.roller.SetRolls([]int{15})

	outcomes, err := f.svc.ExecuteAttack(context.Background(), f.encID, attackInput("gob"))
	require.NoError(t, err, "malformed dice are tolerated as zero damage")
	assert.True(t, outcomes[0].Hit)
	assert.Equal(t, 0, outcomes[0].TotalFinalDamage)
}
