package encounter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dnderr "github.com/tianyouyingfan/local-simple-dnd-tool/internal/errors"

	"github.com/tianyouyingfan/local-simple-dnd-tool/internal/domain/combat"
	"github.com/tianyouyingfan/local-simple-dnd-tool/internal/domain/conditions"
)

func breather(uid string) *combat.Participant {
	return &combat.Participant{
		UID: uid, Name: uid, Type: combat.ParticipantTypeMonster,
		AC: 19, BaseMaxHP: 100, HPMax: 100, HPCurrent: 100,
		Actions: []*combat.Action{{
			Name: "Fire Breath", Type: combat.ActionTypeSave,
			SaveAbility: "dex", SaveDC: 15, OnSuccess: "half",
			Damages:  []combat.DamageComponent{{Dice: "4d6", Type: "fire"}},
			Recharge: 5,
		}},
	}
}

func victim(uid string) *combat.Participant {
	return &combat.Participant{
		UID: uid, Name: uid, Type: combat.ParticipantTypePC,
		AC: 14, BaseMaxHP: 40, HPMax: 40, HPCurrent: 40,
	}
}

func TestPrepareSave(t *testing.T) {
	f := newFixture(t, true, breather("dragon"), victim("a"), victim("b"))
	// 4d6 rolls 3+5+2+6 = 16 fire
	f.roller.SetRolls([]int{3, 5, 2, 6})

	plan, err := f.svc.PrepareSave(context.Background(), f.encID, &SaveInput{
		ActorUID: "dragon", ActionName: "Fire Breath", TargetUIDs: []string{"a", "b"},
	})
	require.NoError(t, err)

	assert.Equal(t, 16, plan.DamageByType["fire"])
	assert.Equal(t, 15, plan.SaveDC)
	require.Len(t, plan.Targets, 2)
	for _, target := range plan.Targets {
		assert.Equal(t, SaveOutcomeHalf, target.Outcome, "half-on-success defaults to half")
		assert.True(t, target.Editable)
		assert.False(t, target.Disadvantage)
	}

	assert.Equal(t, 5, f.encounter(t).FindParticipant("dragon").Actions[0].Cooldown, "recharge applies on use")
}

func TestPrepareSaveAutoFail(t *testing.T) {
	f := newFixture(t, true, breather("dragon"), victim("a"))
	require.NoError(t, f.svc.ApplyStatus(context.Background(), f.encID, "a",
		&conditions.Instance{Key: conditions.Unconscious, Rounds: 2}, ""))
	f.roller.SetRolls([]int{3, 5, 2, 6})

	plan, err := f.svc.PrepareSave(context.Background(), f.encID, &SaveInput{
		ActorUID: "dragon", ActionName: "Fire Breath", TargetUIDs: []string{"a"},
	})
	require.NoError(t, err)

	require.Len(t, plan.Targets, 1)
	assert.Equal(t, SaveOutcomeFail, plan.Targets[0].Outcome, "DEX saves auto-fail while unconscious")
	assert.False(t, plan.Targets[0].Editable)
}

func TestPrepareSaveDisadvantageHint(t *testing.T) {
	f := newFixture(t, true, breather("dragon"), victim("a"))
	require.NoError(t, f.svc.ApplyStatus(context.Background(), f.encID, "a",
		&conditions.Instance{Key: conditions.Exhaustion, Rounds: 3, Meta: conditions.Meta{Level: 3}}, ""))
	f.roller.SetRolls([]int{3, 5, 2, 6})

	plan, err := f.svc.PrepareSave(context.Background(), f.encID, &SaveInput{
		ActorUID: "dragon", ActionName: "Fire Breath", TargetUIDs: []string{"a"},
	})
	require.NoError(t, err)

	require.Len(t, plan.Targets, 1)
	assert.True(t, plan.Targets[0].Disadvantage, "exhaustion level 3 weakens saving throws")
	assert.True(t, plan.Targets[0].Editable)
}

func TestApplySaveOutcomes(t *testing.T) {
	f := newFixture(t, true, breather("dragon"), victim("a"), victim("b"), victim("c"))
	f.roller.SetRolls([]int{3, 5, 2, 6}) // 16 fire

	plan, err := f.svc.PrepareSave(context.Background(), f.encID, &SaveInput{
		ActorUID: "dragon", ActionName: "Fire Breath", TargetUIDs: []string{"a", "b", "c"},
	})
	require.NoError(t, err)

	plan.Targets[0].Outcome = SaveOutcomeFail
	plan.Targets[1].Outcome = SaveOutcomeHalf
	plan.Targets[2].Outcome = SaveOutcomeNone

	require.NoError(t, f.svc.ApplySaveOutcomes(context.Background(), f.encID, plan))

	enc := f.encounter(t)
	assert.Equal(t, 24, enc.FindParticipant("a").HPCurrent, "fail takes the full 16")
	assert.Equal(t, 32, enc.FindParticipant("b").HPCurrent, "half takes ceil(16/2) = 8")
	assert.Equal(t, 40, enc.FindParticipant("c").HPCurrent, "none takes nothing")
}

func TestApplySaveOutcomesProfileTransform(t *testing.T) {
	f := newFixture(t, true, breather("dragon"), victim("a"))
	f.encounterMutate(t, func(enc *combat.Encounter) {
		enc.FindParticipant("a").Profile.Resistances = []string{"fire"}
	})
	f.roller.SetRolls([]int{3, 5, 2, 5}) // 15 fire

	plan, err := f.svc.PrepareSave(context.Background(), f.encID, &SaveInput{
		ActorUID: "dragon", ActionName: "Fire Breath", TargetUIDs: []string{"a"},
	})
	require.NoError(t, err)

	plan.Targets[0].Outcome = SaveOutcomeHalf
	require.NoError(t, f.svc.ApplySaveOutcomes(context.Background(), f.encID, plan))

	// 15 resisted to 7, then halved and rounded up to 4
	assert.Equal(t, 36, f.encounter(t).FindParticipant("a").HPCurrent)
}

func TestApplySaveOutcomesMultiTypeDetail(t *testing.T) {
	dragon := breather("dragon")
	dragon.Actions[0].Damages = []combat.DamageComponent{
		{Dice: "2d6", Type: "fire"},
		{Dice: "2d4", Type: "acid"},
	}
	f := newFixture(t, true, dragon, victim("a"))
	f.roller.SetRolls([]int{4, 5, 2, 3}) // 9 fire, 5 acid

	plan, err := f.svc.PrepareSave(context.Background(), f.encID, &SaveInput{
		ActorUID: "dragon", ActionName: "Fire Breath", TargetUIDs: []string{"a"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"acid", "fire"}, plan.DamageTypes(), "types render in sorted order")

	plan.Targets[0].Outcome = SaveOutcomeFail
	require.NoError(t, f.svc.ApplySaveOutcomes(context.Background(), f.encID, plan))

	enc := f.encounter(t)
	assert.Equal(t, 26, enc.FindParticipant("a").HPCurrent)
	require.NotEmpty(t, enc.Log)
	assert.Contains(t, enc.Log[len(enc.Log)-2], "(5 acid + 9 fire)")
}

func TestPrepareSaveValidation(t *testing.T) {
	f := newFixture(t, true, breather("dragon"), victim("a"))

	_, err := f.svc.PrepareSave(context.Background(), f.encID, &SaveInput{
		ActorUID: "dragon", ActionName: "Fire Breath",
	})
	assert.True(t, dnderr.IsInvalidArgument(err), "no targets")

	_, err = f.svc.PrepareSave(context.Background(), f.encID, &SaveInput{
		ActorUID: "dragon", ActionName: "Claw", TargetUIDs: []string{"a"},
	})
	assert.True(t, dnderr.IsNotFound(err), "unknown action")
}
