package encounter

import (
	"context"
	"fmt"
	"strings"
	"sync"

	dnderr "github.com/tianyouyingfan/local-simple-dnd-tool/internal/errors"

	"github.com/tianyouyingfan/local-simple-dnd-tool/internal/dice"
	"github.com/tianyouyingfan/local-simple-dnd-tool/internal/domain/combat"
	"github.com/tianyouyingfan/local-simple-dnd-tool/internal/domain/conditions"
	"github.com/tianyouyingfan/local-simple-dnd-tool/internal/domain/templates"
	"github.com/tianyouyingfan/local-simple-dnd-tool/internal/notify"
	"github.com/tianyouyingfan/local-simple-dnd-tool/internal/prompts"
	"github.com/tianyouyingfan/local-simple-dnd-tool/internal/repositories/battlestate"
	"github.com/tianyouyingfan/local-simple-dnd-tool/internal/repositories/templatestore"
	"github.com/tianyouyingfan/local-simple-dnd-tool/internal/uuid"
)

// Service defines the encounter service interface
type Service interface {
	// CreateEncounter creates a new empty encounter
	CreateEncounter(ctx context.Context) (*combat.Encounter, error)

	// GetEncounter retrieves an encounter by ID
	GetEncounter(ctx context.Context, encounterID string) (*combat.Encounter, error)

	// DeleteEncounter removes an encounter
	DeleteEncounter(ctx context.Context, encounterID string) error

	// AddFromTemplate instantiates a library template into the encounter
	AddFromTemplate(ctx context.Context, encounterID, templateID string) (*combat.Participant, error)

	// AddParticipant adds an already-built participant to the encounter
	AddParticipant(ctx context.Context, encounterID string, p *combat.Participant) error

	// RemoveParticipant removes a participant from the encounter
	RemoveParticipant(ctx context.Context, encounterID, uid string) error

	// RollInitiative rolls fresh initiative for every participant
	RollInitiative(ctx context.Context, encounterID string) error

	// NextTurn advances the turn cursor
	NextTurn(ctx context.Context, encounterID string) (*combat.Participant, error)

	// PrevTurn steps the turn cursor backwards
	PrevTurn(ctx context.Context, encounterID string) (*combat.Participant, error)

	// Reorder moves a participant to a new position in the order
	Reorder(ctx context.Context, encounterID string, from, to int) error

	// SetCurrentActor points the turn cursor at a participant
	SetCurrentActor(ctx context.Context, encounterID, uid string) error

	// ExecuteAttack resolves an attack action against a set of targets
	ExecuteAttack(ctx context.Context, encounterID string, input *AttackInput) ([]*AttackOutcome, error)

	// PrepareSave rolls a save action's damage and builds the outcome plan
	PrepareSave(ctx context.Context, encounterID string, input *SaveInput) (*SavePlan, error)

	// ApplySaveOutcomes applies a confirmed save plan to its targets
	ApplySaveOutcomes(ctx context.Context, encounterID string, plan *SavePlan) error

	// ApplyDamage deals direct damage to a participant
	ApplyDamage(ctx context.Context, encounterID, uid string, amount int) error

	// Heal restores hit points to a participant
	Heal(ctx context.Context, encounterID, uid string, amount int) error

	// SetTempHP grants a temporary HP buffer to a participant
	SetTempHP(ctx context.Context, encounterID, uid string, amount int) error

	// ApplyStatus applies a condition to a participant
	ApplyStatus(ctx context.Context, encounterID, targetUID string, raw *conditions.Instance, sourceUID string) error

	// RemoveStatus removes a condition instance from a participant
	RemoveStatus(ctx context.Context, encounterID, targetUID, statusID string) error
}

type service struct {
	repository      battlestate.Repository
	templateStore   templatestore.Store
	roller          dice.Roller
	broker          prompts.Broker
	notifier        notify.Sink
	logSink         notify.LogSink
	uuidGenerator   uuid.Generator
	autoApplyDamage bool

	// serializes all mutating calls; the aggregate has one writer
	mu sync.Mutex
}

// ServiceConfig holds the dependencies of the encounter service
type ServiceConfig struct {
	Repository      battlestate.Repository
	TemplateStore   templatestore.Store
	Roller          dice.Roller
	Broker          prompts.Broker
	Notifier        notify.Sink
	LogSink         notify.LogSink
	UUIDGenerator   uuid.Generator
	AutoApplyDamage bool
}

// NewService creates a new encounter service
func NewService(cfg *ServiceConfig) Service {
	if cfg.Repository == nil {
		panic("repository is required")
	}
	if cfg.TemplateStore == nil {
		panic("template store is required")
	}
	if cfg.Broker == nil {
		panic("prompt broker is required")
	}

	svc := &service{
		repository:      cfg.Repository,
		templateStore:   cfg.TemplateStore,
		roller:          cfg.Roller,
		broker:          cfg.Broker,
		notifier:        cfg.Notifier,
		logSink:         cfg.LogSink,
		autoApplyDamage: cfg.AutoApplyDamage,
	}

	if svc.roller == nil {
		svc.roller = dice.NewRandomRoller()
	}
	if cfg.UUIDGenerator != nil {
		svc.uuidGenerator = cfg.UUIDGenerator
	} else {
		svc.uuidGenerator = uuid.NewGoogleUUIDGenerator()
	}

	return svc
}

func (s *service) toast(message string) {
	if s.logSink != nil {
		s.logSink.Toast(message)
	}
}

func (s *service) notify(n *notify.Notification) {
	if s.notifier != nil {
		s.notifier.Notify(n)
	}
}

// withEncounter loads the aggregate, runs fn under the single-writer
// lock, and saves it back when fn succeeds.
func (s *service) withEncounter(ctx context.Context, encounterID string, fn func(enc *combat.Encounter) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	enc, err := s.repository.Load(ctx, encounterID)
	if err != nil {
		return dnderr.Wrap(err, "failed to load encounter")
	}
	if err := fn(enc); err != nil {
		return err
	}
	if err := s.repository.Save(ctx, enc); err != nil {
		return dnderr.Wrap(err, "failed to save encounter")
	}
	return nil
}

func (s *service) CreateEncounter(ctx context.Context) (*combat.Encounter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	enc := combat.NewEncounter(s.uuidGenerator.New())
	if err := s.repository.Save(ctx, enc); err != nil {
		return nil, dnderr.Wrap(err, "failed to save encounter")
	}
	return enc, nil
}

func (s *service) GetEncounter(ctx context.Context, encounterID string) (*combat.Encounter, error) {
	return s.repository.Load(ctx, encounterID)
}

func (s *service) DeleteEncounter(ctx context.Context, encounterID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repository.Delete(ctx, encounterID)
}

func (s *service) AddFromTemplate(ctx context.Context, encounterID, templateID string) (*combat.Participant, error) {
	template, err := s.templateStore.Get(ctx, templateID)
	if err != nil {
		return nil, dnderr.Wrap(err, "failed to get template")
	}

	participant := templates.StandardizeToParticipant(template, s.uuidGenerator)
	if err := s.AddParticipant(ctx, encounterID, participant); err != nil {
		return nil, err
	}
	return participant, nil
}

func (s *service) AddParticipant(ctx context.Context, encounterID string, p *combat.Participant) error {
	if p == nil {
		return dnderr.InvalidArgument("participant cannot be nil")
	}
	return s.withEncounter(ctx, encounterID, func(enc *combat.Encounter) error {
		if p.UID != "" && enc.FindParticipant(p.UID) != nil {
			return dnderr.AlreadyExists("participant already in encounter: " + p.UID)
		}
		if err := enc.AddParticipant(p, s.roller); err != nil {
			return dnderr.Wrap(err, "failed to add participant")
		}
		if p.JustJoined {
			enc.AppendLog(fmt.Sprintf("%s joins the fight and rolls initiative %d", p.Name, *p.Initiative))
		}
		return nil
	})
}

func (s *service) RemoveParticipant(ctx context.Context, encounterID, uid string) error {
	return s.withEncounter(ctx, encounterID, func(enc *combat.Encounter) error {
		if !enc.RemoveParticipant(uid) {
			return dnderr.NotFoundf("participant not found: %s", uid)
		}
		return nil
	})
}

func (s *service) RollInitiative(ctx context.Context, encounterID string) error {
	return s.withEncounter(ctx, encounterID, func(enc *combat.Encounter) error {
		if len(enc.Participants) == 0 {
			return dnderr.InvalidArgument("encounter has no participants")
		}
		if err := enc.RollInitiative(s.roller); err != nil {
			return dnderr.Wrap(err, "failed to roll initiative")
		}
		enc.AppendLog("initiative rolled, combat begins")
		return nil
	})
}

func (s *service) NextTurn(ctx context.Context, encounterID string) (*combat.Participant, error) {
	var actor *combat.Participant
	err := s.withEncounter(ctx, encounterID, func(enc *combat.Encounter) error {
		if !enc.InProgress() {
			return dnderr.InvalidArgument("initiative has not been rolled")
		}
		actor = enc.NextTurn()
		if actor != nil {
			enc.AppendLog(fmt.Sprintf("%s's turn", actor.Name))
		}
		return nil
	})
	return actor, err
}

func (s *service) PrevTurn(ctx context.Context, encounterID string) (*combat.Participant, error) {
	var actor *combat.Participant
	err := s.withEncounter(ctx, encounterID, func(enc *combat.Encounter) error {
		if !enc.InProgress() {
			return dnderr.InvalidArgument("initiative has not been rolled")
		}
		actor = enc.PrevTurn()
		return nil
	})
	return actor, err
}

func (s *service) Reorder(ctx context.Context, encounterID string, from, to int) error {
	return s.withEncounter(ctx, encounterID, func(enc *combat.Encounter) error {
		if err := enc.Reorder(from, to); err != nil {
			return dnderr.Wrap(err, "failed to reorder")
		}
		return nil
	})
}

func (s *service) SetCurrentActor(ctx context.Context, encounterID, uid string) error {
	return s.withEncounter(ctx, encounterID, func(enc *combat.Encounter) error {
		if !enc.SetCurrentActor(uid) {
			return dnderr.NotFoundf("participant not found: %s", uid)
		}
		return nil
	})
}

func (s *service) ApplyDamage(ctx context.Context, encounterID, uid string, amount int) error {
	if amount <= 0 {
		return dnderr.InvalidArgument("damage amount must be positive")
	}
	return s.withEncounter(ctx, encounterID, func(enc *combat.Encounter) error {
		target := enc.FindParticipant(uid)
		if target == nil {
			return dnderr.NotFoundf("participant not found: %s", uid)
		}
		target.ApplyHPDelta(-amount)
		enc.AppendLog(fmt.Sprintf("%s takes %d damage, %d/%d HP", target.Name, amount, target.HPCurrent, target.HPMax))
		if target.IsDefeated {
			s.toast(fmt.Sprintf("%s drops to 0 HP and will be removed at the end of its turn", target.Name))
		}
		return nil
	})
}

func (s *service) Heal(ctx context.Context, encounterID, uid string, amount int) error {
	if amount <= 0 {
		return dnderr.InvalidArgument("heal amount must be positive")
	}
	return s.withEncounter(ctx, encounterID, func(enc *combat.Encounter) error {
		target := enc.FindParticipant(uid)
		if target == nil {
			return dnderr.NotFoundf("participant not found: %s", uid)
		}
		target.ApplyHPDelta(amount)
		enc.AppendLog(fmt.Sprintf("%s heals %d, %d/%d HP", target.Name, amount, target.HPCurrent, target.HPMax))
		return nil
	})
}

func (s *service) SetTempHP(ctx context.Context, encounterID, uid string, amount int) error {
	if amount < 0 {
		return dnderr.InvalidArgument("temporary HP cannot be negative")
	}
	return s.withEncounter(ctx, encounterID, func(enc *combat.Encounter) error {
		target := enc.FindParticipant(uid)
		if target == nil {
			return dnderr.NotFoundf("participant not found: %s", uid)
		}
		target.SetTempHP(amount)
		enc.AppendLog(fmt.Sprintf("%s gains %d temporary HP", target.Name, amount))
		return nil
	})
}

func (s *service) ApplyStatus(ctx context.Context, encounterID, targetUID string, raw *conditions.Instance, sourceUID string) error {
	if raw == nil {
		return dnderr.InvalidArgument("status cannot be nil")
	}
	return s.withEncounter(ctx, encounterID, func(enc *combat.Encounter) error {
		target := enc.FindParticipant(targetUID)
		if target == nil {
			return dnderr.NotFoundf("participant not found: %s", targetUID)
		}
		return s.applyStatusToTarget(ctx, enc, target, raw, sourceUID, false)
	})
}

// applyStatusToTarget runs the full condition application workflow:
// normalization, the requires-source guard for manual application,
// identity stacking, and the exhaustion merge with its level 6 death
// confirmation. allowSourced is true when an attack applies the status
// with the attacker attached as source.
func (s *service) applyStatusToTarget(ctx context.Context, enc *combat.Encounter, target *combat.Participant, raw *conditions.Instance, sourceUID string, allowSourced bool) error {
	instance := conditions.Normalize(raw, s.uuidGenerator)
	if instance.Key == "" {
		return dnderr.InvalidArgumentf("unknown condition: %s", raw.Name)
	}
	if sourceUID != "" && sourceUID != target.UID {
		instance.SourceUID = sourceUID
	}
	if conditions.RequiresSource(instance.Key) && !allowSourced {
		return dnderr.InvalidArgument("this condition needs a source and cannot be applied directly")
	}

	if instance.Key == conditions.Exhaustion {
		return s.applyExhaustion(ctx, enc, target, instance)
	}

	identity := conditions.Identity(instance)
	for _, existing := range target.Statuses {
		if conditions.Identity(existing) == identity {
			s.toast(fmt.Sprintf("%s already has %s", target.Name, conditions.DisplayName(instance)))
			return nil
		}
	}

	target.Statuses = append(target.Statuses, instance)
	enc.AppendLog(fmt.Sprintf("%s gains %s (%d rounds)", target.Name, conditions.DisplayName(instance), instance.Rounds))
	return nil
}

// applyExhaustion merges a new exhaustion application into the single
// existing instance: the level, duration, and step length all rise to
// the maximum of old and new. Reaching level 6 asks for death
// confirmation; declining rolls the level back to 5.
func (s *service) applyExhaustion(ctx context.Context, enc *combat.Encounter, target *combat.Participant, instance *conditions.Instance) error {
	if instance.Meta.Level < conditions.ExhaustionMin {
		instance.Meta.Level = conditions.ExhaustionMin
	}
	prevLevel := target.ExhaustionLevel()

	var merged *conditions.Instance
	for _, existing := range target.Statuses {
		if existing.Key == conditions.Exhaustion {
			merged = existing
			break
		}
	}

	if merged != nil {
		if instance.Meta.Level > merged.Meta.Level {
			merged.Meta.Level = instance.Meta.Level
		}
		if instance.Rounds > merged.Rounds {
			merged.Rounds = instance.Rounds
		}
		if merged.Meta.StepRounds < 1 {
			merged.Meta.StepRounds = merged.Rounds
		}
		if instance.Rounds > merged.Meta.StepRounds {
			merged.Meta.StepRounds = instance.Rounds
		}
		merged.Name = conditions.DisplayName(merged)
	} else {
		if instance.Meta.StepRounds < 1 {
			instance.Meta.StepRounds = instance.Rounds
		}
		instance.Name = conditions.DisplayName(instance)
		target.Statuses = append(target.Statuses, instance)
		merged = instance
	}

	target.ApplyExhaustionHPCap()
	enc.AppendLog(fmt.Sprintf("%s is at exhaustion level %d", target.Name, merged.Meta.Level))

	if prevLevel < conditions.ExhaustionMax && merged.Meta.Level == conditions.ExhaustionMax {
		return s.confirmExhaustionDeath(ctx, enc, target, merged)
	}
	return nil
}

func (s *service) confirmExhaustionDeath(ctx context.Context, enc *combat.Encounter, target *combat.Participant, status *conditions.Instance) error {
	confirmed, err := s.broker.Ask(ctx, &prompts.Prompt{
		Kind:      prompts.KindExhaustionDeath,
		TargetUID: target.UID,
		Title:     "Exhaustion level 6",
		Message:   fmt.Sprintf("%s has reached exhaustion level 6. Confirm death?", target.Name),
		YesText:   "Confirm death",
		NoText:    "Keep at level 5",
	})
	if err != nil {
		return dnderr.Wrap(err, "death confirmation interrupted")
	}

	if confirmed {
		target.HPCurrent = 0
		target.IsDefeated = true
		enc.AppendLog(fmt.Sprintf("%s dies of exhaustion", target.Name))
		s.toast(fmt.Sprintf("%s dies at exhaustion level 6", target.Name))
		return nil
	}

	status.Meta.Level = conditions.ExhaustionMax - 1
	if status.Meta.StepRounds < 1 {
		status.Meta.StepRounds = status.Rounds
		if status.Meta.StepRounds < 1 {
			status.Meta.StepRounds = 1
		}
	}
	status.Name = conditions.DisplayName(status)
	target.ApplyExhaustionHPCap()
	enc.AppendLog(fmt.Sprintf("%s holds on at exhaustion level 5", target.Name))
	return nil
}

func (s *service) RemoveStatus(ctx context.Context, encounterID, targetUID, statusID string) error {
	return s.withEncounter(ctx, encounterID, func(enc *combat.Encounter) error {
		target := enc.FindParticipant(targetUID)
		if target == nil {
			return dnderr.NotFoundf("participant not found: %s", targetUID)
		}

		var removed *conditions.Instance
		kept := target.Statuses[:0]
		for _, st := range target.Statuses {
			if st.ID == statusID {
				removed = st
				continue
			}
			kept = append(kept, st)
		}
		if removed == nil {
			return dnderr.NotFoundf("status not found: %s", statusID)
		}
		target.Statuses = kept

		if removed.Key == conditions.Exhaustion {
			target.ApplyExhaustionHPCap()
		}
		enc.AppendLog(fmt.Sprintf("%s loses %s", target.Name, conditions.DisplayName(removed)))
		return nil
	})
}

func formatToHit(rolls []int, bonus int) string {
	parts := make([]string, len(rolls))
	for i, r := range rolls {
		parts[i] = fmt.Sprint(r)
	}
	return fmt.Sprintf("d20(%s) + %d", strings.Join(parts, ","), bonus)
}
