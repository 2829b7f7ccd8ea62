package combat

import (
	"fmt"
	"sort"

	"github.com/tianyouyingfan/local-simple-dnd-tool/internal/dice"
	"github.com/tianyouyingfan/local-simple-dnd-tool/internal/domain/conditions"
	"github.com/tianyouyingfan/local-simple-dnd-tool/internal/uuid"
)

// maxLogEntries bounds the combat log kept in the battle state
const maxLogEntries = 50

// Encounter is the combat aggregate: the initiative order, the turn
// cursor, and the round counter. It has a single logical writer; the
// service layer serializes access.
type Encounter struct {
	ID           string         `json:"id"`
	Participants []*Participant `json:"participants"`
	CurrentIndex int            `json:"currentIndex"`
	Round        int            `json:"round"`
	Log          []string       `json:"log,omitempty"`
}

// NewEncounter creates an empty encounter
func NewEncounter(id string) *Encounter {
	return &Encounter{ID: id, Participants: []*Participant{}}
}

// InProgress reports whether initiative has been rolled
func (e *Encounter) InProgress() bool {
	for _, p := range e.Participants {
		if p != nil && p.Initiative != nil {
			return true
		}
	}
	return false
}

// CurrentActor returns the participant whose turn it is, or nil
func (e *Encounter) CurrentActor() *Participant {
	if e.CurrentIndex < 0 || e.CurrentIndex >= len(e.Participants) {
		return nil
	}
	return e.Participants[e.CurrentIndex]
}

// FindParticipant returns the participant with the given uid, or nil
func (e *Encounter) FindParticipant(uid string) *Participant {
	for _, p := range e.Participants {
		if p != nil && p.UID == uid {
			return p
		}
	}
	return nil
}

// AddParticipant inserts a combatant. Before initiative is rolled it
// simply appends. Mid-combat the newcomer rolls initiative at once, is
// flagged to sit out the rest of the current round, and the order is
// re-sorted with the turn cursor following the acting participant.
func (e *Encounter) AddParticipant(p *Participant, roller dice.Roller) error {
	if p == nil {
		return fmt.Errorf("participant is nil")
	}
	if !e.InProgress() {
		e.Participants = append(e.Participants, p)
		return nil
	}

	result, err := roller.Roll(1, 20, 0)
	if err != nil {
		return err
	}
	mod := p.Abilities.Modifier("dex")
	total := result.Total + mod
	raw := result.Total
	p.Initiative = &total
	p.InitiativeRoll = &raw
	p.InitiativeModifier = &mod
	p.JustJoined = true

	actor := e.CurrentActor()
	e.Participants = append(e.Participants, p)
	e.sortByInitiative()
	if actor != nil {
		e.pointCursorAt(actor.UID)
	}
	return nil
}

// RollInitiative rolls a fresh d20 + DEX modifier for every
// participant, sorts the order, and starts round 1.
func (e *Encounter) RollInitiative(roller dice.Roller) error {
	for _, p := range e.Participants {
		result, err := roller.Roll(1, 20, 0)
		if err != nil {
			return err
		}
		mod := p.Abilities.Modifier("dex")
		total := result.Total + mod
		raw := result.Total
		p.Initiative = &total
		p.InitiativeRoll = &raw
		p.InitiativeModifier = &mod
		p.JustJoined = false
	}
	e.sortByInitiative()
	e.CurrentIndex = 0
	e.Round = 1
	return nil
}

// sortByInitiative orders natural 20s first (the rolled modifier
// breaking ties among them), then everyone else by total descending.
func (e *Encounter) sortByInitiative() {
	nat20 := func(p *Participant) bool {
		return p.InitiativeRoll != nil && *p.InitiativeRoll == 20
	}
	total := func(p *Participant) int {
		if p.Initiative == nil {
			return 0
		}
		return *p.Initiative
	}
	mod := func(p *Participant) int {
		if p.InitiativeModifier == nil {
			return 0
		}
		return *p.InitiativeModifier
	}
	sort.SliceStable(e.Participants, func(i, j int) bool {
		a, b := e.Participants[i], e.Participants[j]
		if nat20(a) != nat20(b) {
			return nat20(a)
		}
		if nat20(a) && nat20(b) {
			return mod(a) > mod(b)
		}
		return total(a) > total(b)
	})
}

func (e *Encounter) pointCursorAt(uid string) {
	for i, p := range e.Participants {
		if p != nil && p.UID == uid {
			e.CurrentIndex = i
			return
		}
	}
	e.CurrentIndex = 0
}

// NextTurn advances the turn cursor. A defeated monster whose turn is
// ending is purged from the order first, which shifts the slice so the
// cursor already points at the next combatant. Wrapping to the top
// increments the round and clears every just-joined flag. Participants
// still flagged just-joined are skipped, and the landing participant
// has its status durations and action cooldowns ticked down.
func (e *Encounter) NextTurn() *Participant {
	if len(e.Participants) == 0 {
		return nil
	}
	if e.Round < 1 {
		e.Round = 1
	}

	leaving := e.CurrentActor()
	if leaving != nil && leaving.IsDefeated && !leaving.IsPlayer() {
		e.removeAt(e.CurrentIndex)
		if len(e.Participants) == 0 {
			return nil
		}
		if e.CurrentIndex >= len(e.Participants) {
			e.wrapRound()
		}
	} else {
		e.advanceCursor()
	}

	// skip combatants that joined mid-round, bounded so a roster of
	// nothing but newcomers cannot spin forever
	for i := 0; i < 2*len(e.Participants); i++ {
		actor := e.CurrentActor()
		if actor == nil || !actor.JustJoined {
			break
		}
		e.advanceCursor()
	}

	actor := e.CurrentActor()
	if actor != nil {
		e.tickDown(actor)
	}
	return actor
}

func (e *Encounter) advanceCursor() {
	e.CurrentIndex++
	if e.CurrentIndex >= len(e.Participants) {
		e.wrapRound()
	}
}

func (e *Encounter) wrapRound() {
	e.CurrentIndex = 0
	e.Round++
	for _, p := range e.Participants {
		p.JustJoined = false
	}
}

// tickDown decrements the landing actor's status durations and action
// cooldowns. Statuses are purged the moment their rounds run out; an
// expiring exhaustion instance additionally restores the HP cap.
func (e *Encounter) tickDown(actor *Participant) {
	kept := actor.Statuses[:0]
	levelChanged := false
	for _, s := range actor.Statuses {
		if s == nil {
			continue
		}
		s.Rounds--
		if s.Rounds > 0 {
			kept = append(kept, s)
			continue
		}
		if s.Key == conditions.Exhaustion {
			levelChanged = true
		}
		e.AppendLog(fmt.Sprintf("%s is no longer %s", actor.Name, conditions.DisplayName(s)))
	}
	actor.Statuses = kept
	if levelChanged {
		actor.ApplyExhaustionHPCap()
	}

	for _, a := range actor.Actions {
		if a != nil && a.Cooldown > 0 {
			a.Cooldown--
		}
	}
}

// PrevTurn steps the cursor backwards, wrapping to the bottom of the
// order and decrementing the round, never below round 1.
func (e *Encounter) PrevTurn() *Participant {
	if len(e.Participants) == 0 {
		return nil
	}
	e.CurrentIndex--
	if e.CurrentIndex < 0 {
		e.CurrentIndex = len(e.Participants) - 1
		e.Round--
		if e.Round < 1 {
			e.Round = 1
		}
	}
	return e.CurrentActor()
}

// Reorder moves the participant at position from to position to. The
// caller re-resolves the cursor afterwards if it tracked a combatant.
func (e *Encounter) Reorder(from, to int) error {
	n := len(e.Participants)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("reorder out of range: %d -> %d with %d participants", from, to, n)
	}
	actor := e.CurrentActor()
	p := e.Participants[from]
	e.Participants = append(e.Participants[:from], e.Participants[from+1:]...)
	rest := append([]*Participant{}, e.Participants[to:]...)
	e.Participants = append(e.Participants[:to], p)
	e.Participants = append(e.Participants, rest...)
	if actor != nil {
		e.pointCursorAt(actor.UID)
	}
	return nil
}

// RemoveParticipant removes a combatant by uid
func (e *Encounter) RemoveParticipant(uid string) bool {
	for i, p := range e.Participants {
		if p != nil && p.UID == uid {
			e.removeAt(i)
			if e.CurrentIndex >= len(e.Participants) {
				e.CurrentIndex = 0
			}
			return true
		}
	}
	return false
}

func (e *Encounter) removeAt(i int) {
	e.Participants = append(e.Participants[:i], e.Participants[i+1:]...)
	if e.CurrentIndex > i {
		e.CurrentIndex--
	}
}

// SetCurrentActor points the turn cursor at the given participant
func (e *Encounter) SetCurrentActor(uid string) bool {
	for i, p := range e.Participants {
		if p != nil && p.UID == uid {
			e.CurrentIndex = i
			return true
		}
	}
	return false
}

// AppendLog records a round-prefixed combat log line, keeping only the
// most recent entries.
func (e *Encounter) AppendLog(line string) {
	round := e.Round
	if round < 1 {
		round = 1
	}
	e.Log = append(e.Log, fmt.Sprintf("[R%d] %s", round, line))
	if len(e.Log) > maxLogEntries {
		e.Log = e.Log[len(e.Log)-maxLogEntries:]
	}
}

// NormalizeEncounter runs load-boundary repair over the whole
// aggregate: every participant and status is normalized and the round
// and cursor are clamped to sane values.
func NormalizeEncounter(e *Encounter, gen uuid.Generator) *Encounter {
	if e == nil {
		return nil
	}
	kept := e.Participants[:0]
	for _, p := range e.Participants {
		if p == nil {
			continue
		}
		kept = append(kept, NormalizeParticipant(p, gen))
	}
	e.Participants = kept
	if e.Round < 0 {
		e.Round = 0
	}
	if e.CurrentIndex < 0 || e.CurrentIndex >= len(e.Participants) {
		e.CurrentIndex = 0
	}
	return e
}
