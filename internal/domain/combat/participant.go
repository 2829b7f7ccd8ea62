package combat

import (
	"strings"

	"github.com/tianyouyingfan/local-simple-dnd-tool/internal/domain/conditions"
	"github.com/tianyouyingfan/local-simple-dnd-tool/internal/uuid"
)

// ParticipantType distinguishes player characters from monsters
type ParticipantType string

const (
	ParticipantTypePC      ParticipantType = "pc"
	ParticipantTypeMonster ParticipantType = "monster"
)

// Abilities holds the six ability scores
type Abilities struct {
	Str int `json:"str"`
	Dex int `json:"dex"`
	Con int `json:"con"`
	Int int `json:"int"`
	Wis int `json:"wis"`
	Cha int `json:"cha"`
}

// AbilityModifier converts an ability score to its modifier
func AbilityModifier(score int) int {
	// floor division, scores below 10 round toward negative
	if score >= 10 {
		return (score - 10) / 2
	}
	return -((11 - score) / 2)
}

// Modifier returns the modifier for an ability by short name (str, dex, ...)
func (a Abilities) Modifier(ability string) int {
	switch strings.ToLower(strings.TrimSpace(ability)) {
	case "str":
		return AbilityModifier(a.Str)
	case "dex":
		return AbilityModifier(a.Dex)
	case "con":
		return AbilityModifier(a.Con)
	case "int":
		return AbilityModifier(a.Int)
	case "wis":
		return AbilityModifier(a.Wis)
	case "cha":
		return AbilityModifier(a.Cha)
	default:
		return 0
	}
}

// Score returns the raw score for an ability by short name
func (a Abilities) Score(ability string) int {
	switch strings.ToLower(strings.TrimSpace(ability)) {
	case "str":
		return a.Str
	case "dex":
		return a.Dex
	case "con":
		return a.Con
	case "int":
		return a.Int
	case "wis":
		return a.Wis
	case "cha":
		return a.Cha
	default:
		return 0
	}
}

// DamageModifier annotates how a damage profile changed an amount
type DamageModifier string

const (
	ModifierNone       DamageModifier = ""
	ModifierResistance DamageModifier = "resistance"
	ModifierVulnerable DamageModifier = "vulnerable"
	ModifierImmune     DamageModifier = "immune"
)

// DamageProfile lists the damage types a participant resists, is
// vulnerable to, or ignores entirely
type DamageProfile struct {
	Resistances     []string `json:"resistances,omitempty"`
	Vulnerabilities []string `json:"vulnerabilities,omitempty"`
	Immunities      []string `json:"immunities,omitempty"`
}

func containsType(list []string, damageType string) bool {
	for _, t := range list {
		if strings.EqualFold(strings.TrimSpace(t), damageType) {
			return true
		}
	}
	return false
}

// DamageComponent is a single dice expression of one damage type
type DamageComponent struct {
	Dice string `json:"dice"`
	Type string `json:"type"`
}

// OnHitStatus describes a condition an attack applies on a hit,
// optionally gated behind a saving throw
type OnHitStatus struct {
	Name        string `json:"name"`
	Rounds      int    `json:"rounds,omitempty"`
	SaveAbility string `json:"saveAbility,omitempty"`
	SaveDC      int    `json:"saveDC,omitempty"`
}

// ActionType distinguishes attack rolls from save-based actions
type ActionType string

const (
	ActionTypeAttack  ActionType = "attack"
	ActionTypeSave    ActionType = "save"
	ActionTypeUtility ActionType = "utility"
)

// Action is a single usable ability of a participant
type Action struct {
	Name        string            `json:"name"`
	Type        ActionType        `json:"type"`
	AttackBonus int               `json:"attackBonus,omitempty"`
	Damages     []DamageComponent `json:"damages,omitempty"`
	SaveAbility string            `json:"saveAbility,omitempty"`
	SaveDC      int               `json:"saveDC,omitempty"`
	OnSuccess   string            `json:"onSuccess,omitempty"` // "half" or "none"
	OnHitStatus *OnHitStatus      `json:"onHitStatus,omitempty"`
	Recharge    int               `json:"recharge,omitempty"` // cooldown rounds set after use
	Cooldown    int               `json:"cooldown,omitempty"` // rounds until usable again

	// legacy single-damage shape, folded into Damages on load
	DamageDice string `json:"damageDice,omitempty"`
	DamageType string `json:"damageType,omitempty"`
}

// Participant is one combatant in an encounter. The JSON shape is the
// persisted battle-state shape and must stay load-compatible with
// states written by older versions.
type Participant struct {
	UID       string                 `json:"uid"`
	BaseID    string                 `json:"baseId,omitempty"`
	Name      string                 `json:"name"`
	Type      ParticipantType        `json:"type"`
	Avatar    string                 `json:"avatar,omitempty"`
	AC        int                    `json:"ac"`
	BaseMaxHP int                    `json:"baseMaxHp"`
	HPMax     int                    `json:"hpMax"`
	HPCurrent int                    `json:"hpCurrent"`
	TempHP    int                    `json:"tempHp"`
	Abilities Abilities              `json:"abilities"`
	Profile   DamageProfile          `json:"damageProfile"`
	Actions   []*Action              `json:"actions,omitempty"`
	Statuses  []*conditions.Instance `json:"statuses,omitempty"`

	// nil until initiative has been rolled
	Initiative         *int `json:"initiative,omitempty"`
	InitiativeRoll     *int `json:"initiativeRoll,omitempty"`
	InitiativeModifier *int `json:"initiativeModifier,omitempty"`

	JustJoined bool `json:"justJoined,omitempty"`
	IsDefeated bool `json:"isDefeated,omitempty"`
}

// IsPlayer reports whether the participant is player-controlled
func (p *Participant) IsPlayer() bool {
	return p.Type == ParticipantTypePC
}

// ExhaustionLevel returns the participant's active exhaustion level
func (p *Participant) ExhaustionLevel() int {
	return conditions.ExhaustionLevel(p.Statuses)
}

// HasStatus reports whether the participant has the given condition
func (p *Participant) HasStatus(key conditions.Key) bool {
	return conditions.Has(p.Statuses, key, nil)
}

// IsIncapacitated reports whether the participant can act at all
func (p *Participant) IsIncapacitated() bool {
	return conditions.IsIncapacitated(p.Statuses)
}

// ApplyHPDelta is the single mutation path for hit points. Positive
// deltas heal up to HPMax; negative deltas consume temporary HP first
// and never take HPCurrent below zero. A monster dropping to zero is
// marked defeated so the scheduler can purge it at its turn boundary.
func (p *Participant) ApplyHPDelta(delta int) {
	if delta > 0 {
		p.HPCurrent += delta
		if p.HPCurrent > p.HPMax {
			p.HPCurrent = p.HPMax
		}
	} else if delta < 0 {
		damage := -delta
		if p.TempHP > 0 {
			absorbed := damage
			if absorbed > p.TempHP {
				absorbed = p.TempHP
			}
			p.TempHP -= absorbed
			damage -= absorbed
		}
		p.HPCurrent -= damage
		if p.HPCurrent < 0 {
			p.HPCurrent = 0
		}
	}

	if p.HPCurrent <= 0 && !p.IsPlayer() {
		p.IsDefeated = true
	} else if p.HPCurrent > 0 {
		p.IsDefeated = false
	}
}

// SetTempHP replaces the temporary HP buffer. Temporary HP never
// stacks; the new value overwrites the old regardless of size.
func (p *Participant) SetTempHP(amount int) {
	if amount < 0 {
		amount = 0
	}
	p.TempHP = amount
}

// ApplyExhaustionHPCap recomputes HPMax from the participant's
// exhaustion level. Level 4 and above halves the base maximum;
// HPCurrent reclamps when the cap drops below it.
func (p *Participant) ApplyExhaustionHPCap() {
	if p.BaseMaxHP <= 0 {
		p.BaseMaxHP = p.HPMax
	}
	if p.ExhaustionLevel() >= 4 {
		p.HPMax = p.BaseMaxHP / 2
	} else {
		p.HPMax = p.BaseMaxHP
	}
	if p.HPCurrent > p.HPMax {
		p.HPCurrent = p.HPMax
	}
}

// ModifiedDamage passes an incoming amount through the participant's
// damage profile. Immunity zeroes it, vulnerability doubles it, and
// resistance halves it rounding down. A petrified participant resists
// every damage type it is not already immune or vulnerable to.
func (p *Participant) ModifiedDamage(amount int, damageType string) (int, DamageModifier) {
	if amount <= 0 {
		return 0, ModifierNone
	}
	switch {
	case containsType(p.Profile.Immunities, damageType):
		return 0, ModifierImmune
	case containsType(p.Profile.Vulnerabilities, damageType):
		return amount * 2, ModifierVulnerable
	case containsType(p.Profile.Resistances, damageType) || p.HasStatus(conditions.Petrified):
		return amount / 2, ModifierResistance
	default:
		return amount, ModifierNone
	}
}

// NormalizeAction repairs legacy action shapes: a single
// damageDice/damageType pair is folded into the Damages slice.
func NormalizeAction(a *Action) *Action {
	if a == nil {
		return nil
	}
	if a.Type == "" {
		if a.SaveDC > 0 || a.SaveAbility != "" {
			a.Type = ActionTypeSave
		} else {
			a.Type = ActionTypeAttack
		}
	}
	if len(a.Damages) == 0 && a.DamageDice != "" {
		a.Damages = []DamageComponent{{Dice: a.DamageDice, Type: a.DamageType}}
	}
	a.DamageDice = ""
	a.DamageType = ""
	if a.Cooldown < 0 {
		a.Cooldown = 0
	}
	return a
}

// FindAction returns the participant's action with the given name
func (p *Participant) FindAction(name string) *Action {
	for _, a := range p.Actions {
		if a != nil && a.Name == name {
			return a
		}
	}
	return nil
}

// NormalizeParticipant repairs legacy participant shapes at the load
// boundary: missing base max HP, unresolved status keys, folded-away
// action damage lists, and all-zero ability blocks from old states.
func NormalizeParticipant(p *Participant, gen uuid.Generator) *Participant {
	if p == nil {
		return nil
	}
	if p.UID == "" {
		p.UID = gen.New()
	}
	if p.Type != ParticipantTypePC {
		p.Type = ParticipantTypeMonster
	}
	if p.BaseMaxHP <= 0 {
		p.BaseMaxHP = p.HPMax
	}
	if p.HPMax <= 0 {
		p.HPMax = p.BaseMaxHP
	}
	if p.TempHP < 0 {
		p.TempHP = 0
	}
	if (p.Abilities == Abilities{}) {
		p.Abilities = Abilities{Str: 10, Dex: 10, Con: 10, Int: 10, Wis: 10, Cha: 10}
	}
	for i, s := range p.Statuses {
		p.Statuses[i] = conditions.Normalize(s, gen)
	}
	for i, a := range p.Actions {
		p.Actions[i] = NormalizeAction(a)
	}
	p.ApplyExhaustionHPCap()
	return p
}
