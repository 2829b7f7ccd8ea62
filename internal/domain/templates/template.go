package templates

import (
	"strings"

	"github.com/tianyouyingfan/local-simple-dnd-tool/internal/domain/combat"
	"github.com/tianyouyingfan/local-simple-dnd-tool/internal/uuid"
)

// HP is a monster stat-block hit point entry
type HP struct {
	Average int    `json:"average"`
	Roll    string `json:"roll,omitempty"`
}

// Speed holds the movement speeds from a stat block, in feet
type Speed struct {
	Walk int `json:"walk,omitempty"`
	Fly  int `json:"fly,omitempty"`
	Swim int `json:"swim,omitempty"`
}

// Template is a library entry a combatant can be instantiated from:
// either a monster stat block or a saved player character. A player
// character carries HPMax/HPCurrent directly; a monster carries the
// stat-block HP entry.
type Template struct {
	ID        string               `json:"id"`
	Name      string               `json:"name"`
	CR        float64              `json:"cr,omitempty"`
	Types     []string             `json:"type,omitempty"`
	AC        int                  `json:"ac"`
	HP        HP                   `json:"hp"`
	HPMax     int                  `json:"hpMax,omitempty"`
	HPCurrent int                  `json:"hpCurrent,omitempty"`
	Avatar    string               `json:"avatar,omitempty"`
	Speed     Speed                `json:"speed,omitempty"`
	Abilities combat.Abilities     `json:"abilities"`
	Profile   combat.DamageProfile `json:"damageProfile"`
	Actions   []*combat.Action     `json:"actions,omitempty"`
	Features  string               `json:"features,omitempty"`
	IsCustom  bool                 `json:"isCustom,omitempty"`
}

// IsPC reports whether the template is a saved player character
func (t *Template) IsPC() bool {
	return t.HPMax > 0
}

func (t *Template) hasType(tag string) bool {
	for _, tt := range t.Types {
		if strings.EqualFold(tt, tag) {
			return true
		}
	}
	return false
}

// StandardizeToParticipant instantiates a fresh combatant from a
// template: new uid, zeroed cooldowns, empty statuses, initiative
// unset. The template is never mutated.
func StandardizeToParticipant(t *Template, gen uuid.Generator) *combat.Participant {
	hpMax := t.HPMax
	if hpMax <= 0 {
		hpMax = t.HP.Average
	}
	if hpMax <= 0 {
		hpMax = 10
	}
	hpCurrent := t.HPCurrent
	if hpCurrent <= 0 {
		hpCurrent = hpMax
	}

	pType := combat.ParticipantTypeMonster
	if t.IsPC() {
		pType = combat.ParticipantTypePC
	}

	avatar := t.Avatar
	if avatar == "" {
		switch {
		case t.hasType("dragon"):
			avatar = "🐲"
		case pType == combat.ParticipantTypePC:
			avatar = "🧝"
		default:
			avatar = "👾"
		}
	}

	ac := t.AC
	if ac <= 0 {
		ac = 12
	}

	abilities := t.Abilities
	if (abilities == combat.Abilities{}) {
		abilities = combat.Abilities{Str: 10, Dex: 10, Con: 10, Int: 10, Wis: 10, Cha: 10}
	}

	actions := make([]*combat.Action, 0, len(t.Actions))
	for _, a := range t.Actions {
		if a == nil {
			continue
		}
		clone := *a
		clone.Cooldown = 0
		actions = append(actions, combat.NormalizeAction(&clone))
	}

	return &combat.Participant{
		UID:       gen.New(),
		BaseID:    t.ID,
		Name:      t.Name,
		Type:      pType,
		Avatar:    avatar,
		AC:        ac,
		BaseMaxHP: hpMax,
		HPMax:     hpMax,
		HPCurrent: hpCurrent,
		Abilities: abilities,
		Profile: combat.DamageProfile{
			Resistances:     append([]string{}, t.Profile.Resistances...),
			Vulnerabilities: append([]string{}, t.Profile.Vulnerabilities...),
			Immunities:      append([]string{}, t.Profile.Immunities...),
		},
		Actions:  actions,
		Statuses: nil,
	}
}
