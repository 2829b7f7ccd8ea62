package templatestore

import (
	"github.com/tianyouyingfan/local-simple-dnd-tool/internal/domain/combat"
	"github.com/tianyouyingfan/local-simple-dnd-tool/internal/domain/templates"
)

// SeedTemplates returns the default library shipped with a fresh
// install: a few SRD monsters and two sample player characters.
func SeedTemplates() []*templates.Template {
	return []*templates.Template{
		{
			ID:    "srd-goblin",
			Name:  "哥布林",
			CR:    0.25,
			Types: []string{"humanoid", "goblinoid"},
			AC:    15,
			HP:    templates.HP{Average: 7, Roll: "2d6"},
			Speed: templates.Speed{Walk: 30},
			Abilities: combat.Abilities{
				Str: 8, Dex: 14, Con: 10, Int: 10, Wis: 8, Cha: 8,
			},
			Actions: []*combat.Action{
				{Name: "弯刀", Type: combat.ActionTypeAttack, AttackBonus: 4,
					Damages: []combat.DamageComponent{{Dice: "1d6+2", Type: "斩击"}}},
				{Name: "短弓", Type: combat.ActionTypeAttack, AttackBonus: 4,
					Damages: []combat.DamageComponent{{Dice: "1d6+2", Type: "穿刺"}}},
			},
		},
		{
			ID:    "srd-ogre",
			Name:  "食人魔",
			CR:    2,
			Types: []string{"giant"},
			AC:    11,
			HP:    templates.HP{Average: 59, Roll: "7d10+21"},
			Speed: templates.Speed{Walk: 40},
			Abilities: combat.Abilities{
				Str: 19, Dex: 8, Con: 16, Int: 5, Wis: 7, Cha: 7,
			},
			Actions: []*combat.Action{
				{Name: "巨棍", Type: combat.ActionTypeAttack, AttackBonus: 6,
					Damages: []combat.DamageComponent{{Dice: "2d8+4", Type: "钝击"}}},
				{Name: "标枪", Type: combat.ActionTypeAttack, AttackBonus: 6,
					Damages: []combat.DamageComponent{{Dice: "2d6+4", Type: "穿刺"}}},
			},
		},
		{
			ID:    "srd-adult-red-dragon",
			Name:  "成年红龙",
			CR:    17,
			Types: []string{"dragon"},
			AC:    19,
			HP:    templates.HP{Average: 256, Roll: "19d12+133"},
			Speed: templates.Speed{Walk: 40, Fly: 80},
			Abilities: combat.Abilities{
				Str: 27, Dex: 10, Con: 25, Int: 16, Wis: 13, Cha: 21,
			},
			Profile: combat.DamageProfile{Immunities: []string{"火焰"}},
			Actions: []*combat.Action{
				{Name: "咬击", Type: combat.ActionTypeAttack, AttackBonus: 14,
					Damages: []combat.DamageComponent{{Dice: "2d10+8", Type: "穿刺"}}},
				{Name: "吐息武器", Type: combat.ActionTypeSave, SaveAbility: "dex", SaveDC: 21,
					OnSuccess: "half", Recharge: 6,
					Damages: []combat.DamageComponent{{Dice: "18d6", Type: "火焰"}}},
			},
		},
		{
			ID:        "pc-aeric",
			Name:      "艾瑞克",
			AC:        16,
			HPMax:     32,
			HPCurrent: 32,
			Abilities: combat.Abilities{
				Str: 16, Dex: 12, Con: 14, Int: 10, Wis: 10, Cha: 12,
			},
			Features: "一名经验丰富的战士，忠诚可靠。",
		},
		{
			ID:        "pc-lyn",
			Name:      "琳",
			AC:        14,
			HPMax:     24,
			HPCurrent: 24,
			Abilities: combat.Abilities{
				Str: 8, Dex: 16, Con: 12, Int: 14, Wis: 12, Cha: 10,
			},
			Features: "一位敏捷的游侠，擅长弓箭和野外生存。",
		},
	}
}
