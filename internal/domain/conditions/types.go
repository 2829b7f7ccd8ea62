package conditions

// Key identifies a canonical condition
type Key string

// Standard D&D 5e conditions
const (
	Blinded       Key = "blinded"
	Charmed       Key = "charmed"
	Deafened      Key = "deafened"
	Frightened    Key = "frightened"
	Grappled      Key = "grappled"
	Incapacitated Key = "incapacitated"
	Invisible     Key = "invisible"
	Paralyzed     Key = "paralyzed"
	Petrified     Key = "petrified"
	Poisoned      Key = "poisoned"
	Prone         Key = "prone"
	Restrained    Key = "restrained"
	Stunned       Key = "stunned"
	Unconscious   Key = "unconscious"
	Exhaustion    Key = "exhaustion" // Has levels 1-6
)

// Exhaustion level bounds
const (
	ExhaustionMin = 1
	ExhaustionMax = 6
)

// AutomationLevel says how much of a condition the engine enforces
type AutomationLevel string

const (
	// AutomationFull means the engine enforces every mechanical effect
	AutomationFull AutomationLevel = "full"

	// AutomationPartial means some effects need operator input, such as
	// line of sight or distance
	AutomationPartial AutomationLevel = "partial"

	// AutomationTag means the condition is informational only
	AutomationTag AutomationLevel = "tag"
)

// Definition is the static registry entry for a condition
type Definition struct {
	Key             Key             `json:"key"`
	DisplayName     string          `json:"display_name"`
	Icon            string          `json:"icon"`
	AutomationLevel AutomationLevel `json:"automation_level"`

	// RequiresSource marks conditions that may only be imposed by
	// another participant's action, never picked ad hoc by the operator
	RequiresSource bool `json:"requires_source"`
}

// Display names keep the original tool's bilingual labels because
// persisted legacy saves identify statuses by these exact strings.
var definitions = map[Key]Definition{
	Blinded:       {Key: Blinded, DisplayName: "目盲 Blinded", Icon: "🕶️", AutomationLevel: AutomationPartial},
	Charmed:       {Key: Charmed, DisplayName: "魅惑 Charmed", Icon: "💞", AutomationLevel: AutomationPartial, RequiresSource: true},
	Deafened:      {Key: Deafened, DisplayName: "耳聋 Deafened", Icon: "🔇", AutomationLevel: AutomationTag},
	Frightened:    {Key: Frightened, DisplayName: "恐慌 Frightened", Icon: "😱", AutomationLevel: AutomationPartial, RequiresSource: true},
	Grappled:      {Key: Grappled, DisplayName: "擒抱 Grappled", Icon: "🤼", AutomationLevel: AutomationTag},
	Incapacitated: {Key: Incapacitated, DisplayName: "失能 Incapacitated", Icon: "⛔", AutomationLevel: AutomationFull},
	Invisible:     {Key: Invisible, DisplayName: "隐形 Invisible", Icon: "👻", AutomationLevel: AutomationPartial},
	Paralyzed:     {Key: Paralyzed, DisplayName: "麻痹 Paralyzed", Icon: "🧊", AutomationLevel: AutomationFull},
	Petrified:     {Key: Petrified, DisplayName: "石化 Petrified", Icon: "🗿", AutomationLevel: AutomationFull},
	Poisoned:      {Key: Poisoned, DisplayName: "中毒 Poisoned", Icon: "☠️", AutomationLevel: AutomationFull},
	Prone:         {Key: Prone, DisplayName: "倒地 Prone", Icon: "🛌", AutomationLevel: AutomationFull},
	Restrained:    {Key: Restrained, DisplayName: "束缚 Restrained", Icon: "⛓️", AutomationLevel: AutomationPartial},
	Stunned:       {Key: Stunned, DisplayName: "震慑 Stunned", Icon: "💫", AutomationLevel: AutomationFull},
	Unconscious:   {Key: Unconscious, DisplayName: "昏迷 Unconscious", Icon: "😴", AutomationLevel: AutomationFull},
	Exhaustion:    {Key: Exhaustion, DisplayName: "力竭 Exhaustion", Icon: "🥀", AutomationLevel: AutomationPartial},
}

// ExhaustionEffect is one row of the exhaustion level table
type ExhaustionEffect struct {
	Level  int
	Effect string
}

// ExhaustionTable lists the cumulative per-level effects, for display
var ExhaustionTable = []ExhaustionEffect{
	{Level: 1, Effect: "属性检定具有劣势。"},
	{Level: 2, Effect: "速度减半。"},
	{Level: 3, Effect: "攻击检定和豁免检定具有劣势。"},
	{Level: 4, Effect: "生命值上限减半。"},
	{Level: 5, Effect: "速度降为0。"},
	{Level: 6, Effect: "死亡。"},
}

// NormalizeKey returns the canonical key, or "" if unrecognized
func NormalizeKey(key Key) Key {
	if _, ok := definitions[key]; ok {
		return key
	}
	return ""
}

// GetDefinition looks up a condition's registry entry
func GetDefinition(key Key) (Definition, bool) {
	def, ok := definitions[NormalizeKey(key)]
	return def, ok
}

// RequiresSource reports whether a condition may only be applied by
// another participant's action
func RequiresSource(key Key) bool {
	def, ok := GetDefinition(key)
	return ok && def.RequiresSource
}

// StackableBySource reports whether identity includes the imposing
// participant, allowing independent instances from distinct sources
func StackableBySource(key Key) bool {
	k := NormalizeKey(key)
	return k == Charmed || k == Frightened
}

// CatalogEntry is an operator-facing {name, icon} pair for a status picker
type CatalogEntry struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// Catalog returns every registered condition as picker entries,
// conditions requiring a source last so the default pick is usable.
func Catalog() []CatalogEntry {
	ordered := []Key{
		Prone, Restrained, Blinded, Poisoned, Deafened, Grappled,
		Incapacitated, Invisible, Paralyzed, Petrified, Stunned,
		Unconscious, Exhaustion, Charmed, Frightened,
	}
	out := make([]CatalogEntry, 0, len(ordered))
	for _, key := range ordered {
		def := definitions[key]
		out = append(out, CatalogEntry{Name: def.DisplayName, Icon: def.Icon})
	}
	return out
}

// NormalizeExhaustionLevel clamps a level into the valid range,
// returning 0 for out-of-range input
func NormalizeExhaustionLevel(level int) int {
	if level < ExhaustionMin || level > ExhaustionMax {
		return 0
	}
	return level
}
