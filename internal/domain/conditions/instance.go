package conditions

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/tianyouyingfan/local-simple-dnd-tool/internal/uuid"
)

// Meta carries condition-specific extension data. Only exhaustion uses
// it: Level is the current level 1-6 and StepRounds the duration
// associated with that level.
type Meta struct {
	Level      int `json:"level,omitempty"`
	StepRounds int `json:"step_rounds,omitempty"`
}

// Instance is an applied status effect on a participant
type Instance struct {
	ID   string `json:"id"`
	Key  Key    `json:"key,omitempty"`
	Name string `json:"name,omitempty"`
	Icon string `json:"icon,omitempty"`

	// Rounds remaining; decremented at the owner's turn start and the
	// instance is purged when it reaches zero
	Rounds int `json:"rounds"`

	// SourceUID is the participant who imposed the condition, required
	// for conditions whose identity depends on source
	SourceUID string `json:"source_uid,omitempty"`

	Meta Meta `json:"meta,omitempty"`
}

// Legacy saves identify statuses by display name only. The variant
// spelling 致盲 appeared in older catalogs alongside 目盲.
var legacyNameToKey = map[string]Key{
	"倒地 Prone":         Prone,
	"束缚 Restrained":    Restrained,
	"致盲 Blinded":       Blinded,
	"目盲 Blinded":       Blinded,
	"中毒 Poisoned":      Poisoned,
	"魅惑 Charmed":       Charmed,
	"恐慌 Frightened":    Frightened,
	"耳聋 Deafened":      Deafened,
	"擒抱 Grappled":      Grappled,
	"失能 Incapacitated": Incapacitated,
	"隐形 Invisible":     Invisible,
	"麻痹 Paralyzed":     Paralyzed,
	"石化 Petrified":     Petrified,
	"震慑 Stunned":       Stunned,
	"昏迷 Unconscious":   Unconscious,
}

var exhaustionNameRE = regexp.MustCompile(`力竭\s*([1-6])\s*级`)

// ParseExhaustionName extracts the level from a legacy exhaustion
// display name like "力竭 3级", returning 0 when it is not one
func ParseExhaustionName(name string) int {
	m := exhaustionNameRE.FindStringSubmatch(name)
	if m == nil {
		return 0
	}
	level, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return level
}

// KeyFromStatusName resolves a legacy free-text status name to its
// canonical key, or "" if unrecognized
func KeyFromStatusName(name string) Key {
	if ParseExhaustionName(name) > 0 {
		return Exhaustion
	}
	return legacyNameToKey[strings.TrimSpace(name)]
}

// DisplayName builds the canonical display name for an instance.
// Exhaustion renders its level; unrecognized statuses keep their raw name.
func DisplayName(inst *Instance) string {
	if inst == nil {
		return ""
	}
	key := NormalizeKey(inst.Key)
	if key == "" {
		key = KeyFromStatusName(inst.Name)
	}
	if key == "" {
		return inst.Name
	}
	if key == Exhaustion {
		level := NormalizeExhaustionLevel(inst.Meta.Level)
		if level == 0 {
			level = ParseExhaustionName(inst.Name)
		}
		if level > 0 {
			return fmt.Sprintf("力竭 %d级", level)
		}
	}
	def := definitions[key]
	return def.DisplayName
}

// Normalize produces a canonical instance from a raw status descriptor:
// assigns an id if missing, resolves the key from either an explicit
// key or a legacy name, defaults the icon from the registry, and
// backfills the exhaustion level from a legacy name. Returns nil for a
// nil descriptor. This runs once at the load/apply boundary; steady
// state logic branches on Key only, never on name strings.
func Normalize(raw *Instance, gen uuid.Generator) *Instance {
	if raw == nil {
		return nil
	}

	out := *raw
	out.Key = NormalizeKey(raw.Key)
	if out.Key == "" {
		out.Key = KeyFromStatusName(raw.Name)
	}

	if out.ID == "" {
		out.ID = gen.New()
	}
	if out.Rounds <= 0 {
		out.Rounds = 1
	}

	if out.Icon == "" {
		if def, ok := GetDefinition(out.Key); ok {
			out.Icon = def.Icon
		} else {
			out.Icon = "⏳"
		}
	}

	if out.Key == Exhaustion && out.Meta.Level == 0 {
		out.Meta.Level = ParseExhaustionName(raw.Name)
	}

	if out.Name == "" {
		out.Name = DisplayName(&out)
	}

	return &out
}

// Identity returns the stacking identity of an instance: key alone for
// most conditions, key plus source for charmed/frightened. Instances
// with no resolvable key have no identity and never collide.
func Identity(inst *Instance) string {
	if inst == nil {
		return ""
	}
	key := NormalizeKey(inst.Key)
	if key == "" {
		key = KeyFromStatusName(inst.Name)
	}
	if key == "" {
		return ""
	}
	if StackableBySource(key) {
		source := inst.SourceUID
		if source == "" {
			source = "unknown"
		}
		return string(key) + ":" + source
	}
	return string(key)
}
