package dice

import (
	"strconv"
	"strings"
)

// DiceTerm is a single NdM term inside a damage expression
type DiceTerm struct {
	Count int
	Sides int
}

// Expression is a parsed damage expression like "2d6+3"
type Expression struct {
	Dice []DiceTerm
	Flat int
}

// Empty reports whether the expression rolls and adds nothing
func (e *Expression) Empty() bool {
	return len(e.Dice) == 0 && e.Flat == 0
}

// ParseExpression parses a dice expression of the form "2d6+1d4+3-1".
// Malformed terms are dropped rather than rejected; a fully malformed
// or empty expression parses to zero. Operator-entered action data is
// unvalidated, so the roll path never errors on it.
func ParseExpression(expr string) *Expression {
	out := &Expression{}
	if strings.TrimSpace(expr) == "" {
		return out
	}

	parts := strings.Split(strings.ReplaceAll(expr, "-", "+-"), "+")
	for _, part := range parts {
		term := strings.ToLower(strings.TrimSpace(part))
		if term == "" {
			continue
		}
		if strings.Contains(term, "d") {
			fields := strings.SplitN(term, "d", 2)
			count, err := strconv.Atoi(fields[0])
			if err != nil || count < 1 {
				count = 1
			}
			sides, err := strconv.Atoi(fields[1])
			if err != nil || sides < 1 {
				continue
			}
			out.Dice = append(out.Dice, DiceTerm{Count: count, Sides: sides})
		} else if flat, err := strconv.Atoi(term); err == nil {
			out.Flat += flat
		}
	}
	return out
}

// DamageRoll is the result of rolling one damage expression
type DamageRoll struct {
	Total int
	Rolls []int
	Flat  int
}

// RollDamage rolls a damage expression. A critical doubles the number
// of dice in every term; the flat modifier is never doubled. The total
// floors at zero.
func RollDamage(r Roller, expr string, crit bool) (*DamageRoll, error) {
	parsed := ParseExpression(expr)
	out := &DamageRoll{Flat: parsed.Flat, Total: parsed.Flat}

	for _, term := range parsed.Dice {
		count := term.Count
		if crit {
			count *= 2
		}
		result, err := r.Roll(count, term.Sides, 0)
		if err != nil {
			return nil, err
		}
		out.Rolls = append(out.Rolls, result.Rolls...)
		out.Total += result.RawTotal
	}

	if out.Total < 0 {
		out.Total = 0
	}
	return out, nil
}

// RollExpression rolls an arbitrary expression for the quick-dice tool,
// keeping per-die breakdowns for display.
func RollExpression(r Roller, expr string) (*DamageRoll, error) {
	return RollDamage(r, expr, false)
}
