package dice

// RollMode selects how a d20 check is rolled
type RollMode string

const (
	ModeNormal       RollMode = "normal"
	ModeAdvantage    RollMode = "adv"
	ModeDisadvantage RollMode = "dis"
)

// RollResult holds the outcome of a dice roll
type RollResult struct {
	Total    int
	Rolls    []int
	Bonus    int
	Count    int
	Sides    int
	RawTotal int
	IsCrit   bool
	IsFumble bool
}

// Roller provides an interface for rolling dice.
// This allows us to inject different implementations for testing.
type Roller interface {
	// Roll rolls a number of dice with the given sides and adds a bonus
	Roll(count, sides, bonus int) (*RollResult, error)

	// RollWithAdvantage rolls twice and keeps the higher die
	RollWithAdvantage(sides, bonus int) (*RollResult, error)

	// RollWithDisadvantage rolls twice and keeps the lower die
	RollWithDisadvantage(sides, bonus int) (*RollResult, error)
}

// RollD20 rolls a d20 check in the given mode. Advantage and
// disadvantage keep both raw rolls for display.
func RollD20(r Roller, mode RollMode) (*RollResult, error) {
	switch mode {
	case ModeAdvantage:
		return r.RollWithAdvantage(20, 0)
	case ModeDisadvantage:
		return r.RollWithDisadvantage(20, 0)
	default:
		return r.Roll(1, 20, 0)
	}
}
