package dice

// randomRoller implements Roller using the package-level roll functions
type randomRoller struct{}

// NewRandomRoller creates a new random dice roller
func NewRandomRoller() Roller {
	return &randomRoller{}
}

// Roll implements Roller.Roll
func (r *randomRoller) Roll(count, sides, bonus int) (*RollResult, error) {
	return Roll(count, sides, bonus)
}

// RollFormula implements Roller.RollFormula
func (r *randomRoller) RollFormula(formula string) (*RollResult, error) {
	return RollFormula(formula)
}
