package dice

import (
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
)

// RollResult holds the outcome of evaluating dice
type RollResult struct {
	Total   int
	Rolls   []int
	Bonus   int
	Formula string
}

// Roll rolls count dice of the given size and adds a flat bonus
func Roll(count, size, bonus int) (*RollResult, error) {
	if count < 1 {
		return nil, errors.New("invalid dice count")
	}

	if size < 1 {
		return nil, errors.New("invalid dice size")
	}

	total := 0
	out := make([]int, count)
	for i := 0; i < count; i++ {
		roll := rand.Intn(size) + 1
		total += roll
		out[i] = roll
	}

	return &RollResult{
		Total: total + bonus,
		Rolls: out,
		Bonus: bonus,
	}, nil
}

// RollFormula evaluates a formula of "+"-separated terms, each either a dice
// term like "2d6" or a flat integer. Whitespace around terms is tolerated so
// formulas built by appending modifiers ("1d8 + 3") evaluate cleanly.
func RollFormula(formula string) (*RollResult, error) {
	terms := strings.Split(formula, "+")

	result := &RollResult{Formula: formula}
	for _, term := range terms {
		term = strings.TrimSpace(term)
		if term == "" {
			return nil, fmt.Errorf("invalid formula %q", formula)
		}

		if !strings.Contains(term, "d") {
			flat, err := strconv.Atoi(term)
			if err != nil {
				return nil, fmt.Errorf("invalid formula %q", formula)
			}
			result.Total += flat
			result.Bonus += flat
			continue
		}

		parts := strings.Split(term, "d")
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid formula %q", formula)
		}

		count, err := strconv.Atoi(parts[0])
		if err != nil {
			return nil, fmt.Errorf("invalid formula %q", formula)
		}
		size, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, fmt.Errorf("invalid formula %q", formula)
		}

		rolled, err := Roll(count, size, 0)
		if err != nil {
			return nil, err
		}
		result.Total += rolled.Total
		result.Rolls = append(result.Rolls, rolled.Rolls...)
	}

	return result, nil
}

// String renders a compact roll summary for chat display
func (r *RollResult) String() string {
	compact := strings.ReplaceAll(fmt.Sprintf("%v", r.Rolls), " ", "")
	return fmt.Sprintf("**%d** : %s", r.Total, compact)
}
