package dice

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// MockRoller implements Roller for testing with predetermined results
type MockRoller struct {
	mu        sync.Mutex
	rolls     []int
	rollIndex int
}

// NewMockRoller creates a new mock dice roller
func NewMockRoller() *MockRoller {
	return &MockRoller{
		rolls: []int{},
	}
}

// SetNextRoll sets the next roll result
func (m *MockRoller) SetNextRoll(roll int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rolls = append(m.rolls, roll)
}

// SetRolls sets multiple roll results
func (m *MockRoller) SetRolls(rolls []int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rolls = rolls
	m.rollIndex = 0
}

// Reset clears all rolls and resets the index
func (m *MockRoller) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rolls = []int{}
	m.rollIndex = 0
}

// getNextRoll returns the next predetermined roll
func (m *MockRoller) getNextRoll() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.rollIndex >= len(m.rolls) {
		return 0, fmt.Errorf("no more predetermined rolls available (used %d of %d)", m.rollIndex, len(m.rolls))
	}

	roll := m.rolls[m.rollIndex]
	m.rollIndex++
	return roll, nil
}

// Roll implements Roller.Roll using predetermined values, one per die
func (m *MockRoller) Roll(count, sides, bonus int) (*RollResult, error) {
	rolls := make([]int, count)
	total := 0

	for i := 0; i < count; i++ {
		roll, err := m.getNextRoll()
		if err != nil {
			return nil, err
		}
		rolls[i] = roll
		total += roll
	}

	return &RollResult{
		Total: total + bonus,
		Rolls: rolls,
		Bonus: bonus,
	}, nil
}

// RollFormula implements Roller.RollFormula, consuming one predetermined value
// per die in the formula; flat terms are added as written
func (m *MockRoller) RollFormula(formula string) (*RollResult, error) {
	result := &RollResult{Formula: formula}

	for _, term := range strings.Split(formula, "+") {
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

		rolled, err := m.Roll(count, 0, 0)
		if err != nil {
			return nil, err
		}
		result.Total += rolled.Total
		result.Rolls = append(result.Rolls, rolled.Rolls...)
	}

	return result, nil
}
