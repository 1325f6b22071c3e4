package rng

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var ErrInvalidDice = errors.New("rng: invalid dice expression")

// DiceType describes a roll such as 3d6+1.
type DiceType struct {
	NDice   int
	DieType int
	Bonus   int
}

var diceExpr = regexp.MustCompile(`^(\d+)d(\d+)([+-]\d+)?$`)

// String formats the dice in NdS+B notation.
func (d DiceType) String() string {
	switch {
	case d.Bonus > 0:
		return fmt.Sprintf("%dd%d+%d", d.NDice, d.DieType, d.Bonus)
	case d.Bonus < 0:
		return fmt.Sprintf("%dd%d%d", d.NDice, d.DieType, d.Bonus)
	default:
		return fmt.Sprintf("%dd%d", d.NDice, d.DieType)
	}
}

// ParseDiceString parses "NdS", "NdS+B" or "NdS-B". Whitespace is ignored.
func ParseDiceString(expr string) (DiceType, error) {
	clean := strings.Join(strings.Fields(expr), "")
	m := diceExpr.FindStringSubmatch(clean)
	if m == nil {
		return DiceType{}, fmt.Errorf("%w: %q", ErrInvalidDice, expr)
	}

	n, err := strconv.Atoi(m[1])
	if err != nil {
		return DiceType{}, fmt.Errorf("%w: %q: %v", ErrInvalidDice, expr, err)
	}
	die, err := strconv.Atoi(m[2])
	if err != nil {
		return DiceType{}, fmt.Errorf("%w: %q: %v", ErrInvalidDice, expr, err)
	}
	if die < 1 {
		return DiceType{}, fmt.Errorf("%w: %q: die needs at least one face", ErrInvalidDice, expr)
	}

	bonus := 0
	if m[3] != "" {
		bonus, err = strconv.Atoi(m[3])
		if err != nil {
			return DiceType{}, fmt.Errorf("%w: %q: %v", ErrInvalidDice, expr, err)
		}
	}
	return DiceType{NDice: n, DieType: die, Bonus: bonus}, nil
}
