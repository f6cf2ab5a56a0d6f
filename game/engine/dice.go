package engine

// Dice rolls a single six-sided die and tracks the run of consecutive sixes
type Dice struct {
	rng              Random
	bonusRollOnSix   bool
	consecutiveSixes int
}

// NewDice creates a die. A nil rng uses the production source.
//
// With bonusRollOnSix disabled, which is the production behaviour, a six never
// grants another roll. When enabled, a six rolled while fewer than two sixes
// preceded it reports a bonus roll.
func NewDice(rng Random, bonusRollOnSix bool) *Dice {
	if rng == nil {
		rng = NewRandom()
	}
	return &Dice{
		rng:            rng,
		bonusRollOnSix: bonusRollOnSix,
	}
}

// Roll returns a value in [1, 6]
func (d *Dice) Roll() RollResult {
	value := randomIndex(d.rng, DiceSides) + 1

	bonus := d.bonusRollOnSix && value == DiceSides && d.consecutiveSixes < 2

	if value == DiceSides {
		d.consecutiveSixes++
	} else {
		d.consecutiveSixes = 0
	}

	return RollResult{Value: value, BonusRoll: bonus}
}

// ConsecutiveSixes returns the current run of sixes
func (d *Dice) ConsecutiveSixes() int {
	return d.consecutiveSixes
}

// SetConsecutiveSixes restores the streak, used when a saved game is loaded
func (d *Dice) SetConsecutiveSixes(n int) {
	if n < 0 {
		n = 0
	}
	d.consecutiveSixes = n
}

// Reset clears the streak
func (d *Dice) Reset() {
	d.consecutiveSixes = 0
}

// BackwardSteps returns how far a roll reflects back from the terminal cell.
// It is zero when the roll does not pass the terminal index trackLength-1.
func BackwardSteps(position, rollValue, trackLength int) int {
	remaining := trackLength - position - 1
	if rollValue > remaining {
		return rollValue - remaining
	}
	return 0
}
