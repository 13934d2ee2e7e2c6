package core

// LevelTable holds the xp needed to leave each level: Steps[0] takes a user
// from level 1 to 2. Levels past the table keep growing by Tail per level.
type LevelTable struct {
	Steps []int64
	Tail  int64
}

func DefaultLevels() LevelTable {
	return LevelTable{
		Steps: []int64{100, 200, 400, 700, 1100, 1600, 2200, 2900, 3700, 4600},
		Tail:  1000,
	}
}

// Next returns the xp needed to advance from level.
func (t LevelTable) Next(level int) int64 {
	if level < 1 {
		level = 1
	}
	if idx := level - 1; idx < len(t.Steps) {
		return t.Steps[idx]
	}
	last := int64(0)
	if len(t.Steps) > 0 {
		last = t.Steps[len(t.Steps)-1]
	}
	tail := t.Tail
	if tail <= 0 {
		tail = 1
	}
	return last + int64(level-len(t.Steps))*tail
}

// Apply adds amount to xp and consumes thresholds while they are met,
// so one call may advance several levels. It returns the levels gained.
func (t LevelTable) Apply(level int, xp, amount int64) (int, int64, int) {
	if level < 1 {
		level = 1
	}
	xp += amount
	gained := 0
	for {
		next := t.Next(level)
		if xp < next {
			return level, xp, gained
		}
		xp -= next
		level++
		gained++
	}
}
