package models

// LevelRange is one band of the engagement level ladder.
type LevelRange struct {
	Name string `json:"name"`
	Min  int    `json:"min"`
	Max  int    `json:"max"`
	Hint string `json:"hint"`
}

// Levels is the engagement ladder, ordered by ascending score band.
var Levels = []LevelRange{
	{Name: "Ember", Min: 0, Max: 19, Hint: "A faint ember, your journey just begins."},
	{Name: "Spark", Min: 20, Max: 39, Hint: "You're lighting up the space with ideas."},
	{Name: "Flame", Min: 40, Max: 69, Hint: "Your energy is felt across the community."},
	{Name: "Blaze", Min: 70, Max: 94, Hint: "You're a blazing fire driving discussions."},
	{Name: "Aurora", Min: 95, Max: 999, Hint: "A rare light that inspires others."},
}

// EngagementScore weighs a user's activity counts into a single score.
func EngagementScore(posts, comments, likes int64) int {
	return int(posts*5 + comments*2 + likes)
}

// LevelForScore returns the level band containing score. Scores outside
// every band fall back to the first level.
func LevelForScore(score int) LevelRange {
	for _, l := range Levels {
		if score >= l.Min && score <= l.Max {
			return l
		}
	}
	return Levels[0]
}
