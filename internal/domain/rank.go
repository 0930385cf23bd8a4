package domain

import "fmt"

// Score-based rank tiers, sushi-themed. Cutoffs are inclusive upper bounds.
var scoreRanks = []struct {
	max   int
	label string
}{
	{5, "Sushi Newbie"},
	{15, "Maki Novice"},
	{25, "Sashimi Skilled"},
	{50, "Brainy Botan"},
}

const topScoreRank = "Sushi Einstein"

// Streak-based titles, highest threshold first. A streak title takes
// precedence over the score rank once the streak reaches 3.
var streakRanks = []struct {
	min   int
	label string
}{
	{30, "Wasabi Warlord"},
	{20, "Rollmaster Ronin"},
	{10, "Nigiri Ninja"},
	{5, "Tempura Titan"},
	{3, "Streak Samurai"},
}

// RankLabel derives the display rank for a score/streak pair.
func RankLabel(score, streak int) string {
	if streak >= 3 {
		for _, r := range streakRanks {
			if streak >= r.min {
				return fmt.Sprintf("%s (%d in a row)", r.label, streak)
			}
		}
	}
	for _, r := range scoreRanks {
		if score <= r.max {
			return r.label
		}
	}
	return topScoreRank
}
