// Package levels holds the researcher level table and the promotion rules
// built on it. Everything here is pure: no I/O, no shared mutable state.
package levels

import (
	"fmt"
	"strings"
)

// Level identifies a researcher tier. The recognized values are a fixed
// contract with the dashboard and the users table.
type Level string

const (
	Student  Level = "student"
	Bronze   Level = "bronze"
	Silver   Level = "silver"
	Gold     Level = "gold"
	Platinum Level = "platinum"
	Diamond  Level = "diamond"
)

// Requirements are the minimum counters needed to attain a level.
type Requirements struct {
	MinProjects  int `json:"min_projects"`
	MinPapers    int `json:"min_papers"`
	MinCitations int `json:"min_citations"`
}

// Definition describes one level.
type Definition struct {
	Level        Level        `json:"level"`
	DisplayName  string       `json:"display_name"`
	Description  string       `json:"description"`
	Requirements Requirements `json:"requirements"`
	Rank         int          `json:"rank"`
}

// table is ordered by rank; index == Rank.
var table = [...]Definition{
	{Level: Student, DisplayName: "Student Researcher", Description: "Starting your research journey", Rank: 0},
	{Level: Bronze, DisplayName: "Bronze Researcher", Description: "3+ projects, 1+ paper",
		Requirements: Requirements{MinProjects: 3, MinPapers: 1, MinCitations: 0}, Rank: 1},
	{Level: Silver, DisplayName: "Silver Researcher", Description: "5+ projects, 3+ papers, 10+ citations",
		Requirements: Requirements{MinProjects: 5, MinPapers: 3, MinCitations: 10}, Rank: 2},
	{Level: Gold, DisplayName: "Gold Researcher", Description: "10+ projects, 5+ papers, 50+ citations",
		Requirements: Requirements{MinProjects: 10, MinPapers: 5, MinCitations: 50}, Rank: 3},
	{Level: Platinum, DisplayName: "Platinum Researcher", Description: "20+ projects, 10+ papers, 100+ citations",
		Requirements: Requirements{MinProjects: 20, MinPapers: 10, MinCitations: 100}, Rank: 4},
	{Level: Diamond, DisplayName: "Diamond Researcher", Description: "50+ projects, 25+ papers, 500+ citations",
		Requirements: Requirements{MinProjects: 50, MinPapers: 25, MinCitations: 500}, Rank: 5},
}

// All returns a copy of the level table in rank order.
func All() []Definition {
	out := make([]Definition, len(table))
	copy(out, table[:])
	return out
}

// Parse normalizes s and reports whether it names a known level.
func Parse(s string) (Level, bool) {
	l := Level(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := rankOf(l); ok {
		return l, true
	}
	return Student, false
}

// Valid reports whether l is one of the recognized identifiers.
func (l Level) Valid() bool {
	_, ok := Parse(string(l))
	return ok
}

func rankOf(l Level) (int, bool) {
	for i := range table {
		if table[i].Level == l {
			return i, true
		}
	}
	return 0, false
}

// Rank returns the position of l in the table. Unknown values rank as student.
func Rank(l Level) int {
	return Describe(l).Rank
}

// Describe returns the definition of l, degrading to student for unknown or
// empty input.
func Describe(l Level) Definition {
	parsed, _ := Parse(string(l))
	r, _ := rankOf(parsed)
	return table[r]
}

// Next returns the definition one rank above l. Diamond has no next level.
func Next(l Level) (Definition, bool) {
	r := Rank(l) + 1
	if r >= len(table) {
		return Definition{}, false
	}
	return table[r], true
}

// Highest is the terminal level.
func Highest() Definition {
	return table[len(table)-1]
}

// Validate checks the table invariants: rank order matches position and every
// threshold is non-decreasing as rank increases.
func Validate() error {
	for i := range table {
		if table[i].Rank != i {
			return fmt.Errorf("level %q has rank %d at position %d", table[i].Level, table[i].Rank, i)
		}
		if i == 0 {
			continue
		}
		prev, cur := table[i-1].Requirements, table[i].Requirements
		if cur.MinProjects < prev.MinProjects || cur.MinPapers < prev.MinPapers || cur.MinCitations < prev.MinCitations {
			return fmt.Errorf("level %q has lower thresholds than %q", table[i].Level, table[i-1].Level)
		}
	}
	return nil
}
