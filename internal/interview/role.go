// Package interview holds the session model shared by the interview components.
package interview

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidRole       = errors.New("invalid role")
	ErrInvalidDifficulty = errors.New("invalid difficulty")
)

// Role is the job the candidate practices for.
type Role string

const (
	RoleEngineer Role = "engineer"
	RoleSales    Role = "sales"
	RoleRetail   Role = "retail"
)

// Roles lists every supported role in menu order.
var Roles = []Role{RoleEngineer, RoleSales, RoleRetail}

var roleTitles = map[Role]string{
	RoleEngineer: "Software Engineer",
	RoleSales:    "Sales Representative",
	RoleRetail:   "Retail Associate",
}

// ParseRole accepts the role name in any case.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
	return r, nil
}

func (r Role) Valid() bool {
	_, ok := roleTitles[r]
	return ok
}

// Title returns the position name used in replies and summaries.
func (r Role) Title() string {
	if title, ok := roleTitles[r]; ok {
		return title
	}
	return string(r)
}

// Difficulty is the bucket questions are drawn from.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Difficulties lists every difficulty from easiest to hardest.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidDifficulty, s)
	}
	return d, nil
}

func (d Difficulty) Valid() bool {
	return d.rank() >= 0
}

func (d Difficulty) rank() int {
	for i, known := range Difficulties {
		if d == known {
			return i
		}
	}
	return -1
}

// Below reports whether d is easier than other.
func (d Difficulty) Below(other Difficulty) bool {
	return d.rank() < other.rank()
}
