package domain

import "time"

// JobRole is a catalog role (e.g. "Backend Developer") grouping skills.
type JobRole struct {
	ID          string
	Name        string
	Description string
	Skills      []SkillRef
	SkillCount  int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Skill belongs to at most one JobRole.
type Skill struct {
	ID          string
	Name        string
	Description string
	RoleID      *string
	Role        *RoleRef
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type SkillRef struct {
	ID   string
	Name string
}

type RoleRef struct {
	ID   string
	Name string
}
