package dto

import (
	"time"

	"github.com/baechuer/kanjo/services/account-service/internal/domain"
)

// UserView is the only externally visible shape of a user.
type UserView struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Role            string    `json:"role"`
	IsEmailVerified bool      `json:"isEmailVerified"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func NewUserView(u domain.User) UserView {
	return UserView{
		ID:              u.ID,
		Name:            u.Name,
		Email:           u.Email,
		Role:            u.Role,
		IsEmailVerified: u.EmailVerified,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

type UserData struct {
	User UserView `json:"user"`
}

type MessageData struct {
	Message string `json:"message"`
}

// -------- Catalog --------

type SkillRefView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type RoleView struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Skills      []SkillRefView `json:"skills"`
	SkillCount  int            `json:"skillCount"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

func NewRoleView(r domain.JobRole) RoleView {
	skills := make([]SkillRefView, 0, len(r.Skills))
	for _, s := range r.Skills {
		skills = append(skills, SkillRefView{ID: s.ID, Name: s.Name})
	}
	return RoleView{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Skills:      skills,
		SkillCount:  r.SkillCount,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

type RoleRefView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type SkillView struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	RoleID      *string      `json:"roleId"`
	Role        *RoleRefView `json:"role"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

func NewSkillView(s domain.Skill) SkillView {
	v := SkillView{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		RoleID:      s.RoleID,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
	if s.Role != nil {
		v.Role = &RoleRefView{ID: s.Role.ID, Name: s.Role.Name}
	}
	return v
}

type RoleData struct {
	Role RoleView `json:"role"`
}

type RolesData struct {
	Results int        `json:"results"`
	Roles   []RoleView `json:"roles"`
}

func NewRolesData(roles []domain.JobRole) RolesData {
	out := RolesData{Results: len(roles), Roles: make([]RoleView, 0, len(roles))}
	for _, r := range roles {
		out.Roles = append(out.Roles, NewRoleView(r))
	}
	return out
}

type SkillData struct {
	Skill SkillView `json:"skill"`
}

type SkillsData struct {
	Results int         `json:"results"`
	Skills  []SkillView `json:"skills"`
}

func NewSkillsData(skills []domain.Skill) SkillsData {
	out := SkillsData{Results: len(skills), Skills: make([]SkillView, 0, len(skills))}
	for _, s := range skills {
		out.Skills = append(out.Skills, NewSkillView(s))
	}
	return out
}

type RoleSkillData struct {
	Role  RoleView  `json:"role"`
	Skill SkillView `json:"skill"`
}
