package dto

import "strings"

type CreateRoleRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=50,role_name"`
	Description string `json:"description" validate:"max=500"`
}

func (r *CreateRoleRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	return Validate(r)
}

type UpdateRoleRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=2,max=50,role_name"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
}

func (r *UpdateRoleRequest) Validate() error {
	r.Name = trimPtr(r.Name)
	return Validate(r)
}

type AddSkillToRoleRequest struct {
	SkillID string `json:"skillId" validate:"required"`
}

func (r *AddSkillToRoleRequest) Validate() error {
	r.SkillID = strings.TrimSpace(r.SkillID)
	return Validate(r)
}

type CreateSkillRequest struct {
	Name        string  `json:"name" validate:"required,min=2,max=50,skill_name"`
	Description string  `json:"description" validate:"max=500"`
	RoleID      *string `json:"roleId,omitempty"`
}

func (r *CreateSkillRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	return Validate(r)
}

type UpdateSkillRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=2,max=50,skill_name"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
	RoleID      *string `json:"roleId,omitempty"`
}

func (r *UpdateSkillRequest) Validate() error {
	r.Name = trimPtr(r.Name)
	return Validate(r)
}

type AssignSkillRequest struct {
	RoleID string `json:"roleId" validate:"required"`
}

func (r *AssignSkillRequest) Validate() error {
	r.RoleID = strings.TrimSpace(r.RoleID)
	return Validate(r)
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
