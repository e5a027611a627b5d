package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/baechuer/kanjo/services/account-service/internal/domain"
)

type RoleInput struct {
	Name        string
	Description string
}

// RolePatch leaves nil fields untouched.
type RolePatch struct {
	Name        *string
	Description *string
}

func (s *Service) CreateRole(ctx context.Context, in RoleInput) (domain.JobRole, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.JobRole{}, domain.ErrMissingField("name")
	}
	if err := s.ensureRoleNameFree(ctx, name, ""); err != nil {
		return domain.JobRole{}, err
	}

	now := s.now()
	return s.roles.Create(ctx, domain.JobRole{
		ID:          uuid.NewString(),
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

func (s *Service) ListRoles(ctx context.Context) ([]domain.JobRole, error) {
	return s.roles.List(ctx)
}

func (s *Service) RolesWithSkillCount(ctx context.Context) ([]domain.JobRole, error) {
	return s.roles.ListWithSkillCount(ctx, skillPreview)
}

func (s *Service) GetRole(ctx context.Context, id string) (domain.JobRole, error) {
	return s.roles.GetByID(ctx, id)
}

func (s *Service) UpdateRole(ctx context.Context, id string, p RolePatch) (domain.JobRole, error) {
	r, err := s.roles.GetByID(ctx, id)
	if err != nil {
		return domain.JobRole{}, err
	}

	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return domain.JobRole{}, domain.ErrInvalidField("name", "empty")
		}
		if name != r.Name {
			if err := s.ensureRoleNameFree(ctx, name, r.ID); err != nil {
				return domain.JobRole{}, err
			}
			r.Name = name
		}
	}
	if p.Description != nil {
		r.Description = strings.TrimSpace(*p.Description)
	}
	r.UpdatedAt = s.now()

	return s.roles.Update(ctx, r)
}

// DeleteRole removes the role; its skills become unassigned.
func (s *Service) DeleteRole(ctx context.Context, id string) error {
	if _, err := s.roles.GetByID(ctx, id); err != nil {
		return err
	}
	return s.roles.Delete(ctx, id)
}

// AddSkillToRole attaches an unassigned skill and returns the updated role.
func (s *Service) AddSkillToRole(ctx context.Context, roleID, skillID string) (domain.JobRole, domain.Skill, error) {
	if _, err := s.roles.GetByID(ctx, roleID); err != nil {
		return domain.JobRole{}, domain.Skill{}, err
	}
	sk, err := s.skills.GetByID(ctx, skillID)
	if err != nil {
		return domain.JobRole{}, domain.Skill{}, err
	}
	if sk.RoleID != nil {
		return domain.JobRole{}, domain.Skill{}, domain.ErrSkillAlreadyAssigned()
	}

	sk, err = s.skills.SetRole(ctx, skillID, &roleID)
	if err != nil {
		return domain.JobRole{}, domain.Skill{}, err
	}
	r, err := s.roles.GetByID(ctx, roleID)
	return r, sk, err
}

// RemoveSkillFromRole detaches a skill that belongs to roleID.
func (s *Service) RemoveSkillFromRole(ctx context.Context, roleID, skillID string) (domain.JobRole, domain.Skill, error) {
	if _, err := s.roles.GetByID(ctx, roleID); err != nil {
		return domain.JobRole{}, domain.Skill{}, err
	}
	sk, err := s.skills.GetByID(ctx, skillID)
	if err != nil {
		return domain.JobRole{}, domain.Skill{}, err
	}
	if sk.RoleID == nil || *sk.RoleID != roleID {
		return domain.JobRole{}, domain.Skill{}, domain.ErrSkillNotInRole()
	}

	sk, err = s.skills.SetRole(ctx, skillID, nil)
	if err != nil {
		return domain.JobRole{}, domain.Skill{}, err
	}
	r, err := s.roles.GetByID(ctx, roleID)
	return r, sk, err
}

func (s *Service) ensureRoleNameFree(ctx context.Context, name, selfID string) error {
	existing, err := s.roles.GetByName(ctx, name)
	switch {
	case err == nil && existing.ID != selfID:
		return domain.ErrRoleNameTaken()
	case err == nil, isNotFound(err):
		return nil
	default:
		return err
	}
}
