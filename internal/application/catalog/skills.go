package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/baechuer/kanjo/services/account-service/internal/domain"
)

type SkillInput struct {
	Name        string
	Description string
	RoleID      *string
}

// SkillPatch leaves nil fields untouched. Use UnassignSkill to clear the role.
type SkillPatch struct {
	Name        *string
	Description *string
	RoleID      *string
}

func (s *Service) CreateSkill(ctx context.Context, in SkillInput) (domain.Skill, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Skill{}, domain.ErrMissingField("name")
	}
	if err := s.ensureSkillNameFree(ctx, name, ""); err != nil {
		return domain.Skill{}, err
	}

	roleID := blankToNil(in.RoleID)
	if roleID != nil {
		if _, err := s.roles.GetByID(ctx, *roleID); err != nil {
			return domain.Skill{}, err
		}
	}

	now := s.now()
	return s.skills.Create(ctx, domain.Skill{
		ID:          uuid.NewString(),
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		RoleID:      roleID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

func (s *Service) ListSkills(ctx context.Context) ([]domain.Skill, error) {
	return s.skills.List(ctx)
}

func (s *Service) UnassignedSkills(ctx context.Context) ([]domain.Skill, error) {
	return s.skills.ListUnassigned(ctx)
}

func (s *Service) GetSkill(ctx context.Context, id string) (domain.Skill, error) {
	return s.skills.GetByID(ctx, id)
}

func (s *Service) SkillsByRole(ctx context.Context, roleID string) ([]domain.Skill, error) {
	if _, err := s.roles.GetByID(ctx, roleID); err != nil {
		return nil, err
	}
	return s.skills.ListByRole(ctx, roleID)
}

func (s *Service) UpdateSkill(ctx context.Context, id string, p SkillPatch) (domain.Skill, error) {
	sk, err := s.skills.GetByID(ctx, id)
	if err != nil {
		return domain.Skill{}, err
	}

	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return domain.Skill{}, domain.ErrInvalidField("name", "empty")
		}
		if name != sk.Name {
			if err := s.ensureSkillNameFree(ctx, name, sk.ID); err != nil {
				return domain.Skill{}, err
			}
			sk.Name = name
		}
	}
	if p.Description != nil {
		sk.Description = strings.TrimSpace(*p.Description)
	}
	if roleID := blankToNil(p.RoleID); roleID != nil && (sk.RoleID == nil || *sk.RoleID != *roleID) {
		if _, err := s.roles.GetByID(ctx, *roleID); err != nil {
			return domain.Skill{}, err
		}
		sk.RoleID = roleID
	}
	sk.UpdatedAt = s.now()

	return s.skills.Update(ctx, sk)
}

func (s *Service) DeleteSkill(ctx context.Context, id string) error {
	if _, err := s.skills.GetByID(ctx, id); err != nil {
		return err
	}
	return s.skills.Delete(ctx, id)
}

// AssignSkill moves a skill to roleID, replacing any previous role.
func (s *Service) AssignSkill(ctx context.Context, skillID, roleID string) (domain.Skill, error) {
	if roleID == "" {
		return domain.Skill{}, domain.ErrMissingField("roleId")
	}
	if _, err := s.skills.GetByID(ctx, skillID); err != nil {
		return domain.Skill{}, err
	}
	if _, err := s.roles.GetByID(ctx, roleID); err != nil {
		return domain.Skill{}, err
	}
	return s.skills.SetRole(ctx, skillID, &roleID)
}

func (s *Service) UnassignSkill(ctx context.Context, skillID string) (domain.Skill, error) {
	sk, err := s.skills.GetByID(ctx, skillID)
	if err != nil {
		return domain.Skill{}, err
	}
	if sk.RoleID == nil {
		return domain.Skill{}, domain.ErrSkillUnassigned()
	}
	return s.skills.SetRole(ctx, skillID, nil)
}

func (s *Service) ensureSkillNameFree(ctx context.Context, name, selfID string) error {
	existing, err := s.skills.GetByName(ctx, name)
	switch {
	case err == nil && existing.ID != selfID:
		return domain.ErrSkillNameTaken()
	case err == nil, isNotFound(err):
		return nil
	default:
		return err
	}
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
