package catalog

import (
	"context"

	"github.com/baechuer/kanjo/services/account-service/internal/domain"
)

// RoleRepo persists catalog roles. Reads include the role's skills.
// Missing rows return domain.ErrRoleNotFound.
type RoleRepo interface {
	Create(ctx context.Context, r domain.JobRole) (domain.JobRole, error)
	List(ctx context.Context) ([]domain.JobRole, error)
	// ListWithSkillCount fills SkillCount and at most preview skills per role.
	ListWithSkillCount(ctx context.Context, preview int) ([]domain.JobRole, error)
	GetByID(ctx context.Context, id string) (domain.JobRole, error)
	GetByName(ctx context.Context, name string) (domain.JobRole, error)
	Update(ctx context.Context, r domain.JobRole) (domain.JobRole, error)
	// Delete detaches the role's skills and removes the role atomically.
	Delete(ctx context.Context, id string) error
}

// SkillRepo persists skills. Missing rows return domain.ErrSkillNotFound.
type SkillRepo interface {
	Create(ctx context.Context, s domain.Skill) (domain.Skill, error)
	List(ctx context.Context) ([]domain.Skill, error)
	ListByRole(ctx context.Context, roleID string) ([]domain.Skill, error)
	ListUnassigned(ctx context.Context) ([]domain.Skill, error)
	GetByID(ctx context.Context, id string) (domain.Skill, error)
	GetByName(ctx context.Context, name string) (domain.Skill, error)
	Update(ctx context.Context, s domain.Skill) (domain.Skill, error)
	SetRole(ctx context.Context, skillID string, roleID *string) (domain.Skill, error)
	Delete(ctx context.Context, id string) error
}
