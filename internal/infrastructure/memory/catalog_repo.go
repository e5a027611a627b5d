package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/baechuer/kanjo/services/account-service/internal/domain"
)

// Catalog holds roles and skills behind one lock so that the role/skill
// relation stays consistent. Roles() and Skills() expose the two ports.
type Catalog struct {
	mu     sync.RWMutex
	roles  map[string]domain.JobRole
	skills map[string]domain.Skill
}

func NewCatalog() *Catalog {
	return &Catalog{
		roles:  make(map[string]domain.JobRole),
		skills: make(map[string]domain.Skill),
	}
}

type RoleRepo struct{ c *Catalog }
type SkillRepo struct{ c *Catalog }

func (c *Catalog) Roles() *RoleRepo   { return &RoleRepo{c: c} }
func (c *Catalog) Skills() *SkillRepo { return &SkillRepo{c: c} }

// ---------- helpers (caller holds the lock) ----------

func (c *Catalog) hydrateRole(r domain.JobRole) domain.JobRole {
	r.Skills = nil
	for _, s := range c.sortedSkills() {
		if s.RoleID != nil && *s.RoleID == r.ID {
			r.Skills = append(r.Skills, domain.SkillRef{ID: s.ID, Name: s.Name})
		}
	}
	r.SkillCount = len(r.Skills)
	return r
}

func (c *Catalog) hydrateSkill(s domain.Skill) domain.Skill {
	s.Role = nil
	if s.RoleID != nil {
		if r, ok := c.roles[*s.RoleID]; ok {
			s.Role = &domain.RoleRef{ID: r.ID, Name: r.Name}
		}
	}
	return s
}

// newest first, like the SQL ORDER BY created_at DESC
func (c *Catalog) sortedRoles() []domain.JobRole {
	out := make([]domain.JobRole, 0, len(c.roles))
	for _, r := range c.roles {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (c *Catalog) sortedSkills() []domain.Skill {
	out := make([]domain.Skill, 0, len(c.skills))
	for _, s := range c.skills {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// ---------- catalog.RoleRepo ----------

func (r *RoleRepo) Create(ctx context.Context, role domain.JobRole) (domain.JobRole, error) {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()

	for _, existing := range r.c.roles {
		if existing.Name == role.Name {
			return domain.JobRole{}, domain.ErrRoleNameTaken()
		}
	}
	role.Skills = nil
	r.c.roles[role.ID] = role
	return r.c.hydrateRole(role), nil
}

func (r *RoleRepo) List(ctx context.Context) ([]domain.JobRole, error) {
	r.c.mu.RLock()
	defer r.c.mu.RUnlock()

	out := []domain.JobRole{}
	for _, role := range r.c.sortedRoles() {
		out = append(out, r.c.hydrateRole(role))
	}
	return out, nil
}

func (r *RoleRepo) ListWithSkillCount(ctx context.Context, preview int) ([]domain.JobRole, error) {
	roles, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range roles {
		if len(roles[i].Skills) > preview {
			roles[i].Skills = roles[i].Skills[:preview]
		}
	}
	return roles, nil
}

func (r *RoleRepo) GetByID(ctx context.Context, id string) (domain.JobRole, error) {
	r.c.mu.RLock()
	defer r.c.mu.RUnlock()

	role, ok := r.c.roles[id]
	if !ok {
		return domain.JobRole{}, domain.ErrRoleNotFound()
	}
	return r.c.hydrateRole(role), nil
}

func (r *RoleRepo) GetByName(ctx context.Context, name string) (domain.JobRole, error) {
	r.c.mu.RLock()
	defer r.c.mu.RUnlock()

	for _, role := range r.c.roles {
		if role.Name == name {
			return r.c.hydrateRole(role), nil
		}
	}
	return domain.JobRole{}, domain.ErrRoleNotFound()
}

func (r *RoleRepo) Update(ctx context.Context, role domain.JobRole) (domain.JobRole, error) {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()

	if _, ok := r.c.roles[role.ID]; !ok {
		return domain.JobRole{}, domain.ErrRoleNotFound()
	}
	for _, existing := range r.c.roles {
		if existing.ID != role.ID && existing.Name == role.Name {
			return domain.JobRole{}, domain.ErrRoleNameTaken()
		}
	}
	role.Skills = nil
	r.c.roles[role.ID] = role
	return r.c.hydrateRole(role), nil
}

func (r *RoleRepo) Delete(ctx context.Context, id string) error {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()

	if _, ok := r.c.roles[id]; !ok {
		return domain.ErrRoleNotFound()
	}
	for sid, s := range r.c.skills {
		if s.RoleID != nil && *s.RoleID == id {
			s.RoleID = nil
			r.c.skills[sid] = s
		}
	}
	delete(r.c.roles, id)
	return nil
}

// ---------- catalog.SkillRepo ----------

func (s *SkillRepo) Create(ctx context.Context, sk domain.Skill) (domain.Skill, error) {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()

	for _, existing := range s.c.skills {
		if existing.Name == sk.Name {
			return domain.Skill{}, domain.ErrSkillNameTaken()
		}
	}
	if sk.RoleID != nil {
		if _, ok := s.c.roles[*sk.RoleID]; !ok {
			return domain.Skill{}, domain.ErrRoleNotFound()
		}
	}
	s.c.skills[sk.ID] = sk
	return s.c.hydrateSkill(sk), nil
}

func (s *SkillRepo) filter(keep func(domain.Skill) bool) []domain.Skill {
	s.c.mu.RLock()
	defer s.c.mu.RUnlock()

	out := []domain.Skill{}
	for _, sk := range s.c.sortedSkills() {
		if keep(sk) {
			out = append(out, s.c.hydrateSkill(sk))
		}
	}
	return out
}

func (s *SkillRepo) List(ctx context.Context) ([]domain.Skill, error) {
	return s.filter(func(domain.Skill) bool { return true }), nil
}

func (s *SkillRepo) ListByRole(ctx context.Context, roleID string) ([]domain.Skill, error) {
	return s.filter(func(sk domain.Skill) bool { return sk.RoleID != nil && *sk.RoleID == roleID }), nil
}

func (s *SkillRepo) ListUnassigned(ctx context.Context) ([]domain.Skill, error) {
	return s.filter(func(sk domain.Skill) bool { return sk.RoleID == nil }), nil
}

func (s *SkillRepo) GetByID(ctx context.Context, id string) (domain.Skill, error) {
	s.c.mu.RLock()
	defer s.c.mu.RUnlock()

	sk, ok := s.c.skills[id]
	if !ok {
		return domain.Skill{}, domain.ErrSkillNotFound()
	}
	return s.c.hydrateSkill(sk), nil
}

func (s *SkillRepo) GetByName(ctx context.Context, name string) (domain.Skill, error) {
	s.c.mu.RLock()
	defer s.c.mu.RUnlock()

	for _, sk := range s.c.skills {
		if sk.Name == name {
			return s.c.hydrateSkill(sk), nil
		}
	}
	return domain.Skill{}, domain.ErrSkillNotFound()
}

func (s *SkillRepo) Update(ctx context.Context, sk domain.Skill) (domain.Skill, error) {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()

	if _, ok := s.c.skills[sk.ID]; !ok {
		return domain.Skill{}, domain.ErrSkillNotFound()
	}
	for _, existing := range s.c.skills {
		if existing.ID != sk.ID && existing.Name == sk.Name {
			return domain.Skill{}, domain.ErrSkillNameTaken()
		}
	}
	if sk.RoleID != nil {
		if _, ok := s.c.roles[*sk.RoleID]; !ok {
			return domain.Skill{}, domain.ErrRoleNotFound()
		}
	}
	sk.Role = nil
	s.c.skills[sk.ID] = sk
	return s.c.hydrateSkill(sk), nil
}

func (s *SkillRepo) SetRole(ctx context.Context, skillID string, roleID *string) (domain.Skill, error) {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()

	sk, ok := s.c.skills[skillID]
	if !ok {
		return domain.Skill{}, domain.ErrSkillNotFound()
	}
	if roleID != nil {
		if _, ok := s.c.roles[*roleID]; !ok {
			return domain.Skill{}, domain.ErrRoleNotFound()
		}
		id := *roleID
		roleID = &id
	}
	sk.RoleID = roleID
	s.c.skills[skillID] = sk
	return s.c.hydrateSkill(sk), nil
}

func (s *SkillRepo) Delete(ctx context.Context, id string) error {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()

	if _, ok := s.c.skills[id]; !ok {
		return domain.ErrSkillNotFound()
	}
	delete(s.c.skills, id)
	return nil
}
