package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/baechuer/kanjo/services/account-service/internal/domain"
)

type SkillRepo struct {
	db *sql.DB
}

func NewSkillRepo(db *sql.DB) *SkillRepo {
	return &SkillRepo{db: db}
}

const skillSelect = `
SELECT s.id, s.name, s.description, s.role_id, r.name, s.created_at, s.updated_at
FROM skills s
LEFT JOIN roles r ON r.id = s.role_id
`

func skillErr(err error) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return domain.ErrSkillNotFound()
	case isUniqueViolation(err):
		return domain.ErrSkillNameTaken()
	case isForeignKeyViolation(err):
		return domain.ErrRoleNotFound()
	default:
		return domain.ErrDBUnavailable(err)
	}
}

func (r *SkillRepo) queryList(ctx context.Context, q string, args ...any) ([]domain.Skill, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, domain.ErrDBUnavailable(err)
	}
	defer rows.Close()

	out := []domain.Skill{}
	for rows.Next() {
		sr, err := scanSkill(rows)
		if err != nil {
			return nil, domain.ErrDBUnavailable(err)
		}
		out = append(out, sr.toDomain())
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrDBUnavailable(err)
	}
	return out, nil
}

// write runs a statement touching one skill, then reloads it with its role name.
func (r *SkillRepo) write(ctx context.Context, id, q string, args ...any) (domain.Skill, error) {
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return domain.Skill{}, skillErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.Skill{}, domain.ErrDBUnavailable(err)
	}
	if n == 0 {
		return domain.Skill{}, domain.ErrSkillNotFound()
	}
	return r.GetByID(ctx, id)
}

// ---------- catalog.SkillRepo ----------

func (r *SkillRepo) Create(ctx context.Context, s domain.Skill) (domain.Skill, error) {
	const q = `INSERT INTO skills (id, name, description, role_id) VALUES ($1,$2,$3,$4);`
	return r.write(ctx, s.ID, q, s.ID, s.Name, s.Description, s.RoleID)
}

func (r *SkillRepo) List(ctx context.Context) ([]domain.Skill, error) {
	return r.queryList(ctx, skillSelect+`ORDER BY s.created_at DESC;`)
}

func (r *SkillRepo) ListByRole(ctx context.Context, roleID string) ([]domain.Skill, error) {
	return r.queryList(ctx, skillSelect+`WHERE s.role_id = $1 ORDER BY s.created_at DESC;`, roleID)
}

func (r *SkillRepo) ListUnassigned(ctx context.Context) ([]domain.Skill, error) {
	return r.queryList(ctx, skillSelect+`WHERE s.role_id IS NULL ORDER BY s.created_at DESC;`)
}

func (r *SkillRepo) GetByID(ctx context.Context, id string) (domain.Skill, error) {
	sr, err := scanSkill(r.db.QueryRowContext(ctx, skillSelect+`WHERE s.id = $1 LIMIT 1;`, id))
	if err != nil {
		return domain.Skill{}, skillErr(err)
	}
	return sr.toDomain(), nil
}

func (r *SkillRepo) GetByName(ctx context.Context, name string) (domain.Skill, error) {
	sr, err := scanSkill(r.db.QueryRowContext(ctx, skillSelect+`WHERE s.name = $1 LIMIT 1;`, name))
	if err != nil {
		return domain.Skill{}, skillErr(err)
	}
	return sr.toDomain(), nil
}

func (r *SkillRepo) Update(ctx context.Context, s domain.Skill) (domain.Skill, error) {
	const q = `
UPDATE skills
SET name = $2, description = $3, role_id = $4, updated_at = NOW()
WHERE id = $1;
`
	return r.write(ctx, s.ID, q, s.ID, s.Name, s.Description, s.RoleID)
}

func (r *SkillRepo) SetRole(ctx context.Context, skillID string, roleID *string) (domain.Skill, error) {
	const q = `UPDATE skills SET role_id = $2, updated_at = NOW() WHERE id = $1;`
	return r.write(ctx, skillID, q, skillID, roleID)
}

func (r *SkillRepo) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM skills WHERE id = $1;`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return domain.ErrDBUnavailable(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.ErrDBUnavailable(err)
	}
	if n == 0 {
		return domain.ErrSkillNotFound()
	}
	return nil
}
