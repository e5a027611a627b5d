package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/baechuer/kanjo/services/account-service/internal/domain"
)

type RoleRepo struct {
	db *sql.DB
}

func NewRoleRepo(db *sql.DB) *RoleRepo {
	return &RoleRepo{db: db}
}

const roleColumns = `id, name, description, created_at, updated_at`

func roleResult(rr roleRow, err error) (domain.JobRole, error) {
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.JobRole{}, domain.ErrRoleNotFound()
		}
		if isUniqueViolation(err) {
			return domain.JobRole{}, domain.ErrRoleNameTaken()
		}
		return domain.JobRole{}, domain.ErrDBUnavailable(err)
	}
	return rr.toDomain(), nil
}

// attachSkills fills Skills (newest first, at most preview when > 0) and SkillCount.
func (r *RoleRepo) attachSkills(ctx context.Context, roles []domain.JobRole, onlyID string, preview int) error {
	if len(roles) == 0 {
		return nil
	}

	var (
		rows *sql.Rows
		err  error
	)
	if onlyID != "" {
		const q = `SELECT id, name, role_id FROM skills WHERE role_id = $1 ORDER BY created_at DESC;`
		rows, err = r.db.QueryContext(ctx, q, onlyID)
	} else {
		const q = `SELECT id, name, role_id FROM skills WHERE role_id IS NOT NULL ORDER BY created_at DESC;`
		rows, err = r.db.QueryContext(ctx, q)
	}
	if err != nil {
		return domain.ErrDBUnavailable(err)
	}
	defer rows.Close()

	idx := make(map[string]int, len(roles))
	for i := range roles {
		idx[roles[i].ID] = i
	}
	for rows.Next() {
		var ref domain.SkillRef
		var roleID string
		if err := rows.Scan(&ref.ID, &ref.Name, &roleID); err != nil {
			return domain.ErrDBUnavailable(err)
		}
		i, ok := idx[roleID]
		if !ok {
			continue
		}
		roles[i].SkillCount++
		if preview <= 0 || len(roles[i].Skills) < preview {
			roles[i].Skills = append(roles[i].Skills, ref)
		}
	}
	if err := rows.Err(); err != nil {
		return domain.ErrDBUnavailable(err)
	}
	return nil
}

func (r *RoleRepo) one(ctx context.Context, role domain.JobRole, err error) (domain.JobRole, error) {
	if err != nil {
		return domain.JobRole{}, err
	}
	list := []domain.JobRole{role}
	if err := r.attachSkills(ctx, list, role.ID, 0); err != nil {
		return domain.JobRole{}, err
	}
	return list[0], nil
}

// ---------- catalog.RoleRepo ----------

func (r *RoleRepo) Create(ctx context.Context, role domain.JobRole) (domain.JobRole, error) {
	const q = `
INSERT INTO roles (id, name, description)
VALUES ($1,$2,$3)
RETURNING ` + roleColumns + `;
`
	created, err := roleResult(scanRole(r.db.QueryRowContext(ctx, q, role.ID, role.Name, role.Description)))
	return r.one(ctx, created, err)
}

func (r *RoleRepo) List(ctx context.Context) ([]domain.JobRole, error) {
	return r.list(ctx, 0)
}

func (r *RoleRepo) ListWithSkillCount(ctx context.Context, preview int) ([]domain.JobRole, error) {
	return r.list(ctx, preview)
}

func (r *RoleRepo) list(ctx context.Context, preview int) ([]domain.JobRole, error) {
	const q = `SELECT ` + roleColumns + ` FROM roles ORDER BY created_at DESC;`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, domain.ErrDBUnavailable(err)
	}
	defer rows.Close()

	out := []domain.JobRole{}
	for rows.Next() {
		rr, err := scanRole(rows)
		if err != nil {
			return nil, domain.ErrDBUnavailable(err)
		}
		out = append(out, rr.toDomain())
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrDBUnavailable(err)
	}

	if err := r.attachSkills(ctx, out, "", preview); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *RoleRepo) GetByID(ctx context.Context, id string) (domain.JobRole, error) {
	const q = `SELECT ` + roleColumns + ` FROM roles WHERE id = $1 LIMIT 1;`
	role, err := roleResult(scanRole(r.db.QueryRowContext(ctx, q, id)))
	return r.one(ctx, role, err)
}

func (r *RoleRepo) GetByName(ctx context.Context, name string) (domain.JobRole, error) {
	const q = `SELECT ` + roleColumns + ` FROM roles WHERE name = $1 LIMIT 1;`
	role, err := roleResult(scanRole(r.db.QueryRowContext(ctx, q, name)))
	return r.one(ctx, role, err)
}

func (r *RoleRepo) Update(ctx context.Context, role domain.JobRole) (domain.JobRole, error) {
	const q = `
UPDATE roles
SET name = $2, description = $3, updated_at = NOW()
WHERE id = $1
RETURNING ` + roleColumns + `;
`
	updated, err := roleResult(scanRole(r.db.QueryRowContext(ctx, q, role.ID, role.Name, role.Description)))
	return r.one(ctx, updated, err)
}

// Delete unassigns the role's skills and removes the role in one transaction.
func (r *RoleRepo) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.ErrDBUnavailable(err)
	}
	defer func() { _ = tx.Rollback() }()

	const detach = `UPDATE skills SET role_id = NULL, updated_at = NOW() WHERE role_id = $1;`
	if _, err := tx.ExecContext(ctx, detach, id); err != nil {
		return domain.ErrDBUnavailable(err)
	}

	const del = `DELETE FROM roles WHERE id = $1;`
	res, err := tx.ExecContext(ctx, del, id)
	if err != nil {
		return domain.ErrDBUnavailable(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.ErrDBUnavailable(err)
	}
	if n == 0 {
		return domain.ErrRoleNotFound()
	}

	if err := tx.Commit(); err != nil {
		return domain.ErrDBUnavailable(err)
	}
	return nil
}
