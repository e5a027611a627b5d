package postgres

import (
	"database/sql"
	"time"

	"github.com/baechuer/kanjo/services/account-service/internal/domain"
)

type roleRow struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (rr roleRow) toDomain() domain.JobRole {
	return domain.JobRole{
		ID:          rr.ID,
		Name:        rr.Name,
		Description: rr.Description,
		Skills:      []domain.SkillRef{},
		CreatedAt:   rr.CreatedAt,
		UpdatedAt:   rr.UpdatedAt,
	}
}

type skillRow struct {
	ID          string
	Name        string
	Description string
	RoleID      sql.NullString
	RoleName    sql.NullString
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (sr skillRow) toDomain() domain.Skill {
	s := domain.Skill{
		ID:          sr.ID,
		Name:        sr.Name,
		Description: sr.Description,
		CreatedAt:   sr.CreatedAt,
		UpdatedAt:   sr.UpdatedAt,
	}
	if sr.RoleID.Valid {
		id := sr.RoleID.String
		s.RoleID = &id
		s.Role = &domain.RoleRef{ID: id, Name: sr.RoleName.String}
	}
	return s
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRole(s rowScanner) (roleRow, error) {
	var rr roleRow
	err := s.Scan(&rr.ID, &rr.Name, &rr.Description, &rr.CreatedAt, &rr.UpdatedAt)
	return rr, err
}

func scanSkill(s rowScanner) (skillRow, error) {
	var sr skillRow
	err := s.Scan(&sr.ID, &sr.Name, &sr.Description, &sr.RoleID, &sr.RoleName, &sr.CreatedAt, &sr.UpdatedAt)
	return sr, err
}
