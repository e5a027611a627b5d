package catalog

import (
	"errors"
	"time"

	"github.com/baechuer/kanjo/services/account-service/internal/domain"
)

// skillPreview is how many skills the role summary shows.
const skillPreview = 5

type Service struct {
	roles  RoleRepo
	skills SkillRepo
	now    func() time.Time
}

func NewService(roles RoleRepo, skills SkillRepo) *Service {
	return &Service{roles: roles, skills: skills, now: time.Now}
}

// WithClock overrides the timestamp source.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

func isNotFound(err error) bool {
	var de *domain.Error
	return errors.As(err, &de) && de.Kind == domain.KindNotFound
}
