package http_handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/baechuer/kanjo/services/account-service/internal/application/catalog"
	"github.com/baechuer/kanjo/services/account-service/internal/logger"
	"github.com/baechuer/kanjo/services/account-service/internal/transport/http/dto"
	"github.com/baechuer/kanjo/services/account-service/internal/transport/http/middleware"
	"github.com/baechuer/kanjo/services/account-service/internal/transport/http/response"
)

type CatalogHandler struct {
	svc *catalog.Service
}

func NewCatalogHandler(svc *catalog.Service) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

// decodeValid decodes the body into req and runs its Validate method.
// On failure the error is already written.
func decodeValid(w http.ResponseWriter, r *http.Request, req interface{ Validate() error }) bool {
	if err := response.DecodeJSON(w, r, req); err != nil {
		response.WriteError(w, r, err)
		return false
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return false
	}
	return true
}

func logAdmin(r *http.Request, action, target string) {
	actor, _ := middleware.UserIDFromContext(r.Context())
	logger.WithCtx(r.Context()).Info().
		Str("actor_id", actor).
		Str("target_id", target).
		Msg(action)
}

// -------- Roles --------

func (h *CatalogHandler) CreateRole(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateRoleRequest
	if !decodeValid(w, r, &req) {
		return
	}

	role, err := h.svc.CreateRole(r.Context(), catalog.RoleInput{Name: req.Name, Description: req.Description})
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	logAdmin(r, "role_created", role.ID)
	response.Created(w, dto.RoleData{Role: dto.NewRoleView(role)})
}

func (h *CatalogHandler) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.svc.ListRoles(r.Context())
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.NewRolesData(roles))
}

func (h *CatalogHandler) RolesWithSkillCount(w http.ResponseWriter, r *http.Request) {
	roles, err := h.svc.RolesWithSkillCount(r.Context())
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.NewRolesData(roles))
}

func (h *CatalogHandler) GetRole(w http.ResponseWriter, r *http.Request) {
	role, err := h.svc.GetRole(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.RoleData{Role: dto.NewRoleView(role)})
}

func (h *CatalogHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateRoleRequest
	if !decodeValid(w, r, &req) {
		return
	}

	role, err := h.svc.UpdateRole(r.Context(), chi.URLParam(r, "id"), catalog.RolePatch{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	logAdmin(r, "role_updated", role.ID)
	response.OK(w, dto.RoleData{Role: dto.NewRoleView(role)})
}

func (h *CatalogHandler) DeleteRole(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.DeleteRole(r.Context(), id); err != nil {
		response.WriteError(w, r, err)
		return
	}
	logAdmin(r, "role_deleted", id)
	response.NoContent(w)
}

func (h *CatalogHandler) AddSkillToRole(w http.ResponseWriter, r *http.Request) {
	var req dto.AddSkillToRoleRequest
	if !decodeValid(w, r, &req) {
		return
	}

	role, skill, err := h.svc.AddSkillToRole(r.Context(), chi.URLParam(r, "id"), req.SkillID)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.RoleSkillData{Role: dto.NewRoleView(role), Skill: dto.NewSkillView(skill)})
}

func (h *CatalogHandler) RemoveSkillFromRole(w http.ResponseWriter, r *http.Request) {
	role, skill, err := h.svc.RemoveSkillFromRole(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "skillId"))
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.RoleSkillData{Role: dto.NewRoleView(role), Skill: dto.NewSkillView(skill)})
}

// -------- Skills --------

func (h *CatalogHandler) CreateSkill(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateSkillRequest
	if !decodeValid(w, r, &req) {
		return
	}

	skill, err := h.svc.CreateSkill(r.Context(), catalog.SkillInput{
		Name:        req.Name,
		Description: req.Description,
		RoleID:      req.RoleID,
	})
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	logAdmin(r, "skill_created", skill.ID)
	response.Created(w, dto.SkillData{Skill: dto.NewSkillView(skill)})
}

func (h *CatalogHandler) ListSkills(w http.ResponseWriter, r *http.Request) {
	skills, err := h.svc.ListSkills(r.Context())
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.NewSkillsData(skills))
}

func (h *CatalogHandler) UnassignedSkills(w http.ResponseWriter, r *http.Request) {
	skills, err := h.svc.UnassignedSkills(r.Context())
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.NewSkillsData(skills))
}

func (h *CatalogHandler) SkillsByRole(w http.ResponseWriter, r *http.Request) {
	skills, err := h.svc.SkillsByRole(r.Context(), chi.URLParam(r, "roleId"))
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.NewSkillsData(skills))
}

func (h *CatalogHandler) GetSkill(w http.ResponseWriter, r *http.Request) {
	skill, err := h.svc.GetSkill(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.SkillData{Skill: dto.NewSkillView(skill)})
}

func (h *CatalogHandler) UpdateSkill(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateSkillRequest
	if !decodeValid(w, r, &req) {
		return
	}

	skill, err := h.svc.UpdateSkill(r.Context(), chi.URLParam(r, "id"), catalog.SkillPatch{
		Name:        req.Name,
		Description: req.Description,
		RoleID:      req.RoleID,
	})
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	logAdmin(r, "skill_updated", skill.ID)
	response.OK(w, dto.SkillData{Skill: dto.NewSkillView(skill)})
}

func (h *CatalogHandler) DeleteSkill(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.DeleteSkill(r.Context(), id); err != nil {
		response.WriteError(w, r, err)
		return
	}
	logAdmin(r, "skill_deleted", id)
	response.NoContent(w)
}

func (h *CatalogHandler) AssignSkill(w http.ResponseWriter, r *http.Request) {
	var req dto.AssignSkillRequest
	if !decodeValid(w, r, &req) {
		return
	}

	skill, err := h.svc.AssignSkill(r.Context(), chi.URLParam(r, "id"), req.RoleID)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.SkillData{Skill: dto.NewSkillView(skill)})
}

func (h *CatalogHandler) UnassignSkill(w http.ResponseWriter, r *http.Request) {
	skill, err := h.svc.UnassignSkill(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.SkillData{Skill: dto.NewSkillView(skill)})
}
