package http_handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baechuer/kanjo/services/account-service/internal/transport/http/dto"
)

func createRole(t *testing.T, env *testEnv, name string) dto.RoleView {
	t.Helper()
	rr := httptest.NewRecorder()
	env.catalog.CreateRole(rr, httptest.NewRequest(http.MethodPost, "/roles", mustJSONBody(t, map[string]string{
		"name": name, "description": name + " role",
	})))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var data dto.RoleData
	mustReadData(t, rr, &data)
	return data.Role
}

func createSkill(t *testing.T, env *testEnv, body map[string]any) dto.SkillView {
	t.Helper()
	rr := httptest.NewRecorder()
	env.catalog.CreateSkill(rr, httptest.NewRequest(http.MethodPost, "/skills", mustJSONBody(t, body)))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var data dto.SkillData
	mustReadData(t, rr, &data)
	return data.Skill
}

func TestCreateRole_DuplicateName_400(t *testing.T) {
	env := newTestEnv(t)
	createRole(t, env, "Backend")

	rr := httptest.NewRecorder()
	env.catalog.CreateRole(rr, httptest.NewRequest(http.MethodPost, "/roles", mustJSONBody(t, map[string]string{"name": "Backend"})))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "role_name_taken", errorCode(t, rr))
}

func TestCreateRole_InvalidName_400(t *testing.T) {
	env := newTestEnv(t)
	rr := httptest.NewRecorder()
	env.catalog.CreateRole(rr, httptest.NewRequest(http.MethodPost, "/roles", mustJSONBody(t, map[string]string{"name": "bad!name"})))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetRole_NotFound_404(t *testing.T) {
	env := newTestEnv(t)
	rr := httptest.NewRecorder()
	env.catalog.GetRole(rr, withURLParams(httptest.NewRequest(http.MethodGet, "/", nil), "id", "missing"))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "role_not_found", errorCode(t, rr))
}

func TestUpdateRole_PatchesDescription(t *testing.T) {
	env := newTestEnv(t)
	role := createRole(t, env, "Backend")

	rr := httptest.NewRecorder()
	env.catalog.UpdateRole(rr, withURLParams(httptest.NewRequest(http.MethodPatch, "/", mustJSONBody(t, map[string]string{
		"description": "servers",
	})), "id", role.ID))

	var data dto.RoleData
	mustReadData(t, rr, &data)
	assert.Equal(t, "Backend", data.Role.Name)
	assert.Equal(t, "servers", data.Role.Description)
}

func TestAddAndRemoveSkill(t *testing.T) {
	env := newTestEnv(t)
	role := createRole(t, env, "Backend")
	skill := createSkill(t, env, map[string]any{"name": "Go"})

	add := httptest.NewRecorder()
	env.catalog.AddSkillToRole(add, withURLParams(httptest.NewRequest(http.MethodPost, "/", mustJSONBody(t, map[string]string{
		"skillId": skill.ID,
	})), "id", role.ID))
	require.Equal(t, http.StatusOK, add.Code, add.Body.String())

	var added dto.RoleSkillData
	mustReadData(t, add, &added)
	assert.Len(t, added.Role.Skills, 1)
	require.NotNil(t, added.Skill.RoleID)
	assert.Equal(t, role.ID, *added.Skill.RoleID)

	again := httptest.NewRecorder()
	env.catalog.AddSkillToRole(again, withURLParams(httptest.NewRequest(http.MethodPost, "/", mustJSONBody(t, map[string]string{
		"skillId": skill.ID,
	})), "id", role.ID))
	assert.Equal(t, http.StatusBadRequest, again.Code)
	assert.Equal(t, "skill_already_assigned", errorCode(t, again))

	rm := httptest.NewRecorder()
	env.catalog.RemoveSkillFromRole(rm, withURLParams(httptest.NewRequest(http.MethodDelete, "/", nil), "id", role.ID, "skillId", skill.ID))
	var removed dto.RoleSkillData
	mustReadData(t, rm, &removed)
	assert.Empty(t, removed.Role.Skills)
	assert.Nil(t, removed.Skill.RoleID)
}

func TestDeleteRole_UnassignsSkills(t *testing.T) {
	env := newTestEnv(t)
	role := createRole(t, env, "Frontend")
	skill := createSkill(t, env, map[string]any{"name": "React", "roleId": role.ID})

	rr := httptest.NewRecorder()
	env.catalog.DeleteRole(rr, withURLParams(httptest.NewRequest(http.MethodDelete, "/", nil), "id", role.ID))
	require.Equal(t, http.StatusNoContent, rr.Code)

	get := httptest.NewRecorder()
	env.catalog.GetSkill(get, withURLParams(httptest.NewRequest(http.MethodGet, "/", nil), "id", skill.ID))
	var data dto.SkillData
	mustReadData(t, get, &data)
	assert.Nil(t, data.Skill.RoleID, "expected skill detached after role delete")
}

func TestCreateSkill_UnknownRole_404(t *testing.T) {
	env := newTestEnv(t)
	rr := httptest.NewRecorder()
	env.catalog.CreateSkill(rr, httptest.NewRequest(http.MethodPost, "/", mustJSONBody(t, map[string]any{
		"name": "Go", "roleId": "missing",
	})))
	assert.Equal(t, http.StatusNotFound, rr.Code, rr.Body.String())
}

func TestSkillQueries(t *testing.T) {
	env := newTestEnv(t)
	role := createRole(t, env, "Data")
	createSkill(t, env, map[string]any{"name": "SQL", "roleId": role.ID})
	createSkill(t, env, map[string]any{"name": "Excel"})

	list := httptest.NewRecorder()
	env.catalog.ListSkills(list, httptest.NewRequest(http.MethodGet, "/", nil))
	var all dto.SkillsData
	mustReadData(t, list, &all)
	assert.Equal(t, 2, all.Results)

	un := httptest.NewRecorder()
	env.catalog.UnassignedSkills(un, httptest.NewRequest(http.MethodGet, "/", nil))
	var unassigned dto.SkillsData
	mustReadData(t, un, &unassigned)
	require.Equal(t, 1, unassigned.Results)
	assert.Equal(t, "Excel", unassigned.Skills[0].Name)

	by := httptest.NewRecorder()
	env.catalog.SkillsByRole(by, withURLParams(httptest.NewRequest(http.MethodGet, "/", nil), "roleId", role.ID))
	var byRole dto.SkillsData
	mustReadData(t, by, &byRole)
	require.Equal(t, 1, byRole.Results)
	assert.Equal(t, "SQL", byRole.Skills[0].Name)

	missing := httptest.NewRecorder()
	env.catalog.SkillsByRole(missing, withURLParams(httptest.NewRequest(http.MethodGet, "/", nil), "roleId", "nope"))
	assert.Equal(t, http.StatusNotFound, missing.Code)
}

func TestAssignAndUnassignSkill(t *testing.T) {
	env := newTestEnv(t)
	role := createRole(t, env, "Ops")
	skill := createSkill(t, env, map[string]any{"name": "Terraform"})

	as := httptest.NewRecorder()
	env.catalog.AssignSkill(as, withURLParams(httptest.NewRequest(http.MethodPatch, "/", mustJSONBody(t, map[string]string{
		"roleId": role.ID,
	})), "id", skill.ID))
	var assigned dto.SkillData
	mustReadData(t, as, &assigned)
	require.NotNil(t, assigned.Skill.Role)
	assert.Equal(t, "Ops", assigned.Skill.Role.Name)

	un := httptest.NewRecorder()
	env.catalog.UnassignSkill(un, withURLParams(httptest.NewRequest(http.MethodPatch, "/", nil), "id", skill.ID))
	var unassigned dto.SkillData
	mustReadData(t, un, &unassigned)
	assert.Nil(t, unassigned.Skill.RoleID)

	again := httptest.NewRecorder()
	env.catalog.UnassignSkill(again, withURLParams(httptest.NewRequest(http.MethodPatch, "/", nil), "id", skill.ID))
	assert.Equal(t, http.StatusBadRequest, again.Code, again.Body.String())
}

func TestRolesWithSkillCount(t *testing.T) {
	env := newTestEnv(t)
	role := createRole(t, env, "QA")
	for _, n := range []string{"A1", "A2", "A3", "A4", "A5", "A6"} {
		createSkill(t, env, map[string]any{"name": n, "roleId": role.ID})
	}

	rr := httptest.NewRecorder()
	env.catalog.RolesWithSkillCount(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	var data dto.RolesData
	mustReadData(t, rr, &data)
	require.Equal(t, 1, data.Results)
	assert.Equal(t, 6, data.Roles[0].SkillCount)
	assert.Len(t, data.Roles[0].Skills, 5)
}
