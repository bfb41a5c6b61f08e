package transport

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/rpggio/gantry/internal/domain/activity"
	"github.com/rpggio/gantry/internal/domain/person"
	"github.com/rpggio/gantry/internal/domain/project"
	"github.com/rpggio/gantry/internal/domain/task"
	"github.com/rpggio/gantry/internal/timeline"
)

type registerRequest struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

type registerResponse struct {
	Person *person.Person `json:"person"`
	APIKey string         `json:"api_key"`
}

type projectRequest struct {
	Name        *string        `json:"name"`
	Description *string        `json:"description"`
	StartDate   *timeline.Date `json:"start_date"`
	EndDate     *timeline.Date `json:"end_date"`
	ClampTasks  bool           `json:"clamp_tasks"`
}

type memberRequest struct {
	Email string `json:"email"`
}

type removedResponse struct {
	Removed int `json:"removed"`
}

type taskRequest struct {
	Name         *string        `json:"name"`
	Description  *string        `json:"description"`
	AssigneeID   *string        `json:"assignee_id"`
	Unassign     bool           `json:"unassign"`
	StartDate    *timeline.Date `json:"start_date"`
	EndDate      *timeline.Date `json:"end_date"`
	Status       *task.Status   `json:"status"`
	Dependencies []string       `json:"dependencies"`
}

type progressRequest struct {
	Progress *int        `json:"progress"`
	Status   task.Status `json:"status"`
}

func (s *Server) handleRegister(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request")
	}
	if s.svc.Keys == nil {
		return c.JSON(http.StatusNotFound, errorBody{Error: "registration disabled"})
	}

	ctx := c.Request().Context()
	p, err := s.svc.People.Register(ctx, person.RegisterRequest{Email: req.Email, FullName: req.FullName})
	if err != nil {
		return s.fail(c, err)
	}
	key, err := s.svc.Keys.Create(ctx, p.ID, "registration")
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusCreated, registerResponse{Person: p, APIKey: key})
}

func (s *Server) handleMe(c echo.Context) error {
	p, err := s.svc.People.Get(c.Request().Context(), actorOf(c))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (s *Server) handleMyTasks(c echo.Context) error {
	actor := actorOf(c)
	tasks, err := s.svc.Tasks.ListByAssignee(c.Request().Context(), actor, actor)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, tasks)
}

func (s *Server) handleSearchPeople(c echo.Context) error {
	limit, err := intQuery(c, "limit", 0)
	if err != nil {
		return badRequest(c, err.Error())
	}
	people, err := s.svc.People.SearchTeammates(c.Request().Context(), actorOf(c), c.QueryParam("q"), limit)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, people)
}

func (s *Server) handleListProjects(c echo.Context) error {
	projects, err := s.svc.Projects.List(c.Request().Context(), actorOf(c))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, projects)
}

func (s *Server) handleCreateProject(c echo.Context) error {
	var req projectRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request")
	}
	proj, err := s.svc.Projects.Create(c.Request().Context(), actorOf(c), project.CreateRequest{
		Name:        deref(req.Name),
		Description: deref(req.Description),
		StartDate:   derefDate(req.StartDate),
		EndDate:     derefDate(req.EndDate),
	})
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusCreated, proj)
}

func (s *Server) handleGetProject(c echo.Context) error {
	proj, err := s.svc.Projects.Get(c.Request().Context(), actorOf(c), c.Param("id"))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, proj)
}

func (s *Server) handleUpdateProject(c echo.Context) error {
	var req projectRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request")
	}
	proj, err := s.svc.Projects.Update(c.Request().Context(), actorOf(c), project.UpdateRequest{
		ID:          c.Param("id"),
		Name:        req.Name,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		ClampTasks:  req.ClampTasks,
	})
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, proj)
}

func (s *Server) handleDeleteProject(c echo.Context) error {
	if err := s.svc.Projects.Delete(c.Request().Context(), actorOf(c), c.Param("id")); err != nil {
		return s.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleListMembers(c echo.Context) error {
	members, err := s.svc.Projects.ListMembers(c.Request().Context(), actorOf(c), c.Param("id"))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, members)
}

func (s *Server) handleAddMember(c echo.Context) error {
	var req memberRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request")
	}
	res, err := s.svc.Projects.AddMember(c.Request().Context(), actorOf(c), c.Param("id"), req.Email)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(statusForMember(res), res)
}

func (s *Server) handleRemoveMember(c echo.Context) error {
	err := s.svc.Projects.RemoveMember(c.Request().Context(), actorOf(c), c.Param("id"), c.Param("personID"))
	if err != nil {
		return s.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleAddTeamMember(c echo.Context) error {
	var req memberRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request")
	}
	res, err := s.svc.Projects.AddMemberToOwnedProjects(c.Request().Context(), actorOf(c), req.Email)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(statusForMember(res), res)
}

func (s *Server) handleRemoveTeamMember(c echo.Context) error {
	n, err := s.svc.Projects.RemoveMemberFromOwnedProjects(c.Request().Context(), actorOf(c), c.Param("personID"))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, removedResponse{Removed: n})
}

func statusForMember(res *project.AddMemberResult) int {
	if res != nil && res.Status == project.StatusInvited {
		return http.StatusAccepted
	}
	return http.StatusCreated
}

func (s *Server) handleListTasks(c echo.Context) error {
	tasks, err := s.svc.Tasks.ListByProject(c.Request().Context(), actorOf(c), c.Param("id"))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, tasks)
}

func (s *Server) handleCreateTask(c echo.Context) error {
	var req taskRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request")
	}
	status := task.StatusNotStarted
	if req.Status != nil {
		status = *req.Status
	}
	t, err := s.svc.Tasks.Create(c.Request().Context(), actorOf(c), task.CreateRequest{
		ProjectID:    c.Param("id"),
		Name:         deref(req.Name),
		Description:  deref(req.Description),
		AssigneeID:   req.AssigneeID,
		StartDate:    derefDate(req.StartDate),
		EndDate:      derefDate(req.EndDate),
		Status:       status,
		Dependencies: req.Dependencies,
	})
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusCreated, t)
}

func (s *Server) handleGetTask(c echo.Context) error {
	t, err := s.svc.Tasks.Get(c.Request().Context(), actorOf(c), c.Param("id"))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, t)
}

func (s *Server) handleUpdateTask(c echo.Context) error {
	var req taskRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request")
	}
	t, err := s.svc.Tasks.Update(c.Request().Context(), actorOf(c), task.UpdateRequest{
		ID:           c.Param("id"),
		Name:         req.Name,
		Description:  req.Description,
		AssigneeID:   req.AssigneeID,
		Unassign:     req.Unassign,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		Status:       req.Status,
		Dependencies: req.Dependencies,
	})
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, t)
}

func (s *Server) handleDeleteTask(c echo.Context) error {
	if err := s.svc.Tasks.Delete(c.Request().Context(), actorOf(c), c.Param("id")); err != nil {
		return s.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleUpdateProgress(c echo.Context) error {
	var req progressRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request")
	}
	t, err := s.svc.Tasks.UpdateProgress(c.Request().Context(), actorOf(c), task.ProgressRequest{
		ID:       c.Param("id"),
		Progress: req.Progress,
		Status:   req.Status,
	})
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, t)
}

func (s *Server) handleProjectTimeline(c echo.Context) error {
	ref, weeks, err := frameQuery(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	chart, err := s.svc.Charts.ProjectTimeline(c.Request().Context(), actorOf(c), ref, weeks)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, chart)
}

func (s *Server) handleProjectChart(c echo.Context) error {
	ref, weeks, err := frameQuery(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	chart, err := s.svc.Charts.ProjectChart(c.Request().Context(), actorOf(c), c.Param("id"), ref, weeks)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, chart)
}

func (s *Server) handleTeamCapacity(c echo.Context) error {
	ref, weeks, err := frameQuery(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	chart, err := s.svc.Charts.TeamCapacity(c.Request().Context(), actorOf(c), ref, weeks)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, chart)
}

func (s *Server) handleActivity(c echo.Context) error {
	limit, err := intQuery(c, "limit", 0)
	if err != nil {
		return badRequest(c, err.Error())
	}
	offset, err := intQuery(c, "offset", 0)
	if err != nil {
		return badRequest(c, err.Error())
	}
	opts := activity.ListActivityOptions{
		ProjectID: c.QueryParam("project_id"),
		Limit:     limit,
		Offset:    offset,
	}
	if id := c.QueryParam("task_id"); id != "" {
		opts.TaskID = &id
	}
	if typ := c.QueryParam("type"); typ != "" {
		at := activity.ActivityType(typ)
		opts.ActivityType = &at
	}
	entries, err := s.svc.Activity.GetRecentActivity(c.Request().Context(), actorOf(c), opts)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, entries)
}

// frameQuery reads the optional date and weeks query parameters.
func frameQuery(c echo.Context) (timeline.Date, int, error) {
	var ref timeline.Date
	if raw := strings.TrimSpace(c.QueryParam("date")); raw != "" {
		d, err := timeline.ParseDate(raw)
		if err != nil {
			return timeline.Date{}, 0, err
		}
		ref = d
	}
	weeks, err := intQuery(c, "weeks", 0)
	if err != nil {
		return timeline.Date{}, 0, err
	}
	if weeks > timeline.MaxWeeks {
		return timeline.Date{}, 0, &queryError{name: "weeks", value: c.QueryParam("weeks")}
	}
	return ref, weeks, nil
}

func intQuery(c echo.Context, name string, def int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, &queryError{name: name, value: raw}
	}
	return n, nil
}

type queryError struct {
	name, value string
}

func (e *queryError) Error() string {
	return "invalid " + e.name + " " + strconv.Quote(e.value)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefDate(d *timeline.Date) timeline.Date {
	if d == nil {
		return timeline.Date{}
	}
	return *d
}
