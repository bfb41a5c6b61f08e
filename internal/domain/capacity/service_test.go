package capacity_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rpggio/gantry/internal/domain/capacity"
	"github.com/rpggio/gantry/internal/domain/person"
	"github.com/rpggio/gantry/internal/domain/project"
	"github.com/rpggio/gantry/internal/domain/task"
	"github.com/rpggio/gantry/internal/timeline"
	"github.com/stretchr/testify/require"
)

var d = timeline.MustParseDate

type fakeProjects struct {
	projects map[string]project.Project
	members  map[string][]project.Member
}

func (f *fakeProjects) Get(_ context.Context, _, id string) (*project.Project, error) {
	p, ok := f.projects[id]
	if !ok {
		return nil, project.ErrProjectNotFound
	}
	return &p, nil
}

func (f *fakeProjects) List(context.Context, string) ([]project.Summary, error) {
	var out []project.Summary
	for _, id := range []string{"p1", "p2"} {
		if p, ok := f.projects[id]; ok {
			out = append(out, project.Summary{Project: p})
		}
	}
	return out, nil
}

func (f *fakeProjects) ListMembers(_ context.Context, _, projectID string) ([]project.Member, error) {
	return f.members[projectID], nil
}

type fakeTasks map[string][]task.Task

func (f fakeTasks) ListByProject(ctx context.Context, _, projectID string) ([]task.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f[projectID], nil
}

type memoryCache struct {
	data map[string][]byte
	gets int
}

func (c *memoryCache) Get(_ context.Context, key string, dst any) (bool, error) {
	c.gets++
	b, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *memoryCache) Set(_ context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.data[key] = b
	return nil
}

func member(projectID, id, name string, owner bool) project.Member {
	return project.Member{ProjectID: projectID, Person: person.Person{ID: id, Email: id + "@example.com", FullName: &name}, IsOwner: owner}
}

func assignedTask(id, projectID, assignee, start, end string) task.Task {
	t := task.Task{ID: id, ProjectID: projectID, Name: id, StartDate: d(start), EndDate: d(end), Status: task.StatusNotStarted}
	if assignee != "" {
		t.AssigneeID = &assignee
	}
	return t
}

func fixture() (*fakeProjects, fakeTasks) {
	projects := &fakeProjects{
		projects: map[string]project.Project{
			"p1": {ID: "p1", Name: "Launch", OwnerID: "owner", StartDate: d("2025-01-01"), EndDate: d("2025-03-31")},
			"p2": {ID: "p2", Name: "Ops", OwnerID: "owner", StartDate: d("2025-01-01"), EndDate: d("2025-02-28")},
		},
		members: map[string][]project.Member{
			"p1": {member("p1", "owner", "Olive", true), member("p1", "ana", "Ana", false)},
			"p2": {member("p2", "owner", "Olive", true), member("p2", "ana", "Ana", false)},
		},
	}
	tasks := fakeTasks{
		"p1": {
			assignedTask("t1", "p1", "ana", "2025-01-06", "2025-01-10"),
			assignedTask("t2", "p1", "ana", "2025-01-05", "2025-01-18"),
			assignedTask("t3", "p1", "", "2025-01-05", "2025-01-11"),
			assignedTask("t4", "p1", "removed", "2025-01-05", "2025-01-11"),
		},
		"p2": {
			assignedTask("t5", "p2", "ana", "2025-01-12", "2025-01-25"),
		},
	}
	return projects, tasks
}

func TestProjectChart_MemberCapacity(t *testing.T) {
	projects, tasks := fixture()
	svc := capacity.NewService(projects, tasks, capacity.DefaultOptions(), nil, nil)

	chart, err := svc.ProjectChart(context.Background(), "owner", "p1", d("2025-01-05"), 3)
	require.NoError(t, err)
	require.Len(t, chart.Columns, 3)
	require.Equal(t, "Jan-05", chart.Columns[0].Label)
	require.Len(t, chart.Tasks, 4)
	require.Equal(t, "Ana", chart.Tasks[0].Assignee)
	require.Empty(t, chart.Tasks[2].Assignee)

	require.Len(t, chart.Members, 2)
	olive, ana := chart.Members[0], chart.Members[1]
	require.Equal(t, "Olive", olive.Name)
	for _, c := range olive.Capacity {
		require.Zero(t, c.Used)
	}

	require.InDelta(t, 85.714, ana.Capacity[0].Used, 0.001)
	require.Equal(t, timeline.TierHigh, ana.Capacity[0].Tier)
	require.InDelta(t, 14.286, ana.Capacity[0].Available, 0.001)
	require.InDelta(t, 50, ana.Capacity[1].Used, 0.001)
	require.Equal(t, timeline.TierNormal, ana.Capacity[1].Tier)
	require.Zero(t, ana.Capacity[2].Used)
}

func TestTeamCapacity_SumsAcrossProjects(t *testing.T) {
	projects, tasks := fixture()
	svc := capacity.NewService(projects, tasks, capacity.DefaultOptions(), nil, nil)

	team, err := svc.TeamCapacity(context.Background(), "owner", d("2025-01-05"), 3)
	require.NoError(t, err)
	require.Len(t, team.People, 2)

	ana := team.People[0]
	require.Equal(t, "Ana", ana.Name)
	require.InDelta(t, 85.714, ana.Capacity[0].Used, 0.001)
	require.InDelta(t, 100, ana.Capacity[1].Used, 0.001)
	require.Equal(t, timeline.TierHigh, ana.Capacity[1].Tier)
	require.InDelta(t, 50, ana.Capacity[2].Used, 0.001)
	require.Len(t, ana.Projects, 2)

	olive := team.People[1]
	require.Equal(t, "Olive", olive.Name)
	require.Empty(t, olive.Projects)
}

func TestTeamCapacity_OverAllocation(t *testing.T) {
	projects, tasks := fixture()
	tasks["p2"] = append(tasks["p2"], assignedTask("t6", "p2", "ana", "2025-01-12", "2025-01-18"))
	svc := capacity.NewService(projects, tasks, capacity.DefaultOptions(), nil, nil)

	team, err := svc.TeamCapacity(context.Background(), "owner", d("2025-01-05"), 2)
	require.NoError(t, err)
	week := team.People[0].Capacity[1]
	require.InDelta(t, 150, week.Used, 0.001)
	require.Equal(t, 100.0, week.Display)
	require.Zero(t, week.Available)
	require.Equal(t, timeline.TierOver, week.Tier)
}

func TestProjectTimeline_Segments(t *testing.T) {
	projects, tasks := fixture()
	svc := capacity.NewService(projects, tasks, capacity.DefaultOptions(), nil, nil)

	tl, err := svc.ProjectTimeline(context.Background(), "owner", d("2024-12-29"), 10)
	require.NoError(t, err)
	require.Len(t, tl.Projects, 2)

	launch := tl.Projects[0]
	require.NotNil(t, launch.Segments[0])
	require.True(t, launch.Segments[0].IsStart)
	require.InDelta(t, 4.0/7*100, launch.Segments[0].Percentage, 0.001)
	require.Equal(t, 100.0, launch.Segments[1].Percentage)

	ops := tl.Projects[1]
	require.True(t, ops.Segments[8].IsEnd)
	require.Nil(t, ops.Segments[9])
}

func TestProjectChart_DefaultAllocationConfigurable(t *testing.T) {
	projects, tasks := fixture()
	svc := capacity.NewService(projects, tasks, capacity.Options{Allocation: 100}, nil, nil)
	require.Equal(t, timeline.DefaultWeeks, svc.Options().Weeks)

	chart, err := svc.ProjectChart(context.Background(), "owner", "p1", d("2025-01-05"), 1)
	require.NoError(t, err)
	require.InDelta(t, 171.428, chart.Members[1].Capacity[0].Used, 0.001)
}

func TestNewFrame_ClampsWeeks(t *testing.T) {
	projects, tasks := fixture()
	svc := capacity.NewService(projects, tasks, capacity.Options{}, nil, nil)

	frame := svc.NewFrame(d("2025-01-08"), timeline.MaxWeeks+50)
	require.Len(t, frame.Columns, timeline.MaxWeeks)

	frame = svc.NewFrame(d("2025-01-08"), 0)
	require.Len(t, frame.Columns, timeline.DefaultWeeks)
}

func TestProjectChart_UnknownProject(t *testing.T) {
	projects, tasks := fixture()
	svc := capacity.NewService(projects, tasks, capacity.DefaultOptions(), nil, nil)

	_, err := svc.ProjectChart(context.Background(), "owner", "missing", d("2025-01-05"), 1)
	require.ErrorIs(t, err, project.ErrProjectNotFound)
}

func TestCharts_ServedFromCache(t *testing.T) {
	projects, tasks := fixture()
	cache := &memoryCache{data: map[string][]byte{}}
	svc := capacity.NewService(projects, tasks, capacity.DefaultOptions(), cache, nil)
	ctx := context.Background()

	first, err := svc.TeamCapacity(ctx, "owner", d("2025-01-05"), 2)
	require.NoError(t, err)
	require.Len(t, cache.data, 1)

	tasks["p1"] = nil
	second, err := svc.TeamCapacity(ctx, "owner", d("2025-01-05"), 2)
	require.NoError(t, err)
	require.InDelta(t, first.People[0].Capacity[0].Used, second.People[0].Capacity[0].Used, 0.0001)
	require.Equal(t, 2, cache.gets)
}

func TestCharts_SharedBuildIgnoresCallerCancellation(t *testing.T) {
	projects, tasks := fixture()
	cache := &memoryCache{data: map[string][]byte{}}
	svc := capacity.NewService(projects, tasks, capacity.DefaultOptions(), cache, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	team, err := svc.TeamCapacity(ctx, "owner", d("2025-01-05"), 2)
	require.NoError(t, err)
	require.NotEmpty(t, team.People)
	require.Len(t, cache.data, 1)
}
