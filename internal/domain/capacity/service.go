package capacity

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/rpggio/gantry/internal/domain/task"
	"github.com/rpggio/gantry/internal/timeline"
	"golang.org/x/sync/singleflight"
)

// Options tunes chart assembly.
type Options struct {
	// Weeks is the default frame length.
	Weeks int
	// Allocation is the load of one task covering a whole week, in percent.
	Allocation float64
}

// DefaultOptions returns the standard 16-week frame at 50% per task.
func DefaultOptions() Options {
	return Options{Weeks: timeline.DefaultWeeks, Allocation: timeline.DefaultAllocation}
}

// Service assembles charts from stored projects and tasks. Every chart is
// recomputed from scratch unless a cache holds a copy for the current data.
type Service struct {
	projects Projects
	tasks    Tasks
	opts     Options
	cache    Cache
	logger   *slog.Logger
	sf       singleflight.Group
}

// NewService creates a chart service. cache may be nil.
func NewService(projects Projects, tasks Tasks, opts Options, cache Cache, logger *slog.Logger) *Service {
	if opts.Weeks <= 0 {
		opts.Weeks = timeline.DefaultWeeks
	}
	if opts.Allocation <= 0 {
		opts.Allocation = timeline.DefaultAllocation
	}
	return &Service{projects: projects, tasks: tasks, opts: opts, cache: cache, logger: logger}
}

// Options returns the options in force.
func (s *Service) Options() Options {
	return s.opts
}

// NewFrame builds the week grid for a reference date. weeks <= 0 selects
// the configured default; anything above timeline.MaxWeeks is clamped.
func (s *Service) NewFrame(ref timeline.Date, weeks int) Frame {
	if ref.IsZero() {
		ref = timeline.Today()
	}
	if weeks <= 0 {
		weeks = s.opts.Weeks
	}
	weeks = min(weeks, timeline.MaxWeeks)
	ws := timeline.GenerateWeeks(ref, weeks)
	cols := make([]Column, len(ws))
	for i, w := range ws {
		cols[i] = Column{Week: w, Label: w.Label()}
	}
	return Frame{Reference: ref, Columns: cols}
}

// ProjectTimeline draws every project visible to actorID.
func (s *Service) ProjectTimeline(ctx context.Context, actorID string, ref timeline.Date, weeks int) (*ProjectTimeline, error) {
	frame := s.NewFrame(ref, weeks)
	key := cacheKey("projects", actorID, "", frame)
	var out ProjectTimeline
	err := s.cached(ctx, key, &out, func(ctx context.Context) (any, error) {
		return s.buildProjectTimeline(ctx, actorID, frame)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) buildProjectTimeline(ctx context.Context, actorID string, frame Frame) (*ProjectTimeline, error) {
	summaries, err := s.projects.List(ctx, actorID)
	if err != nil {
		return nil, err
	}
	weeks := frame.Weeks()
	bars := make([]ProjectBar, 0, len(summaries))
	for _, sum := range summaries {
		bars = append(bars, ProjectBar{
			Project:  sum,
			Segments: timeline.Segments(sum.Range(), weeks),
		})
	}
	return &ProjectTimeline{Frame: frame, Projects: bars}, nil
}

// ProjectChart draws one project's tasks and the load they put on each member.
func (s *Service) ProjectChart(ctx context.Context, actorID, projectID string, ref timeline.Date, weeks int) (*ProjectChart, error) {
	frame := s.NewFrame(ref, weeks)
	key := cacheKey("project", actorID, projectID, frame)
	var out ProjectChart
	err := s.cached(ctx, key, &out, func(ctx context.Context) (any, error) {
		return s.buildProjectChart(ctx, actorID, projectID, frame)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) buildProjectChart(ctx context.Context, actorID, projectID string, frame Frame) (*ProjectChart, error) {
	proj, err := s.projects.Get(ctx, actorID, projectID)
	if err != nil {
		return nil, err
	}
	members, err := s.projects.ListMembers(ctx, actorID, projectID)
	if err != nil {
		return nil, err
	}
	tasks, err := s.tasks.ListByProject(ctx, actorID, projectID)
	if err != nil {
		return nil, err
	}

	weeks := frame.Weeks()
	names := make(map[string]string, len(members))
	for _, m := range members {
		names[m.Person.ID] = m.Person.DisplayName()
	}

	bars := make([]TaskBar, 0, len(tasks))
	for _, t := range tasks {
		bar := TaskBar{Task: t, Segments: timeline.Segments(t.Range(), weeks)}
		if t.AssigneeID != nil {
			bar.Assignee = names[*t.AssigneeID]
		}
		bars = append(bars, bar)
	}

	byPerson := s.assignmentsByPerson(tasks, names)
	loads := make([]PersonLoad, 0, len(members))
	for _, m := range members {
		loads = append(loads, PersonLoad{
			Person:   m.Person,
			Name:     m.Person.DisplayName(),
			Capacity: timeline.CapacitySeries(byPerson[m.Person.ID], weeks),
		})
	}

	return &ProjectChart{Frame: frame, Project: *proj, Tasks: bars, Members: loads}, nil
}

// TeamCapacity computes every person's load across all projects visible to
// actorID. A person appears once, however many projects they belong to.
func (s *Service) TeamCapacity(ctx context.Context, actorID string, ref timeline.Date, weeks int) (*TeamCapacity, error) {
	frame := s.NewFrame(ref, weeks)
	key := cacheKey("team", actorID, "", frame)
	var out TeamCapacity
	err := s.cached(ctx, key, &out, func(ctx context.Context) (any, error) {
		return s.buildTeamCapacity(ctx, actorID, frame)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) buildTeamCapacity(ctx context.Context, actorID string, frame Frame) (*TeamCapacity, error) {
	summaries, err := s.projects.List(ctx, actorID)
	if err != nil {
		return nil, err
	}
	weeks := frame.Weeks()

	rows := make(map[string]*TeamRow)
	all := make(map[string][]timeline.Assignment)
	var order []string

	for _, sum := range summaries {
		members, err := s.projects.ListMembers(ctx, actorID, sum.ID)
		if err != nil {
			return nil, err
		}
		tasks, err := s.tasks.ListByProject(ctx, actorID, sum.ID)
		if err != nil {
			return nil, err
		}

		names := make(map[string]string, len(members))
		for _, m := range members {
			names[m.Person.ID] = m.Person.DisplayName()
			if _, ok := rows[m.Person.ID]; !ok {
				rows[m.Person.ID] = &TeamRow{PersonLoad: PersonLoad{Person: m.Person, Name: m.Person.DisplayName()}}
				order = append(order, m.Person.ID)
			}
		}

		for personID, as := range s.assignmentsByPerson(tasks, names) {
			all[personID] = append(all[personID], as...)
			load := make([]float64, len(weeks))
			for i, w := range weeks {
				load[i] = timeline.AggregateCapacity(as, w).Used
			}
			rows[personID].Projects = append(rows[personID].Projects, ProjectShare{
				ProjectID:   sum.ID,
				ProjectName: sum.Name,
				Load:        load,
			})
		}
	}

	out := &TeamCapacity{Frame: frame, People: make([]TeamRow, 0, len(order))}
	for _, id := range order {
		row := rows[id]
		row.Capacity = timeline.CapacitySeries(all[id], weeks)
		out.People = append(out.People, *row)
	}
	sort.SliceStable(out.People, func(i, j int) bool {
		return strings.ToLower(out.People[i].Name) < strings.ToLower(out.People[j].Name)
	})
	return out, nil
}

// assignmentsByPerson groups tasks by assignee. Tasks whose assignee is not
// among members count for nobody.
func (s *Service) assignmentsByPerson(tasks []task.Task, members map[string]string) map[string][]timeline.Assignment {
	out := make(map[string][]timeline.Assignment)
	for _, t := range tasks {
		if t.AssigneeID == nil {
			continue
		}
		if _, ok := members[*t.AssigneeID]; !ok {
			continue
		}
		out[*t.AssigneeID] = append(out[*t.AssigneeID], timeline.Assignment{
			Range:      t.Range(),
			Allocation: s.opts.Allocation,
		})
	}
	return out
}

// cached loads key into dst, building and storing it on a miss. Concurrent
// identical requests share one build, which outlives the first caller's
// cancellation.
func (s *Service) cached(ctx context.Context, key string, dst any, build func(context.Context) (any, error)) error {
	if s.cache != nil {
		if ok, err := s.cache.Get(ctx, key, dst); err == nil && ok {
			return nil
		} else if err != nil && s.logger != nil {
			s.logger.Warn("chart cache read failed", "key", key, "error", err)
		}
	}

	v, err, _ := s.sf.Do(key, func() (any, error) {
		shared := context.WithoutCancel(ctx)
		v, err := build(shared)
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			if err := s.cache.Set(shared, key, v); err != nil && s.logger != nil {
				s.logger.Warn("chart cache write failed", "key", key, "error", err)
			}
		}
		return v, nil
	})
	if err != nil {
		return err
	}
	return assign(dst, v)
}

func assign(dst, v any) error {
	switch d := dst.(type) {
	case *ProjectTimeline:
		*d = *v.(*ProjectTimeline)
	case *ProjectChart:
		*d = *v.(*ProjectChart)
	case *TeamCapacity:
		*d = *v.(*TeamCapacity)
	default:
		return fmt.Errorf("unsupported chart type %T", dst)
	}
	return nil
}

func cacheKey(kind, actorID, id string, f Frame) string {
	return fmt.Sprintf("%s:%s:%s:%s:%d", kind, actorID, id, f.Reference, len(f.Columns))
}
