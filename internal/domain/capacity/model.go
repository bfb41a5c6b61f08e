package capacity

import (
	"github.com/rpggio/gantry/internal/domain/person"
	"github.com/rpggio/gantry/internal/domain/project"
	"github.com/rpggio/gantry/internal/domain/task"
	"github.com/rpggio/gantry/internal/timeline"
)

// Column is one week of a chart with its header label.
type Column struct {
	timeline.Week
	Label string `json:"label"`
}

// Frame is the week grid a chart is drawn on.
type Frame struct {
	Reference timeline.Date `json:"reference"`
	Columns   []Column      `json:"weeks"`
}

// Weeks returns the bare weeks of the frame.
func (f Frame) Weeks() []timeline.Week {
	weeks := make([]timeline.Week, len(f.Columns))
	for i, c := range f.Columns {
		weeks[i] = c.Week
	}
	return weeks
}

// ProjectBar is one project drawn across the frame. Segments has one entry
// per week; nil where the project does not overlap.
type ProjectBar struct {
	Project  project.Summary     `json:"project"`
	Segments []*timeline.Segment `json:"segments"`
}

// ProjectTimeline is the dashboard view of every visible project.
type ProjectTimeline struct {
	Frame
	Projects []ProjectBar `json:"projects"`
}

// TaskBar is one task drawn across the frame.
type TaskBar struct {
	Task     task.Task           `json:"task"`
	Assignee string              `json:"assignee,omitempty"`
	Segments []*timeline.Segment `json:"segments"`
}

// PersonLoad is one person's weekly capacity.
type PersonLoad struct {
	Person   person.Person       `json:"person"`
	Name     string              `json:"name"`
	Capacity []timeline.Capacity `json:"capacity"`
}

// ProjectChart is the Gantt view of one project: task bars and the load its
// tasks put on each member.
type ProjectChart struct {
	Frame
	Project project.Project `json:"project"`
	Tasks   []TaskBar       `json:"tasks"`
	Members []PersonLoad    `json:"members"`
}

// ProjectShare is the load one project puts on a person per week.
type ProjectShare struct {
	ProjectID   string    `json:"project_id"`
	ProjectName string    `json:"project_name"`
	Load        []float64 `json:"load"`
}

// TeamRow is one person's load across every visible project.
type TeamRow struct {
	PersonLoad
	Projects []ProjectShare `json:"projects"`
}

// TeamCapacity is the team view: one row per person.
type TeamCapacity struct {
	Frame
	People []TeamRow `json:"people"`
}
