package project

import (
	"math"
	"time"

	"github.com/rpggio/gantry/internal/domain/person"
	"github.com/rpggio/gantry/internal/timeline"
)

// Project is a dated container of tasks owned by one person.
type Project struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	OwnerID     string        `json:"owner_id"`
	StartDate   timeline.Date `json:"start_date"`
	EndDate     timeline.Date `json:"end_date"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// Range returns the project's inclusive date span.
func (p *Project) Range() timeline.DateRange {
	return timeline.DateRange{Start: p.StartDate, End: p.EndDate}
}

// Summary is a project with the counts shown on project lists
type Summary struct {
	Project
	MemberCount    int `json:"member_count"`
	TaskCount      int `json:"task_count"`
	CompletedTasks int `json:"completed_tasks"`
	// Progress is the rounded share of completed tasks, 0 when there are none.
	Progress int `json:"progress"`
}

// CompletionPercent returns completed/total as a rounded percentage.
func CompletionPercent(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

// Member is one membership row. The owner is always a member.
type Member struct {
	ProjectID string        `json:"project_id"`
	Person    person.Person `json:"person"`
	IsOwner   bool          `json:"is_owner"`
	JoinedAt  time.Time     `json:"joined_at"`
}

// MemberStatus is the outcome of adding someone by email.
type MemberStatus string

const (
	StatusAdded   MemberStatus = "added"
	StatusInvited MemberStatus = "invited"
)

// AddMemberResult describes what AddMember did.
type AddMemberResult struct {
	Status MemberStatus   `json:"status"`
	Person *person.Person `json:"person,omitempty"`
	Invite *person.Invite `json:"invite,omitempty"`
	// Projects is the number of projects the person was added to.
	Projects int `json:"projects"`
}
