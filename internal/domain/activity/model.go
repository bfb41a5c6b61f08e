package activity

import "time"

// ActivityType represents the type of activity event
type ActivityType string

const (
	TypePersonRegistered ActivityType = "person_registered"
	TypeProjectCreated   ActivityType = "project_created"
	TypeProjectUpdated   ActivityType = "project_updated"
	TypeProjectDeleted   ActivityType = "project_deleted"
	TypeMemberAdded      ActivityType = "member_added"
	TypeMemberRemoved    ActivityType = "member_removed"
	TypeMemberInvited    ActivityType = "member_invited"
	TypeTaskCreated      ActivityType = "task_created"
	TypeTaskUpdated      ActivityType = "task_updated"
	TypeTaskProgress     ActivityType = "task_progress"
	TypeTaskDeleted      ActivityType = "task_deleted"
)

// ActivityEntry represents a mutation in the activity log
type ActivityEntry struct {
	ID           string       `json:"id"`
	ActorID      string       `json:"actor_id"`
	ProjectID    *string      `json:"project_id,omitempty"`
	TaskID       *string      `json:"task_id,omitempty"`
	ActivityType ActivityType `json:"type"`
	Summary      string       `json:"summary"`
	Details      string       `json:"details,omitempty"` // JSON string
	CreatedAt    time.Time    `json:"created_at"`
}
