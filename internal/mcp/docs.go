package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `gantry plans dated projects and tasks and reports how loaded each person is per week.

Core concepts:
- Project: owned by one person, with inclusive start and end dates. The owner is always a member.
- Task: dated work inside a project, optionally assigned to one member. Task dates must lie inside the project dates.
- Capacity: a task covering a whole week loads its assignee by 50%. Partial weeks count proportionally.
  Tiers per week: normal <= 80, high <= 100, over > 100.
- Visibility: you see projects you own or belong to. Only owners change projects, members and tasks;
  assignees may report progress on their own tasks.

Typical workflow:
1) Orient: list_projects, then get_team_capacity to see who has room.
2) Plan: create_project, add_member (by email), create_task with assignee_id and dates.
3) Track: update_task_progress; get_project_chart for the Gantt view of one project.
4) Review: get_recent_activity for what changed.

Dates are YYYY-MM-DD. Charts start on the Sunday on or before date (default today) and span 16 weeks unless weeks is given.

Docs:
- gantry://docs/index
- gantry://docs/capacity
- gantry://docs/workflows
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "gantry://docs/index",
		Name:        "docs_index",
		Title:       "gantry docs index",
		Description: "Entry point: what the tools do and which doc to read next.",
		Content: `# gantry: Agent Docs Index

## Tools

| Area | Tools |
|------|-------|
| Projects | list_projects, create_project, get_project_timeline |
| Members | list_members, add_member, remove_member |
| Tasks | list_tasks, create_task, update_task_progress |
| Charts | get_project_chart, get_team_capacity |
| Activity | get_recent_activity |

## Read next

- gantry://docs/capacity for how weekly load is computed.
- gantry://docs/workflows for planning and rebalancing recipes.

## Errors

Tool errors start with a code, e.g. ` + "`FORBIDDEN`" + `, ` + "`OUT_OF_RANGE`" + `, ` + "`ASSIGNEE_NOT_MEMBER`" + `.
A hint in parentheses says what to call next.
`,
	},
	{
		URI:         "gantry://docs/capacity",
		Name:        "docs_capacity",
		Title:       "Capacity rules",
		Description: "How task dates turn into weekly load and tiers.",
		Content: `# Capacity rules

Weeks run Sunday to Saturday. For each task and week:

    overlap%     = days of the task inside the week / 7 * 100   (capped at 100)
    contribution = overlap% * 50 / 100

A task that starts and ends on the same day counts as a full week.

A person's load for a week is the sum of contributions of every task assigned to them
across every visible project. Two full-week tasks make 100%.

| Load | Tier |
|------|------|
| <= 80 | normal |
| <= 100 | high |
| > 100 | over |

Bars are drawn clamped to 100; ` + "`used`" + ` keeps the raw value and ` + "`available`" + ` is what is left below 100.

Project progress is the rounded share of completed tasks.
`,
	},
	{
		URI:         "gantry://docs/workflows",
		Name:        "docs_workflows",
		Title:       "Planning workflows",
		Description: "Recipes for staffing a project and relieving overloaded people.",
		Content: `# Workflows

## Staff a new project

1. create_project with start_date and end_date.
2. add_member with project_id for each email. Unknown emails get an invite to that project
   and join it on registration.
3. create_task per piece of work with assignee_id and dates inside the project.
4. get_team_capacity for the project's weeks; look for weeks in tier over.

## Relieve an overloaded person

1. get_team_capacity and find weeks where the person is over.
2. get_project_chart for each project in that person's row.
3. Move or reassign tasks (owners only) and check capacity again.

## Report progress

update_task_progress with progress 0-100. Status is derived when omitted:
0 is not_started, 100 is completed, anything else in_progress.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
