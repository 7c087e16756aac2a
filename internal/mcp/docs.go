package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `plantree stores project plans as Projects → Objects (tasks and milestones) → Dependencies.

Core concepts:
- Project: owned by one user; members may read and edit it. Its dates are the default for new objects.
- Object: a task or milestone in a parent/child tree. Siblings are numbered 1..N; the outline label
  (e.g. 2.1.3) is the chain of numbers from the top level down.
- Dependency: from_id precedes to_id with a type (FS, SS, FF, SF). Stored as two mirrored rows.
- Version: every object write bumps its version. update_object needs the version you read.

Default workflow:
1) Orient: list_projects, then get_outline for the project you work on.
2) Create: create_object appends after the current siblings; pass parent_id for subtasks.
3) Edit: update_object with the version from your last read. On CONFLICT, reload and retry.
4) Link: create_dependency between objects, then get_timeline to see bars and curves.
5) Deleting an object moves its children to the top level and removes its dependencies.

Docs:
- plantree://docs/index
- plantree://docs/concepts
- plantree://docs/workflows/planning
- plantree://docs/timeline
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
		URI:         "plantree://docs/index",
		Name:        "docs-index",
		Title:       "plantree docs index",
		Description: "What to read when",
		Content: `# plantree docs

- plantree://docs/concepts: objects, numbering, versions and access rules.
- plantree://docs/workflows/planning: building and reshaping a plan.
- plantree://docs/timeline: how bars and dependency curves are laid out.
`,
	},
	{
		URI:         "plantree://docs/concepts",
		Name:        "docs-concepts",
		Title:       "Concepts",
		Description: "Glossary and invariants",
		Content: `# Concepts

## Access
The project owner and project members may read and edit a project. Only the owner adds or
removes members. An object may be deleted by the project owner or by its creator.

## Numbering
Objects that share a parent are siblings. After every create, update and delete the
siblings are renumbered 1..N, keeping their relative order. renumber_objects does the same
on demand. Two siblings never share a number.

## Labels
An outline label joins the numbers from the top-level ancestor down: the second child of
the third top-level object is 3.2.

## Versions
Each object starts at version 1 and every write, including a renumber, increments it.
update_object fails with CONFLICT when the version you send is not the current one.

## Dates
Missing dates default to the project's dates. A milestone ends when it starts. A task may
not end before it starts.

## Dependencies
Types: FS (finish to start), SS (start to start), FF (finish to finish), SF (start to finish).
An object cannot depend on itself, and the same pair can only be linked once.
`,
	},
	{
		URI:         "plantree://docs/workflows/planning",
		Name:        "docs-workflow-planning",
		Title:       "Workflow: planning",
		Description: "Building and reshaping a plan",
		Content: `# Planning workflow

1. create_project with start and end dates.
2. create_object for each top-level phase, then for subtasks with parent_id.
3. get_outline to confirm the structure and labels.
4. Reorder a sibling with update_object {number}; move it with {parent_id} or {move_to_root}.
5. create_dependency for ordering constraints between tasks.
6. get_recent_activity to see what changed and who changed it.
`,
	},
	{
		URI:         "plantree://docs/timeline",
		Name:        "docs-timeline",
		Title:       "Timeline layout",
		Description: "Bars, columns and dependency curves",
		Content: `# Timeline

get_timeline returns one bar per scheduled object in outline order, plus one curve per
dependency between two scheduled objects. Objects without dates are left out.

- view day: one column per day; month: 30 days; year: 365 days.
- Milestones have zero width.
- A curve starts at the predecessor's end (FS, FF) or start (SS, SF) and ends at the
  successor's start (FS, SS) or end (FF, SF).
- Each bar carries a custom class like open-task-has-children for styling.
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
