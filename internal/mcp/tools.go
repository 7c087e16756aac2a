package mcp

import (
	"context"
	"encoding/json"
	"errors"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// ToolDefinition describes one tool exposed to MCP clients.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

func schema(properties map[string]any, required ...string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

func prop(typ, description string) map[string]any {
	return map[string]any{"type": typ, "description": description}
}

func enum(description string, values ...string) map[string]any {
	return map[string]any{"type": "string", "description": description, "enum": values}
}

func stringList(description string) map[string]any {
	return map[string]any{"type": "array", "description": description, "items": map[string]any{"type": "string"}}
}

var (
	kindProp     = enum("Object kind", "task", "milestone")
	statusProp   = enum("Object status", "open", "in_progress", "done", "closed")
	priorityProp = enum("Object priority", "lowest", "low", "medium", "high", "highest")
	depTypeProp  = enum("Dependency type (default FS)", "FS", "SS", "FF", "SF")
	projectProp  = prop("string", "Project ID")
	scopeProp    = prop("string", "Project the object must belong to (optional)")
)

// buildToolCatalog returns all available MCP tools
func buildToolCatalog() []ToolDefinition {
	return []ToolDefinition{
		// Projects
		{
			Name:        "create_project",
			Description: "Create a new project owned by the caller",
			InputSchema: schema(map[string]any{
				"id":          prop("string", "Unique project identifier (optional, generated if omitted)"),
				"name":        prop("string", "Project display name"),
				"description": prop("string", "Project description"),
				"start_date":  prop("string", "Default start date for objects (YYYY-MM-DD)"),
				"end_date":    prop("string", "Default end date for objects (YYYY-MM-DD)"),
			}, "name"),
		},
		{
			Name:        "list_projects",
			Description: "List projects the caller owns or is a member of",
			InputSchema: schema(map[string]any{}),
		},
		{
			Name:        "get_project",
			Description: "Get a project with its members",
			InputSchema: schema(map[string]any{"id": projectProp}, "id"),
		},
		{
			Name:        "add_project_member",
			Description: "Add a user to a project (owner only)",
			InputSchema: schema(map[string]any{
				"project_id": projectProp,
				"user_id":    prop("string", "User to add"),
				"role":       enum("Member role (default developer)", "manager", "developer", "designer", "tester", "analyst"),
			}, "project_id", "user_id"),
		},
		{
			Name:        "remove_project_member",
			Description: "Remove a user from a project (owner only)",
			InputSchema: schema(map[string]any{
				"project_id": projectProp,
				"user_id":    prop("string", "User to remove"),
			}, "project_id", "user_id"),
		},

		// Objects
		{
			Name:        "create_object",
			Description: "Create a task or milestone, numbered after its current siblings",
			InputSchema: schema(map[string]any{
				"project_id":  projectProp,
				"parent_id":   prop("string", "Parent object ID (omit for a top-level object)"),
				"kind":        kindProp,
				"name":        prop("string", "Object name"),
				"description": prop("string", "Object description"),
				"start_date":  prop("string", "Start date (YYYY-MM-DD, defaults to the project start)"),
				"end_date":    prop("string", "End date (YYYY-MM-DD, defaults to the project end)"),
				"status":      statusProp,
				"priority":    priorityProp,
				"progress":    prop("integer", "Progress percentage 0-100"),
				"members":     stringList("User IDs assigned to the object"),
			}, "project_id", "name"),
		},
		{
			Name:        "get_object",
			Description: "Get one object",
			InputSchema: schema(map[string]any{"id": prop("string", "Object ID"), "project_id": scopeProp}, "id"),
		},
		{
			Name:        "list_objects",
			Description: "List a project's objects, top level first, by number",
			InputSchema: schema(map[string]any{"project_id": projectProp}, "project_id"),
		},
		{
			Name:        "get_outline",
			Description: "Get the project's objects in tree order with labels like 1.2.3",
			InputSchema: schema(map[string]any{"project_id": projectProp}, "project_id"),
		},
		{
			Name:        "update_object",
			Description: "Patch an object. Pass the version you read; a stale version is a conflict",
			InputSchema: schema(map[string]any{
				"id":               prop("string", "Object ID"),
				"project_id":       scopeProp,
				"version":          prop("integer", "Version the change is based on"),
				"name":             prop("string", "New name"),
				"description":      prop("string", "New description"),
				"kind":             kindProp,
				"start_date":       prop("string", "New start date (YYYY-MM-DD)"),
				"end_date":         prop("string", "New end date (YYYY-MM-DD)"),
				"clear_start_date": prop("boolean", "Remove the start date"),
				"clear_end_date":   prop("boolean", "Remove the end date"),
				"status":           statusProp,
				"priority":         priorityProp,
				"progress":         prop("integer", "Progress percentage 0-100"),
				"number":           prop("integer", "New number among siblings"),
				"parent_id":        prop("string", "Move under this parent"),
				"move_to_root":     prop("boolean", "Move to the top level"),
				"members":          stringList("Replace assigned user IDs"),
			}, "id", "version"),
		},
		{
			Name:        "delete_object",
			Description: "Delete an object. Its children move to the top level and its dependencies are removed",
			InputSchema: schema(map[string]any{"id": prop("string", "Object ID"), "project_id": scopeProp}, "id"),
		},
		{
			Name:        "renumber_objects",
			Description: "Renumber every sibling group 1..N keeping relative order, and return the outline",
			InputSchema: schema(map[string]any{"project_id": projectProp}, "project_id"),
		},
		{
			Name:        "search_objects",
			Description: "Full-text search over object names and descriptions",
			InputSchema: schema(map[string]any{
				"project_id": projectProp,
				"query":      prop("string", "Search words; the last word matches as a prefix"),
				"limit":      prop("integer", "Maximum number of results"),
				"offset":     prop("integer", "Offset for pagination"),
			}, "project_id", "query"),
		},

		// Dependencies
		{
			Name:        "create_dependency",
			Description: "Link two objects: from_id precedes to_id",
			InputSchema: schema(map[string]any{
				"from_id": prop("string", "Predecessor object ID"),
				"to_id":   prop("string", "Successor object ID"),
				"type":    depTypeProp,
			}, "from_id", "to_id"),
		},
		{
			Name:        "update_dependency",
			Description: "Change the type of an existing dependency",
			InputSchema: schema(map[string]any{
				"from_id": prop("string", "Predecessor object ID"),
				"to_id":   prop("string", "Successor object ID"),
				"type":    depTypeProp,
			}, "from_id", "to_id", "type"),
		},
		{
			Name:        "delete_dependency",
			Description: "Remove a dependency",
			InputSchema: schema(map[string]any{
				"from_id": prop("string", "Predecessor object ID"),
				"to_id":   prop("string", "Successor object ID"),
			}, "from_id", "to_id"),
		},
		{
			Name:        "list_object_dependencies",
			Description: "List the predecessor and successor rows of one object",
			InputSchema: schema(map[string]any{"object_id": prop("string", "Object ID"), "project_id": scopeProp}, "object_id"),
		},
		{
			Name:        "list_project_dependencies",
			Description: "List every dependency row within a project",
			InputSchema: schema(map[string]any{"project_id": projectProp}, "project_id"),
		},

		// Timeline and activity
		{
			Name:        "get_timeline",
			Description: "Lay out the project as timeline bars and dependency curves",
			InputSchema: schema(map[string]any{
				"project_id": projectProp,
				"view":       enum("Column unit (default from server config)", "day", "month", "year"),
			}, "project_id"),
		},
		{
			Name:        "get_recent_activity",
			Description: "Get recent activity entries for a project or one object",
			InputSchema: schema(map[string]any{
				"project_id": projectProp,
				"object_id":  prop("string", "Object ID to filter by"),
				"types":      stringList("Filter by activity types"),
				"limit":      prop("integer", "Maximum number of entries (default 50)"),
				"offset":     prop("integer", "Offset for pagination"),
			}, "project_id"),
		},
	}
}

func registerTools(server *sdkmcp.Server, handler *Handler) {
	for _, def := range buildToolCatalog() {
		name := def.Name
		server.AddTool(&sdkmcp.Tool{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: def.InputSchema,
		}, func(ctx context.Context, req *sdkmcp.CallToolRequest) (*sdkmcp.CallToolResult, error) {
			var args json.RawMessage
			if req != nil && req.Params != nil {
				args = req.Params.Arguments
			}
			result, err := handler.Handle(ctx, getUserID(ctx), name, args)
			if err != nil {
				return toolError(err), nil
			}
			return toolResult(result)
		})
	}
}

func toolResult(result any) (*sdkmcp.CallToolResult, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
	}, nil
}

func toolError(err error) *sdkmcp.CallToolResult {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		apiErr = &APIError{Code: "INTERNAL_ERROR", Message: err.Error()}
	}
	data, _ := json.Marshal(apiErr)
	return &sdkmcp.CallToolResult{
		IsError: true,
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
	}
}
