package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rpggio/plantree/internal/domain/object"
)

func resolveProjectID(ctx context.Context, env *Env, input string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("project ID is required")
	}

	projects, err := env.app.Projects.List(ctx, env.user)
	if err != nil {
		return "", err
	}

	// 1. Exact ID
	for _, p := range projects {
		if p.ID == input {
			return p.ID, nil
		}
	}

	// 2. Name (case-insensitive) or ID prefix
	var matches []string
	for _, p := range projects {
		if strings.EqualFold(p.Name, input) || strings.HasPrefix(p.ID, input) {
			matches = append(matches, p.ID)
		}
	}

	switch len(matches) {
	case 0:
		// Let the service report not found or access denied.
		return input, nil
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("project %q is ambiguous (%d matches)", input, len(matches))
	}
}

// resolveObjectID accepts an object ID, an outline label such as "2.1", or an
// ID prefix. Labels and prefixes need the project to search in.
func resolveObjectID(ctx context.Context, env *Env, projectRef, input string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("object reference is required")
	}
	if projectRef == "" {
		return input, nil
	}
	projectID, err := resolveProjectID(ctx, env, projectRef)
	if err != nil {
		return "", err
	}
	outline, err := env.app.Numbering.Outline(ctx, projectID, env.user)
	if err != nil {
		return "", err
	}

	var matches []string
	for _, item := range outline {
		if item.ID == input || item.Label == input {
			return item.ID, nil
		}
		if strings.HasPrefix(item.ID, input) {
			matches = append(matches, item.ID)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("object not found: %q", input)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("object prefix %q is ambiguous (%d matches)", input, len(matches))
	}
}

func parseDateFlag(name, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s %q: want YYYY-MM-DD", name, value)
	}
	return &t, nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02")
}

func objectDates(o object.Object) string {
	if o.Kind == object.KindMilestone {
		return formatDate(o.StartDate)
	}
	return formatDate(o.StartDate) + " → " + formatDate(o.EndDate)
}
