package sqlite

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/rpggio/plantree/internal/domain/object"
)

const defaultSearchLimit = 20

// SearchRepository implements object.SearchRepository over the FTS5 index
type SearchRepository struct {
	db *DB
}

// NewSearchRepository creates a new SearchRepository
func NewSearchRepository(db *DB) *SearchRepository {
	return &SearchRepository{db: db}
}

// Search performs a full-text search over object names and descriptions
func (r *SearchRepository) Search(ctx context.Context, projectID, query string, opts object.SearchOptions) ([]object.SearchResult, error) {
	match := matchExpression(query)
	if match == "" {
		return nil, nil
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	sqlQuery := `
		SELECT
			o.id, o.number, o.name,
			bm25(objects_fts) AS rank,
			snippet(objects_fts, -1, '[', ']', '...', 10) AS snippet
		FROM objects_fts
		JOIN objects o ON o.rowid = objects_fts.rowid
		WHERE objects_fts MATCH ? AND o.project_id = ?
		ORDER BY rank
		LIMIT ? OFFSET ?
	`

	rows, err := r.db.QueryContext(ctx, sqlQuery, match, projectID, limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to search objects: %w", err)
	}
	defer rows.Close()

	var results []object.SearchResult
	for rows.Next() {
		var result object.SearchResult
		err := rows.Scan(
			&result.Object.ID,
			&result.Object.Number,
			&result.Object.Name,
			&result.Rank,
			&result.Snippet,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}
		results = append(results, result)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating search results: %w", err)
	}

	return results, nil
}

// matchExpression quotes every word so FTS5 operators in user input are
// matched literally. Words are ANDed; the last one is a prefix match.
// Words without a letter or digit tokenize to nothing and are dropped.
func matchExpression(query string) string {
	var quoted []string
	for _, w := range strings.Fields(query) {
		if strings.IndexFunc(w, isWordRune) < 0 {
			continue
		}
		quoted = append(quoted, `"`+strings.ReplaceAll(w, `"`, `""`)+`"`)
	}
	if len(quoted) == 0 {
		return ""
	}
	quoted[len(quoted)-1] += "*"
	return strings.Join(quoted, " ")
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
