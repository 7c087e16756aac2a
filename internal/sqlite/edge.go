package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rpggio/plantree/internal/domain/dependency"
	"github.com/rpggio/plantree/internal/domain/object"
)

// EdgeRepository implements dependency.Repository for SQLite
type EdgeRepository struct {
	db  *DB
	uow UnitOfWork
}

// NewEdgeRepository creates a new EdgeRepository
func NewEdgeRepository(db *DB) *EdgeRepository {
	return &EdgeRepository{db: db, uow: NewUnitOfWork(db)}
}

// CreatePair inserts both rows of a logical edge
func (r *EdgeRepository) CreatePair(ctx context.Context, rows [2]dependency.Edge) error {
	return r.uow.WithinTx(ctx, func(ctx context.Context, tx DBTX) error {
		for _, e := range rows {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO object_edges (object_id, related_object_id, role, type, created_at)
				VALUES (?, ?, ?, ?, ?)`,
				e.ObjectID, e.RelatedObjectID, e.Role, e.Type, e.CreatedAt)
			if err != nil {
				return writeError("create edge", err)
			}
		}
		return nil
	})
}

// DeletePair deletes the logical edge between fromID and toID along with its
// mirror. The edge may be addressed in either direction; the stored forward
// edge wins when both directions exist. The returned link is the direction
// that was removed.
func (r *EdgeRepository) DeletePair(ctx context.Context, fromID, toID string) (dependency.Link, int, error) {
	return r.matchPair(ctx, fromID, toID,
		`DELETE FROM object_edges WHERE object_id = ? AND related_object_id = ? AND role = ?`)
}

// UpdatePairType sets the relation type on both rows of a logical edge,
// addressed in either direction like DeletePair.
func (r *EdgeRepository) UpdatePairType(ctx context.Context, fromID, toID string, typ dependency.Type) (dependency.Link, int, error) {
	link, n, err := r.matchPair(ctx, fromID, toID,
		`UPDATE object_edges SET type = ? WHERE object_id = ? AND related_object_id = ? AND role = ?`, typ)
	link.Type = typ
	return link, n, err
}

// matchPair runs query against the forward pair and, when nothing matched,
// against the reverse pair, inside one transaction. query takes the row key
// (object_id, related_object_id, role) after any leading args.
func (r *EdgeRepository) matchPair(ctx context.Context, fromID, toID, query string, leading ...any) (dependency.Link, int, error) {
	var (
		matched dependency.Link
		total   int64
	)
	err := r.uow.WithinTx(ctx, func(ctx context.Context, tx DBTX) error {
		for _, link := range []dependency.Link{{FromID: fromID, ToID: toID}, {FromID: toID, ToID: fromID}} {
			for _, row := range link.Rows(time.Time{}) {
				args := append(append([]any{}, leading...), row.ObjectID, row.RelatedObjectID, row.Role)
				result, err := tx.ExecContext(ctx, query, args...)
				if err != nil {
					return fmt.Errorf("failed to write edge: %w", err)
				}
				n, err := result.RowsAffected()
				if err != nil {
					return fmt.Errorf("failed to get rows affected: %w", err)
				}
				total += n
			}
			if total > 0 {
				matched = link
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return dependency.Link{}, 0, err
	}
	return matched, int(total), nil
}

// ListForObject returns the rows stored for an object, with the related object summary
func (r *EdgeRepository) ListForObject(ctx context.Context, objectID string) ([]dependency.Edge, error) {
	query := `
		SELECT e.object_id, e.related_object_id, e.role, e.type, e.created_at,
		       o.id, o.number, o.name
		FROM object_edges e
		JOIN objects o ON o.id = e.related_object_id
		WHERE e.object_id = ?
		ORDER BY e.role, o.number, o.id
	`
	rows, err := r.db.QueryContext(ctx, query, objectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list edges: %w", err)
	}
	return scanEdges(rows)
}

// ListForProject returns the rows whose two endpoints belong to the project
func (r *EdgeRepository) ListForProject(ctx context.Context, projectID string) ([]dependency.Edge, error) {
	query := `
		SELECT e.object_id, e.related_object_id, e.role, e.type, e.created_at,
		       b.id, b.number, b.name
		FROM object_edges e
		JOIN objects a ON a.id = e.object_id
		JOIN objects b ON b.id = e.related_object_id
		WHERE a.project_id = ? AND b.project_id = ?
		ORDER BY e.object_id, e.role, b.number
	`
	rows, err := r.db.QueryContext(ctx, query, projectID, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list project edges: %w", err)
	}
	return scanEdges(rows)
}

func scanEdges(rows *sql.Rows) ([]dependency.Edge, error) {
	defer rows.Close()

	edges := []dependency.Edge{}
	for rows.Next() {
		var e dependency.Edge
		var related object.Summary
		err := rows.Scan(
			&e.ObjectID,
			&e.RelatedObjectID,
			&e.Role,
			&e.Type,
			&e.CreatedAt,
			&related.ID,
			&related.Number,
			&related.Name,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan edge: %w", err)
		}
		e.Related = &related
		edges = append(edges, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating edge rows: %w", err)
	}
	return edges, nil
}

// WithUnitOfWork returns a copy of r whose transactions run through uow.
func (r *EdgeRepository) WithUnitOfWork(uow UnitOfWork) *EdgeRepository {
	return &EdgeRepository{db: r.db, uow: uow}
}
