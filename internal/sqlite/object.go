package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rpggio/plantree/internal/domain/object"
	"github.com/rpggio/plantree/internal/numbering"
	"github.com/rpggio/plantree/internal/repository"
)

const objectColumns = `
	id, project_id, parent_id, number, kind, name, description,
	start_date, end_date, status, priority, progress,
	creator_id, version, created_at, updated_at`

// ObjectRepository implements object.Repository and numbering.Store for SQLite
type ObjectRepository struct {
	db  *DB
	uow UnitOfWork
}

// NewObjectRepository creates a new ObjectRepository
func NewObjectRepository(db *DB) *ObjectRepository {
	return &ObjectRepository{db: db, uow: NewUnitOfWork(db)}
}

// Create inserts an object and its members
func (r *ObjectRepository) Create(ctx context.Context, obj *object.Object) error {
	return r.uow.WithinTx(ctx, func(ctx context.Context, tx DBTX) error {
		query := `
			INSERT INTO objects (` + objectColumns + `)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`
		_, err := tx.ExecContext(ctx, query,
			obj.ID,
			obj.ProjectID,
			obj.ParentID,
			obj.Number,
			obj.Kind,
			obj.Name,
			obj.Description,
			nullTime(obj.StartDate),
			nullTime(obj.EndDate),
			obj.Status,
			obj.Priority,
			obj.Progress,
			obj.CreatorID,
			obj.Version,
			obj.CreatedAt,
			obj.UpdatedAt,
		)
		if err != nil {
			return writeError("create object", err)
		}
		return insertMembers(ctx, tx, obj.ID, obj.Members)
	})
}

// Get retrieves an object by ID
func (r *ObjectRepository) Get(ctx context.Context, id string) (*object.Object, error) {
	return getObject(ctx, r.db, id)
}

// ListByProject returns a project's objects, top level first, then by parent and number
func (r *ObjectRepository) ListByProject(ctx context.Context, projectID string) ([]object.Object, error) {
	return listObjects(ctx, r.db, projectID)
}

// ListChildren returns the objects directly under parentID, or the top level when nil
func (r *ObjectRepository) ListChildren(ctx context.Context, projectID string, parentID *string) ([]object.Object, error) {
	query := `SELECT ` + objectColumns + ` FROM objects WHERE project_id = ? AND parent_id IS ? ORDER BY number`
	rows, err := r.db.QueryContext(ctx, query, projectID, parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list children: %w", err)
	}
	objects, err := scanObjects(rows)
	if err != nil {
		return nil, err
	}
	if err := attachMembers(ctx, r.db, objects, `
		SELECT m.object_id, m.user_id FROM object_members m
		JOIN objects o ON o.id = m.object_id
		WHERE o.project_id = ? AND o.parent_id IS ?`, projectID, parentID); err != nil {
		return nil, err
	}
	return objects, nil
}

// MaxNumber returns the highest number among the siblings under parentID, or 0
func (r *ObjectRepository) MaxNumber(ctx context.Context, projectID string, parentID *string) (int, error) {
	return maxNumber(ctx, r.db, projectID, parentID)
}

// Update writes every field of obj if the stored version equals expectedVersion
func (r *ObjectRepository) Update(ctx context.Context, obj *object.Object, expectedVersion int64) error {
	return r.uow.WithinTx(ctx, func(ctx context.Context, tx DBTX) error {
		query := `
			UPDATE objects
			SET parent_id = ?, number = ?, kind = ?, name = ?, description = ?,
			    start_date = ?, end_date = ?, status = ?, priority = ?, progress = ?,
			    version = ?, updated_at = ?
			WHERE id = ? AND version = ?
		`
		result, err := tx.ExecContext(ctx, query,
			obj.ParentID,
			obj.Number,
			obj.Kind,
			obj.Name,
			obj.Description,
			nullTime(obj.StartDate),
			nullTime(obj.EndDate),
			obj.Status,
			obj.Priority,
			obj.Progress,
			obj.Version,
			obj.UpdatedAt,
			obj.ID,
			expectedVersion,
		)
		if err != nil {
			return writeError("update object", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			var exists bool
			err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM objects WHERE id = ?)`, obj.ID).Scan(&exists)
			if err != nil {
				return fmt.Errorf("failed to check object existence: %w", err)
			}
			if !exists {
				return repository.ErrNotFound
			}
			return repository.ErrConflict
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM object_members WHERE object_id = ?`, obj.ID); err != nil {
			return fmt.Errorf("failed to clear members: %w", err)
		}
		return insertMembers(ctx, tx, obj.ID, obj.Members)
	})
}

// Delete removes an object in one transaction: its edges go, its children
// move to the top level after the current last top-level object, then the
// object row is deleted.
func (r *ObjectRepository) Delete(ctx context.Context, id string) error {
	return r.uow.WithinTx(ctx, func(ctx context.Context, tx DBTX) error {
		var projectID string
		err := tx.QueryRowContext(ctx, `SELECT project_id FROM objects WHERE id = ?`, id).Scan(&projectID)
		if errors.Is(err, sql.ErrNoRows) {
			return repository.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to load object: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM object_edges WHERE object_id = ? OR related_object_id = ?`, id, id); err != nil {
			return fmt.Errorf("failed to delete edges: %w", err)
		}

		next, err := maxNumber(ctx, tx, projectID, nil)
		if err != nil {
			return err
		}
		children, err := childIDs(ctx, tx, id)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		for _, childID := range children {
			next++
			_, err := tx.ExecContext(ctx,
				`UPDATE objects SET parent_id = NULL, number = ?, version = version + 1, updated_at = ? WHERE id = ?`,
				next, now, childID)
			if err != nil {
				return writeError("reparent child", err)
			}
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM objects WHERE id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete object: %w", err)
		}
		return nil
	})
}

// ApplyNumbers reloads the project inside a transaction, writes the planned
// numbers in order and returns the committed objects with the write count.
func (r *ObjectRepository) ApplyNumbers(ctx context.Context, projectID string, plan numbering.PlanFunc) ([]object.Object, int, error) {
	var (
		result []object.Object
		writes int
	)
	err := r.uow.WithinTx(ctx, func(ctx context.Context, tx DBTX) error {
		current, err := listObjects(ctx, tx, projectID)
		if err != nil {
			return err
		}
		changes := plan(current)
		if len(changes) == 0 {
			result = current
			return nil
		}

		now := time.Now().UTC()
		for _, c := range changes {
			_, err := tx.ExecContext(ctx,
				`UPDATE objects SET number = ?, version = version + 1, updated_at = ? WHERE id = ? AND project_id = ?`,
				c.Number, now, c.ID, projectID)
			if err != nil {
				return writeError("renumber object", err)
			}
		}
		writes = len(changes)

		result, err = listObjects(ctx, tx, projectID)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return result, writes, nil
}

func getObject(ctx context.Context, q DBTX, id string) (*object.Object, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+objectColumns+` FROM objects WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get object: %w", err)
	}
	objects, err := scanObjects(rows)
	if err != nil {
		return nil, err
	}
	if len(objects) == 0 {
		return nil, repository.ErrNotFound
	}
	if err := attachMembers(ctx, q, objects,
		`SELECT object_id, user_id FROM object_members WHERE object_id = ?`, id); err != nil {
		return nil, err
	}
	return &objects[0], nil
}

func listObjects(ctx context.Context, q DBTX, projectID string) ([]object.Object, error) {
	query := `
		SELECT ` + objectColumns + `
		FROM objects
		WHERE project_id = ?
		ORDER BY parent_id IS NOT NULL, parent_id, number
	`
	rows, err := q.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list objects: %w", err)
	}
	objects, err := scanObjects(rows)
	if err != nil {
		return nil, err
	}
	if err := attachMembers(ctx, q, objects, `
		SELECT m.object_id, m.user_id FROM object_members m
		JOIN objects o ON o.id = m.object_id
		WHERE o.project_id = ?`, projectID); err != nil {
		return nil, err
	}
	return objects, nil
}

func maxNumber(ctx context.Context, q DBTX, projectID string, parentID *string) (int, error) {
	var highest int
	err := q.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(number), 0) FROM objects WHERE project_id = ? AND parent_id IS ?`,
		projectID, parentID).Scan(&highest)
	if err != nil {
		return 0, fmt.Errorf("failed to read max number: %w", err)
	}
	return highest, nil
}

func childIDs(ctx context.Context, q DBTX, parentID string) ([]string, error) {
	rows, err := q.QueryContext(ctx, `SELECT id FROM objects WHERE parent_id = ? ORDER BY number`, parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list children: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan child id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating child rows: %w", err)
	}
	return ids, nil
}

func scanObjects(rows *sql.Rows) ([]object.Object, error) {
	defer rows.Close()

	var objects []object.Object
	for rows.Next() {
		var (
			obj        object.Object
			parentID   sql.NullString
			start, end sql.NullTime
		)
		err := rows.Scan(
			&obj.ID,
			&obj.ProjectID,
			&parentID,
			&obj.Number,
			&obj.Kind,
			&obj.Name,
			&obj.Description,
			&start,
			&end,
			&obj.Status,
			&obj.Priority,
			&obj.Progress,
			&obj.CreatorID,
			&obj.Version,
			&obj.CreatedAt,
			&obj.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan object: %w", err)
		}
		obj.ParentID = stringPtr(parentID)
		obj.StartDate = timePtr(start)
		obj.EndDate = timePtr(end)
		objects = append(objects, obj)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating object rows: %w", err)
	}
	return objects, nil
}

// attachMembers runs query, which yields (object_id, user_id) pairs, and
// fills Members on the matching objects.
func attachMembers(ctx context.Context, q DBTX, objects []object.Object, query string, args ...any) error {
	if len(objects) == 0 {
		return nil
	}
	rows, err := q.QueryContext(ctx, query+` ORDER BY user_id`, args...)
	if err != nil {
		return fmt.Errorf("failed to load members: %w", err)
	}
	defer rows.Close()

	members := map[string][]string{}
	for rows.Next() {
		var objectID, userID string
		if err := rows.Scan(&objectID, &userID); err != nil {
			return fmt.Errorf("failed to scan object member: %w", err)
		}
		members[objectID] = append(members[objectID], userID)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating member rows: %w", err)
	}

	for i := range objects {
		objects[i].Members = members[objects[i].ID]
	}
	return nil
}

func insertMembers(ctx context.Context, tx DBTX, objectID string, members []string) error {
	for _, userID := range members {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO object_members (object_id, user_id) VALUES (?, ?)`, objectID, userID)
		if err != nil {
			return writeError("add object member", err)
		}
	}
	return nil
}

// WithUnitOfWork returns a copy of r whose transactions run through uow.
func (r *ObjectRepository) WithUnitOfWork(uow UnitOfWork) *ObjectRepository {
	return &ObjectRepository{db: r.db, uow: uow}
}
