package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rpggio/plantree/internal/domain/project"
	"github.com/rpggio/plantree/internal/repository"
)

// ProjectRepository implements project.Repository and project.UserRepository for SQLite
type ProjectRepository struct {
	db *DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create creates a new project
func (r *ProjectRepository) Create(ctx context.Context, proj *project.Project) error {
	query := `
		INSERT INTO projects (id, owner_id, name, description, start_date, end_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		proj.ID,
		proj.OwnerID,
		proj.Name,
		proj.Description,
		nullTime(proj.StartDate),
		nullTime(proj.EndDate),
		proj.CreatedAt,
	)
	if err != nil {
		return writeError("create project", err)
	}

	return nil
}

// Get retrieves a project by ID
func (r *ProjectRepository) Get(ctx context.Context, id string) (*project.Project, error) {
	query := `
		SELECT id, owner_id, name, description, start_date, end_date, created_at
		FROM projects
		WHERE id = ?
	`

	var proj project.Project
	var start, end sql.NullTime
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&proj.ID,
		&proj.OwnerID,
		&proj.Name,
		&proj.Description,
		&start,
		&end,
		&proj.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	proj.StartDate = timePtr(start)
	proj.EndDate = timePtr(end)
	return &proj, nil
}

// ListForUser returns summaries of projects the user owns or is a member of
func (r *ProjectRepository) ListForUser(ctx context.Context, userID string) ([]project.ProjectSummary, error) {
	query := `
		SELECT
			p.id,
			p.owner_id,
			p.name,
			p.description,
			p.created_at,
			(SELECT COUNT(*) FROM objects o WHERE o.project_id = p.id) AS object_count,
			(SELECT COUNT(*) FROM objects o WHERE o.project_id = p.id AND o.status IN ('open', 'in_progress')) AS open_objects,
			(SELECT COUNT(*) FROM project_members m WHERE m.project_id = p.id) AS member_count
		FROM projects p
		WHERE p.owner_id = ?
		   OR EXISTS (SELECT 1 FROM project_members m WHERE m.project_id = p.id AND m.user_id = ?)
		ORDER BY p.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var summaries []project.ProjectSummary
	for rows.Next() {
		var summary project.ProjectSummary
		err := rows.Scan(
			&summary.ID,
			&summary.OwnerID,
			&summary.Name,
			&summary.Description,
			&summary.CreatedAt,
			&summary.ObjectCount,
			&summary.OpenObjects,
			&summary.MemberCount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project summary: %w", err)
		}
		summaries = append(summaries, summary)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating project rows: %w", err)
	}

	return summaries, nil
}

// AddMember adds a user to a project
func (r *ProjectRepository) AddMember(ctx context.Context, member *project.Member) error {
	query := `
		INSERT INTO project_members (project_id, user_id, role, added_at)
		VALUES (?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query, member.ProjectID, member.UserID, member.Role, member.AddedAt)
	if err != nil {
		return writeError("add member", err)
	}
	return nil
}

// RemoveMember removes a user from a project
func (r *ProjectRepository) RemoveMember(ctx context.Context, projectID, userID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM project_members WHERE project_id = ? AND user_id = ?`, projectID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ListMembers returns the members of a project
func (r *ProjectRepository) ListMembers(ctx context.Context, projectID string) ([]project.Member, error) {
	query := `
		SELECT project_id, user_id, role, added_at
		FROM project_members
		WHERE project_id = ?
		ORDER BY added_at ASC, user_id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []project.Member
	for rows.Next() {
		var m project.Member
		if err := rows.Scan(&m.ProjectID, &m.UserID, &m.Role, &m.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating member rows: %w", err)
	}

	return members, nil
}

// IsMember reports whether the user is a member of the project
func (r *ProjectRepository) IsMember(ctx context.Context, projectID, userID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM project_members WHERE project_id = ? AND user_id = ?)`,
		projectID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return exists, nil
}

// CreateUser creates a new user
func (r *ProjectRepository) CreateUser(ctx context.Context, user *project.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, created_at) VALUES (?, ?, ?, ?)`,
		user.ID, user.Name, nullString(user.Email), user.CreatedAt)
	if err != nil {
		return writeError("create user", err)
	}
	return nil
}

// EnsureUser creates the user unless a user with the same ID exists
func (r *ProjectRepository) EnsureUser(ctx context.Context, user *project.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO users (id, name, email, created_at) VALUES (?, ?, ?, ?)`,
		user.ID, user.Name, nullString(user.Email), user.CreatedAt)
	if err != nil {
		return writeError("ensure user", err)
	}
	return nil
}

// GetUser retrieves a user by ID
func (r *ProjectRepository) GetUser(ctx context.Context, id string) (*project.User, error) {
	var user project.User
	var email sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, created_at FROM users WHERE id = ?`, id).Scan(
		&user.ID, &user.Name, &email, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	user.Email = email.String
	return &user, nil
}
