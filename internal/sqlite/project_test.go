package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/rpggio/plantree/internal/domain/project"
	"github.com/rpggio/plantree/internal/repository"
	"github.com/rpggio/plantree/internal/sqlite"
	"github.com/rpggio/plantree/internal/testutil"
	"github.com/stretchr/testify/require"
)

func TestProjectRepository_CreateAndGet(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := sqlite.NewProjectRepository(db)
	ctx := context.Background()
	testutil.SeedUser(t, db, "owner")

	start := testutil.Date(2025, time.January, 1)
	end := testutil.Date(2025, time.March, 31)
	proj := &project.Project{
		ID:          "p1",
		OwnerID:     "owner",
		Name:        "Test Project",
		Description: "A test project",
		StartDate:   &start,
		EndDate:     &end,
		CreatedAt:   time.Now().UTC(),
	}
	require.NoError(t, repo.Create(ctx, proj))

	retrieved, err := repo.Get(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, "owner", retrieved.OwnerID)
	require.Equal(t, "A test project", retrieved.Description)
	require.NotNil(t, retrieved.StartDate)
	require.True(t, start.Equal(*retrieved.StartDate))
	require.True(t, end.Equal(*retrieved.EndDate))
}

func TestProjectRepository_GetNotFound(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := sqlite.NewProjectRepository(db)

	_, err := repo.Get(context.Background(), "missing")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestProjectRepository_CreateUnknownOwner(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := sqlite.NewProjectRepository(db)

	err := repo.Create(context.Background(), &project.Project{ID: "p1", OwnerID: "ghost", Name: "P", CreatedAt: time.Now()})
	require.ErrorIs(t, err, repository.ErrForeignKeyViolation)
}

func TestProjectRepository_Members(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := sqlite.NewProjectRepository(db)
	ctx := context.Background()
	testutil.SeedUser(t, db, "owner")
	testutil.SeedUser(t, db, "dev")
	proj := testutil.SeedProject(t, db, "owner")

	member := &project.Member{ProjectID: proj.ID, UserID: "dev", Role: project.RoleDeveloper, AddedAt: time.Now().UTC()}
	require.NoError(t, repo.AddMember(ctx, member))
	require.ErrorIs(t, repo.AddMember(ctx, member), repository.ErrDuplicate)

	ok, err := repo.IsMember(ctx, proj.ID, "dev")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = repo.IsMember(ctx, proj.ID, "owner")
	require.NoError(t, err)
	require.False(t, ok, "ownership is not membership")

	members, err := repo.ListMembers(ctx, proj.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	require.Equal(t, project.RoleDeveloper, members[0].Role)

	require.NoError(t, repo.RemoveMember(ctx, proj.ID, "dev"))
	require.ErrorIs(t, repo.RemoveMember(ctx, proj.ID, "dev"), repository.ErrNotFound)
}

func TestProjectRepository_ListForUser(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := sqlite.NewProjectRepository(db)
	ctx := context.Background()
	testutil.SeedUser(t, db, "alice")
	testutil.SeedUser(t, db, "bob")

	owned := testutil.SeedProject(t, db, "alice")
	shared := testutil.SeedProject(t, db, "bob")
	testutil.SeedProject(t, db, "bob")
	require.NoError(t, repo.AddMember(ctx, &project.Member{
		ProjectID: shared.ID, UserID: "alice", Role: project.RoleTester, AddedAt: time.Now().UTC(),
	}))
	testutil.SeedObject(t, db, owned.ID, "alice", "Open task", 1)
	done := testutil.NewObject(owned.ID, "alice", "Done task", 2)
	done.Status = "done"
	require.NoError(t, sqlite.NewObjectRepository(db).Create(ctx, done))

	summaries, err := repo.ListForUser(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	byID := map[string]project.ProjectSummary{}
	for _, s := range summaries {
		byID[s.ID] = s
	}
	require.Equal(t, 2, byID[owned.ID].ObjectCount)
	require.Equal(t, 1, byID[owned.ID].OpenObjects)
	require.Equal(t, 1, byID[shared.ID].MemberCount)
}

func TestProjectRepository_Users(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := sqlite.NewProjectRepository(db)
	ctx := context.Background()

	user := &project.User{ID: "u1", Name: "Ann", Email: "ann@example.com", CreatedAt: time.Now().UTC()}
	require.NoError(t, repo.CreateUser(ctx, user))

	dup := &project.User{ID: "u2", Name: "Other", Email: "ann@example.com", CreatedAt: time.Now().UTC()}
	require.ErrorIs(t, repo.CreateUser(ctx, dup), repository.ErrDuplicate)

	// Users without email do not collide on the unique index.
	require.NoError(t, repo.CreateUser(ctx, &project.User{ID: "u3", Name: "A", CreatedAt: time.Now()}))
	require.NoError(t, repo.CreateUser(ctx, &project.User{ID: "u4", Name: "B", CreatedAt: time.Now()}))

	require.NoError(t, repo.EnsureUser(ctx, &project.User{ID: "u1", Name: "Changed"}))
	got, err := repo.GetUser(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, "Ann", got.Name)
	require.Equal(t, "ann@example.com", got.Email)

	_, err = repo.GetUser(ctx, "missing")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestAPIKeyRepository(t *testing.T) {
	db := testutil.NewTestDB(t)
	keys := sqlite.NewAPIKeyRepository(db)
	ctx := context.Background()
	testutil.SeedUser(t, db, "u1")

	token, err := keys.Issue(ctx, "u1", "laptop")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := keys.ResolveUser(ctx, token)
	require.NoError(t, err)
	require.Equal(t, "u1", userID)

	_, err = keys.ResolveUser(ctx, "not-a-token")
	require.ErrorIs(t, err, repository.ErrNotFound)

	var stored string
	require.NoError(t, db.QueryRow(`SELECT key_hash FROM api_keys`).Scan(&stored))
	require.NotEqual(t, token, stored, "tokens are stored hashed")
	require.Equal(t, sqlite.HashToken(token), stored)

	require.ErrorIs(t, keys.Register(ctx, "ghost", "tok", ""), repository.ErrForeignKeyViolation)
}
