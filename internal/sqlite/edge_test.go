package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rpggio/plantree/internal/domain/dependency"
	"github.com/rpggio/plantree/internal/repository"
	"github.com/rpggio/plantree/internal/sqlite"
	"github.com/rpggio/plantree/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEdgeRepository_CreatePairMirrors(t *testing.T) {
	f := newObjectFixture(t)
	ctx := context.Background()
	repo := sqlite.NewEdgeRepository(f.db)

	x := f.seed(t, "X", 1)
	y := f.seed(t, "Y", 2)

	link := dependency.Link{FromID: x.ID, ToID: y.ID, Type: dependency.TypeFinishStart}
	require.NoError(t, repo.CreatePair(ctx, link.Rows(time.Now().UTC())))

	fromRows, err := repo.ListForObject(ctx, x.ID)
	require.NoError(t, err)
	require.Len(t, fromRows, 1)
	assert.Equal(t, dependency.RolePredecessor, fromRows[0].Role)
	assert.Equal(t, y.ID, fromRows[0].RelatedObjectID)
	require.NotNil(t, fromRows[0].Related)
	assert.Equal(t, "Y", fromRows[0].Related.Name)
	assert.Equal(t, 2, fromRows[0].Related.Number)

	toRows, err := repo.ListForObject(ctx, y.ID)
	require.NoError(t, err)
	require.Len(t, toRows, 1)
	assert.Equal(t, dependency.RoleSuccessor, toRows[0].Role)
	assert.Equal(t, x.ID, toRows[0].RelatedObjectID)

	require.ErrorIs(t, repo.CreatePair(ctx, link.Rows(time.Now().UTC())), repository.ErrDuplicate)

	reverse := dependency.Link{FromID: y.ID, ToID: x.ID, Type: dependency.TypeFinishStart}
	require.NoError(t, repo.CreatePair(ctx, reverse.Rows(time.Now().UTC())), "a two-object cycle is allowed")

	missing := dependency.Link{FromID: x.ID, ToID: "ghost", Type: dependency.TypeFinishStart}
	require.ErrorIs(t, repo.CreatePair(ctx, missing.Rows(time.Now().UTC())), repository.ErrForeignKeyViolation)
}

func TestEdgeRepository_CreatePairRollsBack(t *testing.T) {
	f := newObjectFixture(t)
	ctx := context.Background()
	repo := sqlite.NewEdgeRepository(f.db)
	x := f.seed(t, "X", 1)
	y := f.seed(t, "Y", 2)

	injected := errors.New("injected mirror failure")
	failing := repo.WithUnitOfWork(testutil.FailOnExec(f.db, 2, injected))

	link := dependency.Link{FromID: x.ID, ToID: y.ID, Type: dependency.TypeStartStart}
	require.ErrorIs(t, failing.CreatePair(ctx, link.Rows(time.Now().UTC())), injected)

	rows, err := repo.ListForObject(ctx, x.ID)
	require.NoError(t, err)
	assert.Empty(t, rows, "no orphan predecessor row may remain")
}

func TestEdgeRepository_UpdateAndDeletePair(t *testing.T) {
	f := newObjectFixture(t)
	ctx := context.Background()
	repo := sqlite.NewEdgeRepository(f.db)
	x := f.seed(t, "X", 1)
	y := f.seed(t, "Y", 2)

	link := dependency.Link{FromID: x.ID, ToID: y.ID, Type: dependency.TypeFinishStart}
	require.NoError(t, repo.CreatePair(ctx, link.Rows(time.Now().UTC())))

	stored, n, err := repo.UpdatePairType(ctx, x.ID, y.ID, dependency.TypeFinishFinish)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, dependency.Link{FromID: x.ID, ToID: y.ID, Type: dependency.TypeFinishFinish}, stored)

	for _, id := range []string{x.ID, y.ID} {
		rows, err := repo.ListForObject(ctx, id)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, dependency.TypeFinishFinish, rows[0].Type)
	}

	stored, n, err = repo.DeletePair(ctx, x.ID, y.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, x.ID, stored.FromID)

	_, n, err = repo.DeletePair(ctx, x.ID, y.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestEdgeRepository_PairAddressedInReverse(t *testing.T) {
	f := newObjectFixture(t)
	ctx := context.Background()
	repo := sqlite.NewEdgeRepository(f.db)
	x := f.seed(t, "X", 1)
	y := f.seed(t, "Y", 2)

	link := dependency.Link{FromID: x.ID, ToID: y.ID, Type: dependency.TypeFinishStart}
	require.NoError(t, repo.CreatePair(ctx, link.Rows(time.Now().UTC())))

	stored, n, err := repo.UpdatePairType(ctx, y.ID, x.ID, dependency.TypeStartStart)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, x.ID, stored.FromID, "the stored direction is kept")

	rows, err := repo.ListForObject(ctx, x.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, dependency.RolePredecessor, rows[0].Role)
	assert.Equal(t, dependency.TypeStartStart, rows[0].Type)

	stored, n, err = repo.DeletePair(ctx, y.ID, x.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, y.ID, stored.ToID)

	for _, id := range []string{x.ID, y.ID} {
		rows, err := repo.ListForObject(ctx, id)
		require.NoError(t, err)
		assert.Empty(t, rows)
	}
}

func TestEdgeRepository_ForwardPairWinsOverReverse(t *testing.T) {
	f := newObjectFixture(t)
	ctx := context.Background()
	repo := sqlite.NewEdgeRepository(f.db)
	x := f.seed(t, "X", 1)
	y := f.seed(t, "Y", 2)

	now := time.Now().UTC()
	require.NoError(t, repo.CreatePair(ctx, dependency.Link{FromID: x.ID, ToID: y.ID, Type: dependency.TypeFinishStart}.Rows(now)))
	require.NoError(t, repo.CreatePair(ctx, dependency.Link{FromID: y.ID, ToID: x.ID, Type: dependency.TypeStartStart}.Rows(now)))

	_, n, err := repo.DeletePair(ctx, y.ID, x.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	rows, err := repo.ListForObject(ctx, x.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, dependency.Link{FromID: x.ID, ToID: y.ID, Type: dependency.TypeFinishStart}, rows[0].Link())
}

func TestEdgeRepository_CreatePairRejectsUnknownType(t *testing.T) {
	f := newObjectFixture(t)
	ctx := context.Background()
	repo := sqlite.NewEdgeRepository(f.db)
	x := f.seed(t, "X", 1)
	y := f.seed(t, "Y", 2)

	link := dependency.Link{FromID: x.ID, ToID: y.ID, Type: dependency.Type("XX")}
	err := repo.CreatePair(ctx, link.Rows(time.Now().UTC()))
	require.ErrorIs(t, err, repository.ErrInvalidInput)

	rows, err := repo.ListForObject(ctx, x.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestEdgeRepository_DeletePairCleansLoneRow(t *testing.T) {
	f := newObjectFixture(t)
	ctx := context.Background()
	repo := sqlite.NewEdgeRepository(f.db)
	x := f.seed(t, "X", 1)
	y := f.seed(t, "Y", 2)

	_, err := f.db.ExecContext(ctx,
		`INSERT INTO object_edges (object_id, related_object_id, role, type) VALUES (?, ?, 'predecessor', 'FS')`,
		x.ID, y.ID)
	require.NoError(t, err)

	_, n, err := repo.DeletePair(ctx, x.ID, y.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestEdgeRepository_ListForProject(t *testing.T) {
	f := newObjectFixture(t)
	ctx := context.Background()
	repo := sqlite.NewEdgeRepository(f.db)
	x := f.seed(t, "X", 1)
	y := f.seed(t, "Y", 2)

	otherProject := testutil.SeedProject(t, f.db, "u2")
	z := testutil.SeedObject(t, f.db, otherProject.ID, "u2", "Z", 1)

	require.NoError(t, repo.CreatePair(ctx, dependency.Link{FromID: x.ID, ToID: y.ID, Type: dependency.TypeFinishStart}.Rows(time.Now())))
	require.NoError(t, repo.CreatePair(ctx, dependency.Link{FromID: x.ID, ToID: z.ID, Type: dependency.TypeFinishStart}.Rows(time.Now())))

	rows, err := repo.ListForProject(ctx, f.projectID)
	require.NoError(t, err)
	require.Len(t, rows, 2, "only rows with both endpoints in the project")
	for _, r := range rows {
		assert.NotEqual(t, z.ID, r.ObjectID)
		assert.NotEqual(t, z.ID, r.RelatedObjectID)
	}
}
