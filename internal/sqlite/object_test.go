package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rpggio/plantree/internal/domain/dependency"
	"github.com/rpggio/plantree/internal/domain/object"
	"github.com/rpggio/plantree/internal/repository"
	"github.com/rpggio/plantree/internal/sqlite"
	"github.com/rpggio/plantree/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type objectFixture struct {
	db        *sqlite.DB
	repo      *sqlite.ObjectRepository
	projectID string
}

func newObjectFixture(t *testing.T) objectFixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	testutil.SeedUser(t, db, "u1")
	testutil.SeedUser(t, db, "u2")
	proj := testutil.SeedProject(t, db, "u1")
	return objectFixture{db: db, repo: sqlite.NewObjectRepository(db), projectID: proj.ID}
}

func (f objectFixture) seed(t *testing.T, name string, number int, opts ...testutil.ObjectOption) *object.Object {
	t.Helper()
	return testutil.SeedObject(t, f.db, f.projectID, "u1", name, number, opts...)
}

func TestObjectRepository_CreateAndGet(t *testing.T) {
	f := newObjectFixture(t)
	ctx := context.Background()

	start := testutil.Date(2025, time.January, 10)
	end := testutil.Date(2025, time.January, 20)
	obj := testutil.NewObject(f.projectID, "u1", "Design", 1, testutil.WithDates(start, end))
	obj.Members = []string{"u1", "u2"}
	obj.Progress = 40
	require.NoError(t, f.repo.Create(ctx, obj))

	got, err := f.repo.Get(ctx, obj.ID)
	require.NoError(t, err)
	assert.Equal(t, "Design", got.Name)
	assert.Nil(t, got.ParentID)
	assert.Equal(t, 1, got.Number)
	assert.Equal(t, 40, got.Progress)
	assert.Equal(t, int64(1), got.Version)
	assert.ElementsMatch(t, []string{"u1", "u2"}, got.Members)
	require.NotNil(t, got.StartDate)
	assert.True(t, start.Equal(*got.StartDate))
	assert.True(t, end.Equal(*got.EndDate))

	_, err = f.repo.Get(ctx, "missing")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestObjectRepository_CreateDuplicateNumber(t *testing.T) {
	f := newObjectFixture(t)
	f.seed(t, "A", 1)

	dup := testutil.NewObject(f.projectID, "u1", "B", 1)
	err := f.repo.Create(context.Background(), dup)
	require.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestObjectRepository_CreateRollsBackOnMemberFailure(t *testing.T) {
	f := newObjectFixture(t)
	ctx := context.Background()

	obj := testutil.NewObject(f.projectID, "u1", "A", 1)
	obj.Members = []string{"ghost"}
	require.ErrorIs(t, f.repo.Create(ctx, obj), repository.ErrForeignKeyViolation)

	_, err := f.repo.Get(ctx, obj.ID)
	require.ErrorIs(t, err, repository.ErrNotFound, "object row must roll back with its members")
}

func TestObjectRepository_ListAndMaxNumber(t *testing.T) {
	f := newObjectFixture(t)
	ctx := context.Background()

	b := f.seed(t, "B", 2)
	a := f.seed(t, "A", 1)
	a2 := f.seed(t, "A.2", 2, testutil.WithParent(a.ID))
	a1 := f.seed(t, "A.1", 1, testutil.WithParent(a.ID))

	all, err := f.repo.ListByProject(ctx, f.projectID)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, []string{a.ID, b.ID}, []string{all[0].ID, all[1].ID}, "top level first, by number")
	assert.Equal(t, []string{a1.ID, a2.ID}, []string{all[2].ID, all[3].ID})

	roots, err := f.repo.ListChildren(ctx, f.projectID, nil)
	require.NoError(t, err)
	require.Len(t, roots, 2)

	children, err := f.repo.ListChildren(ctx, f.projectID, &a.ID)
	require.NoError(t, err)
	require.Len(t, children, 2)
	assert.Equal(t, a1.ID, children[0].ID)

	highest, err := f.repo.MaxNumber(ctx, f.projectID, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, highest)

	highest, err = f.repo.MaxNumber(ctx, f.projectID, &b.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, highest)
}

func TestObjectRepository_UpdateVersionCheck(t *testing.T) {
	f := newObjectFixture(t)
	ctx := context.Background()
	obj := f.seed(t, "A", 1)

	obj.Name = "Renamed"
	obj.Members = []string{"u2"}
	obj.Version = 2
	require.NoError(t, f.repo.Update(ctx, obj, 1))

	got, err := f.repo.Get(ctx, obj.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, int64(2), got.Version)
	assert.Equal(t, []string{"u2"}, got.Members)

	obj.Version = 3
	require.ErrorIs(t, f.repo.Update(ctx, obj, 1), repository.ErrConflict)

	obj.ID = "missing"
	require.ErrorIs(t, f.repo.Update(ctx, obj, 2), repository.ErrNotFound)
}

func TestObjectRepository_DeleteReparentsChildrenAndDropsEdges(t *testing.T) {
	f := newObjectFixture(t)
	ctx := context.Background()
	edges := sqlite.NewEdgeRepository(f.db)

	parent := f.seed(t, "Parent", 1)
	other := f.seed(t, "Other", 2)
	c2 := f.seed(t, "Second child", 2, testutil.WithParent(parent.ID))
	c1 := f.seed(t, "First child", 1, testutil.WithParent(parent.ID))

	link := dependency.Link{FromID: parent.ID, ToID: other.ID, Type: dependency.TypeFinishStart}
	require.NoError(t, edges.CreatePair(ctx, link.Rows(time.Now().UTC())))

	require.NoError(t, f.repo.Delete(ctx, parent.ID))

	_, err := f.repo.Get(ctx, parent.ID)
	require.ErrorIs(t, err, repository.ErrNotFound)

	first, err := f.repo.Get(ctx, c1.ID)
	require.NoError(t, err)
	assert.Nil(t, first.ParentID)
	assert.Equal(t, 3, first.Number, "children follow the last top-level object in their order")
	assert.Equal(t, int64(2), first.Version)

	second, err := f.repo.Get(ctx, c2.ID)
	require.NoError(t, err)
	assert.Nil(t, second.ParentID)
	assert.Equal(t, 4, second.Number)

	rows, err := edges.ListForObject(ctx, other.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)

	require.ErrorIs(t, f.repo.Delete(ctx, parent.ID), repository.ErrNotFound)
}

func TestObjectRepository_DeleteRollsBack(t *testing.T) {
	f := newObjectFixture(t)
	ctx := context.Background()
	edges := sqlite.NewEdgeRepository(f.db)

	parent := f.seed(t, "Parent", 1)
	other := f.seed(t, "Other", 2)
	child := f.seed(t, "Child", 1, testutil.WithParent(parent.ID))
	link := dependency.Link{FromID: other.ID, ToID: parent.ID, Type: dependency.TypeStartStart}
	require.NoError(t, edges.CreatePair(ctx, link.Rows(time.Now().UTC())))

	// Exec #1 deletes edges, #2 reparents the child, #3 deletes the object.
	injected := errors.New("injected delete failure")
	failing := f.repo.WithUnitOfWork(testutil.FailOnExec(f.db, 3, injected))

	err := failing.Delete(ctx, parent.ID)
	require.ErrorIs(t, err, injected)

	_, err = f.repo.Get(ctx, parent.ID)
	require.NoError(t, err, "object must survive a failed delete")

	got, err := f.repo.Get(ctx, child.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ParentID, "child must keep its parent")
	assert.Equal(t, parent.ID, *got.ParentID)

	rows, err := edges.ListForObject(ctx, parent.ID)
	require.NoError(t, err)
	assert.Len(t, rows, 1, "edge rows must survive a failed delete")
}

func TestObjectRepository_ApplyNumbers(t *testing.T) {
	f := newObjectFixture(t)
	ctx := context.Background()

	a := f.seed(t, "A", 2)
	b := f.seed(t, "B", 3)
	c := f.seed(t, "C", 5)

	plan := func(current []object.Object) []object.NumberChange {
		require.Len(t, current, 3)
		return []object.NumberChange{
			{ID: a.ID, Number: 1},
			{ID: b.ID, Number: 2},
			{ID: c.ID, Number: 3},
		}
	}
	result, writes, err := f.repo.ApplyNumbers(ctx, f.projectID, plan)
	require.NoError(t, err)
	assert.Equal(t, 3, writes)
	require.Len(t, result, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{result[0].Number, result[1].Number, result[2].Number})
	assert.Equal(t, int64(2), result[0].Version)

	noop := func([]object.Object) []object.NumberChange { return nil }
	_, writes, err = f.repo.ApplyNumbers(ctx, f.projectID, noop)
	require.NoError(t, err)
	assert.Zero(t, writes)
}

func TestObjectRepository_ApplyNumbersRollsBack(t *testing.T) {
	f := newObjectFixture(t)
	ctx := context.Background()

	a := f.seed(t, "A", 2)
	b := f.seed(t, "B", 4)

	injected := errors.New("injected renumber failure")
	failing := f.repo.WithUnitOfWork(testutil.FailOnExec(f.db, 2, injected))

	_, _, err := failing.ApplyNumbers(ctx, f.projectID, func([]object.Object) []object.NumberChange {
		return []object.NumberChange{{ID: a.ID, Number: 1}, {ID: b.ID, Number: 2}}
	})
	require.ErrorIs(t, err, injected)

	got, err := f.repo.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Number, "first write must roll back")
	assert.Equal(t, int64(1), got.Version)
}
