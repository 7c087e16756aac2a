package numbering_test

import (
	"context"
	"testing"

	"github.com/rpggio/plantree/internal/domain"
	"github.com/rpggio/plantree/internal/domain/activity"
	"github.com/rpggio/plantree/internal/numbering"
	"github.com/rpggio/plantree/internal/sqlite"
	"github.com/rpggio/plantree/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type accessFunc func(projectID, userID string) error

func (f accessFunc) CheckAccess(_ context.Context, projectID, userID string) error {
	return f(projectID, userID)
}

func allowOnly(userID string) accessFunc {
	return func(_, u string) error {
		if u != userID {
			return domain.ErrAccessDenied
		}
		return nil
	}
}

func TestService_RenumberObjects(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	testutil.SeedUser(t, db, "u1")
	proj := testutil.SeedProject(t, db, "u1")

	parent := testutil.SeedObject(t, db, proj.ID, "u1", "Parent", 3)
	testutil.SeedObject(t, db, proj.ID, "u1", "Other", 7)
	testutil.SeedObject(t, db, proj.ID, "u1", "Child", 4, testutil.WithParent(parent.ID))

	activities := sqlite.NewActivityRepository(db)
	svc := numbering.NewService(sqlite.NewObjectRepository(db), allowOnly("u1"), activities, nil)

	_, err := svc.RenumberObjects(ctx, proj.ID, "stranger")
	require.ErrorIs(t, err, domain.ErrAccessDenied)

	outline, err := svc.RenumberObjects(ctx, proj.ID, "u1")
	require.NoError(t, err)
	require.Len(t, outline, 3)
	assert.Equal(t, "Parent", outline[0].Name)
	assert.Equal(t, "1", outline[0].Label)
	assert.Equal(t, "1.1", outline[1].Label)
	assert.Equal(t, "2", outline[2].Label)

	entries, err := activities.List(ctx, activity.ListOptions{ProjectID: proj.ID})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, activity.TypeObjectsRenumbered, entries[0].Type)

	writes, err := svc.Resync(ctx, proj.ID)
	require.NoError(t, err)
	assert.Zero(t, writes, "a renumbered project is stable")
}

func TestService_Outline(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	testutil.SeedUser(t, db, "u1")
	proj := testutil.SeedProject(t, db, "u1")
	testutil.SeedObject(t, db, proj.ID, "u1", "Only", 5)

	svc := numbering.NewService(sqlite.NewObjectRepository(db), allowOnly("u1"), nil, nil)
	outline, err := svc.Outline(ctx, proj.ID, "u1")
	require.NoError(t, err)
	require.Len(t, outline, 1)
	assert.Equal(t, "5", outline[0].Label, "outline never writes")
}
