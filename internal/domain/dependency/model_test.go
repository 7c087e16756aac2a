package dependency_test

import (
	"testing"
	"time"

	"github.com/rpggio/plantree/internal/domain/dependency"
	"github.com/stretchr/testify/assert"
)

var testTime = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func TestLinkRows(t *testing.T) {
	link := dependency.Link{FromID: "a", ToID: "b", Type: dependency.TypeStartFinish}
	rows := link.Rows(testTime)

	assert.Equal(t, dependency.Edge{
		ObjectID: "a", RelatedObjectID: "b", Role: dependency.RolePredecessor,
		Type: dependency.TypeStartFinish, CreatedAt: testTime,
	}, rows[0])
	assert.Equal(t, dependency.Edge{
		ObjectID: "b", RelatedObjectID: "a", Role: dependency.RoleSuccessor,
		Type: dependency.TypeStartFinish, CreatedAt: testTime,
	}, rows[1])

	assert.Equal(t, link, rows[0].Link())
	assert.Equal(t, link, rows[1].Link(), "both rows describe the same logical edge")
}

func TestTypeIsValid(t *testing.T) {
	for _, typ := range []dependency.Type{dependency.TypeStartStart, dependency.TypeFinishFinish, dependency.TypeStartFinish, dependency.TypeFinishStart} {
		assert.True(t, typ.IsValid(), typ)
	}
	assert.False(t, dependency.Type("").IsValid())
	assert.False(t, dependency.Type("fs").IsValid())
}
