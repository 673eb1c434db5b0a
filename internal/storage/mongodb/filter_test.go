package mongodb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/aanand-mishra/student-registry/internal/storage"
)

func TestFindFilter(t *testing.T) {
	base := bson.D{{Key: "id", Value: "S1"}}

	assert.Equal(t,
		bson.D{
			{Key: "id", Value: "S1"},
			{Key: "isDeleted", Value: bson.D{{Key: "$ne", Value: true}}},
		},
		findFilter(base, storage.ExcludeDeleted()))

	assert.Equal(t, base, findFilter(base, storage.IncludeDeleted()))
	assert.Len(t, base, 1, "base filter must not be mutated")
}

func TestFindFilter_EmptyBase(t *testing.T) {
	assert.Equal(t,
		bson.D{{Key: "isDeleted", Value: bson.D{{Key: "$ne", Value: true}}}},
		findFilter(bson.D{}, storage.ExcludeDeleted()))
}

func TestPipeline_PrependsSoftDeleteMatch(t *testing.T) {
	match := bson.D{{Key: "$match", Value: bson.D{{Key: "id", Value: "S1"}}}}

	got := pipeline(storage.ExcludeDeleted(), match)

	if assert.Len(t, got, 2) {
		assert.Equal(t,
			bson.D{{Key: "$match", Value: bson.D{{Key: "isDeleted", Value: bson.D{{Key: "$ne", Value: true}}}}}},
			got[0])
		assert.Equal(t, match, got[1])
	}

	assert.Len(t, pipeline(storage.IncludeDeleted(), match), 1)
}
