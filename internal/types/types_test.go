package types_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/aanand-mishra/student-registry/internal/types"
)

func TestFullName(t *testing.T) {
	tests := []struct {
		name types.UserName
		want string
	}{
		{types.UserName{FirstName: "Jane", LastName: "Doe"}, "Jane Doe"},
		{types.UserName{FirstName: "Jane", MiddleName: "Q", LastName: "Doe"}, "Jane Q Doe"},
		{types.UserName{}, ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, types.Student{Name: tt.name}.FullName())
	}
}

func TestStudentJSON(t *testing.T) {
	s := types.Student{
		ID:       "S1",
		Password: "",
		Name:     types.UserName{FirstName: "Jane", LastName: "Doe"},
		Gender:   types.GenderFemale,
		IsActive: types.StatusActive,
	}

	raw, err := json.Marshal(s)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))

	assert.Equal(t, "Jane Doe", got["fullName"])
	assert.Equal(t, "S1", got["id"])
	assert.Equal(t, "", got["password"])
	assert.Equal(t, false, got["isDeleted"])
	assert.NotContains(t, got, "bloodGroup")
	assert.NotContains(t, got, "profileImg")

	// fullName is output only; decoding ignores it.
	var back types.Student
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, s, back)
}

func TestGuardianBSONKeys(t *testing.T) {
	raw, err := bson.Marshal(types.Guardian{FatherOccupation: "Engineer", MotherOccupation: "Doctor"})
	require.NoError(t, err)

	var doc bson.M
	require.NoError(t, bson.Unmarshal(raw, &doc))

	assert.Equal(t, "Engineer", doc["fatherOcupation"])
	assert.Equal(t, "Doctor", doc["motherOcupation"])
	assert.NotContains(t, doc, "fatherOccupation")
}
