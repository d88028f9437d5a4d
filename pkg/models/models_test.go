package models

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNamesResolve(t *testing.T) {
	supported := []string{"cities", "countries", "provincies"}

	assert.Equal(t, supported, Names(nil).Resolve(supported))
	assert.Empty(t, Names{}.Resolve(supported))
	assert.Equal(t, []string{"countries", "cities"},
		Names{"countries", "something_else", "cities", "countries"}.Resolve(supported))
}

func TestNamesExplicitlyEmpty(t *testing.T) {
	var decoded struct {
		Null  Names `json:"null"`
		Empty Names `json:"empty"`
		Some  Names `json:"some"`
	}
	err := json.Unmarshal([]byte(`{"null": null, "empty": [], "some": ["cities"]}`), &decoded)
	require.NoError(t, err)

	assert.False(t, decoded.Null.ExplicitlyEmpty())
	assert.True(t, decoded.Empty.ExplicitlyEmpty())
	assert.False(t, decoded.Some.ExplicitlyEmpty())
}

func TestAnnotateRequestOperations(t *testing.T) {
	var req AnnotateRequest
	err := json.Unmarshal([]byte(`{"find_entities": {"object_type": "text", "texts": ["a"]}}`), &req)
	require.NoError(t, err)
	assert.Equal(t, []Operation{OperationFindEntities}, req.Operations())
	assert.Equal(t, ObjectTypeText, req.FindEntities.ObjectType)
	assert.JSONEq(t, `["a"]`, string(req.FindEntities.Texts))

	req = AnnotateRequest{}
	err = json.Unmarshal([]byte(`{"features": {}, "find_properties": {}}`), &req)
	require.NoError(t, err)
	assert.Equal(t, []Operation{OperationFindProperties, OperationFeatures}, req.Operations())
}

func TestTimingParametersExpired(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	skew := 10 * time.Second

	assert.False(t, TimingParameters{}.Expired(now, skew))

	later := now.Add(time.Minute)
	assert.False(t, TimingParameters{Deadline: &later}.Expired(now, skew))

	soon := now.Add(5 * time.Second)
	assert.True(t, TimingParameters{Deadline: &soon}.Expired(now, skew))

	past := now.Add(-time.Minute)
	assert.True(t, TimingParameters{Deadline: &past}.Expired(now, skew))
}

func TestErrors(t *testing.T) {
	err := NewNotFoundError("annotator Foo")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "annotator Foo not found", err.Error())

	err = NewBadRequestError("Invalid input: Missing %q", "texts")
	assert.True(t, errors.Is(err, ErrBadRequest))
	assert.Equal(t, `Invalid input: Missing "texts"`, err.Error())
}

func TestObjectTypeValid(t *testing.T) {
	assert.True(t, ObjectTypeTable.Valid())
	assert.False(t, ObjectType("video").Valid())
}
