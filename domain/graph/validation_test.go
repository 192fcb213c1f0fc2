package graph

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emergent-company/typedgraph/pkg/apperror"
)

func TestPatterns(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"abc", true},
		{"alice", true},
		{"Person42", true},
		{strings.Repeat("a", 255), true},
		{"ab", false},
		{"", false},
		{strings.Repeat("a", 256), false},
		{"has space", false},
		{"dash-ed", false},
		{"under_score", false},
		{"ünï", false},
	}

	for _, kind := range []fieldKind{kindName, kindType, kindLabel, kindUsername} {
		for _, tt := range tests {
			assert.Equal(t, tt.want, patterns[kind].MatchString(tt.value), "kind=%d value=%q", kind, tt.value)
		}
	}
}

func TestValidateVertex_CollectsEveryViolation(t *testing.T) {
	v := validateVertex(&CreateVertexRequest{Name: "a", Type: "", CreatedBy: "x y"})

	require.False(t, v.Empty())
	assert.Len(t, v.Fields, 3)
	assert.Contains(t, v.Fields, "name")
	assert.Contains(t, v.Fields, "type")
	assert.Contains(t, v.Fields, "created_by")
	assert.Empty(t, v.Matched)
}

func TestValidateVertex_Valid(t *testing.T) {
	v := validateVertex(&CreateVertexRequest{Name: "alice", Type: "person", CreatedBy: "svc1"})
	assert.True(t, v.Empty())
	assert.NoError(t, v.Err())
}

func TestValidateVertex_Nil(t *testing.T) {
	assert.Error(t, validateVertex(nil).Err())
}

func TestValidateEdge(t *testing.T) {
	tests := []struct {
		name        string
		req         CreateEdgeRequest
		wantFields  []string
		wantMatched bool
	}{
		{
			name: "valid",
			req:  CreateEdgeRequest{FromVertexID: 1, ToVertexID: 2, Label: "knows", CreatedBy: "svc1"},
		},
		{
			name:        "self loop is a matched violation",
			req:         CreateEdgeRequest{FromVertexID: 7, ToVertexID: 7, Label: "knows", CreatedBy: "svc1"},
			wantMatched: true,
		},
		{
			name:       "non-positive ids",
			req:        CreateEdgeRequest{FromVertexID: 0, ToVertexID: -1, Label: "knows", CreatedBy: "svc1"},
			wantFields: []string{"from_vertex_id", "to_vertex_id"},
		},
		{
			name:        "everything wrong",
			req:         CreateEdgeRequest{FromVertexID: 0, ToVertexID: 0, Label: "k", CreatedBy: ""},
			wantFields:  []string{"from_vertex_id", "to_vertex_id", "label", "created_by"},
			wantMatched: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := validateEdge(&tt.req)
			assert.Len(t, v.Fields, len(tt.wantFields))
			for _, f := range tt.wantFields {
				assert.Contains(t, v.Fields, f)
			}
			assert.Equal(t, tt.wantMatched, len(v.Matched) > 0)
		})
	}
}

func TestCheckDistinctEndpoints_DoesNotTouchFields(t *testing.T) {
	v := &Violations{}
	checkDistinctEndpoints(v, 3, 3)
	assert.Nil(t, v.Fields)
	assert.Equal(t, []string{"from_vertex_id and to_vertex_id must differ"}, v.Matched)

	v = &Violations{}
	checkDistinctEndpoints(v, 3, 4)
	assert.True(t, v.Empty())
}

func TestViolationsErr_Details(t *testing.T) {
	v := validateEdge(&CreateEdgeRequest{FromVertexID: 5, ToVertexID: 5, Label: "x", CreatedBy: "svc1"})
	err := v.Err()
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrValidation))

	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, 422, appErr.HTTPStatus)
	assert.Contains(t, appErr.Details, "fields")
	assert.Contains(t, appErr.Details, "matched")
}

func TestValidateEdges_IndexedPaths(t *testing.T) {
	reqs := []CreateEdgeRequest{
		{FromVertexID: 1, ToVertexID: 2, Label: "knows", CreatedBy: "svc1"},
		{FromVertexID: 1, ToVertexID: 2, Label: "no", CreatedBy: "svc1"},
		{FromVertexID: 3, ToVertexID: 3, Label: "knows", CreatedBy: "svc1"},
	}

	v := validateEdges(reqs)
	assert.Contains(t, v.Fields, "items[1].label")
	assert.NotContains(t, v.Fields, "items[0].label")
	require.Len(t, v.Matched, 1)
	assert.True(t, strings.HasPrefix(v.Matched[0], "items[2]: "))
}

func TestValidateVertices_IndexedPaths(t *testing.T) {
	reqs := []CreateVertexRequest{
		{Name: "alice", Type: "person", CreatedBy: "svc1"},
		{Name: "bob", Type: "p", CreatedBy: "svc1"},
	}

	v := validateVertices(reqs)
	assert.Equal(t, map[string][]string{"items[1].type": {"must be 3-255 alphanumeric characters"}}, v.Fields)
}

func TestValidateID(t *testing.T) {
	assert.NoError(t, validateID("id", 1))
	assert.Error(t, validateID("id", 0))
	assert.Error(t, validateID("id", -5))
}

func TestValidateBatchSize(t *testing.T) {
	assert.NoError(t, validateBatchSize(0, 10))
	assert.NoError(t, validateBatchSize(10, 10))

	err := validateBatchSize(11, 10)
	require.Error(t, err)
	assert.Equal(t, "validation_error", apperror.CodeOf(err))
}
