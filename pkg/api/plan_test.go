package api

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlan_SendsNothing(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	plan, err := client.Plan("getItems", []string{"articles"}, map[string]any{"limit": 5})
	require.NoError(t, err)
	assert.Equal(t, "getItems", plan.Operation)
	assert.Equal(t, http.MethodGet, plan.Method)
	assert.Equal(t, server.URL+"/api/1.1/tables/articles/rows?limit=5", plan.URL)
	assert.Nil(t, plan.Body)

	plan, err = client.Plan("createBulk", []string{"articles"}, []any{map[string]any{"title": "a"}})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, plan.Method)
	assert.Equal(t, map[string]any{"rows": []any{map[string]any{"title": "a"}}}, plan.Body)

	plan, err = client.Plan("createItem", []string{"articles"}, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{}, plan.Body)

	plan, err = client.Plan("getApi", []string{"server/info"}, nil)
	require.NoError(t, err)
	assert.Equal(t, server.URL+"/api/server/info", plan.URL)

	assert.Equal(t, int32(0), calls.Load())
}

func TestPlan_ValidatesLikeCall(t *testing.T) {
	client := newTestClient(t, "https://directus.example.com")

	_, err := client.Plan("getItem", []string{"articles"}, nil)
	var missing *MissingParameterError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "id", missing.Parameter)

	_, err = client.Plan("createBulk", []string{"articles"}, map[string]any{"title": "a"})
	var mismatch *TypeMismatchError
	require.ErrorAs(t, err, &mismatch)

	_, err = client.Plan("nope", nil, nil)
	var unknown *UnknownOperationError
	require.ErrorAs(t, err, &unknown)
}

func TestPlanRequest_DeleteKeepsNilBody(t *testing.T) {
	client := newTestClient(t, "https://directus.example.com")

	plan := client.PlanRequest(http.MethodDelete, "files/7", RootVersioned, nil)
	assert.Equal(t, "https://directus.example.com/api/1.1/files/7", plan.URL)
	assert.Nil(t, plan.Body)
}
