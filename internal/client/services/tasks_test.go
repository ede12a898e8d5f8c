package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/gophtasks/internal/client/client"
	"github.com/dmitrijs2005/gophtasks/internal/client/models"
)

func TestTaskRepository_Routes(t *testing.T) {
	tr := &fakeTransport{handle: func(method, path string, _ any) (any, error) {
		switch {
		case method == "GET" && path == "/tasks":
			return map[string]any{"success": "ok", "tasks": []models.Task{{ID: "a"}, {ID: "b"}}}, nil
		case method == "DELETE":
			return map[string]any{"success": "ok"}, nil
		default:
			return map[string]any{"success": "ok", "task": models.Task{ID: "a", Title: "x"}}, nil
		}
	}}
	r := NewTaskRepository(tr)
	ctx := context.Background()

	list, err := r.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	created, err := r.Create(ctx, models.NewTask{Title: "x"})
	require.NoError(t, err)
	assert.Equal(t, "a", created.ID)

	got, err := r.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "x", got.Title)

	_, err = r.Update(ctx, "a", models.CompletedUpdate(true))
	require.NoError(t, err)

	require.NoError(t, r.Delete(ctx, "a"))

	calls := tr.Calls()
	require.Len(t, calls, 5)
	assert.Equal(t, call{method: "GET", path: "/tasks"}, calls[0])
	assert.Equal(t, "POST", calls[1].method)
	assert.Equal(t, "/tasks", calls[1].path)
	assert.Equal(t, call{method: "GET", path: "/tasks/a"}, calls[2])
	assert.Equal(t, "PUT", calls[3].method)
	assert.Equal(t, models.CompletedUpdate(true), calls[3].body)
	assert.Equal(t, call{method: "DELETE", path: "/tasks/a"}, calls[4])
}

func TestTaskRepository_EmptyListIsNotNil(t *testing.T) {
	tr := &fakeTransport{handle: func(string, string, any) (any, error) {
		return map[string]any{"success": "ok"}, nil
	}}

	list, err := NewTaskRepository(tr).List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestTaskRepository_PropagatesErrors(t *testing.T) {
	tr := &fakeTransport{handle: func(string, string, any) (any, error) {
		return nil, &client.APIError{StatusCode: http.StatusNotFound, Message: "Task not found."}
	}}
	r := NewTaskRepository(tr)

	_, err := r.Get(context.Background(), "missing")
	assert.True(t, client.IsNotFound(err))

	err = r.Delete(context.Background(), "missing")
	assert.True(t, client.IsNotFound(err))
}

func TestTaskPath_Escapes(t *testing.T) {
	assert.Equal(t, "/tasks/a%2Fb", taskPath("a/b"))
	assert.Equal(t, "/tasks/%2E%2E", taskPath(".."))
	assert.Equal(t, "/tasks/%2E", taskPath("."))
	assert.Equal(t, "/tasks/01ARZ3NDEKTSV4RRFFQ69G5FAV", taskPath("01ARZ3NDEKTSV4RRFFQ69G5FAV"))
}
