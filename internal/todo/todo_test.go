// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package todo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/taskmaster-tui/internal/auth"
)

type staticToken string

func (s staticToken) AccessToken() string { return string(s) }

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	api, err := auth.NewClient(srv.URL+"/api", time.Second)
	require.NoError(t, err)
	return NewClient(api, staticToken("tok"))
}

func TestClient_List(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/todos", r.URL.Path)
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"data": {
			"todos": [
				{"_id": "a1", "title": "Buy milk", "completed": false, "user": {"_id": "u1"}},
				{"id": "a2", "title": "Walk dog", "completed": true, "user": {"id": "u2"}}
			],
			"total": 2, "skip": 0
		}}`))
	})

	page, err := c.List(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Len(t, page.Todos, 2)
	assert.Equal(t, Todo{ID: "a1", Todo: "Buy milk", UserID: "u1"}, page.Todos[0])
	assert.Equal(t, Todo{ID: "a2", Todo: "Walk dog", Completed: true, UserID: "u2"}, page.Todos[1])
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, 10, page.Limit, "missing limit falls back to the request")
}

func TestClient_Create(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Write report", body["title"])
		_, _ = w.Write([]byte(`{"data": {"_id": "n1", "title": "Write report", "completed": false, "user": {"_id": "u1"}}}`))
	})

	todo, err := c.Create(context.Background(), "Write report")
	require.NoError(t, err)
	assert.Equal(t, "n1", todo.ID)
	assert.Equal(t, "Write report", todo.Todo)
}

func TestClient_Update(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/todos/a1", r.URL.Path)
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]interface{}{"title": "Buy oat milk"}, body)
		_, _ = w.Write([]byte(`{"data": {"_id": "a1", "title": "Buy oat milk", "completed": false}}`))
	})

	todo, err := c.Update(context.Background(), "a1", "Buy oat milk")
	require.NoError(t, err)
	assert.Equal(t, "a1", todo.ID)
	assert.Equal(t, "Buy oat milk", todo.Todo)
}

func TestClient_SetCompletedAndDelete(t *testing.T) {
	var methods []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.Method+" "+r.URL.Path)
		if r.Method == http.MethodPut {
			_, _ = w.Write([]byte(`{"data": {"_id": "a1", "title": "x", "completed": true}}`))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	todo, err := c.SetCompleted(context.Background(), "a1", true)
	require.NoError(t, err)
	assert.True(t, todo.Completed)
	assert.Empty(t, todo.UserID)

	require.NoError(t, c.Delete(context.Background(), "a1"))
	assert.Equal(t, []string{"PUT /api/todos/a1", "DELETE /api/todos/a1"}, methods)
}

func TestClient_Unauthorized(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message": "no token"}`))
	})

	_, err := c.List(context.Background(), 0, 0)
	assert.True(t, auth.IsUnauthorized(err))
}
