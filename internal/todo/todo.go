// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package todo is a client for the backend's /todos endpoints.
package todo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// Todo is a single task. The backend calls the text "title".
type Todo struct {
	ID        string `json:"id"`
	Todo      string `json:"todo"`
	Completed bool   `json:"completed"`
	UserID    string `json:"userId"`
}

// Page is one page of todos.
type Page struct {
	Todos []Todo
	Total int
	Skip  int
	Limit int
}

// Doer sends authenticated JSON requests. *auth.Client implements it.
type Doer interface {
	Do(ctx context.Context, method, path, token string, body, out interface{}) error
}

// TokenSource yields the current bearer token. *auth.Session implements it.
type TokenSource interface {
	AccessToken() string
}

// Client lists and edits the signed-in user's todos.
type Client struct {
	api    Doer
	tokens TokenSource
}

// NewClient creates a todo client.
func NewClient(api Doer, tokens TokenSource) *Client {
	return &Client{api: api, tokens: tokens}
}

type ref struct {
	ID      string `json:"id"`
	MongoID string `json:"_id"`
}

func (r *ref) get() string {
	if r == nil {
		return ""
	}
	if r.MongoID != "" {
		return r.MongoID
	}
	return r.ID
}

type wireTodo struct {
	ref
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
	User      *ref   `json:"user"`
}

func (w wireTodo) todo(fallbackUser string) Todo {
	userID := w.User.get()
	if userID == "" {
		userID = fallbackUser
	}
	return Todo{ID: w.ref.get(), Todo: w.Title, Completed: w.Completed, UserID: userID}
}

// List returns a page of todos. limit <= 0 uses the server default.
func (c *Client) List(ctx context.Context, limit, skip int) (Page, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if skip > 0 {
		q.Set("skip", strconv.Itoa(skip))
	}
	path := "/todos"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp struct {
		Data struct {
			Todos []wireTodo `json:"todos"`
			Total int        `json:"total"`
			Skip  int        `json:"skip"`
			Limit int        `json:"limit"`
		} `json:"data"`
	}
	if err := c.api.Do(ctx, http.MethodGet, path, c.tokens.AccessToken(), nil, &resp); err != nil {
		return Page{}, fmt.Errorf("list todos: %w", err)
	}

	page := Page{
		Todos: make([]Todo, 0, len(resp.Data.Todos)),
		Total: resp.Data.Total,
		Skip:  resp.Data.Skip,
		Limit: resp.Data.Limit,
	}
	if page.Limit == 0 {
		page.Limit = 50
		if limit > 0 {
			page.Limit = limit
		}
	}
	for _, w := range resp.Data.Todos {
		page.Todos = append(page.Todos, w.todo(""))
	}
	return page, nil
}

// Create adds a todo.
func (c *Client) Create(ctx context.Context, text string) (Todo, error) {
	body := map[string]interface{}{"title": text, "completed": false}
	t, err := c.single(ctx, http.MethodPost, "/todos", body)
	if err != nil {
		return Todo{}, fmt.Errorf("create todo: %w", err)
	}
	return t, nil
}

// SetCompleted marks a todo done or not done.
func (c *Client) SetCompleted(ctx context.Context, id string, completed bool) (Todo, error) {
	body := map[string]interface{}{"completed": completed}
	t, err := c.single(ctx, http.MethodPut, "/todos/"+url.PathEscape(id), body)
	if err != nil {
		return Todo{}, fmt.Errorf("update todo: %w", err)
	}
	return t, nil
}

// Update replaces the text of a todo.
func (c *Client) Update(ctx context.Context, id, text string) (Todo, error) {
	body := map[string]interface{}{"title": text}
	t, err := c.single(ctx, http.MethodPut, "/todos/"+url.PathEscape(id), body)
	if err != nil {
		return Todo{}, fmt.Errorf("update todo: %w", err)
	}
	return t, nil
}

// Delete removes a todo.
func (c *Client) Delete(ctx context.Context, id string) error {
	if err := c.api.Do(ctx, http.MethodDelete, "/todos/"+url.PathEscape(id), c.tokens.AccessToken(), nil, nil); err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	return nil
}

func (c *Client) single(ctx context.Context, method, path string, body interface{}) (Todo, error) {
	var resp struct {
		Data json.RawMessage `json:"data"`
	}
	if err := c.api.Do(ctx, method, path, c.tokens.AccessToken(), body, &resp); err != nil {
		return Todo{}, err
	}
	var w wireTodo
	if err := json.Unmarshal(resp.Data, &w); err != nil {
		return Todo{}, fmt.Errorf("decode todo: %w", err)
	}
	return w.todo(""), nil
}
