// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"encoding/json"
	"errors"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// User is an account on the task backend.
type User struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Gender    string `json:"gender,omitempty"`
	Image     string `json:"image,omitempty"`
}

// UnmarshalJSON accepts the backend's "_id" as well as "id".
func (u *User) UnmarshalJSON(data []byte) error {
	type plain User
	var wire struct {
		plain
		MongoID string `json:"_id"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*u = User(wire.plain)
	if wire.MongoID != "" {
		u.ID = wire.MongoID
	}
	return nil
}

// DisplayName returns "First Last" in title case, falling back to the username.
func (u User) DisplayName() string {
	name := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	if name == "" {
		return u.Username
	}
	return cases.Title(language.Und).String(strings.ToLower(name))
}

// Credentials are what a successful login yields.
type Credentials struct {
	User         User   `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// ErrNoCredentials is returned by a CredentialStore holding nothing.
var ErrNoCredentials = errors.New("no stored credentials")
