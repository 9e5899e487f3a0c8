// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"encoding/base64"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func jwtWithExp(exp time.Time) string {
	enc := base64.RawURLEncoding
	header := enc.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	payload := enc.EncodeToString([]byte(fmt.Sprintf(`{"sub":"1","exp":%d}`, exp.Unix())))
	return header + "." + payload + ".sig"
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	got, ok := TokenExpiry(jwtWithExp(exp))
	assert.True(t, ok)
	assert.True(t, exp.Equal(got))

	_, ok = TokenExpiry("opaque-token")
	assert.False(t, ok)

	_, ok = TokenExpiry("a.%%%.c")
	assert.False(t, ok)

	noExp := base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"1"}`))
	_, ok = TokenExpiry("h." + noExp + ".s")
	assert.False(t, ok)
}

func TestTokenExpired(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.True(t, TokenExpired("", now))
	assert.True(t, TokenExpired(jwtWithExp(now), now))
	assert.True(t, TokenExpired(jwtWithExp(now.Add(-time.Minute)), now))
	assert.False(t, TokenExpired(jwtWithExp(now.Add(time.Minute)), now))
	assert.False(t, TokenExpired("opaque", now), "tokens without expiry are live")
}
