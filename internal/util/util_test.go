// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// ATOMIC WRITE TESTS
// =============================================================================

func TestAtomicWriteFile_Basic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.txt")

	require.NoError(t, AtomicWriteFileWithDir(path, []byte("hello"), 0644, 0755))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestAtomicWriteFile_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.txt")

	require.NoError(t, AtomicWriteFileWithDir(path, []byte("first"), 0644, 0755))
	require.NoError(t, AtomicWriteFileWithDir(path, []byte("second"), 0644, 0755))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestAtomicWriteFileWithDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "newdir", "test.txt")

	require.NoError(t, AtomicWriteFileWithDir(path, []byte("test"), 0600, 0700))

	info, err := os.Stat(path)
	require.NoError(t, err)
	if os.PathSeparator == '/' {
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

		dirInfo, err := os.Stat(filepath.Dir(path))
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0700), dirInfo.Mode().Perm())
	}
}

// =============================================================================
// STRING TESTS
// =============================================================================

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		width int
		want  string
	}{
		{"fits", "buy milk", 10, "buy milk"},
		{"exact", "buy milk", 8, "buy milk"},
		{"cut", "buy milk and eggs", 10, "buy mil..."},
		{"zero width", "anything", 0, ""},
		{"narrow", "abcdef", 3, "abc"},
		{"wide runes", "日本語テキスト", 9, "日本語..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Truncate(tt.input, tt.width)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, runewidth.StringWidth(got), tt.width)
		})
	}
}


func TestIntConversions(t *testing.T) {
	assert.Equal(t, "42", IntToString(42))
	assert.Equal(t, "-7", IntToString(-7))
	assert.Equal(t, "05", PadLeft(5, 2))
	assert.Equal(t, "59", PadLeft(59, 2))
	assert.Equal(t, "120", PadLeft(120, 2))
}
