package migration

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScaffold(t *testing.T) {
	dir := t.TempDir()

	pair, err := Scaffold(dir, "Add Deal Indexes")
	require.NoError(t, err)

	assert.Len(t, pair.Version, 14)
	assert.Contains(t, pair.UpPath, "add_deal_indexes.up.sql")
	assert.Contains(t, pair.DownPath, "add_deal_indexes.down.sql")

	up, err := os.ReadFile(pair.UpPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(up), "-- Add Deal Indexes"))

	_, err = os.Stat(pair.DownPath)
	require.NoError(t, err)
}

func TestList(t *testing.T) {
	dir := t.TempDir()

	t.Run("empty directory", func(t *testing.T) {
		names, err := List(dir)
		require.NoError(t, err)
		assert.Empty(t, names)
	})

	t.Run("missing directory", func(t *testing.T) {
		names, err := List(dir + "/nope")
		require.NoError(t, err)
		assert.Nil(t, names)
	})

	t.Run("pairs counted once", func(t *testing.T) {
		_, err := Scaffold(dir, "init schema")
		require.NoError(t, err)

		names, err := List(dir)
		require.NoError(t, err)
		require.Len(t, names, 1)
		assert.Contains(t, names[0], "init_schema")
	})
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Add Deal Indexes": "add_deal_indexes",
		"init-schema":      "init_schema",
		"  spaced  out  ":  "spaced_out",
		"v2":               "v2",
	}
	for in, want := range cases {
		assert.Equal(t, want, slugify(in), in)
	}
}
