package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestSetup(t *testing.T) {
	t.Run("valid log levels", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error", "DEBUG", "Info"} {
			app := newApp()
			app.Commands = nil
			err := app.Run([]string{"docsearch", "--log-level", level})
			assert.NoError(t, err, "level %q should be accepted", level)
		}
	})

	t.Run("invalid log level fails", func(t *testing.T) {
		app := newApp()
		app.Commands = nil
		err := app.Run([]string{"docsearch", "--log-level", "verbose"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})
}

func TestDatabaseFlags(t *testing.T) {
	flags := databaseFlags()

	findString := func(name string) *cli.StringFlag {
		for _, flag := range flags {
			if f, ok := flag.(*cli.StringFlag); ok && f.Name == name {
				return f
			}
		}
		return nil
	}

	t.Run("db has a default and env var", func(t *testing.T) {
		dbFlag := findString("db")
		require.NotNil(t, dbFlag)
		assert.Equal(t, "./docsearch_db", dbFlag.Value)
		assert.Contains(t, dbFlag.EnvVars, "DOCSEARCH_DB")
	})

	t.Run("embedding-host has default value", func(t *testing.T) {
		hostFlag := findString("embedding-host")
		require.NotNil(t, hostFlag)
		assert.Equal(t, "http://localhost:11434/v1", hostFlag.Value)
	})

	t.Run("embedding-model has default value", func(t *testing.T) {
		modelFlag := findString("embedding-model")
		require.NotNil(t, modelFlag)
		assert.Equal(t, "embeddinggemma", modelFlag.Value)
	})
}

func TestCommandValidation(t *testing.T) {
	t.Run("add requires a file argument", func(t *testing.T) {
		err := newApp().Run([]string{"docsearch", "add"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least one file")
	})

	t.Run("search requires a query", func(t *testing.T) {
		err := newApp().Run([]string{"docsearch", "search"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "query")
	})

	t.Run("delete rejects a non-numeric ID", func(t *testing.T) {
		err := newApp().Run([]string{"docsearch", "delete", "not-a-number"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid document ID")
	})
}

func TestAddSearchListRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cli_db")

	file := filepath.Join(t.TempDir(), "note.txt")
	require.NoError(t, os.WriteFile(file, []byte("The kernel scheduler balances runnable tasks across cores."), 0644))

	run := func(args ...string) error {
		return newApp().Run(append([]string{"docsearch"}, args...))
	}

	require.NoError(t, run("add", "--db", dbPath, "--no-embeddings", file))
	require.NoError(t, run("list", "--db", dbPath, "--no-embeddings"))
	require.NoError(t, run("search", "--db", dbPath, "--no-embeddings", "kernel", "scheduler"))
}
