package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommands(t *testing.T) {
	for _, path := range [][]string{{"serve"}, {"notifier"}, {"migrate", "up"}, {"migrate", "down"}, {"migrate", "version"}} {
		cmd, _, err := rootCmd.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}
}

func TestMigrateDown_RejectsNonPositiveSteps(t *testing.T) {
	downSteps = 0
	defer func() { downSteps = 1 }()

	err := migrateDownCmd.RunE(migrateDownCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "steps must be positive")
}
