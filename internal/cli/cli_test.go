package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildCLI(t *testing.T) {
	cmd := BuildCLI()

	assert.NotNil(t, cmd, "BuildCLI should return a non-nil command")
	assert.Equal(t, "corosched", cmd.Use, "Root command should be 'corosched'")
	assert.Equal(t, "1.0.0", cmd.Version, "Version should be 1.0.0")

	commands := cmd.Commands()
	assert.Len(t, commands, 3, "Should have 3 subcommands")

	commandNames := make(map[string]bool)
	for _, c := range commands {
		commandNames[c.Name()] = true
	}

	assert.True(t, commandNames["run"], "Should have 'run' command")
	assert.True(t, commandNames["demo"], "Should have 'demo' command")
	assert.True(t, commandNames["status"], "Should have 'status' command")

	configFlag := cmd.PersistentFlags().Lookup("config")
	assert.NotNil(t, configFlag, "Should have --config flag")
	assert.Equal(t, "configs/default.yaml", configFlag.DefValue, "Default config path should be configs/default.yaml")
}

func TestBuildRunCommand(t *testing.T) {
	cmd := buildRunCommand()

	assert.NotNil(t, cmd, "buildRunCommand should return a non-nil command")
	assert.Equal(t, "run", cmd.Use, "Command should be 'run'")
	assert.Contains(t, cmd.Short, "Start", "Short description should mention 'Start'")
	assert.NotNil(t, cmd.RunE, "RunE function should be set")
}

func TestBuildDemoCommand(t *testing.T) {
	cmd := buildDemoCommand()

	assert.NotNil(t, cmd, "buildDemoCommand should return a non-nil command")
	assert.Equal(t, "demo", cmd.Use, "Command should be 'demo'")

	workersFlag := cmd.Flags().Lookup("workers")
	assert.NotNil(t, workersFlag, "Should have --workers flag")

	countFlag := cmd.Flags().Lookup("count")
	assert.NotNil(t, countFlag, "Should have --count flag")

	assert.NotNil(t, cmd.RunE, "RunE function should be set")
}

func TestBuildStatusCommand(t *testing.T) {
	cmd := buildStatusCommand()

	assert.NotNil(t, cmd, "buildStatusCommand should return a non-nil command")
	assert.Equal(t, "status", cmd.Use, "Command should be 'status'")
	assert.Contains(t, cmd.Short, "status", "Short description should mention 'status'")
	assert.NotNil(t, cmd.RunE, "RunE function should be set")

	adminFlag := cmd.Flags().Lookup("admin")
	assert.NotNil(t, adminFlag, "Should have --admin flag")
	assert.Equal(t, "localhost:7070", adminFlag.DefValue)
}

func TestRunDemoCompletesAllJobs(t *testing.T) {
	err := runDemo(4, 5)
	assert.NoError(t, err, "runDemo should complete without error")
}
