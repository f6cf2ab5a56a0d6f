package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// ValidateTaskDefinitions checks that a task list can be allocated
func ValidateTaskDefinitions(tasks []TaskDefinition) error {
	if len(tasks) == 0 {
		return fmt.Errorf("%w: at least one task definition is required", ErrInvalidConfiguration)
	}

	seen := make(map[string]bool, len(tasks))
	for i, task := range tasks {
		name := strings.TrimSpace(task.Name)
		if name == "" {
			return fmt.Errorf("%w: task %d has an empty name", ErrInvalidConfiguration, i+1)
		}
		if name != task.Name {
			return fmt.Errorf("%w: task name %q has leading or trailing whitespace", ErrInvalidConfiguration, task.Name)
		}
		if seen[name] {
			return fmt.Errorf("%w: duplicate task name %q", ErrInvalidConfiguration, name)
		}
		seen[name] = true

		if task.MinCount < 0 {
			return fmt.Errorf("%w: task %q min_count must be non-negative, got %d", ErrInvalidConfiguration, name, task.MinCount)
		}
		if task.MaxCount < task.MinCount {
			return fmt.Errorf("%w: task %q max_count (%d) must be at least min_count (%d)",
				ErrInvalidConfiguration, name, task.MaxCount, task.MinCount)
		}
		if task.MaxCount > MaxTaskCount {
			return fmt.Errorf("%w: task %q max_count must not exceed %d, got %d", ErrInvalidConfiguration, name, MaxTaskCount, task.MaxCount)
		}
	}

	return nil
}

// ValidateGameConfig validates a named configuration and its board
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("%w: config is required", ErrInvalidConfiguration)
	}
	if config.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidConfiguration)
	}

	if config.Rows < MinGridSize || config.Rows > MaxGridSize {
		return fmt.Errorf("%w: rows must be between %d and %d, got %d", ErrInvalidConfiguration, MinGridSize, MaxGridSize, config.Rows)
	}
	if config.Cols < MinGridSize || config.Cols > MaxGridSize {
		return fmt.Errorf("%w: cols must be between %d and %d, got %d", ErrInvalidConfiguration, MinGridSize, MaxGridSize, config.Cols)
	}
	if n := CellCount(config.Rows, config.Cols); n < MinPathLength {
		return fmt.Errorf("%w: board must have at least %d cells, got %d", ErrInvalidConfiguration, MinPathLength, n)
	}

	return ValidateTaskDefinitions(config.Tasks)
}

// LoadGameConfig loads and validates a configuration from a JSON file
func LoadGameConfig(filename string) (*GameConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var config GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	if err := ValidateGameConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// DefaultTasks returns the built-in task list
func DefaultTasks() []TaskDefinition {
	return []TaskDefinition{
		{Name: "Push-ups", MinCount: 10, MaxCount: 50},
		{Name: "Squats", MinCount: 10, MaxCount: 50},
		{Name: "Sit-ups", MinCount: 10, MaxCount: 50},
		{Name: "Lunges", MinCount: 10, MaxCount: 30},
		{Name: "Burpees", MinCount: 10, MaxCount: 30},
		{Name: "Jumping jacks", MinCount: 10, MaxCount: 30},
	}
}

// DefaultGameConfig returns the built-in configuration on the default board
func DefaultGameConfig() *GameConfig {
	return &GameConfig{
		Name:        "default",
		Description: "Six exercises on a 6x10 track",
		Rows:        DefaultRows,
		Cols:        DefaultCols,
		Tasks:       DefaultTasks(),
	}
}

// CloneTasks returns an independent copy of a task list
func CloneTasks(tasks []TaskDefinition) []TaskDefinition {
	if tasks == nil {
		return nil
	}
	out := make([]TaskDefinition, len(tasks))
	copy(out, tasks)
	return out
}
