// Command validate checks the task preset JSON files in a configs directory.
// Unlike loading a preset, which stops at the first problem, it reports every
// problem it finds in a file:
//   - JSON structure and the name field
//   - Board size limits and a track of at least two cells
//   - Task names: present, trimmed and unique
//   - Task ranges: 0 <= min_count <= max_count <= the engine limit
//
// Valid presets are also allocated once with a fixed seed as a dry run.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wricardo/mcp-training/pathboard/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// validateConfig loads and validates a single preset file
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	var config engine.GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}

	if strings.TrimSpace(config.Name) == "" {
		result.fail("name is required")
	}

	validateBoard(&result, config.Rows, config.Cols)
	validateTasks(&result, config.Tasks)

	// The engine has the final word; this catches anything the checks above miss
	if result.Valid {
		if err := engine.ValidateGameConfig(&config); err != nil {
			result.fail("%v", err)
		}
	}

	if !result.Valid {
		return result
	}

	pathLength := engine.CellCount(config.Rows, config.Cols)
	cells, err := engine.AllocateWithSeed(config.Tasks, pathLength, 1)
	if err != nil {
		result.fail("Allocation failed: %v", err)
		return result
	}

	poolMin, poolMax := 0, 0
	for _, task := range config.Tasks {
		poolMin += task.MinCount
		poolMax += task.MaxCount
	}

	result.Errors = append(result.Errors, fmt.Sprintf("✓ Name: %s", config.Name))
	result.Errors = append(result.Errors, fmt.Sprintf("✓ Board: %dx%d", config.Rows, config.Cols))
	result.Errors = append(result.Errors, fmt.Sprintf("✓ Track: %d cells, %d with tasks", pathLength, engine.CountTaskCells(cells)))
	result.Errors = append(result.Errors, fmt.Sprintf("✓ Tasks: %d (pool of %d-%d)", len(config.Tasks), poolMin, poolMax))
	result.Errors = append(result.Errors, "✓ Dry run: "+describeAllocation(cells))
	if len(config.Tasks) > pathLength-2 {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Note: %d task types for %d task cells, some will not appear", len(config.Tasks), pathLength-2))
	}

	return result
}

// describeAllocation lists, per task in name order, the cells it got and
// the quantity they add up to
func describeAllocation(cells []engine.Cell) string {
	dist := engine.TaskDistribution(cells)
	totals := engine.TotalQuantity(cells)

	names := make([]string, 0, len(dist))
	for name := range dist {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s %d cells, %d total", name, dist[name], totals[name]))
	}
	if len(parts) == 0 {
		return "no task cells"
	}
	return strings.Join(parts, "; ")
}

// validateBoard checks the grid against the engine limits
func validateBoard(result *ValidationResult, rows, cols int) {
	if rows < engine.MinGridSize || rows > engine.MaxGridSize {
		result.fail("rows must be between %d and %d, got %d", engine.MinGridSize, engine.MaxGridSize, rows)
	}
	if cols < engine.MinGridSize || cols > engine.MaxGridSize {
		result.fail("cols must be between %d and %d, got %d", engine.MinGridSize, engine.MaxGridSize, cols)
	}
	if rows > 0 && cols > 0 && engine.CellCount(rows, cols) < engine.MinPathLength {
		result.fail("track must have at least %d cells, got %d", engine.MinPathLength, engine.CellCount(rows, cols))
	}
}

// validateTasks reports every problem in the task list
func validateTasks(result *ValidationResult, tasks []engine.TaskDefinition) {
	if len(tasks) == 0 {
		result.fail("at least one task is required")
		return
	}

	seen := make(map[string]int, len(tasks))
	for i, task := range tasks {
		label := fmt.Sprintf("task %d", i+1)
		name := strings.TrimSpace(task.Name)

		switch {
		case name == "":
			result.fail("%s: name is required", label)
		case name != task.Name:
			result.fail("%s: name %q has leading or trailing whitespace", label, task.Name)
		}
		if name != "" {
			label = fmt.Sprintf("task %q", name)
			if first, ok := seen[name]; ok {
				result.fail("%s: duplicate of task %d", label, first)
			} else {
				seen[name] = i + 1
			}
		}

		if task.MinCount < 0 {
			result.fail("%s: min_count must be non-negative, got %d", label, task.MinCount)
		}
		if task.MaxCount < task.MinCount {
			result.fail("%s: max_count (%d) must be at least min_count (%d)", label, task.MaxCount, task.MinCount)
		}
		if task.MaxCount > engine.MaxTaskCount {
			result.fail("%s: max_count must not exceed %d, got %d", label, engine.MaxTaskCount, task.MaxCount)
		}
	}
}

// main validates each *.json preset in the directory, printing a concise
// report and exiting with non-zero status if any are invalid.
func main() {
	configDir := flag.String("dir", "../configs", "Directory containing task presets")
	flag.Parse()

	files, err := filepath.Glob(filepath.Join(*configDir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("No presets found in %s\n", *configDir)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				fmt.Println("  ❌ " + err)
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All configurations are valid!")
	} else {
		fmt.Println("❌ Some configurations have errors")
		os.Exit(1)
	}
}
