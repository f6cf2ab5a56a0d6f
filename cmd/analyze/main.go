// Command analyze prints quick, human-readable heuristics about the task
// presets in a configs directory: track length, how the task pool compares to
// it, and statistics from seeded simulated games.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/wricardo/mcp-training/pathboard/game/engine"
)

// maxTurns stops a simulated game that never reaches the finish
const maxTurns = 10000

// Report summarizes one preset
type Report struct {
	Name       string
	PathLength int
	TaskCells  int
	PoolMin    int
	PoolMax    int

	Games       int
	MeanRolls   float64
	MinRolls    int
	MaxRolls    int
	MeanBounces float64
	MeanTasks   float64
	MeanTotals  map[string]float64
	Unfinished  int
}

// PoolFit describes how the drawn task pool compares to the track
func (r Report) PoolFit() string {
	switch {
	case r.PoolMin > r.PathLength:
		return "always reduced: every pool is larger than the track"
	case r.PoolMax < r.PathLength:
		return "always padded: every pool is smaller than the track"
	case r.PoolMax > r.PathLength:
		return "sometimes reduced, sometimes padded"
	default:
		return "padded or exact"
	}
}

func main() {
	dir := flag.String("dir", "configs", "Directory containing task presets")
	games := flag.Int("games", 200, "Simulated games per preset")
	flag.Parse()

	paths, err := filepath.Glob(filepath.Join(*dir, "*.json"))
	if err != nil || len(paths) == 0 {
		fmt.Fprintf(os.Stderr, "no presets found in %s\n", *dir)
		os.Exit(1)
	}
	sort.Strings(paths)

	for _, path := range paths {
		fmt.Printf("\n=== Analyzing %s ===\n", filepath.Base(path))
		analyzeConfig(os.Stdout, path, *games)
	}
}

func analyzeConfig(out io.Writer, path string, games int) {
	config, err := engine.LoadGameConfig(path)
	if err != nil {
		fmt.Fprintf(out, "Error loading preset: %v\n", err)
		return
	}

	report, err := analyze(config, games)
	if err != nil {
		fmt.Fprintf(out, "Error simulating preset: %v\n", err)
		return
	}
	printReport(out, report)
}

// analyze simulates games seeded 1..games, completing every task as it comes up
func analyze(config *engine.GameConfig, games int) (Report, error) {
	r := Report{
		Name:       config.Name,
		PathLength: engine.CellCount(config.Rows, config.Cols),
		MeanTotals: make(map[string]float64),
	}
	r.TaskCells = r.PathLength - 2
	for _, task := range config.Tasks {
		r.PoolMin += task.MinCount
		r.PoolMax += task.MaxCount
	}

	var rolls, bounces, tasks int
	for seed := int64(1); seed <= int64(games); seed++ {
		game, err := engine.NewEngine(config, engine.WithSeed(seed))
		if err != nil {
			return Report{}, err
		}

		turns := 0
		for !game.IsGameOver() && turns < maxTurns {
			_, outcome, err := game.TakeTurn()
			if err != nil {
				return Report{}, fmt.Errorf("seed %d turn %d: %w", seed, turns+1, err)
			}
			turns++
			if outcome.Bounced {
				bounces++
			}
			if game.Status() == engine.StatusTaskPending {
				game.CompleteTask()
			}
		}

		if !game.IsGameOver() {
			r.Unfinished++
		}
		if r.Games == 0 || turns < r.MinRolls {
			r.MinRolls = turns
		}
		if turns > r.MaxRolls {
			r.MaxRolls = turns
		}
		r.Games++
		rolls += turns
		tasks += game.GetState().TasksCompleted
		for name, total := range game.TaskStats() {
			r.MeanTotals[name] += float64(total)
		}
	}

	if r.Games > 0 {
		n := float64(r.Games)
		r.MeanRolls = float64(rolls) / n
		r.MeanBounces = float64(bounces) / n
		r.MeanTasks = float64(tasks) / n
		for name := range r.MeanTotals {
			r.MeanTotals[name] /= n
		}
	}
	return r, nil
}

func printReport(out io.Writer, r Report) {
	fmt.Fprintf(out, "Name: %s\n", r.Name)
	fmt.Fprintf(out, "Track: %d cells (%d task cells)\n", r.PathLength, r.TaskCells)
	fmt.Fprintf(out, "Task pool: %d-%d entries, %s\n", r.PoolMin, r.PoolMax, r.PoolFit())

	if r.Games == 0 {
		return
	}
	fmt.Fprintf(out, "Simulated %d games:\n", r.Games)
	fmt.Fprintf(out, "  Rolls to finish: mean %.1f, min %d, max %d\n", r.MeanRolls, r.MinRolls, r.MaxRolls)
	fmt.Fprintf(out, "  Bounces per game: %.1f\n", r.MeanBounces)
	fmt.Fprintf(out, "  Tasks completed per game: %.1f\n", r.MeanTasks)

	names := make([]string, 0, len(r.MeanTotals))
	for name := range r.MeanTotals {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "  %s per game: %.1f\n", name, r.MeanTotals[name])
	}

	if r.Unfinished > 0 {
		fmt.Fprintf(out, "⚠️  WARNING: %d games did not finish within %d turns\n", r.Unfinished, maxTurns)
	} else {
		fmt.Fprintf(out, "✅ Every simulated game reached the finish\n")
	}
}
