package terminal

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/wricardo/mcp-training/pathboard/game/engine"
)

// DefaultCellWidth fits a count and a short task name
const DefaultCellWidth = 12

// Board draws a game state on its serpentine layout. It only reads the state.
type Board struct {
	layout    engine.Layout
	cellWidth int
}

// NewBoard creates a board renderer for layout
func NewBoard(layout engine.Layout) Board {
	return Board{layout: layout, cellWidth: DefaultCellWidth}
}

// WithCellWidth returns a copy of the board using width columns per cell
func (b Board) WithCellWidth(width int) Board {
	if width >= 4 {
		b.cellWidth = width
	}
	return b
}

// Render returns the grid, one text row per board row. The player's cell is
// marked with @ and completed cells with a check mark.
func (b Board) Render(state *engine.GameState) string {
	if state == nil || len(state.Cells) == 0 {
		return SubtleStyle.Render("No game in progress")
	}
	if len(state.Cells) != b.layout.CellCount() {
		return ErrorStyle.Render(fmt.Sprintf("state has %d cells, board has %d", len(state.Cells), b.layout.CellCount()))
	}

	grid := make([][]string, b.layout.Rows)
	for row := range grid {
		grid[row] = make([]string, b.layout.Cols)
	}
	for i := range state.Cells {
		row, col := b.layout.GridPosition(i)
		grid[row][col] = b.renderCell(state, i)
	}

	rows := make([]string, 0, len(grid))
	for _, cells := range grid {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (b Board) renderCell(state *engine.GameState, index int) string {
	last := len(state.Cells) - 1
	cell := state.Cells[index]

	var label string
	style := cellStyle
	switch {
	case index == 0:
		label = "START"
		style = boundaryCellStyle
	case index == last:
		label = "FINISH"
		style = boundaryCellStyle
	default:
		label = fmt.Sprintf("%d %s", cell.Count, cell.TaskName)
		if cell.Completed {
			label = "✓" + label
			style = completedCellStyle
		}
	}

	if index == state.Position {
		label = "@" + label
		style = playerCellStyle
		if state.Status() == engine.StatusTaskPending {
			style = pendingCellStyle.Reverse(true)
		}
	}

	return style.Width(b.cellWidth).Render(truncate(label, b.cellWidth-1))
}

// Status returns a one line summary of the game
func Status(state *engine.GameState) string {
	if state == nil || len(state.Cells) == 0 {
		return SubtleStyle.Render("Status: idle")
	}

	line := fmt.Sprintf("Position %d/%d | Rolls %d | Tasks %d | %s",
		state.Position, len(state.Cells)-1, state.TotalRolls, state.TasksCompleted, state.Status())

	switch state.Status() {
	case engine.StatusTaskPending:
		cell := state.Cells[state.Position]
		return line + "\n" + pendingCellStyle.Render(fmt.Sprintf("Task due: %d %s", cell.Count, cell.TaskName))
	case engine.StatusWon:
		return line + "\n" + SuccessStyle.Bold(true).Render("🎉 VICTORY!")
	}
	if rolls := engine.FinishingRolls(state); len(rolls) > 0 {
		return line + "\n" + SubtleStyle.Render(fmt.Sprintf("Roll a %d to finish", rolls[0]))
	}
	return line
}

// Totals renders the completed quantity per task in a box
func Totals(totals map[string]int) string {
	if len(totals) == 0 {
		return BoxStyle.Render(SubtleStyle.Render("No tasks completed yet"))
	}

	names := make([]string, 0, len(totals))
	for name := range totals {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := []string{TitleStyle.Render("Totals")}
	for _, name := range names {
		lines = append(lines, fmt.Sprintf("%s: %d", name, totals[name]))
	}
	return BoxStyle.Render(strings.Join(lines, "\n"))
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width])
}
