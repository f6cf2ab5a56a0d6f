package engine

// CountTaskCells counts the cells carrying a task
func CountTaskCells(cells []Cell) int {
	count := 0
	for _, cell := range cells {
		if !cell.IsBoundary() {
			count++
		}
	}
	return count
}

// TaskDistribution counts how many cells each task occupies
func TaskDistribution(cells []Cell) map[string]int {
	dist := make(map[string]int)
	for _, cell := range cells {
		if cell.IsBoundary() {
			continue
		}
		dist[cell.TaskName]++
	}
	return dist
}

// TotalQuantity sums the quantities of all cells for each task
func TotalQuantity(cells []Cell) map[string]int {
	totals := make(map[string]int)
	for _, cell := range cells {
		if cell.IsBoundary() {
			continue
		}
		totals[cell.TaskName] += cell.Count
	}
	return totals
}

// RemainingDistance returns the number of steps from the player to the terminal cell
func RemainingDistance(state *GameState) int {
	if len(state.Cells) == 0 {
		return 0
	}
	return len(state.Cells) - 1 - state.Position
}

// FinishingRolls returns the die values that would land exactly on the terminal cell
func FinishingRolls(state *GameState) []int {
	remaining := RemainingDistance(state)
	if remaining < 1 || remaining > DiceSides {
		return nil
	}
	return []int{remaining}
}
