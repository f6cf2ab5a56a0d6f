package engine

// Default board geometry
const (
	DefaultRows     = 6
	DefaultCols     = 10
	DefaultCellSize = 60
	DefaultSpacing  = 15
)

// Point is a pixel coordinate of a cell's top-left corner
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Layout describes the serpentine board the track is drawn on
type Layout struct {
	Rows     int `json:"rows"`
	Cols     int `json:"cols"`
	CellSize int `json:"cell_size"`
	Spacing  int `json:"spacing"`
}

// DefaultLayout returns the 6x10 board
func DefaultLayout() Layout {
	return Layout{
		Rows:     DefaultRows,
		Cols:     DefaultCols,
		CellSize: DefaultCellSize,
		Spacing:  DefaultSpacing,
	}
}

// NewLayout returns a layout with the given grid and default cell geometry
func NewLayout(rows, cols int) Layout {
	l := DefaultLayout()
	l.Rows = rows
	l.Cols = cols
	return l
}

// CellCount returns the number of cells on a rows x cols track
func CellCount(rows, cols int) int {
	return rows * cols
}

// CellCount returns the path length of the layout
func (l Layout) CellCount() int {
	return CellCount(l.Rows, l.Cols)
}

// Coordinates returns the position of every cell in track order.
// Even rows run left to right, odd rows right to left.
func (l Layout) Coordinates() []Point {
	points := make([]Point, 0, l.CellCount())
	pitch := l.CellSize + l.Spacing

	for row := 0; row < l.Rows; row++ {
		for col := 0; col < l.Cols; col++ {
			actualCol := col
			if row%2 == 1 {
				actualCol = l.Cols - 1 - col
			}
			points = append(points, Point{X: actualCol * pitch, Y: row * pitch})
		}
	}

	return points
}

// Connections returns the consecutive index pairs linking the track
func (l Layout) Connections() [][2]int {
	n := l.CellCount()
	if n < 2 {
		return [][2]int{}
	}
	connections := make([][2]int, 0, n-1)
	for i := 0; i < n-1; i++ {
		connections = append(connections, [2]int{i, i + 1})
	}
	return connections
}

// GridPosition returns the row and column of a track index on the board
func (l Layout) GridPosition(index int) (row, col int) {
	if l.Cols <= 0 {
		return 0, 0
	}
	row = index / l.Cols
	col = index % l.Cols
	if row%2 == 1 {
		col = l.Cols - 1 - col
	}
	return row, col
}
