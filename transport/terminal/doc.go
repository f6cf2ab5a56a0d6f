// Package terminal renders a path board game for a terminal and runs the
// line based loop behind the play command.
//
// Board draws the track on its serpentine grid with lipgloss: even rows read
// left to right, odd rows right to left. It never mutates the state it draws.
package terminal
