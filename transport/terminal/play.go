package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/wricardo/mcp-training/pathboard/game/engine"
)

const helpText = "r roll and move | c complete task | b board | t totals | n new game | q quit"

// Game is the part of the engine the play loop drives
type Game interface {
	TakeTurn() (engine.RollResult, engine.MoveOutcome, error)
	CompleteTask() bool
	Restart() error
	GetState() *engine.GameState
	GetLayout() engine.Layout
}

// PlayOption adjusts how Play draws the board
type PlayOption func(*Board)

// CellWidth makes Play draw cells width columns wide
func CellWidth(width int) PlayOption {
	return func(b *Board) { *b = b.WithCellWidth(width) }
}

// Play runs a line based game loop, reading one command per line from in
// until quit, end of input or ctx is cancelled.
func Play(ctx context.Context, in io.Reader, out io.Writer, game Game, opts ...PlayOption) error {
	board := NewBoard(game.GetLayout())
	for _, opt := range opts {
		opt(&board)
	}
	scanner := bufio.NewScanner(in)

	printBoard(out, board, game.GetState())
	fmt.Fprintln(out, SubtleStyle.Render(helpText))

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
		case "":
			continue

		case "r", "roll":
			roll, outcome, err := game.TakeTurn()
			if err != nil {
				fmt.Fprintln(out, ErrorStyle.Render(rejection(game.GetState(), err)))
				continue
			}
			fmt.Fprintln(out, describeTurn(roll, outcome))
			printBoard(out, board, game.GetState())
			if outcome.Finished {
				fmt.Fprintln(out, Totals(game.GetState().CompletionTotals))
				fmt.Fprintln(out, SubtleStyle.Render("n for a new game, q to quit"))
			}

		case "c", "complete":
			state := game.GetState()
			if len(state.Cells) == 0 || !game.CompleteTask() {
				fmt.Fprintln(out, ErrorStyle.Render("Nothing to complete here"))
				continue
			}
			cell := state.Cells[state.Position]
			fmt.Fprintln(out, SuccessStyle.Render(fmt.Sprintf("✓ %d %s done", cell.Count, cell.TaskName)))

		case "b", "board":
			printBoard(out, board, game.GetState())

		case "t", "totals":
			fmt.Fprintln(out, Totals(game.GetState().CompletionTotals))

		case "n", "new":
			if err := game.Restart(); err != nil {
				fmt.Fprintln(out, ErrorStyle.Render(err.Error()))
				continue
			}
			fmt.Fprintln(out, TitleStyle.Render("New game"))
			printBoard(out, board, game.GetState())

		case "h", "help", "?":
			fmt.Fprintln(out, SubtleStyle.Render(helpText))

		case "q", "quit", "exit":
			return nil

		default:
			fmt.Fprintln(out, ErrorStyle.Render("Unknown command. "+helpText))
		}
	}
}

func printBoard(out io.Writer, board Board, state *engine.GameState) {
	fmt.Fprintln(out, board.Render(state))
	fmt.Fprintln(out, Status(state))
}

func describeTurn(roll engine.RollResult, outcome engine.MoveOutcome) string {
	text := fmt.Sprintf("🎲 Rolled a %d: %d → %d", roll.Value, outcome.From, outcome.To)
	if outcome.Bounced {
		text += fmt.Sprintf(" (bounced back %d)", outcome.BackwardSteps)
	}
	return text
}

func rejection(state *engine.GameState, err error) string {
	if !errors.Is(err, engine.ErrIllegalState) {
		return err.Error()
	}
	switch state.Status() {
	case engine.StatusTaskPending:
		return "Complete the task first (c)"
	case engine.StatusWon:
		return "The game is over, n starts a new one"
	}
	return err.Error()
}
