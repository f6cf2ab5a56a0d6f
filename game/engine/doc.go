// Package engine provides the core game logic for the path board game.
//
// The engine package implements the game mechanics including:
//   - Serpentine board layout and track length
//   - Task allocation across track cells with stratified sampling
//   - Dice rolling and the bounce-back rule at the end of the track
//   - The turn state machine: roll, move, complete task, win
//   - Configuration validation and defaults
//
// Core Types:
//
// The Engine interface defines the main contract for game operations,
// implemented by GameEngine. GameState is the serializable game state,
// while GameConfig names a task list and the board it is played on.
//
// Usage:
//
//	gameEngine, err := engine.NewEngine(engine.DefaultGameConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	roll, err := gameEngine.RollDice()
//	if err != nil {
//		log.Fatal(err)
//	}
//	outcome, err := gameEngine.Move(roll.Value)
//	if err != nil {
//		log.Fatal(err)
//	}
//	if !outcome.Finished {
//		gameEngine.CompleteTask()
//	}
//
// Game Rules:
//
// The player starts on cell 0 and rolls a six-sided die. Landing on a task
// cell disables rolling until the task is reported complete; the cell's
// quantity is then added to the running total for that task. A roll that
// passes the final cell reflects the excess back from it. Reaching the final
// cell exactly wins the game.
//
// Randomness:
//
// Allocation and dice draw from a Random source. Production engines use the
// platform source; WithSeed substitutes a linear-congruential generator so
// whole games can be replayed.
package engine
