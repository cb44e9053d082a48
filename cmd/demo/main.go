// Command demo wires a Computer to an in-memory LiveGame and prints its
// score and board to stdout every time a piece lands, until the game
// ends or a fixed number of pieces have dropped. It is a minimal example
// of embedding this module, not a game client: no rendering, input
// handling, or network protocol belongs here.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/stackedcrooked/tetris-ai/actuator"
	"github.com/stackedcrooked/tetris-ai/config"
	"github.com/stackedcrooked/tetris-ai/game"
	"github.com/stackedcrooked/tetris-ai/logging"
	"github.com/stackedcrooked/tetris-ai/queue"
)

func main() {
	verbose := flag.Bool("verbose", false, "enable debug-level logging")
	maxPieces := flag.Int("pieces", 200, "stop after this many pieces land")
	flag.Parse()

	level := logging.LevelInfo
	if *verbose {
		level = logging.LevelDebug
	}
	logging.Configure(level, os.Stderr, true)

	cfg, err := config.New(nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		os.Exit(1)
	}

	evaluator, err := cfg.Evaluator()
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		os.Exit(1)
	}

	live := game.NewLiveGame(cfg.GridWidth, cfg.GridHeight)
	computer := actuator.NewComputer(live, *cfg, evaluator, queue.NewBagGenerator())
	if err := computer.Start(); err != nil {
		fmt.Fprintln(os.Stderr, "failed to start:", err)
		os.Exit(1)
	}
	defer computer.Stop()

	printer := message.NewPrinter(language.English)
	lastGrid := live.Grid()
	landed := 0
	for landed < *maxPieces && !live.GameOver() {
		time.Sleep(50 * time.Millisecond)
		grid := live.Grid()
		if !grid.Equal(lastGrid) {
			landed++
			printer.Printf("piece %d landed, score %d\n", landed, live.Score())
			fmt.Print(grid.String())
			lastGrid = grid
		}
	}

	printer.Printf("final score: %d (game over: %v)\n", live.Score(), live.GameOver())
}
