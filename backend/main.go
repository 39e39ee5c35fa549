package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	mode := flag.String("mode", "console", "console (play in the terminal) or serve (exhibition and analysis server)")
	rows := flag.Int("rows", 0, "board rows; asked interactively when 0")
	cols := flag.Int("cols", 0, "board columns; asked interactively when 0")
	k := flag.Int("k", 0, "marks in a row needed to win; asked interactively when 0")
	p1 := flag.String("p1", "", "player one: human or bot")
	p2 := flag.String("p2", "", "player two: human or bot")
	level1 := flag.Int("level1", 0, "bot level for player one (1 random, 2 greedy, 3 search)")
	level2 := flag.Int("level2", 0, "bot level for player two (1 random, 2 greedy, 3 search)")
	name1 := flag.String("name1", "", "player one name")
	name2 := flag.String("name2", "", "player two name")
	seed := flag.Int64("seed", 0, "random seed for bots; 0 uses the clock")
	addr := flag.String("addr", getenv("MNK_ADDR", ":8080"), "listen address in serve mode")
	verbose := flag.Bool("v", false, "log game and search details in console mode")
	flag.Parse()

	cfg := ConfigFromEnv(DefaultConfig())
	if *seed != 0 {
		cfg.AiRandomSeed = *seed
	}
	configStore.Update(cfg)

	switch *mode {
	case "serve":
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := serve(ctx, *addr); err != nil {
			log.Printf("[backend] exiting after server error: %v", err)
			os.Exit(1)
		}
	case "console":
		if !*verbose && !cfg.AiLogSearchStats {
			log.SetOutput(io.Discard)
		}
		opts := consoleOptions{
			Rows:      *rows,
			Cols:      *cols,
			WinLength: *k,
			PlayerOne: *p1,
			PlayerTwo: *p2,
			LevelOne:  *level1,
			LevelTwo:  *level2,
			NameOne:   *name1,
			NameTwo:   *name2,
		}
		if err := runConsole(bufio.NewReader(os.Stdin), os.Stdout, opts); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown mode %q (want console or serve)\n", *mode)
		os.Exit(2)
	}
}

func runConsole(in *bufio.Reader, out io.Writer, opts consoleOptions) error {
	settings, err := consoleSettings(in, out, opts)
	if errors.Is(err, ErrInvalidSettings) {
		fmt.Fprintln(out, "Invalid choice. Exiting the game.")
	}
	if err != nil {
		return err
	}
	game := NewConsoleGame(settings, in, out)
	return game.Play()
}
