package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const levelMenu = "1. Random Bot \n2. Level 2 Bot \n3. Level 3 Bot\n"

// consoleOptions carries what was already decided on the command line. Zero
// values are asked for interactively.
type consoleOptions struct {
	Rows      int
	Cols      int
	WinLength int
	PlayerOne string
	PlayerTwo string
	LevelOne  int
	LevelTwo  int
	NameOne   string
	NameTwo   string
}

// consoleSettings builds the match settings, prompting on in/out for
// anything opts leaves open.
func consoleSettings(in *bufio.Reader, out io.Writer, opts consoleOptions) (GameSettings, error) {
	settings := DefaultGameSettings()
	var err error
	if opts.Rows == 0 || opts.Cols == 0 || opts.WinLength == 0 {
		fmt.Fprintln(out, "Welcome to the M,N,K game! To start, please enter the following:")
	}
	if settings.Rows, err = optionOrPrompt(in, out, opts.Rows, "Number of rows: "); err != nil {
		return GameSettings{}, err
	}
	if settings.Cols, err = optionOrPrompt(in, out, opts.Cols, "Number of columns: "); err != nil {
		return GameSettings{}, err
	}
	if settings.WinLength, err = optionOrPrompt(in, out, opts.WinLength, "Winning condition (k): "); err != nil {
		return GameSettings{}, err
	}

	oneType, twoType, err := seatTypes(in, out, opts)
	if err != nil {
		return GameSettings{}, err
	}
	settings.PlayerOneType = oneType
	settings.PlayerTwoType = twoType
	botsOnly := oneType == PlayerAI && twoType == PlayerAI

	settings.PlayerOneName, settings.PlayerOneLevel, err = seatDetails(in, out, PlayerOne, oneType, opts.NameOne, opts.LevelOne, botsOnly)
	if err != nil {
		return GameSettings{}, err
	}
	settings.PlayerTwoName, settings.PlayerTwoLevel, err = seatDetails(in, out, PlayerTwo, twoType, opts.NameTwo, opts.LevelTwo, botsOnly)
	if err != nil {
		return GameSettings{}, err
	}
	if err := settings.Validate(); err != nil {
		return GameSettings{}, err
	}
	return settings, nil
}

func seatTypes(in *bufio.Reader, out io.Writer, opts consoleOptions) (PlayerType, PlayerType, error) {
	if opts.PlayerOne != "" && opts.PlayerTwo != "" {
		one, err := parsePlayerType(opts.PlayerOne)
		if err != nil {
			return 0, 0, err
		}
		two, err := parsePlayerType(opts.PlayerTwo)
		if err != nil {
			return 0, 0, err
		}
		return one, two, nil
	}
	fmt.Fprintln(out, "Select Game Mode: \n1. Player vs Player \n2. Player vs Bot \n3. Bot vs Bot")
	mode, err := promptLine(in, out, "Enter mode (1/2/3): ")
	if err != nil {
		return 0, 0, err
	}
	switch mode {
	case "1":
		return PlayerHuman, PlayerHuman, nil
	case "2":
		return PlayerHuman, PlayerAI, nil
	case "3":
		return PlayerAI, PlayerAI, nil
	default:
		return 0, 0, fmt.Errorf("%w: game mode %q", ErrInvalidSettings, mode)
	}
}

func seatDetails(in *bufio.Reader, out io.Writer, color PlayerColor, kind PlayerType, name string, level int, botsOnly bool) (string, BotLevel, error) {
	seat := playerToInt(color)
	if kind == PlayerHuman {
		if name != "" {
			return name, LevelSearch, nil
		}
		entered, err := promptLine(in, out, fmt.Sprintf("Player %d, enter your name: ", seat))
		if err != nil {
			return "", 0, err
		}
		if entered == "" {
			entered = fmt.Sprintf("Player %d", seat)
		}
		return entered, LevelSearch, nil
	}
	if level == 0 {
		prompt := "Select bot level: \n" + levelMenu
		if botsOnly && color == PlayerOne {
			prompt = "Select first bot level: \n" + levelMenu
		} else if botsOnly {
			prompt = "Select second bot level: \n" + levelMenu
		}
		var err error
		if level, err = promptInt(in, out, prompt); err != nil {
			return "", 0, err
		}
	}
	botLevel := BotLevel(level)
	if !botLevel.IsValid() {
		return "", 0, fmt.Errorf("%w: bot level %d", ErrInvalidSettings, level)
	}
	if name == "" {
		name = botName(botLevel)
	}
	return name, botLevel, nil
}

func parsePlayerType(value string) (PlayerType, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "human", "h":
		return PlayerHuman, nil
	case "bot", "ai", "b":
		return PlayerAI, nil
	default:
		return 0, fmt.Errorf("%w: player kind %q (want human or bot)", ErrInvalidSettings, value)
	}
}

func optionOrPrompt(in *bufio.Reader, out io.Writer, value int, prompt string) (int, error) {
	if value != 0 {
		return value, nil
	}
	return promptInt(in, out, prompt)
}

// promptInt asks until it reads an integer.
func promptInt(in *bufio.Reader, out io.Writer, prompt string) (int, error) {
	for {
		fmt.Fprint(out, prompt)
		line, err := in.ReadString('\n')
		text := strings.TrimSpace(line)
		if text == "" && err != nil {
			return 0, fmt.Errorf("read input: %w", err)
		}
		value, convErr := strconv.Atoi(text)
		if convErr == nil {
			return value, nil
		}
		fmt.Fprintln(out, "Invalid input! Please enter a valid number.")
		if err != nil {
			return 0, fmt.Errorf("read input: %w", err)
		}
	}
}

func promptLine(in *bufio.Reader, out io.Writer, prompt string) (string, error) {
	fmt.Fprint(out, prompt)
	line, err := in.ReadString('\n')
	text := strings.TrimSpace(line)
	if err != nil && text == "" {
		return "", fmt.Errorf("read input: %w", err)
	}
	return text, nil
}
