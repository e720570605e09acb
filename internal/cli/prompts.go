package cli

import (
	"fmt"
	"strconv"
	"strings"

	"clue-detective/internal/config"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
)

// C holds pre-configured color objects for printing to the console.
var C = struct {
	Yes, No, Maybe, Info, Warn, Header, Prompt, Debug *color.Color
}{
	Yes:    color.New(color.FgGreen),
	No:     color.New(color.FgRed),
	Maybe:  color.New(color.FgYellow),
	Info:   color.New(color.FgCyan),
	Warn:   color.New(color.FgHiYellow),
	Header: color.New(color.FgWhite, color.Bold),
	Prompt: color.New(color.FgHiWhite),
	Debug:  color.New(color.FgMagenta),
}

// SuspectColors maps suspect names to specific colors for display.
var SuspectColors = map[string]*color.Color{
	"Miss Scarlet":    color.New(color.FgRed),
	"Colonel Mustard": color.New(color.FgYellow),
	"Mrs. White":      color.New(color.FgWhite),
	"Mr. Green":       color.New(color.FgGreen),
	"Mrs. Peacock":    color.New(color.FgBlue),
	"Professor Plum":  color.New(color.FgMagenta),
}

// ColorizeCard returns a card name as a colored string if it's a suspect.
func ColorizeCard(name string) string {
	if c, ok := SuspectColors[name]; ok {
		return c.Sprint(name)
	}
	return name
}

func colorizeAll(cards []string) string {
	parts := make([]string, len(cards))
	for i, card := range cards {
		parts[i] = ColorizeCard(card)
	}
	return strings.Join(parts, ", ")
}

func (c *CLI) printPlayHelp() {
	C.Header.Fprintln(c.out, "\n--- Commands ---")
	t := table.NewWriter()
	t.SetOutputMirror(c.out)
	t.AppendHeader(table.Row{"Command", "Alias", "Description"})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"roll", "r", "Throw the dice."},
		{"moves", "m", "List the squares and rooms you can reach."},
		{"move <room|row,col>", "mv", "Move your token."},
		{"passage", "p", "Take the secret passage out of your room."},
		{"suggest [suspect, weapon]", "s", "Suggest in the room you stand in."},
		{"accuse [suspect, weapon, room]", "a", "Make your one accusation."},
		{"notes", "n", "Display your detective notes grid."},
		{"compact", "c", "Print your notes in compact form."},
		{"hint", "hi", "Ask the co-pilot for a strategic suggestion."},
		{"hand", "ha", "Display the cards in your hand."},
		{"board", "b", "Show the board and every token."},
		{"log", "l", "Replay the recent public log."},
		{"metrics", "me", "Show suggestion quality and notebook warnings."},
		{"end", "e", "End your turn."},
		{"help", "h", "Show this help message."},
		{"quit", "q", "Leave the game."},
	})
	t.SetStyle(table.StyleLight)
	t.Render()
}

func (c *CLI) promptForString(prompt string) (string, error) {
	for {
		C.Prompt.Fprint(c.out, prompt)
		input, err := c.line.Prompt("")
		if err != nil {
			return "", errQuit
		}
		trimmed := strings.TrimSpace(input)
		if trimmed != "" {
			c.line.AppendHistory(trimmed)
			return trimmed, nil
		}
	}
}

func (c *CLI) promptForYesNo(prompt string) (bool, error) {
	for {
		input, err := c.promptForString(prompt)
		if err != nil {
			return false, err
		}
		switch strings.ToLower(input) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		C.Warn.Fprintln(c.out, "Please answer y or n.")
	}
}

func (c *CLI) promptForSelection(prompt string, options []string) (string, error) {
	for {
		C.Header.Fprintln(c.out, "\n"+prompt)
		for i, opt := range options {
			fmt.Fprintf(c.out, " %2d: %s\n", i+1, ColorizeCard(opt))
		}
		input, err := c.promptForString("Enter number or name: ")
		if err != nil {
			return "", err
		}
		if num, err := strconv.Atoi(input); err == nil && num >= 1 && num <= len(options) {
			return options[num-1], nil
		}
		for _, opt := range options {
			if strings.EqualFold(opt, input) {
				return opt, nil
			}
		}
		C.Warn.Fprintln(c.out, "Invalid selection.")
	}
}

// promptForCards reads one card per category, either from a comma separated argument list
// or interactively.
func (c *CLI) promptForCards(cfg *config.GameConfig, args string, cats ...config.CardCategory) ([]string, error) {
	if args != "" {
		parts := strings.Split(args, ",")
		if len(parts) != len(cats) {
			return nil, fmt.Errorf("expected %d comma separated cards, got %d", len(cats), len(parts))
		}
		cards := make([]string, len(cats))
		for i, cat := range cats {
			card, err := matchCard(cfg, parts[i], cat)
			if err != nil {
				return nil, err
			}
			cards[i] = card
		}
		return cards, nil
	}
	cards := make([]string, 0, len(cats))
	for _, cat := range cats {
		card, err := c.promptForSelection(fmt.Sprintf("Which of the %s?", cat), cfg.CardListForCategory(cat))
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	return cards, nil
}

func matchCard(cfg *config.GameConfig, input string, cat config.CardCategory) (string, error) {
	input = strings.TrimSpace(input)
	for _, card := range cfg.CardListForCategory(cat) {
		if strings.EqualFold(card, input) {
			return card, nil
		}
	}
	return "", fmt.Errorf("'%s' is not one of the %s", input, cat)
}
