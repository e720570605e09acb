package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"clue-detective/internal/agent"
	"clue-detective/internal/board"
	"clue-detective/internal/config"
	"clue-detective/internal/deck"
	"clue-detective/internal/game"
	"clue-detective/internal/player"

	"github.com/peterh/liner"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/rand"
)

// errQuit unwinds the command loop when the player leaves or input ends.
var errQuit = errors.New("quit")

// LineReader is the part of liner.State the shell needs.
type LineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

// CLI manages all command-line interactions.
type CLI struct {
	log  *logrus.Logger
	line LineReader
	out  io.Writer
}

// NewCLI creates a terminal shell backed by liner.
func NewCLI(log *logrus.Logger) *CLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	return New(log, line, os.Stdout)
}

// New creates a shell over any line source, e.g. a script in tests.
func New(log *logrus.Logger, line LineReader, out io.Writer) *CLI {
	return &CLI{log: log, line: line, out: out}
}

// Close restores the terminal.
func (c *CLI) Close() error {
	if closer, ok := c.line.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// PlayOptions configures a hot-seat session.
type PlayOptions struct {
	Seed uint64
	// Humans is how many seats, counted from the first, are played at the keyboard. The rest
	// are agents.
	Humans int
	Deal   *deck.Deal
	Roller game.Roller
}

func (c *CLI) build(cfg *config.GameConfig, seed uint64, deal *deck.Deal, roller game.Roller) (*game.Game, error) {
	builder := game.NewBuilder(cfg, c.log).WithSeed(seed)
	if deal != nil {
		builder.WithDeal(deal)
	}
	if roller != nil {
		builder.WithRoller(roller)
	}
	builder.EventManager().Subscribe(NewEventRenderer(c.out))
	g, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build game: %w", err)
	}
	return g, nil
}

func (c *CLI) newAgent(g *game.Game, seed uint64, seat int, name string) (*agent.Agent, error) {
	r := rand.New(rand.NewSource(seed*10 + uint64(seat)))
	return agent.New(g, name, c.log, r, player.NewRandomChooser(r))
}

// Simulate plays a session with an agent in every seat.
func (c *CLI) Simulate(ctx context.Context, cfg *config.GameConfig, seed uint64) (game.Status, error) {
	C.Header.Fprintln(c.out, "--- Running Fast Simulation ---")
	g, err := c.build(cfg, seed, nil, nil)
	if err != nil {
		return game.StatusInProgress, err
	}
	var agents []*agent.Agent
	for i, name := range g.Seats() {
		a, err := c.newAgent(g, seed, i, name)
		if err != nil {
			return game.StatusInProgress, err
		}
		agents = append(agents, a)
	}
	status, err := agent.NewTable(g, agents, c.log).Run(ctx)
	c.renderSummary(g)
	return status, err
}

// keyboardResponder asks a human disprover which card to show.
type keyboardResponder struct {
	c    *CLI
	name string
	err  error
}

func (k *keyboardResponder) ChooseCardToShow(suggester string, options []string) string {
	if len(options) == 1 {
		C.Info.Fprintf(k.c.out, "%s can only show %s.\n", ColorizeCard(k.name), ColorizeCard(options[0]))
		return options[0]
	}
	C.Header.Fprintf(k.c.out, "\nPass the keyboard to %s.\n", ColorizeCard(k.name))
	card, err := k.c.promptForSelection(fmt.Sprintf("Which card do you show %s?", suggester), options)
	if err != nil {
		k.err = err
		return options[0]
	}
	return card
}

// Play runs a hot-seat session. Agents play the seats beyond opts.Humans.
func (c *CLI) Play(cfg *config.GameConfig, opts PlayOptions) error {
	if opts.Humans < 1 || opts.Humans > cfg.Players {
		return fmt.Errorf("humans must be between 1 and %d, got %d", cfg.Players, opts.Humans)
	}
	C.Header.Fprintln(c.out, "--- Clue Detective ---")
	g, err := c.build(cfg, opts.Seed, opts.Deal, opts.Roller)
	if err != nil {
		return err
	}

	copilots := make(map[string]*agent.Agent)
	var agents []*agent.Agent
	var keyboards []*keyboardResponder
	for i, name := range g.Seats() {
		a, err := c.newAgent(g, opts.Seed, i, name)
		if err != nil {
			return err
		}
		if i < opts.Humans {
			copilots[name] = a
			keyboards = append(keyboards, &keyboardResponder{c: c, name: name})
			continue
		}
		agents = append(agents, a)
	}
	table := agent.NewTable(g, agents, c.log)
	for _, k := range keyboards {
		table.SetResponder(k.name, k)
	}

	for g.Status() == game.StatusInProgress {
		name := g.Current()
		if table.Seated(name) {
			err = table.PlayTurn()
		} else {
			err = c.humanTurn(g, name, copilots[name], table)
		}
		for _, k := range keyboards {
			if k.err != nil {
				err = k.err
			}
		}
		if errors.Is(err, errQuit) {
			C.Info.Fprintln(c.out, "\nGoodbye!")
			return nil
		}
		if err != nil {
			return err
		}
	}
	c.renderSummary(g)
	return nil
}

func (c *CLI) humanTurn(g *game.Game, name string, copilot *agent.Agent, table *agent.Table) error {
	C.Header.Fprintf(c.out, "\nYour move, %s. Type 'help' for a list of commands.\n", ColorizeCard(name))
	c.handleHandCommand(g, name)
	turn := g.Turn()
	for g.Status() == game.StatusInProgress && g.Turn() == turn {
		input, err := c.line.Prompt(fmt.Sprintf("(%s) ", name))
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				return errQuit
			}
			return fmt.Errorf("error reading line: %w", err)
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		c.line.AppendHistory(input)
		cmd, args, _ := strings.Cut(input, " ")
		if err := c.dispatch(g, name, strings.ToLower(cmd), strings.TrimSpace(args), copilot, table); err != nil {
			if errors.Is(err, errQuit) {
				return err
			}
			C.Warn.Fprintf(c.out, "%v\n", err)
		}
	}
	return nil
}

func (c *CLI) dispatch(g *game.Game, name, cmd, args string, copilot *agent.Agent, table *agent.Table) error {
	switch cmd {
	case "roll", "r":
		_, err := g.RollDice(name)
		return err
	case "moves", "m":
		return c.handleMovesCommand(g, name)
	case "move", "mv":
		return c.handleMoveCommand(g, name, args)
	case "passage", "p":
		return c.handlePassageCommand(g, name)
	case "suggest", "s":
		return c.handleSuggestCommand(g, name, args, table)
	case "accuse", "a":
		return c.handleAccuseCommand(g, name, args)
	case "notes", "n":
		grid, err := g.NotebookSnapshot(name)
		if err != nil {
			return err
		}
		RenderNotes(c.out, g.Config(), grid)
	case "compact", "c":
		notes, err := g.Notebook(name)
		if err != nil {
			return err
		}
		fmt.Fprint(c.out, notes.Compact())
	case "hint", "hi":
		return c.handleHintCommand(g, name, copilot)
	case "hand", "ha":
		c.handleHandCommand(g, name)
	case "board", "b":
		RenderBoard(c.out, g.Board(), g.Config().Suspects, g.Tokens())
	case "log", "l":
		RenderLog(c.out, g.Events(), 20)
	case "metrics", "me":
		RenderMetrics(c.out, g.Report())
		RenderValidations(c.out, g.ValidationLog(10))
	case "end", "e":
		return g.EndTurn(name)
	case "help", "h":
		c.printPlayHelp()
	case "quit", "q":
		return errQuit
	default:
		return fmt.Errorf("unknown command '%s'. Type 'help' for a list of commands", cmd)
	}
	return nil
}

func (c *CLI) handleHandCommand(g *game.Game, name string) {
	p, err := g.Player(name)
	if err != nil {
		return
	}
	C.Info.Fprintf(c.out, "%s's hand: %s\n", ColorizeCard(name), colorizeAll(p.Hand))
	C.Info.Fprintf(c.out, "You are at %s.\n", p.Position)
}

func (c *CLI) handleMovesCommand(g *game.Game, name string) error {
	moves, err := g.LegalMoves(name)
	if err != nil {
		return err
	}
	if len(moves) == 0 {
		C.Warn.Fprintln(c.out, "No moves available. Roll first, or your turn is past moving.")
		return nil
	}
	labels := make([]string, len(moves))
	for i, m := range moves {
		labels[i] = m.String()
	}
	C.Info.Fprintf(c.out, "You can reach: %s\n", strings.Join(labels, "  "))
	return nil
}

func (c *CLI) handleMoveCommand(g *game.Game, name, args string) error {
	if args == "" {
		moves, err := g.LegalMoves(name)
		if err != nil {
			return err
		}
		if len(moves) == 0 {
			return errors.New("nowhere to move right now")
		}
		labels := make([]string, len(moves))
		for i, m := range moves {
			labels[i] = m.String()
		}
		if args, err = c.promptForSelection("Where to?", labels); err != nil {
			return err
		}
	}
	dest, err := g.Board().ParsePosition(args)
	if err != nil {
		return err
	}
	_, err = g.Move(name, dest)
	return err
}

func (c *CLI) handlePassageCommand(g *game.Game, name string) error {
	p, err := g.Player(name)
	if err != nil {
		return err
	}
	target, ok := g.Board().Passage(p.Position.Room)
	if !ok {
		return fmt.Errorf("there is no secret passage out of %s", p.Position)
	}
	_, err = g.Move(name, board.InRoom(target))
	return err
}

func (c *CLI) handleSuggestCommand(g *game.Game, name, args string, table *agent.Table) error {
	cards, err := c.promptForCards(g.Config(), args, config.CategorySuspect, config.CategoryWeapon)
	if err != nil {
		return err
	}
	res, err := g.Suggest(name, cards[0], cards[1], game.SuggestOptions{})
	var warning *game.WarningError
	if errors.As(err, &warning) {
		C.Warn.Fprintln(c.out, "Your notes say this suggestion cannot teach you anything:")
		for _, reason := range warning.Validation.Reasons {
			C.Warn.Fprintf(c.out, "  - %s\n", reason)
		}
		force, err := c.promptForYesNo("Suggest anyway? (y/n): ")
		if err != nil || !force {
			return err
		}
		res, err = g.Suggest(name, cards[0], cards[1], game.SuggestOptions{Force: true})
		if err != nil {
			return err
		}
	} else if err != nil {
		return err
	}
	if res.Disprover == "" {
		return nil
	}
	if err := table.Settle(name, res.Disprover); err != nil {
		return err
	}
	notes, err := g.Notebook(name)
	if err != nil {
		return err
	}
	if h := notes.History(); len(h) > 0 && h[len(h)-1].Shown != "" {
		C.Header.Fprintf(c.out, "\nPass the keyboard back to %s.\n", ColorizeCard(name))
		C.Yes.Fprintf(c.out, "%s shows you: %s\n", ColorizeCard(res.Disprover), ColorizeCard(h[len(h)-1].Shown))
	}
	return nil
}

func (c *CLI) handleAccuseCommand(g *game.Game, name, args string) error {
	cards, err := c.promptForCards(g.Config(), args, config.CategorySuspect, config.CategoryWeapon, config.CategoryRoom)
	if err != nil {
		return err
	}
	sure, err := c.promptForYesNo(fmt.Sprintf("Accuse %s with the %s in the %s? A wrong guess puts you out (y/n): ",
		cards[0], cards[1], cards[2]))
	if err != nil || !sure {
		return err
	}
	res, err := g.Accuse(name, cards[0], cards[1], cards[2])
	if errors.Is(err, game.ErrAccusationBlocked) {
		C.No.Fprintln(c.out, "Your notes already rule this accusation out. It was not made.")
		return nil
	}
	if err != nil {
		return err
	}
	if !res.Correct && res.Status == game.StatusInProgress {
		C.Info.Fprintln(c.out, "You still show cards when asked. Type 'end' to pass the turn.")
	}
	return nil
}

func (c *CLI) handleHintCommand(g *game.Game, name string, copilot *agent.Agent) error {
	if suspect, weapon, room, ok := copilot.ShouldAccuse(); ok {
		C.Yes.Fprintf(c.out, "Your notes solve the case: accuse %s with the %s in the %s.\n",
			ColorizeCard(suspect), weapon, room)
		return nil
	}
	p, err := g.Player(name)
	if err != nil {
		return err
	}
	if !p.Position.IsRoom() {
		C.Info.Fprintln(c.out, "Reach a room first. Use 'moves' to see where you can go.")
		return nil
	}
	suspect, weapon := copilot.PreviewSuggestion(p.Position.Room)
	C.Info.Fprintf(c.out, "Co-pilot suggests: %s with the %s in the %s.\n", ColorizeCard(suspect), weapon, p.Position.Room)
	return nil
}

func (c *CLI) renderSummary(g *game.Game) {
	if winner, ok := g.Winner(); ok {
		if grid, err := g.NotebookSnapshot(winner); err == nil {
			C.Header.Fprintf(c.out, "\n--- Notes for %s ---\n", ColorizeCard(winner))
			RenderNotes(c.out, g.Config(), grid)
		}
	}
	RenderMetrics(c.out, g.Report())
	RenderValidations(c.out, g.ValidationLog(10))
}
