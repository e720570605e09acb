package cli

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"clue-detective/internal/board"
	"clue-detective/internal/config"
	"clue-detective/internal/events"
	"clue-detective/internal/game"
	"clue-detective/internal/notebook"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// EventRenderer implements the events.Listener interface to print the public log as it
// happens. It never sees private events.
type EventRenderer struct {
	out io.Writer
}

func NewEventRenderer(out io.Writer) *EventRenderer {
	return &EventRenderer{out: out}
}

// HandleEvent is the central dispatcher for rendering events.
func (r *EventRenderer) HandleEvent(e events.Event) {
	switch ev := e.(type) {
	case events.TurnStarted:
		C.Header.Fprintf(r.out, "\n--- Turn %d: %s ---\n", ev.Turn, ColorizeCard(ev.Player))
	case events.DiceRolled:
		C.Info.Fprintf(r.out, "%s rolls %d + %d = %d", ColorizeCard(ev.Player), ev.Dice[0], ev.Dice[1], ev.Total)
		if ev.BonusClue {
			C.Maybe.Fprint(r.out, " (bonus clue)")
		}
		fmt.Fprintln(r.out)
	case events.MoveMade:
		how := "moves"
		if ev.Passage {
			how = "takes the secret passage"
		}
		C.Info.Fprintf(r.out, "%s %s from %s to %s.\n", ColorizeCard(ev.Player), how, ev.From, ev.To)
	case events.TokenRelocated:
		C.Info.Fprintf(r.out, "%s is summoned from %s to the %s.\n", ColorizeCard(ev.Suspect), ev.From, ev.To)
	case events.SuggestionMade:
		C.Info.Fprintf(r.out, "%s suggests: %s with the %s in the %s", ColorizeCard(ev.Suggester),
			ColorizeCard(ev.Suspect), ev.Weapon, ev.Room)
		if ev.Forced {
			C.Warn.Fprint(r.out, " (against their notes)")
		}
		fmt.Fprintln(r.out)
	case events.Passed:
		C.Debug.Fprintf(r.out, "-> %s cannot disprove.\n", ColorizeCard(ev.Player))
	case events.DisproveResult:
		C.Info.Fprintf(r.out, "-> %s shows a card to %s.\n", ColorizeCard(ev.Disprover), ColorizeCard(ev.Suggester))
	case events.NoDisproof:
		C.Maybe.Fprintln(r.out, "-> No player could show a card.")
	case events.AccusationResult:
		C.Info.Fprintf(r.out, "%s ACCUSES: %s with the %s in the %s\n", ColorizeCard(ev.Accuser),
			ColorizeCard(ev.Suspect), ev.Weapon, ev.Room)
		if ev.Correct {
			C.Yes.Fprintln(r.out, "The accusation is CORRECT!")
		} else {
			C.No.Fprintf(r.out, "The accusation is INCORRECT! %s is out of the game.\n", ev.Accuser)
		}
	case events.GameOver:
		r.renderGameResult(ev)
	}
}

func (r *EventRenderer) renderGameResult(ev events.GameOver) {
	C.Header.Fprintln(r.out, "\n--- GAME OVER ---")
	switch ev.Status {
	case game.StatusWon.String():
		C.Yes.Fprintf(r.out, "%s wins!\n", ColorizeCard(ev.Winner))
	case game.StatusAllEliminated.String():
		C.Warn.Fprintln(r.out, "Every detective accused wrongly.")
	case game.StatusStalled.String():
		C.Warn.Fprintln(r.out, "The turn limit was reached without a correct accusation.")
	}
	if ev.Solution != nil {
		C.Info.Fprintf(r.out, "The correct solution was: %s with the %s in the %s\n",
			ColorizeCard(ev.Solution.Suspect), ev.Solution.Weapon, ev.Solution.Room)
	}
}

// RenderLog replays the last n public log records, or all of them when n <= 0.
func RenderLog(w io.Writer, log []events.Record, n int) {
	if n > 0 && len(log) > n {
		log = log[len(log)-n:]
	}
	r := NewEventRenderer(w)
	for _, rec := range log {
		r.HandleEvent(rec.Event)
	}
}

// RenderNotes displays a notebook grid in a formatted table.
func RenderNotes(w io.Writer, cfg *config.GameConfig, grid notebook.Grid) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(fmt.Sprintf("%s's Detective Notes", grid.Owner))
	header := table.Row{"ID", "Card", "Type"}
	for _, h := range grid.Holders {
		header = append(header, ColorizeCard(h))
	}
	t.AppendHeader(header)

	for cardID, card := range grid.Cards {
		if cardID > 0 && cfg.CardToType[card] != cfg.CardToType[grid.Cards[cardID-1]] {
			t.AppendSeparator()
		}
		row := table.Row{cardID + 1, ColorizeCard(card), cfg.CardToType[card].String()}
		for _, h := range grid.Holders {
			row = append(row, statusToSymbol(grid.Cells[card][h]))
		}
		t.AppendRow(row)
	}
	t.SetStyle(table.StyleRounded)
	t.Style().Options.SeparateRows = false
	t.Style().Title.Align = text.AlignCenter
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 1, Align: text.AlignRight}})
	t.Render()
}

func statusToSymbol(status notebook.CardStatus) string {
	switch status {
	case notebook.StatusHas:
		return C.Yes.Sprint("✔")
	case notebook.StatusNotHas:
		return C.No.Sprint("✖")
	default:
		return C.Maybe.Sprint("?")
	}
}

// RenderBoard draws the corridor grid with corridor tokens as the suspect's number, then
// lists where every token stands.
func RenderBoard(w io.Writer, b *board.Board, suspects []string, tokens map[string]board.Position) {
	number := make(map[board.Position]rune)
	for i, s := range suspects {
		if pos, ok := tokens[s]; ok && !pos.IsRoom() {
			number[pos] = rune('1' + i)
		}
	}
	for row, line := range b.Layout() {
		var sb strings.Builder
		for col, ch := range line {
			if n, ok := number[board.Corridor(row, col)]; ok {
				sb.WriteString(C.Warn.Sprint(string(n)))
				continue
			}
			switch {
			case ch == '#':
				sb.WriteRune(' ')
			case ch == '.' || unicode.IsDigit(ch):
				sb.WriteRune('·')
			case unicode.IsLower(ch):
				sb.WriteString(C.Info.Sprint("+"))
			default:
				sb.WriteRune(ch)
			}
		}
		fmt.Fprintln(w, sb.String())
	}

	var legend []string
	for _, name := range b.Rooms() {
		if room, ok := b.Room(name); ok {
			legend = append(legend, fmt.Sprintf("%c %s", room.Letter, name))
		}
	}
	fmt.Fprintln(w, strings.Join(legend, "  "))

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"#", "Suspect", "Position"})
	for i, s := range suspects {
		t.AppendRow(table.Row{i + 1, ColorizeCard(s), tokens[s].String()})
	}
	t.SetStyle(table.StyleLight)
	t.Render()
}

// RenderMetrics prints every player's suggestion counters.
func RenderMetrics(w io.Writer, report []game.Metrics) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("Suggestion Quality")
	t.AppendHeader(table.Row{"Player", "Logical", "Wasted", "Rejected", "Accusations", "Quality"})
	for _, m := range report {
		t.AppendRow(table.Row{
			ColorizeCard(m.Player), m.LogicalSuggestions, m.WastedSuggestions,
			m.RejectedCommands, m.Accusations, fmt.Sprintf("%.0f%%", m.Quality()),
		})
	}
	t.SetStyle(table.StyleRounded)
	t.Style().Title.Align = text.AlignCenter
	t.Render()
}

// RenderValidations prints notebook warnings and blocks, oldest first.
func RenderValidations(w io.Writer, records []game.ValidationRecord) {
	if len(records) == 0 {
		C.Info.Fprintln(w, "No notebook warnings so far.")
		return
	}
	for _, v := range records {
		if v.Verdict == notebook.Blocked {
			C.No.Fprintln(w, v.String())
		} else {
			C.Warn.Fprintln(w, v.String())
		}
	}
}
