package notebook

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"clue-detective/internal/events"
)

var glyphs = map[CardStatus]byte{StatusUnknown: '?', StatusHas: '+', StatusNotHas: '-'}

// Field values are percent-escaped so names may contain separators.
var (
	escaper   = strings.NewReplacer("%", "%25", "|", "%7C", ",", "%2C", "=", "%3D", "\n", "%0A")
	unescaper = strings.NewReplacer("%25", "%", "%7C", "|", "%2C", ",", "%3D", "=", "%0A", "\n")
)

func esc(s string) string   { return escaper.Replace(s) }
func unesc(s string) string { return unescaper.Replace(s) }

func escList(list []string, sep string) string {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = esc(s)
	}
	return strings.Join(out, sep)
}

func unescList(s, sep string) []string {
	if s == "" {
		return nil
	}
	out := strings.Split(s, sep)
	for i := range out {
		out[i] = unesc(out[i])
	}
	return out
}

func bit(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// Compact renders the whole notebook as a short line-oriented text:
//
//	nb=<owner>
//	h=<holder>|<holder>|...
//	z=<seat>|<hand size, -1 if unknown>
//	c=<card>=<one glyph per holder: ? + ->
//	s=<suggester>|<suspect>|<weapon>|<room>|<passed,...>|<disprover>|<shown>|<forced 0/1>
//	k=<disprover>|<card,...>
//	a=<accuser>|<suspect>|<weapon>|<room>|<correct 0/1>
//
// ParseCompact reads it back without loss.
func (n *Notebook) Compact() string {
	var b strings.Builder
	fmt.Fprintf(&b, "nb=%s\n", esc(n.owner))
	fmt.Fprintf(&b, "h=%s\n", escList(n.holders, "|"))
	for _, s := range n.seats {
		fmt.Fprintf(&b, "z=%s|%d\n", esc(s), n.handSizes[s])
	}
	for _, card := range n.cfg.AllCards {
		row := make([]byte, len(n.holders))
		for i, h := range n.holders {
			row[i] = glyphs[n.knowledge[card][h]]
		}
		fmt.Fprintf(&b, "c=%s=%s\n", esc(card), row)
	}
	for _, e := range n.history {
		fmt.Fprintf(&b, "s=%s|%s|%s\n", escList([]string{e.Suggester, e.Suspect, e.Weapon, e.Room}, "|"),
			escList(e.Passed, ","), escList([]string{e.Disprover, e.Shown, bit(e.Forced)}, "|"))
	}
	for _, c := range n.constraints {
		fmt.Fprintf(&b, "k=%s|%s\n", esc(c.Disprover), escList(c.Cards, ","))
	}
	for _, a := range n.accusations {
		fmt.Fprintf(&b, "a=%s|%s\n", escList([]string{a.Accuser, a.Suspect, a.Weapon, a.Room}, "|"), bit(a.Correct))
	}
	return b.String()
}

// Parsed is a notebook read back from its compact form.
type Parsed struct {
	Grid        Grid
	History     []Entry
	Constraints []Constraint
	Accusations []events.AccusationResult
	HandSizes   map[string]int
}

// ParseCompact is the inverse of Compact.
func ParseCompact(text string) (*Parsed, error) {
	p := &Parsed{
		Grid:        Grid{Cells: make(map[string]map[string]CardStatus)},
		History:     []Entry{},
		Constraints: []Constraint{},
		HandSizes:   make(map[string]int),
	}
	sc := bufio.NewScanner(strings.NewReader(text))
	for line := 1; sc.Scan(); line++ {
		key, val, ok := strings.Cut(sc.Text(), "=")
		if !ok {
			return nil, fmt.Errorf("notebook: line %d: missing '='", line)
		}
		if err := p.parseLine(key, val); err != nil {
			return nil, fmt.Errorf("notebook: line %d: %w", line, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Parsed) parseLine(key, val string) error {
	f := strings.Split(val, "|")
	switch key {
	case "nb":
		p.Grid.Owner = unesc(val)
	case "h":
		p.Grid.Holders = unescList(val, "|")
	case "z":
		if len(f) != 2 {
			return fmt.Errorf("bad hand size %q", val)
		}
		size, err := strconv.Atoi(f[1])
		if err != nil {
			return fmt.Errorf("bad hand size %q", val)
		}
		p.HandSizes[unesc(f[0])] = size
	case "c":
		card, row, ok := strings.Cut(val, "=")
		if !ok {
			return fmt.Errorf("bad card row %q", val)
		}
		if len(row) != len(p.Grid.Holders) {
			return fmt.Errorf("%d cells for %d holders", len(row), len(p.Grid.Holders))
		}
		cells := make(map[string]CardStatus, len(row))
		for i := 0; i < len(row); i++ {
			status, ok := statusOf(row[i])
			if !ok {
				return fmt.Errorf("bad glyph %q", row[i])
			}
			cells[p.Grid.Holders[i]] = status
		}
		card = unesc(card)
		p.Grid.Cards = append(p.Grid.Cards, card)
		p.Grid.Cells[card] = cells
	case "s":
		if len(f) != 8 {
			return fmt.Errorf("bad history entry %q", val)
		}
		p.History = append(p.History, Entry{
			Suggester: unesc(f[0]), Suspect: unesc(f[1]), Weapon: unesc(f[2]), Room: unesc(f[3]),
			Passed: unescList(f[4], ","), Disprover: unesc(f[5]), Shown: unesc(f[6]), Forced: f[7] == "1",
		})
	case "k":
		if len(f) != 2 {
			return fmt.Errorf("bad constraint %q", val)
		}
		p.Constraints = append(p.Constraints, Constraint{Disprover: unesc(f[0]), Cards: unescList(f[1], ",")})
	case "a":
		if len(f) != 5 {
			return fmt.Errorf("bad accusation %q", val)
		}
		p.Accusations = append(p.Accusations, events.AccusationResult{
			Accuser: unesc(f[0]), Suspect: unesc(f[1]), Weapon: unesc(f[2]), Room: unesc(f[3]), Correct: f[4] == "1",
		})
	default:
		return fmt.Errorf("unknown key %q", key)
	}
	return nil
}

func statusOf(b byte) (CardStatus, bool) {
	for s, g := range glyphs {
		if g == b {
			return s, true
		}
	}
	return StatusUnknown, false
}
