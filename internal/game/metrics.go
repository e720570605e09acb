package game

import (
	"fmt"
	"strings"

	"clue-detective/internal/notebook"
)

// Metrics counts how well a player used the notebook. Grading lives elsewhere.
type Metrics struct {
	Player             string `json:"player"`
	LogicalSuggestions int    `json:"logical_suggestions"`
	WastedSuggestions  int    `json:"wasted_suggestions"`
	RejectedCommands   int    `json:"rejected_commands"`
	Accusations        int    `json:"accusations"`
}

// Quality is the share of logical suggestions, in percent. Zero without suggestions.
func (m Metrics) Quality() float64 {
	total := m.LogicalSuggestions + m.WastedSuggestions
	if total == 0 {
		return 0
	}
	return float64(m.LogicalSuggestions) / float64(total) * 100
}

// ValidationRecord is one notebook warning or block.
type ValidationRecord struct {
	Turn     int              `json:"turn"`
	Player   string           `json:"player"`
	Type     string           `json:"type"`
	Verdict  notebook.Verdict `json:"verdict"`
	Details  string           `json:"details"`
	Overrode bool             `json:"overrode,omitempty"`
}

func (v ValidationRecord) String() string {
	s := fmt.Sprintf("turn %d %s %s (%s): %s", v.Turn, v.Player, v.Type, v.Verdict, v.Details)
	if v.Overrode {
		s += " [forced]"
	}
	return s
}

func (g *Game) recordValidation(name, kind string, v notebook.Validation, overrode bool) {
	g.validations = append(g.validations, ValidationRecord{
		Turn:     g.turn,
		Player:   name,
		Type:     kind,
		Verdict:  v.Verdict,
		Details:  strings.Join(v.Reasons, "; "),
		Overrode: overrode,
	})
}

// Metrics returns the counters of one player.
func (g *Game) Metrics(name string) (Metrics, error) {
	m, ok := g.metrics[name]
	if !ok {
		return Metrics{}, fmt.Errorf("%w: %q is not seated", ErrOutOfTurn, name)
	}
	return *m, nil
}

// Report returns every player's counters in seating order.
func (g *Game) Report() []Metrics {
	out := make([]Metrics, 0, len(g.players))
	for _, p := range g.players {
		out = append(out, *g.metrics[p.Name])
	}
	return out
}

// ValidationLog returns the last n validation records, or all of them when n <= 0.
func (g *Game) ValidationLog(n int) []ValidationRecord {
	out := g.validations
	if n > 0 && len(out) > n {
		out = out[len(out)-n:]
	}
	return append([]ValidationRecord(nil), out...)
}
