// Package notebook keeps one player's deduction grid of card ownership.
//
// Rows are cards, columns are the seated players plus the Envelope. Cells only ever move
// from StatusUnknown to a resolved status; every observation is followed by a closure that
// propagates eliminations from a work-list of changed cells until nothing changes.
package notebook

import (
	"errors"
	"fmt"

	"clue-detective/internal/config"
	"clue-detective/internal/deck"
	"clue-detective/internal/events"

	"github.com/sirupsen/logrus"
)

// Envelope is the holder column for the hidden solution.
const Envelope = "Envelope"

// ErrContradiction is returned when an observation conflicts with what is already known.
var ErrContradiction = errors.New("notebook: contradiction")

// ErrUnknownCard is returned for card names outside the catalog.
var ErrUnknownCard = errors.New("notebook: unknown card")

// CardStatus defines the knowledge state of a card.
type CardStatus int

const (
	StatusUnknown CardStatus = iota
	StatusHas
	StatusNotHas
)

func (s CardStatus) String() string {
	return []string{"unknown", "has", "not_has"}[s]
}

func (s CardStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *CardStatus) UnmarshalText(b []byte) error {
	switch string(b) {
	case "unknown":
		*s = StatusUnknown
	case "has":
		*s = StatusHas
	case "not_has":
		*s = StatusNotHas
	default:
		return fmt.Errorf("notebook: bad status %q", b)
	}
	return nil
}

// Constraint records that Disprover holds at least one of Cards.
type Constraint struct {
	Disprover string   `json:"disprover"`
	Cards     []string `json:"cards"`
}

// Entry is one suggestion as this player saw it.
type Entry struct {
	Suggester string   `json:"suggester"`
	Suspect   string   `json:"suspect"`
	Weapon    string   `json:"weapon"`
	Room      string   `json:"room"`
	Passed    []string `json:"passed,omitempty"`
	Disprover string   `json:"disprover,omitempty"`
	Shown     string   `json:"shown,omitempty"`
	Forced    bool     `json:"forced,omitempty"`
}

type task struct {
	card   string
	holder string
}

// Notebook is a player's private deduction ledger.
type Notebook struct {
	owner       string
	cfg         *config.GameConfig
	seats       []string
	holders     []string
	handSizes   map[string]int
	knowledge   map[string]map[string]CardStatus
	constraints []Constraint
	history     []Entry
	accusations []events.AccusationResult
	queue       []task
	log         logrus.FieldLogger
}

// New creates an empty notebook for owner at a table seated in seats order.
func New(owner string, cfg *config.GameConfig, seats []string, log logrus.FieldLogger) *Notebook {
	n := &Notebook{
		owner:     owner,
		cfg:       cfg,
		seats:     append([]string(nil), seats...),
		handSizes: make(map[string]int),
		knowledge: make(map[string]map[string]CardStatus),
		log:       log.WithField("notebook", owner),
	}
	n.holders = append(append([]string(nil), seats...), Envelope)
	for _, card := range cfg.AllCards {
		n.knowledge[card] = make(map[string]CardStatus, len(n.holders))
		for _, h := range n.holders {
			n.knowledge[card][h] = StatusUnknown
		}
	}
	for _, s := range seats {
		n.handSizes[s] = -1
	}
	return n
}

func (n *Notebook) Owner() string     { return n.owner }
func (n *Notebook) Holders() []string { return append([]string(nil), n.holders...) }

// Status returns one cell of the grid.
func (n *Notebook) Status(card, holder string) CardStatus {
	return n.knowledge[card][holder]
}

// Holder returns who is known to hold card, if anyone.
func (n *Notebook) Holder(card string) (string, bool) {
	for _, h := range n.holders {
		if n.knowledge[card][h] == StatusHas {
			return h, true
		}
	}
	return "", false
}

// IsResolved reports whether the location of card is known.
func (n *Notebook) IsResolved(card string) bool {
	_, ok := n.Holder(card)
	return ok
}

// Constraints returns the open "holds one of" facts.
func (n *Notebook) Constraints() []Constraint {
	out := make([]Constraint, len(n.constraints))
	for i, c := range n.constraints {
		out[i] = Constraint{Disprover: c.Disprover, Cards: append([]string(nil), c.Cards...)}
	}
	return out
}

// History returns the suggestions this player has observed, oldest first.
func (n *Notebook) History() []Entry {
	out := make([]Entry, len(n.history))
	for i, e := range n.history {
		out[i] = e
		out[i].Passed = append([]string(nil), e.Passed...)
	}
	return out
}

// Accusations returns the accusations this player has observed, oldest first.
func (n *Notebook) Accusations() []events.AccusationResult {
	return append([]events.AccusationResult(nil), n.accusations...)
}

// HandSizes returns the announced hand size per seat, -1 before the deal.
func (n *Notebook) HandSizes() map[string]int {
	out := make(map[string]int, len(n.handSizes))
	for k, v := range n.handSizes {
		out[k] = v
	}
	return out
}

// HandleEvent lets the notebook subscribe to an events.Manager directly.
func (n *Notebook) HandleEvent(e events.Event) {
	if err := n.Observe(e); err != nil {
		n.log.Errorf("Rejected %s: %v", e.Kind(), err)
	}
}

// Observe ingests one event. A contradicting event leaves the notebook unchanged.
func (n *Notebook) Observe(e events.Event) error {
	saved := n.save()
	if err := n.observe(e); err != nil {
		n.restore(saved)
		return err
	}
	return nil
}

func (n *Notebook) observe(e events.Event) error {
	switch ev := e.(type) {
	case events.HandDealt:
		if ev.Player != n.owner {
			return nil
		}
		return n.recordHand(ev)
	case events.SuggestionMade:
		n.history = append(n.history, Entry{
			Suggester: ev.Suggester, Suspect: ev.Suspect, Weapon: ev.Weapon, Room: ev.Room, Forced: ev.Forced,
		})
		return nil
	case events.Passed:
		if last := n.lastEntry(); last != nil {
			last.Passed = append(last.Passed, ev.Player)
		}
		for _, card := range ev.Cards {
			if err := n.set(card, ev.Player, StatusNotHas); err != nil {
				return err
			}
		}
		return n.closure()
	case events.NoDisproof:
		for _, p := range n.seats {
			if p == ev.Suggester {
				continue
			}
			for _, card := range ev.Cards {
				if err := n.set(card, p, StatusNotHas); err != nil {
					return err
				}
			}
		}
		if ev.Suggester == n.owner {
			n.log.Infof("My suggestion was not disproved! Making powerful deductions.")
		}
		return n.closure()
	case events.DisproveResult:
		if last := n.lastEntry(); last != nil {
			last.Disprover = ev.Disprover
		}
		if ev.Disprover == n.owner {
			return nil
		}
		if err := n.addConstraint(Constraint{Disprover: ev.Disprover, Cards: ev.Cards[:]}); err != nil {
			return err
		}
		return n.closure()
	case events.CardShown:
		if ev.Suggester != n.owner {
			return nil
		}
		if last := n.lastEntry(); last != nil {
			last.Shown = ev.Card
		}
		if err := n.set(ev.Card, ev.Disprover, StatusHas); err != nil {
			return err
		}
		return n.closure()
	case events.AccusationResult:
		n.accusations = append(n.accusations, ev)
		if !ev.Correct {
			return nil
		}
		for _, card := range []string{ev.Suspect, ev.Weapon, ev.Room} {
			if err := n.set(card, Envelope, StatusHas); err != nil {
				return err
			}
		}
		return n.closure()
	}
	return nil
}

func (n *Notebook) recordHand(ev events.HandDealt) error {
	for i, s := range ev.Seats {
		if i < len(ev.HandSizes) {
			if _, ok := n.handSizes[s]; ok {
				n.handSizes[s] = ev.HandSizes[i]
			}
		}
	}
	inHand := make(map[string]bool, len(ev.Hand))
	for _, card := range ev.Hand {
		if _, ok := n.knowledge[card]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownCard, card)
		}
		inHand[card] = true
	}
	for _, card := range n.cfg.AllCards {
		status := StatusNotHas
		if inHand[card] {
			status = StatusHas
		}
		if err := n.set(card, n.owner, status); err != nil {
			return err
		}
	}
	for _, h := range n.holders {
		n.queue = append(n.queue, task{holder: h})
	}
	n.log.Debugf("Recorded %d cards in hand.", len(ev.Hand))
	return n.closure()
}

func (n *Notebook) lastEntry() *Entry {
	if len(n.history) == 0 {
		return nil
	}
	return &n.history[len(n.history)-1]
}

// set resolves one cell and queues it for propagation.
func (n *Notebook) set(card, holder string, status CardStatus) error {
	row, ok := n.knowledge[card]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCard, card)
	}
	cur, ok := row[holder]
	if !ok {
		return fmt.Errorf("notebook: unknown holder %q", holder)
	}
	if cur == status {
		return nil
	}
	if cur != StatusUnknown {
		return fmt.Errorf("%w: %s is %s for %s", ErrContradiction, card, cur, holder)
	}
	row[holder] = status
	if status == StatusHas {
		n.log.Debugf("Learned that '%s' is with %s.", card, holder)
	}
	n.queue = append(n.queue, task{card: card, holder: holder})
	return nil
}

func (n *Notebook) addConstraint(c Constraint) error {
	n.constraints = append(n.constraints, Constraint{Disprover: c.Disprover, Cards: append([]string(nil), c.Cards...)})
	n.log.Debugf("Noted that %s holds one of %v.", c.Disprover, c.Cards)
	return n.resolveConstraints(c.Disprover)
}

// closure drains the work-list. Each task re-checks the row of its card, the column of its
// holder and the open constraints of that holder.
func (n *Notebook) closure() error {
	for len(n.queue) > 0 {
		t := n.queue[0]
		n.queue = n.queue[1:]
		if t.card != "" {
			if err := n.resolveRow(t.card); err != nil {
				return err
			}
		}
		if t.holder == "" {
			continue
		}
		if t.holder == Envelope {
			cats := config.Categories
			if t.card != "" {
				cats = []config.CardCategory{n.cfg.CardToType[t.card]}
			}
			for _, cat := range cats {
				if err := n.resolveEnvelope(cat); err != nil {
					return err
				}
			}
			continue
		}
		if err := n.resolveColumn(t.holder); err != nil {
			return err
		}
		if err := n.resolveConstraints(t.holder); err != nil {
			return err
		}
	}
	return nil
}

// resolveRow applies "one holder per card": a Has clears the row, a single remaining
// candidate becomes Has.
func (n *Notebook) resolveRow(card string) error {
	var has, open []string
	for _, h := range n.holders {
		switch n.knowledge[card][h] {
		case StatusHas:
			has = append(has, h)
		case StatusUnknown:
			open = append(open, h)
		}
	}
	switch {
	case len(has) > 1:
		return fmt.Errorf("%w: %s held by %v", ErrContradiction, card, has)
	case len(has) == 1:
		for _, h := range open {
			if err := n.set(card, h, StatusNotHas); err != nil {
				return err
			}
		}
	case len(open) == 0:
		return fmt.Errorf("%w: %s is nowhere", ErrContradiction, card)
	case len(open) == 1:
		return n.set(card, open[0], StatusHas)
	}
	return nil
}

// resolveColumn applies hand-size exclusion for a seated player.
func (n *Notebook) resolveColumn(holder string) error {
	size, ok := n.handSizes[holder]
	if !ok || size < 0 {
		return nil
	}
	return n.fill(holder, n.cfg.AllCards, size)
}

// resolveEnvelope applies "exactly one envelope card per category".
func (n *Notebook) resolveEnvelope(cat config.CardCategory) error {
	return n.fill(Envelope, n.cfg.CardListForCategory(cat), 1)
}

// fill resolves the unknown cells of holder among cards when exactly size of them are Has.
func (n *Notebook) fill(holder string, cards []string, size int) error {
	var has int
	var open []string
	for _, card := range cards {
		switch n.knowledge[card][holder] {
		case StatusHas:
			has++
		case StatusUnknown:
			open = append(open, card)
		}
	}
	var status CardStatus
	switch {
	case has > size || has+len(open) < size:
		return fmt.Errorf("%w: %s cannot hold %d of these cards", ErrContradiction, holder, size)
	case len(open) == 0:
		return nil
	case has == size:
		status = StatusNotHas
	case has+len(open) == size:
		status = StatusHas
	default:
		return nil
	}
	for _, card := range open {
		if err := n.set(card, holder, status); err != nil {
			return err
		}
	}
	return nil
}

// resolveConstraints prunes the "holds one of" facts about holder. A satisfied constraint is
// dropped; one whose other cards are all NotHas forces its last card.
func (n *Notebook) resolveConstraints(holder string) error {
	kept := n.constraints[:0]
	var forced []string
	for _, c := range n.constraints {
		if c.Disprover != holder {
			kept = append(kept, c)
			continue
		}
		var open []string
		satisfied := false
		for _, card := range c.Cards {
			switch n.knowledge[card][holder] {
			case StatusHas:
				satisfied = true
			case StatusUnknown:
				open = append(open, card)
			}
		}
		switch {
		case satisfied:
		case len(open) == 0:
			return fmt.Errorf("%w: %s showed none of %v", ErrContradiction, holder, c.Cards)
		case len(open) == 1:
			n.log.Infof("SOLVED A MYSTERY! %s must have shown '%s'.", holder, open[0])
			forced = append(forced, open[0])
		default:
			kept = append(kept, c)
		}
	}
	n.constraints = kept
	for _, card := range forced {
		if err := n.set(card, holder, StatusHas); err != nil {
			return err
		}
	}
	return nil
}

// Unknown returns, per category, the cards whose holder is not yet known.
func (n *Notebook) Unknown() map[config.CardCategory][]string {
	out := make(map[config.CardCategory][]string)
	for _, cat := range config.Categories {
		for _, card := range n.cfg.CardListForCategory(cat) {
			if !n.IsResolved(card) {
				out[cat] = append(out[cat], card)
			}
		}
	}
	return out
}

// Possible returns, per category, the cards that could still be in the envelope.
func (n *Notebook) Possible() map[config.CardCategory][]string {
	out := make(map[config.CardCategory][]string)
	for _, cat := range config.Categories {
		for _, card := range n.cfg.CardListForCategory(cat) {
			if n.envelopeCandidate(card) {
				out[cat] = append(out[cat], card)
			}
		}
	}
	return out
}

func (n *Notebook) envelopeCandidate(card string) bool {
	if n.knowledge[card][Envelope] == StatusNotHas {
		return false
	}
	for _, s := range n.seats {
		if n.knowledge[card][s] == StatusHas {
			return false
		}
	}
	return true
}

// RecommendedAccusation returns the solution once every category has a single candidate.
func (n *Notebook) RecommendedAccusation() (deck.Solution, bool) {
	possible := n.Possible()
	picks := make([]string, len(config.Categories))
	for i, cat := range config.Categories {
		if len(possible[cat]) != 1 {
			return deck.Solution{}, false
		}
		picks[i] = possible[cat][0]
	}
	return deck.Solution{Suspect: picks[0], Weapon: picks[1], Room: picks[2]}, true
}

// Verdict classifies a proposed action.
type Verdict int

const (
	Allowed Verdict = iota
	Warning
	Blocked
)

func (v Verdict) String() string {
	return []string{"allowed", "warning", "blocked"}[v]
}

func (v Verdict) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

func (v *Verdict) UnmarshalText(b []byte) error {
	for i, name := range []string{"allowed", "warning", "blocked"} {
		if name == string(b) {
			*v = Verdict(i)
			return nil
		}
	}
	return fmt.Errorf("notebook: bad verdict %q", b)
}

// Validation is the notebook's opinion on a proposed suggestion or accusation.
type Validation struct {
	Verdict Verdict  `json:"verdict"`
	Reasons []string `json:"reasons,omitempty"`
}

func (n *Notebook) checkCards(cards ...string) error {
	for _, c := range cards {
		if _, ok := n.knowledge[c]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownCard, c)
		}
	}
	return nil
}

// ValidateSuggestion warns when every named card is already located: the suggestion
// cannot teach anything.
func (n *Notebook) ValidateSuggestion(suspect, weapon, room string) (Validation, error) {
	if err := n.checkCards(suspect, weapon, room); err != nil {
		return Validation{}, err
	}
	var reasons []string
	for _, card := range []string{suspect, weapon, room} {
		holder, ok := n.Holder(card)
		if !ok {
			return Validation{Verdict: Allowed}, nil
		}
		reasons = append(reasons, fmt.Sprintf("%s is already known to be with %s", card, holder))
	}
	return Validation{Verdict: Warning, Reasons: reasons}, nil
}

// ValidateAccusation blocks an accusation naming a card some player is known to hold.
func (n *Notebook) ValidateAccusation(suspect, weapon, room string) (Validation, error) {
	if err := n.checkCards(suspect, weapon, room); err != nil {
		return Validation{}, err
	}
	var reasons []string
	for _, card := range []string{suspect, weapon, room} {
		if holder, ok := n.Holder(card); ok && holder != Envelope {
			reasons = append(reasons, fmt.Sprintf("%s is held by %s", card, holder))
		}
	}
	if len(reasons) > 0 {
		return Validation{Verdict: Blocked, Reasons: reasons}, nil
	}
	return Validation{Verdict: Allowed}, nil
}

// Grid is a detached copy of a notebook's cells.
type Grid struct {
	Owner   string                           `json:"owner"`
	Holders []string                         `json:"holders"`
	Cards   []string                         `json:"cards"`
	Cells   map[string]map[string]CardStatus `json:"cells"`
}

// Snapshot copies the grid.
func (n *Notebook) Snapshot() Grid {
	g := Grid{
		Owner:   n.owner,
		Holders: n.Holders(),
		Cards:   append([]string(nil), n.cfg.AllCards...),
		Cells:   make(map[string]map[string]CardStatus, len(n.knowledge)),
	}
	for card, row := range n.knowledge {
		g.Cells[card] = make(map[string]CardStatus, len(row))
		for h, s := range row {
			g.Cells[card][h] = s
		}
	}
	return g
}

type savedState struct {
	knowledge   map[string]map[string]CardStatus
	constraints []Constraint
	history     []Entry
	accusations int
	handSizes   map[string]int
}

func (n *Notebook) save() savedState {
	s := savedState{
		knowledge:   n.Snapshot().Cells,
		constraints: n.Constraints(),
		history:     n.History(),
		accusations: len(n.accusations),
		handSizes:   make(map[string]int, len(n.handSizes)),
	}
	for k, v := range n.handSizes {
		s.handSizes[k] = v
	}
	return s
}

func (n *Notebook) restore(s savedState) {
	n.knowledge = s.knowledge
	n.constraints = s.constraints
	n.history = s.history
	n.accusations = n.accusations[:s.accusations]
	n.handSizes = s.handSizes
	n.queue = nil
}
