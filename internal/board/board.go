package board

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Position is either a room (Room set) or a corridor cell.
type Position struct {
	Room string `json:"room,omitempty"`
	Row  int    `json:"row"`
	Col  int    `json:"col"`
}

// InRoom returns a position inside the named room.
func InRoom(name string) Position { return Position{Room: name} }

// Corridor returns the position of a corridor cell.
func Corridor(row, col int) Position { return Position{Row: row, Col: col} }

func (p Position) IsRoom() bool { return p.Room != "" }

func (p Position) String() string {
	if p.IsRoom() {
		return p.Room
	}
	return fmt.Sprintf("%d,%d", p.Row, p.Col)
}

// Room describes one room of the board.
type Room struct {
	Name    string
	Letter  rune
	Doors   []Position // corridor cells that open into the room
	Passage string     // secret passage partner, empty if none
}

// Board is the static topology: corridor cells, rooms, doors and secret passages.
type Board struct {
	layout    []string
	corridor  map[Position]bool
	doorOf    map[Position]string
	rooms     map[string]*Room
	roomOrder []string
	starts    map[int]Position
}

// classicLayout is the table used by every session. Uppercase letters are room cells,
// lowercase letters are corridor cells with a door into that room, digits are start squares.
var classicLayout = []string{
	"KKKK1.BBBBB2CCC",
	"KKKK..BBBBB.CCC",
	"3.k.....b....c4",
	"DDDd#######iIII",
	"DDD.#######.III",
	"###.#######.LLL",
	"###.#######lLLL",
	"###.#######.LLL",
	"###.#######.###",
	".o.....h.....s.",
	"OOOO.#HHHH#.SSS",
	"OOOO.#HHHH#.SSS",
	"OOOO5#HHHH#6SSS",
}

var classicRooms = []struct {
	letter rune
	name   string
}{
	{'K', "Kitchen"},
	{'B', "Ballroom"},
	{'C', "Conservatory"},
	{'D', "Dining Room"},
	{'I', "Billiard Room"},
	{'L', "Library"},
	{'O', "Lounge"},
	{'H', "Hall"},
	{'S', "Study"},
}

var classicPassages = [][2]string{
	{"Kitchen", "Study"},
	{"Conservatory", "Lounge"},
}

// Classic builds the standard nine-room board.
func Classic() *Board {
	b, err := parse(classicLayout, classicRooms, classicPassages)
	if err != nil {
		panic(fmt.Sprintf("classic board layout is invalid: %v", err))
	}
	return b
}

func parse(layout []string, rooms []struct {
	letter rune
	name   string
}, passages [][2]string) (*Board, error) {
	b := &Board{
		layout:   layout,
		corridor: make(map[Position]bool),
		doorOf:   make(map[Position]string),
		rooms:    make(map[string]*Room),
		starts:   make(map[int]Position),
	}
	byLetter := make(map[rune]*Room)
	for _, r := range rooms {
		room := &Room{Name: r.name, Letter: r.letter}
		b.rooms[r.name] = room
		b.roomOrder = append(b.roomOrder, r.name)
		byLetter[r.letter] = room
	}

	for row, line := range layout {
		for col, ch := range line {
			pos := Corridor(row, col)
			switch {
			case ch == '.':
				b.corridor[pos] = true
			case ch >= '1' && ch <= '9':
				b.corridor[pos] = true
				b.starts[int(ch-'1')] = pos
			case unicode.IsLower(ch):
				room, ok := byLetter[unicode.ToUpper(ch)]
				if !ok {
					return nil, fmt.Errorf("door %q at %v has no room", ch, pos)
				}
				b.corridor[pos] = true
				b.doorOf[pos] = room.Name
				room.Doors = append(room.Doors, pos)
			}
		}
	}
	for _, room := range b.rooms {
		if len(room.Doors) == 0 {
			return nil, fmt.Errorf("room %s has no door", room.Name)
		}
	}
	for _, p := range passages {
		if err := b.addPassage(p[0], p[1]); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// addPassage adds a bidirectional secret passage between two rooms.
func (b *Board) addPassage(a, c string) error {
	ra, ok := b.rooms[a]
	if !ok {
		return fmt.Errorf("passage from unknown room %s", a)
	}
	rc, ok := b.rooms[c]
	if !ok {
		return fmt.Errorf("passage to unknown room %s", c)
	}
	ra.Passage = rc.Name
	rc.Passage = ra.Name
	return nil
}

// Rooms returns room names in board order.
func (b *Board) Rooms() []string { return append([]string(nil), b.roomOrder...) }

// Room looks up a room by name.
func (b *Board) Room(name string) (*Room, bool) {
	r, ok := b.rooms[name]
	return r, ok
}

// Doors returns the corridor cells that open into the room.
func (b *Board) Doors(room string) []Position {
	r, ok := b.rooms[room]
	if !ok {
		return nil
	}
	return append([]Position(nil), r.Doors...)
}

// Passage returns the secret passage partner of a room.
func (b *Board) Passage(room string) (string, bool) {
	r, ok := b.rooms[room]
	if !ok || r.Passage == "" {
		return "", false
	}
	return r.Passage, true
}

// Start returns the start square of a zero-based seat.
func (b *Board) Start(seat int) (Position, bool) {
	p, ok := b.starts[seat]
	return p, ok
}

// Layout returns the raw rows of the board, for rendering.
func (b *Board) Layout() []string { return append([]string(nil), b.layout...) }

// Valid reports whether p names a room or a corridor cell of this board.
func (b *Board) Valid(p Position) bool {
	if p.IsRoom() {
		_, ok := b.rooms[p.Room]
		return ok
	}
	return b.corridor[p]
}

// Neighbors returns the positions one orthogonal step away. Secret passages are not steps.
func (b *Board) Neighbors(p Position) []Position {
	if p.IsRoom() {
		return b.Doors(p.Room)
	}
	if !b.corridor[p] {
		return nil
	}
	var out []Position
	for _, d := range [][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
		n := Corridor(p.Row+d[0], p.Col+d[1])
		if b.corridor[n] {
			out = append(out, n)
		}
	}
	if room, ok := b.doorOf[p]; ok {
		out = append(out, InRoom(room))
	}
	return out
}

// Reachable returns every destination within steps single moves of from, with its distance.
// Entering a room ends movement, the origin room is never a destination and corridor cells
// for which blocked returns true can be neither crossed nor occupied.
func (b *Board) Reachable(from Position, steps int, blocked func(Position) bool) map[Position]int {
	dist := map[Position]int{from: 0}
	queue := []Position{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		d := dist[cur]
		if d == steps {
			continue
		}
		for _, n := range b.Neighbors(cur) {
			if _, seen := dist[n]; seen {
				continue
			}
			if n.IsRoom() {
				if n.Room == from.Room {
					continue
				}
				dist[n] = d + 1
				continue
			}
			if blocked != nil && blocked(n) {
				continue
			}
			dist[n] = d + 1
			queue = append(queue, n)
		}
	}
	delete(dist, from)
	return dist
}

// ParsePosition reads "row,col" or a room name (case-insensitive).
func (b *Board) ParsePosition(s string) (Position, error) {
	s = strings.TrimSpace(s)
	if parts := strings.Split(s, ","); len(parts) == 2 {
		row, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
		col, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err1 == nil && err2 == nil {
			p := Corridor(row, col)
			if !b.corridor[p] {
				return Position{}, fmt.Errorf("%s is not a corridor cell", s)
			}
			return p, nil
		}
	}
	for _, name := range b.roomOrder {
		if strings.EqualFold(name, s) {
			return InRoom(name), nil
		}
	}
	return Position{}, fmt.Errorf("unknown position %q", s)
}
