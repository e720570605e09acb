package board

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassicTopology(t *testing.T) {
	b := Classic()

	t.Run("nine rooms each with a door", func(t *testing.T) {
		require.Len(t, b.Rooms(), 9)
		for _, name := range b.Rooms() {
			require.NotEmpty(t, b.Doors(name), "room %s has no door", name)
		}
	})

	t.Run("six start squares on corridor cells", func(t *testing.T) {
		for seat := 0; seat < 6; seat++ {
			p, ok := b.Start(seat)
			require.True(t, ok)
			require.True(t, b.Valid(p))
			require.False(t, p.IsRoom())
		}
		start, _ := b.Start(0)
		require.Equal(t, Corridor(0, 4), start)
	})

	t.Run("adjacency is symmetric", func(t *testing.T) {
		var all []Position
		for row, line := range b.Layout() {
			for col := range line {
				if p := Corridor(row, col); b.Valid(p) {
					all = append(all, p)
				}
			}
		}
		for _, name := range b.Rooms() {
			all = append(all, InRoom(name))
		}
		for _, p := range all {
			for _, n := range b.Neighbors(p) {
				require.Contains(t, b.Neighbors(n), p, "%v -> %v is one-sided", p, n)
			}
		}
	})

	t.Run("secret passages are symmetric corner pairs", func(t *testing.T) {
		for a, c := range map[string]string{"Kitchen": "Study", "Conservatory": "Lounge"} {
			got, ok := b.Passage(a)
			require.True(t, ok)
			require.Equal(t, c, got)
			back, ok := b.Passage(c)
			require.True(t, ok)
			require.Equal(t, a, back)
		}
		_, ok := b.Passage("Hall")
		require.False(t, ok)
	})
}

func TestReachable(t *testing.T) {
	b := Classic()
	start := Corridor(0, 4)

	t.Run("kitchen is five steps from the first start square", func(t *testing.T) {
		dist := b.Reachable(start, 8, nil)
		require.Equal(t, 5, dist[InRoom("Kitchen")])
		require.Equal(t, 7, dist[InRoom("Ballroom")])
		require.NotContains(t, dist, start)
	})

	t.Run("short rolls do not reach the room", func(t *testing.T) {
		dist := b.Reachable(start, 4, nil)
		require.NotContains(t, dist, InRoom("Kitchen"))
		require.Equal(t, 4, dist[Corridor(2, 2)])
	})

	t.Run("occupied corridor cells block the path", func(t *testing.T) {
		blocked := func(p Position) bool { return p == Corridor(2, 3) }
		dist := b.Reachable(start, 12, blocked)
		require.NotContains(t, dist, InRoom("Kitchen"))
		require.NotContains(t, dist, Corridor(2, 3))
	})

	t.Run("leaving a room goes through its door and never returns", func(t *testing.T) {
		dist := b.Reachable(InRoom("Kitchen"), 2, nil)
		require.Equal(t, map[Position]int{
			Corridor(2, 2): 1,
			Corridor(2, 1): 2,
			Corridor(2, 3): 2,
		}, dist)
	})
}

func TestParsePosition(t *testing.T) {
	b := Classic()

	p, err := b.ParsePosition("billiard room")
	require.NoError(t, err)
	require.Equal(t, InRoom("Billiard Room"), p)

	p, err = b.ParsePosition("2, 3")
	require.NoError(t, err)
	require.Equal(t, Corridor(2, 3), p)

	_, err = b.ParsePosition("0,0")
	require.Error(t, err, "room cells are not addressable as corridor cells")

	_, err = b.ParsePosition("Cellar")
	require.Error(t, err)
}
