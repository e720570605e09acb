package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

type recorder struct{ got []Event }

func (r *recorder) HandleEvent(e Event) { r.got = append(r.got, e) }

func TestManager(t *testing.T) {
	// GIVEN a bus with two players and one observer
	em := NewManager()
	alice, bob, observer := &recorder{}, &recorder{}, &recorder{}
	em.SubscribePlayer("Alice", alice)
	em.SubscribePlayer("Bob", bob)
	em.Subscribe(observer)

	// WHEN one public and one private event are sent
	em.Publish(NoDisproof{Suggester: "Alice", Cards: [3]string{"A", "B", "C"}})
	em.Deliver(CardShown{Suggester: "Alice", Disprover: "Bob", Card: "A"}, "Alice")

	t.Run("public events reach everyone and the log", func(t *testing.T) {
		require.Len(t, observer.got, 1)
		require.Len(t, bob.got, 1)
		log := em.Log()
		require.Len(t, log, 1)
		require.Equal(t, 1, log[0].Seq)
		require.Equal(t, "no_disproof", log[0].Kind)
	})

	t.Run("private events reach only the addressee", func(t *testing.T) {
		require.Len(t, alice.got, 2)
		require.IsType(t, CardShown{}, alice.got[1])
		require.Len(t, em.Log(), 1)
	})

	t.Run("the log is a copy", func(t *testing.T) {
		log := em.Log()
		log[0].Kind = "tampered"
		require.Equal(t, "no_disproof", em.Log()[0].Kind)
	})
}

func TestRecordJSON(t *testing.T) {
	// GIVEN a log with events of different kinds
	em := NewManager()
	em.Publish(TurnStarted{Turn: 1, Player: "Alice"})
	em.Publish(Passed{Suggester: "Alice", Player: "Bob", Cards: [3]string{"A", "B", "C"}})

	// WHEN it goes through JSON
	data, err := json.Marshal(em.Log())
	require.NoError(t, err)
	var back []Record
	require.NoError(t, json.Unmarshal(data, &back))

	// THEN the concrete event types come back
	require.Equal(t, em.Log(), back)

	t.Run("unknown kinds are refused", func(t *testing.T) {
		var r Record
		require.Error(t, json.Unmarshal([]byte(`{"seq":1,"kind":"teleport","event":{}}`), &r))
	})
}
