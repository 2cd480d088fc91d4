package config

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charles-muller/AspNetSessionState/pkg/sessionstate"
)

func settingsFor(server string) sessionstate.Settings {
	return sessionstate.Settings{
		Connection: sessionstate.ConnectionConfig{
			Server:   server,
			Database: "ASPState",
			UserID:   "sessionUser",
		},
		RetryBudget: 30 * time.Second,
	}
}

func TestInitialize_FirstCallWins(t *testing.T) {
	resetForTest()
	t.Cleanup(resetForTest)

	require.True(t, Initialize(settingsFor("primary")))

	// The second call is a no-op even with a different target.
	assert.False(t, Initialize(settingsFor("secondary")))

	current, ok := Current()
	require.True(t, ok)
	assert.Equal(t, "primary", current.Connection.Server)
}

func TestCurrent_Uninitialized(t *testing.T) {
	resetForTest()
	t.Cleanup(resetForTest)

	_, ok := Current()
	assert.False(t, ok)
}

func TestInitialize_ConcurrentRacePicksOneWinner(t *testing.T) {
	resetForTest()
	t.Cleanup(resetForTest)

	const racers = 32
	var wg sync.WaitGroup
	winners := make(chan string, racers)

	for i := 0; i < racers; i++ {
		server := "server-a"
		if i%2 == 1 {
			server = "server-b"
		}
		wg.Add(1)
		go func(server string) {
			defer wg.Done()
			if Initialize(settingsFor(server)) {
				winners <- server
			}
		}(server)
	}
	wg.Wait()
	close(winners)

	var won []string
	for w := range winners {
		won = append(won, w)
	}
	require.Len(t, won, 1, "exactly one initializer wins")

	current, ok := Current()
	require.True(t, ok)
	assert.Equal(t, won[0], current.Connection.Server, "settings match the winner, never a mix")
	assert.Equal(t, 30*time.Second, current.RetryBudget)
}
