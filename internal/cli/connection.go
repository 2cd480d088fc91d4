package cli

import (
	"github.com/rs/zerolog"

	"github.com/charles-muller/AspNetSessionState/internal/db"
	"github.com/charles-muller/AspNetSessionState/internal/retry"
	"github.com/charles-muller/AspNetSessionState/internal/store"
	"github.com/charles-muller/AspNetSessionState/pkg/sessionstate"
)

// newRepository wires the repository over a fresh connection pool for
// the resolved settings.
func newRepository(log zerolog.Logger, settings sessionstate.Settings) (*store.Repository, error) {
	opener, err := db.NewOpener(&settings.Connection)
	if err != nil {
		return nil, err
	}

	return store.NewRepository(
		opener,
		retry.NewSQLServerFaultClassifier(),
		retry.NewPolicy(settings.RetryBudget),
		log,
	), nil
}
