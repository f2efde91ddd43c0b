package cli

import (
	"errors"
	"fmt"

	"github.com/mesh-intelligence/rolodex/internal/store"
	"github.com/mesh-intelligence/rolodex/pkg/rolodex"
	"github.com/mesh-intelligence/rolodex/pkg/types"
)

// session is one connected store for the lifetime of a command.
type session struct {
	store *store.Store
	close func() error
}

// openSession connects a store to the configured API and logs each state
// transition at debug level.
func (a *app) openSession() (*session, error) {
	cfg, err := clientConfig(a.v)
	if err != nil {
		return nil, userError(fmt.Errorf("client config: %w", err))
	}
	filter, err := initialFilter(a.v)
	if err != nil {
		return nil, userError(err)
	}

	st, closeFn, err := rolodex.Connect(cfg, rolodex.Options{Logger: a.logger, InitialFilter: &filter})
	if err != nil {
		return nil, sysError(err)
	}

	unsubscribe := st.Subscribe(func(s types.State) {
		a.logger.Debug("store transition",
			"revision", s.Revision,
			"status", s.Status.String(),
			"contacts", len(s.Collection),
			"error", s.ErrorMessage,
		)
	})
	return &session{
		store: st,
		close: func() error {
			unsubscribe()
			return closeFn()
		},
	}, nil
}

// failure turns the store's error state into a command error.
func failure(s types.State) error {
	return sysError(errors.New(s.ErrorMessage))
}
