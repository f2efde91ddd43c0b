// Package rolodex wires the contact store to a remote contact API.
//
// Example:
//
//	st, closeFn, err := rolodex.Connect(types.Config{BaseURL: "http://localhost:8080"})
//	if err != nil {
//	    return err
//	}
//	defer closeFn()
//	st.FetchCollection(ctx, nil)
//	fmt.Println(st.Snapshot().Collection)
package rolodex

import (
	"fmt"
	"log/slog"

	"github.com/mesh-intelligence/rolodex/internal/remote"
	"github.com/mesh-intelligence/rolodex/internal/store"
	"github.com/mesh-intelligence/rolodex/internal/transport"
	"github.com/mesh-intelligence/rolodex/pkg/types"
)

// Version is the release version of the module.
const Version = "0.3.0"

// ModulePath is the Go module path.
const ModulePath = "github.com/mesh-intelligence/rolodex"

// Options tunes Connect. The zero value uses slog.Default and the default
// filter.
type Options struct {
	Logger        *slog.Logger
	InitialFilter *types.FilterCriteria
}

// Connect builds a store backed by the API at cfg.BaseURL. The returned
// function clears the store and releases idle connections.
func Connect(cfg types.Config, opts Options) (*store.Store, func() error, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	tc, err := transport.New(cfg, transport.WithLogger(logger))
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to %s: %w", cfg.BaseURL, err)
	}

	storeOpts := []store.Option{store.WithLogger(logger)}
	if opts.InitialFilter != nil {
		storeOpts = append(storeOpts, store.WithInitialFilter(*opts.InitialFilter))
	}
	st := store.New(remote.New(tc), storeOpts...)

	closeFn := func() error {
		st.ClearStore()
		return tc.Close()
	}
	return st, closeFn, nil
}
