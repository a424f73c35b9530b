package enhancer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/facebookincubator/go-belt/tool/logger"
)

var ErrUnknownModel = errors.New("unknown model")

type Factory func(ctx context.Context, opts Options) (Enhancer, error)

var (
	registryLocker sync.RWMutex
	registry       = map[ModelID]Factory{}
)

// Register makes a model available through New. Typically called from
// init() of the implementation package.
func Register(id ModelID, factory Factory) {
	registryLocker.Lock()
	defer registryLocker.Unlock()
	if _, ok := registry[id]; ok {
		panic(fmt.Errorf("there is already registered a model with ID '%s'", id))
	}
	registry[id] = factory
}

// New loads the model with the given ID.
func New(
	ctx context.Context,
	id ModelID,
	opts Options,
) (_ret Enhancer, _err error) {
	logger.Debugf(ctx, "New(%s)", id)
	defer func() { logger.Debugf(ctx, "/New(%s): %T %v", id, _ret, _err) }()

	registryLocker.RLock()
	factory, ok := registry[id]
	registryLocker.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w '%s', known models: %v", ErrUnknownModel, id, List())
	}

	e, err := factory(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("unable to load model '%s': %w", id, err)
	}
	return e, nil
}

// List returns the IDs of all registered models.
func List() []ModelID {
	registryLocker.RLock()
	defer registryLocker.RUnlock()
	ids := make([]ModelID, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i] < ids[j]
	})
	return ids
}
