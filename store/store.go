/*
Package store provides stores where the trees of a forest are kept, by their
index on the forest, as they are grown.
*/
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/pbanos/grove/tree"
)

// Error represents an error related with tree stores
type Error string

// ErrTreeNotFound is returned when asking a store for a tree it does not have
const ErrTreeNotFound = Error("tree not found")

func (e Error) Error() string {
	return string(e)
}

/*
TreeStore is an interface to manage a store where the trees of a forest can
be stored and retrieved by their index.

All its methods take a context that may allow cancelling the operation (thus
forcing the return of an error) if the implementation allows it.
*/
type TreeStore[R any] interface {
	// Store takes an index and a tree and stores the tree with that index,
	// replacing any previous one. It returns an error if the tree cannot be
	// stored.
	Store(ctx context.Context, index int, t *tree.Tree[R]) error
	// Get takes an index and returns the tree stored with it, an error
	// wrapping ErrTreeNotFound if there is none, or another error if the
	// store cannot be queried.
	Get(ctx context.Context, index int) (*tree.Tree[R], error)
	// Indexes returns the indexes of the stored trees in increasing order.
	Indexes(ctx context.Context) ([]int, error)
	// Close closes the store, freeing any resources in use.
	Close(ctx context.Context) error
}

type memoryTreeStore[R any] struct {
	trees map[int]*tree.Tree[R]
	lock  *sync.RWMutex
}

// NewMemoryTreeStore returns an implementation of TreeStore with the process
// memory space as underlying backend
func NewMemoryTreeStore[R any]() TreeStore[R] {
	return &memoryTreeStore[R]{
		trees: make(map[int]*tree.Tree[R]),
		lock:  &sync.RWMutex{},
	}
}

func (mts *memoryTreeStore[R]) Store(ctx context.Context, index int, t *tree.Tree[R]) error {
	return mts.withLock(ctx, func(ctx context.Context) error {
		mts.trees[index] = t
		return nil
	})
}

func (mts *memoryTreeStore[R]) Get(ctx context.Context, index int) (*tree.Tree[R], error) {
	var t *tree.Tree[R]
	err := mts.withRLock(ctx, func(ctx context.Context) error {
		t = mts.trees[index]
		return nil
	})
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("getting tree %d: %w", index, ErrTreeNotFound)
	}
	return t, nil
}

func (mts *memoryTreeStore[R]) Indexes(ctx context.Context) ([]int, error) {
	var result []int
	err := mts.withRLock(ctx, func(ctx context.Context) error {
		result = make([]int, 0, len(mts.trees))
		for i := range mts.trees {
			result = append(result, i)
		}
		return nil
	})
	sort.Ints(result)
	return result, err
}

func (mts *memoryTreeStore[R]) Close(ctx context.Context) error {
	return nil
}

func (mts *memoryTreeStore[R]) withLock(ctx context.Context, f func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	gotLock := make(chan struct{})
	go func() {
		mts.lock.Lock()
		select {
		case <-ctx.Done():
			mts.lock.Unlock()
		case gotLock <- struct{}{}:
		}
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-gotLock:
		defer mts.lock.Unlock()
	}
	return f(ctx)
}

func (mts *memoryTreeStore[R]) withRLock(ctx context.Context, f func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	gotLock := make(chan struct{})
	go func() {
		mts.lock.RLock()
		select {
		case <-ctx.Done():
			mts.lock.RUnlock()
		case gotLock <- struct{}{}:
		}
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-gotLock:
		defer mts.lock.RUnlock()
	}
	return f(ctx)
}

/*
All takes a context and a TreeStore and returns all the trees in the store in
index order, or an error if any cannot be retrieved.
*/
func All[R any](ctx context.Context, ts TreeStore[R]) ([]*tree.Tree[R], error) {
	indexes, err := ts.Indexes(ctx)
	if err != nil {
		return nil, err
	}
	trees := make([]*tree.Tree[R], 0, len(indexes))
	for _, i := range indexes {
		t, err := ts.Get(ctx, i)
		if err != nil {
			return nil, err
		}
		trees = append(trees, t)
	}
	return trees, nil
}
