/*
Package redisstore provides an implementation of store.TreeStore backed by a
redis DB, with every tree encoded under its own key.
*/
package redisstore

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/pbanos/grove/store"
	"github.com/pbanos/grove/tree"
	treejson "github.com/pbanos/grove/tree/json"
	"gopkg.in/redis.v5"
)

type redisStore[R any] struct {
	rc     *redis.Client
	prefix string
	ted    treejson.TreeEncodeDecoder[R]
}

/*
New takes a redis client, a prefix for the keys of the forest and a
TreeEncodeDecoder and returns a store.TreeStore backed by the redis DB.
*/
func New[R any](rc *redis.Client, prefix string, ted treejson.TreeEncodeDecoder[R]) store.TreeStore[R] {
	return &redisStore[R]{rc, prefix, ted}
}

func (rs *redisStore[R]) Store(ctx context.Context, index int, t *tree.Tree[R]) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key := rs.keyFor(index)
	data, err := rs.ted.Encode(t)
	if err != nil {
		return fmt.Errorf("storing tree %q: encoding tree: %w", key, err)
	}
	err = rs.rc.Set(key, data, 0).Err()
	if err != nil {
		return fmt.Errorf("storing tree %q in redis: %w", key, err)
	}
	return nil
}

func (rs *redisStore[R]) Get(ctx context.Context, index int) (*tree.Tree[R], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := rs.keyFor(index)
	data, err := rs.rc.Get(key).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("retrieving tree %q: %w", key, store.ErrTreeNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("retrieving tree %q: %w", key, err)
	}
	t, err := rs.ted.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("retrieving tree %q: decoding: %w", key, err)
	}
	return t, nil
}

func (rs *redisStore[R]) Indexes(ctx context.Context) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	keys, err := rs.rc.Keys(rs.prefix + ":tree:*").Result()
	if err != nil {
		return nil, fmt.Errorf("listing trees in redis: %w", err)
	}
	indexes := make([]int, 0, len(keys))
	for _, k := range keys {
		i, ok := rs.indexFor(k)
		if ok {
			indexes = append(indexes, i)
		}
	}
	sort.Ints(indexes)
	return indexes, nil
}

func (rs *redisStore[R]) Close(ctx context.Context) error {
	return rs.rc.Close()
}

func (rs *redisStore[R]) keyFor(index int) string {
	return fmt.Sprintf("%s:tree:%d", rs.prefix, index)
}

func (rs *redisStore[R]) indexFor(key string) (int, bool) {
	rest := strings.TrimPrefix(key, rs.prefix+":tree:")
	if rest == key {
		return 0, false
	}
	i, err := strconv.Atoi(rest)
	return i, err == nil
}
