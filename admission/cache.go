package admission

import (
	lru "github.com/hashicorp/golang-lru"

	"github.com/cmwaters/gatekeeper/pkg/account"
)

// memberCache remembers accounts the store has confirmed as members.
// Membership only ever grows, so a positive answer can never go stale
// and is safe to serve forever; negative answers are always read
// through to the store.
type memberCache struct {
	lru *lru.Cache
}

func newMemberCache(size int) (*memberCache, error) {
	c, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &memberCache{lru: c}, nil
}

func (c *memberCache) has(id account.ID) bool {
	return c.lru.Contains(id)
}

func (c *memberCache) add(id account.ID) {
	c.lru.Add(id, struct{}{})
}
