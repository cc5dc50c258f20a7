package svcreg

import "context"

// lookupChain tracks the names currently being resolved by one logical call
// chain: one external Lookup plus every nested lookup it triggers through
// dependency injection. Re-entering a name already in the chain indicates a
// dependency cycle.
//
// The chain is carried as a context value rather than goroutine-local state,
// so the cycle-detection scope is explicit: resolvers must thread the ctx
// they receive into every nested Lookup.
//
// holdsLock records whether this chain currently owns the registry's creation
// lock. Nested lookups on the same chain skip re-acquiring it, which is what
// makes the creation lock behave reentrantly within a chain while still
// serializing creation across chains.
type lookupChain struct {
	names     []string
	seen      map[string]struct{}
	holdsLock bool
}

type lookupChainKey struct{}

// chainInto returns the chain carried by ctx, or attaches a fresh one.
// The returned context must be used for all nested lookups.
func chainInto(ctx context.Context) (*lookupChain, context.Context) {
	if c, ok := ctx.Value(lookupChainKey{}).(*lookupChain); ok {
		return c, ctx
	}
	c := &lookupChain{seen: make(map[string]struct{})}
	return c, context.WithValue(ctx, lookupChainKey{}, c)
}

// chainFrom returns the chain carried by ctx, or nil.
func chainFrom(ctx context.Context) *lookupChain {
	c, _ := ctx.Value(lookupChainKey{}).(*lookupChain)
	return c
}

// enter adds name to the in-flight set. It returns false if the name is
// already present, which means the chain has cycled.
func (c *lookupChain) enter(name string) bool {
	if _, dup := c.seen[name]; dup {
		return false
	}
	c.seen[name] = struct{}{}
	c.names = append(c.names, name)
	return true
}

// exit removes name from the in-flight set. Names exit in reverse entry
// order, so the name is always the last element.
func (c *lookupChain) exit(name string) {
	delete(c.seen, name)
	if n := len(c.names); n > 0 && c.names[n-1] == name {
		c.names = c.names[:n-1]
	}
}

// path returns the entered names in order, ending with the re-entered name.
func (c *lookupChain) path(reentered string) []string {
	out := make([]string, 0, len(c.names)+1)
	out = append(out, c.names...)
	return append(out, reentered)
}
