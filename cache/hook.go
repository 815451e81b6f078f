package cache

// HookPos names a point in the access path where hooks are invoked.
type HookPos struct {
	Name string
}

// HookPosAccess triggers after every access has been resolved.
var HookPosAccess = &HookPos{Name: "Access"}

// HookPosEvict triggers when a valid block is about to be overwritten.
var HookPosEvict = &HookPos{Name: "Evict"}

// HookCtx holds the information about the site where a hook is triggered.
type HookCtx struct {
	Domain *Cache
	Pos    *HookPos
	Item   interface{}
}

// Hook is a short piece of program that the cache invokes while it serves
// accesses. Hooks must not access the cache they are attached to in a way
// that mutates it.
type Hook interface {
	Func(ctx HookCtx)
}

// AccessInfo is the item delivered at HookPosAccess.
type AccessInfo struct {
	Kind   AccessKind
	Tag    uint64
	Index  int
	Result Result
}

// EvictionInfo is the item delivered at HookPosEvict. Counter is the age of
// the victim at the time it was chosen.
type EvictionInfo struct {
	Index   int
	Way     int
	OldTag  uint64
	NewTag  uint64
	Counter uint64
}

// AcceptHook registers a hook.
func (c *Cache) AcceptHook(hook Hook) {
	c.hooks = append(c.hooks, hook)
}

// NumHooks returns the number of registered hooks.
func (c *Cache) NumHooks() int {
	return len(c.hooks)
}

func (c *Cache) invokeHook(pos *HookPos, item interface{}) {
	ctx := HookCtx{
		Domain: c,
		Pos:    pos,
		Item:   item,
	}

	for _, h := range c.hooks {
		h.Func(ctx)
	}
}
