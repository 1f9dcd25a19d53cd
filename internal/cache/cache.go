package cache

import (
	"strings"
	"sync"

	"github.com/keex74/ElmaReplayIO/pkg/core"
)

// LevelKey identifies a level as replays reference it. Names compare
// case-insensitively, the way the game treats file names.
type LevelKey struct {
	Name string
	Link uint32
}

// Key builds the cache key for a replay header.
func Key(name string, link uint32) LevelKey {
	return LevelKey{Name: strings.ToUpper(name), Link: link}
}

// LevelCache keeps decoded levels so that batches of replays of the same
// level only scan the level directory once.
type LevelCache struct {
	m      sync.Mutex
	Levels map[LevelKey]*core.Level
}

func NewLevelCache() *LevelCache {
	return &LevelCache{
		m:      sync.Mutex{},
		Levels: make(map[LevelKey]*core.Level),
	}
}

func (c *LevelCache) Reset() {
	c.m.Lock()
	defer c.m.Unlock()
	c.Levels = make(map[LevelKey]*core.Level)
}

// Get returns the cached level and whether the key is present.
func (c *LevelCache) Get(k LevelKey) (l *core.Level, found bool) {
	c.m.Lock()
	defer c.m.Unlock()
	l, found = c.Levels[k]
	return l, found
}

func (c *LevelCache) Add(k LevelKey, l *core.Level) {
	c.m.Lock()
	defer c.m.Unlock()
	c.Levels[k] = l
}

func (c *LevelCache) Len() int {
	c.m.Lock()
	defer c.m.Unlock()
	return len(c.Levels)
}

// SafeCounter is a thread-safe counter
type SafeCounter struct {
	mu sync.Mutex
	v  int
}

func (c *SafeCounter) Value() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.v
}

func (c *SafeCounter) Set(v int) {
	c.mu.Lock()
	c.v = v
	c.mu.Unlock()
}

func (c *SafeCounter) Inc() {
	c.mu.Lock()
	c.v++
	c.mu.Unlock()
}
