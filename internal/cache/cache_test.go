package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keex74/ElmaReplayIO/pkg/core"
)

func TestLevelCache_New(t *testing.T) {
	c := NewLevelCache()

	require.NotNil(t, c)
	assert.NotNil(t, c.Levels)
	assert.Equal(t, 0, c.Len())
}

func TestLevelCache_AddAndGet(t *testing.T) {
	c := NewLevelCache()
	lev := &core.Level{Name: "Warm Up", Link: 42}

	c.Add(Key("qwquu001.lev", 42), lev)

	got, found := c.Get(Key("QWQUU001.LEV", 42))
	require.True(t, found)
	assert.Same(t, lev, got)

	_, found = c.Get(Key("QWQUU001.LEV", 43))
	assert.False(t, found, "link is part of the key")
}

func TestLevelCache_Reset(t *testing.T) {
	c := NewLevelCache()
	c.Add(Key("a.lev", 1), &core.Level{})
	c.Add(Key("b.lev", 2), &core.Level{})
	require.Equal(t, 2, c.Len())

	c.Reset()

	assert.Equal(t, 0, c.Len())
	_, found := c.Get(Key("a.lev", 1))
	assert.False(t, found)
}

func TestLevelCache_Concurrent(t *testing.T) {
	c := NewLevelCache()
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			k := Key(fmt.Sprintf("l%03d.lev", id), uint32(id))
			c.Add(k, &core.Level{Link: uint32(id)})
			_, _ = c.Get(k)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 100, c.Len())
}

func TestKey(t *testing.T) {
	assert.Equal(t, LevelKey{Name: "QWQUU001.LEV", Link: 7}, Key("qwquu001.Lev", 7))
}

// SafeCounter tests

func TestSafeCounter_InitialValue(t *testing.T) {
	c := &SafeCounter{}
	assert.Equal(t, int(0), c.Value())
}

func TestSafeCounter_Set(t *testing.T) {
	c := &SafeCounter{}

	c.Set(42)
	assert.Equal(t, int(42), c.Value())

	c.Set(0)
	assert.Equal(t, int(0), c.Value())
}

func TestSafeCounter_Inc(t *testing.T) {
	c := &SafeCounter{}

	c.Inc()
	assert.Equal(t, int(1), c.Value())

	c.Inc()
	c.Inc()
	assert.Equal(t, int(3), c.Value())
}

func TestSafeCounter_Concurrent(t *testing.T) {
	c := &SafeCounter{}
	var wg sync.WaitGroup

	for i := 0; i < 1000; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Inc()
		}()
	}
	wg.Wait()

	assert.Equal(t, int(1000), c.Value())
}
