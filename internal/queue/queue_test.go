package queue

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type pendingRide struct {
	ID    int
	Level string
}

func TestQueue_PushDrain(t *testing.T) {
	q := New[pendingRide]()
	assert.True(t, q.Empty())
	assert.Empty(t, q.Drain())

	q.Push(pendingRide{ID: 1, Level: "Warmup"})
	q.Push(pendingRide{ID: 2}, pendingRide{ID: 3})
	assert.Equal(t, 3, q.Len())

	items := q.Drain()
	assert.Equal(t, []int{1, 2, 3}, ids(items))
	assert.True(t, q.Empty())

	// drained slice is not shared with later pushes
	q.Push(pendingRide{ID: 4})
	assert.Equal(t, []int{1, 2, 3}, ids(items))
}

func TestQueue_Requeue(t *testing.T) {
	tests := []struct {
		name    string
		pending []int
		back    []int
		want    []int
	}{
		{"into empty", nil, []int{1, 2}, []int{1, 2}},
		{"ahead of newer", []int{3, 4}, []int{1, 2}, []int{1, 2, 3, 4}},
		{"nothing", []int{3}, nil, []int{3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := New[pendingRide]()
			for _, id := range tt.pending {
				q.Push(pendingRide{ID: id})
			}
			var back []pendingRide
			for _, id := range tt.back {
				back = append(back, pendingRide{ID: id})
			}
			q.Requeue(back)
			assert.Equal(t, tt.want, ids(q.Drain()))
		})
	}
}

func TestQueue_Concurrent(t *testing.T) {
	q := New[pendingRide]()
	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 100 {
				q.Push(pendingRide{ID: i*100 + j})
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1000, q.Len())
	assert.Len(t, q.Drain(), 1000)
}

func ids(items []pendingRide) []int {
	out := make([]int, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}
