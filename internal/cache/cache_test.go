package cache

import (
	"errors"
	"testing"
)

func TestCacheGetSet(t *testing.T) {
	c := New[string, int](0, nil)
	if _, ok := c.Get("a"); ok {
		t.Fatal("Get on empty cache should miss")
	}
	c.Set("a", 1)
	c.Set("b", 2)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %d, %v; want 1, true", v, ok)
	}
	c.Set("a", 3)
	if v, _ := c.Get("a"); v != 3 {
		t.Errorf("Get(a) after overwrite = %d, want 3", v)
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	var evicted []int
	c := New(2, func(k, _ int) { evicted = append(evicted, k) })

	c.Set(1, 10)
	c.Set(2, 20)
	c.Get(1) // 2 is now the oldest
	c.Set(3, 30)

	if _, ok := c.Get(2); ok {
		t.Error("key 2 should have been evicted")
	}
	for _, k := range []int{1, 3} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("key %d should still be cached", k)
		}
	}
	if len(evicted) != 1 || evicted[0] != 2 {
		t.Errorf("evicted = %v, want [2]", evicted)
	}
	if s := c.Stats(); s.Evictions != 1 || s.Len != 2 || s.Capacity != 2 {
		t.Errorf("Stats() = %+v", s)
	}
}

func TestCacheGetOrCreate(t *testing.T) {
	c := New[string, int](4, nil)
	calls := 0
	create := func() (int, error) {
		calls++
		return 7, nil
	}
	for range 3 {
		v, err := c.GetOrCreate("k", create)
		if err != nil || v != 7 {
			t.Fatalf("GetOrCreate() = %d, %v", v, err)
		}
	}
	if calls != 1 {
		t.Errorf("create called %d times, want 1", calls)
	}

	boom := errors.New("boom")
	if _, err := c.GetOrCreate("bad", func() (int, error) { return 0, boom }); !errors.Is(err, boom) {
		t.Errorf("GetOrCreate() error = %v, want boom", err)
	}
	if _, ok := c.Get("bad"); ok {
		t.Error("failed create must not be cached")
	}

	s := c.Stats()
	if s.Hits != 2 || s.Misses != 3 {
		t.Errorf("hits/misses = %d/%d, want 2/3", s.Hits, s.Misses)
	}
}

func TestCacheDeleteAndClear(t *testing.T) {
	var evicted int
	c := New(0, func(string, int) { evicted++ })
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	if !c.Delete("b") {
		t.Error("Delete(b) = false, want true")
	}
	if c.Delete("b") {
		t.Error("second Delete(b) = true, want false")
	}
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() after Clear = %d", c.Len())
	}
	if evicted != 3 {
		t.Errorf("onEvict called %d times, want 3", evicted)
	}

	c.Set("d", 4)
	if v, ok := c.Get("d"); !ok || v != 4 {
		t.Error("cache unusable after Clear")
	}
}

func TestLRUListOrder(t *testing.T) {
	l := newLRUList[int]()
	nodes := make([]*lruNode[int], 4)
	for i := range nodes {
		nodes[i] = l.PushFront(i)
	}
	l.MoveToFront(nodes[0])
	l.Remove(nodes[2])
	l.Remove(nodes[2])

	var got []int
	for {
		k, ok := l.RemoveOldest()
		if !ok {
			break
		}
		got = append(got, k)
	}
	want := []int{1, 3, 0}
	if len(got) != len(want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
	if _, ok := l.Oldest(); ok {
		t.Error("Oldest() on empty list should report false")
	}
}
