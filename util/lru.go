package util

import (
	"fmt"
	"strings"
	"sync"
)

// LRU is a cost-weighted LRU cache. Each entry carries a caller-supplied
// cost, and the least recently used entries are evicted until the total
// cost is within capacity.
type LRU[K comparable, V any] struct {
	cache      map[K]*listNode[K, V]
	head, tail *listNode[K, V]
	used       int64
	cap        int64
	mtx        *sync.Mutex
}

type listNode[K comparable, V any] struct {
	key        K
	value      V
	cost       int64
	prev, next *listNode[K, V]
}

// NewLRU returns a new LRU cache with the given capacity.
func NewLRU[K comparable, V any](capacity int64) *LRU[K, V] {
	head, tail := &listNode[K, V]{}, &listNode[K, V]{}
	head.next = tail
	tail.prev = head
	return &LRU[K, V]{
		cache: make(map[K]*listNode[K, V]),
		head:  head,
		tail:  tail,
		cap:   capacity,
		mtx:   &sync.Mutex{},
	}
}

// Reset clears the cache.
func (lru *LRU[K, V]) Reset() {
	lru.mtx.Lock()
	defer lru.mtx.Unlock()
	lru.cache = make(map[K]*listNode[K, V])
	lru.head.next = lru.tail
	lru.tail.prev = lru.head
	lru.used = 0
}

func (lru *LRU[K, V]) addToFront(node *listNode[K, V]) {
	node.next = lru.head.next
	node.prev = lru.head
	lru.head.next.prev = node
	lru.head.next = node
}

func (lru *LRU[K, V]) removeNode(node *listNode[K, V]) {
	node.prev.next = node.next
	node.next.prev = node.prev
}

func (lru *LRU[K, V]) moveToFront(node *listNode[K, V]) {
	lru.removeNode(node)
	lru.addToFront(node)
}

// Put adds a new key-value pair to the cache. If the key already exists, the
// value and cost are updated. Entries costing more than the capacity are
// not cached.
func (lru *LRU[K, V]) Put(key K, value V, cost int64) {
	lru.mtx.Lock()
	defer lru.mtx.Unlock()
	if cost > lru.cap {
		if node, exists := lru.cache[key]; exists {
			lru.remove(node)
		}
		return
	}
	if node, exists := lru.cache[key]; exists {
		lru.used += cost - node.cost
		node.value = value
		node.cost = cost
		lru.moveToFront(node)
	} else {
		node := &listNode[K, V]{key: key, value: value, cost: cost}
		lru.cache[key] = node
		lru.addToFront(node)
		lru.used += cost
	}
	for lru.used > lru.cap {
		lru.remove(lru.tail.prev)
	}
}

// Get returns the value associated with the given key. The second return
// value is true if the key exists in the cache.
func (lru *LRU[K, V]) Get(key K) (V, bool) {
	lru.mtx.Lock()
	defer lru.mtx.Unlock()
	if node, exists := lru.cache[key]; exists {
		lru.moveToFront(node)
		return node.value, true
	}
	var v V
	return v, false
}

// Delete removes a key from the cache.
func (lru *LRU[K, V]) Delete(key K) {
	lru.mtx.Lock()
	defer lru.mtx.Unlock()
	if node, exists := lru.cache[key]; exists {
		lru.remove(node)
	}
}

// Len returns the number of cached entries.
func (lru *LRU[K, V]) Len() int {
	lru.mtx.Lock()
	defer lru.mtx.Unlock()
	return len(lru.cache)
}

func (lru *LRU[K, V]) remove(node *listNode[K, V]) {
	if node == lru.head || node == lru.tail {
		return
	}
	lru.used -= node.cost
	delete(lru.cache, node.key)
	lru.removeNode(node)
}

// String returns a string representation of the cache.
func (lru *LRU[K, V]) String() string {
	lru.mtx.Lock()
	defer lru.mtx.Unlock()
	sb := &strings.Builder{}
	sb.WriteString(fmt.Sprintf("(%d/%d) [", lru.used, lru.cap))
	for node := lru.head.next; node != lru.tail; node = node.next {
		sb.WriteString(fmt.Sprintf("%v:%v", node.key, node.value))
		if node.next != lru.tail {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}
