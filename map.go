// Copyright 2026 The probemap Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package probemap is a Go implementation of a hash table that maps keys
// to values using open addressing with linear probing and tombstone-based
// deletion. If you're not familiar with open-addressing see
// https://en.wikipedia.org/wiki/Open_addressing.
//
// All entries are stored directly in a single backing array. The slot for
// a key is found by hashing it to a starting index and walking the array
// with stride +1 (mod capacity). Each slot is in one of three states:
// empty (never occupied since the array was allocated), tombstone
// (occupied in the past, since removed), or full.
//
// Two rules make lookups correct in the presence of deletion:
//
//  1. A probe walk may stop at an empty slot. Inserts always claim the
//     first available slot along the probe walk, so no key's probe chain
//     can extend past a slot that was never claimed - if it could, that
//     slot would have been claimed instead.
//
//  2. A probe walk must not stop at a tombstone. A colliding key may have
//     been placed past the removed entry before its removal; stopping at
//     the tombstone would make that key silently unreachable.
//
// Removal therefore leaves a tombstone rather than an empty slot.
// Tombstones are discarded when the table is rehashed into a fresh array.
//
// Before every insert the occupancy ratio is checked against the maximum
// load factor (0.67 by default) and the table is grown to 2*capacity+1
// first if the insert would overcrowd it. The odd capacity avoids the new
// capacity sharing parity-induced clustering with the old one. Growth
// gives the usual amortized-constant insert cost; individual operations
// are O(capacity) in the worst case.
package probemap

import (
	"fmt"
	"hash/maphash"
	"strings"
)

const (
	// DefaultInitialCapacity is the capacity of the backing array used by
	// New when the caller does not request one, and the capacity Clear
	// resets to unless one was requested at construction.
	DefaultInitialCapacity = 13

	// DefaultMaxLoadFactor is the occupancy ratio (Len/Cap) above which
	// Put grows the table before inserting.
	DefaultMaxLoadFactor = 0.67
)

// slotState describes one cell of the backing array:
//
//	  empty: never occupied since the array was allocated
//	deleted: previously occupied, removed since (a tombstone)
//	   full: holds a live entry
type slotState uint8

const (
	slotEmpty slotState = iota
	slotDeleted
	slotFull
)

// Slot holds a key and value.
type Slot[K comparable, V any] struct {
	key   K
	value V
}

// Map is an unordered map from keys to values with Put, Get, Remove, and
// All operations. By default keys are hashed with the same per-process
// randomized hashing as Go's builtin map[K]V; a different hash function
// can be specified using the WithHash option.
//
// A Map is NOT goroutine-safe. Note that Get performs a probe walk and so
// requires the same exclusive access as the mutating operations.
type Map[K comparable, V any] struct {
	// The hash function applied to keys of type K, seeded with seed.
	hash hashFn[K]
	seed maphash.Seed
	// states[i] describes slots[i]. Both are capacity in length. The
	// states are kept out of the slot struct so the probe loop scans a
	// dense byte array rather than striding over key/value storage.
	states []slotState
	slots  []Slot[K, V]
	// The number of full slots (i.e. the number of elements in the map).
	used int
	// Tuning parameters, fixed at construction.
	initialCapacity int
	maxLoadFactor   float64
}

// New constructs a new Map with the specified initial capacity. If
// initialCapacity is not positive the map starts at
// DefaultInitialCapacity. The zero value for a Map is not usable.
func New[K comparable, V any](initialCapacity int, options ...option[K, V]) *Map[K, V] {
	if initialCapacity <= 0 {
		initialCapacity = DefaultInitialCapacity
	}
	m := &Map[K, V]{
		hash:            defaultHash[K],
		seed:            maphash.MakeSeed(),
		initialCapacity: initialCapacity,
		maxLoadFactor:   DefaultMaxLoadFactor,
	}

	for _, op := range options {
		op.apply(m)
	}

	m.states = make([]slotState, initialCapacity)
	m.slots = make([]Slot[K, V], initialCapacity)
	m.checkInvariants()
	return m
}

// Put inserts an entry into the map, overwriting an existing value if an
// entry with the same key already exists. It returns the value previously
// stored for the key, if any.
func (m *Map[K, V]) Put(key K, value V) (prev V, ok bool) {
	// The grow decision has to happen before the probe walk: growing
	// rehashes every entry, invalidating any slot the walk would have
	// chosen. Growing when the insert would push occupancy past the
	// bound keeps the load factor invariant true after every Put, not
	// just before the next one.
	if n := len(m.slots); n == 0 || float64(m.used+1)/float64(n) > m.maxLoadFactor {
		m.Grow(2*len(m.slots) + 1)
	}
	prev, ok = m.put(key, value)
	m.checkInvariants()
	return prev, ok
}

// put inserts without consulting the load factor. Grow reinserts through
// it so that rehashing can never trigger a further resize.
func (m *Map[K, V]) put(key K, value V) (prev V, ok bool) {
	i, found := m.find(key)
	if found {
		old := m.exchange(i, Slot[K, V]{key: key, value: value})
		return old.value, true
	}
	m.states[i] = slotFull
	m.slots[i] = Slot[K, V]{key: key, value: value}
	m.used++
	return prev, false
}

// Get retrieves the value stored for the specified key, returning
// ok=false if the key is not present.
func (m *Map[K, V]) Get(key K) (value V, ok bool) {
	i, found := m.find(key)
	if !found {
		return value, false
	}
	return m.slots[i].value, true
}

// GetRef returns a pointer to the value stored for the specified key for
// in-place mutation, or nil if the key is not present. The pointer is
// invalidated by any subsequent operation that moves entries (a Put that
// grows the table, Grow, Clear, or a Remove of the key).
func (m *Map[K, V]) GetRef(key K) *V {
	i, found := m.find(key)
	if !found {
		return nil
	}
	return &m.slots[i].value
}

// Contains reports whether the specified key is present in the map.
func (m *Map[K, V]) Contains(key K) bool {
	_, found := m.find(key)
	return found
}

// Remove removes the entry for the specified key, returning the removed
// value. It is a noop to remove a non-existent key. The vacated slot
// becomes a tombstone, not an empty slot; see the package documentation.
func (m *Map[K, V]) Remove(key K) (removed V, ok bool) {
	i, found := m.find(key)
	if !found {
		return removed, false
	}
	old := m.exchange(i, Slot[K, V]{})
	m.states[i] = slotDeleted
	m.used--
	m.checkInvariants()
	return old.value, true
}

// Grow resizes the backing array to newCapacity slots, rehashing every
// live entry into it. Tombstones are discarded, which is the only way a
// tombstoned slot ever becomes empty again. Growing to a capacity smaller
// than Len is a precondition violation and panics. Grow never exposes a
// partially migrated table: callers see the map before or after the
// rehash, nothing in between.
func (m *Map[K, V]) Grow(newCapacity int) {
	if newCapacity < m.used {
		panic(fmt.Sprintf("probemap: cannot resize %d entries into capacity %d", m.used, newCapacity))
	}

	oldStates, oldSlots := m.states, m.slots
	m.states = make([]slotState, newCapacity)
	m.slots = make([]Slot[K, V], newCapacity)
	m.used = 0

	for i := range oldStates {
		if oldStates[i] == slotFull {
			m.put(oldSlots[i].key, oldSlots[i].value)
		}
	}
	m.checkInvariants()
}

// Clear removes all entries from the map, resetting the backing array to
// the initial capacity it was constructed with.
func (m *Map[K, V]) Clear() {
	m.states = make([]slotState, m.initialCapacity)
	m.slots = make([]Slot[K, V], m.initialCapacity)
	m.used = 0
	m.checkInvariants()
}

// All calls yield sequentially for each key and value present in the map,
// in no particular order. If yield returns false, iteration stops.
func (m *Map[K, V]) All(yield func(key K, value V) bool) {
	// Snapshot the states and slots so that iteration remains valid if
	// the map is resized during iteration.
	states, slots := m.states, m.slots
	for i := range states {
		if states[i] == slotFull {
			if !yield(slots[i].key, slots[i].value) {
				return
			}
		}
	}
}

// Len returns the number of entries in the map.
func (m *Map[K, V]) Len() int {
	return m.used
}

// Cap returns the capacity of the backing array.
func (m *Map[K, V]) Cap() int {
	return len(m.slots)
}

// find locates the specified key in the table. If the key is present,
// find returns its index with found=true. Otherwise it returns, with
// found=false, the index of the first empty or tombstoned slot along the
// key's probe walk, which is the slot an insert of the key must claim.
//
// The walk inspects every slot from hash(key) mod capacity onward,
// stopping early only at an empty slot (rule 1 in the package
// documentation) and never at a tombstone (rule 2). Completing a full lap
// without finding a match or an empty slot means the table holds no
// unused slot at all, which the load factor bound makes unreachable;
// hitting it indicates a resize bug and panics.
func (m *Map[K, V]) find(key K) (index int, found bool) {
	capacity := len(m.slots)
	if capacity == 0 {
		// Nothing to probe. Put grows before claiming a slot, so the
		// returned index is never used.
		return 0, false
	}
	start := int(m.hash(m.seed, key) % uint64(capacity))

	firstAvailable := -1
	for scan := 0; scan < capacity; scan++ {
		i := start + scan
		if i >= capacity {
			i -= capacity
		}
		switch m.states[i] {
		case slotFull:
			if m.slots[i].key == key {
				return i, true
			}
		case slotDeleted:
			if firstAvailable < 0 {
				firstAvailable = i
			}
		case slotEmpty:
			if firstAvailable < 0 {
				firstAvailable = i
			}
			return firstAvailable, false
		}
	}

	if firstAvailable < 0 {
		panic(fmt.Sprintf("probemap: probe walk for %v exhausted the table with no available slot\n%s",
			key, m.debugString()))
	}
	return firstAvailable, false
}

// exchange replaces the contents of the full slot at index i, returning
// the slot's previous contents. Both the overwrite and removal paths go
// through it. Calling exchange on a slot that is not full indicates the
// probe logic violated an invariant and panics.
func (m *Map[K, V]) exchange(i int, s Slot[K, V]) Slot[K, V] {
	if m.states[i] != slotFull {
		panic(fmt.Sprintf("probemap: exchange on slot %d in state %d\n%s", i, m.states[i], m.debugString()))
	}
	old := m.slots[i]
	m.slots[i] = s
	return old
}

// checkInvariants verifies the internal consistency of the table: the
// states and slots arrays agree in length, the full-slot count matches
// used, and every full slot is reachable by its own probe walk (which
// also rules out duplicate keys, since find returns the first match in
// walk order). Enabled by building with -tags invariants.
func (m *Map[K, V]) checkInvariants() {
	if invariants {
		if len(m.states) != len(m.slots) {
			panic(fmt.Sprintf("invariant failed: %d states for %d slots", len(m.states), len(m.slots)))
		}

		var used int
		for i := range m.states {
			if m.states[i] != slotFull {
				continue
			}
			used++
			j, found := m.find(m.slots[i].key)
			if !found {
				panic(fmt.Sprintf("invariant failed: slot(%d): %v not reachable by probing\n%s",
					i, m.slots[i].key, m.debugString()))
			}
			if j != i {
				panic(fmt.Sprintf("invariant failed: slot(%d): %v also found at slot(%d)\n%s",
					i, m.slots[i].key, j, m.debugString()))
			}
		}

		if used != m.used {
			panic(fmt.Sprintf("invariant failed: found %d full slots, but used count is %d\n%s",
				used, m.used, m.debugString()))
		}
	}
}

func (m *Map[K, V]) debugString() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "capacity=%d  used=%d\n", len(m.slots), m.used)
	for i := range m.states {
		switch m.states[i] {
		case slotEmpty:
			fmt.Fprintf(&buf, "  %4d: empty\n", i)
		case slotDeleted:
			fmt.Fprintf(&buf, "  %4d: tombstone\n", i)
		case slotFull:
			fmt.Fprintf(&buf, "  %4d: %v [start=%d]\n", i,
				m.slots[i].key, m.hash(m.seed, m.slots[i].key)%uint64(len(m.slots)))
		}
	}
	return buf.String()
}
