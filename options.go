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

package probemap

import "hash/maphash"

// option provide an interface to do work on Map while it is being created.
type option[K comparable, V any] interface {
	apply(m *Map[K, V])
}

type hashOption[K comparable, V any] struct {
	hash hashFn[K]
}

func (op hashOption[K, V]) apply(m *Map[K, V]) {
	m.hash = op.hash
}

// WithHash is an option to specify the hash function to use for a
// Map[K,V]. For a fixed seed the function must hash equal keys to equal
// values; it need not use the seed.
func WithHash[K comparable, V any](hash func(seed maphash.Seed, key K) uint64) option[K, V] {
	return hashOption[K, V]{hash}
}

type maxLoadFactorOption[K comparable, V any] struct {
	maxLoadFactor float64
}

func (op maxLoadFactorOption[K, V]) apply(m *Map[K, V]) {
	m.maxLoadFactor = op.maxLoadFactor
}

// WithMaxLoadFactor is an option overriding DefaultMaxLoadFactor for a
// Map[K,V]: the occupancy ratio above which Put grows the table before
// inserting. Raising it trades longer probe walks for denser storage.
func WithMaxLoadFactor[K comparable, V any](maxLoadFactor float64) option[K, V] {
	return maxLoadFactorOption[K, V]{maxLoadFactor}
}
