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

// hashFn is the type of the hash function used to locate keys in the
// table. It must be deterministic: for a fixed seed, equal keys must
// produce equal hashes. The Map does not validate this; it is an
// obligation on the function supplied via WithHash.
type hashFn[K comparable] func(seed maphash.Seed, key K) uint64

// defaultHash hashes any comparable key using the runtime's hash
// functions, the same hashing used by Go's builtin maps. Each Map draws
// its own seed, so hash values differ between maps and between process
// runs.
func defaultHash[K comparable](seed maphash.Seed, key K) uint64 {
	return maphash.Comparable(seed, key)
}
