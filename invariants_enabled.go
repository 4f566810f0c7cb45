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

//go:build invariants

package probemap

// invariants enables the full-table self-checks performed after every
// mutation. Build with -tags invariants to turn them on; they make every
// operation O(capacity^2) and are intended for tests only.
const invariants = true
