//
// Copyright 2025 The Sigstore Authors.
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

// Package clock holds the process clock consulted by CLI commands. The
// conformance server swaps in a fixed mock clock per request; verification
// itself takes all times as explicit parameters and must never read this.
package clock

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

var (
	mu      sync.RWMutex
	current clock.Clock = clock.New()
)

// Set installs a clock, typically a fixed mock during conformance runs.
func Set(c clock.Clock) {
	mu.Lock()
	defer mu.Unlock()
	current = c
}

// Reset restores the wall clock.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	current = clock.New()
}

// Now returns the current time from the installed clock, in UTC.
func Now() time.Time {
	mu.RLock()
	defer mu.RUnlock()
	return current.Now().UTC()
}
