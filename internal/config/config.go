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

package config

import "os"

var (
	// getenv is swapped out in tests.
	getenv = os.Getenv
)

// Config represents configuration options for fulcioverify.
type Config struct {
	// Path to the JSON trusted root document.
	TrustRoot string

	// Listen address for the conformance server.
	ListenAddr string
}

// Get fetches the fulcioverify config from the environment. Command-line
// flags override these values.
func Get() *Config {
	out := &Config{
		ListenAddr: ":8080",
	}

	if v := getenv("FULCIOVERIFY_TRUST_ROOT"); v != "" {
		out.TrustRoot = v
	}
	if v := getenv("FULCIOVERIFY_LISTEN_ADDR"); v != "" {
		out.ListenAddr = v
	}
	return out
}
