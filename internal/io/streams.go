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

package io

import (
	"bytes"
	"io"
	"os"
)

// Streams bundles the reader/writers a command run is wired to. The
// conformance server replaces Out and Err with buffers so test output can
// be returned to the caller instead of leaking to the process streams.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// Default returns streams attached to the process stdin/stdout/stderr.
func Default() *Streams {
	return &Streams{
		In:  os.Stdin,
		Out: os.Stdout,
		Err: os.Stderr,
	}
}

// Captured returns streams whose output is collected into buffers, plus
// the buffers themselves.
func Captured(in io.Reader) (*Streams, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	if in == nil {
		in = bytes.NewReader(nil)
	}
	return &Streams{
		In:  in,
		Out: &stdout,
		Err: &stderr,
	}, &stdout, &stderr
}
