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

package fulcio

import "fmt"

// VerificationError reports that a signing certificate or its SCTs failed
// verification. Environment and configuration problems are returned as
// ordinary errors so callers can tell "the cert is bad" apart from "the
// verifier is broken".
type VerificationError struct {
	msg string
}

func (e *VerificationError) Error() string {
	return e.msg
}

func verificationErrorf(format string, args ...any) *VerificationError {
	return &VerificationError{msg: fmt.Sprintf(format, args...)}
}
