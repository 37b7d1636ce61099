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

package trustroot

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sigstore/sigstore/pkg/cryptoutils"
)

// The JSON trust root carries PEM-embedded material so a verifier can be
// configured without a TUF client. Fetching and refreshing stays with the
// caller.

type intervalJSON struct {
	Start time.Time  `json:"start"`
	End   *time.Time `json:"end,omitempty"`
}

func (i intervalJSON) interval() Interval {
	out := Interval{Start: i.Start}
	if i.End != nil {
		out.End = *i.End
	}
	return out
}

type certificateAuthorityJSON struct {
	URI       string       `json:"uri"`
	CertChain string       `json:"certChain"`
	ValidFor  intervalJSON `json:"validFor"`
}

type transparencyLogJSON struct {
	BaseURL   string       `json:"baseUrl"`
	PublicKey string       `json:"publicKey"`
	ValidFor  intervalJSON `json:"validFor"`
}

type trustedRootJSON struct {
	CertificateAuthorities []certificateAuthorityJSON `json:"certificateAuthorities"`
	CTLogs                 []transparencyLogJSON      `json:"ctLogs"`
}

// NewTrustedRootFromJSON parses a JSON trust root document.
func NewTrustedRootFromJSON(data []byte) (*TrustedRoot, error) {
	var doc trustedRootJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing trusted root: %w", err)
	}

	root := &TrustedRoot{}
	for _, ca := range doc.CertificateAuthorities {
		chain, err := cryptoutils.UnmarshalCertificatesFromPEM([]byte(ca.CertChain))
		if err != nil {
			return nil, fmt.Errorf("parsing cert chain for %s: %w", ca.URI, err)
		}
		root.CAs = append(root.CAs, CertificateAuthority{
			CertPath: chain,
			URI:      ca.URI,
			ValidFor: ca.ValidFor.interval(),
		})
	}
	for _, l := range doc.CTLogs {
		pub, err := cryptoutils.UnmarshalPEMToPublicKey([]byte(l.PublicKey))
		if err != nil {
			return nil, fmt.Errorf("parsing public key for ct log %s: %w", l.BaseURL, err)
		}
		tlog, err := NewTransparencyLog(l.BaseURL, pub, l.ValidFor.interval())
		if err != nil {
			return nil, err
		}
		root.CTLogs = append(root.CTLogs, *tlog)
	}
	return root, nil
}

// NewTrustedRootFromFile reads and parses a JSON trust root document.
func NewTrustedRootFromFile(path string) (*TrustedRoot, error) {
	data, err := os.ReadFile(path) // nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("reading trusted root: %w", err)
	}
	return NewTrustedRootFromJSON(data)
}
