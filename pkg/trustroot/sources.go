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
	"crypto/x509"
	"fmt"
	"os"

	"github.com/sigstore/sigstore/pkg/cryptoutils"
)

// NewCertificateAuthorityFromCerts builds a CertificateAuthority from an
// in-memory chain, ascending order, self-signed root last. The trust
// anchor is checked immediately so a bad chain fails here rather than
// during verification.
func NewCertificateAuthorityFromCerts(uri string, validFor Interval, chain ...*x509.Certificate) (*CertificateAuthority, error) {
	ca := &CertificateAuthority{
		CertPath: chain,
		URI:      uri,
		ValidFor: validFor,
	}
	if _, err := ca.TrustAnchor(); err != nil {
		return nil, err
	}
	return ca, nil
}

// NewCertificateAuthorityFromPEM reads the CA chain from a PEM file.
func NewCertificateAuthorityFromPEM(uri string, validFor Interval, path string) (*CertificateAuthority, error) {
	data, err := os.ReadFile(path) // nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("reading CA chain for %s: %w", uri, err)
	}
	chain, err := cryptoutils.UnmarshalCertificatesFromPEM(data)
	if err != nil {
		return nil, fmt.Errorf("parsing CA chain for %s: %w", uri, err)
	}
	return NewCertificateAuthorityFromCerts(uri, validFor, chain...)
}
