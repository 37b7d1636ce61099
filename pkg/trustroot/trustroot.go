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

// Package trustroot models the time-windowed trust material a verifier is
// built from: certificate authorities and certificate transparency logs,
// each valid for a half-open interval.
package trustroot

import (
	"bytes"
	"crypto"
	"crypto/sha256"
	"crypto/x509"
	"errors"
	"fmt"
	"time"

	"github.com/sigstore/sigstore/pkg/cryptoutils"
)

// Interval is a half-open validity window [Start, End). A zero End means
// the window is still open.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window.
func (i Interval) Contains(t time.Time) bool {
	if t.Before(i.Start) {
		return false
	}
	return i.End.IsZero() || t.Before(i.End)
}

// CertificateAuthority is a CA trusted to issue signing certificates
// during its validity window.
type CertificateAuthority struct {
	// CertPath is the CA's own chain, ascending to and including the
	// self-signed root.
	CertPath []*x509.Certificate
	// URI identifies the CA in error messages.
	URI string
	// ValidFor is the window in which the CA was allowed to issue.
	ValidFor Interval
}

// TrustAnchor returns the self-signed root of the CA's chain, suitable as
// a PKIX trust anchor. Verifier construction calls this for every CA so a
// malformed trust root fails at startup instead of at verify time.
func (ca *CertificateAuthority) TrustAnchor() (*x509.Certificate, error) {
	if len(ca.CertPath) == 0 {
		return nil, fmt.Errorf("certificate authority %s has an empty cert chain", ca.URI)
	}
	root := ca.CertPath[len(ca.CertPath)-1]
	if !bytes.Equal(root.RawSubject, root.RawIssuer) {
		return nil, fmt.Errorf("certificate authority %s: chain root is not self-signed", ca.URI)
	}
	if err := root.CheckSignature(root.SignatureAlgorithm, root.RawTBSCertificate, root.Signature); err != nil {
		return nil, fmt.Errorf("certificate authority %s: root signature is invalid: %w", ca.URI, err)
	}
	return root, nil
}

// FindAuthorities returns all CAs whose validity window contains t,
// preserving input order.
func FindAuthorities(cas []CertificateAuthority, t time.Time) []CertificateAuthority {
	var out []CertificateAuthority
	for _, ca := range cas {
		if ca.ValidFor.Contains(t) {
			out = append(out, ca)
		}
	}
	return out
}

// LogIDSize is the length of a CT log ID (RFC 6962 s3.2).
const LogIDSize = sha256.Size

// TransparencyLog is a certificate transparency log trusted during its
// validity window.
type TransparencyLog struct {
	// BaseURL identifies the log.
	BaseURL string
	// ID is the SHA-256 of the log's public key SubjectPublicKeyInfo.
	ID []byte
	// PublicKey verifies the log's SCT signatures.
	PublicKey crypto.PublicKey
	// ValidFor is the window in which SCTs from this log are trusted.
	ValidFor Interval
}

// NewTransparencyLog builds a TransparencyLog, deriving the log ID from
// the public key.
func NewTransparencyLog(baseURL string, publicKey crypto.PublicKey, validFor Interval) (*TransparencyLog, error) {
	if publicKey == nil {
		return nil, errors.New("transparency log public key is required")
	}
	spki, err := cryptoutils.MarshalPublicKeyToDER(publicKey)
	if err != nil {
		return nil, fmt.Errorf("marshalling transparency log key for %s: %w", baseURL, err)
	}
	id := sha256.Sum256(spki)
	return &TransparencyLog{
		BaseURL:   baseURL,
		ID:        id[:],
		PublicKey: publicKey,
		ValidFor:  validFor,
	}, nil
}

// FindLog returns the first log whose ID matches logID byte for byte and
// whose validity window contains t.
func FindLog(logs []TransparencyLog, logID []byte, t time.Time) (*TransparencyLog, bool) {
	for i := range logs {
		if bytes.Equal(logs[i].ID, logID) && logs[i].ValidFor.Contains(t) {
			return &logs[i], true
		}
	}
	return nil, false
}

// TrustedRoot is the full set of trust material a verifier consumes.
type TrustedRoot struct {
	CAs    []CertificateAuthority
	CTLogs []TransparencyLog
}
