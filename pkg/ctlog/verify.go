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

// Package ctlog verifies the signed certificate timestamps embedded in a
// signing certificate against a set of certificate transparency log keys.
//
// The signed data for an embedded SCT is the RFC 6962 s3.2 precert entry:
// the leaf's TBS with the SCT extension stripped, plus the SHA-256 of the
// issuer's SubjectPublicKeyInfo. Reconstruction and signature checking are
// delegated to certificate-transparency-go so the wire handling stays
// bit-exact with real logs.
package ctlog

import (
	"crypto"
	"crypto/x509"
	"errors"
	"fmt"

	ct "github.com/google/certificate-transparency-go"
	"github.com/google/certificate-transparency-go/ctutil"
	ctx509 "github.com/google/certificate-transparency-go/x509"
	"github.com/google/certificate-transparency-go/x509util"
)

// LogFinder resolves a 32-byte log ID to the log's public key. Lookup is
// by ID only; time windows are the caller's concern.
type LogFinder func(logID []byte) (crypto.PublicKey, bool)

// Verifier checks embedded SCTs against known log keys.
type Verifier struct {
	findLog LogFinder
}

// NewVerifier returns a Verifier that resolves log keys with findLog.
func NewVerifier(findLog LogFinder) *Verifier {
	return &Verifier{findLog: findLog}
}

// VerificationResult partitions a certificate's SCTs by whether their
// signature verified against a known log key.
type VerificationResult struct {
	Valid   []*ct.SignedCertificateTimestamp
	Invalid []*ct.SignedCertificateTimestamp
}

// VerifySignedCertificateTimestamps checks every SCT embedded in the leaf
// (chain[0]) against the configured logs. The chain must contain at least
// the leaf and its issuer; the issuer key is part of the signed entry.
func (v *Verifier) VerifySignedCertificateTimestamps(chain []*x509.Certificate) (*VerificationResult, error) {
	if len(chain) < 2 {
		return nil, errors.New("certificate chain must contain the leaf and its issuer")
	}

	leaf, err := parseCTCertificate(chain[0])
	if err != nil {
		return nil, fmt.Errorf("parsing leaf certificate: %w", err)
	}
	issuer, err := parseCTCertificate(chain[1])
	if err != nil {
		return nil, fmt.Errorf("parsing issuer certificate: %w", err)
	}

	scts, err := x509util.ParseSCTsFromCertificate(chain[0].Raw)
	if err != nil {
		return nil, fmt.Errorf("parsing embedded SCTs: %w", err)
	}

	result := &VerificationResult{}
	for _, sct := range scts {
		if sct.SCTVersion != ct.V1 {
			result.Invalid = append(result.Invalid, sct)
			continue
		}
		pub, ok := v.findLog(sct.LogID.KeyID[:])
		if !ok {
			result.Invalid = append(result.Invalid, sct)
			continue
		}
		if err := ctutil.VerifySCT(pub, []*ctx509.Certificate{leaf, issuer}, sct, true); err != nil {
			result.Invalid = append(result.Invalid, sct)
			continue
		}
		result.Valid = append(result.Valid, sct)
	}
	return result, nil
}

// parseCTCertificate reparses a stdlib certificate with the ct fork, which
// tolerates the poison extension and other CT oddities.
func parseCTCertificate(cert *x509.Certificate) (*ctx509.Certificate, error) {
	out, err := ctx509.ParseCertificate(cert.Raw)
	if err != nil && ctx509.IsFatal(err) {
		return nil, err
	}
	return out, nil
}
