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

// Package fulcio verifies Fulcio-issued signing certificates: the chain
// must validate against a trusted CA selected by the leaf's issuance time,
// and the leaf must carry at least one embedded SCT signed by a trusted CT
// log inside that log's validity window.
package fulcio

import (
	"crypto"
	"crypto/x509"
	"fmt"
	"strings"
	"time"

	"github.com/sigstore/fulcioverify/pkg/certificates"
	"github.com/sigstore/fulcioverify/pkg/ctlog"
	"github.com/sigstore/fulcioverify/pkg/trustroot"
)

// Verifier checks signing certificates against a fixed trust root. It is
// immutable after construction and safe for concurrent use.
type Verifier struct {
	cas        []trustroot.CertificateAuthority
	ctLogs     []trustroot.TransparencyLog
	ctVerifier *ctlog.Verifier
	sctQuorum  int
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithSCTQuorum sets how many SCTs must be both cryptographically valid
// and inside their log's validity window. Defaults to 1.
func WithSCTQuorum(n int) Option {
	return func(v *Verifier) {
		v.sctQuorum = n
	}
}

// NewVerifier builds a Verifier from a trust root. Every CA must yield a
// usable trust anchor; a malformed trust root fails here, never during
// verification.
func NewVerifier(root *trustroot.TrustedRoot, opts ...Option) (*Verifier, error) {
	for i := range root.CAs {
		if _, err := root.CAs[i].TrustAnchor(); err != nil {
			return nil, err
		}
	}

	logs := root.CTLogs
	finder := func(logID []byte) (crypto.PublicKey, bool) {
		for i := range logs {
			if string(logs[i].ID) == string(logID) {
				return logs[i].PublicKey, true
			}
		}
		return nil, false
	}

	v := &Verifier{
		cas:        root.CAs,
		ctLogs:     logs,
		ctVerifier: ctlog.NewVerifier(finder),
		sctQuorum:  1,
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.sctQuorum < 1 {
		return nil, fmt.Errorf("sct quorum must be at least 1, got %d", v.sctQuorum)
	}
	return v, nil
}

// VerifySigningCertificate checks that the certificate path chains up to a
// trusted CA and that the leaf carries enough valid SCTs. The input should
// not normally contain trusted roots or intermediates; if it does (a full
// self-signed chain), it must match a configured CA's chain exactly.
func (v *Verifier) VerifySigningCertificate(signingCertificate []*x509.Certificate) error {
	fullCertPath, err := v.validateCertPath(signingCertificate)
	if err != nil {
		return err
	}
	return v.verifySCT(fullCertPath)
}

// TrimTrustedParent removes a configured CA chain suffix from the path,
// leaving just the portion issued by the signing service.
func (v *Verifier) TrimTrustedParent(signingCertificate []*x509.Certificate) ([]*x509.Certificate, error) {
	for _, ca := range v.cas {
		if certificates.ContainsParent(signingCertificate, ca.CertPath) {
			return certificates.TrimParent(signingCertificate, ca.CertPath)
		}
	}
	return nil, verificationErrorf("Certificate does not chain to trusted roots")
}

// validateCertPath finds a CA the path chains to and returns the full
// reconstructed path, leaf first, ending at the CA root. Validation is
// pinned to the leaf's NotBefore: these certs live ~15 minutes, so
// validating at "now" would reject legitimately issued certs.
func (v *Verifier) validateCertPath(signingCertificate []*x509.Certificate) ([]*x509.Certificate, error) {
	leaf, err := certificates.Leaf(signingCertificate)
	if err != nil {
		return nil, fmt.Errorf("reading signing certificate: %w", err)
	}

	validCAs := trustroot.FindAuthorities(v.cas, leaf.NotBefore)
	if len(validCAs) == 0 {
		return nil, verificationErrorf("No valid Certificate Authorities found when validating certificate")
	}

	selfSigned, err := certificates.IsSelfSigned(signingCertificate)
	if err != nil {
		return nil, fmt.Errorf("inspecting signing certificate: %w", err)
	}

	type caFailure struct {
		uri    string
		reason string
	}
	var failures []caFailure

	for _, ca := range validCAs {
		anchor, err := ca.TrustAnchor()
		if err != nil {
			// checked when the verifier was constructed
			return nil, fmt.Errorf("trust anchor for %s unusable: %w", ca.URI, err)
		}

		var fullCertPath []*x509.Certificate
		if selfSigned {
			if !certificates.ContainsParent(signingCertificate, ca.CertPath) {
				failures = append(failures, caFailure{ca.URI, "Trusted root in chain does not match"})
				continue
			}
			fullCertPath = signingCertificate
		} else {
			fullCertPath = certificates.Append(ca.CertPath, signingCertificate)
		}

		roots := x509.NewCertPool()
		roots.AddCert(anchor)
		intermediates := x509.NewCertPool()
		for _, c := range fullCertPath[1:] {
			intermediates.AddCert(c)
		}

		if _, err := leaf.Verify(x509.VerifyOptions{
			Roots:         roots,
			Intermediates: intermediates,
			CurrentTime:   leaf.NotBefore,
			KeyUsages:     []x509.ExtKeyUsage{x509.ExtKeyUsageAny},
		}); err != nil {
			failures = append(failures, caFailure{ca.URI, err.Error()})
			continue
		}
		return fullCertPath, nil
	}

	reasons := make([]string, 0, len(failures))
	for _, f := range failures {
		reasons = append(reasons, fmt.Sprintf("%s (%s)", f.uri, f.reason))
	}
	return nil, verificationErrorf("Certificate was not verifiable against CAs\n%s", strings.Join(reasons, "\n"))
}

// verifySCT requires the leaf of an already validated path to carry SCTs
// satisfying the quorum. An SCT only counts if its signature verifies
// against a configured log AND the SCT timestamp falls inside that log's
// validity window - the trust root's window is a stronger constraint than
// cryptographic validity alone.
func (v *Verifier) verifySCT(fullCertPath []*x509.Certificate) error {
	if len(v.ctLogs) == 0 {
		return verificationErrorf("No ct logs were provided to verifier")
	}

	leaf, err := certificates.Leaf(fullCertPath)
	if err != nil {
		return fmt.Errorf("reading certificate path: %w", err)
	}
	embedded, err := certificates.EmbeddedSCTs(leaf)
	if err != nil {
		return verificationErrorf("Certificates could not be parsed during SCT verification")
	}
	if embedded == nil {
		return verificationErrorf("No valid SCTs were found during verification")
	}

	result, err := v.ctVerifier.VerifySignedCertificateTimestamps(fullCertPath)
	if err != nil {
		return verificationErrorf("Certificates could not be parsed during SCT verification")
	}

	satisfied := 0
	for _, sct := range result.Valid {
		entryTime := time.UnixMilli(int64(sct.Timestamp)).UTC()
		if _, ok := trustroot.FindLog(v.ctLogs, sct.LogID.KeyID[:], entryTime); ok {
			satisfied++
			if satisfied >= v.sctQuorum {
				return nil
			}
		}
	}
	return verificationErrorf("No valid SCTs were found, all(%d) SCTs were invalid",
		len(result.Valid)+len(result.Invalid))
}
