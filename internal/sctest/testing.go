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

// Package sctest mints certificate chains with genuine embedded SCTs for
// tests: a fake CA hierarchy plus a fake CT log key that signs RFC 6962
// precert entries over the leaves it issues.
package sctest

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"math/big"
	"testing"
	"time"

	"github.com/github/smimesign/fakeca"
	ct "github.com/google/certificate-transparency-go"
	cttls "github.com/google/certificate-transparency-go/tls"
	ctx509 "github.com/google/certificate-transparency-go/x509"

	"github.com/sigstore/fulcioverify/pkg/trustroot"
)

var oidEmbeddedSCT = asn1.ObjectIdentifier{1, 3, 6, 1, 4, 1, 11129, 2, 4, 2}

// Env is a fake issuance environment: a root CA, an intermediate, and a
// CT log key.
type Env struct {
	Root         *fakeca.Identity
	Intermediate *fakeca.Identity
	LogKey       *ecdsa.PrivateKey
	LogID        []byte

	serial int64
}

// New builds a fresh environment. The CA certs are valid for an hour
// either side of now.
func New(t *testing.T) *Env {
	t.Helper()

	root := fakeca.New(fakeca.IsCA,
		fakeca.NotBefore(time.Now().Add(-time.Hour)),
		fakeca.NotAfter(time.Now().Add(time.Hour)))
	intermediate := root.Issue(fakeca.IsCA,
		fakeca.NotBefore(time.Now().Add(-time.Hour)),
		fakeca.NotAfter(time.Now().Add(time.Hour)))

	logKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generating log key: %v", err)
	}
	spki, err := x509.MarshalPKIXPublicKey(logKey.Public())
	if err != nil {
		t.Fatalf("marshalling log key: %v", err)
	}
	id := sha256.Sum256(spki)

	return &Env{
		Root:         root,
		Intermediate: intermediate,
		LogKey:       logKey,
		LogID:        id[:],
		serial:       100,
	}
}

// CAPath is the CA's own chain, ascending: intermediate then root.
func (e *Env) CAPath() []*x509.Certificate {
	return []*x509.Certificate{e.Intermediate.Certificate, e.Root.Certificate}
}

// CA builds a trustroot CA over the environment's chain.
func (e *Env) CA(uri string, validFor trustroot.Interval) trustroot.CertificateAuthority {
	return trustroot.CertificateAuthority{
		CertPath: e.CAPath(),
		URI:      uri,
		ValidFor: validFor,
	}
}

// RootOnlyCA builds a trustroot CA whose chain holds just the self-signed
// root, leaving the intermediate to be supplied as untrusted input.
func (e *Env) RootOnlyCA(uri string, validFor trustroot.Interval) trustroot.CertificateAuthority {
	return trustroot.CertificateAuthority{
		CertPath: []*x509.Certificate{e.Root.Certificate},
		URI:      uri,
		ValidFor: validFor,
	}
}

// Log builds a trustroot log over the environment's log key.
func (e *Env) Log(t *testing.T, baseURL string, validFor trustroot.Interval) trustroot.TransparencyLog {
	t.Helper()
	l, err := trustroot.NewTransparencyLog(baseURL, e.LogKey.Public(), validFor)
	if err != nil {
		t.Fatalf("building transparency log: %v", err)
	}
	return *l
}

// LeafOptions control leaf issuance.
type LeafOptions struct {
	NotBefore time.Time
	NotAfter  time.Time

	// SCTTime is the log timestamp for the embedded SCT. Zero means
	// NotBefore plus 30 seconds.
	SCTTime time.Time
	// OmitSCT issues a leaf without the embedded SCT extension.
	OmitSCT bool
	// SCTSigner signs the SCT; defaults to the environment's log key.
	// Pass a different key to produce a cryptographically bad SCT.
	SCTSigner *ecdsa.PrivateKey
	// SCTLogID overrides the log ID embedded in the SCT.
	SCTLogID []byte
	// SCTVersion overrides the SCT version byte.
	SCTVersion ct.Version
}

// IssueLeaf issues a short-lived end-entity cert from the intermediate,
// optionally carrying one embedded SCT. The SCT signature is computed over
// the real precert entry (TBS with the extension stripped), so it verifies
// exactly the way an SCT from a live log would.
func (e *Env) IssueLeaf(t *testing.T, opts LeafOptions) (*x509.Certificate, *ecdsa.PrivateKey) {
	t.Helper()

	if opts.NotBefore.IsZero() {
		opts.NotBefore = time.Now()
	}
	if opts.NotAfter.IsZero() {
		opts.NotAfter = opts.NotBefore.Add(15 * time.Minute)
	}
	if opts.SCTTime.IsZero() {
		opts.SCTTime = opts.NotBefore.Add(30 * time.Second)
	}
	if opts.SCTSigner == nil {
		opts.SCTSigner = e.LogKey
	}
	if opts.SCTLogID == nil {
		opts.SCTLogID = e.LogID
	}

	leafKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generating leaf key: %v", err)
	}

	e.serial++
	template := &x509.Certificate{
		SerialNumber:   big.NewInt(e.serial),
		Subject:        pkix.Name{CommonName: "sigstore-leaf"},
		NotBefore:      opts.NotBefore,
		NotAfter:       opts.NotAfter,
		KeyUsage:       x509.KeyUsageDigitalSignature,
		ExtKeyUsage:    []x509.ExtKeyUsage{x509.ExtKeyUsageCodeSigning},
		EmailAddresses: []string{"leaf@example.dev"},
	}

	if opts.OmitSCT {
		return e.createCert(t, template, leafKey), leafKey
	}

	// The SCT signs the leaf's TBS with the SCT extension stripped, so the
	// signed bytes do not depend on the extension's value. Issue once with
	// a placeholder to obtain those bytes, then re-issue with the real SCT
	// list under the same serial and template.
	template.ExtraExtensions = []pkix.Extension{{Id: oidEmbeddedSCT, Value: mustOctetString(t, []byte{0x00, 0x00})}}
	placeholder := e.createCert(t, template, leafKey)

	sct := e.signSCT(t, placeholder, opts)
	template.ExtraExtensions = []pkix.Extension{{Id: oidEmbeddedSCT, Value: mustOctetString(t, marshalSCTList(t, sct))}}
	return e.createCert(t, template, leafKey), leafKey
}

// Chain returns the input path for the verifier: leaf plus intermediate.
func (e *Env) Chain(leaf *x509.Certificate) []*x509.Certificate {
	return []*x509.Certificate{leaf, e.Intermediate.Certificate}
}

// FullChain returns leaf, intermediate and root.
func (e *Env) FullChain(leaf *x509.Certificate) []*x509.Certificate {
	return []*x509.Certificate{leaf, e.Intermediate.Certificate, e.Root.Certificate}
}

func (e *Env) createCert(t *testing.T, template *x509.Certificate, key *ecdsa.PrivateKey) *x509.Certificate {
	t.Helper()
	der, err := x509.CreateCertificate(rand.Reader, template, e.Intermediate.Certificate, key.Public(), e.Intermediate.PrivateKey)
	if err != nil {
		t.Fatalf("creating certificate: %v", err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatalf("parsing certificate: %v", err)
	}
	return cert
}

func (e *Env) signSCT(t *testing.T, placeholder *x509.Certificate, opts LeafOptions) *ct.SignedCertificateTimestamp {
	t.Helper()

	ctLeaf, err := ctx509.ParseCertificate(placeholder.Raw)
	if err != nil && ctx509.IsFatal(err) {
		t.Fatalf("reparsing placeholder leaf: %v", err)
	}
	ctIssuer, err := ctx509.ParseCertificate(e.Intermediate.Certificate.Raw)
	if err != nil && ctx509.IsFatal(err) {
		t.Fatalf("reparsing issuer: %v", err)
	}

	timestamp := uint64(opts.SCTTime.UnixMilli())
	leaf, err := ct.MerkleTreeLeafForEmbeddedSCT([]*ctx509.Certificate{ctLeaf, ctIssuer}, timestamp)
	if err != nil {
		t.Fatalf("building merkle tree leaf: %v", err)
	}

	var logID ct.LogID
	copy(logID.KeyID[:], opts.SCTLogID)
	sct := ct.SignedCertificateTimestamp{
		SCTVersion: ct.V1,
		LogID:      logID,
		Timestamp:  timestamp,
	}

	// always serialize the input as v1; a non-v1 version byte is only ever
	// set afterwards to produce an SCT verifiers must reject
	input, err := ct.SerializeSCTSignatureInput(sct, ct.LogEntry{Leaf: *leaf})
	if err != nil {
		t.Fatalf("serializing signature input: %v", err)
	}
	digest := sha256.Sum256(input)
	sig, err := ecdsa.SignASN1(rand.Reader, opts.SCTSigner, digest[:])
	if err != nil {
		t.Fatalf("signing sct: %v", err)
	}
	sct.Signature = ct.DigitallySigned{
		Algorithm: cttls.SignatureAndHashAlgorithm{
			Hash:      cttls.SHA256,
			Signature: cttls.ECDSA,
		},
		Signature: sig,
	}
	sct.SCTVersion = opts.SCTVersion
	return &sct
}

func marshalSCTList(t *testing.T, scts ...*ct.SignedCertificateTimestamp) []byte {
	t.Helper()
	list := ctx509.SignedCertificateTimestampList{}
	for _, sct := range scts {
		raw, err := cttls.Marshal(*sct)
		if err != nil {
			t.Fatalf("marshalling sct: %v", err)
		}
		list.SCTList = append(list.SCTList, ctx509.SerializedSCT{Val: raw})
	}
	out, err := cttls.Marshal(list)
	if err != nil {
		t.Fatalf("marshalling sct list: %v", err)
	}
	return out
}

func mustOctetString(t *testing.T, data []byte) []byte {
	t.Helper()
	out, err := asn1.Marshal(data)
	if err != nil {
		t.Fatalf("marshalling octet string: %v", err)
	}
	return out
}
