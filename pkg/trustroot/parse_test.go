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
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/github/smimesign/fakeca"
	"github.com/sigstore/sigstore/pkg/cryptoutils"
)

func trustedRootDoc(t *testing.T) []byte {
	t.Helper()

	root := fakeca.New(fakeca.IsCA)
	intermediate := root.Issue(fakeca.IsCA)

	var chainPEM []byte
	for _, c := range []*x509.Certificate{intermediate.Certificate, root.Certificate} {
		p, err := cryptoutils.MarshalCertificateToPEM(c)
		if err != nil {
			t.Fatal(err)
		}
		chainPEM = append(chainPEM, p...)
	}

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	keyPEM, err := cryptoutils.MarshalPublicKeyToPEM(key.Public())
	if err != nil {
		t.Fatal(err)
	}

	end := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	doc := trustedRootJSON{
		CertificateAuthorities: []certificateAuthorityJSON{{
			URI:       "https://fulcio.example.dev",
			CertChain: string(chainPEM),
			ValidFor: intervalJSON{
				Start: time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC),
				End:   &end,
			},
		}},
		CTLogs: []transparencyLogJSON{{
			BaseURL:   "https://ctfe.example.dev",
			PublicKey: string(keyPEM),
			ValidFor: intervalJSON{
				Start: time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC),
			},
		}},
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	return raw
}

func TestNewTrustedRootFromJSON(t *testing.T) {
	root, err := NewTrustedRootFromJSON(trustedRootDoc(t))
	if err != nil {
		t.Fatalf("NewTrustedRootFromJSON() returned error: %v", err)
	}

	if len(root.CAs) != 1 {
		t.Fatalf("got %d CAs, want 1", len(root.CAs))
	}
	ca := root.CAs[0]
	if ca.URI != "https://fulcio.example.dev" {
		t.Errorf("CA URI = %s", ca.URI)
	}
	if len(ca.CertPath) != 2 {
		t.Errorf("CA chain has %d certs, want 2", len(ca.CertPath))
	}
	if _, err := ca.TrustAnchor(); err != nil {
		t.Errorf("parsed CA has no usable trust anchor: %v", err)
	}
	if ca.ValidFor.End.IsZero() {
		t.Error("CA validity end should be set")
	}

	if len(root.CTLogs) != 1 {
		t.Fatalf("got %d CT logs, want 1", len(root.CTLogs))
	}
	log := root.CTLogs[0]
	if len(log.ID) != LogIDSize {
		t.Errorf("log ID is %d bytes, want %d", len(log.ID), LogIDSize)
	}
	if !log.ValidFor.End.IsZero() {
		t.Error("log validity should be open ended")
	}

	if _, err := NewTrustedRootFromJSON([]byte("{")); err == nil {
		t.Error("NewTrustedRootFromJSON() with bad JSON expected error, got nil")
	}
}

func TestNewTrustedRootFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trusted_root.json")
	if err := os.WriteFile(path, trustedRootDoc(t), 0o600); err != nil {
		t.Fatal(err)
	}

	root, err := NewTrustedRootFromFile(path)
	if err != nil {
		t.Fatalf("NewTrustedRootFromFile() returned error: %v", err)
	}
	if len(root.CAs) != 1 || len(root.CTLogs) != 1 {
		t.Errorf("got %d CAs and %d logs, want 1 and 1", len(root.CAs), len(root.CTLogs))
	}

	if _, err := NewTrustedRootFromFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("NewTrustedRootFromFile() with missing file expected error, got nil")
	}
}

func TestNewCertificateAuthorityFromCerts(t *testing.T) {
	root := fakeca.New(fakeca.IsCA)
	intermediate := root.Issue(fakeca.IsCA)

	ca, err := NewCertificateAuthorityFromCerts("https://fulcio.example.dev", Interval{},
		intermediate.Certificate, root.Certificate)
	if err != nil {
		t.Fatalf("NewCertificateAuthorityFromCerts() returned error: %v", err)
	}
	if len(ca.CertPath) != 2 {
		t.Errorf("chain has %d certs, want 2", len(ca.CertPath))
	}

	// chains that don't end in a self-signed root are rejected eagerly
	if _, err := NewCertificateAuthorityFromCerts("https://fulcio.example.dev", Interval{},
		root.Certificate, intermediate.Certificate); err == nil {
		t.Error("NewCertificateAuthorityFromCerts() with non-root tail expected error, got nil")
	}
}

func TestNewCertificateAuthorityFromPEM(t *testing.T) {
	root := fakeca.New(fakeca.IsCA)
	pem, err := cryptoutils.MarshalCertificateToPEM(root.Certificate)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "ca.pem")
	if err := os.WriteFile(path, pem, 0o600); err != nil {
		t.Fatal(err)
	}

	ca, err := NewCertificateAuthorityFromPEM("https://fulcio.example.dev", Interval{}, path)
	if err != nil {
		t.Fatalf("NewCertificateAuthorityFromPEM() returned error: %v", err)
	}
	if len(ca.CertPath) != 1 || !ca.CertPath[0].Equal(root.Certificate) {
		t.Error("NewCertificateAuthorityFromPEM() returned wrong chain")
	}

	if _, err := NewCertificateAuthorityFromPEM("https://fulcio.example.dev", Interval{},
		filepath.Join(t.TempDir(), "missing.pem")); err == nil {
		t.Error("NewCertificateAuthorityFromPEM() with missing file expected error, got nil")
	}
}
