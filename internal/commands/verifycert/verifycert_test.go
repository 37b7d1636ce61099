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

package verifycert

import (
	"bytes"
	"crypto/x509"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sigstore/sigstore/pkg/cryptoutils"

	"github.com/sigstore/fulcioverify/internal/config"
	"github.com/sigstore/fulcioverify/internal/sctest"
)

func writeTrustRoot(t *testing.T, dir string, env *sctest.Env) string {
	t.Helper()

	var chainPEM []byte
	for _, c := range []*x509.Certificate{env.Intermediate.Certificate, env.Root.Certificate} {
		p, err := cryptoutils.MarshalCertificateToPEM(c)
		if err != nil {
			t.Fatal(err)
		}
		chainPEM = append(chainPEM, p...)
	}
	keyPEM, err := cryptoutils.MarshalPublicKeyToPEM(env.LogKey.Public())
	if err != nil {
		t.Fatal(err)
	}

	start := time.Now().AddDate(-1, 0, 0).UTC()
	doc := map[string]any{
		"certificateAuthorities": []map[string]any{{
			"uri":       "https://fulcio.example.dev",
			"certChain": string(chainPEM),
			"validFor":  map[string]any{"start": start},
		}},
		"ctLogs": []map[string]any{{
			"baseUrl":   "https://ctfe.example.dev",
			"publicKey": string(keyPEM),
			"validFor":  map[string]any{"start": start},
		}},
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "trusted_root.json")
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeChain(t *testing.T, dir string, certs ...*x509.Certificate) string {
	t.Helper()
	var pem []byte
	for _, c := range certs {
		p, err := cryptoutils.MarshalCertificateToPEM(c)
		if err != nil {
			t.Fatal(err)
		}
		pem = append(pem, p...)
	}
	path := filepath.Join(dir, "chain.pem")
	if err := os.WriteFile(path, pem, 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestVerifyCertificateCommand(t *testing.T) {
	env := sctest.New(t)
	dir := t.TempDir()
	trustRoot := writeTrustRoot(t, dir, env)

	for _, tc := range []struct {
		name    string
		opts    sctest.LeafOptions
		wantErr string
	}{
		{
			name: "valid leaf",
		},
		{
			name:    "leaf without sct",
			opts:    sctest.LeafOptions{OmitSCT: true},
			wantErr: "No valid SCTs were found during verification",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			leaf, _ := env.IssueLeaf(t, tc.opts)
			chain := writeChain(t, t.TempDir(), leaf)

			cmd := New(config.Get())
			var stdout bytes.Buffer
			cmd.SetOut(&stdout)
			cmd.SetErr(&stdout)
			cmd.SetArgs([]string{"--trust-root", trustRoot, chain})

			err := cmd.Execute()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("Execute() returned error: %v", err)
				}
				if !strings.Contains(stdout.String(), "Verified OK") {
					t.Errorf("stdout = %q, want Verified OK", stdout.String())
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("Execute() = %v, want error containing %q", err, tc.wantErr)
			}
		})
	}
}

func TestVerifyCertificateRequiresTrustRoot(t *testing.T) {
	env := sctest.New(t)
	leaf, _ := env.IssueLeaf(t, sctest.LeafOptions{})
	chain := writeChain(t, t.TempDir(), leaf)

	cmd := New(&config.Config{})
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{chain})

	if err := cmd.Execute(); err == nil {
		t.Error("Execute() without a trust root expected error, got nil")
	}
}
