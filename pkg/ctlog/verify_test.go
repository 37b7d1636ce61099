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

package ctlog

import (
	"bytes"
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"testing"

	ct "github.com/google/certificate-transparency-go"

	"github.com/sigstore/fulcioverify/internal/sctest"
)

func finderFor(env *sctest.Env) LogFinder {
	return func(logID []byte) (crypto.PublicKey, bool) {
		if bytes.Equal(logID, env.LogID) {
			return env.LogKey.Public(), true
		}
		return nil, false
	}
}

func TestVerifyValidSCT(t *testing.T) {
	env := sctest.New(t)
	leaf, _ := env.IssueLeaf(t, sctest.LeafOptions{})

	v := NewVerifier(finderFor(env))
	result, err := v.VerifySignedCertificateTimestamps(env.Chain(leaf))
	if err != nil {
		t.Fatalf("VerifySignedCertificateTimestamps() returned error: %v", err)
	}

	if len(result.Valid) != 1 || len(result.Invalid) != 0 {
		t.Fatalf("got %d valid / %d invalid SCTs, want 1 / 0", len(result.Valid), len(result.Invalid))
	}
	sct := result.Valid[0]
	if !bytes.Equal(sct.LogID.KeyID[:], env.LogID) {
		t.Errorf("SCT log ID = %x, want %x", sct.LogID.KeyID, env.LogID)
	}
}

func TestVerifyInvalidSCTs(t *testing.T) {
	env := sctest.New(t)

	wrongKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatal(err)
	}

	for _, tc := range []struct {
		name string
		opts sctest.LeafOptions
	}{
		{
			name: "signed by an unknown key",
			opts: sctest.LeafOptions{SCTSigner: wrongKey},
		},
		{
			name: "unknown log id",
			opts: sctest.LeafOptions{SCTLogID: make([]byte, 32)},
		},
		{
			name: "unsupported version",
			opts: sctest.LeafOptions{SCTVersion: ct.Version(2)},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			leaf, _ := env.IssueLeaf(t, tc.opts)

			v := NewVerifier(finderFor(env))
			result, err := v.VerifySignedCertificateTimestamps(env.Chain(leaf))
			if err != nil {
				t.Fatalf("VerifySignedCertificateTimestamps() returned error: %v", err)
			}
			if len(result.Valid) != 0 || len(result.Invalid) != 1 {
				t.Errorf("got %d valid / %d invalid SCTs, want 0 / 1", len(result.Valid), len(result.Invalid))
			}
		})
	}
}

func TestVerifyRequiresIssuer(t *testing.T) {
	env := sctest.New(t)
	leaf, _ := env.IssueLeaf(t, sctest.LeafOptions{})

	v := NewVerifier(finderFor(env))
	if _, err := v.VerifySignedCertificateTimestamps(env.Chain(leaf)[:1]); err == nil {
		t.Error("expected error for a chain without the issuer, got nil")
	}
}
