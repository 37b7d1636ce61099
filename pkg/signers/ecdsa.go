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

// Package signers produces artifact signatures. Output is an ASN.1 DER
// ECDSA-Sig-Value, the encoding every standard verifier accepts.
package signers

import (
	"bytes"
	"crypto"
	"crypto/ecdsa"
	"fmt"

	"github.com/sigstore/sigstore/pkg/signature"
	"github.com/sigstore/sigstore/pkg/signature/options"
)

// ECDSASigner signs artifacts and pre-computed digests with an ECDSA key.
// The hash algorithm fixes both the artifact digest and the expected
// length for SignDigest.
type ECDSASigner struct {
	sv   *signature.ECDSASignerVerifier
	pub  crypto.PublicKey
	hash crypto.Hash
}

// NewECDSASigner wraps an ECDSA private key. hash must be one of SHA-256,
// SHA-384 or SHA-512.
func NewECDSASigner(priv *ecdsa.PrivateKey, hash crypto.Hash) (*ECDSASigner, error) {
	switch hash {
	case crypto.SHA256, crypto.SHA384, crypto.SHA512:
	default:
		return nil, fmt.Errorf("unsupported hash algorithm %v", hash)
	}
	sv, err := signature.LoadECDSASignerVerifier(priv, hash)
	if err != nil {
		return nil, fmt.Errorf("loading ecdsa signer: %w", err)
	}
	return &ECDSASigner{sv: sv, pub: priv.Public(), hash: hash}, nil
}

// PublicKey returns the EC public key matching the signing key.
func (s *ECDSASigner) PublicKey() crypto.PublicKey {
	return s.pub
}

// Sign hashes the artifact with the configured algorithm and signs the
// digest.
func (s *ECDSASigner) Sign(artifact []byte) ([]byte, error) {
	return s.sv.SignMessage(bytes.NewReader(artifact))
}

// SignDigest signs a pre-computed digest directly. The digest length must
// match the configured hash algorithm.
func (s *ECDSASigner) SignDigest(digest []byte) ([]byte, error) {
	if len(digest) != s.hash.Size() {
		return nil, fmt.Errorf("Artifact digest must be %d bytes", s.hash.Size())
	}
	return s.sv.SignMessage(nil, options.WithDigest(digest))
}
