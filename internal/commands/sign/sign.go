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

package sign

import (
	"crypto"
	"crypto/ecdsa"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sigstore/fulcioverify/internal/config"
	"github.com/sigstore/fulcioverify/pkg/signers"
	"github.com/sigstore/sigstore/pkg/cryptoutils"
)

type options struct {
	Config *config.Config

	FlagKey    string
	FlagDigest string
	FlagHash   string
	FlagOutput string
}

func (o *options) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.FlagKey, "key", "k", "", "path to a PEM encoded EC private key")
	cmd.Flags().StringVar(&o.FlagDigest, "digest", "", "hex encoded artifact digest to sign instead of an artifact file")
	cmd.Flags().StringVar(&o.FlagHash, "hash", "sha256", "hash algorithm: sha256, sha384 or sha512")
	cmd.Flags().StringVarP(&o.FlagOutput, "output", "o", "", "write the raw signature to this file instead of printing base64 to stdout")
}

func New(cfg *config.Config) *cobra.Command {
	o := &options{Config: cfg}

	cmd := &cobra.Command{
		Use:   "sign [artifact]",
		Short: "produce an ECDSA signature over an artifact or digest",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			artifact := ""
			if len(args) == 1 {
				artifact = args[0]
			}
			return o.Run(cmd, artifact)
		},
	}
	o.AddFlags(cmd)
	return cmd
}

func hashAlgorithm(name string) (crypto.Hash, error) {
	switch name {
	case "sha256":
		return crypto.SHA256, nil
	case "sha384":
		return crypto.SHA384, nil
	case "sha512":
		return crypto.SHA512, nil
	}
	return 0, fmt.Errorf("unsupported hash algorithm %q", name)
}

func (o *options) Run(cmd *cobra.Command, artifactPath string) error {
	if o.FlagKey == "" {
		return fmt.Errorf("a signing key is required: pass --key")
	}
	if (artifactPath == "") == (o.FlagDigest == "") {
		return fmt.Errorf("exactly one of an artifact file or --digest is required")
	}

	hash, err := hashAlgorithm(o.FlagHash)
	if err != nil {
		return err
	}

	raw, err := os.ReadFile(o.FlagKey) // nolint:gosec
	if err != nil {
		return fmt.Errorf("reading signing key: %w", err)
	}
	priv, err := cryptoutils.UnmarshalPEMToPrivateKey(raw, cryptoutils.SkipPassword)
	if err != nil {
		return fmt.Errorf("parsing signing key: %w", err)
	}
	ecKey, ok := priv.(*ecdsa.PrivateKey)
	if !ok {
		return fmt.Errorf("signing key is %T, expected an EC key", priv)
	}

	signer, err := signers.NewECDSASigner(ecKey, hash)
	if err != nil {
		return err
	}

	var sig []byte
	if o.FlagDigest != "" {
		digest, err := hex.DecodeString(o.FlagDigest)
		if err != nil {
			return fmt.Errorf("decoding digest: %w", err)
		}
		sig, err = signer.SignDigest(digest)
		if err != nil {
			return err
		}
	} else {
		artifact, err := os.ReadFile(artifactPath) // nolint:gosec
		if err != nil {
			return fmt.Errorf("reading artifact: %w", err)
		}
		sig, err = signer.Sign(artifact)
		if err != nil {
			return err
		}
	}

	if o.FlagOutput != "" {
		return os.WriteFile(o.FlagOutput, sig, 0o600)
	}
	fmt.Fprintln(cmd.OutOrStdout(), base64.StdEncoding.EncodeToString(sig))
	return nil
}
