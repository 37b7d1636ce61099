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
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sigstore/fulcioverify/internal/clock"
	"github.com/sigstore/fulcioverify/internal/config"
	"github.com/sigstore/fulcioverify/pkg/fulcio"
	"github.com/sigstore/fulcioverify/pkg/trustroot"
	"github.com/sigstore/sigstore/pkg/cryptoutils"
)

type options struct {
	Config *config.Config

	FlagTrustRoot string
	FlagTrim      bool
	FlagQuorum    int
}

func (o *options) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.FlagTrustRoot, "trust-root", "", "path to the JSON trusted root document")
	cmd.Flags().BoolVar(&o.FlagTrim, "trim", false, "print the chain with any trusted parent suffix removed")
	cmd.Flags().IntVar(&o.FlagQuorum, "sct-quorum", 1, "number of valid SCTs required")
}

func New(cfg *config.Config) *cobra.Command {
	o := &options{Config: cfg}

	cmd := &cobra.Command{
		Use:   "verify-certificate <chain.pem>",
		Short: "verify a Fulcio signing certificate against the trusted root",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.Run(cmd, args[0])
		},
	}
	o.AddFlags(cmd)
	return cmd
}

func (o *options) Run(cmd *cobra.Command, chainPath string) error {
	trustRootPath := o.FlagTrustRoot
	if trustRootPath == "" {
		trustRootPath = o.Config.TrustRoot
	}
	if trustRootPath == "" {
		return fmt.Errorf("no trusted root configured: pass --trust-root or set FULCIOVERIFY_TRUST_ROOT")
	}

	root, err := trustroot.NewTrustedRootFromFile(trustRootPath)
	if err != nil {
		return err
	}

	verifier, err := fulcio.NewVerifier(root, fulcio.WithSCTQuorum(o.FlagQuorum))
	if err != nil {
		return err
	}

	raw, err := os.ReadFile(chainPath) // nolint:gosec
	if err != nil {
		return fmt.Errorf("reading certificate chain: %w", err)
	}
	chain, err := cryptoutils.UnmarshalCertificatesFromPEM(raw)
	if err != nil {
		return fmt.Errorf("parsing certificate chain: %w", err)
	}

	if err := verifier.VerifySigningCertificate(chain); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Verified OK at %s\n", clock.Now().Format(time.RFC3339))

	if o.FlagTrim {
		trimmed, err := verifier.TrimTrustedParent(chain)
		if err != nil {
			return err
		}
		for _, c := range trimmed {
			pem, err := cryptoutils.MarshalCertificateToPEM(c)
			if err != nil {
				return err
			}
			fmt.Fprint(out, string(pem))
		}
	}
	return nil
}
