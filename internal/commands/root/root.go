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

package root

import (
	"github.com/spf13/cobra"

	"github.com/sigstore/fulcioverify/internal/commands/serve"
	"github.com/sigstore/fulcioverify/internal/commands/sign"
	"github.com/sigstore/fulcioverify/internal/commands/verifycert"
	"github.com/sigstore/fulcioverify/internal/commands/version"
	"github.com/sigstore/fulcioverify/internal/config"
	"github.com/sigstore/fulcioverify/internal/io"
)

func New(cfg *config.Config, s *io.Streams) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "fulcioverify",
		Short:             "Verify Fulcio signing certificates and sign artifacts",
		DisableAutoGenTag: true,
		SilenceUsage:      true,
	}
	rootCmd.SetIn(s.In)
	rootCmd.SetOut(s.Out)
	rootCmd.SetErr(s.Err)

	rootCmd.AddCommand(verifycert.New(cfg))
	rootCmd.AddCommand(sign.New(cfg))
	rootCmd.AddCommand(version.New(cfg))
	rootCmd.AddCommand(serve.New(cfg, func(s *io.Streams) *cobra.Command {
		// each conformance execution gets a fresh command tree so flag
		// state cannot leak between requests
		return New(config.Get(), s)
	}))

	return rootCmd
}
