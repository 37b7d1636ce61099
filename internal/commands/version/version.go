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

package version

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sigstore/fulcioverify/internal/config"
	"github.com/sigstore/fulcioverify/pkg/version"
)

func New(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "print fulcioverify version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			v := version.GetVersionInfo()
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "fulcioverify version", v.Version)
			if v.Revision != "" {
				fmt.Fprintln(out, "revision:", v.Revision)
			}
			if v.GoVersion != "" {
				fmt.Fprintln(out, "go version:", v.GoVersion)
			}
			fmt.Fprintln(out, "parsed config:")
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")

			return enc.Encode(cfg)
		},
	}
	return cmd
}
