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

package version // nolint:revive

import "runtime/debug"

// version is the fallback when no module version is stamped in, either by
// go install or via go ldflags.
var version = "devel"

// Info describes how this binary was built.
type Info struct {
	Version   string `json:"version"`
	GoVersion string `json:"goVersion,omitempty"`
	Revision  string `json:"revision,omitempty"`
	BuildDate string `json:"buildDate,omitempty"`
}

// GetVersionInfo reports the module version and VCS metadata recorded in
// the binary's build info.
func GetVersionInfo() Info {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return Info{Version: version}
	}
	return newInfo(bi)
}

func newInfo(bi *debug.BuildInfo) Info {
	info := Info{
		Version:   version,
		GoVersion: bi.GoVersion,
	}

	// https://github.com/golang/go/issues/29228
	if bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}

	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			info.Revision = s.Value
		case "vcs.time":
			info.BuildDate = s.Value
		}
	}
	return info
}
