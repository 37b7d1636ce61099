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

// Package serve runs the conformance harness: an HTTP door that executes
// CLI invocations in-process under a fixed fake clock and hands back their
// captured output.
package serve

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	bclock "github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sigstore/fulcioverify/internal/clock"
	"github.com/sigstore/fulcioverify/internal/config"
	"github.com/sigstore/fulcioverify/internal/io"
)

// CommandFactory builds a fresh root command wired to the given streams.
// The handler needs a new command per request so flag state never leaks
// between executions.
type CommandFactory func(s *io.Streams) *cobra.Command

type options struct {
	Config *config.Config

	FlagListenAddr string
}

func (o *options) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.FlagListenAddr, "listen", "", "listen address for the conformance server")
}

func New(cfg *config.Config, newCommand CommandFactory) *cobra.Command {
	o := &options{Config: cfg}

	cmd := &cobra.Command{
		Use:   "conformance-server",
		Short: "serve the conformance test harness",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			addr := o.FlagListenAddr
			if addr == "" {
				addr = o.Config.ListenAddr
			}
			h := &handler{
				log:        logrus.New(),
				newCommand: newCommand,
			}
			mux := http.NewServeMux()
			mux.HandleFunc("GET /", h.health)
			mux.HandleFunc("POST /execute", h.execute)

			h.log.WithField("addr", addr).Info("conformance server listening")
			srv := &http.Server{
				Addr:              addr,
				Handler:           mux,
				ReadHeaderTimeout: 10 * time.Second,
			}
			return srv.ListenAndServe()
		},
	}
	o.AddFlags(cmd)
	return cmd
}

type executeRequest struct {
	Args     []string `json:"args"`
	Faketime string   `json:"faketime"`
	Cwd      string   `json:"cwd"`
}

type executeResponse struct {
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	ExitCode int    `json:"exitCode"`
}

type handler struct {
	// Requests are serialized: the fake clock and working directory are
	// process-wide, so parallel executions would race them.
	mu         sync.Mutex
	log        *logrus.Logger
	newCommand CommandFactory
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	fmt.Fprintln(w, "OK")
}

func (h *handler) execute(w http.ResponseWriter, r *http.Request) {
	var req executeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("decoding request: %v", err), http.StatusBadRequest)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.log.WithField("args", req.Args).Info("execute")

	if req.Faketime != "" {
		sec, err := strconv.ParseInt(req.Faketime, 10, 64)
		if err != nil {
			http.Error(w, fmt.Sprintf("parsing faketime: %v", err), http.StatusBadRequest)
			return
		}
		mock := bclock.NewMock()
		mock.Set(time.Unix(sec, 0).UTC())
		clock.Set(mock)
	}
	defer clock.Reset()

	if req.Cwd != "" {
		prev, err := os.Getwd()
		if err != nil {
			http.Error(w, fmt.Sprintf("getting cwd: %v", err), http.StatusInternalServerError)
			return
		}
		if err := os.Chdir(req.Cwd); err != nil {
			http.Error(w, fmt.Sprintf("changing cwd: %v", err), http.StatusBadRequest)
			return
		}
		defer os.Chdir(prev) // nolint:errcheck
	}

	streams, stdout, stderr := io.Captured(nil)
	cmd := h.newCommand(streams)
	cmd.SetArgs(req.Args)

	resp := executeResponse{}
	if err := cmd.Execute(); err != nil {
		// cobra already printed the error to the command's stderr
		resp.ExitCode = 1
	}
	resp.Stdout = stdout.String()
	resp.Stderr = stderr.String()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.log.WithError(err).Error("writing response")
	}
}
