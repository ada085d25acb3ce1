// Copyright 2026 The corekernel Authors.
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

// Binary kernelctl boots the thread core standalone, for manual
// experimentation.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"corekernel.dev/corekernel/internal/config"
)

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(new(bootCommand), "")

	flag.Parse()
	os.Exit(int(subcommands.Execute(context.Background())))
}

// loadConfig resolves a Config from defaults, an optional -config TOML
// file, and the flags already parsed onto cfg by RegisterFlags.
func loadConfig(cfg *config.Config, configPath string) error {
	if configPath != "" {
		if err := cfg.LoadFile(configPath); err != nil {
			return err
		}
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("kernelctl: %w", err)
	}
	return nil
}
