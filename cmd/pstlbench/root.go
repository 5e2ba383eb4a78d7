// Copyright 2025 go-pstl Authors
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


package main

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewRootCommand returns the pstlbench command with its flags bound to viper.
// Every flag may also be set from a PSTLBENCH_* environment variable or from a
// pstlbench.yaml config file.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pstlbench",
		Short: "Benchmark parallel algorithms across execution policies",
		Long: `pstlbench runs a set of algorithms over random input under the seq, unseq, par,
par_unseq and offload policies, checks every result against the sequential one
and prints the selected backend with its timings.`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return readConfig(viper.GetString(configFlag))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return run(cmd.Context(), cmd.OutOrStdout(), cfg)
		},
		SilenceUsage: true,
	}

	viper.SetEnvPrefix("PSTLBENCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	bindFlags(cmd)

	return cmd
}

// readConfig loads path, or pstlbench.yaml from the working directory or
// $HOME/.pstlbench when path is empty. A missing default config is not an error.
func readConfig(path string) error {
	if path != "" {
		viper.SetConfigFile(path)
		return viper.ReadInConfig()
	}

	viper.SetConfigName("pstlbench")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.pstlbench")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
	}
	return nil
}
