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
	"fmt"
	"runtime"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	configFlag       = "config"
	sizeFlag         = "size"
	repeatFlag       = "repeat"
	seedFlag         = "seed"
	policiesFlag     = "policies"
	algorithmsFlag   = "algorithms"
	memoryFlag       = "memory"
	computeUnitsFlag = "compute-units"
	segmentFlag      = "segment"
	grainFlag        = "grain-size"
	timeoutFlag      = "timeout"
	metricsOutFlag   = "metrics-out"
	logFormatFlag    = "log-format"
	logLevelFlag     = "log-level"
)

var (
	allPolicies = []string{"seq", "unseq", "par", "par_unseq", "offload"}
	memoryKinds = []string{"usm", "buffer"}
)

// Config holds the settings of one pstlbench run.
type Config struct {
	Size         int
	Repeat       int
	Seed         uint64
	Policies     []string
	Algorithms   []string
	Memory       string
	ComputeUnits int
	Segment      int
	GrainSize    int
	Timeout      time.Duration
	MetricsOut   string
	LogFormat    string
	LogLevel     string
}

// DefaultConfig returns the settings used when no flag, variable or config file
// overrides them.
func DefaultConfig() Config {
	return Config{
		Size:         1 << 20,
		Repeat:       3,
		Seed:         1,
		Policies:     allPolicies,
		Algorithms:   benchmarkNames(),
		Memory:       "usm",
		ComputeUnits: runtime.NumCPU(),
		Segment:      4096,
		Timeout:      5 * time.Minute,
		LogFormat:    "text",
		LogLevel:     "info",
	}
}

// mustBindPFlag binds key to flag and panics if the binding fails.
func mustBindPFlag(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		panic("failed to bind pflag: " + err.Error())
	}
}

func bindFlags(command *cobra.Command) {
	def := DefaultConfig()
	flags := command.Flags()

	flags.String(configFlag, "", "path of a YAML config file (default ./pstlbench.yaml)")
	mustBindPFlag(configFlag, flags.Lookup(configFlag))

	flags.Int(sizeFlag, def.Size, "the number of elements in every input range")
	mustBindPFlag(sizeFlag, flags.Lookup(sizeFlag))

	flags.Int(repeatFlag, def.Repeat, "the number of timed runs per algorithm and policy")
	mustBindPFlag(repeatFlag, flags.Lookup(repeatFlag))

	flags.Uint64(seedFlag, def.Seed, "the seed of the random input")
	mustBindPFlag(seedFlag, flags.Lookup(seedFlag))

	flags.StringSlice(policiesFlag, def.Policies, "the execution policies to run")
	mustBindPFlag(policiesFlag, flags.Lookup(policiesFlag))

	flags.StringSlice(algorithmsFlag, def.Algorithms, "the algorithms to run")
	mustBindPFlag(algorithmsFlag, flags.Lookup(algorithmsFlag))

	flags.String(memoryFlag, def.Memory, "the device memory used by the offload policy: 'usm' or 'buffer'")
	mustBindPFlag(memoryFlag, flags.Lookup(memoryFlag))

	flags.Int(computeUnitsFlag, def.ComputeUnits, "the compute units of the emulated device")
	mustBindPFlag(computeUnitsFlag, flags.Lookup(computeUnitsFlag))

	flags.Int(segmentFlag, def.Segment, "the segment length of device buffers")
	mustBindPFlag(segmentFlag, flags.Lookup(segmentFlag))

	flags.Int(grainFlag, def.GrainSize, "the minimum number of elements per parallel chunk (0 keeps the current value)")
	mustBindPFlag(grainFlag, flags.Lookup(grainFlag))

	flags.Duration(timeoutFlag, def.Timeout, "a timeout after which the run is abandoned")
	mustBindPFlag(timeoutFlag, flags.Lookup(timeoutFlag))

	flags.String(metricsOutFlag, def.MetricsOut, "write the dispatch and device counters to this file in the Prometheus text format")
	mustBindPFlag(metricsOutFlag, flags.Lookup(metricsOutFlag))

	flags.String(logFormatFlag, def.LogFormat, "the log format to output logs in: 'text' or 'json'")
	mustBindPFlag(logFormatFlag, flags.Lookup(logFormatFlag))

	flags.String(logLevelFlag, def.LogLevel, "the log level to use")
	mustBindPFlag(logLevelFlag, flags.Lookup(logLevelFlag))
}

// loadConfig reads the bound settings from viper and validates them.
func loadConfig() (Config, error) {
	cfg := Config{
		Size:         viper.GetInt(sizeFlag),
		Repeat:       viper.GetInt(repeatFlag),
		Seed:         viper.GetUint64(seedFlag),
		Policies:     lo.Uniq(viper.GetStringSlice(policiesFlag)),
		Algorithms:   lo.Uniq(viper.GetStringSlice(algorithmsFlag)),
		Memory:       viper.GetString(memoryFlag),
		ComputeUnits: viper.GetInt(computeUnitsFlag),
		Segment:      viper.GetInt(segmentFlag),
		GrainSize:    viper.GetInt(grainFlag),
		Timeout:      viper.GetDuration(timeoutFlag),
		MetricsOut:   viper.GetString(metricsOutFlag),
		LogFormat:    viper.GetString(logFormatFlag),
		LogLevel:     viper.GetString(logLevelFlag),
	}
	return cfg, cfg.Verify()
}

// Verify returns an error naming the first invalid setting.
func (c Config) Verify() error {
	if c.Size < 0 {
		return fmt.Errorf("--%s must not be negative, got %d", sizeFlag, c.Size)
	}
	if c.Repeat < 1 {
		return fmt.Errorf("--%s must be at least 1, got %d", repeatFlag, c.Repeat)
	}
	if c.ComputeUnits < 1 {
		return fmt.Errorf("--%s must be at least 1, got %d", computeUnitsFlag, c.ComputeUnits)
	}
	if c.Segment < 1 {
		return fmt.Errorf("--%s must be at least 1, got %d", segmentFlag, c.Segment)
	}
	if c.GrainSize < 0 {
		return fmt.Errorf("--%s must not be negative, got %d", grainFlag, c.GrainSize)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("--%s must be positive, got %s", timeoutFlag, c.Timeout)
	}
	if unknown, _ := lo.Difference(c.Policies, allPolicies); len(unknown) > 0 {
		return fmt.Errorf("unknown policies %v, want a subset of %v", unknown, allPolicies)
	}
	if unknown, _ := lo.Difference(c.Algorithms, benchmarkNames()); len(unknown) > 0 {
		return fmt.Errorf("unknown algorithms %v, want a subset of %v", unknown, benchmarkNames())
	}
	if !lo.Contains(memoryKinds, c.Memory) {
		return fmt.Errorf("unknown --%s %q, want one of %v", memoryFlag, c.Memory, memoryKinds)
	}
	return nil
}
