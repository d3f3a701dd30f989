/*
Copyright © 2025 Honoka Toda, Shinya Ishitobi

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"

	"github.com/scintirete/protodts/internal/compile"
	"github.com/scintirete/protodts/internal/config"
	"github.com/spf13/cobra"
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate [schema]",
	Short: "Generate declarations from a schema",
	Long: `Parse a protobuf schema and write TypeScript declarations (or an OpenAPI document with --target openapi).
The schema defaults to ` + config.DefaultInput + ` and the output to ` + config.DefaultTSOutput + `.
Use "-" as the schema to read it from stdin.

Constructs outside the supported subset are skipped and logged as warnings; --strict makes them fatal.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if len(args) == 1 {
			cfg.Input = args[0]
		}
		if err := applyGenerateFlags(cmd, cfg); err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		logger := newLogger(cmd.ErrOrStderr(), cfg)
		if cfg.ConfigFilePath != "" {
			logger.Debug("Loaded configuration from file.", "path", cfg.ConfigFilePath)
		}

		out, err := compile.Run(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
		return nil
	},
}

func applyGenerateFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	stringFlags := map[string]*string{
		"output":         &cfg.Output,
		"target":         &cfg.Target,
		"client-suffix":  &cfg.ClientSuffix,
		"result-wrapper": &cfg.ResultWrapper,
	}
	for name, dst := range stringFlags {
		if !flags.Changed(name) {
			continue
		}
		v, err := flags.GetString(name)
		if err != nil {
			return err
		}
		*dst = v
	}

	boolFlags := map[string]*bool{
		"strict":       &cfg.Strict,
		"check":        &cfg.Check,
		"no-timestamp": &cfg.OmitTimestamp,
	}
	for name, dst := range boolFlags {
		if !flags.Changed(name) {
			continue
		}
		v, err := flags.GetBool(name)
		if err != nil {
			return err
		}
		*dst = v
	}
	return nil
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringP("output", "o", "", "write the generated declarations to this file (default "+config.DefaultTSOutput+")")
	generateCmd.Flags().String("target", config.TargetTS, "output target: ts or openapi")
	generateCmd.Flags().String("client-suffix", "", "suffix for client interface names (default Client)")
	generateCmd.Flags().String("result-wrapper", "", "generic type wrapping rpc responses (default Promise)")
	generateCmd.Flags().Bool("strict", false, "fail when any construct is skipped")
	generateCmd.Flags().Bool("check", false, "cross-check the schema with a full protobuf compiler and log what the parser dropped")
	generateCmd.Flags().Bool("no-timestamp", false, "omit the generation timestamp from the header")
}
