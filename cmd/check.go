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

	"github.com/scintirete/protodts/internal/check"
	"github.com/scintirete/protodts/internal/load"
	"github.com/scintirete/protodts/internal/parser"
	"github.com/spf13/cobra"
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check <schema>",
	Short: "Compile a schema with a full protobuf compiler",
	Long: `Compile the schema with a complete protobuf compiler and compare the result with what protodts parses.
Prints compiler errors, constructs the parser skipped, and top-level declarations the parser dropped.
Exits non-zero when the compiler rejects the schema.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger := newLogger(cmd.ErrOrStderr(), cfg).With("component", "check")

		src, err := load.Load(args[0])
		if err != nil {
			return err
		}
		report, err := check.Check(src.Path, src.Text)
		if err != nil {
			return err
		}
		logger.Debug("Compiled schema.", "path", src.Path, "errors", len(report.Errors), "declarations", len(report.Declarations))

		w := cmd.OutOrStdout()
		for _, e := range report.Errors {
			fmt.Fprintf(w, "error: %v\n", e)
		}

		result := parser.Parse(src.Text)
		for _, d := range result.Skipped {
			fmt.Fprintf(w, "skipped: %s\n", d)
		}
		for _, d := range report.Missing(result.Model) {
			fmt.Fprintf(w, "dropped: %s %s\n", d.Kind, d.Name)
		}

		if !report.OK() {
			return fmt.Errorf("%s: protobuf compiler reported %d error(s)", src.Path, len(report.Errors))
		}
		fmt.Fprintf(w, "%s: ok (%d declarations)\n", src.Path, len(report.Declarations))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
