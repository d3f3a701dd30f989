package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/scintirete/protodts/internal/test"
)

// execute runs the root command with args and returns stdout and stderr.
// Flag values are reset afterwards since the commands are package globals.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	origOut := rootCmd.OutOrStdout()
	origErr := rootCmd.ErrOrStderr()

	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)

	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(origOut)
		rootCmd.SetErr(origErr)
		resetFlags(rootCmd)
	})

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// isolate runs the test from the fixture directory with no config file or
// PROTODTS_ settings in effect.
func isolate(t *testing.T) {
	t.Helper()
	t.Chdir(test.FixtureDir(t))
	for _, kv := range os.Environ() {
		if name, _, _ := strings.Cut(kv, "="); strings.HasPrefix(name, "PROTODTS_") {
			t.Setenv(name, "")
			os.Unsetenv(name)
		}
	}
}

func TestGenerateCommand(t *testing.T) {
	isolate(t)

	outputPath := filepath.Join(t.TempDir(), "types", "scintirete.d.ts")
	stdout, _, err := execute(t, "generate", "--no-timestamp", "--output", outputPath, "scintirete.proto")
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if stdout != "wrote "+outputPath+"\n" {
		t.Errorf("stdout = %q", stdout)
	}

	got, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatal(err)
	}

	want := test.ReadGolden(t, "scintirete.d.ts.golden")
	if diff := cmp.Diff(want, string(got)); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateCommandConfigFile(t *testing.T) {
	isolate(t)

	dir := t.TempDir()
	outputPath := filepath.Join(dir, "from-config.d.ts")
	configPath := filepath.Join(dir, "protodts.yaml")
	body := "input: scintirete.proto\noutput: " + outputPath + "\nomit_timestamp: true\nclient_suffix: Stub\n"
	if err := os.WriteFile(configPath, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, _, err := execute(t, "generate", "--config", configPath, "--result-wrapper", "Observable"); err != nil {
		t.Fatalf("execute failed: %v", err)
	}

	got, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"export interface ScintireteServiceStub {",
		"  Search(request: SearchRequest): Observable<SearchResponse>;",
	} {
		if !strings.Contains(string(got), want) {
			t.Errorf("output does not contain %q", want)
		}
	}
}

func TestGenerateCommandEnvBelowFlags(t *testing.T) {
	isolate(t)

	dir := t.TempDir()
	t.Setenv("PROTODTS_TARGET", "openapi")
	t.Setenv("PROTODTS_OUTPUT", filepath.Join(dir, "env.yaml"))
	flagOutput := filepath.Join(dir, "flag.json")

	stdout, _, err := execute(t, "generate", "--output", flagOutput, "scintirete.proto")
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if stdout != "wrote "+flagOutput+"\n" {
		t.Errorf("stdout = %q", stdout)
	}
	data, err := os.ReadFile(flagOutput)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"openapi": "3.0.3"`) {
		t.Errorf("output is not an OpenAPI JSON document:\n%s", data)
	}
	if _, err := os.Stat(filepath.Join(dir, "env.yaml")); err == nil {
		t.Errorf("environment output path was used despite --output")
	}
}

func TestGenerateCommandStrict(t *testing.T) {
	isolate(t)

	outputPath := filepath.Join(t.TempDir(), "out.d.ts")
	_, _, err := execute(t, "generate", "--strict", "-o", outputPath, "scintirete.proto")
	if err == nil {
		t.Fatal("expected --strict to fail on the map field and streaming rpc")
	}
	if !strings.Contains(err.Error(), "map fields are not supported") {
		t.Errorf("error = %v", err)
	}
}

func TestGenerateCommandUnknownTarget(t *testing.T) {
	isolate(t)

	_, _, err := execute(t, "generate", "--target", "rust", "scintirete.proto")
	if err == nil || !strings.Contains(err.Error(), "unknown target") {
		t.Fatalf("err = %v, want unknown target", err)
	}
}

func TestCheckCommand(t *testing.T) {
	isolate(t)

	stdout, _, err := execute(t, "check", "scintirete.proto")
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	want := "skipped: 76:3: skipped field CollectionInfo: map fields are not supported\n" +
		"skipped: 109:3: skipped rpc ScintireteService.WatchCollection: response: streaming is not supported\n" +
		"scintirete.proto: ok (16 declarations)\n"
	if diff := cmp.Diff(want, stdout); diff != "" {
		t.Errorf("stdout mismatch (-want +got):\n%s", diff)
	}
}

func TestCheckCommandErrors(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "broken.proto")
	if err := os.WriteFile(path, []byte("syntax = \"proto3\";\nmessage Foo { Missing m = 1; }\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	stdout, _, err := execute(t, "check", path)
	if err == nil {
		t.Fatal("expected check to fail")
	}
	if !strings.HasPrefix(stdout, "error: ") {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := execute(t, "version")
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if stdout != "protodts dev\n" {
		t.Errorf("stdout = %q", stdout)
	}
}
