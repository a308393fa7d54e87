package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"

	"github.com/plumvelvet/capacities-cli/internal/api"
	"github.com/plumvelvet/capacities-cli/internal/cache"
	"github.com/plumvelvet/capacities-cli/internal/secrets"
)

// harness wires buffers, a blank config, an empty environment, and a fake
// client into the root command for one test run.
type harness struct {
	out *bytes.Buffer
	err *bytes.Buffer
	in  *bytes.Buffer
}

func newHarness(t *testing.T, fake *fakeClient) *harness {
	t.Helper()

	restore := snapshotCLIState()
	t.Cleanup(restore)

	h := &harness{
		out: &bytes.Buffer{},
		err: &bytes.Buffer{},
		in:  &bytes.Buffer{},
	}
	rootCmd.SetOut(h.out)
	rootCmd.SetErr(h.err)
	rootCmd.SetIn(h.in)
	rootCmd.SetContext(withIO(context.Background(), h.in, h.out, h.err))

	prevEnvGet := envGet
	envGet = func(key string) string { return "" }
	t.Cleanup(func() { envGet = prevEnvGet })

	prevOpenStore := openSecretsStore
	openSecretsStore = func() (secrets.Store, error) {
		return nil, errors.New("no credential store in tests")
	}
	t.Cleanup(func() { openSecretsStore = prevOpenStore })

	prevNewClient := newClientFunc
	newClientFunc = func(token string, opts ...api.ClientOption) api.CapacitiesAPI {
		return fake
	}
	t.Cleanup(func() { newClientFunc = prevNewClient })

	prevOpenCache := openCacheFunc
	cacheDir := t.TempDir()
	openCacheFunc = func() (*cache.Cache, error) {
		return cache.New(cacheDir), nil
	}
	t.Cleanup(func() { openCacheFunc = prevOpenCache })

	return h
}

func (h *harness) run(t *testing.T, args ...string) error {
	t.Helper()

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(""), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	rootCmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	return rootCmd.Execute()
}

func snapshotCLIState() func() {
	prevSpace := spaceID
	prevToken := apiToken
	prevOutputFmt := outputFmt
	prevOutputType := outputType
	prevDebug := debug
	prevConfig := configFile
	prevQueryExpr := queryExpr
	prevQueryFile := queryFile
	prevErrorFmt := errorFmt
	prevQuiet := quietFlag
	prevYes := yesFlag
	prevResultLimit := resultLimit
	prevClient := client

	prevOut := rootCmd.OutOrStdout()
	prevErr := rootCmd.ErrOrStderr()
	prevIn := rootCmd.InOrStdin()
	prevCtx := rootCmd.Context()

	return func() {
		spaceID = prevSpace
		apiToken = prevToken
		outputFmt = prevOutputFmt
		outputType = prevOutputType
		debug = prevDebug
		configFile = prevConfig
		queryExpr = prevQueryExpr
		queryFile = prevQueryFile
		errorFmt = prevErrorFmt
		quietFlag = prevQuiet
		yesFlag = prevYes
		resultLimit = prevResultLimit
		client = prevClient

		rootCmd.SetOut(prevOut)
		rootCmd.SetErr(prevErr)
		rootCmd.SetIn(prevIn)
		rootCmd.SetContext(prevCtx)
		rootCmd.SetArgs(nil)
		resetFlagChanges(rootCmd)
	}
}

func resetFlagChanges(cmdFlagSet interface {
	Flags() *pflag.FlagSet
	PersistentFlags() *pflag.FlagSet
	InheritedFlags() *pflag.FlagSet
},
) {
	if cmdFlagSet == nil {
		return
	}
	cmdFlagSet.Flags().VisitAll(func(f *pflag.Flag) {
		f.Changed = false
	})
	cmdFlagSet.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		f.Changed = false
	})
	cmdFlagSet.InheritedFlags().VisitAll(func(f *pflag.Flag) {
		f.Changed = false
	})
}
