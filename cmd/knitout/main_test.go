package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/aretw0/knitout/internal/cli"
	"github.com/aretw0/knitout/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Cleanup(func() { globals = cli.GlobalOptions{EnvFile: ".env"} })

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "knitout version "))
}

func TestSwatchList(t *testing.T) {
	out, _, err := execute(t, "swatch")
	require.NoError(t, err)
	assert.Contains(t, out, "stockinette")
}

func TestCompile(t *testing.T) {
	path := testutils.WriteFile(t, "garter.yaml", "width: 4\nrows: [k*, p*]\n")

	out, _, err := execute(t, "compile", path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, ";!knitout-2\n"))
	assert.Contains(t, out, "xfer ")
}

func TestValidate_Fails(t *testing.T) {
	path := testutils.WriteFile(t, "bad.yaml", "width: 2\nrows: [zz]\n")

	_, errOut, err := execute(t, "validate", path)
	assert.Error(t, err)
	assert.Contains(t, errOut, "bad.yaml")
}

func TestBadLogLevel(t *testing.T) {
	_, _, err := execute(t, "courses", "x.yaml", "--log-level", "loud")
	assert.ErrorContains(t, err, "unknown log level")
}
