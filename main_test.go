package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"fjacquet/expense-manager/cmd/root"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCLI_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	chdir(t, dir)
	t.Cleanup(func() {
		root.AppContainer = nil
		root.AppConfig = nil
		root.Cmd.SetArgs(nil)
		root.Cmd.SetOut(nil)
		root.Cmd.SetErr(nil)
	})
	root.AppContainer = nil
	data := filepath.Join(dir, "ledger.json")

	run := func(args ...string) string {
		t.Helper()
		var out bytes.Buffer
		root.Cmd.SetOut(&out)
		root.Cmd.SetErr(&out)
		root.Cmd.SetArgs(append([]string{"--data", data}, args...))
		require.NoError(t, root.Cmd.Execute(), out.String())
		return out.String()
	}

	run("settings", "overcat", "add", "Games")
	out := run("record", "add", "--amount", "60", "--category", "Games")
	assert.Contains(t, out, "[over] possible overconsumption: Games, amount 60.00")

	run("record", "add", "--amount", "1'000", "--kind", "income", "--category", "Salary")
	assert.Contains(t, run("stats", "balance"), "Balance: 940.00")

	raw, err := os.ReadFile(data)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"overconsumption_mark": true`)
}
