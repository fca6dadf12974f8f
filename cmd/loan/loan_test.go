package loan

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"fjacquet/expense-manager/internal/config"
	"fjacquet/expense-manager/internal/container"
	"fjacquet/expense-manager/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContainer(t *testing.T) *container.Container {
	t.Helper()
	cfg := config.Default()
	cfg.Data.File = filepath.Join(t.TempDir(), "data.json")
	cfg.Data.BackupDir = t.TempDir()

	c, err := container.NewContainer(cfg, container.WithLogger(logging.NewMockLogger()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestLoanCommand_Metadata(t *testing.T) {
	assert.Equal(t, "loan", Cmd.Use)

	names := make([]string, 0, len(Cmd.Commands()))
	for _, sub := range Cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{"add", "repaid", "delete", "list"}, names)
	assert.NotNil(t, addCmd.Flags().Lookup("due"))
	assert.Equal(t, "false", listCmd.Flags().Lookup("open").DefValue)
}

func TestRunAdd(t *testing.T) {
	c := newTestContainer(t)
	var out bytes.Buffer

	require.NoError(t, runAdd(c, &out, Options{Name: "Bob", Amount: "200", DueDate: "2024-04-01"}))

	loans := c.GetAccount().Loans()
	require.Len(t, loans, 1)
	assert.Equal(t, "Bob", loans[0].Name)
	require.True(t, loans[0].HasDueDate())
	assert.Equal(t, "2024-04-01", *loans[0].DueDate)
	assert.False(t, loans[0].Repaid)
	assert.Contains(t, out.String(), "Added loan "+loans[0].ID)

	assert.Error(t, runAdd(c, &out, Options{Name: "Eve", Amount: "-1"}))
	assert.Error(t, runAdd(c, &out, Options{Name: "Eve", Amount: "1", DueDate: "next week"}))
	assert.Len(t, c.GetAccount().Loans(), 1)
}

func TestRunRepaidAndDelete(t *testing.T) {
	c := newTestContainer(t)
	loan, err := c.GetAccount().AddLoan("Bob", 50, "", "", "")
	require.NoError(t, err)
	var out bytes.Buffer

	require.NoError(t, runRepaid(c, &out, loan.ID))
	assert.True(t, c.GetAccount().Loans()[0].Repaid)
	assert.ErrorContains(t, runRepaid(c, &out, "missing"), "loan missing not found")

	require.NoError(t, runDelete(c, &out, loan.ID))
	assert.Empty(t, c.GetAccount().Loans())
	assert.ErrorContains(t, runDelete(c, &out, loan.ID), "not found")
}

func TestRunList(t *testing.T) {
	c := newTestContainer(t)
	acct := c.GetAccount()
	_, err := acct.AddLoan("Alice", 100, "2020-01-01", "2020-02-01", "")
	require.NoError(t, err)
	_, err = acct.AddLoan("Bob", 30, "", "2999-01-01", "")
	require.NoError(t, err)
	repaid, err := acct.AddLoan("Carol", 10, "2020-01-01", "2020-01-15", "")
	require.NoError(t, err)
	_, err = acct.MarkLoanRepaid(repaid.ID)
	require.NoError(t, err)

	t.Run("all", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, runList(c, &out, Options{}))
		assert.Contains(t, out.String(), "Alice")
		assert.Contains(t, out.String(), "Carol")
		assert.NotContains(t, out.String(), "[loan]")
	})

	t.Run("open only", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, runList(c, &out, Options{Open: true}))
		assert.NotContains(t, out.String(), "Carol")
	})

	t.Run("due reminders", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, runList(c, &out, Options{Due: true}))
		assert.Equal(t, 1, strings.Count(out.String(), "[loan]"))
		assert.Contains(t, out.String(), "[loan] loan due: Alice amount 100.00 due 2020-02-01")
	})

	t.Run("empty", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, runList(newTestContainer(t), &out, Options{}))
		assert.Equal(t, "No loans.\n", out.String())
	})
}
