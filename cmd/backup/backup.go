// Package backup handles the backup and restore commands
package backup

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"fjacquet/expense-manager/cmd/root"
	"fjacquet/expense-manager/internal/container"

	"github.com/spf13/cobra"
)

// Options holds the backup flag values
type Options struct {
	Path string
	Yes  bool
}

var (
	createOpts  Options
	restoreOpts Options
)

// Cmd represents the backup command
var Cmd = &cobra.Command{
	Use:   "backup",
	Short: "Create and restore backups",
	Long: `Create timestamped JSON backups of all data and restore them.
Restoring replaces all records and loans.`,
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Write a backup of all data",
	Long: `Write a backup of all data. Without --path the backup is named
backup_expense_YYYYMMDD_HHMMSS.json and written to the backup directory.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		return runCreate(c, cmd.OutOrStdout(), createOpts.Path)
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Restore data from a backup",
	Long: `Restore data from a backup file. Records and loans are replaced, settings are
merged over the current ones. Asks for confirmation unless --yes is given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		return runRestore(c, cmd.InOrStdin(), cmd.OutOrStdout(), restoreOpts)
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List backups in the backup directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		return runList(c, cmd.OutOrStdout())
	},
}

func init() {
	createCmd.Flags().StringVarP(&createOpts.Path, "path", "p", "", "Backup file (default auto-named in the backup directory)")

	restoreCmd.Flags().StringVarP(&restoreOpts.Path, "path", "p", "", "Backup file to restore")
	restoreCmd.Flags().BoolVarP(&restoreOpts.Yes, "yes", "y", false, "Do not ask for confirmation")
	_ = restoreCmd.MarkFlagRequired("path")

	Cmd.AddCommand(createCmd, restoreCmd, listCmd)
}

func runCreate(c *container.Container, w io.Writer, path string) error {
	written, err := c.GetAccount().CreateBackup(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Backup written to %s\n", written)
	return nil
}

func runRestore(c *container.Container, in io.Reader, w io.Writer, opts Options) error {
	if !opts.Yes && !confirm(in, w, "Restoring replaces all current records and loans. Continue? [y/N] ") {
		fmt.Fprintln(w, "Restore cancelled")
		return nil
	}
	acct := c.GetAccount()
	if err := acct.RestoreFromBackup(opts.Path); err != nil {
		return err
	}
	fmt.Fprintf(w, "Restored %d records and %d loans from %s\n", len(acct.Records()), len(acct.Loans()), opts.Path)
	return nil
}

func runList(c *container.Container, w io.Writer) error {
	backups, err := c.GetAccount().ListBackups()
	if err != nil {
		return err
	}
	if len(backups) == 0 {
		_, err := fmt.Fprintln(w, "No backups.")
		return err
	}
	for _, b := range backups {
		if _, err := fmt.Fprintln(w, b); err != nil {
			return err
		}
	}
	return nil
}

func confirm(in io.Reader, w io.Writer, prompt string) bool {
	fmt.Fprint(w, prompt)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
