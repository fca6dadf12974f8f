// Package transfer handles exporting and importing account data
package transfer

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"fjacquet/expense-manager/cmd/root"
	"fjacquet/expense-manager/internal/common"
	"fjacquet/expense-manager/internal/container"
	"fjacquet/expense-manager/internal/report"

	"github.com/spf13/cobra"
)

// Transfer formats
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatCSV  = "csv"
)

// Options holds the export and import flag values
type Options struct {
	Format string
	Output string
	Input  string
}

var (
	exportOpts Options
	importOpts Options
)

// ExportCmd represents the export command
var ExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all data",
	Long: `Export all data as JSON or YAML, or the records alone as CSV.
Output goes to stdout unless --output is given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		return runExport(c, cmd.OutOrStdout(), exportOpts)
	},
}

// ImportCmd represents the import command
var ImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import data from a JSON snapshot or a CSV file",
	Long: `Import a JSON snapshot or CSV records. A JSON snapshot replaces records and
loans when it carries them and merges its settings; CSV rows are appended to
the existing records. The format defaults to the file extension.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		return runImport(c, cmd.OutOrStdout(), importOpts)
	},
}

func init() {
	ExportCmd.Flags().StringVarP(&exportOpts.Format, "format", "f", FormatJSON, "Export format (json, yaml or csv)")
	ExportCmd.Flags().StringVarP(&exportOpts.Output, "output", "o", "", "Output file (default stdout)")

	ImportCmd.Flags().StringVarP(&importOpts.Input, "input", "i", "", "File to import")
	ImportCmd.Flags().StringVarP(&importOpts.Format, "format", "f", "", "Input format (json or csv, default from extension)")
	_ = ImportCmd.MarkFlagRequired("input")
}

func runExport(c *container.Container, w io.Writer, opts Options) error {
	acct := c.GetAccount()
	format := strings.ToLower(opts.Format)

	if format == FormatCSV {
		codec := common.NewCSVCodec(c.GetConfig().CSVDelimiter(), c.GetLogger())
		records := acct.Records()
		if opts.Output == "" {
			return codec.WriteRecords(w, records)
		}
		if err := codec.WriteRecordsFile(opts.Output, records); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w, "Exported %d records to %s\n", len(records), opts.Output)
		return err
	}

	f, err := report.ParseFormat(format)
	if err != nil {
		return fmt.Errorf("unsupported export format: %s", opts.Format)
	}
	gen := report.NewGenerator(c.GetLogger())
	snapshot := acct.View()
	if opts.Output == "" {
		data, err := gen.Generate(snapshot, f)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}
	if err := gen.WriteFile(opts.Output, snapshot, f); err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "Exported %d records and %d loans to %s\n", len(snapshot.Records), len(snapshot.Loans), opts.Output)
	return err
}

func runImport(c *container.Container, w io.Writer, opts Options) error {
	format := strings.ToLower(opts.Format)
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(opts.Input)), ".")
	}
	acct := c.GetAccount()

	switch format {
	case FormatCSV:
		codec := common.NewCSVCodec(c.GetConfig().CSVDelimiter(), c.GetLogger())
		records, err := codec.ReadRecordsFile(opts.Input)
		if err != nil {
			return err
		}
		n, err := acct.AppendRecords(records)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "Imported %d records from %s\n", n, opts.Input)
		return err
	case FormatJSON:
		if err := acct.Import(opts.Input); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w, "Imported %s: %d records, %d loans\n", opts.Input, len(acct.Records()), len(acct.Loans()))
		return err
	default:
		return fmt.Errorf("unsupported import format %q: use --format json or csv", format)
	}
}
