// Package record handles the income and expense record commands
package record

import (
	"fmt"
	"io"
	"sort"

	"fjacquet/expense-manager/cmd/common"
	"fjacquet/expense-manager/cmd/root"
	"fjacquet/expense-manager/internal/container"
	"fjacquet/expense-manager/internal/models"
	"fjacquet/expense-manager/internal/reminder"

	"github.com/spf13/cobra"
)

// Options holds the record flag values
type Options struct {
	Amount    string
	Kind      string
	Category  string
	Timestamp string
	Note      string
	From      string
	To        string
}

var (
	addOpts    Options
	updateOpts Options
	listOpts   Options
)

// Cmd represents the record command
var Cmd = &cobra.Command{
	Use:   "record",
	Short: "Manage income and expense records",
	Long:  `Add, update, delete and list income and expense records.`,
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a record",
	Long: `Add an income or expense record. The timestamp defaults to now.
Records in an overconsumption category are flagged when they are created.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		return runAdd(c, cmd.OutOrStdout(), addOpts)
	},
}

var updateCmd = &cobra.Command{
	Use:   "update ID",
	Short: "Update a record",
	Long:  `Update the fields of a record. Only the flags given are changed.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		upd, err := buildUpdate(updateOpts, cmd.Flags().Changed)
		if err != nil {
			return err
		}
		return runUpdate(c, cmd.OutOrStdout(), args[0], upd)
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		return runDelete(c, cmd.OutOrStdout(), args[0])
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List records",
	Long:  `List records in timestamp order, optionally restricted to a date range and kind.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		return runList(c, cmd.OutOrStdout(), listOpts)
	},
}

func init() {
	addCmd.Flags().StringVarP(&addOpts.Amount, "amount", "a", "", "Amount (non-negative)")
	addCmd.Flags().StringVarP(&addOpts.Kind, "kind", "k", string(models.KindExpense), "Record kind (income or expense)")
	addCmd.Flags().StringVarP(&addOpts.Category, "category", "g", "", "Category")
	addCmd.Flags().StringVarP(&addOpts.Timestamp, "timestamp", "t", "", "ISO-8601 timestamp (default now)")
	addCmd.Flags().StringVarP(&addOpts.Note, "note", "n", "", "Free-text note")
	_ = addCmd.MarkFlagRequired("amount")
	_ = addCmd.MarkFlagRequired("category")

	updateCmd.Flags().StringVarP(&updateOpts.Amount, "amount", "a", "", "New amount")
	updateCmd.Flags().StringVarP(&updateOpts.Kind, "kind", "k", "", "New kind (income or expense)")
	updateCmd.Flags().StringVarP(&updateOpts.Category, "category", "g", "", "New category")
	updateCmd.Flags().StringVarP(&updateOpts.Timestamp, "timestamp", "t", "", "New ISO-8601 timestamp")
	updateCmd.Flags().StringVarP(&updateOpts.Note, "note", "n", "", "New note")

	listCmd.Flags().StringVar(&listOpts.From, "from", "", "Start date, inclusive")
	listCmd.Flags().StringVar(&listOpts.To, "to", "", "End date, inclusive for a plain date")
	listCmd.Flags().StringVarP(&listOpts.Kind, "kind", "k", "", "Only list records of this kind")
	listCmd.Flags().StringVarP(&listOpts.Category, "category", "g", "", "Only list records in this category")

	Cmd.AddCommand(addCmd, updateCmd, deleteCmd, listCmd)
}

func runAdd(c *container.Container, w io.Writer, opts Options) error {
	amount, err := common.ParseAmount("amount", opts.Amount)
	if err != nil {
		return err
	}
	kind, err := models.ParseKind(opts.Kind)
	if err != nil {
		return err
	}

	acct := c.GetAccount()
	rec, err := acct.AddRecord(amount, kind, opts.Category, opts.Timestamp, opts.Note)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Added record %s\n", rec.ID)

	checker := reminder.NewService(acct, reminder.NewSyncDispatcher(common.NotificationPrinter(w), c.GetLogger()),
		c.GetLogger(), reminder.WithMetrics(c.GetMetrics()))
	checker.CheckOverconsumption(rec)
	return nil
}

// buildUpdate collects the flags the user set into a record update.
func buildUpdate(opts Options, changed func(name string) bool) (models.RecordUpdate, error) {
	var upd models.RecordUpdate
	if changed("amount") {
		amount, err := common.ParseAmount("amount", opts.Amount)
		if err != nil {
			return upd, err
		}
		upd.Amount = &amount
	}
	if changed("kind") {
		kind, err := models.ParseKind(opts.Kind)
		if err != nil {
			return upd, err
		}
		upd.Kind = &kind
	}
	if changed("category") {
		category := opts.Category
		upd.Category = &category
	}
	if changed("timestamp") {
		timestamp := opts.Timestamp
		upd.Timestamp = &timestamp
	}
	if changed("note") {
		note := opts.Note
		upd.Note = &note
	}
	if upd.IsEmpty() {
		return upd, fmt.Errorf("nothing to update: give at least one of --amount, --kind, --category, --timestamp, --note")
	}
	return upd, nil
}

func runUpdate(c *container.Container, w io.Writer, id string, upd models.RecordUpdate) error {
	rec, err := c.GetAccount().UpdateRecord(id, upd)
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("record %s not found", id)
	}
	fmt.Fprintf(w, "Updated record %s\n", rec.ID)
	return nil
}

func runDelete(c *container.Container, w io.Writer, id string) error {
	removed, err := c.GetAccount().DeleteRecord(id)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("record %s not found", id)
	}
	fmt.Fprintf(w, "Deleted record %s\n", id)
	return nil
}

func runList(c *container.Container, w io.Writer, opts Options) error {
	r, err := common.ParseRange(opts.From, opts.To)
	if err != nil {
		return err
	}
	var kind models.Kind
	if opts.Kind != "" {
		if kind, err = models.ParseKind(opts.Kind); err != nil {
			return err
		}
	}

	var records []models.Record
	for _, rec := range c.GetStatistics().FilterRecords(r) {
		if kind != "" && rec.Kind != kind {
			continue
		}
		if opts.Category != "" && rec.Category != opts.Category {
			continue
		}
		records = append(records, rec)
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp < records[j].Timestamp
	})
	return common.PrintRecords(w, records)
}
