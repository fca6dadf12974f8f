// Package stats handles the balance and statistics commands
package stats

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"fjacquet/expense-manager/cmd/common"
	"fjacquet/expense-manager/cmd/root"
	"fjacquet/expense-manager/internal/container"
	"fjacquet/expense-manager/internal/models"
	"fjacquet/expense-manager/internal/report"
	"fjacquet/expense-manager/internal/statistics"

	"github.com/spf13/cobra"
)

// FormatText prints aligned tables instead of a structured report.
const FormatText = "text"

// Options holds the stats flag values
type Options struct {
	From   string
	To     string
	Months int
	Year   int
	Format string
	Output string
}

var opts Options

// Cmd represents the stats command
var Cmd = &cobra.Command{
	Use:   "stats",
	Short: "Show balance and statistics",
	Long: `Show the current balance, income and expense totals, the expense breakdown
per category, and monthly or yearly summaries.`,
}

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show the current balance",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		return runBalance(c, cmd.OutOrStdout())
	},
}

var totalsCmd = &cobra.Command{
	Use:   "totals",
	Short: "Show income and expense totals",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		return runTotals(c, cmd.OutOrStdout(), opts)
	},
}

var breakdownCmd = &cobra.Command{
	Use:   "breakdown",
	Short: "Show expenses per category",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		return runBreakdown(c, cmd.OutOrStdout(), opts)
	},
}

var monthlyCmd = &cobra.Command{
	Use:   "monthly",
	Short: "Show income and expense for recent months",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		return runMonthly(c, cmd.OutOrStdout(), opts)
	},
}

var yearlyCmd = &cobra.Command{
	Use:   "yearly",
	Short: "Show the summary of a calendar year",
	Long: `Show the yearly summary: totals, the twelve-month trend and the category
breakdown. The summary can be written as JSON or YAML to a file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		return runYearly(c, cmd.OutOrStdout(), opts)
	},
}

func init() {
	for _, cmd := range []*cobra.Command{totalsCmd, breakdownCmd} {
		cmd.Flags().StringVar(&opts.From, "from", "", "Start date, inclusive")
		cmd.Flags().StringVar(&opts.To, "to", "", "End date, inclusive for a plain date")
	}
	for _, cmd := range []*cobra.Command{totalsCmd, breakdownCmd, monthlyCmd, yearlyCmd} {
		cmd.Flags().StringVarP(&opts.Format, "format", "f", FormatText, "Output format (text, json or yaml)")
		cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "Write json or yaml output to this file")
	}
	monthlyCmd.Flags().IntVarP(&opts.Months, "months", "m", statistics.DefaultMonths, "Number of months, ending with the current one")
	yearlyCmd.Flags().IntVarP(&opts.Year, "year", "y", 0, "Calendar year (default current year)")

	Cmd.AddCommand(balanceCmd, totalsCmd, breakdownCmd, monthlyCmd, yearlyCmd)
}

func runBalance(c *container.Container, w io.Writer) error {
	balance := c.GetAccount().Balance()
	c.GetMetrics().ObserveBalance(balance)
	_, err := fmt.Fprintf(w, "Balance: %s\n", models.FormatAmount(balance))
	return err
}

func runTotals(c *container.Container, w io.Writer, opts Options) error {
	r, err := common.ParseRange(opts.From, opts.To)
	if err != nil {
		return err
	}
	totals := c.GetStatistics().Totals(r)
	return render(c, w, opts, totals, func() error {
		return common.PrintAmounts(w, []string{"Income", "Expense", "Balance"}, map[string]float64{
			"Income":  totals.Income,
			"Expense": totals.Expense,
			"Balance": totals.Balance,
		})
	})
}

func runBreakdown(c *container.Container, w io.Writer, opts Options) error {
	r, err := common.ParseRange(opts.From, opts.To)
	if err != nil {
		return err
	}
	buckets := c.GetStatistics().CategoryBreakdown(r)
	return render(c, w, opts, buckets, func() error {
		if len(buckets) == 0 {
			_, err := fmt.Fprintln(w, "No records.")
			return err
		}
		labels := make([]string, 0, len(buckets))
		for label := range buckets {
			labels = append(labels, label)
		}
		sort.Strings(labels)
		return common.PrintAmounts(w, labels, buckets)
	})
}

func runMonthly(c *container.Container, w io.Writer, opts Options) error {
	series := c.GetStatistics().MonthlySeries(opts.Months)
	return render(c, w, opts, series, func() error {
		return printMonths(w, series)
	})
}

func runYearly(c *container.Container, w io.Writer, opts Options) error {
	summary := c.GetStatistics().YearlySummary(opts.Year)
	return render(c, w, opts, summary, func() error {
		fmt.Fprintf(w, "Year %d\n", summary.Year)
		if err := common.PrintAmounts(w, []string{"Income", "Expense", "Net"}, map[string]float64{
			"Income":  summary.TotalIncome,
			"Expense": summary.TotalExpense,
			"Net":     summary.NetBalance,
		}); err != nil {
			return err
		}
		fmt.Fprintln(w)
		return printMonths(w, summary.MonthlyTrend)
	})
}

// render writes v as a json or yaml report, or calls text for the table output.
func render(c *container.Container, w io.Writer, opts Options, v interface{}, text func() error) error {
	if opts.Format == "" || opts.Format == FormatText {
		if opts.Output != "" {
			return fmt.Errorf("--output needs --format json or yaml")
		}
		return text()
	}

	format, err := report.ParseFormat(opts.Format)
	if err != nil {
		return err
	}
	gen := report.NewGenerator(c.GetLogger())
	if opts.Output != "" {
		if err := gen.WriteFile(opts.Output, v, format); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w, "Report written to %s\n", opts.Output)
		return err
	}
	data, err := gen.Generate(v, format)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func printMonths(w io.Writer, series []statistics.MonthTotals) error {
	if len(series) == 0 {
		_, err := fmt.Fprintln(w, "No months.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "MONTH\tINCOME\tEXPENSE\tBALANCE")
	for _, m := range series {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", m.Month,
			models.FormatAmount(m.Income), models.FormatAmount(m.Expense), models.FormatAmount(m.Balance))
	}
	return tw.Flush()
}
