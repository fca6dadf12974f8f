// Package loan handles the commands for money lent to others
package loan

import (
	"fmt"
	"io"

	"fjacquet/expense-manager/cmd/common"
	"fjacquet/expense-manager/cmd/root"
	"fjacquet/expense-manager/internal/container"
	"fjacquet/expense-manager/internal/models"
	"fjacquet/expense-manager/internal/reminder"

	"github.com/spf13/cobra"
)

// Options holds the loan flag values
type Options struct {
	Name     string
	Amount   string
	LoanDate string
	DueDate  string
	Note     string
	Open     bool
	Due      bool
}

var (
	addOpts  Options
	listOpts Options
)

// Cmd represents the loan command
var Cmd = &cobra.Command{
	Use:   "loan",
	Short: "Track money lent to others",
	Long:  `Add loans, mark them repaid, delete them and list them with their due dates.`,
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a loan",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		return runAdd(c, cmd.OutOrStdout(), addOpts)
	},
}

var repaidCmd = &cobra.Command{
	Use:   "repaid ID",
	Short: "Mark a loan as repaid",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		return runRepaid(c, cmd.OutOrStdout(), args[0])
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a loan",
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
	Short: "List loans",
	Long:  `List loans. With --due, also print a reminder for every unrepaid loan that is due today or overdue.`,
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
	addCmd.Flags().StringVarP(&addOpts.Name, "name", "n", "", "Borrower name")
	addCmd.Flags().StringVarP(&addOpts.Amount, "amount", "a", "", "Amount lent (non-negative)")
	addCmd.Flags().StringVar(&addOpts.LoanDate, "date", "", "Loan date (default now)")
	addCmd.Flags().StringVar(&addOpts.DueDate, "due", "", "Due date (optional)")
	addCmd.Flags().StringVar(&addOpts.Note, "note", "", "Free-text note")
	_ = addCmd.MarkFlagRequired("name")
	_ = addCmd.MarkFlagRequired("amount")

	listCmd.Flags().BoolVar(&listOpts.Open, "open", false, "Only list loans not yet repaid")
	listCmd.Flags().BoolVar(&listOpts.Due, "due", false, "Print reminders for loans due today or overdue")

	Cmd.AddCommand(addCmd, repaidCmd, deleteCmd, listCmd)
}

func runAdd(c *container.Container, w io.Writer, opts Options) error {
	amount, err := common.ParseAmount("amount", opts.Amount)
	if err != nil {
		return err
	}
	loan, err := c.GetAccount().AddLoan(opts.Name, amount, opts.LoanDate, opts.DueDate, opts.Note)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Added loan %s\n", loan.ID)
	return nil
}

func runRepaid(c *container.Container, w io.Writer, id string) error {
	found, err := c.GetAccount().MarkLoanRepaid(id)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("loan %s not found", id)
	}
	fmt.Fprintf(w, "Loan %s marked repaid\n", id)
	return nil
}

func runDelete(c *container.Container, w io.Writer, id string) error {
	removed, err := c.GetAccount().DeleteLoan(id)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("loan %s not found", id)
	}
	fmt.Fprintf(w, "Deleted loan %s\n", id)
	return nil
}

func runList(c *container.Container, w io.Writer, opts Options) error {
	acct := c.GetAccount()
	var loans []models.LoanRecord
	for _, l := range acct.Loans() {
		if opts.Open && l.Repaid {
			continue
		}
		loans = append(loans, l)
	}
	if err := common.PrintLoans(w, loans); err != nil {
		return err
	}
	if opts.Due {
		checker := reminder.NewService(acct, reminder.NewSyncDispatcher(common.NotificationPrinter(w), c.GetLogger()),
			c.GetLogger(), reminder.WithMetrics(c.GetMetrics()))
		checker.CheckLoans()
	}
	return nil
}
