// Package settings handles the account settings commands
package settings

import (
	"fmt"
	"io"
	"strings"

	"fjacquet/expense-manager/cmd/common"
	"fjacquet/expense-manager/cmd/root"
	"fjacquet/expense-manager/internal/container"
	"fjacquet/expense-manager/internal/models"
	"fjacquet/expense-manager/internal/report"

	"github.com/spf13/cobra"
)

// Options holds the settings flag values
type Options struct {
	Format         string
	Warn           string
	Urgent         string
	InitialBalance string
	ReminderTime   string
	ReminderOn     bool
}

var opts Options

// View is the printable account configuration.
type View struct {
	models.Settings           `yaml:",inline"`
	Balance                   float64  `json:"balance" yaml:"balance"`
	OverconsumptionCategories []string `json:"overconsumption_categories" yaml:"overconsumption_categories"`
	DataFile                  string   `json:"data_file" yaml:"data_file"`
}

// Cmd represents the settings command
var Cmd = &cobra.Command{
	Use:   "settings",
	Short: "Show and change account settings",
	Long: `Show and change the balance thresholds, the initial balance, the daily
reminder preference and the overconsumption categories.`,
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		return runShow(c, cmd.OutOrStdout(), opts.Format)
	},
}

var thresholdsCmd = &cobra.Command{
	Use:   "thresholds",
	Short: "Set the warning and urgent balance thresholds",
	Long: `Set the warning and urgent balance thresholds. A threshold not given keeps
its current value.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		warn, urgent := "", ""
		if flags.Changed("warn") {
			warn = opts.Warn
		}
		if flags.Changed("urgent") {
			urgent = opts.Urgent
		}
		return runThresholds(c, cmd.OutOrStdout(), warn, urgent)
	},
}

var initialBalanceCmd = &cobra.Command{
	Use:   "initial-balance",
	Short: "Set the opening balance",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		return runInitialBalance(c, cmd.OutOrStdout(), opts.InitialBalance)
	},
}

var reminderCmd = &cobra.Command{
	Use:   "reminder",
	Short: "Set the daily reminder preference",
	Long:  `Store the daily reminder time (HH:MM) and whether it is enabled.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		return runReminder(c, cmd.OutOrStdout(), opts.ReminderTime, opts.ReminderOn)
	},
}

var overcatCmd = &cobra.Command{
	Use:   "overcat",
	Short: "Manage overconsumption categories",
	Long: `Manage the categories watched for overconsumption. New records in a watched
category are flagged and trigger a notification.`,
}

var overcatAddCmd = &cobra.Command{
	Use:   "add CATEGORY",
	Short: "Watch a category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		return runOvercatAdd(c, cmd.OutOrStdout(), args[0])
	},
}

var overcatRemoveCmd = &cobra.Command{
	Use:   "remove CATEGORY",
	Short: "Stop watching a category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		return runOvercatRemove(c, cmd.OutOrStdout(), args[0])
	},
}

var overcatListCmd = &cobra.Command{
	Use:   "list",
	Short: "List watched categories",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		return runOvercatList(c, cmd.OutOrStdout())
	},
}

func init() {
	showCmd.Flags().StringVarP(&opts.Format, "format", "f", string(report.FormatYAML), "Output format (yaml or json)")

	thresholdsCmd.Flags().StringVar(&opts.Warn, "warn", "", "Warning threshold")
	thresholdsCmd.Flags().StringVar(&opts.Urgent, "urgent", "", "Urgent threshold")
	thresholdsCmd.MarkFlagsOneRequired("warn", "urgent")

	initialBalanceCmd.Flags().StringVarP(&opts.InitialBalance, "amount", "a", "", "Opening balance, may be negative")
	_ = initialBalanceCmd.MarkFlagRequired("amount")

	reminderCmd.Flags().StringVarP(&opts.ReminderTime, "time", "t", models.DefaultReminderTime, "Reminder time of day (HH:MM)")
	reminderCmd.Flags().BoolVar(&opts.ReminderOn, "enabled", true, "Enable the daily reminder")

	overcatCmd.AddCommand(overcatAddCmd, overcatRemoveCmd, overcatListCmd)
	Cmd.AddCommand(showCmd, thresholdsCmd, initialBalanceCmd, reminderCmd, overcatCmd)
}

func runShow(c *container.Container, w io.Writer, format string) error {
	f, err := report.ParseFormat(format)
	if err != nil {
		return err
	}
	acct := c.GetAccount()
	view := View{
		Settings:                  acct.Settings(),
		Balance:                   acct.Balance(),
		OverconsumptionCategories: acct.OverconsumptionCategories(),
		DataFile:                  acct.StorePath(),
	}
	data, err := report.NewGenerator(c.GetLogger()).Generate(view, f)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// runThresholds updates the thresholds. An empty value keeps the current one.
func runThresholds(c *container.Container, w io.Writer, warnValue, urgentValue string) error {
	acct := c.GetAccount()
	current := acct.Settings()
	warn, urgent := current.ThresholdWarn, current.ThresholdUrgent

	var err error
	if warnValue != "" {
		if warn, err = common.ParseNumber("threshold_warn", warnValue); err != nil {
			return err
		}
	}
	if urgentValue != "" {
		if urgent, err = common.ParseNumber("threshold_urgent", urgentValue); err != nil {
			return err
		}
	}
	if err := acct.SetThresholds(warn, urgent); err != nil {
		return err
	}
	fmt.Fprintf(w, "Thresholds set: warn %s, urgent %s\n", models.FormatAmount(warn), models.FormatAmount(urgent))
	if urgent > warn {
		fmt.Fprintln(w, "Note: the urgent threshold is above the warning threshold")
	}
	return nil
}

func runInitialBalance(c *container.Container, w io.Writer, value string) error {
	amount, err := common.ParseNumber("initial_balance", value)
	if err != nil {
		return err
	}
	acct := c.GetAccount()
	if err := acct.SetInitialBalance(amount); err != nil {
		return err
	}
	fmt.Fprintf(w, "Initial balance set to %s, balance is now %s\n",
		models.FormatAmount(amount), models.FormatAmount(acct.Balance()))
	return nil
}

func runReminder(c *container.Container, w io.Writer, hhmm string, enabled bool) error {
	if err := c.GetAccount().ScheduleDailyReminder(hhmm, enabled); err != nil {
		return err
	}
	state := "disabled"
	if enabled {
		state = "enabled"
	}
	fmt.Fprintf(w, "Daily reminder at %s %s\n", hhmm, state)
	return nil
}

func runOvercatAdd(c *container.Container, w io.Writer, category string) error {
	category = strings.TrimSpace(category)
	if category == "" {
		return fmt.Errorf("category must not be empty")
	}
	if err := c.GetAccount().AddOverconsumptionCategory(category); err != nil {
		return err
	}
	fmt.Fprintf(w, "Watching category %s\n", category)
	return nil
}

func runOvercatRemove(c *container.Container, w io.Writer, category string) error {
	if err := c.GetAccount().RemoveOverconsumptionCategory(category); err != nil {
		return err
	}
	fmt.Fprintf(w, "Stopped watching category %s\n", category)
	return nil
}

func runOvercatList(c *container.Container, w io.Writer) error {
	categories := c.GetAccount().OverconsumptionCategories()
	if len(categories) == 0 {
		_, err := fmt.Fprintln(w, "No overconsumption categories.")
		return err
	}
	for _, category := range categories {
		if _, err := fmt.Fprintln(w, category); err != nil {
			return err
		}
	}
	return nil
}
