package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"paymonth/internal/payperiod"
)

func (a *app) calculator() (payperiod.Calculator, error) {
	return payperiod.New(a.v.GetString("timezone"), a.v.GetString("locale"))
}

func (a *app) periodCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "period",
		Short: "Show the pay period containing a date",
		Example: `  paymonthctl period --anchor 2025-10-16
  paymonthctl period --salary-day 31 --timezone UTC`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			calc, err := a.calculator()
			if err != nil {
				return err
			}
			anchor, err := a.parseDate(mustString(cmd, "anchor"), calc.Location)
			if err != nil {
				return err
			}
			p, err := calc.Get(anchor, a.v.GetInt("salary_day"))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), p)
		},
	}
	cmd.Flags().String("anchor", "", "date inside the period (YYYY-MM-DD or MM/DD, default today)")
	return cmd
}

func (a *app) rangeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "range",
		Short: "List consecutive pay periods around a date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			calc, err := a.calculator()
			if err != nil {
				return err
			}
			anchor, err := a.parseDate(mustString(cmd, "anchor"), calc.Location)
			if err != nil {
				return err
			}
			before, _ := cmd.Flags().GetInt("before")
			after, _ := cmd.Flags().GetInt("after")
			periods, err := calc.Range(anchor, a.v.GetInt("salary_day"), before, after)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), periods)
		},
	}
	cmd.Flags().String("anchor", "", "date inside the middle period (default today)")
	cmd.Flags().Int("before", 12, "periods before the anchor period")
	cmd.Flags().Int("after", 12, "periods after the anchor period")
	return cmd
}

func (a *app) sameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "same <date> <date>",
		Short: "Report whether two dates share a pay period",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			calc, err := a.calculator()
			if err != nil {
				return err
			}
			first, err := a.parseDate(args[0], calc.Location)
			if err != nil {
				return err
			}
			second, err := a.parseDate(args[1], calc.Location)
			if err != nil {
				return err
			}
			same, err := calc.Same(first, second, a.v.GetInt("salary_day"))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), same)
			return err
		},
	}
}

func mustString(cmd *cobra.Command, name string) string {
	s, _ := cmd.Flags().GetString(name)
	return s
}
