package main

import (
	"strings"

	"github.com/spf13/cobra"

	"paymonth/internal/core"
	"paymonth/internal/quickinput"
)

func (a *app) parseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse <text>...",
		Short: "Run the quick-entry parser on a line of text",
		Example: `  paymonthctl parse "점심 9000원 카드 #식비"
  paymonthctl --locale en-US parse coffee '$5.50'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := a.location()
			if err != nil {
				return err
			}

			var fallbackType *core.TransactionType
			if raw := mustString(cmd, "type"); raw != "" {
				t, err := core.ParseTransactionType(raw)
				if err != nil {
					return err
				}
				fallbackType = &t
			}
			var fallbackFixed *bool
			if cmd.Flags().Changed("fixed") {
				fixed, _ := cmd.Flags().GetBool("fixed")
				fallbackFixed = &fixed
			}

			parser := quickinput.NewParser(loc)
			parser.Now = a.now
			parsed := parser.Parse(strings.Join(args, " "), a.v.GetString("locale"), fallbackType, fallbackFixed)
			return printJSON(cmd.OutOrStdout(), parsed)
		},
	}
	cmd.Flags().String("type", "", "type to use when the text has no type tag (income, expense)")
	cmd.Flags().Bool("fixed", false, "fixed flag to use when the text has no fixed tag")
	return cmd
}
