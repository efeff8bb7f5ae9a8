package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"branikbot/internal/price"
)

func newPriceCmd(a *app) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "price",
		Short: "Show the current unit price of 2L Branik",
		RunE: func(cmd *cobra.Command, args []string) error {
			r := price.NewReader(a.cfg, a.logger)
			if strict {
				p, err := r.Load(cmd.Context())
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "%.2f\n", p)
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%.2f\n", r.LoadOrDefault(cmd.Context()))
			return err
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "fail instead of falling back to PRICE_DEFAULT")
	return cmd
}
