package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"branikbot/internal/money"
)

type tierView struct {
	Kind    string `json:"kind"`
	Count   int    `json:"count,omitempty"`
	Pallets int    `json:"pallets,omitempty"`
	Packs   int    `json:"packs,omitempty"`
}

type mentionView struct {
	money.Mention
	Tier tierView `json:"tier"`
}

type parseView struct {
	Outcome  string        `json:"outcome"`
	Price    float64       `json:"price"`
	Mentions []mentionView `json:"mentions,omitempty"`
	Message  string        `json:"message,omitempty"`
}

func newParseCmd(a *app) *cobra.Command {
	var (
		price  float64
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "parse [text]",
		Short: "Extract amounts from text and print the reply",
		Long: `Runs the extraction pipeline on the given text (or stdin when no
argument is given) and prints the reply the bot would post. Prints nothing
when the text has no amount and no keyword.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if len(args) == 0 {
				blob, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				text = string(blob)
			}
			if price <= 0 {
				price = a.cfg.PriceDefault
			}

			view := buildParseView(text, price)
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(view)
			}
			if view.Message != "" {
				_, err := fmt.Fprintln(out, view.Message)
				return err
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&price, "price", 0, "unit price (default PRICE_DEFAULT)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the outcome as JSON")
	return cmd
}

func buildParseView(text string, price float64) parseView {
	view := parseView{Outcome: "none", Price: price}
	outcome, ok := money.Extract(text)
	if !ok {
		return view
	}

	switch o := outcome.(type) {
	case money.Keyword:
		view.Outcome = "keyword"
	case money.Values:
		view.Outcome = "values"
		for _, m := range o.Mentions {
			view.Mentions = append(view.Mentions, mentionView{Mention: m, Tier: toTierView(money.Classify(m.Value, price))})
		}
	}
	view.Message = money.Compose(outcome, price)
	return view
}

func toTierView(t money.Tier) tierView {
	switch v := t.(type) {
	case money.Single:
		return tierView{Kind: "single", Count: v.Count}
	case money.Pack:
		return tierView{Kind: "pack", Packs: v.Packs}
	case money.Bulk:
		return tierView{Kind: "bulk", Pallets: v.Pallets, Packs: v.Packs}
	default:
		return tierView{Kind: "unknown"}
	}
}
