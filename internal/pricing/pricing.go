// Package pricing maps (provider, model, tokens) to a USD cost using a
// static table, in fixed-precision decimal to avoid binary-float drift.
package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Entry is one row of the static pricing table, USD per 1k tokens.
type Entry struct {
	Provider    string
	ModelPrefix string // "" matches any model for the provider (the default entry)
	PriceIn     decimal.Decimal
	PriceOut    decimal.Decimal
}

var perThousand = decimal.NewFromInt(1000)

// table holds the required entries plus a default (empty-prefix) entry per
// provider; the openai and huggingface defaults are zero-priced, the
// deepseek default carries the deepseek rate.
var table = []Entry{
	{Provider: "openai", ModelPrefix: "gpt-4", PriceIn: decimal.NewFromFloat(0.03), PriceOut: decimal.NewFromFloat(0.06)},
	{Provider: "openai", ModelPrefix: "gpt-3.5", PriceIn: decimal.NewFromFloat(0.0015), PriceOut: decimal.NewFromFloat(0.002)},
	{Provider: "openai", ModelPrefix: "", PriceIn: decimal.Zero, PriceOut: decimal.Zero},
	{Provider: "deepseek", ModelPrefix: "", PriceIn: decimal.NewFromFloat(0.00014), PriceOut: decimal.NewFromFloat(0.00028)},
	{Provider: "huggingface", ModelPrefix: "", PriceIn: decimal.Zero, PriceOut: decimal.Zero},
}

// Cost computes tokens_in/1000*price_in + tokens_out/1000*price_out using
// the pricing entry whose model_prefix is the longest match for model.
// Unknown provider/model combinations cost 0 rather than failing the request.
func Cost(provider, model string, tokensIn, tokensOut int) decimal.Decimal {
	entry, ok := lookup(provider, model)
	if !ok {
		return decimal.Zero
	}
	in := decimal.NewFromInt(int64(tokensIn)).Div(perThousand).Mul(entry.PriceIn)
	out := decimal.NewFromInt(int64(tokensOut)).Div(perThousand).Mul(entry.PriceOut)
	return in.Add(out).Round(6)
}

// lookup finds the entry for provider whose ModelPrefix is the longest
// prefix of model, falling back to the provider's default (empty-prefix)
// entry, and reports false if the provider has no entries at all.
func lookup(provider, model string) (Entry, bool) {
	var best Entry
	found := false
	bestLen := -1
	for _, e := range table {
		if e.Provider != provider {
			continue
		}
		if e.ModelPrefix == "" {
			if bestLen < 0 {
				best = e
				found = true
				bestLen = 0
			}
			continue
		}
		if strings.HasPrefix(model, e.ModelPrefix) && len(e.ModelPrefix) > bestLen {
			best = e
			found = true
			bestLen = len(e.ModelPrefix)
		}
	}
	return best, found
}
