package renderer

import (
	"bytes"
	"fmt"

	"github.com/etnz/coinfolio"
	md "github.com/nao1215/markdown"
)

// PortfolioMarkdown renders a valuation: one row per position, in order, then
// the total.
func PortfolioMarkdown(v coinfolio.Valuation) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Portfolio (%s)", v.Currency))
	if len(v.Rows) == 0 {
		doc.PlainText("No positions yet.")
		return doc.String()
	}

	table := md.TableSet{
		Alignment: alignments(3, 7),
		Header:    []string{"#", "Coin", "ID", "Amount", "Price", "24h", "Value"},
	}
	for _, r := range v.Rows {
		name := cell(r.Name)
		if r.Known && r.Symbol != "" {
			name = fmt.Sprintf("%s (%s)", name, cell(upper(r.Symbol)))
		}
		price := coinfolio.NotAvailable
		if r.PriceSource != coinfolio.PriceNone {
			price = r.Price.String()
		}
		table.Rows = append(table.Rows, []string{
			fmt.Sprint(r.Index),
			name,
			md.Code(r.Position.ID),
			r.Position.Amount.String(),
			price,
			coinfolio.FormatChange(r.Change24h),
			r.Value.String(),
		})
	}
	table.Rows = append(table.Rows, []string{"", md.Bold("Total"), "", "", "", "", md.Bold(v.Total.String())})
	doc.Table(table)

	return doc.String()
}
