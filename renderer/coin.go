package renderer

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/etnz/coinfolio"
	md "github.com/nao1215/markdown"
)

// CoinPage is everything displayed about one coin.
type CoinPage struct {
	Detail   coinfolio.CoinDetail
	Chart    []coinfolio.PricePoint
	Favorite bool
	Currency string
}

func upper(s string) string { return strings.ToUpper(s) }

// CoinMarkdown renders the detail page of a coin.
func CoinMarkdown(p CoinPage) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	c := p.Detail.Coin

	doc.H1(fmt.Sprintf("%s %s (%s)", star(p.Favorite), c.Name, upper(c.Symbol)))
	if desc := firstParagraph(p.Detail.Description); desc != "" {
		doc.PlainText(desc)
		blank(doc)
	}

	rank := coinfolio.NotAvailable
	if c.MarketCapRank != nil {
		rank = fmt.Sprintf("#%d", *c.MarketCapRank)
	}
	doc.Table(md.TableSet{
		Alignment: alignments(1, 2),
		Header:    []string{md.Bold("Price"), md.Bold(coinfolio.FormatPrice(c.CurrentPrice, p.Currency))},
		Rows: [][]string{
			{"Rank", rank},
			{"24h Change", coinfolio.FormatChange(c.PriceChange24h)},
			{"Market Cap", coinfolio.FormatNumber(c.MarketCap)},
			{"24h Volume", coinfolio.FormatNumber(c.TotalVolume)},
			{"Circulating Supply", coinfolio.FormatSupply(c.CirculatingSupply, coinfolio.NotAvailable)},
			{"Total Supply", coinfolio.FormatSupply(c.TotalSupply, coinfolio.NotAvailable)},
			{"Max Supply", coinfolio.FormatSupply(c.MaxSupply, infinity)},
		},
	})
	blank(doc)

	if s, ok := coinfolio.SummarizeChart(p.Chart); ok {
		doc.H2(fmt.Sprintf("Since %s", s.From.Format("2006-01-02 15:04")))
		price := func(v float64) string { return coinfolio.FormatPrice(&v, p.Currency) }
		doc.Table(md.TableSet{
			Alignment: alignments(0, 5),
			Header:    []string{"Open", "Low", "High", "Last", "Change"},
			Rows:      [][]string{{price(s.Open), price(s.Low), price(s.High), price(s.Close), s.Change.SignedString()}},
		})
		blank(doc)
	}

	links := []string{md.Link("Chart", coinfolio.ChartURL(c.Symbol))}
	if p.Detail.Homepage != "" {
		links = append(links, md.Link("Homepage", p.Detail.Homepage))
	}
	doc.BulletList(links...)
	blank(doc)
	if !p.Detail.LastUpdated.IsZero() {
		doc.PlainText(md.Italic("Updated " + p.Detail.LastUpdated.Format("2006-01-02 15:04 MST")))
	}

	return doc.String()
}

// firstParagraph keeps the first paragraph of a description.
func firstParagraph(s string) string {
	s = strings.ReplaceAll(strings.TrimSpace(s), "\r\n", "\n")
	if i := strings.Index(s, "\n\n"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
