package renderer

import (
	"bytes"
	"fmt"

	"github.com/etnz/coinfolio"
	md "github.com/nao1215/markdown"
)

// MarketList is a computed market page with the state that produced it.
type MarketList struct {
	View      coinfolio.View
	State     coinfolio.ListState
	Favorites *coinfolio.FavoriteSet
	Currency  string
}

// MarketMarkdown renders a market page as a table, one coin per row.
func MarketMarkdown(l MarketList) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	title := fmt.Sprintf("Markets (%s)", l.Currency)
	if l.State.FavoritesOnly {
		title = fmt.Sprintf("Favorite Markets (%s)", l.Currency)
	}
	doc.H1(title)
	if l.State.Search != "" {
		doc.PlainText(fmt.Sprintf("Names matching %s", md.Italic(l.State.Search)))
		blank(doc)
	}

	if len(l.View.Rows) == 0 {
		switch {
		case l.View.TotalRows > 0:
			doc.PlainText(fmt.Sprintf("Page %d is out of range, there are %d pages.", l.State.Page.Page, l.View.TotalPages))
		case l.State.FavoritesOnly && l.Favorites.Len() == 0:
			doc.PlainText("No favorites yet.")
		default:
			doc.PlainText("No coin found.")
		}
		return doc.String()
	}

	s := l.State.Sort
	header := []string{
		sortLabel(favoriteMark, coinfolio.SortByFavorites, s),
		sortLabel("#", coinfolio.SortByRank, s),
		sortLabel("Coin", coinfolio.SortByName, s),
		sortLabel("Symbol", coinfolio.SortBySymbol, s),
		sortLabel("Price", coinfolio.SortByPrice, s),
		sortLabel("1h", coinfolio.SortByChange1h, s),
		sortLabel("24h", coinfolio.SortByChange24h, s),
		sortLabel("7d", coinfolio.SortByChange7d, s),
		sortLabel("Market Cap", coinfolio.SortByMarketCap, s),
		sortLabel("Volume", coinfolio.SortByVolume, s),
		sortLabel("Circulating", coinfolio.SortByCirculatingSupply, s),
	}
	table := md.TableSet{
		Alignment: alignments(4, len(header)),
		Header:    header,
	}
	for _, c := range l.View.Rows {
		rank := coinfolio.NotAvailable
		if c.MarketCapRank != nil {
			rank = fmt.Sprint(*c.MarketCapRank)
		}
		table.Rows = append(table.Rows, []string{
			star(l.Favorites.Contains(c.ID)),
			rank,
			cell(coinfolio.TruncateName(c.Name)),
			cell(upper(c.Symbol)),
			coinfolio.FormatPrice(c.CurrentPrice, l.Currency),
			coinfolio.FormatChange(c.PriceChange1h),
			coinfolio.FormatChange(c.PriceChange24h),
			coinfolio.FormatChange(c.PriceChange7d),
			coinfolio.FormatNumber(c.MarketCap),
			coinfolio.FormatNumber(c.TotalVolume),
			coinfolio.FormatNumber(c.CirculatingSupply),
		})
	}
	doc.Table(table)
	blank(doc)
	doc.PlainText(fmt.Sprintf("Page %d of %d, %d coins.", l.State.Page.Page, l.View.TotalPages, l.View.TotalRows))

	return doc.String()
}
