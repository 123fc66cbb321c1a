// Package format renders Fortnox inventory data as Slack message text.
// All functions are pure; missing fields fall back to placeholders instead of
// failing the view.
package format

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/freke242/fortnox-slack-bot/internal/fortnox"
)

// DefaultStockLimit caps the rows a stock listing displays.
const DefaultStockLimit = 50

const noArticlesMessage = "❌ No articles found in stock."

// StockList renders articles as a fixed-width table inside a code fence,
// showing at most limit rows (DefaultStockLimit when limit is not positive).
// When rows are cut, a "Showing N of M" notice is appended.
func StockList(articles []fortnox.Article, limit int) string {
	if len(articles) == 0 {
		return noArticlesMessage
	}
	if limit <= 0 {
		limit = DefaultStockLimit
	}

	total := len(articles)
	display := articles
	if len(display) > limit {
		display = display[:limit]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📦 *Articles in Stock* (%d total)\n\n", total)
	b.WriteString("```\n")
	fmt.Fprintf(&b, "%-15s %-40s %-10s %-8s %-10s\n", "Article #", "Description", "Quantity", "Unit", "Price")
	b.WriteString(strings.Repeat("-", 90))
	b.WriteString("\n")

	for _, article := range display {
		fmt.Fprintf(&b, "%-15s %-40s %-10s %-8s %-10s\n",
			truncate(orDefault(article.ArticleNumber, "N/A"), 14),
			truncate(orDefault(article.Description, "No description"), 39),
			Quantity(article.QuantityInStock),
			truncate(orDefault(article.Unit, "pcs"), 7),
			Price(article.SalesPrice),
		)
	}
	b.WriteString("```")

	if total > limit {
		fmt.Fprintf(&b, "\n\n_Showing %d of %d articles_", limit, total)
	}

	return b.String()
}

// ArticleDetail renders the labeled detail block for a single article.
// Currency defaults to SEK.
func ArticleDetail(a *fortnox.Article) string {
	currency := orDefault(a.Currency, "SEK")

	var b strings.Builder
	b.WriteString("\n📦 *Article Details*\n\n")
	fmt.Fprintf(&b, "*Article Number:* %s\n", orDefault(a.ArticleNumber, "N/A"))
	fmt.Fprintf(&b, "*Description:* %s\n", orDefault(a.Description, "No description"))
	fmt.Fprintf(&b, "*Quantity in Stock:* %s %s\n", Quantity(a.QuantityInStock), orDefault(a.Unit, "pcs"))
	fmt.Fprintf(&b, "*Stock Place:* %s\n", orDefault(a.StockPlace, "N/A"))
	fmt.Fprintf(&b, "*Sales Price:* %s %s\n", Price(a.SalesPrice), currency)
	fmt.Fprintf(&b, "*Purchase Price:* %s %s\n", Price(a.PurchasePrice), currency)
	fmt.Fprintf(&b, "*Supplier:* %s\n", orDefault(a.SupplierName, "N/A"))
	fmt.Fprintf(&b, "*EAN:* %s\n", orDefault(a.EAN, "N/A"))
	fmt.Fprintf(&b, "*Manufacturer:* %s\n", orDefault(a.Manufacturer, "N/A"))
	return b.String()
}

// Price renders a monetary amount with two decimals. Missing or unparsable
// values render as "0.00"; a broken price field must not take down a listing.
func Price(p fortnox.Price) string {
	v, ok := p.Value()
	if !ok {
		return "0.00"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// Quantity renders a stock quantity with the fewest digits that round-trip.
func Quantity(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}

// Help is the static usage text posted when the bot is mentioned.
func Help(userID string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n👋 Hi <@%s>! I'm the Fortnox Inventory Bot.\n\n", userID)
	b.WriteString("*Available Commands:*\n\n")
	b.WriteString("• `/fortnox-stock` - List all articles in stock\n")
	b.WriteString("• `/fortnox-stock <minimum>` - List articles with at least the specified quantity\n")
	b.WriteString("• `/fortnox-article <number>` - Get details about a specific article\n\n")
	b.WriteString("*Example:*\n")
	b.WriteString("`/fortnox-stock 10` - Show articles with at least 10 units in stock\n")
	b.WriteString("`/fortnox-article 12345` - Show details for article 12345\n")
	return b.String()
}

// truncate limits s to max runes.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
