package checkup

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/freke242/fortnox-slack-bot/internal/credstore"
	"github.com/freke242/fortnox-slack-bot/internal/format"
	"github.com/freke242/fortnox-slack-bot/internal/fortnox"
)

// ArticleLister is the slice of the Fortnox client the connection test needs.
type ArticleLister interface {
	GetArticles(ctx context.Context, filter url.Values) ([]fortnox.Article, error)
	GetArticlesInStock(ctx context.Context, minimum float64) ([]fortnox.Article, error)
}

// Compile-time check to ensure the Fortnox client implements ArticleLister
var _ ArticleLister = (*fortnox.Client)(nil)

// API performs a live smoke test against the Fortnox API: credentials
// present, article list readable, stock filter working, and a short sample
// for the operator to eyeball.
func API(ctx context.Context, store credstore.Store, articles ArticleLister) *Report {
	r := &Report{Title: "🧪 Testing Fortnox API Connection"}

	var missing []string
	for _, key := range []string{credstore.KeyFortnoxAccessToken, credstore.KeyFortnoxClientSecret} {
		if _, err := store.Get(ctx, key); err != nil {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		r.add("credentials", StatusFail, "missing: %s", strings.Join(missing, ", "))
		return r
	}
	r.add("credentials", StatusOK, "Fortnox credentials loaded")

	all, err := articles.GetArticles(ctx, nil)
	if err != nil {
		r.add("fetch articles", StatusFail, "%v", err)
		return r
	}
	r.add("fetch articles", StatusOK, "retrieved %d articles", len(all))

	inStock, err := articles.GetArticlesInStock(ctx, 0)
	if err != nil {
		r.add("stock filter", StatusFail, "%v", err)
		return r
	}
	r.add("stock filter", StatusOK, "%d articles in stock", len(inStock))

	if len(inStock) > 0 {
		r.add("sample", StatusOK, "%s", sample(inStock, 5))
	}

	return r
}

func sample(articles []fortnox.Article, limit int) string {
	if len(articles) > limit {
		articles = articles[:limit]
	}

	var b strings.Builder
	for i, a := range articles {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "%s: %s (%s %s)", a.ArticleNumber, a.Description, format.Quantity(a.QuantityInStock), a.Unit)
	}
	return b.String()
}
