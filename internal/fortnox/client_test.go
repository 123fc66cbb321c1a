package fortnox

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(
		StaticCredentials{AccessToken: "test-token", ClientSecret: "test-secret"},
		WithBaseURL(server.URL),
		WithHTTPClient(server.Client()),
	)
	require.NoError(t, err)
	return client
}

func TestGetArticlesSendsAuthHeaders(t *testing.T) {
	var gotHeaders http.Header
	var gotPath string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"Articles":[{"ArticleNumber":"A-100","Description":"Widget","QuantityInStock":4}]}`))
	}))

	articles, err := client.GetArticles(context.Background(), nil)
	require.NoError(t, err)

	require.Len(t, articles, 1)
	assert.Equal(t, "A-100", articles[0].ArticleNumber)
	assert.Equal(t, "/articles", gotPath)
	assert.Equal(t, "Bearer test-token", gotHeaders.Get("Authorization"))
	assert.Equal(t, "test-secret", gotHeaders.Get("Client-Secret"))
	assert.Equal(t, "application/json", gotHeaders.Get("Accept"))
}

func TestGetArticlesFilterQuery(t *testing.T) {
	var gotQuery url.Values
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(`{"Articles":[]}`))
	}))

	_, err := client.GetArticles(context.Background(), url.Values{"limit": {"1"}})
	require.NoError(t, err)
	assert.Equal(t, "1", gotQuery.Get("limit"))
}

func TestGetArticlesMissingKey(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"MetaInformation":{"@TotalResources":0}}`))
	}))

	articles, err := client.GetArticles(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, articles)
}

func TestGetArticleByNumber(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/articles/A-100", r.URL.Path)
		_, _ = w.Write([]byte(`{"Article":{"ArticleNumber":"A-100","Description":"Widget","SalesPrice":"19.99","Currency":"SEK"}}`))
	}))

	article, err := client.GetArticleByNumber(context.Background(), "A-100")
	require.NoError(t, err)

	require.NotNil(t, article)
	assert.Equal(t, "A-100", article.ArticleNumber)
	assert.Equal(t, Price("19.99"), article.SalesPrice)
}

func TestGetArticleByNumberNotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"ErrorInformation":{"error":2000423}}`, http.StatusNotFound)
	}))

	article, err := client.GetArticleByNumber(context.Background(), "NOPE")
	require.NoError(t, err)
	assert.Nil(t, article)
}

func TestGetArticlesAPIError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"unauthorized"}`, http.StatusUnauthorized)
	}))

	_, err := client.GetArticles(context.Background(), nil)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "unauthorized")
	assert.Contains(t, apiErr.Error(), "401")
}

func TestGetArticlesInStock(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Articles":[
			{"ArticleNumber":"A-1","QuantityInStock":0},
			{"ArticleNumber":"A-2","QuantityInStock":5},
			{"ArticleNumber":"A-3","QuantityInStock":3},
			{"ArticleNumber":"A-4","QuantityInStock":10}
		]}`))
	}))
	ctx := context.Background()

	tests := []struct {
		name    string
		minimum float64
		want    []string
	}{
		{name: "default excludes zero stock", minimum: 0, want: []string{"A-2", "A-3", "A-4"}},
		{name: "strictly greater than minimum", minimum: 3, want: []string{"A-2", "A-4"}},
		{name: "nothing above minimum", minimum: 10, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			articles, err := client.GetArticlesInStock(ctx, tt.minimum)
			require.NoError(t, err)

			got := make([]string, 0, len(articles))
			for _, a := range articles {
				got = append(got, a.ArticleNumber)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPing(t *testing.T) {
	var gotQuery url.Values
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(`{"Articles":[]}`))
	}))

	require.NoError(t, client.Ping(context.Background()))
	assert.Equal(t, "1", gotQuery.Get("limit"))
}

func TestPingSurfacesAPIError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"expired token"}`, http.StatusUnauthorized)
	}))

	err := client.Ping(context.Background())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}
