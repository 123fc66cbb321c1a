package oauth

import (
	"golang.org/x/oauth2"
)

const (
	authURL  = "https://apps.fortnox.se/oauth-v1/auth"
	tokenURL = "https://apps.fortnox.se/oauth-v1/token"
)

const (
	// RedirectURL is the redirect URI registered with the Fortnox developer
	// portal. Fortnox rejects the grant unless it matches exactly.
	RedirectURL = "http://localhost:33140/callback"

	// ListenAddr is the loopback address the callback listener binds,
	// matching the fixed port in RedirectURL.
	ListenAddr = "localhost:33140"
)

// ExchangeEndpoint is used for the initial authorization-code exchange.
// Fortnox authenticates this grant with HTTP Basic credentials.
var ExchangeEndpoint = oauth2.Endpoint{
	AuthURL:   authURL,
	TokenURL:  tokenURL,
	AuthStyle: oauth2.AuthStyleInHeader,
}

// RefreshEndpoint is used for refresh-token grants. Fortnox expects the
// client credentials in the form body on this grant, not in the
// Authorization header.
var RefreshEndpoint = oauth2.Endpoint{
	AuthURL:   authURL,
	TokenURL:  tokenURL,
	AuthStyle: oauth2.AuthStyleInParams,
}

// Scopes are the Fortnox API scopes the bot requests during authorization:
// article, warehouse and warehousecustomdocument for inventory access, plus
// the companyinformation base scope.
var Scopes = []string{"companyinformation", "article", "warehouse", "warehousecustomdocument"}

// NewConfig assembles an oauth2.Config for the given client credentials and
// endpoint, with the fixed redirect URI and scope set.
func NewConfig(clientID, clientSecret string, endpoint oauth2.Endpoint) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     endpoint,
		RedirectURL:  RedirectURL,
		Scopes:       Scopes,
	}
}
