// Package oauth implements the Fortnox authorization-code grant and the
// endpoints used for token refresh.
//
// Fortnox splits client authentication between the two token-endpoint grants:
//   - the authorization-code exchange authenticates with HTTP Basic credentials
//   - the refresh-token grant expects client_id and client_secret in the form body
//
// ExchangeEndpoint and RefreshEndpoint capture the two styles; use the one
// matching the grant being performed.
//
// # Acquisition
//
// The interactive flow binds a one-shot loopback listener before the operator
// opens the authorization URL, then blocks until Fortnox redirects back:
//
//	auth, _ := oauth.NewAuthorization(oauth.NewConfig(id, secret, oauth.ExchangeEndpoint))
//	lis, _ := oauth.NewListener(oauth.ListenAddr)
//	defer lis.Close()
//	// direct the operator to auth.URL()
//	res, err := lis.Wait(ctx)
//	tok, err := auth.Exchange(ctx, res)
//
// The callback state is verified inside Exchange; on mismatch no request is
// issued and ErrStateMismatch is returned.
package oauth
