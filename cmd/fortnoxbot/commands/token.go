package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/freke242/fortnox-slack-bot/internal/app"
	"github.com/freke242/fortnox-slack-bot/internal/credstore"
	"github.com/freke242/fortnox-slack-bot/internal/fortnox"
	"github.com/freke242/fortnox-slack-bot/internal/oauth"
)

func tokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "manage the Fortnox OAuth tokens",
		Commands: []*cli.Command{
			tokenAcquireCommand(),
			tokenRefreshCommand(),
		},
	}
}

func tokenAcquireCommand() *cli.Command {
	return &cli.Command{
		Name:   "acquire",
		Usage:  "run the one-time interactive authorization flow",
		Action: tokenAcquireAction,
	}
}

func tokenRefreshCommand() *cli.Command {
	return &cli.Command{
		Name:  "refresh",
		Usage: "refresh the access token, suitable for cron",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "refresh--skip-verify",
				Usage: "skip the post-refresh verification call",
			},
		},
		Action: tokenRefreshAction,
	}
}

func tokenAcquireAction(ctx context.Context, cmd *cli.Command) error {
	cfg, store, err := setupWithStore(cmd)
	if err != nil {
		return err
	}
	if cfg.Storage.Type == app.StorageTypeEnv {
		return errors.New("token acquisition requires writable storage, env is read-only")
	}

	w := cmd.Root().Writer

	fmt.Fprintln(w, "🔐 Fortnox Service Account Token Generator")
	fmt.Fprintln(w)

	clientID, clientSecret, err := clientCredentials(ctx, store)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, "✅ Credentials loaded")
	fmt.Fprintf(w, "   Client ID: %s\n", preview(clientID, 10))

	auth, err := oauth.NewAuthorization(oauth.NewConfig(clientID, clientSecret, oauth.ExchangeEndpoint))
	if err != nil {
		return fmt.Errorf("preparing authorization: %w", err)
	}

	// Bind the callback port before showing the URL, so a port conflict
	// surfaces before the operator authorizes anything.
	listener, err := oauth.NewListener(oauth.ListenAddr)
	if err != nil {
		return fmt.Errorf("starting callback listener: %w", err)
	}
	defer func() { _ = listener.Close() }()

	fmt.Fprintln(w)
	fmt.Fprintln(w, "📋 Instructions:")
	fmt.Fprintln(w, "   1. Open the authorization URL below in your browser")
	fmt.Fprintln(w, "   2. Log in as a SYSTEM ADMINISTRATOR")
	fmt.Fprintln(w, "   3. Review and approve the permissions")
	fmt.Fprintln(w, "   4. The browser redirects back and the tokens are saved automatically")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "⚠️  Important: Only system administrators can authorize service accounts!")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "🔗 Authorization URL:")
	fmt.Fprintf(w, "   %s\n", auth.URL())
	fmt.Fprintln(w)

	waitForEnter(w)

	fmt.Fprintf(w, "⏳ Waiting for authorization callback on %s...\n", listener.Addr())

	res, err := listener.Wait(ctx)
	if err != nil {
		return fmt.Errorf("authorization failed: %w", err)
	}

	fmt.Fprintln(w, "✅ Authorization code received")
	fmt.Fprintln(w, "🔄 Exchanging authorization code for tokens...")

	tok, err := auth.Exchange(ctx, res)
	if err != nil {
		return err
	}
	if tok.AccessToken == "" || tok.RefreshToken == "" {
		return errors.New("incomplete token response: missing access or refresh token")
	}

	if !tok.Expiry.IsZero() {
		fmt.Fprintf(w, "✅ Tokens received (access token expires in about %s)\n", time.Until(tok.Expiry).Round(time.Second))
	} else {
		fmt.Fprintln(w, "✅ Tokens received")
	}

	fmt.Fprintln(w, "💾 Saving tokens...")
	if err := store.Set(ctx, credstore.KeyFortnoxAccessToken, tok.AccessToken); err != nil {
		return fmt.Errorf("saving access token: %w", err)
	}
	if err := store.Set(ctx, credstore.KeyFortnoxRefreshToken, tok.RefreshToken); err != nil {
		return fmt.Errorf("saving refresh token: %w", err)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "🎉 Success! Your Fortnox service account is now configured")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Next steps:")
	fmt.Fprintln(w, "   1. Test the connection: fortnoxbot check api")
	fmt.Fprintln(w, "   2. Start the bot: fortnoxbot serve")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "💡 Tip: refresh before the token expires, either with cron")
	fmt.Fprintln(w, "   (*/50 * * * * fortnoxbot token refresh) or via refresh.schedule in the config.")

	return nil
}

func tokenRefreshAction(ctx context.Context, cmd *cli.Command) error {
	cfg, store, err := setupWithStore(cmd)
	if err != nil {
		return err
	}
	if cfg.Storage.Type == app.StorageTypeEnv {
		return errors.New("token refresh requires writable storage, env is read-only")
	}

	refresher, err := app.NewTokenRefresher(store)
	if err != nil {
		return err
	}

	if err := refresher.Refresh(ctx); err != nil {
		return fmt.Errorf("token refresh failed: %w", err)
	}

	w := cmd.Root().Writer
	fmt.Fprintln(w, "✅ Access token refreshed")

	if cfg.Refresh.SkipVerify {
		return nil
	}

	client, err := fortnox.New(app.NewStoreCredentialSource(store), fortnox.WithBaseURL(cfg.Fortnox.BaseURL))
	if err != nil {
		return fmt.Errorf("creating fortnox client: %w", err)
	}
	if err := client.Ping(ctx); err != nil {
		// The new token is already persisted; the failed probe still exits
		// non-zero so schedulers notice.
		fmt.Fprintf(w, "⚠️  Token refreshed but verification failed: %v\n", err)
		return fmt.Errorf("post-refresh verification failed: %w", err)
	}

	fmt.Fprintln(w, "✅ Verified: Fortnox API reachable with the new token")
	return nil
}

// clientCredentials reads the OAuth client pair, reporting every missing key
// at once.
func clientCredentials(ctx context.Context, store credstore.Store) (string, string, error) {
	clientID, idErr := store.Get(ctx, credstore.KeyFortnoxClientID)
	clientSecret, secretErr := store.Get(ctx, credstore.KeyFortnoxClientSecret)

	var missing []string
	if idErr != nil {
		if !errors.Is(idErr, credstore.ErrNotSet) {
			return "", "", fmt.Errorf("reading client id: %w", idErr)
		}
		missing = append(missing, credstore.KeyFortnoxClientID)
	}
	if secretErr != nil {
		if !errors.Is(secretErr, credstore.ErrNotSet) {
			return "", "", fmt.Errorf("reading client secret: %w", secretErr)
		}
		missing = append(missing, credstore.KeyFortnoxClientSecret)
	}
	if len(missing) > 0 {
		return "", "", fmt.Errorf("missing credentials: %s (get them from https://developer.fortnox.se/)", strings.Join(missing, ", "))
	}

	return clientID, clientSecret, nil
}

// waitForEnter pauses in interactive sessions so the operator can act on the
// instructions before the flow continues. Non-TTY runs skip the pause.
func waitForEnter(w io.Writer) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return
	}

	fmt.Fprint(w, "Press ENTER once you have opened the URL in your browser...")
	_, _ = bufio.NewReader(os.Stdin).ReadString('\n')
	fmt.Fprintln(w)
}

func preview(value string, n int) string {
	if len(value) <= n {
		return value
	}
	return value[:n] + "..."
}
