package checkup

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/freke242/fortnox-slack-bot/internal/credstore"
)

// DefaultProbeURL is fetched by Setup to confirm outbound connectivity.
const DefaultProbeURL = "https://api.slack.com"

// SetupOptions control the environment checks run by Setup.
type SetupOptions struct {
	// EnvFile is the credentials file to inspect; empty skips the file and
	// permission checks.
	EnvFile string
	// ProbeURL overrides the connectivity probe target.
	ProbeURL string
	// HTTPClient performs the connectivity probe. A client with a 5s timeout
	// is used when nil.
	HTTPClient *http.Client
}

// requiredKeys is what serve needs at startup, in reporting order.
var requiredKeys = []string{
	credstore.KeySlackBotToken,
	credstore.KeySlackSigningSecret,
	credstore.KeySlackAppToken,
	credstore.KeyFortnoxAccessToken,
	credstore.KeyFortnoxClientSecret,
}

// Setup runs the umbrella environment check: credentials file, stored keys,
// file permissions, and outbound connectivity. Permission and network
// problems are warnings; everything else fails the report.
func Setup(ctx context.Context, store credstore.Store, opts SetupOptions) *Report {
	r := &Report{Title: "🔍 Fortnox Slack Bot - Setup Checker"}

	checkEnvFile(r, opts.EnvFile)
	checkRequiredKeys(ctx, r, store)
	checkConnectivity(ctx, r, opts)

	return r
}

func checkEnvFile(r *Report, path string) {
	if path == "" {
		return
	}

	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		r.add("credentials file", StatusFail, "%s not found, copy .env.example and fill in your credentials", path)
		return
	}
	if err != nil {
		r.add("credentials file", StatusFail, "stat %s: %v", path, err)
		return
	}
	r.add("credentials file", StatusOK, "%s exists", path)

	// File modes are advisory on Windows.
	if runtime.GOOS == "windows" {
		return
	}
	mode := info.Mode().Perm()
	if mode == 0o600 || mode == 0o644 {
		r.add("file permissions", StatusOK, "secure permissions (%#o)", mode)
	} else {
		r.add("file permissions", StatusWarn, "permissions %#o, recommend 600 (chmod 600 %s)", mode, path)
	}
}

func checkRequiredKeys(ctx context.Context, r *Report, store credstore.Store) {
	var missing []string
	for _, key := range requiredKeys {
		if _, err := store.Get(ctx, key); err != nil {
			missing = append(missing, key)
		}
	}

	if len(missing) > 0 {
		r.add("credential keys", StatusFail, "missing: %s", strings.Join(missing, ", "))
		return
	}
	r.add("credential keys", StatusOK, "all %d keys set", len(requiredKeys))
}

func checkConnectivity(ctx context.Context, r *Report, opts SetupOptions) {
	probeURL := opts.ProbeURL
	if probeURL == "" {
		probeURL = DefaultProbeURL
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, probeURL, nil)
	if err != nil {
		r.add("network", StatusWarn, "network check failed: %v", err)
		return
	}

	// Any response counts as reachable; we probe the route, not the service.
	resp, err := client.Do(req)
	if err != nil {
		r.add("network", StatusWarn, "network check failed: %v", err)
		return
	}
	defer func() { _ = resp.Body.Close() }()

	r.add("network", StatusOK, "can reach %s", probeURL)
}
