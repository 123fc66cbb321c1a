package checkup

import (
	"context"
	"errors"
	"strings"

	"github.com/freke242/fortnox-slack-bot/internal/credstore"
)

// Credentials inspects the Fortnox client credentials for copy-paste damage.
// Stray whitespace or quotes survive a .env round trip and only surface later
// as invalid_grant errors from the token endpoint.
func Credentials(ctx context.Context, store credstore.Store) *Report {
	r := &Report{Title: "🔍 Credential Checker"}

	for _, key := range []string{credstore.KeyFortnoxClientID, credstore.KeyFortnoxClientSecret} {
		value, err := store.Get(ctx, key)
		if err != nil {
			if errors.Is(err, credstore.ErrNotSet) {
				r.add(key, StatusFail, "not set")
			} else {
				r.add(key, StatusFail, "read failed: %v", err)
			}
			continue
		}

		if issues := hygieneIssues(value); len(issues) > 0 {
			r.add(key, StatusFail, "issues found: %s", strings.Join(issues, ", "))
			continue
		}

		r.add(key, StatusOK, "looks clean (length %d)", len(value))
	}

	return r
}

func hygieneIssues(value string) []string {
	var issues []string

	if value != strings.TrimSpace(value) {
		issues = append(issues, "has leading/trailing whitespace")
	}
	if strings.HasPrefix(value, `"`) || strings.HasPrefix(value, "'") {
		issues = append(issues, "starts with a quote")
	}
	if strings.HasSuffix(value, `"`) || strings.HasSuffix(value, "'") {
		issues = append(issues, "ends with a quote")
	}
	if strings.ContainsAny(value, "\n\r") {
		issues = append(issues, "contains newline characters")
	}
	if strings.Contains(value, "\t") {
		issues = append(issues, "contains tab characters")
	}

	return issues
}
