// Package credstore provides persistent key-value storage for API credentials
// and OAuth tokens.
//
// Supports three storage backends with different security and deployment tradeoffs:
//   - File: a dotenv-style file rewritten in place, one line per key
//   - Env: read-only process environment access (requires external secret management)
//   - Keyring: OS-native credential storage (macOS Keychain, Windows Credential Manager, etc.)
//
// Token acquisition and refresh require writable storage (file or keyring),
// while a bot serving with externally managed tokens can run on read-only
// env storage.
package credstore
