// Package tokenstore provides the storage tiers backing the current
// authentication token.
//
// Three backends with different lifetimes and security tradeoffs:
//   - Memory: session tier, lives exactly as long as the process
//   - File: persistent tier with atomic writes and secure permissions
//   - Keyring: persistent tier in OS-native credential storage
//     (macOS Keychain, Windows Credential Manager, etc.)
//
// Tiered composes a session tier over a persistent one: reads prefer the
// session value, writes target the session tier only, and Clear wipes
// both. The persistent tier is seeded by an external flow (see the login
// command), never by Tiered itself.
package tokenstore
