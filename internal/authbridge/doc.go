// Package authbridge relays authentication state between a host process
// and the embedded folio client over a small typed message protocol.
//
// The protocol is a closed set of five message kinds. The host drives the
// token store with SET_AUTH_TOKEN, CLEAR_AUTH_TOKEN and CHECK_AUTH_STATUS;
// every handled control message is answered with exactly one AUTH_STATUS
// reply to its sender. The embedded side may solicit credentials with
// REQUEST_AUTH. Messages are independently actionable; there is no
// sequencing and no correlation id.
//
// Anything outside the protocol (an unknown kind, a malformed payload, a
// SET_AUTH_TOKEN without a token) is dropped without a reply and without
// an error. WithDropHook gives hosts a diagnostic channel into those drops
// without changing the no-raise contract.
//
// By default the bridge acts on control messages from any origin, matching
// the embedding contract it replaces. Hosts that can name their peers
// should pass WithAllowedOrigins so that unlisted origins cannot set or
// clear credentials.
package authbridge
