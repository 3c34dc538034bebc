// Package folio wraps the portfolio projects backend: project CRUD,
// presigned-upload issuance with the matching direct object PUT, and the
// OAuth authorization-code exchange.
//
// Every operation reads the current token at call time, performs exactly
// one request, and maps non-2xx responses to RequestError. Transport
// failures propagate as wrapped errors, except on the direct object PUT,
// which reports a checked UploadResult instead of failing.
package folio
