// Package auth provides API key authentication middleware for the REST API.
//
// APIKeyMiddleware(mode, header, key) wraps an http.Handler and validates
// the key sent in the named request header.
//
// When mode != "apikey" or key == "", all requests pass through (useful for
// local development with auth disabled). When the key is incorrect or
// absent, the middleware responds 401 immediately.
package auth
