// Package soundcloud is a client for the SoundCloud HTTP API.
//
// # Requests
//
// [Client] exposes Get, Post, Put, Delete and Head. Each call resolves the path against
// api.<site>, keeps any query string already on the path, and injects format=json plus
// credentials: oauth_token when an access token is configured, client_id otherwise.
// GET, DELETE and HEAD carry parameters in the query string; POST and PUT in a form body.
// Requests go over https when forced by [Config.UseSSL] or when an access token is present.
//
// # Tokens
//
// [Client.ExchangeToken] supports the refresh-token, password and authorization-code grants,
// chosen in that order from whatever the configuration holds. A 401 from the API triggers one
// exchange and one retry when a refresh token is available; the token request itself is never
// retried. After every exchange the [ExchangeHook] runs, which is where callers persist tokens.
//
// # Responses
//
// JSON objects come back as [*HashResponse], arrays as [*ArrayResponse], anything else as
// [*RawResponse]. Non-2xx responses become a [*ResponseError] whose message carries the status,
// its reason phrase, and the error text from the body when there is one.
package soundcloud
