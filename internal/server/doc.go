// Package server provides HTTP routing, middleware, and the OAuth redirect handler used by `scx auth login`.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # OAuth Callback Handler
//
// [OAuthHandler] completes the authorization-code flow. It checks the state parameter against the
// id generated by [NewState], hands the code to the client's token exchange, and sends the result
// through a channel. Only the first callback is processed.
//
// # Callback Server
//
// [CallbackServer] binds the redirect URI's host and port, serves the handler, and shuts down once
// a result arrives or the timeout elapses.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
