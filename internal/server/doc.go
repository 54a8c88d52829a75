// Package server provides the local HTTP listener that receives the authorization redirect.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] runs in the order it was added: the first middleware passed to Use is the outermost wrapper.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering, so any path
// other than the registered redirect path answers 404 and a non-GET request answers 405.
//
// # Callback Listener
//
// [CallbackListener] binds a loopback address, serves a single redirect path and resolves exactly once:
//   - error parameter present: 400 page, failure with the error text
//   - code parameter missing: 400 page, failure "missing code"
//   - code present: 200 page, success with the code
//
// Other requests never resolve the listener. Once a result is delivered the server shuts down.
// The listener writes no access logs.
package server
