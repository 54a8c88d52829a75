// Package auth obtains an access token with the OAuth 2.0 authorization code flow and PKCE.
//
// [Authorizer.Token] generates [PKCEParameters], binds the loopback callback listener, prints
// the consent URL from [BuildAuthURL] and opens it in the browser, then waits for the redirect.
// The code it carries is traded for a token by [Exchanger], which sends the verifier instead of a
// client secret.
//
// Every terminal failure after the listener is bound is an [*AuthorizationError]. A failed bind
// wraps [shared.ErrListenerBind] and happens before the browser is opened.
package auth
