// Package services implements the authenticated client for the Spotify Web API.
//
// # Client
//
// [Client] is bound to a single access token. The token is attached as a bearer header by an
// [oauth2.Transport] built from a static token source; it is never refreshed.
//
// [Client.Get] retries every failure kind (transport error, non-2xx status, undecodable body)
// with a fixed delay between attempts. When the attempts run out it returns a [*FetchError],
// which matches [shared.ErrFetchFailed].
//
// [Client.List] follows the page's next link until it is null or absent and concatenates the
// items of every page in order. Next links are absolute and used as-is; other paths are joined
// to the base URL.
//
// An optional [rate.Limiter] paces every attempt.
//
// # Payloads
//
// Responses decode into [JSONObject]. [Decode] and [DecodeAll] convert objects into the typed
// Spotify payloads, and [TracksFromItems] / [AlbumsFromItems] map them to the export model,
// skipping entries whose track or album is null.
package services
