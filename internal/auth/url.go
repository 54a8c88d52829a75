package auth

import (
	"strings"

	"golang.org/x/oauth2"
)

// BuildAuthURL returns the consent URL the user opens in a browser.
//
// The URL carries response_type=code, the client id, scope, redirect URI and the S256 challenge.
// No state parameter is sent.
func BuildAuthURL(authEndpoint, clientID, scope, redirectURI, challenge string) string {
	conf := &oauth2.Config{
		ClientID:    clientID,
		RedirectURL: redirectURI,
		Scopes:      strings.Fields(scope),
		Endpoint:    oauth2.Endpoint{AuthURL: authEndpoint},
	}

	return conf.AuthCodeURL("",
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
		oauth2.SetAuthURLParam("code_challenge", challenge),
	)
}
