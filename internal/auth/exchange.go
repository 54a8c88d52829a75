package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"

	"github.com/desertthunder/spotify-backup/internal/shared"
)

// Exchanger trades an authorization code for an access token.
//
// Public client: no secret is sent, the PKCE verifier proves possession instead.
type Exchanger struct {
	tokenURL   string
	httpClient *http.Client
}

// NewExchanger creates an exchanger for tokenURL. A nil client uses [http.DefaultClient].
func NewExchanger(tokenURL string, client *http.Client) *Exchanger {
	if client == nil {
		client = http.DefaultClient
	}
	return &Exchanger{tokenURL: tokenURL, httpClient: client}
}

// Exchange posts grant_type, code, redirect_uri, client_id and code_verifier as a form and returns
// the access token. The request is made once.
func (e *Exchanger) Exchange(ctx context.Context, code, redirectURI, clientID, verifier string) (string, error) {
	conf := &oauth2.Config{
		ClientID:    clientID,
		RedirectURL: redirectURI,
		Endpoint: oauth2.Endpoint{
			TokenURL:  e.tokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, e.httpClient)
	token, err := conf.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return "", exchangeError(err)
	}
	if token.AccessToken == "" {
		return "", &AuthorizationError{Reason: shared.ErrNoAccessToken.Error(), Err: shared.ErrNoAccessToken}
	}

	return token.AccessToken, nil
}

func exchangeError(err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		status := 0
		if re.Response != nil {
			status = re.Response.StatusCode
		}
		body := strings.TrimSpace(string(re.Body))
		return &AuthorizationError{
			Reason: fmt.Sprintf("token exchange failed (status %d): %s", status, body),
			Err:    err,
		}
	}

	if strings.Contains(err.Error(), "missing access_token") {
		return &AuthorizationError{Reason: shared.ErrNoAccessToken.Error(), Err: shared.ErrNoAccessToken}
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	return &AuthorizationError{Reason: "token exchange failed: " + err.Error(), Err: err}
}
