package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/spotify-backup/internal/server"
	"github.com/desertthunder/spotify-backup/internal/services"
	"github.com/desertthunder/spotify-backup/internal/shared"
)

// AuthorizerOpts holds the collaborators of an [Authorizer].
type AuthorizerOpts struct {
	HTTPClient  *http.Client         // used for the token exchange and as the API client's base transport
	OpenBrowser shared.BrowserOpener // defaults to [shared.OpenBrowser]
	Out         io.Writer            // receives the consent link; defaults to stdout
	Logger      *log.Logger
}

// Authorizer runs the authorization code flow with PKCE against a loopback redirect.
type Authorizer struct {
	config      *shared.Config
	authURL     string
	tokenURL    string
	exchanger   *Exchanger
	httpClient  *http.Client
	openBrowser shared.BrowserOpener
	out         io.Writer
	logger      *log.Logger
}

// NewAuthorizer creates an authorizer from the spotify, server, auth and api configuration sections.
//
// Empty endpoint URLs fall back to [services.SpotifyAuthURL] and [services.SpotifyTokenURL].
func NewAuthorizer(config *shared.Config, opts AuthorizerOpts) *Authorizer {
	authURL, tokenURL := config.Spotify.AuthURL, config.Spotify.TokenURL
	if authURL == "" {
		authURL = services.SpotifyAuthURL
	}
	if tokenURL == "" {
		tokenURL = services.SpotifyTokenURL
	}

	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.OpenBrowser == nil {
		opts.OpenBrowser = shared.OpenBrowser
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	return &Authorizer{
		config:      config,
		authURL:     authURL,
		tokenURL:    tokenURL,
		exchanger:   NewExchanger(tokenURL, opts.HTTPClient),
		httpClient:  opts.HTTPClient,
		openBrowser: opts.OpenBrowser,
		out:         opts.Out,
		logger:      opts.Logger,
	}
}

// Authorize obtains an access token and returns an API client bound to it.
func (a *Authorizer) Authorize(ctx context.Context) (*services.Client, error) {
	token, err := a.Token(ctx)
	if err != nil {
		return nil, err
	}
	return services.NewClient(token, a.ClientOpts()), nil
}

// ClientOpts returns the API client options derived from the configuration.
func (a *Authorizer) ClientOpts() services.ClientOpts {
	return services.ClientOpts{
		BaseURL:    a.config.Spotify.APIURL,
		HTTPClient: a.httpClient,
		MaxTries:   a.config.API.MaxTries,
		RetryDelay: a.config.API.RetryDelay,
		RateLimit:  a.config.API.RateLimit,
		Logger:     a.logger,
	}
}

// Token runs the flow and returns the access token.
//
// The listener is bound before the browser opens; a bind failure wraps [shared.ErrListenerBind].
// A denied consent, malformed redirect or failed exchange returns an [*AuthorizationError].
func (a *Authorizer) Token(ctx context.Context) (string, error) {
	pkce := GeneratePKCE()

	listener := server.NewCallbackListener(a.config.Server.Addr(), a.config.Server.RedirectPath)
	if err := listener.Start(); err != nil {
		return "", err
	}
	defer listener.Close()

	redirectURI := listener.RedirectURI()
	authURL := BuildAuthURL(a.authURL, a.config.Spotify.ClientID, a.config.Spotify.Scope, redirectURI, pkce.Challenge)

	fmt.Fprintf(a.out, "Open this link if the browser doesn't open automatically: %s\n", authURL)
	if err := a.openBrowser(authURL); err != nil {
		a.logger.Warn("could not open browser", "err", err)
	}

	a.logger.Debug("waiting for authorization redirect", "addr", listener.Addr())

	waitCtx := ctx
	if a.config.Auth.Timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, a.config.Auth.Timeout)
		defer cancel()
	}

	result, err := listener.Wait(waitCtx)
	switch {
	case err == nil:
	case errors.Is(err, shared.ErrTimeout):
		return "", &AuthorizationError{Reason: "no redirect received before timeout", Err: err}
	default:
		return "", err
	}

	if !result.OK() {
		return "", &AuthorizationError{Reason: result.Reason}
	}

	a.logger.Debug("received authorization code, exchanging")

	token, err := a.exchanger.Exchange(ctx, result.Code, redirectURI, a.config.Spotify.ClientID, pkce.Verifier)
	if err != nil {
		return "", err
	}

	a.logger.Info("authorization complete")
	return token, nil
}
