package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/minestat/launcher/internal/logging"
	"github.com/minestat/launcher/internal/models"
)

// clientToken identifies this launcher to the legacy authentication API.
const clientToken = "MinestatLauncher"

// maxResponseBytes caps how much of a remote response is read.
const maxResponseBytes = 1 << 20

// Endpoints are the remote authority's HTTP endpoints. Tests point them at
// an httptest server.
type Endpoints struct {
	// AuthURL accepts legacy direct-credential logins.
	AuthURL string
	// ValidateURL checks whether an access token is still valid.
	ValidateURL string
	// TokenURL exchanges a refresh token for a new access token.
	TokenURL string
	// ProfileURL returns the profile behind a bearer token.
	ProfileURL string
}

// DefaultEndpoints returns the production endpoints.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		AuthURL:     "https://authserver.mojang.com/authenticate",
		ValidateURL: "https://authserver.mojang.com/validate",
		TokenURL:    "https://login.live.com/oauth20_token.srf",
		ProfileURL:  "https://api.minecraftservices.com/minecraft/profile",
	}
}

// RemoteProvider obtains a verified identity from an external authority,
// either through the OAuth device flow (interactive step delegated to a
// DeviceAuthorizer) or through the legacy direct-credential API. Network
// failures of any kind become Failure results, never panics; the transport
// timeout is the only cancellation mechanism.
type RemoteProvider struct {
	http       *http.Client
	endpoints  Endpoints
	authorizer DeviceAuthorizer
	log        logging.Logger
}

func NewRemoteProvider(endpoints Endpoints, authorizer DeviceAuthorizer, timeout time.Duration, log logging.Logger) *RemoteProvider {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &RemoteProvider{
		http:       &http.Client{Timeout: timeout},
		endpoints:  endpoints,
		authorizer: authorizer,
		log:        log,
	}
}

// AuthenticateDeviceFlow runs the device flow: the authorizer performs the
// out-of-band browser exchange and returns the issued token pair, then the
// profile (id and display name) is fetched with the access token.
func (p *RemoteProvider) AuthenticateDeviceFlow(ctx context.Context) *models.Result {
	if p.authorizer == nil {
		return models.NewFailure("Device authorization is not available")
	}

	grant, err := p.authorizer.Authorize(ctx)
	if err != nil {
		p.log.Error(ctx, "device authorization failed", "error", err)
		return models.NewFailure("Device authorization failed: " + err.Error())
	}

	id, name, err := p.fetchProfile(ctx, grant.AccessToken)
	if err != nil {
		p.log.Error(ctx, "profile lookup failed", "error", err)
		return models.NewFailure("Profile lookup failed: " + err.Error())
	}

	p.log.Info(ctx, "device-flow authentication successful", "user", name)
	profile := models.NewPremiumProfile(id, name, models.AccountOAuth)
	return models.NewSuccess(profile, grant.AccessToken, grant.RefreshToken)
}

// AuthenticateCredentials submits identifier+secret to the legacy
// authentication endpoint. The server-reported error text is forwarded when
// available; transport errors and malformed payloads become generic
// failures.
func (p *RemoteProvider) AuthenticateCredentials(ctx context.Context, identifier, secret string) *models.Result {
	payload := struct {
		Username    string `json:"username"`
		Password    string `json:"password"`
		ClientToken string `json:"clientToken"`
		RequestUser bool   `json:"requestUser"`
		Agent       struct {
			Name    string `json:"name"`
			Version int    `json:"version"`
		} `json:"agent"`
	}{
		Username:    identifier,
		Password:    secret,
		ClientToken: clientToken,
		RequestUser: true,
	}
	payload.Agent.Name = "Minecraft"
	payload.Agent.Version = 1

	status, body, err := p.postJSON(ctx, p.endpoints.AuthURL, payload)
	if err != nil {
		p.log.Error(ctx, "legacy authentication failed", "error", err)
		return models.NewFailure("Authentication error: " + err.Error())
	}

	if status/100 != 2 {
		var remoteErr struct {
			ErrorMessage string `json:"errorMessage"`
		}
		if json.Unmarshal(body, &remoteErr) == nil && remoteErr.ErrorMessage != "" {
			return models.NewFailure(remoteErr.ErrorMessage)
		}
		return models.NewFailure(fmt.Sprintf("Authentication request rejected (status %d)", status))
	}

	var out struct {
		AccessToken     string `json:"accessToken"`
		SelectedProfile struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"selectedProfile"`
	}
	if err := json.Unmarshal(body, &out); err != nil ||
		out.AccessToken == "" || out.SelectedProfile.ID == "" {
		return models.NewFailure("Malformed authentication response")
	}

	p.log.Info(ctx, "legacy authentication successful", "user", out.SelectedProfile.Name)
	profile := models.NewPremiumProfile(out.SelectedProfile.ID, out.SelectedProfile.Name, models.AccountLegacy)
	return models.NewSuccess(profile, out.AccessToken, "")
}

// RefreshToken exchanges a refresh token for a new access token.
// Best effort: any failure is returned as an error for the caller to ignore.
func (p *RemoteProvider) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoints.TokenURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	status, body, err := p.do(req)
	if err != nil {
		return "", err
	}
	if status/100 != 2 {
		return "", fmt.Errorf("token refresh rejected (status %d)", status)
	}

	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &out); err != nil || out.AccessToken == "" {
		return "", fmt.Errorf("malformed token refresh response")
	}
	return out.AccessToken, nil
}

// ValidateToken round-trips the token to the validation endpoint.
// Fails closed: any transport error counts as invalid.
func (p *RemoteProvider) ValidateToken(ctx context.Context, accessToken string) bool {
	payload := struct {
		AccessToken string `json:"accessToken"`
	}{AccessToken: accessToken}

	status, _, err := p.postJSON(ctx, p.endpoints.ValidateURL, payload)
	if err != nil {
		p.log.Warn(ctx, "token validation failed", "error", err)
		return false
	}
	return status/100 == 2
}

func (p *RemoteProvider) fetchProfile(ctx context.Context, accessToken string) (id, name string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoints.ProfileURL, nil)
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	status, body, err := p.do(req)
	if err != nil {
		return "", "", err
	}
	if status/100 != 2 {
		return "", "", fmt.Errorf("profile request rejected (status %d)", status)
	}

	var out struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(body, &out); err != nil || out.ID == "" || out.Name == "" {
		return "", "", fmt.Errorf("malformed profile response")
	}
	return out.ID, out.Name, nil
}

func (p *RemoteProvider) postJSON(ctx context.Context, endpoint string, payload any) (int, []byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	return p.do(req)
}

func (p *RemoteProvider) do(req *http.Request) (int, []byte, error) {
	resp, err := p.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, body, nil
}
