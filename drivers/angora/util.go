package angora

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/EisenVault/evdms/internal/conf"
	"github.com/EisenVault/evdms/internal/errs"
	"github.com/EisenVault/evdms/internal/utils"
	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// The Angora gateway multiplexes several logical services; every request must
// carry the portal and service discriminators.
const (
	headerPortal  = "x-portal"
	headerService = "x-service-name"
	portalName    = "mobile"
	serviceName   = "dms"
)

// transport is the single choke point for every outbound Angora call. It owns
// the token pair and the single-flight refresh path.
type transport struct {
	client *resty.Client
	log    logrus.FieldLogger

	mu           sync.RWMutex
	token        string
	refreshToken string

	refreshGroup singleflight.Group
}

func newTransport(cfg conf.Api, log logrus.FieldLogger) *transport {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.EffectiveTimeout()).
		SetHeader("Accept", "application/json").
		SetHeader(headerPortal, portalName).
		SetHeader(headerService, serviceName)
	for k, v := range cfg.Headers {
		client.SetHeader(k, v)
	}
	return &transport{client: client, log: log}
}

func (t *transport) Token() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.token
}

func (t *transport) RefreshTokenValue() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.refreshToken
}

func (t *transport) IsAuthenticated() bool {
	return t.Token() != ""
}

func (t *transport) SetTokens(token, refresh string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.token = token
	t.refreshToken = refresh
}

func (t *transport) ClearTokens() {
	t.SetTokens("", "")
}

// roundTrip performs an authenticated call. On a 401 with a refresh token
// present it refreshes once and retries with the new token; a failed refresh
// clears both tokens and surfaces the original 401. When another caller
// already rotated the token, the refresh is skipped and the retry reuses the
// rotated token directly. rearm runs before the retry and reports whether the
// request body was rebuilt; a non-nil rearm returning false suppresses the
// retry so a drained body is never resent.
func (t *transport) roundTrip(ctx context.Context, method, path string, build func(*resty.Request), rearm func() bool) (*resty.Response, error) {
	token := t.Token()
	if token == "" {
		return nil, errors.Wrap(errs.Authentication, "no token set; call Login or SetToken first")
	}
	resp, err := t.execute(ctx, method, path, token, build)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != http.StatusUnauthorized || t.RefreshTokenValue() == "" {
		return resp, nil
	}
	if t.Token() == token {
		if rerr := t.refresh(ctx); rerr != nil {
			t.ClearTokens()
			t.log.WithError(rerr).Warn("token refresh failed, session cleared")
			return nil, t.errorFrom(resp)
		}
	}
	if rearm != nil && !rearm() {
		return resp, nil
	}
	return t.execute(ctx, method, path, t.Token(), build)
}

// request performs an authenticated call and decodes the JSON body into out
// when out is non-nil.
func (t *transport) request(ctx context.Context, method, path string, build func(*resty.Request), out any) error {
	resp, err := t.roundTrip(ctx, method, path, build, nil)
	if err != nil {
		return err
	}
	return t.finish(resp, out)
}

// requestStream is request for calls whose body streams from a reader. The
// rearm gate decides whether the body can be replayed after a token refresh;
// when it cannot, the 401 propagates and the caller resumes the transfer.
func (t *transport) requestStream(ctx context.Context, method, path string, build func(*resty.Request), rearm func() bool, out any) error {
	resp, err := t.roundTrip(ctx, method, path, build, rearm)
	if err != nil {
		return err
	}
	return t.finish(resp, out)
}

// anonymous performs an unauthenticated call (login, refresh).
func (t *transport) anonymous(ctx context.Context, method, path string, build func(*resty.Request), out any) error {
	resp, err := t.execute(ctx, method, path, "", build)
	if err != nil {
		return err
	}
	return t.finish(resp, out)
}

// download performs an authenticated call and returns the raw body.
func (t *transport) download(ctx context.Context, path string) ([]byte, error) {
	resp, err := t.roundTrip(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, t.errorFrom(resp)
	}
	return resp.Body(), nil
}

func (t *transport) execute(ctx context.Context, method, path, token string, build func(*resty.Request)) (*resty.Response, error) {
	req := t.client.R().SetContext(ctx)
	if token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}
	if build != nil {
		build(req)
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, errs.FromTransport(err)
	}
	return resp, nil
}

func (t *transport) finish(resp *resty.Response, out any) error {
	if resp.IsError() {
		return t.errorFrom(resp)
	}
	if out == nil {
		return nil
	}
	body := bytes.TrimSpace(resp.Body())
	if len(body) == 0 {
		return errors.Wrapf(errs.ResponseFormat, "empty body from %s", resp.Request.URL)
	}
	if err := utils.Json.Unmarshal(body, out); err != nil {
		return errors.Wrapf(errs.ResponseFormat, "decoding %s: %s", resp.Request.URL, err)
	}
	return nil
}

// errorFrom translates a non-2xx response into the error taxonomy, pulling a
// human-readable message out of the Angora error envelope when present.
func (t *transport) errorFrom(resp *resty.Response) error {
	msg := resp.Status()
	var env errorEnvelope
	if err := utils.Json.Unmarshal(resp.Body(), &env); err == nil {
		if env.Error.Message != "" {
			msg = env.Error.Message
		} else if env.Message != "" {
			msg = env.Message
		}
	} else if text := strings.TrimSpace(resp.String()); text != "" {
		msg = text
	}

	code := resp.StatusCode()
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return errors.Wrapf(errs.Authentication, "%s (status %d)", msg, code)
	case code == http.StatusNotFound:
		return errors.Wrapf(errs.NotFound, "%s (status %d)", msg, code)
	case code == http.StatusBadRequest:
		return errors.Wrapf(errs.Validation, "%s (status %d)", msg, code)
	default:
		return errors.Wrapf(errs.Network, "%s (status %d)", msg, code)
	}
}

// refresh rotates the token pair. Concurrent callers share one in-flight
// refresh request.
func (t *transport) refresh(ctx context.Context) error {
	_, err, _ := t.refreshGroup.Do("token-refresh", func() (any, error) {
		rt := t.RefreshTokenValue()
		if rt == "" {
			return nil, errors.Wrap(errs.Authentication, "refresh token missing")
		}
		var env envelope[refreshData]
		err := t.anonymous(ctx, http.MethodPost, "/api/auth/refresh", func(r *resty.Request) {
			r.SetBody(refreshRequest{RefreshToken: rt})
		}, &env)
		if err != nil {
			return nil, err
		}
		if env.Data.Token == "" {
			return nil, errors.Wrap(errs.ResponseFormat, "refresh response carries no token")
		}
		next := env.Data.RefreshToken
		if next == "" {
			next = rt
		}
		t.SetTokens(env.Data.Token, next)
		t.log.Debug("access token refreshed")
		return nil, nil
	})
	return err
}
