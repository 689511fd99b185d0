// Package angora adapts the Angora document-store API to the uniform
// DMSProvider contract: bearer-token login, first-class departments, and
// refresh-token rotation on 401.
package angora

import (
	"context"
	"net/http"
	"time"

	"github.com/EisenVault/evdms/internal/driver"
	"github.com/EisenVault/evdms/internal/errs"
	"github.com/EisenVault/evdms/internal/model"
	"github.com/EisenVault/evdms/internal/utils"
	"github.com/avast/retry-go"
	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type Angora struct {
	t   *transport
	log logrus.FieldLogger
}

var _ driver.DMSProvider = (*Angora)(nil)

func (d *Angora) Login(ctx context.Context, username, password string) (*model.AuthResponse, error) {
	d.log.WithFields(utils.Redact(logrus.Fields{
		"op": "login", "username": username, "password": password,
	})).Info("authenticating")

	var env envelope[loginData]
	err := d.t.anonymous(ctx, http.MethodPost, "/api/auth/login", func(r *resty.Request) {
		r.SetBody(loginRequest{Username: username, Password: password})
	}, &env)
	if err != nil {
		d.log.WithField("op", "login").WithError(err).Error("authentication failed")
		return nil, err
	}
	if env.Data.Token == "" {
		return nil, errors.Wrap(errs.ResponseFormat, "login response carries no token")
	}
	d.t.SetTokens(env.Data.Token, env.Data.RefreshToken)

	// Profile enrichment is best-effort: the login already succeeded.
	user, perr := d.fetchProfile(ctx)
	if perr != nil {
		d.log.WithField("op", "login").WithError(perr).Warn("profile fetch failed, returning degraded profile")
		if env.Data.User.ID != "" {
			user = mapUser(env.Data.User)
		} else {
			user = model.DegradedProfile(username)
		}
	}
	d.log.WithFields(logrus.Fields{"op": "login", "user": user.ID}).Info("authenticated")
	return &model.AuthResponse{Token: env.Data.Token, User: user}, nil
}

// fetchProfile loads the authenticated user's record with a short fixed-delay
// retry, matching the one place the app historically retried.
func (d *Angora) fetchProfile(ctx context.Context) (model.UserProfile, error) {
	var env envelope[wireUser]
	err := retry.Do(
		func() error {
			return d.t.request(ctx, http.MethodGet, "/api/auth/me", nil, &env)
		},
		retry.Attempts(3),
		retry.Delay(500*time.Millisecond),
		retry.DelayType(retry.FixedDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return model.UserProfile{}, err
	}
	if env.Data.ID == "" {
		return model.UserProfile{}, errors.Wrap(errs.ResponseFormat, "profile response carries no user id")
	}
	return mapUser(env.Data), nil
}

// Logout is best-effort remotely and unconditionally clears the local token.
func (d *Angora) Logout(ctx context.Context) error {
	if d.t.IsAuthenticated() {
		if err := d.t.request(ctx, http.MethodPost, "/api/auth/logout", nil, nil); err != nil {
			d.log.WithField("op", "logout").WithError(err).Warn("remote logout failed, clearing session anyway")
		}
	}
	d.t.ClearTokens()
	return nil
}

func (d *Angora) SetToken(token string) {
	if token == "" {
		d.t.ClearTokens()
		return
	}
	d.t.SetTokens(token, "")
}

func (d *Angora) GetToken() string { return d.t.Token() }

func (d *Angora) IsAuthenticated() bool { return d.t.IsAuthenticated() }
