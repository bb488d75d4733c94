// Package mailtm talks to a mail.tm compatible disposable mail provider.
package mailtm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cocoinbox/cocoinbox/internal/common"
	"github.com/cocoinbox/cocoinbox/internal/server/models"
)

const tokenTTL = 10 * time.Minute

type TokenCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type nopCache struct{}

func (nopCache) Get(context.Context, string) ([]byte, error)              { return nil, nil }
func (nopCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (nopCache) Delete(context.Context, string) error                     { return nil }

type Client struct {
	baseURL string
	http    *http.Client
	cache   TokenCache
}

// NewClient uses a no-op token cache when cache is nil.
func NewClient(baseURL string, httpClient *http.Client, cache TokenCache) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if cache == nil {
		cache = nopCache{}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient, cache: cache}
}

type hydraList[T any] struct {
	Members []T `json:"hydra:member"`
}

type domain struct {
	Domain   string `json:"domain"`
	IsActive bool   `json:"isActive"`
}

type credentials struct {
	Address  string `json:"address"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type message struct {
	ID   string `json:"id"`
	From struct {
		Address string `json:"address"`
		Name    string `json:"name"`
	} `json:"from"`
	Subject   string    `json:"subject"`
	Intro     string    `json:"intro"`
	Seen      bool      `json:"seen"`
	CreatedAt time.Time `json:"createdAt"`
}

// Domain returns the first active domain offered by the provider.
func (c *Client) Domain(ctx context.Context) (string, error) {
	var list hydraList[domain]
	if err := c.do(ctx, http.MethodGet, "/domains", "", nil, &list); err != nil {
		return "", err
	}
	for _, d := range list.Members {
		if d.IsActive && d.Domain != "" {
			return d.Domain, nil
		}
	}
	return "", fmt.Errorf("%w: no active domain", common.ErrorProviderUnavailable)
}

func (c *Client) CreateAccount(ctx context.Context, address, password string) error {
	return c.do(ctx, http.MethodPost, "/accounts", "", credentials{Address: address, Password: password}, nil)
}

// Token returns a provider bearer token, served from cache when possible.
func (c *Client) Token(ctx context.Context, address, password string) (string, error) {
	key := tokenCacheKey(address)
	if b, _ := c.cache.Get(ctx, key); len(b) > 0 {
		return string(b), nil
	}

	var tr tokenResponse
	if err := c.do(ctx, http.MethodPost, "/token", "", credentials{Address: address, Password: password}, &tr); err != nil {
		return "", err
	}
	if tr.Token == "" {
		return "", fmt.Errorf("%w: empty token", common.ErrorProviderUnavailable)
	}
	_ = c.cache.Set(ctx, key, []byte(tr.Token), tokenTTL)
	return tr.Token, nil
}

func (c *Client) Messages(ctx context.Context, address, password string) ([]models.MailMessage, error) {
	token, err := c.Token(ctx, address, password)
	if err != nil {
		return nil, err
	}

	var list hydraList[message]
	if err := c.do(ctx, http.MethodGet, "/messages", token, nil, &list); err != nil {
		var se *statusError
		if errors.As(err, &se) && se.code == http.StatusUnauthorized {
			_ = c.cache.Delete(ctx, tokenCacheKey(address))
		}
		return nil, err
	}

	out := make([]models.MailMessage, 0, len(list.Members))
	for _, m := range list.Members {
		from := m.From.Address
		if m.From.Name != "" {
			from = fmt.Sprintf("%s <%s>", m.From.Name, m.From.Address)
		}
		out = append(out, models.MailMessage{
			ID:        m.ID,
			From:      from,
			Subject:   m.Subject,
			Intro:     m.Intro,
			Seen:      m.Seen,
			CreatedAt: m.CreatedAt,
		})
	}
	return out, nil
}

func tokenCacheKey(address string) string {
	return "mailtm:token:" + address
}

type statusError struct {
	code int
	path string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%s: %s returned %d", common.ErrorProviderUnavailable, e.path, e.code)
}

func (e *statusError) Unwrap() error {
	return common.ErrorProviderUnavailable
}

func (c *Client) do(ctx context.Context, method, path, bearer string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/ld+json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", common.BearerPrefix+bearer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrorProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &statusError{code: resp.StatusCode, path: path}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", common.ErrorProviderUnavailable, path, err)
	}
	return nil
}
