package main

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
)

// client is a thin JSON client over the service API.
type client struct {
	rc *resty.Client
}

func (a *app) client() *client {
	rc := resty.New().
		SetBaseURL(a.api).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetTimeout(30 * time.Second)
	if a.token != "" {
		rc.SetAuthToken(a.token)
	}
	return &client{rc: rc}
}

func (c *client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	req := c.rc.R().SetContext(ctx)
	if len(query) > 0 {
		req.SetQueryParamsFromValues(query)
	}
	return check(req.Get(path))
}

func (c *client) post(ctx context.Context, path string, body any) ([]byte, error) {
	return check(c.rc.R().SetContext(ctx).SetBody(body).Post(path))
}

func (c *client) put(ctx context.Context, path string, body any) ([]byte, error) {
	return check(c.rc.R().SetContext(ctx).SetBody(body).Put(path))
}

func check(resp *resty.Response, err error) ([]byte, error) {
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode(), resp.String())
	}
	return resp.Body(), nil
}

// print writes the raw response body followed by a newline.
func (a *app) print(data []byte) error {
	_, err := fmt.Fprintln(a.out, string(data))
	return err
}
