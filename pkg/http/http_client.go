// Copyright 2025 Lily Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package http

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
)

// APIError is a non-success envelope returned by the server.
type APIError struct {
	Status int
	Code   int
	Msg    string
	Detail json.RawMessage
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d (http %d): %s", e.Code, e.Status, e.Msg)
}

type envelope struct {
	Code   int             `json:"code"`
	Msg    string          `json:"msg"`
	ErrMsg any             `json:"errMsg"`
	Detail json.RawMessage `json:"detail"`
}

// Client calls the settings API and unwraps its response envelope.
type Client struct {
	rc *resty.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	rc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal)
	return &Client{rc: rc}
}

// Do sends the request and decodes the envelope detail into out, if non-nil.
func (c *Client) Do(ctx context.Context, method, path string, query map[string]string, body, out any) error {
	var env envelope
	req := c.rc.R().
		SetContext(ctx).
		SetQueryParams(query).
		SetResult(&env).
		SetError(&env)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.IsError() || env.Code != Success.Code {
		msg := env.Msg
		if s, ok := env.ErrMsg.(string); ok && s != "" {
			msg = s
		}
		if msg == "" {
			msg = resp.Status()
		}
		return &APIError{Status: resp.StatusCode(), Code: env.Code, Msg: msg, Detail: env.Detail}
	}
	if out == nil || len(env.Detail) == 0 {
		return nil
	}
	return sonic.Unmarshal(env.Detail, out)
}
