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

package main

import (
	"bytes"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seen struct {
	method string
	path   string
	query  string
	body   string
}

func fakeServer(t *testing.T, status int, reply string) (*httptest.Server, *seen) {
	t.Helper()
	s := &seen{}
	srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		b, _ := io.ReadAll(r.Body)
		s.method, s.path, s.query, s.body = r.Method, r.URL.Path, r.URL.RawQuery, string(b)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)
	return srv, s
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestResolve(t *testing.T) {
	srv, s := fakeServer(t, 200, `{"code":200,"msg":"success","detail":{"pricing":{"currency":"USD"}}}`)

	out, err := run(t, "--server", srv.URL, "resolve", "--org", "org-1", "--team", "team-1", "-n", "pricing")
	require.NoError(t, err)
	assert.Equal(t, "GET", s.method)
	assert.Equal(t, "/orgs/org-1/settings/pricing", s.path)
	assert.Equal(t, "teamId=team-1", s.query)
	assert.Contains(t, out, `"currency": "USD"`)
}

func TestResolve_RequiresOrg(t *testing.T) {
	_, err := run(t, "resolve")
	assert.Error(t, err)
}

func TestResolve_UnknownNamespace(t *testing.T) {
	_, err := run(t, "resolve", "--org", "org-1", "-n", "billing")
	assert.Error(t, err)
}

func TestExplain_APIError(t *testing.T) {
	srv, s := fakeServer(t, 404, `{"code":4041,"errMsg":"organization not found","path":"/orgs/org-9/settings-explain"}`)

	_, err := run(t, "--server", srv.URL, "explain", "--org", "org-9")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "organization not found")
	assert.Equal(t, "/orgs/org-9/settings-explain", s.path)
}

func TestInvalidate(t *testing.T) {
	srv, s := fakeServer(t, 200, `{"code":200,"msg":"invalidate settings cache"}`)

	out, err := run(t, "--server", srv.URL, "invalidate", "--org", "org-1")
	require.NoError(t, err)
	assert.Equal(t, "POST", s.method)
	assert.Equal(t, "/orgs/org-1/settings/invalidate", s.path)
	assert.Equal(t, "invalidated org-1\n", out)
}

func writeBlob(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "blob.json")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestSet(t *testing.T) {
	srv, s := fakeServer(t, 200, `{"code":200,"detail":{"entity":{"kind":"team","id":"team-1"},"invalidated":["org-1"]}}`)
	blob := writeBlob(t, `{"weather_enabled": false}`)

	out, err := run(t, "--server", srv.URL, "set", "--kind", "team", "--id", "team-1", "-f", blob)
	require.NoError(t, err)
	assert.Equal(t, "PUT", s.method)
	assert.Equal(t, "/entities/team/team-1/settings", s.path)
	assert.JSONEq(t, `{"weather_enabled": false}`, s.body)
	assert.Contains(t, out, "org-1")
}

func TestSet_BadKind(t *testing.T) {
	_, err := run(t, "set", "--kind", "tenant", "--id", "x", "-f", writeBlob(t, `{}`))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	out, err := run(t, "validate", "--kind", "user", "-f", writeBlob(t, `{}`))
	require.NoError(t, err)
	assert.Equal(t, "ok\n", out)

	_, err = run(t, "validate", "--kind", "user", "-f", writeBlob(t, `{not json`))
	assert.Error(t, err)
}

func TestSchema(t *testing.T) {
	srv, s := fakeServer(t, 200, `{"code":200,"detail":{"schema":{"namespace":"weather"}}}`)

	_, err := run(t, "--server", srv.URL, "schema", "weather")
	require.NoError(t, err)
	assert.Equal(t, "/settings/weather/schema", s.path)

	_, err = run(t, "--server", srv.URL, "schema")
	require.NoError(t, err)
	assert.Equal(t, "/settings/schemas", s.path)
}
