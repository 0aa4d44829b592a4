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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"time"

	"github.com/bytedance/sonic"
	settingsservice "github.com/lily-ai/lily/internal/engine/service/settings"
	core "github.com/lily-ai/lily/internal/pkg/settings"
	"github.com/lily-ai/lily/pkg/http"
	"github.com/lily-ai/lily/pkg/version"
	"github.com/spf13/cobra"
)

type options struct {
	server  string
	timeout time.Duration

	org         string
	team        string
	integration string
	user        string
}

func (o *options) client() *http.Client {
	return http.NewClient(o.server, o.timeout)
}

func (o *options) scope() map[string]string {
	q := map[string]string{}
	if o.team != "" {
		q["teamId"] = o.team
	}
	if o.integration != "" {
		q["integrationId"] = o.integration
	}
	if o.user != "" {
		q["userId"] = o.user
	}
	return q
}

func newRootCmd(out io.Writer) *cobra.Command {
	o := &options{}
	root := &cobra.Command{
		Use:           "lilyctl",
		Short:         "lilyctl inspects and edits hierarchical settings",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&o.server, "server", envOr("LILY_SERVER", "http://127.0.0.1:8080/api/v1"), "settings API base URL")
	root.PersistentFlags().DurationVar(&o.timeout, "timeout", 10*time.Second, "request timeout")

	root.AddCommand(
		newResolveCmd(o),
		newExplainCmd(o),
		newInvalidateCmd(o),
		newSetCmd(o),
		newValidateCmd(),
		newSchemaCmd(o),
		version.NewVersionCmd(),
	)
	return root
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func scopeFlags(cmd *cobra.Command, o *options) {
	cmd.Flags().StringVar(&o.org, "org", "", "organization id")
	cmd.Flags().StringVar(&o.team, "team", "", "team id")
	cmd.Flags().StringVar(&o.integration, "integration", "", "integration id")
	cmd.Flags().StringVar(&o.user, "user", "", "user id")
	_ = cmd.MarkFlagRequired("org")
}

func printJSON(w io.Writer, raw json.RawMessage) error {
	if len(raw) == 0 {
		raw = json.RawMessage("null")
	}
	var v any
	if err := sonic.Unmarshal(raw, &v); err != nil {
		return err
	}
	b, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func get(cmd *cobra.Command, o *options, path string, query map[string]string) error {
	var raw json.RawMessage
	if err := o.client().Do(cmd.Context(), "GET", path, query, nil, &raw); err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), raw)
}

func newResolveCmd(o *options) *cobra.Command {
	var namespace string
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve the effective settings of a scope",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/orgs/" + url.PathEscape(o.org) + "/settings"
			if namespace != "" {
				ns, err := core.ParseNamespace(namespace)
				if err != nil {
					return err
				}
				path += "/" + ns.String()
			}
			return get(cmd, o, path, o.scope())
		},
	}
	scopeFlags(cmd, o)
	cmd.Flags().StringVarP(&namespace, "namespace", "n", "", "only this namespace")
	return cmd
}

func newExplainCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explain",
		Short: "Show which level supplied each field and which levels were rejected",
		RunE: func(cmd *cobra.Command, args []string) error {
			return get(cmd, o, "/orgs/"+url.PathEscape(o.org)+"/settings-explain", o.scope())
		},
	}
	scopeFlags(cmd, o)
	return cmd
}

func newInvalidateCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invalidate",
		Short: "Drop every cached resolution of an organization",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/orgs/" + url.PathEscape(o.org) + "/settings/invalidate"
			if err := o.client().Do(cmd.Context(), "POST", path, nil, nil, nil); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "invalidated %s\n", o.org)
			return err
		},
	}
	cmd.Flags().StringVar(&o.org, "org", "", "organization id")
	_ = cmd.MarkFlagRequired("org")
	return cmd
}

func readBlob(path string) (core.Blob, error) {
	var (
		b   []byte
		err error
	)
	if path == "-" {
		b, err = io.ReadAll(os.Stdin)
	} else {
		b, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	var blob core.Blob
	if err := sonic.Unmarshal(b, &blob); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if blob == nil {
		blob = core.Blob{}
	}
	return blob, nil
}

func newSetCmd(o *options) *cobra.Command {
	var kind, id, file string
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Replace the settings blob of an entity",
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := core.ParseEntityKind(kind)
			if err != nil {
				return err
			}
			blob, err := readBlob(file)
			if err != nil {
				return err
			}
			var raw json.RawMessage
			path := "/entities/" + k.String() + "/" + url.PathEscape(id) + "/settings"
			if err := o.client().Do(cmd.Context(), "PUT", path, nil, blob, &raw); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), raw)
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "entity kind: plan, organization, team, integration or user")
	cmd.Flags().StringVar(&id, "id", "", "entity id")
	cmd.Flags().StringVarP(&file, "file", "f", "-", "JSON blob, - for stdin")
	_ = cmd.MarkFlagRequired("kind")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

// newValidateCmd checks a blob offline with the same rules the server applies on write.
func newValidateCmd() *cobra.Command {
	var kind, file string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate an entity blob without contacting the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := core.ParseEntityKind(kind)
			if err != nil {
				return err
			}
			blob, err := readBlob(file)
			if err != nil {
				return err
			}
			if err := settingsservice.ValidateBlob(k, blob); err != nil {
				for _, e := range unjoin(err) {
					fmt.Fprintln(cmd.ErrOrStderr(), e)
				}
				return errors.New("blob is invalid")
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return err
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "entity kind")
	cmd.Flags().StringVarP(&file, "file", "f", "-", "JSON blob, - for stdin")
	_ = cmd.MarkFlagRequired("kind")
	return cmd
}

func unjoin(err error) []error {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}
	return []error{err}
}

func newSchemaCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "schema [namespace]",
		Short: "Print namespace schemas and defaults",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return get(cmd, o, "/settings/schemas", nil)
			}
			ns, err := core.ParseNamespace(args[0])
			if err != nil {
				return err
			}
			return get(cmd, o, "/settings/"+ns.String()+"/schema", nil)
		},
	}
}
