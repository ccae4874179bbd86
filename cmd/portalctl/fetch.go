package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/goliatone/go-portal/components/portal"
	"github.com/goliatone/go-portal/pkg/rpc"
)

type fetchCmd struct {
	URL      string            `required:"" help:"Base URL of the portal server (e.g. http://localhost:8069)."`
	Endpoint string            `default:"isic.portal.dashboard" enum:"isic.portal.dashboard,isic.dashboard" help:"Dashboard endpoint to query."`
	Session  string            `env:"PORTAL_SESSION" help:"session_id cookie value."`
	Header   map[string]string `help:"Extra request headers (key=value)."`
	Timeout  time.Duration     `default:"15s" help:"Request timeout."`
}

func (cmd *fetchCmd) Run(ctx context.Context) error {
	client, err := rpc.NewClient(rpc.Config{
		BaseURL:   cmd.URL,
		SessionID: cmd.Session,
		Headers:   cmd.Header,
	})
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, cmd.Timeout)
	defer cancel()
	return fetchDashboard(ctx, client, cmd.Endpoint, os.Stdout)
}

func fetchDashboard(ctx context.Context, caller portal.RemoteCaller, endpoint string, out io.Writer) error {
	payload, err := caller.Call(ctx, endpoint, portal.MethodRetrieveDashboard, []any{})
	if err != nil {
		return fmt.Errorf("portalctl: fetch %s: %w", endpoint, err)
	}
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}
