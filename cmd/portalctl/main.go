package main

import (
	"context"

	"github.com/alecthomas/kong"
)

type cli struct {
	Serve           serveCmd    `cmd:"" help:"Serve the portal dashboards over HTTP, JSON-RPC and WebSocket."`
	Fetch           fetchCmd    `cmd:"" help:"Call retrieve_dashboard on a running portal and print the payload."`
	Brand           brandCmd    `cmd:"" help:"Apply branding rules to an HTML page."`
	ScaffoldSection scaffoldCmd `cmd:"" name:"scaffold-section" help:"Add a dashboard section to a manifest."`
}

func main() {
	ctx := kong.Parse(&cli{},
		kong.Name("portalctl"),
		kong.Description("Operations utility for the academic portal dashboards."),
		kong.UsageOnError(),
	)
	err := ctx.Run(context.Background())
	ctx.FatalIfErrorf(err)
}
