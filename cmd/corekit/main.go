// Command corekit runs a minimal MCP server exposing the built-in
// calculator, get_datetime, and fetch_url tools, over either stdio or
// Streamable HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/kestrel-mcp/corekit/internal/builtin"
	"github.com/kestrel-mcp/corekit/pkg/mcplog"
	"github.com/kestrel-mcp/corekit/pkg/mcptime"
	"github.com/kestrel-mcp/corekit/pkg/server"
	"github.com/kestrel-mcp/corekit/pkg/transport"
)

func main() {
	httpAddr := flag.String("http", "", "listen address for Streamable HTTP transport, e.g. :8080 (default: stdio)")
	mcpPath := flag.String("path", "/mcp", "HTTP path for the MCP endpoint")
	autoloadDir := flag.String("autoload", "", "directory of tool/resource/prompt JSON manifests")
	watch := flag.Bool("watch", false, "watch -autoload for changes and hot-reload")
	allowedOrigins := flag.String("allowed-origins", "", "comma-separated Origin values accepted over HTTP (default: no check)")
	instructions := flag.String("instructions", "", "usage instructions returned in the initialize result")
	flag.Parse()

	log := mcplog.NewStderrLogger(mcplog.INFO)
	clock := mcptime.System{}

	var t transport.Transport
	if *httpAddr != "" {
		var opts []transport.Option
		if *allowedOrigins != "" {
			opts = append(opts, transport.WithAllowedOrigins(strings.Split(*allowedOrigins, ",")...))
		}
		t = transport.NewHTTPTransport(*httpAddr, *mcpPath, log, clock, opts...)
	} else {
		t = transport.NewStdioTransport(os.Stdin, os.Stdout, log)
		// stdio shares stderr with the process, never stdout: any log
		// line on stdout would corrupt the JSON-RPC stream.
	}

	cfg := &server.Config{
		Name:          "corekit",
		Version:       "0.1.0",
		Description:   "Reference MCP server exposing calculator, get_datetime, and fetch_url tools.",
		Instructions:  *instructions,
		Logger:        log,
		Clock:         clock,
		AutoloadDir:   *autoloadDir,
		WatchAutoload: *watch,
	}

	catalog := builtin.Catalog(clock, log)
	s, err := server.New(t, cfg, catalog)
	if err != nil {
		fmt.Fprintln(os.Stderr, "corekit: building server:", err)
		os.Exit(1)
	}
	if err := builtin.Register(s.Registry(), clock, log); err != nil {
		fmt.Fprintln(os.Stderr, "corekit: registering built-in tools:", err)
		os.Exit(1)
	}

	if err := s.Run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "corekit: server exited:", err)
		os.Exit(1)
	}
}
