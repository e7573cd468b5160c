package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rediwo/refdata/mcp"
)

func newMCPCmd(opts *rootOptions) *cobra.Command {
	var (
		transport string
		port      int
		apiKey    string
	)

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve read-only asset tools over the Model Context Protocol",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if transport != "stdio" && transport != "http" {
				return fmt.Errorf("unsupported transport: %s", transport)
			}

			s, err := opts.settings()
			if err != nil {
				return err
			}
			// stdout carries the JSON-RPC stream on stdio
			var out io.Writer = cmd.OutOrStdout()
			if transport == "stdio" {
				out = cmd.ErrOrStderr()
			}
			l := newLogger(s, out)
			defer l.Sync()

			a, err := openApp(cmd.Context(), s, l)
			if err != nil {
				return err
			}
			defer a.Close()

			server, err := mcp.NewSDKServer(mcp.ServerConfig{
				Service:         a.service,
				Transport:       transport,
				Port:            port,
				Version:         version,
				Logger:          l,
				APIKey:          apiKey,
				DefaultPageSize: s.DefaultPageSize,
			})
			if err != nil {
				return err
			}
			return server.Start(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&transport, "transport", "stdio", "transport: stdio or http")
	cmd.Flags().IntVar(&port, "port", 3000, "HTTP port for the http transport")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key required by the http transport")
	return cmd
}
