package main

import (
	"github.com/spf13/cobra"

	"github.com/rediwo/refdata/graphql"
	"github.com/rediwo/refdata/rest"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the REST API (and GraphQL at /graphql)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.settings()
			if err != nil {
				return err
			}
			l := newLogger(s, cmd.ErrOrStderr())
			defer l.Sync()

			a, err := openApp(cmd.Context(), s, l)
			if err != nil {
				return err
			}
			defer a.Close()

			if migrate {
				if err := a.migrate(cmd.Context()); err != nil {
					return err
				}
			}

			config := rest.ServerConfig{
				Service:         a.service,
				Port:            s.Port,
				DefaultPageSize: s.DefaultPageSize,
				Logger:          l,
			}
			if s.GraphQL {
				gql, err := graphql.New(a.service, s.DefaultPageSize)
				if err != nil {
					return err
				}
				config.GraphQL = gql.SetLogger(l).EnableGraphiQL()
			}

			server, err := rest.NewServer(config)
			if err != nil {
				return err
			}
			return server.Start(cmd.Context())
		},
	}

	cmd.Flags().Int("port", 0, "HTTP port (default from config, 8080)")
	cmd.Flags().BoolVar(&migrate, "migrate", false, "create missing tables before serving")
	_ = opts.viper.BindPFlag("port", cmd.Flags().Lookup("port"))
	return cmd
}
