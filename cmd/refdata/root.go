package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rediwo/refdata/config"
	"github.com/rediwo/refdata/logger"
)

type rootOptions struct {
	configFile string
	viper      *viper.Viper
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{viper: config.New()}

	cmd := &cobra.Command{
		Use:   "refdata",
		Short: "Asset reference-data service",
		Long: `refdata stores assets and the asset pairs built from them and serves
them over REST, GraphQL and MCP.

Configuration comes from environment variables (DB_URI, DB_HOST, PORT, ...),
an optional YAML file given with --config, and flags.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (YAML)")
	cmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error, none")
	_ = opts.viper.BindPFlag("log_level", cmd.PersistentFlags().Lookup("log-level"))

	cmd.AddCommand(
		newServeCmd(opts),
		newMigrateCmd(opts),
		newMCPCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

func (o *rootOptions) settings() (*config.Settings, error) {
	s, err := config.Load(o.viper, o.configFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return s, nil
}

// newLogger builds the process logger and installs it as the global default
func newLogger(s *config.Settings, out io.Writer) *logger.ZapLogger {
	l := logger.NewZapLogger("refdata")
	l.SetLevel(logger.ParseLogLevel(s.LogLevel))
	if out != nil {
		l.SetOutput(out)
	}
	logger.SetGlobalLogger(l)
	return l
}
