package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nickyhof/SchemaSpec"
	"github.com/nickyhof/SchemaSpec/config"
	"github.com/nickyhof/SchemaSpec/logging"
)

// Version is set at build time via -ldflags
var Version = "dev"

type options struct {
	configPath string
	port       int
	baseDir    string
	gitUrl     string
	manifest   string
	tlsCert    string
	tlsKey     string
}

func main() {
	if err := newServerCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newServerCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:          "schemaspec-server",
		Short:        "Serve SchemaSpec statements over TCP",
		Version:      Version,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			return serve(cmd, cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "schemaspec.yaml", "Path to the configuration file")
	flags.IntVar(&opts.port, "port", 0, "TCP port to listen on (overrides config)")
	flags.StringVar(&opts.baseDir, "baseDir", "", "Base directory for snapshots (memory if empty)")
	flags.StringVar(&opts.gitUrl, "gitUrl", "", "Git URL to clone snapshots from")
	flags.StringVarP(&opts.manifest, "manifest", "m", "", "Storage object manifest")
	flags.StringVar(&opts.tlsCert, "tls-cert", "", "TLS certificate file")
	flags.StringVar(&opts.tlsKey, "tls-key", "", "TLS key file")
	return cmd
}

func (opts *options) load(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("port") {
		cfg.Server.Port = opts.port
	}
	if opts.baseDir != "" {
		cfg.Persistence.BaseDir = opts.baseDir
	}
	if opts.gitUrl != "" {
		cfg.Persistence.GitURL = opts.gitUrl
	}
	if opts.manifest != "" {
		cfg.Manifest = opts.manifest
	}
	if opts.tlsCert != "" {
		cfg.Server.TLSCert = opts.tlsCert
	}
	if opts.tlsKey != "" {
		cfg.Server.TLSKey = opts.tlsKey
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func serve(cmd *cobra.Command, cfg *config.Config) error {
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	defer logger.Sync()

	instance, err := SchemaSpec.OpenConfig(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer instance.Close()

	var server *Server
	if cfg.Server.Auth.Enabled {
		server = NewServerWithAuth(instance, &AuthConfig{
			Enabled:   true,
			JWTSecret: cfg.Server.Auth.JWTSecret,
			Issuer:    cfg.Server.Auth.Issuer,
			Audience:  cfg.Server.Auth.Audience,
		}, logger)
	} else {
		server = NewServer(instance, SchemaSpec.Identity(cfg), logger)
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	if cfg.Server.TLSCert != "" {
		err = server.StartTLS(addr, cfg.Server.TLSCert, cfg.Server.TLSKey)
	} else {
		err = server.Start(addr)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	fmt.Fprintln(out, "╔═══════════════════════════════════════╗")
	fmt.Fprintf(out, "║   SchemaSpec Server v%-16s ║\n", Version)
	fmt.Fprintln(out, "║   Schema builder and checker          ║")
	fmt.Fprintln(out, "╚═══════════════════════════════════════╝")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Listening on %s\n", server.Addr())
	fmt.Fprintln(out, "Send statements (one per line), 'quit' to disconnect")
	fmt.Fprintln(out)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down")
	server.Stop()
	logger.Info("Server stopped", zap.String("addr", addr))
	return nil
}
