package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nickyhof/SchemaSpec"
	"github.com/nickyhof/SchemaSpec/config"
	"github.com/nickyhof/SchemaSpec/core"
	"github.com/nickyhof/SchemaSpec/db"
	"github.com/nickyhof/SchemaSpec/logging"
	"github.com/nickyhof/SchemaSpec/op"
	"github.com/nickyhof/SchemaSpec/spec"
)

// Version is set at build time via -ldflags
var Version = "dev"

// ErrSchemaMismatch is returned by compare when error-level issues exist.
var ErrSchemaMismatch = errors.New("schema does not match")

// app carries state shared by every subcommand, set up in the root's
// PersistentPreRunE.
type app struct {
	configPath string
	baseDir    string
	gitUrl     string
	manifest   string
	userName   string
	userEmail  string
	verbose    bool

	cfg      *config.Config
	logger   *zap.Logger
	instance *SchemaSpec.Instance
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "schemaspec",
		Short: "Build, snapshot and check relational schemas",
		Long: `SchemaSpec builds the expected database schema from storage object
metadata, keeps every build as a Git snapshot, and compares it against a
live database or an exported dump.

Run without arguments to start the interactive shell.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.teardown()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "schemaspec.yaml", "Path to the configuration file")
	flags.StringVar(&a.baseDir, "baseDir", "", "Base directory for snapshots (memory if empty)")
	flags.StringVar(&a.gitUrl, "gitUrl", "", "Git URL to clone snapshots from")
	flags.StringVarP(&a.manifest, "manifest", "m", "", "Storage object manifest")
	flags.StringVar(&a.userName, "name", "", "User name for snapshot commits")
	flags.StringVar(&a.userEmail, "email", "", "User email for snapshot commits")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	var sqlFile string
	rootCmd.Flags().StringVar(&sqlFile, "sqlFile", "", "Statement file to execute (non-interactive)")
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		if sqlFile != "" {
			cli := NewCLI(a.engine(), cmd.OutOrStdout())
			return cli.importFile(cmd.Context(), sqlFile)
		}
		return a.runShell(cmd)
	}

	rootCmd.AddCommand(
		a.execCmd(),
		a.buildCmd(),
		a.compareCmd(),
		a.watchCmd(),
		versionCmd(),
	)
	return rootCmd
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "version" {
		return nil
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	if a.baseDir != "" {
		cfg.Persistence.BaseDir = a.baseDir
	}
	if a.gitUrl != "" {
		cfg.Persistence.GitURL = a.gitUrl
	}
	if a.manifest != "" {
		cfg.Manifest = a.manifest
	}
	if a.userName != "" {
		cfg.Identity.Name = a.userName
	}
	if a.userEmail != "" {
		cfg.Identity.Email = a.userEmail
	}
	if a.verbose {
		cfg.Logging.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}

	instance, err := SchemaSpec.OpenConfig(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	a.instance = instance
	return nil
}

func (a *app) teardown() {
	if a.instance != nil {
		_ = a.instance.Close()
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

func (a *app) identity() core.Identity {
	return SchemaSpec.Identity(a.cfg)
}

func (a *app) engine() *db.Engine {
	return a.instance.Engine(a.identity())
}

func (a *app) runShell(cmd *cobra.Command) error {
	cli := NewCLI(a.engine(), cmd.OutOrStdout())
	cli.historyFile = getHistoryPath()
	cli.loadHistory()
	cli.printBanner()
	cli.run(cmd.Context(), cmd.InOrStdin())
	return nil
}

func (a *app) execCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exec [statement]",
		Short: "Execute a single statement",
		Example: `  schemaspec exec "SHOW HISTORY LIMIT 5"
  schemaspec exec DESCRIBE phabricator_phurl.phurl_url`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.execute(cmd.Context(), cmd.OutOrStdout(), strings.Join(args, " "))
		},
	}
}

func (a *app) buildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Build the expected schema and snapshot it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.execute(cmd.Context(), cmd.OutOrStdout(), "BUILD SCHEMA")
		},
	}
}

func (a *app) compareCmd() *cobra.Command {
	var with string

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare the expected schema against the live database or a dump",
		Long: `Builds the expected schema and checks the live database (or the dump
given with --with) against it. Exits non-zero when any error-level issue
is found.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			statement := "COMPARE SCHEMA"
			if with != "" {
				statement += " WITH '" + strings.ReplaceAll(with, "'", "''") + "'"
			}

			result, err := a.engine().ExecuteContext(cmd.Context(), statement)
			if err != nil {
				return err
			}
			result.Render(cmd.OutOrStdout())

			if qr, ok := result.(db.QueryResult); ok && countErrors(qr) > 0 {
				fmt.Fprint(cmd.ErrOrStderr(), errorLine("%d error(s) found", countErrors(qr)))
				return ErrSchemaMismatch
			}
			fmt.Fprint(cmd.OutOrStdout(), successLine("Schema matches"))
			return nil
		},
	}
	cmd.Flags().StringVar(&with, "with", "", "Dump to compare with (file, https:// or s3:// URL)")
	return cmd
}

func countErrors(result db.QueryResult) int {
	count := 0
	for _, row := range result.Data {
		if len(row) > 0 && row[0] == "error" {
			count++
		}
	}
	return count
}

func (a *app) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Rebuild and snapshot the schema whenever the manifest changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			watcher, err := spec.NewWatcher(a.cfg.Manifest, a.cfg.SpecOptions(), func(server *core.ServerSchema, err error) {
				a.onManifestBuild(out, server, err)
			}, a.logger)
			if err != nil {
				return err
			}

			server, err := spec.BuildManifest(a.cfg.Manifest, a.cfg.SpecOptions())
			a.onManifestBuild(out, server, err)

			if err := watcher.Start(ctx); err != nil {
				return err
			}
			fmt.Fprintf(out, "Watching %s (Ctrl+C to stop)\n", a.cfg.Manifest)

			<-ctx.Done()
			watcher.Stop()
			return nil
		},
	}
}

func (a *app) onManifestBuild(out io.Writer, server *core.ServerSchema, err error) {
	if err != nil {
		fmt.Fprint(out, errorLine("Build failed: %v", err))
		return
	}

	txn, _, err := op.SaveSnapshot(server, a.instance.Persistence, a.identity())
	if err != nil {
		fmt.Fprint(out, errorLine("Snapshot failed: %v", err))
		return
	}
	if txn.Unchanged {
		fmt.Fprintf(out, "%s\n", warningStyle.Render("Schema unchanged at "+txn.ShortId()))
		return
	}

	databases, tables, columns := server.Counts()
	fmt.Fprint(out, successLine("Snapshot %s: %d database(s), %d table(s), %d column(s)",
		txn.ShortId(), databases, tables, columns))
}

func (a *app) execute(ctx context.Context, out io.Writer, statement string) error {
	result, err := a.engine().ExecuteContext(ctx, statement)
	if err != nil {
		return err
	}
	result.Render(out)
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version info",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "SchemaSpec v%s\n", Version)
		},
	}
}
