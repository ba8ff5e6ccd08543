// Package main provides the xdgmime CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/MatthiasKunnen/xdgmime/internal/config"
	"github.com/MatthiasKunnen/xdgmime/internal/fallback"
	"github.com/MatthiasKunnen/xdgmime/internal/logger"
	"github.com/MatthiasKunnen/xdgmime/resolver"
	"github.com/MatthiasKunnen/xdgmime/sharedmimeinfo"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// errInaccessible is returned by the file command when at least one file could not be read.
var errInaccessible = errors.New("some files could not be accessed")

const unknownMime = "(unknown)"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "xdgmime",
		Short:         "Determine MIME types using the shared MIME-info database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file")

	nameCmd := &cobra.Command{
		Use:   "name <file>...",
		Short: "Print the MIME type of files based on their name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, configPath)
			if err != nil {
				return err
			}
			return runName(cmd.OutOrStdout(), a.newResolver(nil), args)
		},
	}

	fileCmd := &cobra.Command{
		Use:   "file <file>...",
		Short: "Print the MIME type of files based on their content and name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, configPath)
			if err != nil {
				return err
			}
			return runFile(cmd.Context(), cmd.OutOrStdout(), a.newResolver(nil), args)
		},
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve MIME type lookups over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup(cmd, configPath)
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), a)
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "xdgmime", version)
		},
	}

	rootCmd.AddCommand(nameCmd, fileCmd, serveCmd, versionCmd)
	return rootCmd
}

// app holds what every command needs once the configuration is loaded.
type app struct {
	cfg      *config.Config
	log      logger.Logger
	db       *sharedmimeinfo.Database
	fallback resolver.Detector
}

func setup(cmd *cobra.Command, configPath string) (*app, error) {
	ctx := cmd.Context()

	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return nil, err
	}

	if err := logger.Init(cmd.ErrOrStderr(), cfg.LogFormat); err != nil {
		return nil, err
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
	}
	log := logger.Named("xdgmime")

	db, err := loadDatabase(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	detector, err := fallback.New(cfg.Fallback)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:      cfg,
		log:      log,
		db:       db,
		fallback: detector,
	}, nil
}

func loadDatabase(ctx context.Context, cfg *config.Config, log logger.Logger) (*sharedmimeinfo.Database, error) {
	if cfg.Builtin {
		log.Debug(ctx, "using the builtin MIME database")
		return resolver.Builtin(), nil
	}

	var db *sharedmimeinfo.Database
	var err error
	if len(cfg.DataDirs) > 0 {
		db, err = sharedmimeinfo.LoadFromDirs(cfg.DataDirs)
	} else {
		db, err = sharedmimeinfo.LoadFromOs()
	}
	if err != nil {
		return nil, err
	}

	if db.Empty() {
		log.Warn(ctx, "no shared MIME-info database found, using the builtin one")
		return resolver.Builtin(), nil
	}

	return db, nil
}

func (a *app) newResolver(observer resolver.Observer) *resolver.Resolver {
	opts := []resolver.Option{resolver.WithSniffLimit(a.cfg.SniffLimit)}
	if a.fallback != nil {
		opts = append(opts, resolver.WithFallback(a.fallback))
	}
	if observer != nil {
		opts = append(opts, resolver.WithObserver(observer))
	}

	return resolver.New(a.db, opts...)
}

func runName(w io.Writer, r *resolver.Resolver, files []string) error {
	for _, file := range files {
		mime, ok, err := r.ByName(file)
		if err != nil {
			return fmt.Errorf("%q: %w", file, err)
		}
		printResult(w, file, mime, ok)
	}

	return nil
}

func runFile(ctx context.Context, w io.Writer, r *resolver.Resolver, files []string) error {
	log := logger.Named("file")
	var failed bool

	for _, file := range files {
		mime, ok, err := r.ForFile(file)
		switch {
		case errors.Is(err, resolver.ErrNotFound):
			log.Warn(ctx, "file is not accessible", logger.String("file", file), logger.Error(err))
			failed = true
			continue
		case err != nil:
			return fmt.Errorf("%q: %w", file, err)
		}

		printResult(w, file, mime, ok)
	}

	if failed {
		return errInaccessible
	}

	return nil
}

func printResult(w io.Writer, file string, mime string, ok bool) {
	if !ok {
		mime = unknownMime
	}
	fmt.Fprintf(w, "%s: %s\n", file, mime)
}
