package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	capabilityhandler "fhir-server/internal/capability/handler"
	"fhir-server/internal/platform/config"
	"fhir-server/internal/platform/httpserver"
	"fhir-server/internal/platform/logger"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "fhir-server",
		Short:        "FHIR server capability statement service",
		SilenceUsage: true,
	}
	root.AddCommand(newServeCommand(), newCapabilitiesCommand())
	return root
}

func loadApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logger.NewWithWriter(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)
	return newApp(cfg, log)
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve /metadata and operation definitions over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}

			// A misconfigured feature must stop startup rather than fail
			// every metadata request later.
			if _, err := a.statement(cmd.Context(), a.fallbackBaseURL()); err != nil {
				return fmt.Errorf("capability statement: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, a)
		},
	}
}

func serve(ctx context.Context, a *app) error {
	srv := httpserver.New(a.cfg.Server, a.router())
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("starting fhir-server", "addr", a.cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		a.logger.Info("fhir-server stopped")
		return nil
	})

	return g.Wait()
}

func newCapabilitiesCommand() *cobra.Command {
	var (
		output  string
		baseURL string
	)
	cmd := &cobra.Command{
		Use:   "capabilities",
		Short: "Print the capability statement for the current configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			if baseURL == "" {
				baseURL = a.fallbackBaseURL()
			}

			stmt, err := a.statement(cmd.Context(), baseURL)
			if err != nil {
				return err
			}
			resp := capabilityhandler.FromStatement(stmt, a.info, baseURL, time.Now())

			out := cmd.OutOrStdout()
			switch output {
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			case "yaml":
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				if err := enc.Encode(resp); err != nil {
					return err
				}
				return enc.Close()
			default:
				return fmt.Errorf("unsupported output %q (want json or yaml)", output)
			}
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "json", "output format: json or yaml")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "base url for operation definitions (defaults to FHIR_SERVER_BASE_URL)")
	return cmd
}
