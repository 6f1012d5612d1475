package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/warp/timesheet-engine/api"
	"github.com/warp/timesheet-engine/export"
	"github.com/warp/timesheet-engine/timesheet"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		handler := api.NewHandler(service)
		router := api.NewRouter(handler, api.Options{
			AllowedOrigins: cfg.AllowedOrigins,
			EnableMetrics:  cfg.Metrics,
		})

		server := &http.Server{
			Addr:         cfg.Listen,
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		errc := make(chan error, 1)
		go func() {
			log.Printf("Server listening on %s", cfg.Listen)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errc <- err
			}
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case err := <-errc:
			return err
		case <-quit:
		}

		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("forced shutdown: %w", err)
		}
		log.Println("Server stopped")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load demo companies and timesheets from a YAML file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("file")

		seed, err := timesheet.LoadSeed(path)
		if err != nil {
			return err
		}
		if err := service.ApplySeed(cmd.Context(), seed); err != nil {
			return err
		}
		fmt.Printf("Seeded %d companies and %d timesheets from %s\n",
			len(seed.Companies), len(seed.Timesheets), path)
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write one timesheet as an .xlsx workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, _ := cmd.Flags().GetString("timesheet")
		out, _ := cmd.Flags().GetString("out")
		if id == "" {
			return fmt.Errorf("--timesheet is required")
		}

		detail, err := service.Resolve(cmd.Context(), id)
		if err != nil {
			return err
		}
		if out == "" {
			out = export.Filename(detail)
		}

		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer f.Close()

		if err := export.Write(detail, f); err != nil {
			return err
		}
		fmt.Printf("Wrote %s (grand total %s)\n", out, detail.GrandTotal.StringFixed(2))
		return nil
	},
}

func init() {
	seedCmd.Flags().String("file", "seed.yaml", "path to YAML seed file")
	exportCmd.Flags().String("timesheet", "", "timesheet ID to export")
	exportCmd.Flags().String("out", "", "output path (default derives from cleaner and month)")
}
