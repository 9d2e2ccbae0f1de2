package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/NERVsystems/bikeparkmcp/pkg/bikeindex"
	"github.com/NERVsystems/bikeparkmcp/pkg/config"
	"github.com/NERVsystems/bikeparkmcp/pkg/recommend"
	"github.com/NERVsystems/bikeparkmcp/pkg/server"
	"github.com/NERVsystems/bikeparkmcp/pkg/version"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app carries the state shared by all subcommands.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
	logger  *slog.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:          "bikeparkmcp",
		Short:        "MCP server that finds bike parking and checks nearby bike theft",
		Version:      version.String(),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
		RunE: a.runServe,
	}
	root.SetVersionTemplate("{{.Version}}\n")

	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "", "config file (yaml, json or toml)")
	root.PersistentFlags().Bool("debug", false, "enable debug logging")
	_ = a.v.BindPFlag("debug", root.PersistentFlags().Lookup("debug"))

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the MCP server on stdin/stdout",
			Args:  cobra.NoArgs,
			RunE:  a.runServe,
		},
		a.newFindCmd(),
		newGenerateConfigCmd(),
	)
	return root
}

// load reads the configuration and installs the stderr logger. stdout is
// reserved for the MCP transport.
func (a *app) load() error {
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = newLogger(os.Stderr, cfg.Debug)
	slog.SetDefault(a.logger)
	return nil
}

func newLogger(w io.Writer, debug bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if debug {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: logLevel,
	}))
}

func (a *app) runServe(cmd *cobra.Command, args []string) error {
	a.logger.Info("starting bike parking MCP server",
		"version", version.BuildVersion,
		"commit", version.BuildCommit,
		"debug", a.cfg.Debug)

	srv, err := server.NewServer(a.cfg, a.logger)
	if err != nil {
		a.logger.Error("failed to create server", "error", err)
		return err
	}
	if err := srv.Run(); err != nil {
		a.logger.Error("server error", "error", err)
		return err
	}
	return nil
}

func (a *app) newFindCmd() *cobra.Command {
	var (
		location string
		bbox     []float64
	)

	cmd := &cobra.Command{
		Use:   "find",
		Short: "Find bike parking once and print the result as JSON",
		Example: `  bikeparkmcp find --location "Trafalgar Square, London"
  bikeparkmcp find --bbox=-0.13,51.50,-0.12,51.51`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := recommend.Request{Location: location}
			if cmd.Flags().Changed("bbox") {
				req.Coordinates = bbox
			}

			c := server.NewComponents(a.cfg, a.logger)
			result, err := c.Recommender.Recommend(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), cmd.ErrOrStderr(), result)
		},
	}
	cmd.Flags().StringVarP(&location, "location", "l", "", "address or area to park near")
	cmd.Flags().Float64SliceVar(&bbox, "bbox", nil, "bounding box left,bottom,right,top (skips geocoding)")
	return cmd
}

// printResult writes the JSON result to out and a colored theft headline to
// status.
func printResult(out, status io.Writer, result recommend.Result) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	if _, err := fmt.Fprintf(out, "%s\n", data); err != nil {
		return err
	}

	headline := headlineColor(result.Threat)
	_, err = headline.Fprintf(status, "%d parking spots. %s\n", len(result.Parking), result.Threat.Message)
	return err
}

func headlineColor(threat bikeindex.ThreatSummary) *color.Color {
	switch {
	case !threat.Available:
		return color.New(color.FgYellow)
	case len(threat.RecentRecords) > 0:
		return color.New(color.FgRed, color.Bold)
	default:
		return color.New(color.FgGreen)
	}
}
