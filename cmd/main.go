package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"

	"github.com/kass/go-route-map/pkg/app"
	"github.com/kass/go-route-map/pkg/client"
	"github.com/kass/go-route-map/pkg/config"
	"github.com/kass/go-route-map/pkg/debounce"
	"github.com/kass/go-route-map/pkg/models"
	"github.com/kass/go-route-map/pkg/routestate"
)

var (
	configFile string
	serverURL  string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "route-map",
	Short: "Interactive terminal client for the routing service",
	Long:  `A terminal map client: set an origin, a destination and routing preferences, then watch the computed route on an ASCII canvas.`,
}

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Start the interactive client",
	Long:  `Open the interactive terminal UI with form fields, draggable markers and a live route canvas.`,
	RunE:  runUI,
}

var routeCmd = &cobra.Command{
	Use:   "route",
	Short: "Request a single route and print its summary",
	Long:  `Issue one route request with the given parameters and print the summary, without starting the UI.`,
	RunE:  runRoute,
}

var (
	sessionFile string
	logFile     string
	debounceMs  int

	place     string
	originLat float64
	originLon float64
	destLat   float64
	destLon   float64
	algorithm string
	weight    string
	avoid     bool
	timeoutMs int
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file path (YAML)")
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", "", "Routing service base URL")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")

	uiCmd.Flags().StringVar(&sessionFile, "session-file", "", "Session file path")
	uiCmd.Flags().StringVar(&logFile, "log-file", "", "Log file path")
	uiCmd.Flags().IntVar(&debounceMs, "debounce-ms", 0, "Quiet interval for drag-triggered requests")

	routeCmd.Flags().StringVar(&place, "place", "", "Area name scoping the road network")
	routeCmd.Flags().Float64Var(&originLat, "origin-lat", 0, "Origin latitude")
	routeCmd.Flags().Float64Var(&originLon, "origin-lon", 0, "Origin longitude")
	routeCmd.Flags().Float64Var(&destLat, "dest-lat", 0, "Destination latitude")
	routeCmd.Flags().Float64Var(&destLon, "dest-lon", 0, "Destination longitude")
	routeCmd.Flags().StringVar(&algorithm, "algo", "", "Algorithm: dijkstra or astar")
	routeCmd.Flags().StringVar(&weight, "weight", "", "Weight metric: distance or time")
	routeCmd.Flags().BoolVar(&avoid, "avoid-highways", false, "Avoid motorways")
	routeCmd.Flags().IntVar(&timeoutMs, "timeout-ms", 15000, "Request timeout in milliseconds (0 disables)")

	rootCmd.AddCommand(uiCmd, routeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return cfg, err
	}
	if serverURL != "" {
		cfg.Server.URL = serverURL
	}
	return cfg, nil
}

func newLogger(w *os.File) log.Logger {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(w))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)
	if verbose {
		return level.NewFilter(logger, level.AllowDebug())
	}
	return level.NewFilter(logger, level.AllowInfo())
}

func runUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if debounceMs > 0 {
		cfg.UI.DebounceMs = debounceMs
	}
	if sessionFile == "" {
		sessionFile = cfg.UI.SessionFile
	}
	if logFile == "" {
		logFile = cfg.UI.LogFile
	}

	// The TUI owns the terminal, so logs go to a file.
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer f.Close()
	logger := newLogger(f)

	var clientOpts []client.Option
	clientOpts = append(clientOpts, client.WithLogger(logger))
	if cfg.Timeout() > 0 {
		clientOpts = append(clientOpts, client.WithTimeout(cfg.Timeout()))
	}

	return app.Run(app.Options{
		Client:      client.New(cfg.Server.URL, clientOpts...),
		Store:       routestate.New(),
		Scheduler:   debounce.New(cfg.Debounce()),
		Logger:      logger,
		SessionFile: sessionFile,
		Initial:     cfg.Request(),
	})
}

func runRoute(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	req := cfg.Request()
	if place != "" {
		req.Place = place
	}
	if cmd.Flags().Changed("origin-lat") {
		req.Origin.Lat = originLat
	}
	if cmd.Flags().Changed("origin-lon") {
		req.Origin.Lon = originLon
	}
	if cmd.Flags().Changed("dest-lat") {
		req.Destination.Lat = destLat
	}
	if cmd.Flags().Changed("dest-lon") {
		req.Destination.Lon = destLon
	}
	if algorithm != "" {
		req.Algorithm = models.Algorithm(algorithm)
	}
	if weight != "" {
		req.Weight = models.Weight(weight)
	}
	if cmd.Flags().Changed("avoid-highways") {
		req.AvoidHighways = avoid
	}

	logger := newLogger(os.Stderr)
	c := client.New(cfg.Server.URL,
		client.WithLogger(logger),
		client.WithTimeout(time.Duration(timeoutMs)*time.Millisecond),
	)

	res, err := c.Route(context.Background(), req)
	if err != nil {
		return err
	}

	fmt.Printf("distance:  %s\n", app.FormatDistance(res.DistanceMeters))
	fmt.Printf("eta:       %s\n", app.FormatDuration(res.DurationSeconds))
	fmt.Printf("algorithm: %s\n", res.Algorithm)
	fmt.Printf("weight:    %s\n", res.Weight)
	fmt.Printf("highways:  %t\n", res.AvoidHighways)
	fmt.Printf("nodes:     %d\n", res.NodeCount)
	return nil
}
