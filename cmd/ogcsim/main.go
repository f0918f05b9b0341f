package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/akmonengine/ogcsim"
	"github.com/akmonengine/ogcsim/config"
	"github.com/akmonengine/ogcsim/scene"
)

var (
	configFile string
	logLevel   string
	logFormat  string

	steps     int
	dt        float64
	plotBody  string
	hybrid    bool
	ogc       bool
	radius    float64
	frameRate int
	addr      string
	autoplay  bool
	sceneName string
	force     bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "ogcsim",
		Short:         "hybrid rigid body simulation with proximity contacts",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text or json")

	runCmd := &cobra.Command{
		Use:   "run [scene.yaml]",
		Short: "run a scene headless and print the final state",
		Args:  cobra.ExactArgs(1),
		RunE:  runScene,
	}
	runCmd.Flags().IntVar(&steps, "steps", 600, "number of steps")
	runCmd.Flags().Float64Var(&dt, "dt", 0, "step duration, the scene time step when 0")
	runCmd.Flags().StringVar(&plotBody, "plot", "", "plot the height of a body")
	addSolverFlags(runCmd)

	validateCmd := &cobra.Command{
		Use:   "validate [scene.yaml]",
		Short: "check a scene file",
		Args:  cobra.ExactArgs(1),
		RunE:  validateScene,
	}

	watchCmd := &cobra.Command{
		Use:   "watch [scene.yaml]",
		Short: "play a scene in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  watchScene,
	}
	watchCmd.Flags().Float64Var(&dt, "dt", 0, "step duration, the frame period when 0")
	watchCmd.Flags().IntVar(&frameRate, "fps", 0, "frame rate, the config frame rate when 0")
	addSolverFlags(watchCmd)

	serveCmd := &cobra.Command{
		Use:   "serve [scene.yaml]",
		Short: "play a scene and stream its frames over websocket",
		Args:  cobra.ExactArgs(1),
		RunE:  serveScene,
	}
	serveCmd.Flags().StringVar(&addr, "addr", "", "listen address, the config address when empty")
	serveCmd.Flags().Float64Var(&dt, "dt", 0, "step duration, the frame period when 0")
	serveCmd.Flags().BoolVar(&autoplay, "play", false, "start playing without waiting for a client")
	addSolverFlags(serveCmd)

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write a sample scene",
		Args:  cobra.ExactArgs(1),
		RunE:  initScene,
	}
	initCmd.Flags().StringVar(&sceneName, "name", "Sample", "scene name")
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	rootCmd.AddCommand(runCmd, validateCmd, watchCmd, serveCmd, initCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addSolverFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&hybrid, "hybrid", false, "route near contacts to the proximity solver")
	cmd.Flags().BoolVar(&ogc, "ogc", false, "enable proximity contacts")
	cmd.Flags().Float64Var(&radius, "radius", 0, "proximity contact radius")
}

// loadConfig reads the config file, if any, and applies the log flags
func loadConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setup loads the config and the scene file and returns an engine running it.
// Logs go to logOutput.
func setup(cmd *cobra.Command, path string, logOutput io.Writer) (*config.Config, *ogcsim.Engine, *scene.Scene, *slog.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, nil, err
	}
	logger, err := cfg.Log.Logger(logOutput)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	s, err := scene.Load(path)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	applySolverFlags(cmd, &s.Settings)

	engine := ogcsim.NewEngine(cfg.Engine, ogcsim.NewLogSink(logger))
	if err := engine.Initialize(); err != nil {
		return nil, nil, nil, nil, err
	}
	if err := engine.InitializeScene(s); err != nil {
		return nil, nil, nil, nil, err
	}
	return cfg, engine, s, logger, nil
}

// applySolverFlags overrides the scene settings with the flags given
func applySolverFlags(cmd *cobra.Command, settings *scene.SimulationSettings) {
	if cmd.Flags().Changed("hybrid") {
		settings.HybridMode = hybrid
	}
	if cmd.Flags().Changed("ogc") {
		settings.UseOGCContact = ogc
	}
	if cmd.Flags().Changed("radius") {
		settings.OGCContactRadius = radius
	}
}

func validateScene(cmd *cobra.Command, args []string) error {
	s, err := scene.Load(args[0])
	if err != nil {
		return err
	}
	if err := s.Validate(); err != nil {
		return err
	}

	stats := s.Statistics()
	fmt.Printf("%s: valid scene %q\n", args[0], s.Metadata.Name)
	fmt.Printf("  %d bodies, %d constraints, %d force fields\n", stats.RigidBodies, stats.Constraints, stats.ForceFields)
	fmt.Printf("  %d physics materials, %d visual materials, %d lights, %d cameras\n",
		stats.PhysicsMaterials, stats.VisualMaterials, stats.Lights, stats.Cameras)
	return nil
}

func initScene(cmd *cobra.Command, args []string) error {
	if !scene.IsValidObjectName(sceneName) {
		return fmt.Errorf("invalid scene name %q", sceneName)
	}
	if _, err := os.Stat(args[0]); err == nil && !force {
		return fmt.Errorf("%s already exists, use --force to overwrite", args[0])
	}

	s := sampleScene(sceneName)
	if err := s.Validate(); err != nil {
		return err
	}
	if err := s.Save(args[0]); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", args[0])
	return nil
}
