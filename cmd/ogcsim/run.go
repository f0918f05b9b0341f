package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/akmonengine/ogcsim"
	"github.com/akmonengine/ogcsim/config"
	"github.com/akmonengine/ogcsim/internal/viz"
	"github.com/akmonengine/ogcsim/runner"
	"github.com/akmonengine/ogcsim/stream"
)

var titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))

func runScene(cmd *cobra.Command, args []string) error {
	_, engine, s, logger, err := setup(cmd, args[0], os.Stderr)
	if err != nil {
		return err
	}
	defer engine.Cleanup()

	step := dt
	if step <= 0 {
		step = s.Settings.TimeStep
	}
	if plotBody != "" {
		if _, ok := engine.GetRigidBodyTransform(plotBody); !ok {
			return fmt.Errorf("unknown body %q", plotBody)
		}
	}

	heights := make([]float64, 0, steps)
	warnings := make(map[ogcsim.WarningKind]int)
	for i := 0; i < steps; i++ {
		engine.StepSimulation(step)
		for _, w := range engine.Warnings() {
			warnings[w.Kind]++
		}
		if plotBody != "" {
			transform, _ := engine.GetRigidBodyTransform(plotBody)
			heights = append(heights, transform.Position.Y())
		}
	}

	stats := engine.GetStatistics()
	logger.Info("run finished", "scene", s.Metadata.Name, "steps", stats.StepCount, "simulated_time", stats.SimulatedTime)

	fmt.Println(titleStyle.Render(fmt.Sprintf("%s after %d steps (%.3fs)", s.Metadata.Name, stats.StepCount, stats.SimulatedTime)))
	printBodies(os.Stdout, engine)
	fmt.Println()
	printStatistics(os.Stdout, stats)
	printWarnings(os.Stdout, warnings)

	if len(heights) > 0 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(heights,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(plotBody+" height"),
		))
	}
	return nil
}

func printBodies(out io.Writer, engine *ogcsim.Engine) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BODY\tX\tY\tZ\tSPEED\tSTATE")
	for _, name := range engine.BodyNames() {
		transform, _ := engine.GetRigidBodyTransform(name)
		velocity, _ := engine.GetRigidBodyLinearVelocity(name)
		state := "active"
		if !engine.IsRigidBodyActive(name) {
			state = "resting"
		}
		fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%.4f\t%.4f\t%s\n", name,
			transform.Position.X(), transform.Position.Y(), transform.Position.Z(), velocity.Len(), state)
	}
	w.Flush()
}

func printStatistics(out io.Writer, stats ogcsim.Statistics) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "bodies\t%d (%d active)\n", stats.RigidBodyCount, stats.ActiveBodyCount)
	fmt.Fprintf(w, "constraints\t%d (%d broken)\n", stats.ConstraintCount, stats.BrokenConstraintCount)
	fmt.Fprintf(w, "force fields\t%d\n", stats.ForceFieldCount)
	fmt.Fprintf(w, "last step\t%d sub-steps, %d base / %d proximity manifolds, %d contacts\n",
		stats.SubSteps, stats.BaseManifoldCount, stats.ProximityManifoldCount, stats.ContactPointCount)
	fmt.Fprintf(w, "solve time\tbase %v, proximity %v, total %v\n", stats.BaseSolveTime, stats.OGCSolveTime, stats.SimulationTime)
	w.Flush()
}

func printWarnings(out io.Writer, warnings map[ogcsim.WarningKind]int) {
	if len(warnings) == 0 {
		return
	}
	kinds := make([]ogcsim.WarningKind, 0, len(warnings))
	for kind := range warnings {
		kinds = append(kinds, kind)
	}
	slices.Sort(kinds)

	fmt.Fprintln(out, "\nwarnings:")
	for _, kind := range kinds {
		fmt.Fprintf(out, "  %-20s %d\n", kind, warnings[kind])
	}
}

func watchScene(cmd *cobra.Command, args []string) error {
	// The live view owns the terminal
	cfg, engine, s, logger, err := setup(cmd, args[0], io.Discard)
	if err != nil {
		return err
	}
	defer engine.Cleanup()

	fps := frameRate
	if fps <= 0 {
		fps = cfg.Runner.FrameRate
	}
	player := runner.New(engine, config.Runner{FrameRate: fps}, dt, logger)
	return viz.Run(player, s.Metadata.Name, fps)
}

func serveScene(cmd *cobra.Command, args []string) error {
	cfg, engine, _, logger, err := setup(cmd, args[0], os.Stderr)
	if err != nil {
		return err
	}
	defer engine.Cleanup()

	listen := addr
	if listen == "" {
		listen = cfg.Stream.Addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	player := runner.New(engine, cfg.Runner, dt, logger)
	if autoplay {
		player.Start()
	}
	server := stream.NewServer(player, logger)

	done := make(chan error, 1)
	go func() { done <- player.Run(ctx) }()

	err = server.ListenAndServe(ctx, listen)
	stop()
	<-done
	return err
}
