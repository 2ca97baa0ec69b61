package cmd

import (
	"fmt"
	"time"

	"github.com/TFMV/neongraph/anim"
	"github.com/TFMV/neongraph/events"
	"github.com/TFMV/neongraph/models"
	"github.com/TFMV/neongraph/render"
	"github.com/TFMV/neongraph/reveal"
	"github.com/spf13/cobra"
)

type renderOptions struct {
	department string
	data       string
	out        string
	format     string
	frames     int
	at         time.Duration
	step       time.Duration
	highlight  string
	zoom       int
	noLegend   bool
	noLabels   bool
}

func newRenderCmd(a *app) *cobra.Command {
	o := &renderOptions{}
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a department's detail view to files",
		Long: `Opens a detail view on a simulated clock, lets the reveal run, and
writes frames of the partnership graph.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runRender(cmd, o)
		},
	}
	cmd.Flags().StringVarP(&o.department, "department", "d", "", "department id (default the first one)")
	cmd.Flags().StringVar(&o.data, "data", "", "department data file (default from config)")
	cmd.Flags().StringVarP(&o.out, "out", "o", "", "output file (default <department>.<format>)")
	cmd.Flags().StringVarP(&o.format, "format", "f", "png", "output format (png, svg, json)")
	cmd.Flags().IntVarP(&o.frames, "frames", "n", 1, "number of frames to write")
	cmd.Flags().DurationVar(&o.at, "at", 8*time.Second, "view time of the first frame")
	cmd.Flags().DurationVar(&o.step, "step", 100*time.Millisecond, "view time between frames")
	cmd.Flags().StringVar(&o.highlight, "highlight", "", "highlight one category (degree, internal, external)")
	cmd.Flags().IntVar(&o.zoom, "zoom", 0, "zoom steps, negative to zoom out")
	cmd.Flags().BoolVar(&o.noLegend, "no-legend", false, "omit the legend card")
	cmd.Flags().BoolVar(&o.noLabels, "no-labels", false, "omit node labels")
	return cmd
}

func (a *app) runRender(cmd *cobra.Command, o *renderOptions) error {
	if o.frames < 1 {
		return fmt.Errorf("--frames must be at least 1")
	}
	renderer, err := render.GetRenderer(o.format)
	if err != nil {
		return err
	}

	var paths []string
	if o.data != "" {
		paths = []string{o.data}
	}
	ds, err := a.dataset(cmd.Context(), paths...)
	if err != nil {
		return err
	}
	if len(ds.Departments) == 0 {
		return fmt.Errorf("dataset %s has no departments", ds.Source)
	}
	if o.department == "" {
		o.department = ds.Departments[0].ID
	}
	dept, ok := ds.FindDepartment(o.department)
	if !ok {
		return fmt.Errorf("unknown department %q (have %v)", o.department, ds.DepartmentIDs())
	}
	if o.out == "" {
		o.out = dept.ID + "." + o.format
	}

	clock := anim.NewManualScheduler(epoch)
	bus := events.NewBus(events.WithClock(clock.Now), events.WithLogger(a.logger))
	defer bus.SubscribeAll(func(ev events.Event) {
		a.logger.Debug("event", "topic", ev.Topic, "payload", ev.Payload)
	})()

	sess := reveal.NewSession(dept, a.cfg.RevealOptions(), reveal.Env{
		Scheduler: clock,
		Bus:       bus,
		Visited:   reveal.NewVisited(),
		Logger:    a.logger,
	})
	sess.Start()
	defer sess.Destroy()
	clock.Advance(o.at)

	for i := 0; i < o.zoom; i++ {
		sess.ZoomIn()
	}
	for i := 0; i > o.zoom; i-- {
		sess.ZoomOut()
	}
	if o.highlight != "" {
		c, err := models.ParseCategory(o.highlight)
		if err != nil {
			return err
		}
		sess.SetHoveredFilter(c)
	}

	opts := render.NewDefaultOptions(o.format)
	opts.Seed = a.cfg.Seed
	opts.ShowLegend = !o.noLegend
	opts.ShowLabels = !o.noLabels

	banner(a.out, dept.Name)
	for i := 0; i < o.frames; i++ {
		if i > 0 {
			clock.Advance(o.step)
		}
		frame := sess.Frame()
		data, err := renderer.RenderGraph(&frame, opts)
		if err != nil {
			return fmt.Errorf("rendering frame %d: %w", i, err)
		}
		name := frameName(o.out, i, o.frames)
		if err := writeFile(name, data); err != nil {
			return err
		}
		wrote(a.out, name, len(data))
	}
	fmt.Fprintf(a.out, "\n  state %s, zoom %.1f\n", Accent.Sprint(sess.State()), sess.ZoomLevel())
	return nil
}
