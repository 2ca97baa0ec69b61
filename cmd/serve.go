package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/TFMV/neongraph/events"
	"github.com/TFMV/neongraph/ingest"
	"github.com/TFMV/neongraph/server"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the intro, overview and detail views over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				a.cfg.Server.Addr = addr
			}
			return a.runServe(cmd)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}

func (a *app) runServe(cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ds, err := a.dataset(ctx)
	if err != nil {
		return err
	}

	busOpts := []events.BusOption{events.WithLogger(a.logger)}
	if url := a.cfg.Events.NATSURL; url != "" {
		pub, err := events.NewNATSPublisher(url)
		if err != nil {
			return err
		}
		a.logger.Info("mirroring events to NATS", "url", url)
		busOpts = append(busOpts, events.WithPublisher(pub))
	}
	bus := events.NewBus(busOpts...)
	defer bus.Close()

	cfg := server.Config{
		Addr:            a.cfg.Server.Addr,
		Reveal:          a.cfg.RevealOptions(),
		Intro:           a.cfg.Timing(),
		Seed:            a.cfg.Seed,
		Debounce:        a.cfg.Data.Debounce.Std(),
		ShutdownTimeout: a.cfg.Server.ShutdownTimeout.Std(),
		MaxSessions:     a.cfg.Server.MaxSessions,
		SessionIdle:     a.cfg.Server.SessionIdle.Std(),
	}
	if a.cfg.Intro.Title != nil {
		box := a.cfg.Intro.Title.Box()
		cfg.Title = &box
	}
	if a.cfg.Data.Watch && ds.Source != ingest.FallbackSource {
		cfg.WatchPath = ds.Source
	}

	banner(a.out, "listening on "+cfg.Addr)
	srv := server.New(cfg, ds, server.WithLogger(a.logger), server.WithBus(bus))
	return srv.Run(ctx)
}
