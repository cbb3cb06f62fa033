// cmd/infohud/main.go
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tamzrod/infohud/internal/config"
	"github.com/tamzrod/infohud/internal/flash"
	"github.com/tamzrod/infohud/internal/ingest"
	"github.com/tamzrod/infohud/internal/ingest/discordbot"
	"github.com/tamzrod/infohud/internal/ingest/httpapi"
	"github.com/tamzrod/infohud/internal/ingest/mqttsub"
	"github.com/tamzrod/infohud/internal/logging"
	"github.com/tamzrod/infohud/internal/refresh"
	"github.com/tamzrod/infohud/internal/status"
	"github.com/tamzrod/infohud/internal/syscmd"
	"github.com/tamzrod/infohud/internal/writer"
	writermodbus "github.com/tamzrod/infohud/internal/writer/modbus"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

type tick struct {
	at    time.Time
	d     refresh.Decision
	st    refresh.State
	depth int
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: infohud <config.yaml>")
		os.Exit(2)
	}

	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(os.Args[1])
	if err != nil {
		fatal(slog.Default(), "config load failed", err)
	}
	if err := config.Validate(cfg); err != nil {
		fatal(slog.Default(), "config validation failed", err)
	}
	config.Normalize(cfg)
	h := cfg.HUD

	log, closeLog, err := logging.New(logging.Options{
		Level:      h.Log.Level,
		File:       h.Log.File,
		MaxSizeMB:  h.Log.MaxSizeMB,
		MaxBackups: h.Log.MaxBackups,
		MaxAgeDays: h.Log.MaxAgeDays,
	})
	if err != nil {
		fatal(slog.Default(), "logging setup failed", err)
	}
	defer closeLog()
	slog.SetDefault(log)

	log.Info("infohud: starting", "name", h.Name, "version", version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --------------------
	// Collaborators
	// --------------------

	mon, closePower, err := buildPower(h.Power)
	if err != nil {
		fatal(log, "power build failed", err)
	}
	defer closePower()

	sched, err := buildRotation(h, log)
	if err != nil {
		fatal(log, "rotation build failed", err)
	}

	sink, closeSink, err := buildSink(h.Display, log)
	if err != nil {
		fatal(log, "display build failed", err)
	}
	defer closeSink()

	checker, applier, err := buildUpdate(h.Update, version)
	if err != nil {
		fatal(log, "update build failed", err)
	}

	tie, err := flash.ParseTieBreak(h.Flash.TieBreak)
	if err != nil {
		fatal(log, "flash config failed", err)
	}
	queue := flash.NewQueue(tie)

	// --------------------
	// Flash ingestion surfaces
	// --------------------

	dec := ingest.Decoder{
		DefaultDisplay: ms(h.Flash.DefaultDisplayMs),
		DefaultTTL:     ms(h.Flash.DefaultTTLMs),
	}

	if c := h.Flash.HTTP; c != nil {
		api, err := httpapi.New(queue, dec, c.Token, log)
		if err != nil {
			fatal(log, "http ingest build failed", err)
		}
		_, errCh, err := httpapi.StartServer(ctx, httpapi.ServerConfig{ListenAddr: c.Listen, API: api})
		if err != nil {
			fatal(log, "http ingest listen failed", err)
		}
		go func() {
			for err := range errCh {
				log.Error("httpapi: server stopped", "error", err)
			}
		}()
	}

	if c := h.Flash.MQTT; c != nil {
		sub, err := mqttsub.New(mqttsub.Config{
			Broker:   c.Broker,
			ClientID: c.ClientID,
			Topic:    c.Topic,
			QoS:      c.QoS,
			Username: c.Username,
			Password: c.Password,
		}, queue, dec, log)
		if err != nil {
			fatal(log, "mqtt ingest build failed", err)
		}
		go func() {
			if err := sub.Run(ctx); err != nil {
				log.Error("mqttsub: stopped", "error", err)
			}
		}()
	}

	if c := h.Flash.Discord; c != nil {
		bot, err := discordbot.New(c.Token, c.ChannelID, c.Priority, queue, dec, log)
		if err != nil {
			fatal(log, "discord ingest build failed", err)
		}
		go func() {
			if err := bot.Run(ctx); err != nil {
				log.Error("discordbot: stopped", "error", err)
			}
		}()
	}

	// --------------------
	// Refresh machine
	// --------------------

	m, err := refresh.New(refresh.Config{
		ShutdownPercent:   h.Power.ShutdownPercent,
		StaleAfter:        ms(h.Power.StaleAfterMs),
		DeferralPriority:  *h.Update.DeferralPriority,
		MaxRenderAttempts: h.Flash.MaxRenderAttempts,
		CallTimeout:       ms(h.Tick.CallTimeoutMs),
		Header:            h.Display.Header,
	}, refresh.Deps{
		Power:    mon,
		Checker:  checker,
		Applier:  applier,
		Queue:    queue,
		Rotation: sched,
		Sink:     sink,
	}, log)
	if err != nil {
		fatal(log, "refresh build failed", err)
	}

	runner, err := refresh.NewRunner(m, ms(h.Tick.IntervalMs), log)
	if err != nil {
		fatal(log, "runner build failed", err)
	}

	var cmd refresh.Commander
	if h.Power.ShutdownCommand != "" {
		c, err := syscmd.Parse(h.Power.ShutdownCommand)
		if err != nil {
			fatal(log, "shutdown command invalid", err)
		}
		cmd = c
	}
	runner.OnShutdown = refresh.ShutdownHook(sink, cmd, ms(h.Tick.CallTimeoutMs), log)

	// --------------------
	// Status export (optional)
	// --------------------

	if h.Status != nil {
		ticks, closeStatus, err := startStatus(ctx, h, log)
		if err != nil {
			fatal(log, "status export failed", err)
		}
		defer closeStatus()

		runner.OnDecision = func(d refresh.Decision, st refresh.State) {
			select {
			case ticks <- tick{at: runner.Now(), d: d, st: st, depth: queue.Len()}:
			case <-ctx.Done():
			}
		}
	}

	final := runner.Run(ctx, refresh.State{})
	log.Info("infohud: stopped", "phase", final.Phase.String())
}

// startStatus runs the status loop: tick outcomes in, status block out,
// plus a 1Hz refresh of the degraded-seconds counter.
func startStatus(ctx context.Context, h config.HUDConfig, log *slog.Logger) (chan<- tick, func() error, error) {
	cli, err := writermodbus.NewEndpointClient(writermodbus.Config{
		Endpoint: h.Status.Endpoint,
		Timeout:  ms(h.Status.TimeoutMs),
	})
	if err != nil {
		return nil, nil, err
	}

	sw, _ := writer.NewDeviceStatusWriter(&writer.StatusPlan{
		Endpoint:   h.Status.Endpoint,
		UnitID:     h.Status.UnitID,
		BaseSlot:   h.Status.BaseSlot,
		DeviceName: h.Name,
	}, cli)

	in := make(chan tick)
	tr := status.NewTracker()

	go func() {
		secTicker := time.NewTicker(time.Second)
		defer secTicker.Stop()

		// Full block write on start (identity re-assert).
		if err := sw.WriteStatus(tr.Snapshot()); err != nil {
			log.Warn("status: write failed on start", "error", err)
		}

		for {
			select {
			case <-ctx.Done():
				return

			case t := <-in:
				if err := sw.WriteStatus(tr.Observe(t.at, t.d, t.st, t.depth)); err != nil {
					log.Warn("status: write failed", "error", err)
				}

			case now := <-secTicker.C:
				if err := sw.WriteStatus(tr.Tick(now)); err != nil {
					log.Warn("status: seconds tick write failed", "error", err)
				}
			}
		}
	}()

	return in, cli.Close, nil
}

func fatal(log *slog.Logger, msg string, err error) {
	log.Error("infohud: "+msg, "error", err)
	os.Exit(1)
}
