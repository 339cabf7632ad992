package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"deskpilot/pkg/agent"
	"deskpilot/pkg/channels"
	_ "deskpilot/pkg/channels/autoload" // Register channel factories
	"deskpilot/pkg/config"
	"deskpilot/pkg/device"
	"deskpilot/pkg/gateway"
	"deskpilot/pkg/handler"
	"deskpilot/pkg/monitor"
	"deskpilot/pkg/planner"
	_ "deskpilot/pkg/planner/autoload" // Register planner providers
)

func main() {
	cfg, sysCfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	monitor.Startup(sysCfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	reload := config.WatchConfig(ctx, "config.json", "system.json")

	for {
		gw, engine, err := buildGateway(cfg, sysCfg)
		if err != nil {
			slog.Error("Failed to build gateway", "error", err)
			os.Exit(1)
		}

		select {
		case <-sigChan:
			slog.Info("Received shutdown signal, stopping services")
			stopServices(gw, engine)
			return
		case <-reload:
			slog.Info("Configuration changed, restarting services")
			stopServices(gw, engine)

			newCfg, newSysCfg, err := config.Load()
			if err != nil {
				slog.Error("Reloaded configuration is invalid, keeping previous", "error", err)
				continue
			}
			cfg, sysCfg = newCfg, newSysCfg
		}
	}
}

const runDrainTimeout = 30 * time.Second

// stopServices stops all channels and then waits for any active run to
// drain. The desktop is a single exclusive resource, so a replacement
// engine must not be built while the old run is still driving it.
func stopServices(gw *gateway.GatewayManager, engine *agent.Engine) {
	gw.StopAll()
	if !engine.InterruptAndWait(runDrainTimeout) {
		slog.Warn("Active run did not stop within the drain timeout")
	}
}

// buildGateway assembles the full stack for one configuration: planner,
// device controller, engine, handler and channels.
func buildGateway(cfg *config.Config, sysCfg *config.SystemConfig) (*gateway.GatewayManager, *agent.Engine, error) {
	client, err := planner.NewFromConfig(cfg.Planner, cfg.CustomInstructions, sysCfg)
	if err != nil {
		return nil, nil, err
	}

	controller := device.NewController(time.Duration(sysCfg.ScreenshotTimeoutMs) * time.Millisecond)
	status := monitor.NewStatusQueue(sysCfg.InternalChannelBuffer)
	engine := agent.New(client, controller, status, sysCfg)

	cli := monitor.NewCLIMonitor()

	gw, err := gateway.NewGatewayBuilder().
		WithMonitor(cli).
		WithChannelLoader(func(g *gateway.GatewayManager) {
			channels.LoadFromConfig(g, cfg.Channels, sysCfg)
		}).
		WithHandler(handler.NewRunHandler(engine, status)).
		Build()
	if err != nil {
		return nil, nil, err
	}
	return gw, engine, nil
}
