package internal

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/fanpilot/fanpilot/internal/api"
	"github.com/fanpilot/fanpilot/internal/configuration"
	"github.com/fanpilot/fanpilot/internal/ec"
	"github.com/fanpilot/fanpilot/internal/orchestrator"
	"github.com/fanpilot/fanpilot/internal/persistence"
	"github.com/fanpilot/fanpilot/internal/program"
	"github.com/fanpilot/fanpilot/internal/statistics"
	"github.com/fanpilot/fanpilot/internal/surface"
	"github.com/fanpilot/fanpilot/internal/ui"
	"github.com/oklog/run"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RunDaemon() {
	if getProcessOwner() != "root" {
		ui.Fatal("Fan control requires root permissions to be able to access the embedded controller, please run fanpilot as root")
	}

	config := configuration.CurrentConfig

	pers := persistence.NewPersistence(config.DbPath)
	if err := pers.Init(); err != nil {
		ui.Fatal("Unable to initialize persistence: %v", err)
	}

	controller := ec.NewAcpiEmbeddedController(ec.DefaultAcpiMethods(), config.Power.SupplyPath)
	runner := program.NewRunner(controller, config.Runner, config.Profiles.Definitions)
	desktop := surface.NewDesktopSurface(config.StatusFilePath)

	orch := orchestrator.NewOrchestrator(controller, runner, desktop, pers, config)
	desktop.SetSnapshotProvider(func() []string {
		return describeSnapshot(orch.GetSnapshot())
	})

	statistics.Register(statistics.NewOrchestratorCollector(orch))

	// startup autoconfiguration runs in the background, daemon startup
	// does not wait for it
	orch.InitializeAndAutoconfigure()

	ctx, cancel := context.WithCancel(context.Background())

	var g run.Group
	{
		enabled := config.Statistics.Enabled
		if enabled {
			// === Prometheus Exporter
			g.Add(func() error {
				port := config.Statistics.Port
				if port <= 0 || port >= 65535 {
					port = 9400
				}
				addr := fmt.Sprintf(":%d", port)
				handler := promhttp.Handler()
				server := &http.Server{Addr: addr, Handler: handler}
				go func() {
					if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
						ui.Error("Cannot start prometheus metrics endpoint (%s)", err.Error())
					}
				}()

				<-ctx.Done()
				ui.Info("Stopping statistics server...")
				timeoutCtx, timeoutCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer timeoutCancel()
				return server.Shutdown(timeoutCtx)
			}, func(err error) {
				if err != nil {
					ui.Warning("Error stopping statistics server: " + err.Error())
				} else {
					ui.Info("Statistics server stopped.")
				}
			})
		}
	}
	{
		// === status event pump
		g.Add(func() error {
			err := orch.Run(ctx)
			ui.Info("Status event pump stopped.")
			return err
		}, func(err error) {
			if err != nil {
				ui.Warning("Error relaying status events: %v", err)
			}
		})
	}
	{
		// === power source watcher
		pollingRate := config.Power.PollingRate
		g.Add(func() error {
			tick := time.Tick(pollingRate)
			for {
				select {
				case <-ctx.Done():
					ui.Info("Power source watcher stopped.")
					return nil
				case <-tick:
					orch.HandlePowerChange()
				}
			}
		}, func(err error) {
			if err != nil {
				ui.Warning("Error watching power source: %v", err)
			}
		})
	}
	{
		enabled := config.Api.Enabled
		if enabled {
			// === REST API
			g.Add(func() error {
				restService := api.CreateRestService(orch, pers)
				addr := fmt.Sprintf("%s:%d", config.Api.Host, config.Api.Port)
				go func() {
					if err := restService.Start(addr); err != nil && err != http.ErrServerClosed {
						ui.Error("Cannot start REST api endpoint (%s)", err.Error())
					}
				}()

				<-ctx.Done()
				ui.Info("Stopping REST api...")
				timeoutCtx, timeoutCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer timeoutCancel()
				return restService.Shutdown(timeoutCtx)
			}, func(err error) {
				if err != nil {
					ui.Warning("Error stopping REST api: " + err.Error())
				} else {
					ui.Info("REST api stopped.")
				}
			})
		}
	}
	{
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

		g.Add(func() error {
			<-sig
			ui.Info("Received SIGTERM signal, exiting...")
			return nil
		}, func(err error) {
			defer close(sig)
			cancel()
		})
	}

	if err := g.Run(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	} else {
		// leave no program behind that keeps driving the fans
		if err := runner.Terminate(config.Runner.TerminateTimeout); err != nil {
			ui.Warning("Unable to stop fan program on shutdown: %v", err)
		}
		ui.Info("Done.")
		os.Exit(0)
	}
}

func describeSnapshot(snapshot orchestrator.Snapshot) []string {
	power := "battery"
	if snapshot.OnFullPower {
		power = "mains power"
	}

	control := "fixed mode"
	if snapshot.Running {
		control = "program '" + snapshot.Program + "'"
		if snapshot.Alternate {
			control += " (battery variant)"
		}
	}

	return []string{
		"Power source: " + power,
		"Fan control: " + control,
	}
}

func getProcessOwner() string {
	stdout, err := exec.Command("ps", "-o", "user=", "-p", strconv.Itoa(os.Getpid())).Output()
	if err != nil {
		ui.Fatal("Error checking process owner: %v", err)
		os.Exit(1)
	}
	return strings.TrimSpace(string(stdout))
}
