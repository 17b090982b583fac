package statistics

import (
	"github.com/fanpilot/fanpilot/internal/orchestrator"
	"github.com/prometheus/client_golang/prometheus"
)

const orchestratorSubsystem = "orchestrator"

type OrchestratorCollector struct {
	orchestrator *orchestrator.Orchestrator

	onFullPower      *prometheus.Desc
	programRunning   *prometheus.Desc
	programAlternate *prometheus.Desc
	hotkeyPresses    *prometheus.Desc
	powerTransitions *prometheus.Desc
}

func NewOrchestratorCollector(o *orchestrator.Orchestrator) *OrchestratorCollector {
	return &OrchestratorCollector{
		orchestrator: o,
		onFullPower: prometheus.NewDesc(prometheus.BuildFQName(namespace, orchestratorSubsystem, "on_full_power"),
			"Whether the system currently runs on mains power",
			nil, nil,
		),
		programRunning: prometheus.NewDesc(prometheus.BuildFQName(namespace, orchestratorSubsystem, "program_running"),
			"Whether a fan program is currently running",
			[]string{"program"}, nil,
		),
		programAlternate: prometheus.NewDesc(prometheus.BuildFQName(namespace, orchestratorSubsystem, "program_alternate"),
			"Whether the running fan program uses its battery variant",
			nil, nil,
		),
		hotkeyPresses: prometheus.NewDesc(prometheus.BuildFQName(namespace, orchestratorSubsystem, "hotkey_presses_total"),
			"Number of handled fan hotkey presses",
			nil, nil,
		),
		powerTransitions: prometheus.NewDesc(prometheus.BuildFQName(namespace, orchestratorSubsystem, "power_transitions_total"),
			"Number of genuine AC/battery transitions acted upon",
			nil, nil,
		),
	}
}

func (collector *OrchestratorCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- collector.onFullPower
	ch <- collector.programRunning
	ch <- collector.programAlternate
	ch <- collector.hotkeyPresses
	ch <- collector.powerTransitions
}

// Collect implements the required collect function for all prometheus collectors
func (collector *OrchestratorCollector) Collect(ch chan<- prometheus.Metric) {
	snapshot := collector.orchestrator.GetSnapshot()

	ch <- prometheus.MustNewConstMetric(collector.onFullPower, prometheus.GaugeValue, boolToGauge(snapshot.OnFullPower))
	ch <- prometheus.MustNewConstMetric(collector.programRunning, prometheus.GaugeValue, boolToGauge(snapshot.Running), snapshot.Program)
	ch <- prometheus.MustNewConstMetric(collector.programAlternate, prometheus.GaugeValue, boolToGauge(snapshot.Alternate))
	ch <- prometheus.MustNewConstMetric(collector.hotkeyPresses, prometheus.CounterValue, float64(snapshot.HotkeyPresses))
	ch <- prometheus.MustNewConstMetric(collector.powerTransitions, prometheus.CounterValue, float64(snapshot.PowerTransitions))
}

func boolToGauge(value bool) float64 {
	if value {
		return 1
	}
	return 0
}
