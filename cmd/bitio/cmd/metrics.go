package cmd

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	registry = prometheus.NewRegistry()

	bytesRead = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bitio",
		Subsystem: "cli",
		Name:      "bytes_read_total",
		Help:      "Bytes read from the input file.",
	}, []string{"command"})

	bytesWritten = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bitio",
		Subsystem: "cli",
		Name:      "bytes_written_total",
		Help:      "Bytes written to the output file.",
	}, []string{"command"})

	fieldsDumped = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "bitio",
		Subsystem: "cli",
		Name:      "fields_dumped_total",
		Help:      "Bit fields printed by dump.",
	})
)

func init() {
	registry.MustRegister(bytesRead, bytesWritten, fieldsDumped)
}

// writeMetrics stores the counters in the text exposition format, for
// pickup by a node exporter textfile collector.
func writeMetrics() error {
	if cfg.MetricsFile == "" {
		return nil
	}
	return prometheus.WriteToTextfile(cfg.MetricsFile, registry)
}
