// FILE: lixenwraith/logsink/metrics/collector.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector reads a fresh Stats snapshot on every scrape
type Collector struct {
	source StatsSource

	accepted  *prometheus.Desc
	rejected  *prometheus.Desc
	written   *prometheus.Desc
	failed    *prometheus.Desc
	starts    *prometheus.Desc
	rollovers *prometheus.Desc
	queueLen  *prometheus.Desc
	queueCap  *prometheus.Desc
	pending   *prometheus.Desc
	alive     *prometheus.Desc
	uptime    *prometheus.Desc
}

// NewCollector creates a collector over a stats source
func NewCollector(source StatsSource) *Collector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "", name), help, nil, nil)
	}

	return &Collector{
		source:    source,
		accepted:  desc("entries_accepted_total", "Entries admitted to the queue"),
		rejected:  desc("entries_rejected_total", "Entries refused because the queue was full or closing"),
		written:   desc("entries_written_total", "Entries persisted to the daily file"),
		failed:    desc("entries_failed_total", "Entries dequeued but not persisted"),
		starts:    desc("writer_starts_total", "Writer goroutines spawned"),
		rollovers: desc("file_rollovers_total", "Daily file changes"),
		queueLen:  desc("queue_length", "Entries waiting in the queue"),
		queueCap:  desc("queue_capacity", "Queue capacity, 0 or less when unbounded"),
		pending:   desc("queue_pending", "Accepted entries not yet processed"),
		alive:     desc("writer_alive", "Whether a writer goroutine is running (1 = alive)"),
		uptime:    desc("uptime_seconds", "Seconds since the pipeline was created"),
	}
}

// Describe implements prometheus.Collector
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.accepted
	ch <- c.rejected
	ch <- c.written
	ch <- c.failed
	ch <- c.starts
	ch <- c.rollovers
	ch <- c.queueLen
	ch <- c.queueCap
	ch <- c.pending
	ch <- c.alive
	ch <- c.uptime
}

// Collect implements prometheus.Collector
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.source.Stats()

	alive := 0.0
	if s.Alive {
		alive = 1
	}

	ch <- prometheus.MustNewConstMetric(c.accepted, prometheus.CounterValue, float64(s.Accepted))
	ch <- prometheus.MustNewConstMetric(c.rejected, prometheus.CounterValue, float64(s.Rejected))
	ch <- prometheus.MustNewConstMetric(c.written, prometheus.CounterValue, float64(s.Written))
	ch <- prometheus.MustNewConstMetric(c.failed, prometheus.CounterValue, float64(s.Failed))
	ch <- prometheus.MustNewConstMetric(c.starts, prometheus.CounterValue, float64(s.Starts))
	ch <- prometheus.MustNewConstMetric(c.rollovers, prometheus.CounterValue, float64(s.Rollovers))
	ch <- prometheus.MustNewConstMetric(c.queueLen, prometheus.GaugeValue, float64(s.QueueLen))
	ch <- prometheus.MustNewConstMetric(c.queueCap, prometheus.GaugeValue, float64(s.QueueCap))
	ch <- prometheus.MustNewConstMetric(c.pending, prometheus.GaugeValue, float64(s.Pending))
	ch <- prometheus.MustNewConstMetric(c.alive, prometheus.GaugeValue, alive)
	ch <- prometheus.MustNewConstMetric(c.uptime, prometheus.GaugeValue, s.Uptime.Seconds())
}
