// Package metrics exposes the service's prometheus collectors. Collectors are
// registered on an explicit registry so tests and the server never share
// global state.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smart-card/smartcard-api/internal/events"
)

const namespace = "smartcard"

// Metrics holds every collector the service updates.
type Metrics struct {
	registry prometheus.Gatherer

	stageTotal    *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	llmRequests   *prometheus.CounterVec
	promptTokens  *prometheus.HistogramVec
	downloads     *prometheus.CounterVec
}

// New creates the collectors and registers them, together with the Go and
// process collectors, on reg.
func New(reg *prometheus.Registry) *Metrics {
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		stageTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "pipeline_stage_total",
				Help:      "Total number of pipeline stages run, by stage and outcome.",
			},
			[]string{"stage", "outcome"},
		),
		stageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "pipeline_stage_duration_seconds",
				Help:      "Histogram of pipeline stage durations.",
				Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"stage"},
		),
		llmRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "llm_requests_total",
				Help:      "Total number of requests sent to LLM backends.",
			},
			[]string{"backend", "status"},
		),
		promptTokens: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "llm_prompt_tokens",
				Help:      "Histogram of estimated prompt token counts.",
				Buckets:   prometheus.ExponentialBuckets(64, 2, 10),
			},
			[]string{"model"},
		),
		downloads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "downloads_total",
				Help:      "Total number of artifact downloads, by kind and result.",
			},
			[]string{"kind", "result"},
		),
	}
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveLLMRequest counts one backend call. status is "success" or "error".
func (m *Metrics) ObserveLLMRequest(backend, status string) {
	m.llmRequests.WithLabelValues(backend, status).Inc()
}

// ObservePromptTokens records the estimated size of a composed prompt.
func (m *Metrics) ObservePromptTokens(model string, tokens int) {
	m.promptTokens.WithLabelValues(model).Observe(float64(tokens))
}

// ObserveDownload counts one download. result is "hit", "regenerated",
// "not_found" or "error".
func (m *Metrics) ObserveDownload(kind, result string) {
	m.downloads.WithLabelValues(kind, result).Inc()
}

// HandleEvent implements events.EventHandler, so the collectors can be
// registered directly on the pipeline's emitter.
func (m *Metrics) HandleEvent(_ context.Context, event *events.StageEvent) error {
	m.stageTotal.WithLabelValues(string(event.Stage), string(event.Outcome)).Inc()
	m.stageDuration.WithLabelValues(string(event.Stage)).Observe(event.Duration.Seconds())
	return nil
}
