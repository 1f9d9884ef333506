package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once         sync.Once
	docDuration  prom.Histogram
	passDuration prom.Histogram
	docResults   *prom.CounterVec
	passOutcomes *prom.CounterVec
	cacheLookups *prom.CounterVec
	docsTotal    prom.Gauge
	figuresTotal prom.Gauge
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.docDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "mdfigure",
			Name:      "doc_render_duration_seconds",
			Help:      "Duration of individual document renders",
			Buckets:   prom.DefBuckets,
		})
		pr.passDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "mdfigure",
			Name:      "pass_duration_seconds",
			Help:      "Total render pass duration",
			Buckets:   prom.DefBuckets,
		})
		pr.docResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "mdfigure",
			Name:      "doc_results_total",
			Help:      "Per-document render results by outcome",
		}, []string{"result"})
		pr.passOutcomes = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "mdfigure",
			Name:      "pass_outcomes_total",
			Help:      "Render pass outcomes by final status",
		}, []string{"outcome"})
		pr.cacheLookups = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "mdfigure",
			Name:      "cache_lookups_total",
			Help:      "Render cache lookups by hit/miss",
		}, []string{"result"})
		pr.docsTotal = prom.NewGauge(prom.GaugeOpts{
			Namespace: "mdfigure",
			Name:      "docs_last_pass",
			Help:      "Documents processed in the last render pass",
		})
		pr.figuresTotal = prom.NewGauge(prom.GaugeOpts{
			Namespace: "mdfigure",
			Name:      "figures_last_pass",
			Help:      "Figures produced in the last render pass",
		})
		reg.MustRegister(pr.docDuration, pr.passDuration, pr.docResults, pr.passOutcomes, pr.cacheLookups, pr.docsTotal, pr.figuresTotal)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveDocDuration(d time.Duration) {
	if p == nil || p.docDuration == nil {
		return
	}
	p.docDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObservePassDuration(d time.Duration) {
	if p == nil || p.passDuration == nil {
		return
	}
	p.passDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncDocResult(result ResultLabel) {
	if p == nil || p.docResults == nil {
		return
	}
	p.docResults.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) IncPassOutcome(outcome OutcomeLabel) {
	if p == nil || p.passOutcomes == nil {
		return
	}
	p.passOutcomes.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) IncCacheLookup(hit bool) {
	if p == nil || p.cacheLookups == nil {
		return
	}
	res := "miss"
	if hit {
		res = "hit"
	}
	p.cacheLookups.WithLabelValues(res).Inc()
}

func (p *PrometheusRecorder) SetDocsTotal(n int) {
	if p == nil || p.docsTotal == nil {
		return
	}
	p.docsTotal.Set(float64(n))
}

func (p *PrometheusRecorder) SetFiguresTotal(n int) {
	if p == nil || p.figuresTotal == nil {
		return
	}
	p.figuresTotal.Set(float64(n))
}
