// Package metrics provides observability hooks for render passes.
//
// Components receive a Recorder and default to NoopRecorder, so collection
// never requires nil checks at call sites:
//
//	pass := render.NewPass(cfg, render.WithRecorder(rec))
//
// When the preview server runs with metrics enabled, a PrometheusRecorder
// backed by a private registry is injected instead and the same registry is
// exposed on /metrics via HTTPHandler:
//
//	reg := prometheus.NewRegistry()
//	recorder := metrics.NewPrometheusRecorder(reg)
//	mux.Handle("/metrics", metrics.HTTPHandler(reg))
//
// All PrometheusRecorder methods tolerate nil receivers, so a field typed
// *PrometheusRecorder that was never assigned behaves like the noop.
package metrics
