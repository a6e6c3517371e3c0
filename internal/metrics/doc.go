// Package metrics records pipeline observations.
//
// Components receive a Recorder and default to NoopRecorder, so metrics stay
// optional and no call site needs a nil check:
//
//	orch := build.NewOrchestrator(cfg, runner).WithRecorder(metrics.NewPrometheusRecorder(reg))
//
// PrometheusRecorder registers its collectors on a caller-provided registry.
// A CLI run has no scrape endpoint, so the registry is flushed with
// WriteTextfile in the node_exporter textfile format instead.
package metrics
