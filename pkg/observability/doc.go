/*
Package observability provides Prometheus metrics for region-graph runs.

Metrics are fed through domain.LifecycleHooks, so the pipeline never imports
this package. The registry can be served over HTTP or written to a textfile
for the node exporter.
*/
package observability
