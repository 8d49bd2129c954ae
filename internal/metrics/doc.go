/*
Package metrics provides Prometheus instrumentation for the
orchestrator.

Collector owns its own registry and exposes counters and histograms
for four concerns:

  - HTTP: request totals and latency, by method/path with status
    classes 2xx/3xx/4xx/5xx.
  - Generation: workflow planning attempts and duration.
  - Execution: finished runs and end-to-end duration, by status.
  - Steps: agent step totals and duration, labeled by the step's
    tool list.

All record methods are nil-safe, so wiring metrics is optional for
every component that accepts a *Collector.
*/
package metrics
