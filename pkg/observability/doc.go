/*
Package observability provides tools for monitoring the mentor engine.

It turns engine lifecycle hooks into Prometheus metrics and structured log
lines, and records the duration of export and import tasks.
*/
package observability
