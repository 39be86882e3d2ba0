/*
Package log provides structured logging for the process supervisor using zerolog.

The log package wraps zerolog to provide JSON-structured logging with
component-specific child loggers, configurable levels, and helper functions
for the common logging patterns used across the supervisor's background
loops (launcher, terminator, reaper, populator, reconciler, coordinator).

# Usage

	log.Init(log.Config{
		Level:      log.InfoLevel,
		JSONOutput: true,
	})

	logger := log.WithComponent("populator")
	logger.Info().Str("work_unit_id", id).Msg("launched new process")

Component loggers attach a "component" field; WithSupervisorID and
WithWorkUnitID attach identifying fields used throughout pkg/supervisor and
pkg/k8s so that a single work unit's lifecycle can be grepped out of the
aggregate log stream.

Set JSONOutput to false for a human-readable console format during local
development; production deployments run with JSON output so logs can be
ingested by a log pipeline.
*/
package log
