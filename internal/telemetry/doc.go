// Package telemetry sets up OpenTelemetry tracing and metrics for moodwall.
//
// Traces and metrics are exported over OTLP (gRPC or HTTP/protobuf).
// Telemetry failures never stop the service: an instance that cannot
// build its providers reports itself degraded and falls back to the global
// no-op providers.
//
//	tel, err := telemetry.New(ctx, &cfg.Telemetry)
//	if err != nil {
//	    return err
//	}
//	defer tel.Shutdown(context.Background())
//
// Tests use NewTestTelemetry, which records spans and metrics in memory.
package telemetry
