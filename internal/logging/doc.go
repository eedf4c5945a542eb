// Package logging wraps zap with context-aware methods.
//
// Every method takes a context and prepends its correlation fields
// (trace and span IDs, request ID) to the entry. Output goes to stdout as
// JSON or console text and, optionally, to the OpenTelemetry log bridge.
// Fields whose key names a credential are redacted before encoding, and
// entries below error level can be sampled.
//
//	logger, err := logging.NewLogger(&cfg.Logging, tel.LoggerProvider())
//	if err != nil {
//	    return err
//	}
//	defer logger.Sync()
//
//	logger.Info(ctx, "message stored", zap.String("intention", "love"))
//
// Tests use NewTestLogger and its assertion helpers.
package logging
