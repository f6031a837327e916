// Package logger provides the structured zap-backed logger shared by every
// agentmem client.
//
// # Architecture
//
// The package follows "accept interfaces, return structs":
//   - Logger: the logging contract every client package depends on
//   - LoggerClient: the zap-backed implementation
//   - NewLoggerClient: returns *LoggerClient
//   - FXModule: provides both *LoggerClient and Logger
//
// Client packages such as chroma and qdrant declare their own narrow Logger
// interface with the same method set, so *LoggerClient plugs into all of
// them without adapters.
//
// # Direct Usage
//
//	log := logger.NewLoggerClient(logger.Config{
//		Level:       logger.Info,
//		ServiceName: "memdemo",
//	})
//
//	log.Info("collection ready", nil, map[string]interface{}{
//		"collection": "mem0",
//		"dims":       1536,
//	})
//
// Every method takes a message, an optional error and any number of field
// maps. A nil error adds no "error" field.
//
// # FX Module Integration
//
//	app := fx.New(
//		logger.FXModule,
//		fx.Provide(func() logger.Config {
//			return logger.Config{Level: logger.Debug, ServiceName: "memdemo"}
//		}),
//	)
//
// # Tracing Integration
//
// With EnableTracing set, the *WithContext methods add trace_id and span_id
// fields taken from the OpenTelemetry span in the context.
//
// # Configuration
//
//	ZAP_LOGGER_LEVEL=debug          # debug, info, warning, error
//	LOGGER_ENABLE_TRACING=true
package logger
