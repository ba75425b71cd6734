// Package telemetry provides OpenTelemetry integration for the backup
// client.
//
// # Key Components
//
// Manager: creates the OTLP gRPC exporter and the TracerProvider for one run
// and flushes it on Shutdown.
//
// Attributes: span attribute keys grouped by category (HTTP, backup API,
// identity).
//
// Error Templates: user-facing messages for the common CLI failures.
//
// # Usage Example
//
//	manager := telemetry.NewManager(telemetry.Config{
//	    Enabled:      true,
//	    Endpoint:     "localhost:4317",
//	    Insecure:     true,
//	    SamplingRate: 1.0,
//	    ServiceName:  "backup-client",
//	})
//	if err := manager.Initialize(ctx); err != nil {
//	    log.Fatalf("Failed to initialize telemetry: %v", err)
//	}
//	defer manager.Shutdown(ctx)
//
//	client, err := backupapi.NewClient("2", opts,
//	    backupapi.WithTracerProvider(manager.TracerProvider()))
//
// # Design Patterns
//
// Graceful Degradation: if initialization fails the manager disables
// tracing and the CLI continues without telemetry.
package telemetry
