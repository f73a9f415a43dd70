package utils

import (
	"log/slog"

	"github.com/posthog/posthog-go"
)

// PosthogClientWrapper shields callers from analytics being unconfigured: a
// wrapper without a client silently drops events, so request handling never
// has to branch on whether tracking is on.
type PosthogClientWrapper struct {
	posthogClient posthog.Client
	logger        *slog.Logger
}

// InitializePosthogClient builds the analytics wrapper. An empty API key, or
// a client construction failure, yields a disabled wrapper rather than an
// error; the platform runs fine without analytics.
func InitializePosthogClient(apiKey string, logger *slog.Logger) *PosthogClientWrapper {
	if apiKey == "" {
		logger.Info("Posthog API key not set, analytics disabled")
		return &PosthogClientWrapper{logger: logger}
	}

	client, err := posthog.NewWithConfig(apiKey, posthog.Config{Endpoint: "https://eu.i.posthog.com"})
	if err != nil {
		logger.Warn("Failed to initialize posthog client, analytics disabled", slog.String("error", err.Error()))
		return &PosthogClientWrapper{logger: logger}
	}

	logger.Info("Posthog analytics enabled")
	return &PosthogClientWrapper{posthogClient: client, logger: logger}
}

// IsInitialized reports whether events will actually be delivered.
func (w *PosthogClientWrapper) IsInitialized() bool {
	return w.posthogClient != nil
}

// Enqueue submits one capture event. Delivery is asynchronous and failures
// only get logged; analytics never disturbs request handling.
func (w *PosthogClientWrapper) Enqueue(distinctID string, event string, properties map[string]any) {
	if w.posthogClient == nil {
		return
	}

	err := w.posthogClient.Enqueue(posthog.Capture{
		DistinctId: distinctID,
		Event:      event,
		Properties: properties,
	})
	if err != nil && w.logger != nil {
		w.logger.Warn("Failed to enqueue analytics event", slog.String("event", event), slog.String("error", err.Error()))
	}
}

// Close flushes buffered events. Deferred at shutdown.
func (w *PosthogClientWrapper) Close() {
	if w.posthogClient == nil {
		return
	}
	if err := w.posthogClient.Close(); err != nil && w.logger != nil {
		w.logger.Warn("Failed to close posthog client", slog.String("error", err.Error()))
	}
}
