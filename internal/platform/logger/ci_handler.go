package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// ciEnvVars are copied into every record when present, keyed by their
// lowercase attribute name.
var ciEnvVars = map[string]string{
	"ci_provider_run_id": "GITHUB_RUN_ID",
	"ci_workflow":        "GITHUB_WORKFLOW",
	"ci_job":             "GITHUB_JOB",
	"ci_ref":             "GITHUB_REF",
	"ci_commit":          "GITHUB_SHA",
	"ci_pipeline_id":     "CI_PIPELINE_ID",
	"ci_job_id":          "CI_JOB_ID",
}

// isInCIEnvironment reports whether the process runs under a CI system.
func isInCIEnvironment() bool {
	return os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != "" || os.Getenv("GITLAB_CI") != ""
}

func getCIMetadata() map[string]string {
	metadata := make(map[string]string)
	for attr, env := range ciEnvVars {
		if v := os.Getenv(env); v != "" {
			metadata[attr] = v
		}
	}
	return metadata
}

// CIHandler is a slog.Handler that decorates every record with metadata about
// the CI run (workflow, job, commit) before passing it to a JSON handler.
type CIHandler struct {
	handler  slog.Handler
	metadata map[string]string
}

// NewCIHandler creates a CIHandler writing JSON records to out.
func NewCIHandler(out io.Writer, opts *slog.HandlerOptions) *CIHandler {
	var handlerOpts slog.HandlerOptions
	if opts != nil {
		handlerOpts = *opts
	}

	return &CIHandler{
		handler:  slog.NewJSONHandler(out, &handlerOpts),
		metadata: getCIMetadata(),
	}
}

// Enabled implements the slog.Handler interface.
func (h *CIHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// WithAttrs implements the slog.Handler interface.
func (h *CIHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &CIHandler{handler: h.handler.WithAttrs(attrs), metadata: h.metadata}
}

// WithGroup implements the slog.Handler interface.
func (h *CIHandler) WithGroup(name string) slog.Handler {
	return &CIHandler{handler: h.handler.WithGroup(name), metadata: h.metadata}
}

// Handle implements the slog.Handler interface.
func (h *CIHandler) Handle(ctx context.Context, record slog.Record) error {
	enhanced := record.Clone()
	for key, value := range h.metadata {
		enhanced.AddAttrs(slog.String(key, value))
	}
	return h.handler.Handle(ctx, enhanced)
}
