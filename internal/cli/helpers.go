package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"fmeacore/internal/config"
	"fmeacore/internal/core"
	"fmeacore/pkg/domain"
)

// runtime is the configuration-derived state shared by one command run.
type runtime struct {
	cfg     config.Config
	logger  core.Logger
	observe []core.Option
	flushes []func() error
}

func loadRuntime(cmd *cobra.Command) (runtime, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return runtime{}, fmt.Errorf("failed to read --config flag: %w", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return runtime{}, err
	}
	rt := runtime{cfg: cfg, logger: core.NewSlogLogger(cfg.Log.NewLogger(cmd.ErrOrStderr()))}
	if err := rt.attachTelemetry(); err != nil {
		rt.finish()
		return runtime{}, err
	}
	return rt, nil
}

// attachTelemetry prepares the session recorders named by the telemetry
// config. finish writes them out.
func (rt *runtime) attachTelemetry() error {
	tel := rt.cfg.Telemetry
	if tel.MetricsFile != "" {
		reg := prometheus.NewRegistry()
		rt.observe = append(rt.observe, core.WithMetricsRecorder(core.NewPrometheusRecorder(reg)))
		path := tel.MetricsFile
		rt.flushes = append(rt.flushes, func() error {
			return prometheus.WriteToTextfile(path, reg)
		})
	}
	if tel.TraceFile != "" {
		f, err := os.OpenFile(tel.TraceFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open trace file: %w", err)
		}
		rt.observe = append(rt.observe, core.WithTracer(core.NewJSONTracer(f)))
		rt.flushes = append(rt.flushes, f.Close)
	}
	return nil
}

func (rt runtime) finish() {
	for _, flush := range rt.flushes {
		if err := flush(); err != nil {
			rt.logger.Warn("telemetry flush failed", "error", err)
		}
	}
}

func (rt runtime) openStore(ctx context.Context) (core.DocumentStore, func(), error) {
	store, err := core.OpenDocumentStore(ctx, rt.cfg.StorageOptions())
	if err != nil {
		return nil, nil, fmt.Errorf("open document store: %w", err)
	}
	closeFn := func() {}
	if c, ok := store.(io.Closer); ok {
		closeFn = func() { _ = c.Close() }
	}
	return store, closeFn, nil
}

func (rt runtime) newSession(doc domain.Document, opts ...core.Option) *core.Session {
	base := append([]core.Option{core.WithLogger(rt.logger)}, rt.observe...)
	return core.NewSession(doc, append(base, opts...)...)
}

// readDocument decodes a JSON or YAML interchange document; the extension
// picks the codec.
func readDocument(path string) (domain.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Document{}, fmt.Errorf("read %s: %w", path, err)
	}
	var doc domain.Document
	if isYAML(path) {
		doc, err = domain.DecodeDocumentYAML(data)
	} else {
		doc, err = domain.DecodeDocument(data)
	}
	if err != nil {
		return domain.Document{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return doc, nil
}

// writeDocument encodes doc to path, or to out when path is empty.
func writeDocument(out io.Writer, path string, doc domain.Document, asYAML bool) error {
	if path != "" {
		asYAML = asYAML || isYAML(path)
	}
	var (
		data []byte
		err  error
	)
	if asYAML {
		data, err = domain.EncodeDocumentYAML(doc)
	} else {
		data, err = domain.EncodeDocument(doc)
	}
	if err != nil {
		return err
	}
	return writeOutput(out, path, data)
}

func writeOutput(out io.Writer, path string, data []byte) error {
	if path == "" {
		_, err := out.Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
