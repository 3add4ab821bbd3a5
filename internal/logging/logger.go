package logging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"

	"vidscribe/internal/config"
)

// LogFileName is the file written under paths.log_dir.
const LogFileName = "vidscribe.log"

// Options describes logger construction parameters.
type Options struct {
	Level  string
	Format string
	// Outputs lists destinations: "stderr", "stdout", or file paths.
	// Empty means stderr.
	Outputs []string
	// Color forces ANSI level colours on or off; nil colours only when the
	// sole output is a terminal.
	Color *bool
}

// New constructs a slog logger. Debug level also records the caller.
func New(opts Options) (*slog.Logger, error) {
	levelVar := new(slog.LevelVar)
	levelVar.Set(parseLevel(opts.Level))

	out, err := openOutputs(opts.Outputs)
	if err != nil {
		return nil, err
	}
	addSource := levelVar.Level() <= slog.LevelDebug

	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "json":
		return slog.New(newJSONHandler(out, levelVar, addSource)), nil
	case "console", "":
		color := colorEnabled(out)
		if opts.Color != nil {
			color = *opts.Color
		}
		return slog.New(&consoleHandler{
			state:     &consoleState{w: out},
			level:     levelVar,
			addSource: addSource,
			color:     color,
		}), nil
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}
}

// NewFromConfig logs to stderr and, when paths.log_dir is set, to
// LogFileName inside it.
func NewFromConfig(cfg *config.Config) (*slog.Logger, error) {
	if cfg == nil {
		return New(Options{Level: "info", Format: "console"})
	}
	outputs := []string{"stderr"}
	if dir := strings.TrimSpace(cfg.Paths.LogDir); dir != "" {
		outputs = append(outputs, filepath.Join(dir, LogFileName))
	}
	return New(Options{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Outputs: outputs,
	})
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func openOutputs(outputs []string) (io.Writer, error) {
	seen := make(map[string]bool, len(outputs))
	var writers []io.Writer
	for _, output := range outputs {
		output = strings.TrimSpace(output)
		if output == "" || seen[output] {
			continue
		}
		seen[output] = true
		switch output {
		case "stdout":
			writers = append(writers, os.Stdout)
		case "stderr":
			writers = append(writers, os.Stderr)
		default:
			if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
				return nil, fmt.Errorf("ensure log directory: %w", err)
			}
			file, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
			if err != nil {
				return nil, fmt.Errorf("open log file %s: %w", output, err)
			}
			writers = append(writers, file)
		}
	}
	switch len(writers) {
	case 0:
		return os.Stderr, nil
	case 1:
		return writers[0], nil
	default:
		return io.MultiWriter(writers...), nil
	}
}

// colorEnabled reports whether w is a single terminal.
func colorEnabled(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func newJSONHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     lvl,
		AddSource: addSource,
		ReplaceAttr: func(_ []string, attr slog.Attr) slog.Attr {
			switch attr.Key {
			case slog.TimeKey:
				attr.Key = "ts"
				if attr.Value.Kind() == slog.KindTime {
					attr.Value = slog.StringValue(attr.Value.Time().UTC().Format(time.RFC3339Nano))
				}
			case slog.LevelKey:
				attr.Value = slog.StringValue(strings.ToLower(attr.Value.String()))
			case slog.SourceKey:
				if src, ok := attr.Value.Any().(*slog.Source); ok && src != nil {
					attr.Value = slog.StringValue(fmt.Sprintf("%s:%d", filepath.Base(src.File), src.Line))
				}
			}
			return attr
		},
	})
}

// consoleHandler writes one line per record:
//
//	2026-01-02T15:04:05Z WARN classify (01234567/classify): ocr unavailable @40.5s k=v event_type=... impact=... error_hint=...
//
// component, run_id, stage, and t are lifted into the header; the warning
// guidance fields always trail the line in that fixed order.
type consoleHandler struct {
	state     *consoleState
	level     *slog.LevelVar
	addSource bool
	color     bool
	prefix    string
	fields    []field
}

// consoleState is shared by every handler derived with WithAttrs/WithGroup.
type consoleState struct {
	mu sync.Mutex
	w  io.Writer
}

type field struct {
	key   string
	value slog.Value
}

var trailingKeys = []string{FieldEventType, FieldImpact, FieldErrorHint}

const runIDWidth = 8

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	fields := make([]field, len(h.fields), len(h.fields)+record.NumAttrs())
	copy(fields, h.fields)
	record.Attrs(func(attr slog.Attr) bool {
		fields = appendField(fields, h.prefix, attr)
		return true
	})

	header := make(map[string]slog.Value, 4)
	trailing := make(map[string]slog.Value, len(trailingKeys))
	body := fields[:0]
	for _, f := range fields {
		switch f.key {
		case FieldComponent, FieldRunID, FieldStage, FieldTimestamp:
			header[f.key] = f.value
		case FieldEventType, FieldImpact, FieldErrorHint:
			trailing[f.key] = f.value
		default:
			body = append(body, f)
		}
	}

	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	var buf bytes.Buffer
	buf.WriteString(ts.UTC().Format(time.RFC3339))
	buf.WriteByte(' ')
	if h.color {
		buf.WriteString(levelColor(record.Level))
	}
	buf.WriteString(levelLabel(record.Level))
	if h.color {
		buf.WriteString(ansiReset)
	}
	if v, ok := header[FieldComponent]; ok {
		buf.WriteByte(' ')
		buf.WriteString(v.String())
	}
	if scope := runScope(header); scope != "" {
		buf.WriteString(" (")
		buf.WriteString(scope)
		buf.WriteByte(')')
	}
	buf.WriteString(": ")
	if msg := strings.TrimSpace(record.Message); msg != "" {
		buf.WriteString(msg)
	} else {
		buf.WriteString("(no message)")
	}
	if v, ok := header[FieldTimestamp]; ok {
		buf.WriteString(" @")
		buf.WriteString(formatValue(v))
		buf.WriteByte('s')
	}
	if h.addSource && record.PC != 0 {
		if src := record.Source(); src != nil {
			fmt.Fprintf(&buf, " [%s:%d]", filepath.Base(src.File), src.Line)
		}
	}
	for _, f := range body {
		writeField(&buf, f.key, f.value)
	}
	for _, key := range trailingKeys {
		if v, ok := trailing[key]; ok {
			writeField(&buf, key, v)
		}
	}
	buf.WriteByte('\n')

	h.state.mu.Lock()
	defer h.state.mu.Unlock()
	_, err := h.state.w.Write(buf.Bytes())
	return err
}

// runScope renders "<run>/<stage>" with the run id shortened.
func runScope(header map[string]slog.Value) string {
	var run, stage string
	if v, ok := header[FieldRunID]; ok {
		run = v.String()
		if len(run) > runIDWidth {
			run = run[:runIDWidth]
		}
	}
	if v, ok := header[FieldStage]; ok {
		stage = v.String()
	}
	switch {
	case run != "" && stage != "":
		return run + "/" + stage
	case run != "":
		return run
	default:
		return stage
	}
}

func writeField(buf *bytes.Buffer, key string, value slog.Value) {
	buf.WriteByte(' ')
	buf.WriteString(key)
	buf.WriteByte('=')
	buf.WriteString(formatValue(value))
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.fields = make([]field, len(h.fields), len(h.fields)+len(attrs))
	copy(clone.fields, h.fields)
	for _, attr := range attrs {
		clone.fields = appendField(clone.fields, h.prefix, attr)
	}
	return &clone
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = joinKey(h.prefix, name)
	return &clone
}

// appendField flattens attr, joining group names with dots.
func appendField(dst []field, prefix string, attr slog.Attr) []field {
	attr.Value = attr.Value.Resolve()
	if attr.Equal(slog.Attr{}) {
		return dst
	}
	key := joinKey(prefix, attr.Key)
	if attr.Value.Kind() == slog.KindGroup {
		for _, member := range attr.Value.Group() {
			dst = appendField(dst, key, member)
		}
		return dst
	}
	return append(dst, field{key: key, value: attr.Value})
}

func joinKey(prefix, key string) string {
	switch {
	case prefix == "":
		return key
	case key == "":
		return prefix
	default:
		return prefix + "." + key
	}
}

func formatValue(v slog.Value) string {
	var s string
	switch v.Kind() {
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case slog.KindTime:
		return v.Time().UTC().Format(time.RFC3339)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			s = err.Error()
		} else {
			s = fmt.Sprint(v.Any())
		}
	default:
		s = v.String()
	}
	if needsQuotes(s) {
		return strconv.Quote(s)
	}
	return s
}

func needsQuotes(s string) bool {
	if s == "" {
		return true
	}
	for _, r := range s {
		if r <= ' ' || r == '=' || r == '"' {
			return true
		}
	}
	return false
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}

const ansiReset = "\x1b[0m"

func levelColor(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "\x1b[31m"
	case level >= slog.LevelWarn:
		return "\x1b[33m"
	case level >= slog.LevelInfo:
		return "\x1b[36m"
	default:
		return "\x1b[90m"
	}
}
