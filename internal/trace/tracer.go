package trace

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Tracer receives trace events. Implementations must be safe for concurrent
// Emit calls, since parallel module runs share one tracer.
type Tracer interface {
	Emit(ev *Event)
	Flush() error
	Close() error
	Level() Level
	// Enabled reports Level() > LevelOff.
	Enabled() bool
}

// StorageMode selects where events go.
type StorageMode uint8

const (
	ModeStream StorageMode = iota + 1 // written as they happen
	ModeRing                          // kept in memory for crash dumps
	ModeBoth
)

const defaultRingSize = 4096

var modeNames = [...]string{ModeStream: "stream", ModeRing: "ring", ModeBoth: "both"}

func (m StorageMode) String() string {
	if int(m) < len(modeNames) && modeNames[m] != "" {
		return modeNames[m]
	}
	return "unknown"
}

// ParseMode accepts stream, ring or both; empty means stream.
func ParseMode(s string) (StorageMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ModeStream, nil
	}
	for i, name := range modeNames {
		if name != "" && name == s {
			return StorageMode(i), nil
		}
	}
	return ModeStream, fmt.Errorf("invalid storage mode %q (want stream|ring|both)", s)
}

// Config describes the tracer built by New.
type Config struct {
	Level  Level
	Mode   StorageMode
	Format Format // FormatAuto picks from the OutputPath extension
	// Output wins over OutputPath; an empty path or "-" means stderr.
	Output     io.Writer
	OutputPath string
	RingSize   int
}

// New builds the tracer described by cfg. LevelOff yields Nop.
func New(cfg Config) (Tracer, error) {
	if cfg.Level == LevelOff {
		return Nop, nil
	}
	if cfg.RingSize <= 0 {
		cfg.RingSize = defaultRingSize
	}
	mode := cfg.Mode
	if mode == 0 {
		mode = ModeStream
	}
	// на уровне error кольцо молча пишет всё, чтобы дамп при сбое был полным
	ringLevel := cfg.Level
	if ringLevel == LevelError {
		ringLevel = LevelDebug
	}
	if mode == ModeRing {
		return NewRingTracer(cfg.RingSize, ringLevel), nil
	}
	if mode != ModeStream && mode != ModeBoth {
		return nil, fmt.Errorf("unknown storage mode: %v", mode)
	}

	w, err := openOutput(cfg)
	if err != nil {
		return nil, err
	}
	stream := NewStreamTracer(w, cfg.Level, resolveFormat(cfg.Format, cfg.OutputPath))
	if mode == ModeStream {
		return stream, nil
	}
	return NewMultiTracer(ringLevel, stream, NewRingTracer(cfg.RingSize, ringLevel)), nil
}

func resolveFormat(f Format, path string) Format {
	if f != FormatAuto {
		return f
	}
	switch filepath.Ext(path) {
	case ".ndjson", ".jsonl":
		return FormatNDJSON
	}
	return FormatText
}

func openOutput(cfg Config) (io.Writer, error) {
	switch {
	case cfg.Output != nil:
		return cfg.Output, nil
	case cfg.OutputPath == "" || cfg.OutputPath == "-":
		return nopCloser{os.Stderr}, nil
	}
	f, err := os.Create(cfg.OutputPath)
	if err != nil {
		return nil, errors.Join(errors.New("trace: cannot open output"), err)
	}
	return f, nil
}

// stderr must survive Close
type nopCloser struct{ io.Writer }
