package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"

	"cssreduce/misc"
)

type LoggerConfig struct {
	Level       string `yaml:"level" validate:"required,oneof=none debug normal"`
	Destination string `yaml:"destination,omitempty" sanitize:"path_clean,assure_dir_exists_for_file" validate:"omitempty,filepath"`
	Mode        string `yaml:"mode,omitempty" validate:"omitempty,oneof=append overwrite"`
}

// minLevel maps configured level to the lowest enabled zap level.
func (lc LoggerConfig) minLevel() (zapcore.Level, bool) {
	switch lc.Level {
	case "debug":
		return zapcore.DebugLevel, true
	case "normal":
		return zapcore.InfoLevel, true
	}
	return zapcore.InvalidLevel, false
}

func (lc LoggerConfig) open(name string) (*os.File, error) {
	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if lc.Mode == "append" {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}
	return os.OpenFile(name, flags, 0644)
}

type LoggingConfig struct {
	FileLogger    LoggerConfig `yaml:"file"`
	ConsoleLogger LoggerConfig `yaml:"console"`
}

// PanicLogName returns name of the file crash output is redirected to when
// file logging is on.
func (conf *LoggingConfig) PanicLogName() string {
	if len(conf.FileLogger.Destination) == 0 {
		return ""
	}
	return filepath.Join(filepath.Dir(conf.FileLogger.Destination), misc.GetAppName()+"-panic.log")
}

// Prepare builds program logger. Console output always goes to stderr, stdout
// carries reduced css.
func (conf *LoggingConfig) Prepare() (*zap.Logger, error) {
	file, redirected, err := conf.fileCore()
	if err != nil {
		return nil, err
	}

	log := zap.New(zapcore.NewTee(append(conf.consoleCores(), file)...), zap.AddCaller())
	if len(redirected) > 0 {
		log.Warn("Log file was redirected to new location", zap.String("location", redirected))
	}
	return log.Named(misc.GetAppName()), nil
}

// consoleCores splits console output in two: errors are written without
// verbose details, everything below goes through regular encoder.
func (conf *LoggingConfig) consoleCores() []zapcore.Core {
	lvl, ok := conf.ConsoleLogger.minLevel()
	if !ok {
		return nil
	}

	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeCaller = nil
	ec.EncodeLevel = zapcore.CapitalLevelEncoder
	if EnableColorOutput(os.Stderr) {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		ec.TimeKey = zapcore.OmitKey
	}

	out := zapcore.Lock(os.Stderr)
	return []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(ec), out, zap.LevelEnablerFunc(func(l zapcore.Level) bool {
			return lvl <= l && l < zapcore.ErrorLevel
		})),
		zapcore.NewCore(briefErrors{zapcore.NewConsoleEncoder(ec)}, out, zap.LevelEnablerFunc(func(l zapcore.Level) bool {
			return l >= zapcore.ErrorLevel
		})),
	}
}

// fileCore returns core writing to configured destination. When destination
// cannot be opened temporary file is used instead and its name is returned.
func (conf *LoggingConfig) fileCore() (zapcore.Core, string, error) {
	lc := conf.FileLogger
	lvl, ok := lc.minLevel()
	if !ok || len(lc.Destination) == 0 {
		return zapcore.NewNopCore(), "", nil
	}

	// crash output is best effort
	if f, err := lc.open(conf.PanicLogName()); err == nil {
		debug.SetCrashOutput(f, debug.CrashOptions{})
		f.Close()
	}

	enc := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	f, err := lc.open(lc.Destination)
	if err == nil {
		return zapcore.NewCore(enc, zapcore.Lock(f), lvl), "", nil
	}
	if f, err = os.CreateTemp("", misc.GetAppName()+".*.log"); err != nil {
		return nil, "", fmt.Errorf("unable to access file log destination (%s): %w", lc.Destination, err)
	}
	return zapcore.NewCore(enc, zapcore.Lock(f), lvl), f.Name(), nil
}

// briefErrors drops wrapped error details (errorVerbose) from console output.
type briefErrors struct {
	zapcore.Encoder
}

func (b briefErrors) Clone() zapcore.Encoder {
	return briefErrors{b.Encoder.Clone()}
}

func (b briefErrors) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	brief := make([]zapcore.Field, 0, len(fields))
	for _, f := range fields {
		if f.Type == zapcore.ErrorType {
			f.Interface = errors.New(f.Interface.(error).Error())
		}
		brief = append(brief, f)
	}
	return b.Encoder.EncodeEntry(ent, brief)
}
