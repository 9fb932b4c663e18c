package providers

import (
	"cpd/internal/structures"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

type TypeEnum string

const (
	TypeApp       TypeEnum = "app"
	TypeHttp      TypeEnum = "http"
	TypeScheduler TypeEnum = "scheduler"
	TypeIngest    TypeEnum = "ingest"
)

type Logger interface {
	Errorf(t TypeEnum, format string, args ...interface{})
	Warnf(t TypeEnum, format string, args ...interface{})
	Debugf(t TypeEnum, format string, args ...interface{})
	Infof(t TypeEnum, format string, args ...interface{})
	Fatalf(t TypeEnum, format string, args ...interface{})
	Close()
}

type LogProvider struct {
	log  zerolog.Logger
	file *os.File
}

func NewLogProvider(conf *structures.Config) (Logger, error) {
	level, err := zerolog.ParseLevel(conf.Logger.Level)
	if err != nil {
		return nil, err
	}

	lp := &LogProvider{}

	if conf.Debug {
		lp.log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			Level(zerolog.DebugLevel).
			With().Timestamp().Logger()
		return lp, nil
	}

	if err = os.MkdirAll(conf.Logger.Dir, 0o755); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(
		filepath.Join(conf.Logger.Dir, "cpd.log"),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND,
		os.FileMode(conf.Logger.Mode),
	)
	if err != nil {
		return nil, err
	}

	lp.file = file
	lp.log = zerolog.New(file).Level(level).With().Timestamp().Logger()
	return lp, nil
}

func (lp *LogProvider) Errorf(t TypeEnum, format string, args ...interface{}) {
	lp.log.Error().Str("type", string(t)).Msgf(format, args...)
}

func (lp *LogProvider) Warnf(t TypeEnum, format string, args ...interface{}) {
	lp.log.Warn().Str("type", string(t)).Msgf(format, args...)
}

func (lp *LogProvider) Debugf(t TypeEnum, format string, args ...interface{}) {
	lp.log.Debug().Str("type", string(t)).Msgf(format, args...)
}

func (lp *LogProvider) Infof(t TypeEnum, format string, args ...interface{}) {
	lp.log.Info().Str("type", string(t)).Msgf(format, args...)
}

func (lp *LogProvider) Fatalf(t TypeEnum, format string, args ...interface{}) {
	lp.log.Fatal().Str("type", string(t)).Msgf(format, args...)
}

func (lp *LogProvider) Close() {
	if lp.file != nil {
		_ = lp.file.Close()
	}
}
