package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"flappy-casino/internal/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	writerMu sync.RWMutex
	writer   io.Writer = os.Stdout
)

// Init configures the global zerolog logger. When cfg.File is set, output
// goes to both stdout and a rotating file (see LogConfig.Backups).
func Init(cfg config.LogConfig) {
	level := zerolog.InfoLevel
	if v := strings.TrimSpace(cfg.Level); v != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(v)); err == nil {
			level = parsed
		}
	}

	var base io.Writer = os.Stdout
	if cfg.File != "" {
		fw, err := newRotatingFile(cfg.File, cfg.MaxMB, cfg.Backups)
		if err != nil {
			log.Error().Err(err).Str("path", cfg.File).Msg("open log file failed")
		} else {
			base = io.MultiWriter(os.Stdout, fw)
		}
	}
	setWriter(base)

	var output io.Writer = base
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: base}
	}

	zerolog.SetGlobalLevel(level)
	logger := zerolog.New(output).With().Timestamp().Logger()
	if cfg.SampleEvery > 1 {
		logger = logger.Sample(&zerolog.BasicSampler{N: uint32(cfg.SampleEvery)})
	}
	log.Logger = logger
}

// Writer returns the raw destination used by the global logger, for
// components that log through another frontend (the HTTP access log).
func Writer() io.Writer {
	writerMu.RLock()
	defer writerMu.RUnlock()
	return writer
}

func setWriter(w io.Writer) {
	writerMu.Lock()
	writer = w
	writerMu.Unlock()
}
