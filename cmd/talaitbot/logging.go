package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// fileHook copies matching log entries to a file sink.
type fileHook struct {
	w         io.Writer
	levels    []logrus.Level
	formatter logrus.Formatter
	filter    func(*logrus.Entry) bool
}

func (h *fileHook) Levels() []logrus.Level {
	return h.levels
}

func (h *fileHook) Fire(entry *logrus.Entry) error {
	if h.filter != nil && !h.filter(entry) {
		return nil
	}
	line, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}
	_, err = h.w.Write(line)
	return err
}

func isCommandEntry(entry *logrus.Entry) bool {
	_, command := entry.Data["command"]
	_, component := entry.Data["component"]
	return command || component
}

type logFiles []*lumberjack.Logger

// openLogFiles attaches bot.log, commands.log and errors.log sinks under dir.
// An empty dir disables file logging.
func openLogFiles(log *logrus.Logger, dir string, backups int) (logFiles, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	formatter := &logrus.TextFormatter{DisableColors: true, FullTimestamp: true}
	sink := func(name string) *lumberjack.Logger {
		return &lumberjack.Logger{
			Filename:   filepath.Join(dir, name),
			MaxBackups: backups,
			LocalTime:  true,
		}
	}

	all, commands, errs := sink("bot.log"), sink("commands.log"), sink("errors.log")
	log.AddHook(&fileHook{w: all, levels: logrus.AllLevels, formatter: formatter})
	log.AddHook(&fileHook{w: commands, levels: logrus.AllLevels, formatter: formatter, filter: isCommandEntry})
	log.AddHook(&fileHook{w: errs, levels: []logrus.Level{logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel}, formatter: formatter})
	return logFiles{all, commands, errs}, nil
}

func (files logFiles) rotateAll() error {
	var errs []error
	for _, f := range files {
		errs = append(errs, f.Rotate())
	}
	return errors.Join(errs...)
}

// rotate starts new log files every interval until ctx is done.
// lumberjack only rotates by size, so the schedule lives here.
func (files logFiles) rotate(ctx context.Context, interval time.Duration) error {
	if len(files) == 0 || interval <= 0 {
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := files.rotateAll(); err != nil {
				log.WithError(err).Warn("Failed to rotate log files")
			}
		}
	}
}

func (files logFiles) Close() error {
	var errs []error
	for _, f := range files {
		errs = append(errs, f.Close())
	}
	return errors.Join(errs...)
}
