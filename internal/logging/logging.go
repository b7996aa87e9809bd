// Package logging writes the process log to one file per day and purges old
// files.
package logging

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/tuno/internal/config"
)

// Log is a logger bound to its dated file.
type Log struct {
	*logrus.Logger
	Path string

	file *os.File
}

// Close flushes and closes the log file.
func (l *Log) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// Setup opens (or creates) today's log file under cfg.Dir and returns a
// logger writing to it.
func Setup(cfg config.LogConfig, now time.Time) (*Log, error) {
	dir, err := ExpandHome(cfg.Dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("logging: create %s: %w", dir, err)
	}

	level := logrus.DebugLevel
	if cfg.Level != "" {
		if level, err = logrus.ParseLevel(cfg.Level); err != nil {
			return nil, fmt.Errorf("logging: %w", err)
		}
	}

	path := FilePath(dir, now)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logging: open %s: %w", path, err)
	}

	l := logrus.New()
	l.SetOutput(f)
	l.SetLevel(level)
	l.SetFormatter(&logrus.TextFormatter{
		DisableColors:   true,
		FullTimestamp:   true,
		TimestampFormat: "15:04:05",
	})
	return &Log{Logger: l, Path: path, file: f}, nil
}

// FilePath returns the log file for the day of t.
func FilePath(dir string, t time.Time) string {
	return filepath.Join(dir, t.Format(time.DateOnly)+".log")
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("logging: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}

// Purge deletes *.log files in dir last modified more than days ago and
// returns how many it removed. A missing dir is not an error.
func Purge(dir string, days int, now time.Time) (int, error) {
	dir, err := ExpandHome(dir)
	if err != nil {
		return 0, err
	}
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("logging: read %s: %w", dir, err)
	}

	cutoff := now.Add(-time.Duration(days) * 24 * time.Hour)
	var removed int
	var errs []error
	for _, e := range entries {
		if !e.Type().IsRegular() || filepath.Ext(e.Name()) != ".log" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
			errs = append(errs, err)
			continue
		}
		removed++
	}
	return removed, errors.Join(errs...)
}
