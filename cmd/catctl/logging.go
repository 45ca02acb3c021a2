package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/sirupsen/logrus"
)

const (
	logDir      = "logs"
	logFileName = "catctl.log"
	maxLogSize  = 10 * 1024 * 1024
)

// defaultLogPath is relative to the working directory
var defaultLogPath = filepath.Join(logDir, logFileName)

// setupLogging routes logrus to a file when debug is set and discards it otherwise.
// The operator's terminal never receives log output.
func setupLogging(debug bool, path string) *os.File {
	if !debug {
		logrus.SetOutput(io.Discard)
		logrus.SetLevel(logrus.InfoLevel)
		return nil
	}

	if path == "" {
		path = defaultLogPath
	}
	if expanded, err := homedir.Expand(path); err == nil {
		path = expanded
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create log directory: %v\n", err)
		logrus.SetOutput(io.Discard)
		return nil
	}

	rotateLog(path)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		logrus.SetOutput(io.Discard)
		return nil
	}

	logrus.SetOutput(f)
	logrus.SetLevel(logrus.DebugLevel)
	logrus.SetFormatter(&logrus.TextFormatter{
		DisableColors:   true,
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339Nano,
	})
	return f
}

// rotateLog renames an oversized log to a timestamped sibling
func rotateLog(path string) {
	info, err := os.Stat(path)
	if err != nil || info.Size() <= maxLogSize {
		return
	}
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	rotated := fmt.Sprintf("%s-%s%s", base, time.Now().Format("20060102-150405"), ext)
	os.Rename(path, rotated)
}
