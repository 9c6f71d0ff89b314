package logging

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileLoggerConfig holds configuration for file logging
type FileLoggerConfig struct {
	// Path is the log file path
	Path string
	// Format is the output format (json or text)
	Format Format
	// Level is the minimum log level
	Level Level
	// MaxSize is the maximum size in bytes before rotation (0 = no rotation)
	MaxSize int64
	// MaxBackups is the maximum number of backup files to keep
	MaxBackups int
}

// rotatingFile is an append-only log file rotated by size
type rotatingFile struct {
	config      FileLoggerConfig
	file        *os.File
	currentSize int64
}

// NewFileLogger creates a logger appending to a file with size-based rotation
func NewFileLogger(config FileLoggerConfig) (*WriterLogger, error) {
	if err := os.MkdirAll(filepath.Dir(config.Path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(config.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat log file: %w", err)
	}

	rf := &rotatingFile{config: config, file: file, currentSize: info.Size()}
	logger := NewWriterLogger(rf, config.Format, config.Level)
	logger.sink.before = rf.rotateIfNeeded
	logger.closer = rf
	return logger, nil
}

func (r *rotatingFile) Write(p []byte) (int, error) {
	if r.file == nil {
		return 0, os.ErrClosed
	}
	n, err := r.file.Write(p)
	r.currentSize += int64(n)
	return n, err
}

func (r *rotatingFile) Close() error {
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

func (r *rotatingFile) rotateIfNeeded() {
	if r.config.MaxSize > 0 && r.currentSize >= r.config.MaxSize {
		r.rotate()
	}
}

// rotate shifts path.N to path.N+1, moves the live file to path.1 and reopens
func (r *rotatingFile) rotate() {
	if r.file == nil {
		return
	}
	r.file.Close()

	for i := r.config.MaxBackups - 1; i >= 1; i-- {
		os.Rename(fmt.Sprintf("%s.%d", r.config.Path, i), fmt.Sprintf("%s.%d", r.config.Path, i+1))
	}
	os.Rename(r.config.Path, r.config.Path+".1")

	if r.config.MaxBackups > 0 {
		os.Remove(fmt.Sprintf("%s.%d", r.config.Path, r.config.MaxBackups+1))
	}

	file, err := os.OpenFile(r.config.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		r.file = nil
		return
	}
	r.file = file
	r.currentSize = 0
}
