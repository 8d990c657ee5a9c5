package internal

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// Logger is the per-run log file. Safe for use from a single run; the mutex
// only guards against the cmd layer logging while a run is in flight.
type Logger struct {
	mu sync.Mutex
	f  *os.File
}

func NewLogger(path string) (*Logger, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &Logger{f: f}, nil
}

func (l *Logger) Log(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.f, time.Now().Format("15:04:05 ")+format+"\n", args...)
}

func (l *Logger) Close() error {
	return l.f.Close()
}
