package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

var (
	mu          sync.RWMutex
	debugMode   bool
	debugLogger *log.Logger
	infoLogger  *log.Logger
	warnLogger  *log.Logger
	errorLogger *log.Logger
)

func init() {
	SetOutput(os.Stderr)
}

// SetOutput redirects every level to w. Tests use it to capture log lines.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	debugLogger = log.New(w, "[DEBUG] ", log.Ldate|log.Ltime|log.Lshortfile)
	infoLogger = log.New(w, "[INFO] ", log.Ldate|log.Ltime)
	warnLogger = log.New(w, "[WARN] ", log.Ldate|log.Ltime)
	errorLogger = log.New(w, "[ERROR] ", log.Ldate|log.Ltime|log.Lshortfile)
}

func SetDebugMode(enabled bool) {
	mu.Lock()
	debugMode = enabled
	mu.Unlock()
	if enabled {
		Debug("Debug mode enabled")
	}
}

func IsDebugMode() bool {
	mu.RLock()
	defer mu.RUnlock()
	return debugMode
}

func Debug(format string, args ...interface{}) {
	if IsDebugMode() {
		mu.RLock()
		defer mu.RUnlock()
		_ = debugLogger.Output(2, fmt.Sprintf(format, args...))
	}
}

func Info(format string, args ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	infoLogger.Printf(format, args...)
}

func Warn(format string, args ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	warnLogger.Printf(format, args...)
}

func Error(format string, args ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	_ = errorLogger.Output(2, fmt.Sprintf(format, args...))
}

// LogRequest logs an incoming HTTP request in debug mode
func LogRequest(method, path, remoteAddr string) {
	Debug("HTTP %s %s from %s", method, path, remoteAddr)
}

// LogResponse logs a completed HTTP request in debug mode
func LogResponse(method, path string, statusCode int, duration string) {
	Debug("HTTP %s %s -> %d (%s)", method, path, statusCode, duration)
}
