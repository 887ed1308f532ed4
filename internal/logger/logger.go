package logger

import (
	"io"
	"log"
	"os"
)

var (
	infoLogger  = log.New(os.Stderr, "INFO: ", log.Ldate|log.Ltime|log.Lshortfile)
	errorLogger = log.New(os.Stderr, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)
	logFile     *os.File
)

// Init points both loggers at the given file in addition to stderr. Without
// Init everything still works and goes to stderr only.
func Init(logFilePath string) error {
	f, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return err
	}
	logFile = f
	out := io.MultiWriter(os.Stderr, f)
	infoLogger.SetOutput(out)
	errorLogger.SetOutput(out)
	return nil
}

// Cleanup closes the log file when the application is done with it.
func Cleanup() {
	if logFile != nil {
		logFile.Close()
		logFile = nil
		infoLogger.SetOutput(os.Stderr)
		errorLogger.SetOutput(os.Stderr)
	}
}

// Info logs an informational message.
func Info(v ...interface{}) {
	infoLogger.Println(v...)
}

// Infof logs a formatted informational message.
func Infof(format string, v ...interface{}) {
	infoLogger.Printf(format, v...)
}

// Error logs an error message.
func Error(v ...interface{}) {
	errorLogger.Println(v...)
}

// Errorf logs a formatted error message.
func Errorf(format string, v ...interface{}) {
	errorLogger.Printf(format, v...)
}
