package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"myreboot/internal/action"
)

var log = newDiscardLogger()

func newDiscardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// InitLoggerWithConfig initializes the logger with the provided configuration
// Logs are written to ~/.config/my-reboot/my-reboot.log
func InitLoggerWithConfig(cfg LogConfig) error {
	l := logrus.New()

	logDir := ConfigDir()
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	lj := &lumberjack.Logger{
		Filename:   GetLogPath(),
		MaxSize:    cfg.MaxSizeMB,  // MB - rotate when file reaches this size
		MaxBackups: cfg.MaxBackups, // Number of backup files to keep
		MaxAge:     cfg.MaxAgeDays, // Days to keep old files
		Compress:   cfg.Compress,   // Compress rotated files
		LocalTime:  true,
	}

	if cfg.ToStdout {
		l.SetOutput(io.MultiWriter(lj, os.Stdout))
	} else {
		l.SetOutput(lj)
	}

	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
		DisableColors:   true, // No colors in log file
	})
	l.SetLevel(logrus.InfoLevel)
	log = l

	log.WithFields(logrus.Fields{
		"max_size_mb":  cfg.MaxSizeMB,
		"max_backups":  cfg.MaxBackups,
		"max_age_days": cfg.MaxAgeDays,
		"compress":     cfg.Compress,
		"to_stdout":    cfg.ToStdout,
	}).Debug("Logger initialized")
	return nil
}

// SetLogLevel sets the logging level based on debug mode
func SetLogLevel(debug bool) {
	if debug {
		log.SetLevel(logrus.DebugLevel)
		log.Debug("Debug logging enabled")
	} else {
		log.SetLevel(logrus.InfoLevel)
	}
}

// LogInfo logs an info level message (always logged)
func LogInfo(format string, args ...interface{}) {
	log.Infof(format, args...)
}

// LogDebug logs a debug level message (only when debug mode is on)
func LogDebug(format string, args ...interface{}) {
	log.Debugf(format, args...)
}

// LogWarn logs a warning level message
func LogWarn(format string, args ...interface{}) {
	log.Warnf(format, args...)
}

// LogError logs an error level message
func LogError(format string, args ...interface{}) {
	log.Errorf(format, args...)
}

// LogAction logs a business action (always logged at info level)
func LogAction(name string, details string) {
	log.WithFields(logrus.Fields{
		"action": name,
	}).Info(details)
}

// LogStartup logs application startup information
func LogStartup(command string) {
	log.WithFields(logrus.Fields{
		"version":    Version,
		"commit":     getShortCommit(),
		"build_date": buildDate,
		"pid":        os.Getpid(),
		"host":       hostOS,
		"command":    command,
	}).Info("my-reboot starting")
}

// LogShutdown logs application shutdown
func LogShutdown() {
	log.Info("my-reboot shutting down")
}

// LogConfigLoaded logs when configuration is loaded
func LogConfigLoaded(cfg *Config) {
	log.WithFields(logrus.Fields{
		"grubenv":    cfg.Grubenv(),
		"entries":    len(cfg.GrubEntries),
		"pre_action": cfg.PreAction != nil && cfg.PreAction.Script != "",
	}).Info("Configuration loaded")
}

// LogSelection logs what the user picked in a dialog
func LogSelection(source string, sel action.Selection) {
	LogAction("selection", fmt.Sprintf("%s: %s", source, sel))
}

// LogGrubenvRewritten logs an edit of the environment block
func LogGrubenvRewritten(path, change string, err error) {
	fields := logrus.Fields{
		"action": "grubenv_rewritten",
		"path":   path,
		"change": change,
	}
	if err != nil {
		fields["error"] = err.Error()
		log.WithFields(fields).Warn("Environment block rewrite failed")
		return
	}
	log.WithFields(fields).Info("Environment block rewritten")
}

// LogCommandExecuted logs a power command
func LogCommandExecuted(command string, err error) {
	fields := logrus.Fields{
		"action":  "command_executed",
		"command": command,
	}
	if err != nil {
		fields["error"] = err.Error()
		log.WithFields(fields).Error("Command failed")
		return
	}
	log.WithFields(fields).Info("Command executed")
}

// LogScriptExecuted logs when a Lua script is executed
func LogScriptExecuted(scriptName string, err error) {
	status := "success"
	fields := logrus.Fields{
		"action": "script_executed",
		"script": scriptName,
	}
	if err != nil {
		status = "failed"
		fields["error"] = err.Error()
	}
	fields["status"] = status
	log.WithFields(fields).Info(fmt.Sprintf("Script executed: %s", scriptName))
}

// LogTrayAction logs a tray menu or hotkey action
func LogTrayAction(item string) {
	LogAction("tray", fmt.Sprintf("Tray action: %s", item))
}

// GetLogPath returns the path to the log file
func GetLogPath() string {
	return filepath.Join(ConfigDir(), "my-reboot.log")
}
