package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
)

// ********************************************************
// ********* LOGGING **************************************
// ********************************************************

var showDateTime bool
var defaultLogger *Logger
var logFile *os.File

type LogLevel int

const (
	colorReset   = "\033[0m"
	colorRed     = "\033[31m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorBlue    = "\033[34m"
	colorMagenta = "\033[35m"
	colorCyan    = "\033[36m"
	colorWhite   = "\033[37m"
	colorOrange  = "\033[38;5;208m"
)

const (
	DEBUG LogLevel = iota
	INFO
	INFORM
	HIGHLIGHT
	WARN
	ERROR
	FATAL
)

type Logger struct {
	infoLogger  *log.Logger
	errorLogger *log.Logger
	level       LogLevel
}

const defaultLogPath = "/tmp/pronosticos.log"

var logPath = defaultLogPath

func init() {
	defaultLogger = NewLogger(INFO)
	showDateTime = false
}

func currentFlags() int {
	if showDateTime {
		return log.Ldate | log.Ltime
	}
	return 0
}

func updateLoggerFlags(l *Logger) {
	l.infoLogger.SetFlags(currentFlags())
	l.errorLogger.SetFlags(currentFlags())
}

func SetShowDateTime(value bool) {
	showDateTime = value
	updateLoggerFlags(defaultLogger)
}

// SetLevel sets the minimum level that is written
func SetLevel(level LogLevel) {
	defaultLogger.level = level
}

// GetLevel returns the minimum level that is written
func GetLevel() LogLevel {
	return defaultLogger.level
}

// ParseLevel converts a level name such as "debug" or "WARN" to a LogLevel
func ParseLevel(name string) (LogLevel, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return DEBUG, nil
	case "", "INFO":
		return INFO, nil
	case "INFORM":
		return INFORM, nil
	case "HIGHLIGHT":
		return HIGHLIGHT, nil
	case "WARN", "WARNING":
		return WARN, nil
	case "ERROR":
		return ERROR, nil
	case "FATAL":
		return FATAL, nil
	}
	return INFO, fmt.Errorf("unknown log level: %s", name)
}

// SetLogFile sets the file used by the 'f' and 'b' outputs.
// Takes effect on the next SetLogOutput call.
func SetLogFile(path string) {
	if path == "" {
		path = defaultLogPath
	}
	logPath = path
}

// SetOutput sends all log lines to w. Mostly useful in tests.
func SetOutput(w io.Writer) {
	closeLogFile()
	defaultLogger.infoLogger = log.New(w, "", currentFlags())
	defaultLogger.errorLogger = log.New(w, "", currentFlags())
}

// SetLogOutput sets the output destination for logs
// 'c' for console, 'f' for file, 'b' for both
func SetLogOutput(outputType rune) error {
	closeLogFile()

	var infoWriter, errorWriter io.Writer

	switch outputType {
	case 'c':
		infoWriter = os.Stdout
		errorWriter = os.Stderr
	case 'f', 'b':
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file %s: %w", logPath, err)
		}
		logFile = f
		infoWriter = logFile
		errorWriter = logFile
		if outputType == 'b' {
			infoWriter = io.MultiWriter(os.Stdout, logFile)
			errorWriter = io.MultiWriter(os.Stderr, logFile)
		}
	default:
		return fmt.Errorf("invalid log output type: %c", outputType)
	}

	defaultLogger.infoLogger = log.New(infoWriter, "", currentFlags())
	defaultLogger.errorLogger = log.New(errorWriter, "", currentFlags())
	return nil
}

// ParseOutput converts "console", "file" or "both" to the rune SetLogOutput expects
func ParseOutput(name string) (rune, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "c", "console", "":
		return 'c', nil
	case "f", "file":
		return 'f', nil
	case "b", "both":
		return 'b', nil
	}
	return 0, fmt.Errorf("unknown log output: %s", name)
}

func closeLogFile() {
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

func NewLogger(level LogLevel) *Logger {
	return &Logger{
		infoLogger:  log.New(os.Stdout, "", currentFlags()),
		errorLogger: log.New(os.Stderr, "", currentFlags()),
		level:       level,
	}
}

func (l *Logger) log(level LogLevel, format string, v ...any) {
	if level < l.level {
		return
	}

	// Get caller information
	_, file, line, ok := runtime.Caller(2)
	if !ok {
		file = "unknown"
		line = 0
	}

	// Get just the base filename instead of full path
	file = filepath.Base(file)

	// Format message with any additional arguments
	var msg string
	var jsonObjects []string // To store JSON representations of complex objects

	if len(v) > 0 {
		// Process arguments, converting non-primitives to JSON
		processedArgs, jsonStrings := processArgs(v...)
		jsonObjects = jsonStrings

		if len(processedArgs) > 0 {
			msg = fmt.Sprintf(format+" %s", strings.Join(processedArgs, " "))
		} else {
			msg = format
		}
	} else {
		msg = format
	}

	// Get color based on log level
	var colorCode string
	switch level {
	case DEBUG:
		colorCode = colorBlue
	case INFO:
		colorCode = colorGreen
	case INFORM:
		colorCode = colorMagenta
	case HIGHLIGHT:
		colorCode = colorCyan
	case WARN:
		colorCode = colorYellow
	case ERROR:
		colorCode = colorOrange
	case FATAL:
		colorCode = colorRed
	default:
		colorCode = colorReset
	}

	// Format with metadata in white and message in color
	logMsg := fmt.Sprintf("[%s] %s:%d: %s%s%s",
		level.String(),
		file,
		line,
		colorCode,
		msg,
		colorReset)

	out := l.infoLogger
	if level >= ERROR {
		out = l.errorLogger
	}
	out.Println(logMsg)
	// Print any JSON objects on separate lines
	for _, jsonObj := range jsonObjects {
		out.Printf("[%s] %s:%d: %s%s%s\n", level.String(), file, line, colorCode, jsonObj, colorReset)
	}
}

func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case INFORM:
		return "INFORM"
	case HIGHLIGHT:
		return "HIGHLIGHT"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case FATAL:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// processArgs processes arguments, converting non-primitives to JSON
// Returns a slice of string representations for primitive types and a slice of JSON strings for complex types
func processArgs(args ...any) ([]string, []string) {
	if len(args) == 0 {
		return nil, nil
	}

	var primitives []string
	var jsonObjects []string

	for _, arg := range args {
		// Check if the argument is a primitive type
		if isPrimitive(arg) {
			// Format primitive types as before
			switch v := arg.(type) {
			case float32:
				primitives = append(primitives, fmt.Sprintf("%.2f", v))
			case float64:
				primitives = append(primitives, fmt.Sprintf("%.2f", v))
			case int:
				primitives = append(primitives, fmt.Sprintf("%d", v))
			case bool:
				primitives = append(primitives, fmt.Sprintf("%v", v))
			case string:
				primitives = append(primitives, v)
			case error:
				primitives = append(primitives, v.Error())
			case nil:
				primitives = append(primitives, "nil")
			default:
				// This shouldn't happen if isPrimitive is correct
				primitives = append(primitives, fmt.Sprintf("%v", v))
			}
		} else {
			// For non-primitive types, convert to JSON
			jsonBytes, err := json.MarshalIndent(arg, "", "  ")
			if err != nil {
				// If JSON conversion fails, use standard formatting
				primitives = append(primitives, fmt.Sprintf("%v", arg))
			} else {
				// Add a placeholder in the primitives list
				primitives = append(primitives, fmt.Sprintf("[Object of type %s]", reflect.TypeOf(arg)))
				// Add the JSON to the jsonObjects list
				jsonObjects = append(jsonObjects, string(jsonBytes))
			}
		}
	}
	return primitives, jsonObjects
}

// isPrimitive checks if a value is a primitive type
func isPrimitive(v any) bool {
	if v == nil {
		return true
	}

	switch v.(type) {
	case string, bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64, error:
		return true
	default:
		return false
	}
}

// Convenience methods using the default logger
func Debug(format string, v ...any) {
	defaultLogger.log(DEBUG, format, v...)
}

func Info(format string, v ...any) {
	defaultLogger.log(INFO, format, v...)
}

func Inform(format string, v ...any) {
	defaultLogger.log(INFORM, format, v...)
}

func Highlight(format string, v ...any) {
	defaultLogger.log(HIGHLIGHT, format, v...)
}

func Warn(format string, v ...any) {
	defaultLogger.log(WARN, format, v...)
}

func Error(format string, v ...any) {
	defaultLogger.log(ERROR, format, v...)
}

func Fatal(format string, v ...any) {
	defaultLogger.log(FATAL, format, v...)
	os.Exit(1)
}
