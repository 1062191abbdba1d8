package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
)

var (
	infoTag  = color.New(color.BgBlue).Add(color.FgWhite).Add(color.Bold).SprintFunc()
	warnTag  = color.New(color.BgYellow).Add(color.FgBlack).Add(color.Bold).SprintFunc()
	errorTag = color.New(color.BgRed).Add(color.FgWhite).Add(color.Bold).SprintFunc()
	debugTag = color.New(color.BgCyan).Add(color.FgWhite).Add(color.Bold).SprintFunc()
)

// Logger prints tagged lines to Out, or stdout when Out is nil. When FilePath is
// set every line is also appended to that file, without colors.
type Logger struct {
	FilePath  string
	Debugging bool
	Out       io.Writer
}

func (logger Logger) Info(data ...interface{}) {
	logger.print("INFO", infoTag, data)
}

func (logger Logger) Warn(data ...interface{}) {
	logger.print("WARN", warnTag, data)
}

func (logger Logger) Error(data ...interface{}) {
	logger.print("ERROR", errorTag, data)
}

// Debug only prints when Debugging is set.
func (logger Logger) Debug(data ...interface{}) {
	if !logger.Debugging {
		return
	}
	logger.print("DEBUG", debugTag, data)
}

func (logger Logger) print(tag string, paint func(a ...interface{}) string, data []interface{}) {
	str := join(data)
	out := logger.Out
	if out == nil {
		out = os.Stdout
	}
	fmt.Fprintln(out, paint(tag), str)
	if logger.FilePath == "" {
		return
	}
	file, err := os.OpenFile(logger.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		fmt.Fprintln(out, errorTag("ERROR"), "failed to open log file:", err)
		return
	}
	defer file.Close()
	fmt.Fprintf(file, "[%s] %s %s\n", time.Now().Format("2006-01-02 15:04:05"), tag, str)
}

func join(data []interface{}) string {
	parts := make([]string, len(data))
	for i, d := range data {
		parts[i] = fmt.Sprintf("%v", d)
	}
	return strings.Join(parts, " ")
}
