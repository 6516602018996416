package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var (
	mu sync.RWMutex

	// 未调用 SetupLogger 时输出到标准输出
	infoLogger    = newLogger(os.Stdout, "INFO: ")
	warningLogger = newLogger(os.Stdout, "WARNING: ")
	errorLogger   = newLogger(os.Stderr, "ERROR: ")

	logFile *os.File
)

func newLogger(w io.Writer, prefix string) *log.Logger {
	return log.New(w, prefix, log.Ldate|log.Ltime|log.Lshortfile)
}

// SetupLogger 初始化日志配置，同时输出到控制台和按日期命名的日志文件
func SetupLogger(logDir string) error {
	if logDir == "" {
		logDir = "logs"
	}
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return fmt.Errorf("创建日志目录失败: %w", err)
	}

	logFileName := filepath.Join(logDir, fmt.Sprintf("%s.log", time.Now().Format("2006-01-02")))
	f, err := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("打开日志文件失败: %w", err)
	}

	SetOutput(io.MultiWriter(os.Stdout, f))

	mu.Lock()
	if logFile != nil {
		logFile.Close()
	}
	logFile = f
	mu.Unlock()
	return nil
}

// SetOutput 将所有级别的日志重定向到 w，测试中可传入 io.Discard
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	infoLogger = newLogger(w, "INFO: ")
	warningLogger = newLogger(w, "WARNING: ")
	errorLogger = newLogger(w, "ERROR: ")
}

// Close 关闭日志文件
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}

// Info 记录信息级别的日志
func Info(format string, v ...interface{}) {
	output(&infoLogger, format, v...)
}

// Warning 记录警告级别的日志
func Warning(format string, v ...interface{}) {
	output(&warningLogger, format, v...)
}

// Error 记录错误级别的日志
func Error(format string, v ...interface{}) {
	output(&errorLogger, format, v...)
}

func output(l **log.Logger, format string, v ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	// calldepth 3: output -> Info/Warning/Error -> caller
	(*l).Output(3, fmt.Sprintf(format, v...))
}
