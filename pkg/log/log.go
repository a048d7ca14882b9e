package log

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

const (
	LOGLEVEL_OFF = iota
	LOGLEVEL_FATAL
	LOGLEVEL_ERROR
	LOGLEVEL_WARN
	LOGLEVEL_INFO
	LOGLEVEL_DEBUG
	LOGLEVEL_VERBOSE
)

type logger struct {
	fileName   string // 日志文件名，空则输出到标准输出
	logLevel   int
	maxSize    int64
	maxFileNum int
	written    int64 // 当前文件已写字节数，超过maxSize触发轮转
	file       *os.File
	fileChan   chan *string
	flushTimer *time.Ticker
}

var std = logger{
	logLevel:   LOGLEVEL_WARN,
	maxSize:    128 * 1024 * 1024,
	maxFileNum: 10,
	fileChan:   make(chan *string, 50000),
}

func init() {
	std.flushTimer = time.NewTicker(1 * time.Second)
	go run()
}

// SetLog 设置日志输出路径及级别
// 不做任何设置时默认输出到标准输出，级别为LOGLEVEL_WARN
func SetLog(fileName string, level interface{}) {
	SetLogFileName(fileName)
	SetLogLevel(level)
}

func SetLogFileName(fileName string) error {
	std.fileName = fileName
	if dir := filepath.Dir(fileName); dir != "." {
		CreateMultiDir(dir)
	}
	var err error
	std.file, err = os.OpenFile(fileName, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		fmt.Printf("open log file fail, filename=[%s] err=[%v]\n", fileName, err)
		return err
	}
	if fi, serr := std.file.Stat(); serr == nil {
		std.written = fi.Size()
	}
	return nil
}

func SetLogMaxSize(logSize int) {
	if logSize < 1024*1024 {
		logSize = 1024 * 1024
	}
	std.maxSize = int64(logSize)
}

func SetLogMaxFileNum(maxFileNum int) {
	if maxFileNum > 100 {
		maxFileNum = 100
	}
	if maxFileNum < 1 {
		maxFileNum = 1
	}
	std.maxFileNum = maxFileNum
}

func SetLogLevel(level interface{}) {
	ilevel := LOGLEVEL_INFO

	switch level := level.(type) {
	case int:
		ilevel = level
	case string:
		switch strings.ToUpper(level) {
		case "OFF":
			ilevel = LOGLEVEL_OFF
		case "FATAL":
			ilevel = LOGLEVEL_FATAL
		case "ERROR":
			ilevel = LOGLEVEL_ERROR
		case "WARN":
			ilevel = LOGLEVEL_WARN
		case "INFO":
			ilevel = LOGLEVEL_INFO
		case "DEBUG":
			ilevel = LOGLEVEL_DEBUG
		case "VERBOSE":
			ilevel = LOGLEVEL_VERBOSE
		default:
			Warn("unsupported log level: [%s], use default level INFO", level)
		}
	default:
		Warn("unsupported log level type, only accept integer or string values")
	}

	std.logLevel = ilevel
}

func Fatal(format string, v ...interface{}) {
	if std.logLevel < LOGLEVEL_FATAL {
		return
	}
	str := Format(2, "FATAL", format, v...)
	std.fileChan <- &str
}

func Error(format string, v ...interface{}) {
	if std.logLevel < LOGLEVEL_ERROR {
		return
	}
	str := Format(2, "ERROR", format, v...)
	std.fileChan <- &str
}

func Warn(format string, v ...interface{}) {
	if std.logLevel < LOGLEVEL_WARN {
		return
	}
	str := Format(2, "WARN", format, v...)
	std.fileChan <- &str
}

func Info(format string, v ...interface{}) {
	if std.logLevel < LOGLEVEL_INFO {
		return
	}
	str := Format(2, "INFO", format, v...)
	std.fileChan <- &str
}

func Debug(format string, v ...interface{}) {
	if std.logLevel < LOGLEVEL_DEBUG {
		return
	}
	str := Format(2, "DEBUG", format, v...)
	std.fileChan <- &str
}

func CanDebug() bool {
	return std.logLevel >= LOGLEVEL_DEBUG
}

// Format 组装单行日志，带调用方文件名和行号
func Format(callerSkip int, logLevel string, format string, params ...interface{}) string {
	nowTime := time.Now()
	_, fileName, fileLine, _ := runtime.Caller(callerSkip)
	strTag := fmt.Sprintf("{\"level\":\"%s\",\"time\":\"%s\", \"file\":\"%s:%d\",\"msg\": \"%s\"}",
		logLevel, nowTime.Format("2006-01-02 15:04:05.000"), filepath.Base(fileName), fileLine, fmt.Sprintf(format, params...))
	return strTag + "\n"
}

func run() {
	for {
		select {
		case content := <-std.fileChan:
			output(content)
		case <-std.flushTimer.C:
			if std.file != nil {
				std.file.Sync()
			}
		}
	}
}

func output(content *string) {
	if std.file == nil {
		fmt.Fprintf(os.Stdout, "%s", *content)
		return
	}
	n, _ := std.file.WriteString(*content)
	std.written += int64(n)
	if std.written >= std.maxSize {
		shiftFiles()
	}
}

// shiftFiles 按序轮转历史文件，file.N 最旧，最多保留maxFileNum个
func shiftFiles() error {
	std.file.Close()
	for i := std.maxFileNum - 2; i >= 0; i-- {
		var nameOld string
		if i == 0 {
			nameOld = std.fileName
		} else {
			nameOld = fmt.Sprintf("%s.%d", std.fileName, i)
		}
		fileInfo, err := os.Stat(nameOld)
		if err != nil || fileInfo.IsDir() {
			continue
		}
		nameNew := fmt.Sprintf("%s.%d", std.fileName, i+1)
		os.Rename(nameOld, nameNew)
	}

	var err error
	std.file, err = os.OpenFile(std.fileName, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		fmt.Printf("reopen log file fail, filename=[%s] err=[%v]\n", std.fileName, err)
		return err
	}
	std.written = 0
	return nil
}

func isExist(path string) bool {
	_, err := os.Stat(path)
	if err != nil {
		return os.IsExist(err)
	}
	return true
}

// CreateMultiDir 支持多级目录创建
func CreateMultiDir(filePath string) error {
	if isExist(filePath) {
		return nil
	}
	if err := os.MkdirAll(filePath, os.ModePerm); err != nil {
		fmt.Printf("create dir failed, error:%s, dir:%s\n", err.Error(), filePath)
		return err
	}
	return nil
}
