package cbpro

import (
	"fmt"
	"log"
)

// 日志接口，外部系统可以实现此接口替换默认日志输出
type Logger interface {
	Write(string)
}

var defaultLogger Logger

// 日志开关，默认打开
var logOn = true

// 设置自定义日志接口
func SetLogger(l Logger) {
	defaultLogger = l
}

// 开启日志
func OpenLog() {
	logOn = true
}

// 关闭日志，错误日志不受影响
func CloseLog() {
	logOn = false
}

// 获取日志状态
func IsLoging() bool {
	return logOn
}

// 打印日志
func Log(format string, v ...interface{}) {
	if !logOn {
		return
	}
	if defaultLogger != nil {
		defaultLogger.Write(fmt.Sprintf(format+"\n", v...))
	} else {
		log.Printf(format+"\n", v...)
	}
}

// 打印错误日志，不可关闭
func Error(format string, v ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.Write(fmt.Sprintf(format+"\n", v...))
	} else {
		log.Printf(format+"\n", v...)
	}
}
