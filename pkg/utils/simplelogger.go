// Простой файловый логгер: до InitLogger все вызовы — no-op,
// поэтому библиотечные пакеты логируют безусловно.

package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Level — уровень логирования.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR"}

func (l Level) String() string {
	if l < LevelDebug || l > LevelError {
		return fmt.Sprintf("LEVEL(%d)", int(l))
	}
	return levelNames[l]
}

var (
	logFile  *os.File
	logPath  string
	minLevel = LevelDebug
	logMutex sync.Mutex
)

// InitLogger создает .log файл в директории dir: poncho-YYYY-MM-DD-HH-MM.log.
//
// Пустой dir — текущая директория. Директория создаётся при необходимости.
// Повторный вызов до Close ничего не делает.
func InitLogger(dir string) error {
	logMutex.Lock()
	defer logMutex.Unlock()

	if logFile != nil {
		return nil
	}

	name := fmt.Sprintf("poncho-%s.log", time.Now().Format("2006-01-02-15-04"))
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create log dir: %w", err)
		}
		name = filepath.Join(dir, name)
	}

	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	logFile, logPath = f, name

	// мьютекс уже захвачен, пишем напрямую
	writeLocked(LevelInfo, "Logger initialized", "file", name)
	return nil
}

// SetLevel задаёт минимальный уровень; сообщения ниже отбрасываются.
func SetLevel(level Level) {
	logMutex.Lock()
	defer logMutex.Unlock()
	minLevel = level
}

// LogPath возвращает путь к текущему лог-файлу или "" до InitLogger.
func LogPath() string {
	logMutex.Lock()
	defer logMutex.Unlock()
	return logPath
}

func Debug(msg string, keyvals ...any) { write(LevelDebug, msg, keyvals...) }
func Info(msg string, keyvals ...any)  { write(LevelInfo, msg, keyvals...) }
func Warn(msg string, keyvals ...any)  { write(LevelWarn, msg, keyvals...) }
func Error(msg string, keyvals ...any) { write(LevelError, msg, keyvals...) }

func write(level Level, msg string, keyvals ...any) {
	logMutex.Lock()
	defer logMutex.Unlock()
	writeLocked(level, msg, keyvals...)
}

// writeLocked форматирует и пишет строку. Вызывается под logMutex.
//
// Формат: [YYYY-MM-DD HH:MM:SS] LEVEL: message key1=value1 key2="value with spaces"
// Непарный последний ключ отбрасывается. При ошибке записи — fallback на stderr.
func writeLocked(level Level, msg string, keyvals ...any) {
	if logFile == nil || level < minLevel {
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s: %s", time.Now().Format("2006-01-02 15:04:05"), level, msg)
	for i := 0; i+1 < len(keyvals); i += 2 {
		value := fmt.Sprint(keyvals[i+1])
		if strings.ContainsAny(value, " \t\n\"=") {
			value = fmt.Sprintf("%q", value)
		}
		fmt.Fprintf(&b, " %v=%s", keyvals[i], value)
	}
	b.WriteByte('\n')

	if _, err := logFile.WriteString(b.String()); err != nil {
		fmt.Fprint(os.Stderr, b.String())
		fmt.Fprintf(os.Stderr, "[LOGGER ERROR: WriteString failed: %v]\n", err)
		return
	}
	if err := logFile.Sync(); err != nil {
		fmt.Fprintf(os.Stderr, "[LOGGER WARNING: Sync failed: %v]\n", err)
	}
}

// Close закрывает лог-файл. Вызывается через defer в main().
func Close() {
	logMutex.Lock()
	defer logMutex.Unlock()

	if logFile != nil {
		if err := logFile.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "[LOGGER WARNING: Close failed: %v]\n", err)
		}
	}
	logFile, logPath = nil, ""
	minLevel = LevelDebug
}
