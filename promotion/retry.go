package promotion

import (
	"context"
	"log"
	"strings"
	"time"
)

const (
	// DefaultRetryAttempts количество попыток durable-записи по умолчанию
	DefaultRetryAttempts = 3
	// DefaultRetryDelay базовая задержка между попытками
	DefaultRetryDelay = 2 * time.Second
	// MaxRetryDelay максимальная задержка между попытками
	MaxRetryDelay = 30 * time.Second
)

// RetryConfig конфигурация retry-логики.
// Каждый вызов WithRetry владеет собственным счетчиком попыток
// и расписанием backoff - разделяемого состояния нет.
type RetryConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64 // Множитель для экспоненциальной задержки
}

// DefaultRetryConfig возвращает конфигурацию retry по умолчанию (2s/4s/8s)
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  DefaultRetryAttempts,
		InitialDelay: DefaultRetryDelay,
		MaxDelay:     MaxRetryDelay,
		Multiplier:   2.0,
	}
}

// transientPatterns фрагменты сообщений, при которых операцию стоит повторить
var transientPatterns = []string{
	"timeout",
	"connection refused",
	"network error",
	"service unavailable",
	"rate limit",
	"database is locked",
	"busy",
	"deadline exceeded",
}

// IsTransientError проверяет, можно ли повторить операцию при данной ошибке
func IsTransientError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())
	for _, pattern := range transientPatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
		// Паттерны сверяются и в дефисной записи
		if strings.Contains(errStr, strings.ReplaceAll(pattern, " ", "-")) {
			return true
		}
	}

	return false
}

// WithRetry выполняет операцию с повтором только для транзиентных ошибок.
// Логирует один раз: либо сразу при нетранзиентной ошибке, либо на последней
// неудачной попытке. После исчерпания попыток возвращает последнюю ошибку.
// logFinal может быть nil, тогда используется стандартный лог.
func WithRetry(ctx context.Context, process string, operation func() error, config RetryConfig, logFinal func(process string, err error, attempts int)) error {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = DefaultRetryAttempts
	}
	if config.Multiplier <= 0 {
		config.Multiplier = 2.0
	}

	var lastErr error
	delay := config.InitialDelay

	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		err := operation()
		if err == nil {
			if attempt > 1 {
				log.Printf("[%s] operation succeeded after %d attempts", process, attempt)
			}
			return nil
		}

		lastErr = err

		// Нетранзиентные ошибки не повторяются: логируем и выходим сразу
		if !IsTransientError(err) {
			emitFinal(process, err, attempt, logFinal)
			return err
		}

		if attempt < config.MaxAttempts {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				emitFinal(process, ctx.Err(), attempt, logFinal)
				return ctx.Err()
			}
			delay = time.Duration(float64(delay) * config.Multiplier)
			if config.MaxDelay > 0 && delay > config.MaxDelay {
				delay = config.MaxDelay
			}
		}
	}

	emitFinal(process, lastErr, config.MaxAttempts, logFinal)
	return lastErr
}

func emitFinal(process string, err error, attempts int, logFinal func(string, error, int)) {
	if logFinal != nil {
		logFinal(process, err, attempts)
		return
	}
	log.Printf("[%s] operation failed after %d attempts: %v", process, attempts, err)
}
