package actuarial

import "errors"

// ErrInvalidInput некорректные аргументы чистого движка.
// Такая ошибка никогда не ретраится - это всегда баг вызывающего кода.
var ErrInvalidInput = errors.New("invalid input")
