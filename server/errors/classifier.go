package errors

import "strings"

// Severity уровень серьезности ошибки
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// rank возвращает числовой ранг для сравнения уровней
func (s Severity) rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// AtLeast проверяет, что уровень не ниже порога
func (s Severity) AtLeast(threshold Severity) bool {
	return s.rank() >= threshold.rank()
}

// criticalKeywords фрагменты сообщений, означающие критическую ошибку
var criticalKeywords = []string{
	"data loss",
	"corruption",
	"security breach",
	"unauthorized access",
	"sql injection",
	"system crash",
}

// highKeywords фрагменты сообщений высокой серьезности
var highKeywords = []string{
	"promotion failed",
	"compliance violation",
	"validation failed",
	"schema mismatch",
	"data integrity",
}

// mediumKeywords фрагменты сообщений средней серьезности (транзиентные сбои)
var mediumKeywords = []string{
	"timeout",
	"connection refused",
	"rate limit",
	"service unavailable",
}

// processDefaults уровень по умолчанию для процесса-источника
var processDefaults = map[string]Severity{
	"promotion":        SeverityHigh,
	"compliance":       SeverityHigh,
	"transform":        SeverityHigh,
	"validation":       SeverityHigh,
	"sync":             SeverityMedium,
	"pdf":              SeverityMedium,
	"simulation":       SeverityMedium,
	"split":            SeverityMedium,
	"savings":          SeverityMedium,
	"ui":               SeverityLow,
	"input-validation": SeverityLow,
}

// ClassifyOptions необязательные параметры классификации
type ClassifyOptions struct {
	RetryCount       int
	ExplicitSeverity Severity // Если задан, имеет высший приоритет
}

// Classify определяет уровень серьезности ошибки.
// Явно заданный уровень имеет высший приоритет, затем ключевые слова
// в сообщении; без совпадений базой служит уровень процесса-источника.
// Эскалация по числу ретраев - нижняя граница поверх базового уровня:
// >=5 минимум High, >=3 минимум Medium.
func Classify(message, process string, opts ClassifyOptions) Severity {
	if opts.ExplicitSeverity != "" {
		return opts.ExplicitSeverity
	}

	lower := strings.ToLower(message)

	if matchesAny(lower, criticalKeywords) {
		return SeverityCritical
	}
	if matchesAny(lower, highKeywords) {
		return SeverityHigh
	}

	severity := SeverityLow
	if matchesAny(lower, mediumKeywords) {
		severity = SeverityMedium
	} else if def, ok := processDefaults[strings.ToLower(process)]; ok {
		severity = def
	}

	// Эскалация только поднимает уровень, никогда не понижает
	if opts.RetryCount >= 5 && !severity.AtLeast(SeverityHigh) {
		severity = SeverityHigh
	} else if opts.RetryCount >= 3 && !severity.AtLeast(SeverityMedium) {
		severity = SeverityMedium
	}

	return severity
}

// matchesAny проверяет вхождение любого из ключевых слов.
// Ключевые слова сверяются и через дефис, и через пробел.
func matchesAny(message string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(message, kw) {
			return true
		}
		hyphenated := strings.ReplaceAll(kw, " ", "-")
		if strings.Contains(message, hyphenated) {
			return true
		}
	}
	return false
}
