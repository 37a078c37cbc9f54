package errors

import (
	"sync"
	"time"
)

// ErrorMetricsCollector собирает метрики ошибок для мониторинга
type ErrorMetricsCollector struct {
	mu sync.RWMutex

	// Общие метрики
	totalErrors       int64
	errorsBySeverity  map[Severity]int64 // По уровню серьезности
	errorsByProcess   map[string]int64   // По процессу-источнику
	errorsByTime      []ErrorTimeBucket  // По времени (последний час)

	// Детальные метрики
	lastErrors    []ErrorRecord // Последние N ошибок
	maxLastErrors int           // Максимальное количество сохраняемых ошибок

	startTime time.Time
}

// ErrorTimeBucket метрики за временной интервал
type ErrorTimeBucket struct {
	Time       time.Time
	Count      int64
	BySeverity map[Severity]int64
}

// ErrorRecord запись об ошибке
type ErrorRecord struct {
	Timestamp time.Time
	Severity  Severity
	Process   string
	Message   string
	RequestID string
}

// NewErrorMetricsCollector создает новый сборщик метрик ошибок
func NewErrorMetricsCollector() *ErrorMetricsCollector {
	return &ErrorMetricsCollector{
		errorsBySeverity: make(map[Severity]int64),
		errorsByProcess:  make(map[string]int64),
		errorsByTime:     make([]ErrorTimeBucket, 0),
		lastErrors:       make([]ErrorRecord, 0),
		maxLastErrors:    100,
		startTime:        time.Now(),
	}
}

// RecordError записывает ошибку в метрики
func (emc *ErrorMetricsCollector) RecordError(severity Severity, process, message, requestID string) {
	emc.mu.Lock()
	defer emc.mu.Unlock()

	emc.totalErrors++
	emc.errorsBySeverity[severity]++
	if process != "" {
		emc.errorsByProcess[process]++
	}

	emc.addToTimeBucket(severity)

	record := ErrorRecord{
		Timestamp: time.Now(),
		Severity:  severity,
		Process:   process,
		Message:   message,
		RequestID: requestID,
	}
	emc.lastErrors = append([]ErrorRecord{record}, emc.lastErrors...)
	if len(emc.lastErrors) > emc.maxLastErrors {
		emc.lastErrors = emc.lastErrors[:emc.maxLastErrors]
	}
}

// addToTimeBucket добавляет ошибку в 5-минутный временной интервал
func (emc *ErrorMetricsCollector) addToTimeBucket(severity Severity) {
	now := time.Now()
	bucketTime := now.Truncate(5 * time.Minute)

	// Ищем существующий интервал
	for i := range emc.errorsByTime {
		if emc.errorsByTime[i].Time.Equal(bucketTime) {
			emc.errorsByTime[i].Count++
			emc.errorsByTime[i].BySeverity[severity]++
			return
		}
	}

	// Создаем новый интервал
	bucket := ErrorTimeBucket{
		Time:       bucketTime,
		Count:      1,
		BySeverity: map[Severity]int64{severity: 1},
	}
	emc.errorsByTime = append(emc.errorsByTime, bucket)

	// Удаляем интервалы старше часа
	cutoff := now.Add(-time.Hour)
	filtered := emc.errorsByTime[:0]
	for _, b := range emc.errorsByTime {
		if b.Time.After(cutoff) {
			filtered = append(filtered, b)
		}
	}
	emc.errorsByTime = filtered
}

// MetricsSnapshot снимок метрик для JSON ответа
type MetricsSnapshot struct {
	TotalErrors      int64              `json:"total_errors"`
	BySeverity       map[Severity]int64 `json:"by_severity"`
	ByProcess        map[string]int64   `json:"by_process"`
	LastErrors       []ErrorRecord      `json:"last_errors"`
	UptimeSeconds    float64            `json:"uptime_seconds"`
	ErrorsLastHour   int64              `json:"errors_last_hour"`
}

// Reset очищает накопленные метрики
func (emc *ErrorMetricsCollector) Reset() {
	emc.mu.Lock()
	defer emc.mu.Unlock()

	emc.totalErrors = 0
	emc.errorsBySeverity = make(map[Severity]int64)
	emc.errorsByProcess = make(map[string]int64)
	emc.errorsByTime = emc.errorsByTime[:0]
	emc.lastErrors = emc.lastErrors[:0]
	emc.startTime = time.Now()
}

// Snapshot возвращает копию текущих метрик
func (emc *ErrorMetricsCollector) Snapshot() MetricsSnapshot {
	emc.mu.RLock()
	defer emc.mu.RUnlock()

	bySeverity := make(map[Severity]int64, len(emc.errorsBySeverity))
	for k, v := range emc.errorsBySeverity {
		bySeverity[k] = v
	}
	byProcess := make(map[string]int64, len(emc.errorsByProcess))
	for k, v := range emc.errorsByProcess {
		byProcess[k] = v
	}

	lastHour := int64(0)
	for _, b := range emc.errorsByTime {
		lastHour += b.Count
	}

	last := make([]ErrorRecord, len(emc.lastErrors))
	copy(last, emc.lastErrors)

	return MetricsSnapshot{
		TotalErrors:    emc.totalErrors,
		BySeverity:     bySeverity,
		ByProcess:      byProcess,
		LastErrors:     last,
		UptimeSeconds:  time.Since(emc.startTime).Seconds(),
		ErrorsLastHour: lastHour,
	}
}
