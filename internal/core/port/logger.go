package port

// Fields - тип для передачи структурированных данных в лог.
type Fields map[string]interface{}

// LoggerPort определяет контракт для системы логирования.
// Он абстрагирует ядро приложения от конкретной реализации логгера.
type LoggerPort interface {
	Info(msg string, fields Fields)
	Warn(msg string, fields Fields)
	// Error записывает ошибку, обычно вместе с объектом error.
	Error(msg string, err error, fields Fields)
	Debug(msg string, fields Fields)

	// WithFields создает новый экземпляр логгера с уже добавленными полями
	// (например, trace_id или user_id).
	WithFields(fields Fields) LoggerPort
}
