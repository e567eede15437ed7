package port

// MetricsPort - счётчики, которые интересны ядру.
type MetricsPort interface {
	UpstreamFailure(operation string)
	LocalFallback(resource string)
	RefreshPublished(reason string)
}

type noopMetrics struct{}

func (noopMetrics) UpstreamFailure(string)  {}
func (noopMetrics) LocalFallback(string)    {}
func (noopMetrics) RefreshPublished(string) {}

// NewNoopMetrics возвращает реализацию, которая ничего не считает.
func NewNoopMetrics() MetricsPort {
	return noopMetrics{}
}
