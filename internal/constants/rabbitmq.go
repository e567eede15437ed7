package constants

const (
	// RefreshExchange - fanout-обменник для сигналов refreshMatchingProperties между экземплярами.
	RefreshExchange     = "kama.refresh_matching_properties"
	RefreshExchangeType = "fanout"

	TraceIDHeader = "x-trace-id"
	OriginHeader  = "x-origin"
)
