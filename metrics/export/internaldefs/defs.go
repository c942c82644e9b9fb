package internaldefs

import (
	"github.com/MrEthical07/authstate"
)

// CounterDef names one container counter for exporters.
type CounterDef struct {
	ID   authstate.MetricID
	Name string
	Help string
}

// HistogramDef names one container histogram for exporters.
type HistogramDef struct {
	ID   authstate.MetricID
	Name string
	Help string
}

// AuditDroppedName is the counter exported for audit backpressure drops.
const (
	AuditDroppedName = "authstate_audit_dropped_total"
	AuditDroppedHelp = "Dropped audit events due to dispatcher backpressure."
)

var CounterDefs = []CounterDef{
	{ID: authstate.MetricDispatchEstablish, Name: "authstate_dispatch_establish_total", Help: "Committed establish transitions."},
	{ID: authstate.MetricDispatchClear, Name: "authstate_dispatch_clear_total", Help: "Committed clear transitions."},
	{ID: authstate.MetricDispatchInvalid, Name: "authstate_dispatch_invalid_total", Help: "Dispatches rejected as invalid transition requests."},
	{ID: authstate.MetricDispatchUnknownKind, Name: "authstate_dispatch_unknown_kind_total", Help: "Dispatches rejected for an unknown transition kind."},
	{ID: authstate.MetricDispatchReentrant, Name: "authstate_dispatch_reentrant_total", Help: "Dispatches rejected as reentrant."},
	{ID: authstate.MetricListenerNotified, Name: "authstate_listener_notified_total", Help: "Listener invocations."},
	{ID: authstate.MetricSubscribe, Name: "authstate_subscribe_total", Help: "Registered listeners."},
	{ID: authstate.MetricUnsubscribe, Name: "authstate_unsubscribe_total", Help: "Removed listeners."},
	{ID: authstate.MetricTokenEstablish, Name: "authstate_token_establish_total", Help: "Sessions established from identity tokens."},
	{ID: authstate.MetricTokenRejected, Name: "authstate_token_rejected_total", Help: "Identity tokens that failed verification."},
}

var HistogramDefs = []HistogramDef{
	{ID: authstate.MetricDispatchLatency, Name: "authstate_dispatch_latency_seconds", Help: "Committed dispatch latency, notification included."},
}

// HistogramBounds are the bucket upper bounds in seconds, as label values.
var HistogramBounds = []string{
	"0.00001",
	"0.00005",
	"0.0001",
	"0.0005",
	"0.001",
	"0.005",
	"0.01",
	"+Inf",
}

// HistogramUpperBounds are the finite bucket bounds in seconds. The +Inf
// bucket is implicit.
var HistogramUpperBounds = []float64{
	0.00001,
	0.00005,
	0.0001,
	0.0005,
	0.001,
	0.005,
	0.01,
}

var HistogramBoundSuffix = []string{
	"0_00001",
	"0_00005",
	"0_0001",
	"0_0005",
	"0_001",
	"0_005",
	"0_01",
	"inf",
}

// NormalizeBuckets copies up to eight raw bucket counts into a fixed array.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets turns per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
