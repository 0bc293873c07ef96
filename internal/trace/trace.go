/*
Package trace is the generalization of the teacher's trc_off.go/
trc_on.go build-tag pair: with the asn1kit_debug build tag unset, every
call here is a zero-cost no-op (see trace_off.go); with it set, calls
are backed by github.com/sirupsen/logrus (trace_on.go) instead of the
teacher's hand-rolled writer, since the pack gives this toolkit a real
structured-logging library to reach for.
*/
package trace

// Event mirrors the teacher's evt.go EventType bitmask, trimmed to the
// event classes this toolkit's pipeline actually emits.
type Event uint32

const (
	EventNone    Event = 0
	EventEnter   Event = 1 << iota
	EventExit
	EventParse
	EventCompile
	EventEncode
	EventDecode
	EventConstraint
	EventIO
	EventAll = ^Event(0)
)

// Enter/Exit/Emit/Info/IO are called throughout the pipeline the way the
// teacher calls debugEnter/debugExit/debugEvent/debugInfo throughout
// ber.go and pdu.go. Their bodies live in trace_off.go or trace_on.go,
// selected by the asn1kit_debug build tag.
