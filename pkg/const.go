package pkg

const HeaderTraceId string = "X-Trace-Id"

const TraceId string = "trace_id"

// PositiveClass is the label of the "default" (risk) class.
const PositiveClass = 1
