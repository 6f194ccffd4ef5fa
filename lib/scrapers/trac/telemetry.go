package trac

import (
	"github.com/weaverba137/trac-remote/lib/restyutil"
	"github.com/weaverba137/trac-remote/lib/telemetry"
)

var tracer = telemetry.Tracer("tracremote.lib.scrapers.trac")
var restyInstrumentOutput restyutil.InstrumentOutput

// SetRestyInstrumentOutput enables HTTP exchange dumps for clients
// created after the call.
func SetRestyInstrumentOutput(out restyutil.InstrumentOutput) {
	restyInstrumentOutput = out
}
