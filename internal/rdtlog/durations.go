package rdtlog

import (
	"bytes"
	"fmt"
	"text/tabwriter"
	"time"
)

type duration struct {
	name string
	d    time.Duration
}

// Durations accumulates named timing entries for a later tabular flush,
// mirroring kitelog's Durations ledger — used here for the depth
// transition log ("depth 4 -> 5 after 12.3s, +1.8s since last") and the
// final per-phase summary printed once training completes.
type Durations []duration

// Record appends a named duration.
func (t *Durations) Record(name string, d time.Duration) {
	*t = append(*t, duration{name, d})
}

// Flush renders every recorded entry as a tab-aligned table and prints
// it through the given logger.
func (t *Durations) Flush(l Interface) {
	var b bytes.Buffer
	tw := tabwriter.NewWriter(&b, 4, 4, 0, ' ', 0)
	for _, entry := range *t {
		fmt.Fprintf(tw, "   %s\t%s\n", entry.name, entry.d)
	}
	tw.Flush()
	l.Println(b.String())
}
