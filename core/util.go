package core

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"unicode"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/sarchlab/akita/v4/sim"
)

const (
	LevelTrace slog.Level = slog.LevelInfo + 1
)

func Trace(msg string, args ...any) {
	slog.Log(context.Background(), LevelTrace, msg, args...)
}

// TicksPerSecond converts engine time into ticks.
const TicksPerSecond = 1e12

func toTick(t sim.VTimeInSec) uint64 {
	return uint64(math.Round(float64(t) * TicksPerSecond))
}

// akitaName converts a dotted hierarchical name such as
// "system.cpu[0].icache_port" into "System.Cpu[0].IcachePort".
func akitaName(path string) string {
	tokens := strings.Split(path, ".")
	for i, tok := range tokens {
		tokens[i] = akitaToken(tok)
	}

	return strings.Join(tokens, ".")
}

func akitaToken(tok string) string {
	index := ""
	if i := strings.IndexByte(tok, '['); i >= 0 {
		tok, index = tok[:i], tok[i:]
	}

	var b strings.Builder

	upper := true

	for _, r := range tok {
		if r == '_' {
			upper = true
			continue
		}

		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}

		b.WriteRune(r)
	}

	return b.String() + index
}

// PrintProgress renders the progress of every thread.
func PrintProgress(cores []*Core) string {
	t := table.NewWriter()
	t.SetTitle("Thread progress")
	t.AppendHeader(table.Row{"Core", "Model", "PID", "Retired", "Target", "Done"})

	for _, c := range cores {
		for _, th := range c.threads {
			t.AppendRow(table.Row{
				c.Name(), c.model.Name, th.pid, th.retired, th.target, th.done(),
			})
		}
	}

	return t.Render()
}

// LogProgress writes the progress of one core at debug level.
func LogProgress(c *Core) {
	retired := make([]string, len(c.threads))
	for i, th := range c.threads {
		retired[i] = fmt.Sprintf("%d/%d", th.retired, th.target)
	}

	slog.Debug("CoreProgress",
		"Core", c.Name(),
		"Model", c.model.Name,
		"Retired", strings.Join(retired, ","),
		"SwitchedOut", c.switchedOut,
	)
}
