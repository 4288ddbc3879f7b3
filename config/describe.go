package config

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/neuralprobe/gem5/hw"
)

// Describe renders the components of a topology and their bindings as text
// tables.
func Describe(topo *hw.Topology) string {
	comps := table.NewWriter()
	comps.SetTitle(fmt.Sprintf("Topology %s", topo.ID()))
	comps.AppendHeader(table.Row{"Path", "Kind", "Type", "Clock", "Params"})

	for _, c := range topo.Components() {
		clock := ""
		if d := c.Clock(); d != nil {
			clock = d.Clock()
		}

		comps.AppendRow(table.Row{c.Path(), c.Kind(), c.Type(), clock, c.ParamString(" ")})
	}

	binds := table.NewWriter()
	binds.SetTitle("Bindings")
	binds.AppendHeader(table.Row{"Request", "Response", "Functional"})

	for _, b := range topo.Registry().Bindings() {
		binds.AppendRow(table.Row{
			b.Request.Path(), b.Response.Path(), b.Request.Functional(),
		})
	}

	ctxs := table.NewWriter()
	ctxs.SetTitle("Contexts")
	ctxs.AppendHeader(table.Row{"Index", "CPU", "Workloads"})

	for _, ctx := range topo.Contexts() {
		var names []string
		for _, p := range ctx.Workloads() {
			names = append(names, fmt.Sprintf("%d:%s", p.PID(), p.Executable()))
		}

		ctxs.AppendRow(table.Row{ctx.Index(), ctx.CPU().Path(), strings.Join(names, " ")})
	}

	return comps.Render() + "\n\n" + binds.Render() + "\n\n" + ctxs.Render() + "\n"
}
