package tui

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/aretw0/knitout/pkg/generator"
)

// Report summarises a compiled program as markdown.
func Report(title string, p *generator.Program) string {
	var b strings.Builder
	stats := p.Stats()

	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "%d courses, %d loops, %d carriage passes, %d instructions.\n\n",
		p.Courses.Len(), len(p.Formed), stats.Passes, stats.Instructions)

	b.WriteString("| Instruction | Count |\n|---|---:|\n")
	for _, op := range slices.Sorted(maps.Keys(stats.ByOpcode)) {
		fmt.Fprintf(&b, "| `%s` | %d |\n", op, stats.ByOpcode[op])
	}

	b.WriteString("\n## Carriers\n\n")
	for _, yarn := range slices.Sorted(maps.Keys(p.Carriers)) {
		fmt.Fprintf(&b, "- **%s** on carrier %s\n", yarn, p.Carriers[yarn])
	}
	if stats.Xfers > 0 {
		fmt.Fprintf(&b, "\n%d transfers needed %d rack changes.\n", stats.Xfers, stats.Racks)
	}
	return b.String()
}
