package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/knitout/pkg/knitgraph"
	"github.com/aretw0/knitout/pkg/machine"
)

// Overlay adds compile results to the drawing.
type Overlay struct {
	// Formed labels each loop with the needle it was formed on.
	Formed map[knitgraph.LoopID]machine.Needle
	// Highlight marks loops, e.g. the one a compile error points at.
	Highlight []knitgraph.LoopID
}

// GenerateMermaid draws a knit graph bottom to top, one subgraph per course.
// Shapes:
// - Loop without parents (cast-on, yarn-over): ((Circle))
// - Decrease (several parents): [[Subroutine]]
// - Default: [Rectangle]
// Knit edges are solid, purl edges dotted, and cable edges carry their depth.
func GenerateMermaid(g *knitgraph.Graph, courses *knitgraph.Courses, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph BT\n")

	for c, loops := range courses.Loops {
		fmt.Fprintf(&sb, "    subgraph course%d[\"course %d\"]\n", c, c)
		sb.WriteString("        direction LR\n")
		for _, id := range loops {
			l, _ := g.Loop(id)
			opener, closer := "[", "]"
			switch n := len(l.Parents()); {
			case n == 0:
				opener, closer = "((", "))"
			case n > 1:
				opener, closer = "[[", "]]"
			}
			label := fmt.Sprintf("%d", id)
			if overlay != nil {
				if n, ok := overlay.Formed[id]; ok {
					label = fmt.Sprintf("%d <br/> %s", id, n)
				}
			}
			fmt.Fprintf(&sb, "        %s%s\"%s\"%s\n", nodeID(id), opener, label, closer)
		}
		sb.WriteString("    end\n")
	}

	for _, loops := range courses.Loops {
		for _, id := range loops {
			for _, e := range g.ParentEdges(id) {
				arrow := "-->"
				if e.Pull == knitgraph.FtB {
					arrow = "-.->"
				}
				if e.Placement.Depth != 0 {
					arrow = fmt.Sprintf("-- \"depth %d\" -->", e.Placement.Depth)
					if e.Pull == knitgraph.FtB {
						arrow = fmt.Sprintf("-. \"depth %d\" .->", e.Placement.Depth)
					}
				}
				fmt.Fprintf(&sb, "    %s %s %s\n", nodeID(e.Parent), arrow, nodeID(e.Child))
			}
		}
	}

	if overlay != nil && len(overlay.Highlight) > 0 {
		sb.WriteString("\n    %% Overlay Styles\n")
		// black text for contrast on either theme
		sb.WriteString("    classDef highlight fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		seen := make(map[knitgraph.LoopID]bool)
		for _, id := range overlay.Highlight {
			if seen[id] || !g.Contains(id) {
				continue
			}
			seen[id] = true
			fmt.Fprintf(&sb, "    class %s highlight;\n", nodeID(id))
		}
	}

	return sb.String()
}

func nodeID(id knitgraph.LoopID) string {
	return fmt.Sprintf("L%d", id)
}
