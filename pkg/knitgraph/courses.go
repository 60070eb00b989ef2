package knitgraph

import "slices"

// Courses is the row decomposition of a graph.
type Courses struct {
	// Of maps every loop to its course index.
	Of map[LoopID]int
	// Loops lists the loops of each course left to right in needle order.
	// Odd courses are the strand order reversed.
	Loops [][]LoopID
}

// Len returns the number of courses.
func (c *Courses) Len() int { return len(c.Loops) }

// Courses groups loops into rows.
//
// Loops are walked in creation order. A loop whose parent lies in the course
// being walked starts the next course. Loops without parents (the cast-on and
// yarn-overs) stay in the course being walked.
func (g *Graph) Courses() (*Courses, error) {
	of := make(map[LoopID]int, len(g.loops))
	var courses [][]LoopID
	var current []LoopID

	for _, id := range g.LoopIDs() {
		l := g.loops[id]
		newCourse := false
		for _, p := range l.parents {
			c, ok := of[p]
			if !ok {
				return nil, &ConstructionError{Op: "courses", Parent: p, Loop: id, Err: ErrCourseOrder}
			}
			if c == len(courses) {
				newCourse = true
			}
		}
		if newCourse {
			courses = append(courses, current)
			current = nil
		}
		of[id] = len(courses)
		current = append(current, id)
	}
	if len(current) > 0 {
		courses = append(courses, current)
	}

	for i := 1; i < len(courses); i += 2 {
		slices.Reverse(courses[i])
	}
	return &Courses{Of: of, Loops: courses}, nil
}
