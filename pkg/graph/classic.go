package graph

// Classic returns the six vertex, six edge toy graph used throughout the
// tests and examples:
//
//	1 marko (29) -knows(0.5)->   2 vadas (27)
//	1 marko      -knows(1.0)->   4 josh (32)
//	1 marko      -created(0.4)-> 3 lop (java)
//	4 josh       -created(1.0)-> 5 ripple (java)
//	4 josh       -created(0.4)-> 3 lop
//	6 peter (35) -created(0.2)-> 3 lop
//
// Vertex and edge ids are the numbers above; edges are numbered 7 to 12 in
// the listed order.
func Classic() *Graph {
	g := New()
	if err := LoadClassic(g); err != nil {
		panic(err)
	}
	return g
}

// LoadClassic adds the classic toy graph to g.
func LoadClassic(g *Graph) error {
	type vertexDef struct {
		id    int
		props []any
	}
	vertices := []vertexDef{
		{1, []any{"name", "marko", "age", 29}},
		{2, []any{"name", "vadas", "age", 27}},
		{3, []any{"name", "lop", "lang", "java"}},
		{4, []any{"name", "josh", "age", 32}},
		{5, []any{"name", "ripple", "lang", "java"}},
		{6, []any{"name", "peter", "age", 35}},
	}
	byID := make(map[int]*Vertex, len(vertices))
	for _, def := range vertices {
		v, err := g.AddVertex(append([]any{"id", def.id}, def.props...)...)
		if err != nil {
			return err
		}
		byID[def.id] = v
	}

	edges := []struct {
		id, out, in int
		label       string
		weight      float32
	}{
		{7, 1, 2, "knows", 0.5},
		{8, 1, 4, "knows", 1.0},
		{9, 1, 3, "created", 0.4},
		{10, 4, 5, "created", 1.0},
		{11, 4, 3, "created", 0.4},
		{12, 6, 3, "created", 0.2},
	}
	for _, e := range edges {
		if _, err := byID[e.out].AddEdge(e.label, byID[e.in], "id", e.id, "weight", e.weight); err != nil {
			return err
		}
	}
	return nil
}
