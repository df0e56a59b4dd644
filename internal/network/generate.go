package network

import "math/rand/v2"

// Generate builds a synthetic preferential-attachment network with n nodes
// and roughly m edges. The same seed yields the same records.
func Generate(n, m int, seed uint64) ([]NodeRecord, []EdgeRecord) {
	if n <= 0 {
		return nil, nil
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	nodes := make([]NodeRecord, n)
	for i := range nodes {
		nodes[i] = NodeRecord{ID: IntID(i)}
	}
	if n < 2 || m <= 0 {
		return nodes, nil
	}

	perNode := max(m/(n-1), 1)
	edges := make([]EdgeRecord, 0, m)
	// every endpoint is listed once per incident edge, so uniform picks
	// from it are degree-proportional.
	endpoints := make([]int, 0, 2*m)

	for i := 1; i < n && len(edges) < m; i++ {
		for k := 0; k < perNode && len(edges) < m; k++ {
			var j int
			if len(endpoints) == 0 || rng.IntN(4) == 0 {
				j = rng.IntN(i)
			} else {
				j = endpoints[rng.IntN(len(endpoints))]
			}
			if j == i {
				continue
			}
			edges = append(edges, EdgeRecord{Source: IntID(i), Target: IntID(j)})
			endpoints = append(endpoints, i, j)
		}
	}
	return nodes, edges
}
