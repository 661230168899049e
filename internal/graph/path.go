package graph

import "container/heap"

// FindPath returns the shortest run of track sections from source to
// destination, both included. Tracks are adjacent when they share a
// connection and every hop costs 1; length is not taken into account yet.
// Ties are broken by creation order. The result is empty when destination
// cannot be reached, and [source] when source == destination.
func (g *Graph) FindPath(source, destination *TrackSection) []*TrackSection {
	if source == nil || destination == nil || source.g != g || destination.g != g {
		return nil
	}
	if source == destination {
		return []*TrackSection{source}
	}

	dist := map[ID]int{source.id: 0}
	prev := make(map[ID]*TrackSection)
	visited := make(map[ID]bool)

	pq := &trackQueue{}
	heap.Push(pq, &trackItem{track: source, dist: 0})

	for pq.Len() > 0 {
		item := heap.Pop(pq).(*trackItem)
		track := item.track
		if visited[track.id] {
			continue
		}
		visited[track.id] = true

		if track == destination {
			break
		}

		for _, neighbor := range track.Neighbors() {
			if visited[neighbor.id] {
				continue
			}
			candidate := dist[track.id] + 1
			if d, seen := dist[neighbor.id]; !seen || candidate < d {
				dist[neighbor.id] = candidate
				prev[neighbor.id] = track
				heap.Push(pq, &trackItem{track: neighbor, dist: candidate})
			}
		}
	}

	if _, ok := prev[destination.id]; !ok {
		return nil
	}

	var path []*TrackSection
	for t := destination; t != nil; t = prev[t.id] {
		path = append(path, t)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

type trackItem struct {
	track *TrackSection
	dist  int
}

type trackQueue []*trackItem

func (q trackQueue) Len() int { return len(q) }
func (q trackQueue) Less(i, j int) bool {
	if q[i].dist != q[j].dist {
		return q[i].dist < q[j].dist
	}
	return q[i].track.seq < q[j].track.seq
}
func (q trackQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *trackQueue) Push(x interface{}) {
	*q = append(*q, x.(*trackItem))
}

func (q *trackQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}
