package searcher

import "sync"

// VirtualLoss temporarily worsens nodes a worker is descending through so
// concurrent workers spread over different branches. Losses are added on
// the way down and removed during backpropagation.
type VirtualLoss struct {
	mu     sync.Mutex
	losses map[*Node]int

	// Penalty is subtracted from the selection score once per pending loss.
	Penalty float64
}

// NewVirtualLoss returns an empty loss map.
func NewVirtualLoss(penalty float64) *VirtualLoss {
	return &VirtualLoss{
		losses:  make(map[*Node]int),
		Penalty: penalty,
	}
}

// Reset drops all pending losses.
func (v *VirtualLoss) Reset() {
	v.mu.Lock()
	v.losses = make(map[*Node]int)
	v.mu.Unlock()
}

// Add registers one pending loss against a node.
func (v *VirtualLoss) Add(node *Node) {
	v.mu.Lock()
	v.losses[node]++
	v.mu.Unlock()
}

// Remove clears one pending loss; nodes without losses are untouched.
func (v *VirtualLoss) Remove(node *Node) {
	v.mu.Lock()
	if count, ok := v.losses[node]; ok {
		if count <= 1 {
			delete(v.losses, node)
		} else {
			v.losses[node] = count - 1
		}
	}
	v.mu.Unlock()
}

// Count returns the pending losses for a node.
func (v *VirtualLoss) Count(node *Node) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.losses[node]
}

// Score returns the selection-score penalty for a node.
func (v *VirtualLoss) Score(node *Node) float64 {
	return float64(v.Count(node)) * v.Penalty
}
