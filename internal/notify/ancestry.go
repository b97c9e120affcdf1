package notify

// maxAncestry bounds the walk up the process tree.
const maxAncestry = 20

// ancestors returns the parent chain of pid, nearest first. The walk stops
// at a missing or zero parent, on a cycle, or after maxAncestry steps.
func ancestors(pid uint32, parentOf map[uint32]uint32) []uint32 {
	var chain []uint32
	seen := map[uint32]bool{pid: true}
	for range maxAncestry {
		parent, ok := parentOf[pid]
		if !ok || parent == 0 || seen[parent] {
			break
		}
		chain = append(chain, parent)
		seen[parent] = true
		pid = parent
	}
	return chain
}

// ownsForeground reports whether the foreground process is one of self's
// ancestors, i.e. the terminal that launched us is in front.
func ownsForeground(self, foreground uint32, parentOf map[uint32]uint32) bool {
	if foreground == 0 {
		return false
	}
	for _, p := range ancestors(self, parentOf) {
		if p == foreground {
			return true
		}
	}
	return false
}
