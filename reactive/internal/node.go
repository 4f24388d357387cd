package internal

// NodeFlags tracks auxiliary scheduling state for a reactive node that does
// not belong in its value (e.g. membership in the dirty heap).
type NodeFlags int

const (
	FlagNone   NodeFlags = 0
	FlagInHeap NodeFlags = 1 << 0 // node is currently queued in the priority heap
)
