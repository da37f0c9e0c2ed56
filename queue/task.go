package queue

import (
	"fmt"
)

// Task represents a tree of a forest to be grown.
type Task struct {
	// The index of the tree on the forest
	TreeIndex int
	// The seed of the random stream the tree is grown with
	Seed int64
}

// ID returns a string that identifies the task by its tree index.
func (t *Task) ID() string {
	return fmt.Sprintf("tree-%d", t.TreeIndex)
}

func (t *Task) String() string {
	return fmt.Sprintf("{Task %d seed %d}", t.TreeIndex, t.Seed)
}
