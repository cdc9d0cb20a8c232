// Package idgen generates the Snowflake IDs used as primary keys for user
// rows. The server initializes the node ID once at startup.
package idgen

import (
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node *snowflake.Node
	once sync.Once
)

// Initialize sets up the generator with a node ID
func Initialize(nodeID int64) error {
	var err error
	once.Do(func() {
		node, err = snowflake.NewNode(nodeID)
	})
	return err
}

// GenerateID returns a new ID as a string, initializing with the default
// node ID when Initialize was never called.
func GenerateID() string {
	if node == nil {
		_ = Initialize(1)
	}
	return node.Generate().String()
}
