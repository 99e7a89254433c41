package utils

import (
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/segmentio/ksuid"
)

// NewKSUID generates a new globally unique, time-sortable KSUID string.
func NewKSUID() string {
	return ksuid.New().String()
}

var (
	nodeMu sync.Mutex
	node   *snowflake.Node
)

// SetSnowflakeNode selects the node id used by NewSnowflakeID. Each
// process writing to the same tables needs its own node id (0-1023).
func SetSnowflakeNode(id int64) error {
	n, err := snowflake.NewNode(id)
	if err != nil {
		return err
	}
	nodeMu.Lock()
	node = n
	nodeMu.Unlock()
	return nil
}

// NewSnowflakeID generates a snowflake ID string. Node 1 is used until
// SetSnowflakeNode is called. If the node cannot be initialized it falls
// back to a KSUID string so an ID is always returned.
func NewSnowflakeID() string {
	nodeMu.Lock()
	if node == nil {
		n, err := snowflake.NewNode(1)
		if err != nil {
			nodeMu.Unlock()
			return NewKSUID()
		}
		node = n
	}
	n := node
	nodeMu.Unlock()
	return n.Generate().String()
}
