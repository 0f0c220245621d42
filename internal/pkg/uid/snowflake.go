package uid

import (
	"fmt"
	"hash/fnv"
	"os"

	"github.com/bwmarrin/snowflake"
)

// Snowflake generates time ordered int64 ids.
type Snowflake struct {
	node *snowflake.Node
}

// NewSnowflake creates a generator whose node number is derived from the hostname,
// unless nodeID is non-negative.
func NewSnowflake(nodeID int64) (*Snowflake, error) {
	if nodeID < 0 {
		host, err := os.Hostname()
		if err != nil {
			return nil, fmt.Errorf("uid: resolve hostname: %w", err)
		}
		h := fnv.New32a()
		_, _ = h.Write([]byte(host))
		nodeID = int64(h.Sum32() % 1024)
	}

	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("uid: create snowflake node: %w", err)
	}

	return &Snowflake{node: node}, nil
}

func (s *Snowflake) Generate() int64 {
	return s.node.Generate().Int64()
}
