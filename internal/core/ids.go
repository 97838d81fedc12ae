// AngelaMos | 2026
// ids.go

package core

import (
	"fmt"
	"strconv"

	"github.com/bwmarrin/snowflake"
	"github.com/segmentio/ksuid"
)

// IDGenerator hands out time-ordered 63-bit row ids. Later ids always
// compare greater, which gives "newest first" queries a stable tiebreak.
type IDGenerator struct {
	node *snowflake.Node
}

func NewIDGenerator(nodeID int64) (*IDGenerator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("create snowflake node %d: %w", nodeID, err)
	}
	return &IDGenerator{node: node}, nil
}

func (g *IDGenerator) Next() int64 {
	return g.node.Generate().Int64()
}

func ParseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("parse id %q: %w", s, ErrInvalidInput)
	}
	return id, nil
}

func NewRequestID() string {
	return ksuid.New().String()
}
