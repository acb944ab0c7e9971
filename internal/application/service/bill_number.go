package service

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
)

// BillNumberPrefix starts every generated bill number
const BillNumberPrefix = "BILL-"

// BillNumberGenerator hands out unique bill numbers
type BillNumberGenerator interface {
	Next() string
}

type snowflakeBillNumbers struct {
	node *snowflake.Node
}

// NewSnowflakeBillNumbers creates a generator for the given snowflake node (0-1023).
// Two writers must not share a node id.
func NewSnowflakeBillNumbers(nodeID int64) (BillNumberGenerator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("bill numbers: %w", err)
	}
	return &snowflakeBillNumbers{node: node}, nil
}

func (g *snowflakeBillNumbers) Next() string {
	return BillNumberPrefix + g.node.Generate().String()
}
