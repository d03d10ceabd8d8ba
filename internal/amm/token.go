// Package amm simulates constant-product liquidity pools and finds the
// cheapest swap route across pools on several chains.
package amm

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrTokenExists is returned when a token is added twice to a TokenManager.
var ErrTokenExists = errors.New("token already exists")

// Node identifies a token by chain and name. It is the vertex type of Graph.
type Node struct {
	Chain string `yaml:"chain"`
	Name  string `yaml:"name"`
}

func (n Node) String() string {
	return n.Name + " on " + n.Chain
}

// Token is a pool-side token balance. Pools that share a Token share its reserve.
type Token struct {
	Node
	Reserve decimal.Decimal
}

// TokenManager holds the tokens of a simulation, keyed by chain and name.
type TokenManager struct {
	tokens map[Node]*Token
}

// NewTokenManager returns an empty manager.
func NewTokenManager() *TokenManager {
	return &TokenManager{tokens: make(map[Node]*Token)}
}

// Add registers a token with an initial reserve.
func (m *TokenManager) Add(chain, name string, reserve int64) (*Token, error) {
	n := Node{Chain: chain, Name: name}
	if _, exists := m.tokens[n]; exists {
		return nil, fmt.Errorf("%w: %s", ErrTokenExists, n)
	}
	t := &Token{Node: n, Reserve: decimal.NewFromInt(reserve)}
	m.tokens[n] = t
	return t, nil
}

// Get returns the token registered for chain and name.
func (m *TokenManager) Get(chain, name string) (*Token, bool) {
	t, ok := m.tokens[Node{Chain: chain, Name: name}]
	return t, ok
}

// Nodes returns every registered token, sorted by chain then name.
func (m *TokenManager) Nodes() []Node {
	nodes := make([]Node, 0, len(m.tokens))
	for n := range m.tokens {
		nodes = append(nodes, n)
	}
	sortNodes(nodes)
	return nodes
}
