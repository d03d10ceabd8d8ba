package amm

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Market is a set of pools, as loaded from a pool file.
type Market struct {
	Pools []*Exchange
}

type poolEntry struct {
	Name     string `yaml:"name"`
	Kind     Kind   `yaml:"kind"`
	A        Node   `yaml:"a"`
	B        Node   `yaml:"b"`
	ReserveA int64  `yaml:"reserve_a"`
	ReserveB int64  `yaml:"reserve_b"`
	Fee      string `yaml:"fee"`
}

// LoadMarket reads a YAML pool file:
//
//	pools:
//	  - name: Uniswap
//	    kind: dex
//	    a: {chain: Ethereum, name: USDT}
//	    b: {chain: Ethereum, name: WUSDT}
//	    reserve_a: 8000
//	    reserve_b: 6000
//	    fee: "0.003"
//
// Every pool holds its own reserves. Kind defaults to exchange and fee to DefaultFee.
func LoadMarket(r io.Reader) (*Market, error) {
	var f struct {
		Pools []poolEntry `yaml:"pools"`
	}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode pool file: %w", err)
	}

	m := &Market{}
	names := make(map[string]struct{}, len(f.Pools))
	for _, p := range f.Pools {
		if p.Name == "" {
			return nil, fmt.Errorf("pool between %s and %s has no name", p.A, p.B)
		}
		if _, dup := names[p.Name]; dup {
			return nil, fmt.Errorf("pool %s declared twice", p.Name)
		}
		names[p.Name] = struct{}{}

		pool, err := p.build()
		if err != nil {
			return nil, err
		}
		m.Pools = append(m.Pools, pool)
	}
	return m, nil
}

func (p poolEntry) build() (*Exchange, error) {
	if p.ReserveA < 0 || p.ReserveB < 0 {
		return nil, fmt.Errorf("pool %s: negative reserve", p.Name)
	}
	if p.A == p.B {
		return nil, fmt.Errorf("pool %s: both sides are %s", p.Name, p.A)
	}

	fee := DefaultFee
	if p.Fee != "" {
		var err error
		if fee, err = decimal.NewFromString(p.Fee); err != nil {
			return nil, fmt.Errorf("pool %s: invalid fee %q: %w", p.Name, p.Fee, err)
		}
		if fee.IsNegative() || fee.GreaterThanOrEqual(decimal.NewFromInt(1)) {
			return nil, fmt.Errorf("pool %s: fee %s outside [0, 1)", p.Name, fee)
		}
	}

	a := &Token{Node: p.A, Reserve: decimal.NewFromInt(p.ReserveA)}
	b := &Token{Node: p.B, Reserve: decimal.NewFromInt(p.ReserveB)}
	switch p.Kind {
	case "", KindExchange:
		return NewExchange(p.Name, a, b, fee), nil
	case KindDex:
		return NewDex(p.Name, a, b, fee)
	case KindBridge:
		return NewBridge(p.Name, a, b, fee)
	default:
		return nil, fmt.Errorf("pool %s: unknown kind %q", p.Name, p.Kind)
	}
}

// Nodes returns every token traded by the market, sorted by chain then name.
func (m *Market) Nodes() []Node {
	seen := make(map[Node]struct{})
	for _, p := range m.Pools {
		seen[p.A.Node] = struct{}{}
		seen[p.B.Node] = struct{}{}
	}
	nodes := make([]Node, 0, len(seen))
	for n := range seen {
		nodes = append(nodes, n)
	}
	sortNodes(nodes)
	return nodes
}

// Graph returns the routing graph of the market for a swap of amount.
func (m *Market) Graph(amount decimal.Decimal) *Graph {
	g := NewGraph()
	for _, n := range m.Nodes() {
		g.AddNode(n)
	}
	for _, p := range m.Pools {
		AddPoolEdges(g, p, amount)
	}
	return g
}

func sortNodes(nodes []Node) {
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].Chain != nodes[j].Chain {
			return nodes[i].Chain < nodes[j].Chain
		}
		return nodes[i].Name < nodes[j].Name
	})
}
