package page

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/thep2p/go-eth-bridge/internal/wallet"
)

// Slot names one of the four balances shown on the page.
type Slot int

const (
	SlotPoolA Slot = iota
	SlotPoolB
	SlotUserA
	SlotUserB

	slotCount = 4
)

func (s Slot) String() string {
	switch s {
	case SlotPoolA:
		return "pool-a"
	case SlotPoolB:
		return "pool-b"
	case SlotUserA:
		return "user-a"
	case SlotUserB:
		return "user-b"
	default:
		return fmt.Sprintf("slot(%d)", int(s))
	}
}

// QueryKey identifies a balance query. A query re-runs whenever its key changes.
type QueryKey struct {
	Token   common.Address
	Holder  common.Address
	ChainID uint64
}

// QueryStatus is the progress of a balance query.
type QueryStatus int

const (
	QueryDisabled QueryStatus = iota
	QueryPending
	QueryResolved
	QueryFailed
)

func (q QueryStatus) String() string {
	switch q {
	case QueryDisabled:
		return "disabled"
	case QueryPending:
		return "pending"
	case QueryResolved:
		return "resolved"
	case QueryFailed:
		return "failed"
	default:
		return fmt.Sprintf("query(%d)", int(q))
	}
}

// DepositPhase tracks the last deposit submission. It never returns to idle.
type DepositPhase int

const (
	DepositIdle DepositPhase = iota
	DepositSubmitting
	DepositSettledSuccess
	DepositSettledError
)

func (d DepositPhase) String() string {
	switch d {
	case DepositIdle:
		return "idle"
	case DepositSubmitting:
		return "submitting"
	case DepositSettledSuccess:
		return "settled-success"
	case DepositSettledError:
		return "settled-error"
	default:
		return fmt.Sprintf("phase(%d)", int(d))
	}
}

// State is the view state of the page. Nil balances are unknown.
type State struct {
	Mounted bool
	Wallet  wallet.State

	PoolA *big.Int
	PoolB *big.Int
	UserA *big.Int
	UserB *big.Int

	DepositAmount *big.Int
	Deposit       DepositPhase

	Queries [slotCount]QueryStatus
}

// Balance returns the value of slot, nil when unknown.
func (s *State) Balance(slot Slot) *big.Int {
	return *s.balance(slot)
}

func (s *State) balance(slot Slot) **big.Int {
	switch slot {
	case SlotPoolA:
		return &s.PoolA
	case SlotPoolB:
		return &s.PoolB
	case SlotUserA:
		return &s.UserA
	case SlotUserB:
		return &s.UserB
	default:
		panic(fmt.Sprintf("unknown slot %d", slot))
	}
}

// pending reports whether any enabled query has not settled.
func (s *State) pending() bool {
	for _, q := range s.Queries {
		if q == QueryPending {
			return true
		}
	}
	return false
}

func (s State) clone() State {
	c := s
	for _, p := range []**big.Int{&c.PoolA, &c.PoolB, &c.UserA, &c.UserB, &c.DepositAmount} {
		if *p != nil {
			*p = new(big.Int).Set(*p)
		}
	}
	return c
}
