package unittest

import (
	"fmt"
	"math/big"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/require"
)

// CallHandler answers an eth_call made against one contract address.
type CallHandler func(input []byte) ([]byte, error)

// RPCServer is an in-process JSON-RPC endpoint that answers the small subset
// of the eth namespace used by read-only clients: eth_chainId and eth_call.
type RPCServer struct {
	URL string

	mu       sync.RWMutex
	chainID  *big.Int
	handlers map[common.Address]CallHandler
}

// NewRPCServer starts an RPC server reporting chainID. It is shut down when the test ends.
func NewRPCServer(t *testing.T, chainID uint64) *RPCServer {
	t.Helper()

	s := &RPCServer{
		chainID:  new(big.Int).SetUint64(chainID),
		handlers: make(map[common.Address]CallHandler),
	}

	srv := rpc.NewServer()
	require.NoError(t, srv.RegisterName("eth", &ethService{server: s}), "failed to register eth service")

	httpSrv := httptest.NewServer(srv)
	s.URL = httpSrv.URL
	t.Cleanup(func() {
		httpSrv.Close()
		srv.Stop()
	})
	return s
}

// HandleCall routes eth_call requests addressed to contract to h.
func (s *RPCServer) HandleCall(contract common.Address, h CallHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[contract] = h
}

type callArgs struct {
	To    *common.Address `json:"to"`
	Data  hexutil.Bytes   `json:"data"`
	Input hexutil.Bytes   `json:"input"`
}

type ethService struct {
	server *RPCServer
}

func (e *ethService) ChainId() *hexutil.Big {
	return (*hexutil.Big)(e.server.chainID)
}

func (e *ethService) Call(args callArgs, _ string) (hexutil.Bytes, error) {
	if args.To == nil {
		return nil, fmt.Errorf("contract creation not supported")
	}

	e.server.mu.RLock()
	h, ok := e.server.handlers[*args.To]
	e.server.mu.RUnlock()
	if !ok {
		// no code at the address
		return hexutil.Bytes{}, nil
	}

	input := args.Input
	if len(input) == 0 {
		input = args.Data
	}
	return h(input)
}
