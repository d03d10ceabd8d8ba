package page

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/thep2p/go-eth-bridge/internal/chain"
	"github.com/thep2p/go-eth-bridge/internal/model"
)

// Deployment locates the bridge and the two tokens it pools. The bridge has
// the same address on both chains.
type Deployment struct {
	ChainA chain.Chain
	ChainB chain.Chain
	Bridge common.Address
	TokenA common.Address
	TokenB common.Address
}

// DefaultDeployment is the public Sepolia/Shibuya deployment.
func DefaultDeployment() Deployment {
	return Deployment{
		ChainA: chain.Sepolia,
		ChainB: chain.Shibuya,
		Bridge: common.HexToAddress(model.DefaultBridgeAddress),
		TokenA: common.HexToAddress(model.DefaultSepoliaToken),
		TokenB: common.HexToAddress(model.DefaultShibuyaToken),
	}
}

// NewDeployment applies cfg on top of DefaultDeployment. Empty fields keep
// the default.
func NewDeployment(cfg model.PageConfig) (Deployment, error) {
	d := DefaultDeployment()
	d.ChainA = d.ChainA.WithRPC(cfg.SepoliaRPC)
	d.ChainB = d.ChainB.WithRPC(cfg.ShibuyaRPC)

	for _, f := range []struct {
		name  string
		value string
		dst   *common.Address
	}{
		{"bridge", cfg.Bridge, &d.Bridge},
		{"sepolia token", cfg.SepoliaToken, &d.TokenA},
		{"shibuya token", cfg.ShibuyaToken, &d.TokenB},
	} {
		if f.value == "" {
			continue
		}
		if !common.IsHexAddress(f.value) {
			return Deployment{}, fmt.Errorf("invalid %s address %q", f.name, f.value)
		}
		*f.dst = common.HexToAddress(f.value)
	}
	return d, nil
}

// queryKeys returns the keys of the four balance queries. User queries are
// nil unless holder is set.
func (d Deployment) queryKeys(holder *common.Address) [slotCount]*QueryKey {
	keys := [slotCount]*QueryKey{
		SlotPoolA: {Token: d.TokenA, Holder: d.Bridge, ChainID: d.ChainA.ID},
		SlotPoolB: {Token: d.TokenB, Holder: d.Bridge, ChainID: d.ChainB.ID},
	}
	if holder != nil {
		keys[SlotUserA] = &QueryKey{Token: d.TokenA, Holder: *holder, ChainID: d.ChainA.ID}
		keys[SlotUserB] = &QueryKey{Token: d.TokenB, Holder: *holder, ChainID: d.ChainB.ID}
	}
	return keys
}
