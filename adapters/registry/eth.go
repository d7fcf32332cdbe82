package registry

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/shopspring/decimal"
	"github.com/vitalis-labs/healthmarket/core"
	"github.com/vitalis-labs/healthmarket/ports"
)

// contractABI is the external interface of the marketplace contract. The
// contract's internal state transitions are its own business; this client
// only reads records and submits register/update-price transactions.
const contractABI = `[
	{"type":"function","name":"registerHealthData","stateMutability":"nonpayable","inputs":[{"name":"dataHash","type":"bytes32"},{"name":"price","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"getDataDetails","stateMutability":"view","inputs":[{"name":"dataId","type":"uint256"}],"outputs":[{"name":"dataHash","type":"bytes32"},{"name":"owner","type":"address"},{"name":"price","type":"uint256"},{"name":"isAvailable","type":"bool"}]},
	{"type":"function","name":"nextDataId","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"updatePrice","stateMutability":"nonpayable","inputs":[{"name":"dataId","type":"uint256"},{"name":"newPrice","type":"uint256"}],"outputs":[]},
	{"type":"event","name":"DataRegistered","anonymous":false,"inputs":[{"name":"dataId","type":"uint256","indexed":true},{"name":"owner","type":"address","indexed":true},{"name":"dataHash","type":"bytes32","indexed":false},{"name":"price","type":"uint256","indexed":false}]}
]`

var weiPerEther = decimal.New(1, 18)

// EthRegistry talks to the marketplace contract over JSON-RPC. Transactions
// are signed by the service operator key; reads go through eth_call. Callers
// bound every method with a context deadline, network failures surface as
// core.ErrRegistryUnavailable.
type EthRegistry struct {
	client   *ethclient.Client
	contract *bind.BoundContract
	parsed   abi.ABI
	signer   *bind.TransactOpts
}

// NewEthRegistry dials the RPC endpoint and binds the contract.
func NewEthRegistry(ctx context.Context, rpcURL, contractAddr string, operatorKey *ecdsa.PrivateKey) (*EthRegistry, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial rpc endpoint: %w", err)
	}

	chainID, err := client.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chain id: %w", err)
	}

	signer, err := bind.NewKeyedTransactorWithChainID(operatorKey, chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to build transactor: %w", err)
	}

	parsed, err := abi.JSON(strings.NewReader(contractABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse contract abi: %w", err)
	}

	addr := common.HexToAddress(contractAddr)
	return &EthRegistry{
		client:   client,
		contract: bind.NewBoundContract(addr, parsed, client, client, client),
		parsed:   parsed,
		signer:   signer,
	}, nil
}

// Register submits a registration transaction, waits for it to mine, and
// returns the id carried by the DataRegistered event.
func (r *EthRegistry) Register(ctx context.Context, dataHash string, owner core.Identity, price decimal.Decimal) (uint64, error) {
	opts := *r.signer
	opts.Context = ctx

	tx, err := r.contract.Transact(&opts, "registerHealthData", common.HexToHash(dataHash), toWei(price))
	if err != nil {
		return 0, fmt.Errorf("registerHealthData: %v: %w", err, core.ErrRegistryUnavailable)
	}

	receipt, err := bind.WaitMined(ctx, r.client, tx)
	if err != nil {
		return 0, fmt.Errorf("waiting for registration receipt: %v: %w", err, core.ErrRegistryUnavailable)
	}

	eventID := r.parsed.Events["DataRegistered"].ID
	for _, lg := range receipt.Logs {
		if len(lg.Topics) > 1 && lg.Topics[0] == eventID {
			return new(big.Int).SetBytes(lg.Topics[1].Bytes()).Uint64(), nil
		}
	}
	return 0, fmt.Errorf("registration mined without DataRegistered event: %w", core.ErrInternal)
}

// Get reads a record through getDataDetails. A zero data hash means the id
// was never assigned.
func (r *EthRegistry) Get(ctx context.Context, id uint64) (*core.DataRecord, error) {
	var out []interface{}
	err := r.contract.Call(&bind.CallOpts{Context: ctx}, &out, "getDataDetails", new(big.Int).SetUint64(id))
	if err != nil {
		return nil, fmt.Errorf("getDataDetails(%d): %v: %w", id, err, core.ErrRegistryUnavailable)
	}

	hash := out[0].([32]byte)
	if hash == ([32]byte{}) {
		return nil, core.ErrRecordNotFound
	}

	return &core.DataRecord{
		ID:          id,
		DataHash:    common.BytesToHash(hash[:]).Hex(),
		Owner:       core.NormalizeIdentity(out[1].(common.Address).Hex()),
		Price:       fromWei(out[2].(*big.Int)),
		IsAvailable: out[3].(bool),
	}, nil
}

// NextID reads the contract's id counter.
func (r *EthRegistry) NextID(ctx context.Context) (uint64, error) {
	var out []interface{}
	err := r.contract.Call(&bind.CallOpts{Context: ctx}, &out, "nextDataId")
	if err != nil {
		return 0, fmt.Errorf("nextDataId: %v: %w", err, core.ErrRegistryUnavailable)
	}
	return out[0].(*big.Int).Uint64(), nil
}

// UpdatePrice submits an updatePrice transaction and waits for it to mine.
func (r *EthRegistry) UpdatePrice(ctx context.Context, id uint64, price decimal.Decimal) error {
	opts := *r.signer
	opts.Context = ctx

	tx, err := r.contract.Transact(&opts, "updatePrice", new(big.Int).SetUint64(id), toWei(price))
	if err != nil {
		return fmt.Errorf("updatePrice(%d): %v: %w", id, err, core.ErrRegistryUnavailable)
	}

	if _, err := bind.WaitMined(ctx, r.client, tx); err != nil {
		return fmt.Errorf("waiting for price update receipt: %v: %w", err, core.ErrRegistryUnavailable)
	}
	return nil
}

func toWei(eth decimal.Decimal) *big.Int {
	return eth.Mul(weiPerEther).BigInt()
}

func fromWei(wei *big.Int) decimal.Decimal {
	return decimal.NewFromBigInt(wei, -18)
}

var _ ports.RecordRegistry = (*EthRegistry)(nil)
