package vault

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
)

const maxCallTries = 4

var (
	ErrNoChainClient error = errors.New("no client configured for chain")
	ErrRootNotSet    error = errors.New("epoch root is not posted")
	ErrBadReturnData error = errors.New("unexpected contract return data")
)

// Contract getter selectors, first 4 bytes of the keccak of the signature.
var (
	selEpochRoots  = crypto.Keccak256([]byte("epochRoots(bytes32)"))[:4]
	selEpochTotals = crypto.Keccak256([]byte("epochTotals(bytes32)"))[:4]
	selClaimed     = crypto.Keccak256([]byte("claimed(bytes32)"))[:4]
)

// Client reads the prize vault contract deployed at the same address on
// every configured chain. All methods are side-effect-free view calls,
// retried with exponential backoff on transient node errors.
type Client struct {
	logs    *zap.SugaredLogger
	address common.Address
	clients map[int64]EthClient
}

func NewClient(logs *zap.SugaredLogger, address string, clients map[int64]EthClient) *Client {
	return &Client{
		logs:    logs,
		address: common.HexToAddress(address),
		clients: clients,
	}
}

// Address is the vault contract address as lowercase hex.
func (c *Client) Address() string {
	return strings.ToLower(c.address.Hex())
}

// Balance is the vault's native-token balance at the latest block.
func (c *Client) Balance(ctx context.Context, chainID int64) (*big.Int, error) {
	client, err := c.chain(chainID)
	if err != nil {
		return nil, err
	}

	balance, err := retryCall(ctx, func() (*big.Int, error) {
		return client.BalanceAt(ctx, c.address, nil)
	})
	if err != nil {
		return nil, fmt.Errorf("vault balance on chain %d: %w", chainID, err)
	}
	return balance, nil
}

// EpochRoot reads the Merkle root posted for an epoch identifier. A zero
// root means none was posted yet.
func (c *Client) EpochRoot(ctx context.Context, chainID int64, epochID common.Hash) (common.Hash, error) {
	data, err := c.view(ctx, chainID, selEpochRoots, epochID)
	if err != nil {
		return common.Hash{}, fmt.Errorf("epoch root on chain %d: %w", chainID, err)
	}

	root := common.BytesToHash(data)
	if root == (common.Hash{}) {
		return common.Hash{}, ErrRootNotSet
	}
	return root, nil
}

// EpochTotal reads the committed total amount posted alongside the root.
func (c *Client) EpochTotal(ctx context.Context, chainID int64, epochID common.Hash) (*big.Int, error) {
	data, err := c.view(ctx, chainID, selEpochTotals, epochID)
	if err != nil {
		return nil, fmt.Errorf("epoch total on chain %d: %w", chainID, err)
	}
	return new(big.Int).SetBytes(data), nil
}

// LeafClaimed reports whether the vault has marked a leaf as claimed.
func (c *Client) LeafClaimed(ctx context.Context, chainID int64, leaf common.Hash) (bool, error) {
	data, err := c.view(ctx, chainID, selClaimed, leaf)
	if err != nil {
		return false, fmt.Errorf("leaf claimed on chain %d: %w", chainID, err)
	}
	return data[31] != 0, nil
}

// view performs one retried eth_call of a single-bytes32-argument getter and
// returns the 32-byte word it evaluates to.
func (c *Client) view(ctx context.Context, chainID int64, selector []byte, arg common.Hash) ([]byte, error) {
	client, err := c.chain(chainID)
	if err != nil {
		return nil, err
	}

	calldata := make([]byte, 0, 36)
	calldata = append(calldata, selector...)
	calldata = append(calldata, arg.Bytes()...)
	msg := ethereum.CallMsg{To: &c.address, Data: calldata}

	data, err := retryCall(ctx, func() ([]byte, error) {
		return client.CallContract(ctx, msg, nil)
	})
	if err != nil {
		return nil, err
	}
	if len(data) != 32 {
		return nil, fmt.Errorf("%w: %d bytes", ErrBadReturnData, len(data))
	}
	return data, nil
}

func (c *Client) chain(chainID int64) (EthClient, error) {
	client, ok := c.clients[chainID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNoChainClient, chainID)
	}
	return client, nil
}

func retryCall[T any](ctx context.Context, operation func() (T, error)) (T, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 200 * time.Millisecond
	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(maxCallTries))
}
