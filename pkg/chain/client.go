// Package chain provides read access to EVM chains: native and ERC-20
// balances over JSON-RPC, one client per configured chain.
package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	agenterrors "github.com/chainweave/agentkit/pkg/errors"
	"github.com/chainweave/agentkit/pkg/resilience"
)

// balanceOf is the only ERC-20 method the agent needs to read holdings.
const erc20ABI = `[{"constant":true,"inputs":[{"name":"owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"type":"function"}]`

// Config describes one chain endpoint.
type Config struct {
	// ChainID is the decimal chain id, e.g. "1" or "42161".
	ChainID string

	// RPCURL is the HTTP(S) JSON-RPC endpoint.
	RPCURL string

	// Name is a human label for logs.
	Name string
}

// Client reads balances from a single EVM chain. RPC calls go through a
// retry policy and a per-endpoint circuit breaker.
type Client struct {
	cfg     Config
	eth     *ethclient.Client
	abi     abi.ABI
	retry   resilience.RetryConfig
	breaker *resilience.Breaker
}

// Dial connects to the configured endpoint. The connection is lazy on
// the go-ethereum side; the first RPC call surfaces a bad endpoint.
func Dial(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.RPCURL) == "" {
		return nil, agenterrors.NewValidation("chain rpc url is required").WithDetail("chainId", cfg.ChainID)
	}
	eth, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, agenterrors.NewInternal(fmt.Sprintf("dial chain %s", cfg.ChainID), err)
	}
	parsed, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		return nil, agenterrors.NewInternal("parse erc20 abi", err)
	}
	name := cfg.Name
	if name == "" {
		name = "chain-" + cfg.ChainID
	}
	return &Client{
		cfg:     cfg,
		eth:     eth,
		abi:     parsed,
		retry:   resilience.DefaultRetryConfig().WithMaxAttempts(3),
		breaker: resilience.NewBreaker(resilience.BreakerConfig{Name: name}),
	}, nil
}

// ChainID returns the configured decimal chain id.
func (c *Client) ChainID() string {
	return c.cfg.ChainID
}

// Close releases the underlying connection.
func (c *Client) Close() {
	c.eth.Close()
}

// NativeBalance returns the latest native-asset balance of an address in
// its smallest unit (wei on Ethereum).
func (c *Client) NativeBalance(ctx context.Context, address string) (*big.Int, error) {
	if !common.IsHexAddress(address) {
		return nil, agenterrors.NewValidation("invalid address").WithDetail("address", address)
	}
	var balance *big.Int
	err := c.call(ctx, func() error {
		var callErr error
		balance, callErr = c.eth.BalanceAt(ctx, common.HexToAddress(address), nil)
		return callErr
	})
	if err != nil {
		return nil, agenterrors.NewInternal(fmt.Sprintf("native balance on chain %s", c.cfg.ChainID), err)
	}
	return balance, nil
}

// TokenBalance returns an ERC-20 balance of holder in the token's
// smallest unit.
func (c *Client) TokenBalance(ctx context.Context, tokenAddress, holder string) (*big.Int, error) {
	if !common.IsHexAddress(tokenAddress) {
		return nil, agenterrors.NewValidation("invalid token address").WithDetail("address", tokenAddress)
	}
	if !common.IsHexAddress(holder) {
		return nil, agenterrors.NewValidation("invalid holder address").WithDetail("address", holder)
	}

	input, err := c.abi.Pack("balanceOf", common.HexToAddress(holder))
	if err != nil {
		return nil, agenterrors.NewInternal("pack balanceOf call", err)
	}
	token := common.HexToAddress(tokenAddress)
	msg := ethereum.CallMsg{To: &token, Data: input}

	var output []byte
	err = c.call(ctx, func() error {
		var callErr error
		output, callErr = c.eth.CallContract(ctx, msg, nil)
		return callErr
	})
	if err != nil {
		return nil, agenterrors.NewInternal(fmt.Sprintf("token balance on chain %s", c.cfg.ChainID), err)
	}

	results, err := c.abi.Unpack("balanceOf", output)
	if err != nil || len(results) != 1 {
		return nil, agenterrors.NewInternal("decode balanceOf result", err)
	}
	balance, ok := results[0].(*big.Int)
	if !ok {
		return nil, agenterrors.NewInternal("unexpected balanceOf result type", nil)
	}
	return balance, nil
}

// BlockNumber returns the latest block height, a cheap liveness probe.
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	var height uint64
	err := c.call(ctx, func() error {
		var callErr error
		height, callErr = c.eth.BlockNumber(ctx)
		return callErr
	})
	if err != nil {
		return 0, agenterrors.NewInternal(fmt.Sprintf("block number on chain %s", c.cfg.ChainID), err)
	}
	return height, nil
}

func (c *Client) call(ctx context.Context, fn func() error) error {
	return c.breaker.Call(func() error {
		return c.retry.Do(ctx, fn)
	})
}

// Registry holds one client per chain id.
type Registry struct {
	clients map[string]*Client
}

// NewRegistry dials every configured chain. On any failure the already
// dialed clients are closed and the error is returned.
func NewRegistry(ctx context.Context, configs []Config) (*Registry, error) {
	reg := &Registry{clients: make(map[string]*Client, len(configs))}
	for _, cfg := range configs {
		client, err := Dial(ctx, cfg)
		if err != nil {
			reg.Close()
			return nil, err
		}
		reg.clients[cfg.ChainID] = client
	}
	return reg, nil
}

// Client returns the client for a chain id, or nil when the chain is not
// configured.
func (r *Registry) Client(chainID string) *Client {
	return r.clients[chainID]
}

// ChainIDs returns the configured chain ids.
func (r *Registry) ChainIDs() []string {
	out := make([]string, 0, len(r.clients))
	for id := range r.clients {
		out = append(out, id)
	}
	return out
}

// Close closes every client.
func (r *Registry) Close() {
	for _, client := range r.clients {
		client.Close()
	}
}
