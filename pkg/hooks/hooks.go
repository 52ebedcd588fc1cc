// Package hooks provides the domain before/after-hooks that wrap base
// tools: token-symbol resolution, wallet presence and on-chain balance
// verification. Business failures come back as terminal tasks or
// clarification messages; only programmer errors (missing context,
// misconfiguration) are returned as errors.
package hooks

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/chainweave/agentkit/pkg/a2a"
	"github.com/chainweave/agentkit/pkg/chain"
	"github.com/chainweave/agentkit/pkg/core"
	agenterrors "github.com/chainweave/agentkit/pkg/errors"
	agentmcp "github.com/chainweave/agentkit/pkg/mcp"
)

// Argument keys the hooks read and write.
const (
	ArgTokenName     = "tokenName"
	ArgTokenAddress  = "tokenAddress"
	ArgChainID       = "chainId"
	ArgTokenDecimals = "tokenDecimals"
	ArgWalletAddress = "walletAddress"
	ArgAmount        = "amount"
)

// ResolveToken resolves args[tokenName] against the registry. An unknown
// symbol stops the chain with a failed task; a symbol deployed on several
// chains with no chain preference stops it with an input-required task
// naming the candidates. On success the args gain tokenAddress, chainId
// and tokenDecimals.
func ResolveToken(skill string, registry *chain.TokenRegistry) core.BeforeHook {
	return func(ctx context.Context, args map[string]any, ec *core.Context) (core.HookResult, error) {
		if registry == nil {
			return core.HookResult{}, agenterrors.NewInternal("token registry is not configured", nil)
		}
		symbol := stringArg(args, ec, ArgTokenName)
		if symbol == "" {
			return core.TerminalTask(a2a.NewErrorTask(skill,
				agenterrors.NewValidation("tokenName is required"), "token")), nil
		}
		suffix := strings.ToLower(symbol)

		deployments, err := registry.Deployments(symbol)
		if err != nil {
			return core.TerminalTask(a2a.NewErrorTask(skill, err, suffix)), nil
		}

		chainID := stringArg(args, ec, ArgChainID)
		var deployment chain.Deployment
		switch {
		case chainID != "":
			found := false
			for _, d := range deployments {
				if d.ChainID == chainID {
					deployment = d
					found = true
					break
				}
			}
			if !found {
				return core.TerminalTask(a2a.NewErrorTask(skill,
					agenterrors.NewTokenNotFound(symbol).WithDetail(ArgChainID, chainID), suffix)), nil
			}
		case len(deployments) == 1:
			deployment = deployments[0]
		default:
			chains := make([]string, len(deployments))
			for i, d := range deployments {
				chains[i] = d.ChainID
			}
			text := fmt.Sprintf("%s is available on multiple chains (%s). Which chain should I use?",
				strings.ToUpper(symbol), strings.Join(chains, ", "))
			return core.TerminalTask(a2a.NewInputRequiredTask(skill, text, suffix)), nil
		}

		next := core.CloneArgs(args)
		next[ArgTokenAddress] = deployment.Address
		next[ArgChainID] = deployment.ChainID
		next[ArgTokenDecimals] = deployment.Decimals
		return core.Continue(next), nil
	}
}

// RequireWallet ensures a wallet address is present in the args or the
// skill input. A missing address stops the chain with a clarification
// message; it never substitutes a placeholder.
func RequireWallet() core.BeforeHook {
	return func(ctx context.Context, args map[string]any, ec *core.Context) (core.HookResult, error) {
		address := stringArg(args, ec, ArgWalletAddress)
		if address == "" {
			msg := a2a.NewInfoMessage(
				"I need a wallet address to continue. Which address should I use?",
				a2a.RoleAgent, a2a.MessageOpts{})
			return core.TerminalMessage(msg), nil
		}
		if _, ok := args[ArgWalletAddress]; ok {
			return core.Continue(nil), nil
		}
		next := core.CloneArgs(args)
		next[ArgWalletAddress] = address
		return core.Continue(next), nil
	}
}

// BalanceReader reads an ERC-20 balance on a chain. chain.Registry backed
// implementations talk JSON-RPC; tests substitute fixed values.
type BalanceReader interface {
	TokenBalance(ctx context.Context, chainID, tokenAddress, holder string) (*big.Int, error)
}

// ChainBalances adapts a chain registry to the BalanceReader contract.
type ChainBalances struct {
	Registry *chain.Registry
}

func (c ChainBalances) TokenBalance(ctx context.Context, chainID, tokenAddress, holder string) (*big.Int, error) {
	client := c.Registry.Client(chainID)
	if client == nil {
		return nil, agenterrors.NewInternal(fmt.Sprintf("chain %s is not configured", chainID), nil)
	}
	return client.TokenBalance(ctx, tokenAddress, holder)
}

// VerifyBalance checks that the wallet holds at least args[amount] of the
// resolved token. It must run after ResolveToken and RequireWallet; the
// resolved fields missing from the args is a programmer error. A
// malformed amount or a shortfall stops the chain with a failed task.
func VerifyBalance(skill string, balances BalanceReader) core.BeforeHook {
	return func(ctx context.Context, args map[string]any, ec *core.Context) (core.HookResult, error) {
		if balances == nil {
			return core.HookResult{}, agenterrors.NewInternal("balance reader is not configured", nil)
		}
		tokenAddress, _ := args[ArgTokenAddress].(string)
		chainID, _ := args[ArgChainID].(string)
		if tokenAddress == "" || chainID == "" {
			return core.HookResult{}, agenterrors.NewInternal("balance check requires a resolved token", nil)
		}
		wallet := stringArg(args, ec, ArgWalletAddress)
		if wallet == "" {
			return core.HookResult{}, agenterrors.NewInternal("balance check requires a wallet address", nil)
		}
		symbol := stringArg(args, ec, ArgTokenName)
		suffix := strings.ToLower(symbol)
		if suffix == "" {
			suffix = "balance"
		}

		amount, ok := amountArg(args)
		if !ok {
			return core.TerminalTask(a2a.NewErrorTask(skill,
				agenterrors.NewValidation(fmt.Sprintf("amount %v is not a valid number", args[ArgAmount])),
				suffix)), nil
		}

		raw, err := balances.TokenBalance(ctx, chainID, tokenAddress, wallet)
		if err != nil {
			return core.HookResult{}, err
		}

		decimals := decimalsArg(args)
		held := new(big.Rat).SetFrac(raw, pow10(decimals))
		if held.Cmp(amount) < 0 {
			msg := fmt.Sprintf("insufficient %s balance: have %s, need %s",
				strings.ToUpper(symbol), ratString(held), ratString(amount))
			return core.TerminalTask(a2a.NewErrorTask(skill,
				agenterrors.NewInsufficientBalance(msg), suffix)), nil
		}
		return core.Continue(nil), nil
	}
}

// ParseAs returns an after-hook that decodes the raw remote envelope into
// T with the usual payload rules.
func ParseAs[T any]() core.AfterHook {
	return func(ctx context.Context, result any, ec *core.Context) (any, error) {
		envelope, ok := result.(*mcp.CallToolResult)
		if !ok {
			return nil, agenterrors.NewInternal(fmt.Sprintf("expected a tool call result, got %T", result), nil)
		}
		return agentmcp.ParsePayload[T](envelope)
	}
}

// stringArg reads a string value from the args, falling back to the
// skill input.
func stringArg(args map[string]any, ec *core.Context, key string) string {
	if v, ok := args[key].(string); ok && v != "" {
		return v
	}
	if ec != nil {
		if v, ok := ec.SkillInput[key].(string); ok {
			return v
		}
	}
	return ""
}

func amountArg(args map[string]any) (*big.Rat, bool) {
	switch v := args[ArgAmount].(type) {
	case string:
		amount, ok := new(big.Rat).SetString(strings.TrimSpace(v))
		if !ok || amount.Sign() < 0 {
			return nil, false
		}
		return amount, true
	case float64:
		if v < 0 {
			return nil, false
		}
		return new(big.Rat).SetFloat64(v), true
	case int:
		if v < 0 {
			return nil, false
		}
		return new(big.Rat).SetInt64(int64(v)), true
	default:
		return nil, false
	}
}

func decimalsArg(args map[string]any) int {
	switch v := args[ArgTokenDecimals].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 18
	}
}

func pow10(n int) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}

func ratString(r *big.Rat) string {
	s := r.FloatString(6)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}
