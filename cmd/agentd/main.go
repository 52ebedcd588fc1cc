// Command agentd serves the configured skills over MCP stdio.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"syscall"

	"github.com/chainweave/agentkit/pkg/a2a"
	"github.com/chainweave/agentkit/pkg/agent"
	"github.com/chainweave/agentkit/pkg/chain"
	"github.com/chainweave/agentkit/pkg/config"
	"github.com/chainweave/agentkit/pkg/core"
	"github.com/chainweave/agentkit/pkg/hooks"
	agentmcp "github.com/chainweave/agentkit/pkg/mcp"
	"github.com/chainweave/agentkit/pkg/skills"
	"github.com/chainweave/agentkit/pkg/taskstore"
	"github.com/chainweave/agentkit/pkg/telemetry"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "agentd:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := telemetry.ConfigureSlog(os.Stderr, cfg.Log.Level, cfg.Log.Format)

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitWithConfig(cfg.Agent.ID, cfg.Agent.Version, telemetry.Config{
			Exporter:     cfg.Telemetry.Exporter,
			OTLPEndpoint: cfg.Telemetry.Endpoint,
		})
		if err != nil {
			return err
		}
		defer shutdown(context.Background())
	}

	store, closeStore, err := openStore(cfg.TaskStore)
	if err != nil {
		return err
	}
	defer closeStore()

	chains, err := chainRegistry(ctx, cfg.Chains)
	if err != nil {
		return err
	}
	defer chains.Close()

	tokens, err := chain.LoadTokenRegistry(cfg.Tokens.Path)
	if err != nil {
		return err
	}

	clients, closeClients, err := remoteClients(cfg)
	if err != nil {
		return err
	}
	defer closeClients()

	metrics, err := telemetry.NewToolMetrics()
	if err != nil {
		return err
	}

	shared := &sharedState{Chains: chains, Tokens: tokens}
	a, err := agent.New(agent.Options{
		ID:      cfg.Agent.ID,
		Version: cfg.Agent.Version,
		Custom:  shared,
		Clients: clients,
		Store:   store,
		Metrics: metrics,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	if err := a.RegisterSkill(walletBalancesSkill()); err != nil {
		return err
	}
	if err := a.RegisterSkill(tokenBalanceSkill(tokens)); err != nil {
		return err
	}
	if oracle, ok := clients["price-oracle"]; ok {
		if err := a.RegisterSkill(tokenPriceSkill(oracle)); err != nil {
			return err
		}
	}

	logger.Info("agentd starting",
		"agent", cfg.Agent.ID,
		"store", cfg.TaskStore.Backend,
		"chains", len(cfg.Chains),
		"servers", len(cfg.Servers))
	return a.ServeStdio()
}

// sharedState is the read-only startup state hooks reach through
// core.Shared.
type sharedState struct {
	Chains *chain.Registry
	Tokens *chain.TokenRegistry
}

func openStore(cfg config.TaskStoreConfig) (taskstore.Store, func(), error) {
	switch cfg.Backend {
	case "memory":
		return taskstore.NewMemoryStore(), func() {}, nil
	case "file":
		store, err := taskstore.NewFileStore(cfg.Dir)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	case "sqlite":
		store, err := taskstore.OpenSQLiteStore(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown taskstore backend %q", cfg.Backend)
	}
}

func chainRegistry(ctx context.Context, configs []config.ChainConfig) (*chain.Registry, error) {
	chainConfigs := make([]chain.Config, len(configs))
	for i, c := range configs {
		chainConfigs[i] = chain.Config{ChainID: c.ChainID, Name: c.Name, RPCURL: c.RPCURL}
	}
	return chain.NewRegistry(ctx, chainConfigs)
}

func remoteClients(cfg *config.Config) (map[string]core.RemoteCaller, func(), error) {
	clients := make(map[string]core.RemoteCaller, len(cfg.Servers))
	var opened []*agentmcp.Client
	closeAll := func() {
		for _, c := range opened {
			c.Close()
		}
	}
	for _, server := range cfg.Servers {
		client, err := agentmcp.NewClientWithStdio(cfg.Agent.ID, server.Command, server.Args)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("connect server %s: %w", server.Name, err)
		}
		opened = append(opened, client)
		clients[server.Name] = client
	}
	return clients, closeAll, nil
}

// walletBalancesSkill reports the native balance of a wallet on every
// configured chain.
func walletBalancesSkill() *skills.Skill {
	base := core.NewTool("wallet-balances", "native balances across configured chains",
		objectSchema(map[string]any{
			"walletAddress": map[string]any{"type": "string"},
		}, "walletAddress"),
		func(ctx context.Context, args map[string]any, ec *core.Context) (any, error) {
			shared, ok := core.Shared[*sharedState](ec)
			if !ok {
				return nil, fmt.Errorf("chain clients are not configured")
			}
			wallet, _ := args[hooks.ArgWalletAddress].(string)
			positions := make([]map[string]any, 0)
			for _, chainID := range shared.Chains.ChainIDs() {
				balance, err := shared.Chains.Client(chainID).NativeBalance(ctx, wallet)
				if err != nil {
					return nil, err
				}
				positions = append(positions, map[string]any{
					"chainId": chainID,
					"balance": balance.String(),
				})
			}
			artifact := a2a.NewArtifact(
				[]a2a.Part{a2a.DataPart(map[string]any{"positions": positions})},
				"wallet-positions", "native balances by chain")
			return a2a.NewSuccessTask("wallet-balances", []a2a.Artifact{artifact},
				fmt.Sprintf("Fetched balances for %d chains.", len(positions)), "native"), nil
		})

	return &skills.Skill{
		Name:        "wallet-balances",
		Description: "Report the wallet's native asset balance on every configured chain.",
		Tags:        []string{"wallet", "balances"},
		InputSchema: base.InputSchema(),
		Tools: []core.Tool{core.WithHooks(base, core.Hooks{
			Before: hooks.RequireWallet(),
		})},
	}
}

// tokenBalanceSkill resolves a token symbol and reports the wallet's
// ERC-20 balance, exercising the full hook pipeline.
func tokenBalanceSkill(tokens *chain.TokenRegistry) *skills.Skill {
	base := core.NewTool("token-balance", "ERC-20 balance of a wallet",
		objectSchema(map[string]any{
			"tokenName":     map[string]any{"type": "string"},
			"walletAddress": map[string]any{"type": "string"},
			"chainId":       map[string]any{"type": "string"},
		}, "tokenName", "walletAddress"),
		func(ctx context.Context, args map[string]any, ec *core.Context) (any, error) {
			shared, ok := core.Shared[*sharedState](ec)
			if !ok {
				return nil, fmt.Errorf("chain clients are not configured")
			}
			reader := hooks.ChainBalances{Registry: shared.Chains}
			chainID, _ := args[hooks.ArgChainID].(string)
			tokenAddress, _ := args[hooks.ArgTokenAddress].(string)
			wallet, _ := args[hooks.ArgWalletAddress].(string)
			symbol, _ := args[hooks.ArgTokenName].(string)

			raw, err := reader.TokenBalance(ctx, chainID, tokenAddress, wallet)
			if err != nil {
				return nil, err
			}
			decimals, _ := args[hooks.ArgTokenDecimals].(int)
			artifact := a2a.NewArtifact(
				[]a2a.Part{a2a.DataPart(map[string]any{
					"symbol":   symbol,
					"chainId":  chainID,
					"raw":      raw.String(),
					"decimals": decimals,
					"balance":  formatUnits(raw, decimals),
				})},
				"wallet-positions", "token balance")
			return a2a.NewSuccessTask("token-balance", []a2a.Artifact{artifact},
				fmt.Sprintf("%s balance: %s", symbol, formatUnits(raw, decimals)), ""), nil
		})

	return &skills.Skill{
		Name:        "token-balance",
		Description: "Resolve a token symbol and report the wallet's balance of it.",
		Tags:        []string{"wallet", "tokens"},
		InputSchema: base.InputSchema(),
		Tools: []core.Tool{core.WithHooks(base, core.Hooks{
			Before: core.ComposeBefore(
				hooks.ResolveToken("token-balance", tokens),
				hooks.RequireWallet(),
			),
		})},
	}
}

// priceQuote is the payload the price-oracle server returns for get-price.
type priceQuote struct {
	Symbol   string `json:"symbol"`
	Price    string `json:"price"`
	Currency string `json:"currency"`
}

func (q priceQuote) Validate() error {
	if q.Symbol == "" || q.Price == "" {
		return fmt.Errorf("price quote is missing symbol or price")
	}
	return nil
}

// tokenPriceSkill asks the configured price-oracle server for a spot
// price; the after-hook parses its raw envelope into a validated quote.
func tokenPriceSkill(oracle core.RemoteCaller) *skills.Skill {
	base := core.NewTool("token-price", "spot price from the price oracle",
		objectSchema(map[string]any{
			"tokenName": map[string]any{"type": "string"},
		}, "tokenName"),
		func(ctx context.Context, args map[string]any, ec *core.Context) (any, error) {
			return oracle.CallTool(ctx, "get-price", map[string]any{
				"symbol": args[hooks.ArgTokenName],
			})
		})

	return &skills.Skill{
		Name:        "token-price",
		Description: "Fetch the current spot price of a token from the price oracle.",
		Tags:        []string{"tokens", "prices"},
		InputSchema: base.InputSchema(),
		Tools: []core.Tool{core.WithHooks(base, core.Hooks{
			After: hooks.ParseAs[priceQuote](),
		})},
	}
}

func objectSchema(properties map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func formatUnits(raw *big.Int, decimals int) string {
	if decimals <= 0 {
		return raw.String()
	}
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	value := new(big.Rat).SetFrac(raw, scale)
	out := value.FloatString(decimals)
	out = trimRight(out)
	return out
}

func trimRight(s string) string {
	for len(s) > 0 && s[len(s)-1] == '0' {
		s = s[:len(s)-1]
	}
	if len(s) > 0 && s[len(s)-1] == '.' {
		s = s[:len(s)-1]
	}
	return s
}
