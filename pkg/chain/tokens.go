package chain

import (
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	agenterrors "github.com/chainweave/agentkit/pkg/errors"
)

// Deployment is one on-chain deployment of a token.
type Deployment struct {
	ChainID  string `yaml:"chainId" json:"chainId"`
	Address  string `yaml:"address" json:"address"`
	Decimals int    `yaml:"decimals" json:"decimals"`
}

// TokenRegistry maps token symbols to their known deployments. Symbols
// are matched case-insensitively.
type TokenRegistry struct {
	tokens map[string][]Deployment
}

type tokenFile struct {
	Tokens map[string][]Deployment `yaml:"tokens"`
}

// LoadTokenRegistry reads a YAML token list of the form:
//
//	tokens:
//	  USDC:
//	    - chainId: "1"
//	      address: "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"
//	      decimals: 6
func LoadTokenRegistry(path string) (*TokenRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, agenterrors.NewInternal("read token registry", err).WithDetail("path", path)
	}
	var file tokenFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, agenterrors.NewInternal("parse token registry", err).WithDetail("path", path)
	}
	return NewTokenRegistry(file.Tokens), nil
}

// NewTokenRegistry builds a registry from an in-memory symbol map.
func NewTokenRegistry(tokens map[string][]Deployment) *TokenRegistry {
	normalized := make(map[string][]Deployment, len(tokens))
	for symbol, deployments := range tokens {
		normalized[strings.ToUpper(symbol)] = deployments
	}
	return &TokenRegistry{tokens: normalized}
}

// Deployments returns every known deployment of a symbol, or a
// TokenNotFound error for an unknown one.
func (r *TokenRegistry) Deployments(symbol string) ([]Deployment, error) {
	deployments, ok := r.tokens[strings.ToUpper(symbol)]
	if !ok || len(deployments) == 0 {
		return nil, agenterrors.NewTokenNotFound(symbol)
	}
	out := make([]Deployment, len(deployments))
	copy(out, deployments)
	return out, nil
}

// Resolve returns the deployment of symbol on a specific chain. An empty
// chainID resolves only when the symbol has exactly one deployment.
func (r *TokenRegistry) Resolve(symbol, chainID string) (Deployment, error) {
	deployments, err := r.Deployments(symbol)
	if err != nil {
		return Deployment{}, err
	}
	if chainID == "" {
		if len(deployments) == 1 {
			return deployments[0], nil
		}
		return Deployment{}, agenterrors.NewValidation("token is deployed on multiple chains, chainId is required").
			WithDetail("symbol", symbol).
			WithDetail("chains", chainIDs(deployments))
	}
	for _, d := range deployments {
		if d.ChainID == chainID {
			return d, nil
		}
	}
	return Deployment{}, agenterrors.NewTokenNotFound(symbol).WithDetail("chainId", chainID)
}

// Symbols returns the registered symbols, sorted.
func (r *TokenRegistry) Symbols() []string {
	out := make([]string, 0, len(r.tokens))
	for symbol := range r.tokens {
		out = append(out, symbol)
	}
	sort.Strings(out)
	return out
}

func chainIDs(deployments []Deployment) []string {
	out := make([]string, len(deployments))
	for i, d := range deployments {
		out[i] = d.ChainID
	}
	sort.Strings(out)
	return out
}
