package chain

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	agenterrors "github.com/chainweave/agentkit/pkg/errors"
)

func testRegistry() *TokenRegistry {
	return NewTokenRegistry(map[string][]Deployment{
		"USDC": {
			{ChainID: "1", Address: "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48", Decimals: 6},
			{ChainID: "42161", Address: "0xaf88d065e77c8cc2239327c5edb3a432268e5831", Decimals: 6},
		},
		"weth": {
			{ChainID: "1", Address: "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2", Decimals: 18},
		},
	})
}

func TestTokenRegistry_UnknownSymbol(t *testing.T) {
	reg := testRegistry()
	_, err := reg.Deployments("FAKE")
	var ae *agenterrors.AgentError
	if !errors.As(err, &ae) || ae.Name != agenterrors.NameTokenNotFound {
		t.Fatalf("expected TokenNotFound, got %v", err)
	}
	if ae.Message != `token "FAKE" is not supported` {
		t.Errorf("unexpected message %q", ae.Message)
	}
}

func TestTokenRegistry_CaseInsensitive(t *testing.T) {
	reg := testRegistry()
	for _, symbol := range []string{"usdc", "USDC", "Usdc"} {
		if _, err := reg.Deployments(symbol); err != nil {
			t.Errorf("Deployments(%q) = %v, want nil", symbol, err)
		}
	}
	// Lowercase registration is matched too.
	if _, err := reg.Resolve("WETH", ""); err != nil {
		t.Errorf("Resolve(WETH) = %v, want nil", err)
	}
}

func TestTokenRegistry_ResolveSingleDeployment(t *testing.T) {
	reg := testRegistry()
	d, err := reg.Resolve("WETH", "")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if d.ChainID != "1" || d.Decimals != 18 {
		t.Errorf("unexpected deployment %+v", d)
	}
}

func TestTokenRegistry_ResolveAmbiguousNeedsChain(t *testing.T) {
	reg := testRegistry()
	_, err := reg.Resolve("USDC", "")
	var ae *agenterrors.AgentError
	if !errors.As(err, &ae) || ae.Name != agenterrors.NameValidation {
		t.Fatalf("expected a validation error, got %v", err)
	}
	chains, _ := ae.Details["chains"].([]string)
	if !reflect.DeepEqual(chains, []string{"1", "42161"}) {
		t.Errorf("chains detail = %v, want both chain ids", chains)
	}

	d, err := reg.Resolve("USDC", "42161")
	if err != nil {
		t.Fatalf("resolve with chain: %v", err)
	}
	if d.Address != "0xaf88d065e77c8cc2239327c5edb3a432268e5831" {
		t.Errorf("unexpected deployment %+v", d)
	}
}

func TestTokenRegistry_ResolveUnknownChain(t *testing.T) {
	reg := testRegistry()
	_, err := reg.Resolve("USDC", "10")
	var ae *agenterrors.AgentError
	if !errors.As(err, &ae) || ae.Name != agenterrors.NameTokenNotFound {
		t.Errorf("expected TokenNotFound for unknown chain, got %v", err)
	}
}

func TestLoadTokenRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.yaml")
	content := `tokens:
  USDC:
    - chainId: "1"
      address: "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"
      decimals: 6
    - chainId: "42161"
      address: "0xaf88d065e77c8cc2239327c5edb3a432268e5831"
      decimals: 6
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	reg, err := LoadTokenRegistry(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	deployments, err := reg.Deployments("usdc")
	if err != nil {
		t.Fatalf("deployments: %v", err)
	}
	if len(deployments) != 2 {
		t.Fatalf("expected 2 deployments, got %d", len(deployments))
	}
	if deployments[0].Decimals != 6 {
		t.Errorf("decimals = %d, want 6", deployments[0].Decimals)
	}
	if got := reg.Symbols(); !reflect.DeepEqual(got, []string{"USDC"}) {
		t.Errorf("symbols = %v", got)
	}
}

func TestLoadTokenRegistry_MissingFile(t *testing.T) {
	_, err := LoadTokenRegistry(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
