package components

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/treb-registry/internal/domain"
	"github.com/trebuchet-org/treb-registry/internal/host"
)

const TokenArtifact = "Token"

var tokenSymbolSlot = host.Slot("token", "symbol")

// Token is a leaf component with no dependencies. It does not expose the
// dependency entry point.
type Token struct{}

func (Token) Artifact() string { return TokenArtifact }

func (Token) Invoke(call *host.Call) (any, error) {
	switch call.Method {
	case "initialize":
		if call.Storage.Get(tokenSymbolSlot) != (common.Hash{}) {
			return nil, domain.Revert(TokenArtifact, domain.ErrUnauthorized, "already initialized")
		}
		symbol, ok := call.Input.(string)
		if !ok || symbol == "" || len(symbol) > 32 {
			return nil, domain.Revert(TokenArtifact, domain.ErrInvalidArgument, "initialize expects a symbol of 1 to 32 bytes")
		}
		call.Storage.Set(tokenSymbolSlot, common.BytesToHash([]byte(symbol)))
		return nil, nil
	case "symbol":
		return symbolOf(call.Storage), nil
	case "decimals":
		return uint64(18), nil
	}
	return nil, unknownMethod(TokenArtifact, call.Method)
}

func symbolOf(s host.StorageReader) string {
	b := s.Get(tokenSymbolSlot).Bytes()
	i := 0
	for i < len(b) && b[i] == 0 {
		i++
	}
	return string(b[i:])
}
