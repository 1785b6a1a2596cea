package chain

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// ensRegistry is the ENS registry on mainnet.
var ensRegistry = common.HexToAddress("0x00000000000C2E074eC69A0dFb2997BA6C7d2e1e")

// NameHash computes the EIP-137 node of an ENS name.
func NameHash(name string) common.Hash {
	var node common.Hash

	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return node
	}

	labels := strings.Split(name, ".")
	for i := len(labels) - 1; i >= 0; i-- {
		label := crypto.Keccak256Hash([]byte(labels[i]))
		node = crypto.Keccak256Hash(node.Bytes(), label.Bytes())
	}

	return node
}

// IsENSName reports whether s looks like a resolvable ENS name.
func IsENSName(s string) bool {
	s = strings.TrimSpace(s)

	return strings.Contains(s, ".") && !strings.HasPrefix(s, ".") && !strings.HasSuffix(s, ".")
}

// AddressOrENS returns the lower-cased hex address of s, resolving ENS names on mainnet.
func AddressOrENS(ctx context.Context, src Source, s string) (string, error) {
	s = strings.TrimSpace(s)

	if common.IsHexAddress(s) {
		return strings.ToLower(common.HexToAddress(s).Hex()), nil
	}

	if !IsENSName(s) {
		return "", fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}

	r, err := src.Reader(ctx, MainnetID)
	if err != nil {
		return "", err
	}

	addr, err := r.ResolveENS(ctx, s)
	if err != nil {
		return "", err
	}

	return strings.ToLower(addr.Hex()), nil
}
