package swap

import (
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

var solanaAddress = regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]{32,44}$`)

func ValidNano(address string) bool {
	return len(address) >= 65 && strings.HasPrefix(address, "nano_")
}

func ValidBanano(address string) bool {
	return len(address) >= 64 && strings.HasPrefix(address, "ban_")
}

// ValidSolana checks the base58 alphabet and length of a Solana address.
func ValidSolana(address string) bool {
	return solanaAddress.MatchString(address)
}

// ValidPolygon accepts 0x-prefixed 20-byte hex addresses. IsHexAddress
// alone would also take "0X" and unprefixed forms.
func ValidPolygon(address string) bool {
	return strings.HasPrefix(address, "0x") && common.IsHexAddress(address)
}

// ValidateAll is false for an empty list.
func ValidateAll(addresses []string, valid Validator) bool {
	if len(addresses) == 0 {
		return false
	}
	for _, address := range addresses {
		if !valid(address) {
			return false
		}
	}
	return true
}

// ParseAddresses splits a line of whitespace-separated addresses.
func ParseAddresses(line string) []string {
	return strings.Fields(line)
}
