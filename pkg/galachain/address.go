package galachain

import "strings"

// AddressPrefixes lists the accepted wallet address namespaces.
var AddressPrefixes = []string{"client|", "eth|"}

// NormalizeAddress trims surrounding whitespace and checks the prefix.
func NormalizeAddress(address string) (string, error) {
	address = strings.TrimSpace(address)
	for _, prefix := range AddressPrefixes {
		if strings.HasPrefix(address, prefix) && len(address) > len(prefix) {
			return address, nil
		}
	}
	return "", ErrInvalidAddress
}
