package web3

import (
	"testing"

	xerrors "EthMCP-Wallet/internal/errors"
)

const checksummed = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"

func TestNormalizeAddressAcceptsValidForms(t *testing.T) {
	cases := []string{
		checksummed,
		"0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed",
		"0x5AAEB6053F3E94C9B9A09F33669435E7EF1BEAED",
		"5aaeb6053f3e94c9b9a09f33669435e7ef1beaed", // missing 0x prefix
		"0X" + checksummed[2:],                     // uppercase prefix, valid checksum body
		"  " + checksummed + "  ",
	}
	for _, input := range cases {
		got, err := NormalizeAddress(input)
		if err != nil {
			t.Fatalf("NormalizeAddress(%q): %v", input, err)
		}
		if got.Hex() != checksummed {
			t.Fatalf("NormalizeAddress(%q) = %s, want %s", input, got.Hex(), checksummed)
		}
	}
}

func TestNormalizeAddressRejectsInvalidInput(t *testing.T) {
	cases := []string{
		"",
		"0x123",
		"not-an-address",
		"0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAeg",
		// checksum violation: first letter lowercased
		"0x5aaeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
	}
	for _, input := range cases {
		_, err := NormalizeAddress(input)
		if err == nil {
			t.Fatalf("NormalizeAddress(%q): expected error", input)
		}
		if xerrors.CodeOf(err) != xerrors.CodeInvalidAddress {
			t.Fatalf("NormalizeAddress(%q): code = %s, want INVALID_ADDRESS", input, xerrors.CodeOf(err))
		}
	}
}
