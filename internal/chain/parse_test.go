package chain

import (
	"reflect"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestParseAddresses(t *testing.T) {
	got, err := ParseAddresses([]string{" 0x1111111111111111111111111111111111111111", "", "0x2222222222222222222222222222222222222222 "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []common.Address{
		common.HexToAddress("0x1111111111111111111111111111111111111111"),
		common.HexToAddress("0x2222222222222222222222222222222222222222"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("addresses mismatch: %v != %v", got, want)
	}
}

func TestParseAddressesInvalid(t *testing.T) {
	if _, err := ParseAddresses([]string{"0x1234"}); err == nil {
		t.Fatalf("expected error for short address")
	}
}

func TestParseTxHash(t *testing.T) {
	input := "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	got, err := ParseTxHash(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != common.HexToHash(input) {
		t.Fatalf("hash = %s", got.Hex())
	}

	for _, bad := range []string{"", "0x12", "aaaa", "0xzz"} {
		if _, err := ParseTxHash(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}
