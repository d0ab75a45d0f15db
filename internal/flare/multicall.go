package flare

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// ErrCallReverted marks a batched call that the target reverted.
var ErrCallReverted = errors.New("call reverted")

// Call is one contract read inside a Multicall3 batch.
type Call struct {
	Target common.Address
	ABI    abi.ABI
	Method string
	Args   []interface{}
}

// CallResult is the decoded outcome of a single batched call.
type CallResult struct {
	Values []interface{}
	Err    error
}

// OK reports whether the call succeeded and returned at least one value.
func (r CallResult) OK() bool {
	return r.Err == nil && len(r.Values) > 0
}

type call3 struct {
	Target       common.Address
	AllowFailure bool
	CallData     []byte
}

type result3 struct {
	Success    bool
	ReturnData []byte
}

// Multicall batches reads through a Multicall3 deployment.
type Multicall struct {
	caller  Caller
	address common.Address
}

// NewMulticall builds a batcher for the Multicall3 contract at address.
func NewMulticall(caller Caller, address common.Address) *Multicall {
	return &Multicall{caller: caller, address: address}
}

// Aggregate runs calls in one aggregate3 eth_call. Individual failures are
// reported per result; the error return covers the batch as a whole.
func (m *Multicall) Aggregate(ctx context.Context, calls []Call) ([]CallResult, error) {
	if len(calls) == 0 {
		return nil, nil
	}
	if m.caller == nil {
		return nil, fmt.Errorf("chain client is nil")
	}
	mcABI, err := Multicall3ABI()
	if err != nil {
		return nil, fmt.Errorf("parse multicall abi: %w", err)
	}

	packed := make([]call3, 0, len(calls))
	for _, c := range calls {
		data, err := c.ABI.Pack(c.Method, c.Args...)
		if err != nil {
			return nil, fmt.Errorf("pack %s: %w", c.Method, err)
		}
		packed = append(packed, call3{Target: c.Target, AllowFailure: true, CallData: data})
	}

	input, err := mcABI.Pack("aggregate3", packed)
	if err != nil {
		return nil, fmt.Errorf("pack aggregate3: %w", err)
	}
	resp, err := m.caller.CallContract(ctx, ethereum.CallMsg{To: &m.address, Data: input}, nil)
	if err != nil {
		return nil, fmt.Errorf("call aggregate3: %w", err)
	}
	values, err := mcABI.Unpack("aggregate3", resp)
	if err != nil {
		return nil, fmt.Errorf("unpack aggregate3: %w", err)
	}
	if len(values) != 1 {
		return nil, fmt.Errorf("unexpected aggregate3 values: %d", len(values))
	}

	raw := *abi.ConvertType(values[0], new([]result3)).(*[]result3)
	return decodeResults(calls, raw)
}

func decodeResults(calls []Call, raw []result3) ([]CallResult, error) {
	if len(raw) != len(calls) {
		return nil, fmt.Errorf("aggregate3 returned %d results for %d calls", len(raw), len(calls))
	}
	out := make([]CallResult, len(calls))
	for i, c := range calls {
		if !raw[i].Success {
			out[i].Err = fmt.Errorf("%s on %s: %w", c.Method, c.Target.Hex(), ErrCallReverted)
			continue
		}
		values, err := c.ABI.Unpack(c.Method, raw[i].ReturnData)
		if err != nil {
			out[i].Err = fmt.Errorf("unpack %s: %w", c.Method, err)
			continue
		}
		out[i].Values = values
	}
	return out, nil
}
