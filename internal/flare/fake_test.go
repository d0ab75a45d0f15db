package flare

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

type fakeMethod struct {
	method abi.Method
	fn     func(args []interface{}) ([]interface{}, error)
}

// fakeChain answers eth_call from registered handlers and executes aggregate3 itself.
type fakeChain struct {
	multicall common.Address
	methods   map[common.Address]map[string]fakeMethod
	calls     int
}

func newFakeChain(multicall common.Address) *fakeChain {
	return &fakeChain{multicall: multicall, methods: make(map[common.Address]map[string]fakeMethod)}
}

func (f *fakeChain) handle(to common.Address, parsed abi.ABI, name string, fn func(args []interface{}) ([]interface{}, error)) {
	method, ok := parsed.Methods[name]
	if !ok {
		panic("unknown method " + name)
	}
	if f.methods[to] == nil {
		f.methods[to] = make(map[string]fakeMethod)
	}
	f.methods[to][string(method.ID)] = fakeMethod{method: method, fn: fn}
}

func (f *fakeChain) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	f.calls++
	if msg.To == nil {
		return nil, errors.New("missing to")
	}
	mcABI, err := Multicall3ABI()
	if err != nil {
		return nil, err
	}
	aggregate := mcABI.Methods["aggregate3"]
	if *msg.To == f.multicall && len(msg.Data) >= 4 && string(msg.Data[:4]) == string(aggregate.ID) {
		return f.aggregate(aggregate, msg.Data[4:])
	}
	return f.invoke(*msg.To, msg.Data)
}

func (f *fakeChain) aggregate(method abi.Method, data []byte) ([]byte, error) {
	args, err := method.Inputs.Unpack(data)
	if err != nil {
		return nil, err
	}
	calls := *abi.ConvertType(args[0], new([]call3)).(*[]call3)
	results := make([]result3, 0, len(calls))
	for _, c := range calls {
		out, err := f.invoke(c.Target, c.CallData)
		if err != nil {
			if !c.AllowFailure {
				return nil, err
			}
			results = append(results, result3{Success: false, ReturnData: []byte{}})
			continue
		}
		results = append(results, result3{Success: true, ReturnData: out})
	}
	return method.Outputs.Pack(results)
}

func (f *fakeChain) invoke(to common.Address, data []byte) ([]byte, error) {
	if len(data) < 4 {
		return nil, errors.New("short calldata")
	}
	handler, ok := f.methods[to][string(data[:4])]
	if !ok {
		return nil, fmt.Errorf("execution reverted: no handler at %s", to.Hex())
	}
	args, err := handler.method.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, err
	}
	out, err := handler.fn(args)
	if err != nil {
		return nil, err
	}
	return handler.method.Outputs.Pack(out...)
}

func returns(values ...interface{}) func([]interface{}) ([]interface{}, error) {
	return func([]interface{}) ([]interface{}, error) {
		return values, nil
	}
}

func reverts(_ []interface{}) ([]interface{}, error) {
	return nil, errors.New("execution reverted")
}

func mustABI(parsed abi.ABI, err error) abi.ABI {
	if err != nil {
		panic(err)
	}
	return parsed
}

func bigInt(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("bad integer " + s)
	}
	return v
}

var (
	testMulticall = common.HexToAddress("0xcA11bde05977b3631167028862bE2a173976CA11")
	testRegistry  = common.HexToAddress("0xaD67FE66660Fb8dFE9d6b1b4240d8650e30F6019")
	testFtso      = common.HexToAddress("0x00000000000000000000000000000000000F7500")
	testFlareBet  = common.HexToAddress("0x00000000000000000000000000000000000B0001")
	testAccount   = common.HexToAddress("0x1111111111111111111111111111111111111111")
)
