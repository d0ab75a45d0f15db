package indexer

import (
	"fmt"
	"math"
)

// maxLogWindow is the widest eth_getLogs span public Flare RPC nodes serve.
const maxLogWindow = 30

// scanWindow is an inclusive block span read with one eth_getLogs call.
type scanWindow struct {
	From uint64
	To   uint64
}

// planWindows covers [from, to] with consecutive windows of at most size
// blocks, size being clamped to maxLogWindow. When resume is set and last is at
// or past from, scanning starts at the block after last. An empty plan means
// there is nothing left to scan.
func planWindows(from, to, size, last uint64, resume bool) ([]scanWindow, error) {
	if size == 0 {
		return nil, fmt.Errorf("batch size must be greater than zero")
	}
	if size > maxLogWindow {
		size = maxLogWindow
	}
	if resume && last >= from {
		if last == math.MaxUint64 {
			return nil, nil
		}
		from = last + 1
	}
	if from > to {
		return nil, nil
	}

	var windows []scanWindow
	for start := from; ; start += size {
		end := to
		if to-start >= size {
			end = start + size - 1
		}
		windows = append(windows, scanWindow{From: start, To: end})
		if end == to {
			return windows, nil
		}
	}
}
