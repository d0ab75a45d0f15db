package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

func runMarkets(cmd *cobra.Command, _ []string) error {
	ctx, stop := signalContext()
	defer stop()

	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	p := a.newPoller(nil, nil)
	if _, err := p.PollPrices(ctx); err != nil {
		return err
	}
	views, err := p.PollMarkets(ctx)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	for _, view := range views {
		if err := enc.Encode(view); err != nil {
			return err
		}
	}
	return nil
}
