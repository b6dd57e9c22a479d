package interfaces

import (
	"context"

	"signal-copier-bot/internal/types"
)

// Terminal is the brokerage terminal the executor trades against.
type Terminal interface {
	// Start connects and logs in. Failure here is fatal to startup.
	Start(ctx context.Context) error
	Stop(ctx context.Context)

	Account(ctx context.Context) (types.Account, error)
	Quote(ctx context.Context, symbol string) (types.Quote, error)
	SymbolInfo(ctx context.Context, symbol string) (types.SymbolInfo, error)
	// Positions returns open positions; an empty symbol means all symbols.
	Positions(ctx context.Context, symbol string) ([]types.Position, error)
	SendOrder(ctx context.Context, req types.OrderRequest) (types.OrderResult, error)
}
