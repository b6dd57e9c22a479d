// Package mt5 talks to a MetaTrader 5 terminal through its HTTP bridge.
// The bridge runs next to the terminal and exposes account, market data
// and order endpoints as JSON.
package mt5

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"signal-copier-bot/internal/logger"
	"signal-copier-bot/internal/types"
)

type Params struct {
	BridgeURL string
	Timeout   time.Duration
}

type Terminal struct {
	baseURL    string
	httpClient *http.Client
}

func New(p Params) *Terminal {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Terminal{
		baseURL: p.BridgeURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Start verifies the bridge is reachable and logged in to a terminal.
func (t *Terminal) Start(ctx context.Context) error {
	var status struct {
		Connected bool   `json:"connected"`
		Login     int64  `json:"login"`
		Server    string `json:"server"`
	}
	if err := t.getJSON(ctx, "/status", nil, &status); err != nil {
		return fmt.Errorf("bridge unreachable at %s: %w", t.baseURL, err)
	}
	if !status.Connected {
		return fmt.Errorf("bridge at %s is not connected to a terminal", t.baseURL)
	}

	logger.Info(ctx, "Terminal bridge connected",
		"bridge_url", t.baseURL, "login", status.Login, "server", status.Server)
	return nil
}

func (t *Terminal) Stop(ctx context.Context) {
	t.httpClient.CloseIdleConnections()
}

func (t *Terminal) Account(ctx context.Context) (types.Account, error) {
	var dto struct {
		Balance  decimal.Decimal `json:"balance"`
		Equity   decimal.Decimal `json:"equity"`
		Currency string          `json:"currency"`
	}
	if err := t.getJSON(ctx, "/account", nil, &dto); err != nil {
		return types.Account{}, fmt.Errorf("failed to fetch account: %w", err)
	}
	return types.Account{Balance: dto.Balance, Equity: dto.Equity, Currency: dto.Currency}, nil
}

func (t *Terminal) Quote(ctx context.Context, symbol string) (types.Quote, error) {
	var dto struct {
		Symbol string          `json:"symbol"`
		Bid    decimal.Decimal `json:"bid"`
		Ask    decimal.Decimal `json:"ask"`
		Time   int64           `json:"time"`
	}
	q := url.Values{"symbol": {symbol}}
	if err := t.getJSON(ctx, "/tick", q, &dto); err != nil {
		return types.Quote{}, fmt.Errorf("failed to fetch tick for %s: %w", symbol, err)
	}
	return types.Quote{
		Symbol: dto.Symbol,
		Bid:    dto.Bid,
		Ask:    dto.Ask,
		Time:   time.Unix(dto.Time, 0).UTC(),
	}, nil
}

func (t *Terminal) SymbolInfo(ctx context.Context, symbol string) (types.SymbolInfo, error) {
	var dto struct {
		Name   string          `json:"name"`
		Point  decimal.Decimal `json:"point"`
		Digits int32           `json:"digits"`
	}
	q := url.Values{"symbol": {symbol}}
	if err := t.getJSON(ctx, "/symbol", q, &dto); err != nil {
		return types.SymbolInfo{}, fmt.Errorf("failed to fetch symbol info for %s: %w", symbol, err)
	}
	return types.SymbolInfo{Name: dto.Name, Point: dto.Point, Digits: dto.Digits}, nil
}

func (t *Terminal) Positions(ctx context.Context, symbol string) ([]types.Position, error) {
	var dtos []struct {
		Ticket       int64           `json:"ticket"`
		Symbol       string          `json:"symbol"`
		Type         string          `json:"type"`
		Volume       decimal.Decimal `json:"volume"`
		PriceOpen    decimal.Decimal `json:"price_open"`
		PriceCurrent decimal.Decimal `json:"price_current"`
		Profit       decimal.Decimal `json:"profit"`
	}
	q := url.Values{}
	if symbol != "" {
		q.Set("symbol", symbol)
	}
	if err := t.getJSON(ctx, "/positions", q, &dtos); err != nil {
		return nil, fmt.Errorf("failed to fetch positions: %w", err)
	}

	positions := make([]types.Position, 0, len(dtos))
	for _, d := range dtos {
		side := types.ActionBuy
		if d.Type == "sell" {
			side = types.ActionSell
		}
		positions = append(positions, types.Position{
			Ticket:       d.Ticket,
			Symbol:       d.Symbol,
			Side:         side,
			Volume:       d.Volume,
			OpenPrice:    d.PriceOpen,
			CurrentPrice: d.PriceCurrent,
			Profit:       d.Profit,
		})
	}
	return positions, nil
}

func (t *Terminal) SendOrder(ctx context.Context, req types.OrderRequest) (types.OrderResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return types.OrderResult{}, fmt.Errorf("failed to encode order: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/order", bytes.NewReader(body))
	if err != nil {
		return types.OrderResult{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return types.OrderResult{}, fmt.Errorf("order request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return types.OrderResult{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return types.OrderResult{}, fmt.Errorf("bridge returned status %d: %s", resp.StatusCode, truncate(data, 200))
	}

	var result types.OrderResult
	if err := json.Unmarshal(data, &result); err != nil {
		return types.OrderResult{}, fmt.Errorf("failed to decode order result: %w", err)
	}
	return result, nil
}

func (t *Terminal) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	u := t.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bridge returned status %d: %s", resp.StatusCode, truncate(data, 200))
	}

	return json.Unmarshal(data, out)
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
