package mt5

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"signal-copier-bot/internal/types"
)

func newBridgeServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Terminal) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv, New(Params{BridgeURL: srv.URL, Timeout: 2 * time.Second})
}

func TestStartChecksBridgeStatus(t *testing.T) {
	_, term := newBridgeServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/status" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"connected": true, "login": 12345, "server": "Demo-Server",
		})
	})

	if err := term.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStartFailsWhenDisconnected(t *testing.T) {
	_, term := newBridgeServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"connected": false})
	})

	if err := term.Start(context.Background()); err == nil {
		t.Fatal("expected an error for a disconnected bridge")
	}
}

func TestQuoteDecodesTick(t *testing.T) {
	_, term := newBridgeServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("symbol"); got != "XAUUSD" {
			t.Errorf("expected symbol query XAUUSD, got %q", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"symbol": "XAUUSD", "bid": 2300.00, "ask": 2300.03, "time": 1700000000,
		})
	})

	quote, err := term.Quote(context.Background(), "XAUUSD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !quote.Bid.Equal(decimal.RequireFromString("2300")) {
		t.Errorf("expected bid 2300, got %s", quote.Bid)
	}
	if !quote.Ask.Equal(decimal.RequireFromString("2300.03")) {
		t.Errorf("expected ask 2300.03, got %s", quote.Ask)
	}
}

func TestPositionsMapsSides(t *testing.T) {
	_, term := newBridgeServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]map[string]any{
			{"ticket": 11, "symbol": "XAUUSD", "type": "buy", "volume": 0.1, "price_open": 2300.0},
			{"ticket": 12, "symbol": "XAUUSD", "type": "sell", "volume": 0.2, "price_open": 2310.0},
		})
	})

	positions, err := term.Positions(context.Background(), "XAUUSD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(positions) != 2 {
		t.Fatalf("expected 2 positions, got %d", len(positions))
	}
	if positions[0].Side != types.ActionBuy {
		t.Errorf("expected first position long, got %s", positions[0].Side)
	}
	if positions[1].Side != types.ActionSell {
		t.Errorf("expected second position short, got %s", positions[1].Side)
	}
}

func TestSendOrderRoundTrip(t *testing.T) {
	_, term := newBridgeServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/order" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req types.OrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode order: %v", err)
		}
		if req.Magic != types.Magic {
			t.Errorf("expected magic %d, got %d", types.Magic, req.Magic)
		}
		json.NewEncoder(w).Encode(types.OrderResult{
			RetCode: types.RetCodeDone, Order: 42, Deal: 43, Comment: "done",
		})
	})

	result, err := term.SendOrder(context.Background(), types.OrderRequest{
		Symbol: "XAUUSD",
		Side:   types.ActionBuy,
		Volume: decimal.RequireFromString("0.1"),
		Price:  decimal.RequireFromString("2300.03"),
		Magic:  types.Magic,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Done() {
		t.Errorf("expected confirmed fill, got retcode %d", result.RetCode)
	}
	if result.Order != 42 {
		t.Errorf("expected order 42, got %d", result.Order)
	}
}

func TestErrorStatusSurfacesBody(t *testing.T) {
	_, term := newBridgeServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "terminal busy", http.StatusServiceUnavailable)
	})

	if _, err := term.Account(context.Background()); err == nil {
		t.Fatal("expected an error for a 503 response")
	}
}
