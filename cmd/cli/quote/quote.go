package quote

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/spf13/cobra"
	"github.com/tbraden/quoteboard/cmd/cli/config"
	"github.com/tbraden/quoteboard/cmd/cli/output"
	"github.com/tbraden/quoteboard/cmd/cli/root"
	"github.com/tbraden/quoteboard/internal/middleware"
	"github.com/tbraden/quoteboard/internal/models"
)

// ==========================
// CLI Command Init
// ==========================
func init() {
	root.GetRoot().AddCommand(quoteCmd())
}

func quoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "quote SYMBOL",
		Short: "Look up a real-time stock quote",
		Long:  "Fetch the current quote for a stock symbol. Requires a stored session (run `quoteboard users signin` first).",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			symbol := args[0]

			token, err := config.LoadToken()
			if err != nil {
				return err
			}
			if token == "" {
				return fmt.Errorf("not signed in; run `quoteboard users signin` first")
			}

			q, err := fetchQuote(symbol, token)
			if err != nil {
				return err
			}

			output.RenderTable(
				[]string{"Symbol", "Current", "Open", "High", "Low", "Prev Close", "Time"},
				[][]interface{}{{
					q.Symbol,
					q.CurrentPrice,
					q.OpenPrice,
					q.HighPrice,
					q.LowPrice,
					q.PreviousClose,
					time.Unix(q.Timestamp, 0).UTC().Format(time.RFC3339),
				}},
			)
			return nil
		},
	}
}

func fetchQuote(symbol, token string) (*models.Quote, error) {
	req, err := http.NewRequest("GET", config.APIURL()+"/api/stock/quote?symbol="+url.QueryEscape(symbol), nil)
	if err != nil {
		return nil, err
	}
	req.AddCookie(&http.Cookie{Name: middleware.CookieName, Value: token})

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API error: %s", string(b))
	}

	var q models.Quote
	if err := json.NewDecoder(resp.Body).Decode(&q); err != nil {
		return nil, err
	}
	return &q, nil
}
