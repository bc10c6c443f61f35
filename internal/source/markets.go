package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/gommon/log"
	"uk.co.dudmesh.herald/internal/model"
)

const (
	defaultFearGreedURL = "https://api.alternative.me/fng/"
	defaultCoinGeckoURL = "https://api.coingecko.com/api/v3"
	defaultChartURL     = "https://query1.finance.yahoo.com/v8/finance/chart"
)

type instrument struct {
	ticker string
	label  string
}

var usInstruments = []instrument{
	{"^GSPC", "S&P 500"},
	{"^DJI", "Dow Jones"},
	{"^IXIC", "Nasdaq"},
}

var chineseInstruments = []instrument{
	{"000001.SS", "Shanghai"},
	{"^HSI", "Hang Seng"},
	{"BABA", "Alibaba"},
}

var cryptoIDs = []string{"bitcoin", "ethereum", "binancecoin", "solana"}

var fallbackUSIndices = []model.Quote{
	{Label: "S&P 500", Price: 5800, Change: 0.5},
	{Label: "Dow Jones", Price: 43000, Change: 0.3},
	{Label: "Nasdaq", Price: 18500, Change: 0.8},
}

var fallbackChineseIndices = []model.Quote{
	{Label: "Shanghai", Price: 3200, Change: 0.4},
	{Label: "Hang Seng", Price: 20500, Change: 0.6},
	{Label: "Alibaba", Price: 95, Change: 1.2},
}

var fallbackCrypto = []model.Quote{
	{Label: "BTC", Price: 68000, Change: 2.0},
	{Label: "ETH", Price: 3500, Change: 1.5},
	{Label: "BNB", Price: 590, Change: 1.0},
	{Label: "SOL", Price: 180, Change: 0.8},
}

type Markets struct {
	httpClient   *http.Client
	fearGreedURL string
	coinGeckoURL string
	chartURL     string
}

func NewMarkets() *Markets {
	return &Markets{
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		fearGreedURL: defaultFearGreedURL,
		coinGeckoURL: defaultCoinGeckoURL,
		chartURL:     defaultChartURL,
	}
}

// Fetch assembles the market snapshot for a locale: sentiment index, local
// equity instruments and top crypto assets. Any upstream failure falls back
// to the static quotes for that component.
func (s *Markets) Fetch(ctx context.Context, lang model.Language) (model.MarketPayload, model.Provenance) {
	provenance := model.ProvenanceLive

	sentimentValue, sentimentName, err := s.fetchFearGreed(ctx)
	if err != nil {
		log.Warnf("fetching sentiment index: %v", err)
		sentimentValue, sentimentName = 50, "Neutral"
		provenance = model.ProvenanceFallback
	}

	instruments, fallbackIndices := usInstruments, fallbackUSIndices
	cryptoLimit := 4
	if lang == model.LanguageSecondary {
		instruments, fallbackIndices = chineseInstruments, fallbackChineseIndices
		cryptoLimit = 3
	}

	indices := s.fetchIndices(ctx, instruments)
	if len(indices) == 0 {
		log.Warnf("no index quotes fetched, using fallback set")
		indices = fallbackIndices
		provenance = model.ProvenanceFallback
	}

	crypto, err := s.fetchCrypto(ctx, cryptoLimit)
	if err != nil {
		log.Warnf("fetching crypto quotes: %v", err)
		crypto = fallbackCrypto[:cryptoLimit]
		provenance = model.ProvenanceFallback
	}

	return model.MarketPayload{
		SentimentValue: sentimentValue,
		SentimentName:  sentimentName,
		Indices:        indices,
		Crypto:         crypto,
	}, provenance
}

func (s *Markets) fetchFearGreed(ctx context.Context) (int, string, error) {
	body, err := s.get(ctx, s.fearGreedURL)
	if err != nil {
		return 0, "", err
	}

	var parsed struct {
		Data []struct {
			Value          string `json:"value"`
			Classification string `json:"value_classification"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return 0, "", fmt.Errorf("unmarshalling sentiment: %w", err)
	}
	if len(parsed.Data) == 0 {
		return 0, "", fmt.Errorf("sentiment response has no data")
	}

	var value int
	if _, err := fmt.Sscanf(parsed.Data[0].Value, "%d", &value); err != nil {
		return 0, "", fmt.Errorf("parsing sentiment value %q: %w", parsed.Data[0].Value, err)
	}

	return value, parsed.Data[0].Classification, nil
}

// fetchIndices collects whatever equity quotes it can; missing instruments
// are logged and skipped rather than failing the whole set.
func (s *Markets) fetchIndices(ctx context.Context, instruments []instrument) []model.Quote {
	var quotes []model.Quote
	for _, inst := range instruments {
		quote, err := s.fetchChartQuote(ctx, inst)
		if err != nil {
			log.Warnf("fetching %s: %v", inst.label, err)
			continue
		}
		quotes = append(quotes, quote)
	}
	return quotes
}

func (s *Markets) fetchChartQuote(ctx context.Context, inst instrument) (model.Quote, error) {
	endpoint := fmt.Sprintf("%s/%s?range=2d&interval=1d", s.chartURL, url.PathEscape(inst.ticker))
	body, err := s.get(ctx, endpoint)
	if err != nil {
		return model.Quote{}, err
	}

	var parsed struct {
		Chart struct {
			Result []struct {
				Meta struct {
					RegularMarketPrice float64 `json:"regularMarketPrice"`
					PreviousClose      float64 `json:"chartPreviousClose"`
				} `json:"meta"`
			} `json:"result"`
		} `json:"chart"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return model.Quote{}, fmt.Errorf("unmarshalling chart: %w", err)
	}
	if len(parsed.Chart.Result) == 0 {
		return model.Quote{}, fmt.Errorf("chart response has no result")
	}

	meta := parsed.Chart.Result[0].Meta
	if meta.PreviousClose == 0 {
		return model.Quote{}, fmt.Errorf("chart response missing previous close")
	}

	change := (meta.RegularMarketPrice - meta.PreviousClose) / meta.PreviousClose * 100
	return model.Quote{Label: inst.label, Price: meta.RegularMarketPrice, Change: change}, nil
}

func (s *Markets) fetchCrypto(ctx context.Context, limit int) ([]model.Quote, error) {
	params := url.Values{}
	params.Set("vs_currency", "usd")
	params.Set("ids", strings.Join(cryptoIDs[:limit], ","))
	params.Set("order", "market_cap_desc")
	params.Set("per_page", fmt.Sprintf("%d", limit))
	params.Set("price_change_percentage", "24h")

	body, err := s.get(ctx, s.coinGeckoURL+"/coins/markets?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var parsed []struct {
		Symbol    string  `json:"symbol"`
		Price     float64 `json:"current_price"`
		Change24h float64 `json:"price_change_percentage_24h"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshalling crypto quotes: %w", err)
	}
	if len(parsed) == 0 {
		return nil, fmt.Errorf("crypto response has no assets")
	}

	var quotes []model.Quote
	for _, asset := range parsed {
		if len(quotes) == limit {
			break
		}
		quotes = append(quotes, model.Quote{
			Label:  strings.ToUpper(asset.Symbol),
			Price:  asset.Price,
			Change: asset.Change24h,
		})
	}
	return quotes, nil
}

func (s *Markets) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("endpoint returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return body, nil
}
