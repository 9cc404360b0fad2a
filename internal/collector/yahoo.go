package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"stockanalyzer/internal/model"
)

// YahooProvider implements Provider using the Yahoo Finance public API:
// the v8 chart endpoint for price history and corporate events, and the
// v10 quoteSummary endpoint for fundamentals.
type YahooProvider struct {
	Client  *http.Client
	BaseURL string

	limiter *rate.Limiter
	logger  zerolog.Logger
}

// NewYahooProvider creates a new Yahoo Finance provider with optional proxy
// support and a modest request rate limit.
func NewYahooProvider(proxyURL string) *YahooProvider {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &YahooProvider{
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		BaseURL: "https://query1.finance.yahoo.com",
		limiter: rate.NewLimiter(rate.Every(time.Second), 5),
		logger:  log.With().Str("component", "yahoo").Logger(),
	}
}

func (p *YahooProvider) Name() string { return "yahoo" }

type yahooAPIError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// yahooValue is Yahoo's {raw, fmt} number wrapper.
type yahooValue struct {
	Raw *json.Number `json:"raw"`
	Fmt string       `json:"fmt"`
}

// yahooChart is the response structure from the v8 chart endpoint.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				ExchangeTimezoneName string `json:"exchangeTimezoneName"`
				Gmtoffset            int    `json:"gmtoffset"`
			} `json:"meta"`
			Timestamp []int64 `json:"timestamp"`
			Events    struct {
				Dividends map[string]struct {
					Amount float64 `json:"amount"`
					Date   int64   `json:"date"`
				} `json:"dividends"`
				Splits map[string]struct {
					Date        int64   `json:"date"`
					Numerator   float64 `json:"numerator"`
					Denominator float64 `json:"denominator"`
					SplitRatio  string  `json:"splitRatio"`
				} `json:"splits"`
			} `json:"events"`
			Indicators struct {
				Quote []struct {
					Open   []interface{} `json:"open"`
					High   []interface{} `json:"high"`
					Low    []interface{} `json:"low"`
					Close  []interface{} `json:"close"`
					Volume []interface{} `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *yahooAPIError `json:"error"`
	} `json:"chart"`
}

func toFloat(v interface{}) float64 {
	if v == nil {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}

// chartData is the parsed payload of one chart call.
type chartData struct {
	bars      []model.Bar
	loc       *time.Location
	dividends []eventPoint
	splits    []eventPoint
}

type eventPoint struct {
	time  time.Time
	value float64
}

func (p *YahooProvider) fetchChart(ctx context.Context, symbol, rng string, withEvents bool) (*chartData, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=%s",
		p.BaseURL, url.PathEscape(symbol), rng)
	if withEvents {
		u += "&events=div%7Csplit"
	}

	body, err := p.get(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("yahoo chart: %w", err)
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("yahoo chart decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return nil, fmt.Errorf("yahoo: no data returned for %s", symbol)
	}

	result := chart.Chart.Result[0]
	loc := time.UTC
	if result.Meta.ExchangeTimezoneName != "" {
		if l, err := time.LoadLocation(result.Meta.ExchangeTimezoneName); err == nil {
			loc = l
		}
	}
	if loc == time.UTC && result.Meta.Gmtoffset != 0 {
		loc = time.FixedZone("exchange", result.Meta.Gmtoffset)
	}

	data := &chartData{loc: loc}

	if len(result.Indicators.Quote) > 0 && len(result.Timestamp) > 0 {
		quote := result.Indicators.Quote[0]
		data.bars = make([]model.Bar, 0, len(result.Timestamp))
		for i, ts := range result.Timestamp {
			if i >= len(quote.Close) {
				break
			}
			o := toFloat(quote.Open[i])
			h := toFloat(quote.High[i])
			l := toFloat(quote.Low[i])
			c := toFloat(quote.Close[i])
			if o == 0 && h == 0 && l == 0 && c == 0 {
				continue // skip null bars (holidays etc.)
			}
			data.bars = append(data.bars, model.Bar{
				Time:   time.Unix(ts, 0).In(loc),
				Open:   o,
				High:   h,
				Low:    l,
				Close:  c,
				Volume: toFloat(quote.Volume[i]),
			})
		}
		sort.Slice(data.bars, func(i, j int) bool { return data.bars[i].Time.Before(data.bars[j].Time) })
	}

	for _, d := range result.Events.Dividends {
		data.dividends = append(data.dividends, eventPoint{time: time.Unix(d.Date, 0).In(loc), value: d.Amount})
	}
	sort.Slice(data.dividends, func(i, j int) bool { return data.dividends[i].time.Before(data.dividends[j].time) })

	for _, s := range result.Events.Splits {
		ratio := 0.0
		if s.Denominator != 0 {
			ratio = s.Numerator / s.Denominator
		}
		data.splits = append(data.splits, eventPoint{time: time.Unix(s.Date, 0).In(loc), value: ratio})
	}
	sort.Slice(data.splits, func(i, j int) bool { return data.splits[i].time.Before(data.splits[j].time) })

	return data, nil
}

// HistoricalBars fetches the daily price series for the requested period.
func (p *YahooProvider) HistoricalBars(ctx context.Context, symbol, period string) ([]model.Bar, error) {
	data, err := p.fetchChart(ctx, symbol, period, false)
	if err != nil {
		return nil, err
	}
	if len(data.bars) == 0 {
		return nil, fmt.Errorf("no historical data available for %s", symbol)
	}
	p.logger.Debug().Str("symbol", symbol).Int("count", len(data.bars)).Msg("fetched historical bars")
	return data.bars, nil
}

// statementModules maps data types to quoteSummary module and list key names.
var statementModules = map[string]struct{ module, listKey string }{
	"financials":              {"incomeStatementHistory", "incomeStatementHistory"},
	"quarterly_financials":    {"incomeStatementHistoryQuarterly", "incomeStatementHistory"},
	"balance_sheet":           {"balanceSheetHistory", "balanceSheetStatements"},
	"quarterly_balance_sheet": {"balanceSheetHistoryQuarterly", "balanceSheetStatements"},
	"cashflow":                {"cashflowStatementHistory", "cashflowStatements"},
	"quarterly_cashflow":      {"cashflowStatementHistoryQuarterly", "cashflowStatements"},
}

// FetchDataset fetches one auxiliary dataset as a tagged variant.
func (p *YahooProvider) FetchDataset(ctx context.Context, symbol, dataType string) (model.Dataset, error) {
	switch dataType {
	case "dividends":
		return p.fetchEvents(ctx, symbol, "Dividends")
	case "splits":
		return p.fetchEvents(ctx, symbol, "Stock Splits")
	case "info":
		return p.fetchInfo(ctx, symbol)
	default:
		mod, ok := statementModules[dataType]
		if !ok {
			return model.Dataset{}, fmt.Errorf("unknown data type %q", dataType)
		}
		return p.fetchStatements(ctx, symbol, dataType, mod.module, mod.listKey)
	}
}

func (p *YahooProvider) fetchEvents(ctx context.Context, symbol, column string) (model.Dataset, error) {
	data, err := p.fetchChart(ctx, symbol, "max", true)
	if err != nil {
		return model.Dataset{}, err
	}
	points := data.dividends
	if column == "Stock Splits" {
		points = data.splits
	}
	if len(points) == 0 {
		return model.EmptyDataset(), nil
	}

	index := make([]model.Value, len(points))
	values := make([]model.Value, len(points))
	for i, pt := range points {
		index[i] = model.TimeOf(pt.time)
		values[i] = model.Num(pt.value)
	}
	return model.TableDataset(&model.Table{
		IndexName: "Date",
		IndexType: model.ColTime,
		Index:     index,
		Columns:   []model.Column{{Name: column, Type: model.ColNumber, Values: values}},
	}), nil
}

// quoteSummary is the outer envelope of the v10 endpoint.
type quoteSummary struct {
	QuoteSummary struct {
		Result []map[string]json.RawMessage `json:"result"`
		Error  *yahooAPIError               `json:"error"`
	} `json:"quoteSummary"`
}

func (p *YahooProvider) fetchQuoteSummary(ctx context.Context, symbol, modules string) (map[string]json.RawMessage, error) {
	u := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=%s",
		p.BaseURL, url.PathEscape(symbol), modules)
	body, err := p.get(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("yahoo quoteSummary: %w", err)
	}
	var qs quoteSummary
	if err := json.Unmarshal(body, &qs); err != nil {
		return nil, fmt.Errorf("yahoo quoteSummary decode: %w", err)
	}
	if qs.QuoteSummary.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", qs.QuoteSummary.Error.Description)
	}
	if len(qs.QuoteSummary.Result) == 0 {
		return nil, nil
	}
	return qs.QuoteSummary.Result[0], nil
}

func (p *YahooProvider) fetchStatements(ctx context.Context, symbol, dataType, module, listKey string) (model.Dataset, error) {
	result, err := p.fetchQuoteSummary(ctx, symbol, module)
	if err != nil {
		return model.Dataset{}, err
	}
	raw, ok := result[module]
	if !ok {
		return model.EmptyDataset(), nil
	}

	var inner map[string]json.RawMessage
	if err := json.Unmarshal(raw, &inner); err != nil {
		return model.Dataset{}, fmt.Errorf("decode %s: %w", module, err)
	}
	var statements []map[string]json.RawMessage
	if listRaw, ok := inner[listKey]; ok {
		if err := json.Unmarshal(listRaw, &statements); err != nil {
			return model.Dataset{}, fmt.Errorf("decode %s.%s: %w", module, listKey, err)
		}
	}
	if len(statements) == 0 {
		return model.EmptyDataset(), nil
	}
	return model.TableDataset(statementsTable(dataType, statements)), nil
}

// statementsTable flattens a list of {field: {raw, fmt}} statements into a
// table indexed by period end date. Column order is alphabetical for
// determinism; endDate and maxAge bookkeeping fields are excluded.
func statementsTable(name string, statements []map[string]json.RawMessage) *model.Table {
	keySet := map[string]bool{}
	for _, st := range statements {
		for k := range st {
			if k == "endDate" || k == "maxAge" {
				continue
			}
			keySet[k] = true
		}
	}
	keys := make([]string, 0, len(keySet))
	for k := range keySet {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	t := &model.Table{
		Name:      name,
		IndexName: "endDate",
		IndexType: model.ColTime,
		Index:     make([]model.Value, len(statements)),
	}
	for i, st := range statements {
		t.Index[i] = decodeEndDate(st["endDate"])
	}
	for _, k := range keys {
		col := model.Column{Name: k, Values: make([]model.Value, len(statements))}
		numeric := true
		for i, st := range statements {
			v := decodeCell(st[k])
			col.Values[i] = v
			if v.Kind != model.KindNil && v.Kind != model.KindNum {
				numeric = false
			}
		}
		if numeric {
			col.Type = model.ColNumber
		} else {
			col.Type = model.ColAny
		}
		t.Columns = append(t.Columns, col)
	}
	return t
}

func decodeEndDate(raw json.RawMessage) model.Value {
	var v yahooValue
	if raw == nil || json.Unmarshal(raw, &v) != nil || v.Raw == nil {
		return model.Value{}
	}
	ts, err := v.Raw.Int64()
	if err != nil {
		return model.Value{}
	}
	return model.TimeOf(time.Unix(ts, 0).UTC())
}

// decodeCell maps a quoteSummary field to a cell value: {raw, fmt} wrappers
// become numbers, bare strings stay text, anything else is nil.
func decodeCell(raw json.RawMessage) model.Value {
	s := strings.TrimSpace(string(raw))
	switch {
	case s == "" || s == "null" || s == "{}":
		return model.Value{}
	case strings.HasPrefix(s, "{"):
		var v yahooValue
		if json.Unmarshal(raw, &v) != nil {
			return model.Value{}
		}
		if v.Raw != nil {
			if f, err := v.Raw.Float64(); err == nil {
				return model.Num(f)
			}
		}
		if v.Fmt != "" {
			return model.Text(v.Fmt)
		}
		return model.Value{}
	case strings.HasPrefix(s, `"`):
		var str string
		if json.Unmarshal(raw, &str) != nil {
			return model.Value{}
		}
		return model.Text(str)
	default:
		var n json.Number
		if json.Unmarshal(raw, &n) == nil {
			if f, err := n.Float64(); err == nil {
				return model.Num(f)
			}
		}
		return model.Value{}
	}
}

// yahooInfo collects the company-profile modules backing the info mapping.
type yahooInfo struct {
	price struct {
		LongName           string     `json:"longName"`
		ShortName          string     `json:"shortName"`
		Currency           string     `json:"currency"`
		ExchangeName       string     `json:"exchangeName"`
		MarketCap          yahooValue `json:"marketCap"`
		RegularMarketPrice yahooValue `json:"regularMarketPrice"`
	}
	profile struct {
		Sector            string `json:"sector"`
		Industry          string `json:"industry"`
		Country           string `json:"country"`
		Website           string `json:"website"`
		FullTimeEmployees *int64 `json:"fullTimeEmployees"`
	}
	detail struct {
		TrailingPE       yahooValue `json:"trailingPE"`
		Beta             yahooValue `json:"beta"`
		DividendYield    yahooValue `json:"dividendYield"`
		FiftyTwoWeekHigh yahooValue `json:"fiftyTwoWeekHigh"`
		FiftyTwoWeekLow  yahooValue `json:"fiftyTwoWeekLow"`
	}
}

func (p *YahooProvider) fetchInfo(ctx context.Context, symbol string) (model.Dataset, error) {
	result, err := p.fetchQuoteSummary(ctx, symbol, "price,summaryDetail,assetProfile")
	if err != nil {
		return model.Dataset{}, err
	}
	if result == nil {
		return model.EmptyDataset(), nil
	}

	var info yahooInfo
	if raw, ok := result["price"]; ok {
		if err := json.Unmarshal(raw, &info.price); err != nil {
			return model.Dataset{}, fmt.Errorf("decode price: %w", err)
		}
	}
	if raw, ok := result["assetProfile"]; ok {
		if err := json.Unmarshal(raw, &info.profile); err != nil {
			return model.Dataset{}, fmt.Errorf("decode assetProfile: %w", err)
		}
	}
	if raw, ok := result["summaryDetail"]; ok {
		if err := json.Unmarshal(raw, &info.detail); err != nil {
			return model.Dataset{}, fmt.Errorf("decode summaryDetail: %w", err)
		}
	}

	var entries []model.MapEntry
	addText := func(key, val string) {
		if val != "" {
			entries = append(entries, model.MapEntry{Key: key, Value: model.Text(val)})
		}
	}
	addNum := func(key string, v yahooValue) {
		if v.Raw == nil {
			return
		}
		if f, err := v.Raw.Float64(); err == nil {
			entries = append(entries, model.MapEntry{Key: key, Value: model.Num(f)})
		}
	}

	addText("symbol", symbol)
	name := info.price.LongName
	if name == "" {
		name = info.price.ShortName
	}
	addText("longName", name)
	addText("currency", info.price.Currency)
	addText("exchange", info.price.ExchangeName)
	addText("sector", info.profile.Sector)
	addText("industry", info.profile.Industry)
	addText("country", info.profile.Country)
	addText("website", info.profile.Website)
	if info.profile.FullTimeEmployees != nil {
		entries = append(entries, model.MapEntry{Key: "fullTimeEmployees", Value: model.Num(float64(*info.profile.FullTimeEmployees))})
	}
	addNum("currentPrice", info.price.RegularMarketPrice)
	addNum("marketCap", info.price.MarketCap)
	addNum("trailingPE", info.detail.TrailingPE)
	addNum("beta", info.detail.Beta)
	addNum("dividendYield", info.detail.DividendYield)
	addNum("fiftyTwoWeekHigh", info.detail.FiftyTwoWeekHigh)
	addNum("fiftyTwoWeekLow", info.detail.FiftyTwoWeekLow)

	return model.MappingDataset(entries), nil
}

func (p *YahooProvider) get(ctx context.Context, u string) ([]byte, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d, body: %s", resp.StatusCode, truncate(string(body), 200))
	}
	return body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
