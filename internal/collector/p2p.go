package collector

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"

	"MarketBrief/internal/model"
)

// DefaultP2PURL is the Binance peer-to-peer marketplace.
const DefaultP2PURL = "https://p2p.binance.com"

// P2PClient quotes the USDT buy price on the Binance P2P market.
type P2PClient struct {
	client *resty.Client
	Fiat   string
	Asset  string
}

// NewP2PClient creates a client quoting USDT in VND.
func NewP2PClient(baseURL, proxyURL string) *P2PClient {
	if baseURL == "" {
		baseURL = DefaultP2PURL
	}
	return &P2PClient{client: newClient(baseURL, proxyURL), Fiat: "VND", Asset: "USDT"}
}

func (c *P2PClient) Name() string { return "binance-p2p" }

type p2pSearch struct {
	Fiat          string   `json:"fiat"`
	Page          int      `json:"page"`
	Rows          int      `json:"rows"`
	TradeType     string   `json:"tradeType"`
	Asset         string   `json:"asset"`
	Countries     []string `json:"countries"`
	ProMerchant   bool     `json:"proMerchantAds"`
	ShieldAds     bool     `json:"shieldMerchantAds"`
	FilterType    string   `json:"filterType"`
	KYCFilter     int      `json:"additionalKycVerifyFilter"`
	PublisherType *string  `json:"publisherType"`
	PayTypes      []string `json:"payTypes"`
	Classifies    []string `json:"classifies"`
}

// BuyPrice returns the price of the second listed buy advert; the first
// is frequently a promoted outlier. A single advert is used as is.
func (c *P2PClient) BuyPrice(ctx context.Context) (decimal.Decimal, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(p2pSearch{
			Fiat:       c.Fiat,
			Page:       1,
			Rows:       10,
			TradeType:  "BUY",
			Asset:      c.Asset,
			Countries:  []string{},
			FilterType: "all",
			PayTypes:   []string{},
			Classifies: []string{"mass", "profession"},
		}).
		Post("/bapi/c2c/v2/friendly/c2c/adv/search")
	if err := checkResponse("binance-p2p", resp, err); err != nil {
		return decimal.Zero, err
	}

	body := resp.Body()
	price := gjson.GetBytes(body, "data.1.adv.price")
	if !price.Exists() {
		price = gjson.GetBytes(body, "data.0.adv.price")
	}
	if !price.Exists() {
		return decimal.Zero, fmt.Errorf("%w: binance-p2p: no adverts", model.ErrParse)
	}
	d, err := decimal.NewFromString(price.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: binance-p2p: price %q: %v", model.ErrParse, price.String(), err)
	}
	return d, nil
}
