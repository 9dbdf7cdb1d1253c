package activity

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"gopkg.in/yaml.v3"
)

// Exchange type of a catalog item.
const (
	ExchangeDirect    = "direct"    // redeemable with balance alone
	ExchangePrivilege = "privilege" // discounted-purchase offers
)

// Daily stock status of a catalog item.
const (
	StatusAvailable  = "available"
	StatusOutOfStock = "out_of_stock"
)

// CatalogItem is one redeemable prize
type CatalogItem struct {
	Code        string  `yaml:"code"`
	PrizeID     string  `yaml:"prizeId"`
	Name        string  `yaml:"name"`
	Brand       string  `yaml:"brand"`
	Description string  `yaml:"description"`
	CostDays    float64 `yaml:"costDays"`
	Exchange    string  `yaml:"exchangeType"`
	Status      string  `yaml:"status"`
	BatchID     string  `yaml:"batchId"`
	PrizeType   int     `yaml:"prizeType"`
}

// FetchCatalog fetches the prize catalog and normalizes it. Items without
// global stock are dropped; the rest are classified as direct redemptions or
// discounted-purchase privileges, with availability tracking today's stock.
func (c *Client) FetchCatalog(ctx context.Context) ([]CatalogItem, error) {
	params := url.Values{}
	params.Set("activityCode", c.vendor.ActivityCode)
	params.Set("needPrizeBrand", c.vendor.PrizeBrands)

	resp := c.Get(ctx, "/mp/api/generalActivity/getPrizeStatusV2", params, nil)
	if resp == nil {
		return nil, fmt.Errorf("prize catalog request failed")
	}
	if resp.Code != 0 {
		return nil, fmt.Errorf("prize catalog returned code %d: %s", resp.Code, truncate(resp.Raw, 200))
	}

	var prizes []struct {
		PrizeID          FlexID `json:"prizeId"`
		PrizeName        string `json:"prizeName"`
		PrizeBrand       string `json:"prizeBrand"`
		PrizeDesc        string `json:"prizeDesc"`
		NeedGoldRice     FlexID `json:"needGoldRice"`
		PrizeCode        string `json:"prizeCode"`
		StockStatus      int    `json:"stockStatus"`
		TodayStockStatus int    `json:"todayStockStatus"`
		PrizeType        int    `json:"prizeType"`
		PrizeBatchID     string `json:"prizeBatchId"`
	}
	if err := json.Unmarshal(resp.Value, &prizes); err != nil {
		return nil, fmt.Errorf("failed to decode prize catalog: %w", err)
	}

	items := make([]CatalogItem, 0, len(prizes))
	for _, p := range prizes {
		if p.StockStatus != 1 {
			continue
		}

		item := CatalogItem{
			Code:        p.PrizeCode,
			PrizeID:     p.PrizeID.String(),
			Name:        p.PrizeName,
			Brand:       p.PrizeBrand,
			Description: p.PrizeDesc,
			CostDays:    parseCostDays(p.NeedGoldRice.String()),
			BatchID:     p.PrizeBatchID,
			PrizeType:   p.PrizeType,
		}

		// Type 26 prizes redeem against balance directly unless the name
		// marks them as a paid privilege.
		if p.PrizeType == 26 && !strings.Contains(p.PrizeName, "1分购") && !strings.Contains(p.PrizeName, "特权") {
			item.Exchange = ExchangeDirect
		} else {
			item.Exchange = ExchangePrivilege
		}

		if p.TodayStockStatus == 1 {
			item.Status = StatusAvailable
		} else {
			item.Status = StatusOutOfStock
		}

		items = append(items, item)
	}
	return items, nil
}

func parseCostDays(needGoldRice string) float64 {
	var units float64
	if needGoldRice != "" {
		fmt.Sscanf(needGoldRice, "%f", &units)
	}
	return units / 100
}

//go:embed fallback_catalog.yaml
var fallbackCatalogYAML []byte

// FallbackCatalog returns the built-in monthly-card catalog used when the
// live catalog cannot be fetched.
func FallbackCatalog() []CatalogItem {
	var doc struct {
		Prizes []CatalogItem `yaml:"prizes"`
	}
	if err := yaml.Unmarshal(fallbackCatalogYAML, &doc); err != nil {
		panic(fmt.Sprintf("invalid embedded catalog: %v", err))
	}
	return doc.Prizes
}
