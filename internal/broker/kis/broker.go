package kis

import (
	"context"
	"fmt"
	"strconv"

	"kis-trading-bot/internal/logger"
	"kis-trading-bot/internal/types"
)

// Order division codes on the wire.
const (
	ordDvsnLimit  = "00"
	ordDvsnMarket = "01"
)

// CurrentPrice returns the last traded price of a KOSPI/KOSDAQ ticker
// in won.
func (c *Client) CurrentPrice(ctx context.Context, ticker string) (int, error) {
	ticker = types.NormalizeTicker(ticker)

	var resp priceResponse
	query := map[string]string{
		"FID_COND_MRKT_DIV_CODE": "J",
		"FID_INPUT_ISCD":         ticker,
	}
	if err := c.transport.getJSON(ctx, pathPrice, trIDPrice, query, &resp); err != nil {
		return 0, err
	}
	if !resp.ok() {
		return 0, fmt.Errorf("price query for %s failed (%s): %s", ticker, resp.MsgCd, resp.Msg1)
	}

	price := parseInt(resp.Output.StckPrpr)
	if price <= 0 {
		return 0, fmt.Errorf("price query for %s returned no price", ticker)
	}
	return price, nil
}

// Positions returns the account's current holdings. Zero-quantity rows
// are dropped.
func (c *Client) Positions(ctx context.Context) ([]types.Position, error) {
	var resp balanceResponse
	query := map[string]string{
		"CANO":                  c.creds.AccountPrefix,
		"ACNT_PRDT_CD":          c.creds.AccountSuffix,
		"AFHR_FLPR_YN":          "N",
		"OFL_YN":                "",
		"INQR_DVSN":             "02",
		"UNPR_DVSN":             "01",
		"FUND_STTL_ICLD_YN":     "N",
		"FNCG_AMT_AUTO_RDPT_YN": "N",
		"PRCS_DVSN":             "00",
		"CTX_AREA_FK100":        "",
		"CTX_AREA_NK100":        "",
	}
	if err := c.transport.getJSON(ctx, pathBalance, c.trIDs.balance, query, &resp); err != nil {
		return nil, err
	}
	if !resp.ok() {
		return nil, fmt.Errorf("balance query failed (%s): %s", resp.MsgCd, resp.Msg1)
	}

	positions := make([]types.Position, 0, len(resp.Output1))
	for _, h := range resp.Output1 {
		qty := parseInt(h.HldgQty)
		if qty <= 0 {
			continue
		}
		avg := parseFloat(h.PchsAvgPric)
		cur := parseFloat(h.Prpr)
		positions = append(positions, types.Position{
			Ticker:       h.Pdno,
			Name:         h.PrdtName,
			Quantity:     qty,
			AvgPrice:     avg,
			CurrentPrice: cur,
			ProfitLoss:   parseFloat(h.EvluPflsAmt),
			ProfitRate:   profitRate(avg, cur),
		})
	}
	return positions, nil
}

// profitRate computes the percentage gain over the average purchase
// price. A zero average yields zero rather than a division blowup.
func profitRate(avg, cur float64) float64 {
	if avg == 0 {
		return 0
	}
	return (cur - avg) / avg * 100
}

// BuyableQuantity returns how many shares of ticker the account can
// buy at the given price. Price zero asks at market.
func (c *Client) BuyableQuantity(ctx context.Context, ticker string, price int) (int, error) {
	ticker = types.NormalizeTicker(ticker)

	ordDvsn := ordDvsnLimit
	if price == 0 {
		ordDvsn = ordDvsnMarket
	}
	var resp buyableResponse
	query := map[string]string{
		"CANO":                 c.creds.AccountPrefix,
		"ACNT_PRDT_CD":         c.creds.AccountSuffix,
		"PDNO":                 ticker,
		"ORD_UNPR":             strconv.Itoa(price),
		"ORD_DVSN":             ordDvsn,
		"CMA_EVLU_AMT_ICLD_YN": "N",
		"OVRS_ICLD_YN":         "N",
	}
	if err := c.transport.getJSON(ctx, pathBuyable, c.trIDs.buyable, query, &resp); err != nil {
		return 0, err
	}
	if !resp.ok() {
		return 0, fmt.Errorf("buyable query for %s failed (%s): %s", ticker, resp.MsgCd, resp.Msg1)
	}
	return parseInt(resp.Output.NrcvbBuyQty), nil
}

// PlaceOrder submits a cash order. Price zero places a market order.
// Business-level rejections come back as *OrderRejectedError and must
// not be retried.
func (c *Client) PlaceOrder(ctx context.Context, order types.Order) (types.OrderResult, error) {
	ticker := types.NormalizeTicker(order.Ticker)
	if order.Quantity <= 0 {
		return types.OrderResult{}, fmt.Errorf("order quantity must be positive, got %d", order.Quantity)
	}

	trID := c.trIDs.orderBuy
	if order.Side == types.SideSell {
		trID = c.trIDs.orderSel
	}
	ordDvsn := ordDvsnMarket
	if order.Price > 0 {
		ordDvsn = ordDvsnLimit
	}

	body := map[string]string{
		"CANO":         c.creds.AccountPrefix,
		"ACNT_PRDT_CD": c.creds.AccountSuffix,
		"PDNO":         ticker,
		"ORD_DVSN":     ordDvsn,
		"ORD_QTY":      strconv.Itoa(order.Quantity),
		"ORD_UNPR":     strconv.Itoa(order.Price),
	}

	var resp orderResponse
	if err := c.transport.postJSON(ctx, pathOrder, trID, body, true, &resp); err != nil {
		return types.OrderResult{}, err
	}
	if err := checkEnvelope(ctx, resp.apiEnvelope, ticker); err != nil {
		return types.OrderResult{}, err
	}

	logger.Trade(ctx, ticker, order.Side, order.Quantity, order.Price, resp.Output.Odno)
	return types.OrderResult{OrderNo: resp.Output.Odno}, nil
}
