package kis

import (
	"context"
	"fmt"
	"strings"
)

// PortfolioSummary renders the account's holdings and totals as a
// markdown report.
func (c *Client) PortfolioSummary(ctx context.Context) (string, error) {
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
		return "", err
	}
	if !resp.ok() {
		return "", fmt.Errorf("balance query failed (%s): %s", resp.MsgCd, resp.Msg1)
	}

	var b strings.Builder
	b.WriteString("## Portfolio\n\n")

	held := 0
	for _, h := range resp.Output1 {
		qty := parseInt(h.HldgQty)
		if qty <= 0 {
			continue
		}
		held++
		avg := parseFloat(h.PchsAvgPric)
		cur := parseFloat(h.Prpr)
		fmt.Fprintf(&b, "- %s (%s): %d shares, avg %.0f, now %.0f, P&L %+.0f (%+.2f%%)\n",
			h.PrdtName, h.Pdno, qty, avg, cur, parseFloat(h.EvluPflsAmt), profitRate(avg, cur))
	}
	if held == 0 {
		b.WriteString("No holdings.\n")
	}

	if len(resp.Output2) > 0 {
		s := resp.Output2[0]
		b.WriteString("\n## Account\n\n")
		fmt.Fprintf(&b, "- Cash: %d\n", parseInt(s.DncaTotAmt))
		fmt.Fprintf(&b, "- Securities: %d\n", parseInt(s.SctsEvluAmt))
		fmt.Fprintf(&b, "- Unrealized P&L: %+d\n", parseInt(s.EvluPflsSmtl))
	}

	used, capacity := c.limiter.Status()
	fmt.Fprintf(&b, "\nRate limit: %d/%d requests in window (%s)\n", used, capacity, c.mode)
	return b.String(), nil
}
