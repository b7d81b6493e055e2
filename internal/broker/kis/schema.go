package kis

import (
	"strconv"
	"strings"
)

// The gateway encodes every number as a string. These helpers tolerate
// empty fields and stray commas.

func parseInt(s string) int {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func parseFloat(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

// apiEnvelope is the common wrapper on trading responses. rt_cd "0"
// means success; anything else is a business-level rejection.
type apiEnvelope struct {
	RtCd  string `json:"rt_cd"`
	MsgCd string `json:"msg_cd"`
	Msg1  string `json:"msg1"`
}

func (e apiEnvelope) ok() bool {
	return e.RtCd == "0"
}

// tokenResponse answers POST /oauth2/tokenP.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// hashkeyResponse answers POST /uapi/hashkey.
type hashkeyResponse struct {
	Hash string `json:"HASH"`
}

// priceResponse answers the inquire-price quotation.
type priceResponse struct {
	apiEnvelope
	Output struct {
		StckPrpr string `json:"stck_prpr"` // current price
	} `json:"output"`
}

// buyableResponse answers inquire-psbl-order.
type buyableResponse struct {
	apiEnvelope
	Output struct {
		NrcvbBuyQty string `json:"nrcvb_buy_qty"` // max buyable shares
	} `json:"output"`
}

// balanceResponse answers inquire-balance. output1 lists holdings,
// output2 carries account-level totals.
type balanceResponse struct {
	apiEnvelope
	Output1 []balanceHolding `json:"output1"`
	Output2 []balanceSummary `json:"output2"`
}

type balanceHolding struct {
	Pdno        string `json:"pdno"`          // ticker
	PrdtName    string `json:"prdt_name"`     // instrument name
	HldgQty     string `json:"hldg_qty"`      // held quantity
	PchsAvgPric string `json:"pchs_avg_pric"` // purchase average price
	Prpr        string `json:"prpr"`          // current price
	EvluPflsAmt string `json:"evlu_pfls_amt"` // unrealized P&L amount
	EvluPflsRt  string `json:"evlu_pfls_rt"`  // unrealized P&L rate
	PchsAmt     string `json:"pchs_amt"`      // purchase amount
	EvluAmt     string `json:"evlu_amt"`      // evaluation amount
}

type balanceSummary struct {
	DncaTotAmt   string `json:"dnca_tot_amt"`       // cash deposit
	SctsEvluAmt  string `json:"scts_evlu_amt"`      // securities value
	TotEvluAmt   string `json:"tot_evlu_amt"`       // total value
	EvluPflsSmtl string `json:"evlu_pfls_smtl_amt"` // total unrealized P&L
}

// orderResponse answers order-cash.
type orderResponse struct {
	apiEnvelope
	Output struct {
		Odno    string `json:"ODNO"`    // order number
		OrdTmd  string `json:"ORD_TMD"` // order time
		KrxFwdg string `json:"KRX_FWDG_ORD_ORGNO"`
	} `json:"output"`
}
