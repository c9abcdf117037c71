// Package broker is the typed client for the brokerage trade API, covering
// both the normal and the credit-trading (margin, "cr") channel.
package broker

import (
	"strings"
	"time"
)

// Session is the live authentication pair of one account.
type Session struct {
	Cookie      string
	ValidateKey string
}

// Result is the brokerage response envelope. Status 0 means success; Data
// carries zero or more typed rows.
type Result[T any] struct {
	Status  int    `json:"Status"`
	Count   int    `json:"Count"`
	Message string `json:"Message"`
	Data    []T    `json:"Data"`
}

func (r *Result[T]) Success() bool {
	return r != nil && r.Status == 0
}

// First returns the first data row, used by endpoints that answer with a
// single envelope object.
func (r *Result[T]) First() (T, bool) {
	var zero T
	if r == nil || len(r.Data) == 0 {
		return zero, false
	}
	return r.Data[0], true
}

// AuthRequest submits credentials plus the resolved captcha.
type AuthRequest struct {
	UserID       string
	Password     string
	IdentifyCode string // captcha text from the OCR resolver
	RandNumber   string // correlation token the captcha image was keyed by
}

// AuthData carries the session pair returned on a successful login.
type AuthData struct {
	Cookie      string `json:"Cookie"`
	ValidateKey string `json:"ValidateKey"`
}

// AssetData is the liveness-probe payload; fields are unused beyond the
// success flag but kept for the admin view.
type AssetData struct {
	Kyzj string `json:"Kyzj"` // 可用资金
	Zzc  string `json:"Zzc"`  // 总资产
}

// DealItem is one raw fill row from the normal deal feed.
type DealItem struct {
	Cjbh string `json:"Cjbh"` // 成交编号
	Cjjg string `json:"Cjjg"` // 成交价格
	Cjsl string `json:"Cjsl"` // 成交数量
	Cjsj string `json:"Cjsj"` // 成交时间 HHMMSS
	Zqdm string `json:"Zqdm"` // 证券代码
	Zqmc string `json:"Zqmc"` // 证券名称
	Mmlb string `json:"Mmlb"` // 买卖类别
}

// CrDealItem is the margin-channel fill row; Xyjylx tags the credit trade type.
type CrDealItem struct {
	DealItem
	Xyjylx string `json:"Xyjylx"` // 信用交易类型
}

// OrderItem is one open-order row; Wtzt is the order status text.
type OrderItem struct {
	Wtbh string `json:"Wtbh"` // 委托编号
	Zqdm string `json:"Zqdm"`
	Zqmc string `json:"Zqmc"`
	Wtzt string `json:"Wtzt"` // 委托状态
}

// OrderStatusSubmitted is the "already submitted" status a subscription
// order sits in; candidates matching it are excluded from resubmission.
const OrderStatusSubmitted = "已报"

// NewStockItem is one subscribable offering.
type NewStockItem struct {
	Sgdm   string `json:"Sgdm"`   // 申购代码
	Zqmc   string `json:"Zqmc"`   // 证券名称
	Fxj    string `json:"Fxj"`    // 发行价
	Ksgsx  string `json:"Ksgsx"`  // 可申购上限（股）
	Market string `json:"Market"`
}

// QuotaItem is the per-market allotment of the normal channel.
type QuotaItem struct {
	Market string `json:"Market"`
	Ksgsz  string `json:"Ksgsz"` // 可申购数（市值额度）
}

// CrQuotaItem is the margin-channel allotment; the cr endpoint names the
// quota field differently.
type CrQuotaItem struct {
	Market    string `json:"Market"`
	CustQuota string `json:"CustQuota"`
}

// CanBuyData is the normal-channel offering envelope.
type CanBuyData struct {
	NewStockList []NewStockItem `json:"NewStockList"`
	NewQuota     []QuotaItem    `json:"NewQuota"`
}

// CrCanBuyData is the margin-channel offering envelope.
type CrCanBuyData struct {
	NewStockList []NewStockItem `json:"NewStockList"`
	NewQuota     []CrQuotaItem  `json:"NewQuota"`
}

// ConvertibleBond is one subscribable convertible bond.
type ConvertibleBond struct {
	BondCode     string `json:"BONDCODE"`
	BondName     string `json:"BONDNAME"`
	SubCode      string `json:"SUBCODE"`      // 申购代码
	ParValue     string `json:"PARVALUE"`     // 面值，申购价格
	LimitBuyVol  string `json:"LIMITBUYVOL"`  // 单户申购上限
	Market       string `json:"Market"`
	PurchaseDate string `json:"PURCHASEDATE"` // "2006-01-02 15:04:05"
}

// IsSubscribableOn reports whether the bond's subscription date is day.
func (b ConvertibleBond) IsSubscribableOn(day time.Time) bool {
	raw := strings.TrimSpace(b.PurchaseDate)
	if raw == "" {
		return false
	}
	d, err := time.ParseInLocation("2006-01-02 15:04:05", raw, day.Location())
	if err != nil {
		if d, err = time.ParseInLocation("2006-01-02", raw, day.Location()); err != nil {
			return false
		}
	}
	y1, m1, d1 := d.Date()
	y2, m2, d2 := day.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// SubmitItem is one row of a batch subscription order.
type SubmitItem struct {
	StockCode string `json:"StockCode"`
	StockName string `json:"StockName"`
	Price     string `json:"Price"`
	Amount    int    `json:"Amount"`
	Market    string `json:"Market"`
	TradeType string `json:"TradeType"`
}

// TradeTypeBuy is the buy side marker of batch submissions.
const TradeTypeBuy = "B"

// SubmitEcho is one per-row acknowledgment of a batch submission.
type SubmitEcho struct {
	Wtbh    string `json:"Wtbh"`
	Message string `json:"Message"`
}
