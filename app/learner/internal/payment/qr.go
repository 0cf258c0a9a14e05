package payment

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	qrBaseURL   = "https://qr.sepay.vn/img"
	memoPrefix  = "DH"
	defaultBank = "CTG"
)

// Memo 转账备注，保证只有一个 DH 前缀，银行回调据此匹配订单
func Memo(orderID string) string {
	return memoPrefix + strings.TrimPrefix(orderID, memoPrefix)
}

// QRURL SePay 收款二维码地址
func QRURL(cfg *Config, orderID string, amount int) string {
	bank := defaultBank
	acc := ""
	if cfg != nil {
		if cfg.BankCode != "" {
			bank = cfg.BankCode
		}
		acc = cfg.BankAccount
	}
	q := url.Values{}
	q.Set("acc", acc)
	q.Set("amount", strconv.Itoa(amount))
	q.Set("bank", bank)
	q.Set("des", Memo(orderID))
	q.Set("template", "compact")
	return qrBaseURL + "?" + q.Encode()
}
