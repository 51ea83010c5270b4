package model

import "strings"

// BaseCurrency базовая валюта хранилища, её курс всегда 1
const BaseCurrency = "TRY"

// Asset связывает код валюты с идентификатором актива у поставщика цен
type Asset struct {
	Currency   string
	ProviderID string
}

// Assets активы, курсы которых обновляются из CoinGecko
var Assets = []Asset{
	{Currency: "BTC", ProviderID: "bitcoin"},
	{Currency: "ETH", ProviderID: "ethereum"},
	{Currency: "USDT", ProviderID: "tether"},
	{Currency: "BNB", ProviderID: "binancecoin"},
	{Currency: "XRP", ProviderID: "ripple"},
	{Currency: "ADA", ProviderID: "cardano"},
	{Currency: "SOL", ProviderID: "solana"},
	{Currency: "DOGE", ProviderID: "dogecoin"},
	{Currency: "TRX", ProviderID: "tron"},
	{Currency: "AVAX", ProviderID: "avalanche-2"},
}

// SupportedCurrencies возвращает TRY и все коды из Assets в фиксированном порядке
func SupportedCurrencies() []string {
	codes := make([]string, 0, len(Assets)+1)
	codes = append(codes, BaseCurrency)
	for _, a := range Assets {
		codes = append(codes, a.Currency)
	}
	return codes
}

func IsSupported(code string) bool {
	code = strings.ToUpper(code)
	if code == BaseCurrency {
		return true
	}
	for _, a := range Assets {
		if a.Currency == code {
			return true
		}
	}
	return false
}

// CurrencyCount количество записей на одну валюту, используется в графиках
type CurrencyCount struct {
	Currency string
	Count    int
}
