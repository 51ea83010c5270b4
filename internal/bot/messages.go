package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/ivanoskov/kripto_bot/internal/model"
	"github.com/ivanoskov/kripto_bot/internal/service"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	ratesErrorText = "Kur bilgileri alınırken bir hata oluştu."
	statsErrorText = "❌ İstatistikler alınırken bir hata oluştu."
	statsEmptyText = "Henüz kayıtlı bir hesaplamanız yok."
	statsTitle     = "Hesaplamalar (hedef birim)"
)

// Турция живёт по UTC+3 без перехода на летнее время
var turkeyTime = time.FixedZone("TRT", 3*60*60)

func welcomeText() string {
	return "Kripto Para Hesaplayıcı Botuna Hoş Geldiniz!\n\n" +
		"İki tür hesaplama yapabilirsiniz:\n\n" +
		"1. Oransal Hesaplama: <Tutar> TRY %<Komisyon>\n" +
		"   Örnek: 10000 TRY %30\n\n" +
		"2. Birimsel Hesaplama: <Tutar> <Birim> to <Hedef Birim>\n" +
		"   Örnek: 10000 TRY to TRX\n\n" +
		"Desteklenen para birimleri: " + strings.Join(model.SupportedCurrencies(), ", ")
}

func helpText() string {
	return "Kripto Para Hesaplayıcı Bot Komutları:\n\n" +
		"/start - Botu başlat\n" +
		"/help - Yardım mesajını göster\n" +
		"/rates - Güncel kurları göster\n" +
		"/stats - Hesaplama istatistiklerini göster\n\n" +
		"Hesaplama Örnekleri:\n" +
		"10000 TRY %30 - 10000 TL'ye %30 komisyon ekler\n" +
		"10000 TRY to TRX - 10000 TL'nin TRX karşılığını hesaplar\n" +
		"5 BTC to TRY - 5 Bitcoin'in TL karşılığını hesaplar"
}

// replyText единственный ответ на распознанную команду
func replyText(outcome service.Outcome) string {
	cmd := outcome.Command

	switch outcome.Kind {
	case service.ProportionalDone:
		return fmt.Sprintf("💰 Hesaplama Sonucu:\n\n%s TL + %%%s = %s TL",
			formatTR(cmd.Amount, 0, 3), cmd.Commission.String(), formatTR(outcome.Result, 0, 3))
	case service.ConversionDone:
		return fmt.Sprintf("💱 Dönüşüm Sonucu:\n\n%s %s = %s %s\n(%s %s = %s TL)",
			cmd.Amount.String(), cmd.From, formatTR(outcome.Conversion.TargetAmount, 2, 6), cmd.To,
			cmd.Amount.String(), cmd.From, formatTR(outcome.Conversion.TryAmount, 0, 3))
	default:
		return fmt.Sprintf("❌ Hata: %s için kur bilgisi bulunamadı.", outcome.MissingCurrency)
	}
}

// ratesText список курсов без TRY и время последнего обновления
func ratesText(rates []model.Rate) string {
	var sb strings.Builder
	sb.WriteString("📊 Güncel Kurlar (TL):\n\n")

	var latest time.Time
	for _, r := range rates {
		if r.LastUpdated.After(latest) {
			latest = r.LastUpdated
		}
		if r.Currency == model.BaseCurrency {
			continue
		}
		fmt.Fprintf(&sb, "%s: %s TL\n", r.Currency, formatTR(r.TryRate, 2, 6))
	}

	if !latest.IsZero() {
		fmt.Fprintf(&sb, "\nSon güncelleme: %s", latest.In(turkeyTime).Format("02.01.2006 15:04:05"))
	}
	return sb.String()
}

func statsCaption(counts []model.CurrencyCount) string {
	total := 0
	for _, c := range counts {
		total += c.Count
	}
	return fmt.Sprintf("📈 Toplam %d hesaplama", total)
}

// formatTR число в турецкой локали: точка разделяет разряды, запятая дробную часть
func formatTR(d decimal.Decimal, minFraction, maxFraction int) string {
	p := message.NewPrinter(language.Turkish)
	return p.Sprint(number.Decimal(d.InexactFloat64(),
		number.MinFractionDigits(minFraction),
		number.MaxFractionDigits(maxFraction)))
}
