package calculator

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// CommandKind вид распознанной команды
type CommandKind int

const (
	Unrecognized CommandKind = iota
	Proportional
	Conversion
)

func (k CommandKind) String() string {
	switch k {
	case Proportional:
		return "proportional"
	case Conversion:
		return "conversion"
	default:
		return "unrecognized"
	}
}

// Command результат разбора строки. Для Proportional заполнены Amount и
// Commission, для Conversion заполнены Amount, From и To.
type Command struct {
	Kind       CommandKind
	Amount     decimal.Decimal
	Commission decimal.Decimal
	From       string
	To         string
}

var (
	// <сумма> TRY %<комиссия>
	proportionalPattern = regexp.MustCompile(`(?i)^(\d+(?:\.\d+)?)\s*TRY\s*%\s*(\d+(?:\.\d+)?)$`)
	// <сумма> <валюта> to <валюта>
	conversionPattern = regexp.MustCompile(`(?i)^(\d+(?:\.\d+)?)\s*([[:alnum:]]+)\s*to\s*([[:alnum:]]+)$`)
)

// Parse сначала проверяет пропорциональную форму, затем конвертацию.
// Строка, не подходящая ни под одну форму, даёт Unrecognized.
func Parse(text string) Command {
	text = strings.TrimSpace(text)

	if m := proportionalPattern.FindStringSubmatch(text); m != nil {
		return Command{
			Kind:       Proportional,
			Amount:     decimal.RequireFromString(m[1]),
			Commission: decimal.RequireFromString(m[2]),
		}
	}

	if m := conversionPattern.FindStringSubmatch(text); m != nil {
		return Command{
			Kind:   Conversion,
			Amount: decimal.RequireFromString(m[1]),
			From:   strings.ToUpper(m[2]),
			To:     strings.ToUpper(m[3]),
		}
	}

	return Command{Kind: Unrecognized}
}
