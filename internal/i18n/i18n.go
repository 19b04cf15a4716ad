// Package i18n holds the terminal's translation tables.
//
// Every locale carries one entry per Label; the table type is a fixed-size
// array indexed by Label so a missing translation is a compile-time gap that
// Validate reports as an empty string, never a silent fallback to the key.
package i18n

import (
	"errors"
	"fmt"

	"pos-service/internal/models"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ErrUnsupportedLocale is returned for a locale without a table
var ErrUnsupportedLocale = errors.New("unsupported locale")

// Locale is a supported language code
type Locale string

// Supported locales
const (
	LocaleLao     Locale = "lo"
	LocaleEnglish Locale = "en"
	LocaleThai    Locale = "th"
)

// Locales lists supported locales, preferred first
var Locales = []Locale{LocaleLao, LocaleEnglish, LocaleThai}

// Label identifies a translatable string
type Label int

// Labels
const (
	LabelTitle Label = iota
	LabelViewPOS
	LabelViewAdmin
	LabelViewReport
	LabelCart
	LabelEmptyCart
	LabelTotal
	LabelCheckout
	LabelCheckoutDone
	LabelRestock
	LabelStock
	LabelRevenue
	LabelBestSellers
	LabelClearHistory
	LabelConfirmClear
	LabelReceipt
	LabelDate
	LabelTime
	LabelThankYou
	LabelCurrency
	labelCount
)

var labelNames = [labelCount]string{
	LabelTitle:        "title",
	LabelViewPOS:      "view_pos",
	LabelViewAdmin:    "view_admin",
	LabelViewReport:   "view_report",
	LabelCart:         "cart",
	LabelEmptyCart:    "empty_cart",
	LabelTotal:        "total",
	LabelCheckout:     "checkout",
	LabelCheckoutDone: "checkout_done",
	LabelRestock:      "restock",
	LabelStock:        "stock",
	LabelRevenue:      "revenue",
	LabelBestSellers:  "best_sellers",
	LabelClearHistory: "clear_history",
	LabelConfirmClear: "confirm_clear",
	LabelReceipt:      "receipt",
	LabelDate:         "date",
	LabelTime:         "time",
	LabelThankYou:     "thank_you",
	LabelCurrency:     "currency",
}

func (l Label) String() string {
	if l < 0 || l >= labelCount {
		return fmt.Sprintf("label(%d)", int(l))
	}
	return labelNames[l]
}

type table [labelCount]string

var tables = map[Locale]*table{
	LocaleLao: {
		LabelTitle:        "SMART POS ລາວ",
		LabelViewPOS:      "ໜ້າຂາຍ",
		LabelViewAdmin:    "ຈັດການສິນຄ້າ",
		LabelViewReport:   "ລາຍງານ",
		LabelCart:         "ລາຍການສັ່ງຊື້",
		LabelEmptyCart:    "ບໍ່ມີລາຍການໃນກະຕ່າ",
		LabelTotal:        "ລວມທັງໝົດ",
		LabelCheckout:     "ຊຳລະເງິນ",
		LabelCheckoutDone: "ຊຳລະເງິນສຳເລັດ!",
		LabelRestock:      "ເຕີມສິນຄ້າ",
		LabelStock:        "ຄົງເຫຼືອ",
		LabelRevenue:      "ລາຍຮັບທັງໝົດ",
		LabelBestSellers:  "ສິນຄ້າຂາຍດີ",
		LabelClearHistory: "ລຶບປະຫວັດການຂາຍ",
		LabelConfirmClear: "ຢືນຢັນການລຶບປະຫວັດການຂາຍທັງໝົດ?",
		LabelReceipt:      "ໃບບິນ",
		LabelDate:         "ວັນທີ",
		LabelTime:         "ເວລາ",
		LabelThankYou:     "ຂອບໃຈທີ່ໃຊ້ບໍລິການ",
		LabelCurrency:     "ກີບ",
	},
	LocaleEnglish: {
		LabelTitle:        "SMART POS",
		LabelViewPOS:      "Sell",
		LabelViewAdmin:    "Inventory",
		LabelViewReport:   "Reports",
		LabelCart:         "Order",
		LabelEmptyCart:    "Cart is empty",
		LabelTotal:        "Total",
		LabelCheckout:     "Checkout",
		LabelCheckoutDone: "Payment complete!",
		LabelRestock:      "Restock",
		LabelStock:        "Stock",
		LabelRevenue:      "Total revenue",
		LabelBestSellers:  "Best sellers",
		LabelClearHistory: "Clear sales history",
		LabelConfirmClear: "Delete the entire sales history?",
		LabelReceipt:      "Receipt",
		LabelDate:         "Date",
		LabelTime:         "Time",
		LabelThankYou:     "Thank you for your purchase",
		LabelCurrency:     "LAK",
	},
	LocaleThai: {
		LabelTitle:        "SMART POS",
		LabelViewPOS:      "หน้าขาย",
		LabelViewAdmin:    "จัดการสินค้า",
		LabelViewReport:   "รายงาน",
		LabelCart:         "รายการสั่งซื้อ",
		LabelEmptyCart:    "ไม่มีรายการในตะกร้า",
		LabelTotal:        "รวมทั้งหมด",
		LabelCheckout:     "ชำระเงิน",
		LabelCheckoutDone: "ชำระเงินสำเร็จ!",
		LabelRestock:      "เติมสินค้า",
		LabelStock:        "คงเหลือ",
		LabelRevenue:      "รายได้ทั้งหมด",
		LabelBestSellers:  "สินค้าขายดี",
		LabelClearHistory: "ล้างประวัติการขาย",
		LabelConfirmClear: "ยืนยันการลบประวัติการขายทั้งหมด?",
		LabelReceipt:      "ใบเสร็จ",
		LabelDate:         "วันที่",
		LabelTime:         "เวลา",
		LabelThankYou:     "ขอบคุณที่ใช้บริการ",
		LabelCurrency:     "กีบ",
	},
}

var matcher = language.NewMatcher([]language.Tag{
	language.Lao,
	language.English,
	language.Thai,
})

// amountPrinter groups digits the way the terminal displays prices
var amountPrinter = message.NewPrinter(language.English)

// ParseLocale validates a locale code
func ParseLocale(code string) (Locale, error) {
	loc := Locale(code)
	if _, ok := tables[loc]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedLocale, code)
	}
	return loc, nil
}

// Negotiate picks the best supported locale for an Accept-Language header
func Negotiate(acceptLanguage string) Locale {
	_, idx := language.MatchStrings(matcher, acceptLanguage)
	return Locales[idx]
}

// T returns the translation of label in loc
func T(loc Locale, label Label) string {
	t, ok := tables[loc]
	if !ok {
		t = tables[LocaleLao]
	}
	return t[label]
}

// ViewLabel returns the tab title of a view
func ViewLabel(loc Locale, v models.View) string {
	switch v {
	case models.ViewPOS:
		return T(loc, LabelViewPOS)
	case models.ViewAdmin:
		return T(loc, LabelViewAdmin)
	case models.ViewReport:
		return T(loc, LabelViewReport)
	}
	return ""
}

// Labels returns the whole table of loc keyed by label name
func Labels(loc Locale) map[string]string {
	out := make(map[string]string, labelCount)
	for l := Label(0); l < labelCount; l++ {
		out[l.String()] = T(loc, l)
	}
	return out
}

// FormatAmount renders a minor-unit amount with digit grouping
func FormatAmount(amount int64) string {
	return amountPrinter.Sprintf("%d", amount)
}

// Validate reports the first missing translation
func Validate() error {
	for _, loc := range Locales {
		t, ok := tables[loc]
		if !ok {
			return fmt.Errorf("locale %s has no table", loc)
		}
		for l := Label(0); l < labelCount; l++ {
			if t[l] == "" {
				return fmt.Errorf("locale %s is missing %s", loc, l)
			}
		}
	}
	return nil
}
