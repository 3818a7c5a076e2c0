package facturx

import (
	"fmt"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"

	dec "github.com/rezonia/facturx-fusion/internal/decimal"
)

// Summary holds the header fields of a CrossIndustryInvoice
type Summary struct {
	Number        string           `json:"number"`
	TypeCode      string           `json:"type_code"`
	IssueDate     *time.Time       `json:"issue_date,omitempty"`
	Profile       string           `json:"profile"`
	Guideline     string           `json:"guideline,omitempty"`
	SellerName    string           `json:"seller_name,omitempty"`
	BuyerName     string           `json:"buyer_name,omitempty"`
	Currency      string           `json:"currency,omitempty"`
	TaxBasisTotal *decimal.Decimal `json:"tax_basis_total,omitempty"`
	TaxTotal      *decimal.Decimal `json:"tax_total,omitempty"`
	GrandTotal    *decimal.Decimal `json:"grand_total,omitempty"`
	DuePayable    *decimal.Decimal `json:"due_payable,omitempty"`
	Warnings      []string         `json:"warnings,omitempty"`
}

var (
	pathSettlement = []string{"SupplyChainTradeTransaction", "ApplicableHeaderTradeSettlement"}
	pathAgreement  = []string{"SupplyChainTradeTransaction", "ApplicableHeaderTradeAgreement"}
	pathTotals     = under(pathSettlement, "SpecifiedTradeSettlementHeaderMonetarySummation")
)

// Summarize extracts the invoice header. Unparseable values become warnings.
func Summarize(doc *Document) *Summary {
	root := doc.Root
	s := &Summary{
		Number:     text(root, "ExchangedDocument", "ID"),
		TypeCode:   text(root, "ExchangedDocument", "TypeCode"),
		Profile:    doc.Profile.String(),
		Guideline:  doc.Guideline,
		SellerName: text(root, under(pathAgreement, "SellerTradeParty", "Name")...),
		BuyerName:  text(root, under(pathAgreement, "BuyerTradeParty", "Name")...),
		Currency:   text(root, under(pathSettlement, "InvoiceCurrencyCode")...),
	}

	if raw := text(root, "ExchangedDocument", "IssueDateTime", "DateTimeString"); raw != "" {
		if t, err := parseIssueDate(raw); err == nil {
			s.IssueDate = &t
		} else {
			s.Warnings = append(s.Warnings, err.Error())
		}
	}

	s.TaxBasisTotal = s.amount(root, "TaxBasisTotalAmount")
	s.TaxTotal = s.taxTotal(root)
	s.GrandTotal = s.amount(root, "GrandTotalAmount")
	s.DuePayable = s.amount(root, "DuePayableAmount")

	if s.TaxBasisTotal != nil && s.TaxTotal != nil && s.GrandTotal != nil {
		expected := dec.Round2(s.TaxBasisTotal.Add(*s.TaxTotal))
		if !dec.NearlyEqual(expected, *s.GrandTotal, dec.Cent) {
			s.Warnings = append(s.Warnings, fmt.Sprintf("amount calculation mismatch: %s + %s != %s",
				s.TaxBasisTotal.StringFixed(2), s.TaxTotal.StringFixed(2), s.GrandTotal.StringFixed(2)))
		}
	}

	if breakdown := s.taxBreakdown(root); len(breakdown) > 0 && s.TaxTotal != nil {
		sum := dec.Round2(dec.Sum(breakdown))
		if !dec.NearlyEqual(sum, *s.TaxTotal, dec.Cent) {
			s.Warnings = append(s.Warnings, fmt.Sprintf("tax breakdown mismatch: sum of %d tax amounts %s != %s",
				len(breakdown), sum.StringFixed(2), s.TaxTotal.StringFixed(2)))
		}
	}

	// 381 is the credit note type code
	if s.TypeCode == "380" && s.GrandTotal != nil && !dec.IsNonNegative(*s.GrandTotal) {
		s.Warnings = append(s.Warnings, fmt.Sprintf("negative grand total %s on a commercial invoice",
			s.GrandTotal.StringFixed(2)))
	}

	return s
}

// taxTotal returns the tax total in invoice currency. A second
// TaxTotalAmount may carry the tax in accounting currency.
func (s *Summary) taxTotal(root *etree.Element) *decimal.Decimal {
	totals := find(root, pathTotals...)
	if totals == nil {
		return nil
	}
	var picked *etree.Element
	for _, e := range totals.SelectElements("TaxTotalAmount") {
		if picked == nil {
			picked = e
		}
		if cur := e.SelectAttrValue("currencyID", ""); cur != "" && cur == s.Currency {
			picked = e
			break
		}
	}
	if picked == nil {
		return nil
	}
	return s.parse("TaxTotalAmount", picked.Text())
}

// taxBreakdown collects the CalculatedAmount of every header tax line
func (s *Summary) taxBreakdown(root *etree.Element) []decimal.Decimal {
	settlement := find(root, pathSettlement...)
	if settlement == nil {
		return nil
	}
	var amounts []decimal.Decimal
	for _, tax := range settlement.SelectElements("ApplicableTradeTax") {
		c := tax.SelectElement("CalculatedAmount")
		if c == nil {
			continue
		}
		if d := s.parse("CalculatedAmount", c.Text()); d != nil {
			amounts = append(amounts, *d)
		}
	}
	return amounts
}

func (s *Summary) amount(root *etree.Element, tag string) *decimal.Decimal {
	return s.parse(tag, text(root, under(pathTotals, tag)...))
}

func (s *Summary) parse(tag, raw string) *decimal.Decimal {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	d, err := dec.ParseAmount(raw)
	if err != nil {
		s.Warnings = append(s.Warnings, fmt.Sprintf("%s: %v", tag, err))
		return nil
	}
	return &d
}

func parseIssueDate(raw string) (time.Time, error) {
	t, err := time.Parse("20060102", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid issue date %q, expected YYYYMMDD", raw)
	}
	return t, nil
}

func under(base []string, tags ...string) []string {
	path := make([]string, 0, len(base)+len(tags))
	path = append(path, base...)
	return append(path, tags...)
}
