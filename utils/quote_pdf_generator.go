package utils

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dpgf-quoting-backend/db/models"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/shopspring/decimal"
)

// QuotePdfLine is one rendered row of the quote PDF.
type QuotePdfLine struct {
	HexCode     string
	Designation string
	Unite       string
	Quantite    string
	PvU         string
	TotalLigne  string
	Flags       string
}

// QuotePdfData holds all data needed for the quote PDF template.
type QuotePdfData struct {
	Reference    string
	ClientName   string
	Lot          string
	Status       string
	PrintDate    string
	CalculatedAt string
	Lines        []QuotePdfLine
	TotalAchats  string
	TotalMO      string
	TotalPV      string
}

// GenerateQuotePdf renders a calculated quote to an A4 PDF and returns
// the public file path.
func GenerateQuotePdf(quote *models.Quote, filename string) (string, error) {
	data := prepareQuotePdfData(quote)

	htmlContent, err := renderQuoteHTML(data)
	if err != nil {
		return "", fmt.Errorf("failed to render quote HTML: %v", err)
	}

	pdfPath, err := writeQuotePdfFile(htmlContent, filename)
	if err != nil {
		return "", fmt.Errorf("failed to generate PDF: %v", err)
	}
	return pdfPath, nil
}

func prepareQuotePdfData(quote *models.Quote) QuotePdfData {
	lot := ""
	if quote.Lot != nil {
		lot = *quote.Lot
	}
	calculatedAt := "never"
	if quote.CalculatedAt != nil {
		calculatedAt = quote.CalculatedAt.Format("02/01/2006")
	}

	lines := make([]QuotePdfLine, 0, len(quote.Lines))
	for _, line := range quote.Lines {
		pdfLine := QuotePdfLine{
			Quantite:   line.Quantite.StringFixed(2),
			PvU:        formatCurrency(line.PvU),
			TotalLigne: formatCurrency(line.TotalLigne),
		}
		if line.CatalogueItem != nil {
			pdfLine.HexCode = line.CatalogueItem.HexCode
			pdfLine.Designation = line.CatalogueItem.Designation
			if line.CatalogueItem.Unite != nil {
				pdfLine.Unite = *line.CatalogueItem.Unite
			}
		}
		if len(line.Flags) > 0 && string(line.Flags) != "null" && string(line.Flags) != "[]" {
			flags := string(line.Flags)
			flags = strings.Trim(flags, "[]")
			flags = strings.ReplaceAll(flags, `"`, "")
			pdfLine.Flags = strings.ReplaceAll(flags, ",", ", ")
		}
		lines = append(lines, pdfLine)
	}

	return QuotePdfData{
		Reference:    quote.Reference,
		ClientName:   quote.ClientName,
		Lot:          lot,
		Status:       string(quote.Status),
		PrintDate:    time.Now().Format("02/01/2006"),
		CalculatedAt: calculatedAt,
		Lines:        lines,
		TotalAchats:  formatCurrency(quote.TotalAchats),
		TotalMO:      formatCurrency(quote.TotalMO),
		TotalPV:      formatCurrency(quote.TotalPV),
	}
}

func renderQuoteHTML(data QuotePdfData) (string, error) {
	tmpl, err := template.ParseFiles("templates/quote-pdf.html")
	if err != nil {
		return "", fmt.Errorf("failed to parse quote template: %v", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute quote template: %v", err)
	}
	return buf.String(), nil
}

// formatCurrency formats a decimal with thousands separators.
func formatCurrency(amount decimal.Decimal) string {
	amountStr := amount.StringFixed(2)
	parts := strings.Split(amountStr, ".")
	intPart := parts[0]

	negative := strings.HasPrefix(intPart, "-")
	intPart = strings.TrimPrefix(intPart, "-")

	var formattedInt string
	for i, c := range reverseString(intPart) {
		if i > 0 && i%3 == 0 {
			formattedInt = "," + formattedInt
		}
		formattedInt = string(c) + formattedInt
	}
	if negative {
		formattedInt = "-" + formattedInt
	}

	if len(parts) > 1 {
		return formattedInt + "." + parts[1]
	}
	return formattedInt
}

func reverseString(s string) string {
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}

func writeQuotePdfFile(htmlContent, filename string) (string, error) {
	var pdfBuffer bytes.Buffer
	if err := GenerateA4PDFFromHTML(htmlContent, &pdfBuffer); err != nil {
		return "", err
	}

	dirPath := "./public/quotes"
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return "", err
	}

	fullPath := filepath.Join(dirPath, filename)
	if err := os.WriteFile(fullPath, pdfBuffer.Bytes(), 0644); err != nil {
		return "", err
	}
	return "/public/quotes/" + filename, nil
}

// GenerateA4PDFFromHTML prints HTML content to an A4 PDF via headless
// Chrome. The content is served from a throwaway local HTTP server so
// relative assets resolve.
func GenerateA4PDFFromHTML(htmlContent string, w io.Writer) error {
	ctx, cancel := chromedp.NewContext(context.Background())
	defer cancel()

	ctx, cancel = context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(htmlContent))
	})

	server := &http.Server{Handler: mux}
	listener, err := net.Listen("tcp", ":0")
	if err != nil {
		return err
	}
	defer listener.Close()

	go server.Serve(listener)
	defer server.Close()

	port := listener.Addr().(*net.TCPAddr).Port
	url := fmt.Sprintf("http://localhost:%d", port)

	var buf []byte
	err = chromedp.Run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			buf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.27).
				WithPaperHeight(11.7).
				WithMarginTop(0.4).
				WithMarginBottom(0.6).
				WithMarginLeft(0.4).
				WithMarginRight(0.4).
				WithPreferCSSPageSize(true).
				WithDisplayHeaderFooter(true).
				WithHeaderTemplate(`<div style="font-size: 12px; width: 100%; text-align: center;"></div>`).
				WithFooterTemplate(`<div style="font-size: 12px; width: 100%; text-align: center; margin: 0 auto;">Page <span class="pageNumber"></span> of <span class="totalPages"></span></div>`).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return err
	}

	_, err = w.Write(buf)
	return err
}
