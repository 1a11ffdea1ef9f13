package wgfetcher

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"wg-parser-service/internal/core/domain"

	"github.com/PuerkitoBio/goquery"
)

const (
	rowSelector     = "tr.offer_list_item"
	addressSelector = "div.panel-body div.col-sm-4.mb10 a"
)

// колонки строки списка по порядку
const (
	colStar = iota
	colFlatmates
	colOnline
	colRent
	colRoomSize
	colDistrict
	colFreeFrom
	colFreeUntil
)

// "3er WG (1w,1m,0d)"
var flatmatesRe = regexp.MustCompile(`(\d+)er WG \((\d+)w,(\d+)m,(\d+)d\)`)

func newDocument(body []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

func rowID(row *goquery.Selection) (int64, error) {
	raw, ok := row.Attr("data-id")
	if !ok {
		return 0, fmt.Errorf("%w: row without data-id", domain.ErrMalformedPage)
	}
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad data-id %q", domain.ErrMalformedPage, raw)
	}
	return id, nil
}

func cellSpanText(row *goquery.Selection, col int) string {
	return strings.TrimSpace(row.Find("td").Eq(col).Find("span").First().Text())
}

// ParseListingPage возвращает id и отметку о публикации каждой строки в порядке страницы.
// Страница без строк - валидный конец списка.
func ParseListingPage(body []byte) ([]domain.AdSummary, error) {
	doc, err := newDocument(body)
	if err != nil {
		return nil, err
	}

	rows := doc.Find(rowSelector)
	summaries := make([]domain.AdSummary, 0, rows.Length())

	var parseErr error
	rows.EachWithBreak(func(i int, row *goquery.Selection) bool {
		id, err := rowID(row)
		if err != nil {
			parseErr = fmt.Errorf("row %d: %w", i, err)
			return false
		}
		summaries = append(summaries, domain.AdSummary{
			AdID:         id,
			PostedMarker: cellSpanText(row, colOnline),
		})
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return summaries, nil
}

// ParseOverviewRows разбирает строки списка полностью
func ParseOverviewRows(body []byte, baseURL string) ([]domain.ListingAd, error) {
	doc, err := newDocument(body)
	if err != nil {
		return nil, err
	}

	var ads []domain.ListingAd
	var parseErr error
	doc.Find(rowSelector).EachWithBreak(func(i int, row *goquery.Selection) bool {
		ad, err := parseOverviewRow(row, baseURL)
		if err != nil {
			parseErr = fmt.Errorf("row %d: %w", i, err)
			return false
		}
		ads = append(ads, ad)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return ads, nil
}

func parseOverviewRow(row *goquery.Selection, baseURL string) (domain.ListingAd, error) {
	id, err := rowID(row)
	if err != nil {
		return domain.ListingAd{}, err
	}
	ad := domain.ListingAd{AdID: id}

	if path, ok := row.Attr("adid"); ok {
		ad.URL = strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(path, "/")
	}

	flatmates := row.Find("td").Eq(colFlatmates)
	if title, ok := flatmates.Find("span").First().Attr("title"); ok {
		if m := flatmatesRe.FindStringSubmatch(title); m != nil {
			ad.FlatSize = atoiPtr(m[1])
			ad.FemaleFlatmates = atoiPtr(m[2])
			ad.MaleFlatmates = atoiPtr(m[3])
			ad.DiverseFlatmates = atoiPtr(m[4])
		}
	}
	if alt, ok := flatmates.Find("img").Last().Attr("alt"); ok {
		for _, word := range strings.Fields(alt) {
			switch word {
			case "Mitbewohnerin":
				ad.LookingForFemale = true
			case "Mitbewohner":
				ad.LookingForMale = true
			}
		}
	}

	ad.Rent = parseNumber(cellSpanText(row, colRent), "€")
	ad.RoomSize = parseNumber(cellSpanText(row, colRoomSize), "m²")
	ad.FreeFrom = cellSpanText(row, colFreeFrom)

	if until := row.Find("td").Eq(colFreeUntil).Find("span"); until.Length() > 0 {
		text := strings.TrimSpace(until.First().Text())
		ad.FreeUntil = &text
	}
	return ad, nil
}

// ParseAdAddress достает улицу и район из блока адреса на странице объявления
func ParseAdAddress(body []byte) (*domain.AdDetails, error) {
	doc, err := newDocument(body)
	if err != nil {
		return nil, err
	}

	link := doc.Find(addressSelector).First()
	if link.Length() == 0 {
		return nil, fmt.Errorf("%w: address block not found", domain.ErrMalformedPage)
	}

	var lines []string
	for _, line := range strings.Split(link.Text(), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) < 2 {
		return nil, fmt.Errorf("%w: address block has %d lines", domain.ErrMalformedPage, len(lines))
	}

	return &domain.AdDetails{
		Street:   NormalizeAddressPart(lines[0]),
		District: NormalizeAddressPart(lines[1]),
		RawHTML:  string(body),
	}, nil
}

// parseNumber: "450 €" -> 450; "k.A." и пустая строка -> nil
func parseNumber(text, unit string) *float64 {
	cleaned := strings.TrimSpace(strings.ReplaceAll(text, unit, ""))
	if cleaned == "" {
		return nil
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return &v
}

func atoiPtr(s string) *int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &v
}
