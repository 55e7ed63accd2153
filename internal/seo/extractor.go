// Package seo derives on-page SEO signals from a parsed HTML document.
package seo

import (
	"fmt"
	"math"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/sitegauge/sitegauge/internal/report"
)

const (
	maxKeywords        = 10
	minTokenLength     = 4
	maxHeadingExamples = 5
	maxImageExamples   = 2

	previewTitleLimit       = 60
	previewDescriptionLimit = 160
)

// textBearingTags feed the keyword extraction, in the order they are scanned.
const textBearingTags = "h1,h2,h3,p,li,span"

var nonAlphabetic = regexp.MustCompile(`[^a-z]`)

const wwwRecommendation = "Serve the site on a single canonical host and redirect the www/non-www variant with a 301."

// Extract builds the SEO sub-report for doc. It never fails: missing or
// malformed markup yields the documented defaults. RobotsTxt is left zero for
// the caller to fill in, since it comes from a separate fetch.
func Extract(doc *goquery.Document, pageURL *url.URL) *report.SEO {
	title := strings.TrimSpace(doc.Find("title").First().Text())
	description := strings.TrimSpace(doc.Find(`meta[name="description"]`).AttrOr("content", ""))

	return &report.SEO{
		Title:           report.Text{Content: title, Length: utf8.RuneCountInString(title)},
		MetaDescription: report.Text{Content: description, Length: utf8.RuneCountInString(description)},
		Keywords:        extractKeywords(doc),
		Headings: report.Headings{
			H1: extractHeading(doc, "h1"),
			H2: extractHeading(doc, "h2"),
		},
		Images:   extractImages(doc),
		Links:    extractLinks(doc, pageURL),
		MetaTags: extractMetaTags(doc),
		Technical: report.TechnicalSEO{
			WWWCanonical:      strings.Contains(pageURL.Hostname(), "www."),
			WWWRecommendation: wwwRecommendation,
			StructuredData:    doc.Find(`script[type="application/ld+json"]`).Length(),
		},
		Preview: report.Preview{
			Title:              title,
			Description:        description,
			TitleTooLong:       utf8.RuneCountInString(title) > previewTitleLimit,
			DescriptionTooLong: utf8.RuneCountInString(description) > previewDescriptionLimit,
		},
	}
}

// extractKeywords ranks lower-cased tokens longer than three characters by
// frequency across the text-bearing tags. Non-alphabetic runes are stripped
// after the length filter, so a token like "1234" collapses to the empty
// string and still accumulates a count. That quirk is intentional and pinned
// by tests; do not drop empty tokens here without changing the contract.
func extractKeywords(doc *goquery.Document) []string {
	var b strings.Builder
	doc.Find(textBearingTags).Each(func(_ int, s *goquery.Selection) {
		b.WriteString(s.Text())
		b.WriteByte(' ')
	})

	counts := make(map[string]int)
	var firstSeen []string
	for _, token := range strings.Fields(strings.ToLower(b.String())) {
		if len(token) < minTokenLength {
			continue
		}
		cleaned := nonAlphabetic.ReplaceAllString(token, "")
		if _, seen := counts[cleaned]; !seen {
			firstSeen = append(firstSeen, cleaned)
		}
		counts[cleaned]++
	}

	// Stable sort keeps first-seen order among equal frequencies.
	sort.SliceStable(firstSeen, func(i, j int) bool {
		return counts[firstSeen[i]] > counts[firstSeen[j]]
	})

	if len(firstSeen) > maxKeywords {
		firstSeen = firstSeen[:maxKeywords]
	}
	return firstSeen
}

func extractHeading(doc *goquery.Document, tag string) report.Heading {
	h := report.Heading{}
	doc.Find(tag).Each(func(_ int, s *goquery.Selection) {
		h.Count++
		if len(h.Examples) < maxHeadingExamples {
			h.Examples = append(h.Examples, strings.TrimSpace(s.Text()))
		}
	})
	return h
}

func extractImages(doc *goquery.Document) report.ImageSummary {
	sum := report.ImageSummary{}
	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		sum.Total++
		if alt, ok := s.Attr("alt"); !ok || alt == "" {
			sum.MissingAlt++
			if len(sum.Examples) < maxImageExamples {
				sum.Examples = append(sum.Examples, report.ImageExample{
					Src: s.AttrOr("src", ""),
					Alt: "",
				})
			}
		}
	})
	if sum.Total > 0 {
		sum.MissingAltPercent = int(math.Round(float64(sum.MissingAlt) / float64(sum.Total) * 100))
	}
	return sum
}

// extractLinks classifies every anchor that carries an href. A link is
// internal when the href contains the page hostname or is root-relative or a
// fragment; everything else counts as external.
func extractLinks(doc *goquery.Document, pageURL *url.URL) report.LinkSummary {
	sum := report.LinkSummary{InternalRatio: "0.0"}
	host := pageURL.Hostname()

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href := s.AttrOr("href", "")
		sum.Total++
		if (host != "" && strings.Contains(href, host)) ||
			strings.HasPrefix(href, "/") ||
			strings.HasPrefix(href, "#") {
			sum.Internal++
		} else {
			sum.External++
		}
	})

	if sum.Total > 0 {
		sum.InternalRatio = fmt.Sprintf("%.1f", float64(sum.Internal)/float64(sum.Total)*100)
	}
	return sum
}

func extractMetaTags(doc *goquery.Document) report.MetaTagSummary {
	sum := report.MetaTagSummary{}

	canonical := strings.TrimSpace(doc.Find(`link[rel="canonical"]`).AttrOr("href", ""))
	sum.HasCanonical = canonical != ""
	sum.CanonicalURL = canonical

	robots := doc.Find(`meta[name="robots"]`).AttrOr("content", "")
	sum.Noindex = strings.Contains(strings.ToLower(robots), "noindex")

	sum.OpenGraphCount = doc.Find(`meta[property^="og:"]`).Length()
	sum.HasOpenGraph = sum.OpenGraphCount > 0

	return sum
}

// CountDisallows parses a robots.txt body into the report shape.
func CountDisallows(body string) report.RobotsTxt {
	r := report.RobotsTxt{Exists: true}
	for _, line := range strings.Split(body, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "Disallow:") {
			r.DisallowCount++
		}
	}
	return r
}
