// Package naver holds the site profile for Naver shopping: endpoint URLs
// and the request headers/cookies each document type expects.
package naver

import (
	"net/url"
)

// Profile describes one crawlable category root. URLs are configurable so
// fixtures and test servers can stand in for the live site.
type Profile struct {
	// CategoryListURL serves the major listing at its root and the
	// sub listing of a medium node at CategoryListURL/<mediumID>.
	CategoryListURL string
	// BaseURL serves the product page of a category at BaseURL/<categoryID>.
	BaseURL string
}

// The category endpoints answer JSON; product pages are server-rendered HTML.
var (
	listingHeaders = map[string]string{
		"Accept":          "application/json, text/plain, */*",
		"Accept-Language": "ko-KR,ko;q=0.9,en-US;q=0.8",
	}
	pageHeaders = map[string]string{
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language": "ko-KR,ko;q=0.9,en-US;q=0.8",
	}
	listingCookies = map[string]string{}
	pageCookies    = map[string]string{}
)

// The major listing is a GET endpoint; parameters go into the URL directly.
var majorListingParams = url.Values{
	"deep": {"true"},
}

func (p *Profile) MajorListingURL() string {
	return p.CategoryListURL + "?" + majorListingParams.Encode()
}

func (p *Profile) SubListingURL(mediumID string) string {
	return p.CategoryListURL + "/" + mediumID
}

func (p *Profile) PageURL(categoryID string) string {
	return p.BaseURL + "/" + categoryID
}

func (p *Profile) ListingHeaders() map[string]string {
	return cloneHeaders(listingHeaders)
}

// PageHeaders returns the product-page headers. Sub-category pages carry the
// sub-listing URL as Referer, matching how a browser reaches them.
func (p *Profile) PageHeaders(referer string) map[string]string {
	h := cloneHeaders(pageHeaders)
	if referer != "" {
		h["Referer"] = referer
	}
	return h
}

func (p *Profile) ListingCookies() map[string]string {
	return listingCookies
}

func (p *Profile) PageCookies() map[string]string {
	return pageCookies
}

func cloneHeaders(src map[string]string) map[string]string {
	out := make(map[string]string, len(src)+1)
	for k, v := range src {
		out[k] = v
	}
	return out
}
