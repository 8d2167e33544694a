// Package crawler drives the three-level category discovery: it walks
// major → medium → sub, fetches the product page of every node, and feeds
// the extracted categories and products to the reconciliation pipeline over
// typed channels.
package crawler

import (
	"context"
	"log/slog"

	"github.com/minwoopark/infomore/internal/fetch"
	"github.com/minwoopark/infomore/internal/models"
	"github.com/minwoopark/infomore/internal/naver"
	"github.com/minwoopark/infomore/internal/parser"
)

// crawl walks one category tree for one run. Category context never lives in
// shared state: each fetch request carries its own copy, so concurrent
// branches cannot cross-contaminate each other's labels.
type crawl struct {
	fetcher    *fetch.Client
	profile    *naver.Profile
	logger     *slog.Logger
	categories chan<- models.CategoryNode
	products   chan<- models.ProductRecord
}

// start seeds the traversal with the major-listing fetch.
func (c *crawl) start() {
	c.fetcher.Emit(fetch.Request{
		URL:     c.profile.MajorListingURL(),
		Headers: c.profile.ListingHeaders(),
		Cookies: c.profile.ListingCookies(),
		Handler: c.handleMajorListing,
	})
}

// handleMajorListing emits every major node and its medium children. For
// each node the reconciliation event goes out before the product-page fetch
// for that node is issued; non-leaf mediums additionally get a sub-listing
// fetch.
func (c *crawl) handleMajorListing(ctx context.Context, body []byte) {
	majors, err := parser.ParseMajorListing(body)
	if err != nil {
		c.logger.Error("major listing unreadable", "error", err)
		return
	}

	for _, major := range majors {
		c.categories <- models.CategoryNode{
			ExternalID: major.ID,
			Name:       major.Name,
			Level:      models.LevelMajor,
		}

		majorCtx := models.CategoryContext{
			MajorID:   major.ID,
			MajorName: major.Name,
		}
		c.emitProductPage(majorCtx, "")

		for _, medium := range major.Children {
			c.categories <- models.CategoryNode{
				ExternalID:       medium.ID,
				Name:             medium.Name,
				Level:            models.LevelMedium,
				ParentExternalID: major.ID,
				IsLeaf:           medium.IsLeaf,
			}

			mediumCtx := majorCtx
			mediumCtx.MediumID = medium.ID
			mediumCtx.MediumName = medium.Name
			c.emitProductPage(mediumCtx, "")

			if !medium.IsLeaf {
				c.emitSubListing(mediumCtx)
			}
		}
	}
}

func (c *crawl) emitSubListing(mediumCtx models.CategoryContext) {
	listingURL := c.profile.SubListingURL(mediumCtx.MediumID)
	c.fetcher.Emit(fetch.Request{
		URL:     listingURL,
		Headers: c.profile.ListingHeaders(),
		Cookies: c.profile.ListingCookies(),
		Handler: func(ctx context.Context, body []byte) {
			c.handleSubListing(ctx, body, mediumCtx, listingURL)
		},
	})
}

func (c *crawl) handleSubListing(_ context.Context, body []byte, mediumCtx models.CategoryContext, listingURL string) {
	nodes, err := parser.ParseSubListing(body, mediumCtx.MediumID)
	if err != nil {
		c.logger.Error("sub listing unreadable",
			"naver_category_id", mediumCtx.MediumID, "error", err)
		return
	}

	for _, node := range nodes {
		c.categories <- node

		subCtx := mediumCtx
		subCtx.SubID = node.ExternalID
		subCtx.SubName = node.Name
		c.emitProductPage(subCtx, listingURL)
	}
}

// emitProductPage fetches the product page of the deepest category in cctx.
func (c *crawl) emitProductPage(cctx models.CategoryContext, referer string) {
	c.fetcher.Emit(fetch.Request{
		URL:     c.profile.PageURL(cctx.GoverningID()),
		Headers: c.profile.PageHeaders(referer),
		Cookies: c.profile.PageCookies(),
		Handler: func(ctx context.Context, body []byte) {
			c.handleProductPage(ctx, body, cctx)
		},
	})
}

func (c *crawl) handleProductPage(_ context.Context, body []byte, cctx models.CategoryContext) {
	records, err := parser.ParseProducts(body, cctx)
	if err != nil {
		c.logger.Error("product page unreadable",
			"naver_category_id", cctx.GoverningID(), "error", err)
		return
	}

	for _, rec := range records {
		c.products <- rec
	}
}
