package parser

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"github.com/minwoopark/infomore/internal/models"
)

// Naver smart-store product card selectors. The head anchor carries the
// structured metadata; its aria-labelledby attribute names the body fragment.
const (
	selProductCard = "ul div.basicProductCard_view_type_grid2__vKr1n"
	selCardLink    = "a.basicProductCard_link__urzND"
	selMallName    = "div span.productCardMallLink_mall_name__5oWPw"
	selOrigPrice   = "span.priceTag_original_price__jyZRY"
	selDiscount    = "span.priceTag_discount_ratio__VE866"
	selDelivery    = "span.productCardDeliveryFeeInfo_delivery_text__54pei"
	selRating      = "span.productCardReview_text__A9N9N"
	selReviewCount = "span.productCardReview_text__A9N9N:not(.productCardReview_star__7iHNO)"

	attrContents = "data-shp-contents-dtl"
	attrRank     = "data-shp-contents-rank"
	attrBodyID   = "aria-labelledby"
)

// ParseProducts extracts every product card from a category page. The
// governing category comes from cctx (the request's call context), never
// from the page itself. Cards whose head metadata is missing or malformed
// are skipped.
func ParseProducts(body []byte, cctx models.CategoryContext) ([]models.ProductRecord, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse category page: %w", err)
	}

	var records []models.ProductRecord
	doc.Find(selProductCard).Each(func(_ int, card *goquery.Selection) {
		head := card.Find(selCardLink).First()
		meta, err := decodeHeadMeta(head)
		if err != nil {
			return
		}

		rec := models.ProductRecord{
			ExternalID: meta["chnl_prod_no"],
			Name:       meta["prod_nm"],
			Category:   cctx,
		}
		if rec.ExternalID == "" {
			return
		}

		rec.DetailURL, _ = head.Attr("href")

		// Price is required; an unparseable price stores as 0.
		rec.Price, _ = ValidateInt(meta["price"])

		if rankText, ok := head.Attr(attrRank); ok {
			if rank, ok := ValidateInt(rankText); ok {
				rec.Ranking = &rank
			}
		}

		// The card body is a separate fragment cross-referenced by id.
		bodyID, _ := head.Attr(attrBodyID)
		cardBody := doc.Find("#" + bodyID)

		rec.MallName = cardBody.Find(selMallName).First().Text()

		if v, ok := ValidateInt(cardBody.Find(selOrigPrice).First().Text()); ok {
			rec.OriginalPrice = v
		} else {
			rec.OriginalPrice = rec.Price
		}

		rec.DiscountRate, _ = ValidateInt(cardBody.Find(selDiscount).First().Text())
		rec.DeliveryFee, _ = ValidateInt(cardBody.Find(selDelivery).First().Text())
		rec.Rating, _ = ValidateFloat(cardBody.Find(selRating).First().Text())

		// The review count lives in the text node next to the star rating;
		// the :not() filter keeps the star glyph out of the digits.
		rec.ReviewCount, _ = ValidateInt(cardBody.Find(selReviewCount).First().Text())

		records = append(records, rec)
	})

	return records, nil
}

// decodeHeadMeta flattens the card link's data-shp-contents-dtl attribute,
// a JSON array of {key, value} pairs, into a lookup map.
func decodeHeadMeta(head *goquery.Selection) (map[string]string, error) {
	raw, ok := head.Attr(attrContents)
	if !ok {
		return nil, fmt.Errorf("card head missing %s", attrContents)
	}

	var pairs []struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	}
	if err := json.Unmarshal([]byte(raw), &pairs); err != nil {
		return nil, fmt.Errorf("decode card metadata: %w", err)
	}

	lookup := make(map[string]string, len(pairs))
	for _, p := range pairs {
		lookup[p.Key] = p.Value
	}
	return lookup, nil
}
