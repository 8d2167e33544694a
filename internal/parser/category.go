package parser

import (
	"encoding/json"
	"fmt"

	"github.com/minwoopark/infomore/internal/models"
)

// MajorEntry is one top-level category from the major listing document,
// with its medium children inline.
type MajorEntry struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Children []MediumEntry `json:"children"`
}

// MediumEntry is a second-level category. IsLeaf decides whether a
// sub-category listing exists for it at all.
type MediumEntry struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	IsLeaf bool   `json:"isLeaf"`
}

// ParseMajorListing decodes the major-category listing endpoint response.
func ParseMajorListing(body []byte) ([]MajorEntry, error) {
	var doc struct {
		Categories []MajorEntry `json:"categories"`
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode major listing: %w", err)
	}
	return doc.Categories, nil
}

// ParseSubListing decodes the sub-category listing fetched for one non-leaf
// medium node. The medium id comes from call context, not the document, and
// becomes the parent of every emitted node. A document without a resolvable
// children list yields zero nodes.
func ParseSubListing(body []byte, mediumID string) ([]models.CategoryNode, error) {
	var doc struct {
		Children []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"children"`
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode sub listing: %w", err)
	}

	nodes := make([]models.CategoryNode, 0, len(doc.Children))
	for _, child := range doc.Children {
		nodes = append(nodes, models.CategoryNode{
			ExternalID:       child.ID,
			Name:             child.Name,
			Level:            models.LevelSub,
			ParentExternalID: mediumID,
		})
	}
	return nodes, nil
}
