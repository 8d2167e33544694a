package models

// CategoryLevel is the depth of a node in the three-level category tree.
type CategoryLevel string

const (
	LevelMajor  CategoryLevel = "major"
	LevelMedium CategoryLevel = "medium"
	LevelSub    CategoryLevel = "sub"
)

// Rank maps a level to its integer depth. Unknown levels map to 0.
func (l CategoryLevel) Rank() int {
	switch l {
	case LevelMajor:
		return 1
	case LevelMedium:
		return 2
	case LevelSub:
		return 3
	default:
		return 0
	}
}

// CategoryNode is one category as observed on the source site. Naver assigns
// globally unique ids across all three levels.
type CategoryNode struct {
	ExternalID       string
	Name             string
	Level            CategoryLevel
	ParentExternalID string // empty for major nodes
	IsLeaf           bool   // meaningful for medium nodes only
}

// CategoryContext is the category labels a fetch request was issued under.
// It travels with the request and is copied, never shared, so concurrent
// branches of the tree cannot contaminate each other.
type CategoryContext struct {
	MajorID    string
	MajorName  string
	MediumID   string
	MediumName string
	SubID      string
	SubName    string
}

// GoverningID picks the single category a product is filed under:
// sub if present, else medium, else major.
func (c CategoryContext) GoverningID() string {
	if c.SubID != "" {
		return c.SubID
	}
	if c.MediumID != "" {
		return c.MediumID
	}
	return c.MajorID
}

// ProductRecord is one product card observed on a category page.
type ProductRecord struct {
	ExternalID    string
	Name          string
	DetailURL     string
	MallName      string
	Price         int
	OriginalPrice int
	DiscountRate  int
	DeliveryFee   int
	Rating        float64
	ReviewCount   int
	Ranking       *int // nil when the card carries no rank attribute
	Category      CategoryContext
}
