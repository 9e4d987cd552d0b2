package db

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// PackageTier is the plan a company pays for. It caps how many questions a
// survey can hold.
type PackageTier string

const (
	NoTier       PackageTier = "none"
	BasicTier    PackageTier = "basic"
	StandardTier PackageTier = "standard"
	PremiumTier  PackageTier = "premium"
)

// Paid returns true for the tiers that allow publishing surveys.
func (t PackageTier) Paid() bool {
	return t == BasicTier || t == StandardTier || t == PremiumTier
}

// PaymentPackage is a static catalog entry describing a tier.
type PaymentPackage struct {
	ID           PackageTier     `json:"id" bson:"_id"`
	Name         string          `json:"name" bson:"name"`
	MaxQuestions int             `json:"maxQuestions" bson:"maxQuestions"`
	Price        decimal.Decimal `json:"price" bson:"price"`
	Features     []string        `json:"features" bson:"features"`
	Popular      bool            `json:"popular,omitempty" bson:"popular,omitempty"`
}

var packages = []PaymentPackage{
	{
		ID:           BasicTier,
		Name:         "Basic",
		MaxQuestions: 10,
		Price:        decimal.NewFromInt(29),
		Features: []string{
			"Up to 10 questions",
			"Basic analytics",
			"QR code generation",
			"Email support",
		},
	},
	{
		ID:           StandardTier,
		Name:         "Standard",
		MaxQuestions: 30,
		Price:        decimal.NewFromInt(79),
		Features: []string{
			"Up to 30 questions",
			"Advanced analytics",
			"QR code generation",
			"Priority support",
			"Custom branding",
		},
		Popular: true,
	},
	{
		ID:           PremiumTier,
		Name:         "Premium",
		MaxQuestions: 100,
		Price:        decimal.NewFromInt(199),
		Features: []string{
			"Up to 100 questions",
			"Premium analytics",
			"QR code generation",
			"24/7 support",
			"Custom branding",
			"API access",
			"White-label solution",
		},
	},
}

// NoPackage is returned for companies without a paid tier.
var NoPackage = PaymentPackage{
	ID:           NoTier,
	Name:         "No Package",
	MaxQuestions: 0,
	Price:        decimal.Zero,
	Features:     []string{},
}

// Packages returns a copy of the paid package catalog, in display order.
func Packages() []PaymentPackage {
	list := make([]PaymentPackage, len(packages))
	for i, p := range packages {
		p.Features = cloneStrings(p.Features)
		list[i] = p
	}
	return list
}

// PackageByTier returns the catalog entry for the tier. The "none" tier
// resolves to NoPackage.
func PackageByTier(tier PackageTier) (*PaymentPackage, error) {
	if tier == NoTier {
		p := NoPackage
		return &p, nil
	}
	for _, p := range packages {
		if p.ID == tier {
			p.Features = cloneStrings(p.Features)
			return &p, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownPackage, tier)
}

// MaxQuestionsFor returns the question cap of the tier, zero if the tier is
// unknown or unpaid.
func MaxQuestionsFor(tier PackageTier) int {
	p, err := PackageByTier(tier)
	if err != nil {
		return 0
	}
	return p.MaxQuestions
}
