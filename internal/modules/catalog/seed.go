package catalog

import (
	"time"

	"craft-storefront/internal/models"
)

const imageBase = "https://res.cloudinary.com/craft-storefront/image/upload/v1/products/"

func price(v float64) *float64 { return &v }

// SeedProducts is the catalog the reference server starts with.
func SeedProducts() []models.Product {
	day := func(n int) time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n) }
	std := func(s, m, l, xl int) []models.Size {
		return []models.Size{{Label: "S", Stock: s}, {Label: "M", Stock: m}, {Label: "L", Stock: l}, {Label: "XL", Stock: xl}}
	}
	free := func(n int) []models.Size { return []models.Size{{Label: "Free Size", Stock: n}} }

	return []models.Product{
		{
			ID: "p-kurta-indigo", Name: "Indigo Block Print Kurta", Price: 1499, CompareAtPrice: price(1899),
			Category: "Kurtas", Image: imageBase + "kurta-indigo.jpg",
			Images:      []string{imageBase + "kurta-indigo.jpg", imageBase + "kurta-indigo-back.jpg"},
			Sizes:       std(4, 6, 3, 0),
			Description: "Hand block printed in Bagru with natural indigo on soft cotton.",
			Care:        "Hand wash cold, dry in shade.", Shipping: "Ships in 2-3 days.",
			Rating: 4.7, NumReviews: 38, Featured: true, CreatedAt: day(10),
		},
		{
			ID: "p-kurta-madder", Name: "Madder Red Dabu Kurta", Price: 1699,
			Category: "Kurtas", Image: imageBase + "kurta-madder.jpg",
			Images:      []string{imageBase + "kurta-madder.jpg"},
			Sizes:       std(2, 5, 5, 2),
			Description: "Mud resist dabu print dyed with madder root.",
			Care:        "Hand wash cold separately.", Shipping: "Ships in 2-3 days.",
			Rating: 4.5, NumReviews: 21, CreatedAt: day(25),
		},
		{
			ID: "p-saree-chanderi", Name: "Chanderi Silk Cotton Saree", Price: 4599, CompareAtPrice: price(5200),
			Category: "Sarees", Image: imageBase + "saree-chanderi.jpg",
			Images:      []string{imageBase + "saree-chanderi.jpg", imageBase + "saree-chanderi-pallu.jpg"},
			Sizes:       free(5),
			Description: "Handwoven Chanderi with zari buttis and a contrast pallu.",
			Care:        "Dry clean only.", Shipping: "Ships in 3-5 days.",
			Rating: 4.9, NumReviews: 54, Featured: true, CreatedAt: day(3),
		},
		{
			ID: "p-saree-ikat", Name: "Pochampally Ikat Saree", Price: 3899,
			Category: "Sarees", Image: imageBase + "saree-ikat.jpg",
			Images:      []string{imageBase + "saree-ikat.jpg"},
			Sizes:       free(0),
			Description: "Double ikat woven in Pochampally on a pit loom.",
			Care:        "Dry clean only.", Shipping: "Ships in 3-5 days.",
			Rating: 4.8, NumReviews: 17, CreatedAt: day(40),
		},
		{
			ID: "p-dupatta-ajrakh", Name: "Ajrakh Modal Dupatta", Price: 1299,
			Category: "Dupattas", Image: imageBase + "dupatta-ajrakh.jpg",
			Images:      []string{imageBase + "dupatta-ajrakh.jpg"},
			Sizes:       free(12),
			Description: "Ajrakh printed in Kutch with a sixteen step resist process.",
			Care:        "Hand wash cold.", Shipping: "Ships in 2-3 days.",
			Rating: 4.6, NumReviews: 42, Featured: true, CreatedAt: day(18),
		},
		{
			ID: "p-stole-pashmina", Name: "Kani Weave Wool Stole", Price: 2499,
			Category: "Stoles", Image: imageBase + "stole-kani.jpg",
			Images:      []string{imageBase + "stole-kani.jpg"},
			Sizes:       free(7),
			Description: "Fine wool stole with a kani woven border from Kashmir.",
			Care:        "Dry clean only.", Shipping: "Ships in 3-5 days.",
			Rating: 4.4, NumReviews: 9, CreatedAt: day(30),
		},
		{
			ID: "p-jacket-kantha", Name: "Kantha Quilted Jacket", Price: 2899, CompareAtPrice: price(3299),
			Category: "Jackets", Image: imageBase + "jacket-kantha.jpg",
			Images:      []string{imageBase + "jacket-kantha.jpg"},
			Sizes:       std(1, 3, 2, 1),
			Description: "Reversible jacket layered from vintage saris with kantha running stitch.",
			Care:        "Hand wash cold, do not wring.", Shipping: "Ships in 4-6 days.",
			Rating: 4.8, NumReviews: 26, Featured: true, CreatedAt: day(7),
		},
		{
			ID: "p-kurta-khadi", Name: "Handspun Khadi Kurta", Price: 1199,
			Category: "Kurtas", Image: imageBase + "kurta-khadi.jpg",
			Images:      []string{imageBase + "kurta-khadi.jpg"},
			Sizes:       std(6, 8, 6, 4),
			Description: "Breathable handspun, handwoven khadi in natural ecru.",
			Care:        "Machine wash gentle.", Shipping: "Ships in 2-3 days.",
			Rating: 4.3, NumReviews: 64, CreatedAt: day(55),
		},
	}
}
