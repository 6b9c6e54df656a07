// Package seed loads the starter catalog and an optional administrator.
package seed

import (
	"context"
	"fmt"

	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AdminEnsurer creates an administrator account when it is missing
type AdminEnsurer interface {
	EnsureAdmin(ctx context.Context, name, email, password string) (*domain.User, bool, error)
}

// Seeder replaces the catalog with the starter products
type Seeder struct {
	tx      repository.Transactor
	admins  AdminEnsurer
	catalog cache.Catalog
	logger  *zap.Logger
}

// New creates a Seeder. catalog may be nil when caching is off.
func New(tx repository.Transactor, admins AdminEnsurer, catalog cache.Catalog, logger *zap.Logger) *Seeder {
	if catalog == nil {
		catalog = cache.NewNoop()
	}
	return &Seeder{tx: tx, admins: admins, catalog: catalog, logger: logger}
}

// Products returns fresh copies of the starter catalog
func Products() []*domain.Product {
	return []*domain.Product{
		{
			Name:        "Velvyna Stylish Tee",
			Brand:       "Velvyna",
			Description: "A stylish and comfortable tee, perfect for casual wear. Made from 100% organic cotton.",
			Category:    "T-shirt",
			Price:       799,
			Image:       "/images/products/tee-1.jpg",
			Stock:       25,
			Rating:      4.5,
			NumReviews:  12,
			Sizes:       []string{"S", "M", "L", "XL"},
			Variants: []domain.Variant{
				{Name: "Black", Type: "color", Hex: "#000000"},
				{Name: "White", Type: "color", Hex: "#FFFFFF"},
				{Name: "Navy", Type: "color", Hex: "#000080"},
			},
		},
		{
			Name:        "Cozy Hoodie",
			Brand:       "Velvyna",
			Description: "Stay warm and comfortable with this cozy hoodie. Perfect for a relaxed evening out or a chilly day in.",
			Category:    "Hoodie",
			Price:       1299,
			Image:       "/images/products/hoodie-1.jpg",
			Stock:       15,
			Rating:      4.8,
			NumReviews:  8,
			Sizes:       []string{"S", "M", "L"},
			Variants: []domain.Variant{
				{Name: "Heather Grey", Type: "color", Hex: "#D3D3D3"},
				{Name: "Charcoal", Type: "color", Hex: "#36454F"},
			},
		},
		{
			Name:        "Denim Jeans",
			Brand:       "Velvyna",
			Description: "Classic fit denim jeans, designed for durability and style. A timeless addition to any wardrobe.",
			Category:    "Jeans",
			Price:       1499,
			Image:       "/images/products/jeans-1.jpg",
			Stock:       30,
			Rating:      4.2,
			NumReviews:  15,
			Sizes:       []string{"28", "30", "32", "34", "36"},
			Variants: []domain.Variant{
				{Name: "Dark Wash", Type: "color", Hex: "#1C3144"},
				{Name: "Light Wash", Type: "color", Hex: "#A8DADC"},
			},
		},
	}
}

// Run wipes and reloads the catalog in one transaction, then creates the
// configured admin if both credentials are set
func (s *Seeder) Run(ctx context.Context, admin config.SeedConfig) error {
	products := Products()

	err := s.tx.WithinTx(ctx, func(repos repository.Repositories) error {
		if err := repos.Products.DeleteAll(ctx); err != nil {
			return fmt.Errorf("failed to clear products: %w", err)
		}
		for _, product := range products {
			product.ID = uuid.New()
			if err := repos.Products.Create(ctx, product); err != nil {
				return fmt.Errorf("failed to insert %s: %w", product.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.catalog.Invalidate(ctx)
	s.logger.Info("Products seeded", zap.Int("count", len(products)))

	if admin.AdminEmail == "" || admin.AdminPassword == "" {
		return nil
	}

	user, created, err := s.admins.EnsureAdmin(ctx, "Admin", admin.AdminEmail, admin.AdminPassword)
	if err != nil {
		return fmt.Errorf("failed to ensure admin: %w", err)
	}
	if created {
		s.logger.Info("Admin user created", zap.String("email", user.Email))
	} else {
		s.logger.Info("Admin user already exists", zap.String("email", user.Email))
	}
	return nil
}
