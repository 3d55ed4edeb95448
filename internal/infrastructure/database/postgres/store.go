package postgres

import (
	"context"

	"github.com/your-org/bookstore-backend/internal/infrastructure/database"
	"gorm.io/gorm"
)

// NewStore builds every repository on top of db
func NewStore(db *gorm.DB) *database.Store {
	return &database.Store{
		Products:  &productRepo{db},
		Reviews:   &reviewRepo{db},
		Carts:     &cartRepo{db},
		Wishlists: &wishlistRepo{db},
		Orders:    &orderRepo{db},
		Users:     &userRepo{db},
		Heroes:    &heroRepo{db},
		Analytics: &analyticsRepo{db},
		Ping: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		Close: func() error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	}
}
