package config

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
	"nlas.ph/portal/models"
)

func Migrations(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "10012026_create_core_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.User{}, &models.Application{}, &models.Payment{},
					&models.Quotation{}, &models.Service{}, &models.Receipt{}, &models.Donation{})
			},
		},
		{
			ID: "10012026_add_rbac_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.Permission{}, &models.Role{}, &models.RolePermission{})
			},
		},
		{
			ID: "14012026_add_document_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.ServiceDocumentRequirement{}, &models.UserDocument{})
			},
		},
		{
			ID: "20012026_add_messaging_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.Message{}, &models.Notification{}, &models.UIState{})
			},
		},
		{
			ID: "02022026_index_stripe_refs",
			Migrate: func(tx *gorm.DB) error {
				// Webhook lookups resolve entities by provider reference.
				if err := tx.Exec("CREATE INDEX IF NOT EXISTS idx_donations_stripe_session ON donations(stripe_checkout_session_id)").Error; err != nil {
					return err
				}
				return tx.Exec("CREATE INDEX IF NOT EXISTS idx_quotations_stripe_intent ON quotations(stripe_payment_intent_id)").Error
			},
		},
	})
	return m.Migrate()
}
