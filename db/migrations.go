package db

import (
	"fmt"

	"empowerpwd/models"

	"gorm.io/gorm"
)

// Migrate creates tables and indexes for every model.
func Migrate(orm *gorm.DB) error {
	if err := orm.AutoMigrate(&models.User{}, &models.Message{}, &models.Job{}, &models.Application{}, &models.Resource{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	if orm.Dialector.Name() == "postgres" {
		if err := CreateRoleConstraint(orm); err != nil {
			return err
		}
	}
	return nil
}

// CreateRoleConstraint adds a CHECK constraint on users.role if missing.
func CreateRoleConstraint(orm *gorm.DB) error {
	createConstraintSQL := `
	DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'users_role_check') THEN
			ALTER TABLE users ADD CONSTRAINT users_role_check
				CHECK (role IN ('jobseeker', 'employer', 'admin'));
		END IF;
	END
	$$;
	`
	if err := orm.Exec(createConstraintSQL).Error; err != nil {
		return fmt.Errorf("failed to create role constraint: %w", err)
	}
	return nil
}
