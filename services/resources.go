package services

import (
	"context"
	"fmt"
	"strings"

	"empowerpwd/db"
	"empowerpwd/models"

	"gorm.io/gorm"
)

type ResourceInput struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description" validate:"max=5000"`
	VideoURL    string `json:"videoUrl" validate:"required,url,max=1000"`
	Category    string `json:"category" validate:"max=100"`
}

// ResourceService keeps the video library. Videos are hosted elsewhere;
// only links are stored.
type ResourceService struct {
	orm *gorm.DB
}

func NewResourceService(orm *gorm.DB) *ResourceService {
	return &ResourceService{orm: orm}
}

func (s *ResourceService) CreateResource(ctx context.Context, adminID int64, in ResourceInput) (*models.Resource, error) {
	if err := validate.Struct(in); err != nil {
		return nil, validationErr("%v", err)
	}
	res := &models.Resource{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		VideoURL:    in.VideoURL,
		Category:    strings.ToLower(strings.TrimSpace(in.Category)),
		CreatedBy:   adminID,
	}
	if err := db.Write(ctx, s.orm).Create(res).Error; err != nil {
		return nil, storeErr("create resource", err)
	}
	return res, nil
}

// ListResources returns the library newest first, optionally one category.
func (s *ResourceService) ListResources(ctx context.Context, category string) ([]models.Resource, error) {
	query := db.ReadOnly(ctx, s.orm)
	if category = strings.ToLower(strings.TrimSpace(category)); category != "" {
		query = query.Where("category = ?", category)
	}
	resources := []models.Resource{}
	if err := query.Order("created_at DESC").Order("id DESC").Find(&resources).Error; err != nil {
		return nil, storeErr("list resources", err)
	}
	return resources, nil
}

func (s *ResourceService) DeleteResource(ctx context.Context, id int64) error {
	res := db.Write(ctx, s.orm).Delete(&models.Resource{}, id)
	if res.Error != nil {
		return storeErr("delete resource", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: resource %d", ErrNotFound, id)
	}
	return nil
}
