package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ggorockee/companyfinder/internal/models"
)

// IndustryService serves the bundled industries list
type IndustryService struct {
	path string
}

func NewIndustryService(path string) *IndustryService {
	return &IndustryService{path: path}
}

// List reads the file on every call so edits show up without a restart
func (s *IndustryService) List(ctx context.Context) ([]models.Industry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read industries: %w", err)
	}
	var industries []models.Industry
	if err := json.Unmarshal(data, &industries); err != nil {
		return nil, fmt.Errorf("failed to parse industries: %w", err)
	}
	if industries == nil {
		industries = []models.Industry{}
	}
	return industries, nil
}
