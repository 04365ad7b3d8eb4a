package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/noah-isme/activity-report-api/internal/models"
)

func TestTemplateServiceListsCatalogue(t *testing.T) {
	repo := &fakeTemplateRepo{templates: []models.ActivityTemplate{
		{ID: templateHackathon, Name: "hackathon_participation", Category: "technical", Fields: datatypes.JSONSlice[models.FieldDescriptor]{
			{FieldID: "event", Label: "Event", Kind: models.FieldKindText},
		}},
	}}
	svc := NewTemplateService(repo, testLogger())

	items, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "hackathon participation", items[0].DisplayName)
	require.Equal(t, 1, items[0].FieldCount)
}

func TestTemplateServiceWrapsStoreFailure(t *testing.T) {
	svc := NewTemplateService(&fakeTemplateRepo{err: errors.New("timeout")}, testLogger())

	_, err := svc.List(context.Background())
	var storeErr *StoreError
	require.True(t, errors.As(err, &storeErr))
}
