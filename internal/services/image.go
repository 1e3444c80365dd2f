package services

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/kiritosahai/agrisense-insights/internal/blob"
	"github.com/kiritosahai/agrisense-insights/internal/model"
	"github.com/kiritosahai/agrisense-insights/internal/ownership"
	"github.com/kiritosahai/agrisense-insights/internal/store"
)

// ImageService covers the plant photo workflow: upload bytes to the blob
// store, record a metadata row, list per field. File URLs are resolved at
// read time from the storage key.
type ImageService struct {
	store store.Store
	blobs blob.Store
	owner *ownership.Resolver
}

func NewImageService(s store.Store, blobs blob.Store, owner *ownership.Resolver) *ImageService {
	return &ImageService{store: s, blobs: blobs, owner: owner}
}

// PlantImageUpload is the input of SavePlantImage.
type PlantImageUpload struct {
	FieldID     *string
	Title       *string
	Notes       *string
	ContentType string
	Body        io.Reader
}

// SavePlantImage streams the photo into blob storage and records it.
// A field association, when given, must pass the ownership chain.
func (s *ImageService) SavePlantImage(ctx context.Context, callerID string, up PlantImageUpload) (*model.PlantImage, error) {
	if callerID == "" {
		return nil, model.ErrUnauthenticated
	}
	if up.Body == nil {
		return nil, fmt.Errorf("%w: image body is required", model.ErrValidation)
	}
	if up.FieldID != nil {
		allowed, _, _, err := s.owner.Begin(callerID).Field(ctx, *up.FieldID)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, model.ErrAccessDenied
		}
	}
	key := fmt.Sprintf("plant-images/%s/%s", callerID, uuid.NewString())
	info, err := s.blobs.Put(ctx, key, up.Body, blob.PutOptions{ContentType: up.ContentType})
	if err != nil {
		return nil, err
	}
	img := &model.PlantImage{
		UserID:     callerID,
		StorageKey: info.Key,
		FieldID:    up.FieldID,
		Title:      up.Title,
		Notes:      up.Notes,
		Status:     "uploaded",
	}
	saved, err := s.store.PlantImages().Create(ctx, img)
	if err != nil {
		_, _ = s.blobs.Delete(ctx, info.Key)
		return nil, err
	}
	saved.FileURL = fileURL(saved.StorageKey)
	return saved, nil
}

// ListFieldImages returns the field's photos with resolved file URLs.
// Degrades to empty when the caller cannot see the field.
func (s *ImageService) ListFieldImages(ctx context.Context, callerID, fieldID string) ([]*model.PlantImage, error) {
	if callerID == "" {
		return nil, nil
	}
	allowed, _, _, err := s.owner.Begin(callerID).Field(ctx, fieldID)
	if err != nil {
		if model.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if !allowed {
		return nil, nil
	}
	imgs, err := s.store.PlantImages().ListByField(ctx, fieldID)
	if err != nil {
		return nil, err
	}
	for _, img := range imgs {
		img.FileURL = fileURL(img.StorageKey)
	}
	return imgs, nil
}

// OpenImage streams the raw bytes for a storage key. Key-level access only;
// keys are unguessable UUIDs handed out through owner-scoped listings.
func (s *ImageService) OpenImage(ctx context.Context, storageKey string) (blob.Info, io.ReadCloser, error) {
	return s.blobs.Get(ctx, storageKey)
}

func fileURL(storageKey string) string {
	return "/v0/images/blob/" + storageKey
}
