package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"time"

	"dealvalue_backend/internal/logger"
	"dealvalue_backend/internal/models"
	"dealvalue_backend/internal/storage"
	"dealvalue_backend/pkg/apperrors"
)

// UploadService - загрузка одиночных файлов в хранилище
type UploadService interface {
	Upload(ctx context.Context, field string, header *multipart.FileHeader) (*models.UploadResponse, error)
	// MaxSize - предельный размер файла в байтах, 0 = без ограничения
	MaxSize() int64
}

type uploadService struct {
	storage storage.Storage
	maxSize int64
	now     func() time.Time
}

func NewUploadService(store storage.Storage, maxSize int64) UploadService {
	return &uploadService{
		storage: store,
		maxSize: maxSize,
		now:     time.Now,
	}
}

func (s *uploadService) MaxSize() int64 {
	return s.maxSize
}

func (s *uploadService) Upload(ctx context.Context, field string, header *multipart.FileHeader) (*models.UploadResponse, error) {
	if header == nil {
		return nil, apperrors.ErrMissingFile
	}
	if s.maxSize > 0 && header.Size > s.maxSize {
		return nil, apperrors.ErrFileTooLarge
	}

	file, err := header.Open()
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	defer file.Close()

	// <unix-millis>-<исходное имя>, без пути клиента
	filename := fmt.Sprintf("%d-%s", s.now().UnixMilli(), filepath.Base(header.Filename))
	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	if err := s.storage.Save(ctx, filename, file, mimeType); err != nil {
		logger.CtxWithError(ctx, "File save failed", err, "filename", filename)
		return nil, apperrors.InternalError(err)
	}

	url, err := s.storage.GetURL(ctx, filename)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "File uploaded", "filename", filename, "size", header.Size)
	return &models.UploadResponse{
		Message: "File uploaded successfully",
		File: &models.UploadedFile{
			FieldName:    field,
			OriginalName: header.Filename,
			Filename:     filename,
			Path:         s.storage.Location(filename),
			Size:         header.Size,
			MimeType:     mimeType,
			URL:          url,
		},
	}, nil
}
