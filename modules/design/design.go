// Package design covers publishing and browsing the portfolio catalog:
// image upload, metadata records and filtered listing.
package design

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/artfolio/artfolio/pkg/logger"
	"github.com/artfolio/artfolio/pkg/sanitizer"
	"github.com/artfolio/artfolio/pkg/validator"
)

// ErrDesignNotFound reports a missing design record.
var ErrDesignNotFound = errors.New("design not found")

// Status of a published design.
type Status string

const (
	StatusPublished Status = "published"
	StatusHidden    Status = "hidden"
)

// Design is one published portfolio entry.
type Design struct {
	ID          uuid.UUID
	Name        string
	Description string
	Category    string
	Subcategory string
	Tags        []string
	ImageURL    string
	AuthorID    uuid.UUID
	Status      Status
	CreatedAt   time.Time
}

// ListFilter narrows and pages a catalog listing. Zero values mean no
// filtering; Limit falls back to a sane default in the store.
type ListFilter struct {
	Category    string
	Subcategory string
	Limit       int
	Offset      int
}

// Storage is the design store contract. Implementations map missing rows
// to ErrDesignNotFound.
type Storage interface {
	CreateDesign(ctx context.Context, d *Design) error
	GetDesignByID(ctx context.Context, id uuid.UUID) (*Design, error)
	ListDesigns(ctx context.Context, filter ListFilter) ([]Design, error)
}

// ImageUploader stores design images and returns their public URL.
type ImageUploader interface {
	Upload(ctx context.Context, body io.Reader, prefix, filename, contentType string) (string, error)
}

// Service implements design publishing over a Storage and an image store.
type Service struct {
	storage Storage
	images  ImageUploader
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures a Service during construction.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source, used in tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates the design service.
func NewService(storage Storage, images ImageUploader, opts ...Option) *Service {
	s := &Service{
		storage: storage,
		images:  images,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PublishInput carries everything needed to publish a design. Image is
// consumed during the upload.
type PublishInput struct {
	Name        string
	Description string
	Category    string
	Subcategory string
	Tags        []string
	Image       io.Reader
	ImageName   string
	ContentType string
}

// Publish uploads the image and creates the design record attributed to
// authorID. The image upload happens first so a failed insert never leaves
// a record pointing at a missing object.
func (s *Service) Publish(ctx context.Context, authorID uuid.UUID, in PublishInput) (*Design, error) {
	in.Name = sanitizer.TrimName(in.Name)

	if err := validator.Apply(
		validator.Required("name", in.Name),
		validator.Required("category", in.Category),
	); err != nil {
		return nil, err
	}
	if in.Image == nil {
		return nil, validator.ValidationErrors{{Field: "image", Message: "image file is required"}}
	}

	imageURL, err := s.images.Upload(ctx, in.Image, "designs", in.ImageName, in.ContentType)
	if err != nil {
		return nil, fmt.Errorf("failed to upload design image: %w", err)
	}

	d := &Design{
		ID:          uuid.New(),
		Name:        in.Name,
		Description: in.Description,
		Category:    in.Category,
		Subcategory: in.Subcategory,
		Tags:        in.Tags,
		ImageURL:    imageURL,
		AuthorID:    authorID,
		Status:      StatusPublished,
		CreatedAt:   s.now(),
	}
	if err := s.storage.CreateDesign(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to create design: %w", err)
	}

	s.logger.Info("design published",
		logger.Component("design"),
		logger.UserID(authorID.String()),
		slog.String("design_id", d.ID.String()),
	)
	return d, nil
}

// Get returns one design by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Design, error) {
	d, err := s.storage.GetDesignByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrDesignNotFound) {
			return nil, ErrDesignNotFound
		}
		return nil, fmt.Errorf("failed to get design: %w", err)
	}
	return d, nil
}

// List returns published designs matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Design, error) {
	designs, err := s.storage.ListDesigns(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list designs: %w", err)
	}
	return designs, nil
}
