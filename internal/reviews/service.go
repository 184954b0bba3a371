package reviews

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vastralane/storefront-backend/internal/catalog"
	dbpkg "github.com/vastralane/storefront-backend/pkg/db"
	"github.com/vastralane/storefront-backend/pkg/db/models"
	"github.com/vastralane/storefront-backend/pkg/enums"
	pkgerrors "github.com/vastralane/storefront-backend/pkg/errors"
)

const authorConstraint = "product_author"

// ServiceParams groups dependencies for the review service.
type ServiceParams struct {
	ReviewRepo  *Repository
	ProductRepo *catalog.Repository
	DB          *dbpkg.Client
}

// Service exposes business rules for product reviews.
type Service interface {
	ListReviews(ctx context.Context, productID uuid.UUID) ([]ReviewDTO, error)
	CreateReview(ctx context.Context, authorID, productID uuid.UUID, input CreateReviewInput) (ReviewDTO, error)
	UpdateReview(ctx context.Context, actorID uuid.UUID, reviewID uuid.UUID, input UpdateReviewInput) (ReviewDTO, error)
	DeleteReview(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, reviewID uuid.UUID) error
}

type service struct {
	reviewRepo  *Repository
	productRepo *catalog.Repository
	dbClient    *dbpkg.Client
}

// NewService builds a review service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.ReviewRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "review repo is required")
	}
	if params.ProductRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product repo is required")
	}
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "db client is required")
	}
	return &service{
		reviewRepo:  params.ReviewRepo,
		productRepo: params.ProductRepo,
		dbClient:    params.DB,
	}, nil
}

// ListReviews returns all reviews for a product.
func (s *service) ListReviews(ctx context.Context, productID uuid.UUID) ([]ReviewDTO, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	records, err := s.reviewRepo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reviews")
	}

	items := make([]ReviewDTO, 0, len(records))
	for _, record := range records {
		items = append(items, dtoFromModel(&record))
	}
	return items, nil
}

// CreateReview posts a review and folds it into the product's rating. One
// review per buyer per product.
func (s *service) CreateReview(ctx context.Context, authorID, productID uuid.UUID, input CreateReviewInput) (ReviewDTO, error) {
	if authorID == uuid.Nil {
		return ReviewDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "not authenticated")
	}
	if input.Rating < 1 || input.Rating > 5 {
		return ReviewDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}

	record := &models.Review{
		ProductID: productID,
		AuthorID:  authorID,
		Rating:    input.Rating,
		Comment:   input.Comment,
	}

	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		reviewRepo := s.reviewRepo.WithTx(tx)
		productRepo := s.productRepo.WithTx(tx)

		if _, err := productRepo.FindByID(ctx, productID); err != nil {
			return err
		}
		if err := reviewRepo.Create(ctx, record); err != nil {
			return err
		}
		return s.recomputeAggregate(ctx, reviewRepo, productRepo, productID)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ReviewDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		if dbpkg.IsUniqueViolation(err, authorConstraint) {
			return ReviewDTO{}, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "You have already reviewed this product")
		}
		return ReviewDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create review")
	}

	return dtoFromModel(record), nil
}

// UpdateReview edits a review. Only the author may update.
func (s *service) UpdateReview(ctx context.Context, actorID uuid.UUID, reviewID uuid.UUID, input UpdateReviewInput) (ReviewDTO, error) {
	var updated models.Review

	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		reviewRepo := s.reviewRepo.WithTx(tx)
		productRepo := s.productRepo.WithTx(tx)

		record, err := reviewRepo.FindByID(ctx, reviewID)
		if err != nil {
			return err
		}
		if record.AuthorID != actorID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "only the author can edit a review")
		}

		if input.Rating != nil {
			if *input.Rating < 1 || *input.Rating > 5 {
				return pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
			}
			record.Rating = *input.Rating
		}
		if input.Comment != nil {
			record.Comment = *input.Comment
		}

		if err := reviewRepo.Save(ctx, record); err != nil {
			return err
		}
		if err := s.recomputeAggregate(ctx, reviewRepo, productRepo, record.ProductID); err != nil {
			return err
		}
		updated = *record
		return nil
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return ReviewDTO{}, err
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ReviewDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "review not found")
		}
		return ReviewDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update review")
	}

	return dtoFromModel(&updated), nil
}

// DeleteReview removes a review. The author or an admin may delete.
func (s *service) DeleteReview(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, reviewID uuid.UUID) error {
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		reviewRepo := s.reviewRepo.WithTx(tx)
		productRepo := s.productRepo.WithTx(tx)

		record, err := reviewRepo.FindByID(ctx, reviewID)
		if err != nil {
			return err
		}
		if record.AuthorID != actorID && actorRole != enums.UserRoleAdmin {
			return pkgerrors.New(pkgerrors.CodeForbidden, "only the author or an admin can delete a review")
		}

		if err := reviewRepo.Delete(ctx, reviewID); err != nil {
			return err
		}
		return s.recomputeAggregate(ctx, reviewRepo, productRepo, record.ProductID)
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return err
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "review not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete review")
	}
	return nil
}

// recomputeAggregate stamps the product with the review mean, or zero when
// no reviews remain.
func (s *service) recomputeAggregate(ctx context.Context, reviewRepo *Repository, productRepo *catalog.Repository, productID uuid.UUID) error {
	sum, count, err := reviewRepo.Aggregate(ctx, productID)
	if err != nil {
		return err
	}

	rating := decimal.Zero
	if count > 0 {
		rating = decimal.NewFromInt(sum).Div(decimal.NewFromInt(count)).Round(2)
	}
	return productRepo.ApplyReviewAggregate(ctx, productID, rating, int(count))
}

func dtoFromModel(record *models.Review) ReviewDTO {
	dto := ReviewDTO{
		ID:        record.ID,
		ProductID: record.ProductID,
		AuthorID:  record.AuthorID,
		Rating:    record.Rating,
		Comment:   record.Comment,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
	if record.Author != nil {
		dto.AuthorName = record.Author.Name
	}
	return dto
}
