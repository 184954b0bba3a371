package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vastralane/storefront-backend/internal/catalog"
	"github.com/vastralane/storefront-backend/pkg/db/models"
	"github.com/vastralane/storefront-backend/pkg/enums"
	"github.com/vastralane/storefront-backend/pkg/pagination"
)

const orderCountSubquery = "(SELECT COUNT(*) FROM orders o WHERE o.user_id = users.id) AS order_count"

// Repository encapsulates account persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a user repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the supplied transaction handle.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Create inserts the account.
func (r *Repository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// Save persists all fields of an existing account.
func (r *Repository) Save(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// Delete removes the account row.
func (r *Repository) Delete(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", userID).
		Delete(&models.User{}).
		Error
}

// FindByID loads an account by primary key.
func (r *Repository) FindByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail loads an account by its normalized email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "email = ?", strings.ToLower(strings.TrimSpace(email))).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// List returns a cursor-paginated account page with per-user order counts.
func (r *Repository) List(ctx context.Context, cursor string, limit int) (UsersPageDTO, error) {
	normalizedLimit := pagination.NormalizeLimit(limit)
	limitWithBuffer := pagination.LimitWithBuffer(limit)
	cursorValue := strings.TrimSpace(cursor)
	decodedCursor, err := pagination.ParseCursor(cursorValue)
	if err != nil {
		return UsersPageDTO{}, err
	}

	query := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select("users.*", orderCountSubquery)

	if decodedCursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", decodedCursor.CreatedAt, decodedCursor.CreatedAt, decodedCursor.ID)
	}
	query = query.Order("created_at DESC").Order("id DESC").Limit(limitWithBuffer)

	var records []userRecord
	if err := query.Scan(&records).Error; err != nil {
		return UsersPageDTO{}, err
	}

	resultRows := records
	nextCursor := ""
	if len(records) > normalizedLimit {
		resultRows = records[:normalizedLimit]
		last := resultRows[len(resultRows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}

	items := make([]UserDTO, 0, len(resultRows))
	for _, record := range resultRows {
		items = append(items, record.toDTO())
	}

	var totalCount int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Count(&totalCount).Error; err != nil {
		return UsersPageDTO{}, err
	}
	firstCursor, err := r.boundaryCursor(ctx, true)
	if err != nil {
		return UsersPageDTO{}, err
	}
	lastCursor, err := r.boundaryCursor(ctx, false)
	if err != nil {
		return UsersPageDTO{}, err
	}

	prevCursor := ""
	if cursorValue != "" {
		prevCursor = cursorValue
	}

	return UsersPageDTO{
		Items: items,
		Pagination: catalog.Pagination{
			Total:   int(totalCount),
			Current: cursorValue,
			First:   firstCursor,
			Last:    lastCursor,
			Prev:    prevCursor,
			Next:    nextCursor,
		},
	}, nil
}

func (r *Repository) boundaryCursor(ctx context.Context, ascending bool) (string, error) {
	order := "created_at DESC, id DESC"
	if ascending {
		order = "created_at ASC, id ASC"
	}

	var row struct {
		CreatedAt time.Time
		ID        uuid.UUID
	}

	query := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select("created_at", "id").
		Order(order).
		Limit(1)

	if err := query.First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}

	return pagination.EncodeCursor(pagination.Cursor{
		CreatedAt: row.CreatedAt,
		ID:        row.ID,
	}), nil
}

type userRecord struct {
	ID         uuid.UUID      `gorm:"column:id"`
	Name       string         `gorm:"column:name"`
	Email      string         `gorm:"column:email"`
	Role       enums.UserRole `gorm:"column:role"`
	IsActive   bool           `gorm:"column:is_active"`
	OrderCount int            `gorm:"column:order_count"`
	CreatedAt  time.Time      `gorm:"column:created_at"`
}

func (r userRecord) toDTO() UserDTO {
	return UserDTO{
		ID:         r.ID,
		Name:       r.Name,
		Email:      r.Email,
		Role:       r.Role,
		IsActive:   r.IsActive,
		OrderCount: r.OrderCount,
		CreatedAt:  r.CreatedAt,
	}
}
