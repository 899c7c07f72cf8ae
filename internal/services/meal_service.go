package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/terraincognita07/mealsnap/internal/blob"
	"github.com/terraincognita07/mealsnap/internal/db"
	"github.com/terraincognita07/mealsnap/internal/estimation"
	"github.com/terraincognita07/mealsnap/internal/models"
	"github.com/terraincognita07/mealsnap/internal/nutrition"
	"github.com/terraincognita07/mealsnap/internal/session"
	"gorm.io/gorm"
)

var (
	ErrMealNotFound      = errors.New("meal not found")
	ErrDraftNotFound     = errors.New("draft not found")
	ErrPhotoRequired     = errors.New("photo is required")
	ErrPhotoTooLarge     = errors.New("photo is too large")
	ErrPhotoUnsupported  = errors.New("photo must be an image")
	ErrPhotoUnavailable  = errors.New("photo unavailable")
	ErrInvalidMealCursor = errors.New("invalid cursor")
)

const (
	DefaultMaxPhotoBytes = 10 << 20
	DefaultHistoryPage   = 10
	maxHistoryPageSize   = 100
)

type MealStore interface {
	CreateFromDraft(meal *models.Meal, userID uint, draftID string) error
	FindByUserAndID(userID uint, mealID string) (models.Meal, error)
	ListPage(userID uint, limit int, after *db.MealCursor) (db.MealPage, error)
	UpdateDetection(meal *models.Meal) error
	DeleteByUserAndID(userID uint, mealID string) error
	DeleteAllByUser(userID uint) (int64, error)
	PhotoRefsByUser(userID uint) ([]string, error)
}

type DraftStore interface {
	Create(draft *models.Draft) error
	FindByUserAndID(userID uint, draftID string) (models.Draft, error)
	SaveDetection(draft *models.Draft) error
	DeleteByUserAndID(userID uint, draftID string) error
	DeleteAllByUser(userID uint) error
}

type MealServiceOptions struct {
	MaxPhotoBytes   int
	HistoryPageSize int
	Logger          *slog.Logger
}

// MealService drives the capture, review, save and history flow.
type MealService struct {
	meals         MealStore
	drafts        DraftStore
	photos        blob.Store
	estimator     estimation.Estimator
	logger        *slog.Logger
	maxPhotoBytes int
	pageSize      int
	now           func() time.Time
}

func NewMealService(meals MealStore, drafts DraftStore, photos blob.Store, estimator estimation.Estimator, opts MealServiceOptions) *MealService {
	if opts.MaxPhotoBytes <= 0 {
		opts.MaxPhotoBytes = DefaultMaxPhotoBytes
	}
	if opts.HistoryPageSize <= 0 {
		opts.HistoryPageSize = DefaultHistoryPage
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &MealService{
		meals:         meals,
		drafts:        drafts,
		photos:        photos,
		estimator:     estimator,
		logger:        opts.Logger,
		maxPhotoBytes: opts.MaxPhotoBytes,
		pageSize:      opts.HistoryPageSize,
		now:           time.Now,
	}
}

// HistoryPage is one page of saved meals, newest first.
type HistoryPage struct {
	Meals      []models.Meal `json:"meals"`
	NextCursor string        `json:"nextCursor,omitempty"`
}

// PhotoLocation is either a redirect URL or a readable stream.
type PhotoLocation struct {
	URL         string
	Body        io.ReadCloser
	ContentType string
}

// CreateDraft uploads the photo, runs the estimator on it and keeps the
// result as a draft for review. The photo is removed again when analysis
// fails.
func (service *MealService) CreateDraft(ctx context.Context, sess session.Session, photo io.Reader) (models.Draft, error) {
	if sess.UserID == 0 {
		return models.Draft{}, session.ErrNoSession
	}
	data, contentType, err := service.readPhoto(photo)
	if err != nil {
		return models.Draft{}, err
	}

	ref, err := service.photos.Put(ctx, sess.UserID, bytes.NewReader(data), contentType)
	if err != nil {
		return models.Draft{}, fmt.Errorf("store photo: %w", err)
	}

	result, err := service.estimator.Analyze(ctx, estimation.Photo{Ref: ref, ContentType: contentType, Data: data})
	if err != nil {
		service.discardPhoto(ref)
		if !errors.Is(err, estimation.ErrAnalysisFailed) {
			err = fmt.Errorf("%w: %w", estimation.ErrAnalysisFailed, err)
		}
		return models.Draft{}, err
	}

	draft := models.Draft{
		ID:        uuid.NewString(),
		UserID:    sess.UserID,
		PhotoRef:  ref,
		Detection: nutrition.Normalize(result),
		CreatedAt: service.now().UTC(),
	}
	if err := service.drafts.Create(&draft); err != nil {
		service.discardPhoto(ref)
		return models.Draft{}, fmt.Errorf("create draft: %w", err)
	}

	service.logger.Info("draft created", "user_id", sess.UserID, "draft_id", draft.ID, "items", len(draft.Detection.Items))
	return draft, nil
}

func (service *MealService) GetDraft(sess session.Session, draftID string) (models.Draft, error) {
	draft, err := service.drafts.FindByUserAndID(sess.UserID, strings.TrimSpace(draftID))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Draft{}, ErrDraftNotFound
	}
	if err != nil {
		return models.Draft{}, fmt.Errorf("load draft: %w", err)
	}
	return draft, nil
}

// UpdateDraftItem applies one review edit. Unparsable values become 0.
func (service *MealService) UpdateDraftItem(sess session.Session, draftID string, index int, fieldRaw string, value string) (models.Draft, error) {
	field, err := nutrition.ParseField(fieldRaw)
	if err != nil {
		return models.Draft{}, err
	}
	draft, err := service.GetDraft(sess, draftID)
	if err != nil {
		return models.Draft{}, err
	}

	updated, err := nutrition.UpdateItemField(draft.Detection, index, field, value)
	if err != nil {
		return models.Draft{}, err
	}
	draft.Detection = updated
	draft.UpdatedAt = service.now().UTC()
	if err := service.drafts.SaveDetection(&draft); err != nil {
		return models.Draft{}, fmt.Errorf("save draft: %w", err)
	}
	return draft, nil
}

// SaveDraft turns a reviewed draft into a meal. On failure the draft stays
// as it was and can be saved again.
func (service *MealService) SaveDraft(sess session.Session, draftID string, notes string) (models.Meal, error) {
	draft, err := service.GetDraft(sess, draftID)
	if err != nil {
		return models.Meal{}, err
	}

	finalized := nutrition.Finalize(draft.Detection, notes)
	meal := models.Meal{
		ID:        uuid.NewString(),
		UserID:    sess.UserID,
		CreatedAt: service.now().UTC(),
		PhotoRef:  draft.PhotoRef,
		Detection: &finalized.Detection,
		Notes:     finalized.Notes,
	}
	if err := service.meals.CreateFromDraft(&meal, sess.UserID, draft.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Meal{}, ErrDraftNotFound
		}
		return models.Meal{}, fmt.Errorf("save meal: %w", err)
	}

	service.logger.Info("meal saved", "user_id", sess.UserID, "meal_id", meal.ID, "kcal", meal.Totals().Kcal)
	return meal, nil
}

func (service *MealService) DiscardDraft(sess session.Session, draftID string) error {
	draft, err := service.GetDraft(sess, draftID)
	if err != nil {
		return err
	}
	if err := service.drafts.DeleteByUserAndID(sess.UserID, draft.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDraftNotFound
		}
		return fmt.Errorf("delete draft: %w", err)
	}
	service.discardPhoto(draft.PhotoRef)
	return nil
}

// ListMeals returns one history page. An empty cursor starts at the newest
// meal; limit <= 0 uses the configured page size.
func (service *MealService) ListMeals(sess session.Session, limit int, cursor string) (HistoryPage, error) {
	if sess.UserID == 0 {
		return HistoryPage{}, session.ErrNoSession
	}
	if limit <= 0 {
		limit = service.pageSize
	}
	if limit > maxHistoryPageSize {
		limit = maxHistoryPageSize
	}

	var after *db.MealCursor
	if strings.TrimSpace(cursor) != "" {
		decoded, err := db.DecodeMealCursor(cursor)
		if err != nil {
			return HistoryPage{}, ErrInvalidMealCursor
		}
		after = &decoded
	}

	page, err := service.meals.ListPage(sess.UserID, limit, after)
	if err != nil {
		return HistoryPage{}, fmt.Errorf("list meals: %w", err)
	}
	history := HistoryPage{Meals: page.Meals}
	if page.Next != nil {
		history.NextCursor = page.Next.Encode()
	}
	return history, nil
}

func (service *MealService) GetMeal(sess session.Session, mealID string) (models.Meal, error) {
	meal, err := service.meals.FindByUserAndID(sess.UserID, strings.TrimSpace(mealID))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Meal{}, ErrMealNotFound
	}
	if err != nil {
		return models.Meal{}, fmt.Errorf("load meal: %w", err)
	}
	return meal, nil
}

// AdjustMeal edits a saved meal and appends the change to its adjustment
// log.
func (service *MealService) AdjustMeal(sess session.Session, mealID string, index int, fieldRaw string, value string) (models.Meal, error) {
	field, err := nutrition.ParseField(fieldRaw)
	if err != nil {
		return models.Meal{}, err
	}
	meal, err := service.GetMeal(sess, mealID)
	if err != nil {
		return models.Meal{}, err
	}
	if meal.Detection == nil {
		return models.Meal{}, nutrition.ErrItemIndexOutOfRange
	}

	now := service.now().UTC()
	updated, adjustment, err := nutrition.ApplyAdjustment(*meal.Detection, index, field, value, now)
	if err != nil {
		return models.Meal{}, err
	}
	meal.Detection = &updated
	meal.Adjustments = append(meal.Adjustments, adjustment)
	meal.UpdatedAt = now
	if err := service.meals.UpdateDetection(&meal); err != nil {
		return models.Meal{}, fmt.Errorf("save adjustment: %w", err)
	}
	return meal, nil
}

func (service *MealService) DeleteMeal(sess session.Session, mealID string) error {
	meal, err := service.GetMeal(sess, mealID)
	if err != nil {
		return err
	}
	if err := service.meals.DeleteByUserAndID(sess.UserID, meal.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMealNotFound
		}
		return fmt.Errorf("delete meal: %w", err)
	}
	service.discardPhoto(meal.PhotoRef)
	return nil
}

// DeleteAllMeals wipes the user's meals, drafts and photos. It returns the
// number of meals removed. When the store cannot drop the owner prefix in
// one go, the photos referenced by the removed records are deleted one by
// one instead.
func (service *MealService) DeleteAllMeals(ctx context.Context, sess session.Session) (int64, error) {
	if sess.UserID == 0 {
		return 0, session.ErrNoSession
	}
	refs, err := service.meals.PhotoRefsByUser(sess.UserID)
	if err != nil {
		return 0, fmt.Errorf("list photos: %w", err)
	}
	deleted, err := service.meals.DeleteAllByUser(sess.UserID)
	if err != nil {
		return 0, fmt.Errorf("delete meals: %w", err)
	}
	if err := service.drafts.DeleteAllByUser(sess.UserID); err != nil {
		return deleted, fmt.Errorf("delete drafts: %w", err)
	}
	if err := service.photos.DeleteOwner(ctx, sess.UserID); err != nil {
		service.logger.Warn("owner photo cleanup failed, deleting photos one by one", "user_id", sess.UserID, "error", err)
		if err := service.deletePhotos(ctx, refs); err != nil {
			return deleted, fmt.Errorf("delete photos: %w", err)
		}
	}
	service.logger.Info("meals cleared", "user_id", sess.UserID, "count", deleted)
	return deleted, nil
}

func (service *MealService) deletePhotos(ctx context.Context, refs []string) error {
	var errs []error
	for _, ref := range refs {
		if err := service.photos.Delete(ctx, ref); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", ref, err))
		}
	}
	return errors.Join(errs...)
}

// MealPhoto resolves the photo of a saved meal. Stores that can hand out a
// direct URL do so; otherwise the photo is streamed.
func (service *MealService) MealPhoto(ctx context.Context, sess session.Session, mealID string) (PhotoLocation, error) {
	meal, err := service.GetMeal(sess, mealID)
	if err != nil {
		return PhotoLocation{}, err
	}
	return service.photoLocation(ctx, sess, meal.PhotoRef)
}

func (service *MealService) DraftPhoto(ctx context.Context, sess session.Session, draftID string) (PhotoLocation, error) {
	draft, err := service.GetDraft(sess, draftID)
	if err != nil {
		return PhotoLocation{}, err
	}
	return service.photoLocation(ctx, sess, draft.PhotoRef)
}

func (service *MealService) photoLocation(ctx context.Context, sess session.Session, ref string) (PhotoLocation, error) {
	if !blob.OwnerOf(ref, sess.UserID) {
		return PhotoLocation{}, ErrPhotoUnavailable
	}
	url, err := service.photos.URL(ctx, ref)
	if err != nil {
		return PhotoLocation{}, fmt.Errorf("%w: %w", ErrPhotoUnavailable, err)
	}
	if url != "" {
		return PhotoLocation{URL: url}, nil
	}

	body, contentType, err := service.photos.Open(ctx, ref)
	if err != nil {
		return PhotoLocation{}, fmt.Errorf("%w: %w", ErrPhotoUnavailable, err)
	}
	return PhotoLocation{Body: body, ContentType: contentType}, nil
}

func (service *MealService) readPhoto(photo io.Reader) ([]byte, string, error) {
	if photo == nil {
		return nil, "", ErrPhotoRequired
	}
	data, err := io.ReadAll(io.LimitReader(photo, int64(service.maxPhotoBytes)+1))
	if err != nil {
		return nil, "", fmt.Errorf("read photo: %w", err)
	}
	if len(data) == 0 {
		return nil, "", ErrPhotoRequired
	}
	if len(data) > service.maxPhotoBytes {
		return nil, "", ErrPhotoTooLarge
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return nil, "", ErrPhotoUnsupported
	}
	return data, contentType, nil
}

// discardPhoto removes a photo that is no longer referenced. Failures only
// leave an orphan behind, so they are logged rather than returned.
func (service *MealService) discardPhoto(ref string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := service.photos.Delete(ctx, ref); err != nil {
		service.logger.Warn("photo cleanup failed", "ref", ref, "error", err)
	}
}
