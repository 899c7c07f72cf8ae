package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/terraincognita07/mealsnap/internal/models"
	"github.com/terraincognita07/mealsnap/internal/session"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrUserNotFound           = errors.New("user not found")
	ErrPasswordMismatch       = errors.New("password mismatch")
)

type AuthUserRepository interface {
	ExistsByNormalizedEmail(email string) (bool, error)
	FindByNormalizedEmail(email string) (models.User, error)
	FindByID(userID uint) (models.User, error)
	Create(user *models.User) error
	UpdatePassword(userID uint, passwordHash string, mustChangePassword bool) error
	DeleteAccountAndRelatedData(userID uint) error
}

// OwnerPhotoPurger removes every stored photo of a user.
type OwnerPhotoPurger interface {
	DeleteOwner(ctx context.Context, ownerID uint) error
}

type AuthService struct {
	users   AuthUserRepository
	photos  OwnerPhotoPurger
	tracker *session.Tracker
	now     func() time.Time
}

func NewAuthService(users AuthUserRepository, photos OwnerPhotoPurger, tracker *session.Tracker) *AuthService {
	if tracker == nil {
		tracker = session.NewTracker()
	}
	return &AuthService{users: users, photos: photos, tracker: tracker, now: time.Now}
}

func (service *AuthService) Register(emailRaw string, passwordRaw string) (models.User, error) {
	email, password, err := NormalizeCredentialsInput(emailRaw, passwordRaw)
	if err != nil {
		return models.User{}, err
	}
	if err := ValidatePasswordStrength(password); err != nil {
		return models.User{}, err
	}

	exists, err := service.users.ExistsByNormalizedEmail(email)
	if err != nil {
		return models.User{}, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return models.User{}, ErrEmailAlreadyRegistered
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Email:        email,
		PasswordHash: string(passwordHash),
		CreatedAt:    service.now().UTC(),
	}
	if err := service.users.Create(&user); err != nil {
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Authenticate checks credentials and announces the sign-in.
func (service *AuthService) Authenticate(emailRaw string, passwordRaw string) (models.User, error) {
	email, password, err := NormalizeCredentialsInput(emailRaw, passwordRaw)
	if err != nil {
		return models.User{}, err
	}

	user, err := service.users.FindByNormalizedEmail(email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, ErrAuthCredentialsInvalid
	}
	if err != nil {
		return models.User{}, fmt.Errorf("load user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return models.User{}, ErrAuthCredentialsInvalid
	}

	service.tracker.Publish(session.Event{Kind: session.SignedIn, UserID: user.ID, Email: user.Email, At: service.now()})
	return user, nil
}

func (service *AuthService) FindByID(userID uint) (models.User, error) {
	user, err := service.users.FindByID(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

func (service *AuthService) SignOut(sess session.Session) {
	if sess.UserID == 0 {
		return
	}
	service.tracker.Publish(session.Event{Kind: session.SignedOut, UserID: sess.UserID, Email: sess.Email, At: service.now()})
}

func (service *AuthService) ChangePassword(sess session.Session, currentPassword string, newPassword string) error {
	user, err := service.FindByID(sess.UserID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)) != nil {
		return ErrPasswordMismatch
	}
	if err := ValidatePasswordStrength(newPassword); err != nil {
		return err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return service.users.UpdatePassword(user.ID, string(passwordHash), false)
}

// DeleteAccount removes the user, their records and their photos after
// confirming the password.
func (service *AuthService) DeleteAccount(ctx context.Context, sess session.Session, password string) error {
	user, err := service.FindByID(sess.UserID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return ErrPasswordMismatch
	}

	if err := service.users.DeleteAccountAndRelatedData(user.ID); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if service.photos != nil {
		if err := service.photos.DeleteOwner(ctx, user.ID); err != nil {
			return fmt.Errorf("delete photos: %w", err)
		}
	}

	service.tracker.Publish(session.Event{Kind: session.AccountDeleted, UserID: user.ID, Email: user.Email, At: service.now()})
	return nil
}
