package usecase

import (
	"context"
	"time"

	"artisanmarket/internal/domain/entity"
	"artisanmarket/internal/domain/repository"
	"artisanmarket/pkg/errors"
)

type UserUseCase struct {
	userRepo repository.UserRepository
}

func NewUserUseCase(userRepo repository.UserRepository) *UserUseCase {
	return &UserUseCase{
		userRepo: userRepo,
	}
}

type RegisterProfileInput struct {
	Email    string
	Username string
	FullName string
	Phone    string
}

// RegisterProfile creates the marketplace profile for a freshly
// authenticated account. The id comes from the identity provider.
func (uc *UserUseCase) RegisterProfile(ctx context.Context, uid string, input RegisterProfileInput) (*entity.User, error) {
	if existing, err := uc.userRepo.GetByID(ctx, uid); err == nil && existing != nil {
		return nil, errors.Conflict("Profile already exists", nil)
	}

	user := &entity.User{
		ID:        uid,
		Email:     input.Email,
		Username:  input.Username,
		FullName:  input.FullName,
		Phone:     input.Phone,
		Role:      entity.RoleCustomer,
		Status:    "active",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (uc *UserUseCase) GetProfile(ctx context.Context, uid string) (*entity.User, error) {
	return uc.userRepo.GetByID(ctx, uid)
}

type UpdateProfileInput struct {
	Username string
	FullName string
	Phone    string
	Bio      string
	Address  string
}

func (uc *UserUseCase) UpdateProfile(ctx context.Context, uid string, input UpdateProfileInput) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, uid)
	if err != nil {
		return nil, err
	}

	if input.Username != "" {
		user.Username = input.Username
	}
	if input.FullName != "" {
		user.FullName = input.FullName
	}
	if input.Phone != "" {
		user.Phone = input.Phone
	}
	if input.Bio != "" {
		user.Bio = input.Bio
	}
	if input.Address != "" {
		user.Address = input.Address
	}

	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

type UpgradeToArtisanInput struct {
	ShopName        string
	ShopDescription string
	CraftVillage    string
}

// UpgradeToArtisan opens the "received" negotiation surface for the user.
func (uc *UserUseCase) UpgradeToArtisan(ctx context.Context, uid string, input UpgradeToArtisanInput) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, uid)
	if err != nil {
		return nil, err
	}

	if user.IsArtisan() {
		return nil, errors.BadRequest("You are already an artisan", nil)
	}
	if input.ShopName == "" {
		return nil, errors.BadRequest("Shop name is required", nil)
	}

	user.Role = entity.RoleArtisan
	user.ShopName = input.ShopName
	user.ShopDescription = input.ShopDescription
	user.CraftVillage = input.CraftVillage

	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}
