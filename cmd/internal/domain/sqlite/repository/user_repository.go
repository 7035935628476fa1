package repository

import (
	"errors"
	"nabha/cmd/internal/domain/entity"

	"gorm.io/gorm"
)

type DefaultUserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *DefaultUserRepository {
	return &DefaultUserRepository{db: db}
}

func (u *DefaultUserRepository) FindByID(id string) (*entity.User, error) {
	var user entity.User
	err := u.db.First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &user, err
}

func (u *DefaultUserRepository) FindByPhone(phone string) (*entity.User, error) {
	var user entity.User
	err := u.db.First(&user, "phone = ?", phone).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &user, err
}

func (u *DefaultUserRepository) FindByRole(role string) ([]*entity.User, error) {
	var users []*entity.User
	err := u.db.Where("role = ?", role).Order("name asc").Find(&users).Error
	return users, err
}

func (u *DefaultUserRepository) ExistsByPhone(phone string) (bool, error) {
	var count int64
	err := u.db.Model(&entity.User{}).Where("phone = ?", phone).Count(&count).Error
	return count > 0, err
}

func (u *DefaultUserRepository) Create(user *entity.User) error {
	return u.db.Create(user).Error
}
