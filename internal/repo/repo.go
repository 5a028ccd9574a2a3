package repo

import (
	"errors"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("user not found")

type UserRepo struct {
	DB *gorm.DB
}

func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{DB: db}
}
