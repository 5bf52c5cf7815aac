package service

import (
	"context"
	"errors"

	"github.com/iliyamo/postboard-api/internal/model"
	"github.com/iliyamo/postboard-api/internal/repository"
	"github.com/iliyamo/postboard-api/internal/storage"
	"github.com/iliyamo/postboard-api/internal/utils"
)

// UserInput is the data needed to create an account.
type UserInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Age       int
	Phone     string
}

// UserPatch holds the fields of a partial update.  Nil means unchanged.
type UserPatch struct {
	Email     *string
	Password  *string
	FirstName *string
	LastName  *string
	Age       *int
	Phone     *string
}

type UserService struct {
	pager
	repo       *repository.UserRepo
	uploader   storage.Uploader
	bcryptCost int
}

func NewUserService(repo *repository.UserRepo, uploader storage.Uploader, bcryptCost, maxLimit int) *UserService {
	if uploader == nil {
		uploader = storage.Disabled()
	}
	return &UserService{pager: pager{maxLimit: maxLimit}, repo: repo, uploader: uploader, bcryptCost: bcryptCost}
}

// Create registers a new USER.  An email already used by any account,
// deleted ones included, is a bad request.
func (s *UserService) Create(ctx context.Context, in UserInput) (*model.User, error) {
	taken, err := s.repo.EmailTaken(ctx, in.Email, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, newError(KindBadRequest, msgUserExists, repository.ErrEmailExists)
	}
	hash, err := s.hash(in.Password)
	if err != nil {
		return nil, err
	}
	u := &model.User{
		Email:        in.Email,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Age:          in.Age,
		Phone:        in.Phone,
		Role:         model.RoleUser,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, newError(KindBadRequest, msgUserExists, err)
		}
		return nil, err
	}
	return u, nil
}

// hash rejects passwords longer than 72 bytes as a client error.
func (s *UserService) hash(plain string) (string, error) {
	h, err := utils.HashPassword(plain, s.bcryptCost)
	if errors.Is(err, utils.ErrPasswordTooLong) {
		return "", newError(KindBadRequest, "Password is too long", err)
	}
	return h, err
}

func (s *UserService) FindAll(ctx context.Context, f repository.UserFilter, page, limit int) (repository.Result[model.User], error) {
	return s.repo.List(ctx, f, s.page(page, limit))
}

func (s *UserService) FindOne(ctx context.Context, id uint) (*model.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "User")
	}
	return u, nil
}

// Update applies patch to user id.  A new password is hashed; an email
// held by another account is rejected.
func (s *UserService) Update(ctx context.Context, id uint, patch UserPatch) (*model.User, error) {
	fields := map[string]any{}
	if patch.Email != nil {
		taken, err := s.repo.EmailTaken(ctx, *patch.Email, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, newError(KindBadRequest, msgUserExists, repository.ErrEmailExists)
		}
		fields["email"] = *patch.Email
	}
	if patch.Password != nil {
		hash, err := s.hash(*patch.Password)
		if err != nil {
			return nil, err
		}
		fields["password"] = hash
	}
	if patch.FirstName != nil {
		fields["first_name"] = *patch.FirstName
	}
	if patch.LastName != nil {
		fields["last_name"] = *patch.LastName
	}
	if patch.Age != nil {
		fields["age"] = *patch.Age
	}
	if patch.Phone != nil {
		fields["phone"] = *patch.Phone
	}
	u, err := s.repo.Update(ctx, id, fields)
	if err != nil {
		return nil, notFound(err, "User")
	}
	return u, nil
}

// Remove soft-deletes user id.
func (s *UserService) Remove(ctx context.Context, id uint) error {
	return notFound(s.repo.SoftDelete(ctx, id), "User")
}

// SetAvatar uploads f and stores its location on the user.  A failed
// database write after a successful upload leaves the object behind.
func (s *UserService) SetAvatar(ctx context.Context, userID uint, f storage.File) (*model.User, error) {
	if _, err := s.FindOne(ctx, userID); err != nil {
		return nil, err
	}
	loc, err := s.uploader.Upload(ctx, f, storage.ItemUser, userID)
	if err != nil {
		return nil, uploadError(err)
	}
	u, err := s.repo.SetAvatar(ctx, userID, loc)
	if err != nil {
		return nil, notFound(err, "User")
	}
	return u, nil
}
