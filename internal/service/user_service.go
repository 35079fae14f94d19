package service

import (
	"context"
	"errors"

	"Lee_Tube/internal/model"
	"Lee_Tube/internal/pkg"
	"Lee_Tube/internal/repository/mysql"
	"Lee_Tube/internal/repository/redis"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserStore 用户持久化
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByID(ctx context.Context, id uint64) (*model.User, error)
	UpdatePassword(ctx context.Context, user *model.User, newPassword string) error
}

// TokenStore 单会话 token 存储
type TokenStore interface {
	AddUserToken(usrID uint64, token string) error
	DeleteUserToken(usrID uint64) error
}

type UserService struct {
	repo  UserStore
	rUser TokenStore
}

func NewUserService() *UserService {
	return &UserService{
		repo:  mysql.NewUserRepository(),
		rUser: &redis.UserRepository{},
	}
}

func (s *UserService) Register(ctx context.Context, username, password, email string) error {
	if username == "" || password == "" || email == "" {
		return pkg.ErrInvalidArgument.WithMessage("username, password and email required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := &model.User{
		Username: username,
		Password: string(hash),
		Email:    email,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		// 用户名/邮箱撞了唯一键，是业务冲突不是内部错误
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return pkg.ErrConflict.WithMessage("username or email already taken")
		}
		return err
	}
	return nil
}

func (s *UserService) Login(ctx context.Context, username, password string) (*pkg.Pair, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, pkg.ErrNotFound.WithMessage("user not found")
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, pkg.ErrUnauthorized.WithMessage("invalid password")
	}
	token, err := pkg.GeneratePair(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	// 单会话：把最新 access token 写入 redis，挤掉旧会话
	if err = s.rUser.AddUserToken(user.ID, token.AccessToken); err != nil {
		return nil, err
	}
	return token, nil
}

func (s *UserService) Logout(usrID uint64) error {
	return s.rUser.DeleteUserToken(usrID)
}

// Refresh 换发新的 token 对并同步到 redis
func (s *UserService) Refresh(refreshToken string) (*pkg.Pair, error) {
	pair, err := pkg.Refresh(refreshToken)
	if err != nil {
		return nil, pkg.ErrUnauthorized.WithMessage(err.Error())
	}
	claims, err := pkg.ParseAccess(pair.AccessToken)
	if err != nil {
		return nil, err
	}
	if err = s.rUser.AddUserToken(claims.UserID, pair.AccessToken); err != nil {
		return nil, err
	}
	return pair, nil
}

func (s *UserService) ChangePassword(ctx context.Context, usrID uint64, oldPassword, newPassword string) error {
	if newPassword == "" {
		return pkg.ErrInvalidArgument.WithMessage("new password required")
	}
	user, err := s.repo.FindByID(ctx, usrID)
	if err != nil {
		return pkg.ErrNotFound.WithMessage("user not found")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)) != nil {
		return pkg.ErrUnauthorized.WithMessage("invalid password")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err = s.repo.UpdatePassword(ctx, user, string(hash)); err != nil {
		return err
	}
	// 改密后强制重新登录
	return s.rUser.DeleteUserToken(usrID)
}

func (s *UserService) GetProfile(ctx context.Context, id uint64) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkg.ErrNotFound.WithMessage("user not found")
	}
	user.Password = ""
	return user, nil
}
