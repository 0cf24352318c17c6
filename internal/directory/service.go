// Package directory は利用者（管理者・講師・学生）の登録と認証のドメインロジックを提供する。
package directory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/slotbook/internal/model"
	"github.com/hitoshi/slotbook/internal/repository"
)

// StudentRegistration は学生の自己登録内容。
type StudentRegistration struct {
	Name       string
	Email      string
	Phone      string
	Department string
	Password   string
}

// TeacherProfile は管理者が登録する講師の情報。
type TeacherProfile struct {
	Name       string
	Email      string
	Phone      string
	Department string
	Subject    string
}

// Service は利用者名簿のサービス層。
type Service struct {
	userRepo               repository.UserRepository
	defaultTeacherPassword string
}

// NewService はServiceの新しいインスタンスを生成する。
// defaultTeacherPassword は管理者が作成した講師アカウントの初期パスワード。
func NewService(userRepo repository.UserRepository, defaultTeacherPassword string) *Service {
	return &Service{
		userRepo:               userRepo,
		defaultTeacherPassword: defaultTeacherPassword,
	}
}

// RegisterStudent は学生を未承認状態で登録し、ユーザーIDを返す。
// メールアドレスが登録済みの場合はDuplicateEmailErrorを返し、名簿は変更しない。
func (s *Service) RegisterStudent(ctx context.Context, reg StudentRegistration) (string, error) {
	now := time.Now()
	u := &model.User{
		ID:         uuid.New().String(),
		Email:      reg.Email,
		Password:   reg.Password,
		Role:       model.RoleStudent,
		Name:       reg.Name,
		Phone:      reg.Phone,
		Department: reg.Department,
		Approved:   false,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.create(ctx, u); err != nil {
		return "", err
	}

	slog.Info("学生を登録しました",
		slog.String("user_id", u.ID),
		slog.String("department", u.Department),
	)
	return u.ID, nil
}

// CreateTeacher は承認済みの講師を初期パスワードで登録し、ユーザーIDを返す。
func (s *Service) CreateTeacher(ctx context.Context, p TeacherProfile) (string, error) {
	now := time.Now()
	u := &model.User{
		ID:         uuid.New().String(),
		Email:      p.Email,
		Password:   s.defaultTeacherPassword,
		Role:       model.RoleTeacher,
		Name:       p.Name,
		Phone:      p.Phone,
		Department: p.Department,
		Subject:    p.Subject,
		Approved:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.create(ctx, u); err != nil {
		return "", err
	}

	slog.Info("講師を登録しました",
		slog.String("user_id", u.ID),
		slog.String("department", u.Department),
	)
	return u.ID, nil
}

// CreateAdmin は承認済みの管理者を登録する。サンプルデータを使わない起動時に呼ばれる。
func (s *Service) CreateAdmin(ctx context.Context, name, email, password string) (string, error) {
	now := time.Now()
	u := &model.User{
		ID:        uuid.New().String(),
		Email:     email,
		Password:  password,
		Role:      model.RoleAdmin,
		Name:      name,
		Approved:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.create(ctx, u); err != nil {
		return "", err
	}
	return u.ID, nil
}

func (s *Service) create(ctx context.Context, u *model.User) error {
	ok, err := s.userRepo.CreateIfEmailFree(ctx, u)
	if err != nil {
		return fmt.Errorf("ユーザーの登録に失敗しました: %w", err)
	}
	if !ok {
		return model.NewDuplicateEmailError(u.Email)
	}
	return nil
}

// Authenticate はメールアドレス・パスワード・役割が一致し、かつ承認済みのユーザーを返す。
// いずれかが一致しない場合は理由を区別せずAuthFailedErrorを返す。
func (s *Service) Authenticate(ctx context.Context, email, password string, role model.Role) (*model.User, error) {
	u, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if u == nil || u.Password != password || u.Role != role || !u.Approved {
		return nil, model.NewAuthFailedError()
	}
	return u, nil
}

// IsPendingApproval は資格情報が未承認アカウントに一致するかどうかを返す。
// 認証失敗後に承認待ちの案内を出すかどうかの判定に使う。
func (s *Service) IsPendingApproval(ctx context.Context, email, password string, role model.Role) (bool, error) {
	u, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return false, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	return u != nil && u.Password == password && u.Role == role && !u.Approved, nil
}

// Approve はユーザーを承認済みにする。既に承認済みの場合も成功する。
func (s *Service) Approve(ctx context.Context, userID string) (*model.User, error) {
	u, err := s.userRepo.Mutate(ctx, userID, func(u *model.User) error {
		u.Approved = true
		u.UpdatedAt = time.Now()
		return nil
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, model.NewUserNotFoundError(userID)
	}
	if err != nil {
		return nil, fmt.Errorf("ユーザーの承認に失敗しました: %w", err)
	}

	slog.Info("ユーザーを承認しました", slog.String("user_id", userID))
	return u, nil
}

// Update はプロフィールを部分更新する。
// メールアドレスの重複は再検証しない。
func (s *Service) Update(ctx context.Context, userID string, update model.ProfileUpdate) (*model.User, error) {
	u, err := s.userRepo.Mutate(ctx, userID, func(u *model.User) error {
		update.Apply(u)
		u.UpdatedAt = time.Now()
		return nil
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, model.NewUserNotFoundError(userID)
	}
	if err != nil {
		return nil, fmt.Errorf("ユーザーの更新に失敗しました: %w", err)
	}
	return u, nil
}

// Delete はユーザーを削除する。
// 予約・メッセージ・空き時間は残し、参照先の無いデータとして扱う。
func (s *Service) Delete(ctx context.Context, userID string) error {
	err := s.userRepo.DeleteByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return model.NewUserNotFoundError(userID)
	}
	if err != nil {
		return fmt.Errorf("ユーザーの削除に失敗しました: %w", err)
	}

	slog.Info("ユーザーを削除しました", slog.String("user_id", userID))
	return nil
}

// Get は指定IDのユーザーを返す。
func (s *Service) Get(ctx context.Context, userID string) (*model.User, error) {
	u, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if u == nil {
		return nil, model.NewUserNotFoundError(userID)
	}
	return u, nil
}

// List は条件に一致するユーザーを登録順で返す。
func (s *Service) List(ctx context.Context, filter model.UserFilter) ([]*model.User, error) {
	users, err := s.userRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("ユーザー一覧の取得に失敗しました: %w", err)
	}
	return users, nil
}
