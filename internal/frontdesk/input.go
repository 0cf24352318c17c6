package frontdesk

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/hitoshi/slotbook/internal/model"
)

// LoginInput はログイン画面の入力。
type LoginInput struct {
	Email    string     `validate:"required"`
	Password string     `validate:"required"`
	Role     model.Role `validate:"required,oneof=admin teacher student"`
}

// RegisterInput は学生の自己登録画面の入力。
type RegisterInput struct {
	Name       string `validate:"required"`
	Email      string `validate:"required"`
	Phone      string
	Department string `validate:"required"`
	Password   string `validate:"required"`
}

// TeacherInput は管理者による講師登録の入力。
type TeacherInput struct {
	Name       string `validate:"required"`
	Email      string `validate:"required"`
	Phone      string
	Department string `validate:"required"`
	Subject    string `validate:"required"`
}

// TeacherUpdateInput は講師編集の入力。nilのフィールドは変更しない。
// 指定したフィールドは登録時と同じく空にできない。
type TeacherUpdateInput struct {
	Name       *string `validate:"omitnil,min=1"`
	Email      *string `validate:"omitnil,min=1"`
	Phone      *string
	Department *string `validate:"omitnil,min=1"`
	Subject    *string `validate:"omitnil,min=1"`
}

// BookInput は学生の予約申請の入力。
type BookInput struct {
	TeacherID string `validate:"required"`
	Date      string `validate:"required"`
	Time      string `validate:"required"`
	Purpose   string `validate:"required"`
	Message   string
}

// MessageInput はメッセージ送信の入力。
type MessageInput struct {
	ReceiverID string `validate:"required"`
	Content    string `validate:"required"`
}

func newValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

// toValidationError はvalidatorのエラーを入力エラーに変換する。
func toValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return model.NewValidationError(err.Error())
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, strings.ToLower(fe.Field()))
	}
	return model.NewValidationError(strings.Join(fields, ", "))
}
