// Package validation はリクエストボディのバリデーションを提供する。
//
// go-playground/validatorのタグ検証を、元システム互換の
// フィールド名→メッセージ配列のマップに変換して返す。
// 例: {"title": ["The title field is required."]}
package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator はリクエスト構造体のタグバリデーションを実行する。
type Validator struct {
	validate *validator.Validate
}

// New はValidatorを生成する。
// エラーメッセージ中のフィールド名にはjsonタグ名を使用する。
func New() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

// Check は構造体のvalidateタグを検証し、違反をフィールド名→メッセージ配列の
// マップで返す。違反がない場合はnilを返す。
func (v *Validator) Check(s any) map[string][]string {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string][]string{"_": {err.Error()}}
	}

	fields := make(map[string][]string)
	for _, fe := range verrs {
		name := fe.Field()
		fields[name] = append(fields[name], message(fe))
	}
	return fields
}

// message はバリデーションタグごとの利用者向けメッセージを返す。
// 文言は元システムのバリデータ互換。
func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", fe.Field())
	case "datetime":
		return fmt.Sprintf("The %s does not match the format YmdHis.", fe.Field())
	case "email":
		return fmt.Sprintf("The %s must be a valid email address.", fe.Field())
	case "min":
		return fmt.Sprintf("The %s must be at least %s characters.", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("The %s is invalid.", fe.Field())
	}
}
