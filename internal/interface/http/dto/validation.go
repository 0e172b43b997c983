package dto

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	apperrors "github.com/xiebiao/bookreview/pkg/errors"
)

var registerOnce sync.Once

// RegisterValidator 让校验错误使用json/form字段名（与前端字段一致）
// 在创建路由前调用一次
func RegisterValidator() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
				if name != "" && name != "-" {
					return name
				}
			}
			return f.Name
		})
	})
}

// BindError 绑定/校验错误 → AppError
//   - validator.ValidationErrors → 参数错误 + 字段详情
//   - 其他（JSON格式错误、类型不匹配） → ErrBindError
func BindError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.ErrBindError.WithCause(err)
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, exists := fields[fe.Field()]; exists {
			continue
		}
		fields[fe.Field()] = fieldMessage(fe)
	}
	return apperrors.Validation(fields)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "不能为空"
	case "email":
		return "邮箱格式不正确"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("长度不能少于%s", fe.Param())
		}
		return fmt.Sprintf("不能小于%s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("长度不能超过%s", fe.Param())
		}
		return fmt.Sprintf("不能大于%s", fe.Param())
	default:
		return "格式不正确"
	}
}
