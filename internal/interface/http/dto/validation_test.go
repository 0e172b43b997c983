package dto

import (
	"errors"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/bookreview/pkg/errors"
)

func TestBindError_ValidationFields(t *testing.T) {
	RegisterValidator()

	req := CreateReviewRequest{BookID: 1, Rating: 9}
	err := binding.Validator.ValidateStruct(&req)
	require.Error(t, err)

	appErr := apperrors.GetAppError(BindError(err))
	assert.Equal(t, apperrors.ErrCodeInvalidParams, appErr.Code)
	assert.Equal(t, "不能大于5", appErr.Fields["rating"])
	assert.Equal(t, "不能为空", appErr.Fields["reviewText"])
	assert.Equal(t, 400, appErr.HTTPStatus())
}

func TestBindError_StringLength(t *testing.T) {
	RegisterValidator()

	req := RegisterRequest{Name: "Ada", Email: "not-an-email", Password: "123"}
	err := binding.Validator.ValidateStruct(&req)
	require.Error(t, err)

	fields := apperrors.GetAppError(BindError(err)).Fields
	assert.Equal(t, "邮箱格式不正确", fields["email"])
	assert.Equal(t, "长度不能少于6", fields["password"])
}

func TestBindError_Malformed(t *testing.T) {
	err := BindError(errors.New("invalid character '}'"))
	assert.ErrorIs(t, err, apperrors.ErrBindError)
}
