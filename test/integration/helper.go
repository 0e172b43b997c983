// Package integration 黑盒集成测试：对运行中的服务发送真实HTTP请求
//
// 运行方式：
//
//	docker compose up -d mysql redis
//	go run ./cmd/api &
//	BOOKREVIEW_BASE_URL=http://localhost:8080/api go test ./test/integration/...
//
// 未设置BOOKREVIEW_BASE_URL时全部跳过
package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Timeout HTTP请求超时时间
const Timeout = 10 * time.Second

var seq atomic.Int64

// Response 统一响应结构
type Response struct {
	Status      int               `json:"-"`
	Success     bool              `json:"success"`
	Message     string            `json:"message"`
	Data        json.RawMessage   `json:"data"`
	Errors      map[string]string `json:"errors"`
	Count       int               `json:"count"`
	Total       int64             `json:"total"`
	TotalPages  int               `json:"totalPages"`
	CurrentPage int               `json:"currentPage"`
}

// AuthData 注册/登录响应数据
type AuthData struct {
	User struct {
		ID    uint   `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// BookData 图书响应数据
type BookData struct {
	ID            uint    `json:"id"`
	Title         string  `json:"title"`
	Author        string  `json:"author"`
	Genre         string  `json:"genre"`
	AverageRating float64 `json:"averageRating"`
	ReviewCount   int     `json:"reviewCount"`
}

// ReviewMutation 书评变更响应数据
type ReviewMutation struct {
	Review struct {
		ID     uint `json:"id"`
		BookID uint `json:"bookId"`
		Rating int  `json:"rating"`
	} `json:"review"`
	BookRating struct {
		AverageRating float64 `json:"averageRating"`
		ReviewCount   int     `json:"reviewCount"`
	} `json:"bookRating"`
}

// BaseURL 被测服务地址，未配置时跳过测试
func BaseURL(t *testing.T) string {
	t.Helper()
	url := os.Getenv("BOOKREVIEW_BASE_URL")
	if url == "" {
		t.Skip("BOOKREVIEW_BASE_URL未设置，跳过集成测试")
	}
	return url
}

// Do 发送请求并解析统一响应
func Do(t *testing.T, method, url string, data interface{}, token string) *Response {
	t.Helper()

	var body io.Reader
	if data != nil {
		jsonData, err := json.Marshal(data)
		require.NoError(t, err, "JSON序列化失败")
		body = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err, "创建HTTP请求失败")
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: Timeout}
	resp, err := client.Do(req)
	require.NoError(t, err, "发送HTTP请求失败")
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "读取响应体失败")

	result := &Response{Status: resp.StatusCode}
	require.NoError(t, json.Unmarshal(raw, result), "解析JSON响应失败: %s", string(raw))
	return result
}

// Decode 解析data字段
func Decode[T any](t *testing.T, resp *Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(resp.Data, &v), "解析data失败")
	return v
}

// UniqueName 生成唯一名称（邮箱、书名），测试可重复运行
func UniqueName(prefix string) string {
	return fmt.Sprintf("%s_%d_%d", prefix, time.Now().UnixNano(), seq.Add(1))
}

// RegisterTestUser 注册测试用户，返回用户ID与Access Token
func RegisterTestUser(t *testing.T, base, name string) (uint, string) {
	t.Helper()
	resp := Do(t, http.MethodPost, base+"/auth/register", map[string]string{
		"name":     name,
		"email":    UniqueName(name) + "@test.com",
		"password": "Test1234",
	}, "")
	require.Equal(t, http.StatusCreated, resp.Status, "注册失败: %s", resp.Message)

	auth := Decode[AuthData](t, resp)
	return auth.User.ID, auth.AccessToken
}

// CreateTestBook 添加测试图书并返回图书ID
func CreateTestBook(t *testing.T, base, token, title string) uint {
	t.Helper()
	resp := Do(t, http.MethodPost, base+"/books", map[string]interface{}{
		"title":         title,
		"author":        "测试作者",
		"description":   "集成测试用图书",
		"genre":         "Fiction",
		"publishedYear": 2020,
	}, token)
	require.Equal(t, http.StatusCreated, resp.Status, "添加图书失败: %s", resp.Message)
	return Decode[BookData](t, resp).ID
}
