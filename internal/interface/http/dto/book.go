package dto

// CreateBookRequest HTTP添加图书请求
// binding只做格式校验，业务规则（分类枚举、年份范围）由领域层校验并返回字段详情
type CreateBookRequest struct {
	Title         string `json:"title" binding:"required,max=200" example:"The Pragmatic Programmer"`
	Author        string `json:"author" binding:"required,max=100" example:"Andrew Hunt"`
	Description   string `json:"description" binding:"required,max=5000" example:"From journeyman to master"`
	Genre         string `json:"genre" binding:"required" example:"Non-Fiction"`
	PublishedYear int    `json:"publishedYear" binding:"required" example:"1999"`
}

// UpdateBookRequest HTTP修改图书请求（部分更新）
type UpdateBookRequest struct {
	Title         *string `json:"title" binding:"omitempty,max=200"`
	Author        *string `json:"author" binding:"omitempty,max=100"`
	Description   *string `json:"description" binding:"omitempty,max=5000"`
	Genre         *string `json:"genre"`
	PublishedYear *int    `json:"publishedYear"`
}

// ListBooksRequest HTTP图书列表请求
// limit超过上限时按上限处理，不报错
type ListBooksRequest struct {
	Page   int    `form:"page" binding:"omitempty,min=1" example:"1"`
	Limit  int    `form:"limit" binding:"omitempty,min=1" example:"9"`
	Search string `form:"search" binding:"omitempty,max=100" example:"pragmatic"`
	Genre  string `form:"genre" example:"Fiction"`
	Sort   string `form:"sort" example:"newest"` // newest | year | rating
}
