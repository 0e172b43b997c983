package book

import (
	"strings"
	"time"
)

// Genre 图书分类（固定枚举）
type Genre string

const (
	GenreFiction        Genre = "Fiction"
	GenreNonFiction     Genre = "Non-Fiction"
	GenreMystery        Genre = "Mystery"
	GenreScienceFiction Genre = "Science Fiction"
	GenreBiography      Genre = "Biography"
	GenreFantasy        Genre = "Fantasy"
	GenreRomance        Genre = "Romance"
	GenreThriller       Genre = "Thriller"
	GenreOther          Genre = "Other"
)

// Genres 全部合法分类（顺序即前端下拉框顺序）
var Genres = []Genre{
	GenreFiction,
	GenreNonFiction,
	GenreMystery,
	GenreScienceFiction,
	GenreBiography,
	GenreFantasy,
	GenreRomance,
	GenreThriller,
	GenreOther,
}

// Valid 是否为合法分类（区分大小写）
func (g Genre) Valid() bool {
	for _, v := range Genres {
		if g == v {
			return true
		}
	}
	return false
}

// MinPublishedYear 出版年份下限，上限为当前年份
const MinPublishedYear = 1000

// Book 图书实体（聚合根）
// DDD设计说明：
// 1. AddedBy是图书所有者，创建后不可变更
// 2. AverageRating/ReviewCount是派生字段，只能由rating.Aggregator写入
// 3. AddedByName只读，由仓储查询时关联用户表填充
type Book struct {
	ID            uint
	Title         string
	Author        string
	Description   string
	Genre         Genre
	PublishedYear int
	AddedBy       uint
	AddedByName   string
	AverageRating float64
	ReviewCount   int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewBook 创建新图书（工厂方法），评分字段初始为0
func NewBook(title, author, description string, genre Genre, publishedYear int, addedBy uint) *Book {
	now := time.Now()
	return &Book{
		Title:         strings.TrimSpace(title),
		Author:        strings.TrimSpace(author),
		Description:   strings.TrimSpace(description),
		Genre:         genre,
		PublishedYear: publishedYear,
		AddedBy:       addedBy,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// OwnerID 实现ownership.Owned
func (b *Book) OwnerID() uint {
	return b.AddedBy
}

// Update 客户端可修改的描述性字段，nil表示不修改
// 故意不包含AverageRating/ReviewCount/AddedBy
type Update struct {
	Title         *string
	Author        *string
	Description   *string
	Genre         *Genre
	PublishedYear *int
}

// Empty 没有任何待修改字段
func (u Update) Empty() bool {
	return u.Title == nil && u.Author == nil && u.Description == nil && u.Genre == nil && u.PublishedYear == nil
}

// Apply 应用修改（调用前需通过Validate）
func (b *Book) Apply(u Update) {
	if u.Title != nil {
		b.Title = strings.TrimSpace(*u.Title)
	}
	if u.Author != nil {
		b.Author = strings.TrimSpace(*u.Author)
	}
	if u.Description != nil {
		b.Description = strings.TrimSpace(*u.Description)
	}
	if u.Genre != nil {
		b.Genre = *u.Genre
	}
	if u.PublishedYear != nil {
		b.PublishedYear = *u.PublishedYear
	}
	b.UpdatedAt = time.Now()
}

// Validate 字段校验，返回字段名 → 提示信息（nil表示通过）
func (b *Book) Validate(now time.Time) map[string]string {
	fields := make(map[string]string)
	if b.Title == "" {
		fields["title"] = "书名不能为空"
	} else if len([]rune(b.Title)) > 200 {
		fields["title"] = "书名不能超过200个字符"
	}
	if b.Author == "" {
		fields["author"] = "作者不能为空"
	} else if len([]rune(b.Author)) > 100 {
		fields["author"] = "作者不能超过100个字符"
	}
	if b.Description == "" {
		fields["description"] = "简介不能为空"
	}
	if !b.Genre.Valid() {
		fields["genre"] = "分类不合法"
	}
	if b.PublishedYear < MinPublishedYear || b.PublishedYear > now.Year() {
		fields["publishedYear"] = "出版年份必须在1000到当前年份之间"
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}
