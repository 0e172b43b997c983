package mysql

import (
	"time"

	"gorm.io/gorm"
)

// UserModel GORM用户模型
// 设计说明：
// 1. 这是infrastructure层的数据模型，包含GORM tag
// 2. domain/user/entity.go是领域实体，不依赖GORM
// 3. Repository负责两者之间的转换
type UserModel struct {
	ID        uint           `gorm:"primaryKey"`
	Name      string         `gorm:"size:50;not null;comment:姓名"`
	Email     string         `gorm:"uniqueIndex;size:100;not null;comment:邮箱"`
	Password  string         `gorm:"size:255;not null;comment:密码（bcrypt加密）"`
	CreatedAt time.Time      `gorm:"comment:创建时间"`
	UpdatedAt time.Time      `gorm:"comment:更新时间"`
	DeletedAt gorm.DeletedAt `gorm:"index;comment:删除时间（软删除）"`
}

// TableName 指定表名
func (UserModel) TableName() string {
	return "users"
}

// BookModel GORM图书模型
// 设计说明:
// 1. average_rating/review_count是派生字段,只由UpdateRating写入
// 2. 图书物理删除,删除前由领域服务级联删除书评
// 3. 排序字段各自建索引(created_at、published_year、average_rating)
type BookModel struct {
	ID            uint      `gorm:"primaryKey"`
	Title         string    `gorm:"index:idx_search;size:200;not null;comment:书名"`
	Author        string    `gorm:"index:idx_search;size:100;not null;comment:作者"`
	Description   string    `gorm:"type:text;not null;comment:简介"`
	Genre         string    `gorm:"index;size:30;not null;comment:分类"`
	PublishedYear int       `gorm:"index;not null;comment:出版年份"`
	AddedBy       uint      `gorm:"index;not null;comment:添加者用户ID"`
	Owner         UserModel `gorm:"foreignKey:AddedBy"`
	AverageRating float64   `gorm:"type:decimal(2,1);not null;default:0;index;comment:综合评分"`
	ReviewCount   int       `gorm:"not null;default:0;comment:书评数"`
	CreatedAt     time.Time `gorm:"index;comment:创建时间"`
	UpdatedAt     time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (BookModel) TableName() string {
	return "books"
}

// ReviewModel GORM书评模型
// 设计说明:
// 1. idx_review_book_user唯一索引保证每个(图书,用户)最多一条书评,并发插入时败者收到1062
// 2. book_id外键ON DELETE CASCADE作为级联删除的兜底
// 3. 评分范围同时由CHECK约束保证
type ReviewModel struct {
	ID         uint      `gorm:"primaryKey"`
	BookID     uint      `gorm:"uniqueIndex:idx_review_book_user,priority:1;not null;comment:图书ID"`
	UserID     uint      `gorm:"uniqueIndex:idx_review_book_user,priority:2;index;not null;comment:用户ID"`
	Rating     int       `gorm:"type:tinyint;not null;check:chk_reviews_rating,rating BETWEEN 1 AND 5;comment:评分(1-5)"`
	ReviewText string    `gorm:"type:text;not null;comment:书评内容"`
	Book       BookModel `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE"`
	User       UserModel `gorm:"foreignKey:UserID"`
	CreatedAt  time.Time `gorm:"index;comment:创建时间"`
	UpdatedAt  time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (ReviewModel) TableName() string {
	return "reviews"
}
