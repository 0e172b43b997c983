// Package rating 图书综合评分
//
// Book.AverageRating/ReviewCount是书评集合的物化视图：
// 每次书评变更后在同一事务内全量重算并写回图书行，客户端永远不能直接写入。
package rating

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	apperrors "github.com/xiebiao/bookreview/pkg/errors"
	"github.com/xiebiao/bookreview/pkg/metrics"
	"github.com/xiebiao/bookreview/pkg/tracing"
)

// Summary 重算结果
type Summary struct {
	AverageRating float64 `json:"averageRating"`
	ReviewCount   int     `json:"reviewCount"`
}

// Reader 读取某本书当前全部评分
// 实现需保证在事务内读到最新已提交的数据（MySQL使用FOR SHARE）
type Reader interface {
	ListRatingsByBook(ctx context.Context, bookID uint) ([]int, error)
}

// Writer 原子写回评分字段
// 图书已不存在时应当静默返回nil
type Writer interface {
	UpdateRating(ctx context.Context, bookID uint, averageRating float64, reviewCount int) error
}

// Aggregator 评分聚合器
type Aggregator struct {
	reader Reader
	writer Writer
}

// NewAggregator 创建评分聚合器
func NewAggregator(reader Reader, writer Writer) *Aggregator {
	metrics.InitMetrics()
	return &Aggregator{reader: reader, writer: writer}
}

// Recompute 重算并持久化bookID的评分
// 不校验图书是否存在，由调用方保证（调用方已持有图书行锁）
func (a *Aggregator) Recompute(ctx context.Context, bookID uint) (summary Summary, err error) {
	ctx, span := tracing.StartSpan(ctx, "rating", "Aggregator.Recompute")
	span.SetAttributes(attribute.Int64("book.id", int64(bookID)))
	start := time.Now()
	defer func() {
		metrics.ObserveHistogram(metrics.RatingRecomputeDuration, time.Since(start).Seconds())
		if err != nil {
			metrics.IncCounter(metrics.RatingRecomputeFailuresTotal)
		}
		tracing.EndSpan(span, err)
	}()

	ratings, err := a.reader.ListRatingsByBook(ctx, bookID)
	if err != nil {
		return Summary{}, apperrors.StoreUnavailable(err, "评分重算失败")
	}

	summary = Summarize(ratings)
	if err := a.writer.UpdateRating(ctx, bookID, summary.AverageRating, summary.ReviewCount); err != nil {
		return Summary{}, apperrors.StoreUnavailable(err, "评分重算失败")
	}

	span.SetAttributes(
		attribute.Float64("rating.average", summary.AverageRating),
		attribute.Int("rating.count", summary.ReviewCount),
	)
	return summary, nil
}

// Summarize 纯计算，不访问存储
func Summarize(ratings []int) Summary {
	return Summary{
		AverageRating: Average(ratings),
		ReviewCount:   len(ratings),
	}
}

// Average 算术平均值，四舍五入（远离零）到一位小数，空集合为0
//
// 全程使用整数运算，避免4.45这类值在float64下舍入方向错误：
//
//	tenths = round(sum*10/n) = (2*sum*10 + n) / (2*n)   （sum ≥ 0）
func Average(ratings []int) float64 {
	n := int64(len(ratings))
	if n == 0 {
		return 0
	}

	var sum int64
	for _, r := range ratings {
		sum += int64(r)
	}

	var tenths int64
	if sum >= 0 {
		tenths = (sum*20 + n) / (2 * n)
	} else {
		tenths = -((-sum*20 + n) / (2 * n))
	}
	return float64(tenths) / 10
}
