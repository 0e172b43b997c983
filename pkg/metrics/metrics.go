package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus指标定义
//
// 指标类型：
//   - Counter：只增不减（请求总数、失败次数）
//   - Gauge：可增可减（进行中的请求数、熔断器状态）
//   - Histogram：分布统计（耗时）
//
// 命名规范：<namespace>_<name>_<unit>，Counter以_total结尾
var (
	initOnce sync.Once

	// ========== HTTP ==========

	HTTPRequestsTotal      *prometheus.CounterVec
	HTTPRequestDuration    *prometheus.HistogramVec
	HTTPRequestsInProgress prometheus.Gauge
	RateLimitedTotal       prometheus.Counter

	// ========== 书评与评分 ==========

	// ReviewMutationsTotal 书评变更次数（operation=create/update/delete, result=success/failure）
	ReviewMutationsTotal *prometheus.CounterVec

	// RatingRecomputeDuration 评分重算耗时
	RatingRecomputeDuration prometheus.Histogram

	// RatingRecomputeFailuresTotal 评分重算失败次数（触发事务回滚）
	RatingRecomputeFailuresTotal prometheus.Counter

	// ReviewsCascadeDeletedTotal 删除图书时级联删除的书评数
	ReviewsCascadeDeletedTotal prometheus.Counter

	// TxRetriesTotal 死锁/锁等待超时导致的事务重试次数
	TxRetriesTotal prometheus.Counter

	// ========== 熔断器 ==========

	CircuitBreakerState    *prometheus.GaugeVec
	CircuitBreakerRequests *prometheus.CounterVec

	// ========== 消息队列 ==========

	// MessagesPublishedTotal 领域事件发布次数（result=success/failure/rejected）
	MessagesPublishedTotal *prometheus.CounterVec
)

// InitMetrics 初始化所有指标（重复调用安全）
func InitMetrics() {
	initOnce.Do(func() {
		HTTPRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "HTTP请求总数",
			},
			[]string{"method", "path", "status"},
		)

		HTTPRequestDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP请求耗时（秒）",
				Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
			},
			[]string{"method", "path"},
		)

		HTTPRequestsInProgress = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_progress",
				Help: "正在处理的HTTP请求数",
			},
		)

		RateLimitedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "http_rate_limited_total",
				Help: "被限流拒绝的请求数",
			},
		)

		ReviewMutationsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "review_mutations_total",
				Help: "书评变更总数",
			},
			[]string{"operation", "result"},
		)

		RatingRecomputeDuration = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "rating_recompute_duration_seconds",
				Help:    "评分重算耗时（秒）",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
		)

		RatingRecomputeFailuresTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "rating_recompute_failures_total",
				Help: "评分重算失败总数",
			},
		)

		ReviewsCascadeDeletedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "reviews_cascade_deleted_total",
				Help: "删除图书时级联删除的书评总数",
			},
		)

		TxRetriesTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "db_tx_retries_total",
				Help: "数据库事务重试总数（死锁/锁等待超时）",
			},
		)

		CircuitBreakerState = promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "circuit_breaker_state",
				Help: "熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）",
			},
			[]string{"name"},
		)

		CircuitBreakerRequests = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "circuit_breaker_requests_total",
				Help: "熔断器请求总数",
			},
			[]string{"name", "result"},
		)

		MessagesPublishedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "messages_published_total",
				Help: "领域事件发布总数",
			},
			[]string{"routing_key", "result"},
		)
	})
}

// ========== 辅助函数 ==========

func IncCounter(counter prometheus.Counter) {
	counter.Inc()
}

func AddCounter(counter prometheus.Counter, v float64) {
	counter.Add(v)
}

func IncCounterVec(counter *prometheus.CounterVec, labels map[string]string) {
	counter.With(labels).Inc()
}

func IncGauge(gauge prometheus.Gauge) {
	gauge.Inc()
}

func DecGauge(gauge prometheus.Gauge) {
	gauge.Dec()
}

func SetGauge(gauge prometheus.Gauge, value float64) {
	gauge.Set(value)
}

func SetGaugeVec(gauge *prometheus.GaugeVec, labels map[string]string, value float64) {
	gauge.With(labels).Set(value)
}

func ObserveHistogram(histogram prometheus.Histogram, value float64) {
	histogram.Observe(value)
}

func ObserveHistogramVec(histogram *prometheus.HistogramVec, labels map[string]string, value float64) {
	histogram.With(labels).Observe(value)
}

// ResultLabel 把error转换为result标签值
func ResultLabel(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
