package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 业务计数器，由 /metrics 暴露
var (
	PostsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "board_posts_created_total",
		Help: "Total number of posts created.",
	})

	PostsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "board_posts_deleted_total",
		Help: "Total number of posts soft-deleted.",
	})

	PostViews = promauto.NewCounter(prometheus.CounterOpts{
		Name: "board_post_views_total",
		Help: "Total number of view-count increments.",
	})

	ReportsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "board_reports_created_total",
		Help: "Total number of post reports submitted.",
	})
)
