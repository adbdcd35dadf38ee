package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	GenerationRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "koinetutor_generation_requests_total",
		Help: "Generation-capability calls by operation and outcome.",
	}, []string{"operation", "outcome"})

	QuizCacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "koinetutor_quiz_cache_hits_total",
		Help: "Quiz cache hits by layer (redis or postgres).",
	}, []string{"layer"})

	QuizCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "koinetutor_quiz_cache_misses_total",
		Help: "Quiz cache full misses that triggered generation.",
	})

	QuizCacheWriteFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "koinetutor_quiz_cache_write_failures_total",
		Help: "Best-effort quiz cache writes that were swallowed.",
	}, []string{"layer"})
)
