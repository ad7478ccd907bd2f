package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Métricas de negócio
	ActiveCartSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pdv_active_cart_sessions",
		Help: "Número de sessões de carrinho ativas",
	})

	SalesCompletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pdv_sales_completed_total",
		Help: "Total de vendas concluídas",
	})

	SalesRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pdv_sales_rejected_total",
		Help: "Total de vendas rejeitadas ou revertidas",
	}, []string{"reason"})

	SalesAmountTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pdv_sales_amount_cents_total",
		Help: "Valor líquido acumulado das vendas em centavos",
	})

	VouchersRedeemedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pdv_vouchers_redeemed_total",
		Help: "Total de vales-compra resgatados",
	})

	CheckoutLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pdv_checkout_latency_seconds",
		Help:    "Latência do fechamento de venda",
		Buckets: prometheus.DefBuckets,
	})

	// Métricas de infraestrutura
	DatabaseLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pdv_database_latency_seconds",
		Help:    "Latência de queries no banco",
		Buckets: prometheus.DefBuckets,
	})

	CacheHitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pdv_cache_hits_total",
		Help: "Acertos e falhas do cache de produtos",
	}, []string{"result"})
)
