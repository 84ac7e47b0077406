package orders

import "github.com/prometheus/client_golang/prometheus"

// Metrics contadores del motor de pedidos. Un *Metrics nil no registra nada.
type Metrics struct {
	stockAdjustments *prometheus.CounterVec
	operations       *prometheus.CounterVec
}

// NewMetrics crea y registra los contadores en reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		stockAdjustments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orders_stock_adjustments_total",
			Help: "Ajustes de stock por producto confirmados, por dirección (in|out).",
		}, []string{"direction"}),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orders_operations_total",
			Help: "Operaciones sobre pedidos por tipo (create|update|delete) y resultado (ok|error).",
		}, []string{"op", "result"}),
	}
	reg.MustRegister(m.stockAdjustments, m.operations)
	return m
}

func (m *Metrics) observeAdjustments(adjusted map[string]int64) {
	if m == nil {
		return
	}
	for _, d := range adjusted {
		if d > 0 {
			m.stockAdjustments.WithLabelValues("in").Inc()
		} else if d < 0 {
			m.stockAdjustments.WithLabelValues("out").Inc()
		}
	}
}

func (m *Metrics) observeOperation(op string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.operations.WithLabelValues(op, result).Inc()
}
