// Package inventory contiene las reglas puras del motor de stock de pedidos:
// signo por tipo de pedido, delta por producto y totales derivados de las líneas.
package inventory

import (
	"sort"

	"github.com/jhoicas/pedidos-api/internal/domain"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Multiplier devuelve -1 para pedidos de cliente (venta) y +1 para pedidos de proveedor (compra).
func Multiplier(order *entity.Order) int64 {
	if order.ClientID != nil {
		return -1
	}
	return 1
}

// StockDelta calcula el cambio neto de stock por producto implicado por un conjunto de líneas.
// Las líneas repetidas de un mismo producto se suman; un producto con suma 0 no aparece.
func StockDelta(lines []*entity.OrderLine, multiplier int64) map[string]int64 {
	delta := make(map[string]int64, len(lines))
	for _, l := range lines {
		delta[l.ProductID] += multiplier * l.Quantity
	}
	for id, d := range delta {
		if d == 0 {
			delete(delta, id)
		}
	}
	return delta
}

// SortedProductIDs devuelve las claves del delta en orden ascendente.
// Aplicar los ajustes en este orden fija el orden de bloqueo de filas entre transacciones.
func SortedProductIDs(delta map[string]int64) []string {
	ids := make([]string, 0, len(delta))
	for id := range delta {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ComputeCost costo del pedido: Σ(cantidad × precio unitario).
func ComputeCost(lines []*entity.OrderLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity)))
	}
	return total
}

// ComputeItemCount cantidad total de unidades: Σ(cantidad).
func ComputeItemCount(lines []*entity.OrderLine) int64 {
	var n int64
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}

// ValidateCounterparty exige exactamente uno de clientID / supplierID (no vacíos).
// Se ejecuta antes de cualquier escritura.
func ValidateCounterparty(clientID, supplierID *string) error {
	hasClient := clientID != nil && *clientID != ""
	hasSupplier := supplierID != nil && *supplierID != ""
	switch {
	case hasClient && hasSupplier:
		return &domain.FieldError{Field: "order_type", Err: domain.ErrOrderCounterpartyExclusive}
	case !hasClient && !hasSupplier:
		return &domain.FieldError{Field: "order_type", Err: domain.ErrOrderCounterpartyRequired}
	}
	return nil
}
