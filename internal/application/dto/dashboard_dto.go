package dto

import "github.com/shopspring/decimal"

// AmountDTO monto con su versión formateada en la moneda configurada.
type AmountDTO struct {
	Total          decimal.Decimal `json:"total"`
	TotalFormatted string          `json:"total_formatted"`
	Count          int             `json:"count"`
}

// ProfitDTO ganancia (ingresos - gastos) y margen porcentual.
type ProfitDTO struct {
	Total          decimal.Decimal `json:"total"`
	TotalFormatted string          `json:"total_formatted"`
	Margin         decimal.Decimal `json:"margin"` // (profit / revenue) * 100, 2 decimales
}

// EntityCountsDTO cantidad de registros por entidad.
type EntityCountsDTO struct {
	Clients   int `json:"clients"`
	Suppliers int `json:"suppliers"`
	Products  int `json:"products"`
}

// MonthlyDTO punto de la serie mensual del dashboard.
type MonthlyDTO struct {
	Month             string          `json:"month"` // ej: "Oct 2026"
	Revenue           decimal.Decimal `json:"revenue"`
	RevenueFormatted  string          `json:"revenue_formatted"`
	Expenses          decimal.Decimal `json:"expenses"`
	ExpensesFormatted string          `json:"expenses_formatted"`
	ClientOrders      int             `json:"client_orders"`
	SupplierOrders    int             `json:"supplier_orders"`
}

// DashboardDTO respuesta de GET /api/dashboard.
type DashboardDTO struct {
	Currency             string          `json:"currency"`
	Revenue              AmountDTO       `json:"revenue"`
	Expenses             AmountDTO       `json:"expenses"`
	Profit               ProfitDTO       `json:"profit"`
	Entities             EntityCountsDTO `json:"entities"`
	RecentClientOrders   []OrderListItem `json:"recent_client_orders"`
	RecentSupplierOrders []OrderListItem `json:"recent_supplier_orders"`
	Monthly              []MonthlyDTO    `json:"monthly"`
}
