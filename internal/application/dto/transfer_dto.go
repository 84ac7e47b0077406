package dto

// ImportResult resultado de una importación CSV.
type ImportResult struct {
	Resource string   `json:"resource"`
	Imported int      `json:"imported"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors"`
	Message  string   `json:"message"`
}

// ExportStats conteo de registros exportables por recurso.
type ExportStats struct {
	Products  int `json:"products"`
	Clients   int `json:"clients"`
	Suppliers int `json:"suppliers"`
}

// ExportFile archivo generado por una exportación.
type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}
