package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Certificación Bancaria", "certificacion bancaria"},
		{"  CÁMARA   de\tComercio\n", "camara de comercio"},
		{"certificacion_bancaria_empresa.pdf", "certificacion bancaria empresa pdf"},
		{"Señores: RESPETADOS", "senores respetados"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), tt.in)
	}
}

func TestFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Certificacion_Bancaria_EMPRESA.pdf", "certificacion bancaria empresa"},
		{"RUT empresa (copia) 900123456.pdf", "rut empresa"},
		{"carta solicitud - No. 2024-555.pdf", "carta solicitud"},
		{"TicketID_88123 camara comercio.pdf", "camara comercio"},
		{"01-MAIL carta devolucion.pdf", ""},
		{"cert bancaria radicado 2025 123.pdf", "cert bancaria"},
		{"tarjeta profesional anexos varios.pdf", "tarjeta profesional"},
		{"acta consorcial NIS 44.pdf", "acta consorcial"},
		{"Cédula de Ciudadanía.PDF", "cedula de ciudadania"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Filename(tt.in), tt.in)
	}
}

func TestRepairOCR(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"15|01|2025", "15/01/2025"},
		{"l5/0l/2025", "l5/0l/2025"},
		{"dia l de enero", "dia 1 de enero"},
		{"2O25-O1-15", "2025-O1-15"},
		{"1O/1O/2O24", "1O/1O/2024"},
		{"[15/01/2025]", "15/01/2025"},
		{"1(O)2", "102"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RepairOCR(tt.in), tt.in)
	}
}

func TestIdempotence(t *testing.T) {
	inputs := []string{
		"Certificación Bancaria – Banco de Bogotá (copia) 12345678.pdf",
		"foo_nis_123 radicado_99",
		"TicketID-4455 ticketid 12 RUT.pdf",
		"carta | solicitud - no. 44",
		"1OO1 l 2O2O [x] {y} (z)",
		"documentos anexos respuestas internas",
		"  MÚLTIPLES   espacios\t\ty\nsaltos ",
		"ticketid 123456 7 nis",
		"",
	}
	funcs := map[string]func(string) string{
		"Normalize":      Normalize,
		"Filename":       Filename,
		"RepairOCR":      RepairOCR,
		"StripAccents":   StripAccents,
		"CollapseSpaces": CollapseSpaces,
	}
	for name, fn := range funcs {
		for _, in := range inputs {
			once := fn(in)
			assert.Equal(t, once, fn(once), "%s(%q)", name, in)
		}
	}
}
