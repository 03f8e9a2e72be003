package classify

import "github.com/joseph-ayodele/refund-checklist/constants"

// TypeKeywords is one entry of the classification taxonomy.
type TypeKeywords struct {
	Type     constants.DocType
	Keywords []string
}

// DefaultTaxonomy returns the document types in priority order. Ties in
// scoring are won by the type declared first.
func DefaultTaxonomy() []TypeKeywords {
	return []TypeKeywords{
		{constants.DocLetter, []string{
			"solicitud", "carta", "solicita devolución", "motivo de la solicitud",
			"carta de solicitud", "carta de peticion", "representante legal",
			"atentamente", "cordiales saludos", "respetados señores",
		}},
		{constants.DocTaxRegistry, []string{
			"rut", "registro único tributario", "registro unico tributario",
			"numero de identificacion tributaria", "número de identificación tributaria",
		}},
		{constants.DocChamberCertificate, []string{
			"cámara de comercio", "camara de comercio", "certificado de existencia",
			"certificado de existencia y representacion", "certificado de representacion legal",
			"matricula mercantil",
		}},
		{constants.DocBankCertificate, []string{
			"certificación bancaria", "certificacion bancaria", "certificado bancario",
			"certificación de cuenta", "certificacion de cuenta", "saldo bancario",
			"certificado de saldo", "entidad financiera", "numero de cuenta",
			"cuenta corriente", "cuenta de ahorros", "banco", "bancaria", "bancario",
		}},
		{constants.DocPaymentReceipt, []string{
			"recibo", "recibos de pago", "planilla", "comprobante de pago",
			"comprobante de transaccion", "voucher de pago", "pago de planilla",
			"transaccion financiera", "numero de recibo",
		}},
		{constants.DocResolution, []string{
			"resolución", "resolucion", "revocó", "revoco", "revocado", "multado",
			"resolucion administrativa", "acto administrativo", "ejecutoriada",
		}},
		{constants.DocProfessionalLicense, []string{
			"tarjeta profesional", "tarjeta prof", "tarjeta del contador",
			"tarjeta del revisor fiscal", "matricula profesional",
		}},
		{constants.DocConsortiumCharter, []string{
			"acta consorcial", "consorcio", "unión temporal", "union temporal",
			"acta de consorcio", "contrato de union temporal", "joint venture",
		}},
		{constants.DocEmploymentContract, []string{
			"contrato", "salario integral", "contrato firmado", "contrato de trabajo",
			"contrato laboral", "clausulas contractuales",
		}},
	}
}
