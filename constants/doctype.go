package constants

// DocType is the classified type of a page or document.
type DocType string

const (
	DocLetter              DocType = "carta"
	DocTaxRegistry         DocType = "rut"
	DocChamberCertificate  DocType = "camara_comercio"
	DocBankCertificate     DocType = "cert_bancaria"
	DocPaymentReceipt      DocType = "recibo_pago"
	DocResolution          DocType = "resolucion"
	DocProfessionalLicense DocType = "tarjeta_profesional"
	DocConsortiumCharter   DocType = "acta_consorcial"
	DocEmploymentContract  DocType = "contrato"
	DocOther               DocType = "otro"
)
