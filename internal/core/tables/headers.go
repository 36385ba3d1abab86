package tables

// RequiredHeaders lists the logical input columns in their canonical order.
// Files may present them in any order; comparison uses core.NormalizeHeaderName.
var RequiredHeaders = []string{
	"Card ID",
	"Name",
	"Email",
	"Country",
	"Total Amount",
	"Currency",
	"Month",
	"Payment Date",
	"Support Region",
	"Note",
	"Platform",
	"Transaction ID",
	"Campaign",
}

// Output column sets. These are part of the downstream import contract and
// must not be renamed or reordered.
var (
	NewMemberColumns = []string{
		"Name", "Email", "Country", "Total Amount", "Currency", "Month", "SupportRegion", "Note",
	}
	ExistingMemberColumns = []string{
		"PRF Card No", "TotalAmount", "Currency", "Month", "SupportRegion", "Note",
	}
	ReportColumns = []string{"Line", "Code", "Message"}
)
