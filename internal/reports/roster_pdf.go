package reports

import (
	"bytes"
	"fmt"
	"time"

	"github.com/phpdave11/gofpdf"

	"github.com/tinegaCollins/user-manager/internal/domain"
)

// MaxRosterRows caps a single export.
const MaxRosterRows = 10000

// BuildUserRosterPDF renders users as an A4 landscape table.
func BuildUserRosterPDF(users []domain.User, generatedAt time.Time) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle("User Roster", false)
	pdf.SetCreationDate(generatedAt)
	pdf.SetAutoPageBreak(true, 12)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	widths := []float64{62, 70, 40, 22, 18, 45}
	header := func() {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetFillColor(230, 230, 230)
		for i, h := range []string{"Name", "Email", "Phone", "Role", "Active", "Created"} {
			pdf.CellFormat(widths[i], 7, h, "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 9)
	}

	pdf.SetHeaderFunc(func() {
		if pdf.PageNo() > 1 {
			header()
		}
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-10)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 6, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "R", false, 0, "")
	})

	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "User Roster")
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Generated: %s", generatedAt.UTC().Format(time.RFC3339)))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Users: %d", len(users)))
	pdf.Ln(10)

	header()
	for _, u := range users {
		active := "no"
		if u.IsActive {
			active = "yes"
		}
		cells := []string{
			tr(u.Name),
			tr(u.Email),
			tr(u.Phone),
			string(u.Role),
			active,
			u.CreatedAt.UTC().Format("2006-01-02 15:04"),
		}
		for i, v := range cells {
			pdf.CellFormat(widths[i], 6, truncate(pdf, v, widths[i]-2), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if len(users) == 0 {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.Cell(0, 8, "No users match the selected filters.")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// truncate shortens s with an ellipsis so it fits in width mm.
func truncate(pdf *gofpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && pdf.GetStringWidth(string(r)+"...") > width {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}
