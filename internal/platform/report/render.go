// Package report renders a lab report, with its resolved patient and doctor,
// as a plain-text document suitable for printing or download.
package report

import (
	"fmt"
	"strings"

	"github.com/Adi-aygd/liver-cirrhosis/internal/domain/clinic"
)

// Renderer produces the printable document for a resolved lab report.
type Renderer struct {
	clinicName string
}

func NewRenderer(clinicName string) *Renderer {
	if clinicName == "" {
		clinicName = "Liver Care Clinic"
	}
	return &Renderer{clinicName: clinicName}
}

func (rn *Renderer) Render(r *clinic.LabReport, p *clinic.Patient, d *clinic.Doctor) []byte {
	var b strings.Builder

	rule := strings.Repeat("=", 60)
	fmt.Fprintf(&b, "%s\n%s\n%s\n\n", rule, center(rn.clinicName, 60), rule)

	fmt.Fprintf(&b, "LAB REPORT #%d (%s visit)\n", r.ID, r.Kind)
	fmt.Fprintf(&b, "Recorded: %s\n\n", r.CreatedAt.Format("02 Jan 2006 15:04"))

	fmt.Fprintf(&b, "Patient: %s (id %d)\n", p.Name, p.ID)
	if p.Age > 0 {
		fmt.Fprintf(&b, "Age: %d    Gender: %s\n", p.Age, p.Gender)
	}
	if p.Contact != "" {
		fmt.Fprintf(&b, "Contact: %s\n", p.Contact)
	}
	fmt.Fprintf(&b, "\nReferring doctor: %s, %s\n\n", d.Name, d.Hospital)

	b.WriteString("LAB VALUES\n")
	b.WriteString(strings.Repeat("-", 60) + "\n")
	writeValues(&b, r)

	if r.Annotated() {
		a := r.Annotation
		b.WriteString("\nDOCTOR'S PRESCRIPTION\n")
		b.WriteString(strings.Repeat("-", 60) + "\n")
		line(&b, "Prescription", a.Prescription)
		line(&b, "Precautions", a.Precautions)
		line(&b, "Bed rest", a.BedRest)
		line(&b, "Drugs", a.Drugs)
		line(&b, "Next visit", a.NextDate)
	} else {
		b.WriteString("\nAwaiting doctor's review.\n")
	}

	b.WriteString("\n" + rule + "\n")
	return []byte(b.String())
}

func writeValues(b *strings.Builder, r *clinic.LabReport) {
	v := r.Values
	line(b, "Age", v.Age)
	line(b, "Sex", v.Sex)
	line(b, "Albumin", v.Albumin)
	line(b, "Bilirubin", v.Bilirubin)
	line(b, "ALT", v.ALT)
	line(b, "AST", v.AST)
	line(b, "ALP", v.ALP)
	line(b, "INR", v.INR)
	line(b, "Platelets", v.Platelets)
	line(b, "Sodium", v.Sodium)
	line(b, "Creatinine", v.Creatinine)
	line(b, "Ascites", v.Ascites)
	line(b, "Hepatomegaly", v.Hepatomegaly)
	line(b, "Spiders", v.Spiders)
	line(b, "Edema", v.Edema)
	if r.Kind == clinic.ReportKindFollowup {
		line(b, "Stage", v.Stage)
		line(b, "Bed rest", v.BedRest)
		line(b, "Drugs", v.Drugs)
	}
}

func line(b *strings.Builder, label, value string) {
	if value == "" {
		value = "-"
	}
	fmt.Fprintf(b, "%-16s %s\n", label+":", value)
}

func center(s string, width int) string {
	if len(s) >= width {
		return s
	}
	pad := (width - len(s)) / 2
	return strings.Repeat(" ", pad) + s
}
