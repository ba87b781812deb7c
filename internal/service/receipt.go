package service

import (
	"bytes"
	"fmt"

	"camera-rental-backend/internal/domain"
	"camera-rental-backend/internal/utils"

	"github.com/jung-kurt/gofpdf/v2"
)

type pdfReceiptRenderer struct {
	shopName string
}

// NewPDFReceiptRenderer renders A4 payment receipts.
func NewPDFReceiptRenderer(shopName string) ReceiptRenderer {
	if shopName == "" {
		shopName = "Camera Rental"
	}
	return &pdfReceiptRenderer{shopName: shopName}
}

func (r *pdfReceiptRenderer) Render(payment *domain.Payment, details []domain.RentalDetail) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(190, 10, r.shopName+" - Payment Receipt", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(190, 6, fmt.Sprintf("Receipt #%s", payment.ReceiptNumber), "", 1, "C", false, 0, "")
	pdf.CellFormat(190, 6, fmt.Sprintf("Date: %s", payment.PaymentDate.Format("02-Jan-2006 15:04")), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, "Rental", "1", 1, "L", true, 0, "")
	pdf.SetFont("Arial", "", 11)
	if rt := payment.Rental; rt != nil {
		customer := ""
		if rt.Customer != nil {
			customer = rt.Customer.FullName
		}
		pdf.CellFormat(95, 7, fmt.Sprintf("Rental #%d", rt.ID), "LB", 0, "L", false, 0, "")
		pdf.CellFormat(95, 7, fmt.Sprintf("Customer: %s", customer), "RB", 1, "L", false, 0, "")
		pdf.CellFormat(95, 7, fmt.Sprintf("From: %s", rt.StartDate.Format(utils.DateLayout)), "LB", 0, "L", false, 0, "")
		pdf.CellFormat(95, 7, fmt.Sprintf("To: %s", rt.EndDate.Format(utils.DateLayout)), "RB", 1, "L", false, 0, "")
	} else {
		pdf.CellFormat(190, 7, fmt.Sprintf("Rental #%d", payment.RentalID), "1", 1, "L", false, 0, "")
	}
	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(200, 200, 200)
	pdf.CellFormat(70, 7, "Equipment", "1", 0, "C", true, 0, "")
	pdf.CellFormat(40, 7, "Serial", "1", 0, "C", true, 0, "")
	pdf.CellFormat(20, 7, "Days", "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 7, "Subtotal", "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 7, "Deposit", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, d := range details {
		name, serial := fmt.Sprintf("#%d", d.EquipmentID), ""
		if d.Equipment != nil {
			serial = d.Equipment.SerialNumber
			if d.Equipment.Type != nil {
				name = d.Equipment.Type.Name
			}
		}
		pdf.CellFormat(70, 6, name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, serial, "1", 0, "C", false, 0, "")
		pdf.CellFormat(20, 6, fmt.Sprintf("%d", d.TimeQuantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, d.Subtotal.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, d.RequiredDeposit.StringFixed(2), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(5)

	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(63, 8, "Rental paid: "+payment.RentalPayment.StringFixed(2), "1", 0, "C", false, 0, "")
	pdf.CellFormat(63, 8, "Deposit paid: "+payment.DepositPayment.StringFixed(2), "1", 0, "C", false, 0, "")
	pdf.CellFormat(64, 8, "Method: "+string(payment.PaymentMethod), "1", 1, "C", false, 0, "")
	pdf.SetFillColor(200, 255, 200)
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(190, 10, "Total: "+payment.Total().StringFixed(2), "1", 1, "C", true, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
