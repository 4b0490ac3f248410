package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shashiranjanraj/tailorshop/app/models"
	"github.com/shashiranjanraj/tailorshop/pkg/invoice"
	"github.com/shashiranjanraj/tailorshop/pkg/logger"
	"github.com/shashiranjanraj/tailorshop/pkg/metrics"
)

// Archiver stores rendered invoices. pkg/storage disks satisfy it.
type Archiver interface {
	Put(ctx context.Context, path string, data []byte) error
}

// Viewer is the identity requesting an invoice.
type Viewer struct {
	Username string
	Role     models.Role
}

type Invoice struct {
	Filename string
	PDF      []byte
}

type InvoiceService struct {
	orders  *OrderService
	archive Archiver
	now     func() time.Time
}

// NewInvoiceService renders invoices for orders. archive may be nil.
func NewInvoiceService(orders *OrderService, archive Archiver) *InvoiceService {
	return &InvoiceService{orders: orders, archive: archive, now: time.Now}
}

// Render produces the PDF for billNo. Customers may only fetch invoices for
// orders placed under their own mobile number.
func (s *InvoiceService) Render(ctx context.Context, billNo string, v Viewer) (*Invoice, error) {
	o, err := s.orders.Get(ctx, billNo)
	if err != nil {
		return nil, err
	}
	if v.Role != models.RoleAdmin && o.Mobile != v.Username {
		logger.WithCtx(ctx).Warn("invoice access denied", "bill_no", billNo, "username", v.Username)
		return nil, ErrNotOwner
	}

	pdf, err := s.render(o)
	if err != nil {
		metrics.InvoicesRendered.WithLabelValues("error").Inc()
		logger.WithCtx(ctx).Error("invoice render failed", "bill_no", billNo, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}
	metrics.InvoicesRendered.WithLabelValues("ok").Inc()

	if s.archive != nil {
		if err := s.archive.Put(ctx, ArchivePath(o.BillNo), pdf); err != nil {
			logger.WithCtx(ctx).Warn("invoice archive failed", "bill_no", o.BillNo, "error", err)
		}
	}
	return &Invoice{Filename: fmt.Sprintf("invoice_%s.pdf", o.BillNo), PDF: pdf}, nil
}

func (s *InvoiceService) render(o *models.Order) ([]byte, error) {
	doc, err := invoice.Build(invoice.Input{
		BillNo:       o.BillNo,
		Mobile:       o.Mobile,
		Measurements: o.Measurements,
		Description:  o.Description,
		TotalAmount:  o.TotalAmount,
		Advance:      o.Advance,
		DueAmount:    o.DueAmount,
		DeliveryDate: o.DeliveryDate,
		CreatedDate:  o.CreatedDate,
	}, s.now())
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := doc.WritePDF(&buf); err != nil {
		return nil, err
	}
	if buf.Len() == 0 {
		return nil, errors.New("empty document")
	}
	return buf.Bytes(), nil
}

// ArchivePath is the object key an invoice is archived under.
func ArchivePath(billNo string) string {
	return "invoices/" + billNo + ".pdf"
}
